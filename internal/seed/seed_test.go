package seed

import (
	"errors"
	"testing"

	"juntos/internal/logger"
	"juntos/internal/models"
	"juntos/internal/services"
	"juntos/internal/testutil"
)

func init() {
	logger.Init("test")
}

func TestRun(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	result, err := Run(db)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.User.Email != DemoEmail {
		t.Errorf("expected %s, got %s", DemoEmail, result.User.Email)
	}
	if len(result.Categories) != len(demoCategories) {
		t.Errorf("expected %d categories, got %d", len(demoCategories), len(result.Categories))
	}
	testutil.AssertDecimal(t, "account balance", result.Account.Balance, "1500")
	testutil.AssertDecimal(t, "card limit", result.CreditCard.Limit, "3000")
	if result.CreditCard.ClosingDay != 5 || result.CreditCard.DueDay != 10 {
		t.Errorf("unexpected card days %d/%d", result.CreditCard.ClosingDay, result.CreditCard.DueDay)
	}

	if _, err := services.NewUserService(db).AttemptLogin(DemoEmail, DemoPassword); err != nil {
		t.Errorf("expected demo login to succeed: %v", err)
	}
}

func TestRun_AlreadySeeded(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	if _, err := Run(db); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if _, err := Run(db); !errors.Is(err, ErrAlreadySeeded) {
		t.Fatalf("expected ErrAlreadySeeded, got %v", err)
	}

	var count int64
	db.Model(&models.Account{}).Count(&count)
	if count != 1 {
		t.Errorf("expected a single account after reseeding, got %d", count)
	}
}
