package testutil_test

import (
	"testing"

	"juntos/internal/errors"
	"juntos/internal/models"
	"juntos/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	// Verify all tables exist by doing a simple count query on each model.
	var count int64
	for _, table := range []string{"users", "accounts", "credit_cards", "categories", "transactions", "budgets", "goals", "audit_logs"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestSetupTestDB_Isolated(t *testing.T) {
	first := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, first)
	second := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, second)

	testutil.CreateTestUser(t, first)

	var count int64
	second.Model(&models.User{}).Count(&count)
	if count != 0 {
		t.Errorf("expected isolated database, found %d users", count)
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	if user.ID == "" {
		t.Fatal("user should have an ID")
	}

	account := testutil.CreateTestAccountWithBalance(t, db, user.ID, "1500.00")
	testutil.AssertDecimal(t, "balance", account.Balance, "1500")

	card := testutil.CreateTestCreditCard(t, db, user.ID, "3000")
	testutil.AssertDecimal(t, "limit", card.Limit, "3000")

	category := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
	if category.Type != models.CategoryTypeExpense {
		t.Errorf("expected expense category, got %s", category.Type)
	}

	goal := testutil.CreateTestGoal(t, db, user.ID, "1000")
	if !goal.CurrentAmount.IsZero() {
		t.Errorf("expected empty goal, got %s", goal.CurrentAmount)
	}

	txn := testutil.CreateTestTransaction(t, db, &models.Transaction{
		UserID:     user.ID,
		Amount:     testutil.Dec("12.34"),
		Type:       models.TransactionTypeExpense,
		CategoryID: category.ID,
		AccountID:  &account.ID,
	})
	if txn.ID == "" || txn.Description == "" {
		t.Error("expected transaction defaults to be filled in")
	}

	budget := testutil.CreateTestBudget(t, db, user.ID, 1, 2026, "800")
	testutil.AssertDecimal(t, "budget amount", budget.Amount, "800")
}

func TestAssertAppError(t *testing.T) {
	err := errors.WithMessage(errors.ErrAccountNotFound, "custom message")
	testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
}

func TestAssertNoError(t *testing.T) {
	testutil.AssertNoError(t, nil)
}
