package services

import (
	"testing"
	"time"

	"juntos/internal/models"
	"juntos/internal/testutil"
)

func TestCreateCreditCard(t *testing.T) {
	tests := []struct {
		name  string
		input CreditCardInput
		code  string
	}{
		{"valid", CreditCardInput{Name: "Visa", Limit: testutil.Dec("3000"), ClosingDay: 5, DueDay: 10}, ""},
		{"zero_limit", CreditCardInput{Name: "Visa", Limit: testutil.Dec("0"), ClosingDay: 5, DueDay: 10}, "INVALID_INPUT"},
		{"sub_cent_limit", CreditCardInput{Name: "Visa", Limit: testutil.Dec("3000.001"), ClosingDay: 5, DueDay: 10}, "INVALID_INPUT"},
		{"closing_day_32", CreditCardInput{Name: "Visa", Limit: testutil.Dec("1"), ClosingDay: 32, DueDay: 10}, "INVALID_INPUT"},
		{"due_day_0", CreditCardInput{Name: "Visa", Limit: testutil.Dec("1"), ClosingDay: 1, DueDay: 0}, "INVALID_INPUT"},
		{"empty_name", CreditCardInput{Name: "", Limit: testutil.Dec("1"), ClosingDay: 1, DueDay: 1}, "INVALID_INPUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.SetupTestDB(t)
			defer testutil.TeardownTestDB(t, db)
			user := testutil.CreateTestUser(t, db)

			card, err := NewCreditCardService(db).CreateCreditCard(user.ID, tt.input)
			if tt.code != "" {
				testutil.AssertAppError(t, err, tt.code)
				return
			}
			testutil.AssertNoError(t, err)
			testutil.AssertDecimal(t, "limit", card.Limit, "3000")
		})
	}
}

func TestUpdateCreditCard(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewCreditCardService(db)
	user := testutil.CreateTestUser(t, db)
	card := testutil.CreateTestCreditCard(t, db, user.ID, "1000")

	updated, err := svc.UpdateCreditCard(user.ID, card.ID, CreditCardUpdateFields{
		Limit:  testutil.Ptr(testutil.Dec("2500")),
		DueDay: testutil.Ptr(20),
	})
	testutil.AssertNoError(t, err)

	testutil.AssertDecimal(t, "limit", updated.Limit, "2500")
	if updated.DueDay != 20 || updated.ClosingDay != 5 {
		t.Errorf("unexpected days: closing %d due %d", updated.ClosingDay, updated.DueDay)
	}

	_, err = svc.UpdateCreditCard(testutil.CreateTestUser(t, db).ID, card.ID, CreditCardUpdateFields{DueDay: testutil.Ptr(1)})
	testutil.AssertAppError(t, err, "CREDIT_CARD_NOT_FOUND")
}

func TestDeleteCreditCard(t *testing.T) {
	l := newLedger(t, "0")
	defer testutil.TeardownTestDB(t, l.db)
	svc := NewCreditCardService(l.db)

	input := l.expenseInput("10")
	input.AccountID = nil
	input.CreditCardID = &l.card.ID
	txn, err := l.svc.CreateTransaction(l.user.ID, input)
	testutil.AssertNoError(t, err)

	testutil.AssertAppError(t, svc.DeleteCreditCard(l.user.ID, l.card.ID), "CREDIT_CARD_IN_USE")

	testutil.AssertNoError(t, l.svc.DeleteTransaction(l.user.ID, txn.ID))
	testutil.AssertNoError(t, svc.DeleteCreditCard(l.user.ID, l.card.ID))
}

func TestGetCreditCardStats(t *testing.T) {
	l := newLedger(t, "0")
	defer testutil.TeardownTestDB(t, l.db)
	svc := NewCreditCardService(l.db)

	now := time.Now().UTC()
	start, _ := monthWindow(now)
	rows := []models.Transaction{
		{Amount: testutil.Dec("600"), IsPaid: true, Date: now},
		{Amount: testutil.Dec("150"), IsPaid: false, Date: start},
		{Amount: testutil.Dec("999"), IsPaid: true, Date: start.AddDate(0, 0, -1)},
	}
	for i := range rows {
		rows[i].UserID = l.user.ID
		rows[i].Type = models.TransactionTypeExpense
		rows[i].CategoryID = l.expense.ID
		rows[i].CreditCardID = &l.card.ID
		testutil.CreateTestTransaction(t, l.db, &rows[i])
	}

	stats, err := svc.GetCreditCardStats(l.user.ID, l.card.ID)
	testutil.AssertNoError(t, err)

	testutil.AssertDecimal(t, "spent", stats.TotalSpent, "750")
	testutil.AssertDecimal(t, "available", stats.AvailableLimit, "2250")
	if stats.LimitUsagePercentage != 25 {
		t.Errorf("expected 25%% usage, got %v", stats.LimitUsagePercentage)
	}
	if stats.TransactionsCount != 2 {
		t.Errorf("expected 2 transactions, got %d", stats.TransactionsCount)
	}
}
