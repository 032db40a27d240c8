package services

import (
	"testing"

	"juntos/internal/models"
	"juntos/internal/testutil"
)

func TestBalanceDelta(t *testing.T) {
	tests := []struct {
		name   string
		txType models.TransactionType
		sign   int64
		want   string
	}{
		{"income_apply", models.TransactionTypeIncome, applySign, "120.50"},
		{"income_reverse", models.TransactionTypeIncome, reverseSign, "-120.50"},
		{"expense_apply", models.TransactionTypeExpense, applySign, "-120.50"},
		{"expense_reverse", models.TransactionTypeExpense, reverseSign, "120.50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BalanceDelta(tt.txType, testutil.Dec("120.50"), tt.sign)
			testutil.AssertDecimal(t, "delta", got, tt.want)
		})
	}
}

func TestApplyEffect(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	user := testutil.CreateTestUser(t, db)
	account := testutil.CreateTestAccountWithBalance(t, db, user.ID, "10")

	testutil.AssertNoError(t, ApplyEffect(db, user.ID, account.ID, models.TransactionTypeExpense, testutil.Dec("25"), applySign))

	var reloaded models.Account
	db.Where("id = ?", account.ID).First(&reloaded)
	testutil.AssertDecimal(t, "balance", reloaded.Balance, "-15")

	other := testutil.CreateTestUser(t, db)
	err := ApplyEffect(db, other.ID, account.ID, models.TransactionTypeIncome, testutil.Dec("1"), applySign)
	testutil.AssertAppError(t, err, "REFERENTIAL_VIOLATION")
}

func TestNewReconciliation(t *testing.T) {
	account := "acc-1"
	goal := "goal-1"
	existing := &models.Transaction{
		Amount:     testutil.Dec("100"),
		Type:       models.TransactionTypeIncome,
		IsPaid:     true,
		CategoryID: "cat-1",
		AccountID:  &account,
		GoalID:     &goal,
	}

	t.Run("empty_patch_keeps_state", func(t *testing.T) {
		rec := newReconciliation(existing, TransactionPatch{})
		if rec.new != rec.old {
			t.Errorf("expected identical states, got %+v vs %+v", rec.old, rec.new)
		}
	})

	t.Run("partial_patch_merges", func(t *testing.T) {
		rec := newReconciliation(existing, TransactionPatch{Amount: testutil.Ptr(testutil.Dec("40"))})

		testutil.AssertDecimal(t, "old amount", rec.old.Amount, "100")
		testutil.AssertDecimal(t, "new amount", rec.new.Amount, "40")
		if !rec.new.IsPaid || rec.new.AccountID == nil || *rec.new.AccountID != account {
			t.Errorf("expected untouched fields carried over, got %+v", rec.new)
		}
	})

	t.Run("empty_string_clears_link", func(t *testing.T) {
		rec := newReconciliation(existing, TransactionPatch{GoalID: testutil.Ptr("")})

		if rec.new.GoalID != nil {
			t.Error("expected goal link to be cleared")
		}
		if rec.old.GoalID == nil {
			t.Error("expected old goal link preserved for recompute")
		}
		if rec.new.contributesToGoal() {
			t.Error("unlinked state must not contribute to a goal")
		}
	})

	t.Run("old_state_survives_row_writes", func(t *testing.T) {
		goalA, goalB := "goal-a", "goal-b"
		row := &models.Transaction{
			Amount:     testutil.Dec("250"),
			Type:       models.TransactionTypeIncome,
			IsPaid:     true,
			CategoryID: "cat-1",
			AccountID:  testutil.Ptr(account),
			GoalID:     &goalA,
		}
		rec := newReconciliation(row, TransactionPatch{GoalID: &goalB})

		*row.GoalID = goalB
		*row.AccountID = "acc-2"

		if *rec.old.GoalID != goalA {
			t.Errorf("expected old goal %s, got %s", goalA, *rec.old.GoalID)
		}
		if *rec.old.AccountID != account {
			t.Errorf("expected old account %s, got %s", account, *rec.old.AccountID)
		}
	})

	t.Run("unpaid_does_not_touch_account", func(t *testing.T) {
		rec := newReconciliation(existing, TransactionPatch{IsPaid: testutil.Ptr(false)})

		if !rec.old.touchesAccount() || rec.new.touchesAccount() {
			t.Errorf("unexpected account effects old=%v new=%v", rec.old.touchesAccount(), rec.new.touchesAccount())
		}
	})
}

func TestRankCategories(t *testing.T) {
	food := &models.Category{Base: models.Base{ID: "food"}, Name: "Food"}
	fuel := &models.Category{Base: models.Base{ID: "fuel"}, Name: "Fuel"}
	pay := &models.Category{Base: models.Base{ID: "pay"}, Name: "Pay"}

	txns := []models.Transaction{
		{CategoryID: "fuel", Category: fuel, Type: models.TransactionTypeExpense, Amount: testutil.Dec("10")},
		{CategoryID: "food", Category: food, Type: models.TransactionTypeExpense, Amount: testutil.Dec("20")},
		{CategoryID: "food", Category: food, Type: models.TransactionTypeExpense, Amount: testutil.Dec("10")},
		{CategoryID: "pay", Category: pay, Type: models.TransactionTypeIncome, Amount: testutil.Dec("500")},
	}

	expense := models.TransactionTypeExpense
	got := rankCategories(txns, &expense, 1)

	if len(got) != 1 {
		t.Fatalf("expected limit to cap rows at 1, got %d", len(got))
	}
	if got[0].Name != "Food" || got[0].Count != 2 {
		t.Errorf("expected Food with 2 transactions, got %+v", got[0])
	}
	testutil.AssertDecimal(t, "food total", got[0].Total, "30")
	if got[0].Percentage != 75 {
		t.Errorf("expected 75%%, got %v", got[0].Percentage)
	}
}
