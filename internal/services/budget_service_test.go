package services

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"juntos/internal/models"
	"juntos/internal/testutil"
)

func TestCreateBudget(t *testing.T) {
	t.Run("fills_spent", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		seedBudgetExpenses(t, db, user.ID)

		budget, err := svc.CreateBudget(user.ID, BudgetInput{Name: "March", Amount: testutil.Dec("2000"), Month: 3, Year: 2026})
		testutil.AssertNoError(t, err)

		testutil.AssertDecimal(t, "spent", budget.Spent, "350")
	})

	t.Run("duplicate_period", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateBudget(user.ID, BudgetInput{Name: "A", Amount: testutil.Dec("10"), Month: 1, Year: 2026})
		testutil.AssertNoError(t, err)
		_, err = svc.CreateBudget(user.ID, BudgetInput{Name: "B", Amount: testutil.Dec("20"), Month: 1, Year: 2026})
		testutil.AssertAppError(t, err, "DUPLICATE_BUDGET")
	})

	tests := []struct {
		name  string
		input BudgetInput
	}{
		{"zero_amount", BudgetInput{Name: "x", Amount: testutil.Dec("0"), Month: 1, Year: 2026}},
		{"sub_cent_amount", BudgetInput{Name: "x", Amount: testutil.Dec("100.125"), Month: 1, Year: 2026}},
		{"month_13", BudgetInput{Name: "x", Amount: testutil.Dec("1"), Month: 13, Year: 2026}},
		{"month_0", BudgetInput{Name: "x", Amount: testutil.Dec("1"), Month: 0, Year: 2026}},
		{"empty_name", BudgetInput{Name: "", Amount: testutil.Dec("1"), Month: 1, Year: 2026}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.SetupTestDB(t)
			defer testutil.TeardownTestDB(t, db)
			user := testutil.CreateTestUser(t, db)

			_, err := NewBudgetService(db).CreateBudget(user.ID, tt.input)
			testutil.AssertAppError(t, err, "INVALID_INPUT")
		})
	}
}

func TestGetUserBudgets(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewBudgetService(db)
	user := testutil.CreateTestUser(t, db)
	testutil.CreateTestBudget(t, db, user.ID, 11, 2025, "100")
	testutil.CreateTestBudget(t, db, user.ID, 2, 2026, "100")
	testutil.CreateTestBudget(t, db, user.ID, 1, 2026, "100")

	all, err := svc.GetUserBudgets(user.ID, nil)
	testutil.AssertNoError(t, err)
	if len(all) != 3 {
		t.Fatalf("expected 3 budgets, got %d", len(all))
	}
	if all[0].Month != 2 || all[0].Year != 2026 {
		t.Errorf("expected latest period first, got %d/%d", all[0].Month, all[0].Year)
	}

	year := 2025
	filtered, err := svc.GetUserBudgets(user.ID, &year)
	testutil.AssertNoError(t, err)
	if len(filtered) != 1 {
		t.Errorf("expected 1 budget in 2025, got %d", len(filtered))
	}
}

func TestGetBudgetByMonthYear(t *testing.T) {
	t.Run("refreshes_spent", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestBudget(t, db, user.ID, 3, 2026, "2000")
		seedBudgetExpenses(t, db, user.ID)

		budget, err := svc.GetBudgetByMonthYear(user.ID, 3, 2026)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, "spent", budget.Spent, "350")

		stored, err := svc.GetBudgetByID(user.ID, budget.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, "stored spent", stored.Spent, "350")
	})

	t.Run("missing", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUser(t, db)

		_, err := NewBudgetService(db).GetBudgetByMonthYear(user.ID, 3, 2026)
		testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
	})
}

func TestUpdateBudget(t *testing.T) {
	t.Run("amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, user.ID, 5, 2026, "100")

		updated, err := svc.UpdateBudget(user.ID, budget.ID, BudgetUpdateFields{Amount: testutil.Ptr(testutil.Dec("150"))})
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, "amount", updated.Amount, "150")
	})

	t.Run("move_to_taken_period", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestBudget(t, db, user.ID, 5, 2026, "100")
		budget := testutil.CreateTestBudget(t, db, user.ID, 6, 2026, "100")

		_, err := svc.UpdateBudget(user.ID, budget.ID, BudgetUpdateFields{Month: testutil.Ptr(5)})
		testutil.AssertAppError(t, err, "DUPLICATE_BUDGET")
	})

	t.Run("move_refreshes_spent", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, user.ID, 6, 2026, "100")
		seedBudgetExpenses(t, db, user.ID)

		updated, err := svc.UpdateBudget(user.ID, budget.ID, BudgetUpdateFields{Month: testutil.Ptr(3)})
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, "spent", updated.Spent, "350")
	})
}

func TestDeleteBudget(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewBudgetService(db)
	owner := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)
	budget := testutil.CreateTestBudget(t, db, owner.ID, 1, 2026, "100")

	testutil.AssertAppError(t, svc.DeleteBudget(other.ID, budget.ID), "BUDGET_NOT_FOUND")
	testutil.AssertNoError(t, svc.DeleteBudget(owner.ID, budget.ID))
	testutil.AssertAppError(t, svc.DeleteBudget(owner.ID, budget.ID), "BUDGET_NOT_FOUND")
}

// seedBudgetExpenses writes March 2026 history: two paid expenses inside the
// month, plus rows that must not count toward spent.
func seedBudgetExpenses(t *testing.T, db *gorm.DB, userID string) {
	t.Helper()
	account := testutil.CreateTestAccount(t, db, userID)
	expense := testutil.CreateTestCategory(t, db, userID, models.CategoryTypeExpense)
	income := testutil.CreateTestCategory(t, db, userID, models.CategoryTypeIncome)

	rows := []models.Transaction{
		{Amount: testutil.Dec("200"), Type: models.TransactionTypeExpense, IsPaid: true, CategoryID: expense.ID,
			Date: time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)},
		{Amount: testutil.Dec("150"), Type: models.TransactionTypeExpense, IsPaid: true, CategoryID: expense.ID,
			Date: time.Date(2026, time.March, 31, 23, 59, 0, 0, time.UTC)},
		{Amount: testutil.Dec("999"), Type: models.TransactionTypeExpense, IsPaid: false, CategoryID: expense.ID,
			Date: time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)},
		{Amount: testutil.Dec("500"), Type: models.TransactionTypeIncome, IsPaid: true, CategoryID: income.ID,
			Date: time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)},
		{Amount: testutil.Dec("75"), Type: models.TransactionTypeExpense, IsPaid: true, CategoryID: expense.ID,
			Date: time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)},
	}
	for i := range rows {
		rows[i].UserID = userID
		rows[i].AccountID = &account.ID
		testutil.CreateTestTransaction(t, db, &rows[i])
	}
}
