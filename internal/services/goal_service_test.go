package services

import (
	"testing"
	"time"

	"juntos/internal/models"
	"juntos/internal/testutil"
)

func TestCreateGoal(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGoalService(db)
		user := testutil.CreateTestUser(t, db)

		goal, err := svc.CreateGoal(user.ID, GoalInput{
			Title:        "Trip",
			Description:  testutil.Ptr("Lisbon in spring"),
			TargetAmount: testutil.Dec("5000"),
			TargetDate:   time.Now().AddDate(1, 0, 0),
		})
		testutil.AssertNoError(t, err)

		testutil.AssertDecimal(t, "current", goal.CurrentAmount, "0")
		if goal.Description == nil || *goal.Description != "Lisbon in spring" {
			t.Error("expected description to be stored")
		}
	})

	t.Run("past_target_date", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUser(t, db)

		_, err := NewGoalService(db).CreateGoal(user.ID, GoalInput{
			Title:        "Late",
			TargetAmount: testutil.Dec("10"),
			TargetDate:   time.Now().AddDate(0, 0, -1),
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("zero_target", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUser(t, db)

		_, err := NewGoalService(db).CreateGoal(user.ID, GoalInput{
			Title:        "Nothing",
			TargetAmount: testutil.Dec("0"),
			TargetDate:   time.Now().AddDate(0, 1, 0),
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("sub_cent_target", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUser(t, db)

		_, err := NewGoalService(db).CreateGoal(user.ID, GoalInput{
			Title:        "Trip",
			TargetAmount: testutil.Dec("5000.999"),
			TargetDate:   time.Now().AddDate(0, 1, 0),
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetUserGoals(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewGoalService(db)
	user := testutil.CreateTestUser(t, db)

	far, err := svc.CreateGoal(user.ID, GoalInput{Title: "Far", TargetAmount: testutil.Dec("1"), TargetDate: time.Now().AddDate(2, 0, 0)})
	testutil.AssertNoError(t, err)
	near, err := svc.CreateGoal(user.ID, GoalInput{Title: "Near", TargetAmount: testutil.Dec("1"), TargetDate: time.Now().AddDate(0, 1, 0)})
	testutil.AssertNoError(t, err)

	goals, err := svc.GetUserGoals(user.ID)
	testutil.AssertNoError(t, err)
	if len(goals) != 2 || goals[0].ID != near.ID || goals[1].ID != far.ID {
		t.Errorf("expected goals ordered by target date, got %+v", goals)
	}
}

func TestUpdateGoal(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewGoalService(db)
	user := testutil.CreateTestUser(t, db)
	goal := testutil.CreateTestGoal(t, db, user.ID, "1000")

	updated, err := svc.UpdateGoal(user.ID, goal.ID, GoalUpdateFields{
		Title:        testutil.Ptr("Emergency fund"),
		TargetAmount: testutil.Ptr(testutil.Dec("2000")),
	})
	testutil.AssertNoError(t, err)

	if updated.Title != "Emergency fund" {
		t.Errorf("expected new title, got %s", updated.Title)
	}
	testutil.AssertDecimal(t, "target", updated.TargetAmount, "2000")

	_, err = svc.UpdateGoal(user.ID, goal.ID, GoalUpdateFields{TargetAmount: testutil.Ptr(testutil.Dec("-1"))})
	testutil.AssertAppError(t, err, "INVALID_INPUT")
}

func TestDeleteGoalUnlinksTransactions(t *testing.T) {
	l := newLedger(t, "0")
	defer testutil.TeardownTestDB(t, l.db)
	svc := NewGoalService(l.db)
	goal := testutil.CreateTestGoal(t, l.db, l.user.ID, "1000")

	txn, err := l.svc.CreateTransaction(l.user.ID, l.incomeInput("100", &goal.ID))
	testutil.AssertNoError(t, err)

	testutil.AssertNoError(t, svc.DeleteGoal(l.user.ID, goal.ID))

	reloaded, err := l.svc.GetTransactionByID(l.user.ID, txn.ID)
	testutil.AssertNoError(t, err)
	if reloaded.GoalID != nil {
		t.Error("expected goal link to be cleared")
	}
	testutil.AssertDecimal(t, "balance", testutil.Dec(l.balance(t, l.account.ID)), "100")

	_, err = svc.GetGoalByID(l.user.ID, goal.ID)
	testutil.AssertAppError(t, err, "GOAL_NOT_FOUND")
}

func TestGetGoalProgress(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	user := testutil.CreateTestUser(t, db)
	goal := testutil.CreateTestGoal(t, db, user.ID, "1000")
	db.Model(&models.Goal{}).Where("id = ?", goal.ID).Update("current_amount", testutil.Dec("250"))

	svc := &goalService{db: db, now: func() time.Time { return goal.TargetDate.Add(-36 * time.Hour) }}
	progress, err := svc.GetGoalProgress(user.ID, goal.ID)
	testutil.AssertNoError(t, err)

	if progress.Percentage != 25 {
		t.Errorf("expected 25%%, got %v", progress.Percentage)
	}
	if progress.DaysRemaining != 2 {
		t.Errorf("expected 2 days remaining, got %d", progress.DaysRemaining)
	}
	testutil.AssertDecimal(t, "remaining", progress.Remaining, "750")

	_, err = svc.GetGoalProgress(testutil.CreateTestUser(t, db).ID, goal.ID)
	testutil.AssertAppError(t, err, "GOAL_NOT_FOUND")
}
