package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"juntos/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		Name:     "Test User",
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestAccount creates a checking account with zero balance.
func CreateTestAccount(t *testing.T, db *gorm.DB, userID string) *models.Account {
	t.Helper()
	return CreateTestAccountWithBalance(t, db, userID, "0")
}

// CreateTestAccountWithBalance creates a checking account with the given balance.
func CreateTestAccountWithBalance(t *testing.T, db *gorm.DB, userID, balance string) *models.Account {
	t.Helper()

	account := &models.Account{
		UserID:  userID,
		Name:    fmt.Sprintf("Test Account %d", nextID()),
		Type:    models.AccountTypeChecking,
		Balance: decimal.RequireFromString(balance),
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

// CreateTestCreditCard creates a credit card with the given limit.
func CreateTestCreditCard(t *testing.T, db *gorm.DB, userID, limit string) *models.CreditCard {
	t.Helper()

	card := &models.CreditCard{
		UserID:     userID,
		Name:       fmt.Sprintf("Test Card %d", nextID()),
		Limit:      decimal.RequireFromString(limit),
		ClosingDay: 5,
		DueDay:     10,
	}
	if err := db.Create(card).Error; err != nil {
		t.Fatalf("failed to create test credit card: %v", err)
	}
	return card
}

// CreateTestCategory creates an active category of the given type.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID string, categoryType models.CategoryType) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID:   userID,
		Name:     fmt.Sprintf("Test Category %d", nextID()),
		Type:     categoryType,
		Color:    "#6B7280",
		IsActive: true,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestGoal creates a goal due in 30 days with nothing saved yet.
func CreateTestGoal(t *testing.T, db *gorm.DB, userID, target string) *models.Goal {
	t.Helper()

	goal := &models.Goal{
		UserID:       userID,
		Title:        fmt.Sprintf("Test Goal %d", nextID()),
		TargetAmount: decimal.RequireFromString(target),
		TargetDate:   time.Now().UTC().AddDate(0, 0, 30),
	}
	if err := db.Create(goal).Error; err != nil {
		t.Fatalf("failed to create test goal: %v", err)
	}
	return goal
}

// CreateTestTransaction inserts a transaction row directly, without touching
// any balance. Use it to seed history for projections.
func CreateTestTransaction(t *testing.T, db *gorm.DB, txn *models.Transaction) *models.Transaction {
	t.Helper()

	if txn.Description == "" {
		txn.Description = fmt.Sprintf("Test Transaction %d", nextID())
	}
	if txn.Date.IsZero() {
		txn.Date = time.Now()
	}
	txn.Date = txn.Date.UTC()
	if err := db.Create(txn).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return txn
}

// CreateTestBudget creates a budget for the given month and year.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID string, month, year int, amount string) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		UserID: userID,
		Name:   fmt.Sprintf("Test Budget %d", nextID()),
		Amount: decimal.RequireFromString(amount),
		Month:  month,
		Year:   year,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
