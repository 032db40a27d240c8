package services

import (
	"time"

	"github.com/shopspring/decimal"

	"juntos/internal/models"
	"juntos/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, name string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	AttemptLogin(email, password string) (*models.User, error)
	UpdateProfile(userID string, fields ProfileUpdateFields) (*models.User, error)
	ChangePassword(userID, currentPassword, newPassword string) error
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
}

// ProfileUpdateFields holds optional profile changes.
type ProfileUpdateFields struct {
	Name  *string
	Email *string
}

// AccountInput holds the fields for a new account.
type AccountInput struct {
	Name           string
	Type           models.AccountType
	InitialBalance decimal.Decimal
}

// AccountUpdateFields holds optional account changes. Balance is not
// patchable.
type AccountUpdateFields struct {
	Name *string
	Type *models.AccountType
}

// TransferRequest moves Amount from FromAccountID to ToAccountID.
type TransferRequest struct {
	FromAccountID string
	ToAccountID   string
	Amount        decimal.Decimal
	Description   string
}

// AccountServicer defines the contract for account-related business logic.
type AccountServicer interface {
	CreateAccount(userID string, input AccountInput) (*models.Account, error)
	GetUserAccounts(userID string, accountType *models.AccountType) (*AccountList, error)
	GetAccountByID(userID, accountID string) (*models.Account, error)
	UpdateAccount(userID, accountID string, fields AccountUpdateFields) (*models.Account, error)
	DeleteAccount(userID, accountID string) error
	GetAccountStats(userID string) (*AccountStats, error)
	Transfer(userID string, req TransferRequest) (*TransferResult, error)
}

// CategoryInput holds the fields for a new category.
type CategoryInput struct {
	Name        string
	Type        models.CategoryType
	Description string
	Color       string
	Icon        string
}

// CategoryUpdateFields holds optional category changes.
type CategoryUpdateFields struct {
	Name        *string
	Type        *models.CategoryType
	Description *string
	Color       *string
	Icon        *string
	IsActive    *bool
}

// CategoryFilter narrows a category listing.
type CategoryFilter struct {
	Type     *models.CategoryType
	IsActive *bool
	Search   string
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(userID string, input CategoryInput) (*models.Category, error)
	GetUserCategories(userID string, filter CategoryFilter) ([]models.Category, error)
	GetCategoryByID(userID, categoryID string) (*models.Category, error)
	UpdateCategory(userID, categoryID string, fields CategoryUpdateFields) (*models.Category, error)
	DeleteCategory(userID, categoryID string) error
	CreateDefaultCategories(userID string) ([]models.Category, error)
	GetCategoryStats(userID string) (*CategoryStats, error)
}

// CreditCardInput holds the fields for a new credit card.
type CreditCardInput struct {
	Name       string
	Limit      decimal.Decimal
	ClosingDay int
	DueDay     int
}

// CreditCardUpdateFields holds optional credit card changes.
type CreditCardUpdateFields struct {
	Name       *string
	Limit      *decimal.Decimal
	ClosingDay *int
	DueDay     *int
}

// CreditCardServicer defines the contract for credit card business logic.
type CreditCardServicer interface {
	CreateCreditCard(userID string, input CreditCardInput) (*models.CreditCard, error)
	GetUserCreditCards(userID string) ([]models.CreditCard, error)
	GetCreditCardByID(userID, cardID string) (*models.CreditCard, error)
	UpdateCreditCard(userID, cardID string, fields CreditCardUpdateFields) (*models.CreditCard, error)
	DeleteCreditCard(userID, cardID string) error
	GetCreditCardStats(userID, cardID string) (*CreditCardStats, error)
}

// TransactionInput holds the fields for a new transaction.
type TransactionInput struct {
	Description  string
	Amount       decimal.Decimal
	Type         models.TransactionType
	Date         time.Time
	IsPaid       bool
	CategoryID   string
	AccountID    *string
	CreditCardID *string
	GoalID       *string
}

// TransactionPatch holds optional transaction changes. For AccountID,
// CreditCardID and GoalID a pointer to "" clears the link.
type TransactionPatch struct {
	Description  *string
	Amount       *decimal.Decimal
	Type         *models.TransactionType
	Date         *time.Time
	IsPaid       *bool
	CategoryID   *string
	AccountID    *string
	CreditCardID *string
	GoalID       *string
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate     *time.Time
	ToDate       *time.Time
	Type         *models.TransactionType
	CategoryID   *string
	AccountID    *string
	CreditCardID *string
	GoalID       *string
	IsPaid       *bool
	MinAmount    *decimal.Decimal
	MaxAmount    *decimal.Decimal
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(userID string, input TransactionInput) (*models.Transaction, error)
	GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*TransactionList, error)
	GetTransactionByID(userID, transactionID string) (*models.Transaction, error)
	UpdateTransaction(userID, transactionID string, patch TransactionPatch) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID string) error
	GetTransactionStats(userID string, from, to *time.Time) (*TransactionStats, error)
}

// BudgetInput holds the fields for a new budget.
type BudgetInput struct {
	Name   string
	Amount decimal.Decimal
	Month  int
	Year   int
}

// BudgetUpdateFields holds optional budget changes.
type BudgetUpdateFields struct {
	Name   *string
	Amount *decimal.Decimal
	Month  *int
	Year   *int
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	CreateBudget(userID string, input BudgetInput) (*models.Budget, error)
	GetUserBudgets(userID string, year *int) ([]models.Budget, error)
	GetBudgetByID(userID, budgetID string) (*models.Budget, error)
	GetBudgetByMonthYear(userID string, month, year int) (*models.Budget, error)
	UpdateBudget(userID, budgetID string, fields BudgetUpdateFields) (*models.Budget, error)
	UpdateSpent(userID string, month, year int) (*models.Budget, error)
	DeleteBudget(userID, budgetID string) error
}

// GoalInput holds the fields for a new goal.
type GoalInput struct {
	Title        string
	Description  *string
	TargetAmount decimal.Decimal
	TargetDate   time.Time
}

// GoalUpdateFields holds optional goal changes. CurrentAmount is derived and
// never patched.
type GoalUpdateFields struct {
	Title        *string
	Description  *string
	TargetAmount *decimal.Decimal
	TargetDate   *time.Time
}

// GoalServicer defines the contract for savings goals.
type GoalServicer interface {
	CreateGoal(userID string, input GoalInput) (*models.Goal, error)
	GetUserGoals(userID string) ([]models.Goal, error)
	GetGoalByID(userID, goalID string) (*models.Goal, error)
	UpdateGoal(userID, goalID string, fields GoalUpdateFields) (*models.Goal, error)
	DeleteGoal(userID, goalID string) error
	GetGoalProgress(userID, goalID string) (*GoalProgress, error)
}

// DashboardServicer defines the contract for the dashboard overview.
type DashboardServicer interface {
	GetDashboard(userID string) (*Dashboard, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
