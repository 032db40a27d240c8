package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "juntos/internal/errors"
	"juntos/internal/models"
)

// accountService handles account-related business logic.
type accountService struct {
	db *gorm.DB
}

// NewAccountService creates a new AccountServicer.
func NewAccountService(db *gorm.DB) AccountServicer {
	return &accountService{db: db}
}

// AccountList is the account listing with balance rollups.
type AccountList struct {
	Accounts      []models.Account                       `json:"accounts"`
	TotalBalance  decimal.Decimal                        `json:"total_balance"`
	BalanceByType map[models.AccountType]decimal.Decimal `json:"balance_by_type"`
}

// AccountStats summarises all of a user's accounts.
type AccountStats struct {
	TotalAccounts  int                                    `json:"total_accounts"`
	TotalBalance   decimal.Decimal                        `json:"total_balance"`
	AccountsByType map[models.AccountType]int             `json:"accounts_by_type"`
	BalanceByType  map[models.AccountType]decimal.Decimal `json:"balance_by_type"`
	HighestBalance decimal.Decimal                        `json:"highest_balance"`
	AverageBalance decimal.Decimal                        `json:"average_balance"`
}

// TransferResult reports both accounts after a transfer.
type TransferResult struct {
	FromAccount models.Account  `json:"from_account"`
	ToAccount   models.Account  `json:"to_account"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// CreateAccount creates a new account for a user
func (s *accountService) CreateAccount(userID string, input AccountInput) (*models.Account, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account name is required")
	}
	if !validAccountType(input.Type) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid account type")
	}
	if err := centsOnly("initial balance", input.InitialBalance); err != nil {
		return nil, err
	}

	taken, err := s.nameTaken(userID, name, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.ErrDuplicateAccountName
	}

	account := &models.Account{
		UserID:  userID,
		Name:    name,
		Type:    input.Type,
		Balance: input.InitialBalance,
	}
	if err := s.db.Create(account).Error; err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.ErrDuplicateAccountName
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return account, nil
}

// GetUserAccounts lists a user's accounts, newest first, optionally by type.
func (s *accountService) GetUserAccounts(userID string, accountType *models.AccountType) (*AccountList, error) {
	q := s.db.Where("user_id = ?", userID)
	if accountType != nil {
		q = q.Where("type = ?", *accountType)
	}

	var accounts []models.Account
	if err := q.Order("created_at DESC").Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	list := &AccountList{
		Accounts:      accounts,
		TotalBalance:  decimal.Zero,
		BalanceByType: make(map[models.AccountType]decimal.Decimal),
	}
	if list.Accounts == nil {
		list.Accounts = []models.Account{}
	}
	for i := range accounts {
		list.TotalBalance = list.TotalBalance.Add(accounts[i].Balance)
		list.BalanceByType[accounts[i].Type] = list.BalanceByType[accounts[i].Type].Add(accounts[i].Balance)
	}
	return list, nil
}

// GetAccountByID retrieves an account by ID for a specific user
func (s *accountService) GetAccountByID(userID, accountID string) (*models.Account, error) {
	var account models.Account
	if err := s.db.Where("id = ? AND user_id = ?", accountID, userID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &account, nil
}

// UpdateAccount renames or retypes an account.
func (s *accountService) UpdateAccount(userID, accountID string, fields AccountUpdateFields) (*models.Account, error) {
	account, err := s.GetAccountByID(userID, accountID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})

	if fields.Name != nil {
		name := strings.TrimSpace(*fields.Name)
		if name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account name cannot be empty")
		}
		if name != account.Name {
			taken, err := s.nameTaken(userID, name, account.ID)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, apperrors.ErrDuplicateAccountName
			}
			updates["name"] = name
		}
	}
	if fields.Type != nil {
		if !validAccountType(*fields.Type) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid account type")
		}
		updates["type"] = *fields.Type
	}

	if len(updates) > 0 {
		if err := s.db.Model(account).Updates(updates).Error; err != nil {
			if apperrors.IsUniqueViolation(err) {
				return nil, apperrors.ErrDuplicateAccountName
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		// Reload to get fresh data
		if err := s.db.Where("id = ?", account.ID).First(account).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return account, nil
}

// DeleteAccount removes an account that no transaction references.
func (s *accountService) DeleteAccount(userID, accountID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		owned, err := ownsRow(tx, &models.Account{}, userID, accountID)
		if err != nil {
			return err
		}
		if !owned {
			return apperrors.ErrAccountNotFound
		}

		var count int64
		if err := tx.Model(&models.Transaction{}).Where("account_id = ?", accountID).Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count > 0 {
			return apperrors.ErrAccountHasTransactions
		}

		if err := tx.Where("id = ? AND user_id = ?", accountID, userID).Delete(&models.Account{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// GetAccountStats computes counts and balance rollups over all accounts.
func (s *accountService) GetAccountStats(userID string) (*AccountStats, error) {
	var accounts []models.Account
	if err := s.db.Where("user_id = ?", userID).Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	stats := &AccountStats{
		TotalAccounts:  len(accounts),
		TotalBalance:   decimal.Zero,
		AccountsByType: make(map[models.AccountType]int),
		BalanceByType:  make(map[models.AccountType]decimal.Decimal),
		HighestBalance: decimal.Zero,
		AverageBalance: decimal.Zero,
	}
	for i := range accounts {
		a := &accounts[i]
		stats.TotalBalance = stats.TotalBalance.Add(a.Balance)
		stats.AccountsByType[a.Type]++
		stats.BalanceByType[a.Type] = stats.BalanceByType[a.Type].Add(a.Balance)
		stats.HighestBalance = decimal.Max(stats.HighestBalance, a.Balance)
	}
	if len(accounts) > 0 {
		stats.AverageBalance = stats.TotalBalance.Div(decimal.NewFromInt(int64(len(accounts)))).Round(2)
	}
	return stats, nil
}

// Transfer moves an amount between two of the user's accounts atomically.
// The source may not go below zero. No ledger transactions are recorded.
func (s *accountService) Transfer(userID string, req TransferRequest) (*TransferResult, error) {
	if err := positiveAmount("amount", req.Amount); err != nil {
		return nil, err
	}
	if req.FromAccountID == req.ToAccountID {
		return nil, apperrors.ErrSameAccountTransfer
	}

	result := &TransferResult{Amount: req.Amount}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var accounts []models.Account
		// Lock both rows in id order so concurrent transfers cannot deadlock.
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id IN ? AND user_id = ?", []string{req.FromAccountID, req.ToAccountID}, userID).
			Order("id").
			Find(&accounts).Error
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		var from, to *models.Account
		for i := range accounts {
			switch accounts[i].ID {
			case req.FromAccountID:
				from = &accounts[i]
			case req.ToAccountID:
				to = &accounts[i]
			}
		}
		if from == nil {
			return apperrors.WithMessage(apperrors.ErrAccountNotFound, "source account not found")
		}
		if to == nil {
			return apperrors.WithMessage(apperrors.ErrAccountNotFound, "destination account not found")
		}
		if from.Balance.LessThan(req.Amount) {
			return apperrors.ErrInsufficientFunds
		}

		from.Balance = from.Balance.Sub(req.Amount)
		to.Balance = to.Balance.Add(req.Amount)
		if err := tx.Model(from).Update("balance", from.Balance).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Model(to).Update("balance", to.Balance).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		result.FromAccount = *from
		result.ToAccount = *to
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Description = strings.TrimSpace(req.Description)
	if result.Description == "" {
		result.Description = fmt.Sprintf("Transfer from %s to %s", result.FromAccount.Name, result.ToAccount.Name)
	}
	return result, nil
}

func (s *accountService) nameTaken(userID, name, excludeID string) (bool, error) {
	q := s.db.Model(&models.Account{}).Where("user_id = ? AND name = ?", userID, name)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count > 0, nil
}

func validAccountType(t models.AccountType) bool {
	for _, known := range models.AccountTypes {
		if t == known {
			return true
		}
	}
	return false
}
