package services

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "juntos/internal/errors"
	"juntos/internal/models"
	"juntos/internal/pagination"
)

// transactionService handles the transaction lifecycle and keeps account
// balances and goal progress consistent with it.
type transactionService struct {
	db *gorm.DB
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB) TransactionServicer {
	return &transactionService{db: db}
}

// TransactionList is one page of transactions plus totals over that page.
type TransactionList struct {
	pagination.PageResponse[models.Transaction]
	TotalAmount  decimal.Decimal `json:"total_amount"`
	TotalPaid    decimal.Decimal `json:"total_paid"`
	TotalPending decimal.Decimal `json:"total_pending"`
}

// TransactionStats summarises transactions in an optional date range.
type TransactionStats struct {
	TotalIncomes         decimal.Decimal `json:"total_incomes"`
	TotalExpenses        decimal.Decimal `json:"total_expenses"`
	TotalPaid            decimal.Decimal `json:"total_paid"`
	TotalPending         decimal.Decimal `json:"total_pending"`
	CurrentMonthIncomes  decimal.Decimal `json:"current_month_incomes"`
	CurrentMonthExpenses decimal.Decimal `json:"current_month_expenses"`
	Balance              decimal.Decimal `json:"balance"`
	TransactionCount     int             `json:"transaction_count"`
	TopCategories        []CategoryTotal `json:"top_categories"`
}

// CreateTransaction validates every reference, inserts the row and applies
// its balance and goal effects in one database transaction.
func (s *transactionService) CreateTransaction(userID string, input TransactionInput) (*models.Transaction, error) {
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "description is required")
	}
	if input.Date.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "date is required")
	}

	txn := &models.Transaction{
		UserID:       userID,
		Description:  description,
		Amount:       input.Amount,
		Type:         input.Type,
		Date:         input.Date.UTC(),
		IsPaid:       input.IsPaid,
		CategoryID:   input.CategoryID,
		AccountID:    mergeRef(nil, input.AccountID),
		CreditCardID: mergeRef(nil, input.CreditCardID),
		GoalID:       mergeRef(nil, input.GoalID),
	}
	state := stateOf(txn)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := validateReferences(tx, userID, state); err != nil {
			return err
		}
		return reconciliation{new: state}.run(tx, userID, func(tx *gorm.DB) error {
			if err := tx.Create(txn).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return s.GetTransactionByID(userID, txn.ID)
}

// UpdateTransaction reverses the stored effect, applies the patch and then
// applies the effect of the merged state.
func (s *transactionService) UpdateTransaction(userID, transactionID string, patch TransactionPatch) (*models.Transaction, error) {
	var description string
	if patch.Description != nil {
		description = strings.TrimSpace(*patch.Description)
		if description == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "description cannot be empty")
		}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		existing, err := findTransactionForUpdate(tx, userID, transactionID)
		if err != nil {
			return err
		}

		rec := newReconciliation(existing, patch)
		if err := validateReferences(tx, userID, rec.new); err != nil {
			return err
		}

		return rec.run(tx, userID, func(tx *gorm.DB) error {
			updates := map[string]interface{}{
				"is_paid":        rec.new.IsPaid,
				"type":           rec.new.Type,
				"amount":         rec.new.Amount,
				"category_id":    rec.new.CategoryID,
				"account_id":     nullable(rec.new.AccountID),
				"credit_card_id": nullable(rec.new.CreditCardID),
				"goal_id":        nullable(rec.new.GoalID),
			}
			if patch.Description != nil {
				updates["description"] = description
			}
			if patch.Date != nil {
				updates["date"] = patch.Date.UTC()
			}
			if err := tx.Model(&models.Transaction{}).Where("id = ?", existing.ID).Updates(updates).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return s.GetTransactionByID(userID, transactionID)
}

// DeleteTransaction reverses the transaction's effects and removes it.
func (s *transactionService) DeleteTransaction(userID, transactionID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		existing, err := findTransactionForUpdate(tx, userID, transactionID)
		if err != nil {
			return err
		}

		return reconciliation{old: stateOf(existing)}.run(tx, userID, func(tx *gorm.DB) error {
			if err := tx.Delete(existing).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			return nil
		})
	})
}

// GetTransactionByID retrieves a transaction with its linked entities.
func (s *transactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	var txn models.Transaction
	err := withRelations(s.db).
		Where("id = ? AND user_id = ?", transactionID, userID).
		First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &txn, nil
}

// GetUserTransactions returns a filtered page of transactions, newest first.
func (s *transactionService) GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*TransactionList, error) {
	page.Defaults()

	base := applyTransactionFilters(s.db.Model(&models.Transaction{}).Where("user_id = ?", userID), filter).
		Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var txns []models.Transaction
	err := withRelations(base).
		Order("date DESC").Order("created_at DESC").
		Scopes(pagination.Paginate(page)).
		Find(&txns).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	list := &TransactionList{
		PageResponse: pagination.NewPageResponse(txns, page.Page, page.Limit, total),
		TotalAmount:  decimal.Zero,
		TotalPaid:    decimal.Zero,
		TotalPending: decimal.Zero,
	}
	for i := range txns {
		list.TotalAmount = list.TotalAmount.Add(txns[i].Amount)
		if txns[i].IsPaid {
			list.TotalPaid = list.TotalPaid.Add(txns[i].Amount)
		} else {
			list.TotalPending = list.TotalPending.Add(txns[i].Amount)
		}
	}
	return list, nil
}

// GetTransactionStats aggregates the user's transactions between from and to
// (both optional). The current-month figures cover the part of that range
// falling in the current calendar month. Every category is ranked.
func (s *transactionService) GetTransactionStats(userID string, from, to *time.Time) (*TransactionStats, error) {
	var txns []models.Transaction
	q := applyTransactionFilters(s.db.Preload("Category").Where("user_id = ?", userID), TransactionFilter{FromDate: from, ToDate: to})
	if err := q.Find(&txns).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	start, end := monthWindow(time.Now().UTC())
	stats := &TransactionStats{
		TotalIncomes:         decimal.Zero,
		TotalExpenses:        decimal.Zero,
		TotalPaid:            decimal.Zero,
		TotalPending:         decimal.Zero,
		CurrentMonthIncomes:  decimal.Zero,
		CurrentMonthExpenses: decimal.Zero,
		TransactionCount:     len(txns),
	}
	for i := range txns {
		t := &txns[i]
		inMonth := !t.Date.Before(start) && t.Date.Before(end)
		if t.Type == models.TransactionTypeIncome {
			stats.TotalIncomes = stats.TotalIncomes.Add(t.Amount)
			if inMonth {
				stats.CurrentMonthIncomes = stats.CurrentMonthIncomes.Add(t.Amount)
			}
		} else {
			stats.TotalExpenses = stats.TotalExpenses.Add(t.Amount)
			if inMonth {
				stats.CurrentMonthExpenses = stats.CurrentMonthExpenses.Add(t.Amount)
			}
		}
		if t.IsPaid {
			stats.TotalPaid = stats.TotalPaid.Add(t.Amount)
		} else {
			stats.TotalPending = stats.TotalPending.Add(t.Amount)
		}
	}
	stats.Balance = stats.TotalIncomes.Sub(stats.TotalExpenses)
	stats.TopCategories = rankCategories(txns, nil, 0)

	return stats, nil
}

// validateReferences checks a transaction state against every referential
// rule. It performs no writes.
func validateReferences(tx *gorm.DB, userID string, s effectiveState) error {
	if err := positiveAmount("amount", s.Amount); err != nil {
		return err
	}
	if s.Type != models.TransactionTypeIncome && s.Type != models.TransactionTypeExpense {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "type must be income or expense")
	}
	if s.CategoryID == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "category_id is required")
	}

	switch {
	case s.AccountID != nil && s.CreditCardID != nil:
		return apperrors.WithMessage(apperrors.ErrReferentialViolation, "a transaction cannot reference both an account and a credit card")
	case s.AccountID == nil && s.CreditCardID == nil:
		return apperrors.WithMessage(apperrors.ErrReferentialViolation, "a transaction must reference an account or a credit card")
	case s.Type == models.TransactionTypeIncome && s.AccountID == nil:
		return apperrors.WithMessage(apperrors.ErrReferentialViolation, "income transactions require an account")
	}
	if s.GoalID != nil && s.Type != models.TransactionTypeIncome {
		return apperrors.WithMessage(apperrors.ErrReferentialViolation, "only income transactions can be linked to a goal")
	}

	var category models.Category
	if err := tx.Where("id = ? AND user_id = ?", s.CategoryID, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.WithMessage(apperrors.ErrReferentialViolation, "category not found")
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if string(category.Type) != string(s.Type) {
		return apperrors.WithMessage(apperrors.ErrReferentialViolation, "category type must match transaction type")
	}

	refs := []struct {
		id    *string
		model interface{}
		label string
	}{
		{s.AccountID, &models.Account{}, "account"},
		{s.CreditCardID, &models.CreditCard{}, "credit card"},
		{s.GoalID, &models.Goal{}, "goal"},
	}
	for _, ref := range refs {
		if ref.id == nil {
			continue
		}
		owned, err := ownsRow(tx, ref.model, userID, *ref.id)
		if err != nil {
			return err
		}
		if !owned {
			return apperrors.WithMessagef(apperrors.ErrReferentialViolation, "%s not found", ref.label)
		}
	}
	return nil
}

func findTransactionForUpdate(tx *gorm.DB, userID, transactionID string) (*models.Transaction, error) {
	var txn models.Transaction
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND user_id = ?", transactionID, userID).
		First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &txn, nil
}

// ownsRow reports whether a row of model with the given id belongs to userID.
func ownsRow(tx *gorm.DB, model interface{}, userID, id string) (bool, error) {
	var count int64
	if err := tx.Model(model).Where("id = ? AND user_id = ?", id, userID).Count(&count).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count > 0, nil
}

func withRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Category").Preload("Account").Preload("CreditCard").Preload("Goal")
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("date >= ?", f.FromDate.UTC())
	}
	if f.ToDate != nil {
		q = q.Where("date <= ?", f.ToDate.UTC())
	}
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.AccountID != nil {
		q = q.Where("account_id = ?", *f.AccountID)
	}
	if f.CreditCardID != nil {
		q = q.Where("credit_card_id = ?", *f.CreditCardID)
	}
	if f.GoalID != nil {
		q = q.Where("goal_id = ?", *f.GoalID)
	}
	if f.IsPaid != nil {
		q = q.Where("is_paid = ?", *f.IsPaid)
	}
	if f.MinAmount != nil {
		q = q.Where("amount >= ?", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		q = q.Where("amount <= ?", *f.MaxAmount)
	}
	return q
}

func nullable(ref *string) interface{} {
	if ref == nil {
		return nil
	}
	return *ref
}
