package services

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "juntos/internal/errors"
	"juntos/internal/models"
)

// budgetService handles budget-related business logic.
type budgetService struct {
	db *gorm.DB
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

// CreateBudget creates the budget for a month and fills in what has been
// spent so far.
func (s *budgetService) CreateBudget(userID string, input BudgetInput) (*models.Budget, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget name is required")
	}
	if err := positiveAmount("amount", input.Amount); err != nil {
		return nil, err
	}
	if err := validatePeriod(input.Month, input.Year); err != nil {
		return nil, err
	}

	taken, err := s.periodTaken(userID, input.Month, input.Year, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.ErrDuplicateBudget
	}

	budget := &models.Budget{
		UserID: userID,
		Name:   name,
		Amount: input.Amount,
		Month:  input.Month,
		Year:   input.Year,
		Spent:  decimal.Zero,
	}
	if err := s.db.Create(budget).Error; err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.ErrDuplicateBudget
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.UpdateSpent(userID, input.Month, input.Year)
}

// GetUserBudgets lists budgets, latest period first, optionally for one year.
func (s *budgetService) GetUserBudgets(userID string, year *int) ([]models.Budget, error) {
	query := s.db.Where("user_id = ?", userID)
	if year != nil {
		query = query.Where("year = ?", *year)
	}

	budgets := []models.Budget{}
	if err := query.Order("year DESC").Order("month DESC").Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budgets, nil
}

// GetBudgetByID returns a budget by ID if it belongs to the user.
func (s *budgetService) GetBudgetByID(userID, budgetID string) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// GetBudgetByMonthYear refreshes and returns the budget for a period.
func (s *budgetService) GetBudgetByMonthYear(userID string, month, year int) (*models.Budget, error) {
	if err := validatePeriod(month, year); err != nil {
		return nil, err
	}
	return s.UpdateSpent(userID, month, year)
}

// UpdateBudget updates an existing budget's fields.
func (s *budgetService) UpdateBudget(userID, budgetID string, fields BudgetUpdateFields) (*models.Budget, error) {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if fields.Name != nil {
		name := strings.TrimSpace(*fields.Name)
		if name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget name cannot be empty")
		}
		updates["name"] = name
	}
	if fields.Amount != nil {
		if err := positiveAmount("amount", *fields.Amount); err != nil {
			return nil, err
		}
		updates["amount"] = *fields.Amount
	}

	month, year := budget.Month, budget.Year
	if fields.Month != nil {
		month = *fields.Month
	}
	if fields.Year != nil {
		year = *fields.Year
	}
	periodChanged := month != budget.Month || year != budget.Year
	if periodChanged {
		if err := validatePeriod(month, year); err != nil {
			return nil, err
		}
		taken, err := s.periodTaken(userID, month, year, budget.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperrors.ErrDuplicateBudget
		}
		updates["month"] = month
		updates["year"] = year
	}

	if len(updates) > 0 {
		if err := s.db.Model(budget).Updates(updates).Error; err != nil {
			if apperrors.IsUniqueViolation(err) {
				return nil, apperrors.ErrDuplicateBudget
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	if periodChanged {
		return s.UpdateSpent(userID, month, year)
	}
	return s.GetBudgetByID(userID, budgetID)
}

// UpdateSpent recomputes the period's spent amount as the sum of paid
// expenses dated inside the month and stores it on the budget.
func (s *budgetService) UpdateSpent(userID string, month, year int) (*models.Budget, error) {
	if err := validatePeriod(month, year); err != nil {
		return nil, err
	}

	var budget models.Budget
	err := s.db.Where("user_id = ? AND month = ? AND year = ?", userID, month, year).First(&budget).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	start, end := monthRange(year, time.Month(month))
	var amounts []decimal.Decimal
	err = s.db.Model(&models.Transaction{}).
		Where("user_id = ? AND type = ? AND is_paid = ? AND date >= ? AND date < ?",
			userID, models.TransactionTypeExpense, true, start, end).
		Pluck("amount", &amounts).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	spent := decimal.Sum(decimal.Zero, amounts...)
	if err := s.db.Model(&budget).Update("spent", spent).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	budget.Spent = spent
	return &budget, nil
}

// DeleteBudget deletes a budget if it belongs to the user.
func (s *budgetService) DeleteBudget(userID, budgetID string) error {
	result := s.db.Where("id = ? AND user_id = ?", budgetID, userID).Delete(&models.Budget{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrBudgetNotFound
	}
	return nil
}

func (s *budgetService) periodTaken(userID string, month, year int, excludeID string) (bool, error) {
	query := s.db.Model(&models.Budget{}).Where("user_id = ? AND month = ? AND year = ?", userID, month, year)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count > 0, nil
}

func validatePeriod(month, year int) error {
	if month < 1 || month > 12 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "month must be between 1 and 12")
	}
	if year < 1900 || year > 9999 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid year")
	}
	return nil
}
