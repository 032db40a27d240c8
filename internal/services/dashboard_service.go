package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "juntos/internal/errors"
	"juntos/internal/models"
)

// dashboardService builds the overview screen from stored entities.
type dashboardService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewDashboardService creates a new DashboardServicer.
func NewDashboardService(db *gorm.DB) DashboardServicer {
	return &dashboardService{db: db, now: time.Now}
}

// MonthSummary holds paid income and expense for one calendar month.
type MonthSummary struct {
	Month   int             `json:"month"`
	Year    int             `json:"year"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
}

// CreditCardUsage is one card's spend against its limit this month.
type CreditCardUsage struct {
	CreditCardID    string          `json:"credit_card_id"`
	Name            string          `json:"name"`
	Limit           decimal.Decimal `json:"limit"`
	Spent           decimal.Decimal `json:"spent"`
	Available       decimal.Decimal `json:"available"`
	UsagePercentage float64         `json:"usage_percentage"`
}

// GoalSummary counts goals by completion.
type GoalSummary struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Active    int `json:"active"`
}

// Dashboard is the overview projection.
type Dashboard struct {
	TotalBalance            decimal.Decimal   `json:"total_balance"`
	CurrentMonth            MonthSummary      `json:"current_month"`
	PreviousMonth           MonthSummary      `json:"previous_month"`
	IncomeChangePercentage  float64           `json:"income_change_percentage"`
	ExpenseChangePercentage float64           `json:"expense_change_percentage"`
	TopExpenseCategories    []CategoryTotal   `json:"top_expense_categories"`
	CreditCards             []CreditCardUsage `json:"credit_cards"`
	Goals                   GoalSummary       `json:"goals"`
}

// GetDashboard assembles the overview for the current UTC month.
func (s *dashboardService) GetDashboard(userID string) (*Dashboard, error) {
	now := s.now().UTC()
	curStart, curEnd := monthWindow(now)
	prevStart, _ := monthWindow(curStart.AddDate(0, -1, 0))

	var balances []decimal.Decimal
	if err := s.db.Model(&models.Account{}).Where("user_id = ?", userID).Pluck("balance", &balances).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var txns []models.Transaction
	err := s.db.Preload("Category").
		Where("user_id = ? AND date >= ? AND date < ?", userID, prevStart, curEnd).
		Find(&txns).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var current, previous, paidCurrent []models.Transaction
	for i := range txns {
		t := txns[i]
		inCurrent := !t.Date.Before(curStart)
		if inCurrent {
			current = append(current, t)
		}
		if !t.IsPaid {
			continue
		}
		if inCurrent {
			paidCurrent = append(paidCurrent, t)
		} else {
			previous = append(previous, t)
		}
	}

	dash := &Dashboard{
		TotalBalance:  decimal.Sum(decimal.Zero, balances...),
		CurrentMonth:  summarize(curStart, paidCurrent),
		PreviousMonth: summarize(prevStart, previous),
	}
	dash.IncomeChangePercentage = changePercentage(dash.CurrentMonth.Income, dash.PreviousMonth.Income)
	dash.ExpenseChangePercentage = changePercentage(dash.CurrentMonth.Expense, dash.PreviousMonth.Expense)

	expense := models.TransactionTypeExpense
	dash.TopExpenseCategories = rankCategories(paidCurrent, &expense, topCategoryCount)

	if dash.CreditCards, err = s.cardUsage(userID, current); err != nil {
		return nil, err
	}
	if dash.Goals, err = s.goalSummary(userID); err != nil {
		return nil, err
	}
	return dash, nil
}

// cardUsage counts every expense on a card this month, paid or not.
func (s *dashboardService) cardUsage(userID string, current []models.Transaction) ([]CreditCardUsage, error) {
	var cards []models.CreditCard
	if err := s.db.Where("user_id = ?", userID).Order("name ASC").Find(&cards).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	spent := make(map[string]decimal.Decimal)
	for i := range current {
		t := &current[i]
		if t.CreditCardID != nil && t.Type == models.TransactionTypeExpense {
			spent[*t.CreditCardID] = spent[*t.CreditCardID].Add(t.Amount)
		}
	}

	usage := make([]CreditCardUsage, 0, len(cards))
	for i := range cards {
		c := &cards[i]
		used := spent[c.ID]
		usage = append(usage, CreditCardUsage{
			CreditCardID:    c.ID,
			Name:            c.Name,
			Limit:           c.Limit,
			Spent:           used,
			Available:       c.Limit.Sub(used),
			UsagePercentage: percentage(used, c.Limit),
		})
	}
	return usage, nil
}

func (s *dashboardService) goalSummary(userID string) (GoalSummary, error) {
	var goals []models.Goal
	if err := s.db.Select("target_amount", "current_amount").Where("user_id = ?", userID).Find(&goals).Error; err != nil {
		return GoalSummary{}, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	summary := GoalSummary{Total: len(goals)}
	for i := range goals {
		if goals[i].CurrentAmount.GreaterThanOrEqual(goals[i].TargetAmount) {
			summary.Completed++
		}
	}
	summary.Active = summary.Total - summary.Completed
	return summary, nil
}

func summarize(monthStart time.Time, txns []models.Transaction) MonthSummary {
	income := sumByType(txns, models.TransactionTypeIncome)
	expense := sumByType(txns, models.TransactionTypeExpense)
	return MonthSummary{
		Month:   int(monthStart.Month()),
		Year:    monthStart.Year(),
		Income:  income,
		Expense: expense,
		Net:     income.Sub(expense),
	}
}
