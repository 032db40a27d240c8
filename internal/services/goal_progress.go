package services

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "juntos/internal/errors"
	"juntos/internal/models"
)

const millisPerDay = 86400000

var hundred = decimal.NewFromInt(100)

// GoalProgress is the read projection of a goal.
type GoalProgress struct {
	GoalID        string          `json:"goal_id"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	Percentage    float64         `json:"percentage"`
	Remaining     decimal.Decimal `json:"remaining"`
	IsCompleted   bool            `json:"is_completed"`
	DaysRemaining int             `json:"days_remaining"`
}

// RecomputeGoalProgress overwrites the goal's current amount with the sum of
// its paid income transactions. Safe to call repeatedly.
func RecomputeGoalProgress(tx *gorm.DB, userID, goalID string) error {
	var amounts []decimal.Decimal
	err := tx.Model(&models.Transaction{}).
		Where("user_id = ? AND goal_id = ? AND type = ? AND is_paid = ?",
			userID, goalID, models.TransactionTypeIncome, true).
		Pluck("amount", &amounts).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	total := decimal.Sum(decimal.Zero, amounts...)

	err = tx.Model(&models.Goal{}).
		Where("id = ? AND user_id = ?", goalID, userID).
		Update("current_amount", total).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ComputeGoalProgress projects a goal at the instant now. DaysRemaining is
// negative once the target date has passed.
func ComputeGoalProgress(goal *models.Goal, now time.Time) GoalProgress {
	return GoalProgress{
		GoalID:        goal.ID,
		TargetAmount:  goal.TargetAmount,
		CurrentAmount: goal.CurrentAmount,
		Percentage:    percentage(goal.CurrentAmount, goal.TargetAmount),
		Remaining:     goal.TargetAmount.Sub(goal.CurrentAmount),
		IsCompleted:   goal.CurrentAmount.GreaterThanOrEqual(goal.TargetAmount),
		DaysRemaining: daysUntil(goal.TargetDate, now),
	}
}

func daysUntil(target, now time.Time) int {
	ms := target.Sub(now).Milliseconds()
	return int(math.Ceil(float64(ms) / millisPerDay))
}

// percentage returns part/whole*100 rounded to 2 places, or 0 when whole is 0.
func percentage(part, whole decimal.Decimal) float64 {
	if whole.IsZero() {
		return 0
	}
	pct, _ := part.Div(whole).Mul(hundred).Round(2).Float64()
	return pct
}

// changePercentage is the month-over-month delta, 0 when the base is 0.
func changePercentage(current, previous decimal.Decimal) float64 {
	if previous.IsZero() {
		return 0
	}
	pct, _ := current.Sub(previous).Div(previous.Abs()).Mul(hundred).Round(2).Float64()
	return pct
}
