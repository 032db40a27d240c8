package models

import "github.com/shopspring/decimal"

// Budget is a monthly spending ceiling. Spent caches the paid expenses
// dated inside the month and is refreshed on demand.
type Budget struct {
	Base
	UserID string          `gorm:"type:uuid;not null;uniqueIndex:idx_budgets_user_period" json:"user_id"`
	Name   string          `gorm:"not null" json:"name"`
	Amount decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Month  int             `gorm:"not null;uniqueIndex:idx_budgets_user_period" json:"month"`
	Year   int             `gorm:"not null;uniqueIndex:idx_budgets_user_period" json:"year"`
	Spent  decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"spent"`
}
