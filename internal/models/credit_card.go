package models

import "github.com/shopspring/decimal"

// CreditCard represents a credit card. Its spend is derived from linked
// expense transactions and never stored.
type CreditCard struct {
	Base
	UserID     string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Name       string          `gorm:"not null" json:"name"`
	Limit      decimal.Decimal `gorm:"column:credit_limit;type:decimal(15,2);not null" json:"limit"`
	ClosingDay int             `gorm:"not null" json:"closing_day"`
	DueDay     int             `gorm:"not null" json:"due_day"`
}
