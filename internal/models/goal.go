package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Goal is a savings target. CurrentAmount always equals the sum of the
// paid income transactions linked to it.
type Goal struct {
	Base
	UserID        string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Title         string          `gorm:"not null" json:"title"`
	Description   *string         `json:"description,omitempty"`
	TargetAmount  decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"target_amount"`
	CurrentAmount decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"current_amount"`
	TargetDate    time.Time       `gorm:"not null" json:"target_date"`
}
