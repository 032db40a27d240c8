package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// Transaction represents a ledger entry. It references exactly one of
// AccountID or CreditCardID; GoalID is only set on income.
type Transaction struct {
	Base
	UserID       string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Description  string          `gorm:"not null" json:"description"`
	Amount       decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Type         TransactionType `gorm:"not null;index" json:"type"`
	Date         time.Time       `gorm:"not null;index" json:"date"`
	IsPaid       bool            `gorm:"not null" json:"is_paid"`
	CategoryID   string          `gorm:"type:uuid;not null;index" json:"category_id"`
	AccountID    *string         `gorm:"type:uuid;index" json:"account_id,omitempty"`
	CreditCardID *string         `gorm:"type:uuid;index" json:"credit_card_id,omitempty"`
	GoalID       *string         `gorm:"type:uuid;index" json:"goal_id,omitempty"`

	// Relationships
	Category   *Category   `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Account    *Account    `gorm:"foreignKey:AccountID" json:"account,omitempty"`
	CreditCard *CreditCard `gorm:"foreignKey:CreditCardID" json:"credit_card,omitempty"`
	Goal       *Goal       `gorm:"foreignKey:GoalID" json:"goal,omitempty"`
}
