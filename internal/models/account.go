package models

import "github.com/shopspring/decimal"

// AccountType represents the type of account
type AccountType string

const (
	AccountTypeChecking   AccountType = "checking"
	AccountTypeSavings    AccountType = "savings"
	AccountTypeInvestment AccountType = "investment"
	AccountTypeCash       AccountType = "cash"
)

// AccountTypes lists every supported account type.
var AccountTypes = []AccountType{AccountTypeChecking, AccountTypeSavings, AccountTypeInvestment, AccountTypeCash}

// Account represents a bank or cash account. Balance is only ever changed
// by paid transactions and transfers, and may go negative.
type Account struct {
	Base
	UserID  string          `gorm:"type:uuid;not null;uniqueIndex:idx_accounts_user_name" json:"user_id"`
	Name    string          `gorm:"not null;uniqueIndex:idx_accounts_user_name" json:"name"`
	Type    AccountType     `gorm:"not null" json:"type"`
	Balance decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"balance"`
}
