package services

import (
	"github.com/shopspring/decimal"

	apperrors "juntos/internal/errors"
)

// moneyScale is the number of decimal places every money column stores.
const moneyScale = 2

// positiveAmount rejects amounts that are not above zero or that are finer
// than a cent.
func positiveAmount(field string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperrors.WithMessagef(apperrors.ErrInvalidInput, "%s must be greater than zero", field)
	}
	return centsOnly(field, amount)
}

// centsOnly rejects amounts the DECIMAL(15,2) columns would round.
func centsOnly(field string, amount decimal.Decimal) error {
	if !amount.Equal(amount.Round(moneyScale)) {
		return apperrors.WithMessagef(apperrors.ErrInvalidInput, "%s must have at most %d decimal places", field, moneyScale)
	}
	return nil
}
