package services

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "juntos/internal/errors"
	"juntos/internal/models"
)

// Signs passed to ApplyEffect.
const (
	applySign   int64 = 1
	reverseSign int64 = -1
)

// BalanceDelta returns the signed change a transaction makes to its account:
// income adds, expense subtracts, and sign -1 undoes the effect.
func BalanceDelta(txType models.TransactionType, amount decimal.Decimal, sign int64) decimal.Decimal {
	delta := amount
	if txType == models.TransactionTypeExpense {
		delta = amount.Neg()
	}
	return delta.Mul(decimal.NewFromInt(sign))
}

// ApplyEffect adds the transaction's balance delta to the account. The row is
// locked for update, so callers must pass the open database transaction.
func ApplyEffect(tx *gorm.DB, userID, accountID string, txType models.TransactionType, amount decimal.Decimal, sign int64) error {
	var account models.Account
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND user_id = ?", accountID, userID).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.WithMessage(apperrors.ErrReferentialViolation, "account not found")
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	balance := account.Balance.Add(BalanceDelta(txType, amount, sign))
	if err := tx.Model(&account).Update("balance", balance).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// effectiveState is the subset of a transaction that drives balance and
// goal side effects.
type effectiveState struct {
	IsPaid       bool
	Type         models.TransactionType
	Amount       decimal.Decimal
	CategoryID   string
	AccountID    *string
	CreditCardID *string
	GoalID       *string
}

func stateOf(t *models.Transaction) effectiveState {
	return effectiveState{
		IsPaid:       t.IsPaid,
		Type:         t.Type,
		Amount:       t.Amount,
		CategoryID:   t.CategoryID,
		AccountID:    cloneRef(t.AccountID),
		CreditCardID: cloneRef(t.CreditCardID),
		GoalID:       cloneRef(t.GoalID),
	}
}

// cloneRef copies the id so later writes to the row cannot alias the state.
func cloneRef(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// touchesAccount reports whether the state moves an account balance.
func (s effectiveState) touchesAccount() bool {
	return s.IsPaid && s.AccountID != nil
}

// contributesToGoal reports whether the state counts toward its goal.
func (s effectiveState) contributesToGoal() bool {
	return s.GoalID != nil && s.IsPaid && s.Type == models.TransactionTypeIncome
}

// reconciliation pairs a stored transaction's state with the state it will
// have once a patch is applied.
type reconciliation struct {
	old effectiveState
	new effectiveState
}

// newReconciliation merges patch over the stored transaction. Empty strings
// in the reference fields clear the link.
func newReconciliation(existing *models.Transaction, patch TransactionPatch) reconciliation {
	old := stateOf(existing)
	next := old

	if patch.IsPaid != nil {
		next.IsPaid = *patch.IsPaid
	}
	if patch.Type != nil {
		next.Type = *patch.Type
	}
	if patch.Amount != nil {
		next.Amount = *patch.Amount
	}
	if patch.CategoryID != nil {
		next.CategoryID = *patch.CategoryID
	}
	next.AccountID = mergeRef(next.AccountID, patch.AccountID)
	next.CreditCardID = mergeRef(next.CreditCardID, patch.CreditCardID)
	next.GoalID = mergeRef(next.GoalID, patch.GoalID)

	return reconciliation{old: old, new: next}
}

func mergeRef(current, patch *string) *string {
	if patch == nil {
		return current
	}
	if *patch == "" {
		return nil
	}
	v := *patch
	return &v
}

// run reverses the old balance effect, lets write persist the row, applies
// the new effect and recomputes every goal whose contributing set may have
// changed.
func (r reconciliation) run(tx *gorm.DB, userID string, write func(*gorm.DB) error) error {
	if r.old.touchesAccount() {
		if err := ApplyEffect(tx, userID, *r.old.AccountID, r.old.Type, r.old.Amount, reverseSign); err != nil {
			return err
		}
	}

	if err := write(tx); err != nil {
		return err
	}

	if r.new.touchesAccount() {
		if err := ApplyEffect(tx, userID, *r.new.AccountID, r.new.Type, r.new.Amount, applySign); err != nil {
			return err
		}
	}

	if r.old.GoalID != nil {
		if err := RecomputeGoalProgress(tx, userID, *r.old.GoalID); err != nil {
			return err
		}
	}
	if r.new.contributesToGoal() {
		if err := RecomputeGoalProgress(tx, userID, *r.new.GoalID); err != nil {
			return err
		}
	}
	return nil
}
