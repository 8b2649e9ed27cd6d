// Package guard holds the pure precondition checks the ledger runs before
// any mutation. Nothing here touches storage.
package guard

import (
	apperrors "ledger/internal/errors"
	"ledger/internal/models"
)

// AssertOwnership fails with notFound when entity is nil or belongs to
// someone else. Both cases produce the same error so callers cannot learn
// which ids other users own.
func AssertOwnership[T any, P interface {
	*T
	models.Owned
}](entity P, userID string, notFound *apperrors.AppError) error {
	if entity == nil || userID == "" || entity.OwnerID() != userID {
		return notFound
	}
	return nil
}

// AssertSufficient fails with ErrInsufficientFunds when amount exceeds the
// current balance. Spending the whole balance is allowed.
func AssertSufficient(balance *models.Balance, amount int64) error {
	if amount > balance.CurrentBalance {
		return apperrors.ErrInsufficientFunds
	}
	return nil
}

// AssertPositive rejects zero and negative amounts.
func AssertPositive(amount int64) error {
	if amount <= 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Amount must be greater than zero")
	}
	return nil
}
