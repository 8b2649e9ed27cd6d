package services

import (
	"errors"

	apperrors "ledger/internal/errors"
	"ledger/internal/store"
)

// storeError maps a store failure onto an AppError. AppErrors pass through.
func storeError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, store.ErrConflict):
		return apperrors.Wrap(apperrors.ErrConflict, err)
	case errors.Is(err, store.ErrNotFound):
		return apperrors.Wrap(apperrors.ErrNotFound, err)
	case errors.Is(err, store.ErrDuplicate):
		return apperrors.Wrap(apperrors.ErrConflict, err)
	default:
		return apperrors.Wrap(apperrors.ErrStorageFailure, err)
	}
}

// lookupError drops store.ErrNotFound so the ownership guard reports absence
// with the entity's own not-found error.
func lookupError(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return err
}
