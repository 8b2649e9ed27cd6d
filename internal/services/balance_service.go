package services

import (
	"context"
	"strings"

	"ledger/internal/audit"
	apperrors "ledger/internal/errors"
	"ledger/internal/guard"
	"ledger/internal/logger"
	"ledger/internal/models"
	"ledger/internal/store"
)

// balanceService handles balance-related business logic.
type balanceService struct {
	ledger store.Ledger
}

// NewBalanceService creates a new BalanceServicer.
func NewBalanceService(ledger store.Ledger) BalanceServicer {
	return &balanceService{ledger: ledger}
}

// CreateBalance opens a balance seeded with initial minor units.
func (s *balanceService) CreateBalance(ctx context.Context, userID, balanceType string, initial int64) (*models.Balance, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	if initial < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "initial balance cannot be negative")
	}

	balance := &models.Balance{
		UserID:         userID,
		BalanceType:    strings.TrimSpace(balanceType),
		CurrentBalance: initial,
		InitialBalance: initial,
	}
	err := s.ledger.RunAtomic(ctx, func(u store.Unit) error {
		return u.Insert(balance)
	})
	if err != nil {
		return nil, storeError(err)
	}
	return balance, nil
}

// GetUserBalances lists the user's balances.
func (s *balanceService) GetUserBalances(ctx context.Context, userID string) ([]models.Balance, error) {
	balances, err := s.ledger.Reader(ctx).ListBalances(userID)
	if err != nil {
		return nil, storeError(err)
	}
	return balances, nil
}

// GetBalanceByID retrieves a balance by ID for a specific user
func (s *balanceService) GetBalanceByID(ctx context.Context, userID string, balanceID uint) (*models.Balance, error) {
	balance, err := s.ledger.Reader(ctx).GetBalance(balanceID)
	if err := lookupError(err); err != nil {
		return nil, storeError(err)
	}
	if err := guard.AssertOwnership(balance, userID, apperrors.ErrBalanceNotFound); err != nil {
		return nil, err
	}
	return balance, nil
}

// DeleteBalance removes a balance together with every transaction on it.
func (s *balanceService) DeleteBalance(ctx context.Context, userID string, balanceID uint) error {
	var removed int64
	err := s.ledger.RunAtomic(ctx, func(u store.Unit) error {
		balance, err := u.LockBalance(balanceID)
		if err := lookupError(err); err != nil {
			return err
		}
		if err := guard.AssertOwnership(balance, userID, apperrors.ErrBalanceNotFound); err != nil {
			return err
		}

		removed, err = u.DeleteTransactionsOfBalance(balance.ID)
		if err != nil {
			return err
		}
		if err := u.Delete(balance); err != nil {
			return err
		}

		entry, err := audit.Entry(userID, audit.ActionBalanceDeleted, audit.ResourceBalance, balance.ID, map[string]any{
			"balance_type":         balance.BalanceType,
			"current_balance":      balance.CurrentBalance,
			"initial_balance":      balance.InitialBalance,
			"transactions_removed": removed,
		})
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return u.Insert(entry)
	})
	if err != nil {
		return storeError(err)
	}

	logger.Get().Infow("balance deleted",
		"user_id", userID,
		"balance_id", balanceID,
		"transactions_removed", removed,
	)
	return nil
}

// Reconcile recomputes a balance from its seed and full history, trashed
// rows included, and compares it with the stored value. Permanently deleted
// rows are taken from their TRANSACTION_DELETED snapshots.
func (s *balanceService) Reconcile(ctx context.Context, userID string, balanceID uint) (*Reconciliation, error) {
	var result *Reconciliation
	err := s.ledger.RunAtomic(ctx, func(u store.Unit) error {
		balance, err := u.GetBalance(balanceID)
		if err := lookupError(err); err != nil {
			return err
		}
		if err := guard.AssertOwnership(balance, userID, apperrors.ErrBalanceNotFound); err != nil {
			return err
		}

		txs, err := u.ListTransactions(userID, store.OnBalance(balance.ID))
		if err != nil {
			return err
		}

		deleted, err := u.ListAuditLogs(userID, store.WithAction(audit.ActionTransactionDeleted))
		if err != nil {
			return err
		}
		purged, err := audit.PurgedEffect(balance.ID, deleted)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		expected := audit.NetEffect(balance.InitialBalance, txs) + purged
		result = &Reconciliation{
			BalanceID:  balance.ID,
			Expected:   expected,
			Actual:     balance.CurrentBalance,
			Consistent: expected == balance.CurrentBalance,
		}
		return nil
	})
	if err != nil {
		return nil, storeError(err)
	}

	if !result.Consistent {
		logger.Get().Warnw("balance drift detected",
			"user_id", userID,
			"balance_id", balanceID,
			"expected", result.Expected,
			"actual", result.Actual,
		)
	}
	return result, nil
}
