package services

import (
	"context"
	"errors"
	"time"

	"ledger/internal/audit"
	apperrors "ledger/internal/errors"
	"ledger/internal/guard"
	"ledger/internal/logger"
	"ledger/internal/models"
	"ledger/internal/pagination"
	"ledger/internal/store"
)

// transactionService is the ledger transaction engine. Every mutation runs
// in one store unit, so a transaction and its balance effect commit together.
type transactionService struct {
	ledger store.Ledger
	now    func() time.Time
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(ledger store.Ledger) TransactionServicer {
	return &transactionService{
		ledger: ledger,
		now:    time.Now,
	}
}

// CreateTransaction records a debit against one of the user's balances under
// one of the user's categories.
func (s *transactionService) CreateTransaction(ctx context.Context, userID string, categoryID uint, in CreateTransactionInput) (*models.Transaction, error) {
	if err := guard.AssertPositive(in.Amount); err != nil {
		return nil, err
	}
	if in.BalanceID == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "balance ID is required")
	}
	if in.Status == "" {
		in.Status = models.TransactionStatusCleared
	}
	if !in.Status.Valid() {
		return nil, apperrors.ErrInvalidStatus
	}

	var created *models.Transaction
	err := s.ledger.RunAtomic(ctx, func(u store.Unit) error {
		balance, err := u.LockBalance(in.BalanceID)
		if err := lookupError(err); err != nil {
			return err
		}
		if err := guard.AssertOwnership(balance, userID, apperrors.ErrBalanceNotFound); err != nil {
			return err
		}

		category, err := u.GetCategory(categoryID)
		if err := lookupError(err); err != nil {
			return err
		}
		if err := guard.AssertOwnership(category, userID, apperrors.ErrCategoryNotFound); err != nil {
			return err
		}

		if err := guard.AssertSufficient(balance, in.Amount); err != nil {
			return err
		}

		tx := &models.Transaction{
			UserID:      userID,
			BalanceID:   balance.ID,
			CategoryID:  category.ID,
			Kind:        models.TransactionKindOrdinary,
			Amount:      in.Amount,
			Description: in.Description,
			Status:      in.Status,
			Date:        s.now(),
		}
		if err := u.Insert(tx); err != nil {
			return err
		}
		if err := u.AdjustBalance(balance, -in.Amount); err != nil {
			return err
		}

		created = tx
		return nil
	})
	if err != nil {
		return nil, storeError(err)
	}

	logger.Get().Debugw("transaction created",
		"user_id", userID,
		"transaction_id", created.ID,
		"balance_id", created.BalanceID,
		"amount", created.Amount,
	)
	return created, nil
}

// ListByCategory returns the user's visible transactions of one category in
// insertion order.
func (s *transactionService) ListByCategory(ctx context.Context, categoryID uint, userID string) ([]models.Transaction, error) {
	r := s.ledger.Reader(ctx)

	category, err := r.GetCategory(categoryID)
	if err := lookupError(err); err != nil {
		return nil, storeError(err)
	}
	if err := guard.AssertOwnership(category, userID, apperrors.ErrCategoryNotFound); err != nil {
		return nil, err
	}

	txs, err := r.ListTransactions(userID, store.InCategory(categoryID), store.NotTrashed())
	if err != nil {
		return nil, storeError(err)
	}
	return txs, nil
}

// ListHistory returns all of the user's visible transactions in insertion order.
func (s *transactionService) ListHistory(ctx context.Context, userID string) ([]models.Transaction, error) {
	txs, err := s.ledger.Reader(ctx).ListTransactions(userID, store.NotTrashed())
	if err != nil {
		return nil, storeError(err)
	}
	return txs, nil
}

// ListHistoryPage returns one page of the user's visible transactions.
func (s *transactionService) ListHistoryPage(ctx context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()
	r := s.ledger.Reader(ctx)

	totalItems, err := r.CountTransactions(store.OwnedBy(userID), store.NotTrashed())
	if err != nil {
		return nil, storeError(err)
	}

	txs, err := r.ListTransactions(userID, store.NotTrashed(), pagination.Paginate(page))
	if err != nil {
		return nil, storeError(err)
	}

	result := pagination.NewPageResponse(txs, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// SoftDelete hides a transaction from listings. The balance is not touched.
func (s *transactionService) SoftDelete(ctx context.Context, transactionID uint, userID string) error {
	err := s.ledger.RunAtomic(ctx, func(u store.Unit) error {
		tx, err := s.ownedTransaction(u, transactionID, userID)
		if err != nil {
			return err
		}
		if tx.Trash {
			return nil
		}
		if err := u.SetTrash(tx, true); err != nil {
			return err
		}
		return s.record(u, userID, audit.ActionTransactionTrashed, tx.ID, map[string]any{"trash": true})
	})
	return storeError(err)
}

// HardDelete erases a transaction row. The balance is not touched; the audit
// entry keeps a snapshot of the erased row.
func (s *transactionService) HardDelete(ctx context.Context, transactionID uint, userID string) error {
	err := s.ledger.RunAtomic(ctx, func(u store.Unit) error {
		tx, err := s.ownedTransaction(u, transactionID, userID)
		if err != nil {
			return err
		}
		snapshot := audit.Snapshot(tx)
		if err := u.Delete(tx); err != nil {
			return err
		}
		return s.record(u, userID, audit.ActionTransactionDeleted, tx.ID, snapshot)
	})
	if err != nil {
		return storeError(err)
	}

	logger.Get().Infow("transaction permanently deleted", "user_id", userID, "transaction_id", transactionID)
	return nil
}

// Revert appends a compensating record for a transaction and credits its
// amount back to the balance. The original row is left as it was.
func (s *transactionService) Revert(ctx context.Context, transactionID uint, userID string) (*models.Transaction, error) {
	var revert *models.Transaction
	err := s.ledger.RunAtomic(ctx, func(u store.Unit) error {
		original, err := s.ownedTransaction(u, transactionID, userID)
		if err != nil {
			return err
		}

		existing, err := u.FindRevertOf(original.ID)
		if err != nil {
			return err
		}
		logged, err := u.CountAuditLogs(
			store.OwnedBy(userID),
			store.WithAction(audit.ActionTransactionReverted),
			store.ForResource(audit.ResourceTransaction, original.ID),
		)
		if err != nil {
			return err
		}
		if err := audit.CheckRevertable(original, existing, logged); err != nil {
			return err
		}

		balance, err := u.LockBalance(original.BalanceID)
		if err := lookupError(err); err != nil {
			return err
		}
		if err := guard.AssertOwnership(balance, userID, apperrors.ErrBalanceNotFound); err != nil {
			return err
		}

		r := audit.NewRevert(original, s.now())
		if err := u.Insert(r); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return apperrors.Wrap(apperrors.ErrAlreadyReverted, err)
			}
			return err
		}
		if err := u.AdjustBalance(balance, original.Amount); err != nil {
			return err
		}
		if err := s.record(u, userID, audit.ActionTransactionReverted, original.ID, map[string]any{
			"revert_id": r.ID,
			"amount":    original.Amount,
		}); err != nil {
			return err
		}

		revert = r
		return nil
	})
	if err != nil {
		return nil, storeError(err)
	}

	logger.Get().Infow("transaction reverted",
		"user_id", userID,
		"transaction_id", transactionID,
		"revert_id", revert.ID,
	)
	return revert, nil
}

// SetStatus changes the clearing status of a transaction.
func (s *transactionService) SetStatus(ctx context.Context, transactionID uint, userID string, status models.TransactionStatus) (*models.Transaction, error) {
	if !status.Valid() {
		return nil, apperrors.ErrInvalidStatus
	}

	var updated *models.Transaction
	err := s.ledger.RunAtomic(ctx, func(u store.Unit) error {
		tx, err := s.ownedTransaction(u, transactionID, userID)
		if err != nil {
			return err
		}
		if tx.Status == status {
			updated = tx
			return nil
		}

		previous := tx.Status
		if err := u.SetTransactionStatus(tx, status); err != nil {
			return err
		}
		if err := s.record(u, userID, audit.ActionStatusChanged, tx.ID, map[string]any{
			"from": previous,
			"to":   status,
		}); err != nil {
			return err
		}

		updated = tx
		return nil
	})
	if err != nil {
		return nil, storeError(err)
	}
	return updated, nil
}

// ownedTransaction loads a transaction and checks it belongs to userID.
func (s *transactionService) ownedTransaction(u store.Unit, transactionID uint, userID string) (*models.Transaction, error) {
	tx, err := u.GetTransaction(transactionID)
	if err := lookupError(err); err != nil {
		return nil, err
	}
	if err := guard.AssertOwnership(tx, userID, apperrors.ErrTransactionNotFound); err != nil {
		return nil, err
	}
	return tx, nil
}

// record writes an audit entry for a transaction inside the current unit.
func (s *transactionService) record(u store.Unit, userID, action string, transactionID uint, changes map[string]any) error {
	entry, err := audit.Entry(userID, action, audit.ResourceTransaction, transactionID, changes)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return u.Insert(entry)
}
