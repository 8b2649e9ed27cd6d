// Package audit decides what the ledger keeps when history changes: how a
// revert record is built, which transactions may be reverted, and the audit
// log entries written for destructive operations.
package audit

import (
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	apperrors "ledger/internal/errors"
	"ledger/internal/models"
)

// RevertPrefix starts the description of every revert record.
const RevertPrefix = "REVERT: "

// Audit log actions.
const (
	ActionTransactionTrashed  = "TRANSACTION_TRASHED"
	ActionTransactionDeleted  = "TRANSACTION_DELETED"
	ActionTransactionReverted = "TRANSACTION_REVERTED"
	ActionStatusChanged       = "TRANSACTION_STATUS_CHANGED"
	ActionBalanceDeleted      = "BALANCE_DELETED"
)

// Audit log resource types.
const (
	ResourceTransaction = "transaction"
	ResourceBalance     = "balance"
)

// RevertDescription prefixes desc, cutting it so it fits the description column.
func RevertDescription(desc string) string {
	out := RevertPrefix + desc
	if len(out) <= models.MaxDescriptionLen {
		return out
	}
	out = out[:models.MaxDescriptionLen]
	for !utf8.ValidString(out) {
		out = out[:len(out)-1]
	}
	return out
}

// CheckRevertable reports whether original may be reverted given the revert
// record already stored for it, if any, and the number of revert entries in
// the audit trail. The trail still counts after the revert row is purged.
func CheckRevertable(original, existing *models.Transaction, logged int64) error {
	if existing != nil || logged > 0 {
		return apperrors.ErrAlreadyReverted
	}
	if original.IsRevert() {
		return apperrors.ErrInvalidRevertTarget
	}
	return nil
}

// NewRevert builds the compensating record for original. It credits the same
// amount back to the same balance under the same category.
func NewRevert(original *models.Transaction, now time.Time) *models.Transaction {
	id := original.ID
	return &models.Transaction{
		UserID:      original.UserID,
		BalanceID:   original.BalanceID,
		CategoryID:  original.CategoryID,
		Kind:        models.TransactionKindRevert,
		Amount:      original.Amount,
		Description: RevertDescription(original.Description),
		Status:      models.TransactionStatusCleared,
		Date:        now,
		RevertedID:  &id,
	}
}

// Entry builds an audit log row. changes is stored as JSON.
func Entry(userID, action, resourceType string, resourceID uint, changes map[string]any) (*models.AuditLog, error) {
	entry := &models.AuditLog{
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
	if len(changes) > 0 {
		raw, err := json.Marshal(changes)
		if err != nil {
			return nil, err
		}
		entry.Changes = string(raw)
	}
	return entry, nil
}

// Snapshot captures the persisted fields of t.
func Snapshot(t *models.Transaction) map[string]any {
	snap := map[string]any{
		"id":          t.ID,
		"user_id":     t.UserID,
		"balance_id":  t.BalanceID,
		"category_id": t.CategoryID,
		"kind":        t.Kind,
		"amount":      t.Amount,
		"description": t.Description,
		"status":      t.Status,
		"trash":       t.Trash,
		"date":        t.Date,
	}
	if t.RevertedID != nil {
		snap["reverted_id"] = *t.RevertedID
	}
	return snap
}

// NetEffect recomputes a balance from its seed and every transaction ever
// applied to it. Trashed rows still count: trashing never moves money.
func NetEffect(initial int64, txs []models.Transaction) int64 {
	net := initial
	for i := range txs {
		net += txs[i].Effect()
	}
	return net
}

// PurgedEffect adds up what permanently deleted rows of balanceID had done to
// it, read back from the snapshots in TRANSACTION_DELETED entries. Entries of
// other actions or other balances are skipped.
func PurgedEffect(balanceID uint, entries []models.AuditLog) (int64, error) {
	var net int64
	for i := range entries {
		if entries[i].Action != ActionTransactionDeleted {
			continue
		}
		var snap struct {
			BalanceID uint                   `json:"balance_id"`
			Kind      models.TransactionKind `json:"kind"`
			Amount    int64                  `json:"amount"`
		}
		if err := json.Unmarshal([]byte(entries[i].Changes), &snap); err != nil {
			return 0, fmt.Errorf("audit log %d: %w", entries[i].ID, err)
		}
		if snap.BalanceID != balanceID {
			continue
		}
		t := models.Transaction{Kind: snap.Kind, Amount: snap.Amount}
		net += t.Effect()
	}
	return net, nil
}
