package handlers

import (
	"time"

	"ledger/internal/models"
	"ledger/internal/money"
)

// TransactionRecord is the wire form of a transaction. Amounts are decimal strings.
type TransactionRecord struct {
	ID          uint                     `json:"id"`
	CategoryID  uint                     `json:"category_id"`
	BalanceID   uint                     `json:"balance_id"`
	Kind        models.TransactionKind   `json:"kind"`
	Amount      string                   `json:"amount" example:"12.50"`
	Description string                   `json:"description"`
	Date        time.Time                `json:"date"`
	Status      models.TransactionStatus `json:"status"`
	RevertedID  *uint                    `json:"reverted_id,omitempty"`
}

func newTransactionRecord(t *models.Transaction) TransactionRecord {
	return TransactionRecord{
		ID:          t.ID,
		CategoryID:  t.CategoryID,
		BalanceID:   t.BalanceID,
		Kind:        t.Kind,
		Amount:      money.Format(t.Amount),
		Description: t.Description,
		Date:        t.Date,
		Status:      t.Status,
		RevertedID:  t.RevertedID,
	}
}

func newTransactionRecords(txs []models.Transaction) []TransactionRecord {
	out := make([]TransactionRecord, len(txs))
	for i := range txs {
		out[i] = newTransactionRecord(&txs[i])
	}
	return out
}

// BalanceRecord is the wire form of a balance.
type BalanceRecord struct {
	ID             uint      `json:"id"`
	BalanceType    string    `json:"balance_type"`
	CurrentBalance string    `json:"current_balance" example:"800.00"`
	InitialBalance string    `json:"initial_balance" example:"1000.00"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func newBalanceRecord(b *models.Balance) BalanceRecord {
	return BalanceRecord{
		ID:             b.ID,
		BalanceType:    b.BalanceType,
		CurrentBalance: money.Format(b.CurrentBalance),
		InitialBalance: money.Format(b.InitialBalance),
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
}

// ReconciliationRecord is the wire form of a reconciliation result.
type ReconciliationRecord struct {
	BalanceID  uint   `json:"balance_id"`
	Expected   string `json:"expected"`
	Actual     string `json:"actual"`
	Consistent bool   `json:"consistent"`
}

// CategoryRecord is the wire form of a category.
type CategoryRecord struct {
	ID       uint                `json:"id"`
	Name     string              `json:"name"`
	Type     models.CategoryType `json:"type"`
	ParentID *uint               `json:"parent_id,omitempty"`
}

func newCategoryRecord(c *models.Category) CategoryRecord {
	return CategoryRecord{ID: c.ID, Name: c.Name, Type: c.Type, ParentID: c.ParentID}
}
