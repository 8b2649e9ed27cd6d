package models

import (
	"time"

	"gorm.io/gorm"
)

// MaxDescriptionLen is the column width of Transaction.Description.
const MaxDescriptionLen = 255

// TransactionKind discriminates ordinary ledger entries from revert records.
type TransactionKind string

const (
	TransactionKindOrdinary TransactionKind = "ordinary"
	TransactionKindRevert   TransactionKind = "revert"
)

// TransactionStatus represents the clearing state of a transaction
type TransactionStatus string

const (
	TransactionStatusCleared    TransactionStatus = "Cleared"
	TransactionStatusPending    TransactionStatus = "Pending"
	TransactionStatusReconciled TransactionStatus = "Reconciled"
)

// Valid reports whether s is a known status.
func (s TransactionStatus) Valid() bool {
	switch s {
	case TransactionStatusCleared, TransactionStatusPending, TransactionStatusReconciled:
		return true
	}
	return false
}

// Transaction is a ledger entry against a Balance. Amount is always a
// positive magnitude in minor units: ordinary entries debit the balance,
// revert entries credit it back.
type Transaction struct {
	Base
	UserID      string            `gorm:"type:varchar(255);not null;index" json:"user_id"`
	BalanceID   uint              `gorm:"not null;index" json:"balance_id"`
	CategoryID  uint              `gorm:"not null;index" json:"category_id"`
	Kind        TransactionKind   `gorm:"type:varchar(20);not null" json:"kind"`
	Amount      int64             `gorm:"type:bigint;not null" json:"amount"`
	Description string            `gorm:"type:varchar(255)" json:"description"`
	Status      TransactionStatus `gorm:"type:varchar(20);not null" json:"status"`
	Trash       bool              `gorm:"not null" json:"trash"`
	Date        time.Time         `gorm:"not null" json:"date"`

	// RevertedID links a revert record to the transaction it reverses.
	RevertedID *uint `gorm:"uniqueIndex" json:"reverted_id,omitempty"`

	// Relationships
	Balance  *Balance     `gorm:"foreignKey:BalanceID;constraint:OnDelete:CASCADE" json:"-"`
	Category *Category    `gorm:"foreignKey:CategoryID" json:"-"`
	Reverted *Transaction `gorm:"foreignKey:RevertedID;constraint:OnDelete:SET NULL" json:"-"`
}

// OwnerID implements Owned.
func (t *Transaction) OwnerID() string { return t.UserID }

// IsRevert reports whether t is a revert record.
func (t *Transaction) IsRevert() bool { return t.Kind == TransactionKindRevert }

// Effect returns the signed change this transaction applied to its balance.
func (t *Transaction) Effect() int64 {
	if t.IsRevert() {
		return t.Amount
	}
	return -t.Amount
}

// BeforeCreate fills in the kind, status and date defaults.
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.Kind == "" {
		t.Kind = TransactionKindOrdinary
	}
	if t.Status == "" {
		t.Status = TransactionStatusCleared
	}
	if t.Date.IsZero() {
		t.Date = time.Now()
	}
	return nil
}
