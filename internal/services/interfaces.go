package services

import (
	"context"

	"ledger/internal/models"
	"ledger/internal/pagination"
)

// CreateTransactionInput carries the fields of a new ledger entry. Amount is
// in minor units and must be positive.
type CreateTransactionInput struct {
	BalanceID   uint
	Amount      int64
	Description string
	Status      models.TransactionStatus
}

// TransactionServicer defines the contract for the ledger transaction engine.
type TransactionServicer interface {
	CreateTransaction(ctx context.Context, userID string, categoryID uint, in CreateTransactionInput) (*models.Transaction, error)
	ListByCategory(ctx context.Context, categoryID uint, userID string) ([]models.Transaction, error)
	ListHistory(ctx context.Context, userID string) ([]models.Transaction, error)
	ListHistoryPage(ctx context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
	SoftDelete(ctx context.Context, transactionID uint, userID string) error
	HardDelete(ctx context.Context, transactionID uint, userID string) error
	Revert(ctx context.Context, transactionID uint, userID string) (*models.Transaction, error)
	SetStatus(ctx context.Context, transactionID uint, userID string, status models.TransactionStatus) (*models.Transaction, error)
}

// Reconciliation compares a balance with the value recomputed from its history.
type Reconciliation struct {
	BalanceID  uint  `json:"balance_id"`
	Expected   int64 `json:"expected"`
	Actual     int64 `json:"actual"`
	Consistent bool  `json:"consistent"`
}

// BalanceServicer defines the contract for balance-related business logic.
type BalanceServicer interface {
	CreateBalance(ctx context.Context, userID, balanceType string, initial int64) (*models.Balance, error)
	GetUserBalances(ctx context.Context, userID string) ([]models.Balance, error)
	GetBalanceByID(ctx context.Context, userID string, balanceID uint) (*models.Balance, error)
	DeleteBalance(ctx context.Context, userID string, balanceID uint) error
	Reconcile(ctx context.Context, userID string, balanceID uint) (*Reconciliation, error)
}

// CategoryUpdate holds the optional fields of a category update. Nil fields
// are left unchanged.
type CategoryUpdate struct {
	Name     *string
	Type     *models.CategoryType
	ParentID *uint
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(ctx context.Context, userID, name string, categoryType models.CategoryType, parentID *uint) (*models.Category, error)
	GetUserCategories(ctx context.Context, userID string) ([]models.Category, error)
	GetCategoryByID(ctx context.Context, userID string, categoryID uint) (*models.Category, error)
	UpdateCategory(ctx context.Context, userID string, categoryID uint, update CategoryUpdate) (*models.Category, error)
	DeleteCategory(ctx context.Context, userID string, categoryID uint) error
}

// AuditServicer defines the contract for reading the audit trail.
type AuditServicer interface {
	GetUserAuditLogs(ctx context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.AuditLog], error)
}
