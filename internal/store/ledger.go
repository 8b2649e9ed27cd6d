// Package store is the persistence layer of the ledger. All reads and writes
// go through a Reader or a Unit; a Unit is handed out by Ledger.RunAtomic and
// commits or rolls back as a whole.
package store

import (
	"context"
	"time"

	"ledger/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Scope narrows a query. pagination.Paginate produces one too.
type Scope = func(*gorm.DB) *gorm.DB

// Reader is the read side of the store. Lookups by id are not owner-scoped;
// ownership is checked by the caller.
type Reader interface {
	GetBalance(id uint) (*models.Balance, error)
	GetCategory(id uint) (*models.Category, error)
	GetTransaction(id uint) (*models.Transaction, error)
	// FindRevertOf returns the revert record of originalID, or nil if none exists.
	FindRevertOf(originalID uint) (*models.Transaction, error)

	ListBalances(userID string, scopes ...Scope) ([]models.Balance, error)
	ListCategories(userID string, scopes ...Scope) ([]models.Category, error)
	ListTransactions(userID string, scopes ...Scope) ([]models.Transaction, error)
	ListAuditLogs(userID string, scopes ...Scope) ([]models.AuditLog, error)

	CountTransactions(scopes ...Scope) (int64, error)
	CountCategories(scopes ...Scope) (int64, error)
	CountAuditLogs(scopes ...Scope) (int64, error)
}

// Unit is a Reader plus writes, all bound to one database transaction.
type Unit interface {
	Reader

	// LockBalance reads a balance and holds a row lock on it until the unit ends.
	LockBalance(id uint) (*models.Balance, error)
	// AdjustBalance adds delta to b's current balance. It fails with
	// ErrConflict if b was modified since it was read.
	AdjustBalance(b *models.Balance, delta int64) error

	Insert(entity any) error
	SetTransactionStatus(t *models.Transaction, status models.TransactionStatus) error
	SetTrash(t *models.Transaction, trash bool) error
	UpdateCategory(c *models.Category, fields map[string]any) error
	Delete(entity any) error
	DeleteTransactionsOfBalance(balanceID uint) (int64, error)
}

// Ledger hands out readers and atomic units.
type Ledger interface {
	Reader(ctx context.Context) Reader
	RunAtomic(ctx context.Context, fn func(Unit) error) error
}

// Store implements Ledger on gorm.
type Store struct {
	db       *gorm.DB
	lockRows bool
}

var _ Ledger = (*Store)(nil)

// New creates a Store. Row locks are taken on every dialect except sqlite,
// which serializes writers on its own.
func New(db *gorm.DB) *Store {
	return &Store{
		db:       db,
		lockRows: db.Dialector.Name() != "sqlite",
	}
}

// Reader returns a reader bound to ctx, outside of any unit.
func (s *Store) Reader(ctx context.Context) Reader {
	return &session{db: s.db.WithContext(ctx)}
}

// RunAtomic runs fn inside one database transaction. The transaction commits
// only if fn returns nil. Errors from fn are returned unchanged.
func (s *Store) RunAtomic(ctx context.Context, fn func(Unit) error) error {
	var fnErr error
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fnErr = fn(&session{db: tx, lockRows: s.lockRows})
		return fnErr
	})
	if fnErr != nil {
		return fnErr
	}
	return classify(err)
}

// session implements Unit over either the root handle or a transaction.
type session struct {
	db       *gorm.DB
	lockRows bool
}

type entity interface {
	models.Balance | models.Category | models.Transaction | models.AuditLog
}

func get[T entity](db *gorm.DB, id uint) (*T, error) {
	var row T
	if err := db.First(&row, id).Error; err != nil {
		return nil, classify(err)
	}
	return &row, nil
}

func listByOwner[T entity](db *gorm.DB, userID string, scopes []Scope) ([]T, error) {
	var rows []T
	err := db.Where("user_id = ?", userID).
		Scopes(scopes...).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, classify(err)
	}
	return rows, nil
}

func count[T entity](db *gorm.DB, scopes []Scope) (int64, error) {
	var n int64
	if err := db.Model(new(T)).Scopes(scopes...).Count(&n).Error; err != nil {
		return 0, classify(err)
	}
	return n, nil
}

func (s *session) GetBalance(id uint) (*models.Balance, error) {
	return get[models.Balance](s.db, id)
}

func (s *session) GetCategory(id uint) (*models.Category, error) {
	return get[models.Category](s.db, id)
}

func (s *session) GetTransaction(id uint) (*models.Transaction, error) {
	return get[models.Transaction](s.db, id)
}

func (s *session) FindRevertOf(originalID uint) (*models.Transaction, error) {
	var rows []models.Transaction
	err := s.db.Where("reverted_id = ?", originalID).Limit(1).Find(&rows).Error
	if err != nil {
		return nil, classify(err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (s *session) ListBalances(userID string, scopes ...Scope) ([]models.Balance, error) {
	return listByOwner[models.Balance](s.db, userID, scopes)
}

func (s *session) ListCategories(userID string, scopes ...Scope) ([]models.Category, error) {
	return listByOwner[models.Category](s.db, userID, scopes)
}

func (s *session) ListTransactions(userID string, scopes ...Scope) ([]models.Transaction, error) {
	return listByOwner[models.Transaction](s.db, userID, scopes)
}

func (s *session) ListAuditLogs(userID string, scopes ...Scope) ([]models.AuditLog, error) {
	return listByOwner[models.AuditLog](s.db, userID, scopes)
}

func (s *session) CountTransactions(scopes ...Scope) (int64, error) {
	return count[models.Transaction](s.db, scopes)
}

func (s *session) CountCategories(scopes ...Scope) (int64, error) {
	return count[models.Category](s.db, scopes)
}

func (s *session) CountAuditLogs(scopes ...Scope) (int64, error) {
	return count[models.AuditLog](s.db, scopes)
}

func (s *session) LockBalance(id uint) (*models.Balance, error) {
	db := s.db
	if s.lockRows {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return get[models.Balance](db, id)
}

func (s *session) AdjustBalance(b *models.Balance, delta int64) error {
	next := b.CurrentBalance + delta
	now := time.Now()
	res := s.db.Model(&models.Balance{}).
		Where("id = ? AND version = ?", b.ID, b.Version).
		Updates(map[string]any{
			"current_balance": next,
			"version":         b.Version + 1,
			"updated_at":      now,
		})
	if res.Error != nil {
		return classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	b.CurrentBalance = next
	b.Version++
	b.UpdatedAt = now
	return nil
}

func (s *session) Insert(entity any) error {
	return classify(s.db.Create(entity).Error)
}

func (s *session) SetTransactionStatus(t *models.Transaction, status models.TransactionStatus) error {
	if err := s.db.Model(t).Update("status", status).Error; err != nil {
		return classify(err)
	}
	t.Status = status
	return nil
}

func (s *session) SetTrash(t *models.Transaction, trash bool) error {
	if err := s.db.Model(t).Update("trash", trash).Error; err != nil {
		return classify(err)
	}
	t.Trash = trash
	return nil
}

func (s *session) UpdateCategory(c *models.Category, fields map[string]any) error {
	return classify(s.db.Model(c).Updates(fields).Error)
}

func (s *session) Delete(entity any) error {
	return classify(s.db.Delete(entity).Error)
}

func (s *session) DeleteTransactionsOfBalance(balanceID uint) (int64, error) {
	// Revert records first so the self-reference never dangles mid-statement.
	res := s.db.Where("balance_id = ? AND reverted_id IS NOT NULL", balanceID).Delete(&models.Transaction{})
	if res.Error != nil {
		return 0, classify(res.Error)
	}
	removed := res.RowsAffected

	res = s.db.Where("balance_id = ?", balanceID).Delete(&models.Transaction{})
	if res.Error != nil {
		return 0, classify(res.Error)
	}
	return removed + res.RowsAffected, nil
}
