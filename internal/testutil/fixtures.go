package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"ledger/internal/models"

	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// NewUserID returns a fresh user id. Users live outside the ledger, so there
// is no row to create.
func NewUserID() string {
	return fmt.Sprintf("user-%d", nextID())
}

// CreateTestBalance creates a balance seeded with the given amount (in cents).
func CreateTestBalance(t *testing.T, db *gorm.DB, userID string, amount int64) *models.Balance {
	t.Helper()

	balance := &models.Balance{
		UserID:         userID,
		BalanceType:    fmt.Sprintf("Test Balance %d", nextID()),
		CurrentBalance: amount,
		InitialBalance: amount,
	}
	if err := db.Create(balance).Error; err != nil {
		t.Fatalf("failed to create test balance: %v", err)
	}
	return balance
}

// CreateTestCategory creates a category of the given type.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID string, categoryType models.CategoryType) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID: userID,
		Name:   fmt.Sprintf("Test Category %d", nextID()),
		Type:   categoryType,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestTransaction inserts an ordinary transaction row without touching
// the balance. Use the transaction service when the balance effect matters.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID string, balanceID, categoryID uint, amount int64) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:      userID,
		BalanceID:   balanceID,
		CategoryID:  categoryID,
		Amount:      amount,
		Description: fmt.Sprintf("Test Transaction %d", nextID()),
		Date:        time.Now(),
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// ReloadBalance reads a balance straight from the database.
func ReloadBalance(t *testing.T, db *gorm.DB, id uint) *models.Balance {
	t.Helper()

	var balance models.Balance
	if err := db.First(&balance, id).Error; err != nil {
		t.Fatalf("failed to reload balance %d: %v", id, err)
	}
	return &balance
}

// CountRows counts the rows of model matching the optional condition.
func CountRows(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()

	var n int64
	q := db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		t.Fatalf("failed to count rows: %v", err)
	}
	return n
}
