package models

import "time"

// Base contains common columns for all tables
type Base struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Owned is implemented by every entity that belongs to exactly one user.
type Owned interface {
	OwnerID() string
}

// All lists every model in dependency order, for auto-migration.
func All() []interface{} {
	return []interface{}{
		&Balance{},
		&Category{},
		&Transaction{},
		&AuditLog{},
	}
}
