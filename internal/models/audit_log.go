package models

// AuditLog records destructive or corrective ledger operations so history
// stays reconstructible after a row is trashed, reverted or erased.
type AuditLog struct {
	Base
	UserID       string `gorm:"type:varchar(255);not null;index" json:"user_id"`
	Action       string `gorm:"type:varchar(64);not null" json:"action"`
	ResourceType string `gorm:"type:varchar(64);not null" json:"resource_type"`
	ResourceID   uint   `gorm:"index" json:"resource_id"`
	Changes      string `gorm:"type:text" json:"changes,omitempty"`
}

// OwnerID implements Owned.
func (a *AuditLog) OwnerID() string { return a.UserID }
