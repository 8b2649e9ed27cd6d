package models

// Balance is a user-owned monetary account. Amounts are minor units (cents).
type Balance struct {
	Base
	UserID         string `gorm:"type:varchar(255);not null;index" json:"user_id"`
	BalanceType    string `gorm:"type:varchar(100)" json:"balance_type,omitempty"`
	CurrentBalance int64  `gorm:"type:bigint;not null" json:"current_balance"`
	InitialBalance int64  `gorm:"type:bigint;not null" json:"initial_balance"`

	// Version is bumped on every balance mutation and checked on write.
	Version int64 `gorm:"not null" json:"-"`
}

// OwnerID implements Owned.
func (b *Balance) OwnerID() string { return b.UserID }
