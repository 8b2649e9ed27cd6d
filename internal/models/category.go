package models

// CategoryType represents the type of category
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "Income"
	CategoryTypeExpense CategoryType = "Expense"
)

// Valid reports whether t is a known category type.
func (t CategoryType) Valid() bool {
	return t == CategoryTypeIncome || t == CategoryTypeExpense
}

// Category represents a transaction category. Categories form a tree through ParentID.
type Category struct {
	Base
	UserID   string       `gorm:"type:varchar(255);not null;index" json:"user_id"`
	Name     string       `gorm:"type:varchar(255);not null" json:"name"`
	Type     CategoryType `gorm:"type:varchar(20);not null" json:"type"`
	ParentID *uint        `json:"parent_id,omitempty"`

	// Relationships
	Parent *Category `gorm:"foreignKey:ParentID" json:"-"`
}

// OwnerID implements Owned.
func (c *Category) OwnerID() string { return c.UserID }
