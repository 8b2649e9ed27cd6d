package store

import "gorm.io/gorm"

// OwnedBy restricts a query to rows of userID.
func OwnedBy(userID string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}

// NotTrashed excludes soft-deleted transactions.
func NotTrashed() Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("trash = ?", false)
	}
}

// InCategory restricts transactions to one category.
func InCategory(categoryID uint) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("category_id = ?", categoryID)
	}
}

// OnBalance restricts transactions to one balance.
func OnBalance(balanceID uint) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("balance_id = ?", balanceID)
	}
}

// ChildrenOf restricts categories to direct children of parentID.
func ChildrenOf(parentID uint) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("parent_id = ?", parentID)
	}
}

// Named restricts categories to an exact name.
func Named(name string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("name = ?", name)
	}
}

// Excluding drops one id from the result.
func Excluding(id uint) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("id <> ?", id)
	}
}

// WithAction restricts audit logs to one action.
func WithAction(action string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("action = ?", action)
	}
}

// ForResource restricts audit logs to entries about one resource.
func ForResource(resourceType string, id uint) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("resource_type = ? AND resource_id = ?", resourceType, id)
	}
}
