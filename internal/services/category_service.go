package services

import (
	"context"
	"strings"

	apperrors "ledger/internal/errors"
	"ledger/internal/guard"
	"ledger/internal/models"
	"ledger/internal/store"
)

// categoryService handles category-related business logic.
type categoryService struct {
	ledger store.Ledger
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(ledger store.Ledger) CategoryServicer {
	return &categoryService{ledger: ledger}
}

// CreateCategory creates a new category
func (s *categoryService) CreateCategory(ctx context.Context, userID, name string, categoryType models.CategoryType, parentID *uint) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}
	if !categoryType.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category type must be Income or Expense")
	}

	category := &models.Category{
		UserID:   userID,
		Name:     name,
		Type:     categoryType,
		ParentID: parentID,
	}
	err := s.ledger.RunAtomic(ctx, func(u store.Unit) error {
		if err := checkUniqueName(u, userID, name, 0); err != nil {
			return err
		}
		if parentID != nil {
			if err := checkParent(u, userID, *parentID); err != nil {
				return err
			}
		}
		return u.Insert(category)
	})
	if err != nil {
		return nil, storeError(err)
	}
	return category, nil
}

// GetUserCategories lists the user's categories.
func (s *categoryService) GetUserCategories(ctx context.Context, userID string) ([]models.Category, error) {
	categories, err := s.ledger.Reader(ctx).ListCategories(userID)
	if err != nil {
		return nil, storeError(err)
	}
	return categories, nil
}

// GetCategoryByID retrieves a category by ID for a specific user
func (s *categoryService) GetCategoryByID(ctx context.Context, userID string, categoryID uint) (*models.Category, error) {
	category, err := s.ledger.Reader(ctx).GetCategory(categoryID)
	if err := lookupError(err); err != nil {
		return nil, storeError(err)
	}
	if err := guard.AssertOwnership(category, userID, apperrors.ErrCategoryNotFound); err != nil {
		return nil, err
	}
	return category, nil
}

// UpdateCategory updates an existing category. A new parent must belong to
// the user and must not be the category itself or one of its descendants.
func (s *categoryService) UpdateCategory(ctx context.Context, userID string, categoryID uint, update CategoryUpdate) (*models.Category, error) {
	var updated *models.Category
	err := s.ledger.RunAtomic(ctx, func(u store.Unit) error {
		category, err := u.GetCategory(categoryID)
		if err := lookupError(err); err != nil {
			return err
		}
		if err := guard.AssertOwnership(category, userID, apperrors.ErrCategoryNotFound); err != nil {
			return err
		}

		fields := map[string]any{}
		if update.Name != nil {
			name := strings.TrimSpace(*update.Name)
			if name == "" {
				return apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
			}
			if name != category.Name {
				if err := checkUniqueName(u, userID, name, category.ID); err != nil {
					return err
				}
				fields["name"] = name
			}
		}
		if update.Type != nil {
			if !update.Type.Valid() {
				return apperrors.WithMessage(apperrors.ErrInvalidInput, "category type must be Income or Expense")
			}
			fields["type"] = *update.Type
		}
		if update.ParentID != nil {
			if *update.ParentID == category.ID {
				return apperrors.ErrSelfParentCategory
			}
			if err := checkParent(u, userID, *update.ParentID); err != nil {
				return err
			}
			if err := checkNoCycle(u, category.ID, *update.ParentID); err != nil {
				return err
			}
			fields["parent_id"] = *update.ParentID
		}

		if len(fields) > 0 {
			if err := u.UpdateCategory(category, fields); err != nil {
				return err
			}
		}

		updated, err = u.GetCategory(category.ID)
		return err
	})
	if err != nil {
		return nil, storeError(err)
	}
	return updated, nil
}

// DeleteCategory deletes a category that has no children and no transactions.
func (s *categoryService) DeleteCategory(ctx context.Context, userID string, categoryID uint) error {
	err := s.ledger.RunAtomic(ctx, func(u store.Unit) error {
		category, err := u.GetCategory(categoryID)
		if err := lookupError(err); err != nil {
			return err
		}
		if err := guard.AssertOwnership(category, userID, apperrors.ErrCategoryNotFound); err != nil {
			return err
		}

		children, err := u.CountCategories(store.ChildrenOf(category.ID))
		if err != nil {
			return err
		}
		if children > 0 {
			return apperrors.ErrCategoryHasChildren
		}

		used, err := u.CountTransactions(store.InCategory(category.ID))
		if err != nil {
			return err
		}
		if used > 0 {
			return apperrors.ErrCategoryInUse
		}

		return u.Delete(category)
	})
	return storeError(err)
}

func checkUniqueName(r store.Reader, userID, name string, exclude uint) error {
	scopes := []store.Scope{store.OwnedBy(userID), store.Named(name)}
	if exclude != 0 {
		scopes = append(scopes, store.Excluding(exclude))
	}
	n, err := r.CountCategories(scopes...)
	if err != nil {
		return err
	}
	if n > 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "category with this name already exists")
	}
	return nil
}

func checkParent(r store.Reader, userID string, parentID uint) error {
	parent, err := r.GetCategory(parentID)
	if err := lookupError(err); err != nil {
		return err
	}
	return guard.AssertOwnership(parent, userID, apperrors.WithMessage(apperrors.ErrCategoryNotFound, "parent category not found"))
}

// checkNoCycle walks up from parentID and fails if it reaches categoryID.
func checkNoCycle(r store.Reader, categoryID, parentID uint) error {
	seen := map[uint]bool{}
	for next := &parentID; next != nil; {
		if *next == categoryID {
			return apperrors.ErrCategoryCycle
		}
		if seen[*next] {
			// Existing data already loops; refuse to extend it.
			return apperrors.ErrCategoryCycle
		}
		seen[*next] = true

		ancestor, err := r.GetCategory(*next)
		if err := lookupError(err); err != nil {
			return err
		}
		if ancestor == nil {
			return nil
		}
		next = ancestor.ParentID
	}
	return nil
}
