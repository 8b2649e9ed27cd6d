package services

import (
	"context"

	"ledger/internal/models"
	"ledger/internal/pagination"
	"ledger/internal/store"
)

// auditService reads the audit trail written by the ledger operations.
type auditService struct {
	ledger store.Ledger
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(ledger store.Ledger) AuditServicer {
	return &auditService{ledger: ledger}
}

// GetUserAuditLogs returns one page of the user's audit entries, oldest first.
func (s *auditService) GetUserAuditLogs(ctx context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.AuditLog], error) {
	page.Defaults()
	r := s.ledger.Reader(ctx)

	totalItems, err := r.CountAuditLogs(store.OwnedBy(userID))
	if err != nil {
		return nil, storeError(err)
	}

	entries, err := r.ListAuditLogs(userID, pagination.Paginate(page))
	if err != nil {
		return nil, storeError(err)
	}

	result := pagination.NewPageResponse(entries, page.Page, page.PageSize, totalItems)
	return &result, nil
}
