package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ledger/internal/pagination"
	"ledger/internal/services"
)

// AuditHandler serves the caller's audit trail.
type AuditHandler struct {
	auditService services.AuditServicer
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(auditService services.AuditServicer) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// GetUserAuditLogs handles listing audit entries
// @Summary     Audit trail
// @Description List trash, delete, revert and status-change entries recorded for the caller, oldest first.
// @Tags        audit
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.AuditLog] "Audit entries"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /audit-logs [get]
func (h *AuditHandler) GetUserAuditLogs(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		abortWithError(c, bindError(err))
		return
	}

	result, err := h.auditService.GetUserAuditLogs(c.Request.Context(), userID, page)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
