package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "ledger/internal/errors"
	"ledger/internal/money"
	"ledger/internal/services"
)

// BalanceHandler handles balance-related requests.
type BalanceHandler struct {
	balanceService services.BalanceServicer
}

// NewBalanceHandler creates a new BalanceHandler.
func NewBalanceHandler(balanceService services.BalanceServicer) *BalanceHandler {
	return &BalanceHandler{balanceService: balanceService}
}

// CreateBalanceRequest represents the request payload for creating a balance
type CreateBalanceRequest struct {
	BalanceType    string          `json:"balance_type" binding:"max=100"`
	InitialBalance decimal.Decimal `json:"initial_balance" swaggertype:"string" example:"1000.00"`
}

// BalanceResponse wraps a single balance.
type BalanceResponse struct {
	Balance BalanceRecord `json:"balance"`
}

// BalanceListResponse wraps a list of balances.
type BalanceListResponse struct {
	Balances []BalanceRecord `json:"balances"`
}

// CreateBalance handles the creation of a new balance
// @Summary     Create a balance
// @Tags        balances
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateBalanceRequest true "Balance details"
// @Success     201 {object} BalanceResponse "Balance created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /balances [post]
func (h *BalanceHandler) CreateBalance(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	var req CreateBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, bindError(err))
		return
	}

	initial, err := money.ToMinor(req.InitialBalance)
	if err != nil {
		abortWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	balance, err := h.balanceService.CreateBalance(c.Request.Context(), userID, req.BalanceType, initial)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, BalanceResponse{Balance: newBalanceRecord(balance)})
}

// GetUserBalances handles listing the caller's balances
// @Summary     List balances
// @Tags        balances
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} BalanceListResponse "Balances"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /balances [get]
func (h *BalanceHandler) GetUserBalances(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	balances, err := h.balanceService.GetUserBalances(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	records := make([]BalanceRecord, len(balances))
	for i := range balances {
		records[i] = newBalanceRecord(&balances[i])
	}
	c.JSON(http.StatusOK, BalanceListResponse{Balances: records})
}

// GetBalanceByID handles fetching one balance
// @Summary     Get a balance
// @Tags        balances
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Balance ID"
// @Success     200 {object} BalanceResponse "Balance"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Balance not found"
// @Router      /balances/{id} [get]
func (h *BalanceHandler) GetBalanceByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	balanceID, err := parsePathID(c, "id")
	if err != nil {
		abortWithError(c, err)
		return
	}

	balance, err := h.balanceService.GetBalanceByID(c.Request.Context(), userID, balanceID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, BalanceResponse{Balance: newBalanceRecord(balance)})
}

// DeleteBalance handles deleting a balance and its transactions
// @Summary     Delete a balance
// @Description Delete a balance together with all of its transactions.
// @Tags        balances
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Balance ID"
// @Success     200 {object} MessageResponse "Balance deleted"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Balance not found"
// @Router      /balances/{id} [delete]
func (h *BalanceHandler) DeleteBalance(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	balanceID, err := parsePathID(c, "id")
	if err != nil {
		abortWithError(c, err)
		return
	}

	if err := h.balanceService.DeleteBalance(c.Request.Context(), userID, balanceID); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Balance deleted successfully"})
}

// Reconcile handles checking a balance against its history
// @Summary     Reconcile a balance
// @Description Recompute a balance from its initial value and every transaction applied to it.
// @Tags        balances
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Balance ID"
// @Success     200 {object} ReconciliationRecord "Reconciliation"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Balance not found"
// @Router      /balances/{id}/reconcile [get]
func (h *BalanceHandler) Reconcile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	balanceID, err := parsePathID(c, "id")
	if err != nil {
		abortWithError(c, err)
		return
	}

	rec, err := h.balanceService.Reconcile(c.Request.Context(), userID, balanceID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, ReconciliationRecord{
		BalanceID:  rec.BalanceID,
		Expected:   money.Format(rec.Expected),
		Actual:     money.Format(rec.Actual),
		Consistent: rec.Consistent,
	})
}
