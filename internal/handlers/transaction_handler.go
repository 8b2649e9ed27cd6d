package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "ledger/internal/errors"
	"ledger/internal/models"
	"ledger/internal/money"
	"ledger/internal/pagination"
	"ledger/internal/services"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// CreateTransactionRequest represents the request payload for creating a transaction
type CreateTransactionRequest struct {
	BalanceID   uint            `json:"balance_id" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required,money" swaggertype:"string" example:"12.50"`
	Description string          `json:"description" binding:"max=255"`
	Status      string          `json:"status" binding:"omitempty,transaction_status"`
}

// SetStatusRequest represents the request payload for changing a transaction's status
type SetStatusRequest struct {
	Status string `json:"status" binding:"required,transaction_status"`
}

// TransactionResponse wraps a single transaction.
type TransactionResponse struct {
	Transaction TransactionRecord `json:"transaction"`
}

// TransactionListResponse wraps a list of transactions.
type TransactionListResponse struct {
	Transactions []TransactionRecord `json:"transactions"`
}

// CreateTransaction handles the creation of a new transaction
// @Summary     Create a transaction
// @Description Debit a balance under a category. The transaction and the balance change commit together.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                      true "Category ID"
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} TransactionResponse "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input or insufficient funds"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Balance or category not found"
// @Failure     409 {object} ErrorResponse "Concurrent modification"
// @Failure     503 {object} ErrorResponse "Store unavailable"
// @Router      /categories/{id}/transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	categoryID, err := parsePathID(c, "id")
	if err != nil {
		abortWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, bindError(err))
		return
	}

	amount, err := money.ToMinor(req.Amount)
	if err != nil {
		abortWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	tx, err := h.transactionService.CreateTransaction(c.Request.Context(), userID, categoryID, services.CreateTransactionInput{
		BalanceID:   req.BalanceID,
		Amount:      amount,
		Description: req.Description,
		Status:      models.TransactionStatus(req.Status),
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, TransactionResponse{Transaction: newTransactionRecord(tx)})
}

// ListByCategory handles listing the transactions of one category
// @Summary     List category transactions
// @Description List the caller's transactions in a category, oldest first. Trashed transactions are hidden.
// @Tags        categories,transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Category ID"
// @Success     200 {object} TransactionListResponse "Transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Router      /categories/{id}/transactions [get]
func (h *TransactionHandler) ListByCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	categoryID, err := parsePathID(c, "id")
	if err != nil {
		abortWithError(c, err)
		return
	}

	txs, err := h.transactionService.ListByCategory(c.Request.Context(), categoryID, userID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, TransactionListResponse{Transactions: newTransactionRecords(txs)})
}

// ListHistory handles listing all of the caller's transactions
// @Summary     Transaction history
// @Description List the caller's transactions across all categories, oldest first. When page or page_size is given the response is a pagination.PageResponse of transaction records.
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} TransactionListResponse "Transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /transactions [get]
func (h *TransactionHandler) ListHistory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	if c.Query("page") == "" && c.Query("page_size") == "" {
		txs, err := h.transactionService.ListHistory(c.Request.Context(), userID)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, TransactionListResponse{Transactions: newTransactionRecords(txs)})
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		abortWithError(c, bindError(err))
		return
	}

	result, err := h.transactionService.ListHistoryPage(c.Request.Context(), userID, page)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, pagination.NewPageResponse(
		newTransactionRecords(result.Data), result.Page, result.PageSize, result.TotalItems,
	))
}

// SoftDelete handles moving a transaction to the trash
// @Summary     Trash a transaction
// @Description Hide a transaction from listings. The balance is not refunded; use revert for that.
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Transaction ID"
// @Success     200 {object} MessageResponse "Transaction trashed"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) SoftDelete(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		abortWithError(c, err)
		return
	}

	if err := h.transactionService.SoftDelete(c.Request.Context(), transactionID, userID); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Transaction moved to trash"})
}

// HardDelete handles erasing a transaction
// @Summary     Erase a transaction
// @Description Permanently delete a transaction row. The balance is not refunded. Administrators only.
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Transaction ID"
// @Success     200 {object} MessageResponse "Transaction deleted"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Administrator role required"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id}/permanent [delete]
func (h *TransactionHandler) HardDelete(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		abortWithError(c, err)
		return
	}

	if err := h.transactionService.HardDelete(c.Request.Context(), transactionID, userID); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Transaction deleted permanently"})
}

// Revert handles reverting a transaction
// @Summary     Revert a transaction
// @Description Append a compensating transaction and credit the amount back to the balance. Each transaction can be reverted once.
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Transaction ID"
// @Success     201 {object} TransactionResponse "Revert record"
// @Failure     400 {object} ErrorResponse "Revert records cannot be reverted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     409 {object} ErrorResponse "Already reverted or concurrent modification"
// @Router      /transactions/{id}/revert [post]
func (h *TransactionHandler) Revert(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		abortWithError(c, err)
		return
	}

	revert, err := h.transactionService.Revert(c.Request.Context(), transactionID, userID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, TransactionResponse{Transaction: newTransactionRecord(revert)})
}

// SetStatus handles changing a transaction's clearing status
// @Summary     Set transaction status
// @Description Mark a transaction as Cleared, Pending or Reconciled.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int              true "Transaction ID"
// @Param       request body SetStatusRequest true "New status"
// @Success     200 {object} TransactionResponse "Updated transaction"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id}/status [patch]
func (h *TransactionHandler) SetStatus(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		abortWithError(c, err)
		return
	}

	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, bindError(err))
		return
	}

	tx, err := h.transactionService.SetStatus(c.Request.Context(), transactionID, userID, models.TransactionStatus(req.Status))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, TransactionResponse{Transaction: newTransactionRecord(tx)})
}
