package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "ledger/internal/errors"
	"ledger/internal/models"
	"ledger/internal/pagination"
	"ledger/internal/services"
)

func setupTransactionRouter(handler *TransactionHandler) *gin.Engine {
	r := newTestRouter()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/categories/:id/transactions", handler.CreateTransaction)
	auth.GET("/categories/:id/transactions", handler.ListByCategory)
	auth.GET("/transactions", handler.ListHistory)
	auth.DELETE("/transactions/:id", handler.SoftDelete)
	auth.DELETE("/transactions/:id/permanent", handler.HardDelete)
	auth.POST("/transactions/:id/revert", handler.Revert)
	auth.PATCH("/transactions/:id/status", handler.SetStatus)
	return r
}

func TestTransactionHandler_CreateTransaction(t *testing.T) {
	t.Run("returns 201 with the amount in minor units passed through", func(t *testing.T) {
		var got services.CreateTransactionInput
		var gotCategory uint
		txSvc := &mockTransactionService{
			createTransactionFn: func(userID string, categoryID uint, in services.CreateTransactionInput) (*models.Transaction, error) {
				if userID != testUserID {
					t.Errorf("expected user %q, got %q", testUserID, userID)
				}
				got, gotCategory = in, categoryID
				return &models.Transaction{
					Base:       models.Base{ID: 9},
					UserID:     userID,
					BalanceID:  in.BalanceID,
					CategoryID: categoryID,
					Kind:       models.TransactionKindOrdinary,
					Amount:     in.Amount,
					Status:     models.TransactionStatusCleared,
				}, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc))

		rec := doRequest(r, http.MethodPost, "/categories/3/transactions",
			`{"balance_id":1,"amount":"200.00","description":"groceries"}`)

		assertStatus(t, rec, http.StatusCreated)
		if got.Amount != 20000 || got.BalanceID != 1 || got.Description != "groceries" || gotCategory != 3 {
			t.Errorf("unexpected service input %+v category %d", got, gotCategory)
		}
		tx := parseJSON(t, rec)["transaction"].(map[string]interface{})
		if tx["amount"] != "200.00" {
			t.Errorf("expected amount 200.00, got %v", tx["amount"])
		}
		if tx["kind"] != string(models.TransactionKindOrdinary) {
			t.Errorf("expected ordinary kind, got %v", tx["kind"])
		}
	})

	t.Run("accepts a bare JSON number", func(t *testing.T) {
		var amount int64
		txSvc := &mockTransactionService{
			createTransactionFn: func(_ string, _ uint, in services.CreateTransactionInput) (*models.Transaction, error) {
				amount = in.Amount
				return &models.Transaction{Amount: in.Amount}, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc))

		rec := doRequest(r, http.MethodPost, "/categories/3/transactions", `{"balance_id":1,"amount":12.5}`)

		assertStatus(t, rec, http.StatusCreated)
		if amount != 1250 {
			t.Errorf("expected 1250 minor units, got %d", amount)
		}
	})

	invalid := []struct {
		name string
		body string
	}{
		{"missing balance_id", `{"amount":"10.00"}`},
		{"zero amount", `{"balance_id":1,"amount":"0"}`},
		{"negative amount", `{"balance_id":1,"amount":"-5.00"}`},
		{"too many decimal places", `{"balance_id":1,"amount":"1.005"}`},
		{"unknown status", `{"balance_id":1,"amount":"1.00","status":"Bounced"}`},
		{"malformed json", `{"balance_id":`},
	}
	for _, tc := range invalid {
		t.Run("returns 400 on "+tc.name, func(t *testing.T) {
			txSvc := &mockTransactionService{
				createTransactionFn: func(string, uint, services.CreateTransactionInput) (*models.Transaction, error) {
					t.Fatal("service must not be called")
					return nil, nil
				},
			}
			r := setupTransactionRouter(NewTransactionHandler(txSvc))

			rec := doRequest(r, http.MethodPost, "/categories/3/transactions", tc.body)

			assertStatus(t, rec, http.StatusBadRequest)
			assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
		})
	}

	errCases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"insufficient funds", apperrors.ErrInsufficientFunds, http.StatusBadRequest, "INSUFFICIENT_FUNDS"},
		{"unknown balance", apperrors.ErrBalanceNotFound, http.StatusNotFound, "BALANCE_NOT_FOUND"},
		{"unknown category", apperrors.ErrCategoryNotFound, http.StatusNotFound, "CATEGORY_NOT_FOUND"},
		{"concurrent update", apperrors.ErrConflict, http.StatusConflict, "CONFLICT"},
		{"store down", apperrors.ErrStorageFailure, http.StatusServiceUnavailable, "STORAGE_FAILURE"},
	}
	for _, tc := range errCases {
		t.Run("maps "+tc.name, func(t *testing.T) {
			txSvc := &mockTransactionService{
				createTransactionFn: func(string, uint, services.CreateTransactionInput) (*models.Transaction, error) {
					return nil, tc.err
				},
			}
			r := setupTransactionRouter(NewTransactionHandler(txSvc))

			rec := doRequest(r, http.MethodPost, "/categories/3/transactions", `{"balance_id":1,"amount":"5000.00"}`)

			assertStatus(t, rec, tc.status)
			assertErrorCode(t, parseJSON(t, rec), tc.code)
		})
	}
}

func TestTransactionHandler_ListByCategory(t *testing.T) {
	t.Run("returns the category's transactions", func(t *testing.T) {
		txSvc := &mockTransactionService{
			listByCategoryFn: func(categoryID uint, _ string) ([]models.Transaction, error) {
				return []models.Transaction{
					{Base: models.Base{ID: 1}, CategoryID: categoryID, Amount: 100},
					{Base: models.Base{ID: 2}, CategoryID: categoryID, Amount: 250},
				}, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc))

		rec := doRequest(r, http.MethodGet, "/categories/4/transactions", "")

		assertStatus(t, rec, http.StatusOK)
		txs := parseJSON(t, rec)["transactions"].([]interface{})
		if len(txs) != 2 {
			t.Fatalf("expected 2 transactions, got %d", len(txs))
		}
		if txs[1].(map[string]interface{})["amount"] != "2.50" {
			t.Errorf("expected 2.50, got %v", txs[1])
		}
	})

	t.Run("returns 404 for a foreign category", func(t *testing.T) {
		txSvc := &mockTransactionService{
			listByCategoryFn: func(uint, string) ([]models.Transaction, error) {
				return nil, apperrors.ErrCategoryNotFound
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc))

		rec := doRequest(r, http.MethodGet, "/categories/4/transactions", "")

		assertStatus(t, rec, http.StatusNotFound)
		assertErrorCode(t, parseJSON(t, rec), "CATEGORY_NOT_FOUND")
	})
}

func TestTransactionHandler_ListHistory(t *testing.T) {
	t.Run("returns the full history without paging parameters", func(t *testing.T) {
		txSvc := &mockTransactionService{
			listHistoryFn: func(string) ([]models.Transaction, error) {
				return []models.Transaction{{Base: models.Base{ID: 1}, Amount: 100}}, nil
			},
			listHistoryPageFn: func(string, pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
				t.Fatal("paged listing must not be used")
				return nil, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc))

		rec := doRequest(r, http.MethodGet, "/transactions", "")

		assertStatus(t, rec, http.StatusOK)
		if txs := parseJSON(t, rec)["transactions"].([]interface{}); len(txs) != 1 {
			t.Errorf("expected 1 transaction, got %d", len(txs))
		}
	})

	t.Run("returns a page when paging parameters are given", func(t *testing.T) {
		var gotPage pagination.PageRequest
		txSvc := &mockTransactionService{
			listHistoryPageFn: func(_ string, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
				gotPage = page
				resp := pagination.NewPageResponse([]models.Transaction{{Amount: 1}}, 2, 1, 3)
				return &resp, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc))

		rec := doRequest(r, http.MethodGet, "/transactions?page=2&page_size=1", "")

		assertStatus(t, rec, http.StatusOK)
		if gotPage.Page != 2 || gotPage.PageSize != 1 {
			t.Errorf("unexpected page request %+v", gotPage)
		}
		result := parseJSON(t, rec)
		if result["total_items"].(float64) != 3 || result["total_pages"].(float64) != 3 {
			t.Errorf("unexpected page metadata: %v", result)
		}
		data := result["data"].([]interface{})
		if data[0].(map[string]interface{})["amount"] != "0.01" {
			t.Errorf("expected record amounts, got %v", data[0])
		}
	})

	t.Run("returns 400 on page_size over the limit", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}))

		rec := doRequest(r, http.MethodGet, "/transactions?page_size=1000", "")

		assertStatus(t, rec, http.StatusBadRequest)
	})
}

func TestTransactionHandler_SoftDelete(t *testing.T) {
	t.Run("returns 200 when trashed", func(t *testing.T) {
		var gotID uint
		txSvc := &mockTransactionService{
			softDeleteFn: func(transactionID uint, _ string) error {
				gotID = transactionID
				return nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc))

		rec := doRequest(r, http.MethodDelete, "/transactions/7", "")

		assertStatus(t, rec, http.StatusOK)
		if gotID != 7 {
			t.Errorf("expected id 7, got %d", gotID)
		}
	})

	t.Run("returns 404 when missing", func(t *testing.T) {
		txSvc := &mockTransactionService{
			softDeleteFn: func(uint, string) error { return apperrors.ErrTransactionNotFound },
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc))

		rec := doRequest(r, http.MethodDelete, "/transactions/7", "")

		assertStatus(t, rec, http.StatusNotFound)
		assertErrorCode(t, parseJSON(t, rec), "TRANSACTION_NOT_FOUND")
	})
}

func TestTransactionHandler_HardDelete(t *testing.T) {
	t.Run("returns 200 when erased", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}))

		rec := doRequest(r, http.MethodDelete, "/transactions/7/permanent", "")

		assertStatus(t, rec, http.StatusOK)
		if msg := parseJSON(t, rec)["message"]; msg != "Transaction deleted permanently" {
			t.Errorf("unexpected message %v", msg)
		}
	})

	t.Run("returns 400 on invalid id", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}))

		rec := doRequest(r, http.MethodDelete, "/transactions/x/permanent", "")

		assertStatus(t, rec, http.StatusBadRequest)
	})
}

func TestTransactionHandler_Revert(t *testing.T) {
	t.Run("returns 201 with the revert record", func(t *testing.T) {
		original := uint(5)
		txSvc := &mockTransactionService{
			revertFn: func(transactionID uint, _ string) (*models.Transaction, error) {
				return &models.Transaction{
					Base:        models.Base{ID: 6},
					Kind:        models.TransactionKindRevert,
					Amount:      20000,
					Description: "REVERT: groceries",
					RevertedID:  &original,
				}, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc))

		rec := doRequest(r, http.MethodPost, "/transactions/5/revert", "")

		assertStatus(t, rec, http.StatusCreated)
		tx := parseJSON(t, rec)["transaction"].(map[string]interface{})
		if tx["kind"] != string(models.TransactionKindRevert) || tx["reverted_id"].(float64) != 5 {
			t.Errorf("unexpected revert record %v", tx)
		}
	})

	t.Run("returns 409 when already reverted", func(t *testing.T) {
		txSvc := &mockTransactionService{
			revertFn: func(uint, string) (*models.Transaction, error) { return nil, apperrors.ErrAlreadyReverted },
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc))

		rec := doRequest(r, http.MethodPost, "/transactions/5/revert", "")

		assertStatus(t, rec, http.StatusConflict)
		assertErrorCode(t, parseJSON(t, rec), "ALREADY_REVERTED")
	})

	t.Run("returns 400 when reverting a revert", func(t *testing.T) {
		txSvc := &mockTransactionService{
			revertFn: func(uint, string) (*models.Transaction, error) { return nil, apperrors.ErrInvalidRevertTarget },
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc))

		rec := doRequest(r, http.MethodPost, "/transactions/6/revert", "")

		assertStatus(t, rec, http.StatusBadRequest)
		assertErrorCode(t, parseJSON(t, rec), "INVALID_REVERT_TARGET")
	})
}

func TestTransactionHandler_SetStatus(t *testing.T) {
	t.Run("returns the updated transaction", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}))

		rec := doRequest(r, http.MethodPatch, "/transactions/5/status", `{"status":"Reconciled"}`)

		assertStatus(t, rec, http.StatusOK)
		tx := parseJSON(t, rec)["transaction"].(map[string]interface{})
		if tx["status"] != string(models.TransactionStatusReconciled) {
			t.Errorf("expected Reconciled, got %v", tx["status"])
		}
	})

	t.Run("returns 400 on unknown status", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}))

		rec := doRequest(r, http.MethodPatch, "/transactions/5/status", `{"status":"Void"}`)

		assertStatus(t, rec, http.StatusBadRequest)
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})
}
