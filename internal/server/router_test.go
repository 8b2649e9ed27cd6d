package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"ledger/internal/logger"
	"ledger/internal/middleware"
	"ledger/internal/testutil"
	"ledger/internal/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// testApp holds the full application stack over an isolated sqlite database.
type testApp struct {
	router *gin.Engine
}

func setupApp(t *testing.T) *testApp {
	t.Helper()
	return &testApp{router: NewRouter(testutil.SetupTestDB(t))}
}

func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.router.ServeHTTP(rec, req)
	return rec
}

// mustRequest fails the test unless the response carries the wanted status.
func (app *testApp) mustRequest(t *testing.T, want int, method, path, body, token string) map[string]interface{} {
	t.Helper()
	rec := app.request(method, path, body, token)
	if rec.Code != want {
		t.Fatalf("%s %s: expected %d, got %d: %s", method, path, want, rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func errorCode(result map[string]interface{}) interface{} {
	errObj, _ := result["error"].(map[string]interface{})
	return errObj["code"]
}

func token(t *testing.T, userID, role string) string {
	t.Helper()
	tok, err := middleware.GenerateAccessToken(userID, role)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return tok
}

// seedLedger creates a balance and an expense category for the user and
// returns their IDs.
func (app *testApp) seedLedger(t *testing.T, tok, initial string) (balanceID, categoryID float64) {
	t.Helper()
	result := app.mustRequest(t, http.StatusCreated, "POST", "/api/v1/balances",
		fmt.Sprintf(`{"balance_type":"cash","initial_balance":%q}`, initial), tok)
	balanceID = result["balance"].(map[string]interface{})["id"].(float64)

	result = app.mustRequest(t, http.StatusCreated, "POST", "/api/v1/categories",
		`{"name":"Groceries","type":"Expense"}`, tok)
	categoryID = result["category"].(map[string]interface{})["id"].(float64)
	return balanceID, categoryID
}

func (app *testApp) currentBalance(t *testing.T, tok string, balanceID float64) interface{} {
	t.Helper()
	result := app.mustRequest(t, http.StatusOK, "GET", fmt.Sprintf("/api/v1/balances/%.0f", balanceID), "", tok)
	return result["balance"].(map[string]interface{})["current_balance"]
}

func TestLedgerFlow_CreateRejectRevert(t *testing.T) {
	app := setupApp(t)
	user := token(t, testutil.NewUserID(), middleware.RoleUser)
	balanceID, categoryID := app.seedLedger(t, user, "1000.00")
	txPath := fmt.Sprintf("/api/v1/categories/%.0f/transactions", categoryID)

	// Step 1: spend 200 of 1000
	result := app.mustRequest(t, http.StatusCreated, "POST", txPath,
		fmt.Sprintf(`{"balance_id":%.0f,"amount":"200.00","description":"weekly shop"}`, balanceID), user)
	tx := result["transaction"].(map[string]interface{})
	txID := tx["id"].(float64)
	if tx["status"] != "Cleared" || tx["kind"] != "ordinary" {
		t.Errorf("unexpected defaults: %v", tx)
	}
	if got := app.currentBalance(t, user, balanceID); got != "800.00" {
		t.Fatalf("expected 800.00 after spend, got %v", got)
	}

	// Step 2: overspend is rejected and nothing moves
	rec := app.request("POST", txPath, fmt.Sprintf(`{"balance_id":%.0f,"amount":"5000.00"}`, balanceID), user)
	if rec.Code != http.StatusBadRequest || errorCode(parseJSON(t, rec)) != "INSUFFICIENT_FUNDS" {
		t.Fatalf("expected INSUFFICIENT_FUNDS, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := app.currentBalance(t, user, balanceID); got != "800.00" {
		t.Fatalf("expected 800.00 after rejection, got %v", got)
	}

	// Step 3: revert restores the balance
	result = app.mustRequest(t, http.StatusCreated, "POST", fmt.Sprintf("/api/v1/transactions/%.0f/revert", txID), "", user)
	revert := result["transaction"].(map[string]interface{})
	if revert["kind"] != "revert" || revert["reverted_id"].(float64) != txID {
		t.Errorf("unexpected revert record: %v", revert)
	}
	if revert["description"] != "REVERT: weekly shop" {
		t.Errorf("unexpected revert description %v", revert["description"])
	}
	if got := app.currentBalance(t, user, balanceID); got != "1000.00" {
		t.Fatalf("expected 1000.00 after revert, got %v", got)
	}

	// Step 4: a second revert is refused
	rec = app.request("POST", fmt.Sprintf("/api/v1/transactions/%.0f/revert", txID), "", user)
	if rec.Code != http.StatusConflict || errorCode(parseJSON(t, rec)) != "ALREADY_REVERTED" {
		t.Fatalf("expected ALREADY_REVERTED, got %d: %s", rec.Code, rec.Body.String())
	}

	// Step 5: history holds both records and reconciles
	result = app.mustRequest(t, http.StatusOK, "GET", "/api/v1/transactions", "", user)
	if txs := result["transactions"].([]interface{}); len(txs) != 2 {
		t.Errorf("expected 2 transactions in history, got %d", len(txs))
	}
	result = app.mustRequest(t, http.StatusOK, "GET", fmt.Sprintf("/api/v1/balances/%.0f/reconcile", balanceID), "", user)
	if result["consistent"] != true || result["expected"] != "1000.00" {
		t.Errorf("expected a consistent reconciliation, got %v", result)
	}

	// Step 6: the revert is on the audit trail
	result = app.mustRequest(t, http.StatusOK, "GET", "/api/v1/audit-logs", "", user)
	entries := result["data"].([]interface{})
	if len(entries) != 1 || entries[0].(map[string]interface{})["action"] != "TRANSACTION_REVERTED" {
		t.Errorf("expected one TRANSACTION_REVERTED entry, got %v", entries)
	}
}

func TestLedgerFlow_TrashAndStatus(t *testing.T) {
	app := setupApp(t)
	user := token(t, testutil.NewUserID(), middleware.RoleUser)
	balanceID, categoryID := app.seedLedger(t, user, "50.00")
	txPath := fmt.Sprintf("/api/v1/categories/%.0f/transactions", categoryID)

	result := app.mustRequest(t, http.StatusCreated, "POST", txPath,
		fmt.Sprintf(`{"balance_id":%.0f,"amount":"10.00","status":"Pending"}`, balanceID), user)
	txID := result["transaction"].(map[string]interface{})["id"].(float64)

	result = app.mustRequest(t, http.StatusOK, "PATCH", fmt.Sprintf("/api/v1/transactions/%.0f/status", txID),
		`{"status":"Reconciled"}`, user)
	if got := result["transaction"].(map[string]interface{})["status"]; got != "Reconciled" {
		t.Errorf("expected Reconciled, got %v", got)
	}

	app.mustRequest(t, http.StatusOK, "DELETE", fmt.Sprintf("/api/v1/transactions/%.0f", txID), "", user)

	result = app.mustRequest(t, http.StatusOK, "GET", txPath, "", user)
	if txs := result["transactions"].([]interface{}); len(txs) != 0 {
		t.Errorf("expected trashed transaction to be hidden, got %d", len(txs))
	}
	if got := app.currentBalance(t, user, balanceID); got != "40.00" {
		t.Errorf("trashing must not refund, got %v", got)
	}
}

func TestLedgerFlow_PermanentDeleteRequiresAdmin(t *testing.T) {
	app := setupApp(t)
	userID := testutil.NewUserID()
	user := token(t, userID, middleware.RoleUser)
	admin := token(t, userID, middleware.RoleAdmin)
	balanceID, categoryID := app.seedLedger(t, user, "100.00")

	result := app.mustRequest(t, http.StatusCreated, "POST", fmt.Sprintf("/api/v1/categories/%.0f/transactions", categoryID),
		fmt.Sprintf(`{"balance_id":%.0f,"amount":"1.00"}`, balanceID), user)
	path := fmt.Sprintf("/api/v1/transactions/%.0f/permanent", result["transaction"].(map[string]interface{})["id"].(float64))

	rec := app.request("DELETE", path, "", user)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for a non-admin, got %d: %s", rec.Code, rec.Body.String())
	}

	app.mustRequest(t, http.StatusOK, "DELETE", path, "", admin)

	rec = app.request("DELETE", path, "", admin)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after erase, got %d", rec.Code)
	}
}

func TestLedgerFlow_Isolation(t *testing.T) {
	app := setupApp(t)
	owner := token(t, testutil.NewUserID(), middleware.RoleUser)
	stranger := token(t, testutil.NewUserID(), middleware.RoleUser)
	balanceID, categoryID := app.seedLedger(t, owner, "100.00")

	t.Run("foreign balance reads as not found", func(t *testing.T) {
		rec := app.request("GET", fmt.Sprintf("/api/v1/balances/%.0f", balanceID), "", stranger)
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("cannot spend from a foreign balance", func(t *testing.T) {
		_, strangerCategory := app.seedLedger(t, stranger, "0")
		rec := app.request("POST", fmt.Sprintf("/api/v1/categories/%.0f/transactions", strangerCategory),
			fmt.Sprintf(`{"balance_id":%.0f,"amount":"1.00"}`, balanceID), stranger)
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d: %s", rec.Code, rec.Body.String())
		}
		if got := app.currentBalance(t, owner, balanceID); got != "100.00" {
			t.Errorf("owner balance moved to %v", got)
		}
	})

	t.Run("foreign category reads as not found", func(t *testing.T) {
		rec := app.request("GET", fmt.Sprintf("/api/v1/categories/%.0f/transactions", categoryID), "", stranger)
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})
}

func TestRouter_Infrastructure(t *testing.T) {
	app := setupApp(t)

	t.Run("health", func(t *testing.T) {
		result := app.mustRequest(t, http.StatusOK, "GET", "/api/health", "", "")
		if result["status"] != "ok" {
			t.Errorf("unexpected health body %v", result)
		}
	})

	t.Run("rejects anonymous requests", func(t *testing.T) {
		rec := app.request("GET", "/api/v1/balances", "", "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("answers CORS preflight", func(t *testing.T) {
		rec := app.request("OPTIONS", "/api/v1/balances", "", "")
		if rec.Code != http.StatusNoContent {
			t.Errorf("expected 204, got %d", rec.Code)
		}
		if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Error("expected CORS header")
		}
	})

	t.Run("echoes a request id", func(t *testing.T) {
		rec := app.request("GET", "/api/health", "", "")
		if rec.Header().Get("X-Request-ID") == "" {
			t.Error("expected X-Request-ID header")
		}
	})
}
