package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wallet-ledger-go/internal/database"
	"wallet-ledger-go/internal/gateway"
	"wallet-ledger-go/internal/ledger"
	"wallet-ledger-go/internal/models"
	"wallet-ledger-go/internal/store"
	"wallet-ledger-go/internal/webhook"
)

type fakeGateway struct {
	err error
}

func (f *fakeGateway) Initiate(ctx context.Context, params gateway.InitiateParams) (*gateway.InitiateResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &gateway.InitiateResult{
		ProviderReference: "REF-" + params.TransactionId,
		PaymentUrl:        "https://pay.example.com/" + params.TransactionId,
	}, nil
}

func setupServer(t *testing.T, gw gateway.PaymentGateway) (*Server, store.LedgerStore, func()) {
	db, err := database.NewService(context.Background(), models.DatabaseConfig{
		Path:         ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		PingTimeout:  5 * time.Second,
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	ledgerService := ledger.NewService(db, gw)
	processor := webhook.NewProcessor(ledgerService, "hunter2")
	return New(ledgerService, processor, db), db, db.Close
}

func postJson(t *testing.T, s *Server, path string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to encode body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.App().Test(req, -1)
	if err != nil {
		t.Fatalf("Request %s failed: %v", path, err)
	}
	return resp
}

func decodeJson(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response: %v", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("Failed to decode response %q: %v", raw, err)
	}
}

func createUser(t *testing.T, s *Server) string {
	t.Helper()
	resp := postJson(t, s, "/users", map[string]string{"name": "Alice", "email": "alice@example.com"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 creating user, got %d", resp.StatusCode)
	}
	var body struct {
		UserId string `json:"user_id"`
	}
	decodeJson(t, resp, &body)
	return body.UserId
}

func TestHealthRoute(t *testing.T) {
	s, _, cleanup := setupServer(t, &fakeGateway{})
	defer cleanup()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp, err := s.App().Test(req, -1)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}
}

func TestDepositWebhookFlow(t *testing.T) {
	s, db, cleanup := setupServer(t, &fakeGateway{})
	defer cleanup()

	userId := createUser(t, s)

	resp := postJson(t, s, "/init-deposit", models.DepositRequest{UserId: userId, Amount: 1000, Contact: "+22501020304"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	var deposit models.DepositResponse
	decodeJson(t, resp, &deposit)
	if deposit.TransactionId == "" || deposit.PaymentUrl == "" {
		t.Fatalf("Incomplete deposit response: %+v", deposit)
	}

	// Provider settles via webhook, twice.
	payload := map[string]string{
		"transaction_id":          deposit.TransactionId,
		"provider_transaction_id": "PR-1",
		"status":                  "success",
		"token":                   "hunter2",
	}
	for i := 0; i < 2; i++ {
		resp = postJson(t, s, "/webhook", payload)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Webhook delivery %d: expected 200, got %d", i+1, resp.StatusCode)
		}
		resp.Body.Close()
	}

	balance, err := db.GetBalance(context.Background(), userId)
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if balance != 1000 {
		t.Errorf("Expected balance 1000 after duplicate webhooks, got %d", balance)
	}

	// And the balance route agrees.
	req := httptest.NewRequest(http.MethodGet, "/balances/"+userId, nil)
	httpResp, err := s.App().Test(req, -1)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	var balanceResp models.BalanceResponse
	decodeJson(t, httpResp, &balanceResp)
	if balanceResp.Amount != 1000 {
		t.Errorf("Expected amount 1000, got %d", balanceResp.Amount)
	}
}

func TestWebhookBadToken(t *testing.T) {
	s, _, cleanup := setupServer(t, &fakeGateway{})
	defer cleanup()

	userId := createUser(t, s)
	resp := postJson(t, s, "/init-deposit", models.DepositRequest{UserId: userId, Amount: 1000})
	var deposit models.DepositResponse
	decodeJson(t, resp, &deposit)

	resp = postJson(t, s, "/webhook", map[string]string{
		"transaction_id": deposit.TransactionId,
		"status":         "success",
		"token":          "wrong",
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("Expected 403, got %d", resp.StatusCode)
	}
	var errResp models.ErrorResponse
	decodeJson(t, resp, &errResp)
	if errResp.Error != "unauthenticated" {
		t.Errorf("Expected unauthenticated error kind, got %s", errResp.Error)
	}
}

func TestWithdrawalInsufficientFunds(t *testing.T) {
	s, _, cleanup := setupServer(t, &fakeGateway{})
	defer cleanup()

	userId := createUser(t, s)
	resp := postJson(t, s, "/request-withdrawal", models.WithdrawalRequest{UserId: userId, Amount: 500})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("Expected 409, got %d", resp.StatusCode)
	}
	var errResp models.ErrorResponse
	decodeJson(t, resp, &errResp)
	if errResp.Error != "insufficient_funds" {
		t.Errorf("Expected insufficient_funds error kind, got %s", errResp.Error)
	}
}

func TestWithdrawalAndConfirmFailureRefunds(t *testing.T) {
	s, db, cleanup := setupServer(t, &fakeGateway{})
	defer cleanup()

	userId := createUser(t, s)
	ctx := context.Background()
	if _, err := db.Credit(ctx, userId, 1000); err != nil {
		t.Fatalf("Credit failed: %v", err)
	}

	resp := postJson(t, s, "/request-withdrawal", models.WithdrawalRequest{UserId: userId, Amount: 400})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	var withdrawal models.WithdrawalResponse
	decodeJson(t, resp, &withdrawal)

	resp = postJson(t, s, "/confirm-transaction", models.ConfirmRequest{
		TransactionId: withdrawal.TransactionId,
		Status:        "failed",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 confirming, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	balance, _ := db.GetBalance(ctx, userId)
	if balance != 1000 {
		t.Errorf("Expected balance restored to 1000, got %d", balance)
	}
}

func TestUnknownUserRoutes(t *testing.T) {
	s, _, cleanup := setupServer(t, &fakeGateway{})
	defer cleanup()

	resp := postJson(t, s, "/init-deposit", models.DepositRequest{UserId: "nobody", Amount: 100})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	req := httptest.NewRequest(http.MethodGet, "/balances/nobody", nil)
	httpResp, err := s.App().Test(req, -1)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if httpResp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", httpResp.StatusCode)
	}
	httpResp.Body.Close()
}

func TestGatewayRejectedResponse(t *testing.T) {
	s, _, cleanup := setupServer(t, &fakeGateway{err: gateway.ErrGatewayRejected})
	defer cleanup()

	userId := createUser(t, s)
	resp := postJson(t, s, "/init-deposit", models.DepositRequest{UserId: userId, Amount: 100})
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("Expected 502, got %d", resp.StatusCode)
	}
	var errResp models.ErrorResponse
	decodeJson(t, resp, &errResp)
	if errResp.Error != "gateway_rejected" {
		t.Errorf("Expected gateway_rejected error kind, got %s", errResp.Error)
	}
}

func TestInvalidRequestBodies(t *testing.T) {
	s, _, cleanup := setupServer(t, &fakeGateway{})
	defer cleanup()

	resp := postJson(t, s, "/users", map[string]string{"name": ""})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing user fields, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = postJson(t, s, "/init-deposit", models.DepositRequest{UserId: "u", Amount: -5})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for negative amount, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = postJson(t, s, "/confirm-transaction", models.ConfirmRequest{TransactionId: "t", Status: "bogus"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad status, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestTransactionHistoryRoute(t *testing.T) {
	s, _, cleanup := setupServer(t, &fakeGateway{})
	defer cleanup()

	userId := createUser(t, s)
	resp := postJson(t, s, "/init-deposit", models.DepositRequest{UserId: userId, Amount: 100})
	resp.Body.Close()

	req := httptest.NewRequest(http.MethodGet, "/transactions/"+userId+"?limit=10", nil)
	httpResp, err := s.App().Test(req, -1)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", httpResp.StatusCode)
	}
	var body struct {
		Success      bool                       `json:"success"`
		Transactions []models.TransactionRecord `json:"transactions"`
	}
	decodeJson(t, httpResp, &body)
	if len(body.Transactions) != 1 {
		t.Errorf("Expected 1 transaction, got %d", len(body.Transactions))
	}
	if body.Transactions[0].Kind != "deposit" {
		t.Errorf("Expected a deposit record, got %s", body.Transactions[0].Kind)
	}
}
