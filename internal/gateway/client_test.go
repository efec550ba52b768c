package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, baseUrl string, exponent int32) *Client {
	t.Helper()
	client, err := NewClient(ClientOptions{
		Provider: ProviderConfig{
			Name:     "testpay",
			BaseUrl:  baseUrl,
			Currency: "XOF",
			Exponent: exponent,
		},
		ApiKey:         "test-key",
		SiteId:         "site-1",
		NotifyUrl:      "https://ledger.example.com/webhook",
		RequestTimeout: 2 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

func TestInitiate(t *testing.T) {
	var received initiateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/payment" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"code":    "201",
			"message": "CREATED",
			"data": map[string]any{
				"payment_token": "tok-123",
				"payment_url":   "https://checkout.example.com/tok-123",
			},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 0)
	result, err := client.Initiate(context.Background(), InitiateParams{
		TransactionId: "t1",
		Amount:        1500,
		Contact:       "+22501020304",
		Description:   "Wallet deposit",
	})
	if err != nil {
		t.Fatalf("Initiate failed: %v", err)
	}

	if result.ProviderReference != "tok-123" {
		t.Errorf("Expected provider reference tok-123, got %s", result.ProviderReference)
	}
	if result.PaymentUrl != "https://checkout.example.com/tok-123" {
		t.Errorf("Unexpected payment url: %s", result.PaymentUrl)
	}
	if received.ApiKey != "test-key" || received.SiteId != "site-1" {
		t.Errorf("Credentials not forwarded: apikey=%s site_id=%s", received.ApiKey, received.SiteId)
	}
	if received.Amount != "1500" {
		t.Errorf("Expected amount 1500 in major units, got %s", received.Amount)
	}
}

func TestInitiate_MinorUnitConversion(t *testing.T) {
	var received initiateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&received)
		json.NewEncoder(w).Encode(map[string]any{
			"code": "201",
			"data": map[string]any{"payment_token": "tok"},
		})
	}))
	defer server.Close()

	// Exponent 2: 1500 minor units is 15.00 major units.
	client := newTestClient(t, server.URL, 2)
	if _, err := client.Initiate(context.Background(), InitiateParams{TransactionId: "t1", Amount: 1500}); err != nil {
		t.Fatalf("Initiate failed: %v", err)
	}
	if received.Amount != "15" {
		t.Errorf("Expected amount 15, got %s", received.Amount)
	}
}

func TestInitiate_ClientErrorMeansRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 0)
	_, err := client.Initiate(context.Background(), InitiateParams{TransactionId: "t1", Amount: 100})
	if !errors.Is(err, ErrGatewayRejected) {
		t.Errorf("Expected ErrGatewayRejected, got: %v", err)
	}
}

func TestInitiate_DeclineCodeMeansRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"code":    "608",
			"message": "MINIMUM_REQUIRED_FIELDS",
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 0)
	_, err := client.Initiate(context.Background(), InitiateParams{TransactionId: "t1", Amount: 100})
	if !errors.Is(err, ErrGatewayRejected) {
		t.Errorf("Expected ErrGatewayRejected, got: %v", err)
	}
}

func TestInitiate_MissingTokenMeansRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"code": "201"})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 0)
	_, err := client.Initiate(context.Background(), InitiateParams{TransactionId: "t1", Amount: 100})
	if !errors.Is(err, ErrGatewayRejected) {
		t.Errorf("Expected ErrGatewayRejected, got: %v", err)
	}
}

func TestInitiate_ServerErrorMeansUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 0)
	_, err := client.Initiate(context.Background(), InitiateParams{TransactionId: "t1", Amount: 100})
	if !errors.Is(err, ErrGatewayUnavailable) {
		t.Errorf("Expected ErrGatewayUnavailable, got: %v", err)
	}
}

func TestInitiate_NetworkFailureMeansUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client := newTestClient(t, server.URL, 0)
	_, err := client.Initiate(context.Background(), InitiateParams{TransactionId: "t1", Amount: 100})
	if !errors.Is(err, ErrGatewayUnavailable) {
		t.Errorf("Expected ErrGatewayUnavailable, got: %v", err)
	}
}

func TestNewClient_Validation(t *testing.T) {
	if _, err := NewClient(ClientOptions{ApiKey: "k"}); err == nil {
		t.Error("Expected error for missing base url")
	}
	if _, err := NewClient(ClientOptions{Provider: ProviderConfig{BaseUrl: "https://x"}}); err == nil {
		t.Error("Expected error for missing api key")
	}
}
