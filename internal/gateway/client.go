/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
)

// Compile-time check: *Client must satisfy PaymentGateway.
var _ PaymentGateway = (*Client)(nil)

// ProviderConfig describes one payment provider from the providers registry.
type ProviderConfig struct {
	Name     string `yaml:"name"`
	BaseUrl  string `yaml:"base_url"`
	Currency string `yaml:"currency"`
	// Exponent converts ledger minor units to the provider's major units
	// (XOF uses 0, EUR uses 2).
	Exponent  int32  `yaml:"exponent"`
	ApiKeyEnv string `yaml:"api_key_env"`
	SiteIdEnv string `yaml:"site_id_env"`
}

// Client speaks the checkout contract shared by the mobile-money providers
// (CinetPay, FedaPay): one JSON POST creates a payment attempt and returns a
// provider reference plus a hosted payment URL.
type Client struct {
	httpClient http.Client
	baseUrl    string
	currency   string
	exponent   int32
	apiKey     string
	siteId     string
	notifyUrl  string
}

type ClientOptions struct {
	Provider       ProviderConfig
	ApiKey         string
	SiteId         string
	NotifyUrl      string
	RequestTimeout time.Duration
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.Provider.BaseUrl == "" {
		return nil, fmt.Errorf("provider base url cannot be empty")
	}
	if opts.ApiKey == "" {
		return nil, fmt.Errorf("provider api key cannot be empty")
	}

	httpClient, err := createCustomHttpClient(opts.RequestTimeout)
	if err != nil {
		return nil, fmt.Errorf("unable to create custom http client: %w", err)
	}

	return &Client{
		httpClient: httpClient,
		baseUrl:    opts.Provider.BaseUrl,
		currency:   opts.Provider.Currency,
		exponent:   opts.Provider.Exponent,
		apiKey:     opts.ApiKey,
		siteId:     opts.SiteId,
		notifyUrl:  opts.NotifyUrl,
	}, nil
}

func createCustomHttpClient(timeout time.Duration) (http.Client, error) {
	tr := &http.Transport{
		ResponseHeaderTimeout: 30 * time.Second,
		Proxy:                 http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			KeepAlive: 30 * time.Second,
			Timeout:   15 * time.Second,
		}).DialContext,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		MaxIdleConnsPerHost:   5,
		ExpectContinueTimeout: 5 * time.Second,
	}

	if err := http2.ConfigureTransport(tr); err != nil {
		return http.Client{}, err
	}

	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return http.Client{
		Transport: tr,
		Timeout:   timeout,
	}, nil
}

type initiateRequest struct {
	ApiKey        string `json:"apikey"`
	SiteId        string `json:"site_id,omitempty"`
	TransactionId string `json:"transaction_id"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	Customer      string `json:"customer_phone_number"`
	Description   string `json:"description,omitempty"`
	NotifyUrl     string `json:"notify_url,omitempty"`
}

type initiateResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    struct {
		PaymentToken string `json:"payment_token"`
		PaymentUrl   string `json:"payment_url"`
	} `json:"data"`
}

// Initiate creates a new external payment attempt. Network failures and 5xx
// answers come back as ErrGatewayUnavailable (the payment may still complete
// server-side); a 4xx answer or a non-created business code means the provider
// declined and comes back as ErrGatewayRejected.
func (c *Client) Initiate(ctx context.Context, params InitiateParams) (*InitiateResult, error) {
	// Providers quote amounts in major units.
	amount := decimal.New(params.Amount, -c.exponent)

	body, err := json.Marshal(initiateRequest{
		ApiKey:        c.apiKey,
		SiteId:        c.siteId,
		TransactionId: params.TransactionId,
		Amount:        amount.String(),
		Currency:      c.currency,
		Customer:      params.Contact,
		Description:   params.Description,
		NotifyUrl:     c.notifyUrl,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to encode initiate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseUrl+"/payment", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("unable to build initiate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	zap.L().Info("Initiating external payment",
		zap.String("transaction_id", params.TransactionId),
		zap.String("amount", amount.String()),
		zap.String("currency", c.currency))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		zap.L().Warn("Payment gateway request failed",
			zap.String("transaction_id", params.TransactionId),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			zap.L().Warn("Failed to close response body", zap.Error(err))
		}
	}()

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: provider returned status %d", ErrGatewayUnavailable, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: provider returned status %d", ErrGatewayRejected, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: unable to read provider response: %v", ErrGatewayUnavailable, err)
	}

	var decoded initiateResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("%w: unable to decode provider response: %v", ErrGatewayUnavailable, err)
	}

	// "201" is the providers' created code; anything else is a decline.
	if decoded.Code != "" && decoded.Code != "201" {
		zap.L().Warn("Payment gateway declined the request",
			zap.String("transaction_id", params.TransactionId),
			zap.String("code", decoded.Code),
			zap.String("message", decoded.Message))
		return nil, fmt.Errorf("%w: code %s", ErrGatewayRejected, decoded.Code)
	}
	if decoded.Data.PaymentToken == "" {
		return nil, fmt.Errorf("%w: provider response missing payment token", ErrGatewayRejected)
	}

	zap.L().Info("External payment initiated",
		zap.String("transaction_id", params.TransactionId),
		zap.String("provider_reference", decoded.Data.PaymentToken))

	return &InitiateResult{
		ProviderReference: decoded.Data.PaymentToken,
		PaymentUrl:        decoded.Data.PaymentUrl,
	}, nil
}
