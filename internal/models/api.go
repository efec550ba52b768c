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

package models

import "time"

// DepositRequest initiates a deposit through the payment provider
type DepositRequest struct {
	UserId  string `json:"user_id"`
	Amount  int64  `json:"amount"`
	Contact string `json:"contact"`
}

// DepositResponse is returned to the caller after the provider accepted the payment attempt
type DepositResponse struct {
	Success       bool   `json:"success"`
	TransactionId string `json:"transaction_id"`
	PaymentUrl    string `json:"payment_url"`
}

// WithdrawalRequest reserves funds for a payout
type WithdrawalRequest struct {
	UserId string `json:"user_id"`
	Amount int64  `json:"amount"`
}

// WithdrawalResponse acknowledges a reserved withdrawal
type WithdrawalResponse struct {
	Success       bool   `json:"success"`
	TransactionId string `json:"transaction_id"`
}

// WebhookPayload is the settlement notification posted by the payment provider.
// It may arrive out of order and any number of times.
type WebhookPayload struct {
	TransactionId     string `json:"transaction_id"`
	ProviderReference string `json:"provider_transaction_id"`
	Status            string `json:"status"`
	Token             string `json:"token"`
}

// ConfirmRequest is the manual/test settlement path (auth optional)
type ConfirmRequest struct {
	TransactionId string `json:"transaction_id"`
	Status        string `json:"status"`
}

// BalanceResponse reports a user's current available balance
type BalanceResponse struct {
	Success bool   `json:"success"`
	UserId  string `json:"user_id"`
	Amount  int64  `json:"amount"`
}

// TransactionRecord represents a transaction in the user's history
type TransactionRecord struct {
	Id                string    `json:"id"`
	Kind              string    `json:"kind"`
	Amount            int64     `json:"amount"`
	Status            string    `json:"status"`
	ProviderReference string    `json:"provider_transaction_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// ErrorResponse carries a stable machine-readable error kind plus a
// human-readable message. Internal details never leak through it.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}
