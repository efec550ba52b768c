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

package ledger

import (
	"context"
	"errors"
	"fmt"

	"wallet-ledger-go/internal/gateway"
	"wallet-ledger-go/internal/models"
	"wallet-ledger-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DepositResult carries what the caller needs to complete the payment.
type DepositResult struct {
	Transaction *models.Transaction
	PaymentUrl  string
}

// InitiateDeposit creates a pending deposit and asks the payment gateway for a
// payment attempt. The balance is NOT credited here: money is only real once
// the provider confirms settlement through the webhook.
//
// A gateway rejection marks the transaction failed right away. A transient
// gateway failure leaves it pending, since the payment may still complete
// server-side on the provider; the error is surfaced for the caller to retry
// as a new attempt or poll.
func (s *Service) InitiateDeposit(ctx context.Context, userId string, amount int64, contact string) (*DepositResult, error) {
	if userId == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive, got %d", ErrInvalidInput, amount)
	}

	user, err := s.db.GetUserById(ctx, userId)
	if err != nil {
		return nil, err
	}

	draft := store.TransactionDraft{
		Id:     uuid.New().String(),
		UserId: user.Id,
		Kind:   models.KindDeposit,
		Amount: amount,
	}
	transaction, err := s.db.CreateTransaction(ctx, draft)
	if err != nil {
		return nil, fmt.Errorf("failed to create pending deposit: %w", err)
	}

	result, err := s.gateway.Initiate(ctx, gateway.InitiateParams{
		TransactionId: transaction.Id,
		Amount:        amount,
		Contact:       contact,
		Description:   "Wallet deposit",
	})
	if err != nil {
		if errors.Is(err, gateway.ErrGatewayRejected) {
			// Permanent decline: terminate the transaction. Deposits have no
			// balance effect before settlement, so the swap alone is enough.
			if _, casErr := s.db.UpdateTransactionStatus(ctx, transaction.Id, models.StatusPending, models.StatusFailed, ""); casErr != nil && !errors.Is(casErr, store.ErrStaleState) {
				zap.L().Error("Failed to mark rejected deposit as failed",
					zap.String("transaction_id", transaction.Id),
					zap.Error(casErr))
			}
			return nil, err
		}
		// Transient failure or timeout: outcome unknown, leave pending for
		// the reconciliation sweep.
		zap.L().Warn("Gateway unavailable, deposit left pending",
			zap.String("transaction_id", transaction.Id),
			zap.Error(err))
		return nil, err
	}

	if err := s.db.SetProviderReference(ctx, transaction.Id, result.ProviderReference); err != nil {
		zap.L().Error("Failed to store provider reference",
			zap.String("transaction_id", transaction.Id),
			zap.String("provider_reference", result.ProviderReference),
			zap.Error(err))
	} else {
		transaction.ProviderReference = result.ProviderReference
	}

	zap.L().Info("Deposit initiated",
		zap.String("transaction_id", transaction.Id),
		zap.String("user_id", user.Id),
		zap.Int64("amount", amount),
		zap.String("provider_reference", result.ProviderReference))

	return &DepositResult{
		Transaction: transaction,
		PaymentUrl:  result.PaymentUrl,
	}, nil
}
