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
)

// ErrInvalidInput reports a request rejected before any state mutation.
var ErrInvalidInput = errors.New("invalid input")

// Service drives the transaction state machine: it creates pending
// transactions, calls the payment gateway, and applies settlement outcomes.
type Service struct {
	db      store.LedgerStore
	gateway gateway.PaymentGateway
}

func NewService(db store.LedgerStore, gw gateway.PaymentGateway) *Service {
	return &Service{
		db:      db,
		gateway: gw,
	}
}

func (s *Service) HealthCheck(ctx context.Context) error {
	_, err := s.db.GetUsers(ctx)
	if err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// GetBalance returns the user's current available balance in minor units.
func (s *Service) GetBalance(ctx context.Context, userId string) (int64, error) {
	if userId == "" {
		return 0, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if _, err := s.db.GetUserById(ctx, userId); err != nil {
		return 0, err
	}
	return s.db.GetBalance(ctx, userId)
}

// GetHistory returns the user's transaction history, newest first.
func (s *Service) GetHistory(ctx context.Context, userId string, limit, offset int) ([]models.Transaction, error) {
	if userId == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if limit <= 0 {
		limit = 20
	}
	return s.db.GetTransactionHistory(ctx, userId, limit, offset)
}
