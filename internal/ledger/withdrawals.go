package ledger

import (
	"context"
	"fmt"

	"wallet-ledger-go/internal/models"
	"wallet-ledger-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestWithdrawal reserves the amount and records a pending withdrawal. The
// debit happens at request time so a user cannot overdraw by issuing many
// concurrent withdrawal requests before any settles. The external payout is a
// later, provider-specific step; this core only guarantees the ledger reflects
// the reservation and its eventual settlement or refund.
func (s *Service) RequestWithdrawal(ctx context.Context, userId string, amount int64) (*models.Transaction, error) {
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

	transaction, err := s.db.CreateWithdrawal(ctx, store.TransactionDraft{
		Id:     uuid.New().String(),
		UserId: user.Id,
		Kind:   models.KindWithdrawal,
		Amount: amount,
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("Withdrawal requested",
		zap.String("transaction_id", transaction.Id),
		zap.String("user_id", user.Id),
		zap.Int64("amount", amount))
	return transaction, nil
}
