package ledger

import (
	"context"
	"errors"
	"fmt"

	"wallet-ledger-go/internal/models"
	"wallet-ledger-go/internal/store"

	"go.uber.org/zap"
)

// Resolve is the sole entry point for settlement, for both real provider
// webhooks and manual/test confirmations. It is idempotent: an already
// terminal transaction (or losing the swap to a concurrent caller) is a
// success no-op, which is what makes at-least-once webhook delivery safe.
//
// Balance effects per the state machine:
//
//	deposit    + success -> credit(amount)
//	deposit    + failed  -> no effect
//	withdrawal + success -> no effect (debit applied at request time)
//	withdrawal + failed  -> refund(amount)
func (s *Service) Resolve(ctx context.Context, transactionId, providerReference string, terminal models.Status) (*models.Transaction, error) {
	if transactionId == "" {
		return nil, fmt.Errorf("%w: transaction id is required", ErrInvalidInput)
	}
	if !terminal.IsTerminal() {
		return nil, fmt.Errorf("%w: status must be success or failed, got %q", ErrInvalidInput, terminal)
	}

	transaction, err := s.db.GetTransaction(ctx, transactionId)
	if err != nil {
		return nil, err
	}

	if transaction.Status.IsTerminal() {
		zap.L().Info("Duplicate settlement ignored",
			zap.String("transaction_id", transactionId),
			zap.String("status", string(transaction.Status)),
			zap.String("provider_reference", providerReference))
		return transaction, nil
	}

	resolved, err := s.db.ResolveTransaction(ctx, store.ResolveParams{
		TransactionId:     transactionId,
		ProviderReference: providerReference,
		Status:            terminal,
		BalanceDelta:      balanceDelta(transaction.Kind, terminal, transaction.Amount),
	})
	if err != nil {
		if errors.Is(err, store.ErrStaleState) {
			// Another caller resolved it first; identical to the
			// already-terminal case.
			return s.db.GetTransaction(ctx, transactionId)
		}
		return nil, err
	}

	return resolved, nil
}

func balanceDelta(kind models.Kind, terminal models.Status, amount int64) int64 {
	switch {
	case kind == models.KindDeposit && terminal == models.StatusSuccess:
		return amount
	case kind == models.KindWithdrawal && terminal == models.StatusFailed:
		return amount
	default:
		return 0
	}
}
