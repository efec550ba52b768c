package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"wallet-ledger-go/internal/models"
	"wallet-ledger-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateTransaction records a new pending transaction. Fails with
// store.ErrConflict if the id is already taken.
func (s *Service) CreateTransaction(ctx context.Context, draft store.TransactionDraft) (*models.Transaction, error) {
	zap.L().Info("Creating transaction",
		zap.String("transaction_id", draft.Id),
		zap.String("user_id", draft.UserId),
		zap.String("kind", string(draft.Kind)),
		zap.Int64("amount", draft.Amount))

	var existingId string
	err := s.db.QueryRowContext(ctx, queryCheckTransactionExists, draft.Id).Scan(&existingId)
	if err == nil {
		return nil, fmt.Errorf("%w: %s", store.ErrConflict, draft.Id)
	} else if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to check for existing transaction: %w", err)
	}

	now := time.Now().UTC()
	transaction, err := scanTransaction(s.db.QueryRowContext(ctx, queryInsertTransaction,
		draft.Id, draft.UserId, string(draft.Kind), draft.Amount,
		string(models.StatusPending), draft.ProviderReference, now, now))
	if err != nil {
		return nil, fmt.Errorf("failed to insert transaction: %w", err)
	}
	return transaction, nil
}

// GetTransaction looks up a transaction by id. Fails with store.ErrNotFound.
func (s *Service) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	transaction, err := scanTransaction(s.db.QueryRowContext(ctx, queryGetTransaction, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return transaction, nil
}

// UpdateTransactionStatus is the compare-and-swap primitive: the update only
// applies while the stored status still equals expected. A duplicate webhook
// finds the transaction already terminal and fails here with ErrStaleState.
func (s *Service) UpdateTransactionStatus(ctx context.Context, id string, expected, next models.Status, providerReference string) (*models.Transaction, error) {
	result, err := s.db.ExecContext(ctx, queryUpdateTransactionStatus,
		string(next), providerReference, time.Now().UTC(), id, string(expected))
	if err != nil {
		return nil, fmt.Errorf("failed to update transaction status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		// Either the row is gone or someone else won the swap.
		if _, err := s.GetTransaction(ctx, id); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s", store.ErrStaleState, id)
	}

	return s.GetTransaction(ctx, id)
}

// SetProviderReference stores the external payment identifier once known.
// Only pending transactions are touched; a terminal row keeps the reference
// it was resolved with.
func (s *Service) SetProviderReference(ctx context.Context, id, providerReference string) error {
	_, err := s.db.ExecContext(ctx, querySetProviderReference, providerReference, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to set provider reference: %w", err)
	}
	return nil
}

// CreateWithdrawal reserves the withdrawal amount and records the pending
// transaction in a single database transaction, so the debit is never visible
// without its transaction record. Fails with store.ErrInsufficientFunds.
func (s *Service) CreateWithdrawal(ctx context.Context, draft store.TransactionDraft) (*models.Transaction, error) {
	zap.L().Info("Reserving withdrawal",
		zap.String("transaction_id", draft.Id),
		zap.String("user_id", draft.UserId),
		zap.Int64("amount", draft.Amount))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var newBalance int64
	err = tx.QueryRowContext(ctx, queryDebitBalance, draft.Amount, draft.Id, draft.UserId).Scan(&newBalance)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: user %s", store.ErrInsufficientFunds, draft.UserId)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to debit balance: %w", err)
	}

	now := time.Now().UTC()
	transaction, err := scanTransaction(tx.QueryRowContext(ctx, queryInsertTransaction,
		draft.Id, draft.UserId, string(draft.Kind), draft.Amount,
		string(models.StatusPending), draft.ProviderReference, now, now))
	if err != nil {
		return nil, fmt.Errorf("failed to insert withdrawal transaction: %w", err)
	}

	if err := addJournalEntries(ctx, tx, draft.Id, draft.UserId, -draft.Amount); err != nil {
		return nil, fmt.Errorf("failed to add journal entries: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit withdrawal: %w", err)
	}

	zap.L().Info("Withdrawal reserved",
		zap.String("transaction_id", draft.Id),
		zap.String("user_id", draft.UserId),
		zap.Int64("new_balance", newBalance))
	return transaction, nil
}

// ResolveTransaction settles a pending transaction: the status compare-and-swap
// and the balance effect commit or roll back together. Losing the swap is
// reported as store.ErrStaleState and has no side effects.
func (s *Service) ResolveTransaction(ctx context.Context, params store.ResolveParams) (*models.Transaction, error) {
	if !params.Status.IsTerminal() {
		return nil, fmt.Errorf("resolve requires a terminal status, got %q", params.Status)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, queryUpdateTransactionStatus,
		string(params.Status), params.ProviderReference, time.Now().UTC(),
		params.TransactionId, string(models.StatusPending))
	if err != nil {
		return nil, fmt.Errorf("failed to update transaction status: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		if _, err := scanTransaction(tx.QueryRowContext(ctx, queryGetTransaction, params.TransactionId)); err != nil {
			if err == sql.ErrNoRows {
				return nil, fmt.Errorf("%w: %s", store.ErrNotFound, params.TransactionId)
			}
			return nil, fmt.Errorf("failed to get transaction: %w", err)
		}
		return nil, fmt.Errorf("%w: %s", store.ErrStaleState, params.TransactionId)
	}

	transaction, err := scanTransaction(tx.QueryRowContext(ctx, queryGetTransaction, params.TransactionId))
	if err != nil {
		return nil, fmt.Errorf("failed to reload transaction: %w", err)
	}

	if params.BalanceDelta != 0 {
		var newBalance int64
		err = tx.QueryRowContext(ctx, queryCreditBalance,
			transaction.UserId, params.BalanceDelta, params.TransactionId).Scan(&newBalance)
		if err != nil {
			return nil, fmt.Errorf("failed to apply balance effect: %w", err)
		}
		if err := addJournalEntries(ctx, tx, params.TransactionId, transaction.UserId, params.BalanceDelta); err != nil {
			return nil, fmt.Errorf("failed to add journal entries: %w", err)
		}
		zap.L().Info("Balance effect applied",
			zap.String("transaction_id", params.TransactionId),
			zap.String("user_id", transaction.UserId),
			zap.Int64("delta", params.BalanceDelta),
			zap.Int64("new_balance", newBalance))
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit resolution: %w", err)
	}

	zap.L().Info("Transaction resolved",
		zap.String("transaction_id", transaction.Id),
		zap.String("user_id", transaction.UserId),
		zap.String("kind", string(transaction.Kind)),
		zap.String("status", string(transaction.Status)),
		zap.String("provider_reference", transaction.ProviderReference))
	return transaction, nil
}

// GetTransactionHistory returns paginated transaction history for a user
func (s *Service) GetTransactionHistory(ctx context.Context, userId string, limit, offset int) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, queryGetTransactionHistory, userId, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction history: %w", err)
	}
	defer closeRows(rows)

	return collectTransactions(rows)
}

// ListPendingOlderThan returns pending transactions created before now-age,
// the candidates for a reconciliation sweep against the provider.
func (s *Service) ListPendingOlderThan(ctx context.Context, age time.Duration) ([]models.Transaction, error) {
	cutoff := time.Now().UTC().Add(-age)
	rows, err := s.db.QueryContext(ctx, queryListPendingOlderThan, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending transactions: %w", err)
	}
	defer closeRows(rows)

	return collectTransactions(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var t models.Transaction
	var kind, status string
	err := row.Scan(&t.Id, &t.UserId, &kind, &t.Amount, &status, &t.ProviderReference, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.Kind = models.Kind(kind)
	t.Status = models.Status(status)
	return &t, nil
}

func collectTransactions(rows *sql.Rows) ([]models.Transaction, error) {
	var transactions []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}
	return transactions, nil
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		zap.L().Warn("Failed to close rows", zap.Error(err))
	}
}

// addJournalEntries creates double-entry bookkeeping entries for a balance
// mutation. A positive delta credits the user (deposit settlement, refund); a
// negative delta debits the user (withdrawal reservation).
func addJournalEntries(ctx context.Context, tx *sql.Tx, transactionId, userId string, delta int64) error {
	type entry struct {
		accountType  string
		accountId    string
		debitAmount  int64
		creditAmount int64
	}

	var entries []entry
	if delta > 0 {
		// User asset account increases (debit); system liability increases
		// (credit) - we owe the user this amount.
		entries = []entry{
			{"user_asset", userId, delta, 0},
			{"system_liability", "user_deposits", 0, delta},
		}
	} else {
		entries = []entry{
			{"user_asset", userId, 0, -delta},
			{"system_liability", "user_deposits", -delta, 0},
		}
	}

	for _, e := range entries {
		_, err := tx.ExecContext(ctx, queryInsertJournalEntry,
			uuid.New().String(), transactionId, e.accountType, e.accountId, e.debitAmount, e.creditAmount)
		if err != nil {
			return err
		}
	}
	return nil
}
