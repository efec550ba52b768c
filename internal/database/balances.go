package database

import (
	"context"
	"database/sql"
	"fmt"

	"wallet-ledger-go/internal/store"

	"go.uber.org/zap"
)

// GetBalance returns the current available balance for a user in minor units.
// A missing row means zero.
func (s *Service) GetBalance(ctx context.Context, userId string) (int64, error) {
	var amount int64
	err := s.db.QueryRowContext(ctx, queryGetBalance, userId).Scan(&amount)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return amount, nil
}

// Credit atomically increases the balance. No upper bound is enforced here.
func (s *Service) Credit(ctx context.Context, userId string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("credit amount must be positive, got %d", amount)
	}

	var newBalance int64
	err := s.db.QueryRowContext(ctx, queryCreditBalance, userId, amount, "").Scan(&newBalance)
	if err != nil {
		return 0, fmt.Errorf("failed to credit balance: %w", err)
	}

	zap.L().Info("Balance credited",
		zap.String("user_id", userId),
		zap.Int64("amount", amount),
		zap.Int64("new_balance", newBalance))
	return newBalance, nil
}

// Debit atomically decreases the balance only while current >= amount. The
// conditional update runs as one statement, so concurrent debits for the same
// user can never both pass the check. Fails with store.ErrInsufficientFunds.
func (s *Service) Debit(ctx context.Context, userId string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("debit amount must be positive, got %d", amount)
	}

	var newBalance int64
	err := s.db.QueryRowContext(ctx, queryDebitBalance, amount, "", userId).Scan(&newBalance)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("%w: user %s", store.ErrInsufficientFunds, userId)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to debit balance: %w", err)
	}

	zap.L().Info("Balance debited",
		zap.String("user_id", userId),
		zap.Int64("amount", amount),
		zap.Int64("new_balance", newBalance))
	return newBalance, nil
}

// Refund reverses a prior successful debit when a withdrawal fails after the
// reservation was taken.
func (s *Service) Refund(ctx context.Context, userId string, amount int64) (int64, error) {
	zap.L().Info("Refunding failed withdrawal",
		zap.String("user_id", userId),
		zap.Int64("amount", amount))
	return s.Credit(ctx, userId, amount)
}

// ReconcileUserBalance verifies that the stored balance matches the balance
// replayed from the transaction trail: successful deposits credit, pending and
// successful withdrawals debit, failed withdrawals net to zero.
func (s *Service) ReconcileUserBalance(ctx context.Context, userId string) error {
	currentBalance, err := s.GetBalance(ctx, userId)
	if err != nil {
		return fmt.Errorf("failed to get current balance: %w", err)
	}

	var calculatedBalance int64
	err = s.db.QueryRowContext(ctx, queryReconcileBalance, userId).Scan(&calculatedBalance)
	if err != nil {
		return fmt.Errorf("failed to calculate balance from transactions: %w", err)
	}

	if currentBalance != calculatedBalance {
		zap.L().Error("Balance reconciliation failed",
			zap.String("user_id", userId),
			zap.Int64("current_balance", currentBalance),
			zap.Int64("calculated_balance", calculatedBalance),
			zap.Int64("difference", currentBalance-calculatedBalance))
		return fmt.Errorf("balance mismatch for user %s: current=%d, calculated=%d", userId, currentBalance, calculatedBalance)
	}

	zap.L().Info("Balance reconciliation successful",
		zap.String("user_id", userId),
		zap.Int64("balance", currentBalance))
	return nil
}
