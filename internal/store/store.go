package store

import (
	"context"
	"errors"
	"time"

	"wallet-ledger-go/internal/models"
)

// Sentinel errors shared across all backend implementations.
var (
	ErrConflict          = errors.New("transaction id already exists")
	ErrNotFound          = errors.New("transaction not found")
	ErrStaleState        = errors.New("transaction already resolved")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrUserNotFound      = errors.New("user not found")
)

// TransactionDraft contains the parameters for creating a pending transaction.
type TransactionDraft struct {
	Id                string
	UserId            string
	Kind              models.Kind
	Amount            int64
	ProviderReference string
}

// ResolveParams contains the parameters for settling a pending transaction.
// BalanceDelta is the signed amount applied to the user's balance in the same
// atomic step as the status transition; zero means no balance effect.
type ResolveParams struct {
	TransactionId     string
	ProviderReference string
	Status            models.Status
	BalanceDelta      int64
}

// LedgerStore defines the contract that every backend must satisfy.
type LedgerStore interface {
	// --- Users ---
	GetUsers(ctx context.Context) ([]models.User, error)
	GetUserById(ctx context.Context, userId string) (*models.User, error)
	CreateUser(ctx context.Context, userId, name, email string) (*models.User, error)

	// --- Transactions ---
	CreateTransaction(ctx context.Context, draft TransactionDraft) (*models.Transaction, error)
	GetTransaction(ctx context.Context, id string) (*models.Transaction, error)
	// UpdateTransactionStatus is a compare-and-swap: it fails with
	// ErrStaleState if the stored status no longer equals expected.
	UpdateTransactionStatus(ctx context.Context, id string, expected, next models.Status, providerReference string) (*models.Transaction, error)
	SetProviderReference(ctx context.Context, id, providerReference string) error
	// CreateWithdrawal debits the user's balance and records the pending
	// withdrawal in one atomic step. Fails with ErrInsufficientFunds.
	CreateWithdrawal(ctx context.Context, draft TransactionDraft) (*models.Transaction, error)
	// ResolveTransaction performs the status compare-and-swap from pending
	// and applies the balance delta atomically. Fails with ErrStaleState if
	// another caller resolved the transaction first.
	ResolveTransaction(ctx context.Context, params ResolveParams) (*models.Transaction, error)
	GetTransactionHistory(ctx context.Context, userId string, limit, offset int) ([]models.Transaction, error)
	ListPendingOlderThan(ctx context.Context, age time.Duration) ([]models.Transaction, error)

	// --- Balances ---
	GetBalance(ctx context.Context, userId string) (int64, error)
	Credit(ctx context.Context, userId string, amount int64) (int64, error)
	Debit(ctx context.Context, userId string, amount int64) (int64, error)
	Refund(ctx context.Context, userId string, amount int64) (int64, error)
	ReconcileUserBalance(ctx context.Context, userId string) error

	// --- Lifecycle ---
	Close()
}
