package models

import "time"

// Status is the lifecycle state of a transaction. A transaction that reaches
// StatusSuccess or StatusFailed never changes again.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// IsTerminal reports whether the status is final.
func (s Status) IsTerminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// Kind distinguishes money entering the wallet from money leaving it.
type Kind string

const (
	KindDeposit    Kind = "deposit"
	KindWithdrawal Kind = "withdrawal"
)

// User represents a wallet owner
type User struct {
	Id        string    `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Balance represents a user's current available balance (hot data).
// Amounts are integer minor units (e.g. centimes).
type Balance struct {
	UserId            string    `db:"user_id"`
	Amount            int64     `db:"amount"`
	LastTransactionId string    `db:"last_transaction_id"`
	Version           int64     `db:"version"`
	UpdatedAt         time.Time `db:"updated_at"`
}

// Transaction represents immutable transaction history (cold data)
type Transaction struct {
	Id                string    `db:"id"`
	UserId            string    `db:"user_id"`
	Kind              Kind      `db:"kind"`
	Amount            int64     `db:"amount"`
	Status            Status    `db:"status"`
	ProviderReference string    `db:"provider_reference"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}
