package gateway

import (
	"context"
	"errors"
)

// Sentinel errors distinguishing transient provider failures from permanent
// rejections. Transient failures are safe to retry as a new payment attempt;
// rejections terminate the transaction.
var (
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrGatewayRejected    = errors.New("payment gateway rejected the request")
)

// InitiateParams contains the parameters for creating an external payment.
type InitiateParams struct {
	TransactionId string
	Amount        int64 // minor units
	Contact       string
	Description   string
}

// InitiateResult is the provider's answer to a payment attempt.
type InitiateResult struct {
	ProviderReference string
	PaymentUrl        string
}

// PaymentGateway is a stateless boundary adapter over the external payment
// provider. Given the same logical request it may be called multiple times by
// an operator retry path; each attempt is a new external payment.
type PaymentGateway interface {
	Initiate(ctx context.Context, params InitiateParams) (*InitiateResult, error)
}
