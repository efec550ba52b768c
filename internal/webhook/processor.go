package webhook

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"

	"wallet-ledger-go/internal/ledger"
	"wallet-ledger-go/internal/models"

	"go.uber.org/zap"
)

var (
	ErrUnauthenticated = errors.New("webhook authentication failed")
	ErrInvalidPayload  = errors.New("invalid webhook payload")
)

// Processor validates inbound settlement notifications before delegating to
// the orchestrator. Providers retry webhooks, so processing the same payload
// arbitrarily many times must be safe; the idempotency itself lives in
// ledger.Resolve.
type Processor struct {
	ledger *ledger.Service
	secret string
}

func NewProcessor(ledgerService *ledger.Service, secret string) *Processor {
	return &Processor{
		ledger: ledgerService,
		secret: secret,
	}
}

// Process handles a provider webhook: shared-secret check, payload validation,
// then settlement.
func (p *Processor) Process(ctx context.Context, payload models.WebhookPayload) (*models.Transaction, error) {
	if p.secret != "" && !tokenMatches(payload.Token, p.secret) {
		zap.L().Warn("Webhook rejected: bad token",
			zap.String("transaction_id", payload.TransactionId))
		return nil, ErrUnauthenticated
	}

	status, err := parseStatus(payload.Status)
	if err != nil {
		return nil, err
	}
	if payload.TransactionId == "" {
		return nil, fmt.Errorf("%w: transaction_id is required", ErrInvalidPayload)
	}

	return p.ledger.Resolve(ctx, payload.TransactionId, payload.ProviderReference, status)
}

// Confirm is the manual/test settlement path. Authentication is optional here;
// the route is meant for operators and test environments.
func (p *Processor) Confirm(ctx context.Context, transactionId, rawStatus string) (*models.Transaction, error) {
	status, err := parseStatus(rawStatus)
	if err != nil {
		return nil, err
	}
	if transactionId == "" {
		return nil, fmt.Errorf("%w: transaction_id is required", ErrInvalidPayload)
	}

	return p.ledger.Resolve(ctx, transactionId, "", status)
}

func parseStatus(raw string) (models.Status, error) {
	switch models.Status(raw) {
	case models.StatusSuccess:
		return models.StatusSuccess, nil
	case models.StatusFailed:
		return models.StatusFailed, nil
	default:
		return "", fmt.Errorf("%w: status must be success or failed, got %q", ErrInvalidPayload, raw)
	}
}

// tokenMatches compares in constant time over fixed-length digests.
func tokenMatches(token, secret string) bool {
	tokenHash := sha256.Sum256([]byte(token))
	secretHash := sha256.Sum256([]byte(secret))
	return subtle.ConstantTimeCompare(tokenHash[:], secretHash[:]) == 1
}
