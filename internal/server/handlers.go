package server

import (
	"errors"
	"strconv"

	"wallet-ledger-go/internal/gateway"
	"wallet-ledger-go/internal/ledger"
	"wallet-ledger-go/internal/models"
	"wallet-ledger-go/internal/store"
	"wallet-ledger-go/internal/webhook"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *Server) handleHealth(c *fiber.Ctx) error {
	if err := s.ledger.HealthCheck(c.Context()); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "wallet ledger is running"})
}

func (s *Server) handleCreateUser(c *fiber.Ctx) error {
	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, ledger.ErrInvalidInput)
	}
	if req.Name == "" || req.Email == "" {
		return respondError(c, ledger.ErrInvalidInput)
	}

	user, err := s.db.CreateUser(c.Context(), uuid.New().String(), req.Name, req.Email)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "user_id": user.Id})
}

func (s *Server) handleInitDeposit(c *fiber.Ctx) error {
	var req models.DepositRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, ledger.ErrInvalidInput)
	}

	result, err := s.ledger.InitiateDeposit(c.Context(), req.UserId, req.Amount, req.Contact)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.DepositResponse{
		Success:       true,
		TransactionId: result.Transaction.Id,
		PaymentUrl:    result.PaymentUrl,
	})
}

func (s *Server) handleRequestWithdrawal(c *fiber.Ctx) error {
	var req models.WithdrawalRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, ledger.ErrInvalidInput)
	}

	transaction, err := s.ledger.RequestWithdrawal(c.Context(), req.UserId, req.Amount)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.WithdrawalResponse{
		Success:       true,
		TransactionId: transaction.Id,
	})
}

func (s *Server) handleWebhook(c *fiber.Ctx) error {
	var payload models.WebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		return respondError(c, webhook.ErrInvalidPayload)
	}

	if _, err := s.webhook.Process(c.Context(), payload); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (s *Server) handleConfirm(c *fiber.Ctx) error {
	var req models.ConfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, webhook.ErrInvalidPayload)
	}

	if _, err := s.webhook.Confirm(c.Context(), req.TransactionId, req.Status); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (s *Server) handleGetBalance(c *fiber.Ctx) error {
	userId := c.Params("userId")
	amount, err := s.ledger.GetBalance(c.Context(), userId)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.BalanceResponse{
		Success: true,
		UserId:  userId,
		Amount:  amount,
	})
}

func (s *Server) handleGetHistory(c *fiber.Ctx) error {
	userId := c.Params("userId")
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	transactions, err := s.ledger.GetHistory(c.Context(), userId, limit, offset)
	if err != nil {
		return respondError(c, err)
	}

	records := make([]models.TransactionRecord, len(transactions))
	for i, t := range transactions {
		records[i] = models.TransactionRecord{
			Id:                t.Id,
			Kind:              string(t.Kind),
			Amount:            t.Amount,
			Status:            string(t.Status),
			ProviderReference: t.ProviderReference,
			CreatedAt:         t.CreatedAt,
			UpdatedAt:         t.UpdatedAt,
		}
	}
	return c.JSON(fiber.Map{"success": true, "transactions": records})
}

// respondError maps domain errors to HTTP status codes and a stable error
// kind. Internal errors never leak details to the caller.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ledger.ErrInvalidInput), errors.Is(err, webhook.ErrInvalidPayload):
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "invalid_request", Message: err.Error(),
		})
	case errors.Is(err, store.ErrInsufficientFunds):
		return c.Status(fiber.StatusConflict).JSON(models.ErrorResponse{
			Error: "insufficient_funds", Message: "balance is too low for this withdrawal",
		})
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{
			Error: "not_found", Message: err.Error(),
		})
	case errors.Is(err, webhook.ErrUnauthenticated):
		return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse{
			Error: "unauthenticated", Message: "webhook token mismatch",
		})
	case errors.Is(err, gateway.ErrGatewayRejected):
		return c.Status(fiber.StatusBadGateway).JSON(models.ErrorResponse{
			Error: "gateway_rejected", Message: "payment provider declined the request",
		})
	case errors.Is(err, gateway.ErrGatewayUnavailable):
		return c.Status(fiber.StatusBadGateway).JSON(models.ErrorResponse{
			Error: "gateway_unavailable", Message: "payment provider unavailable, outcome unknown",
		})
	default:
		zap.L().Error("Request failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Error: "internal_error", Message: "internal server error",
		})
	}
}
