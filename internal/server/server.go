package server

import (
	"wallet-ledger-go/internal/ledger"
	"wallet-ledger-go/internal/store"
	"wallet-ledger-go/internal/webhook"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// Server wires the wallet API routes onto fiber.
type Server struct {
	app     *fiber.App
	ledger  *ledger.Service
	webhook *webhook.Processor
	db      store.LedgerStore
}

func New(ledgerService *ledger.Service, processor *webhook.Processor, db store.LedgerStore) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	app.Use(cors.New())

	s := &Server{
		app:     app,
		ledger:  ledgerService,
		webhook: processor,
		db:      db,
	}

	app.Get("/", s.handleHealth)
	app.Post("/users", s.handleCreateUser)
	app.Post("/init-deposit", s.handleInitDeposit)
	app.Post("/request-withdrawal", s.handleRequestWithdrawal)
	app.Post("/webhook", s.handleWebhook)
	app.Post("/confirm-transaction", s.handleConfirm)
	app.Get("/balances/:userId", s.handleGetBalance)
	app.Get("/transactions/:userId", s.handleGetHistory)

	return s
}

func (s *Server) Listen(port string) error {
	return s.app.Listen(":" + port)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}
