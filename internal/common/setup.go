package common

import (
	"context"
	"log"
	"os"
	"strings"

	"wallet-ledger-go/internal/database"
	"wallet-ledger-go/internal/gateway"
	"wallet-ledger-go/internal/ledger"
	"wallet-ledger-go/internal/models"
	"wallet-ledger-go/internal/webhook"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// init loads environment variables from .env file if it exists
func init() {
	// Environment variables can also be set via other means (shell export,
	// docker, etc.), so a missing .env file is fine.
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
	}
}

type Services struct {
	DbService      *database.Service
	GatewayService *gateway.Client
	LedgerService  *ledger.Service
	Webhook        *webhook.Processor
}

func InitializeLogger() (*zap.Logger, func()) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

func InitializeServices(ctx context.Context, cfg *models.Config) (*Services, error) {
	dbService, err := database.NewService(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	zap.L().Info("Loading payment provider registry",
		zap.String("file", cfg.Gateway.ProvidersFile),
		zap.String("provider", cfg.Gateway.Provider))
	providers, err := LoadProviderConfig(cfg.Gateway.ProvidersFile)
	if err != nil {
		dbService.Close()
		return nil, err
	}
	provider, err := FindProvider(providers, cfg.Gateway.Provider)
	if err != nil {
		dbService.Close()
		return nil, err
	}

	gatewayService, err := gateway.NewClient(gateway.ClientOptions{
		Provider:       *provider,
		ApiKey:         os.Getenv(provider.ApiKeyEnv),
		SiteId:         os.Getenv(provider.SiteIdEnv),
		NotifyUrl:      cfg.Gateway.NotifyUrl,
		RequestTimeout: cfg.Gateway.RequestTimeout,
	})
	if err != nil {
		dbService.Close()
		return nil, err
	}

	ledgerService := ledger.NewService(dbService, gatewayService)

	return &Services{
		DbService:      dbService,
		GatewayService: gatewayService,
		LedgerService:  ledgerService,
		Webhook:        webhook.NewProcessor(ledgerService, cfg.Webhook.Secret),
	}, nil
}

// InitializeDatabaseOnly initializes just the database service without the
// payment gateway. Useful for read-only operations like querying balances.
func InitializeDatabaseOnly(ctx context.Context, cfg *models.Config) (*database.Service, error) {
	dbService, err := database.NewService(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	return dbService, nil
}

func (cs *Services) Close() {
	if cs.DbService != nil {
		cs.DbService.Close()
	}
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}
