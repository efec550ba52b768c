package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"wallet-ledger-go/internal/common"
	"wallet-ledger-go/internal/config"
	"wallet-ledger-go/internal/models"

	"go.uber.org/zap"
)

// reconcile replays every user's transaction trail against the stored balance
// and lists pending transactions old enough to deserve a status check with the
// provider. It is the recovery path for gateway timeouts that left a deposit
// pending with an unknown outcome.
func main() {
	userFlag := flag.String("user", "", "Limit reconciliation to one user id")
	staleAge := flag.Duration("stale", 2*time.Hour, "Age after which a pending transaction is reported as stale")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	ctx := context.Background()
	dbService, err := common.InitializeDatabaseOnly(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbService.Close()

	var users []models.User
	if *userFlag != "" {
		user, err := dbService.GetUserById(ctx, *userFlag)
		if err != nil {
			zap.L().Fatal("Failed to get user", zap.Error(err))
		}
		users = []models.User{*user}
	} else {
		users, err = dbService.GetUsers(ctx)
		if err != nil {
			zap.L().Fatal("Failed to list users", zap.Error(err))
		}
	}

	common.PrintHeader("Balance reconciliation", common.DefaultWidth)

	mismatches := 0
	for _, user := range users {
		if err := dbService.ReconcileUserBalance(ctx, user.Id); err != nil {
			mismatches++
			fmt.Printf("MISMATCH  %s <%s>: %v\n", user.Name, user.Email, err)
		} else {
			fmt.Printf("OK        %s <%s>\n", user.Name, user.Email)
		}
	}

	stale, err := dbService.ListPendingOlderThan(ctx, *staleAge)
	if err != nil {
		zap.L().Fatal("Failed to list stale pending transactions", zap.Error(err))
	}
	if len(stale) > 0 {
		fmt.Printf("\nPending transactions older than %s (check with provider):\n", *staleAge)
		for _, t := range stale {
			fmt.Printf("  %s  %-10s user=%s amount=%d created=%s\n",
				t.Id, t.Kind, t.UserId, t.Amount, t.CreatedAt.Format(time.RFC3339))
		}
	}

	common.PrintFooter(fmt.Sprintf("%d user(s) checked, %d mismatch(es), %d stale pending", len(users), mismatches, len(stale)), common.DefaultWidth)

	if mismatches > 0 {
		os.Exit(1)
	}
}
