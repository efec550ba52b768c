/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"wallet-ledger-go/internal/common"
	"wallet-ledger-go/internal/config"
	"wallet-ledger-go/internal/models"

	"go.uber.org/zap"
)

func main() {
	userFlag := flag.String("user", "", "Limit output to one user id")
	historyLimit := flag.Int("history", 10, "Number of recent transactions to show per user")
	exponent := flag.Int("exponent", 0, "Currency exponent for display (0 for XOF, 2 for EUR)")
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

	common.PrintHeader("Wallet balances", common.DefaultWidth)

	for _, user := range users {
		balance, err := dbService.GetBalance(ctx, user.Id)
		if err != nil {
			zap.L().Error("Failed to get balance", zap.String("user_id", user.Id), zap.Error(err))
			continue
		}

		fmt.Printf("\n%s <%s>\n", user.Name, user.Email)
		fmt.Printf("  Balance: %s (%d minor units)\n", common.FormatAmount(balance, int32(*exponent)), balance)

		transactions, err := dbService.GetTransactionHistory(ctx, user.Id, *historyLimit, 0)
		if err != nil {
			zap.L().Error("Failed to get history", zap.String("user_id", user.Id), zap.Error(err))
			continue
		}
		for _, t := range transactions {
			fmt.Printf("  %-10s %-8s %12s  %s  %s\n",
				t.Kind, t.Status, common.FormatAmount(t.Amount, int32(*exponent)),
				t.CreatedAt.Format("2006-01-02 15:04:05"), t.Id)
		}
	}

	common.PrintFooter(fmt.Sprintf("%d user(s)", len(users)), common.DefaultWidth)
}
