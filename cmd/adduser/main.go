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
	"wallet-ledger-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	name := flag.String("name", "", "User display name (required)")
	email := flag.String("email", "", "User email (required)")
	openingBalance := flag.Int64("opening-balance", 0, "Optional opening balance in minor units, recorded as a settled seed deposit")
	flag.Parse()

	if *name == "" || *email == "" {
		fmt.Println("Usage: adduser -name <name> -email <email> [-opening-balance <minor units>]")
		os.Exit(1)
	}

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

	user, err := dbService.CreateUser(ctx, uuid.New().String(), *name, *email)
	if err != nil {
		zap.L().Fatal("Failed to create user", zap.Error(err))
	}

	common.PrintHeader("User created", common.DefaultWidth)
	fmt.Printf("Id:    %s\n", user.Id)
	fmt.Printf("Name:  %s\n", user.Name)
	fmt.Printf("Email: %s\n", user.Email)

	if *openingBalance > 0 {
		// Seed through the normal transaction lifecycle so the balance stays
		// reconcilable against the audit trail.
		draft := store.TransactionDraft{
			Id:     uuid.New().String(),
			UserId: user.Id,
			Kind:   models.KindDeposit,
			Amount: *openingBalance,
		}
		if _, err := dbService.CreateTransaction(ctx, draft); err != nil {
			zap.L().Fatal("Failed to create seed deposit", zap.Error(err))
		}
		if _, err := dbService.ResolveTransaction(ctx, store.ResolveParams{
			TransactionId:     draft.Id,
			ProviderReference: "SEED",
			Status:            models.StatusSuccess,
			BalanceDelta:      *openingBalance,
		}); err != nil {
			zap.L().Fatal("Failed to settle seed deposit", zap.Error(err))
		}
		fmt.Printf("Opening balance: %d minor units (transaction %s)\n", *openingBalance, draft.Id)
	}

	common.PrintFooter("Done", common.DefaultWidth)
}
