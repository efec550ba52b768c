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

package database

const (
	// User queries
	queryGetActiveUsers = `
		SELECT id, name, email, created_at, updated_at
		FROM users
		WHERE active = 1
		ORDER BY created_at`

	queryInsertUser = `
		INSERT OR IGNORE INTO users (id, name, email) VALUES (?, ?, ?)`

	queryGetUserById = `
		SELECT id, name, email, created_at, updated_at
		FROM users
		WHERE id = ? AND active = 1`

	// Balance queries
	queryGetBalance = `
		SELECT amount
		FROM balances
		WHERE user_id = ?`

	// Upsert keeps credit a single atomic statement even for first-time users.
	queryCreditBalance = `
		INSERT INTO balances (user_id, amount, last_transaction_id, version)
		VALUES (?, ?, ?, 1)
		ON CONFLICT(user_id) DO UPDATE SET
			amount = amount + excluded.amount,
			last_transaction_id = excluded.last_transaction_id,
			version = version + 1,
			updated_at = CURRENT_TIMESTAMP
		RETURNING amount`

	// Conditional decrement: the WHERE guard is what prevents concurrent
	// withdrawals from driving the balance negative.
	queryDebitBalance = `
		UPDATE balances
		SET amount = amount - ?1, last_transaction_id = ?2, version = version + 1, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = ?3 AND amount >= ?1
		RETURNING amount`

	queryReconcileBalance = `
		SELECT COALESCE(SUM(CASE
			WHEN kind = 'deposit' AND status = 'success' THEN amount
			WHEN kind = 'withdrawal' AND status IN ('pending', 'success') THEN -amount
			ELSE 0
		END), 0) AS calculated_balance
		FROM transactions
		WHERE user_id = ?`

	// Transaction queries
	queryCheckTransactionExists = `
		SELECT id FROM transactions WHERE id = ? LIMIT 1`

	queryGetTransaction = `
		SELECT id, user_id, kind, amount, status, provider_reference, created_at, updated_at
		FROM transactions
		WHERE id = ?`

	queryInsertTransaction = `
		INSERT INTO transactions (id, user_id, kind, amount, status, provider_reference, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id, user_id, kind, amount, status, provider_reference, created_at, updated_at`

	// Compare-and-swap on status. Zero rows affected means the stored status
	// no longer matches the expected one (or the row does not exist).
	queryUpdateTransactionStatus = `
		UPDATE transactions
		SET status = ?, provider_reference = COALESCE(NULLIF(?, ''), provider_reference), updated_at = ?
		WHERE id = ? AND status = ?`

	querySetProviderReference = `
		UPDATE transactions
		SET provider_reference = ?, updated_at = ?
		WHERE id = ? AND status = 'pending'`

	queryGetTransactionHistory = `
		SELECT id, user_id, kind, amount, status, provider_reference, created_at, updated_at
		FROM transactions
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`

	queryListPendingOlderThan = `
		SELECT id, user_id, kind, amount, status, provider_reference, created_at, updated_at
		FROM transactions
		WHERE status = 'pending' AND created_at < ?
		ORDER BY created_at`

	queryInsertJournalEntry = `
		INSERT INTO journal_entries (id, transaction_id, account_type, account_id, debit_amount, credit_amount)
		VALUES (?, ?, ?, ?, ?, ?)`
)
