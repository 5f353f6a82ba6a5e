package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a pgx pool against dsn and verifies the connection.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// EnsureSchema creates the ledger tables if they do not exist. Every
// statement is idempotent; running it against a populated database is a
// no-op.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id         UUID PRIMARY KEY,
			email      TEXT NOT NULL UNIQUE,
			role       TEXT NOT NULL DEFAULT 'user',
			kyc_status TEXT NOT NULL DEFAULT 'pending',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS wallets (
			id             UUID PRIMARY KEY,
			user_id        UUID NOT NULL REFERENCES users(id),
			currency       TEXT NOT NULL,
			balance        NUMERIC(20,8) NOT NULL DEFAULT 0,
			locked_balance NUMERIC(20,8) NOT NULL DEFAULT 0,
			created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (user_id, currency)
		)`,

		`CREATE TABLE IF NOT EXISTS transactions (
			id             UUID PRIMARY KEY,
			user_id        UUID NOT NULL REFERENCES users(id),
			wallet_id      UUID NOT NULL REFERENCES wallets(id),
			type           TEXT NOT NULL,
			amount         NUMERIC(20,8) NOT NULL,
			balance_before NUMERIC(20,8) NOT NULL,
			balance_after  NUMERIC(20,8) NOT NULL,
			status         TEXT NOT NULL DEFAULT 'completed',
			reference      TEXT,
			description    TEXT,
			created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_user_created
			ON transactions (user_id, created_at DESC)`,

		`CREATE TABLE IF NOT EXISTS investment_plans (
			id                 UUID PRIMARY KEY,
			name               TEXT NOT NULL UNIQUE,
			description        TEXT,
			min_amount         NUMERIC(20,8) NOT NULL,
			max_amount         NUMERIC(20,8) NOT NULL,
			roi_percentage     NUMERIC(10,4) NOT NULL,
			duration_value     INTEGER NOT NULL,
			duration_unit      TEXT NOT NULL,
			compound_frequency TEXT NOT NULL,
			is_active          BOOLEAN NOT NULL DEFAULT TRUE,
			created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS investments (
			id              UUID PRIMARY KEY,
			user_id         UUID NOT NULL REFERENCES users(id),
			plan_id         UUID NOT NULL REFERENCES investment_plans(id),
			amount          NUMERIC(20,8) NOT NULL,
			expected_profit NUMERIC(20,8) NOT NULL,
			start_date      TIMESTAMPTZ NOT NULL,
			maturity_date   TIMESTAMPTZ NOT NULL,
			status          TEXT NOT NULL DEFAULT 'pending',
			created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS loan_applications (
			id                UUID PRIMARY KEY,
			user_id           UUID NOT NULL REFERENCES users(id),
			amount            NUMERIC(20,8) NOT NULL,
			purpose           TEXT,
			employment_status TEXT,
			monthly_income    NUMERIC(20,8),
			status            TEXT NOT NULL DEFAULT 'pending',
			rejection_reason  TEXT,
			created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		// One pending application per user, enforced by the database so that
		// concurrent submissions cannot race past the handler check.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_loan_applications_one_pending
			ON loan_applications (user_id) WHERE status = 'pending'`,

		`CREATE TABLE IF NOT EXISTS loans (
			id              UUID PRIMARY KEY,
			application_id  UUID NOT NULL REFERENCES loan_applications(id),
			user_id         UUID NOT NULL REFERENCES users(id),
			amount          NUMERIC(20,8) NOT NULL,
			interest_rate   NUMERIC(10,4) NOT NULL,
			term_months     INTEGER NOT NULL,
			monthly_payment NUMERIC(20,8) NOT NULL,
			outstanding     NUMERIC(20,8) NOT NULL,
			start_date      TIMESTAMPTZ NOT NULL,
			end_date        TIMESTAMPTZ NOT NULL,
			status          TEXT NOT NULL DEFAULT 'active',
			created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS crypto_orders (
			id                UUID PRIMARY KEY,
			user_id           UUID NOT NULL REFERENCES users(id),
			crypto_currency   TEXT NOT NULL,
			crypto_amount     NUMERIC(20,8) NOT NULL,
			fiat_amount       NUMERIC(20,8) NOT NULL,
			exchange_rate     NUMERIC(20,8) NOT NULL,
			external_order_id TEXT NOT NULL UNIQUE,
			payment_url       TEXT,
			external_ref      TEXT,
			status            TEXT NOT NULL DEFAULT 'pending',
			expires_at        TIMESTAMPTZ NOT NULL,
			completed_at      TIMESTAMPTZ,
			created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_crypto_orders_user_created
			ON crypto_orders (user_id, created_at DESC)`,

		`CREATE TABLE IF NOT EXISTS notifications (
			id         UUID PRIMARY KEY,
			user_id    UUID NOT NULL REFERENCES users(id),
			type       TEXT NOT NULL,
			title      TEXT NOT NULL,
			message    TEXT NOT NULL,
			reference  TEXT,
			read_at    TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_user_created
			ON notifications (user_id, created_at DESC)`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
