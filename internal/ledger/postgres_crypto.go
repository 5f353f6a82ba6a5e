package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ayodejiio/vestra/internal/domain"
)

const orderColumns = `id, user_id, crypto_currency, crypto_amount, fiat_amount, exchange_rate, external_order_id, COALESCE(payment_url, ''), COALESCE(external_ref, ''), status, expires_at, completed_at, created_at`

func scanOrder(row pgx.Row) (*domain.CryptoOrder, error) {
	var o domain.CryptoOrder
	err := row.Scan(&o.ID, &o.UserID, &o.CryptoCurrency, &o.CryptoAmount, &o.FiatAmount,
		&o.ExchangeRate, &o.ExternalOrderID, &o.PaymentURL, &o.ExternalRef,
		&o.Status, &o.ExpiresAt, &o.CompletedAt, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *Postgres) CreateCryptoOrder(ctx context.Context, order *domain.CryptoOrder) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	row, err := scanOrder(s.pool.QueryRow(ctx,
		`INSERT INTO crypto_orders (id, user_id, crypto_currency, crypto_amount, fiat_amount, exchange_rate, external_order_id, payment_url, status, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), 'pending', $9)
		 RETURNING `+orderColumns,
		order.ID, order.UserID, order.CryptoCurrency, order.CryptoAmount, order.FiatAmount,
		order.ExchangeRate, order.ExternalOrderID, order.PaymentURL, order.ExpiresAt))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateOrder
		}
		return fmt.Errorf("insert order: %w", err)
	}
	*order = *row
	return nil
}

func (s *Postgres) ListCryptoOrders(ctx context.Context, userID string, limit int) ([]domain.CryptoOrder, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+orderColumns+` FROM crypto_orders WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CryptoOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

// SettleCryptoOrder applies one external payment event. The order row is
// locked before the status check, so a duplicate delivery racing this one
// waits and then sees the terminal status. Terminal orders are a no-op
// success: redelivery after a processor timeout is safe.
func (s *Postgres) SettleCryptoOrder(ctx context.Context, p SettleParams) (*SettleResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	order, err := scanOrder(tx.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM crypto_orders WHERE external_order_id = $1 FOR UPDATE`,
		p.ExternalOrderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("lock order: %w", err)
	}

	if order.Status.Terminal() {
		return &SettleResult{Applied: false, Order: order}, nil
	}

	switch p.EventStatus {
	case "confirmed", "completed":
		w, err := lockWallet(ctx, tx, order.UserID)
		if err != nil {
			return nil, err
		}

		before := w.Balance
		w.Balance = w.Balance.Add(order.FiatAmount)
		if err := updateWalletBalances(ctx, tx, w); err != nil {
			return nil, err
		}

		order, err = scanOrder(tx.QueryRow(ctx,
			`UPDATE crypto_orders
			 SET status = 'completed', external_ref = NULLIF($2, ''), completed_at = NOW()
			 WHERE id = $1
			 RETURNING `+orderColumns,
			order.ID, p.ExternalRef))
		if err != nil {
			return nil, fmt.Errorf("complete order: %w", err)
		}

		t, err := appendTransaction(ctx, tx, order.UserID, w.ID, domain.TxDeposit,
			order.FiatAmount, before, w.Balance, order.ID, "Crypto deposit via "+order.CryptoCurrency)
		if err != nil {
			return nil, err
		}

		msg := fmt.Sprintf("Your crypto deposit of $%s has been confirmed and added to your wallet.", order.FiatAmount.StringFixed(2))
		if err := insertNotification(ctx, tx, order.UserID, "transaction", "Deposit Confirmed", msg, order.ID); err != nil {
			return nil, err
		}

		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("commit: %w", err)
		}
		return &SettleResult{Applied: true, Order: order, Wallet: w, Transaction: t}, nil

	case "failed", "expired":
		order, err = scanOrder(tx.QueryRow(ctx,
			`UPDATE crypto_orders SET status = $2, external_ref = NULLIF($3, '') WHERE id = $1 RETURNING `+orderColumns,
			order.ID, p.EventStatus, p.ExternalRef))
		if err != nil {
			return nil, fmt.Errorf("mark order %s: %w", p.EventStatus, err)
		}

		msg := fmt.Sprintf("Your crypto deposit order has %s. Please try again or contact support.", p.EventStatus)
		if err := insertNotification(ctx, tx, order.UserID, "transaction", "Deposit Failed", msg, order.ID); err != nil {
			return nil, err
		}

		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("commit: %w", err)
		}
		return &SettleResult{Applied: true, Order: order}, nil

	default:
		return nil, fmt.Errorf("unknown event status %q", p.EventStatus)
	}
}
