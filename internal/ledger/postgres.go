package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/ayodejiio/vestra/internal/domain"
)

// Postgres backs the ledger with a relational store. Every commit unit runs
// in one pgx transaction and locks the wallet row before reading the balance
// it mutates, so two concurrent units against the same wallet serialize
// instead of both reading a stale balance.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

const walletColumns = `id, user_id, currency, balance, locked_balance, created_at, updated_at`

func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	var w domain.Wallet
	err := row.Scan(&w.ID, &w.UserID, &w.Currency, &w.Balance, &w.LockedBalance, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (s *Postgres) GetOrCreateWallet(ctx context.Context, userID string) (*domain.Wallet, error) {
	w, err := scanWallet(s.pool.QueryRow(ctx,
		`SELECT `+walletColumns+` FROM wallets WHERE user_id = $1 AND currency = $2`,
		userID, domain.SettlementCurrency))
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("select wallet: %w", err)
	}

	// Lazy creation on first access. ON CONFLICT absorbs a concurrent create.
	_, err = s.pool.Exec(ctx,
		`INSERT INTO wallets (id, user_id, currency, balance, locked_balance)
		 VALUES ($1, $2, $3, 0, 0)
		 ON CONFLICT (user_id, currency) DO NOTHING`,
		uuid.New().String(), userID, domain.SettlementCurrency)
	if err != nil {
		return nil, fmt.Errorf("create wallet: %w", err)
	}

	w, err = scanWallet(s.pool.QueryRow(ctx,
		`SELECT `+walletColumns+` FROM wallets WHERE user_id = $1 AND currency = $2`,
		userID, domain.SettlementCurrency))
	if err != nil {
		return nil, fmt.Errorf("reselect wallet: %w", err)
	}
	return w, nil
}

// lockWallet fetches the wallet row FOR UPDATE inside an open transaction.
// Lazy creation is disabled here: money can only move through a wallet that
// already exists.
func lockWallet(ctx context.Context, tx pgx.Tx, userID string) (*domain.Wallet, error) {
	w, err := scanWallet(tx.QueryRow(ctx,
		`SELECT `+walletColumns+` FROM wallets WHERE user_id = $1 AND currency = $2 FOR UPDATE`,
		userID, domain.SettlementCurrency))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("lock wallet: %w", err)
	}
	return w, nil
}

func updateWalletBalances(ctx context.Context, tx pgx.Tx, w *domain.Wallet) error {
	_, err := tx.Exec(ctx,
		`UPDATE wallets SET balance = $1, locked_balance = $2, updated_at = NOW() WHERE id = $3`,
		w.Balance, w.LockedBalance, w.ID)
	if err != nil {
		return fmt.Errorf("update wallet: %w", err)
	}
	return nil
}

const txColumns = `id, user_id, wallet_id, type, amount, balance_before, balance_after, status, COALESCE(reference, ''), COALESCE(description, ''), created_at`

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var t domain.Transaction
	err := row.Scan(&t.ID, &t.UserID, &t.WalletID, &t.Type, &t.Amount,
		&t.BalanceBefore, &t.BalanceAfter, &t.Status, &t.Reference, &t.Description, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// appendTransaction writes the one sanctioned record of a balance change.
// Amount is signed; before/after snapshot the wallet at commit time.
func appendTransaction(ctx context.Context, tx pgx.Tx, userID, walletID string, typ domain.TransactionType, amount, before, after decimal.Decimal, reference, description string) (*domain.Transaction, error) {
	t, err := scanTransaction(tx.QueryRow(ctx,
		`INSERT INTO transactions (id, user_id, wallet_id, type, amount, balance_before, balance_after, status, reference, description)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, 'completed', NULLIF($8, ''), NULLIF($9, ''))
		 RETURNING `+txColumns,
		uuid.New().String(), userID, walletID, typ, amount, before, after, reference, description))
	if err != nil {
		return nil, fmt.Errorf("append transaction: %w", err)
	}
	return t, nil
}

func insertNotification(ctx context.Context, tx pgx.Tx, userID, typ, title, message, reference string) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO notifications (id, user_id, type, title, message, reference)
		 VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))`,
		uuid.New().String(), userID, typ, title, message, reference)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (s *Postgres) ListTransactions(ctx context.Context, userID string, limit int) ([]domain.Transaction, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+txColumns+` FROM transactions WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, err
	}
	return collectTransactions(rows)
}

func (s *Postgres) AllTransactions(ctx context.Context, limit int) ([]domain.Transaction, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+txColumns+` FROM transactions ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return collectTransactions(rows)
}

func collectTransactions(rows pgx.Rows) ([]domain.Transaction, error) {
	defer rows.Close()
	var out []domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// AdjustWallet applies a deposit or withdrawal as one commit unit: lock the
// wallet, move the balance, append the transaction, append the notification.
func (s *Postgres) AdjustWallet(ctx context.Context, p AdjustParams) (*AdjustResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	w, err := lockWallet(ctx, tx, p.UserID)
	if err != nil {
		return nil, err
	}

	before := w.Balance
	signed := p.Amount
	switch p.Type {
	case domain.TxDeposit:
		w.Balance = w.Balance.Add(p.Amount)
	case domain.TxWithdrawal:
		if w.Balance.LessThan(p.Amount) {
			return nil, ErrInsufficientFunds
		}
		w.Balance = w.Balance.Sub(p.Amount)
		signed = p.Amount.Neg()
	default:
		return nil, ErrInvalidAdjustType
	}

	if err := updateWalletBalances(ctx, tx, w); err != nil {
		return nil, err
	}

	t, err := appendTransaction(ctx, tx, p.UserID, w.ID, p.Type, signed, before, w.Balance, p.Reference, p.Description)
	if err != nil {
		return nil, err
	}

	title := "Deposit Successful"
	if p.Type == domain.TxWithdrawal {
		title = "Withdrawal Successful"
	}
	msg := fmt.Sprintf("$%s has been %s your wallet.", p.Amount.StringFixed(2), map[domain.TransactionType]string{
		domain.TxDeposit:    "added to",
		domain.TxWithdrawal: "withdrawn from",
	}[p.Type])
	if err := insertNotification(ctx, tx, p.UserID, "transaction", title, msg, t.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &AdjustResult{Wallet: w, Transaction: t}, nil
}

func (s *Postgres) KYCStatus(ctx context.Context, userID string) (domain.KYCStatus, error) {
	var status domain.KYCStatus
	err := s.pool.QueryRow(ctx, `SELECT kyc_status FROM users WHERE id = $1`, userID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrUserNotFound
		}
		return "", err
	}
	return status, nil
}

const notificationColumns = `id, user_id, type, title, message, COALESCE(reference, ''), read_at, created_at`

func scanNotification(row pgx.Row) (*domain.Notification, error) {
	var n domain.Notification
	err := row.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.Reference, &n.ReadAt, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *Postgres) GetNotification(ctx context.Context, id string) (*domain.Notification, error) {
	n, err := scanNotification(s.pool.QueryRow(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	return n, nil
}

func (s *Postgres) ListNotifications(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}

func (s *Postgres) MarkNotificationRead(ctx context.Context, userID, notificationID string) error {
	ct, err := s.pool.Exec(ctx,
		`UPDATE notifications SET read_at = NOW() WHERE id = $1 AND user_id = $2 AND read_at IS NULL`,
		notificationID, userID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}
