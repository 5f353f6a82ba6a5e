package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ayodejiio/vestra/internal/domain"
)

const planColumns = `id, name, COALESCE(description, ''), min_amount, max_amount, roi_percentage, duration_value, duration_unit, compound_frequency, is_active, created_at`

func scanPlan(row pgx.Row) (*domain.InvestmentPlan, error) {
	var p domain.InvestmentPlan
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.MinAmount, &p.MaxAmount,
		&p.ROIPercentage, &p.DurationValue, &p.DurationUnit, &p.CompoundFrequency, &p.IsActive, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Postgres) GetPlan(ctx context.Context, planID string) (*domain.InvestmentPlan, error) {
	p, err := scanPlan(s.pool.QueryRow(ctx,
		`SELECT `+planColumns+` FROM investment_plans WHERE id = $1 AND is_active = TRUE`, planID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *Postgres) ListActivePlans(ctx context.Context) ([]domain.InvestmentPlan, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+planColumns+` FROM investment_plans WHERE is_active = TRUE ORDER BY min_amount ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.InvestmentPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *Postgres) UpsertPlan(ctx context.Context, plan *domain.InvestmentPlan) error {
	if plan.ID == "" {
		plan.ID = uuid.New().String()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO investment_plans (id, name, description, min_amount, max_amount, roi_percentage, duration_value, duration_unit, compound_frequency, is_active)
		 VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (name) DO UPDATE SET
		   description = EXCLUDED.description,
		   min_amount = EXCLUDED.min_amount,
		   max_amount = EXCLUDED.max_amount,
		   roi_percentage = EXCLUDED.roi_percentage,
		   duration_value = EXCLUDED.duration_value,
		   duration_unit = EXCLUDED.duration_unit,
		   compound_frequency = EXCLUDED.compound_frequency,
		   is_active = EXCLUDED.is_active`,
		plan.ID, plan.Name, plan.Description, plan.MinAmount, plan.MaxAmount,
		plan.ROIPercentage, plan.DurationValue, plan.DurationUnit, plan.CompoundFrequency, plan.IsActive)
	return err
}

const investmentColumns = `id, user_id, plan_id, amount, expected_profit, start_date, maturity_date, status, created_at`

func scanInvestment(row pgx.Row) (*domain.Investment, error) {
	var inv domain.Investment
	err := row.Scan(&inv.ID, &inv.UserID, &inv.PlanID, &inv.Amount, &inv.ExpectedProfit,
		&inv.StartDate, &inv.MaturityDate, &inv.Status, &inv.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// FundInvestment is the canonical commit unit: debit balance, credit locked
// balance, append the investment transaction, create the investment row,
// append the notification. A failure at any step rolls back every step.
func (s *Postgres) FundInvestment(ctx context.Context, p FundParams) (*FundResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	w, err := lockWallet(ctx, tx, p.UserID)
	if err != nil {
		return nil, err
	}
	if w.Balance.LessThan(p.Amount) {
		return nil, ErrInsufficientFunds
	}

	before := w.Balance
	w.Balance = w.Balance.Sub(p.Amount)
	w.LockedBalance = w.LockedBalance.Add(p.Amount)
	if err := updateWalletBalances(ctx, tx, w); err != nil {
		return nil, err
	}

	start := time.Now().UTC()
	inv, err := scanInvestment(tx.QueryRow(ctx,
		`INSERT INTO investments (id, user_id, plan_id, amount, expected_profit, start_date, maturity_date, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, 'pending')
		 RETURNING `+investmentColumns,
		uuid.New().String(), p.UserID, p.Plan.ID, p.Amount, p.ExpectedProfit, start, p.MaturityDate))
	if err != nil {
		return nil, fmt.Errorf("insert investment: %w", err)
	}

	t, err := appendTransaction(ctx, tx, p.UserID, w.ID, domain.TxInvestment,
		p.Amount.Neg(), before, w.Balance, inv.ID, "Investment in "+p.Plan.Name)
	if err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("Successfully invested $%s in %s. Expected profit: $%s",
		p.Amount.StringFixed(2), p.Plan.Name, p.ExpectedProfit.StringFixed(2))
	if err := insertNotification(ctx, tx, p.UserID, "investment", "Investment Created", msg, inv.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &FundResult{Investment: inv, Wallet: w, Transaction: t}, nil
}

func (s *Postgres) ListInvestments(ctx context.Context, userID string) ([]domain.Investment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+investmentColumns+` FROM investments WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Investment
	for rows.Next() {
		inv, err := scanInvestment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *inv)
	}
	return out, rows.Err()
}

// MatureInvestment releases the locked principal and pays out principal plus
// the projected profit in one unit. Only pending or active investments can
// mature, and only once.
func (s *Postgres) MatureInvestment(ctx context.Context, investmentID string) (*MatureResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	inv, err := scanInvestment(tx.QueryRow(ctx,
		`SELECT `+investmentColumns+` FROM investments WHERE id = $1 FOR UPDATE`, investmentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvestmentNotFound
		}
		return nil, fmt.Errorf("lock investment: %w", err)
	}
	if inv.Status != domain.InvestmentPending && inv.Status != domain.InvestmentActive {
		return nil, ErrInvestmentNotOpen
	}

	w, err := lockWallet(ctx, tx, inv.UserID)
	if err != nil {
		return nil, err
	}

	payout := inv.Amount.Add(inv.ExpectedProfit)
	before := w.Balance
	w.Balance = w.Balance.Add(payout)
	w.LockedBalance = w.LockedBalance.Sub(inv.Amount)
	if w.LockedBalance.IsNegative() {
		// The locked pool can't owe more than was ever earmarked.
		return nil, fmt.Errorf("locked balance underflow for wallet %s", w.ID)
	}
	if err := updateWalletBalances(ctx, tx, w); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE investments SET status = 'matured' WHERE id = $1`, inv.ID); err != nil {
		return nil, fmt.Errorf("mature investment: %w", err)
	}
	inv.Status = domain.InvestmentMatured

	t, err := appendTransaction(ctx, tx, inv.UserID, w.ID, domain.TxDeposit,
		payout, before, w.Balance, inv.ID, "Investment return")
	if err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("Your investment matured. $%s (principal + profit) has been credited to your wallet.", payout.StringFixed(2))
	if err := insertNotification(ctx, tx, inv.UserID, "investment", "Investment Matured", msg, inv.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &MatureResult{Investment: inv, Wallet: w, Transaction: t}, nil
}
