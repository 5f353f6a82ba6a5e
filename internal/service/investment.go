package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ayodejiio/vestra/internal/accrual"
	"github.com/ayodejiio/vestra/internal/domain"
	"github.com/ayodejiio/vestra/internal/ledger"
)

type InvestmentService struct {
	store  ledger.Store
	alerts Alerts
}

func NewInvestmentService(store ledger.Store, alerts Alerts) *InvestmentService {
	return &InvestmentService{store: store, alerts: alerts}
}

func (s *InvestmentService) Plans(ctx context.Context) ([]domain.InvestmentPlan, error) {
	return s.store.ListActivePlans(ctx)
}

func (s *InvestmentService) List(ctx context.Context, userID string) ([]domain.Investment, error) {
	return s.store.ListInvestments(ctx, userID)
}

// Fund creates an investment from the user's wallet. Validation happens
// before any store mutation; the debit, lock, investment row, transaction,
// and notification all land in one commit unit.
func (s *InvestmentService) Fund(ctx context.Context, userID, planID string, amount decimal.Decimal) (*ledger.FundResult, error) {
	if !amount.IsPositive() {
		return nil, ledger.ErrInvalidAmount
	}
	if err := requireKYC(ctx, s.store, userID); err != nil {
		return nil, err
	}

	plan, err := s.store.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if amount.LessThan(plan.MinAmount) || amount.GreaterThan(plan.MaxAmount) {
		return nil, ledger.ErrAmountOutOfRange
	}

	if _, err := s.store.GetOrCreateWallet(ctx, userID); err != nil {
		return nil, err
	}

	profit := accrual.ProfitForPlan(amount, plan)
	maturity := accrual.MaturityDate(time.Now().UTC(), plan.DurationValue, plan.DurationUnit)

	res, err := s.store.FundInvestment(ctx, ledger.FundParams{
		UserID:         userID,
		Plan:           plan,
		Amount:         amount,
		ExpectedProfit: profit,
		MaturityDate:   maturity,
	})
	if err != nil {
		return nil, err
	}

	_ = s.alerts.NotifyUser(userID, "investment", "Investment Created")
	return res, nil
}

// Mature pays out a pending or active investment: principal released from
// the locked pool plus the projected profit. Admin-only.
func (s *InvestmentService) Mature(ctx context.Context, investmentID string) (*ledger.MatureResult, error) {
	res, err := s.store.MatureInvestment(ctx, investmentID)
	if err != nil {
		return nil, err
	}
	_ = s.alerts.NotifyUser(res.Investment.UserID, "investment", "Investment Matured")
	return res, nil
}
