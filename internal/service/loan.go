package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/ayodejiio/vestra/internal/domain"
	"github.com/ayodejiio/vestra/internal/ledger"
)

// Loan amount bounds for applications, in the settlement currency.
var (
	loanMinAmount = decimal.NewFromInt(1000)
	loanMaxAmount = decimal.NewFromInt(100000)
)

// LoanTerms are the amortization terms applied to every approved loan.
type LoanTerms struct {
	AnnualRatePercent decimal.Decimal
	TermMonths        int
}

type LoanService struct {
	store  ledger.Store
	alerts Alerts
	terms  LoanTerms
}

func NewLoanService(store ledger.Store, alerts Alerts, terms LoanTerms) *LoanService {
	return &LoanService{store: store, alerts: alerts, terms: terms}
}

// ApplyResult pairs the created application with its advisory score.
type ApplyResult struct {
	Application *domain.LoanApplication
	Score       int
	ScoreBand   string
}

// Apply validates the request, scores it, and records the application.
// The score is advisory only; it never changes the application status.
func (s *LoanService) Apply(ctx context.Context, userID string, amount decimal.Decimal, purpose, employmentStatus string, monthlyIncome decimal.Decimal) (*ApplyResult, error) {
	if !amount.IsPositive() {
		return nil, ledger.ErrInvalidAmount
	}
	if amount.LessThan(loanMinAmount) || amount.GreaterThan(loanMaxAmount) {
		return nil, ledger.ErrLoanAmountOutOfRange
	}
	if err := requireKYC(ctx, s.store, userID); err != nil {
		return nil, err
	}

	// Disbursement at approval time locks the wallet row; make sure one
	// exists before the application is accepted.
	if _, err := s.store.GetOrCreateWallet(ctx, userID); err != nil {
		return nil, err
	}

	score := ScoreLoanApplication(amount, monthlyIncome, employmentStatus)

	app := &domain.LoanApplication{
		UserID:           userID,
		Amount:           amount,
		Purpose:          purpose,
		EmploymentStatus: employmentStatus,
		MonthlyIncome:    monthlyIncome,
	}
	if err := s.store.CreateLoanApplication(ctx, app); err != nil {
		return nil, err
	}

	_ = s.alerts.NotifyUser(userID, "loan", "Loan Application Submitted")
	return &ApplyResult{Application: app, Score: score, ScoreBand: ScoreBand(score)}, nil
}

func (s *LoanService) Applications(ctx context.Context, userID string) ([]domain.LoanApplication, error) {
	return s.store.ListLoanApplications(ctx, userID)
}

func (s *LoanService) Loans(ctx context.Context, userID string) ([]domain.Loan, error) {
	return s.store.ListLoans(ctx, userID)
}

// Approve turns a pending application into an active, disbursed loan using
// the configured terms. Admin-only.
func (s *LoanService) Approve(ctx context.Context, applicationID string) (*ledger.ApproveLoanResult, error) {
	res, err := s.store.ApproveLoan(ctx, ledger.ApproveLoanParams{
		ApplicationID: applicationID,
		InterestRate:  s.terms.AnnualRatePercent,
		TermMonths:    s.terms.TermMonths,
	})
	if err != nil {
		return nil, err
	}
	_ = s.alerts.NotifyUser(res.Application.UserID, "loan", "Loan Approved")
	return res, nil
}

// Reject marks a pending application rejected. Admin-only.
func (s *LoanService) Reject(ctx context.Context, applicationID, reason string) (*domain.LoanApplication, error) {
	app, err := s.store.RejectLoanApplication(ctx, applicationID, reason)
	if err != nil {
		return nil, err
	}
	_ = s.alerts.NotifyUser(app.UserID, "loan", "Loan Application Rejected")
	return app, nil
}

// Pay applies a payment against an active loan.
func (s *LoanService) Pay(ctx context.Context, userID, loanID string, amount decimal.Decimal) (*ledger.LoanPaymentResult, error) {
	if !amount.IsPositive() {
		return nil, ledger.ErrInvalidAmount
	}
	res, err := s.store.MakeLoanPayment(ctx, ledger.LoanPaymentParams{
		UserID: userID,
		LoanID: loanID,
		Amount: amount,
	})
	if err != nil {
		return nil, err
	}
	_ = s.alerts.NotifyUser(userID, "loan", "Loan Payment")
	return res, nil
}
