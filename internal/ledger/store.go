package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ayodejiio/vestra/internal/domain"
)

// AdjustParams describes a deposit or withdrawal commit unit.
type AdjustParams struct {
	UserID      string
	Type        domain.TransactionType // TxDeposit or TxWithdrawal
	Amount      decimal.Decimal        // always positive; sign comes from Type
	Reference   string
	Description string
}

type AdjustResult struct {
	Wallet      *domain.Wallet
	Transaction *domain.Transaction
}

// FundParams describes the fund-investment commit unit. ExpectedProfit and
// MaturityDate are computed by the caller from the plan before the unit runs.
type FundParams struct {
	UserID         string
	Plan           *domain.InvestmentPlan
	Amount         decimal.Decimal
	ExpectedProfit decimal.Decimal
	MaturityDate   time.Time
}

type FundResult struct {
	Investment  *domain.Investment
	Wallet      *domain.Wallet
	Transaction *domain.Transaction
}

type MatureResult struct {
	Investment  *domain.Investment
	Wallet      *domain.Wallet
	Transaction *domain.Transaction
}

// ApproveLoanParams carries the amortization terms fixed at approval time.
type ApproveLoanParams struct {
	ApplicationID string
	InterestRate  decimal.Decimal // annual percentage
	TermMonths    int
}

type ApproveLoanResult struct {
	Application *domain.LoanApplication
	Loan        *domain.Loan
	Wallet      *domain.Wallet
	Transaction *domain.Transaction
}

type LoanPaymentParams struct {
	UserID string
	LoanID string
	Amount decimal.Decimal
}

type LoanPaymentResult struct {
	Loan        *domain.Loan
	Wallet      *domain.Wallet
	Transaction *domain.Transaction
}

// SettleParams is an external payment event keyed by the processor's order
// id. EventStatus is the processor's vocabulary; "confirmed" and "completed"
// both mean paid.
type SettleParams struct {
	ExternalOrderID string
	EventStatus     string
	ExternalRef     string
}

// SettleResult reports whether this delivery changed anything. A replay
// against a terminal order succeeds with Applied=false and no other fields.
type SettleResult struct {
	Applied     bool
	Order       *domain.CryptoOrder
	Wallet      *domain.Wallet
	Transaction *domain.Transaction
}

// Store is the ledger: the wallet/transaction source of truth plus the
// commit-unit coordinator. Every method that moves money is atomic; partial
// effects are never visible. Implementations: Postgres for production,
// Memory for development and tests.
type Store interface {
	// Wallets and the transaction log.
	GetOrCreateWallet(ctx context.Context, userID string) (*domain.Wallet, error)
	ListTransactions(ctx context.Context, userID string, limit int) ([]domain.Transaction, error)
	AllTransactions(ctx context.Context, limit int) ([]domain.Transaction, error)
	AdjustWallet(ctx context.Context, p AdjustParams) (*AdjustResult, error)

	// Investment plan catalog.
	GetPlan(ctx context.Context, planID string) (*domain.InvestmentPlan, error)
	ListActivePlans(ctx context.Context) ([]domain.InvestmentPlan, error)
	UpsertPlan(ctx context.Context, plan *domain.InvestmentPlan) error

	// Investments.
	FundInvestment(ctx context.Context, p FundParams) (*FundResult, error)
	ListInvestments(ctx context.Context, userID string) ([]domain.Investment, error)
	MatureInvestment(ctx context.Context, investmentID string) (*MatureResult, error)

	// Loans.
	CreateLoanApplication(ctx context.Context, app *domain.LoanApplication) error
	ListLoanApplications(ctx context.Context, userID string) ([]domain.LoanApplication, error)
	ListLoans(ctx context.Context, userID string) ([]domain.Loan, error)
	ApproveLoan(ctx context.Context, p ApproveLoanParams) (*ApproveLoanResult, error)
	RejectLoanApplication(ctx context.Context, applicationID, reason string) (*domain.LoanApplication, error)
	MakeLoanPayment(ctx context.Context, p LoanPaymentParams) (*LoanPaymentResult, error)

	// Crypto deposit orders.
	CreateCryptoOrder(ctx context.Context, order *domain.CryptoOrder) error
	ListCryptoOrders(ctx context.Context, userID string, limit int) ([]domain.CryptoOrder, error)
	SettleCryptoOrder(ctx context.Context, p SettleParams) (*SettleResult, error)

	// Collaborator lookups and notification side-effect records.
	KYCStatus(ctx context.Context, userID string) (domain.KYCStatus, error)
	GetNotification(ctx context.Context, id string) (*domain.Notification, error)
	ListNotifications(ctx context.Context, userID string, limit int) ([]domain.Notification, error)
	MarkNotificationRead(ctx context.Context, userID, notificationID string) error
}
