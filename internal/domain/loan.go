package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

// Employment statuses recognized by the eligibility scorer.
const (
	EmploymentEmployed     = "employed"
	EmploymentSelfEmployed = "self_employed"
	EmploymentUnemployed   = "unemployed"
)

// LoanApplication is a user's request for credit. At most one pending
// application exists per user at a time.
type LoanApplication struct {
	ID               string            `json:"id"`
	UserID           string            `json:"user_id"`
	Amount           decimal.Decimal   `json:"amount"`
	Purpose          string            `json:"purpose"`
	EmploymentStatus string            `json:"employment_status,omitempty"`
	MonthlyIncome    decimal.Decimal   `json:"monthly_income"`
	Status           ApplicationStatus `json:"status"`
	RejectionReason  string            `json:"rejection_reason,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
}

type LoanStatus string

const (
	LoanActive LoanStatus = "active"
	LoanClosed LoanStatus = "closed"
)

// Loan is an approved, disbursed application with flat-interest amortization.
// Outstanding starts at principal plus total interest and only decreases.
type Loan struct {
	ID             string          `json:"id"`
	ApplicationID  string          `json:"application_id"`
	UserID         string          `json:"user_id"`
	Amount         decimal.Decimal `json:"amount"`
	InterestRate   decimal.Decimal `json:"interest_rate"`
	TermMonths     int             `json:"term_months"`
	MonthlyPayment decimal.Decimal `json:"monthly_payment"`
	Outstanding    decimal.Decimal `json:"outstanding"`
	StartDate      time.Time       `json:"start_date"`
	EndDate        time.Time       `json:"end_date"`
	Status         LoanStatus      `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
}
