package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/ayodejiio/vestra/internal/domain"
)

const applicationColumns = `id, user_id, amount, COALESCE(purpose, ''), COALESCE(employment_status, ''), COALESCE(monthly_income, 0), status, COALESCE(rejection_reason, ''), created_at`

func scanApplication(row pgx.Row) (*domain.LoanApplication, error) {
	var a domain.LoanApplication
	err := row.Scan(&a.ID, &a.UserID, &a.Amount, &a.Purpose, &a.EmploymentStatus,
		&a.MonthlyIncome, &a.Status, &a.RejectionReason, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateLoanApplication inserts the application. The one-pending-per-user
// invariant is enforced by the partial unique index on
// loan_applications(user_id) WHERE status = 'pending', so a concurrent
// duplicate loses at insert time instead of racing a pre-check.
func (s *Postgres) CreateLoanApplication(ctx context.Context, app *domain.LoanApplication) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if app.ID == "" {
		app.ID = uuid.New().String()
	}
	row, err := scanApplication(tx.QueryRow(ctx,
		`INSERT INTO loan_applications (id, user_id, amount, purpose, employment_status, monthly_income, status)
		 VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, 'pending')
		 RETURNING `+applicationColumns,
		app.ID, app.UserID, app.Amount, app.Purpose, app.EmploymentStatus, app.MonthlyIncome))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrPendingApplication
		}
		return fmt.Errorf("insert application: %w", err)
	}

	msg := fmt.Sprintf("Your loan application for $%s has been submitted and is under review.", app.Amount.StringFixed(2))
	if err := insertNotification(ctx, tx, app.UserID, "loan", "Loan Application Submitted", msg, row.ID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	*app = *row
	return nil
}

func (s *Postgres) ListLoanApplications(ctx context.Context, userID string) ([]domain.LoanApplication, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+applicationColumns+` FROM loan_applications WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.LoanApplication
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

const loanColumns = `id, application_id, user_id, amount, interest_rate, term_months, monthly_payment, outstanding, start_date, end_date, status, created_at`

func scanLoan(row pgx.Row) (*domain.Loan, error) {
	var l domain.Loan
	err := row.Scan(&l.ID, &l.ApplicationID, &l.UserID, &l.Amount, &l.InterestRate,
		&l.TermMonths, &l.MonthlyPayment, &l.Outstanding, &l.StartDate, &l.EndDate, &l.Status, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *Postgres) ListLoans(ctx context.Context, userID string) ([]domain.Loan, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+loanColumns+` FROM loans WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

// amortize computes the flat-interest schedule fixed at approval:
// total interest = principal * APR/100 * term/12.
func amortize(principal, annualRate decimal.Decimal, termMonths int) (totalRepayment, monthlyPayment decimal.Decimal) {
	term := decimal.NewFromInt(int64(termMonths))
	interest := principal.Mul(annualRate).Div(decimal.NewFromInt(100)).Mul(term).Div(decimal.NewFromInt(12))
	totalRepayment = principal.Add(interest).Round(8)
	monthlyPayment = totalRepayment.Div(term).Round(8)
	return totalRepayment, monthlyPayment
}

// ApproveLoan flips a pending application to approved, creates the loan with
// its amortization fields, and disburses the principal to the wallet, all as
// one unit.
func (s *Postgres) ApproveLoan(ctx context.Context, p ApproveLoanParams) (*ApproveLoanResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	app, err := scanApplication(tx.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM loan_applications WHERE id = $1 FOR UPDATE`, p.ApplicationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("lock application: %w", err)
	}
	if app.Status != domain.ApplicationPending {
		return nil, ErrApplicationSettled
	}

	if _, err := tx.Exec(ctx,
		`UPDATE loan_applications SET status = 'approved' WHERE id = $1`, app.ID); err != nil {
		return nil, fmt.Errorf("approve application: %w", err)
	}
	app.Status = domain.ApplicationApproved

	start := time.Now().UTC()
	end := start.AddDate(0, p.TermMonths, 0)
	totalRepayment, monthlyPayment := amortize(app.Amount, p.InterestRate, p.TermMonths)

	loan, err := scanLoan(tx.QueryRow(ctx,
		`INSERT INTO loans (id, application_id, user_id, amount, interest_rate, term_months, monthly_payment, outstanding, start_date, end_date, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 'active')
		 RETURNING `+loanColumns,
		uuid.New().String(), app.ID, app.UserID, app.Amount, p.InterestRate,
		p.TermMonths, monthlyPayment, totalRepayment, start, end))
	if err != nil {
		return nil, fmt.Errorf("insert loan: %w", err)
	}

	w, err := lockWallet(ctx, tx, app.UserID)
	if err != nil {
		return nil, err
	}
	before := w.Balance
	w.Balance = w.Balance.Add(app.Amount)
	if err := updateWalletBalances(ctx, tx, w); err != nil {
		return nil, err
	}

	t, err := appendTransaction(ctx, tx, app.UserID, w.ID, domain.TxLoanDisbursement,
		app.Amount, before, w.Balance, loan.ID, "Loan disbursement")
	if err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("Your loan of $%s has been approved and disbursed to your wallet.", app.Amount.StringFixed(2))
	if err := insertNotification(ctx, tx, app.UserID, "loan", "Loan Approved", msg, loan.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &ApproveLoanResult{Application: app, Loan: loan, Wallet: w, Transaction: t}, nil
}

func (s *Postgres) RejectLoanApplication(ctx context.Context, applicationID, reason string) (*domain.LoanApplication, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	app, err := scanApplication(tx.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM loan_applications WHERE id = $1 FOR UPDATE`, applicationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("lock application: %w", err)
	}
	if app.Status != domain.ApplicationPending {
		return nil, ErrApplicationSettled
	}

	if _, err := tx.Exec(ctx,
		`UPDATE loan_applications SET status = 'rejected', rejection_reason = NULLIF($2, '') WHERE id = $1`,
		app.ID, reason); err != nil {
		return nil, fmt.Errorf("reject application: %w", err)
	}
	app.Status = domain.ApplicationRejected
	app.RejectionReason = reason

	msg := "Your loan application was not approved."
	if reason != "" {
		msg = "Your loan application was not approved: " + reason
	}
	if err := insertNotification(ctx, tx, app.UserID, "loan", "Loan Application Rejected", msg, app.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return app, nil
}

// MakeLoanPayment debits the wallet and reduces the outstanding balance.
// Payments above the outstanding amount are capped at it; a loan that
// reaches zero closes.
func (s *Postgres) MakeLoanPayment(ctx context.Context, p LoanPaymentParams) (*LoanPaymentResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	loan, err := scanLoan(tx.QueryRow(ctx,
		`SELECT `+loanColumns+` FROM loans WHERE id = $1 AND user_id = $2 FOR UPDATE`,
		p.LoanID, p.UserID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLoanNotFound
		}
		return nil, fmt.Errorf("lock loan: %w", err)
	}
	if loan.Status != domain.LoanActive {
		return nil, ErrLoanNotActive
	}

	amount := p.Amount
	if amount.GreaterThan(loan.Outstanding) {
		amount = loan.Outstanding
	}

	w, err := lockWallet(ctx, tx, p.UserID)
	if err != nil {
		return nil, err
	}
	if w.Balance.LessThan(amount) {
		return nil, ErrInsufficientFunds
	}

	before := w.Balance
	w.Balance = w.Balance.Sub(amount)
	if err := updateWalletBalances(ctx, tx, w); err != nil {
		return nil, err
	}

	loan.Outstanding = loan.Outstanding.Sub(amount)
	if loan.Outstanding.IsZero() {
		loan.Status = domain.LoanClosed
	}
	if _, err := tx.Exec(ctx,
		`UPDATE loans SET outstanding = $2, status = $3 WHERE id = $1`,
		loan.ID, loan.Outstanding, loan.Status); err != nil {
		return nil, fmt.Errorf("update loan: %w", err)
	}

	t, err := appendTransaction(ctx, tx, p.UserID, w.ID, domain.TxLoanPayment,
		amount.Neg(), before, w.Balance, loan.ID, "Loan payment")
	if err != nil {
		return nil, err
	}

	title := "Loan Payment Received"
	msg := fmt.Sprintf("Your payment of $%s has been applied. Outstanding balance: $%s.",
		amount.StringFixed(2), loan.Outstanding.StringFixed(2))
	if loan.Status == domain.LoanClosed {
		title = "Loan Fully Repaid"
		msg = "Congratulations, your loan has been fully repaid and closed."
	}
	if err := insertNotification(ctx, tx, p.UserID, "loan", title, msg, loan.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &LoanPaymentResult{Loan: loan, Wallet: w, Transaction: t}, nil
}
