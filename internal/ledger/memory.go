package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ayodejiio/vestra/internal/domain"
)

// Memory is an in-process Store used when no database is configured and as
// the backing for invariant tests. It mirrors the Postgres semantics: each
// commit unit mutates staged copies under one lock and publishes them only
// if every step succeeded.
type Memory struct {
	mu            sync.Mutex
	wallets       map[string]*domain.Wallet // keyed by user id
	transactions  []domain.Transaction
	plans         map[string]*domain.InvestmentPlan
	investments   map[string]*domain.Investment
	applications  map[string]*domain.LoanApplication
	loans         map[string]*domain.Loan
	orders        map[string]*domain.CryptoOrder // keyed by external order id
	users         map[string]*domain.User
	notifications []domain.Notification

	// failFund, when set, aborts the fund-investment unit after the wallet
	// step, standing in for a mid-unit store failure.
	failFund error
}

func NewMemory() *Memory {
	return &Memory{
		wallets:      make(map[string]*domain.Wallet),
		plans:        make(map[string]*domain.InvestmentPlan),
		investments:  make(map[string]*domain.Investment),
		applications: make(map[string]*domain.LoanApplication),
		loans:        make(map[string]*domain.Loan),
		orders:       make(map[string]*domain.CryptoOrder),
		users:        make(map[string]*domain.User),
	}
}

// PutUser seeds a user record. The server uses this in dev mode; tests use
// it to control the KYC gate.
func (m *Memory) PutUser(u domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	cp := u
	m.users[u.ID] = &cp
}

func (m *Memory) GetOrCreateWallet(ctx context.Context, userID string) (*domain.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getOrCreateWalletLocked(userID), nil
}

func (m *Memory) getOrCreateWalletLocked(userID string) *domain.Wallet {
	if w, ok := m.wallets[userID]; ok {
		cp := *w
		return &cp
	}
	now := time.Now().UTC()
	w := &domain.Wallet{
		ID:            uuid.New().String(),
		UserID:        userID,
		Currency:      domain.SettlementCurrency,
		Balance:       decimal.Zero,
		LockedBalance: decimal.Zero,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	m.wallets[userID] = w
	cp := *w
	return &cp
}

func (m *Memory) walletLocked(userID string) (*domain.Wallet, error) {
	w, ok := m.wallets[userID]
	if !ok {
		return nil, ErrWalletNotFound
	}
	cp := *w
	return &cp, nil
}

// publishWallet commits a staged wallet copy.
func (m *Memory) publishWallet(w *domain.Wallet) {
	w.UpdatedAt = time.Now().UTC()
	cp := *w
	m.wallets[w.UserID] = &cp
}

func (m *Memory) appendTransactionLocked(userID, walletID string, typ domain.TransactionType, amount, before, after decimal.Decimal, reference, description string) *domain.Transaction {
	t := domain.Transaction{
		ID:            uuid.New().String(),
		UserID:        userID,
		WalletID:      walletID,
		Type:          typ,
		Amount:        amount,
		BalanceBefore: before,
		BalanceAfter:  after,
		Status:        domain.TxCompleted,
		Reference:     reference,
		Description:   description,
		CreatedAt:     time.Now().UTC(),
	}
	m.transactions = append(m.transactions, t)
	cp := t
	return &cp
}

func (m *Memory) notifyLocked(userID, typ, title, message, reference string) {
	m.notifications = append(m.notifications, domain.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      typ,
		Title:     title,
		Message:   message,
		Reference: reference,
		CreatedAt: time.Now().UTC(),
	})
}

func (m *Memory) ListTransactions(ctx context.Context, userID string, limit int) ([]domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 {
		limit = 50
	}
	var out []domain.Transaction
	for i := len(m.transactions) - 1; i >= 0 && len(out) < limit; i-- {
		if m.transactions[i].UserID == userID {
			out = append(out, m.transactions[i])
		}
	}
	return out, nil
}

func (m *Memory) AllTransactions(ctx context.Context, limit int) ([]domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 {
		limit = 100
	}
	var out []domain.Transaction
	for i := len(m.transactions) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.transactions[i])
	}
	return out, nil
}

func (m *Memory) AdjustWallet(ctx context.Context, p AdjustParams) (*AdjustResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, err := m.walletLocked(p.UserID)
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

	m.publishWallet(w)
	t := m.appendTransactionLocked(p.UserID, w.ID, p.Type, signed, before, w.Balance, p.Reference, p.Description)

	title := "Deposit Successful"
	verb := "added to"
	if p.Type == domain.TxWithdrawal {
		title = "Withdrawal Successful"
		verb = "withdrawn from"
	}
	m.notifyLocked(p.UserID, "transaction", title,
		fmt.Sprintf("$%s has been %s your wallet.", p.Amount.StringFixed(2), verb), t.ID)

	return &AdjustResult{Wallet: w, Transaction: t}, nil
}

func (m *Memory) GetPlan(ctx context.Context, planID string) (*domain.InvestmentPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.plans[planID]
	if !ok || !p.IsActive {
		return nil, ErrPlanNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *Memory) ListActivePlans(ctx context.Context) ([]domain.InvestmentPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.InvestmentPlan
	for _, p := range m.plans {
		if p.IsActive {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MinAmount.LessThan(out[j].MinAmount) })
	return out, nil
}

func (m *Memory) UpsertPlan(ctx context.Context, plan *domain.InvestmentPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if plan.ID == "" {
		plan.ID = uuid.New().String()
	}
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = time.Now().UTC()
	}
	cp := *plan
	m.plans[plan.ID] = &cp
	return nil
}

func (m *Memory) FundInvestment(ctx context.Context, p FundParams) (*FundResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, err := m.walletLocked(p.UserID)
	if err != nil {
		return nil, err
	}
	if w.Balance.LessThan(p.Amount) {
		return nil, ErrInsufficientFunds
	}

	// Stage the wallet mutation; nothing is published until every step
	// below has succeeded.
	before := w.Balance
	w.Balance = w.Balance.Sub(p.Amount)
	w.LockedBalance = w.LockedBalance.Add(p.Amount)

	if m.failFund != nil {
		err := m.failFund
		m.failFund = nil
		return nil, err
	}

	now := time.Now().UTC()
	inv := &domain.Investment{
		ID:             uuid.New().String(),
		UserID:         p.UserID,
		PlanID:         p.Plan.ID,
		Amount:         p.Amount,
		ExpectedProfit: p.ExpectedProfit,
		StartDate:      now,
		MaturityDate:   p.MaturityDate,
		Status:         domain.InvestmentPending,
		CreatedAt:      now,
	}

	m.publishWallet(w)
	m.investments[inv.ID] = inv
	t := m.appendTransactionLocked(p.UserID, w.ID, domain.TxInvestment,
		p.Amount.Neg(), before, w.Balance, inv.ID, "Investment in "+p.Plan.Name)
	m.notifyLocked(p.UserID, "investment", "Investment Created",
		fmt.Sprintf("Successfully invested $%s in %s. Expected profit: $%s",
			p.Amount.StringFixed(2), p.Plan.Name, p.ExpectedProfit.StringFixed(2)), inv.ID)

	cp := *inv
	return &FundResult{Investment: &cp, Wallet: w, Transaction: t}, nil
}

func (m *Memory) ListInvestments(ctx context.Context, userID string) ([]domain.Investment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Investment
	for _, inv := range m.investments {
		if inv.UserID == userID {
			out = append(out, *inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) MatureInvestment(ctx context.Context, investmentID string) (*MatureResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inv, ok := m.investments[investmentID]
	if !ok {
		return nil, ErrInvestmentNotFound
	}
	if inv.Status != domain.InvestmentPending && inv.Status != domain.InvestmentActive {
		return nil, ErrInvestmentNotOpen
	}

	w, err := m.walletLocked(inv.UserID)
	if err != nil {
		return nil, err
	}

	payout := inv.Amount.Add(inv.ExpectedProfit)
	before := w.Balance
	w.Balance = w.Balance.Add(payout)
	w.LockedBalance = w.LockedBalance.Sub(inv.Amount)
	if w.LockedBalance.IsNegative() {
		return nil, fmt.Errorf("locked balance underflow for wallet %s", w.ID)
	}

	inv.Status = domain.InvestmentMatured
	m.publishWallet(w)
	t := m.appendTransactionLocked(inv.UserID, w.ID, domain.TxDeposit,
		payout, before, w.Balance, inv.ID, "Investment return")
	m.notifyLocked(inv.UserID, "investment", "Investment Matured",
		fmt.Sprintf("Your investment matured. $%s (principal + profit) has been credited to your wallet.", payout.StringFixed(2)), inv.ID)

	cp := *inv
	return &MatureResult{Investment: &cp, Wallet: w, Transaction: t}, nil
}

func (m *Memory) CreateLoanApplication(ctx context.Context, app *domain.LoanApplication) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.applications {
		if existing.UserID == app.UserID && existing.Status == domain.ApplicationPending {
			return ErrPendingApplication
		}
	}

	if app.ID == "" {
		app.ID = uuid.New().String()
	}
	app.Status = domain.ApplicationPending
	app.CreatedAt = time.Now().UTC()
	cp := *app
	m.applications[app.ID] = &cp

	m.notifyLocked(app.UserID, "loan", "Loan Application Submitted",
		fmt.Sprintf("Your loan application for $%s has been submitted and is under review.", app.Amount.StringFixed(2)), app.ID)
	return nil
}

func (m *Memory) ListLoanApplications(ctx context.Context, userID string) ([]domain.LoanApplication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.LoanApplication
	for _, a := range m.applications {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) ListLoans(ctx context.Context, userID string) ([]domain.Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Loan
	for _, l := range m.loans {
		if l.UserID == userID {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) ApproveLoan(ctx context.Context, p ApproveLoanParams) (*ApproveLoanResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	app, ok := m.applications[p.ApplicationID]
	if !ok {
		return nil, ErrApplicationNotFound
	}
	if app.Status != domain.ApplicationPending {
		return nil, ErrApplicationSettled
	}

	w, err := m.walletLocked(app.UserID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	totalRepayment, monthlyPayment := amortize(app.Amount, p.InterestRate, p.TermMonths)
	loan := &domain.Loan{
		ID:             uuid.New().String(),
		ApplicationID:  app.ID,
		UserID:         app.UserID,
		Amount:         app.Amount,
		InterestRate:   p.InterestRate,
		TermMonths:     p.TermMonths,
		MonthlyPayment: monthlyPayment,
		Outstanding:    totalRepayment,
		StartDate:      now,
		EndDate:        now.AddDate(0, p.TermMonths, 0),
		Status:         domain.LoanActive,
		CreatedAt:      now,
	}

	before := w.Balance
	w.Balance = w.Balance.Add(app.Amount)

	app.Status = domain.ApplicationApproved
	m.loans[loan.ID] = loan
	m.publishWallet(w)
	t := m.appendTransactionLocked(app.UserID, w.ID, domain.TxLoanDisbursement,
		app.Amount, before, w.Balance, loan.ID, "Loan disbursement")
	m.notifyLocked(app.UserID, "loan", "Loan Approved",
		fmt.Sprintf("Your loan of $%s has been approved and disbursed to your wallet.", app.Amount.StringFixed(2)), loan.ID)

	appCp := *app
	loanCp := *loan
	return &ApproveLoanResult{Application: &appCp, Loan: &loanCp, Wallet: w, Transaction: t}, nil
}

func (m *Memory) RejectLoanApplication(ctx context.Context, applicationID, reason string) (*domain.LoanApplication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	app, ok := m.applications[applicationID]
	if !ok {
		return nil, ErrApplicationNotFound
	}
	if app.Status != domain.ApplicationPending {
		return nil, ErrApplicationSettled
	}

	app.Status = domain.ApplicationRejected
	app.RejectionReason = reason

	msg := "Your loan application was not approved."
	if reason != "" {
		msg = "Your loan application was not approved: " + reason
	}
	m.notifyLocked(app.UserID, "loan", "Loan Application Rejected", msg, app.ID)

	cp := *app
	return &cp, nil
}

func (m *Memory) MakeLoanPayment(ctx context.Context, p LoanPaymentParams) (*LoanPaymentResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	loan, ok := m.loans[p.LoanID]
	if !ok || loan.UserID != p.UserID {
		return nil, ErrLoanNotFound
	}
	if loan.Status != domain.LoanActive {
		return nil, ErrLoanNotActive
	}

	amount := p.Amount
	if amount.GreaterThan(loan.Outstanding) {
		amount = loan.Outstanding
	}

	w, err := m.walletLocked(p.UserID)
	if err != nil {
		return nil, err
	}
	if w.Balance.LessThan(amount) {
		return nil, ErrInsufficientFunds
	}

	before := w.Balance
	w.Balance = w.Balance.Sub(amount)
	loan.Outstanding = loan.Outstanding.Sub(amount)
	if loan.Outstanding.IsZero() {
		loan.Status = domain.LoanClosed
	}

	m.publishWallet(w)
	t := m.appendTransactionLocked(p.UserID, w.ID, domain.TxLoanPayment,
		amount.Neg(), before, w.Balance, loan.ID, "Loan payment")

	title := "Loan Payment Received"
	msg := fmt.Sprintf("Your payment of $%s has been applied. Outstanding balance: $%s.",
		amount.StringFixed(2), loan.Outstanding.StringFixed(2))
	if loan.Status == domain.LoanClosed {
		title = "Loan Fully Repaid"
		msg = "Congratulations, your loan has been fully repaid and closed."
	}
	m.notifyLocked(p.UserID, "loan", title, msg, loan.ID)

	cp := *loan
	return &LoanPaymentResult{Loan: &cp, Wallet: w, Transaction: t}, nil
}

func (m *Memory) CreateCryptoOrder(ctx context.Context, order *domain.CryptoOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.orders[order.ExternalOrderID]; exists {
		return ErrDuplicateOrder
	}
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	order.Status = domain.OrderPending
	order.CreatedAt = time.Now().UTC()
	cp := *order
	m.orders[order.ExternalOrderID] = &cp
	return nil
}

func (m *Memory) ListCryptoOrders(ctx context.Context, userID string, limit int) ([]domain.CryptoOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 {
		limit = 50
	}
	var out []domain.CryptoOrder
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) SettleCryptoOrder(ctx context.Context, p SettleParams) (*SettleResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[p.ExternalOrderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	if order.Status.Terminal() {
		cp := *order
		return &SettleResult{Applied: false, Order: &cp}, nil
	}

	switch p.EventStatus {
	case "confirmed", "completed":
		w, err := m.walletLocked(order.UserID)
		if err != nil {
			return nil, err
		}

		before := w.Balance
		w.Balance = w.Balance.Add(order.FiatAmount)

		now := time.Now().UTC()
		order.Status = domain.OrderCompleted
		order.ExternalRef = p.ExternalRef
		order.CompletedAt = &now

		m.publishWallet(w)
		t := m.appendTransactionLocked(order.UserID, w.ID, domain.TxDeposit,
			order.FiatAmount, before, w.Balance, order.ID, "Crypto deposit via "+order.CryptoCurrency)
		m.notifyLocked(order.UserID, "transaction", "Deposit Confirmed",
			fmt.Sprintf("Your crypto deposit of $%s has been confirmed and added to your wallet.", order.FiatAmount.StringFixed(2)), order.ID)

		cp := *order
		return &SettleResult{Applied: true, Order: &cp, Wallet: w, Transaction: t}, nil

	case "failed", "expired":
		order.Status = domain.OrderStatus(p.EventStatus)
		order.ExternalRef = p.ExternalRef
		m.notifyLocked(order.UserID, "transaction", "Deposit Failed",
			fmt.Sprintf("Your crypto deposit order has %s. Please try again or contact support.", p.EventStatus), order.ID)

		cp := *order
		return &SettleResult{Applied: true, Order: &cp}, nil

	default:
		return nil, fmt.Errorf("unknown event status %q", p.EventStatus)
	}
}

func (m *Memory) KYCStatus(ctx context.Context, userID string) (domain.KYCStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return "", ErrUserNotFound
	}
	return u.KYCStatus, nil
}

func (m *Memory) GetNotification(ctx context.Context, id string) (*domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.notifications {
		if m.notifications[i].ID == id {
			cp := m.notifications[i]
			return &cp, nil
		}
	}
	return nil, ErrNotificationNotFound
}

func (m *Memory) ListNotifications(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 {
		limit = 50
	}
	var out []domain.Notification
	for i := len(m.notifications) - 1; i >= 0 && len(out) < limit; i-- {
		if m.notifications[i].UserID == userID {
			out = append(out, m.notifications[i])
		}
	}
	return out, nil
}

func (m *Memory) MarkNotificationRead(ctx context.Context, userID, notificationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.notifications {
		n := &m.notifications[i]
		if n.ID == notificationID && n.UserID == userID && n.ReadAt == nil {
			now := time.Now().UTC()
			n.ReadAt = &now
			return nil
		}
	}
	return ErrNotificationNotFound
}

var _ Store = (*Memory)(nil)
var _ Store = (*Postgres)(nil)
