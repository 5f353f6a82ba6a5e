package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ayodejiio/vestra/internal/domain"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testPlan() *domain.InvestmentPlan {
	return &domain.InvestmentPlan{
		ID:                "plan-1",
		Name:              "Growth Fund",
		MinAmount:         dec("100"),
		MaxAmount:         dec("10000"),
		ROIPercentage:     dec("12"),
		DurationValue:     12,
		DurationUnit:      domain.DurationMonths,
		CompoundFrequency: domain.CompoundMonthly,
		IsActive:          true,
	}
}

func seedWallet(t *testing.T, m *Memory, userID, balance string) *domain.Wallet {
	t.Helper()
	ctx := context.Background()
	if _, err := m.GetOrCreateWallet(ctx, userID); err != nil {
		t.Fatalf("create wallet: %v", err)
	}
	if balance != "0" {
		if _, err := m.AdjustWallet(ctx, AdjustParams{
			UserID: userID, Type: domain.TxDeposit, Amount: dec(balance), Description: "seed",
		}); err != nil {
			t.Fatalf("seed deposit: %v", err)
		}
	}
	w, err := m.GetOrCreateWallet(ctx, userID)
	if err != nil {
		t.Fatalf("reload wallet: %v", err)
	}
	return w
}

func TestAdjustWalletLedgerConservation(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	seedWallet(t, m, "u1", "0")

	ops := []struct {
		typ    domain.TransactionType
		amount string
		ok     bool
	}{
		{domain.TxDeposit, "500", true},
		{domain.TxWithdrawal, "120.50", true},
		{domain.TxDeposit, "79.50", true},
		{domain.TxWithdrawal, "1000", false}, // insufficient
		{domain.TxWithdrawal, "459", true},
	}
	for i, op := range ops {
		_, err := m.AdjustWallet(ctx, AdjustParams{UserID: "u1", Type: op.typ, Amount: dec(op.amount)})
		if op.ok && err != nil {
			t.Fatalf("op %d: %v", i, err)
		}
		if !op.ok && !errors.Is(err, ErrInsufficientFunds) {
			t.Fatalf("op %d: want ErrInsufficientFunds, got %v", i, err)
		}
	}

	w, _ := m.GetOrCreateWallet(ctx, "u1")
	if !w.Balance.Equal(dec("0")) {
		t.Fatalf("balance = %s, want 0", w.Balance)
	}

	txs, _ := m.ListTransactions(ctx, "u1", 0)
	sum := decimal.Zero
	for _, tx := range txs {
		if tx.Status == domain.TxCompleted {
			sum = sum.Add(tx.Amount)
		}
	}
	if !sum.Equal(w.Balance) {
		t.Fatalf("replayed sum %s != balance %s", sum, w.Balance)
	}
}

func TestLedgerConservationAcrossMixedOperations(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	seedWallet(t, m, "u1", "2000")

	fund, err := m.FundInvestment(ctx, FundParams{
		UserID: "u1", Plan: testPlan(), Amount: dec("800"),
		ExpectedProfit: dec("101.46"), MaturityDate: time.Now().AddDate(1, 0, 0),
	})
	if err != nil {
		t.Fatalf("fund: %v", err)
	}
	if _, err := m.AdjustWallet(ctx, AdjustParams{UserID: "u1", Type: domain.TxWithdrawal, Amount: dec("300")}); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if _, err := m.MatureInvestment(ctx, fund.Investment.ID); err != nil {
		t.Fatalf("mature: %v", err)
	}

	order := pendingOrder("u1", "order_mix", "150")
	if err := m.CreateCryptoOrder(ctx, order); err != nil {
		t.Fatalf("order: %v", err)
	}
	if _, err := m.SettleCryptoOrder(ctx, SettleParams{ExternalOrderID: "order_mix", EventStatus: "confirmed"}); err != nil {
		t.Fatalf("settle: %v", err)
	}

	w, _ := m.GetOrCreateWallet(ctx, "u1")
	txs, _ := m.ListTransactions(ctx, "u1", 0)
	sum := decimal.Zero
	for _, tx := range txs {
		if tx.Status == domain.TxCompleted {
			sum = sum.Add(tx.Amount)
		}
	}
	if !sum.Equal(w.Balance) {
		t.Fatalf("replayed sum %s != balance %s", sum, w.Balance)
	}
	if w.Balance.IsNegative() || w.LockedBalance.IsNegative() {
		t.Fatalf("negative balances: %s / %s", w.Balance, w.LockedBalance)
	}
}

func TestWithdrawalNeverGoesNegative(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	seedWallet(t, m, "u1", "100")

	_, err := m.AdjustWallet(ctx, AdjustParams{UserID: "u1", Type: domain.TxWithdrawal, Amount: dec("100.00000001")})
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("want ErrInsufficientFunds, got %v", err)
	}

	w, _ := m.GetOrCreateWallet(ctx, "u1")
	if w.Balance.IsNegative() || w.LockedBalance.IsNegative() {
		t.Fatalf("negative balance after failed withdrawal: %s / %s", w.Balance, w.LockedBalance)
	}
	if !w.Balance.Equal(dec("100")) {
		t.Fatalf("balance changed by failed withdrawal: %s", w.Balance)
	}
}

func TestFundInvestmentMovesFundsToLocked(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	seedWallet(t, m, "u1", "1000")

	res, err := m.FundInvestment(ctx, FundParams{
		UserID:         "u1",
		Plan:           testPlan(),
		Amount:         dec("400"),
		ExpectedProfit: dec("50.73"),
		MaturityDate:   time.Now().AddDate(1, 0, 0),
	})
	if err != nil {
		t.Fatalf("fund: %v", err)
	}

	if !res.Wallet.Balance.Equal(dec("600")) {
		t.Fatalf("balance = %s, want 600", res.Wallet.Balance)
	}
	if !res.Wallet.LockedBalance.Equal(dec("400")) {
		t.Fatalf("locked = %s, want 400", res.Wallet.LockedBalance)
	}
	if res.Investment.Status != domain.InvestmentPending {
		t.Fatalf("status = %s, want pending", res.Investment.Status)
	}
	if !res.Transaction.Amount.Equal(dec("-400")) {
		t.Fatalf("transaction amount = %s, want -400", res.Transaction.Amount)
	}
	if res.Transaction.Type != domain.TxInvestment {
		t.Fatalf("transaction type = %s", res.Transaction.Type)
	}
}

func TestFundInvestmentInsufficientFunds(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	seedWallet(t, m, "u1", "100")

	_, err := m.FundInvestment(ctx, FundParams{
		UserID: "u1", Plan: testPlan(), Amount: dec("400"),
		ExpectedProfit: dec("1"), MaturityDate: time.Now(),
	})
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("want ErrInsufficientFunds, got %v", err)
	}
}

func TestFundInvestmentRollsBackOnMidUnitFailure(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	seedWallet(t, m, "u1", "500")

	boom := errors.New("investment insert failed")
	m.failFund = boom

	_, err := m.FundInvestment(ctx, FundParams{
		UserID: "u1", Plan: testPlan(), Amount: dec("200"),
		ExpectedProfit: dec("25"), MaturityDate: time.Now().AddDate(1, 0, 0),
	})
	if !errors.Is(err, boom) {
		t.Fatalf("want injected failure, got %v", err)
	}

	// The debit and the lock must both have been undone.
	w, _ := m.GetOrCreateWallet(ctx, "u1")
	if !w.Balance.Equal(dec("500")) {
		t.Fatalf("balance = %s, want 500 after rollback", w.Balance)
	}
	if !w.LockedBalance.Equal(dec("0")) {
		t.Fatalf("locked = %s, want 0 after rollback", w.LockedBalance)
	}
	invs, _ := m.ListInvestments(ctx, "u1")
	if len(invs) != 0 {
		t.Fatalf("investment row leaked from aborted unit")
	}
	txs, _ := m.ListTransactions(ctx, "u1", 0)
	if len(txs) != 1 { // only the seed deposit
		t.Fatalf("transaction leaked from aborted unit: %d entries", len(txs))
	}
}

func TestMatureInvestmentPaysPrincipalPlusProfit(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	seedWallet(t, m, "u1", "1000")

	res, err := m.FundInvestment(ctx, FundParams{
		UserID: "u1", Plan: testPlan(), Amount: dec("1000"),
		ExpectedProfit: dec("126.83"), MaturityDate: time.Now().AddDate(1, 0, 0),
	})
	if err != nil {
		t.Fatalf("fund: %v", err)
	}

	mat, err := m.MatureInvestment(ctx, res.Investment.ID)
	if err != nil {
		t.Fatalf("mature: %v", err)
	}
	if !mat.Wallet.Balance.Equal(dec("1126.83")) {
		t.Fatalf("balance = %s, want 1126.83", mat.Wallet.Balance)
	}
	if !mat.Wallet.LockedBalance.Equal(dec("0")) {
		t.Fatalf("locked = %s, want 0", mat.Wallet.LockedBalance)
	}
	if mat.Investment.Status != domain.InvestmentMatured {
		t.Fatalf("status = %s", mat.Investment.Status)
	}

	// A matured investment cannot mature again.
	if _, err := m.MatureInvestment(ctx, res.Investment.ID); !errors.Is(err, ErrInvestmentNotOpen) {
		t.Fatalf("want ErrInvestmentNotOpen, got %v", err)
	}
}

func TestSinglePendingLoanApplication(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	first := &domain.LoanApplication{UserID: "u1", Amount: dec("5000"), Purpose: "equipment"}
	if err := m.CreateLoanApplication(ctx, first); err != nil {
		t.Fatalf("first application: %v", err)
	}

	second := &domain.LoanApplication{UserID: "u1", Amount: dec("2000"), Purpose: "anything"}
	if err := m.CreateLoanApplication(ctx, second); !errors.Is(err, ErrPendingApplication) {
		t.Fatalf("want ErrPendingApplication, got %v", err)
	}

	// Deciding the pending application clears the way for a new one.
	if _, err := m.RejectLoanApplication(ctx, first.ID, "insufficient history"); err != nil {
		t.Fatalf("reject: %v", err)
	}
	third := &domain.LoanApplication{UserID: "u1", Amount: dec("2000"), Purpose: "retry"}
	if err := m.CreateLoanApplication(ctx, third); err != nil {
		t.Fatalf("third application after rejection: %v", err)
	}
}

func TestApproveLoanDisbursesOnce(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	seedWallet(t, m, "u1", "0")

	app := &domain.LoanApplication{UserID: "u1", Amount: dec("6000"), Purpose: "expansion"}
	if err := m.CreateLoanApplication(ctx, app); err != nil {
		t.Fatalf("apply: %v", err)
	}

	res, err := m.ApproveLoan(ctx, ApproveLoanParams{
		ApplicationID: app.ID, InterestRate: dec("15"), TermMonths: 12,
	})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if !res.Wallet.Balance.Equal(dec("6000")) {
		t.Fatalf("balance = %s, want 6000", res.Wallet.Balance)
	}
	// Flat interest: 6000 * 15% * 1y = 900; outstanding 6900, monthly 575.
	if !res.Loan.Outstanding.Equal(dec("6900")) {
		t.Fatalf("outstanding = %s, want 6900", res.Loan.Outstanding)
	}
	if !res.Loan.MonthlyPayment.Equal(dec("575")) {
		t.Fatalf("monthly payment = %s, want 575", res.Loan.MonthlyPayment)
	}
	if res.Transaction.Type != domain.TxLoanDisbursement {
		t.Fatalf("transaction type = %s", res.Transaction.Type)
	}

	// Second approval of the same application must not double-disburse.
	if _, err := m.ApproveLoan(ctx, ApproveLoanParams{ApplicationID: app.ID, InterestRate: dec("15"), TermMonths: 12}); !errors.Is(err, ErrApplicationSettled) {
		t.Fatalf("want ErrApplicationSettled, got %v", err)
	}
	w, _ := m.GetOrCreateWallet(ctx, "u1")
	if !w.Balance.Equal(dec("6000")) {
		t.Fatalf("balance changed on replayed approval: %s", w.Balance)
	}
}

func TestLoanPaymentCapsAndCloses(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	seedWallet(t, m, "u1", "10000")

	app := &domain.LoanApplication{UserID: "u1", Amount: dec("1000"), Purpose: "stock"}
	if err := m.CreateLoanApplication(ctx, app); err != nil {
		t.Fatalf("apply: %v", err)
	}
	res, err := m.ApproveLoan(ctx, ApproveLoanParams{ApplicationID: app.ID, InterestRate: dec("12"), TermMonths: 12})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	// Outstanding: 1000 + 120 = 1120. Overpay; only the outstanding is taken.
	pay, err := m.MakeLoanPayment(ctx, LoanPaymentParams{UserID: "u1", LoanID: res.Loan.ID, Amount: dec("5000")})
	if err != nil {
		t.Fatalf("payment: %v", err)
	}
	if !pay.Transaction.Amount.Equal(dec("-1120")) {
		t.Fatalf("payment amount = %s, want -1120", pay.Transaction.Amount)
	}
	if pay.Loan.Status != domain.LoanClosed {
		t.Fatalf("loan status = %s, want closed", pay.Loan.Status)
	}
	if !pay.Loan.Outstanding.IsZero() {
		t.Fatalf("outstanding = %s, want 0", pay.Loan.Outstanding)
	}

	// Paying a closed loan fails.
	if _, err := m.MakeLoanPayment(ctx, LoanPaymentParams{UserID: "u1", LoanID: res.Loan.ID, Amount: dec("1")}); !errors.Is(err, ErrLoanNotActive) {
		t.Fatalf("want ErrLoanNotActive, got %v", err)
	}
}

func pendingOrder(userID, externalID, fiat string) *domain.CryptoOrder {
	return &domain.CryptoOrder{
		UserID:          userID,
		CryptoCurrency:  "USDT",
		CryptoAmount:    dec(fiat),
		FiatAmount:      dec(fiat),
		ExchangeRate:    dec("1"),
		ExternalOrderID: externalID,
		ExpiresAt:       time.Now().Add(30 * time.Minute),
	}
}

func TestSettleCryptoOrderIdempotent(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	seedWallet(t, m, "u1", "0")

	order := pendingOrder("u1", "order_abc", "250")
	if err := m.CreateCryptoOrder(ctx, order); err != nil {
		t.Fatalf("create order: %v", err)
	}

	first, err := m.SettleCryptoOrder(ctx, SettleParams{ExternalOrderID: "order_abc", EventStatus: "confirmed", ExternalRef: "0xdeadbeef"})
	if err != nil {
		t.Fatalf("first settle: %v", err)
	}
	if !first.Applied {
		t.Fatal("first settle not applied")
	}
	if !first.Wallet.Balance.Equal(dec("250")) {
		t.Fatalf("balance = %s, want 250", first.Wallet.Balance)
	}
	if first.Order.Status != domain.OrderCompleted {
		t.Fatalf("order status = %s", first.Order.Status)
	}

	// Redelivery of the same event is a successful no-op.
	second, err := m.SettleCryptoOrder(ctx, SettleParams{ExternalOrderID: "order_abc", EventStatus: "confirmed", ExternalRef: "0xdeadbeef"})
	if err != nil {
		t.Fatalf("second settle: %v", err)
	}
	if second.Applied {
		t.Fatal("replay was applied")
	}

	w, _ := m.GetOrCreateWallet(ctx, "u1")
	if !w.Balance.Equal(dec("250")) {
		t.Fatalf("balance changed on replay: %s", w.Balance)
	}
	txs, _ := m.ListTransactions(ctx, "u1", 0)
	deposits := 0
	for _, tx := range txs {
		if tx.Type == domain.TxDeposit {
			deposits++
		}
	}
	if deposits != 1 {
		t.Fatalf("deposit recorded %d times, want 1", deposits)
	}
}

func TestSettleCryptoOrderFailureHasNoBalanceEffect(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	seedWallet(t, m, "u1", "50")

	order := pendingOrder("u1", "order_x", "100")
	if err := m.CreateCryptoOrder(ctx, order); err != nil {
		t.Fatalf("create order: %v", err)
	}

	res, err := m.SettleCryptoOrder(ctx, SettleParams{ExternalOrderID: "order_x", EventStatus: "expired"})
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if !res.Applied || res.Order.Status != domain.OrderExpired {
		t.Fatalf("order not expired: applied=%v status=%s", res.Applied, res.Order.Status)
	}

	w, _ := m.GetOrCreateWallet(ctx, "u1")
	if !w.Balance.Equal(dec("50")) {
		t.Fatalf("balance = %s, want 50", w.Balance)
	}

	// A confirmation arriving after expiry is a no-op: the order is terminal.
	late, err := m.SettleCryptoOrder(ctx, SettleParams{ExternalOrderID: "order_x", EventStatus: "confirmed"})
	if err != nil {
		t.Fatalf("late settle: %v", err)
	}
	if late.Applied {
		t.Fatal("terminal order transitioned again")
	}
}

func TestSettleUnknownOrder(t *testing.T) {
	m := NewMemory()
	if _, err := m.SettleCryptoOrder(context.Background(), SettleParams{ExternalOrderID: "nope", EventStatus: "confirmed"}); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("want ErrOrderNotFound, got %v", err)
	}
}

func TestDuplicateCryptoOrderRejected(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	if err := m.CreateCryptoOrder(ctx, pendingOrder("u1", "order_dup", "10")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := m.CreateCryptoOrder(ctx, pendingOrder("u1", "order_dup", "10")); !errors.Is(err, ErrDuplicateOrder) {
		t.Fatalf("want ErrDuplicateOrder, got %v", err)
	}
}

func TestKYCStatusUnknownUser(t *testing.T) {
	m := NewMemory()
	if _, err := m.KYCStatus(context.Background(), "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("want ErrUserNotFound, got %v", err)
	}
	m.PutUser(domain.User{ID: "u1", KYCStatus: domain.KYCApproved})
	status, err := m.KYCStatus(context.Background(), "u1")
	if err != nil || status != domain.KYCApproved {
		t.Fatalf("status = %s, err = %v", status, err)
	}
}

func TestNotificationsWrittenByCommitUnits(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	seedWallet(t, m, "u1", "75")

	notes, err := m.ListNotifications(ctx, "u1", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(notes) == 0 {
		t.Fatal("seed deposit produced no notification")
	}
	if notes[0].Title != "Deposit Successful" {
		t.Fatalf("title = %q", notes[0].Title)
	}

	if err := m.MarkNotificationRead(ctx, "u1", notes[0].ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	// Second read of the same notification is not found (already read).
	if err := m.MarkNotificationRead(ctx, "u1", notes[0].ID); !errors.Is(err, ErrNotificationNotFound) {
		t.Fatalf("want ErrNotificationNotFound, got %v", err)
	}
}
