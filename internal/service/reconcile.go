package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ayodejiio/vestra/internal/domain"
	"github.com/ayodejiio/vestra/internal/ledger"
)

// Deposit bounds and the KYC threshold, in the settlement currency.
var (
	depositMinFiat = decimal.NewFromInt(10)
	depositMaxFiat = decimal.NewFromInt(50000)
	depositKYCFiat = decimal.NewFromInt(1000)
)

const orderTTL = 30 * time.Minute

// mockRates stands in for a live processor quote feed. Rates are fiat per
// unit of crypto.
var mockRates = map[string]decimal.Decimal{
	"BTC":  decimal.NewFromInt(45000),
	"ETH":  decimal.NewFromInt(2500),
	"USDT": decimal.NewFromInt(1),
	"USDC": decimal.NewFromInt(1),
}

// ReconciliationService creates crypto deposit orders and applies payment
// events from the processor exactly once.
type ReconciliationService struct {
	store  ledger.Store
	alerts Alerts
	now    func() time.Time
}

func NewReconciliationService(store ledger.Store, alerts Alerts) *ReconciliationService {
	return &ReconciliationService{store: store, alerts: alerts, now: time.Now}
}

// CreateOrder quotes the crypto amount at the current rate and records a
// pending order. Deposits at or above the KYC threshold require an approved
// profile.
func (s *ReconciliationService) CreateOrder(ctx context.Context, userID, currency string, fiatAmount decimal.Decimal) (*domain.CryptoOrder, error) {
	rate, ok := mockRates[currency]
	if !ok {
		return nil, ledger.ErrUnsupportedCurrency
	}
	if fiatAmount.LessThan(depositMinFiat) || fiatAmount.GreaterThan(depositMaxFiat) {
		return nil, ledger.ErrDepositOutOfRange
	}
	if fiatAmount.GreaterThanOrEqual(depositKYCFiat) {
		if err := requireKYC(ctx, s.store, userID); err != nil {
			return nil, err
		}
	}

	// Settlement locks the wallet row; create it now so a webhook for this
	// order can never land on a missing wallet.
	if _, err := s.store.GetOrCreateWallet(ctx, userID); err != nil {
		return nil, err
	}

	now := s.now()
	externalID := fmt.Sprintf("order_%d_%06d", now.Unix(), rand.Intn(1000000))
	order := &domain.CryptoOrder{
		UserID:          userID,
		CryptoCurrency:  currency,
		CryptoAmount:    fiatAmount.Div(rate).Round(8),
		FiatAmount:      fiatAmount,
		ExchangeRate:    rate,
		ExternalOrderID: externalID,
		PaymentURL:      fmt.Sprintf("https://pay.mockprocessor.io/checkout/%s", externalID),
		Status:          domain.OrderPending,
		ExpiresAt:       now.Add(orderTTL),
	}
	if err := s.store.CreateCryptoOrder(ctx, order); err != nil {
		return nil, err
	}

	_ = s.alerts.NotifyUser(userID, "deposit", "Deposit Order Created")
	_ = s.alerts.ScheduleOrderExpiry(order.ExternalOrderID, order.ExpiresAt)
	return order, nil
}

func (s *ReconciliationService) Orders(ctx context.Context, userID string, limit int) ([]domain.CryptoOrder, error) {
	return s.store.ListCryptoOrders(ctx, userID, limit)
}

// ApplyPaymentEvent settles a processor webhook delivery. Replays and events
// against terminal orders return Applied=false without touching the wallet.
func (s *ReconciliationService) ApplyPaymentEvent(ctx context.Context, externalOrderID, eventStatus, externalRef string) (*ledger.SettleResult, error) {
	return s.store.SettleCryptoOrder(ctx, ledger.SettleParams{
		ExternalOrderID: externalOrderID,
		EventStatus:     eventStatus,
		ExternalRef:     externalRef,
	})
}

// ExpireOrder marks a still-pending order expired. It is safe to call on
// orders that were paid in the meantime; those are left untouched.
func (s *ReconciliationService) ExpireOrder(ctx context.Context, externalOrderID string) error {
	_, err := s.store.SettleCryptoOrder(ctx, ledger.SettleParams{
		ExternalOrderID: externalOrderID,
		EventStatus:     "expired",
	})
	return err
}
