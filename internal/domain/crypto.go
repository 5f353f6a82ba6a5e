package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderCompleted OrderStatus = "completed"
	OrderFailed    OrderStatus = "failed"
	OrderExpired   OrderStatus = "expired"
)

// Terminal reports whether the order has reached a final state. Terminal
// orders never transition again.
func (s OrderStatus) Terminal() bool {
	return s == OrderCompleted || s == OrderFailed || s == OrderExpired
}

// CryptoOrder is a pending external deposit. ExternalOrderID is the
// processor's idempotency key; status moves from pending to exactly one
// terminal state.
type CryptoOrder struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	CryptoCurrency  string          `json:"crypto_currency"`
	CryptoAmount    decimal.Decimal `json:"crypto_amount"`
	FiatAmount      decimal.Decimal `json:"fiat_amount"`
	ExchangeRate    decimal.Decimal `json:"exchange_rate"`
	ExternalOrderID string          `json:"external_order_id"`
	PaymentURL      string          `json:"payment_url,omitempty"`
	ExternalRef     string          `json:"external_ref,omitempty"`
	Status          OrderStatus     `json:"status"`
	ExpiresAt       time.Time       `json:"expires_at"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}
