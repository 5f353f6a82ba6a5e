package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet holds a user's funds in the single settlement currency. Balance is
// spendable; LockedBalance is earmarked for active investments. Both are
// mutated only through ledger commit units, never by direct field writes.
type Wallet struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	Currency      string          `json:"currency"`
	Balance       decimal.Decimal `json:"balance"`
	LockedBalance decimal.Decimal `json:"locked_balance"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// SettlementCurrency is the only currency wallets are denominated in.
const SettlementCurrency = "USD"
