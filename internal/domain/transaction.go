package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TxDeposit          TransactionType = "deposit"
	TxWithdrawal       TransactionType = "withdrawal"
	TxInvestment       TransactionType = "investment"
	TxLoanDisbursement TransactionType = "loan_disbursement"
	TxLoanPayment      TransactionType = "loan_payment"
)

type TransactionStatus string

const (
	TxCompleted TransactionStatus = "completed"
	TxPending   TransactionStatus = "pending"
	TxFailed    TransactionStatus = "failed"
)

// Transaction is an immutable ledger entry. Amount is signed: positive
// credits the wallet, negative debits it. Rows are never updated or deleted;
// replaying completed entries in creation order reproduces the balance.
type Transaction struct {
	ID            string            `json:"id"`
	UserID        string            `json:"user_id"`
	WalletID      string            `json:"wallet_id"`
	Type          TransactionType   `json:"type"`
	Amount        decimal.Decimal   `json:"amount"`
	BalanceBefore decimal.Decimal   `json:"balance_before"`
	BalanceAfter  decimal.Decimal   `json:"balance_after"`
	Status        TransactionStatus `json:"status"`
	Reference     string            `json:"reference,omitempty"`
	Description   string            `json:"description,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}
