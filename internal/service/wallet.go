package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/ayodejiio/vestra/internal/domain"
	"github.com/ayodejiio/vestra/internal/ledger"
)

type WalletService struct {
	store  ledger.Store
	alerts Alerts
}

func NewWalletService(store ledger.Store, alerts Alerts) *WalletService {
	return &WalletService{store: store, alerts: alerts}
}

// Get returns the user's wallet, creating it with a zero balance on first
// access.
func (s *WalletService) Get(ctx context.Context, userID string) (*domain.Wallet, error) {
	return s.store.GetOrCreateWallet(ctx, userID)
}

func (s *WalletService) Transactions(ctx context.Context, userID string, limit int) ([]domain.Transaction, error) {
	return s.store.ListTransactions(ctx, userID, limit)
}

// Adjust applies a deposit or withdrawal through the ledger's commit unit.
func (s *WalletService) Adjust(ctx context.Context, userID string, typ domain.TransactionType, amount decimal.Decimal, description string) (*ledger.AdjustResult, error) {
	if !amount.IsPositive() {
		return nil, ledger.ErrInvalidAmount
	}
	if typ != domain.TxDeposit && typ != domain.TxWithdrawal {
		return nil, ledger.ErrInvalidAdjustType
	}

	// First access may be a deposit into a wallet that doesn't exist yet.
	if _, err := s.store.GetOrCreateWallet(ctx, userID); err != nil {
		return nil, err
	}

	res, err := s.store.AdjustWallet(ctx, ledger.AdjustParams{
		UserID:      userID,
		Type:        typ,
		Amount:      amount,
		Description: description,
	})
	if err != nil {
		return nil, err
	}

	_ = s.alerts.NotifyUser(userID, "transaction", string(typ))
	return res, nil
}
