package ledger

import "errors"

// Sentinel errors surfaced by stores and services. Handlers match these with
// errors.Is to pick status codes; anything else is an internal failure.
var (
	ErrWalletNotFound       = errors.New("wallet not found")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrInvalidAdjustType    = errors.New("adjust type must be deposit or withdrawal")
	ErrUserNotFound         = errors.New("user not found")
	ErrKYCRequired          = errors.New("kyc approval required")
	ErrPlanNotFound         = errors.New("investment plan not found")
	ErrAmountOutOfRange     = errors.New("amount outside plan limits")
	ErrInvestmentNotFound   = errors.New("investment not found")
	ErrInvestmentNotOpen    = errors.New("investment is not open")
	ErrApplicationNotFound  = errors.New("loan application not found")
	ErrPendingApplication   = errors.New("a pending loan application already exists")
	ErrApplicationSettled   = errors.New("loan application already decided")
	ErrLoanNotFound         = errors.New("loan not found")
	ErrLoanNotActive        = errors.New("loan is not active")
	ErrLoanAmountOutOfRange = errors.New("loan amount must be between 1000 and 100000")
	ErrOrderNotFound        = errors.New("crypto order not found")
	ErrDuplicateOrder       = errors.New("crypto order already exists")
	ErrUnsupportedCurrency  = errors.New("unsupported crypto currency")
	ErrDepositOutOfRange    = errors.New("deposit amount outside allowed bounds")
	ErrNotificationNotFound = errors.New("notification not found")
)
