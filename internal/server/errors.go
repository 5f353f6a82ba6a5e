package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ayodejiio/vestra/internal/ledger"
)

// fail maps ledger errors onto HTTP responses. Unrecognized errors become a
// 500 with a generic body; the caller logs the detail.
func fail(c echo.Context, err error) error {
	return c.JSON(statusFor(err), echo.Map{"error": publicMessage(err)})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidAdjustType),
		errors.Is(err, ledger.ErrAmountOutOfRange),
		errors.Is(err, ledger.ErrLoanAmountOutOfRange),
		errors.Is(err, ledger.ErrDepositOutOfRange),
		errors.Is(err, ledger.ErrUnsupportedCurrency),
		errors.Is(err, ledger.ErrInsufficientFunds):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrKYCRequired):
		return http.StatusForbidden
	case errors.Is(err, ledger.ErrWalletNotFound),
		errors.Is(err, ledger.ErrUserNotFound),
		errors.Is(err, ledger.ErrPlanNotFound),
		errors.Is(err, ledger.ErrInvestmentNotFound),
		errors.Is(err, ledger.ErrApplicationNotFound),
		errors.Is(err, ledger.ErrLoanNotFound),
		errors.Is(err, ledger.ErrOrderNotFound),
		errors.Is(err, ledger.ErrNotificationNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrPendingApplication),
		errors.Is(err, ledger.ErrDuplicateOrder),
		errors.Is(err, ledger.ErrApplicationSettled),
		errors.Is(err, ledger.ErrInvestmentNotOpen),
		errors.Is(err, ledger.ErrLoanNotActive):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func publicMessage(err error) string {
	if statusFor(err) == http.StatusInternalServerError {
		return "internal error"
	}
	return err.Error()
}
