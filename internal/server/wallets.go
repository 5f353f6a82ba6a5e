package server

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/ayodejiio/vestra/internal/domain"
)

func (s *Server) getWallet(c echo.Context) error {
	w, err := s.wallets.Get(c.Request().Context(), userID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, w)
}

type adjustRequest struct {
	Type        string          `json:"type"` // deposit|withdrawal
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

func (s *Server) adjustWallet(c echo.Context) error {
	var req adjustRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	res, err := s.wallets.Adjust(c.Request().Context(), userID(c),
		domain.TransactionType(req.Type), req.Amount, req.Description)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"wallet":      res.Wallet,
		"transaction": res.Transaction,
	})
}

func (s *Server) listTransactions(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	txs, err := s.wallets.Transactions(c.Request().Context(), userID(c), limit)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"transactions": txs})
}
