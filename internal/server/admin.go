package server

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

func (s *Server) adminTransactions(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	txs, err := s.store.AllTransactions(c.Request().Context(), limit)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"transactions": txs})
}

func (s *Server) adminApproveLoan(c echo.Context) error {
	res, err := s.loans.Approve(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"application": res.Application,
		"loan":        res.Loan,
		"transaction": res.Transaction,
	})
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) adminRejectLoan(c echo.Context) error {
	var req rejectRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	app, err := s.loans.Reject(c.Request().Context(), c.Param("id"), req.Reason)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"application": app})
}

func (s *Server) adminMatureInvestment(c echo.Context) error {
	res, err := s.investments.Mature(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"investment":  res.Investment,
		"wallet":      res.Wallet,
		"transaction": res.Transaction,
	})
}
