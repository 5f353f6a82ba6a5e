package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type loanApplyRequest struct {
	Amount           decimal.Decimal `json:"amount"`
	Purpose          string          `json:"purpose"`
	EmploymentStatus string          `json:"employment_status"`
	MonthlyIncome    decimal.Decimal `json:"monthly_income"`
}

func (s *Server) applyLoan(c echo.Context) error {
	var req loanApplyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	res, err := s.loans.Apply(c.Request().Context(), userID(c),
		req.Amount, req.Purpose, req.EmploymentStatus, req.MonthlyIncome)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"application": res.Application,
		"score":       res.Score,
		"score_band":  res.ScoreBand,
	})
}

func (s *Server) listLoanApplications(c echo.Context) error {
	apps, err := s.loans.Applications(c.Request().Context(), userID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"applications": apps})
}

func (s *Server) listLoans(c echo.Context) error {
	loans, err := s.loans.Loans(c.Request().Context(), userID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"loans": loans})
}

type loanPaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (s *Server) payLoan(c echo.Context) error {
	var req loanPaymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	res, err := s.loans.Pay(c.Request().Context(), userID(c), c.Param("id"), req.Amount)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"loan":        res.Loan,
		"wallet":      res.Wallet,
		"transaction": res.Transaction,
	})
}
