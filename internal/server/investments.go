package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

func (s *Server) listPlans(c echo.Context) error {
	plans, err := s.investments.Plans(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"plans": plans})
}

type fundRequest struct {
	PlanID string          `json:"plan_id"`
	Amount decimal.Decimal `json:"amount"`
}

func (s *Server) createInvestment(c echo.Context) error {
	var req fundRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.PlanID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "plan_id is required"})
	}

	res, err := s.investments.Fund(c.Request().Context(), userID(c), req.PlanID, req.Amount)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"investment":  res.Investment,
		"wallet":      res.Wallet,
		"transaction": res.Transaction,
	})
}

func (s *Server) listInvestments(c echo.Context) error {
	list, err := s.investments.List(c.Request().Context(), userID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"investments": list})
}
