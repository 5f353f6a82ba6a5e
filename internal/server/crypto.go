package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/ayodejiio/vestra/internal/ledger"
)

type depositRequest struct {
	Currency   string          `json:"currency"`
	FiatAmount decimal.Decimal `json:"fiat_amount"`
}

func (s *Server) createDeposit(c echo.Context) error {
	var req depositRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	order, err := s.reconcile.CreateOrder(c.Request().Context(), userID(c), req.Currency, req.FiatAmount)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, order)
}

func (s *Server) listDeposits(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	orders, err := s.reconcile.Orders(c.Request().Context(), userID(c), limit)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"orders": orders})
}

type webhookRequest struct {
	OrderID     string `json:"order_id"`
	Status      string `json:"status"`
	ExternalRef string `json:"external_ref"`
}

// paymentWebhook applies a processor event. Redelivery of an event the
// ledger has already applied returns 200 with applied=false so the
// processor stops retrying.
func (s *Server) paymentWebhook(c echo.Context) error {
	var req webhookRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.OrderID == "" || req.Status == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "order_id and status are required"})
	}

	res, err := s.reconcile.ApplyPaymentEvent(c.Request().Context(), req.OrderID, req.Status, req.ExternalRef)
	if err != nil {
		if errors.Is(err, ledger.ErrOrderNotFound) {
			s.log.Warn("webhook for unknown order", "order_id", req.OrderID)
			return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown order"})
		}
		s.log.Error("webhook settlement failed", "order_id", req.OrderID, "err", err)
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"applied": res.Applied, "order": res.Order})
}
