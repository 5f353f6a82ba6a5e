package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/ayodejiio/vestra/internal/config"
	"github.com/ayodejiio/vestra/internal/ledger"
	mware "github.com/ayodejiio/vestra/internal/middleware"
	"github.com/ayodejiio/vestra/internal/service"
)

// Server wires the HTTP surface over the services.
type Server struct {
	e   *echo.Echo
	cfg config.HTTPConfig
	log *slog.Logger

	wallets     *service.WalletService
	investments *service.InvestmentService
	loans       *service.LoanService
	reconcile   *service.ReconciliationService
	store       ledger.Store
}

type Options struct {
	Config    config.Config
	Logger    *slog.Logger
	Store     ledger.Store
	Wallets   *service.WalletService
	Invest    *service.InvestmentService
	Loans     *service.LoanService
	Reconcile *service.ReconciliationService
}

func New(opts Options) *Server {
	s := &Server{
		cfg:         opts.Config.HTTP,
		log:         opts.Logger,
		wallets:     opts.Wallets,
		investments: opts.Invest,
		loans:       opts.Loans,
		reconcile:   opts.Reconcile,
		store:       opts.Store,
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})

	// The payment processor calls the webhook unauthenticated; it is keyed
	// by the external order id rather than a user token.
	e.POST("/crypto-deposits/webhook", s.paymentWebhook)

	api := e.Group("")
	api.Use(mware.JWT(opts.Config.Auth.JWTSecret))

	api.GET("/wallet", s.getWallet)
	api.POST("/wallet/adjust", s.adjustWallet)
	api.GET("/wallet/transactions", s.listTransactions)

	api.GET("/plans", s.listPlans)
	api.POST("/investments", s.createInvestment)
	api.GET("/investments", s.listInvestments)

	api.POST("/loans", s.applyLoan)
	api.GET("/loans", s.listLoans)
	api.GET("/loans/applications", s.listLoanApplications)
	api.POST("/loans/:id/payments", s.payLoan)

	api.POST("/crypto-deposits", s.createDeposit)
	api.GET("/crypto-deposits", s.listDeposits)

	api.GET("/notifications", s.listNotifications)
	api.POST("/notifications/:id/read", s.readNotification)

	admin := e.Group("/admin")
	admin.Use(mware.JWT(opts.Config.Auth.JWTSecret))
	admin.Use(mware.AdminGuard)
	admin.GET("/transactions", s.adminTransactions)
	admin.POST("/loans/:id/approve", s.adminApproveLoan)
	admin.POST("/loans/:id/reject", s.adminRejectLoan)
	admin.POST("/investments/:id/mature", s.adminMatureInvestment)

	s.e = e
	return s
}

// Start blocks serving HTTP until Shutdown or a listener error.
func (s *Server) Start() error {
	return s.e.Start(fmt.Sprintf(":%d", s.cfg.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}

// userID pulls the authenticated user id set by the JWT middleware.
func userID(c echo.Context) string {
	id, _ := c.Get("user_id").(string)
	return id
}
