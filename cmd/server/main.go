package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"

	"github.com/ayodejiio/vestra/internal/alerts"
	"github.com/ayodejiio/vestra/internal/config"
	"github.com/ayodejiio/vestra/internal/db"
	"github.com/ayodejiio/vestra/internal/domain"
	"github.com/ayodejiio/vestra/internal/ledger"
	"github.com/ayodejiio/vestra/internal/logging"
	"github.com/ayodejiio/vestra/internal/server"
	"github.com/ayodejiio/vestra/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	log := logging.New(cfg.Logging)

	ctx := context.Background()

	// When no database is configured fall back to the in-memory store with a
	// seeded dev user so the API is usable out of the box.
	var store ledger.Store
	if dsn := cfg.DB.DSN(); dsn != "" {
		pool, err := db.Connect(ctx, dsn)
		if err != nil {
			log.Error("database connect", "err", err)
			os.Exit(1)
		}
		defer pool.Close()
		if err := db.EnsureSchema(ctx, pool); err != nil {
			log.Error("ensure schema", "err", err)
			os.Exit(1)
		}
		store = ledger.NewPostgres(pool)
		log.Info("connected to postgres")
	} else {
		mem := ledger.NewMemory()
		mem.PutUser(domain.User{
			ID:        "00000000-0000-0000-0000-000000000001",
			Email:     "dev@vestra.local",
			Role:      "user",
			KYCStatus: domain.KYCApproved,
		})
		seedDevPlan(ctx, mem, log)
		store = mem
		log.Warn("no database configured, using in-memory store")
	}

	var notifier service.Alerts = service.NopAlerts{}
	if cfg.Redis.Addr != "" {
		client := alerts.NewClient(cfg.Redis.Addr)
		defer client.Close()
		notifier = client
	}

	srv := server.New(server.Options{
		Config:  cfg,
		Logger:  log,
		Store:   store,
		Wallets: service.NewWalletService(store, notifier),
		Invest:  service.NewInvestmentService(store, notifier),
		Loans: service.NewLoanService(store, notifier, service.LoanTerms{
			AnnualRatePercent: cfg.Loan.AnnualRatePercent,
			TermMonths:        cfg.Loan.TermMonths,
		}),
		Reconcile: service.NewReconciliationService(store, notifier),
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "err", err)
			os.Exit(1)
		}
	}()
	log.Info("server listening", "port", cfg.HTTP.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "err", err)
	}
}

func seedDevPlan(ctx context.Context, store ledger.Store, log *slog.Logger) {
	plan := &domain.InvestmentPlan{
		Name:              "Starter Growth",
		Description:       "12 month plan compounded monthly",
		MinAmount:         decimal.NewFromInt(100),
		MaxAmount:         decimal.NewFromInt(10000),
		ROIPercentage:     decimal.NewFromInt(12),
		DurationValue:     12,
		DurationUnit:      domain.DurationMonths,
		CompoundFrequency: domain.CompoundMonthly,
		IsActive:          true,
	}
	if err := store.UpsertPlan(ctx, plan); err != nil {
		log.Warn("seed dev plan", "err", err)
	}
}
