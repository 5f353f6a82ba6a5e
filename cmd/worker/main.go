package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/ayodejiio/vestra/internal/alerts"
	"github.com/ayodejiio/vestra/internal/config"
	"github.com/ayodejiio/vestra/internal/db"
	"github.com/ayodejiio/vestra/internal/ledger"
	"github.com/ayodejiio/vestra/internal/logging"
	"github.com/ayodejiio/vestra/internal/service"
)

// The worker drains the alert queues: notification deliveries and scheduled
// deposit-order expiries. It needs the same store as the API so expiries run
// through the ledger.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	log := logging.New(cfg.Logging)

	dsn := cfg.DB.DSN()
	if dsn == "" {
		log.Error("worker requires a database; set DATABASE_URL or DB_*")
		os.Exit(1)
	}
	pool, err := db.Connect(context.Background(), dsn)
	if err != nil {
		log.Error("database connect", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	store := ledger.NewPostgres(pool)
	recon := service.NewReconciliationService(store, service.NopAlerts{})

	worker := alerts.NewWorker(cfg.Redis.Addr, recon, log)
	log.Info("worker starting", "redis", cfg.Redis.Addr)
	if err := worker.Run(); err != nil {
		log.Error("worker stopped", "err", err)
		os.Exit(1)
	}
}
