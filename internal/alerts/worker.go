package alerts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/ayodejiio/vestra/internal/ledger"
	"github.com/ayodejiio/vestra/internal/service"
)

// Worker consumes alert tasks. Notification delivery is simulated with
// structured logs; order expiry goes through the reconciliation service so
// paid orders are never clobbered.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

func NewWorker(redisAddr string, recon *service.ReconciliationService, log *slog.Logger) *Worker {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskNotifyDeliver, func(ctx context.Context, t *asynq.Task) error {
		return handleNotifyDeliver(t, log)
	})
	mux.HandleFunc(TaskOrderExpire, func(ctx context.Context, t *asynq.Task) error {
		return handleOrderExpire(ctx, t, recon, log)
	})

	server := asynq.NewServer(asynq.RedisClientOpt{Addr: redisAddr}, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			"notifications":  5,
			"reconciliation": 10,
		},
	})
	return &Worker{server: server, mux: mux}
}

// Run blocks until the server is shut down.
func (w *Worker) Run() error {
	return w.server.Run(w.mux)
}

func (w *Worker) Shutdown() {
	w.server.Shutdown()
}

func handleNotifyDeliver(t *asynq.Task, log *slog.Logger) error {
	var p NotifyPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	log.Info("notification delivered",
		"user_id", p.UserID, "type", p.Type, "title", p.Title)
	return nil
}

func handleOrderExpire(ctx context.Context, t *asynq.Task, recon *service.ReconciliationService, log *slog.Logger) error {
	var p OrderExpirePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	err := recon.ExpireOrder(ctx, p.ExternalOrderID)
	switch {
	case err == nil:
		log.Info("deposit order expiry processed", "external_order_id", p.ExternalOrderID)
		return nil
	case errors.Is(err, ledger.ErrOrderNotFound):
		// Order was purged or never committed; nothing to expire.
		log.Warn("expiry task for unknown order", "external_order_id", p.ExternalOrderID)
		return nil
	default:
		return err
	}
}
