package alerts

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ayodejiio/vestra/internal/service"
)

// Client enqueues alert tasks onto Redis. It satisfies service.Alerts so the
// services stay unaware of the queue implementation.
type Client struct {
	client *asynq.Client
}

func NewClient(redisAddr string) *Client {
	return &Client{client: asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr})}
}

func (c *Client) NotifyUser(userID, notificationType, title string) error {
	payload := NotifyPayload{
		UserID: userID,
		Type:   notificationType,
		Title:  title,
		SentAt: time.Now().UTC(),
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = c.client.Enqueue(asynq.NewTask(TaskNotifyDeliver, b), asynq.Queue("notifications"))
	return err
}

// ScheduleOrderExpiry books a one-shot expiry task for at. If the order has
// been paid by then the worker leaves it alone.
func (c *Client) ScheduleOrderExpiry(externalOrderID string, at time.Time) error {
	b, err := json.Marshal(OrderExpirePayload{ExternalOrderID: externalOrderID})
	if err != nil {
		return err
	}
	_, err = c.client.Enqueue(asynq.NewTask(TaskOrderExpire, b),
		asynq.Queue("reconciliation"), asynq.ProcessAt(at))
	return err
}

func (c *Client) Close() error {
	return c.client.Close()
}

var _ service.Alerts = (*Client)(nil)
