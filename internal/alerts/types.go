package alerts

import "time"

// Task type constants
const (
	TaskNotifyDeliver = "notify:deliver"
	TaskOrderExpire   = "crypto:order_expire"
)

// NotifyPayload is an out-of-band delivery (push/email) of an event that has
// already been recorded in the notifications table.
type NotifyPayload struct {
	UserID string    `json:"user_id"`
	Type   string    `json:"type"`
	Title  string    `json:"title"`
	SentAt time.Time `json:"sent_at"`
}

// OrderExpirePayload asks the worker to expire a deposit order that was
// never paid. Scheduled at order creation for the order's deadline.
type OrderExpirePayload struct {
	ExternalOrderID string `json:"external_order_id"`
}
