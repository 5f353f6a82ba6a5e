// Package service orchestrates the ledger: it validates input, applies the
// KYC gate, computes pure inputs (accrual projections, eligibility scores),
// and hands the resulting commit units to the ledger store. Nothing here
// mutates a balance directly.
package service

import (
	"context"
	"time"

	"github.com/ayodejiio/vestra/internal/domain"
	"github.com/ayodejiio/vestra/internal/ledger"
)

// Alerts is the asynchronous side of a commit unit: delivery of notification
// records and scheduled expiry of pending crypto orders. Enqueueing happens
// after commit and is best-effort; a queue outage never fails an operation.
type Alerts interface {
	NotifyUser(userID, notificationType, title string) error
	ScheduleOrderExpiry(externalOrderID string, at time.Time) error
}

// NopAlerts discards everything; used in tests and when no queue is
// configured.
type NopAlerts struct{}

func (NopAlerts) NotifyUser(string, string, string) error     { return nil }
func (NopAlerts) ScheduleOrderExpiry(string, time.Time) error { return nil }

// requireKYC fails with ErrKYCRequired unless the user's KYC flag is
// approved. The flag itself is maintained by an external collaborator.
func requireKYC(ctx context.Context, store ledger.Store, userID string) error {
	status, err := store.KYCStatus(ctx, userID)
	if err != nil {
		return err
	}
	if status != domain.KYCApproved {
		return ledger.ErrKYCRequired
	}
	return nil
}
