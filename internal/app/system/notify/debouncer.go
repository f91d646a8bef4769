// Package notify provides best-effort outward notifications with
// process-wide duplicate suppression.
//
// Every outward notice from the booking and meeting flows passes through
// the Debouncer: repeats of the same (recipient, scope, type) inside the
// configured window are silently dropped unless the caller forces them.
// Dispatch failures are logged and swallowed: a failed reminder must never
// fail the booking or scheduling operation that triggered it.
package notify

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Notification types.
const (
	TypeSlotsPublished     = "slots_published"
	TypeSlotBooked         = "slot_booked"
	TypeSlotRescheduled    = "slot_rescheduled"
	TypeMeetingRequested   = "meeting_requested"
	TypeMeetingScheduled   = "meeting_scheduled"
	TypeMeetingLink        = "meeting_link"
	TypeMeetingCancelled   = "meeting_cancelled"
	TypeRescheduleProposed = "reschedule_proposed"
	TypeRescheduleResolved = "reschedule_resolved"
)

// Notice is one outward notification.
type Notice struct {
	RecipientID string // opaque user id
	Email       string
	Scope       string // conversation scope: thread, batch, or meeting id
	Type        string
	Subject     string
	Preview     string // already sanitized by the caller
	Link        string
}

// Notifier dispatches a notice to its recipient. The mailer implements
// this in production; tests substitute a recorder.
type Notifier interface {
	Send(ctx context.Context, n Notice) error
}

// Store records last-sent times with TTL semantics. Implementations must be
// safe for concurrent use within one process; whether an entry is visible
// to other process instances depends on the implementation (see NewMemory
// vs NewRedis).
type Store interface {
	// Claim records key as sent now unless it was already sent within
	// window. It returns true when the caller may dispatch.
	Claim(ctx context.Context, key string, window time.Duration) (bool, error)
	// Touch unconditionally records key as sent now.
	Touch(ctx context.Context, key string, window time.Duration) error
}

// Debouncer suppresses duplicate notices inside a fixed window.
type Debouncer struct {
	store    Store
	notifier Notifier
	window   time.Duration
	log      *zap.Logger
}

// NewDebouncer creates a Debouncer. A zero window disables suppression
// entirely: every trigger dispatches.
func NewDebouncer(store Store, notifier Notifier, window time.Duration, logger *zap.Logger) *Debouncer {
	return &Debouncer{store: store, notifier: notifier, window: window, log: logger}
}

// Trigger dispatches the notice unless an identical (recipient, scope,
// type) was sent within the window. force bypasses the window but still
// records the send. All failures, store or dispatch, are swallowed here;
// callers never branch on notification outcomes.
func (d *Debouncer) Trigger(ctx context.Context, n Notice, force bool) {
	key := fmt.Sprintf("%s|%s|%s", n.RecipientID, n.Scope, n.Type)

	if d.window > 0 {
		if force {
			if err := d.store.Touch(ctx, key, d.window); err != nil {
				d.log.Warn("debounce store touch failed", zap.String("key", key), zap.Error(err))
			}
		} else {
			ok, err := d.store.Claim(ctx, key, d.window)
			if err != nil {
				// A broken debounce store should not silence notifications.
				d.log.Warn("debounce store claim failed", zap.String("key", key), zap.Error(err))
			} else if !ok {
				d.log.Debug("notification suppressed", zap.String("key", key))
				return
			}
		}
	}

	if err := d.notifier.Send(ctx, n); err != nil {
		d.log.Warn("notification dispatch failed",
			zap.String("type", n.Type),
			zap.String("recipient", n.RecipientID),
			zap.Error(err))
	}
}
