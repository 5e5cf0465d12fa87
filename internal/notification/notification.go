// Package notification delivers out-of-band notices to duel participants.
// Delivery is best effort: callers log failures and never roll back state.
package notification

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/bothsides-platform-dev/both-sides-sub000/internal/domain"
)

// Notice is a single message for one participant
type Notice struct {
	UserID uuid.UUID
	Kind   domain.NotificationKind
	DuelID uuid.UUID
}

// Notifier sends notices
type Notifier interface {
	Notify(ctx context.Context, n Notice) error
}

// LogNotifier writes notices to the structured log
type LogNotifier struct{}

// Notify logs the notice
func (LogNotifier) Notify(ctx context.Context, n Notice) error {
	slog.InfoContext(ctx, LogMsgNoticeSent,
		"user_id", n.UserID,
		"kind", n.Kind,
		"duel_id", n.DuelID)
	return nil
}

// Multi fans a notice out to several notifiers and joins their errors
type Multi []Notifier

// Notify delivers to every notifier even when an earlier one fails
func (m Multi) Notify(ctx context.Context, n Notice) error {
	var errs []error
	for _, notifier := range m {
		if err := notifier.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop discards every notice
type Nop struct{}

// Notify does nothing
func (Nop) Notify(context.Context, Notice) error { return nil }
