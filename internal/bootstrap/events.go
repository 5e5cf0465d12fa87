package bootstrap

import (
	"context"
	"log/slog"

	"github.com/bothsides-platform-dev/both-sides-sub000/internal/event"
	"github.com/bothsides-platform-dev/both-sides-sub000/internal/judge"
	"github.com/bothsides-platform-dev/both-sides-sub000/internal/logger"
)

// InitializeEventSystem creates the in-process event bus
func InitializeEventSystem() event.Bus {
	eventBus := event.NewMemoryBus()
	slog.Info(LogMsgEventSystemInitialized)
	return eventBus
}

// JudgeFallbackPublisher returns a guard hook that announces every fail-open
// substitution on the bus so metrics can count them.
func JudgeFallbackPublisher(bus event.Bus) judge.FallbackFunc {
	return func(ctx context.Context, operation string, err error) {
		reason := ""
		if err != nil {
			reason = err.Error()
		}
		if pubErr := bus.Publish(ctx, event.NewJudgeFallbackEvent(operation, reason)); pubErr != nil {
			logger.FromContext(ctx).Warn(LogMsgFallbackPublishFailed, "operation", operation, "error", pubErr)
		}
	}
}
