package bootstrap

import (
	"log/slog"

	"github.com/bothsides-platform-dev/both-sides-sub000/internal/event"
	"github.com/bothsides-platform-dev/both-sides-sub000/internal/metrics"
	"github.com/bothsides-platform-dev/both-sides-sub000/internal/sse"
)

// EventHandlerDependencies holds the dependencies needed for event handler registration.
type EventHandlerDependencies struct {
	EventBus event.Bus
	Hub      *sse.Hub
}

// RegisterEventHandlers sets up all event subscribers:
// the broadcast hub bridge that fans duel events out to viewers, and the
// metrics collector.
func RegisterEventHandlers(deps EventHandlerDependencies) {
	sse.NewSubscriber(deps.Hub, deps.EventBus).Subscribe()
	slog.Info(LogMsgHubSubscriberRegistered)

	metrics.NewEventMetricsCollector().Register(deps.EventBus)
	slog.Info(LogMsgMetricsCollectorRegistered)
}
