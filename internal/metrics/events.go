package metrics

import (
	"context"

	"github.com/bothsides-platform-dev/both-sides-sub000/internal/domain"
	"github.com/bothsides-platform-dev/both-sides-sub000/internal/event"
	"github.com/bothsides-platform-dev/both-sides-sub000/internal/logger"
)

// EventMetricsCollector subscribes to events and records metrics
type EventMetricsCollector struct{}

// NewEventMetricsCollector creates a new event metrics collector
func NewEventMetricsCollector() *EventMetricsCollector {
	return &EventMetricsCollector{}
}

// Register subscribes to all duel events
func (e *EventMetricsCollector) Register(bus event.Bus) {
	event.SubscribeMany(bus, event.DuelEventTypes, e.HandleEvent)
	bus.Subscribe(event.JudgeFallback, e.HandleEvent)
}

// HandleEvent processes events and updates metrics
func (e *EventMetricsCollector) HandleEvent(ctx context.Context, evt event.Event) error {
	EventsPublished.WithLabelValues(string(evt.Type)).Inc()

	switch evt.Type {
	case event.DuelEnded:
		payload, err := event.DecodePayload[domain.DuelEventPayload](evt.Payload)
		if err != nil || payload.Duel == nil || payload.Duel.EndReason == nil {
			logger.FromContext(ctx).Debug(LogMsgEventPayloadUnexpected, "type", evt.Type)
			return nil
		}
		DuelsEnded.WithLabelValues(string(*payload.Duel.EndReason)).Inc()
	case event.DuelGroundJudged:
		payload, err := event.DecodePayload[domain.DuelEventPayload](evt.Payload)
		if err != nil || payload.Verdict == nil {
			logger.FromContext(ctx).Debug(LogMsgEventPayloadUnexpected, "type", evt.Type)
			return nil
		}
		label := string(payload.Verdict.Validity)
		if payload.Verdict.FailedOpen {
			label = "failed_open"
		}
		GroundsJudged.WithLabelValues(label).Inc()
	}
	return nil
}
