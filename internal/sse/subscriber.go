package sse

import (
	"context"
	"log/slog"

	"github.com/bothsides-platform-dev/both-sides-sub000/internal/domain"
	"github.com/bothsides-platform-dev/both-sides-sub000/internal/event"
)

// Subscriber bridges the internal event bus to the hub
type Subscriber struct {
	hub *Hub
	bus event.Bus
}

// NewSubscriber creates a new live-event subscriber
func NewSubscriber(hub *Hub, bus event.Bus) *Subscriber {
	return &Subscriber{
		hub: hub,
		bus: bus,
	}
}

// Subscribe registers the bridge for every duel-scoped event type
func (s *Subscriber) Subscribe() {
	event.SubscribeMany(s.bus, event.DuelEventTypes, s.handleDuelEvent)
	slog.Info("Live subscriber registered for duel events", "count", len(event.DuelEventTypes))
}

func (s *Subscriber) handleDuelEvent(_ context.Context, evt event.Event) error {
	duelID, ok := evt.DuelID()
	if !ok {
		slog.Warn(LogMsgBridgeBadPayload, "type", evt.Type)
		return nil
	}
	payload, ok := evt.Payload.(domain.DuelEventPayload)
	if !ok {
		slog.Warn(LogMsgBridgeBadPayload, "type", evt.Type, "duel_id", duelID)
		return nil
	}

	wireType, wirePayload, ok := translate(evt.Type, payload)
	if !ok {
		return nil
	}
	s.hub.Publish(duelID, wireType, wirePayload)
	return nil
}

// translate maps a bus event onto the live vocabulary. The second return is
// false for events viewers do not receive.
func translate(t event.Type, p domain.DuelEventPayload) (string, interface{}, bool) {
	switch t {
	case event.DuelChallenged, event.DuelCountered, event.DuelDeclined,
		event.DuelExpired, event.DuelStarted, event.DuelHidden:
		if p.Duel == nil {
			return "", nil, false
		}
		return EventTypeDuelState, p.Duel, true
	case event.DuelMessage:
		if p.Message == nil {
			return "", nil, false
		}
		return EventTypeNewMessage, p.Message, true
	case event.DuelHPUpdated:
		if p.Duel == nil {
			return "", nil, false
		}
		return EventTypeHPUpdate, HPUpdatePayload{
			ChallengerHP: p.Duel.ChallengerHP,
			ChallengedHP: p.Duel.ChallengedHP,
		}, true
	case event.DuelTurnChanged:
		if p.Duel == nil {
			return "", nil, false
		}
		return EventTypeTurnUpdate, TurnUpdatePayload{
			CurrentTurn:   p.Duel.CurrentTurn,
			TurnStartedAt: p.Duel.TurnStartedAt,
		}, true
	case event.DuelEnded:
		if p.Duel == nil {
			return "", nil, false
		}
		return EventTypeDuelEnded, p.Duel, true
	case event.DuelCommentAdded:
		if p.Comment == nil {
			return "", nil, false
		}
		return EventTypeNewComment, p.Comment, true
	}
	return "", nil, false
}
