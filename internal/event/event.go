package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bothsides-platform-dev/both-sides-sub000/internal/domain"
)

// Type represents the type of an event
type Type string

// Metadata defines the type for event metadata
type Metadata map[string]interface{}

// Event represents a generic event in the system
type Event struct {
	Version   string      `json:"version"` // Event schema version (e.g., "1.0")
	Type      Type        `json:"type"`
	Payload   interface{} `json:"payload"`
	Metadata  Metadata    `json:"metadata,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// GetMetadataValue extracts a value from the event metadata safely
func (e Event) GetMetadataValue(key string) interface{} {
	if e.Metadata == nil {
		return nil
	}
	return e.Metadata[key]
}

// DuelID returns the duel the event belongs to, if any
func (e Event) DuelID() (uuid.UUID, bool) {
	id, ok := e.GetMetadataValue(MetadataKeyDuelID).(uuid.UUID)
	return id, ok
}

// Duel event types
const (
	DuelChallenged   Type = domain.EventTypeDuelChallenged
	DuelCountered    Type = domain.EventTypeDuelCountered
	DuelDeclined     Type = domain.EventTypeDuelDeclined
	DuelExpired      Type = domain.EventTypeDuelExpired
	DuelStarted      Type = domain.EventTypeDuelStarted
	DuelMessage      Type = domain.EventTypeDuelMessage
	DuelHPUpdated    Type = domain.EventTypeDuelHPUpdated
	DuelTurnChanged  Type = domain.EventTypeDuelTurnChanged
	DuelEnded        Type = domain.EventTypeDuelEnded
	DuelHidden       Type = domain.EventTypeDuelHidden
	DuelCommentAdded Type = domain.EventTypeDuelCommentAdded
	DuelGroundJudged Type = domain.EventTypeDuelGroundJudged
	JudgeFallback    Type = domain.EventTypeJudgeFallback
)

// DuelEventTypes lists every event type scoped to a single duel
var DuelEventTypes = []Type{
	DuelChallenged, DuelCountered, DuelDeclined, DuelExpired, DuelStarted,
	DuelMessage, DuelHPUpdated, DuelTurnChanged, DuelEnded, DuelHidden,
	DuelCommentAdded, DuelGroundJudged,
}

// NewDuelEvent creates a duel-scoped event carrying payload
func NewDuelEvent(eventType Type, duelID uuid.UUID, payload domain.DuelEventPayload) Event {
	return Event{
		Version:   EventSchemaVersion,
		Type:      eventType,
		Payload:   payload,
		Metadata:  Metadata{MetadataKeyDuelID: duelID},
		Timestamp: time.Now().UTC(),
	}
}

// NewJudgeFallbackEvent records that a judge call was replaced by its default
func NewJudgeFallbackEvent(operation, reason string) Event {
	return Event{
		Version:   EventSchemaVersion,
		Type:      JudgeFallback,
		Payload:   domain.JudgeFallbackPayload{Operation: operation, Reason: reason},
		Timestamp: time.Now().UTC(),
	}
}

// Handler is a function that handles an event
type Handler func(ctx context.Context, event Event) error

// Bus is the interface for publishing and subscribing to events
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType Type, handler Handler)
}

// MemoryBus is an in-memory implementation of the Event Bus
type MemoryBus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewMemoryBus creates a new MemoryBus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers: make(map[Type][]Handler),
	}
}

// Publish publishes an event to all subscribers.
// Handlers run synchronously in subscription order so per-duel ordering is preserved.
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers, ok := b.handlers[event.Type]
	b.mu.RUnlock()

	if !ok {
		return nil
	}

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf(LogMsgHandlerErrorFormat, len(errs), event.Type, errs)
	}

	return nil
}

// Subscribe subscribes a handler to an event type
func (b *MemoryBus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// SubscribeMany subscribes one handler to several event types
func SubscribeMany(bus Bus, types []Type, handler Handler) {
	for _, t := range types {
		bus.Subscribe(t, handler)
	}
}
