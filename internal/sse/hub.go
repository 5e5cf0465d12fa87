package sse

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bothsides-platform-dev/both-sides-sub000/internal/metrics"
)

var (
	// ErrSinkClosed is returned by Send after Close
	ErrSinkClosed = errors.New("sink closed")
	// ErrSinkFull is returned when a viewer has fallen too far behind
	ErrSinkFull = errors.New("sink buffer full")
)

// Sink receives serialized events for one live viewer
type Sink interface {
	Send(Frame) error
	Close()
}

// Hub fans duel events out to the live viewers of that duel.
// It holds no duel state and is safe for concurrent use.
type Hub struct {
	mu    sync.RWMutex
	duels map[uuid.UUID]map[Sink]struct{}
	now   func() time.Time
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{
		duels: make(map[uuid.UUID]map[Sink]struct{}),
		now:   time.Now,
	}
}

// Subscribe adds sink to duelID's viewers
func (h *Hub) Subscribe(duelID uuid.UUID, sink Sink) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sinks, ok := h.duels[duelID]
	if !ok {
		sinks = make(map[Sink]struct{})
		h.duels[duelID] = sinks
	}
	if _, dup := sinks[sink]; !dup {
		sinks[sink] = struct{}{}
		metrics.HubSinks.Inc()
	}
}

// Unsubscribe removes sink. The duel's entry is dropped once it has no viewers.
func (h *Hub) Unsubscribe(duelID uuid.UUID, sink Sink) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(duelID, sink)
}

func (h *Hub) removeLocked(duelID uuid.UUID, sink Sink) bool {
	sinks, ok := h.duels[duelID]
	if !ok {
		return false
	}
	if _, ok := sinks[sink]; !ok {
		return false
	}
	delete(sinks, sink)
	metrics.HubSinks.Dec()
	if len(sinks) == 0 {
		delete(h.duels, duelID)
	}
	return true
}

// Publish serializes an event once and writes it to every viewer of duelID.
// A viewer whose write fails is removed and closed; publish never fails.
func (h *Hub) Publish(duelID uuid.UUID, eventType string, payload interface{}) {
	h.mu.RLock()
	sinks := make([]Sink, 0, len(h.duels[duelID]))
	for s := range h.duels[duelID] {
		sinks = append(sinks, s)
	}
	h.mu.RUnlock()

	if len(sinks) == 0 {
		return
	}

	frame, err := h.frame(duelID, eventType, payload)
	if err != nil {
		slog.Error(LogMsgMarshalFailed, "duel_id", duelID, "type", eventType, "error", err)
		return
	}

	var dead []Sink
	for _, s := range sinks {
		if err := s.Send(frame); err != nil {
			dead = append(dead, s)
		}
	}
	if len(dead) == 0 {
		return
	}

	h.mu.Lock()
	for _, s := range dead {
		if h.removeLocked(duelID, s) {
			metrics.HubSinksPruned.Inc()
			slog.Debug(LogMsgSinkPruned, "duel_id", duelID)
		}
	}
	h.mu.Unlock()

	for _, s := range dead {
		s.Close()
	}
}

// Frame builds a single-viewer frame, used for snapshots and heartbeats
func (h *Hub) Frame(duelID uuid.UUID, eventType string, payload interface{}) (Frame, error) {
	return h.frame(duelID, eventType, payload)
}

func (h *Hub) frame(duelID uuid.UUID, eventType string, payload interface{}) (Frame, error) {
	evt := Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		DuelID:    duelID,
		Timestamp: h.now().Unix(),
		Payload:   payload,
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return Frame{}, err
	}
	return Frame{ID: evt.ID, Type: evt.Type, Data: data}, nil
}

// SinkCount returns the number of viewers of duelID
func (h *Hub) SinkCount(duelID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.duels[duelID])
}

// DuelCount returns the number of duels with at least one viewer
func (h *Hub) DuelCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.duels)
}

// Close disconnects every viewer
func (h *Hub) Close() {
	h.mu.Lock()
	var all []Sink
	for id, sinks := range h.duels {
		for s := range sinks {
			all = append(all, s)
			metrics.HubSinks.Dec()
		}
		delete(h.duels, id)
	}
	h.mu.Unlock()

	for _, s := range all {
		s.Close()
	}
}

// ChannelSink queues frames for a transport goroutine to drain
type ChannelSink struct {
	mu     sync.Mutex
	ch     chan Frame
	closed bool
}

// NewChannelSink creates a sink holding up to buffer undelivered frames
func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = SinkBufferSize
	}
	return &ChannelSink{ch: make(chan Frame, buffer)}
}

// Send enqueues f without blocking
func (s *ChannelSink) Send(f Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSinkClosed
	}
	select {
	case s.ch <- f:
		return nil
	default:
		return ErrSinkFull
	}
}

// Frames is closed when the sink is closed
func (s *ChannelSink) Frames() <-chan Frame {
	return s.ch
}

// Close is idempotent
func (s *ChannelSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// FormatSSEMessage formats a frame for an event-stream response
func FormatSSEMessage(f Frame) []byte {
	msg := make([]byte, 0, len(f.Data)+len(f.ID)+len(f.Type)+24)
	msg = append(msg, "id: "...)
	msg = append(msg, f.ID...)
	msg = append(msg, "\nevent: "...)
	msg = append(msg, f.Type...)
	msg = append(msg, "\ndata: "...)
	msg = append(msg, f.Data...)
	msg = append(msg, "\n\n"...)
	return msg
}
