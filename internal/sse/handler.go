package sse

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bothsides-platform-dev/both-sides-sub000/internal/domain"
)

// SnapshotSource loads the state a viewer sees on connect
type SnapshotSource interface {
	GetDuel(ctx context.Context, duelID uuid.UUID) (*domain.DuelSnapshot, error)
}

// connect validates the duel, registers a sink and produces the initial
// duel_state frame. The sink is subscribed before the snapshot loads so no
// event between the two is lost.
func connect(hub *Hub, snapshots SnapshotSource, r *http.Request) (uuid.UUID, *ChannelSink, Frame, int, error) {
	duelID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, nil, Frame{}, http.StatusBadRequest, err
	}

	sink := NewChannelSink(SinkBufferSize)
	hub.Subscribe(duelID, sink)

	snap, err := snapshots.GetDuel(r.Context(), duelID)
	if err != nil {
		hub.Unsubscribe(duelID, sink)
		sink.Close()
		if errors.Is(err, domain.ErrNotFound) {
			return duelID, nil, Frame{}, http.StatusNotFound, err
		}
		slog.Error(LogMsgSnapshotFailed, "duel_id", duelID, "error", err)
		return duelID, nil, Frame{}, http.StatusInternalServerError, err
	}

	initial, err := hub.Frame(duelID, EventTypeDuelState, snap)
	if err != nil {
		hub.Unsubscribe(duelID, sink)
		sink.Close()
		return duelID, nil, Frame{}, http.StatusInternalServerError, err
	}
	return duelID, sink, initial, http.StatusOK, nil
}

// Handler returns an event-stream handler for one duel's live events
func Handler(hub *Hub, snapshots SnapshotSource, keepalive time.Duration) http.HandlerFunc {
	if keepalive <= 0 {
		keepalive = DefaultKeepaliveInterval
	}
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming not supported", http.StatusInternalServerError)
			return
		}

		duelID, sink, initial, status, err := connect(hub, snapshots, r)
		if err != nil {
			http.Error(w, http.StatusText(status), status)
			return
		}

		slog.Info(LogMsgViewerConnected, "duel_id", duelID, "transport", "sse", "viewers", hub.SinkCount(duelID))
		defer func() {
			hub.Unsubscribe(duelID, sink)
			sink.Close()
			slog.Info(LogMsgViewerDisconnected, "duel_id", duelID, "transport", "sse")
		}()

		w.Header().Set("Content-Type", ContentTypeEventStream)
		w.Header().Set("Cache-Control", CacheControlNoCache)
		w.Header().Set("Connection", ConnectionKeepAlive)
		w.WriteHeader(http.StatusOK)

		if _, err := w.Write(FormatSSEMessage(initial)); err != nil {
			return
		}
		flusher.Flush()

		ticker := time.NewTicker(keepalive)
		defer ticker.Stop()

		ctx := r.Context()
		for {
			select {
			case <-ctx.Done():
				return

			case frame, ok := <-sink.Frames():
				if !ok {
					// pruned by the hub or the hub closed
					return
				}
				if _, err := w.Write(FormatSSEMessage(frame)); err != nil {
					return
				}
				flusher.Flush()

			case <-ticker.C:
				hb, err := hub.Frame(duelID, EventTypeHeartbeat, nil)
				if err != nil {
					continue
				}
				if _, err := w.Write(FormatSSEMessage(hb)); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}
