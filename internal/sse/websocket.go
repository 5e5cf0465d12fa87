package sse

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler serves the same live events as Handler over a websocket.
// Frames are the JSON-encoded Event; viewers never send anything meaningful.
func WebSocketHandler(hub *Hub, snapshots SnapshotSource, keepalive time.Duration) http.HandlerFunc {
	if keepalive <= 0 {
		keepalive = DefaultKeepaliveInterval
	}
	return func(w http.ResponseWriter, r *http.Request) {
		duelID, sink, initial, status, err := connect(hub, snapshots, r)
		if err != nil {
			http.Error(w, http.StatusText(status), status)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			hub.Unsubscribe(duelID, sink)
			sink.Close()
			slog.Warn(LogMsgUpgradeFailed, "duel_id", duelID, "error", err)
			return
		}

		slog.Info(LogMsgViewerConnected, "duel_id", duelID, "transport", "websocket", "viewers", hub.SinkCount(duelID))
		defer func() {
			hub.Unsubscribe(duelID, sink)
			sink.Close()
			_ = conn.Close()
			slog.Info(LogMsgViewerDisconnected, "duel_id", duelID, "transport", "websocket")
		}()

		// The read loop only exists to process control frames and notice the close.
		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		write := func(f Frame) error {
			_ = conn.SetWriteDeadline(time.Now().Add(WebSocketWriteTimeout))
			return conn.WriteMessage(websocket.TextMessage, f.Data)
		}

		if err := write(initial); err != nil {
			return
		}

		ticker := time.NewTicker(keepalive)
		defer ticker.Stop()

		for {
			select {
			case <-closed:
				return
			case <-r.Context().Done():
				return
			case frame, ok := <-sink.Frames():
				if !ok {
					_ = conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
						time.Now().Add(WebSocketWriteTimeout))
					return
				}
				if err := write(frame); err != nil {
					return
				}
			case <-ticker.C:
				hb, err := hub.Frame(duelID, EventTypeHeartbeat, nil)
				if err != nil {
					continue
				}
				if err := write(hb); err != nil {
					return
				}
			}
		}
	}
}
