package sse

import "time"

// Buffer and timing configuration
const (
	// SinkBufferSize is how many frames a slow viewer may fall behind before it is dropped
	SinkBufferSize = 64

	// DefaultKeepaliveInterval is how often heartbeats are sent on idle streams
	DefaultKeepaliveInterval = 30 * time.Second

	// WebSocketWriteTimeout bounds a single websocket write
	WebSocketWriteTimeout = 10 * time.Second
)

// Log messages
const (
	LogMsgViewerConnected    = "Live viewer connected"
	LogMsgViewerDisconnected = "Live viewer disconnected"
	LogMsgSinkPruned         = "Dropped live viewer after failed write"
	LogMsgMarshalFailed      = "Failed to marshal live event"
	LogMsgSnapshotFailed     = "Failed to load duel snapshot for viewer"
	LogMsgUpgradeFailed      = "WebSocket upgrade failed"
	LogMsgBridgeBadPayload   = "Duel event payload has unexpected shape"
)

// Header values
const (
	ContentTypeEventStream = "text/event-stream"
	CacheControlNoCache    = "no-cache"
	ConnectionKeepAlive    = "keep-alive"
)
