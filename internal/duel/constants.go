package duel

import "time"

// Response actions for a pending challenge
const (
	ActionAccept  Action = "accept"
	ActionDecline Action = "decline"
	ActionCounter Action = "counter"
)

// Sweep names used in logs and metrics
const (
	SweepExpire  = "expire_stale"
	SweepForfeit = "forfeit_inactive"
	SweepClock   = "clock_exhausted"
)

// Defaults
const (
	DefaultChallengeExpiry   = 24 * time.Hour
	DefaultInactivityWindow  = 5 * time.Minute
	DefaultMaxConcurrent     = 1
	DefaultMinDuration       = 60
	DefaultMaxDuration       = 3600
	DefaultMaxGroundLength   = 2000
	DefaultMaxCommentLength  = 500
	DefaultSweepBatchSize    = 100
	DefaultSweepConcurrency  = 4
	DefaultSnapshotCacheSize = 256
	DefaultSnapshotCacheTTL  = time.Minute

	notifyTimeout = 10 * time.Second
)

const ambiguousVerdictText = "No verdict."


// Log messages
const (
	LogMsgChallengeCreated  = "Duel challenge created"
	LogMsgDuelStarted       = "Duel started"
	LogMsgDuelEnded         = "Duel ended"
	LogMsgGroundJudged      = "Ground judged"
	LogMsgLazyExpire        = "Pending duel expired on access"
	LogMsgPublishFailed     = "Failed to publish duel event"
	LogMsgNotifyFailed      = "Failed to notify participant"
	LogMsgSweepCompleted    = "Janitor sweep completed"
	LogMsgSweepItemFailed   = "Janitor sweep failed for duel"
	LogMsgShutdown          = "Duel service shutting down, waiting for notifications..."
	LogMsgShutdownComplete  = "Duel service shutdown complete"
	LogMsgUnknownCounterRef = "Judge counter reference ignored"
)
