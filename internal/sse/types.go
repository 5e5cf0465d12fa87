package sse

import (
	"time"

	"github.com/google/uuid"
)

// Live event vocabulary
const (
	EventTypeDuelState  = "duel_state"
	EventTypeNewMessage = "new_message"
	EventTypeHPUpdate   = "hp_update"
	EventTypeTurnUpdate = "turn_update"
	EventTypeDuelEnded  = "duel_ended"
	EventTypeNewComment = "new_comment"
	EventTypeHeartbeat  = "heartbeat"
)

// Event is one message delivered to live viewers of a duel
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	DuelID    uuid.UUID   `json:"duel_id"`
	Timestamp int64       `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// Frame is a serialized Event ready for any transport
type Frame struct {
	ID   string
	Type string
	Data []byte
}

// HPUpdatePayload carries both participants' HP after a change
type HPUpdatePayload struct {
	ChallengerHP int `json:"challenger_hp"`
	ChallengedHP int `json:"challenged_hp"`
}

// TurnUpdatePayload announces whose clock is running
type TurnUpdatePayload struct {
	CurrentTurn   *uuid.UUID `json:"current_turn"`
	TurnStartedAt *time.Time `json:"turn_started_at"`
}
