package domain

// Event type constants used across the application for event bus subscriptions
// and metrics tracking.
//
// Event types follow the pattern: <entity>.<action> (e.g., "duel.ended")
const (
	EventTypeDuelChallenged   = "duel.challenged"
	EventTypeDuelCountered    = "duel.countered"
	EventTypeDuelDeclined     = "duel.declined"
	EventTypeDuelExpired      = "duel.expired"
	EventTypeDuelStarted      = "duel.started"
	EventTypeDuelMessage      = "duel.message"
	EventTypeDuelHPUpdated    = "duel.hp_updated"
	EventTypeDuelTurnChanged  = "duel.turn_changed"
	EventTypeDuelEnded        = "duel.ended"
	EventTypeDuelHidden       = "duel.hidden"
	EventTypeDuelCommentAdded = "duel.comment_added"
	EventTypeDuelGroundJudged = "duel.ground_judged"
	EventTypeJudgeFallback    = "judge.fallback"
)

// DuelEventPayload is carried by every duel.* event. Only the fields relevant
// to the event type are set.
type DuelEventPayload struct {
	Duel    *Duel            `json:"duel,omitempty"`
	Message *GroundMessage   `json:"message,omitempty"`
	Comment *ObserverComment `json:"comment,omitempty"`
	Verdict *Verdict         `json:"verdict,omitempty"`
}

// JudgeFallbackPayload is carried by judge.fallback events
type JudgeFallbackPayload struct {
	Operation string `json:"operation"`
	Reason    string `json:"reason"`
}
