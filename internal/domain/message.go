package domain

import (
	"time"

	"github.com/google/uuid"
)

// MessageRole attributes an entry in a duel's argument log
type MessageRole string

const (
	RoleChallenger MessageRole = "challenger"
	RoleChallenged MessageRole = "challenged"
	RoleHost       MessageRole = "host"
)

// Validity is the judge's classification of a submitted argument
type Validity string

const (
	ValidityValid     Validity = "valid"
	ValidityInvalid   Validity = "invalid"
	ValidityAmbiguous Validity = "ambiguous"
)

// Valid reports whether v is a known validity
func (v Validity) Valid() bool {
	switch v {
	case ValidityValid, ValidityInvalid, ValidityAmbiguous:
		return true
	}
	return false
}

// Verdict is the structured judge outcome for one argument.
// CountersIndex refers to the Seq of a prior message in the same duel.
type Verdict struct {
	Validity      Validity `json:"validity"`
	CountersIndex *int     `json:"counters_index,omitempty"`
	Explanation   string   `json:"explanation"`
	PenaltyReason *string  `json:"penalty_reason,omitempty"`
	FailedOpen    bool     `json:"failed_open,omitempty"`
}

// GroundMessage is one append-only entry of a duel's argument log.
// Participant submissions and host lines share the same ordered log.
type GroundMessage struct {
	ID       uuid.UUID   `json:"id"`
	DuelID   uuid.UUID   `json:"duel_id"`
	Seq      int         `json:"seq"`
	Role     MessageRole `json:"role"`
	AuthorID *uuid.UUID  `json:"author_id,omitempty"`
	Text     string      `json:"text"`

	HPDelta  *int       `json:"hp_delta,omitempty"`
	TargetID *uuid.UUID `json:"target_id,omitempty"`
	Verdict  *Verdict   `json:"verdict,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// IsArgument reports whether the entry was submitted by a participant
func (m *GroundMessage) IsArgument() bool {
	return m.Role == RoleChallenger || m.Role == RoleChallenged
}

// DuelSnapshot is the full read model of a duel for viewers
type DuelSnapshot struct {
	Duel     *Duel           `json:"duel"`
	Topic    *Topic          `json:"topic,omitempty"`
	Messages []GroundMessage `json:"messages"`
	// LiveHP is the turn holder's HP after draining the running clock
	LiveHP *int `json:"live_hp,omitempty"`
}
