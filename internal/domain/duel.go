package domain

import (
	"time"

	"github.com/google/uuid"
)

// DuelStatus represents the lifecycle status of a duel
type DuelStatus string

const (
	DuelStatusPending   DuelStatus = "pending"
	DuelStatusActive    DuelStatus = "active"
	DuelStatusCompleted DuelStatus = "completed"
	DuelStatusDeclined  DuelStatus = "declined"
	DuelStatusExpired   DuelStatus = "expired"
)

// IsTerminal reports whether no further gameplay transitions are possible
func (s DuelStatus) IsTerminal() bool {
	switch s {
	case DuelStatusCompleted, DuelStatusDeclined, DuelStatusExpired:
		return true
	}
	return false
}

// Valid reports whether s is a known status
func (s DuelStatus) Valid() bool {
	switch s {
	case DuelStatusPending, DuelStatusActive, DuelStatusCompleted, DuelStatusDeclined, DuelStatusExpired:
		return true
	}
	return false
}

// Side is the binary position a participant argues for
type Side string

const (
	SideA Side = "A"
	SideB Side = "B"
)

// Opposite returns the other side
func (s Side) Opposite() Side {
	if s == SideA {
		return SideB
	}
	return SideA
}

// Valid reports whether s is A or B
func (s Side) Valid() bool {
	return s == SideA || s == SideB
}

// EndReason records why a completed duel ended
type EndReason string

const (
	EndReasonHPZero          EndReason = "hp_zero"
	EndReasonResigned        EndReason = "resigned"
	EndReasonAbandoned       EndReason = "abandoned"
	EndReasonAdminForceEnded EndReason = "admin_force_ended"
)

// Duel is a two-party timed argument contest on a topic.
// HP doubles as each participant's remaining clock in seconds.
type Duel struct {
	ID             uuid.UUID  `json:"id"`
	TopicID        uuid.UUID  `json:"topic_id"`
	ChallengerID   uuid.UUID  `json:"challenger_id"`
	ChallengedID   uuid.UUID  `json:"challenged_id"`
	ChallengerSide Side       `json:"challenger_side"`
	ChallengedSide Side       `json:"challenged_side"`
	Status         DuelStatus `json:"status"`

	DurationSeconds int       `json:"duration_seconds"`
	ProposedBy      uuid.UUID `json:"proposed_by"`

	ChallengerHP  int        `json:"challenger_hp"`
	ChallengedHP  int        `json:"challenged_hp"`
	CurrentTurn   *uuid.UUID `json:"current_turn,omitempty"`
	TurnStartedAt *time.Time `json:"turn_started_at,omitempty"`

	WinnerID  *uuid.UUID `json:"winner_id,omitempty"`
	EndReason *EndReason `json:"end_reason,omitempty"`
	Hidden    bool       `json:"hidden"`

	LastActivityAt time.Time  `json:"last_activity_at"`
	CreatedAt      time.Time  `json:"created_at"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	EndedAt        *time.Time `json:"ended_at,omitempty"`

	// Version is bumped on every successful write and guards compare-and-swap updates
	Version int `json:"version"`
}

// IsParticipant reports whether userID is one of the two duelists
func (d *Duel) IsParticipant(userID uuid.UUID) bool {
	return userID == d.ChallengerID || userID == d.ChallengedID
}

// Opponent returns the other participant. Callers must check IsParticipant first.
func (d *Duel) Opponent(userID uuid.UUID) uuid.UUID {
	if userID == d.ChallengerID {
		return d.ChallengedID
	}
	return d.ChallengerID
}

// SideOf returns the side userID argues
func (d *Duel) SideOf(userID uuid.UUID) Side {
	if userID == d.ChallengerID {
		return d.ChallengerSide
	}
	return d.ChallengedSide
}

// RoleOf returns the message role for userID
func (d *Duel) RoleOf(userID uuid.UUID) MessageRole {
	if userID == d.ChallengerID {
		return RoleChallenger
	}
	return RoleChallenged
}

// HP returns userID's current stored HP
func (d *Duel) HP(userID uuid.UUID) int {
	if userID == d.ChallengerID {
		return d.ChallengerHP
	}
	return d.ChallengedHP
}

// SetHP stores hp for userID, clamped to [0, DurationSeconds]
func (d *Duel) SetHP(userID uuid.UUID, hp int) {
	if hp < 0 {
		hp = 0
	}
	if hp > d.DurationSeconds {
		hp = d.DurationSeconds
	}
	if userID == d.ChallengerID {
		d.ChallengerHP = hp
	} else {
		d.ChallengedHP = hp
	}
}

// HoldsTurn reports whether userID's clock is running
func (d *Duel) HoldsTurn(userID uuid.UUID) bool {
	return d.CurrentTurn != nil && *d.CurrentTurn == userID
}

// Clone returns a deep copy safe to mutate
func (d *Duel) Clone() *Duel {
	c := *d
	if d.CurrentTurn != nil {
		v := *d.CurrentTurn
		c.CurrentTurn = &v
	}
	if d.TurnStartedAt != nil {
		v := *d.TurnStartedAt
		c.TurnStartedAt = &v
	}
	if d.WinnerID != nil {
		v := *d.WinnerID
		c.WinnerID = &v
	}
	if d.EndReason != nil {
		v := *d.EndReason
		c.EndReason = &v
	}
	if d.StartedAt != nil {
		v := *d.StartedAt
		c.StartedAt = &v
	}
	if d.EndedAt != nil {
		v := *d.EndedAt
		c.EndedAt = &v
	}
	return &c
}

// DuelFilter narrows duel listings. Zero values mean "any".
type DuelFilter struct {
	TopicID       *uuid.UUID
	Status        *DuelStatus
	ParticipantID *uuid.UUID
	IncludeHidden bool
	Limit         int
	Offset        int
}

// DuelPage is one page of a duel listing
type DuelPage struct {
	Duels []Duel `json:"duels"`
	Total int    `json:"total"`
}

// Topic is the read-only framing a duel argues about
type Topic struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	SideALabel  string    `json:"side_a_label"`
	SideBLabel  string    `json:"side_b_label"`
}

// SideLabel returns the display label of side s
func (t *Topic) SideLabel(s Side) string {
	if s == SideA {
		return t.SideALabel
	}
	return t.SideBLabel
}

// ObserverComment is a spectator remark with no gameplay weight
type ObserverComment struct {
	ID        uuid.UUID `json:"id"`
	DuelID    uuid.UUID `json:"duel_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
