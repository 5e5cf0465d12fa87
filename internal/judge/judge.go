// Package judge evaluates duel arguments and narrates duel milestones.
//
// The Judge interface is the raw capability and may fail or hang. The duel
// engine only ever talks to it through a Guard, which bounds each call with a
// timeout and substitutes a default verdict or host line on any failure.
package judge

import (
	"context"

	"github.com/google/uuid"

	"github.com/bothsides-platform-dev/both-sides-sub000/internal/domain"
)

// DuelContext is the framing shared by every judge call for one duel
type DuelContext struct {
	DuelID          uuid.UUID
	Topic           domain.Topic
	ChallengerID    uuid.UUID
	ChallengedID    uuid.UUID
	ChallengerSide  domain.Side
	ChallengedSide  domain.Side
	DurationSeconds int
}

// NewDuelContext builds the judge framing for d
func NewDuelContext(d *domain.Duel, topic domain.Topic) DuelContext {
	return DuelContext{
		DuelID:          d.ID,
		Topic:           topic,
		ChallengerID:    d.ChallengerID,
		ChallengedID:    d.ChallengedID,
		ChallengerSide:  d.ChallengerSide,
		ChallengedSide:  d.ChallengedSide,
		DurationSeconds: d.DurationSeconds,
	}
}

// SideOf returns the side label userID argues
func (c DuelContext) SideOf(userID uuid.UUID) string {
	if userID == c.ChallengerID {
		return c.Topic.SideLabel(c.ChallengerSide)
	}
	return c.Topic.SideLabel(c.ChallengedSide)
}

// EvalContext is everything the judge sees when scoring one argument
type EvalContext struct {
	DuelContext
	SubmitterID uuid.UUID
	// History is the full prior log, host lines included, ordered by Seq
	History []domain.GroundMessage
}

// Judge scores arguments and produces flavor text
type Judge interface {
	Evaluate(ctx context.Context, ec EvalContext, text string) (domain.Verdict, error)
	OpeningLine(ctx context.Context, dc DuelContext) (string, error)
	ClosingLine(ctx context.Context, dc DuelContext, winnerID *uuid.UUID) (string, error)
}
