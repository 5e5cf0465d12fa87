package domain

import (
	"errors"
	"fmt"
)

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// Categories
	ErrMsgNotFound            = "not found"
	ErrMsgForbidden           = "forbidden"
	ErrMsgConflict            = "conflict"
	ErrMsgUpstreamUnavailable = "upstream unavailable"

	// Duel lookups
	ErrMsgDuelNotFound  = "duel not found"
	ErrMsgTopicNotFound = "topic not found"

	// Duel permissions
	ErrMsgNotParticipant = "not a participant in this duel"
	ErrMsgNotYourTurn    = "it is not your turn"
	ErrMsgOwnProposal    = "cannot respond to your own proposal"
	ErrMsgSelfChallenge  = "cannot challenge yourself"

	// Duel state
	ErrMsgInvalidDuelState = "duel is not in the required status"
	ErrMsgDuelCapReached   = "concurrent duel limit reached"
	ErrMsgVersionConflict  = "duel was modified concurrently"

	// Input errors
	ErrMsgInvalidInput    = "invalid input"
	ErrMsgInvalidDuration = "invalid duel duration"
	ErrMsgInvalidSide     = "invalid side"
	ErrMsgInvalidGround   = "invalid argument text"
	ErrMsgInvalidAction   = "invalid response action"
)

// Category errors. Callers and the HTTP layer classify with errors.Is.
var (
	ErrNotFound            = errors.New(ErrMsgNotFound)
	ErrForbidden           = errors.New(ErrMsgForbidden)
	ErrConflict            = errors.New(ErrMsgConflict)
	ErrUpstreamUnavailable = errors.New(ErrMsgUpstreamUnavailable)
	ErrInvalidInput        = errors.New(ErrMsgInvalidInput)
)

// Specific domain errors, each wrapping its category.
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	ErrDuelNotFound  = fmt.Errorf("%w: %s", ErrNotFound, ErrMsgDuelNotFound)
	ErrTopicNotFound = fmt.Errorf("%w: %s", ErrNotFound, ErrMsgTopicNotFound)

	ErrNotParticipant = fmt.Errorf("%w: %s", ErrForbidden, ErrMsgNotParticipant)
	ErrNotYourTurn    = fmt.Errorf("%w: %s", ErrForbidden, ErrMsgNotYourTurn)
	ErrOwnProposal    = fmt.Errorf("%w: %s", ErrForbidden, ErrMsgOwnProposal)

	ErrInvalidDuelState = fmt.Errorf("%w: %s", ErrConflict, ErrMsgInvalidDuelState)
	ErrDuelCapReached   = fmt.Errorf("%w: %s", ErrConflict, ErrMsgDuelCapReached)
	ErrVersionConflict  = fmt.Errorf("%w: %s", ErrConflict, ErrMsgVersionConflict)

	ErrSelfChallenge   = fmt.Errorf("%w: %s", ErrInvalidInput, ErrMsgSelfChallenge)
	ErrInvalidDuration = fmt.Errorf("%w: %s", ErrInvalidInput, ErrMsgInvalidDuration)
	ErrInvalidSide     = fmt.Errorf("%w: %s", ErrInvalidInput, ErrMsgInvalidSide)
	ErrInvalidGround   = fmt.Errorf("%w: %s", ErrInvalidInput, ErrMsgInvalidGround)
	ErrInvalidAction   = fmt.Errorf("%w: %s", ErrInvalidInput, ErrMsgInvalidAction)
)
