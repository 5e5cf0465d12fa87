package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bothsides-platform-dev/both-sides-sub000/internal/domain"
	"github.com/bothsides-platform-dev/both-sides-sub000/internal/logger"
)

// Standard response types for consistent API responses

// SuccessResponse represents a simple successful operation message
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// DataResponse represents a response with data payload
type DataResponse struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data"`
}

// Helper functions for responding

// respondJSON sends a JSON response with the given status code and payload
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	// Get a buffer from the pool to reduce allocations
	buf := getBuffer()
	defer putBuffer(buf)

	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		// Headers are already sent, nothing more can be written
		slog.Error("Failed to encode JSON response", "error", err)
		return
	}

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Failed to write response buffer", "error", err)
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// respondServiceError logs a failed service call and writes the mapped status and message.
// Client errors are logged at Warn, server errors at Error.
func respondServiceError(w http.ResponseWriter, r *http.Request, opName string, err error) {
	status, msg := mapServiceErrorToUserMessage(err)
	log := logger.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error(opName, "error", err)
	} else {
		log.Warn(opName, "error", err, "status", status)
	}
	respondError(w, status, msg)
}

// User-facing error messages for service errors
const (
	// Generic messages
	ErrMsgGenericServerError = "Something went wrong"
	ErrMsgUnknownError       = "Unknown error"

	// Lookup messages
	ErrMsgDuelNotFoundError  = "Duel not found"
	ErrMsgTopicNotFoundError = "Topic not found"
	ErrMsgNotFoundError      = "Resource not found"

	// Permission messages
	ErrMsgNotParticipantError = "You are not a participant in this duel"
	ErrMsgNotYourTurnError    = "It is not your turn"
	ErrMsgOwnProposalError    = "You cannot respond to your own proposal"
	ErrMsgForbiddenError      = "You are not allowed to do that"

	// State messages
	ErrMsgInvalidDuelStateError = "The duel is not in a state that allows this action"
	ErrMsgDuelCapReachedError   = "You already have the maximum number of open duels"
	ErrMsgVersionConflictError  = "The duel changed while your request was processed. Please retry."
	ErrMsgConflictError         = "The request conflicts with the current duel state"

	// Input messages
	ErrMsgSelfChallengeError   = "You cannot challenge yourself"
	ErrMsgInvalidDurationError = "Duel duration is out of range"
	ErrMsgInvalidSideError     = "Side must be A or B"
	ErrMsgInvalidGroundError   = "Argument text is empty or too long"
	ErrMsgInvalidActionError   = "Action must be accept, decline or counter"
	ErrMsgInvalidInputError    = "Invalid request. Please check your inputs."
)

// mapServiceErrorToUserMessage maps domain errors to user-friendly HTTP responses.
// Specific errors are checked before their categories; anything unrecognised is a 500
// with a generic message so internal details never leak.
func mapServiceErrorToUserMessage(err error) (int, string) {
	if err == nil {
		return http.StatusInternalServerError, ErrMsgUnknownError
	}

	switch {
	case errors.Is(err, domain.ErrDuelNotFound):
		return http.StatusNotFound, ErrMsgDuelNotFoundError
	case errors.Is(err, domain.ErrTopicNotFound):
		return http.StatusNotFound, ErrMsgTopicNotFoundError
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, ErrMsgNotFoundError

	case errors.Is(err, domain.ErrNotParticipant):
		return http.StatusForbidden, ErrMsgNotParticipantError
	case errors.Is(err, domain.ErrNotYourTurn):
		return http.StatusForbidden, ErrMsgNotYourTurnError
	case errors.Is(err, domain.ErrOwnProposal):
		return http.StatusForbidden, ErrMsgOwnProposalError
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, ErrMsgForbiddenError

	case errors.Is(err, domain.ErrInvalidDuelState):
		return http.StatusConflict, ErrMsgInvalidDuelStateError
	case errors.Is(err, domain.ErrDuelCapReached):
		return http.StatusConflict, ErrMsgDuelCapReachedError
	case errors.Is(err, domain.ErrVersionConflict):
		return http.StatusConflict, ErrMsgVersionConflictError
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, ErrMsgConflictError

	case errors.Is(err, domain.ErrSelfChallenge):
		return http.StatusBadRequest, ErrMsgSelfChallengeError
	case errors.Is(err, domain.ErrInvalidDuration):
		return http.StatusBadRequest, ErrMsgInvalidDurationError
	case errors.Is(err, domain.ErrInvalidSide):
		return http.StatusBadRequest, ErrMsgInvalidSideError
	case errors.Is(err, domain.ErrInvalidGround):
		return http.StatusBadRequest, ErrMsgInvalidGroundError
	case errors.Is(err, domain.ErrInvalidAction):
		return http.StatusBadRequest, ErrMsgInvalidActionError
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, ErrMsgInvalidInputError
	}

	return http.StatusInternalServerError, ErrMsgGenericServerError
}
