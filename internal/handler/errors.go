package handler

// Generic HTTP error messages for client responses.
// These messages intentionally do not expose internal error details for security reasons.
// Both handlers and tests should reference these constants to maintain consistency.
const (
	// HTTP status messages
	ErrMsgInvalidRequest        = "Invalid request body"
	ErrMsgInvalidRequestSummary = "Invalid request"

	// Query and path parameter error messages
	ErrMsgMissingQueryParam = "Missing %s query parameter"
	ErrMsgInvalidQueryParam = "Invalid %s query parameter"
	ErrMsgInvalidDuelID     = "Invalid duel ID"

	// Identity error messages
	ErrMsgMissingActor = "Missing or invalid X-User-ID header"

	// Duel operation error messages
	ErrMsgChallengeFailed    = "Failed to create challenge"
	ErrMsgRespondFailed      = "Failed to respond to challenge"
	ErrMsgSubmitGroundFailed = "Failed to submit argument"
	ErrMsgResignFailed       = "Failed to resign"
	ErrMsgClaimTimeoutFailed = "Failed to claim timeout"
	ErrMsgGetDuelFailed      = "Failed to get duel"
	ErrMsgListDuelsFailed    = "Failed to list duels"

	// Comment error messages
	ErrMsgAddCommentFailed   = "Failed to add comment"
	ErrMsgListCommentsFailed = "Failed to list comments"

	// Admin error messages
	ErrMsgForceEndFailed = "Failed to force end duel"
	ErrMsgHideFailed     = "Failed to change duel visibility"
)

// Success messages for API responses
const (
	MsgChallengeSent = "Challenge sent"
	MsgDuelResigned  = "You resigned the duel"
	MsgDuelEnded     = "Duel ended"
)
