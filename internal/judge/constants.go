package judge

import "time"

// Defaults
const (
	DefaultTimeout = 15 * time.Second
	DefaultModel   = "gpt-4o-mini"
)

// Operation labels used in logs and metrics
const (
	OpEvaluate    = "evaluate"
	OpOpeningLine = "opening_line"
	OpClosingLine = "closing_line"
)

// Outcome labels used in metrics
const (
	OutcomeOK       = "ok"
	OutcomeFallback = "fallback"
)

// Log messages
const (
	LogMsgJudgeFallback     = "Judge unavailable, using fallback"
	LogMsgJudgeDisabled     = "No judge configured, host lines only"
	LogMsgHostLinesOverride = "Loaded host lines override"
)

// Error messages
const (
	ErrMsgNoJSONObject     = "judge response contains no JSON object"
	ErrMsgUnknownValidity  = "judge returned unknown validity"
	ErrMsgEmptyCompletion  = "judge returned no choices"
	ErrMsgEmptyLine        = "judge returned an empty line"
	ErrMsgJudgeNotEnabled  = "judge not configured"
	ErrMsgHostLinesInvalid = "host lines catalogue is incomplete"
)
