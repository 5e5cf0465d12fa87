package judge

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/bothsides-platform-dev/both-sides-sub000/internal/domain"
)

// rawVerdict is the JSON object the model is asked to return
type rawVerdict struct {
	Validity      string  `json:"validity"`
	CountersIndex *int    `json:"counters_index"`
	Explanation   string  `json:"explanation"`
	PenaltyReason *string `json:"penalty_reason"`
}

// parseVerdict extracts the first JSON object from a model reply. Models often
// wrap JSON in prose or code fences, so everything outside the outermost
// braces is ignored.
func parseVerdict(content string) (domain.Verdict, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end <= start {
		return domain.Verdict{}, errors.New(ErrMsgNoJSONObject)
	}

	var raw rawVerdict
	if err := json.Unmarshal([]byte(content[start:end+1]), &raw); err != nil {
		return domain.Verdict{}, fmt.Errorf("failed to decode judge verdict: %w", err)
	}

	validity := domain.Validity(strings.ToLower(strings.TrimSpace(raw.Validity)))
	if !validity.Valid() {
		return domain.Verdict{}, fmt.Errorf("%w: %q", errUnknownValidity, raw.Validity)
	}

	v := domain.Verdict{
		Validity:      validity,
		CountersIndex: raw.CountersIndex,
		Explanation:   strings.TrimSpace(raw.Explanation),
	}
	if raw.PenaltyReason != nil && strings.TrimSpace(*raw.PenaltyReason) != "" {
		reason := strings.TrimSpace(*raw.PenaltyReason)
		v.PenaltyReason = &reason
	}
	return v, nil
}
