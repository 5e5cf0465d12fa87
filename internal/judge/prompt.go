package judge

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/bothsides-platform-dev/both-sides-sub000/internal/domain"
)

const evaluateSystemPrompt = `You are the judge of a timed two-sided debate duel.
Score only the NEW argument. Reply with a single JSON object and nothing else:
{"validity": "valid" | "invalid" | "ambiguous",
 "counters_index": <seq number of the opponent argument this one successfully rebuts, or null>,
 "explanation": "<one or two sentences>",
 "penalty_reason": "<why the argument is invalid, or null>"}
"invalid" means off-topic, argues the wrong side, abusive, or logically empty.
"ambiguous" means you cannot tell which side the argument supports.
Only set counters_index when the new argument directly and convincingly refutes that specific opponent argument.`

const narrationSystemPrompt = `You are the charismatic host of a timed debate duel.
Reply with a single short line of narration, no quotes, no more than 40 words.`

func framing(dc DuelContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\n", dc.Topic.Title)
	if dc.Topic.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", dc.Topic.Description)
	}
	fmt.Fprintf(&b, "Challenger argues: %s\n", dc.Topic.SideLabel(dc.ChallengerSide))
	fmt.Fprintf(&b, "Challenged argues: %s\n", dc.Topic.SideLabel(dc.ChallengedSide))
	return b.String()
}

func evaluatePrompt(ec EvalContext, text string) string {
	var b strings.Builder
	b.WriteString(framing(ec.DuelContext))
	b.WriteString("\nPrior log:\n")
	if len(ec.History) == 0 {
		b.WriteString("(none)\n")
	}
	for _, m := range ec.History {
		fmt.Fprintf(&b, "[%d] %s: %s\n", m.Seq, speaker(ec.DuelContext, m), m.Text)
	}
	fmt.Fprintf(&b, "\nNew argument from %s:\n%s\n", ec.SideOf(ec.SubmitterID), text)
	return b.String()
}

func openingPrompt(dc DuelContext) string {
	return framing(dc) + "\nOpen the duel and invite the challenger to speak first."
}

func closingPrompt(dc DuelContext, winnerID *uuid.UUID) string {
	if winnerID == nil {
		return framing(dc) + "\nThe duel was stopped by a moderator with no winner. Close it."
	}
	return framing(dc) + fmt.Sprintf("\nThe winner is the side arguing %q. Close the duel.", dc.SideOf(*winnerID))
}

func speaker(dc DuelContext, m domain.GroundMessage) string {
	switch m.Role {
	case domain.RoleChallenger:
		return "Challenger (" + dc.Topic.SideLabel(dc.ChallengerSide) + ")"
	case domain.RoleChallenged:
		return "Challenged (" + dc.Topic.SideLabel(dc.ChallengedSide) + ")"
	default:
		return "Host"
	}
}
