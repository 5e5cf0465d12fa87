package judge

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/bothsides-platform-dev/both-sides-sub000/internal/domain"
)

//go:embed host_lines.yaml
var defaultHostLinesYAML []byte

// HostLines is the catalogue of static host text
type HostLines struct {
	OpeningLines    []string                    `yaml:"opening"`
	ClosingWinner   []string                    `yaml:"closing_winner"`
	ClosingNoWinner []string                    `yaml:"closing_no_winner"`
	YourTurnLine    string                      `yaml:"your_turn"`
	ClarifyLine     string                      `yaml:"clarify"`
	FallbackLine    string                      `yaml:"fallback_verdict"`
	InvalidLine     string                      `yaml:"invalid"`
	CounteredLine   string                      `yaml:"countered"`
	ValidLine       string                      `yaml:"valid"`
	EndedLines      map[domain.EndReason]string `yaml:"ended"`
}

// DefaultHostLines returns the embedded catalogue
func DefaultHostLines() *HostLines {
	lines, err := ParseHostLines(defaultHostLinesYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded host lines: %v", err))
	}
	return lines
}

// LoadHostLines reads a YAML catalogue from path. Keys missing from the file
// keep their embedded defaults. An empty path returns the defaults.
func LoadHostLines(path string) (*HostLines, error) {
	if path == "" {
		return DefaultHostLines(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read host lines: %w", err)
	}
	lines := DefaultHostLines()
	if err := yaml.Unmarshal(data, lines); err != nil {
		return nil, fmt.Errorf("failed to parse host lines: %w", err)
	}
	if err := lines.validate(); err != nil {
		return nil, err
	}
	return lines, nil
}

// ParseHostLines decodes a complete catalogue
func ParseHostLines(data []byte) (*HostLines, error) {
	var lines HostLines
	if err := yaml.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("failed to parse host lines: %w", err)
	}
	if err := lines.validate(); err != nil {
		return nil, err
	}
	return &lines, nil
}

func (h *HostLines) validate() error {
	if len(h.OpeningLines) == 0 || len(h.ClosingWinner) == 0 || len(h.ClosingNoWinner) == 0 ||
		h.YourTurnLine == "" || h.ClarifyLine == "" || h.FallbackLine == "" {
		return errors.New(ErrMsgHostLinesInvalid)
	}
	return nil
}

// Opening returns an opening line for the duel
func (h *HostLines) Opening(dc DuelContext) string {
	return fill(pick(h.OpeningLines, dc.DuelID), dc, nil)
}

// Closing returns a closing line; winnerID may be nil
func (h *HostLines) Closing(dc DuelContext, winnerID *uuid.UUID) string {
	if winnerID == nil {
		return fill(pick(h.ClosingNoWinner, dc.DuelID), dc, nil)
	}
	return fill(pick(h.ClosingWinner, dc.DuelID), dc, map[string]string{"winner": dc.SideOf(*winnerID)})
}

// YourTurn prompts the participant arguing sideLabel
func (h *HostLines) YourTurn(sideLabel string) string {
	return replace(h.YourTurnLine, map[string]string{"side": sideLabel})
}

// Clarify asks the participant arguing sideLabel to resubmit after an ambiguous verdict
func (h *HostLines) Clarify(sideLabel string) string {
	return replace(h.ClarifyLine, map[string]string{"side": sideLabel})
}

// FallbackVerdict explains a fail-open verdict
func (h *HostLines) FallbackVerdict() string {
	return h.FallbackLine
}

// Penalty announces an HP penalty against sideLabel
func (h *HostLines) Penalty(validity domain.Validity, sideLabel string, amount int) string {
	vars := map[string]string{"side": sideLabel, "amount": strconv.Itoa(amount)}
	if validity == domain.ValidityInvalid {
		return replace(h.InvalidLine, vars)
	}
	return replace(h.CounteredLine, vars)
}

// Accepted announces a valid ground with no penalty
func (h *HostLines) Accepted() string {
	return h.ValidLine
}

// Ended announces why the duel ended. sideLabel names the losing side.
func (h *HostLines) Ended(reason domain.EndReason, sideLabel string) string {
	line, ok := h.EndedLines[reason]
	if !ok {
		return string(reason)
	}
	return replace(line, map[string]string{"side": sideLabel})
}

func pick(options []string, seed uuid.UUID) string {
	if len(options) == 0 {
		return ""
	}
	return options[int(seed[0])%len(options)]
}

func fill(line string, dc DuelContext, extra map[string]string) string {
	vars := map[string]string{
		"topic":      dc.Topic.Title,
		"challenger": dc.Topic.SideLabel(dc.ChallengerSide),
		"challenged": dc.Topic.SideLabel(dc.ChallengedSide),
	}
	for k, v := range extra {
		vars[k] = v
	}
	return replace(line, vars)
}

func replace(line string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(line)
}
