package judge

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bothsides-platform-dev/both-sides-sub000/internal/domain"
)

func TestGuard_Evaluate_PassesThroughVerdict(t *testing.T) {
	j := new(MockJudge)
	idx := 3
	want := domain.Verdict{Validity: domain.ValidityValid, CountersIndex: &idx, Explanation: "solid rebuttal"}
	j.On("Evaluate", mock.Anything, mock.Anything, "my argument").Return(want, nil)

	g := NewGuard(j, time.Second, nil, nil)
	got := g.Evaluate(context.Background(), EvalContext{DuelContext: testDuelContext()}, "my argument")

	assert.Equal(t, want, got)
	assert.False(t, got.FailedOpen)
	j.AssertExpectations(t)
}

func TestGuard_Evaluate_FailsOpenOnError(t *testing.T) {
	j := new(MockJudge)
	j.On("Evaluate", mock.Anything, mock.Anything, mock.Anything).
		Return(domain.Verdict{}, errors.New("connection refused"))

	var mu sync.Mutex
	var fallbacks []string
	g := NewGuard(j, time.Second, nil, func(ctx context.Context, op string, err error) {
		mu.Lock()
		defer mu.Unlock()
		fallbacks = append(fallbacks, op)
		assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	})

	got := g.Evaluate(context.Background(), EvalContext{DuelContext: testDuelContext()}, "text")

	assert.Equal(t, domain.ValidityValid, got.Validity)
	assert.True(t, got.FailedOpen)
	assert.Nil(t, got.CountersIndex)
	assert.Equal(t, DefaultHostLines().FallbackVerdict(), got.Explanation)
	assert.Equal(t, []string{OpEvaluate}, fallbacks)
}

func TestGuard_Evaluate_FailsOpenOnUnknownValidity(t *testing.T) {
	j := new(MockJudge)
	j.On("Evaluate", mock.Anything, mock.Anything, mock.Anything).
		Return(domain.Verdict{Validity: "maybe"}, nil)

	got := NewGuard(j, time.Second, nil, nil).Evaluate(context.Background(), EvalContext{}, "text")
	assert.True(t, got.FailedOpen)
	assert.Equal(t, domain.ValidityValid, got.Validity)
}

func TestGuard_Evaluate_TimeoutDoesNotWaitForJudge(t *testing.T) {
	slow := &slowJudge{release: make(chan struct{})}
	defer close(slow.release)

	g := NewGuard(slow, 20*time.Millisecond, nil, nil)

	start := time.Now()
	got := g.Evaluate(context.Background(), EvalContext{}, "text")

	assert.Less(t, time.Since(start), time.Second)
	assert.True(t, got.FailedOpen)
	assert.Equal(t, domain.ValidityValid, got.Validity, "a late invalid verdict must not leak through")
}

func TestGuard_NilJudgeAlwaysFallsBack(t *testing.T) {
	g := NewGuard(nil, time.Second, nil, nil)
	dc := testDuelContext()

	assert.True(t, g.Evaluate(context.Background(), EvalContext{DuelContext: dc}, "x").FailedOpen)
	assert.Equal(t, DefaultHostLines().Opening(dc), g.OpeningLine(context.Background(), dc))
	assert.Equal(t, DefaultHostLines().Closing(dc, nil), g.ClosingLine(context.Background(), dc, nil))
}

func TestGuard_OpeningLine(t *testing.T) {
	dc := testDuelContext()

	t.Run("judge line", func(t *testing.T) {
		j := new(MockJudge)
		j.On("OpeningLine", mock.Anything, dc).Return("  Let the duel begin!  ", nil)
		assert.Equal(t, "Let the duel begin!", NewGuard(j, time.Second, nil, nil).OpeningLine(context.Background(), dc))
	})

	t.Run("empty line falls back", func(t *testing.T) {
		j := new(MockJudge)
		j.On("OpeningLine", mock.Anything, dc).Return("   ", nil)
		got := NewGuard(j, time.Second, nil, nil).OpeningLine(context.Background(), dc)
		assert.Equal(t, DefaultHostLines().Opening(dc), got)
	})

	t.Run("error falls back", func(t *testing.T) {
		j := new(MockJudge)
		j.On("OpeningLine", mock.Anything, dc).Return("", errors.New("429"))
		got := NewGuard(j, time.Second, nil, nil).OpeningLine(context.Background(), dc)
		assert.Contains(t, got, dc.Topic.Title)
	})
}

func TestGuard_ClosingLine_Fallback(t *testing.T) {
	dc := testDuelContext()
	winner := dc.ChallengedID

	j := new(MockJudge)
	j.On("ClosingLine", mock.Anything, dc, &winner).Return("", context.DeadlineExceeded)

	got := NewGuard(j, time.Second, nil, nil).ClosingLine(context.Background(), dc, &winner)
	assert.Contains(t, got, "Con")
}

func TestGuard_PanickingJudgeFallsBack(t *testing.T) {
	j := new(MockJudge)
	j.On("Evaluate", mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		panic("nil map")
	}).Return(domain.Verdict{}, nil)

	got := NewGuard(j, time.Second, nil, nil).Evaluate(context.Background(), EvalContext{}, "text")
	require.True(t, got.FailedOpen)
}

func TestGuard_DefaultsTimeout(t *testing.T) {
	g := NewGuard(nil, 0, nil, nil)
	assert.Equal(t, DefaultTimeout, g.timeout)
	assert.NotNil(t, g.Lines())
}
