package judge

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/bothsides-platform-dev/both-sides-sub000/internal/domain"
)

type MockJudge struct {
	mock.Mock
}

func (m *MockJudge) Evaluate(ctx context.Context, ec EvalContext, text string) (domain.Verdict, error) {
	args := m.Called(ctx, ec, text)
	return args.Get(0).(domain.Verdict), args.Error(1)
}

func (m *MockJudge) OpeningLine(ctx context.Context, dc DuelContext) (string, error) {
	args := m.Called(ctx, dc)
	return args.String(0), args.Error(1)
}

func (m *MockJudge) ClosingLine(ctx context.Context, dc DuelContext, winnerID *uuid.UUID) (string, error) {
	args := m.Called(ctx, dc, winnerID)
	return args.String(0), args.Error(1)
}

// slowJudge ignores its context and blocks until release is closed
type slowJudge struct {
	release chan struct{}
}

func (s *slowJudge) Evaluate(ctx context.Context, ec EvalContext, text string) (domain.Verdict, error) {
	<-s.release
	return domain.Verdict{Validity: domain.ValidityInvalid}, nil
}

func (s *slowJudge) OpeningLine(ctx context.Context, dc DuelContext) (string, error) {
	<-s.release
	return "too late", nil
}

func (s *slowJudge) ClosingLine(ctx context.Context, dc DuelContext, winnerID *uuid.UUID) (string, error) {
	<-s.release
	return "too late", nil
}

func testDuelContext() DuelContext {
	return DuelContext{
		DuelID: uuid.New(),
		Topic: domain.Topic{
			ID:         uuid.New(),
			Title:      "Pineapple belongs on pizza",
			SideALabel: "Pro",
			SideBLabel: "Con",
		},
		ChallengerID:    uuid.New(),
		ChallengedID:    uuid.New(),
		ChallengerSide:  domain.SideA,
		ChallengedSide:  domain.SideB,
		DurationSeconds: 600,
	}
}
