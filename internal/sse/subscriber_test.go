package sse

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bothsides-platform-dev/both-sides-sub000/internal/domain"
	"github.com/bothsides-platform-dev/both-sides-sub000/internal/event"
)

func TestSubscriber_BridgesDuelEvents(t *testing.T) {
	bus := event.NewMemoryBus()
	hub := NewHub()
	NewSubscriber(hub, bus).Subscribe()

	duelID := uuid.New()
	turn := uuid.New()
	now := time.Now().UTC()
	sink := NewChannelSink(8)
	hub.Subscribe(duelID, sink)

	d := &domain.Duel{ID: duelID, ChallengerHP: 450, ChallengedHP: 600, CurrentTurn: &turn, TurnStartedAt: &now}
	ctx := context.Background()

	require.NoError(t, bus.Publish(ctx, event.NewDuelEvent(event.DuelHPUpdated, duelID, domain.DuelEventPayload{Duel: d})))
	require.NoError(t, bus.Publish(ctx, event.NewDuelEvent(event.DuelTurnChanged, duelID, domain.DuelEventPayload{Duel: d})))
	require.NoError(t, bus.Publish(ctx, event.NewDuelEvent(event.DuelGroundJudged, duelID, domain.DuelEventPayload{Duel: d})))
	require.NoError(t, bus.Publish(ctx, event.NewDuelEvent(event.DuelEnded, duelID, domain.DuelEventPayload{Duel: d})))

	require.Len(t, sink.Frames(), 3)
	assert.Equal(t, EventTypeHPUpdate, (<-sink.Frames()).Type)

	turnFrame := <-sink.Frames()
	assert.Equal(t, EventTypeTurnUpdate, turnFrame.Type)
	var evt struct {
		Payload TurnUpdatePayload `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(turnFrame.Data, &evt))
	require.NotNil(t, evt.Payload.CurrentTurn)
	assert.Equal(t, turn, *evt.Payload.CurrentTurn)

	assert.Equal(t, EventTypeDuelEnded, (<-sink.Frames()).Type)
}

func TestTranslate(t *testing.T) {
	d := &domain.Duel{ID: uuid.New()}
	msg := &domain.GroundMessage{ID: uuid.New()}
	comment := &domain.ObserverComment{ID: uuid.New()}

	tests := []struct {
		name     string
		typ      event.Type
		payload  domain.DuelEventPayload
		wantType string
		wantOK   bool
	}{
		{"started", event.DuelStarted, domain.DuelEventPayload{Duel: d}, EventTypeDuelState, true},
		{"declined", event.DuelDeclined, domain.DuelEventPayload{Duel: d}, EventTypeDuelState, true},
		{"message", event.DuelMessage, domain.DuelEventPayload{Message: msg}, EventTypeNewMessage, true},
		{"comment", event.DuelCommentAdded, domain.DuelEventPayload{Comment: comment}, EventTypeNewComment, true},
		{"message without body", event.DuelMessage, domain.DuelEventPayload{}, "", false},
		{"judged is internal", event.DuelGroundJudged, domain.DuelEventPayload{Duel: d}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, ok := translate(tt.typ, tt.payload)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantType, got)
		})
	}
}
