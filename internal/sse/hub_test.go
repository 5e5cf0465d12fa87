package sse

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSink struct {
	mu     sync.Mutex
	closed bool
}

func (f *failingSink) Send(Frame) error { return ErrSinkClosed }

func (f *failingSink) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

func (f *failingSink) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func TestHub_PublishReachesOnlyThatDuel(t *testing.T) {
	hub := NewHub()
	duelA, duelB := uuid.New(), uuid.New()

	a := NewChannelSink(4)
	b := NewChannelSink(4)
	hub.Subscribe(duelA, a)
	hub.Subscribe(duelB, b)

	hub.Publish(duelA, EventTypeHPUpdate, HPUpdatePayload{ChallengerHP: 450, ChallengedHP: 600})

	require.Len(t, a.Frames(), 1)
	assert.Len(t, b.Frames(), 0)

	frame := <-a.Frames()
	assert.Equal(t, EventTypeHPUpdate, frame.Type)

	var evt struct {
		Type    string          `json:"type"`
		DuelID  uuid.UUID       `json:"duel_id"`
		Payload HPUpdatePayload `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(frame.Data, &evt))
	assert.Equal(t, duelA, evt.DuelID)
	assert.Equal(t, 450, evt.Payload.ChallengerHP)
}

func TestHub_FailedSinkIsPrunedAndOthersStillReceive(t *testing.T) {
	hub := NewHub()
	duelID := uuid.New()

	good := NewChannelSink(4)
	bad := &failingSink{}
	hub.Subscribe(duelID, good)
	hub.Subscribe(duelID, bad)
	require.Equal(t, 2, hub.SinkCount(duelID))

	hub.Publish(duelID, EventTypeNewComment, map[string]string{"text": "hi"})

	assert.Len(t, good.Frames(), 1)
	assert.Equal(t, 1, hub.SinkCount(duelID))
	assert.True(t, bad.isClosed())
}

func TestHub_SlowViewerDropped(t *testing.T) {
	hub := NewHub()
	duelID := uuid.New()

	slow := NewChannelSink(1)
	hub.Subscribe(duelID, slow)

	hub.Publish(duelID, EventTypeHeartbeat, nil)
	hub.Publish(duelID, EventTypeHeartbeat, nil)

	assert.Equal(t, 0, hub.SinkCount(duelID))
	assert.Equal(t, 0, hub.DuelCount())

	// buffered frame is still drained, then the channel reports closed
	_, ok := <-slow.Frames()
	assert.True(t, ok)
	_, ok = <-slow.Frames()
	assert.False(t, ok)
}

func TestHub_UnsubscribeDropsEmptyDuel(t *testing.T) {
	hub := NewHub()
	duelID := uuid.New()
	s := NewChannelSink(1)

	hub.Subscribe(duelID, s)
	hub.Subscribe(duelID, s)
	assert.Equal(t, 1, hub.SinkCount(duelID))

	hub.Unsubscribe(duelID, s)
	hub.Unsubscribe(duelID, s)
	assert.Equal(t, 0, hub.DuelCount())
}

func TestHub_PublishWithoutViewersIsNoop(t *testing.T) {
	hub := NewHub()
	assert.NotPanics(t, func() {
		hub.Publish(uuid.New(), EventTypeDuelEnded, nil)
	})
}

func TestHub_ConcurrentPublishAndSubscribe(t *testing.T) {
	hub := NewHub()
	duelID := uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s := NewChannelSink(128)
			hub.Subscribe(duelID, s)
			hub.Unsubscribe(duelID, s)
			s.Close()
		}()
		go func() {
			defer wg.Done()
			hub.Publish(duelID, EventTypeHeartbeat, nil)
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, hub.SinkCount(duelID))
}

func TestHub_CloseDisconnectsEveryone(t *testing.T) {
	hub := NewHub()
	s1, s2 := NewChannelSink(1), NewChannelSink(1)
	hub.Subscribe(uuid.New(), s1)
	hub.Subscribe(uuid.New(), s2)

	hub.Close()

	assert.Equal(t, 0, hub.DuelCount())
	assert.ErrorIs(t, s1.Send(Frame{}), ErrSinkClosed)
	assert.ErrorIs(t, s2.Send(Frame{}), ErrSinkClosed)
}

func TestChannelSink_CloseIsIdempotent(t *testing.T) {
	s := NewChannelSink(0)
	s.Close()
	assert.NotPanics(t, s.Close)
}

func TestFormatSSEMessage(t *testing.T) {
	msg := FormatSSEMessage(Frame{ID: "1", Type: "hp_update", Data: []byte(`{"a":1}`)})
	assert.Equal(t, "id: 1\nevent: hp_update\ndata: {\"a\":1}\n\n", string(msg))
}
