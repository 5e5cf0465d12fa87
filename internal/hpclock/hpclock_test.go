package hpclock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDrain(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"same instant", start, 0},
		{"clock skew backwards", start.Add(-5 * time.Second), 0},
		{"sub-second", start.Add(999 * time.Millisecond), 0},
		{"exact seconds", start.Add(30 * time.Second), 30},
		{"floors fractional seconds", start.Add(30*time.Second + 900*time.Millisecond), 30},
		{"long turn", start.Add(2 * time.Hour), 7200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Drain(start, tt.now))
		})
	}
}

func TestDrain_Idempotent(t *testing.T) {
	start := time.Now()
	now := start.Add(42 * time.Second)
	assert.Equal(t, Drain(start, now), Drain(start, now))
}

func TestPenalty(t *testing.T) {
	tests := []struct {
		name    string
		maxHP   int
		percent int
		want    int
	}{
		{"invalid on 600", 600, InvalidPenaltyPercent, 120},
		{"counter on 600", 600, CounterPenaltyPercent, 90},
		{"floors", 61, CounterPenaltyPercent, 9},
		{"zero hp", 0, InvalidPenaltyPercent, 0},
		{"zero percent", 600, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Penalty(tt.maxHP, tt.percent))
		})
	}
}

func TestSubtract_FloorsAtZero(t *testing.T) {
	assert.Equal(t, 450, Subtract(570, 120))
	assert.Equal(t, 0, Subtract(10, 10))
	assert.Equal(t, 0, Subtract(10, 11))
}

func TestLive(t *testing.T) {
	start := time.Now()
	assert.Equal(t, 570, Live(600, start, start.Add(30*time.Second)))
	assert.Equal(t, 0, Live(20, start, start.Add(time.Minute)))
}
