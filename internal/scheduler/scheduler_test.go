package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bothsides-platform-dev/both-sides-sub000/internal/testing/leaktest"
	"github.com/bothsides-platform-dev/both-sides-sub000/internal/worker"
)

// MockJob is a simple job for testing
type MockJob struct {
	Done chan struct{}
}

func (m *MockJob) Name() string { return "mock" }

func (m *MockJob) Process(ctx context.Context) error {
	select {
	case m.Done <- struct{}{}:
	default:
	}
	return nil
}

func TestScheduler(t *testing.T) {
	checker := leaktest.NewGoroutineChecker(t)

	pool := worker.NewPool(1, 10, time.Second)
	pool.Start()

	sched := New(pool)

	job := &MockJob{
		Done: make(chan struct{}, 10),
	}
	sched.Schedule(10*time.Millisecond, job)

	timeout := time.After(time.Second)
	runCount := 0
	for runCount < 2 {
		select {
		case <-job.Done:
			runCount++
		case <-timeout:
			t.Fatal("Timeout waiting for job execution")
		}
	}
	assert.GreaterOrEqual(t, runCount, 2)

	sched.Stop()
	sched.Stop()
	pool.Stop()
	checker.Check(1)
}
