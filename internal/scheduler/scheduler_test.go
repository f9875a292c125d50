package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingTask struct {
	runs     atomic.Int32
	interval time.Duration
	err      error
}

func (c *countingTask) Run(ctx context.Context) error {
	c.runs.Add(1)
	return c.err
}

func (c *countingTask) Interval() time.Duration { return c.interval }
func (c *countingTask) Name() string            { return "counting" }

func TestScheduler_RunsImmediatelyAndOnTick(t *testing.T) {
	s := New(context.Background())
	task := &countingTask{interval: 20 * time.Millisecond}
	require.NoError(t, s.AddTask(task))

	s.Start()
	assert.Eventually(t, func() bool { return task.runs.Load() >= 3 }, time.Second, 5*time.Millisecond)
	s.Stop()

	stopped := task.runs.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, stopped, task.runs.Load())
}

func TestScheduler_TaskErrorKeepsRunning(t *testing.T) {
	s := New(context.Background())
	task := &countingTask{interval: 10 * time.Millisecond, err: errors.New("boom")}
	require.NoError(t, s.AddTask(task))

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return task.runs.Load() >= 2 }, time.Second, 5*time.Millisecond)
}

func TestScheduler_RejectsNonPositiveInterval(t *testing.T) {
	s := New(context.Background())

	for _, interval := range []time.Duration{0, -time.Second} {
		err := s.AddTask(&countingTask{interval: interval})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "interval must be positive")
	}

	// Start with no accepted tasks must not panic on a zero ticker
	s.Start()
	s.Stop()
	assert.Empty(t, s.tasks)
}
