package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueProcessesJobs(t *testing.T) {
	done := make(chan Job, 1)
	q := NewQueue("test", func(ctx context.Context, job Job) error { return nil }, QueueConfig{
		Workers: 2,
		OnDone: func(job Job, err error) {
			assert.NoError(t, err)
			done <- job
		},
	})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "j1", Type: "finance", CenterID: "c1"}))
	select {
	case job := <-done:
		assert.Equal(t, "j1", job.ID)
		assert.Equal(t, "c1", job.CenterID)
		assert.False(t, job.Enqueued.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("job not processed")
	}
}

func TestQueueRetriesThenGivesUp(t *testing.T) {
	var calls int32
	failure := errors.New("boom")
	done := make(chan error, 1)
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		atomic.AddInt32(&calls, 1)
		return failure
	}, QueueConfig{
		MaxRetries: 2,
		RetryDelay: time.Millisecond,
		OnDone:     func(job Job, err error) { done <- err },
	})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "j1"}))
	select {
	case err := <-done:
		assert.ErrorIs(t, err, failure)
		assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	case <-time.After(2 * time.Second):
		t.Fatal("job did not finish")
	}
}

func TestQueueEnqueueBeforeStart(t *testing.T) {
	q := NewQueue("idle", func(ctx context.Context, job Job) error { return nil }, QueueConfig{})
	err := q.Enqueue(Job{ID: "j1"})
	assert.ErrorIs(t, err, ErrQueueClosed)
	assert.Equal(t, 0, q.Pending())
}
