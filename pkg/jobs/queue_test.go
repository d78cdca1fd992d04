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
	var handled atomic.Int32
	q := NewQueue("test", func(_ context.Context, _ Job) error {
		handled.Add(1)
		return nil
	}, QueueConfig{Workers: 2})
	q.Start(context.Background())
	defer q.Stop()

	for i := 0; i < 5; i++ {
		require.NoError(t, q.Enqueue(context.Background(), Job{ID: "j", Type: "noop"}))
	}
	assert.Eventually(t, func() bool { return handled.Load() == 5 }, time.Second, 5*time.Millisecond)
}

func TestQueueRetriesThenGivesUp(t *testing.T) {
	var attempts atomic.Int32
	gaveUp := make(chan Job, 1)
	q := NewQueue("retry", func(_ context.Context, _ Job) error {
		attempts.Add(1)
		return errors.New("smtp down")
	}, QueueConfig{
		MaxRetries: 2,
		RetryDelay: time.Millisecond,
		OnGiveUp:   func(j Job, _ error) { gaveUp <- j },
	})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(context.Background(), Job{ID: "mail-1", Type: "otp_mail"}))

	select {
	case j := <-gaveUp:
		assert.Equal(t, "mail-1", j.ID)
		assert.Equal(t, 3, j.Attempt)
	case <-time.After(time.Second):
		t.Fatal("job was not given up")
	}
	assert.EqualValues(t, 3, attempts.Load())
}

func TestQueueRejectsWhenNotStarted(t *testing.T) {
	q := NewQueue("idle", func(context.Context, Job) error { return nil }, QueueConfig{})
	err := q.Enqueue(context.Background(), Job{ID: "x"})
	require.ErrorIs(t, err, ErrNotStarted)
}

func TestQueueFullHonoursCallerContext(t *testing.T) {
	block := make(chan struct{})
	q := NewQueue("full", func(ctx context.Context, _ Job) error {
		select {
		case <-block:
		case <-ctx.Done():
		}
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 1})
	q.Start(context.Background())
	defer func() {
		close(block)
		q.Stop()
	}()

	require.NoError(t, q.Enqueue(context.Background(), Job{ID: "1"}))
	assert.Eventually(t, func() bool { return q.Len() == 0 }, time.Second, time.Millisecond)
	require.NoError(t, q.Enqueue(context.Background(), Job{ID: "2"}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := q.Enqueue(ctx, Job{ID: "3"})
	require.ErrorIs(t, err, ErrQueueFull)
}
