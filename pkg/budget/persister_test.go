package budget

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotWriter(t *testing.T) {
	t.Run("should write only the latest snapshot of a user", func(t *testing.T) {
		// given
		repo := NewStubBudgetRepo()
		writer := NewSnapshotWriter(repo)
		writer.Enqueue(1, []byte(`{"v":1}`))
		writer.Enqueue(2, []byte(`{"v":"other"}`))
		writer.Enqueue(1, []byte(`{"v":2}`))

		// when
		writer.Flush(context.Background())

		// then
		assert.Equal(t, 2, repo.Saves())
		assert.Zero(t, writer.Pending())
		data, err := repo.LoadSnapshot(context.Background(), 1)
		require.NoError(t, err)
		assert.JSONEq(t, `{"v":2}`, string(data))
	})

	t.Run("should requeue a failed write", func(t *testing.T) {
		// given
		repo := NewStubBudgetRepo()
		repo.FailSaves(errors.New("disk full"))
		writer := NewSnapshotWriter(repo)
		writer.Enqueue(1, []byte(`{"v":1}`))

		// when
		writer.Flush(context.Background())

		// then
		assert.Equal(t, 1, writer.Pending())

		repo.FailSaves(nil)
		writer.Flush(context.Background())
		assert.Zero(t, writer.Pending())
		assert.Equal(t, 1, repo.Saves())
	})

	t.Run("should retry a failed write without a new enqueue", func(t *testing.T) {
		// given
		repo := NewStubBudgetRepo()
		repo.FailSaves(errors.New("connection refused"))
		writer := NewSnapshotWriter(repo)
		writer.retryBase = 10 * time.Millisecond
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() { _ = writer.Run(ctx) }()

		// when
		writer.Enqueue(1, []byte(`{"v":1}`))
		assert.Eventually(t, func() bool {
			writer.mu.Lock()
			defer writer.mu.Unlock()
			return writer.failures > 0
		}, time.Second, 5*time.Millisecond)
		repo.FailSaves(nil)

		// then
		assert.Eventually(t, func() bool { return repo.Saves() == 1 }, time.Second, 5*time.Millisecond)
		assert.Zero(t, writer.Pending())
	})

	t.Run("should back off between retries", func(t *testing.T) {
		// given
		writer := NewSnapshotWriter(NewStubBudgetRepo())

		// then
		assert.Equal(t, 500*time.Millisecond, writer.backoff(1))
		assert.Equal(t, time.Second, writer.backoff(2))
		assert.Equal(t, 2*time.Second, writer.backoff(3))
		assert.Equal(t, 30*time.Second, writer.backoff(10))
		assert.Equal(t, 30*time.Second, writer.backoff(100))
	})

	t.Run("should keep a single retry pending", func(t *testing.T) {
		// given
		writer := NewSnapshotWriter(NewStubBudgetRepo())
		writer.retryBase = time.Hour

		// when
		writer.scheduleRetry()
		first := writer.retry
		writer.scheduleRetry()

		// then
		writer.mu.Lock()
		defer writer.mu.Unlock()
		assert.Equal(t, 2, writer.failures)
		assert.Same(t, first, writer.retry)
		assert.True(t, writer.retry.Stop())
	})

	t.Run("should not requeue over a newer snapshot", func(t *testing.T) {
		// given
		repo := NewStubBudgetRepo()
		writer := NewSnapshotWriter(repo)
		failing := &enqueueOnSave{RepositoryStub: repo, writer: writer, err: errors.New("timeout")}
		writer.repo = failing
		writer.Enqueue(1, []byte(`{"v":1}`))

		// when
		writer.Flush(context.Background())
		failing.err = nil
		writer.Flush(context.Background())

		// then
		data, err := repo.LoadSnapshot(context.Background(), 1)
		require.NoError(t, err)
		assert.JSONEq(t, `{"v":"newer"}`, string(data))
		assert.Zero(t, writer.Pending())
	})

	t.Run("should write while running and flush on shutdown", func(t *testing.T) {
		// given
		repo := NewStubBudgetRepo()
		writer := NewSnapshotWriter(repo)
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- writer.Run(ctx) }()

		// when
		writer.Enqueue(1, []byte(`{"v":1}`))
		assert.Eventually(t, func() bool { return repo.Saves() == 1 }, time.Second, 5*time.Millisecond)
		writer.Enqueue(1, []byte(`{"v":2}`))
		cancel()

		// then
		require.NoError(t, <-done)
		assert.Zero(t, writer.Pending())
		data, err := repo.LoadSnapshot(context.Background(), 1)
		require.NoError(t, err)
		assert.JSONEq(t, `{"v":2}`, string(data))
	})
}

// enqueueOnSave enqueues a newer snapshot while the first save is failing.
type enqueueOnSave struct {
	*RepositoryStub
	writer *SnapshotWriter
	err    error
}

func (r *enqueueOnSave) SaveSnapshot(ctx context.Context, userId int, data []byte) error {
	if r.err != nil {
		r.writer.Enqueue(userId, []byte(`{"v":"newer"}`))
		return r.err
	}
	return r.RepositoryStub.SaveSnapshot(ctx, userId, data)
}
