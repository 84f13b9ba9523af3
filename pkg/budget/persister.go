package budget

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// SnapshotWriter persists budget snapshots off the request path. Only the latest snapshot of
// each user is kept while a write is pending, and writes happen one at a time so an older
// snapshot never overwrites a newer one.
type SnapshotWriter struct {
	repo Repository

	mu      sync.Mutex
	pending map[int][]byte
	order   []int

	// failures counts consecutive drains with a failed write and drives the retry backoff.
	failures  int
	retry     *time.Timer
	retryBase time.Duration
	retryMax  time.Duration

	// writeMu is held for a whole drain, taking the batch included.
	writeMu sync.Mutex
	wake    chan struct{}
}

const (
	defaultRetryBase = 500 * time.Millisecond
	defaultRetryMax  = 30 * time.Second
)

func NewSnapshotWriter(repo Repository) *SnapshotWriter {
	return &SnapshotWriter{
		repo:      repo,
		pending:   map[int][]byte{},
		wake:      make(chan struct{}, 1),
		retryBase: defaultRetryBase,
		retryMax:  defaultRetryMax,
	}
}

// Enqueue schedules data as the next snapshot of userId. It never blocks.
func (w *SnapshotWriter) Enqueue(userId int, data []byte) {
	w.mu.Lock()
	if _, queued := w.pending[userId]; !queued {
		w.order = append(w.order, userId)
	}
	w.pending[userId] = data
	w.mu.Unlock()

	w.signal()
}

func (w *SnapshotWriter) signal() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Pending returns the number of users with a snapshot waiting to be written.
func (w *SnapshotWriter) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

// Run writes snapshots as they are enqueued until ctx is done, then flushes what is left.
func (w *SnapshotWriter) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			log.Info("Flushing pending budget snapshots")
			w.Flush(context.WithoutCancel(ctx))
			return nil
		case <-w.wake:
			w.Flush(ctx)
		}
	}
}

// Flush writes every pending snapshot. Failed writes are logged and queued again unless a
// newer snapshot arrived meanwhile, and a retry is scheduled with exponential backoff.
func (w *SnapshotWriter) Flush(ctx context.Context) {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()

	w.mu.Lock()
	order, pending := w.order, w.pending
	w.order, w.pending = nil, map[int][]byte{}
	w.mu.Unlock()

	failed := false
	for _, userId := range order {
		data := pending[userId]
		if err := w.repo.SaveSnapshot(ctx, userId, data); err != nil {
			log.Errorf("failed to save budget snapshot of user %d: %v", userId, err)
			w.requeue(userId, data)
			failed = true
			continue
		}
		log.Tracef("saved budget snapshot of user %d (%d bytes)", userId, len(data))
	}

	if failed {
		w.scheduleRetry()
	} else if len(order) > 0 {
		w.mu.Lock()
		w.failures = 0
		w.mu.Unlock()
	}
}

// scheduleRetry wakes the writer after the backoff delay. At most one retry is pending.
func (w *SnapshotWriter) scheduleRetry() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.failures++
	if w.retry != nil {
		return
	}
	delay := w.backoff(w.failures)
	log.Debugf("retrying budget snapshot writes in %s", delay)
	w.retry = time.AfterFunc(delay, func() {
		w.mu.Lock()
		w.retry = nil
		w.mu.Unlock()
		w.signal()
	})
}

// backoff doubles the base delay per consecutive failure, up to retryMax.
func (w *SnapshotWriter) backoff(failures int) time.Duration {
	shift := max(failures-1, 0)
	if shift >= 32 {
		return w.retryMax
	}
	return min(w.retryBase<<shift, w.retryMax)
}

func (w *SnapshotWriter) requeue(userId int, data []byte) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, newer := w.pending[userId]; newer {
		return
	}
	w.order = append(w.order, userId)
	w.pending[userId] = data
}
