// Package syncer pushes ledger snapshots to the remote store in the
// background. Pending pushes are coalesced per user: a full replace is
// idempotent, so only the newest snapshot is worth sending.
package syncer

import (
	"context"
	"sync"

	"github.com/powdermilkjuno/habit-tracker/internal"
)

type Status string

const (
	StatusIdle    Status = "idle"
	StatusSyncing Status = "syncing"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

type job struct {
	seq     uint64
	entries []internal.Entry
}

// Replacer is the remote half of a full-replace sync.
type Replacer interface {
	ReplaceEntries(ctx context.Context, userID string, entries []internal.Entry) error
}

type Worker struct {
	remote Replacer
	logger internal.Logger

	mu       sync.Mutex
	pending  map[string]job
	order    []string
	seq      uint64
	applied  map[string]uint64
	locks    map[string]*sync.Mutex
	status   map[string]Status
	lastErr  map[string]error
	signal   chan struct{}
	shutdown chan struct{}
	done     chan struct{}
	closed   bool
}

func NewWorker(remote Replacer, logger internal.Logger) *Worker {
	w := &Worker{
		remote:   remote,
		logger:   logger,
		pending:  make(map[string]job),
		applied:  make(map[string]uint64),
		locks:    make(map[string]*sync.Mutex),
		status:   make(map[string]Status),
		lastErr:  make(map[string]error),
		signal:   make(chan struct{}, 1),
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	go w.run()
	return w
}

// Enqueue schedules a full replace for userID and returns immediately.
func (w *Worker) Enqueue(userID string, entries []internal.Entry) {
	snapshot := append([]internal.Entry{}, entries...)

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		w.logger.Warnf("syncer: dropped push for %s after shutdown", userID)
		return
	}
	if _, queued := w.pending[userID]; !queued {
		w.order = append(w.order, userID)
	}
	w.seq++
	w.pending[userID] = job{seq: w.seq, entries: snapshot}
	w.mu.Unlock()

	select {
	case w.signal <- struct{}{}:
	default:
	}
}

// SyncNow pushes entries synchronously, superseding anything queued for userID.
func (w *Worker) SyncNow(ctx context.Context, userID string, entries []internal.Entry) error {
	snapshot := append([]internal.Entry{}, entries...)
	w.mu.Lock()
	delete(w.pending, userID)
	w.seq++
	j := job{seq: w.seq, entries: snapshot}
	w.mu.Unlock()
	return w.push(ctx, userID, j)
}

func (w *Worker) Status(userID string) Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	if s, ok := w.status[userID]; ok {
		return s
	}
	return StatusIdle
}

func (w *Worker) LastError(userID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr[userID]
}

// Pending reports how many users have a push queued.
func (w *Worker) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

func (w *Worker) run() {
	defer close(w.done)
	for {
		select {
		case <-w.signal:
			w.drain(context.Background())
		case <-w.shutdown:
			return
		}
	}
}

func (w *Worker) drain(ctx context.Context) {
	for {
		userID, j, ok := w.next()
		if !ok {
			return
		}
		// failures are recorded in the status map; there is no retry
		_ = w.push(ctx, userID, j)
	}
}

func (w *Worker) next() (string, job, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for len(w.order) > 0 {
		userID := w.order[0]
		w.order = w.order[1:]
		if j, ok := w.pending[userID]; ok {
			delete(w.pending, userID)
			return userID, j, true
		}
	}
	return "", job{}, false
}

// userLock serializes pushes for one user.
func (w *Worker) userLock(userID string) *sync.Mutex {
	w.mu.Lock()
	defer w.mu.Unlock()
	l, ok := w.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		w.locks[userID] = l
	}
	return l
}

// push runs one full replace while holding the user's lock. A job older
// than the last one attempted for the user is skipped, so a stale snapshot
// never lands after a newer one.
func (w *Worker) push(ctx context.Context, userID string, j job) error {
	l := w.userLock(userID)
	l.Lock()
	defer l.Unlock()

	w.mu.Lock()
	if j.seq <= w.applied[userID] {
		w.mu.Unlock()
		w.logger.Debugf("syncer: skipped stale push for %s", userID)
		return nil
	}
	w.applied[userID] = j.seq
	w.status[userID] = StatusSyncing
	w.lastErr[userID] = nil
	w.mu.Unlock()

	entries := j.entries
	if err := w.remote.ReplaceEntries(ctx, userID, entries); err != nil {
		syncErr := internal.NewSyncError(err, "sync entries")
		w.logger.Errorf("syncer: push for %s failed: %v", userID, err)
		w.setStatus(userID, StatusError, syncErr)
		return syncErr
	}
	w.logger.Debugf("syncer: pushed %d entries for %s", len(entries), userID)
	w.setStatus(userID, StatusSuccess, nil)
	return nil
}

func (w *Worker) setStatus(userID string, s Status, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.status[userID] = s
	w.lastErr[userID] = err
}

// Close flushes queued pushes synchronously and stops the worker.
func (w *Worker) Close(ctx context.Context) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	w.mu.Unlock()

	close(w.shutdown)
	<-w.done
	w.drain(ctx)
}
