package syncer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/powdermilkjuno/habit-tracker/internal"
)

type fakeRemote struct {
	mu    sync.Mutex
	calls map[string][][]internal.Entry
	fail  error
	block chan struct{}
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{calls: make(map[string][][]internal.Entry)}
}

func (f *fakeRemote) ReplaceEntries(ctx context.Context, userID string, entries []internal.Entry) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.calls[userID] = append(f.calls[userID], entries)
	return nil
}

func (f *fakeRemote) last(userID string) []internal.Entry {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.calls[userID]
	if len(c) == 0 {
		return nil
	}
	return c[len(c)-1]
}

func entries(ids ...string) []internal.Entry {
	out := make([]internal.Entry, len(ids))
	for i, id := range ids {
		out[i] = internal.Entry{ID: id, Visible: true}
	}
	return out
}

func TestWorker_EnqueuePushesInBackground(t *testing.T) {
	remote := newFakeRemote()
	w := NewWorker(remote, internal.NewNopLogger())
	defer w.Close(context.Background())

	w.Enqueue("u1", entries("a", "b"))

	require.Eventually(t, func() bool {
		return w.Status("u1") == StatusSuccess
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, entries("a", "b"), remote.last("u1"))
}

func TestWorker_CoalescesToLatestSnapshot(t *testing.T) {
	remote := newFakeRemote()
	remote.block = make(chan struct{})
	w := NewWorker(remote, internal.NewNopLogger())

	// first push blocks inside the remote; the next two queue up behind it
	w.Enqueue("u1", entries("a"))
	require.Eventually(t, func() bool { return w.Status("u1") == StatusSyncing }, time.Second, time.Millisecond)
	w.Enqueue("u1", entries("a", "b"))
	w.Enqueue("u1", entries("a", "b", "c"))
	assert.Equal(t, 1, w.Pending())

	close(remote.block)
	w.Close(context.Background())

	remote.mu.Lock()
	defer remote.mu.Unlock()
	require.Len(t, remote.calls["u1"], 2)
	assert.Equal(t, entries("a", "b", "c"), remote.calls["u1"][1])
}

func TestWorker_FailureSetsErrorStatus(t *testing.T) {
	remote := newFakeRemote()
	remote.fail = errors.New("connection refused")
	w := NewWorker(remote, internal.NewNopLogger())
	defer w.Close(context.Background())

	err := w.SyncNow(context.Background(), "u1", entries("a"))
	require.Error(t, err)
	assert.True(t, internal.IsKind(err, internal.KindSync))
	assert.Equal(t, StatusError, w.Status("u1"))
	assert.Error(t, w.LastError("u1"))

	remote.mu.Lock()
	remote.fail = nil
	remote.mu.Unlock()
	require.NoError(t, w.SyncNow(context.Background(), "u1", entries("a")))
	assert.Equal(t, StatusSuccess, w.Status("u1"))
	assert.NoError(t, w.LastError("u1"))
}

func TestWorker_StatusDefaultsToIdle(t *testing.T) {
	w := NewWorker(newFakeRemote(), internal.NewNopLogger())
	defer w.Close(context.Background())
	assert.Equal(t, StatusIdle, w.Status("nobody"))
}

func TestWorker_CloseFlushesAndRejectsLateWork(t *testing.T) {
	remote := newFakeRemote()
	w := NewWorker(remote, internal.NewNopLogger())
	w.Enqueue("u1", entries("a"))
	w.Close(context.Background())
	assert.Equal(t, entries("a"), remote.last("u1"))

	w.Enqueue("u2", entries("z"))
	assert.Nil(t, remote.last("u2"))
	w.Close(context.Background())
}

func TestWorker_SyncNowWaitsForInFlightPush(t *testing.T) {
	remote := newFakeRemote()
	remote.block = make(chan struct{})
	w := NewWorker(remote, internal.NewNopLogger())

	w.Enqueue("u1", entries("a"))
	require.Eventually(t, func() bool { return w.Status("u1") == StatusSyncing }, time.Second, time.Millisecond)

	done := make(chan error, 1)
	go func() { done <- w.SyncNow(context.Background(), "u1", entries("a", "b")) }()

	// the manual push cannot start while the background one holds the user
	select {
	case err := <-done:
		t.Fatalf("SyncNow returned before the in-flight push finished: %v", err)
	case <-time.After(20 * time.Millisecond):
	}

	close(remote.block)
	require.NoError(t, <-done)
	w.Close(context.Background())

	remote.mu.Lock()
	defer remote.mu.Unlock()
	require.Len(t, remote.calls["u1"], 2)
	assert.Equal(t, entries("a", "b"), remote.calls["u1"][1])
	assert.Equal(t, StatusSuccess, w.Status("u1"))
}

func TestWorker_SkipsOlderSnapshot(t *testing.T) {
	remote := newFakeRemote()
	w := NewWorker(remote, internal.NewNopLogger())
	defer w.Close(context.Background())

	require.NoError(t, w.push(context.Background(), "u1", job{seq: 2, entries: entries("a", "b")}))
	require.NoError(t, w.push(context.Background(), "u1", job{seq: 1, entries: entries("a")}))

	remote.mu.Lock()
	defer remote.mu.Unlock()
	require.Len(t, remote.calls["u1"], 1)
	assert.Equal(t, entries("a", "b"), remote.calls["u1"][0])
}
