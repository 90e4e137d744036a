package client

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cluckhub/cluckhub/pkg/blob"
	"github.com/cluckhub/cluckhub/pkg/logger"
)

// fakeRemote is an in-memory gateway endpoint recording pushes and pulls.
type fakeRemote struct {
	mu        sync.Mutex
	doc       json.RawMessage
	pushes    []json.RawMessage
	pulls     int
	cancelled int
	block     chan struct{}
}

func (r *fakeRemote) Pull(ctx context.Context) (json.RawMessage, error) {
	r.mu.Lock()
	r.pulls++
	block := r.block
	doc := r.doc
	r.mu.Unlock()

	if block != nil {
		select {
		case <-ctx.Done():
			r.mu.Lock()
			r.cancelled++
			r.mu.Unlock()
			return nil, ctx.Err()
		case <-block:
		}
	}
	return doc, nil
}

func (r *fakeRemote) Push(ctx context.Context, doc json.RawMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.doc = doc
	r.pushes = append(r.pushes, doc)
	return nil
}

func (r *fakeRemote) pushCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pushes)
}

func (r *fakeRemote) cancelledCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancelled
}

func newTestSync(t *testing.T, remote Remote) (*SliceSync, *Store) {
	t.Helper()

	store, err := NewStore(context.Background(), blob.NewMemoryStore())
	require.NoError(t, err)

	sync := NewSliceSync(SliceSyncConfig{
		Store:        store,
		Key:          "dailyLog",
		Remote:       remote,
		Logger:       logger.NewTestLogger(t),
		Debounce:     20 * time.Millisecond,
		PollInterval: time.Hour,
	})
	t.Cleanup(func() {
		sync.Close()
		store.Close()
	})
	return sync, store
}

func waitFor(t *testing.T, condition func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestSliceSync_InitialPullOverwritesLocal(t *testing.T) {
	remote := &fakeRemote{doc: json.RawMessage(`[{"eggs":3}]`)}
	_, store := newTestSync(t, remote)

	waitFor(t, func() bool {
		return structurallyEqual(store.Get("dailyLog"), remote.doc)
	})
}

func TestSliceSync_DebounceCoalescesBurst(t *testing.T) {
	remote := &fakeRemote{}
	_, store := newTestSync(t, remote)

	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		doc, err := json.Marshal([]map[string]int{{"eggs": i}})
		require.NoError(t, err)
		require.NoError(t, store.SetState(ctx, map[string]json.RawMessage{"dailyLog": doc}))
	}

	waitFor(t, func() bool { return remote.pushCount() > 0 })
	time.Sleep(100 * time.Millisecond)

	require.Equal(t, 1, remote.pushCount(), "a burst of edits collapses into one push")
	assert.JSONEq(t, `[{"eggs":5}]`, string(remote.pushes[0]))
}

func TestSliceSync_UnchangedPayloadSuppressed(t *testing.T) {
	remote := &fakeRemote{}
	sync, store := newTestSync(t, remote)

	ctx := context.Background()
	doc := json.RawMessage(`[{"eggs":9}]`)
	require.NoError(t, store.SetState(ctx, map[string]json.RawMessage{"dailyLog": doc}))
	waitFor(t, func() bool { return remote.pushCount() == 1 })

	// same bytes again: the store itself skips the no-op, and even a forced
	// schedule would be suppressed against the last pushed payload
	require.NoError(t, store.SetState(ctx, map[string]json.RawMessage{"dailyLog": doc}))
	sync.schedulePush()
	waitFor(t, func() bool { return sync.Status() == StatusSynced })

	assert.Equal(t, 1, remote.pushCount())
}

func TestSliceSync_SupersededPullCancelled(t *testing.T) {
	remote := &fakeRemote{
		doc:   json.RawMessage(`[{"eggs":1}]`),
		block: make(chan struct{}),
	}
	sync, _ := newTestSync(t, remote)

	// the constructor's pull is in flight and blocked; a newer pull cancels it
	waitFor(t, func() bool {
		remote.mu.Lock()
		defer remote.mu.Unlock()
		return remote.pulls >= 1
	})
	sync.TriggerPull()

	waitFor(t, func() bool { return remote.cancelledCount() >= 1 })
}

func TestSliceSync_PullErrorSwallowed(t *testing.T) {
	remote := &failingRemote{}
	sync, _ := newTestSync(t, remote)

	sync.TriggerPull()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, StatusSynced, sync.Status())
}

func TestSliceSync_CloseFlushesPendingPush(t *testing.T) {
	remote := &fakeRemote{}
	store, err := NewStore(context.Background(), blob.NewMemoryStore())
	require.NoError(t, err)
	defer store.Close()

	sync := NewSliceSync(SliceSyncConfig{
		Store:        store,
		Key:          "dailyLog",
		Remote:       remote,
		Logger:       logger.NewTestLogger(t),
		Debounce:     time.Hour, // never fires on its own
		PollInterval: time.Hour,
	})

	require.NoError(t, store.SetState(context.Background(),
		map[string]json.RawMessage{"dailyLog": json.RawMessage(`[{"eggs":2}]`)}))
	sync.Close()

	require.Equal(t, 1, remote.pushCount())
	assert.JSONEq(t, `[{"eggs":2}]`, string(remote.pushes[0]))
}

type failingRemote struct{}

func (r *failingRemote) Pull(ctx context.Context) (json.RawMessage, error) {
	return nil, context.DeadlineExceeded
}

func (r *failingRemote) Push(ctx context.Context, doc json.RawMessage) error {
	return context.DeadlineExceeded
}
