package client

import (
	"bytes"
	"context"
	"encoding/json"
	"reflect"
	"sync"
	"time"

	"github.com/cluckhub/cluckhub/pkg/logger"
)

// SyncStatus is the coarse indicator surfaced to the UI. Sync failures are
// swallowed, so these two states are all a user ever sees.
type SyncStatus string

const (
	StatusSaving SyncStatus = "Saving…"
	StatusSynced SyncStatus = "Synced"
)

const (
	defaultDebounce     = 500 * time.Millisecond
	defaultPollInterval = 30 * time.Second
)

// Remote is one composite key on the gateway: a pull returns the stored
// document (or JSON null) and a push overwrites it.
type Remote interface {
	Pull(ctx context.Context) (json.RawMessage, error)
	Push(ctx context.Context, doc json.RawMessage) error
}

// SliceSyncConfig configures one slice's cloud sync.
type SliceSyncConfig struct {
	Store  *Store
	Key    string
	Remote Remote
	Logger logger.Logger

	// Debounce delays the push after a local change. Zero means the default.
	Debounce time.Duration
	// PollInterval spaces the background pulls. Zero means the default.
	PollInterval time.Duration
}

// SliceSync keeps one local slice and its gateway document converging: pulls
// on start, focus and a fixed interval overwrite local state when the remote
// value differs; local changes schedule a debounced push, suppressed when the
// payload is unchanged since the last successful push. Pull and push failures
// are swallowed; the next scheduled attempt is the retry.
type SliceSync struct {
	store  *Store
	key    string
	remote Remote
	logger logger.Logger

	debounce     time.Duration
	pollInterval time.Duration

	mu         sync.Mutex
	status     SyncStatus
	lastPushed json.RawMessage
	pushTimer  *time.Timer
	pullCancel context.CancelFunc
	closed     bool

	unsubscribe func()
	baseCtx     context.Context
	baseCancel  context.CancelFunc
	wg          sync.WaitGroup
}

// NewSliceSync starts syncing: an immediate pull, the poll ticker, and the
// store subscription feeding the debounced push.
func NewSliceSync(cfg SliceSyncConfig) *SliceSync {
	if cfg.Debounce <= 0 {
		cfg.Debounce = defaultDebounce
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}

	baseCtx, baseCancel := context.WithCancel(context.Background())
	s := &SliceSync{
		store:        cfg.Store,
		key:          cfg.Key,
		remote:       cfg.Remote,
		logger:       cfg.Logger,
		debounce:     cfg.Debounce,
		pollInterval: cfg.PollInterval,
		status:       StatusSynced,
		baseCtx:      baseCtx,
		baseCancel:   baseCancel,
	}

	s.unsubscribe = cfg.Store.Subscribe(func(key string, _ json.RawMessage) {
		if key == s.key {
			s.schedulePush()
		}
	})

	s.TriggerPull()

	s.wg.Add(1)
	go s.pollLoop()

	return s
}

// Status reports the coarse sync indicator.
func (s *SliceSync) Status() SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// TriggerPull starts a pull, cancelling any in-flight one. Call it on window
// focus or visibility regain.
func (s *SliceSync) TriggerPull() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.pullCancel != nil {
		s.pullCancel()
	}
	ctx, cancel := context.WithCancel(s.baseCtx)
	s.pullCancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		s.pull(ctx)
	}()
}

func (s *SliceSync) pollLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.baseCtx.Done():
			return
		case <-ticker.C:
			s.TriggerPull()
		}
	}
}

func (s *SliceSync) pull(ctx context.Context) {
	remote, err := s.remote.Pull(ctx)
	if err != nil {
		if s.logger != nil {
			s.logger.WithField("key", s.key).Debug("Slice pull failed: " + err.Error())
		}
		return
	}
	if len(remote) == 0 || bytes.Equal(remote, []byte("null")) {
		return
	}

	local := s.store.Get(s.key)
	if structurallyEqual(local, remote) {
		return
	}

	// remember what the server holds so the echo does not push straight back
	s.mu.Lock()
	s.lastPushed = bytes.Clone(remote)
	s.mu.Unlock()

	if err := s.store.SetState(ctx, map[string]json.RawMessage{s.key: remote}); err != nil {
		if s.logger != nil {
			s.logger.WithField("key", s.key).Debug("Slice pull apply failed: " + err.Error())
		}
	}
}

// structurallyEqual compares two JSON documents ignoring formatting and
// object key order.
func structurallyEqual(a, b json.RawMessage) bool {
	if bytes.Equal(a, b) {
		return true
	}
	var left, right interface{}
	if json.Unmarshal(a, &left) != nil || json.Unmarshal(b, &right) != nil {
		return false
	}
	return reflect.DeepEqual(left, right)
}

// schedulePush arms the debounce timer, restarting it on every change so a
// burst of edits collapses into one push.
func (s *SliceSync) schedulePush() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.status = StatusSaving
	if s.pushTimer != nil {
		s.pushTimer.Stop()
	}
	s.pushTimer = time.AfterFunc(s.debounce, s.flush)
}

// flush pushes the current value unless it matches the last successful push.
func (s *SliceSync) flush() {
	value := s.store.Get(s.key)

	s.mu.Lock()
	if value == nil || bytes.Equal(value, s.lastPushed) {
		s.status = StatusSynced
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	err := s.remote.Push(s.baseCtx, value)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		if s.logger != nil {
			s.logger.WithField("key", s.key).Debug("Slice push failed: " + err.Error())
		}
		return
	}
	s.lastPushed = value
	s.status = StatusSynced
}

// Close flushes any pending push, then stops the poll loop and in-flight
// pulls.
func (s *SliceSync) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	pending := s.pushTimer != nil && s.pushTimer.Stop()
	if s.pullCancel != nil {
		s.pullCancel()
	}
	s.mu.Unlock()

	s.unsubscribe()
	if pending {
		s.flush()
	}
	s.baseCancel()
	s.wg.Wait()
}
