package client

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"

	"github.com/tidwall/gjson"

	"github.com/cluckhub/cluckhub/internal/domain"
	"github.com/cluckhub/cluckhub/pkg/blob"
)

// selectedFarmKey holds the id of the farm the client is currently working
// against. Normalization guarantees the key exists.
const selectedFarmKey = "selectedFarm"

// Subscriber receives the key and new value of every state change,
// synchronously, on the mutating goroutine.
type Subscriber func(key string, value json.RawMessage)

// Store is the process-wide client state: one JSON document per slice name,
// hydrated from durable local storage at startup and re-persisted on every
// change. All access is mutex-confined; subscribers are notified while the
// lock is held, so they must not call back into the store.
type Store struct {
	mu          sync.Mutex
	state       map[string]json.RawMessage
	local       blob.Store
	subscribers map[int]Subscriber
	nextSubID   int
}

// NewStore hydrates the state from the given local blob store, then runs the
// normalization pass. Pass a bolt-backed store for durability or a memory
// store for throwaway sessions.
func NewStore(ctx context.Context, local blob.Store) (*Store, error) {
	s := &Store{
		state:       make(map[string]json.RawMessage),
		local:       local,
		subscribers: make(map[int]Subscriber),
	}

	keys, err := local.List(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, key := range keys {
		value, err := local.Get(ctx, key)
		if err != nil {
			continue
		}
		s.state[key] = value
	}

	s.normalize(ctx)
	return s, nil
}

// normalize coerces every known list slice to an empty list when absent or
// corrupted, settings to an empty object, and guarantees a farm selection key.
func (s *Store) normalize(ctx context.Context) {
	for _, key := range domain.SliceKeys() {
		def, _ := domain.SliceDefinitionFor(key)
		if healthySlice(s.state[key], def.Shape) {
			continue
		}
		fallback := json.RawMessage("[]")
		if def.Shape == domain.ShapeObject {
			fallback = json.RawMessage("{}")
		}
		s.state[key] = fallback
		_ = s.local.Set(ctx, key, fallback)
	}

	if _, ok := s.state[selectedFarmKey]; !ok {
		selection := json.RawMessage(`""`)
		if farms := gjson.ParseBytes(s.state["farms"]); farms.IsArray() {
			if first := farms.Get("0.id"); first.Exists() {
				encoded, err := json.Marshal(first.String())
				if err == nil {
					selection = encoded
				}
			}
		}
		s.state[selectedFarmKey] = selection
		_ = s.local.Set(ctx, selectedFarmKey, selection)
	}
}

func healthySlice(value json.RawMessage, shape domain.SliceShape) bool {
	if value == nil || !gjson.ValidBytes(value) {
		return false
	}
	parsed := gjson.ParseBytes(value)
	if shape == domain.ShapeObject {
		return parsed.IsObject()
	}
	return parsed.IsArray()
}

// Get returns the current value of one slice, or nil when absent.
func (s *Store) Get(key string) json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return bytes.Clone(s.state[key])
}

// State returns a snapshot of the whole state map.
func (s *Store) State() map[string]json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make(map[string]json.RawMessage, len(s.state))
	for key, value := range s.state {
		snapshot[key] = bytes.Clone(value)
	}
	return snapshot
}

// SetState shallow-merges the patch into the state, persists each changed
// key, and synchronously notifies subscribers per changed key.
func (s *Store) SetState(ctx context.Context, patch map[string]json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range patch {
		if bytes.Equal(s.state[key], value) {
			continue
		}
		stored := bytes.Clone(value)
		s.state[key] = stored
		if err := s.local.Set(ctx, key, stored); err != nil {
			return err
		}
		for _, notify := range s.subscribers {
			notify(key, stored)
		}
	}
	return nil
}

// Subscribe registers a change listener and returns its unsubscribe func.
func (s *Store) Subscribe(fn Subscriber) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// Close releases the underlying local storage.
func (s *Store) Close() error {
	return s.local.Close()
}
