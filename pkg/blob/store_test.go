package blob

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openBackends returns each Store implementation that can run without
// external services.
func openBackends(t *testing.T) map[string]Store {
	t.Helper()

	boltStore, err := NewBoltStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { boltStore.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"bolt":   boltStore,
	}
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()

	for name, store := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			value := json.RawMessage(`{"morts":2,"date":"2026-09-01"}`)
			require.NoError(t, store.Set(ctx, "farmData/f1/dailyLog.json", value))

			got, err := store.Get(ctx, "farmData/f1/dailyLog.json")
			require.NoError(t, err)
			assert.JSONEq(t, string(value), string(got))
		})
	}
}

func TestStore_GetMissingKey(t *testing.T) {
	ctx := context.Background()

	for name, store := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get(ctx, "farms/missing.json")
			assert.ErrorIs(t, err, ErrKeyNotFound)
		})
	}
}

func TestStore_OverwriteIsLastWriteWins(t *testing.T) {
	ctx := context.Background()

	for name, store := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Set(ctx, "k", json.RawMessage(`[1]`)))
			require.NoError(t, store.Set(ctx, "k", json.RawMessage(`[1,2]`)))

			got, err := store.Get(ctx, "k")
			require.NoError(t, err)
			assert.JSONEq(t, `[1,2]`, string(got))
		})
	}
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()

	for name, store := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Set(ctx, "k", json.RawMessage(`{}`)))
			require.NoError(t, store.Delete(ctx, "k"))

			_, err := store.Get(ctx, "k")
			assert.ErrorIs(t, err, ErrKeyNotFound)

			// deleting an absent key is not an error
			assert.NoError(t, store.Delete(ctx, "k"))
		})
	}
}

func TestStore_ListByPrefix(t *testing.T) {
	ctx := context.Background()

	for name, store := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Set(ctx, "farms/a.json", json.RawMessage(`{}`)))
			require.NoError(t, store.Set(ctx, "farms/b.json", json.RawMessage(`{}`)))
			require.NoError(t, store.Set(ctx, "users/a.json", json.RawMessage(`{}`)))

			keys, err := store.List(ctx, "farms/")
			require.NoError(t, err)
			assert.Equal(t, []string{"farms/a.json", "farms/b.json"}, keys)

			keys, err = store.List(ctx, "reminders/")
			require.NoError(t, err)
			assert.Empty(t, keys)
		})
	}
}
