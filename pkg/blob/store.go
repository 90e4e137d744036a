// Package blob provides the flat key to JSON document store backing all
// persistence. Keys are hierarchical strings such as "farms/{id}.json" or
// "farmData/{farmId}/{key}.json"; values are raw JSON documents. There are
// no transactions and no secondary indices: each Set is an atomic,
// last-write-wins overwrite of a single key.
package blob

import (
	"context"
	"encoding/json"
	"errors"
)

//go:generate mockgen -destination=mocks/mock_store.go -package=mocks github.com/cluckhub/cluckhub/pkg/blob Store

// ErrKeyNotFound is returned by Get when no document exists under the key.
var ErrKeyNotFound = errors.New("blob: key not found")

// Store is the minimal key/value interface every backend implements.
type Store interface {
	// Get returns the document stored under key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) (json.RawMessage, error)

	// Set stores value under key, overwriting any previous document.
	Set(ctx context.Context, key string, value json.RawMessage) error

	// Delete removes the document under key. Deleting an absent key is not
	// an error.
	Delete(ctx context.Context, key string) error

	// List returns all keys with the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)

	// Close releases the backend's resources.
	Close() error
}
