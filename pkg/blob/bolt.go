package blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	bolt "go.etcd.io/bbolt"
)

var bucketBlobs = []byte("blobs")

// BoltStore implements Store using a single-file BoltDB database. It is the
// default backend: no external services, one bucket, one key per document.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (or creates) the database file under dataDir.
func NewBoltStore(dataDir string) (*BoltStore, error) {
	dbPath := filepath.Join(dataDir, "cluckhub.db")

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketBlobs); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucketBlobs, err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Get(ctx context.Context, key string) (json.RawMessage, error) {
	var value []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketBlobs).Get([]byte(key))
		if data == nil {
			return ErrKeyNotFound
		}
		// data is only valid inside the transaction
		value = bytes.Clone(data)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return json.RawMessage(value), nil
}

func (s *BoltStore) Set(ctx context.Context, key string, value json.RawMessage) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketBlobs).Put([]byte(key), value)
	})
}

func (s *BoltStore) Delete(ctx context.Context, key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketBlobs).Delete([]byte(key))
	})
}

func (s *BoltStore) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketBlobs).Cursor()
		p := []byte(prefix)
		for k, _ := c.Seek(p); k != nil && bytes.HasPrefix(k, p); k, _ = c.Next() {
			keys = append(keys, string(k))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
