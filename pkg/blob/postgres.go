package blob

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// PostgresStore implements Store on a single blobs table:
//
//	CREATE TABLE IF NOT EXISTS blobs (
//	    key        TEXT PRIMARY KEY,
//	    value      JSONB NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL
//	)
//
// Each Set is an upsert, so per-key last-write-wins semantics come from the
// database itself.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an open connection and ensures the blobs table exists.
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS blobs (
			key TEXT PRIMARY KEY,
			value JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create blobs table: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) (json.RawMessage, error) {
	query, args, err := sq.Select("value").
		From("blobs").
		Where(sq.Eq{"key": key}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var value []byte
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return json.RawMessage(value), nil
}

func (s *PostgresStore) Set(ctx context.Context, key string, value json.RawMessage) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO blobs (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key)
		DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at
	`, key, []byte(value), time.Now())
	return err
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	query, args, err := sq.Delete("blobs").
		Where(sq.Eq{"key": key}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	_, err = s.db.ExecContext(ctx, query, args...)
	return err
}

func (s *PostgresStore) List(ctx context.Context, prefix string) ([]string, error) {
	query, args, err := sq.Select("key").
		From("blobs").
		Where(sq.Like{"key": likePrefix(prefix)}).
		OrderBy("key").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// likePrefix escapes LIKE metacharacters so the prefix matches literally.
func likePrefix(prefix string) string {
	escaped := make([]byte, 0, len(prefix)+1)
	for i := 0; i < len(prefix); i++ {
		c := prefix[i]
		if c == '%' || c == '_' || c == '\\' {
			escaped = append(escaped, '\\')
		}
		escaped = append(escaped, c)
	}
	return string(escaped) + "%"
}
