// Package postgres provides a pgx-backed key-value store that satisfies the
// kv.Store contract used by the account repository.
//
// It is intentionally small and explicit: a single kv_documents table keyed
// by the logical document name, with the JSON payload in a jsonb column.
// EnsureSchema creates the table on startup so local runs need no separate
// migration step.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finflow/finflow/internal/errs"
	"github.com/finflow/finflow/internal/kv"
)

// Store holds a pgx connection pool. All methods are safe for concurrent use.
type Store struct {
	pool *pgxpool.Pool
}

// Open establishes a pgx pool using the provided connection string and
// verifies connectivity before returning.
func Open(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, storageErr(err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ready pings the pool to verify connectivity.
func (s *Store) Ready(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return storageErr(err)
	}
	return nil
}

// EnsureSchema creates the kv_documents table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
        create table if not exists kv_documents (
            key        text primary key,
            doc        jsonb not null,
            updated_at timestamptz not null default now()
        )
    `)
	if err != nil {
		return storageErr(err)
	}
	return nil
}

// Get implements kv.Store.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx, `select doc from kv_documents where key = $1`, key).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, storageErr(err)
	}
	return doc, true, nil
}

// Put implements kv.Store by upserting the document for key.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.pool.Exec(ctx, `
        insert into kv_documents (key, doc, updated_at)
        values ($1, $2, now())
        on conflict (key) do update set doc = excluded.doc, updated_at = now()
    `, key, value)
	if err != nil {
		return storageErr(err)
	}
	return nil
}

// Delete implements kv.Store. Deleting a missing key is a no-op.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, `delete from kv_documents where key = $1`, key); err != nil {
		return storageErr(err)
	}
	return nil
}

// storageErr tags infrastructure failures so callers can match on the
// retryable sentinel while keeping the driver detail.
func storageErr(err error) error {
	return fmt.Errorf("%w: %v", errs.ErrStorageUnavailable, err)
}

var _ kv.Store = (*Store)(nil)
