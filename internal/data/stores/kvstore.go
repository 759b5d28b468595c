package stores

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/whimsicalfrog/frogshop/internal/core/kv"
	"github.com/whimsicalfrog/frogshop/internal/data/db"
	"github.com/whimsicalfrog/frogshop/pkg/clock"
)

// KVStore implements kv.KV on the kv_store table. Values are JSON encoded;
// expiry is an optional unix-nano deadline checked on every read.
type KVStore struct {
	q     *db.Queries
	clock clock.Clock
}

var _ kv.KV = (*KVStore)(nil)

// NewKVStore creates a SQLite-backed KV store on wall time.
func NewKVStore(database *db.DB) *KVStore {
	return &KVStore{q: database.Queries(), clock: clock.Real{}}
}

// WithClock returns a copy of s that reads time from c.
func (s *KVStore) WithClock(c clock.Clock) *KVStore {
	return &KVStore{q: s.q, clock: c}
}

func (s *KVStore) now() int64 { return s.clock.Now().UnixNano() }

func (s *KVStore) Get(ctx context.Context, key string, dest any) error {
	row, err := s.q.KVGet(ctx, key)
	if err == nil && row.ExpiresAt.Valid && row.ExpiresAt.Int64 < s.now() {
		// expired rows read as missing and are dropped on the way out
		_ = s.q.KVDelete(ctx, key)
		err = sql.ErrNoRows
	}
	if err != nil {
		return fmt.Errorf("kv get %q: %w", key, err)
	}
	if err := json.Unmarshal(row.Value, dest); err != nil {
		return fmt.Errorf("kv decode %q: %w", key, err)
	}
	return nil
}

func (s *KVStore) Set(ctx context.Context, key string, value any) error {
	return s.put(ctx, key, value, 0)
}

// SetTTL stores value until ttl elapses.
func (s *KVStore) SetTTL(ctx context.Context, key string, value any, ttl time.Duration) error {
	return s.put(ctx, key, value, ttl)
}

func (s *KVStore) Delete(ctx context.Context, key string) error {
	if err := s.q.KVDelete(ctx, key); err != nil {
		return fmt.Errorf("kv delete %q: %w", key, err)
	}
	return nil
}

// ListKeys returns every unexpired key in sorted order.
func (s *KVStore) ListKeys(ctx context.Context) ([]string, error) {
	keys, err := s.q.KVListKeys(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("kv list keys: %w", err)
	}
	return keys, nil
}

// SweepExpired deletes every expired entry and returns how many were removed.
func (s *KVStore) SweepExpired(ctx context.Context) (int64, error) {
	n, err := s.q.KVSweepExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("kv sweep: %w", err)
	}
	return n, nil
}

// put writes value; a ttl of zero means no expiry.
func (s *KVStore) put(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kv encode %q: %w", key, err)
	}

	now := s.clock.Now()
	params := db.KVSetParams{
		Key:       key,
		Value:     data,
		CreatedAt: now.UnixNano(),
		UpdatedAt: now.UnixNano(),
	}
	if ttl > 0 {
		params.ExpiresAt = sql.NullInt64{Int64: now.Add(ttl).UnixNano(), Valid: true}
	}
	if err := s.q.KVSet(ctx, params); err != nil {
		return fmt.Errorf("kv set %q: %w", key, err)
	}
	return nil
}
