// Package kv defines the persistent key-value store used for small pieces of
// client state: the saved cart and the upsell click affinity map.
package kv

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// KV stores JSON documents by key. Get on a missing or expired key returns
// an error wrapping sql.ErrNoRows; Delete of a missing key succeeds.
type KV interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any) error
	SetTTL(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IsNotFound reports whether err means the key does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// Key joins a namespace and a name into a stored key.
func Key(namespace, name string) string {
	return namespace + ":" + name
}

// Value is a typed document at one fixed key.
type Value[T any] struct {
	store KV
	key   string
}

// Bind returns the document of type T stored at key.
func Bind[T any](store KV, key string) *Value[T] {
	return &Value[T]{store: store, key: key}
}

func (v *Value[T]) Key() string { return v.key }

// Load decodes the document. ok is false, with a nil error, when nothing is
// stored.
func (v *Value[T]) Load(ctx context.Context) (val T, ok bool, err error) {
	err = v.store.Get(ctx, v.key, &val)
	switch {
	case IsNotFound(err):
		var zero T
		return zero, false, nil
	case err != nil:
		return val, false, err
	}
	return val, true, nil
}

func (v *Value[T]) Save(ctx context.Context, val T) error {
	return v.store.Set(ctx, v.key, val)
}

func (v *Value[T]) Clear(ctx context.Context) error {
	return v.store.Delete(ctx, v.key)
}
