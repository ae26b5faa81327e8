// Package cache keeps recently read guides close to the web handlers so a
// page render does not always round-trip to the database.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Cache stores opaque byte values under string keys.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// GuideKey is the cache key of one guide.
func GuideKey(owner, id string) string {
	return "notebook:guide:" + owner + ":" + id
}
