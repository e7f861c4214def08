// Package cache holds rendered pages for a short time.
//
// Entries are never invalidated when content changes; they expire after
// the TTL or when Clear is called.
package cache

import (
	"context"
	"time"
)

const (
	// IndexKey is the single key the index page lives under. It does not
	// vary by page number or viewer.
	IndexKey = "index_page"

	DefaultTTL = 20 * time.Second
)

// ComputeFunc renders the value on a miss.
type ComputeFunc func(ctx context.Context) ([]byte, error)

type PageCache interface {
	// GetOrCompute returns the cached bytes for key, or calls fn and
	// stores its result. Errors from fn are returned and nothing is stored.
	GetOrCompute(ctx context.Context, key string, fn ComputeFunc) ([]byte, error)
	Clear(ctx context.Context) error
}

// Observer is told about every lookup.
type Observer func(hit bool)

func noopObserver(bool) {}
