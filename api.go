package connshare

import (
	"context"
)

// CreateFunc opens a new client for the given configuration. It may block
// indefinitely; callers needing bounded latency pass a ctx with a deadline.
type CreateFunc[K comparable, C any] func(ctx context.Context, cfg K) (C, error)

// CloseFunc releases a client's resources. It may fail and may block on
// network I/O; the cache tolerates both.
type CloseFunc[C any] func(client C) error

// Cache maps a configuration key to at most one live client, bounded by an
// LRU policy. All methods are safe for concurrent use.
type Cache[K comparable, C any] interface {
	// GetOrCreate returns the cached client for cfg, creating it on first
	// request. Concurrent calls for an equal cfg coalesce into a single
	// Create; every caller receives the same client. A failed creation
	// leaves the key absent, so a retry is safe.
	GetOrCreate(ctx context.Context, cfg K) (C, error)

	// Invalidate removes the entry for cfg (if present) and schedules its
	// client for closing. Reports whether an entry was removed. Close
	// failures are logged and hooked, never returned.
	Invalidate(cfg K) bool

	// InvalidateAll removes and schedules closing of every entry. One
	// failing close does not abort the batch.
	InvalidateAll()

	// Snapshot returns a weakly consistent view of the current entries.
	// Diagnostic only; it does not touch recency.
	Snapshot() map[K]C

	// Len returns the number of cached clients.
	Len() int

	// Capacity returns the configured bound. The bound is fixed at
	// construction; it cannot be changed afterwards.
	Capacity() int

	// Close shuts the cache down: every remaining client is closed and
	// close failures are aggregated into the returned error. After Close,
	// all operations fail with ErrCacheClosed.
	Close(ctx context.Context) error
}

// Options configure a Cache. Create and Close are required; everything else
// has a usable default.
type Options[K comparable, C any] struct {
	// Required
	Create CreateFunc[K, C]
	Close  CloseFunc[C]

	// Capacity bounds the number of concurrently cached clients. 0 => 100.
	// Fixed once the cache is constructed: there is deliberately no resize,
	// matching the one-time "set before first use" contract.
	Capacity int

	// Normalize canonicalizes cfg before it is used as a cache key, so that
	// semantically identical configurations (e.g. "no credentials" spelled
	// two ways) share an entry. nil => identity.
	Normalize func(K) K

	// Clone produces the copy handed to Create. Construction may mutate its
	// configuration; the cached key must stay the pre-mutation normalized
	// value. nil => identity (the value copy of K).
	Clone func(K) K

	Logger Logger // nil => NopLogger
	Hooks  Hooks  // nil => NopHooks
}

// New builds a Cache from opts and starts its cleanup goroutine.
func New[K comparable, C any](opts Options[K, C]) (Cache[K, C], error) {
	return newCache[K, C](opts)
}
