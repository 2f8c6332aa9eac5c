package connshare

import (
	"errors"
	"fmt"
)

// ErrCacheClosed is returned by operations on a cache after Close.
var ErrCacheClosed = errors.New("connshare: cache is closed")

// CloseReason says why a client left the cache.
type CloseReason string

const (
	ReasonEvicted       CloseReason = "evicted"        // capacity pressure, LRU entry removed
	ReasonInvalidated   CloseReason = "invalidated"    // explicit Invalidate
	ReasonInvalidateAll CloseReason = "invalidate_all" // explicit InvalidateAll
	ReasonShutdown      CloseReason = "shutdown"       // cache Close
)

// CreateError wraps a failure of the Create collaborator. The key remains
// absent from the cache, so retrying GetOrCreate is safe.
type CreateError struct {
	Key any
	Err error
}

func (e *CreateError) Error() string {
	return fmt.Sprintf("connshare: create client for %v: %v", e.Key, e.Err)
}

func (e *CreateError) Unwrap() error { return e.Err }

// CloseError wraps a failure of the Close collaborator. It is delivered to
// the Logger and Hooks only; Invalidate and InvalidateAll never surface it.
type CloseError struct {
	Key    any
	Reason CloseReason
	Err    error
}

func (e *CloseError) Error() string {
	return fmt.Sprintf("connshare: close client for %v (%s): %v", e.Key, e.Reason, e.Err)
}

func (e *CloseError) Unwrap() error { return e.Err }
