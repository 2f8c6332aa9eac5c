// Package discovery plans how a topic's keyspace is divided into
// assignable work ranges. Strategies are stateless value types, so they can
// be serialized and shipped to whatever process runs the split planning.
package discovery

import (
	"context"
	"fmt"
)

// The hash keyspace covered by a topic. Keys are mapped to [MinKey, MaxKey].
const (
	MinKey int32 = 0
	MaxKey int32 = 65535
)

// Range is a contiguous, inclusive slice of the hash keyspace.
type Range struct {
	Start int32 `json:"start"`
	End   int32 `json:"end"`
}

// FullRange covers the whole keyspace.
func FullRange() Range {
	return Range{Start: MinKey, End: MaxKey}
}

// Size returns the number of keys in r.
func (r Range) Size() int32 {
	return r.End - r.Start + 1
}

func (r Range) String() string {
	return fmt.Sprintf("[%d, %d]", r.Start, r.End)
}

// TopicMetadata is the administrative view of a topic.
type TopicMetadata struct {
	Partitions int // 0 for a non-partitioned topic
}

// Admin is the opaque administrative client consumed by strategies. Only
// metadata reads, never data-plane traffic.
type Admin interface {
	TopicMetadata(ctx context.Context, topic string) (TopicMetadata, error)
}

// EnumerationContext describes the enumerator invoking a strategy.
type EnumerationContext interface {
	// Parallelism is the number of readers the ranges will be assigned to.
	Parallelism() int
}

// SplitStrategy divides a topic's keyspace into ranges. Implementations
// must be deterministic for a fixed topic's current metadata.
type SplitStrategy interface {
	GetRanges(ctx context.Context, topic string, admin Admin, enumCtx EnumerationContext) ([]Range, error)
}

// AdminError wraps a metadata fetch failure. It signals a retryable
// condition: the topic's metadata could not be read, nothing is known to be
// wrong with the data plane.
type AdminError struct {
	Topic string
	Err   error
}

func (e *AdminError) Error() string {
	return fmt.Sprintf("discovery: topic %q metadata: %v", e.Topic, e.Err)
}

func (e *AdminError) Unwrap() error { return e.Err }

// Retryable reports whether the caller should retry at a higher level.
// Always true for metadata failures.
func (e *AdminError) Retryable() bool { return true }
