package discovery

import (
	"context"
	"fmt"
)

// FullSplit yields a single range covering the whole keyspace. Use it when
// one reader should observe every key (e.g. exclusive consumption).
type FullSplit struct{}

var _ SplitStrategy = FullSplit{}

func (FullSplit) GetRanges(context.Context, string, Admin, EnumerationContext) ([]Range, error) {
	return []Range{FullRange()}, nil
}

// UniformSplit divides the keyspace evenly across the enumerator's
// parallelism. Every key belongs to exactly one range.
type UniformSplit struct{}

var _ SplitStrategy = UniformSplit{}

func (UniformSplit) GetRanges(_ context.Context, _ string, _ Admin, enumCtx EnumerationContext) ([]Range, error) {
	n := enumCtx.Parallelism()
	if n <= 0 {
		return nil, fmt.Errorf("discovery: parallelism must be positive, got %d", n)
	}
	return divide(n), nil
}

// PerPartitionSplit yields one range per partition of the topic, so range
// count follows the topic's current metadata. A non-partitioned topic gets
// the full range.
type PerPartitionSplit struct{}

var _ SplitStrategy = PerPartitionSplit{}

func (PerPartitionSplit) GetRanges(ctx context.Context, topic string, admin Admin, _ EnumerationContext) ([]Range, error) {
	meta, err := admin.TopicMetadata(ctx, topic)
	if err != nil {
		return nil, &AdminError{Topic: topic, Err: err}
	}
	if meta.Partitions <= 0 {
		return []Range{FullRange()}, nil
	}
	return divide(meta.Partitions), nil
}

// divide splits [MinKey, MaxKey] into n contiguous, non-overlapping ranges
// whose sizes differ by at most one key.
func divide(n int) []Range {
	total := int(MaxKey) + 1
	out := make([]Range, 0, n)
	for i := 0; i < n; i++ {
		start := i * total / n
		end := (i+1)*total/n - 1
		out = append(out, Range{Start: int32(start), End: int32(end)})
	}
	return out
}
