package discovery

import (
	"context"
	"errors"

	"github.com/cenkalti/backoff/v4"
)

// GetRangesWithRetry runs s.GetRanges under the given backoff policy,
// retrying only metadata failures (AdminError). Any other error, e.g. a
// misconfigured strategy, aborts immediately. A nil policy defaults to
// exponential backoff bounded by ctx.
func GetRangesWithRetry(ctx context.Context, s SplitStrategy, topic string, admin Admin, enumCtx EnumerationContext, policy backoff.BackOff) ([]Range, error) {
	if policy == nil {
		policy = backoff.NewExponentialBackOff()
	}

	var ranges []Range
	op := func() error {
		r, err := s.GetRanges(ctx, topic, admin, enumCtx)
		if err != nil {
			var adminErr *AdminError
			if errors.As(err, &adminErr) {
				return err
			}
			return backoff.Permanent(err)
		}
		ranges = r
		return nil
	}

	if err := backoff.Retry(op, backoff.WithContext(policy, ctx)); err != nil {
		return nil, err
	}
	return ranges, nil
}
