package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"

	"github.com/hpungsan/quotebook/internal/errors"
	"github.com/hpungsan/quotebook/internal/metrics"
)

// RetryPolicy bounds download retries. Delays are constant, not exponential.
type RetryPolicy struct {
	MaxRetries uint64
	Delay      time.Duration
}

// Download fetches url to dest and validates it, retrying the pair under p
// until the first success. It returns the number of retries made. When every
// attempt fails the error is an integrity failure.
func Download(ctx context.Context, f Fetcher, v Validator, p RetryPolicy, url, dest string) (int, error) {
	attempt := func() error {
		if !f.Fetch(ctx, url, dest) {
			return errors.NewTransientIO(fmt.Errorf("fetch %s failed", url))
		}
		return v.Check(dest)
	}

	retries := 0
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(p.Delay), p.MaxRetries),
		ctx,
	)
	err := backoff.RetryNotify(attempt, policy, func(err error, wait time.Duration) {
		retries++
		metrics.Retry()
		log.Info().Err(err).Str("dest", dest).Int("retry", retries).Dur("wait", wait).Msg("retrying download")
	})
	if err != nil {
		if errors.Is(err, errors.ErrIntegrityFailure) {
			return retries, err
		}
		return retries, errors.NewIntegrityFailure(dest, err.Error())
	}
	return retries, nil
}
