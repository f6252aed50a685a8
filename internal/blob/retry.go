package blob

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	retryInitialInterval = 500 * time.Millisecond
	retryMaxInterval     = 5 * time.Second
	retryMaxElapsed      = 30 * time.Second
)

type retryingStore struct {
	Store
	attempts        int
	initialInterval time.Duration
}

// WithRetry wraps store so each Put is attempted up to attempts times with
// exponential backoff. Reads are not retried. Values below one mean one attempt.
func WithRetry(store Store, attempts int) Store {
	if attempts < 1 {
		attempts = 1
	}
	return &retryingStore{Store: store, attempts: attempts, initialInterval: retryInitialInterval}
}

func (r *retryingStore) Put(ctx context.Context, bucket, key string, data []byte, contentType string, metadata map[string]string) error {
	op := func() error {
		err := r.Store.Put(ctx, bucket, key, data, contentType, metadata)
		if err == nil {
			return nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = r.initialInterval
	bo.MaxInterval = retryMaxInterval
	bo.MaxElapsedTime = retryMaxElapsed
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(r.attempts-1)), ctx)
	return backoff.Retry(op, policy)
}
