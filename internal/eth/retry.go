package eth

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const (
	readMaxTries        = 3
	readInitialInterval = 50 * time.Millisecond
)

// retryRead runs one state read, retrying transport failures a few times.
// Callers keep the block argument fixed so a retried read stays on the
// snapshot's block.
func retryRead[T any](ctx context.Context, logger *slog.Logger, what string, op func() (T, error)) (T, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = readInitialInterval

	return backoff.Retry(ctx, op,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(readMaxTries),
		backoff.WithNotify(func(err error, d time.Duration) {
			logger.Warn("read failed, retrying", "read", what, "err", err, "backoff", d)
		}))
}
