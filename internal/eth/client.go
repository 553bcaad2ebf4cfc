// Package eth reads the chain state the quoting core consumes.
package eth

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/ethereum/go-ethereum/ethclient"
)

const (
	dialTimeout  = 15 * time.Second
	dialMaxTries = 5
)

// Dial connects to url and checks the endpoint answers eth_chainId, retrying
// with exponential backoff.
func Dial(ctx context.Context, logger *slog.Logger, url string) (*ethclient.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	notify := func(err error, d time.Duration) {
		logger.Warn("ethereum endpoint not ready, retrying", "err", err, "backoff", d)
	}

	operation := func() (*ethclient.Client, error) {
		client, err := ethclient.DialContext(ctx, url)
		if err != nil {
			return nil, err
		}
		if _, err := client.ChainID(ctx); err != nil {
			client.Close()
			return nil, err
		}
		return client, nil
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(dialMaxTries),
		backoff.WithNotify(notify))
}
