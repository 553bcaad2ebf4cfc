package config

import (
	"errors"
	"fmt"
)

// ErrMissingRPCEndpoint indicates that the required ETH_RPC_URL variable is
// not set in the environment.
var ErrMissingRPCEndpoint = errors.New("missing ETH_RPC_URL environment variable")

// ErrMissingAddress indicates that a required contract address variable is
// not set.
var ErrMissingAddress = errors.New("missing contract address")

// ErrInvalidAddress indicates that an address variable is not a hex address.
var ErrInvalidAddress = errors.New("invalid contract address")

// ErrIncompletePair is returned when only one of a token/pair address couple
// is set.
var ErrIncompletePair = errors.New("token and pair addresses must be set together")

func newAddressError(base error, name string) error {
	return fmt.Errorf("%w: %s", base, name)
}
