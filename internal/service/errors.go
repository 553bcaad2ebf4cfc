package service

import (
	"errors"
)

var (
	ErrSameToken          = errors.New("src and dst are equal")
	ErrUnknownToken       = errors.New("unknown token")
	ErrAccountRequired    = errors.New("account is required")
	ErrNothingToUnlock    = errors.New("ETH needs no allowance")
	ErrPricingUnavailable = errors.New("dollar pricing is not configured")
)
