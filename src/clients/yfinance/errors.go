package yfinance

import (
	"errors"
	"fmt"
)

var (
	ErrNoPriceData  = errors.New("no price data available")
	ErrInvalidInput = errors.New("invalid response payload")
)

// FetchError reports a market-data request that failed after all attempts.
type FetchError struct {
	Op         string
	Symbol     string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s for %s: %v", e.Op, e.Symbol, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
