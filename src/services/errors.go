package services

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInsufficientShares = errors.New("insufficient shares")
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrInvalidTradeType   = errors.New("trade type must be buy or sell")
	ErrPriceNotFound      = errors.New("no price available")
	ErrThresholdConflict  = errors.New("threshold already used by another role")
	ErrInvalidPeriod      = errors.New("invalid period")
	ErrConcurrentUpdate   = errors.New("balance changed concurrently, try again")
)
