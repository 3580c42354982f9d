package auctionerrors

import "errors"

// Store-level errors
var (
	ErrNotFound           = errors.New("record not found")
	ErrInvalidPath        = errors.New("invalid document path")
	ErrTransactionAborted = errors.New("transaction aborted after retries")
	ErrUnknownDriver      = errors.New("unknown store driver")
)

// Configuration errors
var (
	ErrInvalidBot    = errors.New("invalid bot configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Lifecycle errors
var (
	ErrNoBids           = errors.New("no bids found for auction")
	ErrInvalidAuctionID = errors.New("invalid auction id")
)
