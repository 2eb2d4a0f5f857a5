package database

import "errors"

// Set of errors returned by the chain.
var (
	ErrNotFound       = errors.New("block not found")
	ErrInvalidPayload = errors.New("invalid payload, ra and dec are required")
	ErrOutOfOrder     = errors.New("block is out of order")
)
