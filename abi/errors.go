package abi

import "errors"

var (
	// ErrBadHandle indicates a handle that is zero, unknown or already destroyed.
	ErrBadHandle = errors.New("abi: bad record handle")

	// ErrOutOfRange indicates a payload or guest memory range that does not fit.
	ErrOutOfRange = errors.New("abi: range out of bounds")
)
