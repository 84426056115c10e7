package meminfo

import "errors"

var (
	// ErrOutOfMemory indicates the installed allocator returned no block.
	ErrOutOfMemory = errors.New("meminfo: out of memory")

	// ErrBadSize indicates a negative or overflowing payload size.
	ErrBadSize = errors.New("meminfo: bad size")

	// ErrBadAlign indicates a zero or negative alignment.
	ErrBadAlign = errors.New("meminfo: alignment must be positive")

	// ErrNotVarsize indicates VarsizeRealloc on a record whose payload is not
	// an independent varsize allocation.
	ErrNotVarsize = errors.New("meminfo: varsize realloc called with a non varsize-allocated record")

	// ErrZeroRefcount is the assertion raised in nrtdebug builds when a
	// record with a zero refcount is acquired or released.
	ErrZeroRefcount = errors.New("meminfo: refcount cannot be zero")
)
