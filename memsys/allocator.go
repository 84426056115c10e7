package memsys

// GoAllocator allocates blocks on the Go heap. Free is a no-op and the
// garbage collector reclaims blocks once the last slice referencing them is
// dropped.
type GoAllocator struct{}

// DefaultAllocator is the allocator Init binds. It is a single shared value
// so that re-installing it is never seen as an allocator change.
var DefaultAllocator Allocator = &GoAllocator{}

// Allocate returns a zeroed block of size bytes, or nil for a negative size.
func (a *GoAllocator) Allocate(size int) []byte {
	if size < 0 {
		return nil
	}
	return make([]byte, size)
}

// Reallocate shrinks in place and grows by copying into a new block.
func (a *GoAllocator) Reallocate(b []byte, size int) []byte {
	if size < 0 {
		return nil
	}
	if size <= cap(b) {
		return b[:size]
	}
	nb := make([]byte, size)
	copy(nb, b)
	return nb
}

// Free is a no-op.
func (a *GoAllocator) Free(b []byte) {}
