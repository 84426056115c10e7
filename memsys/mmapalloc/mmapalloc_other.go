//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package mmapalloc

import "os"

// New returns an Allocator. Without mmap, blocks come from the Go heap but
// keep the same page granularity and accounting.
func New() *Allocator {
	return &Allocator{pageSize: os.Getpagesize()}
}

// Allocate returns a zeroed page-granular block of which size bytes are visible.
func (a *Allocator) Allocate(size int) []byte {
	if size < 0 {
		return nil
	}
	n, ok := a.roundUp(size)
	if !ok {
		return nil
	}
	a.mapped.Add(int64(n))
	a.regions.Add(1)
	return make([]byte, n)[:size]
}

// Free drops the accounting for b; the garbage collector reclaims it.
func (a *Allocator) Free(b []byte) {
	if cap(b) == 0 {
		return
	}
	a.mapped.Add(-int64(cap(b)))
	a.regions.Add(-1)
}
