// Package mmapalloc provides a memsys.Allocator that serves every block from
// its own anonymous private mapping, keeping payloads off the Go heap.
//
// Blocks are page granular: a 10-byte request maps a whole page. The
// allocator suits large, long-lived payloads and tests that want real
// unmapping on Free (touching a freed block faults).
package mmapalloc

import "sync/atomic"

// Allocator maps one region per block. It is safe for concurrent use.
type Allocator struct {
	pageSize int

	mapped  atomic.Int64
	regions atomic.Int64
}

// MappedBytes returns the number of bytes currently mapped.
func (a *Allocator) MappedBytes() int64 { return a.mapped.Load() }

// Regions returns the number of live mappings.
func (a *Allocator) Regions() int64 { return a.regions.Load() }

// PageSize returns the mapping granularity.
func (a *Allocator) PageSize() int { return a.pageSize }

// roundUp rounds n up to a multiple of the page size, with a minimum of one page.
func (a *Allocator) roundUp(n int) (int, bool) {
	if n <= 0 {
		return a.pageSize, true
	}
	pages := (n + a.pageSize - 1) / a.pageSize
	if pages <= 0 || pages > int(^uint(0)>>1)/a.pageSize {
		return 0, false
	}
	return pages * a.pageSize, true
}

// Reallocate grows by mapping a new region and copying; shrinking and growth
// within the mapped region are done in place.
func (a *Allocator) Reallocate(b []byte, size int) []byte {
	if size < 0 {
		return nil
	}
	if b == nil {
		return a.Allocate(size)
	}
	if size <= cap(b) {
		return b[:size]
	}
	nb := a.Allocate(size)
	if nb == nil {
		return nil
	}
	copy(nb, b)
	a.Free(b)
	return nb
}
