//go:build linux || darwin || freebsd || netbsd || openbsd

package mmapalloc

import (
	"golang.org/x/sys/unix"

	"github.com/joshuapare/nrtkit/internal/logger"
)

// New returns an Allocator using the system page size.
func New() *Allocator {
	return &Allocator{pageSize: unix.Getpagesize()}
}

// Allocate maps a fresh zeroed region and returns its first size bytes, or
// nil if the mapping fails.
func (a *Allocator) Allocate(size int) []byte {
	if size < 0 {
		return nil
	}
	n, ok := a.roundUp(size)
	if !ok {
		return nil
	}
	region, err := unix.Mmap(-1, 0, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		logger.Warn("mmapalloc: mmap failed", "bytes", n, "err", err)
		return nil
	}
	a.mapped.Add(int64(n))
	a.regions.Add(1)
	return region[:size]
}

// Free unmaps the region backing b. b must be a block from this allocator,
// possibly resliced, with its capacity intact.
func (a *Allocator) Free(b []byte) {
	if cap(b) == 0 {
		return
	}
	region := b[:cap(b)]
	if err := unix.Munmap(region); err != nil {
		logger.Warn("mmapalloc: munmap failed", "bytes", len(region), "err", err)
		return
	}
	a.mapped.Add(-int64(len(region)))
	a.regions.Add(-1)
}
