package memsys

import (
	"fmt"
	"unsafe"

	"github.com/joshuapare/nrtkit/internal/logger"
)

// Allocate obtains a block of size bytes from the installed allocator.
// It returns nil when the allocator cannot satisfy the request; only
// successful allocations are counted.
func (s *System) Allocate(size int) []byte {
	if size < 0 {
		return nil
	}
	b := s.Allocator().Allocate(size)
	if DebugEnabled {
		logger.Debug("allocate", "bytes", size, "ptr", blockPtr(b))
	}
	if b == nil {
		return nil
	}
	s.Inc(&s.statsAlloc)
	return b
}

// Reallocate resizes b through the installed allocator. Statistics are not
// touched. On failure it returns nil and b stays valid.
func (s *System) Reallocate(b []byte, size int) []byte {
	if size < 0 {
		return nil
	}
	nb := s.Allocator().Reallocate(b, size)
	if DebugEnabled {
		logger.Debug("reallocate", "bytes", size, "ptr", blockPtr(b), "new", blockPtr(nb))
	}
	return nb
}

// Free returns b to the installed allocator and counts it.
func (s *System) Free(b []byte) {
	if DebugEnabled {
		logger.Debug("free", "ptr", blockPtr(b))
	}
	s.Allocator().Free(b)
	s.Inc(&s.statsFree)
}

func blockPtr(b []byte) string {
	return fmt.Sprintf("%p", unsafe.SliceData(b))
}
