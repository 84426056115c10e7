package poolalloc

import (
	"fmt"
	"sync"

	"github.com/joshuapare/nrtkit/internal/logger"
	"github.com/joshuapare/nrtkit/memsys"
)

const defaultMaxFree = 64

// Stats counts how requests were served.
type Stats struct {
	Hits     uint64 `json:"hits"`     // served from a free list
	Misses   uint64 `json:"misses"`   // new class-sized block
	Large    uint64 `json:"large"`    // above MediumMax
	Recycled uint64 `json:"recycled"` // blocks returned to a free list
	Dropped  uint64 `json:"dropped"`  // frees discarded (list full, large or foreign)
}

// Allocator recycles blocks by size class.
type Allocator struct {
	mu      sync.Mutex
	table   *classTable
	free    [][][]byte // per-class stacks of blocks, len 0
	maxFree int
	stats   Stats
}

var _ memsys.Allocator = (*Allocator)(nil)

// New creates an Allocator. A nil config selects DefaultConfig.
func New(config *Config) *Allocator {
	cfg := DefaultConfig
	if config != nil {
		cfg = *config
	}
	a := &Allocator{
		table:   newClassTable(cfg),
		maxFree: cfg.MaxFreePerClass,
	}
	if a.maxFree <= 0 {
		a.maxFree = defaultMaxFree
	}
	a.free = make([][][]byte, a.table.NumClasses())
	return a
}

// Allocate returns a zeroed block of size bytes whose capacity is the size
// class capacity, or nil for a negative size.
func (a *Allocator) Allocate(size int) []byte {
	if size < 0 {
		return nil
	}
	cls := a.table.classOf(size)

	a.mu.Lock()
	defer a.mu.Unlock()

	if cls == a.table.NumClasses() {
		a.stats.Large++
		return make([]byte, size)
	}
	if list := a.free[cls]; len(list) > 0 {
		b := list[len(list)-1]
		a.free[cls] = list[:len(list)-1]
		a.stats.Hits++
		b = b[:size]
		clear(b)
		return b
	}
	a.stats.Misses++
	return make([]byte, size, a.table.capacity(cls))
}

// Reallocate resizes in place while the new size stays in the block's
// class, and otherwise moves the contents to a block of the new class.
func (a *Allocator) Reallocate(b []byte, size int) []byte {
	if size < 0 {
		return nil
	}
	if b == nil {
		return a.Allocate(size)
	}
	if size <= cap(b) && a.table.classOf(size) == a.table.classOf(cap(b)) {
		nb := b[:size]
		if size > len(b) {
			clear(nb[len(b):])
		}
		return nb
	}
	nb := a.Allocate(size)
	if nb == nil {
		return nil
	}
	copy(nb, b)
	a.Free(b)
	return nb
}

// Free pushes b onto its class free list. Blocks whose capacity is not a
// class capacity are left to the garbage collector.
func (a *Allocator) Free(b []byte) {
	c := cap(b)
	cls := a.table.classOf(c)

	a.mu.Lock()
	defer a.mu.Unlock()

	if cls == a.table.NumClasses() || a.table.capacity(cls) != c || len(a.free[cls]) >= a.maxFree {
		a.stats.Dropped++
		if memsys.DebugEnabled {
			logger.Debug("poolalloc: drop", "cap", c, "class", cls)
		}
		return
	}
	a.free[cls] = append(a.free[cls], b[:0])
	a.stats.Recycled++
}

// Stats returns a snapshot of the counters.
func (a *Allocator) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

// Retained returns the number of blocks and bytes held on free lists.
func (a *Allocator) Retained() (blocks, bytes int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for cls, list := range a.free {
		blocks += len(list)
		bytes += len(list) * a.table.capacity(cls)
	}
	return blocks, bytes
}

// Trim drops every retained block.
func (a *Allocator) Trim() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for cls := range a.free {
		a.free[cls] = nil
	}
}

// String describes the configuration.
func (a *Allocator) String() string {
	return fmt.Sprintf("poolalloc(%s, %d classes)", a.table, a.table.NumClasses())
}
