package testutil

import (
	"sync"
	"unsafe"
)

// Allocator is an instrumented memsys.Allocator for tests. It tracks every
// live block, can be told to fail, and exposes a hook that sees each block
// right before it is released.
type Allocator struct {
	mu sync.Mutex

	live      map[*byte]int
	allocs    int
	reallocs  int
	frees     int
	badFrees  int
	failAfter int // successful allocations left before failing; -1 = never
	failRe    bool

	// OnFree, when set, is called with the block being freed before it is
	// forgotten. The block contents are still intact at that point.
	OnFree func(b []byte)
}

// NewAllocator returns an Allocator that never fails.
func NewAllocator() *Allocator {
	return &Allocator{
		live:      make(map[*byte]int),
		failAfter: -1,
	}
}

// Allocate returns a fresh zeroed block or nil once the failure budget is spent.
func (a *Allocator) Allocate(size int) []byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.allocs++
	if size < 0 || a.failAfter == 0 {
		return nil
	}
	if a.failAfter > 0 {
		a.failAfter--
	}
	return a.newBlockLocked(size)
}

// Reallocate always moves the block so callers observe a pointer change.
func (a *Allocator) Reallocate(b []byte, size int) []byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reallocs++
	if size < 0 || a.failRe {
		return nil
	}
	nb := a.newBlockLocked(size)
	copy(nb, b)
	if b != nil {
		delete(a.live, unsafe.SliceData(b))
	}
	return nb
}

// Free forgets b. Freeing an unknown block is counted, not fatal.
func (a *Allocator) Free(b []byte) {
	a.mu.Lock()
	hook := a.OnFree
	a.frees++
	p := unsafe.SliceData(b)
	if _, ok := a.live[p]; !ok || b == nil {
		a.badFrees++
		a.mu.Unlock()
		return
	}
	a.mu.Unlock()

	if hook != nil {
		hook(b)
	}

	a.mu.Lock()
	delete(a.live, p)
	a.mu.Unlock()
}

// newBlockLocked never returns a zero-capacity slice so every block has a
// distinct address.
func (a *Allocator) newBlockLocked(size int) []byte {
	b := make([]byte, size, max(size, 1))
	a.live[unsafe.SliceData(b)] = size
	return b
}

// FailAfter lets n more allocations succeed, then fails all further ones.
// A negative n disables failure.
func (a *Allocator) FailAfter(n int) {
	a.mu.Lock()
	a.failAfter = n
	a.mu.Unlock()
}

// FailReallocs makes every Reallocate fail while on is true.
func (a *Allocator) FailReallocs(on bool) {
	a.mu.Lock()
	a.failRe = on
	a.mu.Unlock()
}

// Live returns the number of blocks handed out and not yet freed.
func (a *Allocator) Live() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.live)
}

// Calls returns the number of Allocate, Reallocate and Free calls seen.
func (a *Allocator) Calls() (allocs, reallocs, frees int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.allocs, a.reallocs, a.frees
}

// BadFrees returns the number of Free calls for blocks this allocator did
// not hand out (or already freed).
func (a *Allocator) BadFrees() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.badFrees
}
