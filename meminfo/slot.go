package meminfo

import (
	"sync/atomic"
	"unsafe"

	"github.com/joshuapare/nrtkit/memsys"
)

// Slot publishes at most one record to concurrent readers, using the
// System's installed compare-and-swap primitive. A published record carries
// one reference owned by the slot until Clear.
//
// Clear must not race with LoadOrStore or Load callers that go on to use the
// record; that ordering is the host's responsibility.
type Slot struct {
	p unsafe.Pointer
}

// Load returns the published record, or nil. The caller gets no reference.
func (s *Slot) Load() *Record {
	return (*Record)(atomic.LoadPointer(&s.p))
}

// LoadOrStore publishes r if the slot is empty. Either way the returned
// record carries a new reference for the caller, and loaded reports whether
// it was already published by someone else. r's own references are untouched.
func (s *Slot) LoadOrStore(sys *memsys.System, r *Record) (actual *Record, loaded bool) {
	r.Acquire() // the slot's reference
	ok, prev := sys.CompareAndSwap(&s.p, nil, unsafe.Pointer(r))
	if ok {
		r.Acquire()
		return r, false
	}
	r.Release()
	existing := (*Record)(prev)
	existing.Acquire()
	return existing, true
}

// Clear empties the slot and drops the slot's reference. It reports whether a
// record was published and, if so, whether dropping the reference destroyed it.
func (s *Slot) Clear(sys *memsys.System) (cleared, destroyed bool) {
	for {
		cur := atomic.LoadPointer(&s.p)
		if cur == nil {
			return false, false
		}
		if ok, _ := sys.CompareAndSwap(&s.p, cur, nil); ok {
			return true, (*Record)(cur).Release()
		}
	}
}
