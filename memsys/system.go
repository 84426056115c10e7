package memsys

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/joshuapare/nrtkit/internal/logger"
)

// Options configures a System. A nil *Options means defaults.
type Options struct {
	// Allocator to bind after Init. Default: DefaultAllocator.
	Allocator Allocator

	// Atomics to install after Init. Default: StubAtomics.
	Atomics AtomicOps

	// Fatal selects how programming errors are reported. Default: FatalReturn.
	Fatal FatalPolicy

	// Sink receives fatal reports under FatalAbort. Default: os.Stderr.
	Sink io.Writer
}

// System is the memory subsystem state. Construct it with New; the zero
// value is not usable.
type System struct {
	// Counters first so they stay 64-bit aligned on 32-bit platforms.
	statsAlloc       uint64
	statsFree        uint64
	statsRecordAlloc uint64
	statsRecordFree  uint64

	alloc    atomic.Pointer[allocatorSlot]
	incDec   atomic.Pointer[incDecPair]
	cas      atomic.Pointer[CASFunc]
	shutting atomic.Bool

	fatal FatalPolicy
	sink  io.Writer
}

type allocatorSlot struct {
	a Allocator
}

type incDecPair struct {
	inc, dec IncDecFunc
}

var (
	defaultOnce   sync.Once
	defaultSystem *System
)

// Default returns the process-wide System, creating it with default options
// on first use. Hosts that need their own configuration should call New.
func Default() *System {
	defaultOnce.Do(func() {
		defaultSystem = New(nil)
	})
	return defaultSystem
}

// New creates and initializes a System.
func New(opts *Options) *System {
	if opts == nil {
		opts = &Options{}
	}
	s := &System{
		fatal: opts.Fatal,
		sink:  opts.Sink,
	}
	if s.sink == nil {
		s.sink = os.Stderr
	}
	s.Init()
	if opts.Allocator != nil {
		s.alloc.Store(&allocatorSlot{a: opts.Allocator})
	}
	if opts.Atomics != nil {
		s.SetAtomics(opts.Atomics)
	}
	return s
}

// Init resets the counters and the shutdown flag, binds DefaultAllocator and
// installs the stub atomics. Calling it while blocks are outstanding leaves
// them unmanaged.
func (s *System) Init() {
	atomic.StoreUint64(&s.statsAlloc, 0)
	atomic.StoreUint64(&s.statsFree, 0)
	atomic.StoreUint64(&s.statsRecordAlloc, 0)
	atomic.StoreUint64(&s.statsRecordFree, 0)
	s.shutting.Store(false)
	s.alloc.Store(&allocatorSlot{a: DefaultAllocator})
	s.installStubs()
	if DebugEnabled {
		logger.Debug("memsys init", "system", fmt.Sprintf("%p", s))
	}
}

// Shutdown marks the System as shutting down and reverts every atomic
// primitive to the stub, since no compiled code can run concurrently past
// this point and the provider of the real primitives may already be gone.
func (s *System) Shutdown() {
	s.shutting.Store(true)
	s.installStubs()
	if DebugEnabled {
		logger.Debug("memsys shutdown", "system", fmt.Sprintf("%p", s), "stats", s.Stats())
	}
}

// ShuttingDown reports whether Shutdown has been called since the last Init.
func (s *System) ShuttingDown() bool { return s.shutting.Load() }

func (s *System) installStubs() {
	var stub StubAtomics
	s.incDec.Store(&incDecPair{inc: stub.Inc, dec: stub.Dec})
	cas := CASFunc(stub.CompareAndSwap)
	s.cas.Store(&cas)
}

// SetAllocator installs a. Installing the allocator that is already bound is
// always allowed; installing a different one requires that every block and
// record has been returned, otherwise the fatal policy fires with
// ErrAllocatorBusy.
//
// Concurrent SetAllocator calls are serialized by a compare-and-swap, but the
// balance check is not atomic with respect to Allocate: a block taken between
// the check and the swap comes from the old allocator and would later be
// freed through the new one. Call it only at a quiescent point, before
// compiled code starts or after it has stopped allocating.
func (s *System) SetAllocator(a Allocator) error {
	if a == nil {
		return ErrNilAllocator
	}
	next := &allocatorSlot{a: a}
	for {
		cur := s.alloc.Load()
		if !sameAllocator(cur.a, a) {
			if st := s.Stats(); !st.Balanced() {
				return s.Fatal(fmt.Errorf("%w (%d blocks, %d records live)",
					ErrAllocatorBusy, st.LiveBlocks(), st.LiveRecords()))
			}
		}
		if s.alloc.CompareAndSwap(cur, next) {
			if DebugEnabled {
				logger.Debug("memsys set allocator", "allocator", fmt.Sprintf("%T", a))
			}
			return nil
		}
	}
}

// Allocator returns the installed allocator.
func (s *System) Allocator() Allocator { return s.alloc.Load().a }

// sameAllocator compares by identity. Allocators with a non-comparable
// dynamic type are always treated as different.
func sameAllocator(a, b Allocator) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

// SetAtomicIncDec replaces the increment/decrement pair.
func (s *System) SetAtomicIncDec(inc, dec IncDecFunc) error {
	if inc == nil || dec == nil {
		return ErrNilAtomics
	}
	s.incDec.Store(&incDecPair{inc: inc, dec: dec})
	return nil
}

// SetAtomicCAS replaces the compare-and-swap primitive.
func (s *System) SetAtomicCAS(cas CASFunc) error {
	if cas == nil {
		return ErrNilAtomics
	}
	s.cas.Store(&cas)
	return nil
}

// SetAtomics installs all three primitives from ops.
func (s *System) SetAtomics(ops AtomicOps) {
	s.incDec.Store(&incDecPair{inc: ops.Inc, dec: ops.Dec})
	cas := CASFunc(ops.CompareAndSwap)
	s.cas.Store(&cas)
}

// Inc increments *p with the installed primitive.
func (s *System) Inc(p *uint64) uint64 { return s.incDec.Load().inc(p) }

// Dec decrements *p with the installed primitive.
func (s *System) Dec(p *uint64) uint64 { return s.incDec.Load().dec(p) }

// CompareAndSwap runs the installed CAS primitive on slot.
func (s *System) CompareAndSwap(slot *unsafe.Pointer, expected, replacement unsafe.Pointer) (bool, unsafe.Pointer) {
	return (*s.cas.Load())(slot, expected, replacement)
}

// TrackRecordAlloc counts a newly initialized allocation record.
func (s *System) TrackRecordAlloc() { s.Inc(&s.statsRecordAlloc) }

// TrackRecordFree counts a destroyed allocation record.
func (s *System) TrackRecordFree() { s.Inc(&s.statsRecordFree) }
