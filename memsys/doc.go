// Package memsys holds the process-level state of the runtime memory
// subsystem: the pluggable allocator, the pluggable atomic primitives, the
// shutdown flag and the allocation statistics.
//
// # Overview
//
// Compiled code never talks to the Go heap or to an OS allocator directly.
// Every block it owns is obtained through a System, which routes the request
// to the installed Allocator and counts it. Reference counts on allocation
// records (package meminfo) are updated through the System's installed
// increment/decrement primitives, so the cost and the guarantees of
// refcounting follow whatever the host installed:
//
//   - StubAtomics: plain read-modify-write, correct only single-threaded.
//     Installed by Init and forced back by Shutdown.
//   - HardwareAtomics: sync/atomic, safe across goroutines.
//
// # Usage Example
//
//	sys := memsys.New(&memsys.Options{Atomics: memsys.HardwareAtomics{}})
//
//	b := sys.Allocate(128)
//	if b == nil {
//	    return errOutOfMemory
//	}
//	defer sys.Free(b)
//
//	fmt.Println(sys.StatsAlloc(), sys.StatsFree())
//
// # Swapping the Allocator
//
// SetAllocator refuses to install a different allocator while any block or
// record is outstanding, because live blocks would later be handed to an
// allocator that never produced them. What "refuses" means is decided by
// Options.Fatal:
//
//	FatalReturn  return ErrAllocatorBusy (default)
//	FatalPanic   panic with the error
//	FatalAbort   report to Options.Sink, flush, exit the process (status 134)
//
// The atomic primitives can be swapped at any time, but swapping them while
// other goroutines are inside Acquire/Release is not defended. Do it at a
// point known to be single-threaded, such as startup or shutdown.
//
// # Statistics
//
// Four monotonic counters are kept: blocks allocated, blocks freed, records
// allocated and records freed. Block counters count allocator calls, not
// bytes, and Reallocate is not counted. Counters are reset only by Init.
//
// # Debug Events
//
// Building with the nrtdebug tag reports every allocate, reallocate, free,
// acquire, release and destroy event to stderr through log/slog and turns on
// the refcount assertions in meminfo. Without the tag the calls compile away.
//
// # Thread Safety
//
// The System itself takes no locks. Configuration is published through
// atomic pointers; counter and refcount updates are exactly as safe as the
// installed primitives.
package memsys
