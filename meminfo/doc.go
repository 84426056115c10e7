// Package meminfo implements allocation records: reference-counted handles
// that own a payload, an optional destructor and the block backing both.
//
// A record starts with a refcount of 1. Acquire adds a reference, Release
// drops one, and the Release that reaches zero runs the destructor on the
// releasing goroutine and hands the block back to the memsys.System the
// record was created from.
//
// Shapes:
//
//	Alloc             header and payload in one block
//	AllocSafe         as Alloc, payload prefix filled with FillAlloc, refilled with FillFree on destroy
//	AllocAligned      one block of header + size + 2*align, payload slid forward to the alignment
//	AllocSafeAligned  both of the above
//	AllocVarsize      header block and an independent payload block that VarsizeRealloc may move
//	New               header block wrapping caller-owned data
//
// Contiguous blocks start with a HeaderSize-byte header stamped with the
// shape, payload size, payload offset and alignment, so the payload offset
// is always at least HeaderSize and the block freed on destroy is always the
// original one.
package meminfo
