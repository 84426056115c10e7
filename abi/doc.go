// Package abi exposes allocation records to compiled guest code.
//
// Guest code cannot hold Go pointers, so records cross the boundary as
// opaque 64-bit handles kept in a Table. HostModule registers the record
// entry points as a wazero host module named "nrt":
//
//	record_alloc(size i64) -> handle i64
//	record_alloc_safe(size i64) -> handle i64
//	record_alloc_aligned(size i64, align i32) -> handle i64
//	record_alloc_safe_aligned(size i64, align i32) -> handle i64
//	record_alloc_varsize(size i64) -> handle i64
//	record_varsize_realloc(handle i64, size i64) -> ok i32
//	record_acquire(handle i64)
//	record_release(handle i64) -> destroyed i32
//	record_size(handle i64) -> i64
//	record_refcount(handle i64) -> i64
//	record_read(handle i64, off i64, ptr i32, len i32) -> i32
//	record_write(handle i64, off i64, ptr i32, len i32) -> i32
//	memsys_stats_alloc() / _free() / _record_alloc() / _record_free() -> i64
//
// A zero handle means allocation failed. record_read and record_write copy
// between the payload and the calling module's linear memory and return the
// number of bytes copied, or -1 on a bad handle, range or missing memory.
package abi
