package meminfo

import (
	"fmt"
	"io"
	"sync/atomic"

	"github.com/joshuapare/nrtkit/internal/logger"
	"github.com/joshuapare/nrtkit/memsys"
)

// RefcountUnknown is returned by Refcount for a nil record or a record
// without data.
const RefcountUnknown = ^uint64(0)

// Record is a reference-counted allocation record.
//
// A record is live from construction until the Release that drops its
// refcount to zero. After that the handle is dangling and no method may be
// called on it.
type Record struct {
	refct uint64 // first for 64-bit alignment

	sys     *memsys.System
	dtor    Destructor
	dtorCtx any
	data    []byte
	size    int

	// block is what gets freed on destroy. For contiguous shapes it holds the
	// header and the payload; otherwise only the header.
	block []byte
}

func newRecord(sys *memsys.System, block, data []byte, size int, dtor Destructor, ctx any) *Record {
	r := &Record{
		refct:   1,
		sys:     sys,
		dtor:    dtor,
		dtorCtx: ctx,
		data:    data,
		size:    size,
		block:   block,
	}
	sys.TrackRecordAlloc()
	return r
}

// Acquire adds a reference.
func (r *Record) Acquire() {
	if memsys.DebugEnabled {
		refct := atomic.LoadUint64(&r.refct)
		logger.Debug("acquire", "record", fmt.Sprintf("%p", r), "refcount", refct)
		if refct == 0 {
			panic(ErrZeroRefcount)
		}
	}
	r.sys.Inc(&r.refct)
}

// Release drops a reference. When the count reaches zero the destructor
// runs, the block is returned to the System, and Release reports true.
func (r *Record) Release() bool {
	if memsys.DebugEnabled {
		refct := atomic.LoadUint64(&r.refct)
		logger.Debug("release", "record", fmt.Sprintf("%p", r), "refcount", refct)
		if refct == 0 {
			panic(ErrZeroRefcount)
		}
	}
	if r.sys.Dec(&r.refct) != 0 {
		return false
	}
	r.destroy()
	return true
}

func (r *Record) destroy() {
	if memsys.DebugEnabled {
		logger.Debug("destroy", "record", fmt.Sprintf("%p", r), "size", r.size)
	}
	if r.dtor != nil {
		r.dtor.Destroy(r.data, r.dtorCtx)
	}
	block := r.block
	r.block, r.data = nil, nil
	r.sys.Free(block)
	r.sys.TrackRecordFree()
}

// Data returns the payload.
func (r *Record) Data() []byte { return r.data }

// Size returns the payload size in bytes.
func (r *Record) Size() int { return r.size }

// Refcount returns the current reference count, or RefcountUnknown when r or
// its data is nil.
func (r *Record) Refcount() uint64 {
	if r == nil || r.data == nil {
		return RefcountUnknown
	}
	return atomic.LoadUint64(&r.refct)
}

// System returns the System the record was allocated from.
func (r *Record) System() *memsys.System { return r.sys }

// Header returns the bookkeeping stamped in the record's block.
func (r *Record) Header() (Header, bool) { return readHeader(r.block) }

// Shape reports which factory produced the record.
func (r *Record) Shape() Shape {
	h, _ := r.Header()
	return h.Shape
}

// Dump writes a one-line description of the record to w.
func (r *Record) Dump(w io.Writer) error {
	_, err := fmt.Fprintf(w, "Record %p refcount %d shape %s size %d\n",
		r, atomic.LoadUint64(&r.refct), r.Shape(), r.size)
	return err
}
