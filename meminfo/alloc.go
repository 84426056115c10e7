package meminfo

import (
	"fmt"
	"unsafe"

	"github.com/joshuapare/nrtkit/internal/buf"
	"github.com/joshuapare/nrtkit/internal/logger"
	"github.com/joshuapare/nrtkit/memsys"
)

// Alloc creates a record whose header and size-byte payload share one block.
func Alloc(sys *memsys.System, size int) (*Record, error) {
	return allocContiguous(sys, size, 0, ShapePlain)
}

// AllocSafe is Alloc with the first min(size, SafeFillLen) payload bytes set
// to FillAlloc, and reset to FillFree when the record is destroyed.
func AllocSafe(sys *memsys.System, size int) (*Record, error) {
	return allocContiguous(sys, size, 0, ShapeSafe)
}

// AllocAligned creates a record whose payload address is a multiple of align.
func AllocAligned(sys *memsys.System, size, align int) (*Record, error) {
	if align <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrBadAlign, align)
	}
	return allocContiguous(sys, size, align, ShapeAligned)
}

// AllocSafeAligned combines AllocSafe and AllocAligned.
func AllocSafeAligned(sys *memsys.System, size, align int) (*Record, error) {
	if align <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrBadAlign, align)
	}
	return allocContiguous(sys, size, align, ShapeSafeAligned)
}

// allocContiguous lays out [header | slack | payload | slack] in one block.
// The payload starts at HeaderSize plus the alignment offset, so the header
// always precedes the unadjusted base and destroy frees the whole block.
func allocContiguous(sys *memsys.System, size, align int, shape Shape) (*Record, error) {
	if size < 0 {
		return nil, fmt.Errorf("%w: %d", ErrBadSize, size)
	}
	n, err := buf.BlockSize(HeaderSize, size, align)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSize, err)
	}
	block := sys.Allocate(n)
	if block == nil {
		return nil, fmt.Errorf("%s record of %d bytes: %w", shape, size, ErrOutOfMemory)
	}

	off := uintptr(HeaderSize)
	if align > 0 {
		base := uintptr(unsafe.Pointer(unsafe.SliceData(block))) + HeaderSize
		off += AlignOffset(base, uintptr(align))
	}
	data, _ := buf.Slice(block, int(off), size)
	stampHeader(block, Header{
		Shape:  shape,
		Size:   uint64(size),
		Offset: uint64(off),
		Align:  uint64(align),
	})

	var (
		dtor Destructor
		ctx  any
	)
	if shape == ShapeSafe || shape == ShapeSafeAligned {
		fill(data[:min(size, SafeFillLen)], FillAlloc)
		dtor, ctx = safeDtor, size
	}
	r := newRecord(sys, block, data, size, dtor, ctx)
	if memsys.DebugEnabled {
		logger.Debug("alloc", "shape", shape.String(), "record", fmt.Sprintf("%p", r),
			"data", fmt.Sprintf("%p", unsafe.SliceData(data)), "size", size, "align", align)
	}
	return r, nil
}

// New wraps caller-owned data in a record. Only the header is allocated from
// sys; dtor, if not nil, is responsible for the data itself.
func New(sys *memsys.System, data []byte, dtor Destructor, ctx any) (*Record, error) {
	return newHeaderOnly(sys, data, dtor, ctx, ShapeExternal)
}

func newHeaderOnly(sys *memsys.System, data []byte, dtor Destructor, ctx any, shape Shape) (*Record, error) {
	block := sys.Allocate(HeaderSize)
	if block == nil {
		return nil, fmt.Errorf("%s record header: %w", shape, ErrOutOfMemory)
	}
	stampHeader(block, Header{Shape: shape, Size: uint64(len(data))})
	return newRecord(sys, block, data, len(data), dtor, ctx), nil
}

// AllocVarsize creates a record whose payload is a separate allocation that
// VarsizeRealloc can resize.
func AllocVarsize(sys *memsys.System, size int) (*Record, error) {
	if size < 0 {
		return nil, fmt.Errorf("%w: %d", ErrBadSize, size)
	}
	data := sys.Allocate(size)
	if data == nil {
		return nil, fmt.Errorf("varsize payload of %d bytes: %w", size, ErrOutOfMemory)
	}
	r, err := newHeaderOnly(sys, data, varsizeDtor, sys, ShapeVarsize)
	if err != nil {
		sys.Free(data)
		return nil, err
	}
	if memsys.DebugEnabled {
		logger.Debug("alloc varsize", "size", size, "record", fmt.Sprintf("%p", r),
			"data", fmt.Sprintf("%p", unsafe.SliceData(data)))
	}
	return r, nil
}

// VarsizeRealloc resizes the payload of a varsize record and returns it; the
// payload may move. On allocation failure the record keeps its old payload
// and size. Calling it on any other shape fires the System's fatal policy.
func (r *Record) VarsizeRealloc(size int) ([]byte, error) {
	if r.dtor != varsizeDtor {
		return nil, r.sys.Fatal(fmt.Errorf("%w (shape %s)", ErrNotVarsize, r.Shape()))
	}
	if size < 0 {
		return nil, fmt.Errorf("%w: %d", ErrBadSize, size)
	}
	data := r.sys.Reallocate(r.data, size)
	if data == nil {
		return nil, fmt.Errorf("varsize realloc to %d bytes: %w", size, ErrOutOfMemory)
	}
	r.data = data
	r.size = size
	buf.PutU64LE(r.block[hdrSize:], uint64(size))
	if memsys.DebugEnabled {
		logger.Debug("varsize realloc", "record", fmt.Sprintf("%p", r), "size", size,
			"data", fmt.Sprintf("%p", unsafe.SliceData(data)))
	}
	return data, nil
}
