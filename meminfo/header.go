package meminfo

import (
	"fmt"

	"github.com/joshuapare/nrtkit/internal/buf"
)

// HeaderSize is the number of bytes reserved at the start of every record block.
const HeaderSize = 40

const headerMagic uint32 = 0x5254524e // "NRTR"

// Header field offsets.
const (
	hdrMagic  = 0
	hdrShape  = 4
	hdrSize   = 8
	hdrOffset = 16
	hdrAlign  = 24
)

// Shape identifies which factory produced a record.
type Shape uint32

const (
	ShapeUnknown Shape = iota
	ShapePlain
	ShapeSafe
	ShapeAligned
	ShapeSafeAligned
	ShapeVarsize
	ShapeExternal
)

func (s Shape) String() string {
	switch s {
	case ShapePlain:
		return "plain"
	case ShapeSafe:
		return "safe"
	case ShapeAligned:
		return "aligned"
	case ShapeSafeAligned:
		return "safe-aligned"
	case ShapeVarsize:
		return "varsize"
	case ShapeExternal:
		return "external"
	default:
		return fmt.Sprintf("shape(%d)", uint32(s))
	}
}

// Header is the bookkeeping stamped at the start of a record block.
// Offset is the payload's distance from the start of the block, or 0 when
// the payload lives in a separate allocation.
type Header struct {
	Shape  Shape
	Size   uint64
	Offset uint64
	Align  uint64
}

func stampHeader(block []byte, h Header) {
	buf.PutU32LE(block[hdrMagic:], headerMagic)
	buf.PutU32LE(block[hdrShape:], uint32(h.Shape))
	buf.PutU64LE(block[hdrSize:], h.Size)
	buf.PutU64LE(block[hdrOffset:], h.Offset)
	buf.PutU64LE(block[hdrAlign:], h.Align)
}

func readHeader(block []byte) (Header, bool) {
	if len(block) < HeaderSize || buf.U32LE(block[hdrMagic:]) != headerMagic {
		return Header{}, false
	}
	return Header{
		Shape:  Shape(buf.U32LE(block[hdrShape:])),
		Size:   buf.U64LE(block[hdrSize:]),
		Offset: buf.U64LE(block[hdrOffset:]),
		Align:  buf.U64LE(block[hdrAlign:]),
	}, true
}

// AlignOffset returns the forward distance in [0, align) from addr to the
// next multiple of align. align must be positive.
func AlignOffset(addr, align uintptr) uintptr {
	return (align - addr%align) % align
}
