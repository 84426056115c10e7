package buf

import (
	"fmt"
	"math"
)

// AddOverflowSafe adds a and b, returning ok = false when the result would overflow int.
func AddOverflowSafe(a, b int) (int, bool) {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return 0, false
	case b < 0 && a < math.MinInt-b:
		return 0, false
	default:
		return a + b, true
	}
}

// MulOverflowSafe multiplies two non-negative ints, returning ok = false on overflow
// or when either operand is negative.
func MulOverflowSafe(a, b int) (int, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	if a == 0 || b == 0 {
		return 0, true
	}
	if a > math.MaxInt/b {
		return 0, false
	}
	return a * b, true
}

// BlockSize returns header + size + 2*pad, the size of a block that carries a
// header, a payload and room to slide the payload forward by up to 2*pad bytes.
//
//	n, err := buf.BlockSize(HeaderSize, size, align)
//	if err != nil {
//	    return nil, fmt.Errorf("aligned: %w", err)
//	}
func BlockSize(header, size, pad int) (int, error) {
	if header < 0 {
		return 0, fmt.Errorf("negative header: %d", header)
	}
	if size < 0 {
		return 0, fmt.Errorf("negative size: %d", size)
	}
	slack, ok := MulOverflowSafe(pad, 2)
	if !ok {
		return 0, fmt.Errorf("overflow: pad=%d * 2", pad)
	}
	n, ok := AddOverflowSafe(header, size)
	if !ok {
		return 0, fmt.Errorf("overflow: header=%d + size=%d", header, size)
	}
	n, ok = AddOverflowSafe(n, slack)
	if !ok {
		return 0, fmt.Errorf("overflow: %d + slack=%d", n, slack)
	}
	return n, nil
}

// Slice returns the sub-slice [off:off+n] if it fits within len(b).
// The capacity of the result is clipped to n.
func Slice(b []byte, off, n int) ([]byte, bool) {
	if off < 0 || n < 0 || off > len(b) {
		return nil, false
	}
	end, ok := AddOverflowSafe(off, n)
	if !ok || end > len(b) {
		return nil, false
	}
	return b[off:end:end], true
}

// Has reports whether b[off:off+n] is within bounds.
func Has(b []byte, off, n int) bool {
	_, ok := Slice(b, off, n)
	return ok
}
