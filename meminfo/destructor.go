package meminfo

import (
	"fmt"

	"github.com/joshuapare/nrtkit/internal/logger"
	"github.com/joshuapare/nrtkit/memsys"
)

// Debug markers written by the safe shapes.
const (
	FillAlloc byte = 0xCB
	FillFree  byte = 0xDE

	// SafeFillLen bounds how much of the payload is marked, a few cache lines.
	SafeFillLen = 256
)

// Destructor is invoked once with the payload and the record's destructor
// context when the refcount reaches zero. It may read data but must not keep
// it past the call.
type Destructor interface {
	Destroy(data []byte, ctx any)
}

// DestructorFunc adapts a function to Destructor.
type DestructorFunc func(data []byte, ctx any)

// Destroy calls f(data, ctx).
func (f DestructorFunc) Destroy(data []byte, ctx any) { f(data, ctx) }

// safeDestructor marks the payload prefix freed. Its context is the payload size.
type safeDestructor struct{}

func (safeDestructor) Destroy(data []byte, ctx any) {
	size, _ := ctx.(int)
	if memsys.DebugEnabled {
		logger.Debug("safe dtor", "data", fmt.Sprintf("%p", data), "size", size)
	}
	fill(data[:min(size, SafeFillLen, len(data))], FillFree)
}

// varsizeDestructor frees the independently allocated payload. Its context
// is the owning System.
type varsizeDestructor struct{}

func (varsizeDestructor) Destroy(data []byte, ctx any) {
	if memsys.DebugEnabled {
		logger.Debug("varsize dtor", "data", fmt.Sprintf("%p", data))
	}
	ctx.(*memsys.System).Free(data)
}

var (
	safeDtor    Destructor = safeDestructor{}
	varsizeDtor Destructor = varsizeDestructor{}
)

func fill(b []byte, v byte) {
	for i := range b {
		b[i] = v
	}
}
