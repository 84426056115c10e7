package memsys_test

import (
	"sync"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"

	"github.com/joshuapare/nrtkit/memsys"
)

func TestAtomicOps_IncDec(t *testing.T) {
	impls := []struct {
		name string
		ops  memsys.AtomicOps
	}{
		{"stub", memsys.StubAtomics{}},
		{"hardware", memsys.HardwareAtomics{}},
	}
	for _, tt := range impls {
		t.Run(tt.name, func(t *testing.T) {
			var v uint64 = 1
			assert.Equal(t, uint64(2), tt.ops.Inc(&v))
			assert.Equal(t, uint64(1), tt.ops.Dec(&v))
			assert.Equal(t, uint64(0), tt.ops.Dec(&v))
			assert.Equal(t, ^uint64(0), tt.ops.Dec(&v), "decrement past zero wraps")
		})
	}
}

func TestAtomicOps_CompareAndSwap(t *testing.T) {
	impls := []struct {
		name string
		ops  memsys.AtomicOps
	}{
		{"stub", memsys.StubAtomics{}},
		{"hardware", memsys.HardwareAtomics{}},
	}
	for _, tt := range impls {
		t.Run(tt.name, func(t *testing.T) {
			a, b := new(int), new(int)
			var slot unsafe.Pointer

			ok, prev := tt.ops.CompareAndSwap(&slot, nil, unsafe.Pointer(a))
			assert.True(t, ok)
			assert.Nil(t, prev)
			assert.Equal(t, unsafe.Pointer(a), slot)

			ok, prev = tt.ops.CompareAndSwap(&slot, nil, unsafe.Pointer(b))
			assert.False(t, ok)
			assert.Equal(t, unsafe.Pointer(a), prev)
			assert.Equal(t, unsafe.Pointer(a), slot)

			ok, prev = tt.ops.CompareAndSwap(&slot, unsafe.Pointer(a), unsafe.Pointer(b))
			assert.True(t, ok)
			assert.Equal(t, unsafe.Pointer(a), prev)
			assert.Equal(t, unsafe.Pointer(b), slot)
		})
	}
}

func TestHardwareAtomics_ConcurrentCAS(t *testing.T) {
	var ops memsys.HardwareAtomics
	var slot unsafe.Pointer
	const workers = 32

	var wg sync.WaitGroup
	wins := make(chan *int, workers)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mine := new(int)
			if ok, _ := ops.CompareAndSwap(&slot, nil, unsafe.Pointer(mine)); ok {
				wins <- mine
			}
		}()
	}
	wg.Wait()
	close(wins)

	var winners []*int
	for w := range wins {
		winners = append(winners, w)
	}
	if assert.Len(t, winners, 1) {
		assert.Equal(t, unsafe.Pointer(winners[0]), slot)
	}
}
