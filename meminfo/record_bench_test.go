package meminfo_test

import (
	"testing"

	"github.com/joshuapare/nrtkit/meminfo"
	"github.com/joshuapare/nrtkit/memsys"
)

func BenchmarkAcquireRelease(b *testing.B) {
	impls := []struct {
		name string
		ops  memsys.AtomicOps
	}{
		{"stub", memsys.StubAtomics{}},
		{"hardware", memsys.HardwareAtomics{}},
	}
	for _, impl := range impls {
		b.Run(impl.name, func(b *testing.B) {
			sys := memsys.New(&memsys.Options{Atomics: impl.ops})
			r, err := meminfo.Alloc(sys, 64)
			if err != nil {
				b.Fatal(err)
			}
			b.ReportAllocs()
			for b.Loop() {
				r.Acquire()
				r.Release()
			}
			r.Release()
		})
	}
}

func BenchmarkAcquireRelease_Parallel(b *testing.B) {
	sys := memsys.New(&memsys.Options{Atomics: memsys.HardwareAtomics{}})
	r, err := meminfo.Alloc(sys, 64)
	if err != nil {
		b.Fatal(err)
	}
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			r.Acquire()
			r.Release()
		}
	})
	r.Release()
}

func BenchmarkAlloc(b *testing.B) {
	sys := memsys.New(&memsys.Options{Atomics: memsys.HardwareAtomics{}})
	shapes := []struct {
		name string
		fn   func() (*meminfo.Record, error)
	}{
		{"plain", func() (*meminfo.Record, error) { return meminfo.Alloc(sys, 256) }},
		{"safe", func() (*meminfo.Record, error) { return meminfo.AllocSafe(sys, 256) }},
		{"aligned64", func() (*meminfo.Record, error) { return meminfo.AllocAligned(sys, 256, 64) }},
		{"varsize", func() (*meminfo.Record, error) { return meminfo.AllocVarsize(sys, 256) }},
	}
	for _, s := range shapes {
		b.Run(s.name, func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				r, err := s.fn()
				if err != nil {
					b.Fatal(err)
				}
				r.Release()
			}
		})
	}
}
