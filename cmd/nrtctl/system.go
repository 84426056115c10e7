package main

import (
	"fmt"

	"github.com/joshuapare/nrtkit/memsys"
	"github.com/joshuapare/nrtkit/memsys/mmapalloc"
	"github.com/joshuapare/nrtkit/memsys/poolalloc"
)

// Values accepted by --atomics and --allocator.
const (
	atomicsHardware = "hw"
	atomicsStub     = "stub"

	allocatorGo   = "go"
	allocatorMmap = "mmap"
	allocatorPool = "pool"
)

// newSystem builds an initialised System from CLI selections.
func newSystem(atomics, allocator string) (*memsys.System, error) {
	var ops memsys.AtomicOps
	switch atomics {
	case atomicsHardware:
		ops = memsys.HardwareAtomics{}
	case atomicsStub, "":
		ops = memsys.StubAtomics{}
	default:
		return nil, fmt.Errorf("unknown atomics %q (want %s or %s)", atomics, atomicsHardware, atomicsStub)
	}

	var a memsys.Allocator
	switch allocator {
	case allocatorGo, "":
		a = memsys.DefaultAllocator
	case allocatorMmap:
		a = mmapalloc.New()
	case allocatorPool:
		a = poolalloc.New(nil)
	default:
		return nil, fmt.Errorf("unknown allocator %q (want %s, %s or %s)",
			allocator, allocatorGo, allocatorMmap, allocatorPool)
	}

	printVerbose("System: atomics=%s allocator=%s\n", atomics, allocator)
	return memsys.New(&memsys.Options{Allocator: a, Atomics: ops}), nil
}
