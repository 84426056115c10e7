package poolalloc

import (
	"math"
	"sort"
)

// Config defines the size class strategy.
type Config struct {
	// Name for this configuration (for benchmarking)
	Name string

	// Small allocation settings (linear increments)
	SmallMin       int // Minimum class capacity (typically 8)
	SmallMax       int // Max for linear increments (typically 256-512)
	SmallIncrement int // Increment size for small allocations (8, 16, or 32)

	// Medium allocation settings (geometric growth)
	MediumMax    int     // Max before the large path (typically 16KB)
	GrowthFactor float64 // Growth factor between medium classes (1.5, 2.0, etc.)

	// MaxFreePerClass caps how many blocks a class keeps; 0 means 64.
	MaxFreePerClass int
}

// Predefined configurations.
var (
	// FineGrained: Many small buckets, good for varied workloads
	ConfigFineGrained = Config{
		Name:           "FineGrained",
		SmallMin:       8,
		SmallMax:       256,
		SmallIncrement: 8,
		MediumMax:      16384,
		GrowthFactor:   1.5,
	}

	// Balanced: Good balance between retained memory and granularity
	ConfigBalanced = Config{
		Name:           "Balanced",
		SmallMin:       8,
		SmallMax:       512,
		SmallIncrement: 16,
		MediumMax:      16384,
		GrowthFactor:   1.5,
	}

	// Coarse: Fewer buckets, more internal fragmentation
	ConfigCoarse = Config{
		Name:           "Coarse",
		SmallMin:       8,
		SmallMax:       512,
		SmallIncrement: 32,
		MediumMax:      16384,
		GrowthFactor:   2.0,
	}

	// DefaultConfig is used when New is given nil.
	DefaultConfig = ConfigBalanced
)

// classTable holds the computed class capacities.
type classTable struct {
	name       string
	boundaries []int // capacity of each class, ascending
}

// newClassTable computes class capacities from config.
func newClassTable(config Config) *classTable {
	t := &classTable{
		name:       config.Name,
		boundaries: make([]int, 0, 64),
	}
	inc := max(config.SmallIncrement, 1)

	// Phase 1: Small allocations (linear increments)
	for size := config.SmallMin; size < config.SmallMax; size += inc {
		t.boundaries = append(t.boundaries, size+inc-1)
	}

	// Phase 2: Medium allocations (geometric growth)
	size := max(config.SmallMax, t.last()+1)
	for size < config.MediumMax {
		next := int(math.Ceil(float64(size) * config.GrowthFactor))
		if next <= size {
			next = size + 1 // Ensure progress
		}
		t.boundaries = append(t.boundaries, next-1)
		size = next
	}
	return t
}

func (t *classTable) last() int {
	if len(t.boundaries) == 0 {
		return 0
	}
	return t.boundaries[len(t.boundaries)-1]
}

// classOf returns the smallest class whose capacity fits size, or
// NumClasses() for the large path.
func (t *classTable) classOf(size int) int {
	return sort.SearchInts(t.boundaries, size)
}

// capacity returns the block capacity of class c.
func (t *classTable) capacity(c int) int { return t.boundaries[c] }

// String returns the configuration name.
func (t *classTable) String() string { return t.name }

// NumClasses returns the number of size classes (excluding the large path).
func (t *classTable) NumClasses() int { return len(t.boundaries) }
