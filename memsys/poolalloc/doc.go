// Package poolalloc provides a memsys.Allocator that recycles freed blocks
// through segregated free lists.
//
// # Size Classes
//
// Requests are rounded up to a size class. Small sizes use linear classes
// (SmallMin to SmallMax in SmallIncrement steps); medium sizes grow
// geometrically by GrowthFactor up to MediumMax. Every block of a class has
// the class's full capacity, so a freed block can serve any later request
// of the same class.
//
//	ConfigFineGrained: 8-256 step 8, then x1.5 to 16K  (~46 classes)
//	ConfigBalanced:    8-512 step 16, then x1.5 to 16K (~40 classes)
//	ConfigCoarse:      8-512 step 32, then x2 to 16K   (~22 classes)
//
// Requests above MediumMax go on the large path: they are allocated
// directly and dropped on Free.
//
// # Usage Example
//
//	pool := poolalloc.New(&poolalloc.ConfigBalanced)
//	sys := memsys.New(&memsys.Options{Allocator: pool})
//	rec, err := meminfo.Alloc(sys, 200)
//
// # Thread Safety
//
// All methods are safe for concurrent use; the free lists are guarded by
// one mutex.
package poolalloc
