package memsys

import "sync/atomic"

// StatsAlloc returns the number of blocks obtained through Allocate.
func (s *System) StatsAlloc() uint64 { return atomic.LoadUint64(&s.statsAlloc) }

// StatsFree returns the number of blocks returned through Free.
func (s *System) StatsFree() uint64 { return atomic.LoadUint64(&s.statsFree) }

// StatsRecordAlloc returns the number of allocation records created.
func (s *System) StatsRecordAlloc() uint64 { return atomic.LoadUint64(&s.statsRecordAlloc) }

// StatsRecordFree returns the number of allocation records destroyed.
func (s *System) StatsRecordFree() uint64 { return atomic.LoadUint64(&s.statsRecordFree) }

// Stats returns all four counters.
func (s *System) Stats() Stats {
	return Stats{
		Alloc:       s.StatsAlloc(),
		Free:        s.StatsFree(),
		RecordAlloc: s.StatsRecordAlloc(),
		RecordFree:  s.StatsRecordFree(),
	}
}
