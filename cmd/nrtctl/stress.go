package main

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/joshuapare/nrtkit/internal/logger"
	"github.com/joshuapare/nrtkit/meminfo"
	"github.com/joshuapare/nrtkit/memsys"
)

var (
	stressWorkers    int
	stressIterations int
	stressRecords    int
	stressAtomics    string
	stressAllocator  string
	stressSeed       uint64
)

// errUnbalanced is returned when counters disagree after a stress run.
var errUnbalanced = errors.New("counters unbalanced after stress run")

func init() {
	cmd := newStressCmd()
	cmd.Flags().IntVar(&stressWorkers, "workers", 4, "Concurrent goroutines")
	cmd.Flags().IntVar(&stressIterations, "iterations", 10000, "Operations per worker")
	cmd.Flags().IntVar(&stressRecords, "records", 8, "Shared records contended by all workers")
	cmd.Flags().StringVar(&stressAtomics, "atomics", atomicsHardware, "Refcount primitives: hw or stub")
	cmd.Flags().StringVar(&stressAllocator, "allocator", allocatorGo, "Block source: go, mmap or pool")
	cmd.Flags().Uint64Var(&stressSeed, "seed", 1, "Random seed")
	rootCmd.AddCommand(cmd)
}

func newStressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stress",
		Short: "Churn shared and transient records from many goroutines",
		Long: `The stress command shares a set of records between workers that acquire
and release them at random, while also allocating and destroying short-lived
records of every shape. It fails if any block or record is outstanding at
the end.

Stub atomics are not thread-safe, so --atomics stub requires --workers 1.

Example:
  nrtctl stress --workers 8 --iterations 100000
  nrtctl stress --allocator mmap --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStress()
		},
	}
}

// StressResult is the --json shape of the stress command.
type StressResult struct {
	Workers    int           `json:"workers"`
	Iterations int           `json:"iterations"`
	Records    int           `json:"records"`
	Atomics    string        `json:"atomics"`
	Allocator  string        `json:"allocator"`
	Duration   time.Duration `json:"duration_ns"`
	OpsPerSec  float64       `json:"ops_per_sec"`
	Stats      memsys.Stats  `json:"stats"`
}

func runStress() error {
	if stressWorkers < 1 || stressIterations < 0 || stressRecords < 1 {
		return fmt.Errorf("workers and records must be positive, iterations non-negative")
	}
	if stressAtomics == atomicsStub && stressWorkers > 1 {
		return fmt.Errorf("stub atomics cannot be shared by %d workers", stressWorkers)
	}
	sys, err := newSystem(stressAtomics, stressAllocator)
	if err != nil {
		return err
	}

	shared := make([]*meminfo.Record, stressRecords)
	for i := range shared {
		if shared[i], err = meminfo.AllocSafe(sys, 32); err != nil {
			return fmt.Errorf("shared record %d: %w", i, err)
		}
	}

	start := time.Now()
	errs := make([]error, stressWorkers)
	var wg sync.WaitGroup
	for w := range stressWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[w] = stressWorker(sys, shared, rand.New(rand.NewPCG(stressSeed, uint64(w))))
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)

	for _, r := range shared {
		r.Release()
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	res := StressResult{
		Workers:    stressWorkers,
		Iterations: stressIterations,
		Records:    stressRecords,
		Atomics:    stressAtomics,
		Allocator:  stressAllocator,
		Duration:   elapsed,
		Stats:      sys.Stats(),
	}
	if secs := elapsed.Seconds(); secs > 0 {
		res.OpsPerSec = float64(stressWorkers*stressIterations) / secs
	}
	logger.Info("stress finished", "workers", res.Workers, "iterations", res.Iterations,
		"duration", res.Duration, "balanced", res.Stats.Balanced())

	if jsonOut {
		if err := printJSON(res); err != nil {
			return err
		}
	} else {
		printInfo("Workers: %d  Iterations: %s  Elapsed: %s  (%s ops/s)\n",
			res.Workers, formatCount(uint64(res.Iterations)), res.Duration.Round(time.Millisecond),
			formatCount(uint64(res.OpsPerSec)))
		printStats(res.Stats)
	}
	if !res.Stats.Balanced() {
		return errUnbalanced
	}
	return nil
}

// stressWorker alternates between holding a shared record and cycling a
// transient one.
func stressWorker(sys *memsys.System, shared []*meminfo.Record, rng *rand.Rand) error {
	for range stressIterations {
		if rng.IntN(2) == 0 {
			r := shared[rng.IntN(len(shared))]
			r.Acquire()
			if r.Release() {
				return fmt.Errorf("shared record destroyed while still referenced")
			}
			continue
		}

		size := 1 + rng.IntN(512)
		var (
			r   *meminfo.Record
			err error
		)
		switch rng.IntN(4) {
		case 0:
			r, err = meminfo.Alloc(sys, size)
		case 1:
			r, err = meminfo.AllocSafe(sys, size)
		case 2:
			r, err = meminfo.AllocSafeAligned(sys, size, 1<<rng.IntN(8))
		default:
			r, err = meminfo.AllocVarsize(sys, size)
			if err == nil {
				_, err = r.VarsizeRealloc(size * 2)
				if err != nil {
					r.Release()
				}
			}
		}
		if err != nil {
			return err
		}
		r.Acquire()
		r.Release()
		if !r.Release() {
			return fmt.Errorf("transient %s record outlived its last reference", r.Shape())
		}
	}
	return nil
}
