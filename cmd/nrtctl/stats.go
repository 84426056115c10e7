package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/nrtkit/meminfo"
	"github.com/joshuapare/nrtkit/memsys"
	"github.com/joshuapare/nrtkit/memsys/poolalloc"
)

var (
	statsCount     int
	statsSize      int
	statsAlign     int
	statsAllocator string
)

func init() {
	cmd := newStatsCmd()
	cmd.Flags().IntVar(&statsCount, "count", 16, "Records to create per shape")
	cmd.Flags().IntVar(&statsSize, "size", 128, "Payload size in bytes")
	cmd.Flags().IntVar(&statsAlign, "align", 64, "Alignment for aligned shapes")
	cmd.Flags().StringVar(&statsAllocator, "allocator", allocatorGo, "Block source: go, mmap or pool")
	rootCmd.AddCommand(cmd)
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show counters for a mix of record shapes",
		Long: `The stats command creates --count records of every shape, prints the
counters while they are live, releases them and prints the counters again.

Example:
  nrtctl stats --count 1000 --size 4096
  nrtctl stats --allocator mmap --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats()
		},
	}
}

// StatsResult is the --json shape of the stats command.
type StatsResult struct {
	Shapes map[string]int `json:"shapes"`
	Peak   memsys.Stats   `json:"peak"`
	Final  memsys.Stats   `json:"final"`

	Pool *poolalloc.Stats `json:"pool,omitempty"`
}

func runStats() error {
	if statsCount < 0 || statsSize < 0 {
		return fmt.Errorf("count and size must be non-negative")
	}
	sys, err := newSystem(atomicsStub, statsAllocator)
	if err != nil {
		return err
	}

	ctors := []struct {
		shape meminfo.Shape
		alloc func() (*meminfo.Record, error)
	}{
		{meminfo.ShapePlain, func() (*meminfo.Record, error) { return meminfo.Alloc(sys, statsSize) }},
		{meminfo.ShapeSafe, func() (*meminfo.Record, error) { return meminfo.AllocSafe(sys, statsSize) }},
		{meminfo.ShapeAligned, func() (*meminfo.Record, error) { return meminfo.AllocAligned(sys, statsSize, statsAlign) }},
		{meminfo.ShapeSafeAligned, func() (*meminfo.Record, error) { return meminfo.AllocSafeAligned(sys, statsSize, statsAlign) }},
		{meminfo.ShapeVarsize, func() (*meminfo.Record, error) { return meminfo.AllocVarsize(sys, statsSize) }},
	}

	res := StatsResult{Shapes: make(map[string]int)}
	var live []*meminfo.Record
	defer func() {
		for _, r := range live {
			r.Release()
		}
	}()
	for _, c := range ctors {
		for range statsCount {
			r, err := c.alloc()
			if err != nil {
				return fmt.Errorf("%s record: %w", c.shape, err)
			}
			live = append(live, r)
			res.Shapes[c.shape.String()]++
		}
		printVerbose("Created %d %s records\n", statsCount, c.shape)
	}

	res.Peak = sys.Stats()
	for _, r := range live {
		r.Release()
	}
	live = nil
	res.Final = sys.Stats()
	if pool, ok := sys.Allocator().(*poolalloc.Allocator); ok {
		ps := pool.Stats()
		res.Pool = &ps
	}

	if jsonOut {
		return printJSON(res)
	}
	printInfo("While live:\n")
	printStats(res.Peak)
	printInfo("\nAfter release:\n")
	printStats(res.Final)
	if res.Pool != nil {
		printInfo("\nPool:\n")
		printInfo("  Hits:       %s\n", formatCount(res.Pool.Hits))
		printInfo("  Misses:     %s\n", formatCount(res.Pool.Misses))
		printInfo("  Recycled:   %s\n", formatCount(res.Pool.Recycled))
		printInfo("  Dropped:    %s\n", formatCount(res.Pool.Dropped))
	}
	return nil
}
