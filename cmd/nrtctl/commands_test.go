package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/nrtkit/meminfo"
	"github.com/joshuapare/nrtkit/memsys"
	"github.com/joshuapare/nrtkit/memsys/mmapalloc"
	"github.com/joshuapare/nrtkit/memsys/poolalloc"
)

func TestDemoCommand(t *testing.T) {
	tests := []struct {
		name        string
		json        bool
		quiet       bool
		wantContain []string
	}{
		{
			name:        "text",
			wantContain: []string{"Scenario 1", "refcount 2", "refcount 1", "records freed +1", "mod 64 = 0", "Records:"},
		},
		{
			name:        "json",
			json:        true,
			wantContain: []string{`"records_freed": 1`, `"aligned_offset": 0`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			jsonOut = tt.json

			output, err := captureOutput(t, runDemo)
			require.NoError(t, err, output)
			if tt.json {
				assertJSON(t, output)
				var res DemoResult
				require.NoError(t, json.Unmarshal([]byte(output), &res))
				assert.Equal(t, []uint64{1, 2, 1}, res.Refcounts)
				assert.True(t, res.Stats.Balanced())
			}
			assertContains(t, output, tt.wantContain)
		})
	}
}

func TestStressCommand(t *testing.T) {
	tests := []struct {
		name      string
		workers   int
		atomics   string
		allocator string
		wantErr   bool
	}{
		{name: "hardware atomics", workers: 8, atomics: atomicsHardware, allocator: allocatorGo},
		{name: "stub atomics single worker", workers: 1, atomics: atomicsStub, allocator: allocatorGo},
		{name: "mmap allocator", workers: 4, atomics: atomicsHardware, allocator: allocatorMmap},
		{name: "pool allocator", workers: 4, atomics: atomicsHardware, allocator: allocatorPool},
		{name: "stub atomics many workers", workers: 2, atomics: atomicsStub, allocator: allocatorGo, wantErr: true},
		{name: "unknown allocator", workers: 1, atomics: atomicsHardware, allocator: "jemalloc", wantErr: true},
		{name: "unknown atomics", workers: 1, atomics: "lock", allocator: allocatorGo, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			jsonOut = true
			stressWorkers = tt.workers
			stressIterations = 500
			stressAtomics = tt.atomics
			stressAllocator = tt.allocator

			output, err := captureOutput(t, runStress)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err, output)

			var res StressResult
			require.NoError(t, json.Unmarshal([]byte(output), &res))
			assert.Equal(t, tt.workers, res.Workers)
			assert.True(t, res.Stats.Balanced())
			assert.Positive(t, res.Stats.RecordAlloc)
		})
	}
}

func TestStatsCommand(t *testing.T) {
	resetFlags()
	jsonOut = true
	statsCount = 3

	output, err := captureOutput(t, runStats)
	require.NoError(t, err, output)

	var res StatsResult
	require.NoError(t, json.Unmarshal([]byte(output), &res))
	assert.Len(t, res.Shapes, 5)
	assert.Equal(t, 3, res.Shapes["varsize"])
	assert.EqualValues(t, 15, res.Peak.LiveRecords())
	// varsize records hold a header block and a payload block.
	assert.EqualValues(t, 18, res.Peak.LiveBlocks())
	assert.True(t, res.Final.Balanced())
}

func TestStatsCommand_PoolAllocator(t *testing.T) {
	resetFlags()
	jsonOut = true
	statsCount = 2
	statsAllocator = allocatorPool

	output, err := captureOutput(t, runStats)
	require.NoError(t, err, output)

	var res StatsResult
	require.NoError(t, json.Unmarshal([]byte(output), &res))
	require.NotNil(t, res.Pool)
	assert.Positive(t, res.Pool.Recycled)
	assert.True(t, res.Final.Balanced())
}

func TestStatsCommand_Text(t *testing.T) {
	resetFlags()
	statsCount = 1000

	output, err := captureOutput(t, runStats)
	require.NoError(t, err)
	assertContains(t, output, []string{"While live:", "After release:", "5,000"})
}

func TestGuestCommand(t *testing.T) {
	resetFlags()
	jsonOut = true

	output, err := captureOutput(t, func() error { return runGuest(t.Context()) })
	require.NoError(t, err, output)

	var calls []GuestCall
	require.NoError(t, json.Unmarshal([]byte(output), &calls))
	require.Len(t, calls, 10)
	assert.Equal(t, "record_alloc", calls[0].Name)
	assert.Equal(t, []uint64{1}, calls[1].Results)
	assert.Equal(t, []uint64{2}, calls[3].Results)
	assert.Equal(t, "record_write", calls[4].Name)
	assert.EqualValues(t, len(guestMessage), calls[4].Results[0])
	assert.EqualValues(t, len(guestMessage), calls[5].Results[0])
	assert.Equal(t, []uint64{0}, calls[6].Results)
	assert.Equal(t, []uint64{1}, calls[7].Results)
	assert.Equal(t, []uint64{1}, calls[9].Results)
}

func TestGuestCommand_SmallPayload(t *testing.T) {
	resetFlags()
	guestSize = 4

	output, err := captureOutput(t, func() error { return runGuest(t.Context()) })
	require.NoError(t, err, output)
	assertContains(t, output, []string{"record_write", "record_read", "memsys_stats_record_free"})
}

func TestNewSystem(t *testing.T) {
	resetFlags()

	sys, err := newSystem(atomicsHardware, allocatorMmap)
	require.NoError(t, err)
	assert.IsType(t, &mmapalloc.Allocator{}, sys.Allocator())

	sys, err = newSystem(atomicsStub, allocatorPool)
	require.NoError(t, err)
	assert.IsType(t, &poolalloc.Allocator{}, sys.Allocator())

	sys, err = newSystem("", "")
	require.NoError(t, err)
	assert.Same(t, memsys.DefaultAllocator, sys.Allocator())
}

func TestFormatCount(t *testing.T) {
	assert.Equal(t, "0", formatCount(0))
	assert.Equal(t, "1,048,576", formatCount(1<<20))
}

func TestVersionCommand(t *testing.T) {
	resetFlags()
	output, err := captureOutput(t, runVersion)
	require.NoError(t, err)
	assertContains(t, output, []string{"nrtctl dev", "nrtdebug:", "header size: 40 bytes"})

	jsonOut = true
	output, err = captureOutput(t, runVersion)
	require.NoError(t, err)
	var info VersionInfo
	require.NoError(t, json.Unmarshal([]byte(output), &info))
	assert.Equal(t, memsys.DebugEnabled, info.Debug)
	assert.Equal(t, meminfo.HeaderSize, info.HeaderSize)
	assert.NotEmpty(t, info.Go)
}
