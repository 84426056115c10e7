package poolalloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassTable_Boundaries(t *testing.T) {
	for _, cfg := range []Config{ConfigFineGrained, ConfigBalanced, ConfigCoarse} {
		t.Run(cfg.Name, func(t *testing.T) {
			tbl := newClassTable(cfg)
			require.Positive(t, tbl.NumClasses())
			assert.Equal(t, cfg.Name, tbl.String())

			for i := 1; i < tbl.NumClasses(); i++ {
				require.Greater(t, tbl.boundaries[i], tbl.boundaries[i-1], "class %d", i)
			}
			require.GreaterOrEqual(t, tbl.last(), cfg.MediumMax-1)
		})
	}
}

func TestClassTable_ClassOf(t *testing.T) {
	tbl := newClassTable(ConfigBalanced)

	tests := []struct {
		size int
		want int
	}{
		{0, 0},
		{1, 0},
		{23, 0},
		{24, 1},
		{39, 1},
		{40, 2},
		{519, 31},
		{520, 32},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tbl.classOf(tt.size), "size %d", tt.size)
	}
	assert.Equal(t, tbl.NumClasses(), tbl.classOf(tbl.last()+1))

	for size := 0; size <= tbl.last(); size += 7 {
		c := tbl.classOf(size)
		require.Less(t, c, tbl.NumClasses())
		require.GreaterOrEqual(t, tbl.capacity(c), size)
		if c > 0 {
			require.Less(t, tbl.capacity(c-1), size)
		}
	}
}

func TestClassTable_ZeroIncrementProgresses(t *testing.T) {
	tbl := newClassTable(Config{SmallMin: 8, SmallMax: 16, MediumMax: 32, GrowthFactor: 1.0})
	require.Positive(t, tbl.NumClasses())
	require.GreaterOrEqual(t, tbl.last(), 31)
}
