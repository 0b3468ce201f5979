package farming

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/farmplan/internal/data"
)

func TestFamilyRadius(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1.0, FamilyRadius(nil))
	assert.Equal(t, 0.5, FamilyRadius(data.Tuning{data.TuningFamilyRadius: 2}))
	assert.Equal(t, minFamilyRadius, FamilyRadius(data.Tuning{data.TuningFamilyRadius: 0}))
}

func TestBuildSlotGraph_CenterAdjacency(t *testing.T) {
	t.Parallel()

	pits := BuildPits(TileShape{1, 1}, Pattern9)
	g := BuildSlotGraph(pits, FamilyRadius(nil))
	require.Equal(t, 9, g.Len())

	const center = 4
	require.Equal(t, 0.5, pits[center].X)
	require.Equal(t, 0.5, pits[center].Y)
	assert.Equal(t, 8, g.Degree(center))
	assert.Equal(t, []int{0, 1, 2, 3, 5, 6, 7, 8}, g.Neighbors(center))
}

func TestBuildSlotGraph_SmallRadius(t *testing.T) {
	t.Parallel()

	pits := BuildPits(TileShape{1, 1}, Pattern9)
	g := BuildSlotGraph(pits, 0.5)

	// Corner (0.25, 0.25) reaches everything within half a tile.
	assert.Equal(t, []int{1, 2, 3, 4, 6}, g.Neighbors(0))
	assert.Equal(t, 8, g.Degree(4))

	for i := range g.Len() {
		assert.False(t, g.Adjacent(i, i), "self loop at %d", i)
		for j := range g.Len() {
			assert.Equal(t, g.Adjacent(i, j), g.Adjacent(j, i), "asymmetric edge %d-%d", i, j)
		}
	}
	assert.False(t, g.Adjacent(-1, 0))
	assert.False(t, g.Adjacent(0, 99))
}

func TestSlotGraph_LargestClusters(t *testing.T) {
	t.Parallel()

	line := []Slot{
		{X: 0, Index: 0},
		{X: 1, Index: 1},
		{X: 2, Index: 2},
		{X: 3, Index: 3},
		{X: 4, Index: 4},
	}
	g := BuildSlotGraph(line, 1)

	tests := []struct {
		name   string
		assign []string
		want   map[string]int
	}{
		{"split", []string{"a", "a", "b", "a", "a"}, map[string]int{"a": 2, "b": 1}},
		{"single run", []string{"a", "a", "a", "b", "b"}, map[string]int{"a": 3, "b": 2}},
		{"empty pits ignored", []string{"a", "", "a", "a", ""}, map[string]int{"a": 2}},
		{"nothing", nil, map[string]int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.LargestClusters(tt.assign))
		})
	}
}

func TestBitset(t *testing.T) {
	t.Parallel()

	b := newBitset(130)
	for _, i := range []int{0, 63, 64, 129} {
		b.set(i)
	}
	assert.Equal(t, 4, b.count())
	assert.True(t, b.has(64))
	assert.False(t, b.has(65))

	var got []int
	b.each(func(i int) { got = append(got, i) })
	assert.Equal(t, []int{0, 63, 64, 129}, got)
}
