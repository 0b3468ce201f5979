package farming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPits_Counts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		shape   TileShape
		pattern PitPattern
		want    int
	}{
		{TileShape{2, 1}, Pattern9, 18},
		{TileShape{1, 1}, Pattern8, 8},
		{TileShape{1, 1}, Pattern10, 10},
		{TileShape{1, 2}, Pattern10, 20},
		{TileShape{0, 2}, Pattern9, 0},
		{TileShape{1, 1}, "bogus", 9},
	}
	for _, tt := range tests {
		t.Run(string(tt.pattern), func(t *testing.T) {
			assert.Len(t, BuildPits(tt.shape, tt.pattern), tt.want)
		})
	}
}

func TestBuildPits_Pattern8SkipsCenter(t *testing.T) {
	t.Parallel()

	for _, p := range BuildPits(TileShape{1, 1}, Pattern8) {
		assert.False(t, p.X == 0.5 && p.Y == 0.5, "center pit present")
	}
}

func TestBuildPits_Order(t *testing.T) {
	t.Parallel()

	pits := BuildPits(TileShape{2, 2}, Pattern9)
	for i, p := range pits {
		assert.Equal(t, i, p.Index)
		tile := i / 9
		assert.Equal(t, tile%2, p.TileX, "tiles are visited row-major")
		assert.Equal(t, tile/2, p.TileY)
		assert.Greater(t, p.X, float64(p.TileX))
		assert.Less(t, p.X, float64(p.TileX+1))
	}
	assert.Equal(t, TileShape{2, 2}, shapeOf(pits))
}

func TestParsePitPattern(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Pattern8, ParsePitPattern(" 8 "))
	assert.Equal(t, Pattern10, ParsePitPattern("10"))
	assert.Equal(t, Pattern9, ParsePitPattern("12"))
	assert.Equal(t, Pattern9, ParsePitPattern(""))

	assert.Equal(t, 8, HolesPerTile(Pattern8))
	assert.Equal(t, 9, HolesPerTile(Pattern9))
	assert.Equal(t, 10, HolesPerTile(Pattern10))
}
