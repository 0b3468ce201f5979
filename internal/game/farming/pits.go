package farming

import "strings"

// PitPattern names a hole layout inside one macro-tile.
type PitPattern string

const (
	// Pattern8 is a 3×3 grid without the center hole.
	Pattern8 PitPattern = "8"
	// Pattern9 is the full 3×3 grid.
	Pattern9 PitPattern = "9"
	// Pattern10 is rows of 2,3,2,3 holes, each row evenly spaced on its own.
	Pattern10 PitPattern = "10"
)

// ParsePitPattern maps a name to a pattern. Unknown names fall back to Pattern9.
func ParsePitPattern(name string) PitPattern {
	switch p := PitPattern(strings.TrimSpace(name)); p {
	case Pattern8, Pattern9, Pattern10:
		return p
	default:
		return Pattern9
	}
}

// TileShape is a plot size in whole macro-tiles.
type TileShape struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Tiles returns the number of macro-tiles.
func (s TileShape) Tiles() int {
	if s.Width <= 0 || s.Height <= 0 {
		return 0
	}
	return s.Width * s.Height
}

// Slot is one plantable pit. X and Y are in tile units.
type Slot struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	TileX int     `json:"tile_x"`
	TileY int     `json:"tile_y"`
	Index int     `json:"index"`
}

// gridPositions returns count evenly spaced points strictly inside (0,1).
func gridPositions(count int) []float64 {
	if count <= 0 {
		return nil
	}
	step := 1.0 / float64(count+1)
	out := make([]float64, count)
	for i := range out {
		out[i] = step * float64(i+1)
	}
	return out
}

type localPoint struct{ x, y float64 }

// patternPoints returns local hole coordinates in [0,1]×[0,1] in enumeration order.
func patternPoints(pattern PitPattern) []localPoint {
	switch pattern {
	case Pattern10:
		rows := []int{2, 3, 2, 3}
		ys := gridPositions(len(rows))
		var pts []localPoint
		for r, n := range rows {
			for _, x := range gridPositions(n) {
				pts = append(pts, localPoint{x, ys[r]})
			}
		}
		return pts
	default:
		axis := gridPositions(3)
		pts := make([]localPoint, 0, 9)
		for r, y := range axis {
			for c, x := range axis {
				if pattern == Pattern8 && r == 1 && c == 1 {
					continue
				}
				pts = append(pts, localPoint{x, y})
			}
		}
		return pts
	}
}

// HolesPerTile returns the number of pits the pattern puts in one macro-tile.
func HolesPerTile(pattern PitPattern) int {
	return len(patternPoints(ParsePitPattern(string(pattern))))
}

// BuildPits replicates the pattern across every macro-tile of shape.
// Tiles are visited row-major; indices follow creation order.
func BuildPits(shape TileShape, pattern PitPattern) []Slot {
	if shape.Tiles() == 0 {
		return nil
	}
	local := patternPoints(ParsePitPattern(string(pattern)))
	pits := make([]Slot, 0, shape.Tiles()*len(local))
	for ty := range shape.Height {
		for tx := range shape.Width {
			for _, p := range local {
				pits = append(pits, Slot{
					X:     p.x + float64(tx),
					Y:     p.y + float64(ty),
					TileX: tx,
					TileY: ty,
					Index: len(pits),
				})
			}
		}
	}
	return pits
}

// shapeOf infers the tile shape covered by pits.
func shapeOf(pits []Slot) TileShape {
	var s TileShape
	for _, p := range pits {
		s.Width = max(s.Width, p.TileX+1)
		s.Height = max(s.Height, p.TileY+1)
	}
	return s
}
