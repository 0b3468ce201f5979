package farming

import "sort"

// GridSize is a rectangular plot measured in plants.
type GridSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// buildGridLayout fills rows for maximal same-crop runs: every crop first
// takes as many full rows as it can (descending count), then the leftovers are
// packed into the remaining rows as contiguous segments.
// Returns nil when counts do not cover the grid exactly.
func buildGridLayout(size GridSize, combo []string, counts []int) [][]string {
	total := size.Width * size.Height
	sum := 0
	for _, c := range counts {
		sum += c
	}
	if size.Width <= 0 || size.Height <= 0 || sum != total || len(combo) == 0 {
		return nil
	}

	idx := make([]int, len(combo))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return counts[idx[a]] > counts[idx[b]] })

	remaining := make([]int, len(combo))
	copy(remaining, counts)
	rows := make([][]string, 0, size.Height)

	for _, i := range idx {
		full := remaining[i] / size.Width
		for range full {
			rows = append(rows, repeatID(combo[i], size.Width))
		}
		remaining[i] -= full * size.Width
	}

	for len(rows) < size.Height {
		row := make([]string, 0, size.Width)
		for _, i := range idx {
			if len(row) >= size.Width {
				break
			}
			take := min(remaining[i], size.Width-len(row))
			if take <= 0 {
				continue
			}
			row = append(row, repeatID(combo[i], take)...)
			remaining[i] -= take
		}
		if len(row) == 0 {
			row = repeatID(combo[idx[0]], size.Width)
		}
		rows = append(rows, row)
	}
	return rows[:size.Height]
}

func repeatID(id string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = id
	}
	return out
}

// gridLargestClusters returns the largest 4-connected same-crop region per crop.
func gridLargestClusters(rows [][]string) map[string]int {
	best := make(map[string]int)
	if len(rows) == 0 {
		return best
	}
	h, w := len(rows), len(rows[0])
	seen := newBitset(w * h)
	offsets := [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	var stack [][2]int

	for y := range h {
		for x := range w {
			pid := rows[y][x]
			if pid == "" || seen.has(y*w+x) {
				continue
			}
			seen.set(y*w + x)
			stack = append(stack[:0], [2]int{x, y})
			size := 0
			for len(stack) > 0 {
				cur := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				size++
				for _, d := range offsets {
					nx, ny := cur[0]+d[0], cur[1]+d[1]
					if nx < 0 || ny < 0 || nx >= w || ny >= h || len(rows[ny]) <= nx {
						continue
					}
					if seen.has(ny*w+nx) || rows[ny][nx] != pid {
						continue
					}
					seen.set(ny*w + nx)
					stack = append(stack, [2]int{nx, ny})
				}
			}
			best[pid] = max(best[pid], size)
		}
	}
	return best
}

// gridOvercrowdingOK checks every group×group block holds at most maxPerTile plants.
// Returns nil when the check does not apply.
func gridOvercrowdingOK(rows [][]string, group GridSize, maxPerTile int) *bool {
	if len(rows) == 0 || group.Width <= 0 || group.Height <= 0 || maxPerTile <= 0 {
		return nil
	}
	h, w := len(rows), len(rows[0])
	ok := true
	for y0 := 0; y0 < h && ok; y0 += group.Height {
		for x0 := 0; x0 < w && ok; x0 += group.Width {
			n := 0
			for y := y0; y < min(y0+group.Height, h); y++ {
				for x := x0; x < min(x0+group.Width, w) && x < len(rows[y]); x++ {
					if rows[y][x] != "" {
						n++
					}
				}
			}
			if n > maxPerTile {
				ok = false
			}
		}
	}
	return &ok
}

// pitOvercrowdingOK checks no macro-tile holds more than maxPerTile pits.
// Returns nil when the check does not apply.
func pitOvercrowdingOK(pits []Slot, maxPerTile int) *bool {
	if len(pits) == 0 || maxPerTile <= 0 {
		return nil
	}
	type tileKey struct{ x, y int }
	perTile := make(map[tileKey]int)
	ok := true
	for _, p := range pits {
		k := tileKey{p.TileX, p.TileY}
		perTile[k]++
		if perTile[k] > maxPerTile {
			ok = false
			break
		}
	}
	return &ok
}
