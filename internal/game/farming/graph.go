package farming

import (
	"math/bits"

	"github.com/udisondev/farmplan/internal/data"
)

const (
	// tileSize is the number of world units per macro-tile.
	tileSize = 4.0
	// defaultFamilyRadius is the world-unit radius used when tuning omits it.
	defaultFamilyRadius = 4.0
	minFamilyRadius     = 0.01
	distEpsilon         = 1e-9
)

// FamilyRadius returns the same-family radius in tile units.
func FamilyRadius(tuning data.Tuning) float64 {
	r, ok := tuning.Number(data.TuningFamilyRadius)
	if !ok {
		r = defaultFamilyRadius
	}
	return max(minFamilyRadius, r/tileSize)
}

// bitset is a fixed-size set of small non-negative integers.
type bitset []uint64

func newBitset(n int) bitset {
	return make(bitset, (n+63)/64)
}

func (b bitset) set(i int)      { b[i/64] |= 1 << (uint(i) % 64) }
func (b bitset) has(i int) bool { return b[i/64]&(1<<(uint(i)%64)) != 0 }

func (b bitset) count() int {
	n := 0
	for _, w := range b {
		n += bits.OnesCount64(w)
	}
	return n
}

// each calls fn for every member in ascending order.
func (b bitset) each(fn func(i int)) {
	for wi, w := range b {
		for w != 0 {
			tz := bits.TrailingZeros64(w)
			fn(wi*64 + tz)
			w &= w - 1
		}
	}
}

// SlotGraph is an undirected adjacency graph over pits, one bitset row per pit.
// Symmetric, no self-loops.
type SlotGraph struct {
	adj []bitset
}

// BuildSlotGraph connects every pair of pits within radius tile units.
func BuildSlotGraph(pits []Slot, radius float64) *SlotGraph {
	n := len(pits)
	g := &SlotGraph{adj: make([]bitset, n)}
	for i := range g.adj {
		g.adj[i] = newBitset(n)
	}
	r2 := radius*radius + distEpsilon
	for i := range n {
		for j := i + 1; j < n; j++ {
			if dist2(pits[i], pits[j]) <= r2 {
				g.adj[i].set(j)
				g.adj[j].set(i)
			}
		}
	}
	return g
}

// Len returns the number of pits.
func (g *SlotGraph) Len() int { return len(g.adj) }

// Adjacent reports whether pits i and j are linked.
func (g *SlotGraph) Adjacent(i, j int) bool {
	if i < 0 || j < 0 || i >= len(g.adj) || j >= len(g.adj) {
		return false
	}
	return g.adj[i].has(j)
}

// Degree returns the number of neighbors of pit i.
func (g *SlotGraph) Degree(i int) int { return g.adj[i].count() }

// Neighbors returns the neighbors of pit i in ascending index order.
func (g *SlotGraph) Neighbors(i int) []int {
	out := make([]int, 0, 8)
	g.adj[i].each(func(j int) { out = append(out, j) })
	return out
}

// LargestClusters returns, per crop, the size of its largest connected
// same-crop component. Empty assignments are ignored.
func (g *SlotGraph) LargestClusters(assign []string) map[string]int {
	best := make(map[string]int)
	if len(assign) == 0 || g.Len() == 0 {
		return best
	}
	seen := newBitset(len(assign))
	stack := make([]int, 0, len(assign))
	for start, pid := range assign {
		if pid == "" || seen.has(start) {
			continue
		}
		seen.set(start)
		stack = append(stack[:0], start)
		size := 0
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			size++
			g.adj[cur].each(func(nxt int) {
				if !seen.has(nxt) && assign[nxt] == pid {
					seen.set(nxt)
					stack = append(stack, nxt)
				}
			})
		}
		best[pid] = max(best[pid], size)
	}
	return best
}

func dist2(a, b Slot) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return dx*dx + dy*dy
}
