package farming

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/farmplan/internal/data"
)

// Planner defaults.
const (
	DefaultMaxKinds = 3
	DefaultTopN     = 12
)

// PlanOptions configures SuggestPlans.
type PlanOptions struct {
	// Slots is the plant count when no pit geometry is requested.
	Slots           int
	Season          string
	IncludeIDs      []string
	AllowRandomSeed bool
	// MaxKinds <= 0 uses DefaultMaxKinds.
	MaxKinds int

	// Pits, or TileShape together with PitMode, request a spatial layout.
	// Pits takes precedence; the slot count then becomes len(pits).
	Pits      []Slot
	TileShape *TileShape
	PitMode   string

	// Grid requests a plain row-filled grid layout for returned plans when no
	// pits are used. TileGroup sizes the overcrowding blocks of that grid.
	Grid      *GridSize
	TileGroup *GridSize

	// TopN caps the result; 0 returns every plan.
	TopN              int
	PreferFixedLayout bool

	// Workers shards the crop subsets; <= 0 uses GOMAXPROCS.
	Workers int
}

// DefaultPlanOptions returns options with the planner defaults.
func DefaultPlanOptions() PlanOptions {
	return PlanOptions{
		MaxKinds: DefaultMaxKinds,
		TopN:     DefaultTopN,
	}
}

// PlantMixPlan is one candidate crop mix.
type PlantMixPlan struct {
	Plants         []string       `json:"plants"`
	Counts         map[string]int `json:"counts"`
	Ratio          string         `json:"ratio"`
	Slots          int            `json:"slots"`
	Nutrients      PlanNutrients  `json:"nutrients"`
	Water          WaterSummary   `json:"water"`
	Family         FamilySummary  `json:"family"`
	OvercrowdingOK *bool          `json:"overcrowding_ok"`
	Layout         *Layout        `json:"layout"`

	assign   []string
	strategy LayoutStrategy
}

// PlanNutrients is the overall balance plus, for pit layouts, the tile view.
type PlanNutrients struct {
	Overall NutrientSummary `json:"overall"`
	// Tile is the worst macro-tile. Nil without a pit layout.
	Tile  *TileNutrients  `json:"tile,omitempty"`
	Tiles []TileNutrients `json:"tiles,omitempty"`
}

// FamilySummary reports same-family clustering.
type FamilySummary struct {
	MinRequired map[string]int `json:"min_required"`
	CountsOK    bool           `json:"counts_ok"`
	// LargestCluster and LayoutOK are set once a layout exists.
	LargestCluster map[string]int `json:"largest_cluster"`
	LayoutOK       *bool          `json:"layout_ok"`
}

// Layout is the concrete placement of a plan.
type Layout struct {
	Mode         string          `json:"mode"`
	Strategy     string          `json:"strategy,omitempty"`
	Pattern      string          `json:"pattern,omitempty"`
	HolesPerTile int             `json:"holes_per_tile,omitempty"`
	Tile         *TileShape      `json:"tile,omitempty"`
	Unit         string          `json:"unit,omitempty"`
	Pits         []PitAssignment `json:"pits,omitempty"`
	Grid         *GridSize       `json:"grid,omitempty"`
	Rows         [][]string      `json:"rows,omitempty"`
}

// Layout modes.
const (
	LayoutModePits = "pits"
	LayoutModeGrid = "grid"
)

// PitAssignment places one crop in one pit.
type PitAssignment struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	TileX int     `json:"tile_x"`
	TileY int     `json:"tile_y"`
	Plant string  `json:"plant"`
}

// rankKey is (overall deficit count, total, max, tile deficit count, total, max).
type rankKey [6]float64

func (p *PlantMixPlan) rankKey() rankKey {
	o := p.Nutrients.Overall.Deficit
	k := rankKey{float64(o.Count), o.Total, o.Max}
	if t := p.Nutrients.Tile; t != nil {
		k[3], k[4], k[5] = float64(t.Deficit.Count), t.Deficit.Total, t.Deficit.Max
	}
	return k
}

func (a rankKey) less(b rankKey) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// planContext is the per-call immutable state shared by all workers.
type planContext struct {
	profiles    map[string]PlantProfile
	tuning      data.Tuning
	slots       int
	pits        []Slot
	graph       *SlotGraph
	netByPlant  map[string]NutrientVector
	shape       TileShape
	pattern     PitPattern
	hasPattern  bool
	preferFixed bool
	overcrowded *bool
}

// SuggestPlans enumerates every crop subset of up to MaxKinds crops and every
// count split honoring family minimums, ranks them by nutrient deficit and
// returns the best TopN. An empty result is not an error; the only error is
// context cancellation.
func SuggestPlans(ctx context.Context, defs *data.FarmingDefs, opts PlanOptions) ([]PlantMixPlan, error) {
	if defs == nil {
		return nil, nil
	}
	pc := &planContext{
		profiles: BuildProfiles(defs, ProfileFilter{
			Season:          opts.Season,
			IncludeIDs:      opts.IncludeIDs,
			AllowRandomSeed: opts.AllowRandomSeed,
		}),
		tuning:      defs.Tuning,
		slots:       opts.Slots,
		preferFixed: opts.PreferFixedLayout,
	}

	pitMode := strings.TrimSpace(opts.PitMode)
	pc.pits = opts.Pits
	if len(pc.pits) == 0 && opts.TileShape != nil && pitMode != "" {
		pc.pits = BuildPits(*opts.TileShape, ParsePitPattern(pitMode))
	}
	if len(pc.pits) > 0 {
		pc.slots = len(pc.pits)
		pc.graph = BuildSlotGraph(pc.pits, FamilyRadius(defs.Tuning))
		pc.netByPlant = make(map[string]NutrientVector, len(pc.profiles))
		for id, p := range pc.profiles {
			pc.netByPlant[id] = PlantNetDelta(p)
		}
		if opts.TileShape != nil {
			pc.shape = *opts.TileShape
		}
		pc.pattern = ParsePitPattern(pitMode)
		pc.hasPattern = pitMode != ""
		pc.overcrowded = pitOvercrowdingOK(pc.pits, overcrowdingMax(defs.Tuning))
	}
	if pc.slots <= 0 || len(pc.profiles) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(pc.profiles))
	for id := range pc.profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	maxKinds := opts.MaxKinds
	if maxKinds <= 0 {
		maxKinds = DefaultMaxKinds
	}
	var combos [][]string
	for k := 1; k <= maxKinds && k <= len(ids); k++ {
		for combo := range combinations(ids, k) {
			combos = append(combos, append([]string(nil), combo...))
		}
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	shards := make([][]PlantMixPlan, len(combos))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, combo := range combos {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			shards[i] = pc.plansForCombo(combo)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("suggest plans: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("suggest plans: %w", err)
	}

	var plans []PlantMixPlan
	for _, s := range shards {
		plans = append(plans, s...)
	}
	// Stable over enumeration order, so any worker count yields the same list.
	sort.SliceStable(plans, func(a, b int) bool {
		return plans[a].rankKey().less(plans[b].rankKey())
	})
	enumerated := len(plans)
	if opts.TopN > 0 && len(plans) > opts.TopN {
		plans = plans[:opts.TopN]
	}

	for i := range plans {
		if len(pc.pits) > 0 {
			pc.attachPitLayout(&plans[i], pitMode)
		} else if opts.Grid != nil {
			pc.attachGridLayout(&plans[i], *opts.Grid, opts.TileGroup)
		}
	}

	slog.Debug("farming plans enumerated",
		"candidates", len(ids),
		"subsets", len(combos),
		"plans", enumerated,
		"returned", len(plans),
		"slots", pc.slots)
	return plans, nil
}

// plansForCombo evaluates every count split of one subset.
func (pc *planContext) plansForCombo(combo []string) []PlantMixPlan {
	profs := make([]PlantProfile, len(combo))
	mins := make([]int, len(combo))
	familyMin := make(map[string]int, len(combo))
	for i, id := range combo {
		profs[i] = pc.profiles[id]
		mins[i] = profs[i].FamilyMin
		familyMin[id] = profs[i].FamilyMin
	}

	var out []PlantMixPlan
	for counts := range partitions(pc.slots, mins) {
		out = append(out, pc.buildPlan(combo, profs, append([]int(nil), counts...), familyMin))
	}
	return out
}

func (pc *planContext) buildPlan(combo []string, profs []PlantProfile, counts []int, familyMin map[string]int) PlantMixPlan {
	plan := PlantMixPlan{
		Plants:    combo,
		Counts:    make(map[string]int, len(combo)),
		Ratio:     RatioLabel(counts),
		Slots:     pc.slots,
		Nutrients: PlanNutrients{Overall: SummarizeNutrients(profs, counts)},
		Water:     SummarizeWater(profs, counts, pc.tuning),
		Family: FamilySummary{
			MinRequired: familyMin,
			CountsOK:    true,
		},
	}
	for i, id := range combo {
		plan.Counts[id] = counts[i]
		if counts[i] < profs[i].FamilyMin {
			plan.Family.CountsOK = false
		}
	}

	if len(pc.pits) == 0 {
		return plan
	}
	choice := chooseLayout(layoutInput{
		pits:        pc.pits,
		graph:       pc.graph,
		combo:       combo,
		counts:      counts,
		familyMin:   familyMin,
		netByPlant:  pc.netByPlant,
		shape:       pc.shape,
		pattern:     pc.pattern,
		hasPattern:  pc.hasPattern,
		preferFixed: pc.preferFixed,
	})
	plan.assign = choice.assign
	plan.strategy = choice.strategy
	plan.setClusters(choice.clusters, familyMin)
	tile, _ := SummarizeTiles(pc.pits, choice.assign, pc.netByPlant)
	plan.Nutrients.Tile = &tile
	plan.OvercrowdingOK = pc.overcrowded
	return plan
}

func (p *PlantMixPlan) setClusters(clusters, familyMin map[string]int) {
	ok := true
	for _, id := range p.Plants {
		if clusters[id] < familyMin[id] {
			ok = false
		}
	}
	if len(clusters) > 0 {
		p.Family.LargestCluster = clusters
	}
	p.Family.LayoutOK = &ok
}

func (pc *planContext) attachPitLayout(plan *PlantMixPlan, pattern string) {
	_, tiles := SummarizeTiles(pc.pits, plan.assign, pc.netByPlant)
	plan.Nutrients.Tiles = tiles

	shape := pc.shape
	if shape.Tiles() == 0 {
		shape = shapeOf(pc.pits)
	}
	layout := &Layout{
		Mode:     LayoutModePits,
		Strategy: plan.strategy.String(),
		Pattern:  pattern,
		Tile:     &shape,
		Unit:     "tile",
		Pits:     make([]PitAssignment, len(pc.pits)),
	}
	if n := shape.Tiles(); n > 0 {
		layout.HolesPerTile = len(pc.pits) / n
	}
	for i, pit := range pc.pits {
		layout.Pits[i] = PitAssignment{
			X:     round3(pit.X),
			Y:     round3(pit.Y),
			TileX: pit.TileX,
			TileY: pit.TileY,
			Plant: plan.assign[i],
		}
	}
	plan.Layout = layout
}

func (pc *planContext) attachGridLayout(plan *PlantMixPlan, grid GridSize, group *GridSize) {
	counts := make([]int, len(plan.Plants))
	for i, id := range plan.Plants {
		counts[i] = plan.Counts[id]
	}
	rows := buildGridLayout(grid, plan.Plants, counts)
	plan.setClusters(gridLargestClusters(rows), plan.Family.MinRequired)
	if group != nil {
		plan.OvercrowdingOK = gridOvercrowdingOK(rows, *group, overcrowdingMax(pc.tuning))
	}
	plan.Layout = &Layout{
		Mode: LayoutModeGrid,
		Grid: &grid,
		Rows: rows,
	}
}

func overcrowdingMax(tuning data.Tuning) int {
	v, ok := tuning.Number(data.TuningOvercrowdingMax)
	if !ok {
		return 0
	}
	return int(v)
}

// RatioLabel joins counts reduced by their GCD, e.g. [6 12] → "1:2".
func RatioLabel(counts []int) string {
	if len(counts) == 0 {
		return ""
	}
	g := 0
	for _, c := range counts {
		g = gcd(g, c)
	}
	parts := make([]string, len(counts))
	for i, c := range counts {
		if g > 1 {
			c /= g
		}
		parts[i] = strconv.Itoa(c)
	}
	return strings.Join(parts, ":")
}

func gcd(a, b int) int {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
