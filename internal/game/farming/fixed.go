package farming

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/farmplan/internal/data"
)

// Default sweep of the perfect-solution search.
var (
	DefaultFixedShapes  = []TileShape{{1, 1}, {1, 2}}
	DefaultFixedPattern = []PitPattern{Pattern8, Pattern9, Pattern10}
)

// FixedSolution is a plot configuration with no nutrient deficit anywhere.
type FixedSolution struct {
	Tile    TileShape    `json:"tile"`
	PitMode PitPattern   `json:"pit_mode"`
	Plan    PlantMixPlan `json:"plan"`
}

// FixedOptions configures PerfectSolutions.
type FixedOptions struct {
	Shapes   []TileShape
	Patterns []PitPattern
	MaxKinds int
	Workers  int
}

// PerfectSolutions searches every shape × pattern exhaustively and keeps the
// plans with zero overall and tile deficit whose layout satisfies every family
// minimum and that are not overcrowded. Results follow shape, then pattern,
// then plan rank order.
func PerfectSolutions(ctx context.Context, defs *data.FarmingDefs, opts FixedOptions) ([]FixedSolution, error) {
	shapes := opts.Shapes
	if len(shapes) == 0 {
		shapes = DefaultFixedShapes
	}
	patterns := opts.Patterns
	if len(patterns) == 0 {
		patterns = DefaultFixedPattern
	}
	maxKinds := opts.MaxKinds
	if maxKinds <= 0 {
		maxKinds = DefaultMaxKinds
	}

	type job struct {
		shape   TileShape
		pattern PitPattern
	}
	var jobs []job
	for _, s := range shapes {
		for _, p := range patterns {
			jobs = append(jobs, job{s, p})
		}
	}

	results := make([][]FixedSolution, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	for i, j := range jobs {
		g.Go(func() error {
			shape := j.shape
			plans, err := SuggestPlans(gctx, defs, PlanOptions{
				Slots:             1,
				MaxKinds:          maxKinds,
				TileShape:         &shape,
				PitMode:           string(j.pattern),
				PreferFixedLayout: true,
				Workers:           opts.Workers,
			})
			if err != nil {
				return fmt.Errorf("shape %dx%d pattern %s: %w", shape.Width, shape.Height, j.pattern, err)
			}
			for _, p := range plans {
				if isPerfect(p) {
					results[i] = append(results[i], FixedSolution{Tile: shape, PitMode: j.pattern, Plan: p})
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []FixedSolution
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}

func isPerfect(p PlantMixPlan) bool {
	if p.Nutrients.Overall.Deficit.Count != 0 {
		return false
	}
	if t := p.Nutrients.Tile; t != nil && t.Deficit.Count != 0 {
		return false
	}
	if p.Family.LayoutOK == nil || !*p.Family.LayoutOK {
		return false
	}
	if p.OvercrowdingOK != nil && !*p.OvercrowdingOK {
		return false
	}
	return true
}
