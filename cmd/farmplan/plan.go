package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/udisondev/farmplan/internal/game/farming"
)

type planFlags struct {
	slots           int
	season          string
	include         []string
	allowRandomSeed bool
	maxKinds        int
	tile            string
	pitMode         string
	grid            string
	tileGroup       string
	top             int
	preferFixed     bool
	workers         int
}

func newPlanCmd(a *app) *cobra.Command {
	f := &planFlags{}
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Suggest balanced crop mixes",
		Long: `Enumerate crop mixes of up to --max-kinds kinds, rank them by nutrient deficit
and print the best --top plans.

Example:
  farmplan plan --tile 1x2 --pit-mode 9 --season autumn --max-kinds 2`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := f.options(cmd, a)
			if err != nil {
				return err
			}
			defs, err := a.loadDefs()
			if err != nil {
				return err
			}
			plans, err := cachedRun(cmd.Context(), a, "plan", defs, opts, func() ([]farming.PlantMixPlan, error) {
				return farming.SuggestPlans(cmd.Context(), defs, opts)
			})
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), plans)
			}
			printPlans(cmd.OutOrStdout(), plans)
			return nil
		},
	}

	fl := cmd.Flags()
	fl.IntVar(&f.slots, "slots", 0, "plant count when no tile shape is given")
	fl.StringVar(&f.season, "season", "", "restrict to crops that grow well in this season")
	fl.StringSliceVar(&f.include, "include", nil, "restrict the search to these crop ids")
	fl.BoolVar(&f.allowRandomSeed, "allow-randomseed", false, "include the random seed pseudo-crop")
	fl.IntVar(&f.maxKinds, "max-kinds", 0, "maximum crop kinds per plan")
	fl.StringVar(&f.tile, "tile", "", "plot size in tiles, WxH")
	fl.StringVar(&f.pitMode, "pit-mode", "", "pits per tile: 8, 9 or 10")
	fl.StringVar(&f.grid, "grid", "", "plain grid layout size, WxH")
	fl.StringVar(&f.tileGroup, "tile-group", "", "grid cells per tile for overcrowding, WxH")
	fl.IntVar(&f.top, "top", 0, "number of plans to print (0 = config value)")
	fl.BoolVar(&f.preferFixed, "prefer-fixed", false, "prefer the 3-6-3 layout on equal deficit")
	fl.IntVar(&f.workers, "workers", 0, "parallel search workers (0 = GOMAXPROCS)")
	return cmd
}

// options merges config values with command flags; flags win when set.
func (f *planFlags) options(cmd *cobra.Command, a *app) (farming.PlanOptions, error) {
	cfg := a.cfg
	opts := farming.PlanOptions{
		Slots:             f.slots,
		Season:            cfg.Season,
		IncludeIDs:        f.include,
		AllowRandomSeed:   cfg.AllowRandomSeed,
		MaxKinds:          cfg.MaxKinds,
		PitMode:           cfg.PitMode,
		TopN:              cfg.TopN,
		PreferFixedLayout: cfg.PreferFixedLayout,
		Workers:           cfg.Workers,
	}
	if w, h, ok := cfg.Shape(); ok {
		opts.TileShape = &farming.TileShape{Width: w, Height: h}
	}

	changed := cmd.Flags().Changed
	if changed("season") {
		opts.Season = f.season
	}
	if changed("allow-randomseed") {
		opts.AllowRandomSeed = f.allowRandomSeed
	}
	if changed("max-kinds") {
		opts.MaxKinds = f.maxKinds
	}
	if changed("pit-mode") {
		opts.PitMode = f.pitMode
	}
	if changed("top") {
		opts.TopN = f.top
	}
	if changed("prefer-fixed") {
		opts.PreferFixedLayout = f.preferFixed
	}
	if changed("workers") {
		opts.Workers = f.workers
	}
	if f.tile != "" {
		w, h, err := parseDims(f.tile)
		if err != nil {
			return opts, fmt.Errorf("--tile: %w", err)
		}
		opts.TileShape = &farming.TileShape{Width: w, Height: h}
	}
	if f.grid != "" {
		w, h, err := parseDims(f.grid)
		if err != nil {
			return opts, fmt.Errorf("--grid: %w", err)
		}
		opts.Grid = &farming.GridSize{Width: w, Height: h}
		if opts.Slots == 0 && opts.TileShape == nil {
			opts.Slots = w * h
		}
	}
	if f.tileGroup != "" {
		w, h, err := parseDims(f.tileGroup)
		if err != nil {
			return opts, fmt.Errorf("--tile-group: %w", err)
		}
		opts.TileGroup = &farming.GridSize{Width: w, Height: h}
	}
	if opts.TileShape != nil && opts.PitMode == "" {
		opts.PitMode = string(farming.Pattern9)
	}
	if opts.Slots == 0 && opts.TileShape == nil {
		return opts, fmt.Errorf("either --slots, --grid or --tile is required")
	}
	return opts, nil
}

func printPlans(w io.Writer, plans []farming.PlantMixPlan) {
	if len(plans) == 0 {
		fmt.Fprintln(w, "No plans found.")
		return
	}
	for i, p := range plans {
		counts := make([]string, 0, len(p.Plants))
		for _, id := range p.Plants {
			counts = append(counts, fmt.Sprintf("%s=%d", id, p.Counts[id]))
		}
		d := p.Nutrients.Overall.Deficit
		fmt.Fprintf(w, "%2d. %s (ratio %s, %d slots)\n", i+1, strings.Join(counts, " "), p.Ratio, p.Slots)
		fmt.Fprintf(w, "    net %v  deficit count=%d total=%g max=%g\n",
			p.Nutrients.Overall.Net, d.Count, d.Total, d.Max)
		if t := p.Nutrients.Tile; t != nil {
			fmt.Fprintf(w, "    worst tile (%d,%d) deficit count=%d total=%g\n",
				t.TileX, t.TileY, t.Deficit.Count, t.Deficit.Total)
		}
		if p.Water.Label != nil {
			fmt.Fprintf(w, "    water %s\n", *p.Water.Label)
		}
		if p.Family.LayoutOK != nil {
			fmt.Fprintf(w, "    family ok=%t clusters=%v\n", *p.Family.LayoutOK, p.Family.LargestCluster)
		}
		if p.Layout != nil && p.Layout.Strategy != "" {
			fmt.Fprintf(w, "    layout %s\n", p.Layout.Strategy)
		}
	}
}
