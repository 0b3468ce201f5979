package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/udisondev/farmplan/internal/game/farming"
)

func newFixedCmd(a *app) *cobra.Command {
	var (
		shapes   []string
		modes    []string
		maxKinds int
		workers  int
	)
	cmd := &cobra.Command{
		Use:   "fixed",
		Short: "Find plot configurations with no nutrient deficit",
		Long: `Search every tile shape and pit pattern exhaustively and print the crop mixes
whose layout has no deficit on any tile and satisfies every family minimum.

Example:
  farmplan fixed --shapes 1x1,1x2 --modes 8,9,10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := farming.FixedOptions{MaxKinds: a.cfg.MaxKinds, Workers: a.cfg.Workers}
			if cmd.Flags().Changed("max-kinds") {
				opts.MaxKinds = maxKinds
			}
			if cmd.Flags().Changed("workers") {
				opts.Workers = workers
			}
			for _, s := range shapes {
				w, h, err := parseDims(s)
				if err != nil {
					return fmt.Errorf("--shapes: %w", err)
				}
				opts.Shapes = append(opts.Shapes, farming.TileShape{Width: w, Height: h})
			}
			for _, m := range modes {
				opts.Patterns = append(opts.Patterns, farming.ParsePitPattern(m))
			}

			defs, err := a.loadDefs()
			if err != nil {
				return err
			}
			sols, err := cachedRun(cmd.Context(), a, "fixed", defs, opts, func() ([]farming.FixedSolution, error) {
				return farming.PerfectSolutions(cmd.Context(), defs, opts)
			})
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), sols)
			}
			printFixed(cmd.OutOrStdout(), sols)
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringSliceVar(&shapes, "shapes", nil, "tile shapes to search, e.g. 1x1,1x2")
	fl.StringSliceVar(&modes, "modes", nil, "pit patterns to search, e.g. 8,9,10")
	fl.IntVar(&maxKinds, "max-kinds", 0, "maximum crop kinds per plan")
	fl.IntVar(&workers, "workers", 0, "parallel search workers (0 = GOMAXPROCS)")
	return cmd
}

func printFixed(w io.Writer, sols []farming.FixedSolution) {
	if len(sols) == 0 {
		fmt.Fprintln(w, "No deficit-free configurations found.")
		return
	}
	for _, s := range sols {
		counts := make([]string, 0, len(s.Plan.Plants))
		for _, id := range s.Plan.Plants {
			counts = append(counts, fmt.Sprintf("%s=%d", id, s.Plan.Counts[id]))
		}
		strategy := ""
		if s.Plan.Layout != nil {
			strategy = s.Plan.Layout.Strategy
		}
		fmt.Fprintf(w, "%dx%d pits=%s  %s  (ratio %s, layout %s)\n",
			s.Tile.Width, s.Tile.Height, s.PitMode, strings.Join(counts, " "), s.Plan.Ratio, strategy)
	}
}
