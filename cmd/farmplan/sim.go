package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/udisondev/farmplan/internal/data"
	"github.com/udisondev/farmplan/internal/game/farming"
)

func newSimCmd(a *app) *cobra.Command {
	var (
		season      string
		stress      int
		stageStress string
		longLife    bool
		noOversized bool
	)
	cmd := &cobra.Command{
		Use:   "sim <crop>",
		Short: "Project growth, stress and loot of one crop",
		Long: `Simulate one crop through its growth stages.

Stress points are given per stage: --stress applies the same value to every
stage, --stage-stress takes four comma separated values (sprout,small,med,full).

Example:
  farmplan sim carrot --season spring --stage-stress 0,1,0,0`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			points := []int{stress}
			if stageStress != "" {
				p, err := parseStagePoints(stageStress)
				if err != nil {
					return err
				}
				points = p
			}
			defs, err := a.loadDefs()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("season") && a.cfg.Season != "" {
				season = a.cfg.Season
			}
			res, err := farming.SimulateFarming(defs, farming.SimRequest{
				PlantID:     args[0],
				Season:      season,
				StagePoints: points,
				LongLife:    longLife,
				NoOversized: noOversized,
			})
			if err != nil {
				var unknown *farming.UnknownCropError
				if errors.As(err, &unknown) && len(unknown.Suggestions) == 0 {
					return fmt.Errorf("%w (run \"farmplan list\" for known crops)", err)
				}
				return err
			}
			if a.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			printSim(cmd.OutOrStdout(), res)
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&season, "season", "autumn", "season to grow in")
	fl.IntVar(&stress, "stress", 0, "stress points applied to every stage")
	fl.StringVar(&stageStress, "stage-stress", "", "per-stage stress points, e.g. 0,1,0,0")
	fl.BoolVar(&longLife, "long-life", false, "apply the long-life spoil multiplier")
	fl.BoolVar(&noOversized, "no-oversized", false, "never produce an oversized harvest")
	return cmd
}

// parseStagePoints accepts one value or exactly one value per stage.
func parseStagePoints(s string) ([]int, error) {
	fields := strings.Split(s, ",")
	if len(fields) != 1 && len(fields) != farming.StageCount {
		return nil, fmt.Errorf("--stage-stress: want 1 or %d values, got %d", farming.StageCount, len(fields))
	}
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("--stage-stress: %w", err)
		}
		out = append(out, v)
	}
	return out, nil
}

func printSim(w io.Writer, r *farming.FarmingSimResult) {
	fmt.Fprintf(w, "Crop: %s", r.Plant.ID)
	if r.Plant.Prefab != "" {
		fmt.Fprintf(w, " (%s)", r.Plant.Prefab)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Season: %s good=%t multiplier=%g\n", r.Season, r.GoodSeason, r.SeasonMultiplier)
	fmt.Fprintf(w, "Stress: %v total=%d state=%s\n", r.Stress.StagePoints, r.Stress.TotalPoints, r.Stress.FinalState)
	fmt.Fprintf(w, "Oversized: %t\n", r.Oversized)
	fmt.Fprintln(w, "Times:")
	printRange(w, "seed", r.Times.Seed)
	printRange(w, "sprout", r.Times.Sprout)
	printRange(w, "small", r.Times.Small)
	printRange(w, "med", r.Times.Med)
	if r.Times.SpoilFull != nil {
		fmt.Fprintf(w, "  spoil full: %g\n", *r.Times.SpoilFull)
	}
	if r.Times.SpoilOversized != nil {
		fmt.Fprintf(w, "  spoil oversized: %g\n", *r.Times.SpoilOversized)
	}
	printRange(w, "regrow", r.Times.Regrow)
	fmt.Fprintf(w, "Harvest: %s\n", strings.Join(r.Loot.Harvest, ", "))
	fmt.Fprintf(w, "Rotten: %s\n", strings.Join(r.Loot.Rotten, ", "))
}

func printRange(w io.Writer, name string, r *data.Range) {
	if r == nil {
		return
	}
	fmt.Fprintf(w, "  %s: %g-%g\n", name, r.Min, r.Max)
}
