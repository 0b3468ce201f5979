package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/udisondev/farmplan/internal/db"
)

const shortKeyLen = 12

func newHistoryCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List cached plan runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, closeRepo, err := a.openRepo(cmd.Context())
			if err != nil {
				return err
			}
			defer closeRepo()
			if repo == nil {
				return fmt.Errorf("no plan cache configured: set database_dsn or --dsn")
			}
			runs, err := repo.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), runs)
			}
			printHistory(cmd.OutOrStdout(), runs)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of runs to list")
	return cmd
}

func printHistory(w io.Writer, runs []db.PlanRun) {
	for _, r := range runs {
		fmt.Fprintf(w, "%s  %-5s  %3d plans  %s  %s\n",
			r.CreatedAt.Format("2006-01-02 15:04:05"), r.Command, r.PlanCount, r.Key[:min(shortKeyLen, len(r.Key))], r.Options)
	}
}
