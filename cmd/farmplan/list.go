package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/udisondev/farmplan/internal/game/farming"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List known crop ids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			defs, err := a.loadDefs()
			if err != nil {
				return err
			}
			ids := farming.ListPlants(defs)
			if a.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), ids)
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
}
