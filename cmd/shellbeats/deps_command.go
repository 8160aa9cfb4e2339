package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shellbeats/internal/deps"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check external dependencies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			statuses := deps.CheckBinaries(deps.Requirements(cfg))
			rows := make([][]string, 0, len(statuses))
			for _, status := range statuses {
				available := "ok"
				if !status.Available {
					available = status.Detail
					if status.Optional {
						available += " (optional)"
					}
				}
				rows = append(rows, []string{status.Name, status.Command, available})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Dependency", "Command", "Status"}, rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft}))
			if missing := deps.MissingRequired(statuses); len(missing) > 0 {
				return fmt.Errorf("%d required dependencies missing", len(missing))
			}
			return nil
		},
	}
}
