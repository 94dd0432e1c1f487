package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tessera/internal/deps"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check external tool availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			statuses := deps.CheckBinaries(deps.Requirements(cfg))

			rows := make([][]string, 0, len(statuses))
			missing := 0
			for _, status := range statuses {
				state := "found"
				if !status.Available {
					state = status.Detail
					if !status.Optional {
						missing++
					}
				}
				required := "required"
				if status.Optional {
					required = "optional"
				}
				rows = append(rows, []string{status.Name, status.Command, required, state})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Tool", "Command", "Need", "Status"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			))
			if missing > 0 {
				return fmt.Errorf("%d required tool(s) missing", missing)
			}
			return nil
		},
	}
}
