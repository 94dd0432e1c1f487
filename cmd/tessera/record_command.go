package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"tessera/internal/config"
	"tessera/internal/store"
)

func newRecordCommand(ctx *commandContext) *cobra.Command {
	recordCmd := &cobra.Command{
		Use:   "record",
		Short: "Manage archival records",
	}

	recordCmd.AddCommand(newRecordAddCommand(ctx))
	recordCmd.AddCommand(newRecordShowCommand(ctx))

	return recordCmd
}

func newRecordAddCommand(ctx *commandContext) *cobra.Command {
	var title string
	var repository string
	var level string

	cmd := &cobra.Command{
		Use:   "add <identifier>",
		Short: "Create an archival record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == "" {
				return errors.New("record identifier is required")
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				record, err := st.CreateRecord(cmd.Context(), &store.Record{
					Identifier:         args[0],
					Title:              title,
					Repository:         repository,
					LevelOfDescription: level,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created record #%d (%s)\n", record.ID, record.Identifier)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Record title")
	cmd.Flags().StringVar(&repository, "repository", "", "Holding repository")
	cmd.Flags().StringVar(&level, "level", "", "Level of description")
	return cmd
}

func newRecordShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <record-id>",
		Short: "Show a record and its assets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recordID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				record, err := st.GetRecord(cmd.Context(), recordID)
				if err != nil {
					return err
				}
				assets, err := st.ListAssetsByRecord(cmd.Context(), recordID)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Record #%d\n", record.ID)
				fmt.Fprintf(out, "  Identifier: %s\n", record.Identifier)
				if record.Title != "" {
					fmt.Fprintf(out, "  Title:      %s\n", record.Title)
				}
				if record.Repository != "" {
					fmt.Fprintf(out, "  Repository: %s\n", record.Repository)
				}
				if len(assets) == 0 {
					fmt.Fprintln(out, "No assets")
					return nil
				}

				rows := make([][]string, 0, len(assets))
				for _, asset := range assets {
					rows = append(rows, []string{
						strconv.FormatInt(asset.ID, 10),
						asset.Name,
						asset.FilePath,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Name", "Path"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid identifier %q", arg)
	}
	return id, nil
}
