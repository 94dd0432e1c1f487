package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"tessera/internal/config"
	"tessera/internal/snippets"
	"tessera/internal/store"
	"tessera/internal/transcribe"
)

func newSnippetCommand(ctx *commandContext) *cobra.Command {
	snippetCmd := &cobra.Command{
		Use:   "snippet",
		Short: "Time-range selections and clip exports",
	}

	snippetCmd.AddCommand(newSnippetCreateCommand(ctx))
	snippetCmd.AddCommand(newSnippetListCommand(ctx))
	snippetCmd.AddCommand(newSnippetExportCommand(ctx))
	snippetCmd.AddCommand(newSnippetArchiveCommand(ctx))
	snippetCmd.AddCommand(newSnippetDeleteCommand(ctx))

	return snippetCmd
}

func newSnippetCreateCommand(ctx *commandContext) *cobra.Command {
	var title string
	var description string
	var start float64
	var end float64

	cmd := &cobra.Command{
		Use:   "create <asset-id>",
		Short: "Define a snippet on a time-based asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			assetID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				svc := snippets.NewService(cfg, st, ctx.ensureLogger())
				created, err := svc.Create(cmd.Context(), &store.Snippet{
					AssetID:     assetID,
					Title:       title,
					Description: description,
					StartTime:   start,
					EndTime:     end,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created snippet #%d (%s - %s)\n", created.ID,
					transcribe.FormatVTTTime(created.StartTime),
					transcribe.FormatVTTTime(created.EndTime))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Snippet title")
	cmd.Flags().StringVar(&description, "description", "", "Snippet description")
	cmd.Flags().Float64Var(&start, "start", 0, "Start time in seconds")
	cmd.Flags().Float64Var(&end, "end", 0, "End time in seconds")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func newSnippetListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list <record-id>",
		Short: "List a record's snippets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recordID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				list, err := st.ListSnippetsByRecord(cmd.Context(), recordID)
				if err != nil {
					return err
				}
				if len(list) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No snippets")
					return nil
				}
				rows := make([][]string, 0, len(list))
				for _, snippet := range list {
					exported := "no"
					if snippet.ExportPath != "" {
						exported = "yes"
					}
					rows = append(rows, []string{
						strconv.FormatInt(snippet.ID, 10),
						snippet.Title,
						transcribe.FormatVTTTime(snippet.StartTime),
						transcribe.FormatVTTTime(snippet.EndTime),
						exported,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Title", "Start", "End", "Exported"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
}

func newSnippetExportCommand(ctx *commandContext) *cobra.Command {
	var thumbnail bool

	cmd := &cobra.Command{
		Use:   "export <snippet-id>",
		Short: "Export a snippet as a standalone clip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snippetID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				svc := snippets.NewService(cfg, st, ctx.ensureLogger())
				path, err := svc.Export(cmd.Context(), snippetID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported snippet #%d to %s\n", snippetID, path)
				if thumbnail {
					thumbPath, err := svc.Thumbnail(cmd.Context(), snippetID)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Thumbnail written to %s\n", thumbPath)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&thumbnail, "thumbnail", false, "Also grab a frame at the snippet start")
	return cmd
}

func newSnippetArchiveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "archive <record-id> <zip-path>",
		Short: "Export all of a record's snippets into one zip archive",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			recordID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				svc := snippets.NewService(cfg, st, ctx.ensureLogger())
				if err := svc.ExportArchive(cmd.Context(), recordID, args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote snippet archive to %s\n", args[1])
				return nil
			})
		},
	}
}

func newSnippetDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <snippet-id>",
		Short: "Delete a snippet and its exported files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snippetID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				svc := snippets.NewService(cfg, st, ctx.ensureLogger())
				if err := svc.Delete(cmd.Context(), snippetID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted snippet #%d\n", snippetID)
				return nil
			})
		},
	}
}
