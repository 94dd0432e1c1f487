package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"tessera/internal/annotations"
	"tessera/internal/config"
	"tessera/internal/store"
)

func newAnnotationCommand(ctx *commandContext) *cobra.Command {
	annotationCmd := &cobra.Command{
		Use:   "annotation",
		Short: "User annotations on canvases",
	}

	annotationCmd.AddCommand(newAnnotationCreateCommand(ctx))
	annotationCmd.AddCommand(newAnnotationListCommand(ctx))
	annotationCmd.AddCommand(newAnnotationSearchCommand(ctx))
	annotationCmd.AddCommand(newAnnotationTagsCommand(ctx))
	annotationCmd.AddCommand(newAnnotationDeleteCommand(ctx))

	return annotationCmd
}

func newAnnotationCreateCommand(ctx *commandContext) *cobra.Command {
	var canvasID string

	cmd := &cobra.Command{
		Use:   "create <record-id> <payload-file>",
		Short: "Create an annotation from an Annotorious payload",
		Long:  "Reads a W3C Web Annotation payload as produced by Annotorious. Pass - to read from stdin.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			recordID, err := parseID(args[0])
			if err != nil {
				return err
			}
			if strings.TrimSpace(canvasID) == "" {
				return fmt.Errorf("--canvas is required")
			}

			var payload []byte
			if args[1] == "-" {
				payload, err = io.ReadAll(cmd.InOrStdin())
			} else {
				payload, err = os.ReadFile(args[1])
			}
			if err != nil {
				return err
			}

			annotation, err := annotations.FromAnnotorious(payload, recordID, canvasID)
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				created, err := st.CreateAnnotation(cmd.Context(), annotation)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created annotation #%d (%s)\n", created.ID, created.Motivation)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&canvasID, "canvas", "", "Target canvas URI")
	return cmd
}

func newAnnotationListCommand(ctx *commandContext) *cobra.Command {
	var motivation string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list <record-id>",
		Short: "List a record's annotations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recordID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				list, err := st.ListAnnotationsByRecord(cmd.Context(), recordID, motivation)
				if err != nil {
					return err
				}
				if asJSON {
					rendered := make([]map[string]any, 0, len(list))
					for _, annotation := range list {
						rendered = append(rendered, annotations.RenderW3C(cfg.Manifest.BaseURL, annotation))
					}
					return writeJSON(cmd, rendered)
				}
				if len(list) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No annotations")
					return nil
				}
				rows := make([][]string, 0, len(list))
				for _, annotation := range list {
					body := ""
					if len(annotation.Bodies) > 0 {
						body = annotation.Bodies[0].Value
					}
					rows = append(rows, []string{
						strconv.FormatInt(annotation.ID, 10),
						annotation.Motivation,
						annotation.Creator,
						body,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Motivation", "Creator", "Body"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&motivation, "motivation", "", "Filter by motivation")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit W3C annotation JSON")
	return cmd
}

func newAnnotationSearchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "search <record-id> <query>",
		Short: "Search annotation body text",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			recordID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				list, err := st.SearchAnnotations(cmd.Context(), recordID, args[1])
				if err != nil {
					return err
				}
				if len(list) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No matches")
					return nil
				}
				rows := make([][]string, 0, len(list))
				for _, annotation := range list {
					body := ""
					if len(annotation.Bodies) > 0 {
						body = annotation.Bodies[0].Value
					}
					rows = append(rows, []string{
						strconv.FormatInt(annotation.ID, 10),
						annotation.Motivation,
						body,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Motivation", "Body"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
}

func newAnnotationTagsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "tags <record-id>",
		Short: "List distinct tag values with usage counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recordID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				tags, err := st.ListTags(cmd.Context(), recordID)
				if err != nil {
					return err
				}
				stats, err := st.AnnotationStats(cmd.Context(), recordID)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, tag := range tags {
					fmt.Fprintln(out, tag)
				}
				for motivation, count := range stats {
					fmt.Fprintf(out, "%s: %d\n", motivation, count)
				}
				return nil
			})
		},
	}
}

func newAnnotationDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <annotation-id>",
		Short: "Delete an annotation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			annotationID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				if err := st.DeleteAnnotation(cmd.Context(), annotationID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted annotation #%d\n", annotationID)
				return nil
			})
		},
	}
}
