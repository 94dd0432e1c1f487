package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tessera/internal/config"
	"tessera/internal/store"
	"tessera/internal/transcribe"
)

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	transcribeCmd := &cobra.Command{
		Use:   "transcribe",
		Short: "Speech-to-text transcription",
	}

	transcribeCmd.AddCommand(newTranscribeRunCommand(ctx))
	transcribeCmd.AddCommand(newTranscribeSearchCommand(ctx))
	transcribeCmd.AddCommand(newTranscribeDeleteCommand(ctx))

	return transcribeCmd
}

func newTranscribeRunCommand(ctx *commandContext) *cobra.Command {
	var opts transcribe.Options

	cmd := &cobra.Command{
		Use:   "run <asset-id>",
		Short: "Transcribe an audio or video asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			assetID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				svc := transcribe.NewService(cfg, st, ctx.ensureLogger())
				transcript, err := svc.Transcribe(cmd.Context(), assetID, opts)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Transcribed asset #%d: %d segments, language %s\n",
					assetID, len(transcript.Segments), transcribe.LanguageName(transcript.Language))
				if transcript.Confidence != nil {
					fmt.Fprintf(out, "Confidence: %.1f%%\n", *transcript.Confidence)
				}
				fmt.Fprintf(out, "Exports: %s\n", transcript.VTTPath)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&opts.Language, "language", "l", "", "Spoken language hint")
	cmd.Flags().StringVarP(&opts.Model, "model", "m", "", "Whisper model name")
	cmd.Flags().StringVar(&opts.Task, "task", "", "Whisper task (transcribe or translate)")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Re-transcribe even if a transcript exists")
	return cmd
}

func newTranscribeSearchCommand(ctx *commandContext) *cobra.Command {
	var wordLevel bool

	cmd := &cobra.Command{
		Use:   "search <asset-id> <query>",
		Short: "Search transcript segments",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			assetID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				svc := transcribe.NewService(cfg, st, ctx.ensureLogger())
				if wordLevel {
					hits, err := svc.SearchWords(cmd.Context(), assetID, args[1])
					if err != nil {
						return err
					}
					if len(hits) == 0 {
						fmt.Fprintln(cmd.OutOrStdout(), "No matches")
						return nil
					}
					rows := make([][]string, 0, len(hits))
					for _, hit := range hits {
						rows = append(rows, []string{
							hit.Word.Word,
							transcribe.FormatVTTTime(hit.Word.Start),
							transcribe.FormatVTTTime(hit.Word.End),
							hit.Segment.Text,
						})
					}
					fmt.Fprintln(cmd.OutOrStdout(), renderTable(
						[]string{"Word", "Start", "End", "Segment"},
						rows,
						[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
					))
					return nil
				}
				segments, err := svc.Search(cmd.Context(), assetID, args[1])
				if err != nil {
					return err
				}
				if len(segments) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No matches")
					return nil
				}
				rows := make([][]string, 0, len(segments))
				for _, segment := range segments {
					rows = append(rows, []string{
						transcribe.FormatVTTTime(segment.Start),
						transcribe.FormatVTTTime(segment.End),
						segment.Text,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Start", "End", "Text"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&wordLevel, "words", false, "Match exact word tokens using word-level timestamps")
	return cmd
}

func newTranscribeDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <asset-id>",
		Short: "Remove a transcript and its export files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			assetID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				svc := transcribe.NewService(cfg, st, ctx.ensureLogger())
				if err := svc.Delete(cmd.Context(), assetID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted transcript for asset #%d\n", assetID)
				return nil
			})
		},
	}
}
