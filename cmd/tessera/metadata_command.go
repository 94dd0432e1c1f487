package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"tessera/internal/config"
	"tessera/internal/metadata"
	"tessera/internal/store"
	"tessera/internal/transcribe"
)

func newMetadataCommand(ctx *commandContext) *cobra.Command {
	metadataCmd := &cobra.Command{
		Use:   "metadata",
		Short: "Technical and embedded metadata",
	}

	metadataCmd.AddCommand(newMetadataExtractCommand(ctx))
	metadataCmd.AddCommand(newMetadataShowCommand(ctx))
	metadataCmd.AddCommand(newMetadataDeleteCommand(ctx))

	return metadataCmd
}

func newMetadataExtractCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "extract <asset-id>",
		Short: "Probe an asset and store its metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			assetID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				svc := metadata.NewService(cfg, st, ctx.ensureLogger())
				meta, err := svc.Extract(cmd.Context(), assetID)
				if err != nil {
					return err
				}
				if meta == nil {
					fmt.Fprintf(cmd.OutOrStdout(), "Asset #%d has no probeable media metadata\n", assetID)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Extracted metadata for asset #%d (%s, %s)\n",
					assetID, meta.FormatName, meta.DurationFormatted)
				return nil
			})
		},
	}
}

func newMetadataShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <asset-id>",
		Short: "Display stored metadata for an asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			assetID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				meta, err := st.GetMetadataByAsset(cmd.Context(), assetID)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, meta)
				}

				rows := [][]string{
					{"Media type", meta.MediaType},
					{"Format", meta.FormatName},
					{"Duration", meta.DurationFormatted},
					{"Bitrate", meta.BitrateFormatted},
					{"File size", strconv.FormatInt(meta.FileSize, 10)},
				}
				if meta.MediaType == "video" {
					rows = append(rows,
						[]string{"Resolution", fmt.Sprintf("%dx%d", meta.Width, meta.Height)},
						[]string{"Frame rate", fmt.Sprintf("%.3f", meta.FrameRate)},
						[]string{"Video codec", meta.VideoCodec},
					)
				}
				if meta.AudioCodec != "" {
					rows = append(rows,
						[]string{"Audio codec", meta.AudioCodec},
						[]string{"Sample rate", strconv.Itoa(meta.AudioSampleRate)},
						[]string{"Channels", strconv.Itoa(meta.AudioChannels)},
					)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderTable(
					[]string{"Field", "Value"}, rows,
					[]columnAlignment{alignLeft, alignLeft},
				))

				printTags(cmd, meta.TagsJSON)

				chapters, err := st.ListChapters(cmd.Context(), meta.ID)
				if err != nil {
					return err
				}
				for _, chapter := range chapters {
					fmt.Fprintf(out, "  %s  %s - %s\n", chapter.Title,
						transcribe.FormatVTTTime(chapter.StartTime),
						transcribe.FormatVTTTime(chapter.EndTime))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit raw JSON")
	return cmd
}

func newMetadataDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <asset-id>",
		Short: "Remove stored metadata and its waveform",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			assetID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				svc := metadata.NewService(cfg, st, ctx.ensureLogger())
				if err := svc.Delete(cmd.Context(), assetID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted metadata for asset #%d\n", assetID)
				return nil
			})
		},
	}
}

func printTags(cmd *cobra.Command, tagsJSON string) {
	if tagsJSON == "" {
		return
	}
	var tags map[string]string
	if err := json.Unmarshal([]byte(tagsJSON), &tags); err != nil || len(tags) == 0 {
		return
	}
	keys := make([]string, 0, len(tags))
	for key := range tags {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Tags:")
	for _, key := range keys {
		fmt.Fprintf(out, "  %-16s %s\n", key, tags[key])
	}
}
