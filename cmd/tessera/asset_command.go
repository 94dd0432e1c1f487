package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"tessera/internal/config"
	"tessera/internal/fileutil"
	"tessera/internal/media"
	"tessera/internal/store"
)

func newAssetCommand(ctx *commandContext) *cobra.Command {
	assetCmd := &cobra.Command{
		Use:   "asset",
		Short: "Manage media assets",
	}

	assetCmd.AddCommand(newAssetAddCommand(ctx))
	assetCmd.AddCommand(newAssetShowCommand(ctx))

	return assetCmd
}

func newAssetAddCommand(ctx *commandContext) *cobra.Command {
	var recordID int64
	var name string

	cmd := &cobra.Command{
		Use:   "add <path>",
		Short: "Register a media file with a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				// Relative paths anchor under the uploads directory, so
				// "asset add reel.mp4" works from anywhere.
				absPath := fileutil.ResolveUpload(cfg.Paths.UploadsDir, args[0], name)

				info, err := os.Stat(absPath)
				if err != nil {
					if errors.Is(err, os.ErrNotExist) {
						return fmt.Errorf("file does not exist: %s", absPath)
					}
					return fmt.Errorf("inspect file: %w", err)
				}
				if info.IsDir() {
					return fmt.Errorf("%s is a directory", absPath)
				}
				if !media.IsSupported(absPath) && !media.IsImage(absPath) {
					return fmt.Errorf("unsupported file extension %q", filepath.Ext(absPath))
				}

				if recordID > 0 {
					if _, err := st.GetRecord(cmd.Context(), recordID); err != nil {
						return err
					}
				}
				assetName := name
				if assetName == "" {
					assetName = filepath.Base(absPath)
				}
				asset, err := st.CreateAsset(cmd.Context(), &store.Asset{
					RecordID: recordID,
					Name:     assetName,
					FilePath: absPath,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Registered asset #%d (%s)\n", asset.ID, filepath.Base(absPath))
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&recordID, "record", 0, "Record the asset belongs to")
	cmd.Flags().StringVar(&name, "name", "", "Display name (defaults to the file name)")
	return cmd
}

func newAssetShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <asset-id>",
		Short: "Show an asset and its derivatives",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			assetID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				asset, err := st.GetAsset(cmd.Context(), assetID)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Asset #%d\n", asset.ID)
				fmt.Fprintf(out, "  Name:   %s\n", asset.Name)
				fmt.Fprintf(out, "  Path:   %s\n", asset.FilePath)
				if asset.RecordID > 0 {
					fmt.Fprintf(out, "  Record: #%d\n", asset.RecordID)
				}

				derivatives, err := st.ListDerivativesByAsset(cmd.Context(), assetID)
				if err != nil {
					return err
				}
				if len(derivatives) == 0 {
					fmt.Fprintln(out, "No derivatives")
					return nil
				}
				rows := make([][]string, 0, len(derivatives))
				for _, d := range derivatives {
					rows = append(rows, []string{
						d.Type,
						strconv.Itoa(d.Index),
						d.FilePath,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Type", "#", "Path"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
}
