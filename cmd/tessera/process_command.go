package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tessera/internal/config"
	"tessera/internal/derivatives"
	"tessera/internal/store"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var recordID int64

	cmd := &cobra.Command{
		Use:   "process [asset-id...]",
		Short: "Extract metadata and generate derivatives",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && recordID == 0 {
				return fmt.Errorf("provide asset ids or --record")
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				svc := derivatives.NewService(cfg, st, ctx.ensureLogger())

				var assetIDs []int64
				for _, arg := range args {
					id, err := parseID(arg)
					if err != nil {
						return err
					}
					assetIDs = append(assetIDs, id)
				}
				if recordID > 0 {
					assets, err := st.ListAssetsByRecord(cmd.Context(), recordID)
					if err != nil {
						return err
					}
					for _, asset := range assets {
						assetIDs = append(assetIDs, asset.ID)
					}
				}
				if len(assetIDs) == 0 {
					return fmt.Errorf("record %d has no assets", recordID)
				}

				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				failures := 0
				for _, assetID := range assetIDs {
					report, err := svc.Process(cmd.Context(), assetID)
					if err != nil {
						failures++
						fmt.Fprintln(out, renderStatusLine(fmt.Sprintf("asset %d", assetID), statusError, err.Error(), colorize))
						continue
					}
					printReport(cmd, report, colorize)
					if !report.Success {
						failures++
					}
				}
				if failures > 0 {
					return fmt.Errorf("%d of %d assets failed", failures, len(assetIDs))
				}
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&recordID, "record", 0, "Process every asset of a record")
	return cmd
}

func printReport(cmd *cobra.Command, report *derivatives.Report, colorize bool) {
	out := cmd.OutOrStdout()
	kind := statusOK
	message := report.MediaType
	if !report.Success {
		kind = statusWarn
		if report.Reason != "" {
			message = report.Reason
		}
	}
	fmt.Fprintln(out, renderStatusLine(fmt.Sprintf("asset %d", report.AssetID), kind, message, colorize))
	for _, step := range report.Steps {
		stepKind := statusOK
		stepMessage := step.Path
		if !step.Success {
			stepKind = statusError
			stepMessage = step.Error
		}
		fmt.Fprintln(out, renderStatusLine(statusIndent+step.Name, stepKind, stepMessage, colorize))
	}
}
