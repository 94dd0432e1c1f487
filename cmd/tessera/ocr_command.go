package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"tessera/internal/config"
	"tessera/internal/ocr"
	"tessera/internal/store"
)

func newOCRCommand(ctx *commandContext) *cobra.Command {
	ocrCmd := &cobra.Command{
		Use:   "ocr",
		Short: "Optical character recognition",
	}

	ocrCmd.AddCommand(newOCRRunCommand(ctx))
	ocrCmd.AddCommand(newOCRImportCommand(ctx))
	ocrCmd.AddCommand(newOCRSearchCommand(ctx))

	return ocrCmd
}

func newOCRRunCommand(ctx *commandContext) *cobra.Command {
	var language string

	cmd := &cobra.Command{
		Use:   "run <asset-id>",
		Short: "Recognize text on an image asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			assetID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				svc := ocr.NewService(cfg, st, ctx.ensureLogger())
				doc, err := svc.Recognize(cmd.Context(), assetID, language)
				if err != nil {
					return err
				}
				blocks, err := st.ListOCRBlocks(cmd.Context(), doc.ID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Recognized %d words on asset #%d (language %s)\n",
					len(blocks), assetID, doc.Language)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&language, "language", "l", "", "Tesseract language code")
	return cmd
}

func newOCRImportCommand(ctx *commandContext) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "import <asset-id> <file>",
		Short: "Import an existing ALTO, hOCR, or plain-text document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			assetID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				svc := ocr.NewService(cfg, st, ctx.ensureLogger())

				var doc *store.OCRDocument
				switch format {
				case "alto":
					doc, err = svc.ImportALTO(cmd.Context(), assetID, args[1])
				case "hocr":
					doc, err = svc.ImportHOCR(cmd.Context(), assetID, args[1])
				case "text":
					raw, readErr := os.ReadFile(args[1])
					if readErr != nil {
						return readErr
					}
					doc, err = svc.ImportPlainText(cmd.Context(), assetID, string(raw))
				default:
					return fmt.Errorf("unknown format %q (expected alto, hocr, or text)", format)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %s document for asset #%d\n", doc.SourceFormat, assetID)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "alto", "Source format: alto, hocr, or text")
	return cmd
}

func newOCRSearchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "search <asset-id> <query>",
		Short: "Search recognized text with positions",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			assetID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				svc := ocr.NewService(cfg, st, ctx.ensureLogger())
				blocks, err := svc.Search(cmd.Context(), assetID, args[1])
				if err != nil {
					return err
				}
				if len(blocks) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No matches")
					return nil
				}
				rows := make([][]string, 0, len(blocks))
				for _, block := range blocks {
					rows = append(rows, []string{
						strconv.Itoa(block.PageNumber),
						block.Text,
						fmt.Sprintf("%d,%d %dx%d", block.X, block.Y, block.Width, block.Height),
						fmt.Sprintf("%.1f", block.Confidence),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Page", "Text", "Region", "Conf"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
				))
				return nil
			})
		},
	}
}
