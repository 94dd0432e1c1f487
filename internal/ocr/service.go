// Package ocr imports recognized text for image assets, either by parsing
// existing ALTO or hOCR files or by running tesseract, and serves word-level
// search over the result.
package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"tessera/internal/config"
	"tessera/internal/logging"
	"tessera/internal/media"
	"tessera/internal/store"
)

// ErrNotAnImage marks OCR requests against non-image assets.
var ErrNotAnImage = errors.New("asset is not an image")

const tesseractTimeout = 5 * time.Minute

// Service drives OCR recognition and import for image assets.
type Service struct {
	cfg    *config.Config
	store  *store.Store
	logger *slog.Logger
}

// NewService wires an OCR Service.
func NewService(cfg *config.Config, st *store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		cfg:    cfg,
		store:  st,
		logger: logging.NewComponentLogger(logger, "ocr"),
	}
}

// Recognize runs tesseract against the asset's image and replaces its OCR
// document with the result.
func (s *Service) Recognize(ctx context.Context, assetID int64, language string) (*store.OCRDocument, error) {
	asset, err := s.store.GetAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if !media.IsImage(asset.FilePath) {
		return nil, fmt.Errorf("%w: %q", ErrNotAnImage, media.Ext(asset.FilePath))
	}
	if _, err := os.Stat(asset.FilePath); err != nil {
		return nil, fmt.Errorf("source file: %w", err)
	}
	if language == "" {
		language = s.cfg.OCR.DefaultLanguage
	}

	if err := os.MkdirAll(s.cfg.Paths.WorkDir, 0o755); err != nil {
		return nil, err
	}
	outBase := filepath.Join(s.cfg.Paths.WorkDir, "ocr-"+uuid.NewString())

	runCtx, cancel := context.WithTimeout(ctx, tesseractTimeout)
	defer cancel()
	payload, err := runTesseract(runCtx, s.cfg.Tools.Tesseract, asset.FilePath, outBase, language)
	if err != nil {
		return nil, err
	}

	fullText, blocks, err := ParseHOCR(bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	doc, err := s.store.ReplaceOCRDocument(ctx, &store.OCRDocument{
		AssetID:      assetID,
		RecordID:     asset.RecordID,
		Language:     language,
		SourceFormat: store.OCRFormatHOCR,
		FullText:     fullText,
	}, blocks)
	if err != nil {
		return nil, err
	}
	s.logger.Info("ocr recognized",
		logging.FieldAsset, assetID, "language", language, "words", len(blocks))
	return doc, nil
}

// ImportALTO replaces the asset's OCR document with the contents of an
// externally produced ALTO file.
func (s *Service) ImportALTO(ctx context.Context, assetID int64, path string) (*store.OCRDocument, error) {
	return s.importParsed(ctx, assetID, path, store.OCRFormatALTO, ParseALTO)
}

// ImportHOCR replaces the asset's OCR document with the contents of an
// externally produced hOCR file.
func (s *Service) ImportHOCR(ctx context.Context, assetID int64, path string) (*store.OCRDocument, error) {
	return s.importParsed(ctx, assetID, path, store.OCRFormatHOCR, ParseHOCR)
}

func (s *Service) importParsed(ctx context.Context, assetID int64, path, format string,
	parse func(r io.Reader) (string, []store.OCRBlock, error)) (*store.OCRDocument, error) {

	asset, err := s.store.GetAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ocr import: %w", err)
	}
	defer f.Close()

	fullText, blocks, err := parse(f)
	if err != nil {
		return nil, err
	}
	doc, err := s.store.ReplaceOCRDocument(ctx, &store.OCRDocument{
		AssetID:      assetID,
		RecordID:     asset.RecordID,
		SourceFormat: format,
		FullText:     fullText,
	}, blocks)
	if err != nil {
		return nil, err
	}
	s.logger.Info("ocr imported",
		logging.FieldAsset, assetID, "format", format, "words", len(blocks))
	return doc, nil
}

// ImportPlainText replaces the asset's OCR document with unpositioned text.
func (s *Service) ImportPlainText(ctx context.Context, assetID int64, text string) (*store.OCRDocument, error) {
	asset, err := s.store.GetAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	doc, err := s.store.ReplaceOCRDocument(ctx, &store.OCRDocument{
		AssetID:      assetID,
		RecordID:     asset.RecordID,
		SourceFormat: store.OCRFormatPlain,
		FullText:     strings.TrimSpace(text),
	}, nil)
	if err != nil {
		return nil, err
	}
	s.logger.Info("ocr text imported", logging.FieldAsset, assetID)
	return doc, nil
}

// Search returns the asset's word blocks containing the query,
// case-insensitively. An asset without OCR yields no hits.
func (s *Service) Search(ctx context.Context, assetID int64, query string) ([]store.OCRBlock, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	return s.store.SearchOCRBlocks(ctx, assetID, query)
}
