// Package iiif renders IIIF Presentation manifests (3.0 and legacy 2.1),
// collections, and Content Search responses for archival records and their
// processed media.
package iiif

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"

	"tessera/internal/config"
	"tessera/internal/logging"
	"tessera/internal/media"
	"tessera/internal/store"
)

// Service builds IIIF documents from stored records.
type Service struct {
	cfg    *config.Config
	store  *store.Store
	logger *slog.Logger
	images *ImageClient
}

// NewService wires a IIIF Service. A nil httpClient uses
// http.DefaultClient for image server probes.
func NewService(cfg *config.Config, st *store.Store, logger *slog.Logger, httpClient *http.Client) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		cfg:    cfg,
		store:  st,
		logger: logging.NewComponentLogger(logger, "iiif"),
		images: NewImageClient(cfg.Manifest.ImageServerURL, httpClient),
	}
}

// canvasData carries everything needed to render one asset's canvases.
type canvasData struct {
	asset       *store.Asset
	meta        *store.MediaMetadata
	derivatives map[string][]store.Derivative
	hasOCR      bool
	transcript  *store.Transcript
	width       int
	height      int
	pages       int
}

// recordData is the fully loaded input for a manifest.
type recordData struct {
	record *store.Record
	assets []canvasData
}

// loadRecord gathers a record and its assets. It returns nil when the
// record has no assets: an empty manifest is worse than none, and viewers
// reject manifests without canvases.
func (s *Service) loadRecord(ctx context.Context, recordID int64) (*recordData, error) {
	record, err := s.store.GetRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}
	assets, err := s.store.ListAssetsByRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if len(assets) == 0 {
		return nil, nil
	}

	data := &recordData{record: record}
	for _, asset := range assets {
		entry := canvasData{asset: asset, pages: 1}

		if meta, err := s.store.GetMetadataByAsset(ctx, asset.ID); err == nil {
			entry.meta = meta
		} else if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		if entry.derivatives, err = s.store.DerivativesByType(ctx, asset.ID); err != nil {
			return nil, err
		}
		if doc, err := s.store.GetOCRDocumentByAsset(ctx, asset.ID); err == nil && doc != nil {
			entry.hasOCR = true
		} else if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		if transcript, err := s.store.GetTranscriptByAsset(ctx, asset.ID); err == nil {
			entry.transcript = transcript
		} else if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}

		if media.IsImage(asset.FilePath) {
			identifier := imageIdentifier(asset)
			entry.width, entry.height = s.images.Dimensions(ctx, identifier)
			entry.pages = s.images.PageCount(ctx, identifier)
		} else if entry.meta != nil {
			entry.width, entry.height = entry.meta.Width, entry.meta.Height
		}

		data.assets = append(data.assets, entry)
	}
	return data, nil
}

// imageIdentifier is the image server identifier for an asset: the bare
// file name, which the server resolves inside its image root.
func imageIdentifier(asset *store.Asset) string {
	return filepath.Base(asset.FilePath)
}

func assetKind(asset *store.Asset) string {
	switch {
	case media.IsImage(asset.FilePath):
		return "Image"
	case media.IsVideo(asset.FilePath):
		return "Video"
	case media.IsAudio(asset.FilePath):
		return "Sound"
	default:
		return "Dataset"
	}
}
