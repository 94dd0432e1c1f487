// Package derivatives runs the per-asset processing pipeline: metadata
// extraction followed by access derivative generation (thumbnail, posters,
// preview clips).
package derivatives

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"tessera/internal/config"
	"tessera/internal/logging"
	"tessera/internal/media"
	"tessera/internal/media/ffmpeg"
	"tessera/internal/metadata"
	"tessera/internal/store"
)

const (
	stepMetadata     = "metadata"
	stepThumbnail    = "thumbnail"
	stepPosters      = "posters"
	stepPreview      = "preview"
	stepAudioPreview = "audio_preview"

	derivativeTimeout = 10 * time.Minute
	lockRetryDelay    = 100 * time.Millisecond
)

// Service generates and persists access derivatives for uploaded assets.
type Service struct {
	cfg      *config.Config
	store    *store.Store
	logger   *slog.Logger
	ffmpeg   *ffmpeg.Runner
	metadata *metadata.Service

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewService wires a derivatives Service.
func NewService(cfg *config.Config, st *store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		cfg:      cfg,
		store:    st,
		logger:   logging.NewComponentLogger(logger, "derivatives"),
		ffmpeg:   ffmpeg.NewRunner(cfg.Tools.FFmpeg),
		metadata: metadata.NewService(cfg, st, logger),
		locks:    make(map[int64]*sync.Mutex),
	}
}

// Process runs the full pipeline for one asset. Only a missing asset, a
// missing source file, or a lock failure is fatal; every generation step is
// best-effort and recorded in the report. An unsupported file yields a
// failed report, not an error, so batch callers can continue.
func (s *Service) Process(ctx context.Context, assetID int64) (*Report, error) {
	asset, err := s.store.GetAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(asset.FilePath); err != nil {
		return nil, fmt.Errorf("source file: %w", err)
	}

	unlock, err := s.lockAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	mediaType := media.Classify(asset.FilePath)
	report := &Report{AssetID: assetID, MediaType: string(mediaType), Success: true}
	if !media.IsSupported(asset.FilePath) {
		report.Success = false
		if mediaType == media.TypeImage {
			report.Reason = "still image, processed by the OCR pipeline"
		} else {
			report.Reason = fmt.Sprintf("unsupported format %q", media.Ext(asset.FilePath))
		}
		s.logger.Warn("skipping non time-based upload",
			logging.FieldAsset, assetID, "ext", media.Ext(asset.FilePath))
		return report, nil
	}

	var duration float64
	if s.cfg.Metadata.Enabled {
		meta, err := s.metadata.Extract(ctx, assetID)
		report.addStep(stepMetadata, "", err)
		if err == nil && meta != nil {
			duration = meta.Duration
		}
	}

	genCtx, cancel := context.WithTimeout(ctx, derivativeTimeout)
	defer cancel()

	var generated []store.Derivative
	switch mediaType {
	case media.TypeVideo:
		generated = s.processVideo(genCtx, asset, duration, report)
	case media.TypeAudio:
		generated = s.processAudio(genCtx, asset, duration, report)
	}

	if len(generated) > 0 {
		if err := s.store.ReplaceDerivatives(ctx, assetID, generated); err != nil {
			return nil, err
		}
	}

	s.logger.Info("processing finished",
		logging.FieldAsset, assetID,
		"media_type", string(mediaType),
		"steps", len(report.Steps),
		"success", report.Success)
	return report, nil
}

func (s *Service) processVideo(ctx context.Context, asset *store.Asset, duration float64, report *Report) []store.Derivative {
	var generated []store.Derivative

	if s.cfg.Thumbnail.Enabled {
		th := s.cfg.Thumbnail
		dst := filepath.Join(s.cfg.ThumbnailsDir(), fmt.Sprintf("asset-%d.%s", asset.ID, th.Format))
		err := s.prepareDir(dst)
		if err == nil {
			err = s.ffmpeg.Thumbnail(ctx, asset.FilePath, dst, thumbnailTime(duration, th.Time), th.Width, th.Height)
		}
		report.addStep(stepThumbnail, dst, err)
		if err == nil {
			generated = append(generated, store.Derivative{
				Type: store.DerivativeThumbnail, FilePath: dst, Width: th.Width, Height: th.Height,
			})
		}
	}

	if s.cfg.Poster.Enabled {
		po := s.cfg.Poster
		times := posterTimes(duration, po.Times)
		var failed error
		for i, at := range times {
			dst := filepath.Join(s.cfg.PostersDir(), fmt.Sprintf("asset-%d-poster-%d.jpg", asset.ID, i))
			err := s.prepareDir(dst)
			if err == nil {
				err = s.ffmpeg.Thumbnail(ctx, asset.FilePath, dst, at, po.Width, po.Height)
			}
			if err != nil {
				failed = errors.Join(failed, fmt.Errorf("poster %d: %w", i, err))
				continue
			}
			generated = append(generated, store.Derivative{
				Type: store.DerivativePoster, Index: i, FilePath: dst, Width: po.Width, Height: po.Height,
			})
		}
		report.addStep(stepPosters, s.cfg.PostersDir(), failed)
	}

	if s.cfg.Preview.Enabled {
		pv := s.cfg.Preview
		start, length := previewWindow(duration, pv.Start, pv.Duration)
		dst := filepath.Join(s.cfg.PreviewsDir(), fmt.Sprintf("asset-%d-preview.%s", asset.ID, pv.Format))
		err := s.prepareDir(dst)
		if err == nil {
			err = s.ffmpeg.Preview(ctx, asset.FilePath, dst, start, length, pv.VideoBitrate, pv.AudioBitrate)
		}
		report.addStep(stepPreview, dst, err)
		if err == nil {
			generated = append(generated, store.Derivative{
				Type: store.DerivativePreview, FilePath: dst, Duration: length,
			})
		}
	}

	return generated
}

func (s *Service) processAudio(ctx context.Context, asset *store.Asset, duration float64, report *Report) []store.Derivative {
	var generated []store.Derivative

	if s.cfg.AudioPreview.Enabled {
		ap := s.cfg.AudioPreview
		_, length := previewWindow(duration, 0, ap.Duration)
		dst := filepath.Join(s.cfg.PreviewsDir(), fmt.Sprintf("asset-%d-preview.%s", asset.ID, ap.Format))
		err := s.prepareDir(dst)
		if err == nil {
			err = s.ffmpeg.AudioPreview(ctx, asset.FilePath, dst, 0, length, ap.Bitrate)
		}
		report.addStep(stepAudioPreview, dst, err)
		if err == nil {
			generated = append(generated, store.Derivative{
				Type: store.DerivativeAudioPreview, FilePath: dst, Duration: length,
			})
		}
	}

	return generated
}

func (s *Service) prepareDir(dst string) error {
	return os.MkdirAll(filepath.Dir(dst), 0o755)
}

// lockAsset serializes processing per asset against both concurrent
// goroutines and other tessera processes sharing the work directory.
func (s *Service) lockAsset(ctx context.Context, assetID int64) (func(), error) {
	s.mu.Lock()
	local, ok := s.locks[assetID]
	if !ok {
		local = &sync.Mutex{}
		s.locks[assetID] = local
	}
	s.mu.Unlock()
	local.Lock()

	if err := os.MkdirAll(s.cfg.Paths.WorkDir, 0o755); err != nil {
		local.Unlock()
		return nil, err
	}
	fl := flock.New(filepath.Join(s.cfg.Paths.WorkDir, fmt.Sprintf("asset-%d.lock", assetID)))
	locked, err := fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		local.Unlock()
		return nil, fmt.Errorf("acquire processing lock: %w", err)
	}
	if !locked {
		local.Unlock()
		return nil, fmt.Errorf("asset %d: processing lock unavailable", assetID)
	}
	return func() {
		if err := fl.Unlock(); err != nil {
			s.logger.Warn("release processing lock failed", logging.FieldAsset, assetID, "error", err)
		}
		local.Unlock()
	}, nil
}
