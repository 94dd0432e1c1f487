// Package snippets manages user-defined time intervals of audio and video
// assets: clip export via stream copy, clip thumbnails, and batch download
// archives.
package snippets

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"tessera/internal/config"
	"tessera/internal/fileutil"
	"tessera/internal/logging"
	"tessera/internal/media"
	"tessera/internal/media/ffmpeg"
	"tessera/internal/store"
)

// ErrOutOfRange marks snippet intervals extending past the asset duration.
var ErrOutOfRange = errors.New("snippet interval exceeds asset duration")

const exportTimeout = 10 * time.Minute

// Service creates and exports snippets.
type Service struct {
	cfg    *config.Config
	store  *store.Store
	logger *slog.Logger
	ffmpeg *ffmpeg.Runner
}

// NewService wires a snippets Service.
func NewService(cfg *config.Config, st *store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		cfg:    cfg,
		store:  st,
		logger: logging.NewComponentLogger(logger, "snippets"),
		ffmpeg: ffmpeg.NewRunner(cfg.Tools.FFmpeg),
	}
}

// Create validates the interval against the asset's known duration and
// stores the snippet.
func (s *Service) Create(ctx context.Context, snippet *store.Snippet) (*store.Snippet, error) {
	asset, err := s.store.GetAsset(ctx, snippet.AssetID)
	if err != nil {
		return nil, err
	}
	if snippet.RecordID == 0 {
		snippet.RecordID = asset.RecordID
	}
	if err := s.checkInterval(ctx, asset.ID, snippet.StartTime, snippet.EndTime); err != nil {
		return nil, err
	}
	created, err := s.store.CreateSnippet(ctx, snippet)
	if err != nil {
		return nil, err
	}
	s.logger.Info("snippet created",
		logging.FieldAsset, asset.ID,
		"snippet_id", created.ID,
		"start", created.StartTime,
		"end", created.EndTime)
	return created, nil
}

// Update revalidates and saves a modified snippet interval.
func (s *Service) Update(ctx context.Context, snippet *store.Snippet) (*store.Snippet, error) {
	if err := s.checkInterval(ctx, snippet.AssetID, snippet.StartTime, snippet.EndTime); err != nil {
		return nil, err
	}
	return s.store.UpdateSnippet(ctx, snippet)
}

// Export writes the snippet interval to a standalone clip using stream
// copy, so no re-encoding happens. Re-exporting overwrites the previous
// clip at the same path.
func (s *Service) Export(ctx context.Context, snippetID int64) (string, error) {
	snippet, err := s.store.GetSnippet(ctx, snippetID)
	if err != nil {
		return "", err
	}
	asset, err := s.store.GetAsset(ctx, snippet.AssetID)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(asset.FilePath); err != nil {
		return "", fmt.Errorf("source file: %w", err)
	}

	dir := s.cfg.SnippetExportsDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	ext := media.Ext(asset.FilePath)
	dst := filepath.Join(dir, fmt.Sprintf("snippet-%d.%s", snippet.ID, ext))

	clipCtx, cancel := context.WithTimeout(ctx, exportTimeout)
	defer cancel()
	if err := s.ffmpeg.Clip(clipCtx, asset.FilePath, dst, snippet.StartTime, snippet.EndTime); err != nil {
		return "", err
	}
	if err := s.store.SetSnippetExportPath(ctx, snippet.ID, dst); err != nil {
		return "", err
	}
	s.logger.Info("snippet exported", "snippet_id", snippet.ID, "path", dst)
	return dst, nil
}

// Thumbnail grabs a frame at the snippet start for video snippets.
func (s *Service) Thumbnail(ctx context.Context, snippetID int64) (string, error) {
	snippet, err := s.store.GetSnippet(ctx, snippetID)
	if err != nil {
		return "", err
	}
	asset, err := s.store.GetAsset(ctx, snippet.AssetID)
	if err != nil {
		return "", err
	}
	if !media.IsVideo(asset.FilePath) {
		return "", fmt.Errorf("snippet %d: thumbnails need a video asset", snippetID)
	}

	dir := s.cfg.SnippetThumbnailsDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	dst := filepath.Join(dir, fmt.Sprintf("snippet-%d.jpg", snippet.ID))

	th := s.cfg.Thumbnail
	if err := s.ffmpeg.Thumbnail(ctx, asset.FilePath, dst, snippet.StartTime, th.Width, th.Height); err != nil {
		return "", err
	}
	if err := s.store.SetSnippetThumbnailPath(ctx, snippet.ID, dst); err != nil {
		return "", err
	}
	return dst, nil
}

// Delete removes the snippet row and any exported files.
func (s *Service) Delete(ctx context.Context, snippetID int64) error {
	exportPath, thumbnailPath, err := s.store.DeleteSnippet(ctx, snippetID)
	if err != nil {
		return err
	}
	for _, path := range []string{exportPath, thumbnailPath} {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("snippet cleanup failed", "snippet_id", snippetID, "error", err)
		}
	}
	return nil
}

// ExportArchive exports every snippet of a record that has not been
// exported yet, then bundles all exported clips into one zip archive at
// zipPath. Entry names are derived from snippet titles.
func (s *Service) ExportArchive(ctx context.Context, recordID int64, zipPath string) error {
	snippetList, err := s.store.ListSnippetsByRecord(ctx, recordID)
	if err != nil {
		return err
	}
	if len(snippetList) == 0 {
		return fmt.Errorf("record %d: no snippets to export", recordID)
	}

	var paths []string
	var names []string
	for _, snippet := range snippetList {
		path := snippet.ExportPath
		if path == "" {
			if path, err = s.Export(ctx, snippet.ID); err != nil {
				return fmt.Errorf("snippet %d: %w", snippet.ID, err)
			}
		}
		paths = append(paths, path)
		names = append(names, archiveEntryName(snippet, path))
	}

	if err := os.MkdirAll(filepath.Dir(zipPath), 0o755); err != nil {
		return err
	}
	out, err := os.Create(zipPath)
	if err != nil {
		return err
	}
	archive := zip.NewWriter(out)
	for i, path := range paths {
		if err := addArchiveEntry(archive, path, names[i]); err != nil {
			archive.Close()
			out.Close()
			os.Remove(zipPath)
			return err
		}
	}
	if err := archive.Close(); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	s.logger.Info("snippet archive written", "record_id", recordID, "path", zipPath, "entries", len(paths))
	return nil
}

func (s *Service) checkInterval(ctx context.Context, assetID int64, start, end float64) error {
	if start < 0 || end <= start {
		return fmt.Errorf("invalid interval [%.3f, %.3f)", start, end)
	}
	meta, err := s.store.GetMetadataByAsset(ctx, assetID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if meta.Duration > 0 && end > meta.Duration {
		return fmt.Errorf("%w: end %.3f > duration %.3f", ErrOutOfRange, end, meta.Duration)
	}
	return nil
}

func archiveEntryName(snippet *store.Snippet, path string) string {
	base := fileutil.SafeBaseName(snippet.Title)
	if base == "" {
		base = fmt.Sprintf("snippet-%d", snippet.ID)
	}
	return base + filepath.Ext(path)
}

func addArchiveEntry(archive *zip.Writer, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	entry, err := archive.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(entry, f)
	return err
}
