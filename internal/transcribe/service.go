// Package transcribe produces speech-to-text transcripts for audio and
// video assets with whisper, persists them with per-segment timing, and
// renders WebVTT, SRT, and plain-text exports.
package transcribe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"tessera/internal/config"
	"tessera/internal/logging"
	"tessera/internal/media"
	"tessera/internal/media/ffmpeg"
	"tessera/internal/media/ffprobe"
	"tessera/internal/store"
)

// ErrTooLong marks assets exceeding the configured transcription duration
// cap.
var ErrTooLong = errors.New("asset exceeds transcription duration limit")

// ErrNotTranscribable marks assets that are neither audio nor video.
var ErrNotTranscribable = errors.New("asset has no audio to transcribe")

// passthroughExtensions are the formats whisper reads directly; everything
// else is first converted to 16 kHz mono WAV.
var passthroughExtensions = map[string]struct{}{
	"wav": {}, "mp3": {}, "flac": {}, "m4a": {},
}

const (
	whisperTimeout = 30 * time.Minute
	extractTimeout = 10 * time.Minute
	probeTimeout   = 30 * time.Second
)

// Options control one transcription run. Zero values fall back to the
// configured defaults.
type Options struct {
	Language string
	Model    string
	Task     string

	// Force re-runs whisper even when a stored transcript exists.
	Force bool
}

// Service drives whisper transcription for assets.
type Service struct {
	cfg    *config.Config
	store  *store.Store
	logger *slog.Logger
	ffmpeg *ffmpeg.Runner
}

// NewService wires a transcription Service.
func NewService(cfg *config.Config, st *store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		cfg:    cfg,
		store:  st,
		logger: logging.NewComponentLogger(logger, "transcribe"),
		ffmpeg: ffmpeg.NewRunner(cfg.Tools.FFmpeg),
	}
}

// Transcribe runs whisper against the asset, replaces its stored transcript,
// and writes the VTT, SRT, and plain-text exports.
func (s *Service) Transcribe(ctx context.Context, assetID int64, opts Options) (*store.Transcript, error) {
	asset, err := s.store.GetAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(asset.FilePath); err != nil {
		return nil, fmt.Errorf("source file: %w", err)
	}
	if !media.IsSupported(asset.FilePath) {
		return nil, fmt.Errorf("%w: %q", ErrNotTranscribable, media.Ext(asset.FilePath))
	}

	if !opts.Force {
		existing, err := s.store.GetTranscriptByAsset(ctx, assetID)
		if err == nil {
			s.logger.Debug("transcript already present", logging.FieldAsset, assetID)
			return existing, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
	}

	duration, err := s.assetDuration(ctx, asset)
	if err != nil {
		return nil, err
	}
	if limit := s.cfg.Transcription.MaxDuration; limit > 0 && duration > limit {
		return nil, fmt.Errorf("%w: %.1fs > %.1fs", ErrTooLong, duration, limit)
	}

	audioPath, cleanup, err := s.prepareAudio(ctx, asset)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	model := opts.Model
	if model == "" {
		model = s.cfg.Transcription.Model
	}
	language := opts.Language
	if language == "" && !s.cfg.Transcription.AutoDetectLanguage {
		language = s.cfg.Transcription.DefaultLanguage
	}

	if err := os.MkdirAll(s.cfg.Paths.WorkDir, 0o755); err != nil {
		return nil, err
	}
	runCtx, cancel := context.WithTimeout(ctx, whisperTimeout)
	defer cancel()
	result, err := runWhisper(runCtx, s.cfg.Tools.Whisper, audioPath, s.cfg.Paths.WorkDir, whisperOptions{
		model:          model,
		language:       language,
		task:           opts.Task,
		wordTimestamps: s.cfg.Transcription.WordTimestamps,
	})
	if err != nil {
		return nil, err
	}

	transcript := &store.Transcript{
		AssetID:    assetID,
		RecordID:   asset.RecordID,
		Language:   result.Language,
		Model:      model,
		FullText:   strings.TrimSpace(result.Text),
		Duration:   duration,
		Confidence: confidenceFromSegments(result.Segments),
		Segments:   convertSegments(result.Segments),
	}
	if transcript.Language == "" {
		transcript.Language = language
	}

	if err := s.writeExports(assetID, transcript); err != nil {
		s.logger.Warn("transcript export failed", logging.FieldAsset, assetID, "error", err)
	}

	stored, err := s.store.ReplaceTranscript(ctx, transcript)
	if err != nil {
		return nil, err
	}
	s.logger.Info("transcription finished",
		logging.FieldAsset, assetID,
		"language", stored.Language,
		"model", model,
		"segments", len(stored.Segments))
	return stored, nil
}

// Delete removes the asset's transcript record and its export files.
func (s *Service) Delete(ctx context.Context, assetID int64) error {
	paths, err := s.store.DeleteTranscriptByAsset(ctx, assetID)
	if err != nil {
		return err
	}
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("transcript cleanup failed", logging.FieldAsset, assetID, "error", err)
		}
	}
	return nil
}

// Search returns the transcript segments containing the query,
// case-insensitively. An asset without a transcript yields no hits.
func (s *Service) Search(ctx context.Context, assetID int64, query string) ([]store.TranscriptSegment, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, nil
	}
	transcript, err := s.store.GetTranscriptByAsset(ctx, assetID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var hits []store.TranscriptSegment
	for _, segment := range transcript.Segments {
		if strings.Contains(strings.ToLower(segment.Text), query) {
			hits = append(hits, segment)
		}
	}
	return hits, nil
}

// WordHit is one exact word match with the segment it occurred in.
type WordHit struct {
	Word    store.WordTimestamp
	Segment store.TranscriptSegment
}

// SearchWords returns exact word-token matches from the transcript's
// word-level timestamps, each paired with its containing segment. Tokens
// compare case-insensitively with surrounding punctuation stripped, so
// searching "parade" matches "Parade," but not "parades".
func (s *Service) SearchWords(ctx context.Context, assetID int64, word string) ([]WordHit, error) {
	want := normalizeToken(word)
	if want == "" {
		return nil, nil
	}
	transcript, err := s.store.GetTranscriptByAsset(ctx, assetID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var hits []WordHit
	for _, segment := range transcript.Segments {
		for _, w := range segment.Words {
			if normalizeToken(w.Word) == want {
				hits = append(hits, WordHit{Word: w, Segment: segment})
			}
		}
	}
	return hits, nil
}

func normalizeToken(word string) string {
	trimmed := strings.TrimFunc(word, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	return strings.ToLower(trimmed)
}

func (s *Service) assetDuration(ctx context.Context, asset *store.Asset) (float64, error) {
	meta, err := s.store.GetMetadataByAsset(ctx, asset.ID)
	if err == nil {
		return meta.Duration, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return 0, err
	}
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	probe, err := ffprobe.Inspect(probeCtx, s.cfg.Tools.FFprobe, asset.FilePath)
	if err != nil {
		return 0, err
	}
	return probe.DurationSeconds(), nil
}

// prepareAudio returns a path whisper can consume directly, extracting the
// audio track to a temporary WAV for containers it does not read.
func (s *Service) prepareAudio(ctx context.Context, asset *store.Asset) (string, func(), error) {
	if _, ok := passthroughExtensions[media.Ext(asset.FilePath)]; ok {
		return asset.FilePath, func() {}, nil
	}
	if err := os.MkdirAll(s.cfg.Paths.WorkDir, 0o755); err != nil {
		return "", nil, err
	}
	extracted := filepath.Join(s.cfg.Paths.WorkDir, "transcribe-"+uuid.NewString()+".wav")
	extractCtx, cancel := context.WithTimeout(ctx, extractTimeout)
	defer cancel()
	if err := s.ffmpeg.ExtractAudio(extractCtx, asset.FilePath, extracted); err != nil {
		return "", nil, err
	}
	return extracted, func() { _ = os.Remove(extracted) }, nil
}

func (s *Service) writeExports(assetID int64, transcript *store.Transcript) error {
	dir := s.cfg.Paths.TranscriptsDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	base := filepath.Join(dir, fmt.Sprintf("asset-%d", assetID))

	vttPath := base + ".vtt"
	if err := writeWith(vttPath, func(f *os.File) error {
		return WriteVTT(f, transcript.Segments)
	}); err != nil {
		return err
	}
	transcript.VTTPath = vttPath

	srtPath := base + ".srt"
	if err := writeWith(srtPath, func(f *os.File) error {
		return WriteSRT(f, transcript.Segments)
	}); err != nil {
		return err
	}
	transcript.SRTPath = srtPath

	textPath := base + ".txt"
	if err := writeWith(textPath, func(f *os.File) error {
		return WritePlainText(f, transcript)
	}); err != nil {
		return err
	}
	transcript.TextPath = textPath
	return nil
}

func writeWith(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func convertSegments(segments []whisperSegment) []store.TranscriptSegment {
	if len(segments) == 0 {
		return nil
	}
	converted := make([]store.TranscriptSegment, 0, len(segments))
	for _, segment := range segments {
		out := store.TranscriptSegment{
			Start: segment.Start,
			End:   segment.End,
			Text:  strings.TrimSpace(segment.Text),
		}
		for _, word := range segment.Words {
			out.Words = append(out.Words, store.WordTimestamp{
				Word:  strings.TrimSpace(word.Word),
				Start: word.Start,
				End:   word.End,
			})
		}
		converted = append(converted, out)
	}
	return converted
}
