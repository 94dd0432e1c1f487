// Package metadata consolidates technical and descriptive metadata for an
// uploaded asset from ffprobe, mediainfo, and exiftool into one stored
// record per asset.
package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"tessera/internal/config"
	"tessera/internal/logging"
	"tessera/internal/media"
	"tessera/internal/media/exiftool"
	"tessera/internal/media/ffmpeg"
	"tessera/internal/media/ffprobe"
	"tessera/internal/media/mediainfo"
	"tessera/internal/store"
)

const (
	probeTimeout    = 30 * time.Second
	waveformTimeout = 2 * time.Minute
)

// Service extracts and persists media metadata.
type Service struct {
	cfg    *config.Config
	store  *store.Store
	logger *slog.Logger
	ffmpeg *ffmpeg.Runner
}

// NewService wires a metadata Service.
func NewService(cfg *config.Config, st *store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		cfg:    cfg,
		store:  st,
		logger: logging.NewComponentLogger(logger, "metadata"),
		ffmpeg: ffmpeg.NewRunner(cfg.Tools.FFmpeg),
	}
}

// Extract probes the asset's file and replaces its stored metadata record.
// ffprobe is mandatory; mediainfo and exiftool enrich the result when
// available but their failures never fail the extraction. Files outside the
// audio and video extension lists yield nil without error.
func (s *Service) Extract(ctx context.Context, assetID int64) (*store.MediaMetadata, error) {
	asset, err := s.store.GetAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(asset.FilePath); err != nil {
		return nil, fmt.Errorf("source file: %w", err)
	}

	mediaType := media.Classify(asset.FilePath)
	if !media.IsSupported(asset.FilePath) {
		// Not a failure: still images and unknown formats simply carry
		// no probeable media metadata.
		s.logger.Debug("skipping metadata extraction",
			logging.FieldAsset, assetID, "ext", media.Ext(asset.FilePath))
		return nil, nil
	}

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	probe, err := ffprobe.Inspect(probeCtx, s.cfg.Tools.FFprobe, asset.FilePath)
	cancel()
	if err != nil {
		return nil, err
	}

	var info mediainfo.Result
	if s.cfg.Tools.MediaInfo != "" {
		infoCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		info, err = mediainfo.Inspect(infoCtx, s.cfg.Tools.MediaInfo, asset.FilePath)
		cancel()
		if err != nil {
			s.logger.Warn("mediainfo probe failed", logging.FieldAsset, assetID, "error", err)
		}
	}

	var exif exiftool.Result
	if s.cfg.Tools.ExifTool != "" {
		exifCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		exif, err = exiftool.Inspect(exifCtx, s.cfg.Tools.ExifTool, asset.FilePath)
		cancel()
		if err != nil {
			s.logger.Warn("exiftool probe failed", logging.FieldAsset, assetID, "error", err)
		}
	}

	meta := s.buildMetadata(asset, mediaType, probe, info, exif)

	if s.cfg.Waveform.Enabled && probe.AudioStreamCount() > 0 {
		if path, err := s.renderWaveform(ctx, asset); err != nil {
			s.logger.Warn("waveform render failed", logging.FieldAsset, assetID, "error", err)
		} else {
			meta.WaveformPath = path
		}
	}

	stored, err := s.store.ReplaceMetadata(ctx, meta, chaptersFromProbe(probe))
	if err != nil {
		return nil, err
	}
	s.logger.Info("metadata extracted",
		logging.FieldAsset, assetID,
		"media_type", string(mediaType),
		"duration", stored.DurationFormatted)
	return stored, nil
}

// Delete removes the asset's metadata record and its waveform image.
func (s *Service) Delete(ctx context.Context, assetID int64) error {
	waveform, err := s.store.DeleteMetadataByAsset(ctx, assetID)
	if err != nil {
		return err
	}
	if waveform != "" {
		if err := os.Remove(waveform); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("waveform cleanup failed", logging.FieldAsset, assetID, "error", err)
		}
	}
	return nil
}

func (s *Service) buildMetadata(asset *store.Asset, mediaType media.Type, probe ffprobe.Result, info mediainfo.Result, exif exiftool.Result) *store.MediaMetadata {
	meta := &store.MediaMetadata{
		AssetID:             asset.ID,
		MediaType:           string(mediaType),
		FormatName:          probe.Format.FormatName,
		Duration:            probe.DurationSeconds(),
		Bitrate:             probe.BitRate(),
		FileSize:            probe.SizeBytes(),
		AudioStreamCount:    probe.AudioStreamCount(),
		VideoStreamCount:    probe.VideoStreamCount(),
		SubtitleStreamCount: probe.SubtitleStreamCount(),
	}
	meta.DurationFormatted = FormatDuration(meta.Duration)
	meta.BitrateFormatted = FormatBitrate(meta.Bitrate)

	if video := probe.FirstVideoStream(); video != nil {
		meta.Width = video.Width
		meta.Height = video.Height
		meta.FrameRate = video.FrameRate()
		meta.VideoCodec = video.CodecName
		meta.PixelFormat = video.PixFmt
	}

	var audioTags map[string]string
	if audio := probe.FirstAudioStream(); audio != nil {
		meta.AudioCodec = audio.CodecName
		meta.AudioSampleRate = audio.SampleRateHz()
		meta.AudioChannels = audio.Channels
		meta.AudioChannelLayout = audio.ChannelLayout
		meta.AudioBitDepth = audio.BitDepth()
		audioTags = audio.Tags
	}
	if meta.AudioBitDepth == 0 {
		if track := info.FirstAudio(); track != nil {
			meta.AudioBitDepth = track.BitDepthBits()
		}
	}

	tags := ConsolidateTags(probe.Format.Tags, audioTags, exif.StringTags())
	if len(tags) > 0 {
		if encoded, err := json.Marshal(tags); err == nil {
			meta.TagsJSON = string(encoded)
		}
	}

	ext := media.Ext(asset.FilePath)
	if ext == "wav" || ext == "aiff" || ext == "aif" {
		meta.WavJSON = encodeStringMap(wavDetails(probe, info))
	}
	if ext == "mov" || ext == "mp4" || ext == "m4v" || ext == "m4a" {
		meta.QuickTimeJSON = encodeStringMap(quickTimeDetails(probe, exif))
	}
	return meta
}

func (s *Service) renderWaveform(ctx context.Context, asset *store.Asset) (string, error) {
	dir := s.cfg.WaveformsDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	dst := filepath.Join(dir, fmt.Sprintf("asset-%d-waveform.png", asset.ID))
	wfCtx, cancel := context.WithTimeout(ctx, waveformTimeout)
	defer cancel()
	wf := s.cfg.Waveform
	if err := s.ffmpeg.Waveform(wfCtx, asset.FilePath, dst, wf.Width, wf.Height, wf.Color, wf.SplitChannels); err != nil {
		return "", err
	}
	return dst, nil
}

func chaptersFromProbe(probe ffprobe.Result) []store.Chapter {
	if len(probe.Chapters) == 0 {
		return nil
	}
	chapters := make([]store.Chapter, 0, len(probe.Chapters))
	for i, chapter := range probe.Chapters {
		title := chapter.Title()
		if title == "" {
			title = fmt.Sprintf("Chapter %d", i+1)
		}
		chapters = append(chapters, store.Chapter{
			StartTime: chapter.Start(),
			EndTime:   chapter.End(),
			Title:     title,
		})
	}
	return chapters
}

// wavDetails collects the PCM characteristics archivists care about for
// preservation masters.
func wavDetails(probe ffprobe.Result, info mediainfo.Result) map[string]string {
	details := make(map[string]string)
	if audio := probe.FirstAudioStream(); audio != nil {
		details["codec"] = audio.CodecName
		details["sample_format"] = audio.SampleFmt
		if depth := audio.BitDepth(); depth > 0 {
			details["bit_depth"] = fmt.Sprintf("%d", depth)
		}
		if rate := audio.SampleRateHz(); rate > 0 {
			details["sample_rate"] = fmt.Sprintf("%d", rate)
		}
		details["channel_layout"] = audio.ChannelLayout
	}
	if track := info.FirstAudio(); track != nil {
		if _, ok := details["bit_depth"]; !ok && track.BitDepthBits() > 0 {
			details["bit_depth"] = fmt.Sprintf("%d", track.BitDepthBits())
		}
		if track.Format != "" {
			details["format"] = track.Format
		}
	}
	return compactMap(details)
}

// quickTimeDetails collects device and location metadata QuickTime-family
// containers embed.
func quickTimeDetails(probe ffprobe.Result, exif exiftool.Result) map[string]string {
	details := map[string]string{
		"make":          probe.Format.Tags["com.apple.quicktime.make"],
		"model":         probe.Format.Tags["com.apple.quicktime.model"],
		"software":      probe.Format.Tags["com.apple.quicktime.software"],
		"creation_date": probe.Format.Tags["com.apple.quicktime.creationdate"],
		"location":      probe.Format.Tags["com.apple.quicktime.location.ISO6709"],
	}
	fallbacks := map[string]string{
		"make":          exif.String("Make"),
		"model":         exif.String("Model"),
		"software":      exif.String("Software"),
		"creation_date": exif.String("CreateDate"),
	}
	for name, value := range fallbacks {
		if details[name] == "" {
			details[name] = value
		}
	}
	if lat, ok := exif.Float("GPSLatitude"); ok {
		details["gps_latitude"] = fmt.Sprintf("%.6f", lat)
	}
	if lon, ok := exif.Float("GPSLongitude"); ok {
		details["gps_longitude"] = fmt.Sprintf("%.6f", lon)
	}
	return compactMap(details)
}

func compactMap(m map[string]string) map[string]string {
	for name, value := range m {
		if value == "" {
			delete(m, name)
		}
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

func encodeStringMap(m map[string]string) string {
	if len(m) == 0 {
		return ""
	}
	encoded, err := json.Marshal(m)
	if err != nil {
		return ""
	}
	return string(encoded)
}
