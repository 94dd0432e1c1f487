package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTools()
	c.normalizeDerivatives()
	c.normalizeTranscription()
	c.normalizeOCR()
	c.normalizeManifest()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.UploadsDir, err = expandPath(c.Paths.UploadsDir); err != nil {
		return fmt.Errorf("paths.uploads_dir: %w", err)
	}
	if c.Paths.DerivativesDir, err = expandPath(c.Paths.DerivativesDir); err != nil {
		return fmt.Errorf("paths.derivatives_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.TranscriptsDir) == "" {
		c.Paths.TranscriptsDir = DefaultTranscriptsDir
	}
	if c.Paths.TranscriptsDir, err = expandPath(c.Paths.TranscriptsDir); err != nil {
		return fmt.Errorf("paths.transcripts_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.SnippetsDir) == "" {
		c.Paths.SnippetsDir = DefaultSnippetsDir
	}
	if c.Paths.SnippetsDir, err = expandPath(c.Paths.SnippetsDir); err != nil {
		return fmt.Errorf("paths.snippets_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = DefaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DatabasePath) == "" {
		c.Paths.DatabasePath = DefaultDatabasePath
	}
	if c.Paths.DatabasePath, err = expandPath(c.Paths.DatabasePath); err != nil {
		return fmt.Errorf("paths.database_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeTools() {
	trim := func(value, fallback string) string {
		value = strings.TrimSpace(value)
		if value == "" {
			return fallback
		}
		return value
	}
	c.Tools.FFmpeg = trim(c.Tools.FFmpeg, "ffmpeg")
	c.Tools.FFprobe = trim(c.Tools.FFprobe, "ffprobe")
	c.Tools.MediaInfo = trim(c.Tools.MediaInfo, "mediainfo")
	c.Tools.ExifTool = trim(c.Tools.ExifTool, "exiftool")
	c.Tools.Tesseract = trim(c.Tools.Tesseract, "tesseract")
	c.Tools.Whisper = trim(c.Tools.Whisper, "whisper")
}

func (c *Config) normalizeDerivatives() {
	if c.Thumbnail.Time < 0 {
		c.Thumbnail.Time = DefaultThumbnailTime
	}
	if c.Thumbnail.Width <= 0 {
		c.Thumbnail.Width = DefaultThumbnailWidth
	}
	if c.Thumbnail.Height <= 0 {
		c.Thumbnail.Height = DefaultThumbnailHeight
	}
	c.Thumbnail.Format = strings.ToLower(strings.TrimSpace(c.Thumbnail.Format))
	switch c.Thumbnail.Format {
	case "jpg", "png", "webp":
	default:
		c.Thumbnail.Format = DefaultThumbnailFormat
	}

	times := make([]float64, 0, len(c.Poster.Times))
	for _, t := range c.Poster.Times {
		if t >= 0 {
			times = append(times, t)
		}
	}
	if len(times) == 0 {
		times = DefaultPosterTimes()
	}
	c.Poster.Times = times
	if c.Poster.Width <= 0 {
		c.Poster.Width = DefaultPosterWidth
	}
	if c.Poster.Height <= 0 {
		c.Poster.Height = DefaultPosterHeight
	}

	if c.Preview.Start < 0 {
		c.Preview.Start = DefaultPreviewStart
	}
	if c.Preview.Duration <= 0 {
		c.Preview.Duration = DefaultPreviewDuration
	}
	c.Preview.Format = strings.ToLower(strings.TrimSpace(c.Preview.Format))
	if c.Preview.Format == "" {
		c.Preview.Format = DefaultPreviewFormat
	}
	c.Preview.VideoBitrate = strings.TrimSpace(c.Preview.VideoBitrate)
	if c.Preview.VideoBitrate == "" {
		c.Preview.VideoBitrate = DefaultPreviewVideoBitrate
	}
	c.Preview.AudioBitrate = strings.TrimSpace(c.Preview.AudioBitrate)
	if c.Preview.AudioBitrate == "" {
		c.Preview.AudioBitrate = DefaultPreviewAudioBitrate
	}

	if c.AudioPreview.Duration <= 0 {
		c.AudioPreview.Duration = DefaultAudioPreviewDuration
	}
	c.AudioPreview.Format = strings.ToLower(strings.TrimSpace(c.AudioPreview.Format))
	if c.AudioPreview.Format == "" {
		c.AudioPreview.Format = DefaultAudioPreviewFormat
	}
	c.AudioPreview.Bitrate = strings.TrimSpace(c.AudioPreview.Bitrate)
	if c.AudioPreview.Bitrate == "" {
		c.AudioPreview.Bitrate = DefaultAudioPreviewBitrate
	}

	if c.Waveform.Width <= 0 {
		c.Waveform.Width = DefaultWaveformWidth
	}
	if c.Waveform.Height <= 0 {
		c.Waveform.Height = DefaultWaveformHeight
	}
	c.Waveform.Color = strings.TrimSpace(c.Waveform.Color)
	if c.Waveform.Color == "" {
		c.Waveform.Color = DefaultWaveformColor
	}
}

func (c *Config) normalizeTranscription() {
	c.Transcription.Model = strings.TrimSpace(c.Transcription.Model)
	if c.Transcription.Model == "" {
		c.Transcription.Model = DefaultTranscriptionModel
	}
	c.Transcription.DefaultLanguage = strings.ToLower(strings.TrimSpace(c.Transcription.DefaultLanguage))
	if c.Transcription.MaxDuration < 0 {
		c.Transcription.MaxDuration = 0
	}
}

func (c *Config) normalizeOCR() {
	c.OCR.DefaultLanguage = strings.TrimSpace(c.OCR.DefaultLanguage)
	if c.OCR.DefaultLanguage == "" {
		c.OCR.DefaultLanguage = DefaultOCRLanguage
	}
}

func (c *Config) normalizeManifest() {
	c.Manifest.BaseURL = strings.TrimRight(strings.TrimSpace(c.Manifest.BaseURL), "/")
	if c.Manifest.BaseURL == "" {
		c.Manifest.BaseURL = DefaultManifestBaseURL
	}
	c.Manifest.ImageServerURL = strings.TrimRight(strings.TrimSpace(c.Manifest.ImageServerURL), "/")
	c.Manifest.DefaultLanguage = strings.TrimSpace(c.Manifest.DefaultLanguage)
	if c.Manifest.DefaultLanguage == "" {
		c.Manifest.DefaultLanguage = DefaultManifestLanguage
	}
	c.Manifest.Attribution = strings.TrimSpace(c.Manifest.Attribution)
	c.Manifest.License = strings.TrimSpace(c.Manifest.License)
	c.Manifest.LogoURL = strings.TrimSpace(c.Manifest.LogoURL)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
}
