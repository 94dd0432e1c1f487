package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var bitratePattern = regexp.MustCompile(`^\d+(\.\d+)?[kKmM]?$`)

var hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}(\|#[0-9a-fA-F]{6})*$`)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateDerivatives(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateManifest(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.UploadsDir == "" {
		return errors.New("paths.uploads_dir must be set")
	}
	if c.Paths.DerivativesDir == "" {
		return errors.New("paths.derivatives_dir must be set")
	}
	return nil
}

func (c *Config) validateDerivatives() error {
	if err := ensurePositiveMap(map[string]int{
		"thumbnail.width":  c.Thumbnail.Width,
		"thumbnail.height": c.Thumbnail.Height,
		"poster.width":     c.Poster.Width,
		"poster.height":    c.Poster.Height,
		"waveform.width":   c.Waveform.Width,
		"waveform.height":  c.Waveform.Height,
	}); err != nil {
		return err
	}
	if c.Preview.Duration <= 0 {
		return errors.New("preview.duration must be positive")
	}
	if !bitratePattern.MatchString(c.Preview.VideoBitrate) {
		return fmt.Errorf("preview.video_bitrate %q is not a valid bitrate", c.Preview.VideoBitrate)
	}
	if !bitratePattern.MatchString(c.Preview.AudioBitrate) {
		return fmt.Errorf("preview.audio_bitrate %q is not a valid bitrate", c.Preview.AudioBitrate)
	}
	if !bitratePattern.MatchString(c.AudioPreview.Bitrate) {
		return fmt.Errorf("audio_preview.bitrate %q is not a valid bitrate", c.AudioPreview.Bitrate)
	}
	if !hexColorPattern.MatchString(c.Waveform.Color) {
		return fmt.Errorf("waveform.color %q must be one or more #rrggbb values separated by |", c.Waveform.Color)
	}
	return nil
}

func (c *Config) validateTranscription() error {
	switch c.Transcription.Model {
	case "tiny", "base", "small", "medium", "large", "large-v2", "large-v3", "turbo":
	default:
		return fmt.Errorf("transcription.model %q is not a recognized whisper model", c.Transcription.Model)
	}
	if c.Transcription.MaxDuration < 0 {
		return errors.New("transcription.max_duration must be >= 0")
	}
	return nil
}

func (c *Config) validateManifest() error {
	if c.Manifest.BaseURL == "" {
		return errors.New("manifest.base_url must be set")
	}
	if !strings.HasPrefix(c.Manifest.BaseURL, "http://") && !strings.HasPrefix(c.Manifest.BaseURL, "https://") {
		return fmt.Errorf("manifest.base_url %q must be an http(s) URL", c.Manifest.BaseURL)
	}
	if c.Manifest.ImageServerURL != "" &&
		!strings.HasPrefix(c.Manifest.ImageServerURL, "http://") &&
		!strings.HasPrefix(c.Manifest.ImageServerURL, "https://") {
		return fmt.Errorf("manifest.image_server_url %q must be an http(s) URL", c.Manifest.ImageServerURL)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
