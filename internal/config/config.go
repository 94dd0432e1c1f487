package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration for the pipeline.
type Paths struct {
	UploadsDir     string `toml:"uploads_dir"`
	DerivativesDir string `toml:"derivatives_dir"`
	TranscriptsDir string `toml:"transcripts_dir"`
	SnippetsDir    string `toml:"snippets_dir"`
	LogDir         string `toml:"log_dir"`
	WorkDir        string `toml:"work_dir"`
	DatabasePath   string `toml:"database_path"`
}

// Tools contains paths to the external binaries the pipeline orchestrates.
// A bare command name is resolved from PATH.
type Tools struct {
	FFmpeg    string `toml:"ffmpeg"`
	FFprobe   string `toml:"ffprobe"`
	MediaInfo string `toml:"mediainfo"`
	ExifTool  string `toml:"exiftool"`
	Tesseract string `toml:"tesseract"`
	Whisper   string `toml:"whisper"`
}

// Thumbnail contains video thumbnail generation settings.
type Thumbnail struct {
	Enabled bool    `toml:"enabled"`
	Time    float64 `toml:"time"`
	Width   int     `toml:"width"`
	Height  int     `toml:"height"`
	Format  string  `toml:"format"`
}

// Poster contains video poster generation settings.
type Poster struct {
	Enabled bool      `toml:"enabled"`
	Times   []float64 `toml:"times"`
	Width   int       `toml:"width"`
	Height  int       `toml:"height"`
}

// Preview contains reduced-bitrate preview clip settings.
type Preview struct {
	Enabled      bool    `toml:"enabled"`
	Start        float64 `toml:"start"`
	Duration     float64 `toml:"duration"`
	Format       string  `toml:"format"`
	VideoBitrate string  `toml:"video_bitrate"`
	AudioBitrate string  `toml:"audio_bitrate"`
}

// AudioPreview contains audio-only preview clip settings.
type AudioPreview struct {
	Enabled  bool    `toml:"enabled"`
	Duration float64 `toml:"duration"`
	Format   string  `toml:"format"`
	Bitrate  string  `toml:"bitrate"`
}

// Waveform contains waveform image rendering settings.
type Waveform struct {
	Enabled       bool   `toml:"enabled"`
	Width         int    `toml:"width"`
	Height        int    `toml:"height"`
	Color         string `toml:"color"`
	SplitChannels bool   `toml:"split_channels"`
}

// Metadata contains metadata extraction settings.
type Metadata struct {
	Enabled bool `toml:"enabled"`
}

// Transcription contains speech-to-text settings.
type Transcription struct {
	Model              string  `toml:"model"`
	DefaultLanguage    string  `toml:"default_language"`
	AutoDetectLanguage bool    `toml:"auto_detect_language"`
	WordTimestamps     bool    `toml:"word_timestamps"`
	MaxDuration        float64 `toml:"max_duration"`
}

// OCR contains optical character recognition settings.
type OCR struct {
	DefaultLanguage string `toml:"default_language"`
}

// Manifest contains IIIF manifest assembly settings.
type Manifest struct {
	BaseURL         string `toml:"base_url"`
	ImageServerURL  string `toml:"image_server_url"`
	DefaultLanguage string `toml:"default_language"`
	Attribution     string `toml:"attribution"`
	License         string `toml:"license"`
	LogoURL         string `toml:"logo_url"`
}

// Processing contains pipeline-level toggles.
type Processing struct {
	// AsyncProcessing is accepted for forward compatibility but is not yet
	// wired to a background queue; all processing runs synchronously.
	AsyncProcessing bool `toml:"async_processing"`
}

// Logging contains log output configuration.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config is the root configuration for the pipeline. It is assembled once at
// startup and passed by reference into every component constructor.
type Config struct {
	Paths         Paths         `toml:"paths"`
	Tools         Tools         `toml:"tools"`
	Thumbnail     Thumbnail     `toml:"thumbnail"`
	Poster        Poster        `toml:"poster"`
	Preview       Preview       `toml:"preview"`
	AudioPreview  AudioPreview  `toml:"audio_preview"`
	Waveform      Waveform      `toml:"waveform"`
	Metadata      Metadata      `toml:"metadata"`
	Transcription Transcription `toml:"transcription"`
	OCR           OCR           `toml:"ocr"`
	Manifest      Manifest      `toml:"manifest"`
	Processing    Processing    `toml:"processing"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/tessera/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("tessera.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// WriteSample writes the embedded sample configuration to path, refusing to
// overwrite an existing file.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(expanded, []byte(sampleConfig), 0o644)
}

// EnsureDirectories creates the directories the pipeline writes into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Paths.UploadsDir,
		c.Paths.LogDir,
		c.Paths.WorkDir,
		c.ThumbnailsDir(),
		c.PreviewsDir(),
		c.WaveformsDir(),
		c.PostersDir(),
		c.Paths.TranscriptsDir,
		c.SnippetExportsDir(),
		c.SnippetThumbnailsDir(),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// ThumbnailsDir returns the derivative subdirectory for video thumbnails.
func (c *Config) ThumbnailsDir() string { return filepath.Join(c.Paths.DerivativesDir, "thumbnails") }

// PreviewsDir returns the derivative subdirectory for preview clips.
func (c *Config) PreviewsDir() string { return filepath.Join(c.Paths.DerivativesDir, "previews") }

// WaveformsDir returns the derivative subdirectory for waveform images.
func (c *Config) WaveformsDir() string { return filepath.Join(c.Paths.DerivativesDir, "waveforms") }

// PostersDir returns the derivative subdirectory for poster images.
func (c *Config) PostersDir() string { return filepath.Join(c.Paths.DerivativesDir, "posters") }

// SnippetExportsDir returns the directory snippet exports are written to.
func (c *Config) SnippetExportsDir() string { return filepath.Join(c.Paths.SnippetsDir, "exports") }

// SnippetThumbnailsDir returns the directory snippet thumbnails are written to.
func (c *Config) SnippetThumbnailsDir() string {
	return filepath.Join(c.Paths.SnippetsDir, "thumbnails")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
