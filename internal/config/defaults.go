package config

// Default values applied before a config file is parsed.
const (
	DefaultUploadsDir     = "~/tessera/uploads"
	DefaultDerivativesDir = "~/tessera/derivatives"
	DefaultTranscriptsDir = "~/tessera/transcripts"
	DefaultSnippetsDir    = "~/tessera/snippets"
	DefaultLogDir         = "~/tessera/logs"
	DefaultWorkDir        = "~/tessera/work"
	DefaultDatabasePath   = "~/tessera/tessera.db"

	DefaultThumbnailTime   = 5.0
	DefaultThumbnailWidth  = 480
	DefaultThumbnailHeight = 270
	DefaultThumbnailFormat = "jpg"

	DefaultPosterWidth  = 1280
	DefaultPosterHeight = 720

	DefaultPreviewStart        = 0.0
	DefaultPreviewDuration     = 30.0
	DefaultPreviewFormat       = "mp4"
	DefaultPreviewVideoBitrate = "1M"
	DefaultPreviewAudioBitrate = "128k"

	DefaultAudioPreviewDuration = 30.0
	DefaultAudioPreviewFormat   = "mp3"
	DefaultAudioPreviewBitrate  = "192k"

	DefaultWaveformWidth  = 1800
	DefaultWaveformHeight = 140
	DefaultWaveformColor  = "#2980b9"

	DefaultTranscriptionModel = "base"

	DefaultOCRLanguage = "eng"

	DefaultManifestBaseURL  = "http://localhost/iiif"
	DefaultManifestLanguage = "en"

	DefaultLogFormat = "console"
	DefaultLogLevel  = "info"
)

// DefaultPosterTimes returns the default poster capture offsets in seconds.
func DefaultPosterTimes() []float64 {
	return []float64{1, 10, 30}
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Paths: Paths{
			UploadsDir:     DefaultUploadsDir,
			DerivativesDir: DefaultDerivativesDir,
			TranscriptsDir: DefaultTranscriptsDir,
			SnippetsDir:    DefaultSnippetsDir,
			LogDir:         DefaultLogDir,
			WorkDir:        DefaultWorkDir,
			DatabasePath:   DefaultDatabasePath,
		},
		Tools: Tools{
			FFmpeg:    "ffmpeg",
			FFprobe:   "ffprobe",
			MediaInfo: "mediainfo",
			ExifTool:  "exiftool",
			Tesseract: "tesseract",
			Whisper:   "whisper",
		},
		Thumbnail: Thumbnail{
			Enabled: true,
			Time:    DefaultThumbnailTime,
			Width:   DefaultThumbnailWidth,
			Height:  DefaultThumbnailHeight,
			Format:  DefaultThumbnailFormat,
		},
		Poster: Poster{
			Enabled: true,
			Times:   DefaultPosterTimes(),
			Width:   DefaultPosterWidth,
			Height:  DefaultPosterHeight,
		},
		Preview: Preview{
			Enabled:      true,
			Start:        DefaultPreviewStart,
			Duration:     DefaultPreviewDuration,
			Format:       DefaultPreviewFormat,
			VideoBitrate: DefaultPreviewVideoBitrate,
			AudioBitrate: DefaultPreviewAudioBitrate,
		},
		AudioPreview: AudioPreview{
			Enabled:  true,
			Duration: DefaultAudioPreviewDuration,
			Format:   DefaultAudioPreviewFormat,
			Bitrate:  DefaultAudioPreviewBitrate,
		},
		Waveform: Waveform{
			Enabled:       true,
			Width:         DefaultWaveformWidth,
			Height:        DefaultWaveformHeight,
			Color:         DefaultWaveformColor,
			SplitChannels: false,
		},
		Metadata: Metadata{
			Enabled: true,
		},
		Transcription: Transcription{
			Model:              DefaultTranscriptionModel,
			DefaultLanguage:    "",
			AutoDetectLanguage: true,
			WordTimestamps:     true,
			MaxDuration:        0,
		},
		OCR: OCR{
			DefaultLanguage: DefaultOCRLanguage,
		},
		Manifest: Manifest{
			BaseURL:         DefaultManifestBaseURL,
			DefaultLanguage: DefaultManifestLanguage,
		},
		Processing: Processing{
			AsyncProcessing: false,
		},
		Logging: Logging{
			Format: DefaultLogFormat,
			Level:  DefaultLogLevel,
		},
	}
}
