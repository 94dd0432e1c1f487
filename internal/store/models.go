package store

import "time"

// Asset is an uploaded media file under archival management.
type Asset struct {
	ID        int64
	RecordID  int64
	Name      string
	FilePath  string
	MimeType  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Record is the archival description a group of assets belongs to.
type Record struct {
	ID                 int64
	Identifier         string
	Title              string
	Repository         string
	LevelOfDescription string
	CreatedAt          time.Time
}

// MediaMetadata is the consolidated technical and embedded metadata for one
// asset. At most one live row exists per asset.
type MediaMetadata struct {
	ID                  int64
	AssetID             int64
	MediaType           string
	FormatName          string
	Duration            float64
	DurationFormatted   string
	Bitrate             int64
	BitrateFormatted    string
	FileSize            int64
	Width               int
	Height              int
	FrameRate           float64
	VideoCodec          string
	PixelFormat         string
	AudioCodec          string
	AudioSampleRate     int
	AudioChannels       int
	AudioChannelLayout  string
	AudioBitDepth       int
	AudioStreamCount    int
	VideoStreamCount    int
	SubtitleStreamCount int
	TagsJSON            string
	WavJSON             string
	QuickTimeJSON       string
	WaveformPath        string
	ExtractedAt         time.Time
}

// Chapter is one container chapter belonging to a metadata record.
type Chapter struct {
	ID           int64
	MetadataID   int64
	StartTime    float64
	EndTime      float64
	Title        string
	ChapterOrder int
}

// Derivative types. A derivative row is keyed by (asset, type, index).
const (
	DerivativeThumbnail    = "thumbnail"
	DerivativePoster       = "poster"
	DerivativePreview      = "preview"
	DerivativeAudioPreview = "audio_preview"
	DerivativeWaveform     = "waveform"
)

// Derivative is one generated rendition of an asset.
type Derivative struct {
	ID        int64
	AssetID   int64
	Type      string
	Index     int
	FilePath  string
	Width     int
	Height    int
	Duration  float64
	CreatedAt time.Time
}

// OCR source formats.
const (
	OCRFormatPlain = "plain"
	OCRFormatALTO  = "alto"
	OCRFormatHOCR  = "hocr"
)

// OCRDocument holds the full recognized text for one asset (0..1 per asset).
type OCRDocument struct {
	ID           int64
	AssetID      int64
	RecordID     int64
	Language     string
	SourceFormat string
	FullText     string
	CreatedAt    time.Time
}

// OCRBlock is one positioned text region belonging to an OCR document.
// Ordering is stable by (PageNumber, BlockOrder).
type OCRBlock struct {
	ID         int64
	DocumentID int64
	PageNumber int
	BlockType  string
	Text       string
	X          int
	Y          int
	Width      int
	Height     int
	Confidence float64
	BlockOrder int
}

// WordTimestamp is one word-level timing inside a transcript segment.
type WordTimestamp struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// TranscriptSegment is one timed span of transcribed speech.
type TranscriptSegment struct {
	Start float64         `json:"start"`
	End   float64         `json:"end"`
	Text  string          `json:"text"`
	Words []WordTimestamp `json:"words,omitempty"`
}

// Transcript is the speech-to-text result for one asset (0..1 per asset).
// Confidence is nil when no segment reported a log-probability.
type Transcript struct {
	ID         int64
	AssetID    int64
	RecordID   int64
	Language   string
	Model      string
	FullText   string
	Duration   float64
	Confidence *float64
	Segments   []TranscriptSegment
	VTTPath    string
	SRTPath    string
	TextPath   string
	CreatedAt  time.Time
}

// Annotation motivations. OCR and transcript annotations carry
// MotivationSupplementing and are regenerated, never hand-edited.
const (
	MotivationCommenting    = "commenting"
	MotivationTagging       = "tagging"
	MotivationDescribing    = "describing"
	MotivationLinking       = "linking"
	MotivationTranscribing  = "transcribing"
	MotivationIdentifying   = "identifying"
	MotivationSupplementing = "supplementing"
)

// Annotation targets a canvas or asset, optionally through a selector.
type Annotation struct {
	ID             int64
	RecordID       int64
	CanvasID       string
	TargetSelector string
	SelectorType   string
	Motivation     string
	Creator        string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Bodies         []AnnotationBody
}

// AnnotationBody carries one textual payload of an annotation.
type AnnotationBody struct {
	ID           int64
	AnnotationID int64
	Value        string
	Format       string
	Language     string
	Purpose      string
}

// Snippet is a named time-range selection of one time-based asset.
type Snippet struct {
	ID            int64
	AssetID       int64
	RecordID      int64
	Title         string
	Description   string
	StartTime     float64
	EndTime       float64
	Duration      float64
	ExportPath    string
	ThumbnailPath string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Collection is a curated, ordered group of records.
type Collection struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
}

// CollectionItem is one record placed in a collection at a display position.
type CollectionItem struct {
	ID           int64
	CollectionID int64
	RecordID     int64
	DisplayOrder int
}

// Setting value types for the processor settings table.
const (
	SettingString = "string"
	SettingBool   = "bool"
	SettingInt    = "int"
	SettingFloat  = "float"
	SettingJSON   = "json"
)

// Setting is one typed key/value processor setting.
type Setting struct {
	Key       string
	Value     string
	ValueType string
	UpdatedAt time.Time
}
