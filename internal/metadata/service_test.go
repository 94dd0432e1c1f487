package metadata_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"tessera/internal/metadata"
	"tessera/internal/store"
	"tessera/internal/testsupport"
)

const ffprobeStub = `#!/bin/sh
cat <<'EOF'
{
  "streams": [
    {"index": 0, "codec_name": "h264", "codec_type": "video", "width": 1920, "height": 1080, "pix_fmt": "yuv420p", "avg_frame_rate": "25/1"},
    {"index": 1, "codec_name": "aac", "codec_type": "audio", "sample_rate": "48000", "channels": 2, "channel_layout": "stereo"}
  ],
  "format": {
    "format_name": "mov,mp4,m4a,3gp,3g2,mj2",
    "duration": "125.500000",
    "size": "2000000",
    "bit_rate": "1500000",
    "tags": {"title": "Parade footage", "date": "1987"}
  },
  "chapters": [
    {"id": 0, "start_time": "0.0", "end_time": "60.0", "tags": {"title": "Arrival"}},
    {"id": 1, "start_time": "60.0", "end_time": "125.5"}
  ]
}
EOF
`

const mediainfoStub = `#!/bin/sh
cat <<'EOF'
{"media": {"track": [{"@type": "General"}, {"@type": "Audio", "BitDepth": "16"}]}}
EOF
`

const exiftoolStub = `#!/bin/sh
cat <<'EOF'
[{"SourceFile": "x", "Artist": "City archive", "Make": "Sony"}]
EOF
`

// ffmpegStub writes a marker byte to its final argument, the output path.
const ffmpegStub = `#!/bin/sh
for arg in "$@"; do out=$arg; done
printf 'x' > "$out"
`

func TestExtractConsolidatesProbes(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithStubScript("ffprobe", ffprobeStub),
		testsupport.WithStubScript("mediainfo", mediainfoStub),
		testsupport.WithStubScript("exiftool", exiftoolStub),
		testsupport.WithStubScript("ffmpeg", ffmpegStub),
	)
	st := testsupport.MustOpenStore(t, cfg)
	path := testsupport.WriteUpload(t, cfg.Paths.UploadsDir, "parade.mp4")
	asset := testsupport.NewAsset(t, st, 0, path)

	svc := metadata.NewService(cfg, st, nil)
	meta, err := svc.Extract(context.Background(), asset.ID)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if meta.MediaType != "video" {
		t.Fatalf("media type = %q", meta.MediaType)
	}
	if meta.Duration != 125.5 || meta.DurationFormatted != "02:05.500" {
		t.Fatalf("duration = %v %q", meta.Duration, meta.DurationFormatted)
	}
	if meta.BitrateFormatted != "1.50 Mbps" {
		t.Fatalf("bitrate = %q", meta.BitrateFormatted)
	}
	if meta.Width != 1920 || meta.Height != 1080 || meta.VideoCodec != "h264" {
		t.Fatalf("video stream fields: %+v", meta)
	}
	if meta.FrameRate != 25 {
		t.Fatalf("frame rate = %v", meta.FrameRate)
	}
	if meta.AudioCodec != "aac" || meta.AudioSampleRate != 48000 || meta.AudioChannels != 2 {
		t.Fatalf("audio stream fields: %+v", meta)
	}
	// ffprobe reported no bit depth, so the mediainfo value fills in.
	if meta.AudioBitDepth != 16 {
		t.Fatalf("bit depth = %d", meta.AudioBitDepth)
	}
	// The file carries an audio stream, so a waveform renders even for video.
	if meta.WaveformPath == "" {
		t.Fatal("expected a waveform path")
	}
	if _, err := os.Stat(meta.WaveformPath); err != nil {
		t.Fatalf("waveform image: %v", err)
	}

	var tags map[string]string
	if err := json.Unmarshal([]byte(meta.TagsJSON), &tags); err != nil {
		t.Fatalf("tags json: %v", err)
	}
	if tags["title"] != "Parade footage" {
		t.Fatalf("title tag = %q", tags["title"])
	}
	if tags["year"] != "1987" {
		t.Fatalf("year tag = %q", tags["year"])
	}
	if tags["artist"] != "City archive" {
		t.Fatalf("artist tag = %q, want exiftool fallback", tags["artist"])
	}

	var qt map[string]string
	if err := json.Unmarshal([]byte(meta.QuickTimeJSON), &qt); err != nil {
		t.Fatalf("quicktime json: %v", err)
	}
	if qt["make"] != "Sony" {
		t.Fatalf("quicktime make = %q", qt["make"])
	}

	chapters, err := st.ListChapters(context.Background(), meta.ID)
	if err != nil {
		t.Fatalf("ListChapters: %v", err)
	}
	if len(chapters) != 2 {
		t.Fatalf("expected 2 chapters, got %d", len(chapters))
	}
	if chapters[0].Title != "Arrival" {
		t.Fatalf("chapter title = %q", chapters[0].Title)
	}
	if chapters[1].Title != "Chapter 2" {
		t.Fatalf("untitled chapter = %q", chapters[1].Title)
	}
}

func TestExtractSkipsUnsupportedFormatWithoutError(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	st := testsupport.MustOpenStore(t, cfg)
	path := testsupport.WriteUpload(t, cfg.Paths.UploadsDir, "finding-aid.pdf")
	asset := testsupport.NewAsset(t, st, 0, path)

	svc := metadata.NewService(cfg, st, nil)
	meta, err := svc.Extract(context.Background(), asset.ID)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if meta != nil {
		t.Fatalf("expected nil metadata for unsupported format, got %+v", meta)
	}
	if _, err := st.GetMetadataByAsset(context.Background(), asset.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected no stored metadata, got %v", err)
	}
}

func TestExtractFailsWhenFileMissing(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	st := testsupport.MustOpenStore(t, cfg)
	asset := testsupport.NewAsset(t, st, 0, cfg.Paths.UploadsDir+"/gone.mp3")

	svc := metadata.NewService(cfg, st, nil)
	if _, err := svc.Extract(context.Background(), asset.ID); err == nil {
		t.Fatal("expected error for missing file")
	}
}
