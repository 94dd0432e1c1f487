package ffprobe

import (
	"encoding/json"
	"math"
	"testing"
)

func TestResultHelpers(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "video", CodecName: "h264", Width: 1920},
			{CodecType: "audio", CodecName: "aac"},
			{CodecType: "audio", CodecName: "ac3"},
			{CodecType: "subtitle"},
		},
		Format: Format{
			Duration: "123.45",
			Size:     "1000",
			BitRate:  "32000",
		},
	}
	if result.VideoStreamCount() != 1 {
		t.Fatalf("expected 1 video stream, got %d", result.VideoStreamCount())
	}
	if result.AudioStreamCount() != 2 {
		t.Fatalf("expected 2 audio streams, got %d", result.AudioStreamCount())
	}
	if result.SubtitleStreamCount() != 1 {
		t.Fatalf("expected 1 subtitle stream, got %d", result.SubtitleStreamCount())
	}
	if result.DurationSeconds() != 123.45 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 1000 {
		t.Fatalf("unexpected size: %d", result.SizeBytes())
	}
	if result.BitRate() != 32000 {
		t.Fatalf("unexpected bitrate: %d", result.BitRate())
	}
	if v := result.FirstVideoStream(); v == nil || v.Width != 1920 {
		t.Fatalf("unexpected first video stream: %+v", v)
	}
	if a := result.FirstAudioStream(); a == nil || a.CodecName != "aac" {
		t.Fatalf("unexpected first audio stream: %+v", a)
	}
}

func TestResultHelpersHandleInvalidNumbers(t *testing.T) {
	result := Result{
		Format: Format{
			Duration: "bad",
			Size:     "-1",
			BitRate:  "nope",
		},
	}
	if result.DurationSeconds() != 0 {
		t.Fatalf("expected duration 0, got %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 0 {
		t.Fatalf("expected size 0, got %d", result.SizeBytes())
	}
	if result.BitRate() != 0 {
		t.Fatalf("expected bitrate 0, got %d", result.BitRate())
	}
	if (Result{}).FirstVideoStream() != nil {
		t.Fatal("expected nil video stream for empty result")
	}
}

func TestStreamFrameRateParsesRatios(t *testing.T) {
	cases := []struct {
		stream Stream
		want   float64
	}{
		{Stream{AvgFrameRate: "30000/1001"}, 30000.0 / 1001.0},
		{Stream{AvgFrameRate: "0/0", RFrameRate: "25/1"}, 25},
		{Stream{RFrameRate: "24"}, 24},
		{Stream{}, 0},
		{Stream{AvgFrameRate: "garbage"}, 0},
	}
	for _, tc := range cases {
		got := tc.stream.FrameRate()
		if math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("FrameRate(%q/%q) = %v, want %v", tc.stream.AvgFrameRate, tc.stream.RFrameRate, got, tc.want)
		}
	}
}

func TestStreamBitDepthPrefersRawSample(t *testing.T) {
	s := Stream{BitsPerSample: 16, BitsPerRawSample: "24"}
	if s.BitDepth() != 24 {
		t.Fatalf("BitDepth = %d", s.BitDepth())
	}
	s = Stream{BitsPerSample: 16}
	if s.BitDepth() != 16 {
		t.Fatalf("BitDepth fallback = %d", s.BitDepth())
	}
}

func TestDecodeChaptersAndTags(t *testing.T) {
	payload := `{
		"format": {"duration": "60.0", "tags": {"title": "Field recording", "artist": "Unknown"}},
		"chapters": [
			{"id": 0, "start_time": "0.000000", "end_time": "30.5", "tags": {"title": "Intro"}},
			{"id": 1, "start_time": "30.5", "end_time": "60.0"}
		]
	}`
	var result Result
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if result.Format.Tags["title"] != "Field recording" {
		t.Fatalf("format tags: %v", result.Format.Tags)
	}
	if len(result.Chapters) != 2 {
		t.Fatalf("expected 2 chapters, got %d", len(result.Chapters))
	}
	first := result.Chapters[0]
	if first.Title() != "Intro" || first.Start() != 0 || first.End() != 30.5 {
		t.Fatalf("unexpected first chapter: %+v", first)
	}
	if result.Chapters[1].Title() != "" {
		t.Fatalf("expected empty title, got %q", result.Chapters[1].Title())
	}
}
