package ffmpeg

import (
	"slices"
	"strings"
	"testing"
)

func TestThumbnailArgs(t *testing.T) {
	args := thumbnailArgs("/in.mp4", "/out.jpg", 5, 480, 270)
	want := []string{
		"-hide_banner", "-loglevel", "error",
		"-ss", "5.000",
		"-i", "/in.mp4",
		"-vframes", "1",
		"-vf", "scale=480:270",
		"-y", "/out.jpg",
	}
	if !slices.Equal(args, want) {
		t.Fatalf("args = %v", args)
	}
}

func TestPreviewArgsRequestFaststart(t *testing.T) {
	args := previewArgs("/in.mkv", "/out.mp4", 0, 30, "1M", "128k")
	joined := strings.Join(args, " ")
	for _, fragment := range []string{
		"-t 30.000",
		"-vf scale=640:-2",
		"-c:v libx264",
		"-b:v 1M",
		"-c:a aac",
		"-b:a 128k",
		"-movflags +faststart",
	} {
		if !strings.Contains(joined, fragment) {
			t.Errorf("missing %q in %q", fragment, joined)
		}
	}
}

func TestWaveformArgs(t *testing.T) {
	args := waveformArgs("/in.wav", "/out.png", 1800, 140, "#2980b9", false)
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "showwavespic=s=1800x140:colors=#2980b9") {
		t.Fatalf("filter missing: %q", joined)
	}
	if strings.Contains(joined, "split_channels") {
		t.Fatalf("unexpected split_channels: %q", joined)
	}

	split := strings.Join(waveformArgs("/in.wav", "/out.png", 1800, 140, "#2980b9", true), " ")
	if !strings.Contains(split, "split_channels=1") {
		t.Fatalf("split_channels missing: %q", split)
	}
}

func TestExtractAudioArgsTargetSpeechInput(t *testing.T) {
	args := extractAudioArgs("/in.mov", "/out.wav")
	joined := strings.Join(args, " ")
	for _, fragment := range []string{"-vn", "-acodec pcm_s16le", "-ar 16000", "-ac 1"} {
		if !strings.Contains(joined, fragment) {
			t.Errorf("missing %q in %q", fragment, joined)
		}
	}
}

func TestClipArgsUseStreamCopy(t *testing.T) {
	args := clipArgs("/in.mp4", "/out.mp4", 12.5, 47.25)
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "-ss 12.500") {
		t.Fatalf("seek missing: %q", joined)
	}
	if !strings.Contains(joined, "-t 34.750") {
		t.Fatalf("duration missing: %q", joined)
	}
	if !strings.Contains(joined, "-c copy") {
		t.Fatalf("stream copy missing: %q", joined)
	}
}

func TestClipRejectsEmptyInterval(t *testing.T) {
	r := NewRunner("")
	if r.Binary != "ffmpeg" {
		t.Fatalf("default binary = %q", r.Binary)
	}
	if err := r.Clip(t.Context(), "/in.mp4", "/out.mp4", 10, 10); err == nil {
		t.Fatal("expected error for zero-length interval")
	}
}
