// Package ffmpeg builds and runs the ffmpeg invocations behind every
// derivative the pipeline produces.
package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Runner executes ffmpeg with a fixed binary path.
type Runner struct {
	Binary string
}

// NewRunner returns a Runner for binary, defaulting to "ffmpeg".
func NewRunner(binary string) *Runner {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Runner{Binary: binary}
}

func (r *Runner) run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, r.Binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		detail := strings.TrimSpace(string(output))
		if len(detail) > 512 {
			detail = detail[len(detail)-512:]
		}
		return fmt.Errorf("ffmpeg: %w: %s", err, detail)
	}
	return nil
}

// Thumbnail extracts a single frame at seekTime scaled to width x height.
func (r *Runner) Thumbnail(ctx context.Context, src, dst string, seekTime float64, width, height int) error {
	if src == "" || dst == "" {
		return errors.New("ffmpeg thumbnail: empty path")
	}
	return r.run(ctx, thumbnailArgs(src, dst, seekTime, width, height))
}

func thumbnailArgs(src, dst string, seekTime float64, width, height int) []string {
	return []string{
		"-hide_banner", "-loglevel", "error",
		"-ss", formatSeconds(seekTime),
		"-i", src,
		"-vframes", "1",
		"-vf", fmt.Sprintf("scale=%d:%d", width, height),
		"-y", dst,
	}
}

// Preview transcodes a bounded clip to H.264/AAC sized for in-browser
// playback, with the moov atom moved up front for progressive streaming.
func (r *Runner) Preview(ctx context.Context, src, dst string, start, duration float64, videoBitrate, audioBitrate string) error {
	if src == "" || dst == "" {
		return errors.New("ffmpeg preview: empty path")
	}
	return r.run(ctx, previewArgs(src, dst, start, duration, videoBitrate, audioBitrate))
}

func previewArgs(src, dst string, start, duration float64, videoBitrate, audioBitrate string) []string {
	return []string{
		"-hide_banner", "-loglevel", "error",
		"-ss", formatSeconds(start),
		"-i", src,
		"-t", formatSeconds(duration),
		"-vf", "scale=640:-2",
		"-c:v", "libx264",
		"-b:v", videoBitrate,
		"-c:a", "aac",
		"-b:a", audioBitrate,
		"-movflags", "+faststart",
		"-y", dst,
	}
}

// AudioPreview transcodes a bounded clip to MP3.
func (r *Runner) AudioPreview(ctx context.Context, src, dst string, start, duration float64, bitrate string) error {
	if src == "" || dst == "" {
		return errors.New("ffmpeg audio preview: empty path")
	}
	return r.run(ctx, audioPreviewArgs(src, dst, start, duration, bitrate))
}

func audioPreviewArgs(src, dst string, start, duration float64, bitrate string) []string {
	return []string{
		"-hide_banner", "-loglevel", "error",
		"-ss", formatSeconds(start),
		"-i", src,
		"-t", formatSeconds(duration),
		"-vn",
		"-c:a", "libmp3lame",
		"-b:a", bitrate,
		"-y", dst,
	}
}

// Waveform renders the audio track as a static waveform image.
func (r *Runner) Waveform(ctx context.Context, src, dst string, width, height int, color string, splitChannels bool) error {
	if src == "" || dst == "" {
		return errors.New("ffmpeg waveform: empty path")
	}
	return r.run(ctx, waveformArgs(src, dst, width, height, color, splitChannels))
}

func waveformArgs(src, dst string, width, height int, color string, splitChannels bool) []string {
	filter := fmt.Sprintf("showwavespic=s=%dx%d:colors=%s", width, height, color)
	if splitChannels {
		filter += ":split_channels=1"
	}
	return []string{
		"-hide_banner", "-loglevel", "error",
		"-i", src,
		"-filter_complex", filter,
		"-frames:v", "1",
		"-y", dst,
	}
}

// ExtractAudio writes the audio track as 16 kHz mono PCM WAV, the input
// format speech recognition models expect.
func (r *Runner) ExtractAudio(ctx context.Context, src, dst string) error {
	if src == "" || dst == "" {
		return errors.New("ffmpeg extract audio: empty path")
	}
	return r.run(ctx, extractAudioArgs(src, dst))
}

func extractAudioArgs(src, dst string) []string {
	return []string{
		"-hide_banner", "-loglevel", "error",
		"-i", src,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		"-y", dst,
	}
}

// Clip copies the interval [start, end) out of src without re-encoding.
func (r *Runner) Clip(ctx context.Context, src, dst string, start, end float64) error {
	if src == "" || dst == "" {
		return errors.New("ffmpeg clip: empty path")
	}
	if end <= start {
		return fmt.Errorf("ffmpeg clip: end %.3f not after start %.3f", end, start)
	}
	return r.run(ctx, clipArgs(src, dst, start, end))
}

func clipArgs(src, dst string, start, end float64) []string {
	return []string{
		"-hide_banner", "-loglevel", "error",
		"-ss", formatSeconds(start),
		"-i", src,
		"-t", formatSeconds(end - start),
		"-c", "copy",
		"-y", dst,
	}
}

func formatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 3, 64)
}
