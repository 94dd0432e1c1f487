package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams  []Stream  `json:"streams"`
	Format   Format    `json:"format"`
	Chapters []Chapter `json:"chapters"`
	raw      []byte
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index            int               `json:"index"`
	CodecName        string            `json:"codec_name"`
	CodecType        string            `json:"codec_type"`
	CodecTag         string            `json:"codec_tag_string"`
	Duration         string            `json:"duration"`
	BitRate          string            `json:"bit_rate"`
	Width            int               `json:"width"`
	Height           int               `json:"height"`
	PixFmt           string            `json:"pix_fmt"`
	RFrameRate       string            `json:"r_frame_rate"`
	AvgFrameRate     string            `json:"avg_frame_rate"`
	SampleRate       string            `json:"sample_rate"`
	SampleFmt        string            `json:"sample_fmt"`
	Channels         int               `json:"channels"`
	ChannelLayout    string            `json:"channel_layout"`
	BitsPerSample    int               `json:"bits_per_sample"`
	BitsPerRawSample string            `json:"bits_per_raw_sample"`
	Tags             map[string]string `json:"tags"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string            `json:"filename"`
	NBStreams  int               `json:"nb_streams"`
	Duration   string            `json:"duration"`
	Size       string            `json:"size"`
	BitRate    string            `json:"bit_rate"`
	FormatName string            `json:"format_name"`
	Tags       map[string]string `json:"tags"`
}

// Chapter is a chapter marker embedded in the container.
type Chapter struct {
	ID        int64             `json:"id"`
	StartTime string            `json:"start_time"`
	EndTime   string            `json:"end_time"`
	Tags      map[string]string `json:"tags"`
}

// Title returns the chapter title tag, or "" when absent.
func (c Chapter) Title() string {
	return c.Tags["title"]
}

// Start returns the chapter start in seconds.
func (c Chapter) Start() float64 {
	return zeroNaN(parseFloat(c.StartTime))
}

// End returns the chapter end in seconds.
func (c Chapter) End() float64 {
	return zeroNaN(parseFloat(c.EndTime))
}

// Inspect executes ffprobe against the provided path and decodes the JSON
// response, including container tags and chapter markers.
func Inspect(ctx context.Context, binary string, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}

	cmd := exec.CommandContext(ctx, binary,
		"-v", "error", "-hide_banner",
		"-show_format", "-show_streams", "-show_chapters",
		"-of", "json", "--", path)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Result{}, fmt.Errorf("ffprobe inspect: %w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return Result{}, fmt.Errorf("ffprobe inspect: %w", err)
	}

	var result Result
	if err := json.Unmarshal(output, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	result.raw = append([]byte(nil), output...)
	return result, nil
}

// RawJSON returns the raw ffprobe JSON payload.
func (r Result) RawJSON() []byte {
	return append([]byte(nil), r.raw...)
}

// FirstVideoStream returns the first video stream, or nil when none exists.
func (r Result) FirstVideoStream() *Stream {
	return r.firstOfType("video")
}

// FirstAudioStream returns the first audio stream, or nil when none exists.
func (r Result) FirstAudioStream() *Stream {
	return r.firstOfType("audio")
}

func (r Result) firstOfType(codecType string) *Stream {
	for i := range r.Streams {
		if strings.EqualFold(r.Streams[i].CodecType, codecType) {
			return &r.Streams[i]
		}
	}
	return nil
}

// VideoStreamCount returns the number of video streams discovered.
func (r Result) VideoStreamCount() int {
	return r.countOfType("video")
}

// AudioStreamCount returns the number of audio streams discovered.
func (r Result) AudioStreamCount() int {
	return r.countOfType("audio")
}

// SubtitleStreamCount returns the number of subtitle streams discovered.
func (r Result) SubtitleStreamCount() int {
	return r.countOfType("subtitle")
}

func (r Result) countOfType(codecType string) int {
	count := 0
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, codecType) {
			count++
		}
	}
	return count
}

// DurationSeconds returns the container duration in seconds, or 0 when
// unavailable.
func (r Result) DurationSeconds() float64 {
	return zeroNaN(parseFloat(r.Format.Duration))
}

// SizeBytes returns the reported container size in bytes, or 0 when
// unavailable.
func (r Result) SizeBytes() int64 {
	size := parseFloat(r.Format.Size)
	if math.IsNaN(size) || size < 0 {
		return 0
	}
	return int64(size)
}

// BitRate returns the container bitrate in bits per second, or 0 when
// unavailable.
func (r Result) BitRate() int64 {
	rate := parseFloat(r.Format.BitRate)
	if math.IsNaN(rate) || rate < 0 {
		return 0
	}
	return int64(rate)
}

// FrameRate returns the stream's frame rate in frames per second. ffprobe
// reports it as a ratio such as "30000/1001".
func (s Stream) FrameRate() float64 {
	for _, rate := range []string{s.AvgFrameRate, s.RFrameRate} {
		if fps := parseRatio(rate); fps > 0 {
			return fps
		}
	}
	return 0
}

// SampleRateHz returns the audio sample rate in Hz, or 0 when unavailable.
func (s Stream) SampleRateHz() int {
	rate := parseFloat(s.SampleRate)
	if math.IsNaN(rate) || rate < 0 {
		return 0
	}
	return int(rate)
}

// BitDepth returns the audio bit depth, preferring bits_per_raw_sample.
func (s Stream) BitDepth() int {
	if depth := parseFloat(s.BitsPerRawSample); !math.IsNaN(depth) && depth > 0 {
		return int(depth)
	}
	return s.BitsPerSample
}

func parseRatio(value string) float64 {
	num, den, ok := strings.Cut(strings.TrimSpace(value), "/")
	if !ok {
		f := parseFloat(value)
		if math.IsNaN(f) {
			return 0
		}
		return f
	}
	n := parseFloat(num)
	d := parseFloat(den)
	if math.IsNaN(n) || math.IsNaN(d) || d == 0 {
		return 0
	}
	return n / d
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return parsed
	}
	return math.NaN()
}

func zeroNaN(f float64) float64 {
	if math.IsNaN(f) {
		return 0
	}
	return f
}
