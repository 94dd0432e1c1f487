// Package mediainfo wraps the mediainfo binary, which reports some fields
// ffprobe misses (notably audio bit depth and per-track format profiles).
package mediainfo

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

// Result is the parsed output of a mediainfo inspection.
type Result struct {
	Media struct {
		Ref    string  `json:"@ref"`
		Tracks []Track `json:"track"`
	} `json:"media"`
	raw []byte
}

// Track is a single mediainfo track. mediainfo emits every value as a
// string, so numeric fields are parsed on access.
type Track struct {
	Type          string `json:"@type"`
	Format        string `json:"Format"`
	FormatProfile string `json:"Format_Profile"`
	Duration      string `json:"Duration"`
	BitRate       string `json:"BitRate"`
	BitDepth      string `json:"BitDepth"`
	Width         string `json:"Width"`
	Height        string `json:"Height"`
	FrameRate     string `json:"FrameRate"`
	SampleRate    string `json:"SamplingRate"`
	Channels      string `json:"Channels"`
	ChannelLayout string `json:"ChannelLayout"`
	Title         string `json:"Title"`
	Language      string `json:"Language"`
}

// Inspect executes mediainfo with JSON output against path.
func Inspect(ctx context.Context, binary string, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "mediainfo"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("mediainfo inspect: empty path")
	}

	cmd := exec.CommandContext(ctx, binary, "--Output=JSON", path)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Result{}, fmt.Errorf("mediainfo inspect: %w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return Result{}, fmt.Errorf("mediainfo inspect: %w", err)
	}

	var result Result
	if err := json.Unmarshal(output, &result); err != nil {
		return Result{}, fmt.Errorf("mediainfo parse: %w", err)
	}
	result.raw = append([]byte(nil), output...)
	return result, nil
}

// RawJSON returns the raw mediainfo JSON payload.
func (r Result) RawJSON() []byte {
	return append([]byte(nil), r.raw...)
}

// General returns the container-level track, or nil when absent.
func (r Result) General() *Track {
	return r.firstOfType("General")
}

// FirstVideo returns the first video track, or nil when absent.
func (r Result) FirstVideo() *Track {
	return r.firstOfType("Video")
}

// FirstAudio returns the first audio track, or nil when absent.
func (r Result) FirstAudio() *Track {
	return r.firstOfType("Audio")
}

func (r Result) firstOfType(trackType string) *Track {
	for i := range r.Media.Tracks {
		if strings.EqualFold(r.Media.Tracks[i].Type, trackType) {
			return &r.Media.Tracks[i]
		}
	}
	return nil
}

// BitDepthBits returns the track's audio bit depth, or 0 when unavailable.
func (t Track) BitDepthBits() int {
	return parseInt(t.BitDepth)
}

// DurationSeconds returns the track duration in seconds, or 0 when
// unavailable.
func (t Track) DurationSeconds() float64 {
	return parseFloat(t.Duration)
}

// ChannelCount returns the audio channel count, or 0 when unavailable.
func (t Track) ChannelCount() int {
	return parseInt(t.Channels)
}

// SampleRateHz returns the audio sample rate in Hz, or 0 when unavailable.
func (t Track) SampleRateHz() int {
	return parseInt(t.SampleRate)
}

func parseInt(value string) int {
	f := parseFloat(value)
	if f < 0 {
		return 0
	}
	return int(f)
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(parsed) {
		return 0
	}
	return parsed
}
