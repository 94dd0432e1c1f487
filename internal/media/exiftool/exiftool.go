// Package exiftool wraps the exiftool binary. It supplements ffprobe's
// container tags with embedded metadata ffmpeg does not surface, such as
// GPS coordinates, device make and model, and vendor-specific fields.
package exiftool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Result holds the tag set exiftool reported for a single file.
type Result struct {
	Tags map[string]any
	raw  []byte
}

// Inspect executes exiftool against path and decodes its JSON output.
// exiftool wraps even a single file's tags in a JSON array.
func Inspect(ctx context.Context, binary string, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "exiftool"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("exiftool inspect: empty path")
	}

	cmd := exec.CommandContext(ctx, binary, "-json", "-n", path)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Result{}, fmt.Errorf("exiftool inspect: %w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return Result{}, fmt.Errorf("exiftool inspect: %w", err)
	}

	var entries []map[string]any
	if err := json.Unmarshal(output, &entries); err != nil {
		return Result{}, fmt.Errorf("exiftool parse: %w", err)
	}
	result := Result{raw: append([]byte(nil), output...)}
	if len(entries) > 0 {
		result.Tags = entries[0]
	}
	return result, nil
}

// RawJSON returns the raw exiftool JSON payload.
func (r Result) RawJSON() []byte {
	return append([]byte(nil), r.raw...)
}

// String returns the named tag rendered as a string, or "" when absent.
// Numeric values lose no precision; structured values are re-encoded as
// JSON rather than dropped.
func (r Result) String(name string) string {
	value, ok := r.Tags[name]
	if !ok || value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(encoded)
	}
}

// Float returns the named tag as a float64 along with whether it was
// present and numeric.
func (r Result) Float(name string) (float64, bool) {
	value, ok := r.Tags[name]
	if !ok {
		return 0, false
	}
	switch v := value.(type) {
	case float64:
		return v, true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// StringTags flattens all scalar tags to strings, skipping exiftool's
// bookkeeping fields.
func (r Result) StringTags() map[string]string {
	flattened := make(map[string]string, len(r.Tags))
	for name := range r.Tags {
		switch name {
		case "SourceFile", "ExifToolVersion", "Directory", "FileName":
			continue
		}
		if value := r.String(name); value != "" {
			flattened[name] = value
		}
	}
	return flattened
}
