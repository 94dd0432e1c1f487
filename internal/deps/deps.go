// Package deps reports the availability of the external binaries the
// pipeline shells out to.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"tessera/internal/config"
)

// Requirement defines an external dependency Tessera relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements builds the tool requirement list from configuration.
// ffmpeg and ffprobe are mandatory; everything else degrades a single
// capability when missing.
func Requirements(cfg *config.Config) []Requirement {
	tools := config.Default().Tools
	if cfg != nil {
		tools = cfg.Tools
	}
	return []Requirement{
		{Name: "FFmpeg", Command: tools.FFmpeg, Description: "Derivative generation and snippet export"},
		{Name: "FFprobe", Command: tools.FFprobe, Description: "Stream and container inspection"},
		{Name: "MediaInfo", Command: tools.MediaInfo, Description: "Secondary technical metadata", Optional: true},
		{Name: "ExifTool", Command: tools.ExifTool, Description: "Embedded tag extraction", Optional: true},
		{Name: "Tesseract", Command: tools.Tesseract, Description: "Optical character recognition", Optional: true},
		{Name: "Whisper", Command: tools.Whisper, Description: "Speech transcription", Optional: true},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}
