package transcribe

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"tessera/internal/store"
)

// FormatVTTTime renders seconds as a WebVTT cue timestamp, e.g.
// "00:02:05.500".
func FormatVTTTime(seconds float64) string {
	hours, minutes, secs, millis := splitTime(seconds)
	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, secs, millis)
}

// FormatSRTTime renders seconds as an SRT cue timestamp, which uses a comma
// before the milliseconds: "00:02:05,500".
func FormatSRTTime(seconds float64) string {
	hours, minutes, secs, millis := splitTime(seconds)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

func splitTime(seconds float64) (hours, minutes, secs, millis int64) {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		seconds = 0
	}
	totalMillis := int64(math.Round(seconds * 1000))
	millis = totalMillis % 1000
	totalSeconds := totalMillis / 1000
	secs = totalSeconds % 60
	minutes = (totalSeconds / 60) % 60
	hours = totalSeconds / 3600
	return hours, minutes, secs, millis
}

// WriteVTT writes the segments as a WebVTT document.
func WriteVTT(w io.Writer, segments []store.TranscriptSegment) error {
	if _, err := io.WriteString(w, "WEBVTT\n\n"); err != nil {
		return err
	}
	for _, segment := range segments {
		_, err := fmt.Fprintf(w, "%s --> %s\n%s\n\n",
			FormatVTTTime(segment.Start), FormatVTTTime(segment.End),
			strings.TrimSpace(segment.Text))
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteSRT writes the segments as a SubRip document with 1-based cue
// numbering.
func WriteSRT(w io.Writer, segments []store.TranscriptSegment) error {
	for i, segment := range segments {
		_, err := fmt.Fprintf(w, "%d\n%s --> %s\n%s\n\n",
			i+1,
			FormatSRTTime(segment.Start), FormatSRTTime(segment.End),
			strings.TrimSpace(segment.Text))
		if err != nil {
			return err
		}
	}
	return nil
}

// WritePlainText writes a human-readable transcript with a header naming
// the language, when it was transcribed, and the recording's duration.
func WritePlainText(w io.Writer, transcript *store.Transcript) error {
	var header strings.Builder
	header.WriteString("TRANSCRIPTION\n=============\n\n")
	if transcript.Language != "" {
		fmt.Fprintf(&header, "Language: %s\n", LanguageName(transcript.Language))
	}
	transcribedAt := transcript.CreatedAt
	if transcribedAt.IsZero() {
		transcribedAt = time.Now()
	}
	fmt.Fprintf(&header, "Transcribed: %s\n", transcribedAt.UTC().Format(time.RFC3339))
	if transcript.Duration > 0 {
		fmt.Fprintf(&header, "Duration: %s\n", FormatDuration(transcript.Duration))
	}
	header.WriteString("\n---\n\n")

	if _, err := io.WriteString(w, header.String()); err != nil {
		return err
	}
	_, err := io.WriteString(w, strings.TrimSpace(transcript.FullText)+"\n")
	return err
}

// FormatDuration renders seconds as "M:SS", or "H:MM:SS" once the recording
// runs past an hour.
func FormatDuration(seconds float64) string {
	total := int64(seconds)
	if total < 0 {
		total = 0
	}
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}

// LanguageName resolves an ISO language code to its English display name,
// returning the code itself when it does not parse.
func LanguageName(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return "Unknown"
	}
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return code
}
