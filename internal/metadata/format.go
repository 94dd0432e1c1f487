package metadata

import (
	"fmt"
	"math"
)

// FormatDuration renders seconds as a display string with millisecond
// precision. The hour field is omitted for durations under an hour.
func FormatDuration(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		seconds = 0
	}
	totalMillis := int64(math.Round(seconds * 1000))
	millis := totalMillis % 1000
	totalSeconds := totalMillis / 1000
	secs := totalSeconds % 60
	minutes := (totalSeconds / 60) % 60
	hours := totalSeconds / 3600
	if hours == 0 {
		return fmt.Sprintf("%02d:%02d.%03d", minutes, secs, millis)
	}
	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, secs, millis)
}

// FormatBitrate renders a bitrate in bits per second as Mbps when at or
// above one megabit, kbps otherwise.
func FormatBitrate(bitsPerSecond int64) string {
	if bitsPerSecond <= 0 {
		return "0 kbps"
	}
	if bitsPerSecond >= 1_000_000 {
		return fmt.Sprintf("%.2f Mbps", float64(bitsPerSecond)/1_000_000)
	}
	return fmt.Sprintf("%d kbps", bitsPerSecond/1000)
}
