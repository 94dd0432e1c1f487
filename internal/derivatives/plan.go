package derivatives

// thumbnailTime picks the frame grab position. The configured time is used
// unless it lands past 90% of the clip, in which case the grab moves to 10%
// of the duration so short clips still get a representative frame.
func thumbnailTime(duration, configured float64) float64 {
	if configured < 0 {
		configured = 0
	}
	if duration <= 0 {
		return configured
	}
	if configured > duration*0.9 {
		return duration * 0.1
	}
	return configured
}

// posterTimes filters the configured positions to those inside the clip.
// When none fit, a single poster at 10% of the duration is produced. A
// clip with unknown duration gets no posters.
func posterTimes(duration float64, configured []float64) []float64 {
	if duration <= 0 {
		return nil
	}
	var times []float64
	for _, t := range configured {
		if t >= 0 && t < duration {
			times = append(times, t)
		}
	}
	if len(times) == 0 {
		times = []float64{duration * 0.1}
	}
	return times
}

// previewWindow clamps the configured preview interval to the clip.
func previewWindow(duration, start, length float64) (float64, float64) {
	if start < 0 {
		start = 0
	}
	if duration > 0 {
		if start >= duration {
			start = 0
		}
		if remaining := duration - start; length > remaining {
			length = remaining
		}
	}
	if length < 0 {
		length = 0
	}
	return start, length
}
