// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Result: parsed ffprobe output containing streams, format metadata,
//     container tags, and chapter markers
//   - Stream: individual audio/video/subtitle stream properties
//   - Format: container-level metadata (duration, size, bitrate, tags)
//
// Primary entry point:
//   - Inspect: executes ffprobe and returns a parsed Result
//
// Helper methods on Result provide convenient access to stream selection,
// stream counts, duration parsing, and bitrate extraction.
package ffprobe
