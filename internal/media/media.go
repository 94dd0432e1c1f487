// Package media classifies uploaded files and defines the media types
// the processing pipeline understands.
package media

import (
	"path/filepath"
	"strings"
)

// Type is the broad processing category of an uploaded file.
type Type string

const (
	TypeAudio       Type = "audio"
	TypeVideo       Type = "video"
	TypeImage       Type = "image"
	TypeUnsupported Type = "unsupported"
)

// AudioFormats lists the audio file extensions the pipeline accepts.
var AudioFormats = []string{"wav", "mp3", "flac", "ogg", "oga", "m4a", "aac", "wma", "aiff", "aif"}

// VideoFormats lists the video file extensions the pipeline accepts.
var VideoFormats = []string{"mov", "mp4", "avi", "mkv", "webm", "wmv", "flv", "m4v", "mpeg", "mpg", "3gp"}

// ImageFormats lists the still-image extensions the pipeline accepts for
// OCR and IIIF image canvases.
var ImageFormats = []string{"jpg", "jpeg", "png", "tif", "tiff", "bmp", "gif", "jp2", "webp"}

var typeByExtension = buildExtensionIndex()

func buildExtensionIndex() map[string]Type {
	index := make(map[string]Type, len(AudioFormats)+len(VideoFormats)+len(ImageFormats))
	for _, ext := range AudioFormats {
		index[ext] = TypeAudio
	}
	for _, ext := range VideoFormats {
		index[ext] = TypeVideo
	}
	for _, ext := range ImageFormats {
		index[ext] = TypeImage
	}
	return index
}

// Ext returns the lowercase extension of path without the leading dot.
func Ext(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// Classify maps a file path to its processing category by extension.
func Classify(path string) Type {
	if t, ok := typeByExtension[Ext(path)]; ok {
		return t
	}
	return TypeUnsupported
}

// IsSupported reports whether path is time-based media the derivative and
// transcription pipelines can process.
func IsSupported(path string) bool {
	t := Classify(path)
	return t == TypeAudio || t == TypeVideo
}

// IsAudio reports whether path carries an audio extension.
func IsAudio(path string) bool {
	return Classify(path) == TypeAudio
}

// IsVideo reports whether path carries a video extension.
func IsVideo(path string) bool {
	return Classify(path) == TypeVideo
}

// IsImage reports whether path carries a still-image extension.
func IsImage(path string) bool {
	return Classify(path) == TypeImage
}
