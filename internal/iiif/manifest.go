package iiif

import (
	"context"
	"fmt"
	"strings"

	"tessera/internal/store"
)

// PresentationContext is the IIIF Presentation API 3.0 JSON-LD context.
const PresentationContext = "http://iiif.io/api/presentation/3/context.json"

const imageServiceProfile = "level2"

// Manifest renders the Presentation 3.0 manifest for a record, or nil when
// the record has no assets.
func (s *Service) Manifest(ctx context.Context, recordID int64) (map[string]any, error) {
	data, err := s.loadRecord(ctx, recordID)
	if err != nil || data == nil {
		return nil, err
	}

	lang := s.cfg.Manifest.DefaultLanguage
	manifest := map[string]any{
		"@context": PresentationContext,
		"id":       s.manifestID(recordID),
		"type":     "Manifest",
		"label":    langMap(lang, displayTitle(data.record)),
	}
	if pairs := s.metadataPairs(data.record); len(pairs) > 0 {
		manifest["metadata"] = pairs
	}
	if s.cfg.Manifest.Attribution != "" {
		manifest["requiredStatement"] = map[string]any{
			"label": langMap(lang, "Attribution"),
			"value": langMap(lang, s.cfg.Manifest.Attribution),
		}
	}
	if s.cfg.Manifest.License != "" {
		manifest["rights"] = s.cfg.Manifest.License
	}
	if s.cfg.Manifest.LogoURL != "" {
		manifest["provider"] = []any{map[string]any{
			"id":    s.cfg.Manifest.BaseURL,
			"type":  "Agent",
			"label": langMap(lang, s.cfg.Manifest.Attribution),
			"logo": []any{map[string]any{
				"id":   s.cfg.Manifest.LogoURL,
				"type": "Image",
			}},
		}}
	}

	var canvases []any
	for _, entry := range data.assets {
		canvases = append(canvases, s.buildCanvases(data.record.ID, entry)...)
	}
	manifest["items"] = canvases

	if len(canvases) > 1 {
		manifest["behavior"] = []any{"paged"}
	} else {
		manifest["behavior"] = []any{"individuals"}
	}

	// A table of contents only helps once there is more than one canvas.
	if len(canvases) > 1 {
		refs := make([]any, 0, len(canvases))
		for _, c := range canvases {
			refs = append(refs, map[string]any{
				"id":   c.(map[string]any)["id"],
				"type": "Canvas",
			})
		}
		manifest["structures"] = []any{map[string]any{
			"id":    s.manifestID(recordID) + "/range/1",
			"type":  "Range",
			"label": langMap(lang, displayTitle(data.record)),
			"items": refs,
		}}
	}

	manifest["service"] = []any{map[string]any{
		"@context": SearchContext,
		"id":       s.searchServiceID(recordID),
		"type":     "SearchService1",
		"profile":  "http://iiif.io/api/search/1/search",
	}}

	s.logger.Debug("manifest rendered", "record_id", recordID, "canvases", len(canvases))
	return manifest, nil
}

// buildCanvases renders every canvas an asset contributes: one per probed
// page for images, a single timed canvas for audio and video.
func (s *Service) buildCanvases(recordID int64, entry canvasData) []any {
	if assetKind(entry.asset) == "Image" {
		canvases := make([]any, 0, entry.pages)
		for page := 1; page <= entry.pages; page++ {
			canvases = append(canvases, s.imageCanvas(recordID, entry, page))
		}
		return canvases
	}
	return []any{s.timedCanvas(recordID, entry)}
}

func (s *Service) imageCanvas(recordID int64, entry canvasData, page int) map[string]any {
	lang := s.cfg.Manifest.DefaultLanguage
	canvasID := s.canvasID(recordID, entry.asset.ID, page)
	identifier := imageIdentifier(entry.asset)
	if entry.pages > 1 {
		// Meta identifiers address pages zero-based on the image server.
		identifier = PageIdentifier(identifier, page-1)
	}

	label := entry.asset.Name
	if entry.pages > 1 {
		label = fmt.Sprintf("%s (page %d)", entry.asset.Name, page)
	}

	canvas := map[string]any{
		"id":     canvasID,
		"type":   "Canvas",
		"label":  langMap(lang, label),
		"width":  entry.width,
		"height": entry.height,
		"items": []any{map[string]any{
			"id":   canvasID + "/painting",
			"type": "AnnotationPage",
			"items": []any{map[string]any{
				"id":         canvasID + "/painting/1",
				"type":       "Annotation",
				"motivation": "painting",
				"target":     canvasID,
				"body": map[string]any{
					"id":     s.images.ImageURL(identifier),
					"type":   "Image",
					"format": "image/jpeg",
					"width":  entry.width,
					"height": entry.height,
					"service": []any{map[string]any{
						"id":      s.images.ServiceID(identifier),
						"type":    "ImageService3",
						"profile": imageServiceProfile,
					}},
				},
			}},
		}},
		"thumbnail": []any{map[string]any{
			"id":     s.images.ServiceID(identifier) + "/full/200,/0/default.jpg",
			"type":   "Image",
			"format": "image/jpeg",
			"width":  200,
			"height": ThumbnailHeight(entry.width, entry.height),
		}},
	}

	var annoPages []any
	if entry.hasOCR {
		annoPages = append(annoPages, map[string]any{
			"id":   s.ocrAnnotationPageID(recordID, entry.asset.ID, page),
			"type": "AnnotationPage",
		})
	}
	annoPages = append(annoPages, map[string]any{
		"id":   s.userAnnotationPageID(recordID, entry.asset.ID, page),
		"type": "AnnotationPage",
	})
	canvas["annotations"] = annoPages
	return canvas
}

func (s *Service) timedCanvas(recordID int64, entry canvasData) map[string]any {
	lang := s.cfg.Manifest.DefaultLanguage
	canvasID := s.canvasID(recordID, entry.asset.ID, 1)
	kind := assetKind(entry.asset)

	var duration float64
	if entry.meta != nil {
		duration = entry.meta.Duration
	}

	body := map[string]any{
		"id":   s.fileURL(entry.asset.ID),
		"type": kind,
	}
	if entry.asset.MimeType != "" {
		body["format"] = entry.asset.MimeType
	}
	if duration > 0 {
		body["duration"] = duration
	}
	if kind == "Video" && entry.width > 0 {
		body["width"] = entry.width
		body["height"] = entry.height
	}

	canvas := map[string]any{
		"id":    canvasID,
		"type":  "Canvas",
		"label": langMap(lang, entry.asset.Name),
		"items": []any{map[string]any{
			"id":   canvasID + "/painting",
			"type": "AnnotationPage",
			"items": []any{map[string]any{
				"id":         canvasID + "/painting/1",
				"type":       "Annotation",
				"motivation": "painting",
				"target":     canvasID,
				"body":       body,
			}},
		}},
	}
	if duration > 0 {
		canvas["duration"] = duration
	}
	if kind == "Video" && entry.width > 0 {
		canvas["width"] = entry.width
		canvas["height"] = entry.height
	}

	if thumbs := entry.derivatives[store.DerivativeThumbnail]; len(thumbs) > 0 {
		canvas["thumbnail"] = []any{map[string]any{
			"id":     s.derivativeURL(entry.asset.ID, store.DerivativeThumbnail, thumbs[0].Index),
			"type":   "Image",
			"format": "image/jpeg",
		}}
	}
	if entry.meta != nil && entry.meta.WaveformPath != "" {
		canvas["seeAlso"] = []any{map[string]any{
			"id":     s.derivativeURL(entry.asset.ID, store.DerivativeWaveform, 0),
			"type":   "Image",
			"format": "image/png",
			"label":  langMap(lang, "Waveform"),
		}}
	}

	var annoPages []any
	if entry.transcript != nil {
		annoPages = append(annoPages, map[string]any{
			"id":   s.transcriptAnnotationPageID(recordID, entry.asset.ID),
			"type": "AnnotationPage",
		})
		if entry.transcript.VTTPath != "" {
			canvas["rendering"] = []any{map[string]any{
				"id":     fmt.Sprintf("%s/asset/%d/transcript.vtt", s.cfg.Manifest.BaseURL, entry.asset.ID),
				"type":   "Text",
				"format": "text/vtt",
				"label":  langMap(lang, "Captions"),
			}}
		}
	}
	annoPages = append(annoPages, map[string]any{
		"id":   s.userAnnotationPageID(recordID, entry.asset.ID, 1),
		"type": "AnnotationPage",
	})
	canvas["annotations"] = annoPages
	return canvas
}

func (s *Service) metadataPairs(record *store.Record) []any {
	lang := s.cfg.Manifest.DefaultLanguage
	var pairs []any
	add := func(label, value string) {
		if value != "" {
			pairs = append(pairs, map[string]any{
				"label": langMap(lang, label),
				"value": langMap(lang, value),
			})
		}
	}
	add("Identifier", record.Identifier)
	add("Repository", record.Repository)
	add("Level of description", record.LevelOfDescription)
	return pairs
}

func displayTitle(record *store.Record) string {
	if record.Title != "" {
		return record.Title
	}
	// Reference codes encode slashes as "_SL_" to stay filename-safe.
	return strings.ReplaceAll(record.Identifier, "_SL_", "/")
}

func langMap(lang, value string) map[string]any {
	if lang == "" {
		lang = "en"
	}
	return map[string]any{lang: []any{value}}
}
