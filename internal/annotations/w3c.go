// Package annotations renders stored annotations as W3C Web Annotation
// JSON-LD and converts payloads from the Annotorious viewer widget.
package annotations

import (
	"fmt"
	"time"

	"tessera/internal/store"
)

// ContextURI is the W3C Web Annotation JSON-LD context.
const ContextURI = "http://www.w3.org/ns/anno.jsonld"

const mediaFragsSpec = "http://www.w3.org/TR/media-frags/"

// RenderW3C renders one stored annotation as a W3C Web Annotation object.
// A single body is emitted directly; multiple bodies become an array.
func RenderW3C(baseURL string, annotation *store.Annotation) map[string]any {
	rendered := map[string]any{
		"@context":   ContextURI,
		"id":         fmt.Sprintf("%s/annotation/%d", baseURL, annotation.ID),
		"type":       "Annotation",
		"motivation": annotation.Motivation,
		"target":     renderTarget(annotation),
	}
	if body := renderBodies(annotation.Bodies); body != nil {
		rendered["body"] = body
	}
	if annotation.Creator != "" {
		rendered["creator"] = map[string]any{
			"type": "Person",
			"name": annotation.Creator,
		}
	}
	if !annotation.CreatedAt.IsZero() {
		rendered["created"] = annotation.CreatedAt.UTC().Format(time.RFC3339)
	}
	if !annotation.UpdatedAt.IsZero() && annotation.UpdatedAt.After(annotation.CreatedAt) {
		rendered["modified"] = annotation.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return rendered
}

// RenderW3CCollection renders annotations as an AnnotationPage, the shape
// IIIF viewers expect for canvas annotation lists.
func RenderW3CCollection(baseURL, id string, items []*store.Annotation) map[string]any {
	rendered := make([]any, 0, len(items))
	for _, annotation := range items {
		rendered = append(rendered, RenderW3C(baseURL, annotation))
	}
	return map[string]any{
		"@context": ContextURI,
		"id":       id,
		"type":     "AnnotationPage",
		"items":    rendered,
	}
}

func renderBodies(bodies []store.AnnotationBody) any {
	if len(bodies) == 0 {
		return nil
	}
	rendered := make([]any, 0, len(bodies))
	for _, body := range bodies {
		entry := map[string]any{
			"type":  "TextualBody",
			"value": body.Value,
		}
		if body.Format != "" {
			entry["format"] = body.Format
		}
		if body.Language != "" {
			entry["language"] = body.Language
		}
		if body.Purpose != "" {
			entry["purpose"] = body.Purpose
		}
		rendered = append(rendered, entry)
	}
	if len(rendered) == 1 {
		return rendered[0]
	}
	return rendered
}

func renderTarget(annotation *store.Annotation) any {
	if annotation.TargetSelector == "" {
		return annotation.CanvasID
	}
	if annotation.SelectorType == "FragmentSelector" {
		return FragmentTarget(annotation.CanvasID, annotation.TargetSelector)
	}
	return map[string]any{
		"source": annotation.CanvasID,
		"selector": map[string]any{
			"type":  annotation.SelectorType,
			"value": annotation.TargetSelector,
		},
	}
}

// FragmentTarget renders a canvas target refined by a media fragment: the
// SpecificResource shape shared by user annotations, OCR regions, and
// transcript intervals.
func FragmentTarget(source, fragment string) map[string]any {
	return map[string]any{
		"source": source,
		"selector": map[string]any{
			"type":       "FragmentSelector",
			"conformsTo": mediaFragsSpec,
			"value":      fragment,
		},
	}
}
