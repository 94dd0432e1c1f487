package annotations

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"tessera/internal/store"
)

// xywhPattern matches media fragment selectors, with or without the
// "pixel:" unit prefix Annotorious emits.
var xywhPattern = regexp.MustCompile(`^xywh=(?:pixel:)?(\d+(?:\.\d+)?),(\d+(?:\.\d+)?),(\d+(?:\.\d+)?),(\d+(?:\.\d+)?)$`)

// annotoriousPayload mirrors the W3C-flavored JSON Annotorious posts.
// Bodies and targets arrive either as single objects or arrays, so both
// fields decode leniently.
type annotoriousPayload struct {
	ID         string          `json:"id"`
	Motivation string          `json:"motivation"`
	Body       json.RawMessage `json:"body"`
	Target     json.RawMessage `json:"target"`
}

type annotoriousBody struct {
	Value    string `json:"value"`
	Format   string `json:"format"`
	Language string `json:"language"`
	Purpose  string `json:"purpose"`
}

type annotoriousTarget struct {
	Source   string          `json:"source"`
	Selector json.RawMessage `json:"selector"`
}

type annotoriousSelector struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// FromAnnotorious converts an Annotorious annotation payload into a store
// annotation targeting canvasID. The region selector is normalized: pixel
// media fragments lose their unit prefix, and SVG selectors are kept
// verbatim.
func FromAnnotorious(payload []byte, recordID int64, canvasID string) (*store.Annotation, error) {
	var decoded annotoriousPayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, fmt.Errorf("parse annotorious payload: %w", err)
	}

	annotation := &store.Annotation{
		RecordID:   recordID,
		CanvasID:   canvasID,
		Motivation: decoded.Motivation,
	}

	bodies, err := decodeBodies(decoded.Body)
	if err != nil {
		return nil, err
	}
	annotation.Bodies = bodies

	selector, err := decodeSelector(decoded.Target)
	if err != nil {
		return nil, err
	}
	if selector != nil {
		annotation.SelectorType = selector.Type
		annotation.TargetSelector = normalizeSelectorValue(selector.Type, selector.Value)
	}

	if annotation.Motivation == "" {
		annotation.Motivation = store.MotivationCommenting
		for _, body := range annotation.Bodies {
			if body.Purpose == "tagging" {
				annotation.Motivation = store.MotivationTagging
				break
			}
		}
	}
	return annotation, nil
}

// ToAnnotorious renders a stored annotation in the shape the Annotorious
// widget loads, restoring the pixel unit on fragment selectors.
func ToAnnotorious(annotation *store.Annotation) map[string]any {
	bodies := make([]any, 0, len(annotation.Bodies))
	for _, body := range annotation.Bodies {
		entry := map[string]any{
			"type":    "TextualBody",
			"value":   body.Value,
			"purpose": body.Purpose,
		}
		if body.Purpose == "" {
			entry["purpose"] = "commenting"
		}
		bodies = append(bodies, entry)
	}

	selector := map[string]any{
		"type":  annotation.SelectorType,
		"value": annotation.TargetSelector,
	}
	if annotation.SelectorType == "FragmentSelector" {
		if x, y, w, h, ok := ParseXYWH(annotation.TargetSelector); ok {
			selector["conformsTo"] = mediaFragsSpec
			selector["value"] = fmt.Sprintf("xywh=pixel:%g,%g,%g,%g", x, y, w, h)
		}
	}

	return map[string]any{
		"@context":   ContextURI,
		"id":         fmt.Sprintf("#annotation-%d", annotation.ID),
		"type":       "Annotation",
		"motivation": annotation.Motivation,
		"body":       bodies,
		"target": map[string]any{
			"source":   annotation.CanvasID,
			"selector": selector,
		},
	}
}

// ParseXYWH extracts the region from a media fragment selector value.
func ParseXYWH(value string) (x, y, w, h float64, ok bool) {
	match := xywhPattern.FindStringSubmatch(strings.TrimSpace(value))
	if match == nil {
		return 0, 0, 0, 0, false
	}
	coords := make([]float64, 4)
	for i, field := range match[1:] {
		if _, err := fmt.Sscanf(field, "%g", &coords[i]); err != nil {
			return 0, 0, 0, 0, false
		}
	}
	return coords[0], coords[1], coords[2], coords[3], true
}

func normalizeSelectorValue(selectorType, value string) string {
	value = strings.TrimSpace(value)
	if selectorType != "FragmentSelector" {
		return value
	}
	if x, y, w, h, ok := ParseXYWH(value); ok {
		return fmt.Sprintf("xywh=%g,%g,%g,%g", x, y, w, h)
	}
	return value
}

func decodeBodies(raw json.RawMessage) ([]store.AnnotationBody, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var single annotoriousBody
	if err := json.Unmarshal(raw, &single); err == nil && single.Value != "" {
		return []store.AnnotationBody{convertBody(single)}, nil
	}
	var many []annotoriousBody
	if err := json.Unmarshal(raw, &many); err != nil {
		return nil, fmt.Errorf("parse annotation bodies: %w", err)
	}
	bodies := make([]store.AnnotationBody, 0, len(many))
	for _, body := range many {
		if body.Value == "" {
			continue
		}
		bodies = append(bodies, convertBody(body))
	}
	return bodies, nil
}

func convertBody(body annotoriousBody) store.AnnotationBody {
	return store.AnnotationBody{
		Value:    body.Value,
		Format:   body.Format,
		Language: body.Language,
		Purpose:  body.Purpose,
	}
}

func decodeSelector(raw json.RawMessage) (*annotoriousSelector, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var target annotoriousTarget
	if err := json.Unmarshal(raw, &target); err != nil {
		// Annotorious may send the target as a bare IRI string.
		var iri string
		if err := json.Unmarshal(raw, &iri); err == nil {
			return nil, nil
		}
		return nil, fmt.Errorf("parse annotation target: %w", err)
	}
	if len(target.Selector) == 0 {
		return nil, nil
	}
	var single annotoriousSelector
	if err := json.Unmarshal(target.Selector, &single); err == nil && single.Type != "" {
		return &single, nil
	}
	var many []annotoriousSelector
	if err := json.Unmarshal(target.Selector, &many); err != nil {
		return nil, fmt.Errorf("parse annotation selector: %w", err)
	}
	for i := range many {
		if many[i].Type != "" {
			return &many[i], nil
		}
	}
	return nil, nil
}
