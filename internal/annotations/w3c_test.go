package annotations

import (
	"testing"
	"time"

	"tessera/internal/store"
)

func TestRenderW3CSingleBody(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	rendered := RenderW3C("https://archive.example.org/iiif", &store.Annotation{
		ID:             12,
		CanvasID:       "https://archive.example.org/iiif/canvas/1",
		TargetSelector: "xywh=10,20,30,40",
		SelectorType:   "FragmentSelector",
		Motivation:     store.MotivationCommenting,
		Creator:        "archivist",
		CreatedAt:      created,
		UpdatedAt:      created,
		Bodies: []store.AnnotationBody{
			{Value: "A note", Format: "text/plain", Language: "en"},
		},
	})

	if rendered["@context"] != ContextURI {
		t.Fatalf("@context = %v", rendered["@context"])
	}
	if rendered["id"] != "https://archive.example.org/iiif/annotation/12" {
		t.Fatalf("id = %v", rendered["id"])
	}
	if rendered["motivation"] != "commenting" {
		t.Fatalf("motivation = %v", rendered["motivation"])
	}

	body, ok := rendered["body"].(map[string]any)
	if !ok {
		t.Fatalf("single body should not be wrapped in an array: %T", rendered["body"])
	}
	if body["value"] != "A note" || body["language"] != "en" {
		t.Fatalf("body = %v", body)
	}

	target := rendered["target"].(map[string]any)
	selector := target["selector"].(map[string]any)
	if selector["type"] != "FragmentSelector" || selector["value"] != "xywh=10,20,30,40" {
		t.Fatalf("selector = %v", selector)
	}
	if selector["conformsTo"] == nil {
		t.Fatal("fragment selector should declare conformsTo")
	}
	if rendered["created"] != "2024-03-01T10:00:00Z" {
		t.Fatalf("created = %v", rendered["created"])
	}
	if _, ok := rendered["modified"]; ok {
		t.Fatal("modified should be omitted when equal to created")
	}
}

func TestRenderW3CMultipleBodiesAndBareTarget(t *testing.T) {
	rendered := RenderW3C("https://a.example", &store.Annotation{
		ID:         1,
		CanvasID:   "https://a.example/canvas/2",
		Motivation: store.MotivationTagging,
		Bodies: []store.AnnotationBody{
			{Value: "portrait", Purpose: "tagging"},
			{Value: "letter", Purpose: "tagging"},
		},
	})

	bodies, ok := rendered["body"].([]any)
	if !ok || len(bodies) != 2 {
		t.Fatalf("bodies = %v", rendered["body"])
	}
	if rendered["target"] != "https://a.example/canvas/2" {
		t.Fatalf("selector-less target should be the bare canvas id: %v", rendered["target"])
	}
	if _, ok := rendered["creator"]; ok {
		t.Fatal("creator should be omitted when empty")
	}
}

func TestRenderW3CCollection(t *testing.T) {
	page := RenderW3CCollection("https://a.example", "https://a.example/annotations/page/1", []*store.Annotation{
		{ID: 1, CanvasID: "c1", Motivation: store.MotivationCommenting},
		{ID: 2, CanvasID: "c1", Motivation: store.MotivationCommenting},
	})
	if page["type"] != "AnnotationPage" {
		t.Fatalf("type = %v", page["type"])
	}
	items := page["items"].([]any)
	if len(items) != 2 {
		t.Fatalf("items = %v", items)
	}
}
