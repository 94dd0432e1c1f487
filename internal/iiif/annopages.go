package iiif

import (
	"context"
	"errors"
	"fmt"

	"tessera/internal/annotations"
	"tessera/internal/store"
)

// OCRAnnotationPage renders the asset's OCR words for one page as a
// supplementing AnnotationPage, each word targeting its region of the
// canvas. An asset without OCR yields an empty page, never an error.
func (s *Service) OCRAnnotationPage(ctx context.Context, recordID, assetID int64, page int) (map[string]any, error) {
	pageID := s.ocrAnnotationPageID(recordID, assetID, page)
	canvas := s.canvasID(recordID, assetID, page)
	items := []any{}

	doc, err := s.store.GetOCRDocumentByAsset(ctx, assetID)
	if errors.Is(err, store.ErrNotFound) {
		return map[string]any{
			"@context": annotations.ContextURI,
			"id":       pageID,
			"type":     "AnnotationPage",
			"items":    items,
		}, nil
	}
	if err != nil {
		return nil, err
	}
	blocks, err := s.store.ListOCRBlocks(ctx, doc.ID)
	if err != nil {
		return nil, err
	}

	for _, block := range blocks {
		if block.PageNumber != page {
			continue
		}
		items = append(items, map[string]any{
			"id":         fmt.Sprintf("%s/%d", pageID, block.ID),
			"type":       "Annotation",
			"motivation": "supplementing",
			"body": map[string]any{
				"type":   "TextualBody",
				"value":  block.Text,
				"format": "text/plain",
			},
			"target": annotations.FragmentTarget(canvas,
				fmt.Sprintf("xywh=%d,%d,%d,%d", block.X, block.Y, block.Width, block.Height)),
		})
	}
	return map[string]any{
		"@context": annotations.ContextURI,
		"id":       pageID,
		"type":     "AnnotationPage",
		"items":    items,
	}, nil
}

// OCRTextAnnotation renders the asset's full OCR text as one supplementing
// annotation targeting the whole canvas. Viewers that cannot place
// word-level regions still get the searchable text this way.
func (s *Service) OCRTextAnnotation(ctx context.Context, recordID, assetID int64, page int) (map[string]any, error) {
	doc, err := s.store.GetOCRDocumentByAsset(ctx, assetID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	canvas := s.canvasID(recordID, assetID, page)
	return map[string]any{
		"@context":   annotations.ContextURI,
		"id":         s.ocrAnnotationPageID(recordID, assetID, page) + "/text",
		"type":       "Annotation",
		"motivation": "supplementing",
		"body": map[string]any{
			"type":   "TextualBody",
			"value":  doc.FullText,
			"format": "text/plain",
		},
		"target": canvas,
	}, nil
}

// TranscriptAnnotationPage renders the asset's transcript segments as a
// supplementing AnnotationPage, each segment targeting its time interval.
func (s *Service) TranscriptAnnotationPage(ctx context.Context, recordID, assetID int64) (map[string]any, error) {
	transcript, err := s.store.GetTranscriptByAsset(ctx, assetID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	pageID := s.transcriptAnnotationPageID(recordID, assetID)
	canvas := s.canvasID(recordID, assetID, 1)
	items := make([]any, 0, len(transcript.Segments))
	for i, segment := range transcript.Segments {
		items = append(items, map[string]any{
			"id":         fmt.Sprintf("%s/%d", pageID, i+1),
			"type":       "Annotation",
			"motivation": "supplementing",
			"body": map[string]any{
				"type":     "TextualBody",
				"value":    segment.Text,
				"format":   "text/plain",
				"language": transcript.Language,
			},
			"target": annotations.FragmentTarget(canvas,
				fmt.Sprintf("t=%.3f,%.3f", segment.Start, segment.End)),
		})
	}
	return map[string]any{
		"@context": annotations.ContextURI,
		"id":       pageID,
		"type":     "AnnotationPage",
		"items":    items,
	}, nil
}

// UserAnnotationPage renders the stored user annotations for a canvas.
func (s *Service) UserAnnotationPage(ctx context.Context, recordID, assetID int64, page int) (map[string]any, error) {
	canvas := s.canvasID(recordID, assetID, page)
	list, err := s.store.ListAnnotationsByCanvas(ctx, canvas, "")
	if err != nil {
		return nil, err
	}
	return annotations.RenderW3CCollection(
		s.cfg.Manifest.BaseURL,
		s.userAnnotationPageID(recordID, assetID, page),
		list,
	), nil
}
