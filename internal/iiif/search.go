package iiif

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// SearchContext is the IIIF Content Search 1.0 JSON-LD context.
const SearchContext = "http://iiif.io/api/search/1/context.json"

// ContentSearch answers a Content Search 1.0 query for one record. Hits
// come from OCR word blocks (positioned with xywh fragments) and from
// transcript segments (positioned with time fragments).
func (s *Service) ContentSearch(ctx context.Context, recordID int64, query string) (map[string]any, error) {
	query = strings.TrimSpace(query)
	responseID := fmt.Sprintf("%s?q=%s", s.searchServiceID(recordID), url.QueryEscape(query))
	resources := []any{}

	if query != "" {
		assets, err := s.store.ListAssetsByRecord(ctx, recordID)
		if err != nil {
			return nil, err
		}
		for _, asset := range assets {
			ocrHits, err := s.store.SearchOCRBlocks(ctx, asset.ID, query)
			if err != nil {
				return nil, err
			}
			for _, block := range ocrHits {
				canvas := s.canvasID(recordID, asset.ID, block.PageNumber)
				resources = append(resources, searchHit(
					fmt.Sprintf("%s/hit/ocr-%d", s.searchServiceID(recordID), block.ID),
					block.Text,
					fmt.Sprintf("%s#xywh=%d,%d,%d,%d", canvas, block.X, block.Y, block.Width, block.Height),
				))
			}

			transcript, err := s.store.GetTranscriptByAsset(ctx, asset.ID)
			if err != nil {
				continue
			}
			lowered := strings.ToLower(query)
			for i, segment := range transcript.Segments {
				if !strings.Contains(strings.ToLower(segment.Text), lowered) {
					continue
				}
				canvas := s.canvasID(recordID, asset.ID, 1)
				resources = append(resources, searchHit(
					fmt.Sprintf("%s/hit/transcript-%d-%d", s.searchServiceID(recordID), asset.ID, i+1),
					segment.Text,
					fmt.Sprintf("%s#t=%.3f,%.3f", canvas, segment.Start, segment.End),
				))
			}
		}
	}

	return map[string]any{
		"@context":  SearchContext,
		"@id":       responseID,
		"@type":     "sc:AnnotationList",
		"resources": resources,
		"within": map[string]any{
			"@type": "sc:Layer",
			"total": len(resources),
		},
	}, nil
}

func searchHit(id, text, target string) map[string]any {
	return map[string]any{
		"@id":        id,
		"@type":      "oa:Annotation",
		"motivation": "sc:painting",
		"resource": map[string]any{
			"@type": "cnt:ContentAsText",
			"chars": text,
		},
		"on": target,
	}
}
