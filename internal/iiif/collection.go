package iiif

import (
	"context"
	"errors"

	"tessera/internal/store"
)

// Collection renders a stored collection as a Presentation 3.0 Collection
// whose items reference the member records' manifests. Records without
// assets are skipped, matching Manifest's behavior for empty records.
func (s *Service) Collection(ctx context.Context, collectionID int64) (map[string]any, error) {
	collection, err := s.store.GetCollection(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	items, err := s.store.ListCollectionItems(ctx, collectionID)
	if err != nil {
		return nil, err
	}

	lang := s.cfg.Manifest.DefaultLanguage
	var manifests []any
	for _, item := range items {
		record, err := s.store.GetRecord(ctx, item.RecordID)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		assets, err := s.store.ListAssetsByRecord(ctx, item.RecordID)
		if err != nil {
			return nil, err
		}
		if len(assets) == 0 {
			continue
		}
		manifests = append(manifests, map[string]any{
			"id":    s.manifestID(record.ID),
			"type":  "Manifest",
			"label": langMap(lang, displayTitle(record)),
		})
	}

	rendered := map[string]any{
		"@context": PresentationContext,
		"id":       s.collectionID(collectionID),
		"type":     "Collection",
		"label":    langMap(lang, collection.Name),
		"items":    manifests,
	}
	if collection.Description != "" {
		rendered["summary"] = langMap(lang, collection.Description)
	}
	return rendered, nil
}
