package iiif

import (
	"context"
	"fmt"
)

// LegacyContext is the IIIF Presentation API 2.1 JSON-LD context, kept for
// viewers that have not moved to Presentation 3.
const LegacyContext = "http://iiif.io/api/presentation/2/context.json"

// LegacyManifest renders the Presentation 2.1 manifest for a record, or nil
// when the record has no assets. Only image canvases are emitted; 2.1 has
// no first-class audio or video support.
func (s *Service) LegacyManifest(ctx context.Context, recordID int64) (map[string]any, error) {
	data, err := s.loadRecord(ctx, recordID)
	if err != nil || data == nil {
		return nil, err
	}

	manifestID := s.manifestID(recordID) + "/v2"
	var canvases []any
	for _, entry := range data.assets {
		if assetKind(entry.asset) != "Image" {
			continue
		}
		for page := 1; page <= entry.pages; page++ {
			canvases = append(canvases, s.legacyCanvas(data.record.ID, entry, page))
		}
	}

	manifest := map[string]any{
		"@context": LegacyContext,
		"@id":      manifestID,
		"@type":    "sc:Manifest",
		"label":    displayTitle(data.record),
		"sequences": []any{map[string]any{
			"@id":      manifestID + "/sequence/normal",
			"@type":    "sc:Sequence",
			"canvases": canvases,
		}},
	}
	if s.cfg.Manifest.Attribution != "" {
		manifest["attribution"] = s.cfg.Manifest.Attribution
	}
	if s.cfg.Manifest.License != "" {
		manifest["license"] = s.cfg.Manifest.License
	}
	if s.cfg.Manifest.LogoURL != "" {
		manifest["logo"] = s.cfg.Manifest.LogoURL
	}
	return manifest, nil
}

func (s *Service) legacyCanvas(recordID int64, entry canvasData, page int) map[string]any {
	canvasID := s.canvasID(recordID, entry.asset.ID, page) + "/v2"
	identifier := imageIdentifier(entry.asset)
	if entry.pages > 1 {
		identifier = PageIdentifier(identifier, page-1)
	}

	label := entry.asset.Name
	if entry.pages > 1 {
		label = fmt.Sprintf("%s (page %d)", entry.asset.Name, page)
	}

	return map[string]any{
		"@id":    canvasID,
		"@type":  "sc:Canvas",
		"label":  label,
		"width":  entry.width,
		"height": entry.height,
		"images": []any{map[string]any{
			"@id":        canvasID + "/image",
			"@type":      "oa:Annotation",
			"motivation": "sc:painting",
			"on":         canvasID,
			"resource": map[string]any{
				"@id":    s.images.ImageURL(identifier),
				"@type":  "dctypes:Image",
				"format": "image/jpeg",
				"width":  entry.width,
				"height": entry.height,
				"service": map[string]any{
					"@context": "http://iiif.io/api/image/2/context.json",
					"@id":      s.images.ServiceID(identifier),
					"profile":  "http://iiif.io/api/image/2/level2.json",
				},
			},
		}},
	}
}
