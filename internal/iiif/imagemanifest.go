package iiif

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ImageManifest renders a Presentation 3.0 manifest for a bare image server
// identifier, with no record behind it. The title, dimensions, and page
// count all come from the identifier and the image server, so arbitrary
// images in the IIIF image root can be viewed without ingesting them.
func (s *Service) ImageManifest(ctx context.Context, identifier string) map[string]any {
	lang := s.cfg.Manifest.DefaultLanguage
	title := identifierTitle(identifier)
	width, height := s.images.Dimensions(ctx, identifier)
	pages := s.images.PageCount(ctx, identifier)

	manifest := map[string]any{
		"@context": PresentationContext,
		"id":       s.imageManifestID(identifier),
		"type":     "Manifest",
		"label":    langMap(lang, title),
		"metadata": []any{map[string]any{
			"label": langMap(lang, "Format"),
			"value": langMap(lang, formatLabel(identifier)),
		}},
		"thumbnail": []any{map[string]any{
			"id":     s.images.ServiceID(identifier) + "/full/200,/0/default.jpg",
			"type":   "Image",
			"format": "image/jpeg",
			"width":  200,
			"height": ThumbnailHeight(width, height),
		}},
		"viewingDirection": "left-to-right",
	}
	if pages > 1 {
		manifest["behavior"] = []any{"paged"}
	} else {
		manifest["behavior"] = []any{"individuals"}
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

	var canvases []any
	for page, pageIdentifier := range pageIdentifiers(identifier, pages) {
		pageWidth, pageHeight := width, height
		if pageIdentifier != identifier {
			pageWidth, pageHeight = s.images.Dimensions(ctx, pageIdentifier)
		}
		canvases = append(canvases, s.identifierCanvas(pageIdentifier, pageWidth, pageHeight, page+1))
	}
	manifest["items"] = canvases

	s.logger.Debug("image manifest rendered", "identifier", identifier, "pages", pages)
	return manifest
}

// LegacyImageManifest is the Presentation 2.1 rendering of ImageManifest.
func (s *Service) LegacyImageManifest(ctx context.Context, identifier string) map[string]any {
	title := identifierTitle(identifier)
	width, height := s.images.Dimensions(ctx, identifier)
	pages := s.images.PageCount(ctx, identifier)

	var canvases []any
	for page, pageIdentifier := range pageIdentifiers(identifier, pages) {
		pageWidth, pageHeight := width, height
		if pageIdentifier != identifier {
			pageWidth, pageHeight = s.images.Dimensions(ctx, pageIdentifier)
		}
		canvases = append(canvases, s.legacyIdentifierCanvas(pageIdentifier, pageWidth, pageHeight, page+1))
	}

	manifestID := s.imageManifestID(identifier) + "/v2"
	manifest := map[string]any{
		"@context": LegacyContext,
		"@id":      manifestID,
		"@type":    "sc:Manifest",
		"label":    title,
		"metadata": []any{map[string]any{
			"label": "Format",
			"value": formatLabel(identifier),
		}},
		"thumbnail": map[string]any{
			"@id": s.images.ServiceID(identifier) + "/full/200,/0/default.jpg",
			"service": map[string]any{
				"@context": "http://iiif.io/api/image/2/context.json",
				"@id":      s.images.ServiceID(identifier),
				"profile":  "http://iiif.io/api/image/2/level2.json",
			},
		},
		"viewingDirection": "left-to-right",
		"sequences": []any{map[string]any{
			"@id":      manifestID + "/sequence/normal",
			"@type":    "sc:Sequence",
			"label":    "Normal Sequence",
			"canvases": canvases,
		}},
	}
	if pages > 1 {
		manifest["viewingHint"] = "paged"
	} else {
		manifest["viewingHint"] = "individuals"
	}
	if s.cfg.Manifest.Attribution != "" {
		manifest["attribution"] = s.cfg.Manifest.Attribution
	}
	if s.cfg.Manifest.License != "" {
		manifest["license"] = s.cfg.Manifest.License
	}
	return manifest
}

// pageIdentifiers lists the image server identifiers for every page of an
// image: the bare identifier for single-page images, zero-based meta
// identifiers otherwise.
func pageIdentifiers(identifier string, pages int) []string {
	if pages <= 1 {
		return []string{identifier}
	}
	ids := make([]string, pages)
	for i := range ids {
		ids[i] = PageIdentifier(identifier, i)
	}
	return ids
}

func (s *Service) identifierCanvas(identifier string, width, height, page int) map[string]any {
	lang := s.cfg.Manifest.DefaultLanguage
	canvasID := s.imageCanvasID(identifier)

	return map[string]any{
		"id":     canvasID,
		"type":   "Canvas",
		"label":  langMap(lang, fmt.Sprintf("Page %d", page)),
		"width":  width,
		"height": height,
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
					"width":  width,
					"height": height,
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
			"height": ThumbnailHeight(width, height),
		}},
	}
}

func (s *Service) legacyIdentifierCanvas(identifier string, width, height, page int) map[string]any {
	canvasID := s.imageCanvasID(identifier) + "/v2"

	return map[string]any{
		"@id":    canvasID,
		"@type":  "sc:Canvas",
		"label":  fmt.Sprintf("Page %d", page),
		"width":  width,
		"height": height,
		"images": []any{map[string]any{
			"@id":        canvasID + "/image",
			"@type":      "oa:Annotation",
			"motivation": "sc:painting",
			"on":         canvasID,
			"resource": map[string]any{
				"@id":    s.images.ImageURL(identifier),
				"@type":  "dctypes:Image",
				"format": "image/jpeg",
				"width":  width,
				"height": height,
				"service": map[string]any{
					"@context": "http://iiif.io/api/image/2/context.json",
					"@id":      s.images.ServiceID(identifier),
					"profile":  "http://iiif.io/api/image/2/level2.json",
				},
			},
		}},
		"thumbnail": map[string]any{
			"@id": s.images.ServiceID(identifier) + "/full/200,/0/default.jpg",
		},
	}
}

func (s *Service) imageManifestID(identifier string) string {
	return fmt.Sprintf("%s/image/%s/manifest", s.cfg.Manifest.BaseURL, url.PathEscape(identifier))
}

func (s *Service) imageCanvasID(identifier string) string {
	return fmt.Sprintf("%s/image/%s/canvas", s.cfg.Manifest.BaseURL, url.PathEscape(identifier))
}

// identifierTitle derives a display title from an image server identifier:
// "_SL_" decodes to a slash, the extension drops, and underscores and
// hyphens in the file name become spaces.
func identifierTitle(identifier string) string {
	decoded := strings.ReplaceAll(identifier, "_SL_", "/")
	name := path.Base(decoded)
	name = strings.TrimSuffix(name, path.Ext(name))
	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)
	name = strings.TrimSpace(name)
	if name == "" {
		return "Untitled Image"
	}
	return cases.Title(language.Und, cases.NoLower).String(name)
}

// formatLabel names an identifier's file format for manifest metadata.
func formatLabel(identifier string) string {
	switch strings.ToLower(strings.TrimPrefix(path.Ext(identifier), ".")) {
	case "tif", "tiff":
		return "TIFF Image"
	case "jp2":
		return "JPEG 2000"
	case "jpg", "jpeg":
		return "JPEG Image"
	case "png":
		return "PNG Image"
	case "pdf":
		return "PDF Document"
	default:
		return "Digital Object"
	}
}
