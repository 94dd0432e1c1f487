package iiif

import "fmt"

func (s *Service) manifestID(recordID int64) string {
	return fmt.Sprintf("%s/record/%d/manifest", s.cfg.Manifest.BaseURL, recordID)
}

func (s *Service) canvasID(recordID, assetID int64, page int) string {
	id := fmt.Sprintf("%s/record/%d/canvas/%d", s.cfg.Manifest.BaseURL, recordID, assetID)
	if page > 1 {
		id = fmt.Sprintf("%s/page/%d", id, page)
	}
	return id
}

func (s *Service) fileURL(assetID int64) string {
	return fmt.Sprintf("%s/asset/%d/file", s.cfg.Manifest.BaseURL, assetID)
}

func (s *Service) derivativeURL(assetID int64, derivativeType string, index int) string {
	return fmt.Sprintf("%s/asset/%d/derivative/%s/%d", s.cfg.Manifest.BaseURL, assetID, derivativeType, index)
}

func (s *Service) ocrAnnotationPageID(recordID, assetID int64, page int) string {
	return fmt.Sprintf("%s/annotations/ocr", s.canvasID(recordID, assetID, page))
}

func (s *Service) transcriptAnnotationPageID(recordID, assetID int64) string {
	return fmt.Sprintf("%s/annotations/transcript", s.canvasID(recordID, assetID, 1))
}

func (s *Service) userAnnotationPageID(recordID, assetID int64, page int) string {
	return fmt.Sprintf("%s/annotations/user", s.canvasID(recordID, assetID, page))
}

func (s *Service) collectionID(collectionID int64) string {
	return fmt.Sprintf("%s/collection/%d", s.cfg.Manifest.BaseURL, collectionID)
}

func (s *Service) searchServiceID(recordID int64) string {
	return fmt.Sprintf("%s/record/%d/search", s.cfg.Manifest.BaseURL, recordID)
}
