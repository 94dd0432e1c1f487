package ocr_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"tessera/internal/ocr"
	"tessera/internal/store"
	"tessera/internal/testsupport"
)

const tesseractStub = `#!/bin/sh
cat > "$2.hocr" <<'EOF'
<html><body>
<div class="ocr_page">
  <span class="ocr_line">
    <span class="ocrx_word" title="bbox 10 20 30 40; x_wconf 96">Minutes</span>
    <span class="ocrx_word" title="bbox 35 20 90 40; x_wconf 92">of</span>
    <span class="ocrx_word" title="bbox 95 20 180 40; x_wconf 90">meeting</span>
  </span>
</div>
</body></html>
EOF
exit 0
`

func TestRecognizeStoresDocument(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubScript("tesseract", tesseractStub))
	st := testsupport.MustOpenStore(t, cfg)
	path := testsupport.WriteUpload(t, cfg.Paths.UploadsDir, "page-001.tif")
	asset := testsupport.NewAsset(t, st, 3, path)
	ctx := context.Background()

	svc := ocr.NewService(cfg, st, nil)
	doc, err := svc.Recognize(ctx, asset.ID, "")
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if doc.Language != "eng" {
		t.Fatalf("language should default from config, got %q", doc.Language)
	}
	if doc.SourceFormat != store.OCRFormatHOCR {
		t.Fatalf("source format = %q", doc.SourceFormat)
	}
	if doc.FullText != "Minutes of meeting" {
		t.Fatalf("full text = %q", doc.FullText)
	}
	if doc.RecordID != 3 {
		t.Fatalf("record id = %d", doc.RecordID)
	}

	blocks, err := st.ListOCRBlocks(ctx, doc.ID)
	if err != nil {
		t.Fatalf("ListOCRBlocks: %v", err)
	}
	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(blocks))
	}
	if blocks[0].Text != "Minutes" || blocks[0].Confidence != 96 {
		t.Fatalf("first block: %+v", blocks[0])
	}

	hits, err := svc.Search(ctx, asset.ID, "MEET")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 || hits[0].Text != "meeting" {
		t.Fatalf("hits: %+v", hits)
	}
}

func TestRecognizeRejectsNonImage(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	st := testsupport.MustOpenStore(t, cfg)
	path := testsupport.WriteUpload(t, cfg.Paths.UploadsDir, "audio.mp3")
	asset := testsupport.NewAsset(t, st, 0, path)

	svc := ocr.NewService(cfg, st, nil)
	if _, err := svc.Recognize(context.Background(), asset.ID, "eng"); !errors.Is(err, ocr.ErrNotAnImage) {
		t.Fatalf("expected ErrNotAnImage, got %v", err)
	}
}

func TestImportALTOReplacesExistingDocument(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	st := testsupport.MustOpenStore(t, cfg)
	imagePath := testsupport.WriteUpload(t, cfg.Paths.UploadsDir, "scan.png")
	asset := testsupport.NewAsset(t, st, 0, imagePath)
	ctx := context.Background()

	svc := ocr.NewService(cfg, st, nil)
	if _, err := svc.ImportPlainText(ctx, asset.ID, "old text\n"); err != nil {
		t.Fatalf("ImportPlainText: %v", err)
	}

	altoPath := filepath.Join(testsupport.BaseDir(cfg), "scan.alto.xml")
	alto := `<alto xmlns="http://www.loc.gov/standards/alto/ns-v3#">
<Layout><Page><TextLine>
<String CONTENT="Replacement" HPOS="10" VPOS="10" WIDTH="90" HEIGHT="20" WC="0.8"/>
</TextLine></Page></Layout></alto>`
	if err := os.WriteFile(altoPath, []byte(alto), 0o644); err != nil {
		t.Fatalf("write alto: %v", err)
	}

	doc, err := svc.ImportALTO(ctx, asset.ID, altoPath)
	if err != nil {
		t.Fatalf("ImportALTO: %v", err)
	}
	if doc.SourceFormat != store.OCRFormatALTO || doc.FullText != "Replacement" {
		t.Fatalf("document: %+v", doc)
	}

	hits, err := svc.Search(ctx, asset.ID, "old")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("previous document should be gone, hits: %+v", hits)
	}
}

func TestSearchEmptyQueryReturnsNothing(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	st := testsupport.MustOpenStore(t, cfg)
	svc := ocr.NewService(cfg, st, nil)

	hits, err := svc.Search(context.Background(), 1, "   ")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if hits != nil {
		t.Fatalf("expected no hits, got %+v", hits)
	}
}
