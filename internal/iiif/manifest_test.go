package iiif_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tessera/internal/config"
	"tessera/internal/iiif"
	"tessera/internal/store"
	"tessera/internal/testsupport"
)

func newImageServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/info.json") && !strings.Contains(r.URL.Path, "[") {
			fmt.Fprint(w, `{"width": 2000, "height": 3000}`)
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(server.Close)
	return server
}

func newIIIFService(t *testing.T, server *httptest.Server) (*iiif.Service, *store.Store, *config.Config) {
	t.Helper()
	cfg := testsupport.NewConfig(t,
		testsupport.WithManifestBaseURL("https://archive.example.org/iiif"),
		testsupport.WithImageServerURL(server.URL),
	)
	cfg.Manifest.Attribution = "City Archive"
	cfg.Manifest.License = "https://creativecommons.org/licenses/by/4.0/"
	st := testsupport.MustOpenStore(t, cfg)
	return iiif.NewService(cfg, st, nil, server.Client()), st, cfg
}

func TestManifestNilWithoutAssets(t *testing.T) {
	server := newImageServer(t)
	svc, st, _ := newIIIFService(t, server)
	record := testsupport.NewRecord(t, st, "rec-empty", "Empty record")

	manifest, err := svc.Manifest(context.Background(), record.ID)
	if err != nil {
		t.Fatalf("Manifest: %v", err)
	}
	if manifest != nil {
		t.Fatalf("expected nil manifest for empty record, got %v", manifest)
	}
}

func TestManifestForImageRecord(t *testing.T) {
	server := newImageServer(t)
	svc, st, _ := newIIIFService(t, server)
	ctx := context.Background()
	record := testsupport.NewRecord(t, st, "rec-img", "Letter from 1891")
	asset := testsupport.NewAsset(t, st, record.ID, "/uploads/letter.tif")

	if _, err := st.ReplaceOCRDocument(ctx, &store.OCRDocument{
		AssetID: asset.ID, RecordID: record.ID, SourceFormat: store.OCRFormatALTO, FullText: "Dear Sir",
	}, []store.OCRBlock{
		{PageNumber: 1, Text: "Dear", X: 10, Y: 20, Width: 30, Height: 15},
	}); err != nil {
		t.Fatalf("ReplaceOCRDocument: %v", err)
	}

	manifest, err := svc.Manifest(ctx, record.ID)
	if err != nil {
		t.Fatalf("Manifest: %v", err)
	}
	if manifest["type"] != "Manifest" || manifest["@context"] != iiif.PresentationContext {
		t.Fatalf("envelope: %v", manifest)
	}
	label := manifest["label"].(map[string]any)["en"].([]any)
	if label[0] != "Letter from 1891" {
		t.Fatalf("label = %v", label)
	}

	canvases := manifest["items"].([]any)
	if len(canvases) != 1 {
		t.Fatalf("expected 1 canvas, got %d", len(canvases))
	}
	canvas := canvases[0].(map[string]any)
	if canvas["width"] != 2000 || canvas["height"] != 3000 {
		t.Fatalf("canvas size: %v x %v", canvas["width"], canvas["height"])
	}

	thumbs := canvas["thumbnail"].([]any)
	thumb := thumbs[0].(map[string]any)
	if thumb["width"] != 200 || thumb["height"] != 300 {
		t.Fatalf("thumbnail scaled to %vx%v", thumb["width"], thumb["height"])
	}

	painting := canvas["items"].([]any)[0].(map[string]any)["items"].([]any)[0].(map[string]any)
	service := painting["body"].(map[string]any)["service"].([]any)[0].(map[string]any)
	if service["type"] != "ImageService3" || service["profile"] != "level2" {
		t.Fatalf("image service = %v", service)
	}

	annoPages := canvas["annotations"].([]any)
	// OCR supplementing page plus the user annotation page.
	if len(annoPages) != 2 {
		t.Fatalf("annotation pages: %v", annoPages)
	}
	ocrPage := annoPages[0].(map[string]any)
	if !strings.HasSuffix(ocrPage["id"].(string), "/annotations/ocr") {
		t.Fatalf("ocr page id = %v", ocrPage["id"])
	}

	if manifest["rights"] != "https://creativecommons.org/licenses/by/4.0/" {
		t.Fatalf("rights = %v", manifest["rights"])
	}
	services := manifest["service"].([]any)
	if services[0].(map[string]any)["type"] != "SearchService1" {
		t.Fatalf("search service missing: %v", services)
	}
	if _, ok := manifest["structures"]; ok {
		t.Fatal("single-canvas manifest should not carry structures")
	}
	if behavior := manifest["behavior"].([]any); behavior[0] != "individuals" {
		t.Fatalf("behavior = %v", behavior)
	}
}

func TestManifestStructuresForMultiCanvasRecord(t *testing.T) {
	server := newImageServer(t)
	svc, st, _ := newIIIFService(t, server)
	ctx := context.Background()
	record := testsupport.NewRecord(t, st, "rec-album", "Photo album")
	testsupport.NewAsset(t, st, record.ID, "/uploads/front.jpg")
	testsupport.NewAsset(t, st, record.ID, "/uploads/back.jpg")

	manifest, err := svc.Manifest(ctx, record.ID)
	if err != nil {
		t.Fatalf("Manifest: %v", err)
	}
	canvases := manifest["items"].([]any)
	if len(canvases) != 2 {
		t.Fatalf("expected 2 canvases, got %d", len(canvases))
	}
	if behavior := manifest["behavior"].([]any); behavior[0] != "paged" {
		t.Fatalf("behavior = %v", behavior)
	}

	structures := manifest["structures"].([]any)
	if len(structures) != 1 {
		t.Fatalf("structures: %v", structures)
	}
	r := structures[0].(map[string]any)
	if r["type"] != "Range" {
		t.Fatalf("range type = %v", r["type"])
	}
	refs := r["items"].([]any)
	if len(refs) != 2 {
		t.Fatalf("range should reference every canvas: %v", refs)
	}
	first := refs[0].(map[string]any)
	if first["type"] != "Canvas" || first["id"] != canvases[0].(map[string]any)["id"] {
		t.Fatalf("canvas ref = %v", first)
	}
}

func TestManifestDecodesSlashEncodedIdentifier(t *testing.T) {
	server := newImageServer(t)
	svc, st, _ := newIIIFService(t, server)
	ctx := context.Background()
	record := testsupport.NewRecord(t, st, "box-3_SL_folder-2", "")
	testsupport.NewAsset(t, st, record.ID, "/uploads/scan.jpg")

	manifest, err := svc.Manifest(ctx, record.ID)
	if err != nil {
		t.Fatalf("Manifest: %v", err)
	}
	label := manifest["label"].(map[string]any)["en"].([]any)
	if label[0] != "box-3/folder-2" {
		t.Fatalf("label = %v", label)
	}
}

func TestManifestForAudioRecordWithTranscript(t *testing.T) {
	server := newImageServer(t)
	svc, st, _ := newIIIFService(t, server)
	ctx := context.Background()
	record := testsupport.NewRecord(t, st, "rec-audio", "Oral history")
	asset := testsupport.NewAsset(t, st, record.ID, "/uploads/interview.mp3")

	if _, err := st.ReplaceMetadata(ctx, &store.MediaMetadata{
		AssetID: asset.ID, MediaType: "audio", Duration: 95.5,
	}, nil); err != nil {
		t.Fatalf("ReplaceMetadata: %v", err)
	}
	if _, err := st.ReplaceTranscript(ctx, &store.Transcript{
		AssetID: asset.ID, RecordID: record.ID, Language: "en", FullText: "hello archive",
		Segments: []store.TranscriptSegment{{Start: 0, End: 2.5, Text: "hello archive"}},
		VTTPath:  "/transcripts/asset.vtt",
	}); err != nil {
		t.Fatalf("ReplaceTranscript: %v", err)
	}

	manifest, err := svc.Manifest(ctx, record.ID)
	if err != nil {
		t.Fatalf("Manifest: %v", err)
	}
	canvas := manifest["items"].([]any)[0].(map[string]any)
	if canvas["duration"] != 95.5 {
		t.Fatalf("canvas duration = %v", canvas["duration"])
	}

	painting := canvas["items"].([]any)[0].(map[string]any)["items"].([]any)[0].(map[string]any)
	body := painting["body"].(map[string]any)
	if body["type"] != "Sound" {
		t.Fatalf("body type = %v", body["type"])
	}

	if _, ok := canvas["rendering"]; !ok {
		t.Fatal("expected VTT rendering link")
	}

	page, err := svc.TranscriptAnnotationPage(ctx, record.ID, asset.ID)
	if err != nil {
		t.Fatalf("TranscriptAnnotationPage: %v", err)
	}
	items := page["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("items: %v", items)
	}
	target := items[0].(map[string]any)["target"].(map[string]any)
	if !strings.HasSuffix(target["source"].(string), "/canvas/"+fmt.Sprint(asset.ID)) {
		t.Fatalf("target source = %v", target["source"])
	}
	selector := target["selector"].(map[string]any)
	if selector["type"] != "FragmentSelector" || selector["value"] != "t=0.000,2.500" {
		t.Fatalf("selector = %v", selector)
	}
	if selector["conformsTo"] != "http://www.w3.org/TR/media-frags/" {
		t.Fatalf("conformsTo = %v", selector["conformsTo"])
	}
}

func TestOCRAnnotationPageTargets(t *testing.T) {
	server := newImageServer(t)
	svc, st, _ := newIIIFService(t, server)
	ctx := context.Background()
	record := testsupport.NewRecord(t, st, "rec-ocr", "Scanned page")
	asset := testsupport.NewAsset(t, st, record.ID, "/uploads/page.png")

	if _, err := st.ReplaceOCRDocument(ctx, &store.OCRDocument{
		AssetID: asset.ID, RecordID: record.ID, SourceFormat: store.OCRFormatHOCR, FullText: "word",
	}, []store.OCRBlock{
		{PageNumber: 1, Text: "word", X: 5, Y: 6, Width: 7, Height: 8},
		{PageNumber: 2, Text: "elsewhere"},
	}); err != nil {
		t.Fatalf("ReplaceOCRDocument: %v", err)
	}

	page, err := svc.OCRAnnotationPage(ctx, record.ID, asset.ID, 1)
	if err != nil {
		t.Fatalf("OCRAnnotationPage: %v", err)
	}
	items := page["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("page 1 should only carry its own blocks: %v", items)
	}
	target := items[0].(map[string]any)["target"].(map[string]any)
	if !strings.HasSuffix(target["source"].(string), "/canvas/"+fmt.Sprint(asset.ID)) {
		t.Fatalf("target source = %v", target["source"])
	}
	selector := target["selector"].(map[string]any)
	if selector["type"] != "FragmentSelector" || selector["value"] != "xywh=5,6,7,8" {
		t.Fatalf("selector = %v", selector)
	}
	if selector["conformsTo"] != "http://www.w3.org/TR/media-frags/" {
		t.Fatalf("conformsTo = %v", selector["conformsTo"])
	}

	missing, err := svc.OCRAnnotationPage(ctx, record.ID, 9999, 1)
	if err != nil {
		t.Fatalf("OCRAnnotationPage without OCR: %v", err)
	}
	if items := missing["items"].([]any); len(items) != 0 {
		t.Fatalf("expected empty page for asset without OCR, got %v", items)
	}

	text, err := svc.OCRTextAnnotation(ctx, record.ID, asset.ID, 1)
	if err != nil {
		t.Fatalf("OCRTextAnnotation: %v", err)
	}
	if text["motivation"] != "supplementing" {
		t.Fatalf("motivation = %v", text["motivation"])
	}
	body := text["body"].(map[string]any)
	if body["value"] != "word" {
		t.Fatalf("full text = %v", body["value"])
	}
	want := fmt.Sprintf("/record/%d/canvas/%d", record.ID, asset.ID)
	if !strings.HasSuffix(text["target"].(string), want) {
		t.Fatalf("target = %v", text["target"])
	}
}

func TestContentSearchFindsOCRAndTranscriptHits(t *testing.T) {
	server := newImageServer(t)
	svc, st, _ := newIIIFService(t, server)
	ctx := context.Background()
	record := testsupport.NewRecord(t, st, "rec-search", "Mixed record")
	image := testsupport.NewAsset(t, st, record.ID, "/uploads/page.tif")
	audio := testsupport.NewAsset(t, st, record.ID, "/uploads/talk.mp3")

	if _, err := st.ReplaceOCRDocument(ctx, &store.OCRDocument{
		AssetID: image.ID, RecordID: record.ID, FullText: "harbor master",
	}, []store.OCRBlock{{PageNumber: 1, Text: "harbor", X: 1, Y: 2, Width: 3, Height: 4}}); err != nil {
		t.Fatalf("ReplaceOCRDocument: %v", err)
	}
	if _, err := st.ReplaceTranscript(ctx, &store.Transcript{
		AssetID: audio.ID, RecordID: record.ID, Language: "en", FullText: "the harbor at dawn",
		Segments: []store.TranscriptSegment{{Start: 10, End: 14, Text: "the harbor at dawn"}},
	}); err != nil {
		t.Fatalf("ReplaceTranscript: %v", err)
	}

	response, err := svc.ContentSearch(ctx, record.ID, "HARBOR")
	if err != nil {
		t.Fatalf("ContentSearch: %v", err)
	}
	if response["@type"] != "sc:AnnotationList" {
		t.Fatalf("envelope: %v", response)
	}
	resources := response["resources"].([]any)
	if len(resources) != 2 {
		t.Fatalf("expected 2 hits, got %v", resources)
	}
	within := response["within"].(map[string]any)
	if within["total"] != 2 {
		t.Fatalf("total = %v", within["total"])
	}

	empty, err := svc.ContentSearch(ctx, record.ID, "  ")
	if err != nil {
		t.Fatalf("ContentSearch empty: %v", err)
	}
	if len(empty["resources"].([]any)) != 0 {
		t.Fatalf("blank query should return no hits")
	}
}

func TestLegacyManifestImagesOnly(t *testing.T) {
	server := newImageServer(t)
	svc, st, _ := newIIIFService(t, server)
	ctx := context.Background()
	record := testsupport.NewRecord(t, st, "rec-legacy", "Mixed record")
	testsupport.NewAsset(t, st, record.ID, "/uploads/page.jpg")
	testsupport.NewAsset(t, st, record.ID, "/uploads/film.mp4")

	manifest, err := svc.LegacyManifest(ctx, record.ID)
	if err != nil {
		t.Fatalf("LegacyManifest: %v", err)
	}
	if manifest["@type"] != "sc:Manifest" || manifest["@context"] != iiif.LegacyContext {
		t.Fatalf("envelope: %v", manifest)
	}
	sequences := manifest["sequences"].([]any)
	canvases := sequences[0].(map[string]any)["canvases"].([]any)
	if len(canvases) != 1 {
		t.Fatalf("expected only the image canvas, got %d", len(canvases))
	}
	if manifest["attribution"] != "City Archive" {
		t.Fatalf("attribution = %v", manifest["attribution"])
	}

	canvas := canvases[0].(map[string]any)
	image := canvas["images"].([]any)[0].(map[string]any)
	service := image["resource"].(map[string]any)["service"].(map[string]any)
	if service["profile"] != "http://iiif.io/api/image/2/level2.json" {
		t.Fatalf("legacy service profile = %v", service["profile"])
	}
}

func TestCollectionSkipsEmptyRecords(t *testing.T) {
	server := newImageServer(t)
	svc, st, _ := newIIIFService(t, server)
	ctx := context.Background()

	withAssets := testsupport.NewRecord(t, st, "rec-1", "Has media")
	testsupport.NewAsset(t, st, withAssets.ID, "/uploads/a.jpg")
	empty := testsupport.NewRecord(t, st, "rec-2", "No media")

	collection, err := st.CreateCollection(ctx, &store.Collection{Name: "Exhibit", Description: "Spring show"})
	if err != nil {
		t.Fatalf("CreateCollection: %v", err)
	}
	for i, recordID := range []int64{withAssets.ID, empty.ID} {
		if err := st.AddCollectionItem(ctx, collection.ID, recordID, i); err != nil {
			t.Fatalf("AddCollectionItem: %v", err)
		}
	}

	rendered, err := svc.Collection(ctx, collection.ID)
	if err != nil {
		t.Fatalf("Collection: %v", err)
	}
	if rendered["type"] != "Collection" {
		t.Fatalf("type = %v", rendered["type"])
	}
	items := rendered["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("expected 1 manifest reference, got %v", items)
	}
	summary := rendered["summary"].(map[string]any)["en"].([]any)
	if summary[0] != "Spring show" {
		t.Fatalf("summary = %v", summary)
	}
}
