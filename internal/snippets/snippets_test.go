package snippets_test

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"tessera/internal/snippets"
	"tessera/internal/store"
	"tessera/internal/testsupport"
)

// ffmpegStub writes a marker byte to its final argument so exported clips
// and thumbnails exist on disk.
const ffmpegStub = `#!/bin/sh
for arg in "$@"; do out=$arg; done
printf 'x' > "$out"
`

func newService(t *testing.T) (*snippets.Service, *store.Store, string) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubScript("ffmpeg", ffmpegStub))
	st := testsupport.MustOpenStore(t, cfg)
	return snippets.NewService(cfg, st, nil), st, cfg.Paths.UploadsDir
}

func seedDuration(t *testing.T, st *store.Store, assetID int64, duration float64) {
	t.Helper()
	if _, err := st.ReplaceMetadata(context.Background(), &store.MediaMetadata{
		AssetID:  assetID,
		Duration: duration,
	}, nil); err != nil {
		t.Fatalf("ReplaceMetadata: %v", err)
	}
}

func TestCreateRejectsIntervalPastDuration(t *testing.T) {
	svc, st, uploadsDir := newService(t)
	path := testsupport.WriteUpload(t, uploadsDir, "interview.mp4")
	asset := testsupport.NewAsset(t, st, 0, path)
	seedDuration(t, st, asset.ID, 60)
	ctx := context.Background()

	if _, err := svc.Create(ctx, &store.Snippet{
		AssetID:   asset.ID,
		Title:     "Too long",
		StartTime: 10,
		EndTime:   75,
	}); !errors.Is(err, snippets.ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}

	if _, err := svc.Create(ctx, &store.Snippet{
		AssetID:   asset.ID,
		Title:     "Backwards",
		StartTime: 30,
		EndTime:   30,
	}); err == nil {
		t.Fatal("expected error for empty interval")
	}

	created, err := svc.Create(ctx, &store.Snippet{
		AssetID:   asset.ID,
		Title:     "Opening remarks",
		StartTime: 5,
		EndTime:   25,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.RecordID != asset.RecordID {
		t.Fatalf("record id not inherited: %+v", created)
	}
	if created.Duration != 20 {
		t.Fatalf("expected duration 20, got %v", created.Duration)
	}
}

func TestCreateWithoutMetadataSkipsDurationCheck(t *testing.T) {
	svc, st, uploadsDir := newService(t)
	path := testsupport.WriteUpload(t, uploadsDir, "unprobed.mp4")
	asset := testsupport.NewAsset(t, st, 0, path)

	if _, err := svc.Create(context.Background(), &store.Snippet{
		AssetID:   asset.ID,
		Title:     "Anything goes",
		StartTime: 100,
		EndTime:   9000,
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}
}

func TestExportWritesClipAndPersistsPath(t *testing.T) {
	svc, st, uploadsDir := newService(t)
	path := testsupport.WriteUpload(t, uploadsDir, "parade.mkv")
	asset := testsupport.NewAsset(t, st, 0, path)

	ctx := context.Background()
	created, err := svc.Create(ctx, &store.Snippet{
		AssetID:   asset.ID,
		Title:     "Float passes",
		StartTime: 12.5,
		EndTime:   47.25,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	exportPath, err := svc.Export(ctx, created.ID)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if filepath.Ext(exportPath) != ".mkv" {
		t.Fatalf("clip should keep the source extension: %s", exportPath)
	}
	if _, err := os.Stat(exportPath); err != nil {
		t.Fatalf("exported clip missing: %v", err)
	}

	stored, err := st.GetSnippet(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetSnippet: %v", err)
	}
	if stored.ExportPath != exportPath {
		t.Fatalf("export path not persisted: %q != %q", stored.ExportPath, exportPath)
	}

	// Re-exporting lands on the same path instead of growing new files.
	again, err := svc.Export(ctx, created.ID)
	if err != nil {
		t.Fatalf("re-export: %v", err)
	}
	if again != exportPath {
		t.Fatalf("re-export changed path: %q != %q", again, exportPath)
	}
}

func TestThumbnailRequiresVideo(t *testing.T) {
	svc, st, uploadsDir := newService(t)
	audioPath := testsupport.WriteUpload(t, uploadsDir, "side-a.mp3")
	audioAsset := testsupport.NewAsset(t, st, 0, audioPath)
	ctx := context.Background()

	audioSnippet, err := svc.Create(ctx, &store.Snippet{
		AssetID: audioAsset.ID, Title: "Chorus", StartTime: 1, EndTime: 3,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Thumbnail(ctx, audioSnippet.ID); err == nil {
		t.Fatal("expected error for audio snippet thumbnail")
	}

	videoPath := testsupport.WriteUpload(t, uploadsDir, "reel.mp4")
	videoAsset := testsupport.NewAsset(t, st, 0, videoPath)
	videoSnippet, err := svc.Create(ctx, &store.Snippet{
		AssetID: videoAsset.ID, Title: "Crowd shot", StartTime: 4, EndTime: 9,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	thumbPath, err := svc.Thumbnail(ctx, videoSnippet.ID)
	if err != nil {
		t.Fatalf("Thumbnail: %v", err)
	}
	if _, err := os.Stat(thumbPath); err != nil {
		t.Fatalf("thumbnail missing: %v", err)
	}
	stored, err := st.GetSnippet(ctx, videoSnippet.ID)
	if err != nil {
		t.Fatalf("GetSnippet: %v", err)
	}
	if stored.ThumbnailPath != thumbPath {
		t.Fatalf("thumbnail path not persisted: %+v", stored)
	}
}

func TestDeleteRemovesExportedFiles(t *testing.T) {
	svc, st, uploadsDir := newService(t)
	path := testsupport.WriteUpload(t, uploadsDir, "reel.mp4")
	asset := testsupport.NewAsset(t, st, 0, path)
	ctx := context.Background()

	created, err := svc.Create(ctx, &store.Snippet{
		AssetID: asset.ID, Title: "Drop me", StartTime: 0, EndTime: 2,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	exportPath, err := svc.Export(ctx, created.ID)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	thumbPath, err := svc.Thumbnail(ctx, created.ID)
	if err != nil {
		t.Fatalf("Thumbnail: %v", err)
	}

	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	for _, p := range []string{exportPath, thumbPath} {
		if _, err := os.Stat(p); !errors.Is(err, os.ErrNotExist) {
			t.Fatalf("expected %s to be removed, stat err: %v", p, err)
		}
	}
	if _, err := st.GetSnippet(ctx, created.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestExportArchiveBundlesAllSnippets(t *testing.T) {
	svc, st, uploadsDir := newService(t)
	record := testsupport.NewRecord(t, st, "coll-12", "Parade reels")
	path := testsupport.WriteUpload(t, uploadsDir, "reel.mp4")
	asset := testsupport.NewAsset(t, st, record.ID, path)
	ctx := context.Background()

	first, err := svc.Create(ctx, &store.Snippet{
		AssetID: asset.ID, Title: "Opening: remarks", StartTime: 0, EndTime: 5,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(ctx, &store.Snippet{
		AssetID: asset.ID, Title: "", StartTime: 5, EndTime: 10,
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	// One snippet pre-exported, one exported on demand by the archive run.
	if _, err := svc.Export(ctx, first.ID); err != nil {
		t.Fatalf("Export: %v", err)
	}

	zipPath := filepath.Join(t.TempDir(), "parade-snippets.zip")
	if err := svc.ExportArchive(ctx, record.ID, zipPath); err != nil {
		t.Fatalf("ExportArchive: %v", err)
	}

	reader, err := zip.OpenReader(zipPath)
	if err != nil {
		t.Fatalf("zip.OpenReader: %v", err)
	}
	defer reader.Close()
	if len(reader.File) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(reader.File))
	}
	names := map[string]bool{}
	for _, f := range reader.File {
		names[f.Name] = true
	}
	if !names["Opening__remarks.mp4"] {
		t.Fatalf("titled entry missing: %v", names)
	}
}

func TestExportArchiveWithoutSnippetsFails(t *testing.T) {
	svc, _, _ := newService(t)

	zipPath := filepath.Join(t.TempDir(), "empty.zip")
	if err := svc.ExportArchive(context.Background(), 404, zipPath); err == nil {
		t.Fatal("expected error for record without snippets")
	}
}
