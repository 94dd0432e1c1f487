package testsupport

import (
	"context"
	"testing"

	"tessera/internal/config"
	"tessera/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// NewAsset creates an asset row for tests using the provided store.
func NewAsset(t testing.TB, st *store.Store, recordID int64, filePath string) *store.Asset {
	t.Helper()

	asset, err := st.CreateAsset(context.Background(), &store.Asset{
		RecordID: recordID,
		Name:     filePath,
		FilePath: filePath,
	})
	if err != nil {
		t.Fatalf("store.CreateAsset: %v", err)
	}
	return asset
}

// NewRecord creates an archival record for tests.
func NewRecord(t testing.TB, st *store.Store, identifier, title string) *store.Record {
	t.Helper()

	record, err := st.CreateRecord(context.Background(), &store.Record{
		Identifier: identifier,
		Title:      title,
	})
	if err != nil {
		t.Fatalf("store.CreateRecord: %v", err)
	}
	return record
}
