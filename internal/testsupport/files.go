package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile fills the target path with the requested number of bytes using a
// repeating pattern, creating parent directories. A size <= 0 writes one
// byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, bytes.Repeat([]byte{0x42}, int(size)), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteUpload places a dummy media file inside the config uploads directory
// and returns its absolute path.
func WriteUpload(t testing.TB, uploadsDir, name string) string {
	t.Helper()

	path := filepath.Join(uploadsDir, name)
	WriteFile(t, path, 64)
	return path
}
