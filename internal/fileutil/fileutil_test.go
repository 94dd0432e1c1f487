package fileutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")

	content := []byte("hello world")
	if err := os.WriteFile(src, content, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := CopyFile(src, dst); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Fatalf("content mismatch: got %q, want %q", got, content)
	}
}

func TestCopyFileVerified(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")

	content := []byte("verified copy content")
	if err := os.WriteFile(src, content, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := CopyFileVerified(src, dst); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Fatalf("content mismatch: got %q, want %q", got, content)
	}
}

func TestCopyFileVerified_MissingSource(t *testing.T) {
	dir := t.TempDir()
	err := CopyFileVerified(filepath.Join(dir, "nonexistent"), filepath.Join(dir, "dst.bin"))
	if err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestUniqueFilename(t *testing.T) {
	a := UniqueFilename("poster", "jpg")
	b := UniqueFilename("poster", ".jpg")
	if a == b {
		t.Fatalf("expected unique names, got %q twice", a)
	}
	for _, name := range []string{a, b} {
		if !strings.HasPrefix(name, "poster-") {
			t.Fatalf("expected poster prefix, got %q", name)
		}
		if !strings.HasSuffix(name, ".jpg") {
			t.Fatalf("expected .jpg suffix, got %q", name)
		}
	}

	bare := UniqueFilename("", "mp4")
	if !strings.HasSuffix(bare, ".mp4") || strings.HasPrefix(bare, "-") {
		t.Fatalf("unexpected name without prefix: %q", bare)
	}
}

func TestSafeBaseName(t *testing.T) {
	cases := map[string]string{
		"../../etc/passwd":     "passwd",
		"My Interview (1).wav": "My_Interview__1_.wav",
		"  plain.mp3  ":        "plain.mp3",
		"...":                  "",
	}
	for input, want := range cases {
		if got := SafeBaseName(input); got != want {
			t.Fatalf("SafeBaseName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestResolveUpload(t *testing.T) {
	cases := []struct {
		path string
		name string
		want string
	}{
		{"/data/archive/reel.mp4", "reel.mp4", "/data/archive/reel.mp4"},
		{"reel.mp4", "reel.mp4", "/var/uploads/reel.mp4"},
		{"uploads/reel.mp4", "reel.mp4", "/var/uploads/reel.mp4"},
		{"batch-7", "reel.mp4", "/var/uploads/batch-7/reel.mp4"},
		{"", "reel.mp4", "/var/uploads/reel.mp4"},
	}
	for _, tc := range cases {
		if got := ResolveUpload("/var/uploads", tc.path, tc.name); got != tc.want {
			t.Fatalf("ResolveUpload(%q, %q) = %q, want %q", tc.path, tc.name, got, tc.want)
		}
	}
}

func TestExt(t *testing.T) {
	if got := Ext("/tmp/Clip.MOV"); got != "mov" {
		t.Fatalf("Ext = %q, want mov", got)
	}
	if got := Ext("noext"); got != "" {
		t.Fatalf("Ext = %q, want empty", got)
	}
}
