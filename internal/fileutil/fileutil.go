// Package fileutil provides file copy and naming helpers shared by the
// ingestion and derivative pipelines.
package fileutil

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// CopyFile streams src to dst using io.Copy with default permissions (0o644).
func CopyFile(src, dst string) error {
	return CopyFileMode(src, dst, 0o644)
}

// CopyFileMode streams src to dst, setting the given file mode on dst.
func CopyFileMode(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// CopyFileVerified streams src to dst with SHA256 + size integrity verification.
// Removes dst on mismatch.
func CopyFileVerified(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	srcSize := srcInfo.Size()

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		_ = out.Close()
	}()

	srcHasher := sha256.New()
	dstHasher := sha256.New()
	tee := io.TeeReader(in, srcHasher)
	multi := io.MultiWriter(out, dstHasher)

	written, err := io.Copy(multi, tee)
	if err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	if written != srcSize {
		_ = os.Remove(dst)
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcSize, written)
	}

	if !bytes.Equal(srcHasher.Sum(nil), dstHasher.Sum(nil)) {
		_ = os.Remove(dst)
		return fmt.Errorf("copy hash mismatch: file corrupted during copy")
	}

	return nil
}

// UniqueFilename returns a collision-free filename carrying the given prefix
// and extension. The extension is normalized to include a leading dot.
func UniqueFilename(prefix, ext string) string {
	ext = strings.TrimSpace(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	prefix = SafeBaseName(prefix)
	if prefix == "" {
		return uuid.NewString() + ext
	}
	return prefix + "-" + uuid.NewString() + ext
}

// SafeBaseName strips path separators and characters unsafe for derivative
// filenames, keeping letters, digits, dots, dashes, and underscores.
func SafeBaseName(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "." || name == string(filepath.Separator) {
		return ""
	}
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return strings.Trim(b.String(), "._")
}

// Ext returns the lowercase extension of path without the leading dot.
func Ext(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// ResolveUpload derives the canonical on-disk location for a stored upload
// path. Absolute paths pass through untouched. Relative paths are anchored
// under uploadsDir, with a legacy "uploads/" prefix stripped first so paths
// recorded against an older layout still resolve. A path that names a
// directory rather than a file (no extension) gets the asset's file name
// appended.
func ResolveUpload(uploadsDir, path, name string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return filepath.Join(uploadsDir, name)
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	path = strings.TrimPrefix(path, "uploads/")
	resolved := filepath.Join(uploadsDir, path)
	if name != "" && filepath.Ext(resolved) == "" {
		resolved = filepath.Join(resolved, name)
	}
	return resolved
}
