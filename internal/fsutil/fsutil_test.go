package fsutil

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadBounded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "text_daily")
	if err := os.WriteFile(path, []byte("LAB HOURS"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	data, err := ReadBounded(path, 9)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "LAB HOURS" {
		t.Fatalf("unexpected data %q", data)
	}

	if _, err := ReadBounded(path, 4); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestReadBoundedMissing(t *testing.T) {
	_, err := ReadBounded(filepath.Join(t.TempDir(), "missing"), 0)
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestWriteFileCreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "facility_name.txt")
	if err := WriteFile(path, []byte("Lab")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !Exists(path) {
		t.Fatalf("expected %s to exist", path)
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "metrics.prom")
	if err := os.WriteFile(path, []byte("old"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := WriteFileAtomic(path, 0o644, strings.NewReader("new")); err != nil {
		t.Fatalf("atomic write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "new" {
		t.Fatalf("expected new content, got %q", data)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o644 {
		t.Fatalf("expected mode 0644, got %v", info.Mode().Perm())
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected temp file cleanup, got %d entries", len(entries))
	}
}

func TestDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qr_support.png")
	if err := os.WriteFile(path, []byte("png"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	deleted, err := Delete(path)
	if err != nil || !deleted {
		t.Fatalf("expected delete, got %v %v", deleted, err)
	}
	deleted, err = Delete(path)
	if err != nil || deleted {
		t.Fatalf("expected missing file to report false, got %v %v", deleted, err)
	}
}

func TestExistingFileURI(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "left_image.png")

	if uri := ExistingFileURI(path); uri != "" {
		t.Fatalf("expected empty uri for missing file, got %q", uri)
	}
	if err := os.WriteFile(path, []byte("png"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	uri := ExistingFileURI(path)
	if !strings.HasPrefix(uri, "file:///") || !strings.HasSuffix(uri, "/left_image.png") {
		t.Fatalf("unexpected uri %q", uri)
	}
}
