// Package fsutil holds the small file operations shared by the loaders and
// the generic file helper: existence checks, bounded reads, plain and atomic
// writes, deletes and file URIs.
package fsutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
)

// DefaultReadLimit bounds single-file reads. Content files are small text and
// JSON drops, never streamed data.
const DefaultReadLimit int64 = 4 << 20

var ErrTooLarge = errors.New("file exceeds read limit")

// Exists reports whether path names an existing file or directory.
func Exists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// ReadBounded reads at most limit bytes. A file larger than limit yields
// ErrTooLarge; a limit of zero or less uses DefaultReadLimit.
func ReadBounded(path string, limit int64) ([]byte, error) {
	if limit <= 0 {
		limit = DefaultReadLimit
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%s: %w (%d bytes)", path, ErrTooLarge, limit)
	}
	return data, nil
}

// WriteFile writes content, creating missing parent directories.
func WriteFile(path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent of %s: %w", path, err)
	}
	return os.WriteFile(path, content, 0o644)
}

// WriteFileAtomic replaces path through a temp file in the same directory so
// readers never observe a partial file.
func WriteFileAtomic(path string, mode fs.FileMode, reader io.Reader) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tempFile, err := os.CreateTemp(dir, ".kiosk-*")
	if err != nil {
		return err
	}
	defer func() {
		tempFile.Close()
		os.Remove(tempFile.Name())
	}()

	if _, err := io.Copy(tempFile, reader); err != nil {
		return err
	}
	if err := tempFile.Sync(); err != nil {
		return err
	}
	if err := tempFile.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tempFile.Name(), mode); err != nil {
		return err
	}
	return os.Rename(tempFile.Name(), path)
}

// Delete removes path. It reports false when the file did not exist.
func Delete(path string) (bool, error) {
	err := os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// FileURI returns the absolute file:// URI for path.
func FileURI(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	uri := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return uri.String(), nil
}

// ExistingFileURI returns the file URI when path exists and "" otherwise.
func ExistingFileURI(path string) string {
	if !Exists(path) {
		return ""
	}
	uri, err := FileURI(path)
	if err != nil {
		return ""
	}
	return uri
}
