package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrNoData is returned by a Backend that holds no save document yet.
var ErrNoData = errors.New("no saved data")

// Backend is durable storage for a single save document.
type Backend interface {
	// Read returns the stored document or ErrNoData.
	Read(ctx context.Context) ([]byte, error)
	// Write replaces the stored document. A failed write must leave the
	// previous document readable.
	Write(ctx context.Context, data []byte) error
	// Preserve moves the current document aside for diagnostics and
	// returns where it went.
	Preserve(ctx context.Context) (string, error)
	// Location describes where the document lives.
	Location() string
	Close() error
}

// FileBackend stores the document as a JSON file.
type FileBackend struct {
	path string
	now  func() time.Time
}

// NewFileBackend returns a backend for the file at path. The directory is
// created on first write.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path, now: time.Now}
}

// Read implements Backend.
func (b *FileBackend) Read(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoData
		}
		return nil, fmt.Errorf("failed to read save file: %w", err)
	}
	return data, nil
}

// Write implements Backend by writing a temp file and renaming it over
// the target.
func (b *FileBackend) Write(_ context.Context, data []byte) error {
	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create save directory: %w", err)
	}
	tmpFile, err := os.CreateTemp(dir, "save-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp save file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write save file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync save file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close save file: %w", err)
	}
	if err := os.Rename(tmpPath, b.path); err != nil {
		return fmt.Errorf("failed to replace save file: %w", err)
	}
	return nil
}

// Preserve implements Backend by renaming the file with a timestamp suffix.
func (b *FileBackend) Preserve(_ context.Context) (string, error) {
	dest := fmt.Sprintf("%s.corrupt-%d", b.path, b.now().UnixMilli())
	if err := os.Rename(b.path, dest); err != nil {
		return "", fmt.Errorf("failed to preserve save file: %w", err)
	}
	return dest, nil
}

// Location implements Backend.
func (b *FileBackend) Location() string {
	return b.path
}

// Close implements Backend.
func (b *FileBackend) Close() error {
	return nil
}
