package backend

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/driftstore/driftstore/pkg/relib"
)

// FileBackend stores one file per relative path under Dir, creating parent
// directories as needed. StartSaving/StartLoading are no-ops; there is no
// batching unit to bracket on a plain filesystem.
type FileBackend struct {
	Dir string
}

func newFileBackend(ctx context.Context, parsed ParsedURL, raw string) (relib.Backend, error) {
	dir := parsed.Path
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &BackendError{URL: raw, Op: "open", Err: err}
	}
	return &FileBackend{Dir: dir}, nil
}

// NewFileBackend constructs a FileBackend directly, bypassing URL parsing,
// for callers that already hold a filesystem path.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &FileBackend{Dir: dir}, nil
}

func (b *FileBackend) GetURL() string { return "file://" + b.Dir }

func (b *FileBackend) StartSaving(ctx context.Context) error  { return nil }
func (b *FileBackend) DoneSaving(ctx context.Context) error   { return nil }
func (b *FileBackend) StartLoading(ctx context.Context) error { return nil }
func (b *FileBackend) DoneLoading(ctx context.Context) error  { return nil }

func (b *FileBackend) SaveData(ctx context.Context, relativePath string, data []byte) error {
	full := filepath.Join(b.Dir, filepath.FromSlash(relativePath))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return &BackendError{URL: b.GetURL(), Op: "save", Err: err}
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return &BackendError{URL: b.GetURL(), Op: "save", Err: err}
	}
	return nil
}

func (b *FileBackend) LoadData(ctx context.Context, relativePath string) ([]byte, error) {
	full := filepath.Join(b.Dir, filepath.FromSlash(relativePath))
	data, err := os.ReadFile(full)
	if os.IsNotExist(err) {
		return nil, &BackendFileNotFound{URL: b.GetURL(), Path: relativePath}
	}
	if err != nil {
		return nil, &BackendError{URL: b.GetURL(), Op: "load", Err: err}
	}
	return data, nil
}
