package backend

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/flate"

	"github.com/driftstore/driftstore/pkg/relib"
)

// flateMethod is the zip method ID this backend registers a
// klauspost/compress-backed compressor/decompressor for, in place of the
// stdlib's slower flate implementation.
const flateMethod = zip.Deflate

func init() {
	zip.RegisterCompressor(flateMethod, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.DefaultCompression)
	})
	zip.RegisterDecompressor(flateMethod, func(r io.Reader) io.ReadCloser {
		return flate.NewReader(r)
	})
}

// ArchiveFileBackend bundles every SaveData call within one
// StartSaving/DoneSaving bracket into a single zip archive, written
// atomically on DoneSaving. This is the compressed-archive wrapper scheme:
// "archive+file:///path/to/store.zip". A zip's central directory lets a
// reader confirm the archive is complete without scanning every entry,
// which file-per-table backends can't offer.
type ArchiveFileBackend struct {
	path string
	url  string

	mu      sync.Mutex
	writing bool
	buf     *bytes.Buffer
	zw      *zip.Writer

	loaded  bool
	entries map[string][]byte
}

func newArchiveFileBackend(ctx context.Context, parsed ParsedURL, raw string) (relib.Backend, error) {
	if parsed.Path == "" {
		return nil, fmt.Errorf("archive backend url %q missing archive path", raw)
	}
	if err := os.MkdirAll(filepath.Dir(parsed.Path), 0o755); err != nil {
		return nil, &BackendError{URL: raw, Op: "open", Err: err}
	}
	return &ArchiveFileBackend{path: parsed.Path, url: raw}, nil
}

func (b *ArchiveFileBackend) GetURL() string { return b.url }

func (b *ArchiveFileBackend) StartSaving(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = &bytes.Buffer{}
	b.zw = zip.NewWriter(b.buf)
	b.writing = true
	return nil
}

func (b *ArchiveFileBackend) SaveData(ctx context.Context, relativePath string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.writing {
		return &BackendError{URL: b.GetURL(), Op: "save", Err: fmt.Errorf("SaveData called outside a StartSaving/DoneSaving bracket")}
	}
	w, err := b.zw.CreateHeader(&zip.FileHeader{Name: relativePath, Method: flateMethod})
	if err != nil {
		return &BackendError{URL: b.GetURL(), Op: "save", Err: err}
	}
	if _, err := w.Write(data); err != nil {
		return &BackendError{URL: b.GetURL(), Op: "save", Err: err}
	}
	return nil
}

func (b *ArchiveFileBackend) DoneSaving(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.zw.Close(); err != nil {
		return &BackendError{URL: b.GetURL(), Op: "save", Err: err}
	}
	if err := os.WriteFile(b.path, b.buf.Bytes(), 0o644); err != nil {
		return &BackendError{URL: b.GetURL(), Op: "save", Err: err}
	}
	b.writing = false
	b.buf = nil
	b.zw = nil
	// The archive on disk changed; force a reload on the next LoadData.
	b.loaded = false
	b.entries = nil
	return nil
}

func (b *ArchiveFileBackend) StartLoading(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loadLocked()
}

func (b *ArchiveFileBackend) loadLocked() error {
	if b.loaded {
		return nil
	}
	data, err := os.ReadFile(b.path)
	if os.IsNotExist(err) {
		b.entries = map[string][]byte{}
		b.loaded = true
		return nil
	}
	if err != nil {
		return &BackendError{URL: b.GetURL(), Op: "load", Err: err}
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return &BackendError{URL: b.GetURL(), Op: "load", Err: err}
	}
	entries := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return &BackendError{URL: b.GetURL(), Op: "load", Err: err}
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return &BackendError{URL: b.GetURL(), Op: "load", Err: err}
		}
		entries[f.Name] = content
	}
	b.entries = entries
	b.loaded = true
	return nil
}

func (b *ArchiveFileBackend) DoneLoading(ctx context.Context) error { return nil }

func (b *ArchiveFileBackend) LoadData(ctx context.Context, relativePath string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.loadLocked(); err != nil {
		return nil, err
	}
	data, ok := b.entries[relativePath]
	if !ok {
		return nil, &BackendFileNotFound{URL: b.GetURL(), Path: relativePath}
	}
	return data, nil
}
