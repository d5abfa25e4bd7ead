package backend

import (
	"context"
	"sync"

	"github.com/driftstore/driftstore/pkg/relib"
)

// memoryRegistry holds every in-process memory backend, keyed by the
// authority+path portion of its URL, so that two callers opening the same
// "memory://fixture/tenants" URL observe the same bytes. This mirrors the
// spec's requirement that the memory scheme behave like a shared origin
// within one process, primarily for tests.
var (
	memoryRegistryMu sync.Mutex
	memoryRegistry   = map[string]*MemoryBackend{}
)

// ResetMemoryRegistry discards every registered in-memory backend. Tests
// call this between cases to avoid cross-test bleed.
func ResetMemoryRegistry() {
	memoryRegistryMu.Lock()
	defer memoryRegistryMu.Unlock()
	memoryRegistry = map[string]*MemoryBackend{}
}

// MemoryBackend is a mutex-guarded in-process byte store, keyed by
// relative path.
type MemoryBackend struct {
	url string

	mu    sync.RWMutex
	files map[string][]byte
}

func newMemoryBackend(ctx context.Context, parsed ParsedURL, raw string) (relib.Backend, error) {
	key := parsed.Host + "/" + parsed.Path
	memoryRegistryMu.Lock()
	defer memoryRegistryMu.Unlock()
	if b, ok := memoryRegistry[key]; ok {
		return b, nil
	}
	b := &MemoryBackend{url: raw, files: make(map[string][]byte)}
	memoryRegistry[key] = b
	return b, nil
}

func (b *MemoryBackend) GetURL() string { return b.url }

func (b *MemoryBackend) StartSaving(ctx context.Context) error  { return nil }
func (b *MemoryBackend) DoneSaving(ctx context.Context) error   { return nil }
func (b *MemoryBackend) StartLoading(ctx context.Context) error { return nil }
func (b *MemoryBackend) DoneLoading(ctx context.Context) error  { return nil }

func (b *MemoryBackend) SaveData(ctx context.Context, relativePath string, data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.files[relativePath] = cp
	return nil
}

func (b *MemoryBackend) LoadData(ctx context.Context, relativePath string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	data, ok := b.files[relativePath]
	if !ok {
		return nil, &BackendFileNotFound{URL: b.url, Path: relativePath}
	}
	return data, nil
}
