package backend

import (
	"context"
	"fmt"
	"sync"

	"github.com/driftstore/driftstore/pkg/relib"
)

// Factory constructs a relib.Backend instance for a single parsed URL. Each
// call to Open gets a fresh instance unless the scheme's factory chooses to
// share underlying state (the memory scheme does, by design).
type Factory func(ctx context.Context, parsed ParsedURL, raw string) (relib.Backend, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

func init() {
	Register("file", newFileBackend)
	Register("memory", newMemoryBackend)
	Register("s3", newS3Backend)
	Register("redis", newRedisBackend)
	Register("boltdb", newBoltBackend)
	Register("archive+file", newArchiveFileBackend)
}

// Register installs a Factory under scheme, overwriting any prior entry.
// Tests use this to register fixture schemes; production code should not
// normally need to call it directly.
func Register(scheme string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[scheme] = f
}

// Open resolves rawURL's scheme against the registry and constructs the
// corresponding Backend. An unregistered scheme is a TableError-shaped
// failure surfaced as a plain error, since relib never needs to recognize
// it structurally.
func Open(ctx context.Context, rawURL string) (relib.Backend, error) {
	parsed, err := ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	registryMu.RLock()
	f, ok := registry[parsed.Scheme]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("backend: unknown scheme %q in url %q", parsed.Scheme, rawURL)
	}
	return f(ctx, parsed, rawURL)
}
