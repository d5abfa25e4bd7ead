package backend

import (
	"context"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"github.com/driftstore/driftstore/pkg/relib"
)

var blobBucket = []byte("blobs")

// BoltBackend stores every relative path as a key in a single bucket of a
// local bbolt file, giving a fast disk-backed local cache alternative to
// redis without a network round trip.
type BoltBackend struct {
	url string
	db  *bolt.DB
}

func newBoltBackend(ctx context.Context, parsed ParsedURL, raw string) (relib.Backend, error) {
	path := parsed.Path
	if path == "" {
		return nil, fmt.Errorf("boltdb backend url %q missing file path", raw)
	}
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, &BackendError{URL: raw, Op: "open", Err: err}
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(blobBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, &BackendError{URL: raw, Op: "open", Err: err}
	}
	return &BoltBackend{url: raw, db: db}, nil
}

func (b *BoltBackend) GetURL() string { return b.url }

func (b *BoltBackend) StartSaving(ctx context.Context) error  { return nil }
func (b *BoltBackend) DoneSaving(ctx context.Context) error   { return nil }
func (b *BoltBackend) StartLoading(ctx context.Context) error { return nil }
func (b *BoltBackend) DoneLoading(ctx context.Context) error  { return nil }

func (b *BoltBackend) SaveData(ctx context.Context, relativePath string, data []byte) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(blobBucket).Put([]byte(relativePath), data)
	})
	if err != nil {
		return &BackendError{URL: b.url, Op: "save", Err: err}
	}
	return nil
}

func (b *BoltBackend) LoadData(ctx context.Context, relativePath string) ([]byte, error) {
	var data []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(blobBucket).Get([]byte(relativePath))
		if v == nil {
			return nil
		}
		data = make([]byte, len(v))
		copy(data, v)
		return nil
	})
	if err != nil {
		return nil, &BackendError{URL: b.url, Op: "load", Err: err}
	}
	if data == nil {
		return nil, &BackendFileNotFound{URL: b.url, Path: relativePath}
	}
	return data, nil
}

// Close releases the underlying bbolt file handle.
func (b *BoltBackend) Close() error { return b.db.Close() }
