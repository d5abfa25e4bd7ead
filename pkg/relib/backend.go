package relib

import (
	"context"
	"errors"
)

// Backend is the byte-blob substrate a TableStore serializes onto. Concrete
// implementations (filesystem, S3, memory, redis, boltdb, compressed
// archive) live in package backend; this interface is declared here so the
// core never imports its own backends.
type Backend interface {
	// GetURL returns the round-trippable URL identifying this backend
	// instance.
	GetURL() string

	// StartSaving/DoneSaving bracket a batch of SaveData calls, letting
	// archive-style backends assemble one artifact.
	StartSaving(ctx context.Context) error
	DoneSaving(ctx context.Context) error

	// StartLoading/DoneLoading bracket a batch of LoadData calls.
	StartLoading(ctx context.Context) error
	DoneLoading(ctx context.Context) error

	// SaveData writes data under relativePath.
	SaveData(ctx context.Context, relativePath string, data []byte) error

	// LoadData reads the bytes stored under relativePath. Implementations
	// must return an error satisfying IsNotFound(err) when the key is
	// absent.
	LoadData(ctx context.Context, relativePath string) ([]byte, error)
}

// notFounder is implemented by backend errors that indicate a missing key.
// It is declared here (rather than imported from package backend) to avoid
// relib depending on backend; backend.BackendFileNotFound implements it.
type notFounder interface {
	NotFound() bool
}

// IsNotFound reports whether err indicates the requested key does not
// exist on the backend (package backend's BackendFileNotFound).
func IsNotFound(err error) bool {
	var nf notFounder
	return errors.As(err, &nf) && nf.NotFound()
}
