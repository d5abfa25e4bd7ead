package backend

import "fmt"

// BackendError wraps a failure from a concrete Backend implementation with
// the URL and operation that failed.
type BackendError struct {
	URL string
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend %s: %s: %v", e.URL, e.Op, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// BackendFileNotFound indicates a LoadData call found no object under the
// requested path. Every backend in this package returns this type directly
// (not wrapped in BackendError) instead of a bare os.ErrNotExist/redis.Nil/s3 NoSuchKey,
// so relib.IsNotFound works uniformly across schemes.
type BackendFileNotFound struct {
	URL  string
	Path string
}

func (e *BackendFileNotFound) Error() string {
	return fmt.Sprintf("backend %s: not found: %s", e.URL, e.Path)
}

// NotFound satisfies relib's notFounder interface.
func (e *BackendFileNotFound) NotFound() bool { return true }
