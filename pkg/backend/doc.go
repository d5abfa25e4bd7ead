/*
Package backend implements relib.Backend against concrete byte stores:
local filesystem, S3, an in-process memory registry, redis, bbolt, and a
zip-archive wrapper.

Each scheme is registered under a URL prefix ("file://", "s3://",
"memory://", "redis://", "boltdb://", "archive+file://") in a package-level
registry; Open parses a URL and dispatches to the matching Factory. Callers
outside this package should go through Open rather than constructing a
concrete backend type directly, so that a store's origin URL can be
swapped without code changes.

Every backend returns *BackendFileNotFound directly (not wrapped in
*BackendError) from LoadData when a key is absent, so relib.IsNotFound works the same way
regardless of which scheme is in play.
*/
package backend
