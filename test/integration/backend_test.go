package integration

import (
	"context"
	"os"
	"testing"

	"github.com/driftstore/driftstore/pkg/backend"
	"github.com/driftstore/driftstore/pkg/relib"
)

// TestS3BackendRoundTrip exercises the s3 scheme against a real bucket.
// Skipped unless DRIFT_TEST_S3_URL names a bucket the caller's AWS
// credentials can read and write.
func TestS3BackendRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}
	url := os.Getenv("DRIFT_TEST_S3_URL")
	if url == "" {
		t.Skip("DRIFT_TEST_S3_URL not set")
	}

	ctx := context.Background()
	b, err := backend.Open(ctx, url)
	if err != nil {
		t.Skipf("S3 backend not available: %v", err)
	}

	const key = "driftstore-integration-test/roundtrip.json"
	if err := b.SaveData(ctx, key, []byte(`{"ok":true}`)); err != nil {
		t.Fatalf("SaveData: %v", err)
	}
	data, err := b.LoadData(ctx, key)
	if err != nil {
		t.Fatalf("LoadData: %v", err)
	}
	if string(data) != `{"ok":true}` {
		t.Fatalf("got %q", data)
	}

	if _, err := b.LoadData(ctx, "driftstore-integration-test/missing.json"); !relib.IsNotFound(err) {
		t.Fatalf("expected IsNotFound, got %v", err)
	}
}

// TestRedisBackendRoundTrip exercises the redis scheme against a live
// server. Skipped unless DRIFT_TEST_REDIS_URL is set.
func TestRedisBackendRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}
	url := os.Getenv("DRIFT_TEST_REDIS_URL")
	if url == "" {
		t.Skip("DRIFT_TEST_REDIS_URL not set")
	}

	ctx := context.Background()
	b, err := backend.Open(ctx, url)
	if err != nil {
		t.Skipf("Redis backend not available: %v", err)
	}

	const key = "driftstore-integration-test.json"
	if err := b.SaveData(ctx, key, []byte(`{"ok":true}`)); err != nil {
		t.Fatalf("SaveData: %v", err)
	}
	data, err := b.LoadData(ctx, key)
	if err != nil {
		t.Fatalf("LoadData: %v", err)
	}
	if string(data) != `{"ok":true}` {
		t.Fatalf("got %q", data)
	}

	if _, err := b.LoadData(ctx, "driftstore-integration-test-missing.json"); !relib.IsNotFound(err) {
		t.Fatalf("expected IsNotFound, got %v", err)
	}
}
