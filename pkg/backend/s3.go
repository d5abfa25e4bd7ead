package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/driftstore/driftstore/pkg/relib"
)

// S3Backend stores objects in a single bucket under a key prefix, using the
// default AWS credential chain (environment, shared config, instance role).
type S3Backend struct {
	url    string
	client *s3.Client
	bucket string
	prefix string
}

func newS3Backend(ctx context.Context, parsed ParsedURL, raw string) (relib.Backend, error) {
	if parsed.Host == "" {
		return nil, fmt.Errorf("s3 backend url %q missing bucket name", raw)
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, &BackendError{URL: raw, Op: "open", Err: err}
	}
	return &S3Backend{
		url:    raw,
		client: s3.NewFromConfig(cfg),
		bucket: parsed.Host,
		prefix: parsed.Path,
	}, nil
}

func (b *S3Backend) GetURL() string { return b.url }

func (b *S3Backend) StartSaving(ctx context.Context) error  { return nil }
func (b *S3Backend) DoneSaving(ctx context.Context) error   { return nil }
func (b *S3Backend) StartLoading(ctx context.Context) error { return nil }
func (b *S3Backend) DoneLoading(ctx context.Context) error  { return nil }

func (b *S3Backend) SaveData(ctx context.Context, relativePath string, data []byte) error {
	key := joinKey(b.prefix, relativePath)
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return &BackendError{URL: b.url, Op: "save", Err: fmt.Errorf("put %q: %w", key, err)}
	}
	return nil
}

func (b *S3Backend) LoadData(ctx context.Context, relativePath string) ([]byte, error) {
	key := joinKey(b.prefix, relativePath)
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, &BackendFileNotFound{URL: b.url, Path: relativePath}
		}
		return nil, &BackendError{URL: b.url, Op: "load", Err: fmt.Errorf("get %q: %w", key, err)}
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, &BackendError{URL: b.url, Op: "load", Err: err}
	}
	return data, nil
}
