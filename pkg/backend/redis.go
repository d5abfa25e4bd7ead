package backend

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/driftstore/driftstore/pkg/relib"
)

// RedisBackend stores each relative path as a string key under a prefix
// (parsed.Path), using the default database unless the URL query string
// sets "db".
type RedisBackend struct {
	url    string
	client *redis.Client
	prefix string
}

func newRedisBackend(ctx context.Context, parsed ParsedURL, raw string) (relib.Backend, error) {
	if parsed.Host == "" {
		return nil, fmt.Errorf("redis backend url %q missing host", raw)
	}
	db := 0
	if v := parsed.Query.Get("db"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("redis backend url %q: invalid db query param: %w", raw, err)
		}
		db = n
	}
	client := redis.NewClient(&redis.Options{
		Addr: parsed.Host,
		DB:   db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, &BackendError{URL: raw, Op: "open", Err: err}
	}
	return &RedisBackend{url: raw, client: client, prefix: strings.Trim(parsed.Path, "/")}, nil
}

func (b *RedisBackend) GetURL() string { return b.url }

func (b *RedisBackend) StartSaving(ctx context.Context) error  { return nil }
func (b *RedisBackend) DoneSaving(ctx context.Context) error   { return nil }
func (b *RedisBackend) StartLoading(ctx context.Context) error { return nil }
func (b *RedisBackend) DoneLoading(ctx context.Context) error  { return nil }

func (b *RedisBackend) key(relativePath string) string {
	return joinKey(b.prefix, relativePath)
}

func (b *RedisBackend) SaveData(ctx context.Context, relativePath string, data []byte) error {
	if err := b.client.Set(ctx, b.key(relativePath), data, 0).Err(); err != nil {
		return &BackendError{URL: b.url, Op: "save", Err: err}
	}
	return nil
}

func (b *RedisBackend) LoadData(ctx context.Context, relativePath string) ([]byte, error) {
	data, err := b.client.Get(ctx, b.key(relativePath)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, &BackendFileNotFound{URL: b.url, Path: relativePath}
	}
	if err != nil {
		return nil, &BackendError{URL: b.url, Op: "load", Err: err}
	}
	return data, nil
}
