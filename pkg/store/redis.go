package store

import (
	"context"
	"errors"
	"strings"

	"github.com/redis/go-redis/v9"
)

// defaultRedisPrefix namespaces collection hashes when several applications
// share one Redis instance.
const defaultRedisPrefix = "basekit"

// Redis is an engine storing each collection as one Redis hash keyed
// "{prefix}:{collection}", with record ids as binary-safe hash fields.
// Iteration order is whatever HGETALL yields; the store makes no cross-
// backend ordering promise.
type Redis struct {
	client redis.UniversalClient
	prefix string
}

// RedisOption configures the Redis engine.
type RedisOption func(*Redis)

// WithRedisPrefix overrides the key prefix for collection hashes.
func WithRedisPrefix(prefix string) RedisOption {
	return func(r *Redis) {
		if prefix != "" {
			r.prefix = prefix
		}
	}
}

// NewRedis wraps an existing Redis client as a storage engine.
func NewRedis(client redis.UniversalClient, opts ...RedisOption) *Redis {
	r := &Redis{client: client, prefix: defaultRedisPrefix}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// OpenRedis connects to the Redis instance at url and verifies the
// connection with a ping.
func OpenRedis(ctx context.Context, url string, opts ...RedisOption) (*Redis, error) {
	cfg, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(cfg)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return NewRedis(client, opts...), nil
}

// Table returns the named table. Redis hashes spring into existence on
// first HSET, so no explicit creation is needed.
func (r *Redis) Table(_ context.Context, name string) (Table, error) {
	return &redisTable{client: r.client, key: r.prefix + ":" + name}, nil
}

// ListTables scans for collection hashes under the configured prefix.
func (r *Redis) ListTables(ctx context.Context) ([]string, error) {
	pattern := r.prefix + ":*"
	var (
		names  []string
		cursor uint64
	)
	for {
		keys, next, err := r.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, err
		}
		for _, key := range keys {
			names = append(names, strings.TrimPrefix(key, r.prefix+":"))
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return names, nil
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}

type redisTable struct {
	client redis.UniversalClient
	key    string
}

func (t *redisTable) Get(ctx context.Context, key []byte) ([]byte, error) {
	data, err := t.client.HGet(ctx, t.key, string(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (t *redisTable) Put(ctx context.Context, key, value []byte) error {
	return t.client.HSet(ctx, t.key, string(key), value).Err()
}

func (t *redisTable) Delete(ctx context.Context, key []byte) error {
	return t.client.HDel(ctx, t.key, string(key)).Err()
}

func (t *redisTable) Iterate(ctx context.Context, fn func(key, value []byte) error) error {
	entries, err := t.client.HGetAll(ctx, t.key).Result()
	if err != nil {
		return err
	}
	for field, value := range entries {
		if err := fn([]byte(field), []byte(value)); err != nil {
			return err
		}
	}
	return nil
}

func (t *redisTable) Clear(ctx context.Context) error {
	return t.client.Del(ctx, t.key).Err()
}

var _ Engine = (*Redis)(nil)
