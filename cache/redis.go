package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix is prepended to every resource name to build the Redis
// key of its hash.
const DefaultRedisPrefix = "rawrmenu:"

// scanCount is the COUNT hint passed to HSCAN.
const scanCount = 256

// RedisConfig configures [NewRedisStore].
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// Prefix defaults to [DefaultRedisPrefix].
	Prefix string
}

// RedisStore is a [Store] that keeps one Redis hash per resource. Hash
// fields are key fingerprints and values are JSON-encoded entries. Errors
// from Redis are returned to the caller; the guard and trigger decide
// whether to fail open or loud.
type RedisStore struct {
	rdb    redis.UniversalClient
	prefix string
}

// NewRedisStore connects a new client. The store owns the client and
// releases it in Close.
func NewRedisStore(cfg RedisConfig) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedisStoreFromClient(rdb, cfg.Prefix)
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(rdb redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (r *RedisStore) hash(resource string) string {
	return r.prefix + resource
}

func (r *RedisStore) Get(ctx context.Context, resource string, key Key) (Entry, bool, error) {
	raw, err := r.rdb.HGet(ctx, r.hash(resource), key.Fingerprint()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Entry{}, false, nil
		}
		return Entry{}, false, err
	}
	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return Entry{}, false, fmt.Errorf("%w: %s: %v", ErrCorruptEntry, resource, err)
	}
	return e, true, nil
}

func (r *RedisStore) Set(ctx context.Context, resource string, key Key, entry Entry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return r.rdb.HSet(ctx, r.hash(resource), key.Fingerprint(), raw).Err()
}

func (r *RedisStore) Exists(ctx context.Context, resource string, key Key) (bool, error) {
	return r.rdb.HExists(ctx, r.hash(resource), key.Fingerprint()).Result()
}

func (r *RedisStore) DeleteOne(ctx context.Context, resource string, key Key) error {
	return r.rdb.HDel(ctx, r.hash(resource), key.Fingerprint()).Err()
}

func (r *RedisStore) DeleteAll(ctx context.Context, resource string) error {
	return r.rdb.Del(ctx, r.hash(resource)).Err()
}

// DeleteByPrefix enumerates the hash with HSCAN and removes every matching
// field.
func (r *RedisStore) DeleteByPrefix(ctx context.Context, resource string, prefix Key) (int, error) {
	h := r.hash(resource)
	p := prefix.Prefix()

	var fields []string
	iter := r.rdb.HScan(ctx, h, 0, globEscape(p)+"*", scanCount).Iterator()
	for i := 0; iter.Next(ctx); i++ {
		// HSCAN yields field, value, field, value, ...
		if i%2 != 0 {
			continue
		}
		if f := iter.Val(); strings.HasPrefix(f, p) {
			fields = append(fields, f)
		}
	}
	if err := iter.Err(); err != nil {
		return 0, err
	}
	if len(fields) == 0 {
		return 0, nil
	}
	n, err := r.rdb.HDel(ctx, h, fields...).Result()
	return int(n), err
}

// Ping checks the Redis connection.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

// Close closes the underlying Redis client.
func (r *RedisStore) Close() error {
	return r.rdb.Close()
}

// globEscape quotes the characters Redis MATCH patterns treat specially.
func globEscape(s string) string {
	var b strings.Builder
	for _, c := range s {
		switch c {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(c)
	}
	return b.String()
}
