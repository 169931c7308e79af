package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	redis "github.com/redis/go-redis/v9"
)

// redisStore keys entries as cache:{ns}:v{version}:{key}. A namespace sweep
// bumps the namespace version counter, which orphans every existing entry
// in one O(1) write; orphans fall out under Redis memory pressure.
type redisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) (Store, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	return &redisStore{client: client}, nil
}

func (s *redisStore) Get(ctx context.Context, ns Namespace, key string) ([]byte, error) {
	version, err := s.version(ctx, ns)
	if err != nil {
		return nil, err
	}
	value, err := s.client.Get(ctx, entryKey(ns, version, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *redisStore) Put(ctx context.Context, ns Namespace, key string, value []byte) error {
	version, err := s.version(ctx, ns)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, entryKey(ns, version, key), value, 0).Err()
}

func (s *redisStore) Evict(ctx context.Context, ns Namespace, key string) error {
	version, err := s.version(ctx, ns)
	if err != nil {
		return err
	}
	return s.client.Del(ctx, entryKey(ns, version, key)).Err()
}

func (s *redisStore) EvictAll(ctx context.Context, ns Namespace) error {
	return s.client.Incr(ctx, versionKey(ns)).Err()
}

func (s *redisStore) version(ctx context.Context, ns Namespace) (int64, error) {
	raw, err := s.client.Get(ctx, versionKey(ns)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	version, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt namespace version for %s: %w", ns, err)
	}
	return version, nil
}

func entryKey(ns Namespace, version int64, key string) string {
	return fmt.Sprintf("cache:%s:v%d:%s", ns, version, key)
}

func versionKey(ns Namespace) string {
	return fmt.Sprintf("cache:%s:version", ns)
}
