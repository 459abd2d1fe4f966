package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/redis/go-redis/v9"
)

// RedisRemote stores entries in Redis.
type RedisRemote struct {
	client *redis.Client
}

// NewRedisRemote connects to Redis and checks the connection with PING.
func NewRedisRemote(ctx context.Context, addr, password string, db int) (*RedisRemote, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return &RedisRemote{client: client}, nil
}

func (r *RedisRemote) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := r.client.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}
	return value, true, nil
}

func (r *RedisRemote) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *RedisRemote) Close() error {
	return r.client.Close()
}

// MemcacheRemote stores entries in memcached. The client has no context
// support, so ctx is only checked before each call.
type MemcacheRemote struct {
	client *memcache.Client
}

// NewMemcacheRemote connects to the given memcached servers and pings them.
func NewMemcacheRemote(servers ...string) (*MemcacheRemote, error) {
	client := memcache.New(servers...)
	if err := client.Ping(); err != nil {
		return nil, fmt.Errorf("memcached ping: %w", err)
	}
	return &MemcacheRemote{client: client}, nil
}

func (m *MemcacheRemote) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	item, err := m.client.Get(key)
	switch {
	case errors.Is(err, memcache.ErrCacheMiss):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}
	return item.Value, true, nil
}

func (m *MemcacheRemote) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.client.Set(&memcache.Item{
		Key:        key,
		Value:      value,
		Expiration: int32(ttl / time.Second),
	})
}

func (m *MemcacheRemote) Close() error {
	return m.client.Close()
}
