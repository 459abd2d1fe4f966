// Package cache keeps recently computed search responses so repeated
// searches skip the database. A local in-process layer sits in front of an
// optional shared layer (Redis or memcached). The cache is never
// authoritative: every failure reads as a miss.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"net/url"
	"sort"
	"time"

	"github.com/karlseguin/ccache/v3"
)

// Remote is a shared byte store such as Redis or memcached.
type Remote interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// Config holds the cache sizes and lifetimes.
type Config struct {
	LocalSize int64         // maximum entries kept in process
	LocalTTL  time.Duration // lifetime of an in-process entry
	RemoteTTL time.Duration // lifetime of a shared entry
}

// Cache is a two-level byte cache. The zero value is not usable; use New.
// A nil *Cache is valid and never hits.
type Cache struct {
	local  *ccache.Cache[[]byte]
	remote Remote
	cfg    Config
	logger *slog.Logger
}

// New builds a cache. remote may be nil for a process-local cache only.
func New(cfg Config, remote Remote, logger *slog.Logger) *Cache {
	if cfg.LocalSize <= 0 {
		cfg.LocalSize = 1000
	}
	if cfg.LocalTTL <= 0 {
		cfg.LocalTTL = time.Minute
	}
	if cfg.RemoteTTL <= 0 {
		cfg.RemoteTTL = 10 * time.Minute
	}
	return &Cache{
		local:  ccache.New(ccache.Configure[[]byte]().MaxSize(cfg.LocalSize)),
		remote: remote,
		cfg:    cfg,
		logger: logger,
	}
}

// Get looks the key up locally, then remotely. A remote hit is copied into
// the local layer.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}

	if item := c.local.Get(key); item != nil && !item.Expired() {
		c.logger.Debug("cache hit", "layer", "local", "key", key)
		return item.Value(), true
	}

	if c.remote == nil {
		return nil, false
	}

	value, found, err := c.remote.Get(ctx, key)
	if err != nil {
		c.logger.Warn("cache read failed", "key", key, "error", err.Error())
		return nil, false
	}
	if !found {
		return nil, false
	}

	c.local.Set(key, value, c.cfg.LocalTTL)
	c.logger.Debug("cache hit", "layer", "remote", "key", key)
	return value, true
}

// Set stores value in both layers. Remote failures are logged and dropped.
func (c *Cache) Set(ctx context.Context, key string, value []byte) {
	if c == nil {
		return
	}

	c.local.Set(key, value, c.cfg.LocalTTL)

	if c.remote == nil {
		return
	}
	if err := c.remote.Set(ctx, key, value, c.cfg.RemoteTTL); err != nil {
		c.logger.Warn("cache write failed", "key", key, "error", err.Error())
	}
}

// Close stops the local layer and closes the remote connection.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	c.local.Stop()
	if c.remote != nil {
		return c.remote.Close()
	}
	return nil
}

// Key derives a stable key from a namespace and query parameters. The
// order of parameters and of repeated values does not matter. Keys and
// values are escaped before hashing so a value containing '&' or '='
// cannot pose as a separate parameter.
func Key(namespace string, params url.Values) string {
	sorted := make(url.Values, len(params))
	for k, vs := range params {
		values := append([]string(nil), vs...)
		sort.Strings(values)
		sorted[k] = values
	}

	sum := sha256.Sum256([]byte(sorted.Encode()))
	return namespace + ":" + hex.EncodeToString(sum[:])
}
