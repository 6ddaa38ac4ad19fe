// Package cache stores rendered graph images so repeated exports of an
// unchanged graph skip Graphviz.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a sharded directory, for the CLI
//   - [RedisCache]: entries in Redis, shared by every process using the server
//   - [NullCache]: stores nothing, used when caching is disabled
//
// # Keys
//
// Rendered output depends only on the DOT source and the output format, so
// [ArtifactKey] derives keys from a hash of the DOT source:
//
//	key := cache.ArtifactKey(cache.Hash([]byte(dot)), "png")
//	if data, ok, _ := c.Get(ctx, key); ok {
//	    return data, nil
//	}
//
// Wrap a cache with [Instrument] to report hits, misses and writes to the
// registered observability hooks.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/matzehuels/depgraph/pkg/observability"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the entry for key. A missing or expired entry is a miss,
	// not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Hash returns the hex SHA-256 digest of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ArtifactKey returns the key of a rendered image, given the hash of its DOT
// source and the output format: "artifact:<format>:<hash>".
func ArtifactKey(dotHash, format string) string {
	return "artifact:" + strings.ToLower(format) + ":" + dotHash
}

// Instrument wraps c so that lookups and writes are reported to
// [observability.Cache]. The key type passed to the hooks is the key prefix
// before the first colon.
func Instrument(c Cache) Cache {
	return &instrumented{Cache: c}
}

type instrumented struct {
	Cache
}

func (c *instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, hit, err := c.Cache.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if hit {
		observability.Cache().OnCacheHit(ctx, keyType(key))
	} else {
		observability.Cache().OnCacheMiss(ctx, keyType(key))
	}
	return data, hit, nil
}

func (c *instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.Cache.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, keyType(key), len(data))
	return nil
}

func keyType(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return "unknown"
}
