// Package cache stores rendered artifacts keyed by the content they were
// rendered from.
//
// Keys are derived from the DOT source and the output parameters, so a cached
// artifact stays valid for as long as its key exists.
//
// Three implementations are provided:
//
//   - [FileCache] for the CLI, persisted under the user cache directory
//   - [MemoryCache] for the server, bounded by entry count
//   - [NullCache] when caching is disabled
package cache

import (
	"context"
	"os"
	"path/filepath"
	"time"
)

// appName names the cache subdirectory.
const appName = "fourcolor"

// Cache is a byte store with optional expiry.
type Cache interface {
	// Get returns the data for key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases resources held by the cache.
	Close() error
}

// ArtifactKey identifies the output of rendering dot to format at scale.
func ArtifactKey(dot, format string, scale float64) string {
	return hashKey("artifact", dot, format, scale)
}

// GetOrRender returns the cached artifact for key, or calls render and
// stores its result. Cache read and write failures fall through to render.
func GetOrRender(ctx context.Context, c Cache, key string, ttl time.Duration, render func() ([]byte, error)) ([]byte, bool, error) {
	if data, ok, err := c.Get(ctx, key); err == nil && ok {
		return data, true, nil
	}
	data, err := render()
	if err != nil {
		return nil, false, err
	}
	_ = c.Set(ctx, key, data, ttl)
	return data, false, nil
}

// DefaultDir returns the directory used by the CLI's file cache,
// $XDG_CACHE_HOME/fourcolor or its platform equivalent.
func DefaultDir() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName), nil
}
