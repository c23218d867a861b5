// Package cache stores rendered artifacts keyed by content hash.
//
// Rendering a diagram is deterministic in its DOT source, the output format
// and the icon directory, so those three inputs form the cache key. A warm
// cache lets `render` skip Graphviz entirely for unchanged topologies.
//
// # Backends
//
//   - [FileCache]: files under the user cache directory (the CLI default)
//   - [NullCache]: stores nothing (--no-cache)
//   - [RedisCache]: a shared Redis instance (redis:// or rediss:// URLs)
//   - [MongoCache]: a MongoDB collection (mongodb:// or mongodb+srv:// URLs)
//
// [Open] picks the backend from a URL.
package cache

import (
	"context"
	"time"
)

// DefaultTTL is how long rendered artifacts stay cached.
const DefaultTTL = 7 * 24 * time.Hour

// Cache is a byte store with per-entry expiry.
// Implementations are safe for concurrent use.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer derives cache keys.
type Keyer interface {
	// ArtifactKey returns the key of one rendered artifact.
	ArtifactKey(dotHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts are the render inputs besides the DOT source.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	IconsDir string `json:"icons_dir,omitempty"`
	// Assets fingerprints the icon files the DOT source references.
	Assets string `json:"assets,omitempty"`
}

// Clearer is implemented by backends that can drop all artifact entries.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}
