// Package cache stores raw image source bytes fetched over the network.
//
// Only the undecoded source is cached. Glyph grids are always recomputed
// from scratch, so nothing derived from a viewport ever lands here.
//
// Three backends implement [Cache]:
//   - [FileCache]: JSON entry files under a directory (CLI default, ~/.cache/asciifolio)
//   - [RedisCache]: shared cache for the page server
//   - [NullCache]: caching disabled
package cache

import (
	"context"
	"time"
)

// TTLImage is the default lifetime of a cached image source.
const TTLImage = 24 * time.Hour

// Cache is a byte store with per-entry expiration.
type Cache interface {
	// Get returns the cached bytes and whether the key was present and fresh.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer derives cache keys.
type Keyer interface {
	// ImageKey returns the key for the raw bytes of an image source.
	ImageKey(src string) string
}

// DefaultKeyer hashes the image source into an "image:" key.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ImageKey returns "image:<sha256(src)>".
func (DefaultKeyer) ImageKey(src string) string {
	return hashKey("image", src)
}
