// Package cache provides pluggable byte caches and cache-key builders for the
// load, layout and render stages of the figure pipeline.
package cache

import (
	"context"
	"time"
)

// Default time-to-live per pipeline stage. Source tables change when the
// upstream analysis reruns; rendered artifacts are immutable for a given key.
const (
	TTLHTTP     = 6 * time.Hour
	TTLTable    = 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache stores opaque byte payloads under string keys. Implementations must
// be safe for concurrent use.
type Cache interface {
	// Get returns the cached payload and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores the payload. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// Keyer builds cache keys for the pipeline stages. Keys must be stable across
// processes so warm caches survive restarts.
type Keyer interface {
	// HTTPKey identifies a raw fetched document by namespace and location.
	HTTPKey(namespace, key string) string

	// TableKey identifies a loaded statistics table.
	TableKey(source, name string, opts TableKeyOpts) string

	// ArtifactKey identifies a rendered artifact for a figure hash.
	ArtifactKey(figureHash string, opts ArtifactKeyOpts) string
}

// TableKeyOpts captures the load options that change a table's content.
type TableKeyOpts struct {
	Columns []string
}

// ArtifactKeyOpts captures the render options that change the output bytes.
type ArtifactKeyOpts struct {
	Format string
	Cell   float64
	Scale  float64
}

// DefaultKeyer is the standard key builder. HTTP keys stay human-readable so
// cache directories can be inspected; the other stages hash their options.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard key builder.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// HTTPKey generates a key for HTTP response caching.
func (k *DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// TableKey generates a key for loaded-table caching.
func (k *DefaultKeyer) TableKey(source, name string, opts TableKeyOpts) string {
	return hashKey("table", source, name, opts)
}

// ArtifactKey generates a key for rendered-artifact caching.
func (k *DefaultKeyer) ArtifactKey(figureHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", figureHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
