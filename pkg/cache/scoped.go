package cache

// ScopedKeyer wraps a Keyer with a prefix so independent analyses can share
// one cache backend without key collisions.
//
// Example usage:
//
//	// Keys scoped to one trajectory ensemble
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "run:mdtraj01:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// HTTPKey generates a prefixed key for HTTP response caching.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// TableKey generates a prefixed key for loaded-table caching.
func (k *ScopedKeyer) TableKey(source, name string, opts TableKeyOpts) string {
	return k.prefix + k.inner.TableKey(source, name, opts)
}

// ArtifactKey generates a prefixed key for rendered-artifact caching.
func (k *ScopedKeyer) ArtifactKey(figureHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(figureHash, opts)
}
