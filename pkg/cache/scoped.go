package cache

// ScopedKeyer wraps a Keyer with a prefix so several sites can share one
// redis instance without colliding.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "folio:zach:")
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

// ImageKey generates a prefixed key for an image source.
func (k *ScopedKeyer) ImageKey(src string) string {
	return k.prefix + k.inner.ImageKey(src)
}
