package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation.
// The CLI scopes keys when a custom API endpoint is configured so that
// responses from a mirror never mix with the official ones.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "mirror:meta.example.org:")
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
