package cache

import "fmt"

// Keyer builds cache keys. All backends share the same key layout.
type Keyer interface {
	// HTTPKey is the key of an API response stored by the client for
	// namespace.
	HTTPKey(namespace, key string) string
}

// DefaultKeyer is the standard key layout.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return fmt.Sprintf("http:%s:%s", namespace, key)
}
