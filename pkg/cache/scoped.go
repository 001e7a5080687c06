package cache

// ScopedKeyer wraps a Keyer with a prefix so that several deployments can
// share one Redis database without colliding.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "figstyle:staging:")
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

// TemplateKey generates a prefixed template key.
func (k *ScopedKeyer) TemplateKey(figureHash, schemaHash string, opts TemplateKeyOpts) string {
	return k.prefix + k.inner.TemplateKey(figureHash, schemaHash, opts)
}
