package cache

// ScopedKeyer prefixes every key of an inner Keyer, giving each caller its
// own namespace in a shared cache.
//
//	// Plans generated by the HTTP API live apart from CLI entries
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "api:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner with prefix. A nil inner uses DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) LayoutKey(catalogHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(catalogHash, opts)
}

func (k *ScopedKeyer) PlanKey(catalogHash string, opts PlanKeyOpts) string {
	return k.prefix + k.inner.PlanKey(catalogHash, opts)
}

func (k *ScopedKeyer) ArtifactKey(planHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(planHash, opts)
}
