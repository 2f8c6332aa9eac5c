package connshare

// coalesce returns def when v is the zero value of T - otherwise v.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}

// identity is the default Normalize/Clone for value-typed configurations.
func identity[K any](k K) K { return k }
