package tablestate

// Updater is either a direct value or a function of the previous value.
// Build one with Set or Update.
type Updater[V any] struct {
	value V
	fn    func(prev V) V
}

// Set returns an updater that replaces the previous value
func Set[V any](value V) Updater[V] {
	return Updater[V]{value: value}
}

// Update returns an updater that derives the new value from the previous one
func Update[V any](fn func(prev V) V) Updater[V] {
	return Updater[V]{fn: fn}
}

// Resolve returns the concrete new value
func (u Updater[V]) Resolve(prev V) V {
	if u.fn != nil {
		return u.fn(prev)
	}
	return u.value
}
