package xapiand

import "sync"

// registry maps keys to lazily created values. Each key has its own lock, so
// a slow open of one key does not block the others, and a value is created at
// most once while it stays registered.
type registry[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*registryEntry[V]
}

type registryEntry[V any] struct {
	mu    sync.Mutex
	val   V
	ready bool
}

func newRegistry[K comparable, V any]() *registry[K, V] {
	return &registry[K, V]{entries: make(map[K]*registryEntry[V])}
}

// getOrCreate returns the value stored under key. If there is none, open is
// called while holding the key's lock and its result is stored. A failed open
// leaves the key absent. created reports whether this call ran open.
func (r *registry[K, V]) getOrCreate(key K, open func() (V, error)) (v V, created bool, err error) {
	for {
		r.mu.Lock()
		e, ok := r.entries[key]
		if !ok {
			e = &registryEntry[V]{}
			r.entries[key] = e
		}
		r.mu.Unlock()

		e.mu.Lock()
		if e.ready {
			v = e.val
			e.mu.Unlock()
			return v, false, nil
		}
		if !r.current(key, e) {
			// Removed while we waited.
			e.mu.Unlock()
			continue
		}
		v, err = open()
		if err != nil {
			r.mu.Lock()
			if r.entries[key] == e {
				delete(r.entries, key)
			}
			r.mu.Unlock()
			e.mu.Unlock()
			var zero V
			return zero, false, err
		}
		e.val, e.ready = v, true
		e.mu.Unlock()
		return v, true, nil
	}
}

func (r *registry[K, V]) current(key K, e *registryEntry[V]) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries[key] == e
}

// get returns the value under key without creating one.
func (r *registry[K, V]) get(key K) (V, bool) {
	r.mu.Lock()
	e, ok := r.entries[key]
	r.mu.Unlock()
	if !ok {
		var zero V
		return zero, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.val, e.ready
}

// remove evicts key so that the next getOrCreate opens it again.
func (r *registry[K, V]) remove(key K) (V, bool) {
	r.mu.Lock()
	e, ok := r.entries[key]
	delete(r.entries, key)
	r.mu.Unlock()
	if !ok {
		var zero V
		return zero, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.val, e.ready
}

// removeIf evicts key only while it still holds v.
func (r *registry[K, V]) removeIf(key K, match func(V) bool) bool {
	r.mu.Lock()
	e, ok := r.entries[key]
	r.mu.Unlock()
	if !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.ready || !match(e.val) {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.entries[key] != e {
		return false
	}
	delete(r.entries, key)
	return true
}

// drain empties the registry and returns every stored value.
func (r *registry[K, V]) drain() []V {
	r.mu.Lock()
	entries := r.entries
	r.entries = make(map[K]*registryEntry[V])
	r.mu.Unlock()

	vals := make([]V, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		if e.ready {
			vals = append(vals, e.val)
		}
		e.mu.Unlock()
	}
	return vals
}

// len returns the number of stored values.
func (r *registry[K, V]) len() int {
	r.mu.Lock()
	entries := make([]*registryEntry[V], 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	r.mu.Unlock()

	n := 0
	for _, e := range entries {
		e.mu.Lock()
		if e.ready {
			n++
		}
		e.mu.Unlock()
	}
	return n
}
