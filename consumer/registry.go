package consumer

import "sync"

// entry holds the subscriptions of one registered consumer.
type entry struct {
	profile       Profile
	cancelSelf    func()
	cancelProfile func()
}

func (e *entry) detach() {
	e.cancelSelf()
	if e.cancelProfile != nil {
		e.cancelProfile()
	}
}

// Registry is a set of consumers with an aggregate volume. Safe for
// concurrent use.
type Registry struct {
	mu      sync.Mutex
	entries map[Consumer]*entry
	volume  int
	apply   func(volume int)
	closed  bool
}

// NewRegistry returns an empty registry. apply, if non-nil, is called with
// the aggregate volume after every recomputation. Calls to apply are
// serialized and must not call back into the registry.
func NewRegistry(apply func(volume int)) *Registry {
	return &Registry{entries: make(map[Consumer]*entry), apply: apply}
}

// Add registers c. Adding a consumer already present is a no-op.
// It reports whether c was added.
func (r *Registry) Add(c Consumer) bool {
	if c == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false
	}
	if _, ok := r.entries[c]; ok {
		return false
	}

	e := &entry{}
	e.cancelSelf = c.OnChange(func() { r.consumerChanged(c) })
	r.entries[c] = e
	r.watchProfile(c, e)
	r.recomputeLocked()
	return true
}

// Remove unregisters c and detaches its subscriptions. It reports whether c
// was present.
func (r *Registry) Remove(c Consumer) bool {
	if c == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[c]
	if !ok {
		return false
	}
	delete(r.entries, c)
	e.detach()
	r.recomputeLocked()
	return true
}

// Contains reports whether c is registered.
func (r *Registry) Contains(c Consumer) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[c]
	return ok
}

// Len returns the number of registered consumers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Volume returns the current aggregate volume.
func (r *Registry) Volume() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.volume
}

// Close detaches every subscription and empties the registry. Later Add
// calls are ignored. Close is idempotent.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	for c, e := range r.entries {
		e.detach()
		delete(r.entries, c)
	}
	r.volume = 0
}

func (r *Registry) consumerChanged(c Consumer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[c]
	if !ok {
		// Notification raced with Remove.
		return
	}
	if c.Profile() != e.profile {
		if e.cancelProfile != nil {
			e.cancelProfile()
			e.cancelProfile = nil
		}
		r.watchProfile(c, e)
	}
	r.recomputeLocked()
}

func (r *Registry) profileChanged() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.closed {
		r.recomputeLocked()
	}
}

func (r *Registry) watchProfile(c Consumer, e *entry) {
	e.profile = c.Profile()
	if e.profile != nil {
		e.cancelProfile = e.profile.OnChange(r.profileChanged)
	}
}

// recomputeLocked sets the aggregate to the loudest consumer that is visible
// and whose profile is active, or zero.
func (r *Registry) recomputeLocked() {
	v := 0
	for c, e := range r.entries {
		if c.Hidden() {
			continue
		}
		if e.profile != nil && !e.profile.Active() {
			continue
		}
		v = max(v, c.Volume())
	}
	r.volume = v
	if r.apply != nil {
		r.apply(v)
	}
}
