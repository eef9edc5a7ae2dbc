// Package consumer tracks the widgets that display a shared resource and
// aggregates their audio volume.
//
// A resource may be shown by several widgets at once. Each widget is a
// Consumer with its own volume and visibility, owned by a Profile that may be
// inactive. The Registry keeps one subscription per consumer and recomputes
// the aggregate whenever membership or any relevant property changes.
package consumer

import "sync"

// Consumer is a widget displaying a resource.
//
// Implementations must be comparable (pointer receivers are typical): the
// registry keys consumers by identity.
type Consumer interface {
	// Volume returns the consumer's volume in [0, 100].
	Volume() int

	// Hidden reports whether the consumer is currently hidden.
	Hidden() bool

	// Profile returns the owning profile. Nil means always active.
	Profile() Profile

	// OnChange registers fn to be called after Volume, Hidden or Profile
	// change. The returned function cancels the registration.
	OnChange(fn func()) (cancel func())
}

// Profile groups consumers that are shown together.
type Profile interface {
	// Active reports whether the profile is currently displayed.
	Active() bool

	// OnChange registers fn to be called after Active changes.
	OnChange(fn func()) (cancel func())
}

// Notifier is a list of change callbacks. The zero value is ready to use.
type Notifier struct {
	mu   sync.Mutex
	next int
	fns  map[int]func()
}

// Subscribe adds fn and returns a function removing it.
func (n *Notifier) Subscribe(fn func()) (cancel func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fns == nil {
		n.fns = make(map[int]func())
	}
	id := n.next
	n.next++
	n.fns[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.fns, id)
			n.mu.Unlock()
		})
	}
}

// Notify calls every subscribed function. Callbacks run without the lock held.
func (n *Notifier) Notify() {
	n.mu.Lock()
	fns := make([]func(), 0, len(n.fns))
	for _, fn := range n.fns {
		fns = append(fns, fn)
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Len returns the number of subscriptions.
func (n *Notifier) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.fns)
}

// Basic is a thread-safe Consumer with settable properties.
type Basic struct {
	mu      sync.Mutex
	volume  int
	hidden  bool
	profile Profile
	changes Notifier
}

// NewBasic returns a visible consumer with the given volume and profile.
func NewBasic(volume int, profile Profile) *Basic {
	return &Basic{volume: volume, profile: profile}
}

func (b *Basic) Volume() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.volume
}

func (b *Basic) Hidden() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hidden
}

func (b *Basic) Profile() Profile {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.profile
}

func (b *Basic) OnChange(fn func()) func() { return b.changes.Subscribe(fn) }

// Subscribers returns the number of live OnChange registrations.
func (b *Basic) Subscribers() int { return b.changes.Len() }

// SetVolume sets the volume and notifies subscribers.
func (b *Basic) SetVolume(v int) {
	b.mu.Lock()
	b.volume = v
	b.mu.Unlock()
	b.changes.Notify()
}

// SetHidden sets the hidden flag and notifies subscribers.
func (b *Basic) SetHidden(hidden bool) {
	b.mu.Lock()
	b.hidden = hidden
	b.mu.Unlock()
	b.changes.Notify()
}

// SetProfile moves the consumer to another profile and notifies subscribers.
func (b *Basic) SetProfile(p Profile) {
	b.mu.Lock()
	b.profile = p
	b.mu.Unlock()
	b.changes.Notify()
}

// BasicProfile is a thread-safe Profile with a settable active flag.
type BasicProfile struct {
	mu      sync.Mutex
	active  bool
	changes Notifier
}

// NewBasicProfile returns a profile in the given state.
func NewBasicProfile(active bool) *BasicProfile {
	return &BasicProfile{active: active}
}

func (p *BasicProfile) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

func (p *BasicProfile) OnChange(fn func()) func() { return p.changes.Subscribe(fn) }

// Subscribers returns the number of live OnChange registrations.
func (p *BasicProfile) Subscribers() int { return p.changes.Len() }

// SetActive sets the active flag and notifies subscribers.
func (p *BasicProfile) SetActive(active bool) {
	p.mu.Lock()
	p.active = active
	p.mu.Unlock()
	p.changes.Notify()
}
