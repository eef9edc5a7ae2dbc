// Package manager shares resources between widgets and owns their disposal.
//
// Widgets Acquire a resource by reference and Release it when they stop
// displaying it. References are resolved first, so every spelling of one file
// maps to one Resource. Releasing never disposes: unreferenced resources are
// disposed by Sweep once idle, by Evict, or by Close.
package manager

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/gogpu/imgres"
	"github.com/gogpu/imgres/cache"
	"github.com/gogpu/imgres/consumer"
	"github.com/gogpu/imgres/source"
)

// ErrClosed is returned by calls made after Close.
var ErrClosed = errors.New("manager: closed")

type entry struct {
	res       *imgres.Resource
	refs      int
	idleSince time.Time
}

// Manager is a registry of shared resources. It is safe for concurrent use.
type Manager struct {
	opts  options
	group singleflight.Group

	mu      sync.Mutex
	entries map[string]*entry
	watch   *watcher
	closed  bool

	opens     atomic.Uint64
	evictions atomic.Uint64
}

// New creates an empty Manager.
func New(opts ...Option) *Manager {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Manager{opts: o, entries: make(map[string]*entry)}
}

// Acquire returns the shared resource for ref, opening it on first use, and
// registers c as one of its consumers. c may be nil.
//
// Concurrent first acquisitions of one reference open it once. A resource
// that failed to load is shared like any other; check Loaded. The error is
// non-nil only when ref cannot be resolved or the manager is closed.
func (m *Manager) Acquire(ctx context.Context, ref string, c consumer.Consumer) (*imgres.Resource, error) {
	key, err := source.Resolve(ref)
	if err != nil {
		return nil, err
	}

	for {
		m.mu.Lock()
		if m.closed {
			m.mu.Unlock()
			return nil, ErrClosed
		}
		if e, ok := m.entries[key]; ok {
			e.refs++
			m.mu.Unlock()
			if m.attach(e, c) {
				return e.res, nil
			}
			// Disposed after the lookup: drop the stale entry and open again.
			m.mu.Lock()
			if m.entries[key] == e {
				delete(m.entries, key)
			}
			m.mu.Unlock()
			continue
		}
		m.mu.Unlock()

		if _, err, _ := m.group.Do(key, func() (any, error) {
			return m.open(ctx, key)
		}); err != nil {
			return nil, err
		}
		// The entry is registered; loop to take a reference. It may already be
		// gone if it was evicted in between, then it is opened again.
	}
}

// attach registers c with the resource of e. It reports false when the
// resource has been disposed.
func (m *Manager) attach(e *entry, c consumer.Consumer) bool {
	if c == nil {
		return !e.res.Disposed()
	}
	return !errors.Is(e.res.AddConsumer(c), imgres.ErrDisposed)
}

// open creates and registers the resource for key.
func (m *Manager) open(ctx context.Context, key string) (*imgres.Resource, error) {
	m.mu.Lock()
	if e, ok := m.entries[key]; ok {
		m.mu.Unlock()
		return e.res, nil
	}
	m.mu.Unlock()

	res := imgres.OpenContext(ctx, key, m.opts.resource...)
	m.opens.Add(1)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		res.Dispose()
		return nil, ErrClosed
	}
	m.entries[key] = &entry{res: res, idleSince: m.opts.now()}
	if m.watch != nil && !source.IsRemote(key) && !source.IsVideo(key) {
		m.watch.add(key)
	}
	return res, nil
}

// Release drops one reference to ref taken by Acquire and removes c from the
// resource's consumers. The resource stays open.
func (m *Manager) Release(ref string, c consumer.Consumer) {
	key, err := source.Resolve(ref)
	if err != nil {
		return
	}
	m.mu.Lock()
	e, ok := m.entries[key]
	if ok && e.refs > 0 {
		e.refs--
		if e.refs == 0 {
			e.idleSince = m.opts.now()
		}
	}
	m.mu.Unlock()

	if ok && c != nil {
		e.res.RemoveConsumer(c)
	}
}

// Lookup returns the resource for ref without taking a reference.
func (m *Manager) Lookup(ref string) (*imgres.Resource, bool) {
	key, err := source.Resolve(ref)
	if err != nil {
		return nil, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	return e.res, true
}

// Refs returns the number of references held on ref.
func (m *Manager) Refs(ref string) int {
	key, err := source.Resolve(ref)
	if err != nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[key]; ok {
		return e.refs
	}
	return 0
}

// Len returns the number of open resources.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Evict disposes the resource for ref regardless of references.
// Returns true if it was open.
func (m *Manager) Evict(ref string) bool {
	key, err := source.Resolve(ref)
	if err != nil {
		return false
	}
	m.mu.Lock()
	e, ok := m.entries[key]
	if ok {
		delete(m.entries, key)
	}
	m.mu.Unlock()

	if ok {
		m.dispose(key, e.res)
	}
	return ok
}

// Sweep disposes resources that have had no references for the idle
// timeout. Returns the number disposed.
func (m *Manager) Sweep() int {
	now := m.opts.now()
	var victims []*entry
	var keys []string

	m.mu.Lock()
	for key, e := range m.entries {
		if e.refs == 0 && now.Sub(e.idleSince) >= m.opts.idle {
			victims = append(victims, e)
			keys = append(keys, key)
			delete(m.entries, key)
		}
	}
	m.mu.Unlock()

	for i, e := range victims {
		m.dispose(keys[i], e.res)
	}
	return len(victims)
}

// DisposeCPUAssets drops the CPU frame caches of every resource.
func (m *Manager) DisposeCPUAssets() {
	for _, r := range m.resources() {
		r.DisposeCPUCacheAssets()
	}
}

// DisposeGPUAssets destroys the cached textures of every resource. Call it
// on the owner of the rendering context that is being torn down.
func (m *Manager) DisposeGPUAssets() {
	for _, r := range m.resources() {
		r.DisposeGPUCacheAssets()
	}
}

// Close disposes every resource and stops watching. Later Acquire calls fail
// with ErrClosed. Close is idempotent.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	entries := m.entries
	m.entries = make(map[string]*entry)
	w := m.watch
	m.watch = nil
	m.mu.Unlock()

	for key, e := range entries {
		m.dispose(key, e.res)
	}
	if w != nil {
		return w.close()
	}
	return nil
}

func (m *Manager) resources() []*imgres.Resource {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*imgres.Resource, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.res)
	}
	return out
}

func (m *Manager) dispose(key string, r *imgres.Resource) {
	r.Dispose()
	m.evictions.Add(1)
	imgres.Logger().Debug("manager: resource disposed", "ref", key)
	if m.opts.onEvict != nil {
		m.opts.onEvict(key)
	}
}

// Stats is a snapshot of the manager's state.
type Stats struct {
	// Resources is the number of open resources.
	Resources int
	// Failed is the number of open resources that did not load.
	Failed int
	// Referenced is the number of resources with at least one reference.
	Referenced int
	// Opens is the number of resources opened so far.
	Opens uint64
	// Evictions is the number of resources disposed so far.
	Evictions uint64
	// Cache sums the CPU frame cache statistics of the open resources.
	Cache cache.Stats
}

// Stats returns the current statistics.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := Stats{
		Resources: len(m.entries),
		Opens:     m.opens.Load(),
		Evictions: m.evictions.Load(),
	}
	for _, e := range m.entries {
		if !e.res.Loaded() {
			s.Failed++
		}
		if e.refs > 0 {
			s.Referenced++
		}
		s.Cache = s.Cache.Add(e.res.CacheStats())
	}
	return s
}
