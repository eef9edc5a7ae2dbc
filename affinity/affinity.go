// Package affinity routes work to the execution context that owns a resource.
//
// Rendering contexts (GL, Vulkan, D3D) bind their objects to one thread.
// Objects created there must also be destroyed there, while invalidation may
// be triggered from any goroutine. An Executor is the handle identifying that
// owning context; RunOnOwner is the only way context-bound work is executed.
//
// Example:
//
//	loop := affinity.NewLoop()
//
//	// render goroutine, once per frame:
//	loop.Drain()
//
//	// any goroutine:
//	loop.RunOnOwner(func() { tex.Destroy() })
package affinity

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
)

// Executor runs actions on the owning execution context.
type Executor interface {
	// RunOnOwner executes fn on the owner, either inline or by queuing it
	// for the owner to run later. It never blocks waiting for fn.
	RunOnOwner(fn func())
}

// OwnerChecker is implemented by executors that can tell whether the caller
// is currently running on the owner.
type OwnerChecker interface {
	OnOwner() bool
}

// Inline is an Executor that runs every action immediately on the caller.
// Use it for CPU-only contexts and tests.
type Inline struct{}

// RunOnOwner implements Executor.
func (Inline) RunOnOwner(fn func()) { fn() }

// OnOwner implements OwnerChecker.
func (Inline) OnOwner() bool { return true }

// Loop is an Executor backed by a work queue that the owner drains.
//
// The goroutine that calls Drain is the owner; render loops drain from one
// goroutine locked to the context's thread. Until the first Drain no caller
// is the owner.
//
// Actions posted from any goroutine run, in order, on the next Drain.
// Actions posted by an action that Drain is running execute in the same Drain.
//
// Loop is safe for concurrent use.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	closed bool
	owner  atomic.Uint64
}

// NewLoop creates an empty Loop.
func NewLoop() *Loop {
	return &Loop{}
}

// RunOnOwner implements Executor.
// After Close, actions run inline so nothing posted late is lost.
func (l *Loop) RunOnOwner(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		fn()
		return
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
}

// OnOwner implements OwnerChecker. It reports whether the caller is the
// goroutine that last called Drain.
func (l *Loop) OnOwner() bool {
	id := l.owner.Load()
	return id != 0 && id == goroutineID()
}

// Drain runs queued actions until the queue is empty and records the caller
// as the owner. Returns the number of actions executed.
func (l *Loop) Drain() int {
	l.owner.Store(goroutineID())
	n := 0
	for {
		l.mu.Lock()
		work := l.queue
		l.queue = nil
		l.mu.Unlock()

		if len(work) == 0 {
			return n
		}
		for _, fn := range work {
			fn()
		}
		n += len(work)
	}
}

// Pending returns the number of queued actions.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// Close drains the queue on the caller, which must be the owner, and makes
// later RunOnOwner calls run inline. Close is idempotent.
func (l *Loop) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
	l.Drain()
}

// Run executes fn on the owner: inline when ex reports the caller is the
// owner (or ex is nil), otherwise through RunOnOwner.
func Run(ex Executor, onOwner bool, fn func()) {
	if ex == nil || onOwner {
		fn()
		return
	}
	if c, ok := ex.(OwnerChecker); ok && c.OnOwner() {
		fn()
		return
	}
	ex.RunOnOwner(fn)
}

// goroutineID returns the id of the calling goroutine, parsed from the
// "goroutine N [" header of its stack trace.
func goroutineID() uint64 {
	var buf [64]byte
	b := buf[:runtime.Stack(buf[:], false)]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i >= 0 {
		b = b[:i]
	}
	id, _ := strconv.ParseUint(string(b), 10, 64)
	return id
}
