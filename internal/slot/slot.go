// Package slot implements the disposable cell that holds one cached frame.
package slot

import (
	"sync"
	"sync/atomic"
)

// Image is a cached frame image.
//
// Release frees whatever the image holds. onOwner reports whether the caller
// runs on the execution context that owns the image; context-bound images
// (GPU textures) must defer their destruction to the owner when it is false.
type Image interface {
	Release(onOwner bool)
}

// Slot holds at most one image plus its pixel dimensions.
//
// Once disposed, a Slot drops every later Store: the incoming image is
// released instead of kept, so a slow decode cannot resurrect a slot that was
// torn down concurrently.
//
// Slot is safe for concurrent use.
type Slot struct {
	disposed atomic.Bool

	mu     sync.Mutex
	img    Image
	width  int
	height int
}

// New returns an empty slot.
func New() *Slot {
	return &Slot{}
}

// Load returns the stored image and its size.
// ok is false if the slot is empty or disposed.
func (s *Slot) Load() (img Image, width, height int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.img == nil {
		return nil, 0, 0, false
	}
	return s.img, s.width, s.height, true
}

// Store replaces the slot content with img and releases the previous image.
// Returns false, releasing img, if the slot was already disposed.
func (s *Slot) Store(img Image, width, height int, onOwner bool) bool {
	s.mu.Lock()
	if s.disposed.Load() {
		s.mu.Unlock()
		if img != nil {
			img.Release(onOwner)
		}
		return false
	}
	old := s.img
	s.img, s.width, s.height = img, width, height
	s.mu.Unlock()

	if old != nil && old != img {
		old.Release(onOwner)
	}
	return true
}

// Invalidate empties the slot and releases its image. The slot stays usable.
func (s *Slot) Invalidate(onOwner bool) {
	s.mu.Lock()
	old := s.img
	s.img, s.width, s.height = nil, 0, 0
	s.mu.Unlock()

	if old != nil {
		old.Release(onOwner)
	}
}

// Dispose releases the image and marks the slot dead.
// Only the first call has an effect; it returns true.
func (s *Slot) Dispose(onOwner bool) bool {
	if !s.disposed.CompareAndSwap(false, true) {
		return false
	}
	s.Invalidate(onOwner)
	return true
}

// Disposed reports whether Dispose has been called.
func (s *Slot) Disposed() bool {
	return s.disposed.Load()
}

// Set is a fixed-length array of slots, one per animation frame.
type Set struct {
	slots []*Slot
}

// NewSet allocates n empty slots.
func NewSet(n int) *Set {
	slots := make([]*Slot, n)
	for i := range slots {
		slots[i] = New()
	}
	return &Set{slots: slots}
}

// Len returns the number of slots.
func (s *Set) Len() int {
	return len(s.slots)
}

// At returns slot i, or nil if i is out of range.
func (s *Set) At(i int) *Slot {
	if i < 0 || i >= len(s.slots) {
		return nil
	}
	return s.slots[i]
}

// Dispose disposes every slot in the set.
func (s *Set) Dispose(onOwner bool) {
	for _, sl := range s.slots {
		sl.Dispose(onOwner)
	}
}
