package pixel

import (
	"image"
	"sync"
)

// Pool is a thread-safe pool for reusing composite buffers.
//
// Pool groups buffers by their dimensions so that restore-previous snapshots
// and scaled frames of one resource recycle the same allocations.
type Pool struct {
	mu      sync.Mutex
	buckets map[image.Point][]*image.NRGBA
	maxSize int // max buffers per bucket
}

// NewPool creates a new buffer pool with the given maximum buffers per bucket.
// A maxPerBucket of 0 means unlimited (use with caution).
func NewPool(maxPerBucket int) *Pool {
	return &Pool{
		buckets: make(map[image.Point][]*image.NRGBA),
		maxSize: maxPerBucket,
	}
}

// Get retrieves a buffer of the given size, fully transparent.
func (p *Pool) Get(width, height int) *image.NRGBA {
	key := image.Point{X: width, Y: height}

	p.mu.Lock()
	bucket := p.buckets[key]
	if len(bucket) > 0 {
		buf := bucket[len(bucket)-1]
		p.buckets[key] = bucket[:len(bucket)-1]
		p.mu.Unlock()

		Clear(buf)
		return buf
	}
	p.mu.Unlock()

	return image.NewNRGBA(image.Rect(0, 0, width, height))
}

// Put returns a buffer to the pool. The caller must not use buf afterwards.
// If buf is nil or the bucket is at max capacity, the buffer is discarded.
func (p *Pool) Put(buf *image.NRGBA) {
	if buf == nil {
		return
	}
	key := buf.Rect.Size()

	p.mu.Lock()
	defer p.mu.Unlock()

	bucket := p.buckets[key]
	if p.maxSize > 0 && len(bucket) >= p.maxSize {
		return
	}
	p.buckets[key] = append(bucket, buf)
}

// Len returns the number of pooled buffers across all sizes.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for _, b := range p.buckets {
		n += len(b)
	}
	return n
}

// Clear zeroes every pixel of buf (transparent black).
func Clear(buf *image.NRGBA) {
	clear(buf.Pix)
}

// Clone returns a deep copy of buf.
func Clone(buf *image.NRGBA) *image.NRGBA {
	out := &image.NRGBA{
		Pix:    make([]uint8, len(buf.Pix)),
		Stride: buf.Stride,
		Rect:   buf.Rect,
	}
	copy(out.Pix, buf.Pix)
	return out
}
