// Package compose reconstructs full animation frames from a frame codec.
//
// A Compositor owns one canvas buffer. Frames are drawn onto it in order,
// applying each frame's disposal before its successor is drawn. The canvas
// never leaves the package by reference: Frame lends it to the caller for the
// duration of a callback and Copy returns an independent image.
package compose

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/imgres/codec"
	"github.com/gogpu/imgres/internal/logging"
	"github.com/gogpu/imgres/internal/pixel"
)

// ErrClosed is returned by a closed Compositor.
var ErrClosed = errors.New("compose: closed")

// none marks an empty canvas.
const none = -1

// Compositor composites the frames of one codec. It is not safe for
// concurrent use; the owning resource serializes access.
type Compositor struct {
	codec  codec.Codec
	pool   *pixel.Pool
	canvas *image.NRGBA

	// saved holds the canvas as it was before the last drawn frame, when that
	// frame is disposed with DisposePrevious.
	saved *image.NRGBA

	last  int
	draws int
}

// New returns a Compositor over c. Scratch buffers are taken from pool, which
// may be nil.
func New(c codec.Codec, pool *pixel.Pool) *Compositor {
	if pool == nil {
		pool = pixel.NewPool(2)
	}
	size := c.Size()
	return &Compositor{
		codec:  c,
		pool:   pool,
		canvas: pool.Get(size.X, size.Y),
		last:   none,
	}
}

// Last returns the index of the frame currently on the canvas, or -1.
func (c *Compositor) Last() int { return c.last }

// Draws returns how many frames have been decoded onto the canvas so far.
func (c *Compositor) Draws() int { return c.draws }

// Frame composites frame f and calls fn with the canvas. The canvas is only
// valid during fn and must not be modified or retained.
func (c *Compositor) Frame(f int, fn func(canvas *image.NRGBA)) error {
	if err := c.render(f); err != nil {
		return err
	}
	fn(c.canvas)
	return nil
}

// Copy composites frame f and returns an independent copy in format pf.
func (c *Compositor) Copy(f int, pf pixel.Format) (image.Image, error) {
	if err := c.render(f); err != nil {
		return nil, err
	}
	return pixel.Copy(c.canvas, pf), nil
}

func (c *Compositor) render(f int) error {
	if c.canvas == nil {
		return ErrClosed
	}
	n := c.codec.FrameCount()
	if f < 0 || f >= n {
		return fmt.Errorf("compose: %w: %d of %d", codec.ErrFrameIndex, f, n)
	}
	if f == c.last {
		return nil
	}

	// Continue from the canvas when moving forward, unless a later
	// independent frame lets us skip ahead.
	start := c.last + 1
	if ind := codec.Independent(c.codec, f); c.last == none || f < c.last || ind > start {
		c.reset()
		start = ind
	}

	for i := start; i <= f; i++ {
		if c.last != none {
			c.dispose(c.last)
		}
		fi := c.codec.Frame(i)
		if fi.Disposal == codec.DisposePrevious {
			c.snapshot()
		}
		if err := c.codec.DecodeFrame(i, c.canvas); err != nil {
			// A partly drawn canvas matches no frame; start over next time.
			c.reset()
			logging.Logger().Warn("compose: decode failed", "frame", i, "error", err)
			return fmt.Errorf("compose: frame %d: %w", i, err)
		}
		c.last = i
		c.draws++
	}
	logging.Logger().Debug("compose: frame ready", "frame", f, "from", start)
	return nil
}

// dispose applies frame i's disposal to the canvas.
func (c *Compositor) dispose(i int) {
	fi := c.codec.Frame(i)
	switch fi.Disposal {
	case codec.DisposeBackground:
		clearRect(c.canvas, fi.Bounds)
	case codec.DisposePrevious:
		if c.saved != nil {
			copy(c.canvas.Pix, c.saved.Pix)
		} else {
			clearRect(c.canvas, fi.Bounds)
		}
	}
	c.release()
}

func (c *Compositor) snapshot() {
	if c.saved == nil {
		c.saved = c.pool.Get(c.canvas.Rect.Dx(), c.canvas.Rect.Dy())
	}
	copy(c.saved.Pix, c.canvas.Pix)
}

func (c *Compositor) release() {
	if c.saved != nil {
		c.pool.Put(c.saved)
		c.saved = nil
	}
}

func (c *Compositor) reset() {
	pixel.Clear(c.canvas)
	c.release()
	c.last = none
}

// Reset clears the canvas so the next request composites from scratch.
func (c *Compositor) Reset() {
	if c.canvas != nil {
		c.reset()
	}
}

// Close returns the buffers to the pool. The codec is not closed.
func (c *Compositor) Close() {
	if c.canvas == nil {
		return
	}
	c.release()
	c.pool.Put(c.canvas)
	c.canvas = nil
	c.last = none
}

// clearRect clears r to transparent. An empty r clears the whole canvas.
func clearRect(img *image.NRGBA, r image.Rectangle) {
	if r.Empty() {
		pixel.Clear(img)
		return
	}
	r = r.Intersect(img.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		i := img.PixOffset(r.Min.X, y)
		clear(img.Pix[i : i+r.Dx()*pixel.BytesPerPixel])
	}
}
