package imgres

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"github.com/gogpu/imgres/internal/pixel"
	"github.com/gogpu/imgres/internal/slot"
	"github.com/gogpu/imgres/vector"
)

// RenderRaster calls fn with the current frame scaled to width×height.
//
// Without a GPU context the frame is a CPU image from the cache entry named
// by ro.CacheHint; with one it is a texture cached for that context. A cached
// frame is reused while its size matches and, for textures, while the context
// has not been invalidated. With ro.NoCache a fresh frame is produced and
// nothing is stored.
//
// fn runs under the resource lock and must not call back into r.
// fn is not called when an error is returned.
func (r *Resource) RenderRaster(width, height int, fn func(Frame), ro RenderOptions) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkLocked(); err != nil {
		return err
	}

	if r.kind == KindVideo {
		return r.renderVideoLocked(width, height, fn, ro.GPU)
	}

	index := r.CurrentFrame()
	switch {
	case ro.NoCache:
		return r.renderFreshLocked(index, width, height, fn, ro.GPU)
	case ro.GPU != nil:
		return r.renderGPULocked(index, width, height, fn, ro.GPU)
	default:
		hint := ro.CacheHint
		if hint == "" {
			hint = DefaultCacheHint
		}
		return r.renderCPULocked(index, width, height, fn, hint)
	}
}

// RenderFrame returns an independent copy of frame index at width×height in
// the resource's pixel format, bypassing the clock and both caches.
// Video resources ignore index and return the player's current picture.
func (r *Resource) RenderFrame(index, width, height int) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkLocked(); err != nil {
		return nil, err
	}
	if r.kind != KindVideo && (index < 0 || index >= r.frames) {
		return nil, fmt.Errorf("imgres: frame %d out of range [0,%d)", index, r.frames)
	}

	var (
		img *image.NRGBA
		err error
	)
	if r.kind == KindVideo {
		img, err = r.video.Frame(width, height, r.opts.interpolation.scaler())
	} else {
		img, err = r.produceLocked(index, width, height)
	}
	if err != nil {
		return nil, err
	}
	return r.cpuCopy(img), nil
}

// RenderVector calls fn with the parsed scene of a vector resource.
// fn runs under the resource lock.
func (r *Resource) RenderVector(fn func(*vector.Scene)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkLocked(); err != nil {
		return err
	}
	if r.kind != KindVector {
		return ErrNotVector
	}
	fn(r.scene)
	return nil
}

func (r *Resource) renderCPULocked(index, width, height int, fn func(Frame), hint string) error {
	set := r.cpu.GetOrCreate(hint, func() *slot.Set {
		return slot.NewSet(r.frames)
	})
	sl := set.At(index)

	if img, w, h, ok := sl.Load(); ok {
		if w == width && h == height {
			fn(Frame{Index: index, Width: w, Height: h, Image: img.(*cpuImage).img})
			return nil
		}
		sl.Invalidate(false)
	}

	img, err := r.produceLocked(index, width, height)
	if err != nil {
		return err
	}
	entry := &cpuImage{img: r.cpuCopy(img)}
	if !sl.Store(entry, width, height, false) {
		return ErrEvicted
	}
	fn(Frame{Index: index, Width: width, Height: height, Image: entry.img})
	return nil
}

func (r *Resource) renderGPULocked(index, width, height int, fn func(Frame), g *GPUContext) error {
	if r.gpu == nil {
		r.gpu = slot.NewSet(r.frames)
	}
	sl := r.gpu.At(index)

	if img, w, h, ok := sl.Load(); ok {
		t := img.(*texture)
		if w == width && h == height && t.validFor(g) {
			fn(Frame{Index: index, Width: w, Height: h, Texture: t.tex})
			return nil
		}
		// A texture of another context is destroyed through that context's owner.
		sl.Invalidate(t.ctx == g)
		r.logger().Debug("imgres: gpu slot invalidated", "frame", index)
	}

	img, err := r.produceLocked(index, width, height)
	if err != nil {
		return err
	}
	t, err := g.upload(img)
	if err != nil {
		r.logger().Warn("imgres: upload failed", "frame", index, "error", err)
		return err
	}
	if !sl.Store(t, width, height, true) {
		return ErrEvicted
	}
	fn(Frame{Index: index, Width: width, Height: height, Texture: t.tex})
	return nil
}

func (r *Resource) renderFreshLocked(index, width, height int, fn func(Frame), g *GPUContext) error {
	img, err := r.produceLocked(index, width, height)
	if err != nil {
		return err
	}
	return r.deliver(index, img, fn, g)
}

func (r *Resource) renderVideoLocked(width, height int, fn func(Frame), g *GPUContext) error {
	img, err := r.video.Frame(width, height, r.opts.interpolation.scaler())
	if err != nil {
		r.logger().Debug("imgres: video frame unavailable", "error", err)
		return err
	}
	return r.deliver(0, img, fn, g)
}

// deliver hands an uncached frame to fn. Temporary textures are destroyed
// inline once fn returns.
func (r *Resource) deliver(index int, img *image.NRGBA, fn func(Frame), g *GPUContext) error {
	b := img.Bounds()
	if g == nil {
		fn(Frame{Index: index, Width: b.Dx(), Height: b.Dy(), Image: r.cpuCopy(img)})
		return nil
	}
	t, err := g.upload(img)
	if err != nil {
		return err
	}
	defer t.Release(true)
	fn(Frame{Index: index, Width: b.Dx(), Height: b.Dy(), Texture: t.tex})
	return nil
}

// produceLocked renders frame index at the target size as a fresh
// straight-alpha image owned by the caller.
func (r *Resource) produceLocked(index, width, height int) (*image.NRGBA, error) {
	if r.kind == KindVector {
		return r.scene.Rasterize(width, height)
	}

	var out *image.NRGBA
	err := r.comp.Frame(index, func(canvas *image.NRGBA) {
		if canvas.Bounds().Dx() == width && canvas.Bounds().Dy() == height {
			out = pixel.Clone(canvas)
			return
		}
		out = image.NewNRGBA(image.Rect(0, 0, width, height))
		r.opts.interpolation.scaler().Scale(out, out.Bounds(), canvas, canvas.Bounds(), draw.Src, nil)
	})
	if err != nil {
		r.logger().Warn("imgres: frame decode failed", "frame", index, "error", err)
		return nil, err
	}
	return out, nil
}

// cpuCopy converts a freshly produced frame to the configured format.
// Straight RGBA is already in place.
func (r *Resource) cpuCopy(img *image.NRGBA) image.Image {
	if r.opts.format == pixel.FormatRGBA8 {
		return img
	}
	return pixel.Copy(img, r.opts.format)
}
