// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpuimage

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/imgres"
	"github.com/gogpu/imgres/affinity"
	"github.com/gogpu/imgres/consumer"
)

// Common errors returned by Image operations.
var (
	// ErrClosed is returned when operations are attempted on a closed image.
	ErrClosed = errors.New("gpuimage: image is closed")

	// ErrInvalidDimensions is returned when width or height is invalid.
	ErrInvalidDimensions = errors.New("gpuimage: invalid dimensions")

	// ErrNilResource is returned when a nil resource is passed.
	ErrNilResource = errors.New("gpuimage: nil resource")

	// ErrInvalidRenderer is returned when the draw context cannot create textures.
	ErrInvalidRenderer = errors.New("gpuimage: draw context has no texture creator")
)

// DefaultVolume is the consumer volume of a new Image.
const DefaultVolume = 100

// Image draws a resource into one window.
type Image struct {
	res      *imgres.Resource
	consumer *consumer.Basic
	format   gputypes.TextureFormat
	owner    *affinity.Loop
	gpu      *imgres.GPUContext
	width    int
	height   int
	closed   bool
}

// New creates an Image showing res at width×height and registers it as a
// consumer of res under profile (nil means always active).
// provider supplies the surface format; it may be nil for RGBA surfaces.
func New(res *imgres.Resource, provider gpucontext.DeviceProvider, width, height int, profile consumer.Profile) (*Image, error) {
	if res == nil {
		return nil, ErrNilResource
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: width=%d, height=%d", ErrInvalidDimensions, width, height)
	}

	format := gputypes.TextureFormatRGBA8Unorm
	if provider != nil {
		format = provider.SurfaceFormat()
	}
	img := &Image{
		res:      res,
		consumer: consumer.NewBasic(DefaultVolume, profile),
		format:   format,
		owner:    affinity.NewLoop(),
		width:    width,
		height:   height,
	}
	if err := res.AddConsumer(img.consumer); err != nil {
		return nil, err
	}
	return img, nil
}

// Resource returns the displayed resource.
func (w *Image) Resource() *imgres.Resource { return w.res }

// Size returns the display size in pixels.
func (w *Image) Size() (width, height int) { return w.width, w.height }

// Consumer returns the consumer registered with the resource.
func (w *Image) Consumer() *consumer.Basic { return w.consumer }

// SetHidden marks the image hidden or visible. Hidden images do not count
// toward the resource's volume.
func (w *Image) SetHidden(hidden bool) { w.consumer.SetHidden(hidden) }

// SetVolume sets this image's requested volume.
func (w *Image) SetVolume(v int) { w.consumer.SetVolume(v) }

// Resize changes the display size. Cached frames of the old size are
// replaced on the next render.
func (w *Image) Resize(width, height int) error {
	if w.closed {
		return ErrClosed
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: width=%d, height=%d", ErrInvalidDimensions, width, height)
	}
	w.width, w.height = width, height
	return nil
}

// DeviceLost marks every texture created for this image unusable. Call it
// when the window's device or surface is recreated.
func (w *Image) DeviceLost() {
	if w.gpu != nil {
		w.gpu.Invalidate()
	}
}

// RenderTo draws the current frame at (0, 0).
func (w *Image) RenderTo(dc gpucontext.TextureDrawer) error {
	return w.RenderToPosition(dc, 0, 0)
}

// RenderToPosition draws the current frame at (x, y).
//
// The dc parameter should be obtained from gogpu.Context.AsTextureDrawer().
// Returns imgres.ErrNotLoaded (wrapped) for resources that failed to
// open; callers draw their fallback instead.
func (w *Image) RenderToPosition(dc gpucontext.TextureDrawer, x, y float32) error {
	creator := dc.TextureCreator()
	if creator == nil {
		return ErrInvalidRenderer
	}
	return w.render(creator, func(tex gpucontext.Texture) error {
		return dc.DrawTexture(tex, x, y)
	})
}

// render runs queued texture destruction, then draws the current frame.
func (w *Image) render(creator gpucontext.TextureCreator, draw func(tex gpucontext.Texture) error) error {
	if w.closed {
		return ErrClosed
	}
	w.owner.Drain()

	if w.gpu == nil {
		w.gpu = imgres.NewGPUContext(creator, w.owner, w.format)
	}

	var drawErr error
	err := w.res.RenderRaster(w.width, w.height, func(f imgres.Frame) {
		drawErr = draw(f.Texture)
	}, imgres.RenderOptions{GPU: w.gpu})
	if err != nil {
		return err
	}
	return drawErr
}

// Close unregisters the image from its resource and runs pending texture
// destruction. Textures still cached by the resource are destroyed by
// Resource.DisposeGPUCacheAssets or Resource.Dispose.
// Close is idempotent - multiple calls are safe.
func (w *Image) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	w.res.RemoveConsumer(w.consumer)
	w.owner.Close()
	return nil
}
