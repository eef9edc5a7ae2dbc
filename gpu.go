// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package imgres

import (
	"fmt"
	"image"
	"sync/atomic"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/imgres/affinity"
	"github.com/gogpu/imgres/internal/pixel"
)

// TextureCreator uploads RGBA pixel data to a new GPU texture. The texture
// creator of a gogpu draw context implements it.
type TextureCreator = gpucontext.TextureCreator

// textureDestroyer matches the gogpu.Texture.Destroy signature.
type textureDestroyer interface {
	Destroy()
}

// GPUContext identifies one rendering context: where textures are created,
// which executor owns them and which pixel layout they use.
//
// Textures cached for a context stay valid until Invalidate is called, which
// the host does when the underlying device or surface is recreated.
type GPUContext struct {
	creator TextureCreator
	owner   affinity.Executor
	format  gputypes.TextureFormat
	gen     atomic.Uint64
}

// NewGPUContext creates a GPUContext. owner runs texture destruction; nil
// means every caller is the owner. format is the texture format uploads are
// laid out for: BGRA8Unorm swizzles, anything else uploads RGBA.
func NewGPUContext(creator TextureCreator, owner affinity.Executor, format gputypes.TextureFormat) *GPUContext {
	if owner == nil {
		owner = affinity.Inline{}
	}
	return &GPUContext{creator: creator, owner: owner, format: format}
}

// FromTextureDrawer creates a GPUContext for a gogpu draw context, using its
// texture creator and the surface format of provider. provider may be nil.
//
// Example:
//
//	app.OnDraw(func(dc *gogpu.Context) {
//	    gctx, _ := imgres.FromTextureDrawer(dc.AsTextureDrawer(), provider, loop)
//	    loop.Drain()
//	    res.RenderRaster(256, 256, draw, imgres.RenderOptions{GPU: gctx})
//	})
func FromTextureDrawer(dc gpucontext.TextureDrawer, provider gpucontext.DeviceProvider, owner affinity.Executor) (*GPUContext, error) {
	creator := dc.TextureCreator()
	if creator == nil {
		return nil, ErrNoTextureCreator
	}
	format := gputypes.TextureFormatRGBA8Unorm
	if provider != nil {
		format = provider.SurfaceFormat()
	}
	return NewGPUContext(creator, owner, format), nil
}

// Format returns the texture format uploads are laid out for.
func (g *GPUContext) Format() gputypes.TextureFormat { return g.format }

// Owner returns the executor that destroys this context's textures.
func (g *GPUContext) Owner() affinity.Executor { return g.owner }

// Invalidate marks every texture created so far as no longer usable with
// this context. Cached textures are recreated on their next use.
func (g *GPUContext) Invalidate() { g.gen.Add(1) }

// Generation returns the number of Invalidate calls.
func (g *GPUContext) Generation() uint64 { return g.gen.Load() }

// pixelFormat returns the upload layout. GPU compositing expects
// premultiplied alpha.
func (g *GPUContext) pixelFormat() pixel.Format {
	if g.format == gputypes.TextureFormatBGRA8Unorm {
		return pixel.FormatBGRAPremul
	}
	return pixel.FormatRGBAPremul
}

// upload creates a texture from img.
func (g *GPUContext) upload(img *image.NRGBA) (*texture, error) {
	b := img.Bounds()
	tex, err := g.creator.NewTextureFromRGBA(b.Dx(), b.Dy(), pixel.Bytes(img, g.pixelFormat()))
	if err != nil {
		return nil, fmt.Errorf("imgres: texture upload: %w", err)
	}
	if pt, ok := tex.(interface{ SetPremultiplied(bool) }); ok {
		pt.SetPremultiplied(true)
	}
	return &texture{tex: tex, ctx: g, gen: g.Generation()}, nil
}

// texture is a cached GPU texture bound to the context that created it.
type texture struct {
	tex      gpucontext.Texture
	ctx      *GPUContext
	gen      uint64
	released atomic.Bool
}

// validFor reports whether t can be drawn with g.
func (t *texture) validFor(g *GPUContext) bool {
	return t.ctx == g && t.gen == g.Generation()
}

// Release destroys the texture on its owner. Implements slot.Image.
func (t *texture) Release(onOwner bool) {
	if !t.released.CompareAndSwap(false, true) {
		return
	}
	d, ok := t.tex.(textureDestroyer)
	if !ok {
		return
	}
	affinity.Run(t.ctx.owner, onOwner, d.Destroy)
}

// cpuImage is a cached CPU frame copy.
type cpuImage struct {
	img image.Image
}

// Release implements slot.Image. CPU memory is reclaimed by the collector.
func (c *cpuImage) Release(bool) {}
