package imgres

import (
	"image"

	"github.com/gogpu/gpucontext"
)

// Frame is the image handed to a RenderRaster callback.
//
// Exactly one of Image and Texture is set. Neither may be retained after the
// callback returns: cached images are shared between callers and may be
// released by eviction, and uncached textures are destroyed immediately.
type Frame struct {
	// Index is the frame of the animation being shown (0 for stills, vector
	// images and video).
	Index int

	// Width and Height are the requested target size.
	Width, Height int

	// Image is the CPU copy in the resource's pixel format.
	// Its concrete type is *image.RGBA, *image.NRGBA or *BGRA.
	Image image.Image

	// Texture is the GPU texture returned by the context's TextureCreator.
	Texture gpucontext.Texture
}

// IsTexture reports whether the frame is GPU-backed.
func (f Frame) IsTexture() bool { return f.Texture != nil }
