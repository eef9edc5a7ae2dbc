package pixel

import (
	"image"
	"image/color"
)

// Copy returns an independent copy of src laid out in format f.
//
// The result type depends on f: *image.RGBA for FormatRGBAPremul,
// *image.NRGBA for FormatRGBA8 and *BGRA for the BGR formats.
// The returned image never shares memory with src.
func Copy(src *image.NRGBA, f Format) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	rect := image.Rect(0, 0, w, h)

	switch f {
	case FormatRGBA8:
		dst := image.NewNRGBA(rect)
		for y := 0; y < h; y++ {
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+w*BytesPerPixel], src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):])
		}
		return dst
	case FormatBGRA8, FormatBGRAPremul:
		dst := NewBGRA(rect, f.IsPremultiplied())
		convertRows(dst.Pix, dst.Stride, src, f)
		return dst
	default:
		dst := image.NewRGBA(rect)
		convertRows(dst.Pix, dst.Stride, src, FormatRGBAPremul)
		return dst
	}
}

// Bytes returns the pixels of src as a tightly packed byte slice in format f.
// Used for texture uploads.
func Bytes(src *image.NRGBA, f Format) []byte {
	b := src.Bounds()
	stride := b.Dx() * BytesPerPixel
	out := make([]byte, stride*b.Dy())
	convertRows(out, stride, src, f)
	return out
}

// convertRows writes src into dst (rows of dstStride bytes) in format f.
func convertRows(dst []byte, dstStride int, src *image.NRGBA, f Format) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	premul := f.IsPremultiplied()
	bgr := f.IsBGR()

	for y := 0; y < h; y++ {
		si := src.PixOffset(b.Min.X, b.Min.Y+y)
		di := y * dstStride
		for x := 0; x < w; x++ {
			r, g, bl, a := src.Pix[si], src.Pix[si+1], src.Pix[si+2], src.Pix[si+3]
			if premul && a != 0xff {
				r = premultiply(r, a)
				g = premultiply(g, a)
				bl = premultiply(bl, a)
			}
			if bgr {
				r, bl = bl, r
			}
			dst[di] = r
			dst[di+1] = g
			dst[di+2] = bl
			dst[di+3] = a
			si += BytesPerPixel
			di += BytesPerPixel
		}
	}
}

// premultiply scales c by a/255 with rounding.
func premultiply(c, a uint8) uint8 {
	return uint8((uint32(c)*uint32(a) + 127) / 255)
}

// BGRA is an in-memory image whose pixels are stored B, G, R, A.
type BGRA struct {
	Pix    []uint8
	Stride int
	Rect   image.Rectangle

	// Premultiplied reports whether the color channels are premultiplied.
	Premultiplied bool
}

// NewBGRA returns a new BGRA image with the given bounds.
func NewBGRA(r image.Rectangle, premultiplied bool) *BGRA {
	return &BGRA{
		Pix:           make([]uint8, r.Dx()*r.Dy()*BytesPerPixel),
		Stride:        r.Dx() * BytesPerPixel,
		Rect:          r,
		Premultiplied: premultiplied,
	}
}

// ColorModel implements image.Image.
func (p *BGRA) ColorModel() color.Model {
	if p.Premultiplied {
		return color.RGBAModel
	}
	return color.NRGBAModel
}

// Bounds implements image.Image.
func (p *BGRA) Bounds() image.Rectangle { return p.Rect }

// At implements image.Image.
func (p *BGRA) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return color.RGBA{}
	}
	i := (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*BytesPerPixel
	s := p.Pix[i : i+4 : i+4]
	if p.Premultiplied {
		return color.RGBA{R: s[2], G: s[1], B: s[0], A: s[3]}
	}
	return color.NRGBA{R: s[2], G: s[1], B: s[0], A: s[3]}
}
