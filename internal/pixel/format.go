// Package pixel converts composited frames into the pixel layouts handed out
// to renderers and pools the scratch buffers used while compositing.
package pixel

// Format represents a 32-bit pixel storage format.
type Format uint8

const (
	// FormatRGBAPremul is RGBA with premultiplied alpha. Copies are *image.RGBA.
	// This is the default because it is what GPU compositing expects.
	FormatRGBAPremul Format = iota

	// FormatRGBA8 is straight-alpha RGBA. Copies are *image.NRGBA.
	FormatRGBA8

	// FormatBGRA8 is straight-alpha BGRA, common for native surfaces.
	FormatBGRA8

	// FormatBGRAPremul is BGRA with premultiplied alpha.
	FormatBGRAPremul

	formatCount
)

// FormatInfo contains metadata about a pixel format.
type FormatInfo struct {
	// IsPremultiplied indicates if alpha is premultiplied.
	IsPremultiplied bool

	// IsBGR indicates blue is stored before red.
	IsBGR bool
}

var formatInfoTable = [formatCount]FormatInfo{
	FormatRGBAPremul: {IsPremultiplied: true},
	FormatRGBA8:      {},
	FormatBGRA8:      {IsBGR: true},
	FormatBGRAPremul: {IsPremultiplied: true, IsBGR: true},
}

// BytesPerPixel is the size of one pixel in every supported format.
const BytesPerPixel = 4

// Info returns the FormatInfo for this format.
func (f Format) Info() FormatInfo {
	if f >= formatCount {
		return FormatInfo{}
	}
	return formatInfoTable[f]
}

// IsPremultiplied returns true if alpha is premultiplied.
func (f Format) IsPremultiplied() bool {
	return f.Info().IsPremultiplied
}

// IsBGR returns true if the red and blue channels are swapped.
func (f Format) IsBGR() bool {
	return f.Info().IsBGR
}

// IsValid returns true if the format is a valid known format.
func (f Format) IsValid() bool {
	return f < formatCount
}

// String returns a string representation of the format.
func (f Format) String() string {
	switch f {
	case FormatRGBAPremul:
		return "RGBAPremul"
	case FormatRGBA8:
		return "RGBA8"
	case FormatBGRA8:
		return "BGRA8"
	case FormatBGRAPremul:
		return "BGRAPremul"
	default:
		return "Unknown"
	}
}
