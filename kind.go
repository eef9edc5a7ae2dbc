package imgres

// Kind classifies what a resource was opened as.
type Kind uint8

const (
	// KindNone is the kind of a resource that failed to load.
	KindNone Kind = iota

	// KindStatic is a single-frame raster image.
	KindStatic

	// KindAnimated is a multi-frame raster image.
	KindAnimated

	// KindVector is an SVG document.
	KindVector

	// KindVideo is a video file or live stream.
	KindVideo
)

// String returns a string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindStatic:
		return "static"
	case KindAnimated:
		return "animated"
	case KindVector:
		return "vector"
	case KindVideo:
		return "video"
	default:
		return "none"
	}
}
