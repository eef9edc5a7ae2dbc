// Package codec decodes raster images frame by frame.
//
// Every supported format (GIF, APNG, animated WebP and single-frame stills)
// is exposed through the Codec interface: a logical canvas, a frame table with
// per-frame duration, disposal and blending, and a DecodeFrame call that draws
// one frame onto a caller-provided canvas. Compositing the frames in order,
// applying each frame's disposal before the next is drawn, reconstructs the
// animation.
package codec

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"golang.org/x/image/draw"
)

// Errors returned by codecs.
var (
	// ErrUnknownFormat is returned when no registered format matches the data.
	ErrUnknownFormat = errors.New("codec: unknown format")

	// ErrNoFrames is returned when a container holds no frames.
	ErrNoFrames = errors.New("codec: no frames")

	// ErrFrameIndex is returned for out-of-range frame indices.
	ErrFrameIndex = errors.New("codec: frame index out of range")

	// ErrClosed is returned when decoding from a closed codec.
	ErrClosed = errors.New("codec: closed")

	// ErrInvalidCanvas is returned when the logical canvas is empty.
	ErrInvalidCanvas = errors.New("codec: invalid canvas size")
)

// NoFrame is the RequiredFrame value of a frame that depends on no earlier frame.
const NoFrame = -1

// Disposal describes how a frame's pixels are cleaned up after it has been
// displayed, before the next frame is drawn.
type Disposal uint8

const (
	// DisposeNone leaves the canvas as-is.
	DisposeNone Disposal = iota

	// DisposeBackground clears the frame's rectangle to transparent.
	DisposeBackground

	// DisposePrevious restores the canvas to its state before the frame was drawn.
	DisposePrevious
)

// String returns a string representation of the disposal method.
func (d Disposal) String() string {
	switch d {
	case DisposeNone:
		return "none"
	case DisposeBackground:
		return "background"
	case DisposePrevious:
		return "previous"
	default:
		return "unknown"
	}
}

// Blend describes how a frame is combined with the canvas.
type Blend uint8

const (
	// BlendOver alpha-composites the frame over the canvas.
	BlendOver Blend = iota

	// BlendSource overwrites the frame's rectangle.
	BlendSource
)

// FrameInfo describes one frame of an image.
type FrameInfo struct {
	// Duration is the display time declared by the file (may be zero).
	Duration time.Duration

	// Disposal is applied after the frame is displayed.
	Disposal Disposal

	// Blend is used when drawing the frame.
	Blend Blend

	// Bounds is the frame's rectangle on the canvas.
	Bounds image.Rectangle

	// Opaque reports that every pixel the frame draws is fully opaque.
	Opaque bool

	// RequiredFrame is the nearest earlier frame whose composited state this
	// frame is drawn onto, or NoFrame if the frame is independent.
	RequiredFrame int
}

// Codec decodes the frames of one image.
//
// DecodeFrame draws frame i onto dst, which must hold the composited canvas of
// frame i's required frame (with that frame's disposal applied), or be
// transparent when the frame is independent. dst must be exactly Size().
//
// Codecs are not safe for concurrent use.
type Codec interface {
	// Format returns the registered format name ("gif", "png", ...).
	Format() string

	// Size returns the logical canvas size.
	Size() image.Point

	// FrameCount returns the number of frames (1 for stills).
	FrameCount() int

	// Frame returns the metadata of frame i.
	Frame(i int) FrameInfo

	// LoopCount returns the declared loop count; 0 means forever.
	LoopCount() int

	// DecodeFrame draws frame i onto dst.
	DecodeFrame(i int, dst *image.NRGBA) error

	// Close releases decoded frame data.
	Close() error
}

// Opener creates a Codec from a complete encoded file.
type Opener func(data []byte) (Codec, error)

// Matcher reports whether data looks like a given format.
type Matcher func(data []byte) bool

type format struct {
	name  string
	match Matcher
	open  Opener
}

var (
	formatsMu sync.RWMutex
	formats   []format
)

// Register makes a format available to Open. Formats registered later take
// precedence, so hosts may override the built-in codecs.
func Register(name string, match Matcher, open Opener) {
	formatsMu.Lock()
	defer formatsMu.Unlock()
	formats = append([]format{{name: name, match: match, open: open}}, formats...)
}

// Detect returns the name of the first registered format matching data,
// or "" if none does.
func Detect(data []byte) string {
	formatsMu.RLock()
	defer formatsMu.RUnlock()
	for _, f := range formats {
		if f.match(data) {
			return f.name
		}
	}
	return ""
}

// Open sniffs data and opens it with the matching codec.
func Open(data []byte) (Codec, error) {
	formatsMu.RLock()
	var open Opener
	var name string
	for _, f := range formats {
		if f.match(data) {
			open, name = f.open, f.name
			break
		}
	}
	formatsMu.RUnlock()

	if open == nil {
		return nil, ErrUnknownFormat
	}
	c, err := open(data)
	if err != nil {
		return nil, fmt.Errorf("codec: open %s: %w", name, err)
	}
	if c.FrameCount() == 0 {
		_ = c.Close()
		return nil, fmt.Errorf("codec: open %s: %w", name, ErrNoFrames)
	}
	return c, nil
}

// drawFrame composites img onto dst at bounds using the frame's blend mode.
func drawFrame(dst *image.NRGBA, bounds image.Rectangle, img image.Image, blend Blend) {
	op := draw.Over
	if blend == BlendSource {
		op = draw.Src
	}
	draw.Draw(dst, bounds, img, img.Bounds().Min, op)
}

// isOpaque reports whether img declares itself fully opaque.
func isOpaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	return false
}

// checkFrame validates a frame index against a frame count.
func checkFrame(i, n int) error {
	if i < 0 || i >= n {
		return fmt.Errorf("%w: %d of %d", ErrFrameIndex, i, n)
	}
	return nil
}
