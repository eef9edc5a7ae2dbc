// Package vector parses SVG documents and rasterizes them at arbitrary sizes.
package vector

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
)

// Errors returned by Scene.
var (
	// ErrClosed is returned when using a closed scene.
	ErrClosed = errors.New("vector: scene closed")

	// ErrInvalidSize is returned for non-positive raster sizes.
	ErrInvalidSize = errors.New("vector: invalid size")
)

// Scene is a parsed SVG document. It is safe for concurrent use.
type Scene struct {
	mu   sync.Mutex
	icon *oksvg.SvgIcon
	w, h float64
}

// Parse parses an SVG document. Unsupported elements are skipped rather than
// rejected.
func Parse(data []byte) (*Scene, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.WarnErrorMode)
	if err != nil {
		return nil, fmt.Errorf("vector: parse: %w", err)
	}
	return &Scene{icon: icon, w: icon.ViewBox.W, h: icon.ViewBox.H}, nil
}

// Size returns the intrinsic size taken from the document's viewBox.
// Both values are zero when the document declares none.
func (s *Scene) Size() (width, height float64) {
	return s.w, s.h
}

// Bounds returns the intrinsic size rounded up to whole pixels.
func (s *Scene) Bounds() image.Rectangle {
	return image.Rect(0, 0, ceil(s.w), ceil(s.h))
}

// Rasterize renders the scene stretched to width×height pixels.
func (s *Scene) Rasterize(width, height int) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.icon == nil {
		return nil, ErrClosed
	}

	rgba := image.NewRGBA(image.Rect(0, 0, width, height))
	scanner := rasterx.NewScannerGV(width, height, rgba, rgba.Bounds())
	dasher := rasterx.NewDasher(width, height, scanner)
	s.icon.SetTarget(0, 0, float64(width), float64(height))
	s.icon.Draw(dasher, 1.0)

	out := image.NewNRGBA(rgba.Bounds())
	draw.Draw(out, out.Bounds(), rgba, image.Point{}, draw.Src)
	return out, nil
}

// Close releases the parsed document. Close is idempotent.
func (s *Scene) Close() error {
	s.mu.Lock()
	s.icon = nil
	s.mu.Unlock()
	return nil
}

func ceil(v float64) int {
	n := int(v)
	if float64(n) < v {
		n++
	}
	return n
}
