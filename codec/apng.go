package codec

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/png"
	"time"

	"github.com/h2non/filetype"
	"github.com/kettek/apng"
)

func init() {
	Register("png", func(data []byte) bool { return filetype.Is(data, "png") }, OpenPNG)
}

// pngSignature is the 8-byte PNG file signature.
var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// IsAnimatedPNG reports whether data is a PNG carrying an acTL chunk before
// its first IDAT, which is what distinguishes APNG from a still PNG.
func IsAnimatedPNG(data []byte) bool {
	if !bytes.HasPrefix(data, pngSignature) {
		return false
	}
	p := data[len(pngSignature):]
	for len(p) >= 8 {
		n := binary.BigEndian.Uint32(p[:4])
		typ := string(p[4:8])
		switch typ {
		case "acTL":
			return true
		case "IDAT", "IEND":
			return false
		}
		skip := 12 + uint64(n)
		if skip > uint64(len(p)) {
			return false
		}
		p = p[skip:]
	}
	return false
}

// OpenPNG opens a PNG file, animated or not.
func OpenPNG(data []byte) (Codec, error) {
	if !IsAnimatedPNG(data) {
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return newStill("png", img)
	}
	return OpenAPNG(data)
}

// apngCodec decodes APNG frames parsed up front by kettek/apng.
type apngCodec struct {
	frames []apng.Frame
	info   []FrameInfo
	size   image.Point
	loops  int
}

// OpenAPNG opens an animated PNG.
func OpenAPNG(data []byte) (Codec, error) {
	a, err := apng.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if len(a.Frames) == 0 || a.Frames[0].Image == nil {
		return nil, ErrNoFrames
	}

	size := a.Frames[0].Image.Bounds().Size()
	if size.X <= 0 || size.Y <= 0 {
		return nil, ErrInvalidCanvas
	}

	// The default image is not part of the animation when it has no fcTL.
	frames := a.Frames
	if frames[0].IsDefault && len(frames) > 1 {
		frames = frames[1:]
	}

	info := make([]FrameInfo, len(frames))
	for i, fr := range frames {
		if fr.Image == nil {
			return nil, ErrNoFrames
		}
		b := fr.Image.Bounds()
		fi := FrameInfo{
			Duration: apngDelay(fr.DelayNumerator, fr.DelayDenominator),
			Bounds:   image.Rect(fr.XOffset, fr.YOffset, fr.XOffset+b.Dx(), fr.YOffset+b.Dy()),
			Opaque:   isOpaque(fr.Image),
		}
		switch fr.DisposeOp {
		case apng.DISPOSE_OP_BACKGROUND:
			fi.Disposal = DisposeBackground
		case apng.DISPOSE_OP_PREVIOUS:
			// The first frame has no previous state to return to.
			if i == 0 {
				fi.Disposal = DisposeBackground
			} else {
				fi.Disposal = DisposePrevious
			}
		}
		if fr.BlendOp == apng.BLEND_OP_SOURCE {
			fi.Blend = BlendSource
		}
		info[i] = fi
	}
	resolveRequired(info, size)

	return &apngCodec{
		frames: frames,
		info:   info,
		size:   size,
		loops:  int(a.LoopCount),
	}, nil
}

// apngDelay converts an fcTL delay fraction to a duration.
// A zero denominator means hundredths of a second.
func apngDelay(num, den uint16) time.Duration {
	if den == 0 {
		den = 100
	}
	return time.Duration(num) * time.Second / time.Duration(den)
}

func (c *apngCodec) Format() string { return "apng" }

func (c *apngCodec) Size() image.Point { return c.size }

func (c *apngCodec) FrameCount() int { return len(c.info) }

func (c *apngCodec) Frame(i int) FrameInfo { return c.info[i] }

func (c *apngCodec) LoopCount() int { return c.loops }

func (c *apngCodec) DecodeFrame(i int, dst *image.NRGBA) error {
	if c.frames == nil {
		return ErrClosed
	}
	if err := checkFrame(i, len(c.frames)); err != nil {
		return err
	}
	drawFrame(dst, c.info[i].Bounds, c.frames[i].Image, c.info[i].Blend)
	return nil
}

func (c *apngCodec) Close() error {
	c.frames = nil
	return nil
}
