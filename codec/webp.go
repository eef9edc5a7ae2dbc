package codec

import (
	"bytes"
	"image"

	"github.com/deepteams/webp"
	"github.com/deepteams/webp/animation"
	"github.com/h2non/filetype"
)

func init() {
	Register("webp", func(data []byte) bool { return filetype.Is(data, "webp") }, OpenWebP)
}

// webpCodec decodes animated WebP frames. Bitstreams are decoded in parallel
// when the file is opened.
type webpCodec struct {
	anim *animation.Animation
	info []FrameInfo
	size image.Point
}

// OpenWebP opens a WebP file, animated or not.
func OpenWebP(data []byte) (Codec, error) {
	feat, err := webp.GetFeatures(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if !feat.HasAnimation {
		img, err := webp.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return newStill("webp", img)
	}

	anim, err := animation.DecodeBytes(data)
	if err != nil {
		return nil, err
	}
	if len(anim.Frames) == 0 {
		return nil, ErrNoFrames
	}
	size := image.Point{X: anim.CanvasWidth, Y: anim.CanvasHeight}
	if size.X <= 0 || size.Y <= 0 {
		return nil, ErrInvalidCanvas
	}
	if err := anim.DecodeFramesParallel(); err != nil {
		return nil, err
	}

	info := make([]FrameInfo, len(anim.Frames))
	for i := range anim.Frames {
		fr := &anim.Frames[i]
		if fr.Image == nil {
			return nil, ErrNoFrames
		}
		b := fr.Image.Bounds()
		fi := FrameInfo{
			Duration: fr.Duration,
			Bounds:   image.Rect(fr.OffsetX, fr.OffsetY, fr.OffsetX+b.Dx(), fr.OffsetY+b.Dy()),
			Opaque:   !fr.HasAlpha,
		}
		if fr.Dispose == animation.DisposeBackground {
			fi.Disposal = DisposeBackground
		}
		if fr.Blend == animation.BlendNone {
			fi.Blend = BlendSource
		}
		info[i] = fi
	}
	resolveRequired(info, size)

	return &webpCodec{anim: anim, info: info, size: size}, nil
}

func (c *webpCodec) Format() string { return "webp" }

func (c *webpCodec) Size() image.Point { return c.size }

func (c *webpCodec) FrameCount() int { return len(c.info) }

func (c *webpCodec) Frame(i int) FrameInfo { return c.info[i] }

func (c *webpCodec) LoopCount() int { return c.anim.LoopCount }

func (c *webpCodec) DecodeFrame(i int, dst *image.NRGBA) error {
	if c.anim.Frames == nil {
		return ErrClosed
	}
	if err := checkFrame(i, len(c.anim.Frames)); err != nil {
		return err
	}
	drawFrame(dst, c.info[i].Bounds, c.anim.Frames[i].Image, c.info[i].Blend)
	return nil
}

func (c *webpCodec) Close() error {
	c.anim.Frames = nil
	return nil
}
