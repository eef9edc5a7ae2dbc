package codec

import (
	"bytes"
	"image"
	_ "image/jpeg" // register JPEG with image.Decode

	"github.com/h2non/filetype"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
)

func init() {
	Register("jpeg", func(data []byte) bool { return filetype.Is(data, "jpg") }, openStill("jpeg"))
	Register("bmp", func(data []byte) bool { return filetype.Is(data, "bmp") }, func(data []byte) (Codec, error) {
		img, err := bmp.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return newStill("bmp", img)
	})
	Register("tiff", func(data []byte) bool { return filetype.Is(data, "tif") }, func(data []byte) (Codec, error) {
		img, err := tiff.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return newStill("tiff", img)
	})
}

// stillCodec is a single-frame codec over an already decoded image.
type stillCodec struct {
	name string
	img  *image.NRGBA
	info []FrameInfo
}

// openStill returns an Opener that decodes data with image.Decode.
func openStill(name string) Opener {
	return func(data []byte) (Codec, error) {
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return newStill(name, img)
	}
}

// NewStill wraps an already decoded image as a one-frame Codec.
func NewStill(img image.Image) (Codec, error) {
	return newStill("image", img)
}

func newStill(name string, img image.Image) (Codec, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, ErrInvalidCanvas
	}
	nrgba := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)

	info := []FrameInfo{{
		Bounds:        nrgba.Bounds(),
		Blend:         BlendSource,
		Opaque:        nrgba.Opaque(),
		RequiredFrame: NoFrame,
	}}
	return &stillCodec{name: name, img: nrgba, info: info}, nil
}

func (c *stillCodec) Format() string { return c.name }

func (c *stillCodec) Size() image.Point { return c.info[0].Bounds.Size() }

func (c *stillCodec) FrameCount() int { return 1 }

func (c *stillCodec) Frame(i int) FrameInfo { return c.info[i] }

func (c *stillCodec) LoopCount() int { return 0 }

func (c *stillCodec) DecodeFrame(i int, dst *image.NRGBA) error {
	if c.img == nil {
		return ErrClosed
	}
	if err := checkFrame(i, 1); err != nil {
		return err
	}
	draw.Draw(dst, dst.Bounds(), c.img, image.Point{}, draw.Src)
	return nil
}

func (c *stillCodec) Close() error {
	c.img = nil
	return nil
}
