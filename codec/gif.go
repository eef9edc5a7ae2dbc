package codec

import (
	"bytes"
	"image"
	"image/gif"
	"time"

	"github.com/h2non/filetype"
)

func init() {
	Register("gif", func(data []byte) bool { return filetype.Is(data, "gif") }, OpenGIF)
}

// gifCodec decodes GIF frames. All frames are parsed up front by image/gif;
// DecodeFrame only composites the stored paletted images.
type gifCodec struct {
	frames []*image.Paletted
	info   []FrameInfo
	size   image.Point
	loops  int
}

// OpenGIF opens a GIF file.
func OpenGIF(data []byte) (Codec, error) {
	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if len(g.Image) == 0 {
		return nil, ErrNoFrames
	}

	size := image.Point{X: g.Config.Width, Y: g.Config.Height}
	if size.X <= 0 || size.Y <= 0 {
		var union image.Rectangle
		for _, fr := range g.Image {
			union = union.Union(fr.Bounds())
		}
		size = union.Max
	}
	if size.X <= 0 || size.Y <= 0 {
		return nil, ErrInvalidCanvas
	}

	info := make([]FrameInfo, len(g.Image))
	for i, fr := range g.Image {
		fi := FrameInfo{
			Bounds: fr.Bounds(),
			Blend:  BlendOver,
			Opaque: fr.Opaque(),
		}
		if i < len(g.Delay) {
			fi.Duration = time.Duration(g.Delay[i]) * 10 * time.Millisecond
		}
		if i < len(g.Disposal) {
			switch g.Disposal[i] {
			case gif.DisposalBackground:
				fi.Disposal = DisposeBackground
			case gif.DisposalPrevious:
				fi.Disposal = DisposePrevious
			}
		}
		info[i] = fi
	}
	resolveRequired(info, size)

	return &gifCodec{
		frames: g.Image,
		info:   info,
		size:   size,
		loops:  gifLoops(g.LoopCount),
	}, nil
}

// gifLoops converts image/gif's LoopCount (-1 once, 0 forever, n extra
// repetitions) to total plays with 0 meaning forever.
func gifLoops(n int) int {
	switch {
	case n < 0:
		return 1
	case n == 0:
		return 0
	default:
		return n + 1
	}
}

func (c *gifCodec) Format() string { return "gif" }

func (c *gifCodec) Size() image.Point { return c.size }

func (c *gifCodec) FrameCount() int { return len(c.info) }

func (c *gifCodec) Frame(i int) FrameInfo { return c.info[i] }

func (c *gifCodec) LoopCount() int { return c.loops }

func (c *gifCodec) DecodeFrame(i int, dst *image.NRGBA) error {
	if c.frames == nil {
		return ErrClosed
	}
	if err := checkFrame(i, len(c.frames)); err != nil {
		return err
	}
	fr := c.frames[i]
	drawFrame(dst, fr.Bounds(), fr, c.info[i].Blend)
	return nil
}

func (c *gifCodec) Close() error {
	c.frames = nil
	return nil
}
