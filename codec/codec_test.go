package codec

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"testing"
	"time"

	"github.com/deepteams/webp/animation"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/gogpu/imgres/internal/testimg"
)

func nrgbaAt(img *image.NRGBA, x, y int) color.NRGBA {
	return img.NRGBAAt(x, y)
}

func TestDetect(t *testing.T) {
	var jpg bytes.Buffer
	if err := jpeg.Encode(&jpg, testimg.Solid(4, 4, testimg.Red), nil); err != nil {
		t.Fatal(err)
	}
	var bm bytes.Buffer
	if err := bmp.Encode(&bm, testimg.Solid(4, 4, testimg.Red)); err != nil {
		t.Fatal(err)
	}
	var tif bytes.Buffer
	if err := tiff.Encode(&tif, testimg.Solid(4, 4, testimg.Red), nil); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"gif", testimg.GIF(2, 2, testimg.GIFFrame{Rect: image.Rect(0, 0, 2, 2), Index: 1}), "gif"},
		{"png", testimg.PNG(testimg.Solid(2, 2, testimg.Red)), "png"},
		{"jpeg", jpg.Bytes(), "jpeg"},
		{"bmp", bm.Bytes(), "bmp"},
		{"tiff", tif.Bytes(), "tiff"},
		{"garbage", []byte("definitely not an image"), ""},
		{"empty", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.data); got != tt.want {
				t.Errorf("Detect() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOpenUnknown(t *testing.T) {
	_, err := Open([]byte("plain text"))
	if !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Open(text) error = %v, want ErrUnknownFormat", err)
	}
}

func TestOpenCorrupt(t *testing.T) {
	data := testimg.GIF(2, 2, testimg.GIFFrame{Rect: image.Rect(0, 0, 2, 2), Index: 1})
	_, err := Open(data[:len(data)/2])
	if err == nil {
		t.Fatal("Open(truncated gif) succeeded")
	}
	if errors.Is(err, ErrUnknownFormat) {
		t.Errorf("truncated gif reported as unknown format: %v", err)
	}
}

func TestRegisterOverride(t *testing.T) {
	magic := []byte("IMGRES-TEST-FORMAT")
	called := false
	Register("test", func(data []byte) bool { return bytes.HasPrefix(data, magic) }, func([]byte) (Codec, error) {
		called = true
		return NewStill(testimg.Solid(1, 1, testimg.Red))
	})

	c, err := Open(append(magic, 0, 1, 2))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer c.Close()
	if !called {
		t.Error("registered opener was not used")
	}
	if got := Detect(magic); got != "test" {
		t.Errorf("Detect() = %q, want %q", got, "test")
	}
}

func TestGIFFrames(t *testing.T) {
	data := testimg.GIF(4, 4,
		testimg.GIFFrame{Rect: image.Rect(0, 0, 4, 4), Index: 1, Delay: 5, Disposal: gif.DisposalNone},
		testimg.GIFFrame{Rect: image.Rect(1, 1, 3, 3), Index: 3, Delay: 0, Disposal: gif.DisposalBackground},
		testimg.GIFFrame{Rect: image.Rect(0, 0, 2, 2), Index: 2, Delay: 10, Disposal: gif.DisposalPrevious},
	)
	c, err := Open(data)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer c.Close()

	if c.Format() != "gif" {
		t.Errorf("Format() = %q, want gif", c.Format())
	}
	if c.Size() != image.Pt(4, 4) {
		t.Errorf("Size() = %v, want (4,4)", c.Size())
	}
	if c.FrameCount() != 3 {
		t.Fatalf("FrameCount() = %d, want 3", c.FrameCount())
	}

	want := []struct {
		dur    time.Duration
		disp   Disposal
		bounds image.Rectangle
	}{
		{50 * time.Millisecond, DisposeNone, image.Rect(0, 0, 4, 4)},
		{0, DisposeBackground, image.Rect(1, 1, 3, 3)},
		{100 * time.Millisecond, DisposePrevious, image.Rect(0, 0, 2, 2)},
	}
	for i, w := range want {
		fi := c.Frame(i)
		if fi.Duration != w.dur {
			t.Errorf("frame %d Duration = %v, want %v", i, fi.Duration, w.dur)
		}
		if fi.Disposal != w.disp {
			t.Errorf("frame %d Disposal = %v, want %v", i, fi.Disposal, w.disp)
		}
		if fi.Bounds != w.bounds {
			t.Errorf("frame %d Bounds = %v, want %v", i, fi.Bounds, w.bounds)
		}
		if fi.Blend != BlendOver {
			t.Errorf("frame %d Blend = %v, want BlendOver", i, fi.Blend)
		}
	}
	if got := c.Frame(0).RequiredFrame; got != NoFrame {
		t.Errorf("frame 0 RequiredFrame = %d, want NoFrame", got)
	}
	if got := c.Frame(1).RequiredFrame; got != 0 {
		t.Errorf("frame 1 RequiredFrame = %d, want 0", got)
	}
	if got := c.Frame(2).RequiredFrame; got != 1 {
		t.Errorf("frame 2 RequiredFrame = %d, want 1", got)
	}
}

func TestGIFDecodeFrame(t *testing.T) {
	data := testimg.GIF(4, 4,
		testimg.GIFFrame{Rect: image.Rect(0, 0, 4, 4), Index: 1, Delay: 10},
		testimg.GIFFrame{Rect: image.Rect(1, 1, 3, 3), Index: 3, Delay: 10},
	)
	c, err := Open(data)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer c.Close()

	canvas := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	if err := c.DecodeFrame(0, canvas); err != nil {
		t.Fatalf("DecodeFrame(0) error = %v", err)
	}
	if got := nrgbaAt(canvas, 2, 2); got != testimg.Red {
		t.Errorf("after frame 0 pixel (2,2) = %v, want red", got)
	}

	if err := c.DecodeFrame(1, canvas); err != nil {
		t.Fatalf("DecodeFrame(1) error = %v", err)
	}
	if got := nrgbaAt(canvas, 2, 2); got != testimg.Blue {
		t.Errorf("after frame 1 pixel (2,2) = %v, want blue", got)
	}
	if got := nrgbaAt(canvas, 0, 0); got != testimg.Red {
		t.Errorf("after frame 1 pixel (0,0) = %v, want red", got)
	}
}

func TestGIFTransparentOver(t *testing.T) {
	data := testimg.GIF(2, 1,
		testimg.GIFFrame{Rect: image.Rect(0, 0, 2, 1), Index: 2},
		testimg.GIFFrame{Rect: image.Rect(0, 0, 2, 1), Index: 0},
	)
	c, err := Open(data)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer c.Close()

	canvas := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	for i := 0; i < 2; i++ {
		if err := c.DecodeFrame(i, canvas); err != nil {
			t.Fatalf("DecodeFrame(%d) error = %v", i, err)
		}
	}
	if got := nrgbaAt(canvas, 1, 0); got != testimg.Green {
		t.Errorf("transparent frame overwrote canvas: %v", got)
	}
}

func TestDecodeFrameErrors(t *testing.T) {
	data := testimg.GIF(2, 2, testimg.GIFFrame{Rect: image.Rect(0, 0, 2, 2), Index: 1})
	c, err := Open(data)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	canvas := image.NewNRGBA(image.Rect(0, 0, 2, 2))

	for _, i := range []int{-1, 1, 100} {
		if err := c.DecodeFrame(i, canvas); !errors.Is(err, ErrFrameIndex) {
			t.Errorf("DecodeFrame(%d) error = %v, want ErrFrameIndex", i, err)
		}
	}

	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := c.DecodeFrame(0, canvas); !errors.Is(err, ErrClosed) {
		t.Errorf("DecodeFrame after Close error = %v, want ErrClosed", err)
	}
}

func translucent(w, h int, c color.NRGBA) *image.NRGBA {
	img := testimg.Solid(w, h, c)
	// One translucent pixel keeps every frame in the RGBA color type.
	img.SetNRGBA(w-1, h-1, color.NRGBA{R: c.R, G: c.G, B: c.B, A: 128})
	return img
}

func TestIsAnimatedPNG(t *testing.T) {
	anim := testimg.APNG(4, 4, 0,
		testimg.APNGFrame{Image: translucent(4, 4, testimg.Red), DelayNum: 1, DelayDen: 10},
		testimg.APNGFrame{Image: translucent(2, 2, testimg.Blue), X: 1, Y: 1, DelayNum: 1, DelayDen: 10},
	)
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"apng", anim, true},
		{"still", testimg.PNG(testimg.Solid(2, 2, testimg.Green)), false},
		{"gif", testimg.GIF(1, 1, testimg.GIFFrame{Rect: image.Rect(0, 0, 1, 1), Index: 1}), false},
		{"truncated", anim[:12], false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAnimatedPNG(tt.data); got != tt.want {
				t.Errorf("IsAnimatedPNG() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAPNGFrames(t *testing.T) {
	data := testimg.APNG(4, 4, 3,
		testimg.APNGFrame{Image: translucent(4, 4, testimg.Red), DelayNum: 1, DelayDen: 10,
			Dispose: testimg.APNGDisposeNone, Blend: testimg.APNGBlendSource},
		testimg.APNGFrame{Image: translucent(2, 2, testimg.Blue), X: 1, Y: 1, DelayNum: 5,
			Dispose: testimg.APNGDisposeBackground, Blend: testimg.APNGBlendOver},
		testimg.APNGFrame{Image: translucent(2, 2, testimg.Green), X: 2, Y: 2, DelayNum: 250, DelayDen: 1000,
			Dispose: testimg.APNGDisposePrevious, Blend: testimg.APNGBlendOver},
	)
	c, err := Open(data)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer c.Close()

	if c.Format() != "apng" {
		t.Errorf("Format() = %q, want apng", c.Format())
	}
	if c.Size() != image.Pt(4, 4) {
		t.Errorf("Size() = %v, want (4,4)", c.Size())
	}
	if c.FrameCount() != 3 {
		t.Fatalf("FrameCount() = %d, want 3", c.FrameCount())
	}
	if c.LoopCount() != 3 {
		t.Errorf("LoopCount() = %d, want 3", c.LoopCount())
	}

	want := []struct {
		dur    time.Duration
		disp   Disposal
		blend  Blend
		bounds image.Rectangle
	}{
		{100 * time.Millisecond, DisposeNone, BlendSource, image.Rect(0, 0, 4, 4)},
		{50 * time.Millisecond, DisposeBackground, BlendOver, image.Rect(1, 1, 3, 3)},
		{250 * time.Millisecond, DisposePrevious, BlendOver, image.Rect(2, 2, 4, 4)},
	}
	for i, w := range want {
		fi := c.Frame(i)
		if fi.Duration != w.dur {
			t.Errorf("frame %d Duration = %v, want %v", i, fi.Duration, w.dur)
		}
		if fi.Disposal != w.disp {
			t.Errorf("frame %d Disposal = %v, want %v", i, fi.Disposal, w.disp)
		}
		if fi.Blend != w.blend {
			t.Errorf("frame %d Blend = %v, want %v", i, fi.Blend, w.blend)
		}
		if fi.Bounds != w.bounds {
			t.Errorf("frame %d Bounds = %v, want %v", i, fi.Bounds, w.bounds)
		}
	}

	canvas := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	if err := c.DecodeFrame(0, canvas); err != nil {
		t.Fatalf("DecodeFrame(0) error = %v", err)
	}
	if err := c.DecodeFrame(1, canvas); err != nil {
		t.Fatalf("DecodeFrame(1) error = %v", err)
	}
	if got := nrgbaAt(canvas, 1, 1); got != testimg.Blue {
		t.Errorf("pixel (1,1) = %v, want blue", got)
	}
	if got := nrgbaAt(canvas, 0, 0); got != testimg.Red {
		t.Errorf("pixel (0,0) = %v, want red", got)
	}
}

func TestAPNGFirstFramePrevious(t *testing.T) {
	data := testimg.APNG(2, 2, 0,
		testimg.APNGFrame{Image: translucent(2, 2, testimg.Red), DelayNum: 1, DelayDen: 10,
			Dispose: testimg.APNGDisposePrevious},
		testimg.APNGFrame{Image: translucent(2, 2, testimg.Blue), DelayNum: 1, DelayDen: 10},
	)
	c, err := Open(data)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer c.Close()

	if got := c.Frame(0).Disposal; got != DisposeBackground {
		t.Errorf("first frame Disposal = %v, want background", got)
	}
}

func TestStillPNG(t *testing.T) {
	src := testimg.Solid(3, 2, testimg.Green)
	src.SetNRGBA(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 40})

	c, err := Open(testimg.PNG(src))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer c.Close()

	if c.Format() != "png" {
		t.Errorf("Format() = %q, want png", c.Format())
	}
	if c.FrameCount() != 1 {
		t.Fatalf("FrameCount() = %d, want 1", c.FrameCount())
	}
	fi := c.Frame(0)
	if fi.Duration != 0 || fi.RequiredFrame != NoFrame {
		t.Errorf("Frame(0) = %+v, want zero duration and no required frame", fi)
	}

	canvas := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	if err := c.DecodeFrame(0, canvas); err != nil {
		t.Fatalf("DecodeFrame() error = %v", err)
	}
	if got := nrgbaAt(canvas, 0, 0); got != (color.NRGBA{R: 10, G: 20, B: 30, A: 40}) {
		t.Errorf("pixel (0,0) = %v", got)
	}
	if got := nrgbaAt(canvas, 2, 1); got != testimg.Green {
		t.Errorf("pixel (2,1) = %v, want green", got)
	}
}

func TestNewStillOffsetBounds(t *testing.T) {
	src := image.NewNRGBA(image.Rect(10, 10, 12, 12))
	src.SetNRGBA(11, 11, testimg.Blue)

	c, err := NewStill(src)
	if err != nil {
		t.Fatalf("NewStill() error = %v", err)
	}
	if c.Size() != image.Pt(2, 2) {
		t.Errorf("Size() = %v, want (2,2)", c.Size())
	}
	canvas := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	if err := c.DecodeFrame(0, canvas); err != nil {
		t.Fatalf("DecodeFrame() error = %v", err)
	}
	if got := nrgbaAt(canvas, 1, 1); got != testimg.Blue {
		t.Errorf("pixel (1,1) = %v, want blue", got)
	}

	if _, err := NewStill(image.NewNRGBA(image.Rectangle{})); !errors.Is(err, ErrInvalidCanvas) {
		t.Errorf("NewStill(empty) error = %v, want ErrInvalidCanvas", err)
	}
}

func TestWebPAnimated(t *testing.T) {
	var buf bytes.Buffer
	enc := animation.NewEncoder(&buf, 4, 4, &animation.EncodeOptions{Lossless: true})
	for _, c := range []color.NRGBA{testimg.Red, testimg.Blue, testimg.Green} {
		if err := enc.AddFrame(testimg.Solid(4, 4, c), 80*time.Millisecond); err != nil {
			t.Fatalf("AddFrame() error = %v", err)
		}
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("encoder Close() error = %v", err)
	}

	c, err := Open(buf.Bytes())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer c.Close()

	if c.Format() != "webp" {
		t.Errorf("Format() = %q, want webp", c.Format())
	}
	if c.Size() != image.Pt(4, 4) {
		t.Errorf("Size() = %v, want (4,4)", c.Size())
	}
	if c.FrameCount() != 3 {
		t.Fatalf("FrameCount() = %d, want 3", c.FrameCount())
	}
	if got := c.Frame(0).Duration; got != 80*time.Millisecond {
		t.Errorf("frame 0 Duration = %v, want 80ms", got)
	}

	canvas := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	if err := c.DecodeFrame(0, canvas); err != nil {
		t.Fatalf("DecodeFrame(0) error = %v", err)
	}
	if got := nrgbaAt(canvas, 0, 0); got != testimg.Red {
		t.Errorf("frame 0 pixel = %v, want red", got)
	}
}
