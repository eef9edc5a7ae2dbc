package codec

import "image"

// resolveRequired fills in RequiredFrame for every frame.
//
// A frame is independent when it is the first frame, when it replaces the
// whole canvas (opaque, or drawn with BlendSource), or when the frame it would
// be drawn onto cleared the whole canvas. Frames disposed with
// DisposePrevious leave no trace, so dependencies skip over them.
func resolveRequired(frames []FrameInfo, canvas image.Point) {
	full := image.Rectangle{Max: canvas}
	covers := func(r image.Rectangle) bool {
		return r.Intersect(full) == full
	}

	for i := range frames {
		f := &frames[i]
		if i == 0 {
			f.RequiredFrame = NoFrame
			continue
		}
		if covers(f.Bounds) && (f.Opaque || f.Blend == BlendSource) {
			f.RequiredFrame = NoFrame
			continue
		}

		// A restored frame leaves the canvas as its predecessor left it.
		prev := i - 1
		for prev != NoFrame && frames[prev].Disposal == DisposePrevious {
			prev--
		}
		if prev == NoFrame {
			f.RequiredFrame = NoFrame
			continue
		}

		p := frames[prev]
		if p.Disposal == DisposeBackground && covers(p.Bounds) {
			f.RequiredFrame = NoFrame
			continue
		}
		f.RequiredFrame = prev
	}
}

// Independent returns the nearest frame at or before i that needs no earlier
// frame. Compositing from a cleared canvas starting at that frame and running
// through i reproduces frame i.
func Independent(c Codec, i int) int {
	for i > 0 {
		req := c.Frame(i).RequiredFrame
		if req == NoFrame {
			return i
		}
		i = req
	}
	return 0
}
