package codec

import (
	"image"
	"testing"
)

// tableCodec is a Codec over a fixed frame table.
type tableCodec struct {
	info []FrameInfo
}

func (c *tableCodec) Format() string                          { return "table" }
func (c *tableCodec) Size() image.Point                       { return image.Pt(4, 4) }
func (c *tableCodec) FrameCount() int                         { return len(c.info) }
func (c *tableCodec) Frame(i int) FrameInfo                   { return c.info[i] }
func (c *tableCodec) LoopCount() int                          { return 0 }
func (c *tableCodec) DecodeFrame(_ int, _ *image.NRGBA) error { return nil }
func (c *tableCodec) Close() error                            { return nil }

func TestResolveRequired(t *testing.T) {
	full := image.Rect(0, 0, 4, 4)
	part := image.Rect(1, 1, 3, 3)

	tests := []struct {
		name   string
		frames []FrameInfo
		want   []int
	}{
		{
			name:   "chain",
			frames: []FrameInfo{{Bounds: full}, {Bounds: part}, {Bounds: part}},
			want:   []int{NoFrame, 0, 1},
		},
		{
			name:   "opaque full frame is independent",
			frames: []FrameInfo{{Bounds: full}, {Bounds: part}, {Bounds: full, Opaque: true}},
			want:   []int{NoFrame, 0, NoFrame},
		},
		{
			name:   "source blend over full canvas is independent",
			frames: []FrameInfo{{Bounds: full}, {Bounds: full, Blend: BlendSource}},
			want:   []int{NoFrame, NoFrame},
		},
		{
			name:   "partial source blend depends",
			frames: []FrameInfo{{Bounds: full}, {Bounds: part, Blend: BlendSource}},
			want:   []int{NoFrame, 0},
		},
		{
			name:   "full background clear",
			frames: []FrameInfo{{Bounds: full, Disposal: DisposeBackground}, {Bounds: part}},
			want:   []int{NoFrame, NoFrame},
		},
		{
			name:   "partial background clear depends",
			frames: []FrameInfo{{Bounds: full}, {Bounds: part, Disposal: DisposeBackground}, {Bounds: part}},
			want:   []int{NoFrame, 0, 1},
		},
		{
			name: "previous disposal is skipped",
			frames: []FrameInfo{
				{Bounds: full},
				{Bounds: part},
				{Bounds: part, Disposal: DisposePrevious},
				{Bounds: part},
			},
			want: []int{NoFrame, 0, 1, 1},
		},
		{
			name: "opaque previous disposal restores its predecessor",
			frames: []FrameInfo{
				{Bounds: part},
				{Bounds: full, Opaque: true, Disposal: DisposePrevious},
				{Bounds: part},
			},
			want: []int{NoFrame, NoFrame, 0},
		},
		{
			name: "previous chain to first frame",
			frames: []FrameInfo{
				{Bounds: full, Disposal: DisposePrevious},
				{Bounds: part},
			},
			want: []int{NoFrame, NoFrame},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolveRequired(tt.frames, image.Pt(4, 4))
			for i, w := range tt.want {
				if got := tt.frames[i].RequiredFrame; got != w {
					t.Errorf("frame %d RequiredFrame = %d, want %d", i, got, w)
				}
			}
		})
	}
}

func TestIndependent(t *testing.T) {
	full := image.Rect(0, 0, 4, 4)
	part := image.Rect(1, 1, 3, 3)
	frames := []FrameInfo{
		{Bounds: full},
		{Bounds: part},
		{Bounds: full, Opaque: true},
		{Bounds: part},
		{Bounds: part},
	}
	resolveRequired(frames, image.Pt(4, 4))
	c := &tableCodec{info: frames}

	want := []int{0, 0, 2, 2, 2}
	for i, w := range want {
		if got := Independent(c, i); got != w {
			t.Errorf("Independent(%d) = %d, want %d", i, got, w)
		}
	}
}
