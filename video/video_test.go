package video

import (
	"errors"
	"image"
	"image/color"
	"sync"
	"testing"
	"time"
)

// fakePlayer records calls and serves a fixed picture.
type fakePlayer struct {
	mu      sync.Mutex
	picture image.Image
	volumes []int
	stopped int
	closed  int
	live    bool
}

func (p *fakePlayer) FrameCount() int64 {
	if p.live {
		return Unbounded
	}
	return 240
}

func (p *fakePlayer) Duration() time.Duration { return 10 * time.Second }

func (p *fakePlayer) FrameRate() float64 { return 24 }

func (p *fakePlayer) IsLive() bool { return p.live }

func (p *fakePlayer) SetVolume(v int) {
	p.mu.Lock()
	p.volumes = append(p.volumes, v)
	p.mu.Unlock()
}

func (p *fakePlayer) Current() (image.Image, error) { return p.picture, nil }

func (p *fakePlayer) Stop() error {
	p.stopped++
	return nil
}

func (p *fakePlayer) Close() error {
	p.closed++
	return nil
}

func opener(p *fakePlayer, got *Config) Factory {
	return func(_ string, cfg Config) (Player, error) {
		if got != nil {
			*got = cfg
		}
		return p, nil
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig(false)
	if !cfg.Autoplay || !cfg.Loop || !cfg.Stats || !cfg.Muted {
		t.Errorf("NewConfig(false) = %+v, want autoplay, loop, stats and muted", cfg)
	}
	if cfg.MaxLatency != 0 {
		t.Errorf("file source MaxLatency = %v, want 0", cfg.MaxLatency)
	}
	if live := NewConfig(true); live.MaxLatency != DefaultLiveLatency || !live.Live {
		t.Errorf("NewConfig(true) = %+v", live)
	}
}

func TestOpen(t *testing.T) {
	p := &fakePlayer{}
	var cfg Config
	a, err := Open("rtsp://camera/stream", NewConfig(true), opener(p, &cfg))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer a.Close()

	if !cfg.Live {
		t.Error("factory did not receive the live config")
	}
	if len(p.volumes) != 1 || p.volumes[0] != 0 {
		t.Errorf("muted open set volumes %v, want [0]", p.volumes)
	}
}

func TestOpenErrors(t *testing.T) {
	if _, err := Open("a.mp4", NewConfig(false), nil); !errors.Is(err, ErrNoFactory) {
		t.Errorf("Open(nil factory) error = %v, want ErrNoFactory", err)
	}

	boom := errors.New("boom")
	_, err := Open("a.mp4", NewConfig(false), func(string, Config) (Player, error) { return nil, boom })
	if !errors.Is(err, boom) {
		t.Errorf("Open() error = %v, want wrapped factory error", err)
	}
}

func TestInfo(t *testing.T) {
	a, err := Open("a.mp4", NewConfig(false), opener(&fakePlayer{}, nil))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	want := Info{FrameCount: 240, Duration: 10 * time.Second, FrameRate: 24}
	if got := a.Info(); got != want {
		t.Errorf("Info() = %+v, want %+v", got, want)
	}
	_ = a.Close()
	if got := a.Info(); got != (Info{}) {
		t.Errorf("Info() after Close = %+v, want zero", got)
	}
}

func TestSetVolume(t *testing.T) {
	p := &fakePlayer{}
	a, err := Open("a.mp4", NewConfig(false), opener(p, nil))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer a.Close()

	a.SetVolume(30)
	a.SetVolume(30)
	a.SetVolume(150)
	a.SetVolume(-5)

	want := []int{0, 30, 100, 0}
	if len(p.volumes) != len(want) {
		t.Fatalf("volumes = %v, want %v", p.volumes, want)
	}
	for i := range want {
		if p.volumes[i] != want[i] {
			t.Errorf("volumes[%d] = %d, want %d", i, p.volumes[i], want[i])
		}
	}
	if a.Volume() != 0 {
		t.Errorf("Volume() = %d, want 0", a.Volume())
	}
}

func TestSetVolumeMuted(t *testing.T) {
	tests := []struct {
		name      string
		volumes   []int
		wantMuted bool
		wantCalls []int
	}{
		{"zero keeps muted", []int{0, 0}, true, []int{0}},
		{"positive unmutes", []int{0, 40}, false, []int{0, 40}},
		{"back to zero", []int{40, 0}, false, []int{0, 40, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakePlayer{}
			a, err := Open("a.mp4", NewConfig(false), opener(p, nil))
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			defer a.Close()

			for _, v := range tt.volumes {
				a.SetVolume(v)
			}
			if a.Muted() != tt.wantMuted {
				t.Errorf("Muted() = %v, want %v", a.Muted(), tt.wantMuted)
			}
			if len(p.volumes) != len(tt.wantCalls) {
				t.Fatalf("volumes = %v, want %v", p.volumes, tt.wantCalls)
			}
			for i := range tt.wantCalls {
				if p.volumes[i] != tt.wantCalls[i] {
					t.Errorf("volumes[%d] = %d, want %d", i, p.volumes[i], tt.wantCalls[i])
				}
			}
		})
	}
}

func TestFrame(t *testing.T) {
	pic := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := range pic.Pix {
		pic.Pix[i] = 0xff
	}
	p := &fakePlayer{}
	a, err := Open("a.mp4", NewConfig(false), opener(p, nil))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer a.Close()

	if _, err := a.Frame(4, 4, nil); !errors.Is(err, ErrNotOpen) {
		t.Errorf("Frame() without picture error = %v, want ErrNotOpen", err)
	}

	p.picture = pic
	img, err := a.Frame(4, 2, nil)
	if err != nil {
		t.Fatalf("Frame() error = %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 4, 2) {
		t.Errorf("Frame() bounds = %v", img.Bounds())
	}
	if got := img.NRGBAAt(1, 1); got != (color.NRGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("Frame() pixel = %v, want white", got)
	}

	if _, err := a.Frame(0, 2, nil); err == nil {
		t.Error("Frame(0, 2) succeeded")
	}
}

func TestCloseIdempotent(t *testing.T) {
	p := &fakePlayer{}
	a, err := Open("a.mp4", NewConfig(false), opener(p, nil))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := a.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
	}
	if p.stopped != 1 || p.closed != 1 {
		t.Errorf("stopped=%d closed=%d, want 1 and 1", p.stopped, p.closed)
	}
	if _, err := a.Frame(2, 2, nil); !errors.Is(err, ErrClosed) {
		t.Errorf("Frame() after Close error = %v, want ErrClosed", err)
	}
	a.SetVolume(50)
}
