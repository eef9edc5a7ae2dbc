package imgres

import (
	"net/http"
	"testing"
	"time"

	"golang.org/x/image/draw"

	"github.com/gogpu/imgres/cache"
	"github.com/gogpu/imgres/consumer"
	"github.com/gogpu/imgres/internal/pixel"
	"github.com/gogpu/imgres/internal/timeline"
	"github.com/gogpu/imgres/source"
)

func applyOptions(opts ...Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// TestDefaultOptions tests the defaults used by Open.
func TestDefaultOptions(t *testing.T) {
	o := defaultOptions()

	if o.format != pixel.FormatRGBAPremul {
		t.Errorf("format = %v, want RGBAPremul", o.format)
	}
	if o.interpolation != Bilinear {
		t.Errorf("interpolation = %v, want Bilinear", o.interpolation)
	}
	if o.cpuExpiry != cache.DefaultExpiry {
		t.Errorf("cpuExpiry = %v, want %v", o.cpuExpiry, cache.DefaultExpiry)
	}
	if o.rebase != timeline.DefaultRebase {
		t.Errorf("rebase = %v, want %v", o.rebase, timeline.DefaultRebase)
	}
	if o.fetcher.MaxBytes != source.DefaultMaxBytes {
		t.Errorf("MaxBytes = %d, want %d", o.fetcher.MaxBytes, source.DefaultMaxBytes)
	}
	if o.players != nil {
		t.Error("players should default to nil")
	}
}

// TestOptionsApplied tests that each option reaches its field.
func TestOptionsApplied(t *testing.T) {
	client := &http.Client{Timeout: time.Second}
	clock := newFakeClock()
	c := consumer.NewBasic(10, nil)

	o := applyOptions(
		WithConsumer(c),
		WithHTTPClient(client),
		WithUserAgent("imgres-test"),
		WithMaxBytes(1024),
		WithPixelFormat(FormatBGRA8),
		WithInterpolation(Nearest),
		WithCPUExpiry(time.Minute),
		WithClock(clock),
		WithRebaseInterval(time.Hour),
	)

	if o.consumer != c {
		t.Error("consumer not set")
	}
	if o.fetcher.Client != client || o.fetcher.UserAgent != "imgres-test" || o.fetcher.MaxBytes != 1024 {
		t.Errorf("fetcher = %+v", o.fetcher)
	}
	if o.format != FormatBGRA8 {
		t.Errorf("format = %v, want BGRA8", o.format)
	}
	if o.interpolation != Nearest {
		t.Errorf("interpolation = %v, want Nearest", o.interpolation)
	}
	if o.cpuExpiry != time.Minute || o.rebase != time.Hour {
		t.Errorf("cpuExpiry = %v rebase = %v", o.cpuExpiry, o.rebase)
	}
	if o.clock != Clock(clock) {
		t.Error("clock not set")
	}
}

// TestOptionsIgnoreInvalid tests that invalid values keep the defaults.
func TestOptionsIgnoreInvalid(t *testing.T) {
	o := applyOptions(
		WithMaxBytes(-1),
		WithPixelFormat(PixelFormat(200)),
		WithCPUExpiry(0),
		WithClock(nil),
		WithRebaseInterval(-time.Second),
	)
	want := defaultOptions()

	if o.fetcher.MaxBytes != want.fetcher.MaxBytes {
		t.Errorf("MaxBytes = %d", o.fetcher.MaxBytes)
	}
	if o.format != want.format {
		t.Errorf("format = %v", o.format)
	}
	if o.cpuExpiry != want.cpuExpiry || o.rebase != want.rebase {
		t.Errorf("cpuExpiry = %v rebase = %v", o.cpuExpiry, o.rebase)
	}
	if o.clock == nil {
		t.Error("WithClock(nil) cleared the clock")
	}
}

// TestInterpolationScaler tests the scaler selection.
func TestInterpolationScaler(t *testing.T) {
	tests := []struct {
		in   Interpolation
		want draw.Scaler
	}{
		{Bilinear, draw.ApproxBiLinear},
		{Nearest, draw.NearestNeighbor},
		{CatmullRom, draw.CatmullRom},
		{Interpolation(99), draw.ApproxBiLinear},
	}
	for _, tt := range tests {
		if got := tt.in.scaler(); got != tt.want {
			t.Errorf("Interpolation(%d).scaler() = %v, want %v", tt.in, got, tt.want)
		}
	}
}
