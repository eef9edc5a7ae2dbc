package imgres

import (
	"net/http"
	"time"

	"golang.org/x/image/draw"

	"github.com/gogpu/imgres/cache"
	"github.com/gogpu/imgres/consumer"
	"github.com/gogpu/imgres/internal/pixel"
	"github.com/gogpu/imgres/internal/timeline"
	"github.com/gogpu/imgres/source"
	"github.com/gogpu/imgres/video"
)

// Option configures a Resource during Open.
// Use functional options to customize resource behavior.
//
// Example:
//
//	// Defaults: premultiplied RGBA copies, bilinear scaling, 5s CPU expiry
//	r := imgres.Open("spinner.gif")
//
//	// Straight-alpha BGRA copies for a native surface
//	r := imgres.Open("spinner.gif", imgres.WithPixelFormat(imgres.FormatBGRA8))
type Option func(*options)

// options holds optional configuration for resource creation.
type options struct {
	consumer      consumer.Consumer
	fetcher       source.Fetcher
	format        pixel.Format
	interpolation Interpolation
	cpuExpiry     time.Duration
	clock         timeline.Clock
	rebase        time.Duration
	players       video.Factory
}

// defaultOptions returns the default resource options.
func defaultOptions() options {
	return options{
		fetcher:       source.Fetcher{MaxBytes: source.DefaultMaxBytes},
		format:        pixel.FormatRGBAPremul,
		interpolation: Bilinear,
		cpuExpiry:     cache.DefaultExpiry,
		clock:         timeline.SystemClock{},
		rebase:        timeline.DefaultRebase,
	}
}

// Clock supplies the current time to the animation stopwatch.
type Clock = timeline.Clock

// Pixel formats of the images handed to render callbacks.
const (
	FormatRGBAPremul = pixel.FormatRGBAPremul
	FormatRGBA8      = pixel.FormatRGBA8
	FormatBGRA8      = pixel.FormatBGRA8
	FormatBGRAPremul = pixel.FormatBGRAPremul
)

// PixelFormat is the storage layout of frame copies.
type PixelFormat = pixel.Format

// BGRA is the image type of copies in the BGR formats.
type BGRA = pixel.BGRA

// Interpolation selects the scaler used to resize frames to the target size.
type Interpolation uint8

const (
	// Bilinear is fast approximate bilinear filtering (default).
	Bilinear Interpolation = iota

	// Nearest is nearest-neighbor sampling, suited to pixel art.
	Nearest

	// CatmullRom is slow high-quality bicubic filtering.
	CatmullRom
)

// scaler returns the x/image/draw scaler for i.
func (i Interpolation) scaler() draw.Scaler {
	switch i {
	case Nearest:
		return draw.NearestNeighbor
	case CatmullRom:
		return draw.CatmullRom
	default:
		return draw.ApproxBiLinear
	}
}

// WithConsumer registers c as the resource's first consumer.
func WithConsumer(c consumer.Consumer) Option {
	return func(o *options) {
		o.consumer = c
	}
}

// WithHTTPClient sets the client used to fetch remote references.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.fetcher.Client = c
	}
}

// WithUserAgent overrides the browser-like User-Agent of remote requests.
func WithUserAgent(ua string) Option {
	return func(o *options) {
		o.fetcher.UserAgent = ua
	}
}

// WithMaxBytes caps the size of fetched content.
func WithMaxBytes(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.fetcher.MaxBytes = n
		}
	}
}

// WithPixelFormat sets the format of images handed to render callbacks.
// Invalid formats are ignored.
func WithPixelFormat(f PixelFormat) Option {
	return func(o *options) {
		if f.IsValid() {
			o.format = f
		}
	}
}

// WithInterpolation sets the scaler used to resize frames.
func WithInterpolation(i Interpolation) Option {
	return func(o *options) {
		o.interpolation = i
	}
}

// WithCPUExpiry sets the sliding expiration of CPU cache entries.
func WithCPUExpiry(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.cpuExpiry = d
		}
	}
}

// WithClock sets the time source of the animation stopwatch.
//
// Example:
//
//	// Deterministic frames in tests
//	r := imgres.Open("spinner.gif", imgres.WithClock(fakeClock))
func WithClock(c Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithRebaseInterval sets how long the stopwatch runs before restarting.
func WithRebaseInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.rebase = d
		}
	}
}

// WithPlayerFactory sets the media player used for video references.
// Without one, video references fail to load.
//
// Example:
//
//	import "github.com/gogpu/imgres/video/ffmpeg"
//
//	r := imgres.Open("intro.mp4", imgres.WithPlayerFactory(ffmpeg.Open))
func WithPlayerFactory(f video.Factory) Option {
	return func(o *options) {
		o.players = f
	}
}

// RenderOptions controls one RenderRaster call.
type RenderOptions struct {
	// NoCache produces a fresh frame without reading or filling any cache.
	NoCache bool

	// CacheHint selects the CPU cache entry. Empty means DefaultCacheHint.
	// Ignored for GPU requests.
	CacheHint string

	// GPU requests a texture for this rendering context instead of a CPU
	// image. Calls with a GPU context must run on its owner.
	GPU *GPUContext
}

// DefaultCacheHint is the CPU cache key used when RenderOptions.CacheHint is empty.
const DefaultCacheHint = "default"
