// Package video adapts media players to the pull-based frame API used by
// resources.
//
// A Player decodes on its own schedule; Adapter asks it for the current
// picture at the size the caller wants. No frames are cached: each pull
// reflects the player's live state.
package video

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"golang.org/x/image/draw"

	"github.com/gogpu/imgres/internal/logging"
)

// Errors returned by adapters and players.
var (
	// ErrNotOpen is returned when a player has no picture yet.
	ErrNotOpen = errors.New("video: no picture available")

	// ErrClosed is returned when using a closed adapter or player.
	ErrClosed = errors.New("video: closed")

	// ErrNoFactory is returned when no player implementation is configured.
	ErrNoFactory = errors.New("video: no player factory")
)

// Unbounded is the frame count reported for live sources of unknown length.
const Unbounded = -1

// DefaultLiveLatency bounds buffering for live sources.
const DefaultLiveLatency = 100 * time.Millisecond

// Config controls how a player is opened.
type Config struct {
	Autoplay bool
	Loop     bool
	Stats    bool
	Muted    bool

	// MaxLatency bounds the player's buffering. Zero leaves the player default.
	MaxLatency time.Duration

	// Live marks a streaming source.
	Live bool
}

// NewConfig returns the configuration used for resources: autoplay, looped,
// statistics on and muted. Live sources get a tight latency bound.
func NewConfig(live bool) Config {
	cfg := Config{
		Autoplay: true,
		Loop:     true,
		Stats:    true,
		Muted:    true,
		Live:     live,
	}
	if live {
		cfg.MaxLatency = DefaultLiveLatency
	}
	return cfg
}

// Player is an external media player bound to one URL.
type Player interface {
	// FrameCount returns the number of frames, or Unbounded.
	FrameCount() int64

	// Duration returns the media duration, zero when unknown.
	Duration() time.Duration

	// FrameRate returns frames per second, zero when unknown.
	FrameRate() float64

	// IsLive reports whether the source is a live stream.
	IsLive() bool

	// SetVolume sets the output volume in the range [0, 100].
	SetVolume(volume int)

	// Current returns the picture currently being displayed. The image is
	// owned by the player and must not be modified.
	Current() (image.Image, error)

	// Stop halts playback.
	Stop() error

	// Close releases the player.
	Close() error
}

// Factory opens a player for url.
type Factory func(url string, cfg Config) (Player, error)

// Info describes an open video.
type Info struct {
	FrameCount int64
	Duration   time.Duration
	FrameRate  float64
	Live       bool
}

// Adapter wraps a Player. Safe for concurrent use.
type Adapter struct {
	mu     sync.Mutex
	player Player
	url    string
	volume int
	muted  bool
}

// Open opens url with factory.
func Open(url string, cfg Config, factory Factory) (*Adapter, error) {
	if factory == nil {
		return nil, ErrNoFactory
	}
	p, err := factory(url, cfg)
	if err != nil {
		return nil, fmt.Errorf("video: open %s: %w", url, err)
	}
	a := &Adapter{player: p, url: url, muted: cfg.Muted}
	if cfg.Muted {
		p.SetVolume(0)
	}
	logging.Logger().Info("video: opened", "ref", url, "live", cfg.Live)
	return a, nil
}

// Info returns the player's metadata.
func (a *Adapter) Info() Info {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.player == nil {
		return Info{}
	}
	return Info{
		FrameCount: a.player.FrameCount(),
		Duration:   a.player.Duration(),
		FrameRate:  a.player.FrameRate(),
		Live:       a.player.IsLive(),
	}
}

// SetVolume applies the aggregate consumer volume. A positive volume unmutes;
// zero keeps a muted player muted.
func (a *Adapter) SetVolume(volume int) {
	volume = min(max(volume, 0), 100)

	a.mu.Lock()
	defer a.mu.Unlock()
	current := a.volume
	if a.muted {
		current = 0
	}
	if a.player == nil || volume == current {
		return
	}
	a.volume = volume
	a.muted = false
	a.player.SetVolume(volume)
}

// Muted reports whether the player is still muted as opened.
func (a *Adapter) Muted() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.muted
}

// Volume returns the last volume applied.
func (a *Adapter) Volume() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.volume
}

// Frame renders the player's current picture scaled to width×height with
// the given scaler. A nil scaler uses bilinear filtering.
func (a *Adapter) Frame(width, height int, scaler draw.Scaler) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("video: invalid frame size %dx%d", width, height)
	}
	if scaler == nil {
		scaler = draw.ApproxBiLinear
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.player == nil {
		return nil, ErrClosed
	}
	src, err := a.player.Current()
	if err != nil {
		return nil, err
	}
	if src == nil {
		return nil, ErrNotOpen
	}
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	scaler.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst, nil
}

// Close stops and releases the player. Close is idempotent.
func (a *Adapter) Close() error {
	a.mu.Lock()
	p := a.player
	a.player = nil
	a.mu.Unlock()

	if p == nil {
		return nil
	}
	stopErr := p.Stop()
	closeErr := p.Close()
	logging.Logger().Info("video: closed", "ref", a.url)
	return errors.Join(stopErr, closeErr)
}
