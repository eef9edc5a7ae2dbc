// Package ffmpeg implements video.Player on top of FFmpeg through reisen.
//
// Building this package requires cgo and the FFmpeg development libraries
// (libavformat, libavcodec, libavutil, libswresample, libswscale).
package ffmpeg

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/zergon321/reisen"

	"github.com/gogpu/imgres/internal/logging"
	"github.com/gogpu/imgres/video"
)

// ErrNoVideoStream is returned for media without a video stream.
var ErrNoVideoStream = errors.New("ffmpeg: no video stream")

// Player decodes the first video stream of a media file or stream on a
// background goroutine, paced at the stream's frame rate. Audio is not
// decoded; the volume is recorded for hosts that mix audio themselves.
type Player struct {
	media  *reisen.Media
	stream *reisen.VideoStream
	cfg    video.Config

	fps      float64
	frames   int64
	duration time.Duration

	mu      sync.Mutex
	current *image.RGBA
	volume  int
	err     error

	playing chan struct{}
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
}

var _ video.Player = (*Player)(nil)

// Open opens url. It matches video.Factory.
func Open(url string, cfg video.Config) (video.Player, error) {
	return New(url, cfg)
}

// New opens url and starts decoding when cfg.Autoplay is set.
func New(url string, cfg video.Config) (*Player, error) {
	media, err := reisen.NewMedia(url)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg: open %s: %w", url, err)
	}
	streams := media.VideoStreams()
	if len(streams) == 0 {
		media.Close()
		return nil, ErrNoVideoStream
	}
	if err := media.OpenDecode(); err != nil {
		media.Close()
		return nil, fmt.Errorf("ffmpeg: decode %s: %w", url, err)
	}
	stream := streams[0]
	if err := stream.Open(); err != nil {
		_ = media.CloseDecode()
		media.Close()
		return nil, fmt.Errorf("ffmpeg: open stream: %w", err)
	}

	p := &Player{
		media:   media,
		stream:  stream,
		cfg:     cfg,
		frames:  stream.FrameCount(),
		playing: make(chan struct{}),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	if num, den := stream.FrameRate(); num > 0 && den > 0 {
		p.fps = float64(num) / float64(den)
	}
	if d, err := media.Duration(); err == nil {
		p.duration = d
	}
	if cfg.Live || p.frames <= 0 {
		p.frames = video.Unbounded
	}

	go p.run()
	if cfg.Autoplay {
		p.Play()
	}
	return p, nil
}

// Play starts playback. Calling Play more than once has no effect.
func (p *Player) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	select {
	case <-p.playing:
	default:
		close(p.playing)
	}
}

func (p *Player) run() {
	defer close(p.done)

	select {
	case <-p.playing:
	case <-p.stop:
		return
	}

	interval := time.Second / 30
	if p.fps > 0 {
		interval = time.Duration(float64(time.Second) / p.fps)
	}
	// Live sources are pulled as fast as they arrive so latency stays bounded.
	if p.cfg.Live && p.cfg.MaxLatency > 0 && p.cfg.MaxLatency < interval {
		interval = p.cfg.MaxLatency
	}
	tick := time.NewTicker(interval)
	defer tick.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-tick.C:
		}
		img, err := p.next()
		if err != nil {
			p.setErr(err)
			return
		}
		if img == nil {
			if !p.cfg.Loop || p.cfg.Live {
				return
			}
			if err := p.stream.Rewind(0); err != nil {
				p.setErr(err)
				return
			}
			continue
		}
		p.mu.Lock()
		p.current = img
		p.mu.Unlock()
	}
}

// next reads packets until a video frame is decoded. It returns nil at the
// end of the media.
func (p *Player) next() (*image.RGBA, error) {
	for {
		packet, ok, err := p.media.ReadPacket()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		if packet.Type() != reisen.StreamVideo || packet.StreamIndex() != p.stream.Index() {
			continue
		}
		frame, ok, err := p.stream.ReadVideoFrame()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		if frame == nil {
			continue
		}
		return frame.Image(), nil
	}
}

func (p *Player) setErr(err error) {
	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
	logging.Logger().Warn("ffmpeg: playback stopped", "error", err)
}

func (p *Player) FrameCount() int64 { return p.frames }

func (p *Player) Duration() time.Duration { return p.duration }

func (p *Player) FrameRate() float64 { return p.fps }

func (p *Player) IsLive() bool { return p.cfg.Live }

func (p *Player) SetVolume(volume int) {
	p.mu.Lock()
	p.volume = volume
	p.mu.Unlock()
}

// Volume returns the last volume set.
func (p *Player) Volume() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// Current returns the latest decoded picture.
func (p *Player) Current() (image.Image, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		if p.err != nil {
			return nil, p.err
		}
		return nil, video.ErrNotOpen
	}
	return p.current, nil
}

// Stop halts decoding and waits for the decoder goroutine to exit.
func (p *Player) Stop() error {
	p.once.Do(func() { close(p.stop) })
	<-p.done
	return nil
}

// Close stops playback and releases the FFmpeg handles.
func (p *Player) Close() error {
	_ = p.Stop()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.media == nil {
		return nil
	}
	err := p.stream.Close()
	err = errors.Join(err, p.media.CloseDecode())
	p.media.Close()
	p.media = nil
	return err
}
