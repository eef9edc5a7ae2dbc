package imgres

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/imgres/cache"
	"github.com/gogpu/imgres/codec"
	"github.com/gogpu/imgres/consumer"
	"github.com/gogpu/imgres/internal/compose"
	"github.com/gogpu/imgres/internal/pixel"
	"github.com/gogpu/imgres/internal/slot"
	"github.com/gogpu/imgres/internal/timeline"
	"github.com/gogpu/imgres/source"
	"github.com/gogpu/imgres/vector"
	"github.com/gogpu/imgres/video"
)

// Resource is one playable image or video, shared by every widget that
// displays it.
//
// A Resource is opened once, classified by its reference and content, and
// then serves frames sized for each caller. Raster frames are cached in two
// namespaces: a CPU cache keyed by a caller hint with sliding expiration, and
// a GPU cache of textures that is only cleared explicitly.
//
// All state is guarded by one mutex; render calls are synchronous.
// Resource is safe for concurrent use.
type Resource struct {
	ref  string
	opts options

	mu       sync.Mutex
	disposed atomic.Bool
	kind     Kind
	err      error
	frames   int

	codec    codec.Codec
	comp     *compose.Compositor
	timeline *timeline.Timeline
	watch    *timeline.Stopwatch
	scene    *vector.Scene
	video    *video.Adapter

	consumers *consumer.Registry
	cpu       *cache.Sliding[string, *slot.Set]
	gpu       *slot.Set
	pool      *pixel.Pool
}

// Open resolves ref, loads it and returns the resource. Open never fails:
// when the source cannot be opened the resource reports Loaded() == false,
// Err() holds the cause and render calls return ErrNotLoaded.
func Open(ref string, opts ...Option) *Resource {
	return OpenContext(context.Background(), ref, opts...)
}

// OpenContext is like Open; ctx bounds the fetch of remote references.
func OpenContext(ctx context.Context, ref string, opts ...Option) *Resource {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	r := &Resource{
		ref:  ref,
		opts: o,
		pool: pixel.NewPool(2),
	}
	r.consumers = consumer.NewRegistry(r.applyVolume)
	r.cpu = cache.NewSliding(o.cpuExpiry, r.evictCPU)

	if err := r.load(ctx); err != nil {
		r.err = err
		r.kind = KindNone
		r.logger().Warn("imgres: open failed", "error", err)
	} else {
		r.logger().Info("imgres: opened", "kind", r.kind, "frames", r.frames)
	}

	if o.consumer != nil {
		r.consumers.Add(o.consumer)
	}
	return r
}

func (r *Resource) logger() *slog.Logger {
	return Logger().With("ref", r.ref)
}

// load classifies the reference and opens the matching backend.
func (r *Resource) load(ctx context.Context) error {
	resolved, err := source.Resolve(r.ref)
	if err != nil {
		return err
	}
	r.ref = resolved

	if source.IsVideo(resolved) {
		live := source.IsLive(resolved)
		a, err := video.Open(resolved, video.NewConfig(live), r.opts.players)
		if err != nil {
			return err
		}
		r.video = a
		r.kind = KindVideo
		r.frames = 1
		return nil
	}

	data, err := r.opts.fetcher.Fetch(ctx, resolved)
	if err != nil {
		return err
	}

	if source.IsSVG(data) {
		s, err := vector.Parse(data)
		if err != nil {
			return err
		}
		r.scene = s
		r.kind = KindVector
		r.frames = 1
		return nil
	}

	c, err := codec.Open(data)
	if err != nil {
		return err
	}
	r.codec = c
	r.comp = compose.New(c, r.pool)
	r.frames = c.FrameCount()

	durations := make([]time.Duration, r.frames)
	for i := range durations {
		durations[i] = c.Frame(i).Duration
	}
	r.timeline = timeline.New(durations)
	r.watch = timeline.NewStopwatch(r.opts.clock, r.opts.rebase)

	r.kind = KindStatic
	if r.frames > 1 {
		r.kind = KindAnimated
		r.watch.Start()
	}
	return nil
}

// Ref returns the resolved reference: an absolute path or a URL.
func (r *Resource) Ref() string { return r.ref }

// Kind returns what the resource was opened as.
func (r *Resource) Kind() Kind { return r.kind }

// Loaded reports whether the source was opened successfully.
func (r *Resource) Loaded() bool { return r.err == nil }

// Err returns the reason the resource failed to load, or nil.
func (r *Resource) Err() error { return r.err }

// Disposed reports whether Dispose has been called.
func (r *Resource) Disposed() bool { return r.disposed.Load() }

// Size returns the intrinsic size: the logical canvas of raster images, the
// viewBox of vector images and zero for video.
func (r *Resource) Size() image.Point {
	switch r.kind {
	case KindStatic, KindAnimated:
		return r.codec.Size()
	case KindVector:
		return r.scene.Bounds().Size()
	default:
		return image.Point{}
	}
}

// FrameCount returns the number of frames. Live video reports
// video.Unbounded; failed resources report 0.
func (r *Resource) FrameCount() int64 {
	if r.kind == KindVideo {
		return r.video.Info().FrameCount
	}
	return int64(r.frames)
}

// Duration returns the length of one animation cycle or of the video.
func (r *Resource) Duration() time.Duration {
	switch r.kind {
	case KindAnimated:
		return r.timeline.Total()
	case KindVideo:
		return r.video.Info().Duration
	default:
		return 0
	}
}

// FrameDuration returns the display time of frame i after zero delays were
// normalized, or zero for non-animated resources.
func (r *Resource) FrameDuration(i int) time.Duration {
	if r.kind != KindAnimated {
		return 0
	}
	return r.timeline.Duration(i)
}

// FrameRate returns frames per second: the average rate of an animation or
// the video stream rate. Zero for stills.
func (r *Resource) FrameRate() float64 {
	switch r.kind {
	case KindAnimated:
		return float64(r.frames) / r.timeline.Total().Seconds()
	case KindVideo:
		return r.video.Info().FrameRate
	default:
		return 0
	}
}

// IsLive reports whether the resource is a live video stream.
func (r *Resource) IsLive() bool {
	return r.kind == KindVideo && r.video.Info().Live
}

// LoopCount returns the declared loop count of an animation; 0 means forever.
// Playback always loops.
func (r *Resource) LoopCount() int {
	if r.codec == nil {
		return 0
	}
	return r.codec.LoopCount()
}

// CurrentFrame returns the index of the frame the animation clock selects now.
func (r *Resource) CurrentFrame() int {
	if r.kind != KindAnimated {
		return 0
	}
	return r.timeline.FrameAt(r.watch.Elapsed())
}

// AddConsumer registers c. Adding a consumer twice is a no-op.
func (r *Resource) AddConsumer(c consumer.Consumer) error {
	if r.disposed.Load() {
		return ErrDisposed
	}
	// The registry refuses additions once Dispose has closed it.
	if !r.consumers.Add(c) && r.disposed.Load() {
		return ErrDisposed
	}
	return nil
}

// RemoveConsumer unregisters c and recomputes the aggregate volume.
// Removing the last consumer does not dispose the resource.
func (r *Resource) RemoveConsumer(c consumer.Consumer) {
	r.consumers.Remove(c)
}

// Consumers returns the number of registered consumers.
func (r *Resource) Consumers() int { return r.consumers.Len() }

// Volume returns the aggregate volume over visible, active consumers.
func (r *Resource) Volume() int { return r.consumers.Volume() }

// applyVolume forwards the aggregate to the video player.
func (r *Resource) applyVolume(v int) {
	if r.video != nil {
		r.video.SetVolume(v)
	}
}

// CacheStats returns the statistics of the CPU frame cache.
func (r *Resource) CacheStats() cache.Stats { return r.cpu.Stats() }

// CacheHints returns the hints currently cached in the CPU namespace.
func (r *Resource) CacheHints() []string { return r.cpu.Keys() }

// evictCPU disposes a CPU slot set leaving the cache. It runs on timer
// goroutines without the resource lock.
func (r *Resource) evictCPU(hint string, set *slot.Set, reason cache.Reason) {
	set.Dispose(false)
	r.logger().Debug("imgres: cpu cache evicted", "hint", hint, "reason", reason)
}

// DisposeCPUCacheAssets drops every CPU cache entry. Best effort: it never
// fails, also after Dispose.
func (r *Resource) DisposeCPUCacheAssets() {
	r.cpu.Clear()
}

// DisposeGPUCacheAssets destroys every cached texture, typically when a
// context is torn down. Each texture is destroyed inline when the caller owns
// its context and posted to the context's executor otherwise.
// Best effort: it never fails, also after Dispose.
func (r *Resource) DisposeGPUCacheAssets() {
	r.mu.Lock()
	set := r.gpu
	r.gpu = nil
	r.mu.Unlock()

	if set != nil {
		set.Dispose(false)
		r.logger().Debug("imgres: gpu cache disposed")
	}
}

// Dispose tears the resource down: both caches, the vector scene, the video
// player, the codec, the composite buffer and every consumer subscription.
// Only the first call has an effect. Textures are destroyed through their
// context's executor, so Dispose may be called from any goroutine.
func (r *Resource) Dispose() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.disposed.CompareAndSwap(false, true) {
		return
	}

	r.cpu.Clear()
	if r.gpu != nil {
		r.gpu.Dispose(false)
		r.gpu = nil
	}
	if r.scene != nil {
		if err := r.scene.Close(); err != nil {
			r.logger().Warn("imgres: scene close failed", "error", err)
		}
	}
	if r.video != nil {
		if err := r.video.Close(); err != nil {
			r.logger().Warn("imgres: video close failed", "error", err)
		}
	}
	if r.comp != nil {
		r.comp.Close()
	}
	if r.codec != nil {
		if err := r.codec.Close(); err != nil {
			r.logger().Warn("imgres: codec close failed", "error", err)
		}
	}
	r.consumers.Close()
	r.logger().Info("imgres: disposed")
}

// checkLocked rejects calls on disposed or failed resources.
func (r *Resource) checkLocked() error {
	if r.disposed.Load() {
		return ErrDisposed
	}
	if r.err != nil {
		return fmt.Errorf("%w: %w", ErrNotLoaded, r.err)
	}
	return nil
}
