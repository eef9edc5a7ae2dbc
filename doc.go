// Package imgres loads animated images, vector images and video and serves
// their current frame to UI widgets.
//
// # Overview
//
// imgres is the image resource engine of the GoGPU ecosystem. A Resource is
// opened once per source and shared by every widget that displays it. Each
// render call composites the frame the animation clock selects, scales it to
// the widget's size and hands it to a callback, either as a CPU image or as a
// GPU texture of the caller's rendering context.
//
// # Quick Start
//
//	import "github.com/gogpu/imgres"
//
//	// Open never fails; check Loaded to show a fallback.
//	res := imgres.Open("assets/spinner.gif")
//	defer res.Dispose()
//
//	// Draw the current frame at 64x64
//	res.RenderRaster(64, 64, func(f imgres.Frame) {
//	    dc.DrawImage(f.Image, x, y)
//	}, imgres.RenderOptions{})
//
// # Sources
//
// References are local paths, file:// URLs or http(s) URLs. Content is
// sniffed: SVG documents become vector resources, GIF, APNG, WebP, PNG, JPEG,
// BMP and TIFF become raster resources (see package codec). Video files and
// streaming schemes are played through a video.Factory, for example
// video/ffmpeg.Open.
//
// # Caching
//
// Raster frames are cached per frame index in two namespaces:
//   - CPU: keyed by RenderOptions.CacheHint, evicted after 5 seconds unused
//   - GPU: one entry per resource, cleared by DisposeGPUCacheAssets
//
// A cached frame is reused while the requested size matches. Textures are
// only reused with the GPUContext that created them, and only until the
// context is invalidated.
//
// # Threading
//
// All methods are safe for concurrent use. Textures are destroyed on the
// owner of their context: calls made elsewhere post the destruction to the
// context's affinity.Executor.
//
// # Logging
//
// The package is silent by default. Use SetLogger to route its log/slog
// output to a handler.
package imgres

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0-alpha.1"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0

	// VersionPrerelease is the prerelease identifier
	VersionPrerelease = "alpha.1"
)
