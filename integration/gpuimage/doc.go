// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package gpuimage displays imgres resources in gogpu GPU-accelerated windows.
//
// An Image is the GPU side of one widget showing a shared resource. It
// registers itself as a consumer of the resource, keeps a rendering context
// for its window and draws the current frame as a texture:
//
//	Resource (shared) -> current frame -> GPU Texture (cached) -> Window
//
// # Usage
//
//	res := imgres.Open("spinner.gif")
//	img, _ := gpuimage.New(res, app.GPUContextProvider(), 128, 128, nil)
//	defer img.Close()
//
//	app.OnDraw(func(dc *gogpu.Context) {
//	    img.RenderToPosition(dc.AsTextureDrawer(), 16, 16)
//	})
//
// # Thread Safety
//
// Image is NOT safe for concurrent use. All methods except SetHidden and
// SetVolume must be called from the render thread, which owns the textures.
// Texture destruction requested elsewhere, for example by Resource.Dispose on
// a loader goroutine, is queued and runs on the next render.
package gpuimage
