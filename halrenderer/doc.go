// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package halrenderer implements [texstore.Renderer] over a HAL device and
// queue from github.com/gogpu/wgpu/hal.
//
// Textures created through the renderer are tracked against an optional
// memory budget. Region copies are recorded into one command encoder per
// call and submitted immediately; command buffers are reclaimed once the
// queue reports the submission complete.
//
// # Quick Start
//
//	r := halrenderer.New(device, queue,
//	    halrenderer.WithCaps(halrenderer.DetectCaps(info)),
//	    halrenderer.WithMemoryBudget(512),
//	)
//	defer r.Close()
//
//	b := blit.New(r)
//	defer b.Close()
//	r.SetBlitter(b)
//
//	s, err := texstore.New2D(r, format.RGBA8, true, 256, 256, 0, false)
//
// # Shared Devices
//
// [FromProvider] accepts a gpucontext.DeviceProvider, such as a gogpu
// application, and borrows its device and queue. The borrowed device is
// never destroyed by the renderer.
package halrenderer
