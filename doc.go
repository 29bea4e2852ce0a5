// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package texstore manages GPU-resident texture storage for a graphics API
// translation layer.
//
// # Overview
//
// A Storage owns the native texture behind one client texture object and
// every view derived from it. Views are created lazily and cached:
//
//   - shader views, keyed by base level, level count and swizzle
//   - single-level shader views, used as blit sources
//   - render-target and depth-stencil views, per level and layer
//   - an auxiliary swizzle texture emulating channel remapping
//
// Four shapes are supported: 2D (New2D, NewFromSwapChain), cube (NewCube),
// 3D (New3D) and 2D array (New2DArray).
//
// # Quick Start
//
//	r := halrenderer.New(device, queue)
//	r.SetBlitter(blit.New(r))
//	s, err := texstore.New2D(r, format.RGBA8, true, 256, 256, 0, false)
//	if err != nil {
//		return err
//	}
//	defer s.Release()
//
//	view, err := s.ShaderView(texstore.SamplerState{
//		MaxLevel:     s.LevelCount(),
//		MipmapFilter: gputypes.MipmapFilterModeLinear,
//	})
//
// # Images
//
// Per-level staging images (see the staging package) can own the
// authoritative pixels of a storage slot. A storage asks the owning image
// to recover its pixels before the slot is overwritten or the storage is
// released.
//
// # Errors
//
// Allocation failures return ErrOutOfMemory; device loss returns
// ErrDeviceLost, which also matches ErrOutOfMemory. Protocol violations
// are programming errors: builds with the texstoredebug tag panic, other
// builds log them and continue.
//
// # Logging
//
// The package is silent by default. Use SetLogger to route diagnostics to
// a slog.Logger.
package texstore
