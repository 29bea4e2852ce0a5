// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package blit draws one texture into another on a HAL device. It
// implements [texstore.Blitter] for renderers from the halrenderer
// package: channel swizzles, resampling copies used for mip generation,
// and partial depth copies.
//
// Every draw is a single triangle covering the destination viewport. The
// fragment stage reads the source with textureLoad, or with a linear
// sampler when a filterable float source is resampled. Shaders are WGSL
// generated per source dimension and component type; WithSPIRV compiles
// them with naga first.
//
// Layers of array and cube targets are drawn one at a time through
// single-layer views. Slices of 3D targets are drawn into a temporary 2D
// texture and copied into place.
package blit
