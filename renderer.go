// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package texstore

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Renderer is the device collaborator a storage allocates through.
// The halrenderer package provides the implementation over a HAL device.
type Renderer interface {
	// Caps returns the device capability snapshot.
	Caps() Caps

	CreateTexture(desc *hal.TextureDescriptor) (hal.Texture, error)
	DestroyTexture(tex hal.Texture)
	CreateTextureView(tex hal.Texture, desc *hal.TextureViewDescriptor) (hal.TextureView, error)
	DestroyTextureView(view hal.TextureView)

	// CopyTextureToTexture copies regions between two textures and
	// submits the copy.
	CopyTextureToTexture(src, dst hal.Texture, regions []hal.TextureCopy) error

	// WriteTexture uploads tightly described bytes into a texture region.
	WriteTexture(dst *hal.ImageCopyTexture, data []byte, layout *hal.ImageDataLayout, size *hal.Extent3D) error

	// Blitter returns the helper used for draws into textures.
	Blitter() Blitter

	// NotifyDeviceLost is called when a creation call reports device loss.
	NotifyDeviceLost()
}

// BlitSource is a single-level view a draw reads from. Dimension is 2D,
// 2D-array or 3D; cube levels are read as 2D arrays of their faces.
type BlitSource struct {
	View      hal.TextureView
	Format    gputypes.TextureFormat
	Dimension gputypes.TextureViewDimension
}

// BlitTarget addresses one mip level of a texture as a draw destination.
// View covers every layer of the level starting at Layer. For 3D targets
// Layer is the first depth slice.
type BlitTarget struct {
	View      hal.TextureView
	Texture   hal.Texture
	MipLevel  int
	Layer     int
	Format    gputypes.TextureFormat
	Dimension gputypes.TextureViewDimension
}

// Blitter performs the draws a storage cannot express as plain copies.
type Blitter interface {
	// SwizzleTexture renders src into dst remapping channels. size.Depth
	// layers or slices are rendered.
	SwizzleTexture(src BlitSource, dst BlitTarget, size Extents, swizzle Swizzle) error

	// CopyTexture resamples srcArea of src into dstArea of dst, clipped to
	// scissor when it is non-nil.
	CopyTexture(src BlitSource, srcArea Box, srcSize Extents,
		dst BlitTarget, dstArea Box, dstSize Extents,
		scissor *Box, filter gputypes.FilterMode) error

	// CopyDepthStencil copies a depth/stencil region, which native region
	// copies cannot do for partial rectangles.
	CopyDepthStencil(src Subresource, srcArea Box, srcSize Extents,
		dst Subresource, dstArea Box, dstSize Extents, scissor *Box) error
}

// SwapChain is a presentation surface whose back buffer can be wrapped by
// a 2D storage.
type SwapChain interface {
	BackBuffer() hal.Texture
	Format() gputypes.TextureFormat
	Width() int
	Height() int
}
