// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package texstore

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/texstore/format"
)

// RenderTarget is a drawable view of one storage level, or of one layer
// of it. It is owned by the storage that returned it and becomes invalid
// when that storage is released.
type RenderTarget struct {
	view         hal.TextureView
	shaderView   hal.TextureView
	texture      hal.Texture
	depthStencil bool
	dimension    gputypes.TextureViewDimension

	width, height, depth int

	mipLevel int
	layer    int

	format   gputypes.TextureFormat
	internal format.Internal
}

// View returns the render-target or depth-stencil view.
func (rt *RenderTarget) View() hal.TextureView { return rt.view }

// ShaderView returns the single-level view used to read the same level,
// or nil on devices that cannot create one.
func (rt *RenderTarget) ShaderView() hal.TextureView { return rt.shaderView }

// Texture returns the native texture the view belongs to.
func (rt *RenderTarget) Texture() hal.Texture { return rt.texture }

// IsDepthStencil reports whether View is a depth-stencil view.
func (rt *RenderTarget) IsDepthStencil() bool { return rt.depthStencil }

func (rt *RenderTarget) Width() int  { return rt.width }
func (rt *RenderTarget) Height() int { return rt.height }
func (rt *RenderTarget) Depth() int  { return rt.depth }

// MipLevel returns the native mip level of the view.
func (rt *RenderTarget) MipLevel() int { return rt.mipLevel }

// Layer returns the first native array layer or depth slice of the view.
func (rt *RenderTarget) Layer() int { return rt.layer }

// Format returns the native view format.
func (rt *RenderTarget) Format() gputypes.TextureFormat { return rt.format }

// InternalFormat returns the storage's internal format.
func (rt *RenderTarget) InternalFormat() format.Internal { return rt.internal }

// Extents returns the size of the view.
func (rt *RenderTarget) Extents() Extents {
	return Extents{Width: rt.width, Height: rt.height, Depth: rt.depth}
}

// Subresource returns the native location of the view.
func (rt *RenderTarget) Subresource() Subresource {
	return Subresource{Texture: rt.texture, MipLevel: rt.mipLevel, Layer: rt.layer}
}

func (rt *RenderTarget) blitTarget() BlitTarget {
	return BlitTarget{
		View:      rt.view,
		Texture:   rt.texture,
		MipLevel:  rt.mipLevel,
		Layer:     rt.layer,
		Format:    rt.format,
		Dimension: rt.dimension,
	}
}

// blitSource describes the shader view as a draw source. ok is false when
// the target has no shader view.
func (rt *RenderTarget) blitSource(f gputypes.TextureFormat) (BlitSource, bool) {
	if rt.shaderView == nil {
		return BlitSource{}, false
	}
	return BlitSource{View: rt.shaderView, Format: f, Dimension: rt.dimension}, true
}
