// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package format maps abstract internal texture formats onto native
// WebGPU formats.
//
// For every [Internal] format and device [Tier] the package answers:
//   - the native texture, shader-view, render-target and depth-stencil formats
//   - the formats of the auxiliary swizzle texture
//   - block dimensions and sizes for compressed formats
//   - per pixel-type load functions converting client memory into the
//     native byte layout
//
// Example:
//
//	info := format.Lookup(format.RGB8, format.TierFull)
//	load, ok := info.Load(format.UnsignedByte)
//	if ok {
//	    load.Func(w, h, 1, src, srcRow, srcDepth, dst, dstRow, dstDepth)
//	}
package format

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// Internal is an abstract sized internal format, as requested by the
// texture front end.
type Internal uint16

// Internal formats understood by the table.
const (
	Undefined Internal = iota
	RGBA8
	SRGB8Alpha8
	RGB8
	RGBA4
	RGB5A1
	RGB565
	BGRA8
	R8
	RG8
	Alpha8
	Luminance8
	LuminanceAlpha8
	R16F
	RGBA16F
	R32F
	RGBA32F
	RGBA8UI
	R32UI
	Depth16
	Depth24Stencil8
	Depth32F
	BC1
	BC3
	internalCount
)

var internalNames = [internalCount]string{
	Undefined:       "Undefined",
	RGBA8:           "RGBA8",
	SRGB8Alpha8:     "SRGB8Alpha8",
	RGB8:            "RGB8",
	RGBA4:           "RGBA4",
	RGB5A1:          "RGB5A1",
	RGB565:          "RGB565",
	BGRA8:           "BGRA8",
	R8:              "R8",
	RG8:             "RG8",
	Alpha8:          "Alpha8",
	Luminance8:      "Luminance8",
	LuminanceAlpha8: "LuminanceAlpha8",
	R16F:            "R16F",
	RGBA16F:         "RGBA16F",
	R32F:            "R32F",
	RGBA32F:         "RGBA32F",
	RGBA8UI:         "RGBA8UI",
	R32UI:           "R32UI",
	Depth16:         "Depth16",
	Depth24Stencil8: "Depth24Stencil8",
	Depth32F:        "Depth32F",
	BC1:             "BC1",
	BC3:             "BC3",
}

// String returns the format name.
func (f Internal) String() string {
	if f < internalCount {
		return internalNames[f]
	}
	return fmt.Sprintf("Internal(%d)", uint16(f))
}

// Valid reports whether f names a known format other than Undefined.
func (f Internal) Valid() bool {
	return f > Undefined && f < internalCount
}

// Tier is the capability tier of the device. Lower tiers cannot
// create some kinds of views.
type Tier uint8

const (
	// TierFull supports every view kind, swizzling and partial mip ranges.
	TierFull Tier = iota

	// TierLimited cannot sample depth textures, cannot swizzle, cannot
	// create single-level shader views and only samples either one level
	// or the whole chain.
	TierLimited
)

// String returns the tier name.
func (t Tier) String() string {
	switch t {
	case TierFull:
		return "Full"
	case TierLimited:
		return "Limited"
	default:
		return fmt.Sprintf("Tier(%d)", uint8(t))
	}
}

// Info describes how an internal format is stored natively.
// A zero (Undefined) native format means the view kind is unavailable.
type Info struct {
	Internal Internal

	// Texture is the format of the primary native texture.
	Texture gputypes.TextureFormat

	// Shader is the format of sampling views. ShaderAspect selects the
	// sampled aspect of depth/stencil textures.
	Shader       gputypes.TextureFormat
	ShaderAspect gputypes.TextureAspect

	RenderTarget gputypes.TextureFormat
	DepthStencil gputypes.TextureFormat

	// Swizzle formats describe the auxiliary texture used to emulate
	// channel swizzles.
	SwizzleTexture      gputypes.TextureFormat
	SwizzleShader       gputypes.TextureFormat
	SwizzleRenderTarget gputypes.TextureFormat

	// BlockWidth and BlockHeight are 1 for uncompressed formats.
	BlockWidth  int
	BlockHeight int

	// BlockBytes is the size of one block, or one texel when uncompressed.
	BlockBytes int

	DepthBits   int
	StencilBits int

	// Integer formats cannot be filtered.
	Integer bool

	loads []Load
}

// Compressed reports whether the format is block compressed.
func (i Info) Compressed() bool {
	return i.BlockWidth > 1 || i.BlockHeight > 1
}

// PixelBytes returns the native size of one texel. Compressed formats
// report zero.
func (i Info) PixelBytes() int {
	if i.Compressed() {
		return 0
	}
	return i.BlockBytes
}

// HasDepthOrStencil reports whether the native format carries depth or
// stencil bits.
func (i Info) HasDepthOrStencil() bool {
	return i.DepthBits > 0 || i.StencilBits > 0
}

// Load returns the load function used for client data of type t.
func (i Info) Load(t PixelType) (Load, bool) {
	for _, l := range i.loads {
		if l.Type == t {
			return l, true
		}
	}
	return Load{}, false
}

// PixelTypes lists the client pixel types the format accepts.
func (i Info) PixelTypes() []PixelType {
	types := make([]PixelType, len(i.loads))
	for n, l := range i.loads {
		types[n] = l.Type
	}
	return types
}
