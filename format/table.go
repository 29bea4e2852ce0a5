// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package format

import "github.com/gogpu/gputypes"

// Short aliases keep the table readable.
const (
	fmtNone    = gputypes.TextureFormatUndefined
	fmtRGBA8   = gputypes.TextureFormatRGBA8Unorm
	fmtRGBA16F = gputypes.TextureFormatRGBA16Float
	fmtRGBA32F = gputypes.TextureFormatRGBA32Float
)

func color(internal Internal, native, swizzle gputypes.TextureFormat, texelBytes int, loads ...Load) Info {
	return Info{
		Internal:            internal,
		Texture:             native,
		Shader:              native,
		ShaderAspect:        gputypes.TextureAspectAll,
		RenderTarget:        native,
		SwizzleTexture:      swizzle,
		SwizzleShader:       swizzle,
		SwizzleRenderTarget: swizzle,
		BlockWidth:          1,
		BlockHeight:         1,
		BlockBytes:          texelBytes,
		loads:               loads,
	}
}

func depth(internal Internal, native gputypes.TextureFormat, texelBytes, depthBits, stencilBits int, loads ...Load) Info {
	return Info{
		Internal:            internal,
		Texture:             native,
		Shader:              native,
		ShaderAspect:        gputypes.TextureAspectDepthOnly,
		DepthStencil:        native,
		SwizzleTexture:      fmtRGBA32F,
		SwizzleShader:       fmtRGBA32F,
		SwizzleRenderTarget: fmtRGBA32F,
		BlockWidth:          1,
		BlockHeight:         1,
		BlockBytes:          texelBytes,
		DepthBits:           depthBits,
		StencilBits:         stencilBits,
		loads:               loads,
	}
}

func compressed(internal Internal, native gputypes.TextureFormat, blockBytes int) Info {
	return Info{
		Internal:            internal,
		Texture:             native,
		Shader:              native,
		ShaderAspect:        gputypes.TextureAspectAll,
		SwizzleTexture:      fmtRGBA8,
		SwizzleShader:       fmtRGBA8,
		SwizzleRenderTarget: fmtRGBA8,
		BlockWidth:          4,
		BlockHeight:         4,
		BlockBytes:          blockBytes,
	}
}

func integer(info Info) Info {
	info.Integer = true
	return info
}

var table = [internalCount]Info{
	RGBA8: color(RGBA8, fmtRGBA8, fmtRGBA8, 4,
		Load{UnsignedByte, 4, copyPixels(4)},
		Load{UnsignedShort4444, 2, loadRGBA4ToRGBA8},
		Load{UnsignedShort5551, 2, loadRGB5A1ToRGBA8},
	),
	SRGB8Alpha8: color(SRGB8Alpha8, gputypes.TextureFormatRGBA8UnormSrgb, gputypes.TextureFormatRGBA8UnormSrgb, 4,
		Load{UnsignedByte, 4, copyPixels(4)},
	),
	RGB8: color(RGB8, fmtRGBA8, fmtRGBA8, 4,
		Load{UnsignedByte, 3, loadRGB8ToRGBA8},
		Load{UnsignedShort565, 2, loadRGB565ToRGBA8},
	),
	RGBA4: color(RGBA4, fmtRGBA8, fmtRGBA8, 4,
		Load{UnsignedByte, 4, copyPixels(4)},
		Load{UnsignedShort4444, 2, loadRGBA4ToRGBA8},
	),
	RGB5A1: color(RGB5A1, fmtRGBA8, fmtRGBA8, 4,
		Load{UnsignedByte, 4, copyPixels(4)},
		Load{UnsignedShort5551, 2, loadRGB5A1ToRGBA8},
	),
	RGB565: color(RGB565, fmtRGBA8, fmtRGBA8, 4,
		Load{UnsignedByte, 3, loadRGB8ToRGBA8},
		Load{UnsignedShort565, 2, loadRGB565ToRGBA8},
	),
	BGRA8: color(BGRA8, gputypes.TextureFormatBGRA8Unorm, fmtRGBA8, 4,
		Load{UnsignedByte, 4, copyPixels(4)},
	),
	R8: color(R8, gputypes.TextureFormatR8Unorm, fmtRGBA8, 1,
		Load{UnsignedByte, 1, copyPixels(1)},
	),
	RG8: color(RG8, gputypes.TextureFormatRG8Unorm, fmtRGBA8, 2,
		Load{UnsignedByte, 2, copyPixels(2)},
	),
	Alpha8: color(Alpha8, fmtRGBA8, fmtRGBA8, 4,
		Load{UnsignedByte, 1, loadA8ToRGBA8},
	),
	Luminance8: color(Luminance8, fmtRGBA8, fmtRGBA8, 4,
		Load{UnsignedByte, 1, loadL8ToRGBA8},
	),
	LuminanceAlpha8: color(LuminanceAlpha8, fmtRGBA8, fmtRGBA8, 4,
		Load{UnsignedByte, 2, loadLA8ToRGBA8},
	),
	R16F: color(R16F, gputypes.TextureFormatR16Float, fmtRGBA16F, 2,
		Load{HalfFloat, 2, copyPixels(2)},
		Load{Float, 4, loadFloatToHalf(1)},
	),
	RGBA16F: color(RGBA16F, fmtRGBA16F, fmtRGBA16F, 8,
		Load{HalfFloat, 8, copyPixels(8)},
		Load{Float, 16, loadFloatToHalf(4)},
	),
	R32F: color(R32F, gputypes.TextureFormatR32Float, fmtRGBA32F, 4,
		Load{Float, 4, copyPixels(4)},
	),
	RGBA32F: color(RGBA32F, fmtRGBA32F, fmtRGBA32F, 16,
		Load{Float, 16, copyPixels(16)},
	),
	RGBA8UI: integer(color(RGBA8UI, gputypes.TextureFormatRGBA8Uint, gputypes.TextureFormatRGBA8Uint, 4,
		Load{UnsignedByte, 4, copyPixels(4)},
	)),
	R32UI: integer(color(R32UI, gputypes.TextureFormatR32Uint, gputypes.TextureFormatRGBA32Uint, 4,
		Load{UnsignedInt, 4, copyPixels(4)},
	)),
	Depth16: depth(Depth16, gputypes.TextureFormatDepth16Unorm, 2, 16, 0,
		Load{UnsignedShort, 2, copyPixels(2)},
		Load{UnsignedInt, 4, loadR32ToR16},
	),
	Depth24Stencil8: depth(Depth24Stencil8, gputypes.TextureFormatDepth24PlusStencil8, 4, 24, 8,
		Load{UnsignedInt248, 4, loadR32ToR24G8},
	),
	Depth32F: depth(Depth32F, gputypes.TextureFormatDepth32Float, 4, 32, 0,
		Load{Float, 4, copyPixels(4)},
	),
	BC1: compressed(BC1, gputypes.TextureFormatBC1RGBAUnorm, 8),
	BC3: compressed(BC3, gputypes.TextureFormatBC3RGBAUnorm, 16),
}

// Lookup returns the native description of f on a device of the given
// tier. Unknown formats yield an Info whose native formats are all
// Undefined.
func Lookup(f Internal, tier Tier) Info {
	if !f.Valid() {
		return Info{Internal: f, BlockWidth: 1, BlockHeight: 1}
	}
	info := table[f]
	if tier == TierLimited {
		// No swizzle emulation and no depth sampling on limited devices.
		info.SwizzleTexture = fmtNone
		info.SwizzleShader = fmtNone
		info.SwizzleRenderTarget = fmtNone
		if info.DepthStencil != fmtNone {
			info.Shader = fmtNone
		}
	}
	return info
}

// FromNative describes a texture whose native format is already fixed,
// such as a presentation back buffer. Only the texture, shader and
// render-target formats are populated.
func FromNative(f gputypes.TextureFormat) Info {
	for _, info := range table {
		if info.Texture == f && info.RenderTarget == f {
			info.DepthStencil = fmtNone
			info.SwizzleTexture = fmtNone
			info.SwizzleShader = fmtNone
			info.SwizzleRenderTarget = fmtNone
			return info
		}
	}
	return Info{
		Texture:      f,
		Shader:       f,
		ShaderAspect: gputypes.TextureAspectAll,
		RenderTarget: f,
		BlockWidth:   1,
		BlockHeight:  1,
	}
}
