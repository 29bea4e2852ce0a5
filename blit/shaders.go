// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package blit

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
)

//go:embed shaders/common.wgsl
var commonSource string

//go:embed shaders/color.wgsl
var colorSource string

//go:embed shaders/depth.wgsl
var depthSource string

// program selects the fragment stage.
type program uint8

const (
	programColor program = iota
	programDepth
)

func (p program) String() string {
	if p == programDepth {
		return "depth"
	}
	return "color"
}

// fetch selects how the fragment stage reads the source.
type fetch uint8

const (
	fetchLoad fetch = iota
	fetchSample
)

// sampleKind is the component type a texture is read as.
type sampleKind uint8

const (
	kindFloat sampleKind = iota
	kindUnfilterable
	kindUint
	kindSint
	kindDepth
)

var kindNames = [...]string{"float", "unfilterable-float", "uint", "sint", "depth"}

func (k sampleKind) String() string { return kindNames[k] }

// kindOf returns how textures of format f are read by a shader.
func kindOf(f gputypes.TextureFormat) sampleKind {
	switch f {
	case gputypes.TextureFormatDepth16Unorm, gputypes.TextureFormatDepth24Plus,
		gputypes.TextureFormatDepth24PlusStencil8, gputypes.TextureFormatDepth32Float,
		gputypes.TextureFormatDepth32FloatStencil8:
		return kindDepth
	case gputypes.TextureFormatR8Uint, gputypes.TextureFormatRG8Uint, gputypes.TextureFormatRGBA8Uint,
		gputypes.TextureFormatR16Uint, gputypes.TextureFormatRG16Uint, gputypes.TextureFormatRGBA16Uint,
		gputypes.TextureFormatR32Uint, gputypes.TextureFormatRG32Uint, gputypes.TextureFormatRGBA32Uint,
		gputypes.TextureFormatRGB10A2Uint, gputypes.TextureFormatStencil8:
		return kindUint
	case gputypes.TextureFormatR8Sint, gputypes.TextureFormatRG8Sint, gputypes.TextureFormatRGBA8Sint,
		gputypes.TextureFormatR16Sint, gputypes.TextureFormatRG16Sint, gputypes.TextureFormatRGBA16Sint,
		gputypes.TextureFormatR32Sint, gputypes.TextureFormatRG32Sint, gputypes.TextureFormatRGBA32Sint:
		return kindSint
	case gputypes.TextureFormatR32Float, gputypes.TextureFormatRG32Float, gputypes.TextureFormatRGBA32Float:
		return kindUnfilterable
	default:
		return kindFloat
	}
}

// scalar is the WGSL component type written for a target of kind k.
func (k sampleKind) scalar() string {
	switch k {
	case kindUint:
		return "u32"
	case kindSint:
		return "i32"
	default:
		return "f32"
	}
}

func (k sampleKind) sampleType() gputypes.TextureSampleType {
	switch k {
	case kindUnfilterable:
		return gputypes.TextureSampleTypeUnfilterableFloat
	case kindUint:
		return gputypes.TextureSampleTypeUint
	case kindSint:
		return gputypes.TextureSampleTypeSint
	case kindDepth:
		return gputypes.TextureSampleTypeDepth
	default:
		return gputypes.TextureSampleTypeFloat
	}
}

// variant identifies one generated shader.
type variant struct {
	program program
	fetch   fetch
	kind    sampleKind
	dim     gputypes.TextureViewDimension

	// out is the component type of the color target.
	out sampleKind
}

func (v variant) String() string {
	mode := "load"
	if v.fetch == fetchSample {
		mode = "sample"
	}
	return fmt.Sprintf("%s %s %s %s", v.program, mode, v.kind, dimName(v.dim))
}

func dimName(dim gputypes.TextureViewDimension) string {
	switch dim {
	case gputypes.TextureViewDimension2DArray:
		return "2d-array"
	case gputypes.TextureViewDimension3D:
		return "3d"
	default:
		return "2d"
	}
}

// textureType returns the WGSL type of the source binding.
func (v variant) textureType() string {
	if v.kind == kindDepth {
		if v.dim == gputypes.TextureViewDimension2DArray {
			return "texture_depth_2d_array"
		}
		return "texture_depth_2d"
	}
	scalar := v.kind.scalar()
	switch v.dim {
	case gputypes.TextureViewDimension2DArray:
		return "texture_2d_array<" + scalar + ">"
	case gputypes.TextureViewDimension3D:
		return "texture_3d<" + scalar + ">"
	default:
		return "texture_2d<" + scalar + ">"
	}
}

// fetchExpr returns the WGSL expression reading the source at the
// fragment's coord or texel.
func (v variant) fetchExpr() string {
	if v.fetch == fetchSample {
		switch v.dim {
		case gputypes.TextureViewDimension2DArray:
			return "textureSampleLevel(src, src_sampler, coord / params.src_extent.xy, i32(params.src_extent.w), 0.0)"
		case gputypes.TextureViewDimension3D:
			return "textureSampleLevel(src, src_sampler, vec3<f32>(coord / params.src_extent.xy, params.src_extent.w / params.src_extent.z), 0.0)"
		default:
			return "textureSampleLevel(src, src_sampler, coord / params.src_extent.xy, 0.0)"
		}
	}

	var load string
	switch v.dim {
	case gputypes.TextureViewDimension2DArray:
		load = "textureLoad(src, texel, i32(params.src_extent.w), 0)"
	case gputypes.TextureViewDimension3D:
		load = "textureLoad(src, vec3<i32>(texel, i32(params.src_extent.w)), 0)"
	default:
		load = "textureLoad(src, texel, 0)"
	}
	if v.kind == kindDepth && v.program == programColor {
		return "vec4<f32>(" + load + ", 0.0, 0.0, 1.0)"
	}
	return load
}

// source returns the WGSL of the variant.
func (v variant) source() string {
	sampler := ""
	if v.fetch == fetchSample {
		sampler = "@group(0) @binding(2) var src_sampler: sampler;"
	}
	body := colorSource
	if v.program == programDepth {
		body = depthSource
	}
	return strings.NewReplacer(
		"{{TEXTURE}}", v.textureType(),
		"{{SAMPLER}}", sampler,
		"{{FETCH}}", v.fetchExpr(),
		"{{SCALAR}}", v.out.scalar(),
	).Replace(commonSource + "\n" + body)
}

// compileSPIRV compiles WGSL to SPIR-V words.
func compileSPIRV(source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, err
	}

	// SPIR-V is little-endian 32-bit words
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}
