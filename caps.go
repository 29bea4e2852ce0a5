// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package texstore

import (
	"strings"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/texstore/format"
)

// Workarounds lists driver accommodations a storage must honor.
type Workarounds struct {
	// ZeroMaxLOD is set when the driver clamps the maximum sampled LOD of
	// single-level views to zero. 2D storages then keep a separate
	// level-zero-only texture for sampling without mipmaps.
	ZeroMaxLOD bool
}

// Caps is the device capability snapshot a storage is created with.
type Caps struct {
	Tier        format.Tier
	Workarounds Workarounds
}

// Limited reports whether the device is below the full tier.
func (c Caps) Limited() bool {
	return c.Tier != format.TierFull
}

// BindFlags are the ways a storage's native texture may be bound.
type BindFlags uint8

const (
	BindShaderResource BindFlags = 1 << iota
	BindRenderTarget
	BindDepthStencil
)

// Usage converts the flags to native texture usage. Copies are always
// allowed.
func (b BindFlags) Usage() gputypes.TextureUsage {
	usage := gputypes.TextureUsageCopySrc | gputypes.TextureUsageCopyDst
	if b&BindShaderResource != 0 {
		usage |= gputypes.TextureUsageTextureBinding
	}
	if b&(BindRenderTarget|BindDepthStencil) != 0 {
		usage |= gputypes.TextureUsageRenderAttachment
	}
	return usage
}

func (b BindFlags) String() string {
	var parts []string
	if b&BindShaderResource != 0 {
		parts = append(parts, "shader")
	}
	if b&BindRenderTarget != 0 {
		parts = append(parts, "render-target")
	}
	if b&BindDepthStencil != 0 {
		parts = append(parts, "depth-stencil")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// TextureBindFlags returns the bind flags of a storage holding internal
// on a device of the given tier. Depth formats are always depth-stencil
// bindable; color formats are render-target bindable only on request.
func TextureBindFlags(internal format.Internal, tier format.Tier, renderTarget bool) BindFlags {
	info := format.Lookup(internal, tier)

	var flags BindFlags
	if info.Shader != gputypes.TextureFormatUndefined {
		flags |= BindShaderResource
	}
	if info.DepthStencil != gputypes.TextureFormatUndefined {
		flags |= BindDepthStencil
	}
	if info.RenderTarget != gputypes.TextureFormatUndefined && renderTarget {
		flags |= BindRenderTarget
	}
	return flags
}
