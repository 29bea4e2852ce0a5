// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package halrenderer

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Texture is a native texture created by a Renderer. It carries the
// creation descriptor and the bytes charged to the memory budget.
//
// HAL calls must receive the texture returned by Native, not the wrapper.
type Texture struct {
	hal.Texture

	desc hal.TextureDescriptor
	size uint64
}

// Descriptor returns the descriptor the texture was created with.
func (t *Texture) Descriptor() hal.TextureDescriptor {
	return t.desc
}

// SizeBytes returns the bytes the texture is charged against the budget.
func (t *Texture) SizeBytes() uint64 {
	return t.size
}

// Native returns the HAL texture behind tex. Textures not created by a
// Renderer, such as swap chain back buffers, are returned unchanged.
func Native(tex hal.Texture) hal.Texture {
	if t, ok := tex.(*Texture); ok {
		return t.Texture
	}
	return tex
}

// restingUsage is the usage a texture returns to after a transfer.
func restingUsage(tex hal.Texture) gputypes.TextureUsage {
	t, ok := tex.(*Texture)
	if !ok {
		return gputypes.TextureUsageRenderAttachment
	}
	switch {
	case t.desc.Usage.Contains(gputypes.TextureUsageTextureBinding):
		return gputypes.TextureUsageTextureBinding
	case t.desc.Usage.Contains(gputypes.TextureUsageRenderAttachment):
		return gputypes.TextureUsageRenderAttachment
	default:
		return gputypes.TextureUsageCopyDst
	}
}

// Transition returns a barrier moving every subresource of tex from its
// current usage to usage.
func Transition(tex hal.Texture, usage gputypes.TextureUsage) hal.TextureBarrier {
	return TransitionRange(tex, hal.TextureRange{}, usage)
}

// TransitionRange returns a barrier moving the subresources in rng from
// the texture's current usage to usage.
func TransitionRange(tex hal.Texture, rng hal.TextureRange, usage gputypes.TextureUsage) hal.TextureBarrier {
	native := Native(tex)
	return hal.TextureBarrier{
		Texture: native,
		Range:   rng,
		Usage: hal.TextureUsageTransition{
			OldUsage: native.CurrentUsage(),
			NewUsage: usage,
		},
	}
}

// Restore returns a barrier moving tex from usage back to the usage it
// is normally bound with.
func Restore(tex hal.Texture, usage gputypes.TextureUsage) hal.TextureBarrier {
	return RestoreRange(tex, hal.TextureRange{}, usage)
}

// RestoreRange is Restore limited to the subresources in rng.
func RestoreRange(tex hal.Texture, rng hal.TextureRange, usage gputypes.TextureUsage) hal.TextureBarrier {
	return hal.TextureBarrier{
		Texture: Native(tex),
		Range:   rng,
		Usage: hal.TextureUsageTransition{
			OldUsage: usage,
			NewUsage: restingUsage(tex),
		},
	}
}

// Format returns the format tex was created with. ok is false for
// textures not created by a Renderer.
func Format(tex hal.Texture) (gputypes.TextureFormat, bool) {
	if t, ok := tex.(*Texture); ok {
		return t.desc.Format, true
	}
	return gputypes.TextureFormatUndefined, false
}
