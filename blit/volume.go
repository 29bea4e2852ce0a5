// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package blit

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/texstore"
	"github.com/gogpu/texstore/halrenderer"
)

// sliceTarget is a temporary 2D texture standing in for one slice of a
// 3D target. Each slice is drawn into it and then copied into place.
type sliceTarget struct {
	tex   hal.Texture
	view  hal.TextureView
	usage gputypes.TextureUsage
}

// newSliceTarget creates a texture the size of one target level. It is
// destroyed once the recording completes.
func (b *Blitter) newSliceTarget(rec *halrenderer.Recording, f gputypes.TextureFormat, size texstore.Extents) (*sliceTarget, error) {
	tex, err := b.r.CreateTexture(&hal.TextureDescriptor{
		Label:         "blit slice",
		Size:          hal.Extent3D{Width: uint32(size.Width), Height: uint32(size.Height), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        f,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return nil, err
	}
	rec.AfterCompletion(func() { b.r.DestroyTexture(tex) })

	view, err := b.view(rec, tex, &hal.TextureViewDescriptor{
		Label:           "blit slice",
		Format:          f,
		Dimension:       gputypes.TextureViewDimension2D,
		Aspect:          gputypes.TextureAspectAll,
		MipLevelCount:   1,
		ArrayLayerCount: 1,
	})
	if err != nil {
		return nil, err
	}
	return &sliceTarget{tex: tex, view: view}, nil
}

// use records a barrier moving the texture to usage.
func (s *sliceTarget) use(rec *halrenderer.Recording, usage gputypes.TextureUsage) {
	if s.usage == usage {
		return
	}
	rec.TransitionTextures([]hal.TextureBarrier{{
		Texture: halrenderer.Native(s.tex),
		Usage:   hal.TextureUsageTransition{OldUsage: s.usage, NewUsage: usage},
	}})
	s.usage = usage
}

// copyTo copies rect of the drawn slice into slice of dst.
func (s *sliceTarget) copyTo(rec *halrenderer.Recording, dst texstore.BlitTarget, rect texstore.Box, slice int) {
	src, native := halrenderer.Native(s.tex), halrenderer.Native(dst.Texture)
	rec.CopyTextureToTexture(src, native, []hal.TextureCopy{{
		SrcBase: hal.ImageCopyTexture{
			Texture: src,
			Origin:  hal.Origin3D{X: uint32(rect.X), Y: uint32(rect.Y)},
		},
		DstBase: hal.ImageCopyTexture{
			Texture:  native,
			MipLevel: uint32(dst.MipLevel),
			Origin:   hal.Origin3D{X: uint32(rect.X), Y: uint32(rect.Y), Z: uint32(slice)},
		},
		Size: hal.Extent3D{Width: uint32(rect.Width), Height: uint32(rect.Height), DepthOrArrayLayers: 1},
	}})
}
