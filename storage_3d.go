// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package texstore

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/texstore/format"
)

// shape3D keeps whole-level render targets in a flat array and per-slice
// render targets in a map. Slice targets live until the storage is
// released.
type shape3D struct {
	s       *Storage
	texture hal.Texture

	levelTargets [MaxTextureLevels]*RenderTarget
	sliceTargets map[Index]*RenderTarget
}

// New3D creates a volume storage. Depth formats cannot be drawn into as
// volumes; levels <= 0 requests a full chain.
func New3D(r Renderer, internal format.Internal, renderTarget bool, width, height, depth, levels int) (*Storage, error) {
	caps := r.Caps()
	s := newStorage(r, Kind3D, format.Lookup(internal, caps.Tier), TextureBindFlags(internal, caps.Tier, renderTarget))
	sh := &shape3D{s: s, sliceTargets: make(map[Index]*RenderTarget)}
	s.shape = sh
	s.dimension = gputypes.TextureDimension3D
	s.setSize(width, height, depth, levels)
	s.assoc = &levelSlots{levels: s.LevelCount()}
	s.initSerials()

	tex, err := s.createPrimary(s.mipLevels, "texstore 3D")
	if err != nil {
		s.Release()
		return nil, err
	}
	sh.texture = tex
	return s, nil
}

func (sh *shape3D) resource() hal.Texture { return sh.texture }

func (sh *shape3D) resourceForLevel(int) (hal.Texture, error) { return sh.texture, nil }

func (sh *shape3D) shaderViewDesc(baseLevel, mipLevels int, f gputypes.TextureFormat, aspect gputypes.TextureAspect) *hal.TextureViewDescriptor {
	return &hal.TextureViewDescriptor{
		Format:          f,
		Dimension:       gputypes.TextureViewDimension3D,
		Aspect:          aspect,
		BaseMipLevel:    sh.s.baseMip(baseLevel, mipLevels),
		MipLevelCount:   uint32(mipLevels),
		ArrayLayerCount: 1,
	}
}

// renderTarget returns the whole-volume target of a level, with a
// companion shader view, or the target of one depth slice, without one.
func (sh *shape3D) renderTarget(idx Index) (*RenderTarget, error) {
	s := sh.s
	level := idx.Level
	if level < 0 || level >= s.LevelCount() ||
		(idx.HasLayer() && (idx.Layer < 0 || idx.Layer >= s.LevelDepth(level))) {
		return nil, s.violation("texstore: invalid %s for 3D storage with %d levels", idx, s.LevelCount())
	}
	assertf(s.info.DepthStencil == gputypes.TextureFormatUndefined,
		"texstore: depth-stencil render target on 3D storage of %s", s.info.Internal)
	if sh.texture == nil {
		return nil, ErrNoResource
	}

	if !idx.HasLayer() {
		if rt := sh.levelTargets[level]; rt != nil {
			return rt, nil
		}
		var srv hal.TextureView
		if !s.caps.Limited() && s.info.Shader != gputypes.TextureFormatUndefined {
			var err error
			if srv, err = s.ShaderViewForLevel(level); err != nil {
				return nil, err
			}
		}
		view, ds, err := s.createDrawView(sh.texture, gputypes.TextureViewDimension3D, level, 0, 1)
		if err != nil {
			return nil, err
		}
		rt := s.newRenderTarget(view, ds, sh.texture, srv, level, 0, s.LevelDepth(level))
		sh.levelTargets[level] = rt
		return rt, nil
	}

	if rt, ok := sh.sliceTargets[idx]; ok {
		return rt, nil
	}
	view, ds, err := s.createDrawView(sh.texture, gputypes.TextureViewDimension3D, level, 0, 1)
	if err != nil {
		return nil, err
	}
	rt := s.newRenderTarget(view, ds, sh.texture, nil, level, idx.Layer, 1)
	sh.sliceTargets[idx] = rt
	return rt, nil
}

func (sh *shape3D) reset() {
	sh.levelTargets = [MaxTextureLevels]*RenderTarget{}
	clear(sh.sliceTargets)
	sh.texture = nil
}
