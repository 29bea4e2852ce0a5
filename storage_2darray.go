// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package texstore

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/texstore/format"
)

type shape2DArray struct {
	s       *Storage
	texture hal.Texture
	targets map[Index]*RenderTarget
}

// New2DArray creates a storage of layers 2D images sharing one mip chain.
// levels <= 0 requests a full chain.
func New2DArray(r Renderer, internal format.Internal, renderTarget bool, width, height, layers, levels int) (*Storage, error) {
	caps := r.Caps()
	s := newStorage(r, Kind2DArray, format.Lookup(internal, caps.Tier), TextureBindFlags(internal, caps.Tier, renderTarget))
	sh := &shape2DArray{s: s, targets: make(map[Index]*RenderTarget)}
	s.shape = sh
	s.layers = max(layers, 1)
	s.setSize(width, height, layers, levels)
	s.assoc = &layerSlots{levels: s.LevelCount(), layers: s.layers, slots: make(map[Index]Image)}
	s.initSerials()

	tex, err := s.createPrimary(s.mipLevels, "texstore 2D array")
	if err != nil {
		s.Release()
		return nil, err
	}
	sh.texture = tex
	return s, nil
}

func (sh *shape2DArray) resource() hal.Texture { return sh.texture }

func (sh *shape2DArray) resourceForLevel(int) (hal.Texture, error) { return sh.texture, nil }

func (sh *shape2DArray) shaderViewDesc(baseLevel, mipLevels int, f gputypes.TextureFormat, aspect gputypes.TextureAspect) *hal.TextureViewDescriptor {
	return &hal.TextureViewDescriptor{
		Format:          f,
		Dimension:       gputypes.TextureViewDimension2DArray,
		Aspect:          aspect,
		BaseMipLevel:    uint32(sh.s.topLevel + baseLevel),
		MipLevelCount:   uint32(mipLevels),
		ArrayLayerCount: uint32(sh.s.layers),
	}
}

func (sh *shape2DArray) renderTarget(idx Index) (*RenderTarget, error) {
	s := sh.s
	if idx.Level < 0 || idx.Level >= s.LevelCount() || idx.Layer < 0 || idx.Layer >= s.layers {
		return nil, s.violation("texstore: invalid %s for 2D array storage with %d levels and %d layers",
			idx, s.LevelCount(), s.layers)
	}
	if rt, ok := sh.targets[idx]; ok {
		return rt, nil
	}
	if sh.texture == nil {
		return nil, ErrNoResource
	}

	srv, err := s.companionView(sh.texture, idx.Level, idx.Layer)
	if err != nil {
		return nil, err
	}
	view, ds, err := s.createDrawView(sh.texture, gputypes.TextureViewDimension2D, idx.Level, idx.Layer, 1)
	if err != nil {
		return nil, err
	}
	rt := s.newRenderTarget(view, ds, sh.texture, srv, idx.Level, idx.Layer, 1)
	sh.targets[idx] = rt
	return rt, nil
}

func (sh *shape2DArray) reset() {
	clear(sh.targets)
	sh.texture = nil
}
