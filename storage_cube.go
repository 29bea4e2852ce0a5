// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package texstore

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/texstore/format"
)

type shapeCube struct {
	s       *Storage
	texture hal.Texture
	targets [CubeFaces][MaxTextureLevels]*RenderTarget
}

// NewCube creates a cube storage with six square faces of the given size.
// levels <= 0 requests a full chain.
func NewCube(r Renderer, internal format.Internal, renderTarget bool, size, levels int) (*Storage, error) {
	caps := r.Caps()
	s := newStorage(r, KindCube, format.Lookup(internal, caps.Tier), TextureBindFlags(internal, caps.Tier, renderTarget))
	sh := &shapeCube{s: s}
	s.shape = sh
	s.layers = CubeFaces
	s.setSize(size, size, 1, levels)
	s.assoc = &faceSlots{levels: s.LevelCount()}
	s.initSerials()

	tex, err := s.createPrimary(s.mipLevels, "texstore cube")
	if err != nil {
		s.Release()
		return nil, err
	}
	sh.texture = tex
	return s, nil
}

func (sh *shapeCube) resource() hal.Texture { return sh.texture }

func (sh *shapeCube) resourceForLevel(int) (hal.Texture, error) { return sh.texture, nil }

// shaderViewDesc describes a cube view. Integer formats cannot be sampled
// as cubes and get a single-level view of the six faces as an array.
func (sh *shapeCube) shaderViewDesc(baseLevel, mipLevels int, f gputypes.TextureFormat, aspect gputypes.TextureAspect) *hal.TextureViewDescriptor {
	s := sh.s
	desc := &hal.TextureViewDescriptor{
		Format:          f,
		Aspect:          aspect,
		ArrayLayerCount: CubeFaces,
	}
	if s.info.Integer {
		desc.Dimension = gputypes.TextureViewDimension2DArray
		desc.BaseMipLevel = uint32(s.topLevel + baseLevel)
		desc.MipLevelCount = 1
		return desc
	}
	desc.Dimension = gputypes.TextureViewDimensionCube
	desc.BaseMipLevel = s.baseMip(baseLevel, mipLevels)
	desc.MipLevelCount = uint32(mipLevels)
	return desc
}

func (sh *shapeCube) renderTarget(idx Index) (*RenderTarget, error) {
	s := sh.s
	face, level := idx.Layer, idx.Level
	if face < 0 || face >= CubeFaces || level < 0 || level >= s.LevelCount() {
		return nil, s.violation("texstore: invalid %s for cube storage with %d levels", idx, s.LevelCount())
	}
	if rt := sh.targets[face][level]; rt != nil {
		return rt, nil
	}
	if sh.texture == nil {
		return nil, ErrNoResource
	}

	srv, err := s.companionView(sh.texture, level, face)
	if err != nil {
		return nil, err
	}
	view, ds, err := s.createDrawView(sh.texture, gputypes.TextureViewDimension2D, level, face, 1)
	if err != nil {
		return nil, err
	}
	rt := s.newRenderTarget(view, ds, sh.texture, srv, level, face, 1)
	sh.targets[face][level] = rt
	return rt, nil
}

func (sh *shapeCube) reset() {
	sh.targets = [CubeFaces][MaxTextureLevels]*RenderTarget{}
	sh.texture = nil
}
