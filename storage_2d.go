// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package texstore

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/texstore/format"
)

// shape2D keeps up to two textures: the full mip chain and, with the
// ZeroMaxLOD workaround, a texture holding only level zero. One of them is
// active for sampling at a time.
type shape2D struct {
	s *Storage

	texture      hal.Texture
	levelZero    hal.Texture
	useLevelZero bool

	targets         [MaxTextureLevels]*RenderTarget
	levelZeroTarget *RenderTarget
}

// New2D creates a 2D storage of width x height with levels mip levels, or
// a full chain when levels <= 0. A non-positive size creates a storage
// without a native texture.
//
// hintLevelZeroOnly requires the ZeroMaxLOD workaround and creates only
// the level-zero texture up front.
func New2D(r Renderer, internal format.Internal, renderTarget bool, width, height, levels int, hintLevelZeroOnly bool) (*Storage, error) {
	caps := r.Caps()
	s := newStorage(r, Kind2D, format.Lookup(internal, caps.Tier), TextureBindFlags(internal, caps.Tier, renderTarget))
	sh := &shape2D{s: s}
	s.shape = sh
	s.setSize(width, height, 1, levels)
	s.assoc = &levelSlots{levels: s.LevelCount()}
	s.initSerials()

	var err error
	if hintLevelZeroOnly {
		assertf(caps.Workarounds.ZeroMaxLOD, "texstore: level-zero hint without the ZeroMaxLOD workaround")
		sh.levelZero, err = sh.createLevelZero()
		sh.useLevelZero = sh.levelZero != nil
	} else {
		sh.texture, err = sh.createFull()
	}
	if err != nil {
		s.Release()
		return nil, err
	}
	return s, nil
}

// NewFromSwapChain wraps the back buffer of sc in a single-level 2D
// storage. The back buffer stays owned by the swap chain.
func NewFromSwapChain(r Renderer, sc SwapChain) *Storage {
	s := newStorage(r, Kind2D, format.FromNative(sc.Format()), BindShaderResource|BindRenderTarget)
	s.shape = &shape2D{s: s, texture: sc.BackBuffer()}
	s.width, s.height, s.depth = sc.Width(), sc.Height(), 1
	s.texWidth, s.texHeight = sc.Width(), sc.Height()
	s.mipLevels = 1
	s.assoc = &levelSlots{levels: 1}
	s.initSerials()
	return s
}

func (sh *shape2D) createFull() (hal.Texture, error) {
	return sh.s.createPrimary(sh.s.mipLevels, "texstore 2D")
}

// createLevelZero creates the texture holding logical level zero and the
// padding levels above it.
func (sh *shape2D) createLevelZero() (hal.Texture, error) {
	return sh.s.createPrimary(sh.s.topLevel+1, "texstore 2D level zero")
}

func (sh *shape2D) resource() hal.Texture {
	if sh.useLevelZero {
		return sh.levelZero
	}
	return sh.texture
}

func (sh *shape2D) resourceForLevel(level int) (hal.Texture, error) {
	if sh.s.caps.Workarounds.ZeroMaxLOD && level > 0 && sh.texture == nil {
		tex, err := sh.createFull()
		if err != nil {
			return nil, err
		}
		sh.texture = tex
	}
	if level > 0 {
		return sh.texture, nil
	}
	return sh.resource(), nil
}

// PickLevelZeroWorkaround activates the level-zero texture or the full
// chain, creating it if needed. Switching copies level zero from the
// previously active texture.
func (s *Storage) PickLevelZeroWorkaround(useLevelZero bool) error {
	if s.released {
		return ErrReleased
	}
	p, ok := s.shape.(levelZeroPicker)
	if !ok {
		return s.violation("texstore: level-zero workaround on %s storage", s.kind)
	}
	return p.pickLevelZero(useLevelZero)
}

// UsingLevelZero reports whether the level-zero texture is active.
func (s *Storage) UsingLevelZero() bool {
	sh, ok := s.shape.(*shape2D)
	return ok && sh.useLevelZero
}

func (sh *shape2D) pickLevelZero(useLevelZero bool) error {
	s := sh.s
	if useLevelZero {
		if sh.levelZero == nil {
			tex, err := sh.createLevelZero()
			if err != nil {
				return err
			}
			sh.levelZero = tex
		}
		if !sh.useLevelZero && sh.texture != nil && sh.levelZero != nil {
			if err := s.copyWhole(sh.texture, sh.levelZero, s.topLevel+1); err != nil {
				return err
			}
		}
		sh.activate(sh.levelZero != nil)
		return nil
	}

	if sh.texture == nil {
		tex, err := sh.createFull()
		if err != nil {
			return err
		}
		sh.texture = tex
	}
	if sh.useLevelZero && sh.levelZero != nil && sh.texture != nil {
		if err := s.copyWhole(sh.levelZero, sh.texture, s.topLevel+1); err != nil {
			return err
		}
	}
	sh.activate(false)
	return nil
}

// activate records which texture holds the sampled level zero. Level-zero
// views and swizzles made from the other texture no longer apply.
func (sh *shape2D) activate(useLevelZero bool) {
	if sh.useLevelZero == useLevelZero {
		return
	}
	sh.useLevelZero = useLevelZero
	sh.s.levelViews[0] = nil
	sh.s.InvalidateSwizzleLevel(0)
}

// copyTo copies each texture that exists into the matching texture of dst,
// activating it there first.
func (sh *shape2D) copyTo(dst *Storage) error {
	s := sh.s
	if !s.caps.Workarounds.ZeroMaxLOD {
		mips := s.mipLevels
		if sh.useLevelZero {
			mips = s.topLevel + 1
		}
		return s.copyWhole(sh.resource(), dst.shape.resource(), mips)
	}

	other, ok := dst.shape.(*shape2D)
	if !ok {
		return s.violation("texstore: copy 2D storage into %s storage", dst.kind)
	}
	if sh.texture != nil {
		if err := other.pickLevelZero(false); err != nil {
			return err
		}
		if err := s.copyWhole(sh.texture, other.texture, s.mipLevels); err != nil {
			return err
		}
	}
	if sh.levelZero != nil {
		if err := other.pickLevelZero(true); err != nil {
			return err
		}
		if err := s.copyWhole(sh.levelZero, other.levelZero, s.topLevel+1); err != nil {
			return err
		}
	}
	return nil
}

func (sh *shape2D) shaderViewDesc(baseLevel, mipLevels int, f gputypes.TextureFormat, aspect gputypes.TextureAspect) *hal.TextureViewDescriptor {
	return &hal.TextureViewDescriptor{
		Format:          f,
		Dimension:       gputypes.TextureViewDimension2D,
		Aspect:          aspect,
		BaseMipLevel:    uint32(sh.s.topLevel + baseLevel),
		MipLevelCount:   uint32(mipLevels),
		ArrayLayerCount: 1,
	}
}

func (sh *shape2D) renderTarget(idx Index) (*RenderTarget, error) {
	s := sh.s
	level := idx.Level
	if idx.HasLayer() || level < 0 || level >= s.LevelCount() {
		return nil, s.violation("texstore: invalid %s for 2D storage with %d levels", idx, s.LevelCount())
	}
	assertf(!s.caps.Limited() || level == 0, "texstore: render target level %d on a limited device", level)

	if sh.useLevelZero && level == 0 {
		if sh.levelZeroTarget != nil {
			return sh.levelZeroTarget, nil
		}
		view, ds, err := s.createDrawView(sh.levelZero, gputypes.TextureViewDimension2D, level, 0, 1)
		if err != nil {
			return nil, err
		}
		sh.levelZeroTarget = s.newRenderTarget(view, ds, sh.levelZero, nil, level, 0, 1)
		return sh.levelZeroTarget, nil
	}

	if rt := sh.targets[level]; rt != nil {
		return rt, nil
	}
	tex, err := sh.resourceForLevel(level)
	if err != nil {
		return nil, err
	}
	if tex == nil {
		return nil, ErrNoResource
	}

	var srv hal.TextureView
	if !s.caps.Limited() && s.info.Shader != gputypes.TextureFormatUndefined {
		if srv, err = s.ShaderViewForLevel(level); err != nil {
			return nil, err
		}
	}
	view, ds, err := s.createDrawView(tex, gputypes.TextureViewDimension2D, level, 0, 1)
	if err != nil {
		return nil, err
	}
	sh.targets[level] = s.newRenderTarget(view, ds, tex, srv, level, 0, 1)
	return sh.targets[level], nil
}

func (sh *shape2D) reset() {
	sh.targets = [MaxTextureLevels]*RenderTarget{}
	sh.levelZeroTarget = nil
	sh.texture = nil
	sh.levelZero = nil
	sh.useLevelZero = false
}
