// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package texstore

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ShaderView returns the view a sampler with state ss reads from.
//
// The view covers BaseLevel and, when mipmap filtering is on, the levels
// up to MaxLevel clamped to the storage. Views are cached by base level,
// level count and whether a swizzle applies. A required swizzle renders
// the swizzle texture first, so the returned view always reflects it.
func (s *Storage) ShaderView(ss SamplerState) (hal.TextureView, error) {
	if s.released {
		return nil, ErrReleased
	}

	swizzle := ss.SwizzleRequired()
	mips := 1
	if ss.MipmapFiltered() {
		mips = ss.MaxLevel - ss.BaseLevel
	}
	mips = max(min(mips, s.LevelCount()-ss.BaseLevel), 1)

	if s.caps.Limited() {
		assertf(!swizzle, "texstore: swizzle requested on a limited device")
		assertf(mips == 1 || mips == s.mipLevels,
			"texstore: limited device can only sample one level or the whole chain, got %d of %d", mips, s.mipLevels)
	}

	if s.caps.Workarounds.ZeroMaxLOD {
		if p, ok := s.shape.(levelZeroPicker); ok {
			if err := p.pickLevelZero(mips == 1); err != nil {
				return nil, err
			}
		}
	}

	if swizzle {
		if err := s.GenerateSwizzles(ss.Swizzle); err != nil {
			return nil, err
		}
		s.verifySwizzle(ss.Swizzle.normalized())
	}

	key := viewKey{baseLevel: ss.BaseLevel, mipLevels: mips, swizzle: swizzle}
	return s.shaderViews.GetOrCreate(key, func() (hal.TextureView, error) {
		return s.createShaderView(key)
	})
}

func (s *Storage) createShaderView(key viewKey) (hal.TextureView, error) {
	if key.swizzle {
		tex, err := s.swizzleTexture()
		if err != nil {
			return nil, err
		}
		desc := s.shape.shaderViewDesc(key.baseLevel, key.mipLevels, s.info.SwizzleShader, gputypes.TextureAspectAll)
		desc.Label = fmt.Sprintf("texstore %s swizzled base %d mips %d", s.kind, key.baseLevel, key.mipLevels)
		return s.handles.createView(tex, desc)
	}

	tex := s.shape.resource()
	if tex == nil {
		return nil, ErrNoResource
	}
	desc := s.shape.shaderViewDesc(key.baseLevel, key.mipLevels, s.info.Shader, s.info.ShaderAspect)
	desc.Label = fmt.Sprintf("texstore %s base %d mips %d", s.kind, key.baseLevel, key.mipLevels)
	return s.handles.createView(tex, desc)
}

// ShaderViewForLevel returns the cached view of exactly one level. It is
// the source the swizzle pass reads.
func (s *Storage) ShaderViewForLevel(level int) (hal.TextureView, error) {
	if s.released {
		return nil, ErrReleased
	}
	if level < 0 || level >= s.LevelCount() {
		return nil, s.violation("texstore: level view %d out of range for %d levels", level, s.LevelCount())
	}
	if s.levelViews[level] != nil {
		return s.levelViews[level], nil
	}

	tex, err := s.shape.resourceForLevel(level)
	if err != nil {
		return nil, err
	}
	if tex == nil {
		return nil, ErrNoResource
	}
	desc := s.shape.shaderViewDesc(level, 1, s.info.Shader, s.info.ShaderAspect)
	desc.Label = fmt.Sprintf("texstore %s level %d", s.kind, level)
	view, err := s.handles.createView(tex, desc)
	if err != nil {
		return nil, err
	}
	s.levelViews[level] = view
	return view, nil
}

// blitSource returns the draw source of one level. Cube levels are read
// through a 2D-array view of the six faces, which a draw can load from.
func (s *Storage) blitSource(level int) (BlitSource, error) {
	view, err := s.ShaderViewForLevel(level)
	if err != nil {
		return BlitSource{}, err
	}
	dim := s.shape.shaderViewDesc(level, 1, s.info.Shader, s.info.ShaderAspect).Dimension
	src := BlitSource{View: view, Format: s.info.Shader, Dimension: dim}
	if dim != gputypes.TextureViewDimensionCube {
		return src, nil
	}

	if s.blitViews[level] == nil {
		view, err := s.handles.createView(s.shape.resource(), &hal.TextureViewDescriptor{
			Label:           fmt.Sprintf("texstore %s faces level %d", s.kind, level),
			Format:          s.info.Shader,
			Dimension:       gputypes.TextureViewDimension2DArray,
			Aspect:          s.info.ShaderAspect,
			BaseMipLevel:    uint32(s.topLevel + level),
			MipLevelCount:   1,
			ArrayLayerCount: CubeFaces,
		})
		if err != nil {
			return BlitSource{}, err
		}
		s.blitViews[level] = view
	}
	src.View = s.blitViews[level]
	src.Dimension = gputypes.TextureViewDimension2DArray
	return src, nil
}

// GenerateSwizzles renders every level whose swizzle texture does not yet
// hold sw. Levels already holding sw are skipped.
func (s *Storage) GenerateSwizzles(sw Swizzle) error {
	if s.released {
		return ErrReleased
	}
	target := sw.normalized()
	for level := 0; level < s.LevelCount(); level++ {
		if s.swizzleCache[level] == target {
			continue
		}

		src, err := s.blitSource(level)
		if err != nil {
			return err
		}
		dst, err := s.swizzleTarget(level)
		if err != nil {
			return err
		}

		size := Extents{Width: s.LevelWidth(level), Height: s.LevelHeight(level), Depth: s.levelLayers(level)}
		if err := s.blitter.SwizzleTexture(src, dst, size, target); err != nil {
			return errors.Wrapf(err, "texstore: swizzle %s level %d", target, level)
		}
		s.swizzleCache[level] = target
	}
	return nil
}

func (s *Storage) verifySwizzle(target Swizzle) {
	for level := 0; level < s.LevelCount(); level++ {
		assertf(s.swizzleCache[level] == target,
			"texstore: level %d holds swizzle %s, want %s", level, s.swizzleCache[level], target)
	}
}

// InvalidateSwizzleLevel marks the swizzle texture of level as stale.
func (s *Storage) InvalidateSwizzleLevel(level int) {
	if level >= 0 && level < MaxTextureLevels {
		s.swizzleCache[level] = noSwizzle
	}
}

// InvalidateSwizzles marks every level of the swizzle texture as stale.
func (s *Storage) InvalidateSwizzles() {
	for level := range s.swizzleCache {
		s.swizzleCache[level] = noSwizzle
	}
}

// SwizzleState returns the swizzle last rendered into level and whether
// the level holds one.
func (s *Storage) SwizzleState(level int) (Swizzle, bool) {
	if level < 0 || level >= MaxTextureLevels {
		return noSwizzle, false
	}
	sw := s.swizzleCache[level]
	return sw, sw != noSwizzle
}

// swizzleTexture returns the texture holding swizzled copies of every
// level, creating it with the primary texture's shape on first use.
func (s *Storage) swizzleTexture() (hal.Texture, error) {
	if s.swizzleTex != nil {
		return s.swizzleTex, nil
	}
	if s.info.SwizzleTexture == gputypes.TextureFormatUndefined {
		return nil, errors.Wrapf(ErrSwizzleUnsupported, "%s on %s device", s.info.Internal, s.caps.Tier)
	}
	tex, err := s.createTexture(s.info.SwizzleTexture, s.mipLevels,
		gputypes.TextureUsageTextureBinding|gputypes.TextureUsageRenderAttachment|gputypes.TextureUsageCopySrc,
		fmt.Sprintf("texstore %s swizzle", s.kind))
	if err != nil {
		return nil, err
	}
	if tex == nil {
		return nil, ErrNoResource
	}
	s.swizzleTex = tex
	return tex, nil
}

// swizzleTarget returns the draw destination for one level of the swizzle
// texture. The view covers every layer or slice of the level.
func (s *Storage) swizzleTarget(level int) (BlitTarget, error) {
	tex, err := s.swizzleTexture()
	if err != nil {
		return BlitTarget{}, err
	}

	target := BlitTarget{
		Texture:   tex,
		MipLevel:  s.topLevel + level,
		Format:    s.info.SwizzleRenderTarget,
		Dimension: gputypes.TextureViewDimension2D,
	}
	switch {
	case s.kind == Kind3D:
		target.Dimension = gputypes.TextureViewDimension3D
	case s.layers > 1:
		target.Dimension = gputypes.TextureViewDimension2DArray
	}
	if s.swizzleTargets[level] != nil {
		target.View = s.swizzleTargets[level]
		return target, nil
	}

	desc := &hal.TextureViewDescriptor{
		Label:           fmt.Sprintf("texstore %s swizzle target level %d", s.kind, level),
		Format:          s.info.SwizzleRenderTarget,
		Dimension:       target.Dimension,
		Aspect:          gputypes.TextureAspectAll,
		BaseMipLevel:    uint32(s.topLevel + level),
		MipLevelCount:   1,
		ArrayLayerCount: 1,
	}
	if target.Dimension == gputypes.TextureViewDimension2DArray {
		desc.ArrayLayerCount = uint32(s.layers)
	}

	view, err := s.handles.createView(tex, desc)
	if err != nil {
		return BlitTarget{}, err
	}
	s.swizzleTargets[level] = view
	target.View = view
	return target, nil
}
