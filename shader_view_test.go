// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package texstore

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/texstore/format"
)

var bgra = Swizzle{ChannelBlue, ChannelGreen, ChannelRed, ChannelAlpha}

func TestShaderViewLevelRange(t *testing.T) {
	tests := []struct {
		name        string
		state       SamplerState
		base, count uint32
	}{
		{"no mip filter", SamplerState{MaxLevel: 8}, 0, 1},
		{"mipmapped clamped", SamplerState{BaseLevel: 2, MaxLevel: 100, MipmapFilter: gputypes.MipmapFilterModeLinear}, 2, 7},
		{"mipmapped bounded", SamplerState{BaseLevel: 1, MaxLevel: 4, MipmapFilter: gputypes.MipmapFilterModeNearest}, 1, 3},
		{"empty range", SamplerState{BaseLevel: 3, MaxLevel: 3, MipmapFilter: gputypes.MipmapFilterModeLinear}, 3, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newFakeRenderer(t, Caps{})
			s, err := New2D(r, format.RGBA8, false, 256, 256, 0, false)
			require.NoError(t, err)

			view, err := s.ShaderView(tt.state)
			require.NoError(t, err)
			v := view.(*fakeView)
			assert.Same(t, r.textures[0], v.tex)
			assert.Equal(t, tt.base, v.desc.BaseMipLevel)
			assert.Equal(t, tt.count, v.desc.MipLevelCount)
			assert.Equal(t, gputypes.TextureViewDimension2D, v.desc.Dimension)
			assert.Equal(t, gputypes.TextureFormatRGBA8Unorm, v.desc.Format)
		})
	}
}

func TestShaderViewCached(t *testing.T) {
	r := newFakeRenderer(t, Caps{})
	s, err := New2D(r, format.RGBA8, false, 64, 64, 0, false)
	require.NoError(t, err)

	state := SamplerState{MaxLevel: 7, MipmapFilter: gputypes.MipmapFilterModeLinear}
	first, err := s.ShaderView(state)
	require.NoError(t, err)
	views := len(r.views)

	second, err := s.ShaderView(state)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Len(t, r.views, views)

	state.BaseLevel = 1
	third, err := s.ShaderView(state)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
}

func TestShaderViewForLevel(t *testing.T) {
	r := newFakeRenderer(t, Caps{})
	s, err := New2D(r, format.RGBA8, false, 64, 64, 0, false)
	require.NoError(t, err)

	view, err := s.ShaderViewForLevel(4)
	require.NoError(t, err)
	again, err := s.ShaderViewForLevel(4)
	require.NoError(t, err)
	assert.Same(t, view, again)
	assert.Equal(t, uint32(4), view.(*fakeView).desc.BaseMipLevel)
	assert.Equal(t, uint32(1), view.(*fakeView).desc.MipLevelCount)

	violations := captureViolations(t)
	_, err = s.ShaderViewForLevel(7)
	assert.True(t, errors.HasAssertionFailure(err))
	assert.Len(t, *violations, 1)
}

func TestSwizzleGeneration(t *testing.T) {
	violations := captureViolations(t)
	r := newFakeRenderer(t, Caps{})
	s, err := New2D(r, format.RGBA8, false, 256, 256, 0, false)
	require.NoError(t, err)
	primary := r.textures[0]

	view, err := s.ShaderView(SamplerState{Swizzle: bgra})
	require.NoError(t, err)
	require.Len(t, r.blitter.swizzles, 9)
	require.Len(t, r.textures, 2)
	swizzleTex := r.textures[1]
	assert.Same(t, swizzleTex, view.(*fakeView).tex)
	assert.Equal(t, uint32(9), swizzleTex.desc.MipLevelCount)

	call := r.blitter.swizzles[3]
	assert.Same(t, primary, call.src.tex)
	assert.Equal(t, gputypes.TextureViewDimension2D, call.srcDim)
	assert.Equal(t, Extents{Width: 32, Height: 32, Depth: 1}, call.size)
	assert.Equal(t, 3, call.dst.MipLevel)
	assert.Equal(t, bgra, call.swizzle)

	sw, ok := s.SwizzleState(3)
	assert.True(t, ok)
	assert.Equal(t, bgra, sw)

	// Same swizzle again renders nothing.
	again, err := s.ShaderView(SamplerState{Swizzle: bgra})
	require.NoError(t, err)
	assert.Same(t, view, again)
	assert.Len(t, r.blitter.swizzles, 9)

	// A stale level is the only one rendered.
	s.InvalidateSwizzleLevel(3)
	_, err = s.ShaderView(SamplerState{Swizzle: bgra})
	require.NoError(t, err)
	require.Len(t, r.blitter.swizzles, 10)
	assert.Equal(t, 3, r.blitter.swizzles[9].dst.MipLevel)

	// A different swizzle renders every level into the same texture.
	red := Swizzle{ChannelRed, ChannelRed, ChannelRed, ChannelOne}
	_, err = s.ShaderView(SamplerState{Swizzle: red})
	require.NoError(t, err)
	assert.Len(t, r.blitter.swizzles, 19)
	assert.Len(t, r.textures, 2)

	assert.Empty(t, *violations)
}

func TestIdentitySwizzleUsesPrimary(t *testing.T) {
	r := newFakeRenderer(t, Caps{})
	s, err := New2D(r, format.RGBA8, false, 16, 16, 0, false)
	require.NoError(t, err)

	for _, sw := range []Swizzle{{}, IdentitySwizzle} {
		view, err := s.ShaderView(SamplerState{Swizzle: sw})
		require.NoError(t, err)
		assert.Same(t, r.textures[0], view.(*fakeView).tex)
	}
	assert.Empty(t, r.blitter.swizzles)
}

func TestGenerateSwizzlesIdempotent(t *testing.T) {
	r := newFakeRenderer(t, Caps{})
	s, err := New2D(r, format.RGBA8, false, 16, 16, 0, false)
	require.NoError(t, err)

	require.NoError(t, s.GenerateSwizzles(bgra))
	n := len(r.blitter.swizzles)
	require.NoError(t, s.GenerateSwizzles(bgra))
	assert.Len(t, r.blitter.swizzles, n)

	s.InvalidateSwizzles()
	_, ok := s.SwizzleState(0)
	assert.False(t, ok)
	require.NoError(t, s.GenerateSwizzles(bgra))
	assert.Len(t, r.blitter.swizzles, 2*n)
}

func TestSwizzleBlitterFailure(t *testing.T) {
	r := newFakeRenderer(t, Caps{})
	r.blitter.err = errors.New("pipeline unavailable")
	s, err := New2D(r, format.RGBA8, false, 16, 16, 0, false)
	require.NoError(t, err)

	_, err = s.ShaderView(SamplerState{Swizzle: bgra})
	require.Error(t, err)
	_, ok := s.SwizzleState(0)
	assert.False(t, ok)
}

func TestSwizzleLayeredTargets(t *testing.T) {
	r := newFakeRenderer(t, Caps{})
	cube, err := NewCube(r, format.RGBA8, false, 16, 0)
	require.NoError(t, err)
	require.NoError(t, cube.GenerateSwizzles(bgra))

	call := r.blitter.swizzles[1]
	assert.Equal(t, Extents{Width: 8, Height: 8, Depth: 6}, call.size)
	assert.Equal(t, gputypes.TextureViewDimension2DArray, call.srcDim)
	assert.Equal(t, gputypes.TextureViewDimension2DArray, call.src.desc.Dimension)
	assert.Equal(t, uint32(1), call.src.desc.BaseMipLevel)
	assert.Equal(t, gputypes.TextureViewDimension2DArray, call.dst.Dimension)
	dst := r.views[len(r.views)-1]
	assert.Equal(t, gputypes.TextureViewDimension2DArray, dst.desc.Dimension)
	assert.Equal(t, uint32(6), dst.desc.ArrayLayerCount)

	r = newFakeRenderer(t, Caps{})
	vol, err := New3D(r, format.RGBA8, false, 16, 16, 8, 0)
	require.NoError(t, err)
	require.NoError(t, vol.GenerateSwizzles(bgra))
	assert.Equal(t, Extents{Width: 8, Height: 8, Depth: 4}, r.blitter.swizzles[1].size)
	assert.Equal(t, gputypes.TextureViewDimension3D, r.blitter.swizzles[1].srcDim)
	assert.Equal(t, gputypes.TextureViewDimension3D, r.blitter.swizzles[1].dst.Dimension)
	assert.Equal(t, gputypes.TextureViewDimension3D, r.views[len(r.views)-1].desc.Dimension)
}

func TestLimitedTierSampling(t *testing.T) {
	violations := captureViolations(t)
	r := newFakeRenderer(t, Caps{Tier: format.TierLimited})
	s, err := New2D(r, format.RGBA8, false, 256, 256, 0, false)
	require.NoError(t, err)

	_, err = s.ShaderView(SamplerState{MaxLevel: 9, MipmapFilter: gputypes.MipmapFilterModeLinear})
	require.NoError(t, err)
	_, err = s.ShaderView(SamplerState{})
	require.NoError(t, err)
	assert.Empty(t, *violations)

	_, err = s.ShaderView(SamplerState{MaxLevel: 4, MipmapFilter: gputypes.MipmapFilterModeLinear})
	require.NoError(t, err)
	assert.Len(t, *violations, 1)

	_, err = s.ShaderView(SamplerState{Swizzle: bgra})
	assert.ErrorIs(t, err, ErrSwizzleUnsupported)
	assert.Len(t, *violations, 2)
}

func TestShaderViewReleased(t *testing.T) {
	r := newFakeRenderer(t, Caps{})
	s, err := New2D(r, format.RGBA8, false, 16, 16, 0, false)
	require.NoError(t, err)
	s.Release()

	_, err = s.ShaderView(SamplerState{})
	assert.ErrorIs(t, err, ErrReleased)
	assert.ErrorIs(t, s.GenerateSwizzles(bgra), ErrReleased)
}
