// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package texstore

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/texstore/format"
)

func viewDesc(v hal.TextureView) hal.TextureViewDescriptor {
	return v.(*fakeView).desc
}

func TestRenderTarget2D(t *testing.T) {
	r := newFakeRenderer(t, Caps{})
	s, err := New2D(r, format.RGBA8, true, 64, 64, 0, false)
	require.NoError(t, err)

	rt, err := s.RenderTarget(Index2D(2))
	require.NoError(t, err)
	desc := viewDesc(rt.View())
	assert.Equal(t, uint32(2), desc.BaseMipLevel)
	assert.Equal(t, uint32(1), desc.MipLevelCount)
	assert.Equal(t, gputypes.TextureViewDimension2D, desc.Dimension)
	assert.Equal(t, gputypes.TextureFormatRGBA8Unorm, desc.Format)
	assert.False(t, rt.IsDepthStencil())
	assert.Equal(t, Extents{Width: 16, Height: 16, Depth: 1}, rt.Extents())
	assert.Equal(t, 2, rt.MipLevel())
	assert.Equal(t, format.RGBA8, rt.InternalFormat())

	level, err := s.ShaderViewForLevel(2)
	require.NoError(t, err)
	assert.Same(t, level, rt.ShaderView())

	again, err := s.RenderTarget(Index2D(2))
	require.NoError(t, err)
	assert.Same(t, rt, again)

	violations := captureViolations(t)
	_, err = s.RenderTarget(IndexCube(0, 0))
	assert.True(t, errors.HasAssertionFailure(err))
	assert.Len(t, *violations, 1)
}

func TestRenderTargetDepthStencil(t *testing.T) {
	r := newFakeRenderer(t, Caps{})
	s, err := New2D(r, format.Depth24Stencil8, false, 32, 32, 1, false)
	require.NoError(t, err)
	assert.Equal(t, BindShaderResource|BindDepthStencil, s.BindFlags())

	rt, err := s.RenderTarget(Index2D(0))
	require.NoError(t, err)
	assert.True(t, rt.IsDepthStencil())
	assert.Equal(t, gputypes.TextureFormatDepth24PlusStencil8, rt.Format())
	assert.Equal(t, gputypes.TextureAspectDepthOnly, viewDesc(rt.ShaderView()).Aspect)
}

func TestRenderTargetWithoutDrawFormat(t *testing.T) {
	violations := captureViolations(t)
	r := newFakeRenderer(t, Caps{})
	s, err := New2D(r, format.BC1, false, 16, 16, 1, false)
	require.NoError(t, err)

	_, err = s.RenderTarget(Index2D(0))
	assert.True(t, errors.HasAssertionFailure(err))
	assert.Len(t, *violations, 1)
}

func TestRenderTargetLimitedTier(t *testing.T) {
	violations := captureViolations(t)
	r := newFakeRenderer(t, Caps{Tier: format.TierLimited})
	s, err := New2D(r, format.RGBA8, true, 16, 16, 0, false)
	require.NoError(t, err)

	rt, err := s.RenderTarget(Index2D(0))
	require.NoError(t, err)
	assert.Nil(t, rt.ShaderView())
	assert.Empty(t, *violations)

	_, err = s.RenderTarget(Index2D(1))
	require.NoError(t, err)
	assert.Len(t, *violations, 1)
}

func TestRenderTargetCube(t *testing.T) {
	r := newFakeRenderer(t, Caps{})
	s, err := NewCube(r, format.RGBA8, true, 16, 0)
	require.NoError(t, err)

	rt, err := s.RenderTarget(IndexCube(3, 1))
	require.NoError(t, err)
	desc := viewDesc(rt.View())
	assert.Equal(t, uint32(3), desc.BaseArrayLayer)
	assert.Equal(t, uint32(1), desc.ArrayLayerCount)
	assert.Equal(t, uint32(1), desc.BaseMipLevel)
	assert.Equal(t, gputypes.TextureViewDimension2D, desc.Dimension)
	assert.Equal(t, 3, rt.Layer())
	assert.Equal(t, 8, rt.Width())

	srv := viewDesc(rt.ShaderView())
	assert.Equal(t, uint32(3), srv.BaseArrayLayer)
	assert.Equal(t, gputypes.TextureViewDimension2D, srv.Dimension)

	other, err := s.RenderTarget(IndexCube(2, 1))
	require.NoError(t, err)
	assert.NotSame(t, rt, other)

	violations := captureViolations(t)
	_, err = s.RenderTarget(IndexCube(CubeFaces, 0))
	assert.Error(t, err)
	assert.Len(t, *violations, 1)
}

func TestShaderViewCube(t *testing.T) {
	tests := []struct {
		name     string
		internal format.Internal
		caps     Caps
		state    SamplerState
		dim      gputypes.TextureViewDimension
		base     uint32
		mips     uint32
	}{
		{
			name:     "mipmapped",
			internal: format.RGBA8,
			state:    SamplerState{MaxLevel: 5, MipmapFilter: gputypes.MipmapFilterModeLinear},
			dim:      gputypes.TextureViewDimensionCube,
			mips:     5,
		},
		{
			name:     "integer as array",
			internal: format.RGBA8UI,
			state:    SamplerState{BaseLevel: 1, MaxLevel: 5, MipmapFilter: gputypes.MipmapFilterModeNearest},
			dim:      gputypes.TextureViewDimension2DArray,
			base:     1,
			mips:     1,
		},
		{
			name:     "limited reaches smallest level",
			internal: format.RGBA8,
			caps:     Caps{Tier: format.TierLimited},
			dim:      gputypes.TextureViewDimensionCube,
			base:     4,
			mips:     1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newFakeRenderer(t, tt.caps)
			s, err := NewCube(r, tt.internal, false, 16, 0)
			require.NoError(t, err)

			view, err := s.ShaderView(tt.state)
			require.NoError(t, err)
			desc := viewDesc(view)
			assert.Equal(t, tt.dim, desc.Dimension)
			assert.Equal(t, tt.base, desc.BaseMipLevel)
			assert.Equal(t, tt.mips, desc.MipLevelCount)
			assert.Equal(t, uint32(CubeFaces), desc.ArrayLayerCount)
		})
	}
}

func TestRenderTarget3D(t *testing.T) {
	r := newFakeRenderer(t, Caps{})
	s, err := New3D(r, format.RGBA8, true, 16, 16, 8, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, s.LevelDepth(1))

	whole, err := s.RenderTarget(Index3D(1, EntireLevel))
	require.NoError(t, err)
	assert.Equal(t, Extents{Width: 8, Height: 8, Depth: 4}, whole.Extents())
	assert.NotNil(t, whole.ShaderView())
	assert.Equal(t, gputypes.TextureViewDimension3D, viewDesc(whole.View()).Dimension)

	slice, err := s.RenderTarget(Index3D(1, 2))
	require.NoError(t, err)
	assert.Nil(t, slice.ShaderView())
	assert.Equal(t, 2, slice.Layer())
	assert.Equal(t, 1, slice.Depth())

	again, err := s.RenderTarget(Index3D(1, 2))
	require.NoError(t, err)
	assert.Same(t, slice, again)

	violations := captureViolations(t)
	_, err = s.RenderTarget(Index3D(1, 4))
	assert.Error(t, err)
	assert.Len(t, *violations, 1)

	view, err := s.ShaderView(SamplerState{MaxLevel: 5, MipmapFilter: gputypes.MipmapFilterModeLinear})
	require.NoError(t, err)
	assert.Equal(t, gputypes.TextureViewDimension3D, viewDesc(view).Dimension)
	assert.Equal(t, uint32(5), viewDesc(view).MipLevelCount)
}

func TestRenderTarget3DDepthFormat(t *testing.T) {
	violations := captureViolations(t)
	r := newFakeRenderer(t, Caps{})
	s, err := New3D(r, format.Depth32F, false, 4, 4, 4, 1)
	require.NoError(t, err)

	_, _ = s.RenderTarget(Index3D(0, EntireLevel))
	assert.NotEmpty(t, *violations)
}

func TestRenderTarget2DArray(t *testing.T) {
	r := newFakeRenderer(t, Caps{})
	s, err := New2DArray(r, format.RGBA8, true, 8, 8, 4, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, s.LevelDepth(2))

	rt, err := s.RenderTarget(IndexLayer(0, 2))
	require.NoError(t, err)
	assert.Equal(t, uint32(2), viewDesc(rt.View()).BaseArrayLayer)
	assert.Equal(t, uint32(1), viewDesc(rt.View()).ArrayLayerCount)
	assert.Equal(t, uint32(2), viewDesc(rt.ShaderView()).BaseArrayLayer)

	view, err := s.ShaderView(SamplerState{})
	require.NoError(t, err)
	assert.Equal(t, gputypes.TextureViewDimension2DArray, viewDesc(view).Dimension)
	assert.Equal(t, uint32(4), viewDesc(view).ArrayLayerCount)

	violations := captureViolations(t)
	_, err = s.RenderTarget(IndexLayer(0, 4))
	assert.Error(t, err)
	assert.Len(t, *violations, 1)
}

type fakeSwapChain struct {
	back *fakeTexture
}

func (sc *fakeSwapChain) BackBuffer() hal.Texture         { return sc.back }
func (sc *fakeSwapChain) Format() gputypes.TextureFormat { return gputypes.TextureFormatBGRA8Unorm }
func (sc *fakeSwapChain) Width() int                     { return 640 }
func (sc *fakeSwapChain) Height() int                    { return 480 }

func TestSwapChainStorage(t *testing.T) {
	r := newFakeRenderer(t, Caps{})
	back := &fakeTexture{id: 99, desc: hal.TextureDescriptor{
		Size:          hal.Extent3D{Width: 640, Height: 480, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		Format:        gputypes.TextureFormatBGRA8Unorm,
	}}
	s := NewFromSwapChain(r, &fakeSwapChain{back: back})

	assert.Equal(t, 1, s.LevelCount())
	assert.Equal(t, 640, s.LevelWidth(0))
	assert.Equal(t, format.BGRA8, s.InternalFormat())
	assert.Same(t, back, s.Resource())

	rt, err := s.RenderTarget(Index2D(0))
	require.NoError(t, err)
	assert.Equal(t, gputypes.TextureFormatBGRA8Unorm, rt.Format())
	assert.Same(t, back, rt.Texture())

	s.Release()
	assert.False(t, back.destroyed, "the back buffer belongs to the swap chain")
}
