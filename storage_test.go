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

func TestNew2DFullChain(t *testing.T) {
	r := newFakeRenderer(t, Caps{})
	s, err := New2D(r, format.RGBA8, true, 256, 256, 0, false)
	require.NoError(t, err)
	defer s.Release()

	assert.Equal(t, Kind2D, s.Kind())
	assert.Equal(t, 0, s.TopLevel())
	assert.Equal(t, 9, s.LevelCount())
	assert.Equal(t, 32, s.LevelWidth(3))
	assert.Equal(t, 1, s.LevelHeight(12))
	assert.Equal(t, 1, s.LevelDepth(0))
	assert.True(t, s.IsRenderTarget())
	assert.False(t, s.IsManaged())
	assert.Equal(t, BindShaderResource|BindRenderTarget, s.BindFlags())

	require.Len(t, r.textures, 1)
	desc := r.textures[0].desc
	assert.Equal(t, hal.Extent3D{Width: 256, Height: 256, DepthOrArrayLayers: 1}, desc.Size)
	assert.Equal(t, uint32(9), desc.MipLevelCount)
	assert.Equal(t, gputypes.TextureFormatRGBA8Unorm, desc.Format)
	assert.True(t, desc.Usage.Contains(gputypes.TextureUsageRenderAttachment))
	assert.True(t, desc.Usage.Contains(gputypes.TextureUsageCopyDst))
	assert.Same(t, r.textures[0], s.Resource())
}

func TestNew2DExplicitLevels(t *testing.T) {
	r := newFakeRenderer(t, Caps{})
	s, err := New2D(r, format.RGBA8, false, 64, 32, 3, false)
	require.NoError(t, err)

	assert.Equal(t, 3, s.LevelCount())
	assert.Equal(t, uint32(3), r.textures[0].desc.MipLevelCount)
	assert.False(t, s.IsRenderTarget())
	assert.Equal(t, 8, s.LevelHeight(2))
}

func TestNew2DZeroSize(t *testing.T) {
	r := newFakeRenderer(t, Caps{})
	s, err := New2D(r, format.RGBA8, false, 0, 16, 0, false)
	require.NoError(t, err)

	assert.Nil(t, s.Resource())
	assert.Empty(t, r.textures)
	assert.Equal(t, 0, s.LevelCount())

	_, ok := s.SubresourceIndex(Index2D(0))
	assert.False(t, ok)

	_, err = s.ShaderView(SamplerState{})
	assert.ErrorIs(t, err, ErrNoResource)
}

func TestNew2DCompressedPadding(t *testing.T) {
	r := newFakeRenderer(t, Caps{})
	s, err := New2D(r, format.BC1, false, 2, 2, 0, false)
	require.NoError(t, err)

	assert.Equal(t, 1, s.TopLevel())
	assert.Equal(t, 3, s.MipLevels())
	assert.Equal(t, 2, s.LevelCount())
	assert.Equal(t, 2, s.LevelWidth(0))
	assert.Equal(t, hal.Extent3D{Width: 4, Height: 4, DepthOrArrayLayers: 1}, r.textures[0].desc.Size)

	idx, ok := s.SubresourceIndex(Index2D(0))
	require.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestCreationFailure(t *testing.T) {
	tests := []struct {
		name       string
		cause      error
		deviceLost bool
	}{
		{"out of memory", hal.ErrDeviceOutOfMemory, false},
		{"driver error", errors.New("driver refused"), false},
		{"device lost", hal.ErrDeviceLost, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newFakeRenderer(t, Caps{})
			r.failCreate = tt.cause

			s, err := New2D(r, format.RGBA8, false, 16, 16, 0, false)
			require.Error(t, err)
			assert.Nil(t, s)
			assert.ErrorIs(t, err, ErrOutOfMemory)
			assert.Equal(t, tt.deviceLost, errors.Is(err, ErrDeviceLost))
			if tt.deviceLost {
				assert.Equal(t, 1, r.deviceLost)
			} else {
				assert.Equal(t, 0, r.deviceLost)
			}
		})
	}
}

func TestViewCreationFailure(t *testing.T) {
	r := newFakeRenderer(t, Caps{})
	r.failCreate = hal.ErrDeviceOutOfMemory
	r.failAfter = 1

	s, err := New2D(r, format.RGBA8, false, 16, 16, 0, false)
	require.NoError(t, err)

	_, err = s.ShaderView(SamplerState{})
	assert.ErrorIs(t, err, ErrOutOfMemory)

	s.Release()
	assert.Equal(t, 0, r.liveHandles())
}

func TestSubresourceIndexInjective(t *testing.T) {
	r := newFakeRenderer(t, Caps{})
	s, err := NewCube(r, format.RGBA8, false, 16, 0)
	require.NoError(t, err)
	require.Equal(t, 5, s.MipLevels())

	seen := make(map[int]Index)
	for face := 0; face < CubeFaces; face++ {
		for level := 0; level < s.LevelCount(); level++ {
			idx := IndexCube(face, level)
			n, ok := s.SubresourceIndex(idx)
			require.True(t, ok)
			assert.Equal(t, level+face*5, n)

			prev, dup := seen[n]
			assert.False(t, dup, "%s and %s share subresource %d", prev, idx, n)
			seen[n] = idx

			sub := SubresourceAt(s.Resource(), n, s.MipLevels())
			assert.Equal(t, level, sub.MipLevel)
			assert.Equal(t, face, sub.Layer)
		}
	}
	assert.Len(t, seen, 30)
}

func TestSerialsAreUnique(t *testing.T) {
	r := newFakeRenderer(t, Caps{})
	a, err := New2D(r, format.RGBA8, true, 16, 16, 0, false)
	require.NoError(t, err)
	b, err := NewCube(r, format.RGBA8, true, 16, 0)
	require.NoError(t, err)

	assert.Greater(t, b.Serial(), a.RenderTargetSerial(Index2D(a.LevelCount()-1)))
	assert.Equal(t, a.Serial()+3, a.RenderTargetSerial(Index2D(3)))
	assert.NotEqual(t, b.RenderTargetSerial(IndexCube(0, 1)), b.RenderTargetSerial(IndexCube(1, 0)))
}

func TestVolumeSerialsPerSlice(t *testing.T) {
	r := newFakeRenderer(t, Caps{})
	v, err := New3D(r, format.RGBA8, true, 8, 8, 4, 2)
	require.NoError(t, err)
	next, err := New2D(r, format.RGBA8, true, 4, 4, 1, false)
	require.NoError(t, err)

	seen := make(map[uint64]Index)
	for level := 0; level < v.LevelCount(); level++ {
		indices := []Index{Index3D(level, EntireLevel)}
		for slice := 0; slice < v.LevelDepth(level); slice++ {
			indices = append(indices, Index3D(level, slice))
		}
		for _, idx := range indices {
			serial := v.RenderTargetSerial(idx)
			prev, dup := seen[serial]
			assert.False(t, dup, "%s shares serial %d with %s", idx, serial, prev)
			seen[serial] = idx
			assert.Less(t, serial, next.Serial())
		}
	}
	assert.Equal(t, v.Serial(), v.RenderTargetSerial(Index3D(0, EntireLevel)))
}

func TestReleaseDestroysEverything(t *testing.T) {
	r := newFakeRenderer(t, Caps{})
	s, err := New2D(r, format.RGBA8, true, 32, 32, 0, false)
	require.NoError(t, err)

	_, err = s.ShaderView(SamplerState{Swizzle: Swizzle{ChannelBlue, ChannelGreen, ChannelRed, ChannelAlpha}})
	require.NoError(t, err)
	_, err = s.RenderTarget(Index2D(1))
	require.NoError(t, err)
	require.Positive(t, r.liveHandles())

	s.Release()
	assert.Equal(t, 0, r.liveHandles())
	assert.True(t, s.Released())
	assert.Nil(t, s.Resource())

	_, err = s.RenderTarget(Index2D(0))
	assert.ErrorIs(t, err, ErrReleased)

	// Second release is a no-op.
	s.Release()
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "cube", KindCube.String())
	assert.Equal(t, "2D-array", Kind2DArray.String())
	assert.Equal(t, "Kind(9)", Kind(9).String())
}
