// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package format

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runLoad converts a single row of width pixels.
func runLoad(t *testing.T, f Internal, typ PixelType, width int, src []byte) []byte {
	t.Helper()
	info := Lookup(f, TierFull)
	load, ok := info.Load(typ)
	require.True(t, ok, "%s has no load for %s", f, typ)

	dst := make([]byte, width*info.PixelBytes())
	load.Func(width, 1, 1, src, len(src), len(src), dst, len(dst), len(dst))
	return dst
}

func TestLoadExpansions(t *testing.T) {
	tests := []struct {
		name string
		f    Internal
		typ  PixelType
		src  []byte
		want []byte
	}{
		{"rgb8", RGB8, UnsignedByte, []byte{1, 2, 3, 4, 5, 6}, []byte{1, 2, 3, 255, 4, 5, 6, 255}},
		{"alpha8", Alpha8, UnsignedByte, []byte{7}, []byte{0, 0, 0, 7}},
		{"luminance8", Luminance8, UnsignedByte, []byte{9}, []byte{9, 9, 9, 255}},
		{"luminance alpha8", LuminanceAlpha8, UnsignedByte, []byte{9, 3}, []byte{9, 9, 9, 3}},
		{"rgba4", RGBA4, UnsignedShort4444, le16(0xF0A5), []byte{0xFF, 0x00, 0xAA, 0x55}},
		{"rgb5a1 opaque", RGB5A1, UnsignedShort5551, le16(0xF801), []byte{0xFF, 0, 0, 0xFF}},
		{"rgb5a1 clear", RGB5A1, UnsignedShort5551, le16(0x003E), []byte{0, 0, 0xFF, 0}},
		{"rgb565", RGB565, UnsignedShort565, le16(0x07E0), []byte{0, 0xFF, 0, 0xFF}},
		{"rgba8 copy", RGBA8, UnsignedByte, []byte{1, 2, 3, 4}, []byte{1, 2, 3, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			width := len(tt.want) / Lookup(tt.f, TierFull).PixelBytes()
			assert.Equal(t, tt.want, runLoad(t, tt.f, tt.typ, width, tt.src))
		})
	}
}

func TestLoadDepthStencil(t *testing.T) {
	// depth 0xABCDEF, stencil 0x12
	got := runLoad(t, Depth24Stencil8, UnsignedInt248, 1, le32(0xABCDEF12))
	assert.Equal(t, uint32(0x12ABCDEF), binary.LittleEndian.Uint32(got))

	got = runLoad(t, Depth16, UnsignedInt, 1, le32(0x12345678))
	assert.Equal(t, uint16(0x1234), binary.LittleEndian.Uint16(got))
}

func TestLoadHonorsPitches(t *testing.T) {
	info := Lookup(RGB8, TierFull)
	load, ok := info.Load(UnsignedByte)
	require.True(t, ok)

	// Two rows of two pixels, source rows padded to 8 bytes.
	src := []byte{
		1, 1, 1, 2, 2, 2, 0xEE, 0xEE,
		3, 3, 3, 4, 4, 4, 0xEE, 0xEE,
	}
	dst := make([]byte, 16)
	load.Func(2, 2, 1, src, 8, 16, dst, 8, 16)

	assert.Equal(t, []byte{
		1, 1, 1, 255, 2, 2, 2, 255,
		3, 3, 3, 255, 4, 4, 4, 255,
	}, dst)
}

func TestFloat32ToHalf(t *testing.T) {
	tests := []struct {
		in   float32
		want uint16
	}{
		{0, 0x0000},
		{1, 0x3C00},
		{0.5, 0x3800},
		{-2, 0xC000},
		{65504, 0x7BFF},
		{1e6, 0x7C00},
		{float32(math.Inf(-1)), 0xFC00},
		{5.960464477539063e-08, 0x0001},
		{1e-10, 0x0000},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Float32ToHalf(tt.in), "%g", tt.in)
	}
	assert.Equal(t, uint16(0x7E00), Float32ToHalf(float32(math.NaN())))
}

func TestLoadFloatToHalf(t *testing.T) {
	src := make([]byte, 16)
	for i, f := range []float32{1, 0.5, -2, 0} {
		binary.LittleEndian.PutUint32(src[4*i:], math.Float32bits(f))
	}
	got := runLoad(t, RGBA16F, Float, 1, src)
	assert.Equal(t, []byte{0x00, 0x3C, 0x00, 0x38, 0x00, 0xC0, 0x00, 0x00}, got)
}

func le16(v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return b
}

func le32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}
