// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/texstore"
	"github.com/gogpu/texstore/format"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseFormat(t *testing.T) {
	f, err := parseFormat("RGBA16F")
	require.NoError(t, err)
	assert.Equal(t, format.RGBA16F, f)

	_, err = parseFormat("RGBA9")
	assert.Error(t, err)
}

func TestParseSwizzle(t *testing.T) {
	sw, err := parseSwizzle("bgra")
	require.NoError(t, err)
	assert.Equal(t, texstore.Swizzle{
		R: texstore.ChannelBlue, G: texstore.ChannelGreen, B: texstore.ChannelRed, A: texstore.ChannelAlpha,
	}, sw)

	sw, err = parseSwizzle("rrr1")
	require.NoError(t, err)
	assert.Equal(t, texstore.ChannelOne, sw.A)

	_, err = parseSwizzle("rgb")
	assert.Error(t, err)
	_, err = parseSwizzle("rgbx")
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	tests := []struct {
		name string
		cfg  config
	}{
		{"rgba", config{size: 64, format: format.RGBA8, swizzle: texstore.Swizzle{R: texstore.ChannelBlue, G: texstore.ChannelGreen, B: texstore.ChannelRed, A: texstore.ChannelAlpha}}},
		{"half float", config{size: 32, format: format.RGBA16F}},
		{"limited", config{size: 32, format: format.RGBA8, limited: true}},
		{"spirv", config{size: 16, format: format.SRGB8Alpha8, spirv: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep, err := runDemo(tt.cfg, discard())
			require.NoError(t, err)
			assert.Equal(t, 5, rep.storages)
			assert.Equal(t, format.ComputeLevels(tt.cfg.size, tt.cfg.size, 1), rep.levels)
			assert.Positive(t, rep.recovered, "released storages hand contents back to staging images")
			assert.Positive(t, rep.misses)
		})
	}
}

func TestRunCompressedFormat(t *testing.T) {
	_, err := runDemo(config{size: 16, format: format.BC1}, discard())
	assert.Error(t, err)
}
