// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package format

import "github.com/gogpu/gputypes"

// ComputeLevels returns the length of a full mip chain for the given
// level-zero size.
func ComputeLevels(width, height, depth int) int {
	size := max(width, height, depth)
	levels := 1
	for size > 1 {
		size >>= 1
		levels++
	}
	return levels
}

// MakeValidSize pads a requested size so that it is a whole number of
// compression blocks. Each doubling of the size adds one level to the
// returned levelOffset; the caller addresses the requested size at that
// mip level of the padded resource.
//
// Full textures that are already at least one block in each dimension are
// left alone unless isImage is set.
func MakeValidSize(isImage bool, info Info, width, height int) (w, h, levelOffset int) {
	w, h = width, height
	bw, bh := max(info.BlockWidth, 1), max(info.BlockHeight, 1)
	if w <= 0 || h <= 0 {
		return w, h, 0
	}

	if isImage || w < bw || h < bh {
		for w%bw != 0 || h%bh != 0 {
			w <<= 1
			h <<= 1
			levelOffset++
		}
	}
	return w, h, levelOffset
}

// LevelSize returns max(size>>level, 1).
func LevelSize(size, level int) int {
	return max(size>>level, 1)
}

// TextureBytes returns the storage size of a native texture of format f
// with the given level-zero size and mip count. volume selects 3D mip
// shrinking of the third dimension; otherwise it counts array layers.
// Formats outside the table are assumed to use four bytes per texel.
func TextureBytes(f gputypes.TextureFormat, width, height, depthOrLayers, mips int, volume bool) uint64 {
	bw, bh, bytes := 1, 1, 4
	for _, info := range table {
		if info.Texture == f && info.BlockBytes > 0 {
			bw, bh, bytes = info.BlockWidth, info.BlockHeight, info.BlockBytes
			break
		}
	}

	var total uint64
	for level := range max(mips, 1) {
		w := (LevelSize(width, level) + bw - 1) / bw
		h := (LevelSize(height, level) + bh - 1) / bh
		d := depthOrLayers
		if volume {
			d = LevelSize(depthOrLayers, level)
		}
		total += uint64(w) * uint64(h) * uint64(max(d, 1)) * uint64(bytes)
	}
	return total
}
