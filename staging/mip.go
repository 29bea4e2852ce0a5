// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package staging

import (
	"image"

	"github.com/cockroachdb/errors"
	"golang.org/x/image/draw"

	"github.com/gogpu/texstore"
	"github.com/gogpu/texstore/format"
)

// ErrUnsupportedFormat is returned when CPU mip generation is asked for a
// format whose client layout is not 8-bit RGBA.
var ErrUnsupportedFormat = errors.New("staging: format has no 8-bit RGBA upload")

// MipChain returns base converted to NRGBA followed by each smaller level
// down to levels entries, each scaled from the previous one. A nil
// scaler uses draw.BiLinear. levels is clamped to the full chain length.
func MipChain(base image.Image, levels int, scaler draw.Scaler) []*image.NRGBA {
	if scaler == nil {
		scaler = draw.BiLinear
	}
	b := base.Bounds()
	levels = min(max(levels, 1), format.ComputeLevels(b.Dx(), b.Dy(), 1))

	top := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(top, top.Bounds(), base, b.Min, draw.Src)

	chain := []*image.NRGBA{top}
	for level := 1; level < levels; level++ {
		prev := chain[level-1]
		next := image.NewNRGBA(image.Rect(0, 0,
			format.LevelSize(b.Dx(), level),
			format.LevelSize(b.Dy(), level)))
		scaler.Scale(next, next.Bounds(), prev, prev.Bounds(), draw.Src, nil)
		chain = append(chain, next)
	}
	return chain
}

// rgbaUpload reports whether internal takes 8-bit RGBA client pixels in
// NRGBA channel order.
func rgbaUpload(internal format.Internal) bool {
	switch internal {
	case format.RGBA8, format.SRGB8Alpha8:
		return true
	default:
		return false
	}
}

// NewLevels builds one image per mip level of base. The returned images
// hold client pixels ready for CopyToStorage at Index2D(level) or the
// matching face or layer.
func NewLevels(r texstore.Renderer, internal format.Internal, base image.Image, levels int, scaler draw.Scaler) ([]*Image, error) {
	if !rgbaUpload(internal) {
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%s", internal)
	}
	chain := MipChain(base, levels, scaler)
	images := make([]*Image, 0, len(chain))
	for _, level := range chain {
		img, err := New(r, internal, level.Rect.Dx(), level.Rect.Dy(), 1)
		if err == nil {
			err = img.SetPixels(format.UnsignedByte, format.Unpack{Alignment: 1}, level.Pix)
		}
		if err != nil {
			for _, done := range images {
				done.Release()
			}
			return nil, err
		}
		images = append(images, img)
	}
	return images, nil
}

// UploadLevels copies images into consecutive levels of s starting at
// the level of first, keeping the layer of first.
func UploadLevels(s *texstore.Storage, first texstore.Index, images []*Image) error {
	for i, img := range images {
		idx := first
		idx.Level += i
		if idx.Level >= s.LevelCount() {
			break
		}
		if err := img.CopyToStorage(s, idx); err != nil {
			return errors.Wrapf(err, "staging: upload %s", idx)
		}
	}
	return nil
}
