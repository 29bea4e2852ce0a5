// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package texstore

import (
	"github.com/cockroachdb/errors"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/texstore/format"
)

// subresource locates idx in tex. 3D slices are addressed through the
// copy origin, not the layer.
func (s *Storage) subresource(tex hal.Texture, idx Index) Subresource {
	layer := 0
	if idx.HasLayer() && s.kind != Kind3D {
		layer = idx.Layer
	}
	return Subresource{Texture: tex, MipLevel: s.topLevel + idx.Level, Layer: layer}
}

// nativeLevelSize returns the padded size of a logical level rounded to
// whole blocks.
func (s *Storage) nativeLevelSize(level int) (width, height int) {
	e := s.nativeExtents(s.topLevel + level)
	return int(e.Width), int(e.Height)
}

// UpdateLevel copies region of src into the level addressed by idx. The
// same origin is used on both sides. Partial depth/stencil regions are
// drawn by the blitter because native copies only move whole
// depth/stencil subresources.
func (s *Storage) UpdateLevel(src Subresource, idx Index, region Box) error {
	if s.released {
		return ErrReleased
	}
	s.InvalidateSwizzleLevel(idx.Level)

	extents := s.subresourceExtents(idx)
	full := region.Covers(extents)

	tex, err := s.shape.resourceForLevel(idx.Level)
	if err != nil {
		return err
	}
	if tex == nil {
		return ErrNoResource
	}
	dst := s.subresource(tex, idx)

	if !full && s.info.HasDepthOrStencil() {
		err := s.blitter.CopyDepthStencil(src, region, extents, dst, region, extents, nil)
		return errors.Wrapf(err, "texstore: depth-stencil update of %s", idx)
	}

	size := hal.Extent3D{DepthOrArrayLayers: uint32(max(region.Depth, 1))}
	if full {
		w, h := s.nativeLevelSize(idx.Level)
		size.Width, size.Height = uint32(w), uint32(h)
		size.DepthOrArrayLayers = uint32(extents.Depth)
	} else {
		size.Width = uint32(format.RoundUp(region.Width, s.info.BlockWidth))
		size.Height = uint32(format.RoundUp(region.Height, s.info.BlockHeight))
	}

	copyRegion := hal.TextureCopy{
		SrcBase: src.imageCopy(region),
		DstBase: dst.imageCopy(region),
		Size:    size,
	}
	if err := s.r.CopyTextureToTexture(src.Texture, tex, []hal.TextureCopy{copyRegion}); err != nil {
		return errors.Wrapf(err, "texstore: update %s", idx)
	}
	return nil
}

// CopyLevelOut copies the whole level addressed by idx into dst, placed
// at the origin of region.
func (s *Storage) CopyLevelOut(dst Subresource, idx Index, region Box) error {
	if s.released {
		return ErrReleased
	}
	tex, err := s.shape.resourceForLevel(idx.Level)
	if err != nil {
		return err
	}
	if tex == nil {
		return ErrNoResource
	}

	w, h := s.nativeLevelSize(idx.Level)
	copyRegion := hal.TextureCopy{
		SrcBase: s.subresource(tex, idx).imageCopy(Box{}),
		DstBase: dst.imageCopy(region),
		Size: hal.Extent3D{
			Width:              uint32(w),
			Height:             uint32(h),
			DepthOrArrayLayers: uint32(s.subresourceExtents(idx).Depth),
		},
	}
	if err := s.r.CopyTextureToTexture(tex, dst.Texture, []hal.TextureCopy{copyRegion}); err != nil {
		return errors.Wrapf(err, "texstore: copy out %s", idx)
	}
	return nil
}

// GenerateMipLevel downsamples the level at src into the level at dst with
// linear filtering. Both must address the same layer. Failures leave dst
// unchanged and are only logged.
func (s *Storage) GenerateMipLevel(src, dst Index) {
	assertf(src.Layer == dst.Layer, "texstore: mip generation across layers %d and %d", src.Layer, dst.Layer)
	s.InvalidateSwizzleLevel(dst.Level)

	srcRT, err := s.RenderTarget(src)
	if err != nil {
		Logger().Warn("texstore: mip source unavailable", "index", src, "err", err)
		return
	}
	dstRT, err := s.RenderTarget(dst)
	if err != nil {
		Logger().Warn("texstore: mip destination unavailable", "index", dst, "err", err)
		return
	}
	source, ok := srcRT.blitSource(s.info.Shader)
	if !ok {
		Logger().Warn("texstore: mip source has no shader view", "index", src)
		return
	}

	srcSize, dstSize := srcRT.Extents(), dstRT.Extents()
	err = s.blitter.CopyTexture(source, FullBox(srcSize), srcSize,
		dstRT.blitTarget(), FullBox(dstSize), dstSize, nil, gputypes.FilterModeLinear)
	if err != nil {
		Logger().Warn("texstore: mip generation failed", "src", src, "dst", dst, "err", err)
	}
}

// CopyToStorage copies every level and layer into dst, which must have the
// same kind, size and format. dst's swizzle cache is invalidated.
func (s *Storage) CopyToStorage(dst *Storage) error {
	if s.released || dst == nil || dst.released {
		return ErrReleased
	}
	if dst.kind != s.kind || dst.mipLevels != s.mipLevels {
		return s.violation("texstore: copy %s storage with %d levels into %s storage with %d levels",
			s.kind, s.mipLevels, dst.kind, dst.mipLevels)
	}

	var err error
	if wc, ok := s.shape.(wholeCopier); ok {
		err = wc.copyTo(dst)
	} else {
		err = s.copyWhole(s.shape.resource(), dst.shape.resource(), s.mipLevels)
	}
	dst.InvalidateSwizzles()
	return err
}

// copyWhole copies the first mips native levels of every layer of src into
// dst.
func (s *Storage) copyWhole(src, dst hal.Texture, mips int) error {
	if src == nil || dst == nil {
		return ErrNoResource
	}
	regions := make([]hal.TextureCopy, 0, mips)
	for mip := 0; mip < mips; mip++ {
		regions = append(regions, hal.TextureCopy{
			SrcBase: hal.ImageCopyTexture{Texture: src, MipLevel: uint32(mip)},
			DstBase: hal.ImageCopyTexture{Texture: dst, MipLevel: uint32(mip)},
			Size:    s.nativeExtents(mip),
		})
	}
	if err := s.r.CopyTextureToTexture(src, dst, regions); err != nil {
		return errors.Wrapf(err, "texstore: copy %s storage", s.kind)
	}
	return nil
}

// SetData converts client pixels of type typ into the native layout and
// writes them into the level at idx. A nil dstBox covers the image's
// whole size. Depth/stencil formats only accept whole-level updates.
func (s *Storage) SetData(idx Index, img Image, dstBox *Box, typ format.PixelType, unpack format.Unpack, pixels []byte) error {
	if s.released {
		return ErrReleased
	}
	tex, err := s.shape.resourceForLevel(idx.Level)
	if err != nil {
		return err
	}
	if tex == nil {
		return ErrNoResource
	}

	full := dstBox == nil || dstBox.Covers(s.subresourceExtents(idx))
	assertf(!s.info.HasDepthOrStencil() || full, "texstore: partial depth-stencil upload into %s", idx)
	if s.info.Compressed() {
		return errors.Wrapf(ErrCompressedUpload, "%s", s.info.Internal)
	}

	var origin Box
	width, height, depth := img.Width(), img.Height(), img.Depth()
	if dstBox != nil {
		origin = *dstBox
		width, height, depth = dstBox.Width, dstBox.Height, max(dstBox.Depth, 1)
	}

	load, ok := s.info.Load(typ)
	if !ok {
		return errors.Wrapf(format.ErrUnsupportedType, "%s from %s", s.info.Internal, typ)
	}
	srcRow, srcDepth, err := s.info.SourcePitches(typ, width, height, unpack)
	if err != nil {
		return err
	}
	if need := srcDepth*(depth-1) + srcRow*(height-1) + width*load.ClientBytes; len(pixels) < need {
		return errors.Newf("texstore: %d bytes of pixels for %dx%dx%d %s, need %d",
			len(pixels), width, height, depth, typ, need)
	}

	dstRow := s.info.PixelBytes() * width
	dstDepth := dstRow * height
	buf := make([]byte, dstDepth*depth)
	load.Func(width, height, depth, pixels, srcRow, srcDepth, buf, dstRow, dstDepth)

	dst := s.subresource(tex, idx).imageCopy(origin)
	layout := &hal.ImageDataLayout{BytesPerRow: uint32(dstRow), RowsPerImage: uint32(height)}
	size := &hal.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: uint32(depth)}
	if err := s.r.WriteTexture(&dst, buf, layout, size); err != nil {
		return errors.Wrapf(err, "texstore: upload %s", idx)
	}
	s.InvalidateSwizzleLevel(idx.Level)
	return nil
}
