// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package texstore

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/texstore/format"
)

// fakeTexture keeps the bytes of every (mip, layer or slice) in memory.
type fakeTexture struct {
	id        int
	desc      hal.TextureDescriptor
	destroyed bool
	planes    map[[2]int][]byte
}

func (t *fakeTexture) Destroy()                            { t.destroyed = true }
func (t *fakeTexture) NativeHandle() uintptr               { return uintptr(t.id) }
func (t *fakeTexture) CurrentUsage() gputypes.TextureUsage { return 0 }
func (t *fakeTexture) AddPendingRef()                      {}
func (t *fakeTexture) DecPendingRef()                      {}
func (t *fakeTexture) texelBytes() int                     { return fakeTexelBytes(t.desc.Format) }

func (t *fakeTexture) extent(mip int) (w, h, d int) {
	w = format.LevelSize(int(t.desc.Size.Width), mip)
	h = format.LevelSize(int(t.desc.Size.Height), mip)
	d = int(t.desc.Size.DepthOrArrayLayers)
	if t.desc.Dimension == gputypes.TextureDimension3D {
		d = format.LevelSize(d, mip)
	}
	return w, h, d
}

func (t *fakeTexture) plane(mip, z int) []byte {
	if t.planes == nil {
		t.planes = make(map[[2]int][]byte)
	}
	key := [2]int{mip, z}
	if p, ok := t.planes[key]; ok {
		return p
	}
	w, h, _ := t.extent(mip)
	p := make([]byte, w*h*t.texelBytes())
	t.planes[key] = p
	return p
}

// texel returns the bytes of one texel, or nil when out of bounds.
func (t *fakeTexture) texel(mip, x, y, z int) []byte {
	w, h, d := t.extent(mip)
	if mip >= int(t.desc.MipLevelCount) || x < 0 || y < 0 || z < 0 || x >= w || y >= h || z >= d {
		return nil
	}
	n := t.texelBytes()
	off := (y*w + x) * n
	return t.plane(mip, z)[off : off+n]
}

func fakeTexelBytes(f gputypes.TextureFormat) int {
	switch f {
	case gputypes.TextureFormatR8Unorm:
		return 1
	case gputypes.TextureFormatRG8Unorm, gputypes.TextureFormatR16Float, gputypes.TextureFormatDepth16Unorm:
		return 2
	case gputypes.TextureFormatRGBA16Float:
		return 8
	case gputypes.TextureFormatRGBA32Float, gputypes.TextureFormatRGBA32Uint:
		return 16
	default:
		return 4
	}
}

type fakeView struct {
	id        int
	tex       *fakeTexture
	desc      hal.TextureViewDescriptor
	destroyed bool
}

func (v *fakeView) Destroy()              { v.destroyed = true }
func (v *fakeView) NativeHandle() uintptr { return uintptr(v.id) }

type copyCall struct {
	src, dst *fakeTexture
	regions  []hal.TextureCopy
}

type fakeRenderer struct {
	t       *testing.T
	caps    Caps
	blitter *fakeBlitter

	nextID   int
	textures []*fakeTexture
	views    []*fakeView
	copies   []copyCall
	writes   int

	// failCreate, when set, is returned by every creation call after
	// failAfter successful ones.
	failCreate error
	failAfter  int
	created    int

	deviceLost int
}

func newFakeRenderer(t *testing.T, caps Caps) *fakeRenderer {
	return &fakeRenderer{t: t, caps: caps, blitter: &fakeBlitter{}}
}

func (r *fakeRenderer) Caps() Caps        { return r.caps }
func (r *fakeRenderer) Blitter() Blitter  { return r.blitter }
func (r *fakeRenderer) NotifyDeviceLost() { r.deviceLost++ }

func (r *fakeRenderer) fail() error {
	if r.failCreate == nil {
		return nil
	}
	if r.created < r.failAfter {
		r.created++
		return nil
	}
	return r.failCreate
}

func (r *fakeRenderer) CreateTexture(desc *hal.TextureDescriptor) (hal.Texture, error) {
	if err := r.fail(); err != nil {
		return nil, err
	}
	r.nextID++
	tex := &fakeTexture{id: r.nextID, desc: *desc}
	r.textures = append(r.textures, tex)
	return tex, nil
}

func (r *fakeRenderer) DestroyTexture(tex hal.Texture) { tex.Destroy() }

func (r *fakeRenderer) CreateTextureView(tex hal.Texture, desc *hal.TextureViewDescriptor) (hal.TextureView, error) {
	if err := r.fail(); err != nil {
		return nil, err
	}
	r.nextID++
	view := &fakeView{id: r.nextID, tex: tex.(*fakeTexture), desc: *desc}
	r.views = append(r.views, view)
	return view, nil
}

func (r *fakeRenderer) DestroyTextureView(view hal.TextureView) { view.Destroy() }

func (r *fakeRenderer) CopyTextureToTexture(src, dst hal.Texture, regions []hal.TextureCopy) error {
	s, d := src.(*fakeTexture), dst.(*fakeTexture)
	r.copies = append(r.copies, copyCall{src: s, dst: d, regions: regions})
	for _, reg := range regions {
		for z := 0; z < int(reg.Size.DepthOrArrayLayers); z++ {
			for y := 0; y < int(reg.Size.Height); y++ {
				for x := 0; x < int(reg.Size.Width); x++ {
					from := s.texel(int(reg.SrcBase.MipLevel), int(reg.SrcBase.Origin.X)+x, int(reg.SrcBase.Origin.Y)+y, int(reg.SrcBase.Origin.Z)+z)
					to := d.texel(int(reg.DstBase.MipLevel), int(reg.DstBase.Origin.X)+x, int(reg.DstBase.Origin.Y)+y, int(reg.DstBase.Origin.Z)+z)
					if from == nil || to == nil {
						return errors.Newf("copy region %+v out of bounds", reg)
					}
					copy(to, from)
				}
			}
		}
	}
	return nil
}

func (r *fakeRenderer) WriteTexture(dst *hal.ImageCopyTexture, data []byte, layout *hal.ImageDataLayout, size *hal.Extent3D) error {
	r.writes++
	tex := dst.Texture.(*fakeTexture)
	n := tex.texelBytes()
	for z := 0; z < int(size.DepthOrArrayLayers); z++ {
		for y := 0; y < int(size.Height); y++ {
			for x := 0; x < int(size.Width); x++ {
				to := tex.texel(int(dst.MipLevel), int(dst.Origin.X)+x, int(dst.Origin.Y)+y, int(dst.Origin.Z)+z)
				if to == nil {
					return errors.Newf("write %+v out of bounds", *size)
				}
				off := int(layout.Offset) + z*int(layout.RowsPerImage)*int(layout.BytesPerRow) + y*int(layout.BytesPerRow) + x*n
				copy(to, data[off:off+n])
			}
		}
	}
	return nil
}

// liveHandles counts textures and views not yet destroyed.
func (r *fakeRenderer) liveHandles() int {
	n := 0
	for _, tex := range r.textures {
		if !tex.destroyed {
			n++
		}
	}
	for _, v := range r.views {
		if !v.destroyed {
			n++
		}
	}
	return n
}

func (r *fakeRenderer) lastTexture() *fakeTexture {
	return r.textures[len(r.textures)-1]
}

type swizzleCall struct {
	src     *fakeView
	srcDim  gputypes.TextureViewDimension
	dst     BlitTarget
	size    Extents
	swizzle Swizzle
}

type blitCall struct {
	src              *fakeView
	srcDim           gputypes.TextureViewDimension
	srcArea, dstArea Box
	dst              BlitTarget
	filter           gputypes.FilterMode
}

type depthCall struct {
	src, dst Subresource
	area     Box
}

type fakeBlitter struct {
	err      error
	swizzles []swizzleCall
	blits    []blitCall
	depths   []depthCall
}

func (b *fakeBlitter) SwizzleTexture(src BlitSource, dst BlitTarget, size Extents, swizzle Swizzle) error {
	if b.err != nil {
		return b.err
	}
	b.swizzles = append(b.swizzles, swizzleCall{
		src: src.View.(*fakeView), srcDim: src.Dimension,
		dst: dst, size: size, swizzle: swizzle,
	})
	return nil
}

func (b *fakeBlitter) CopyTexture(src BlitSource, srcArea Box, _ Extents, dst BlitTarget, dstArea Box, _ Extents, _ *Box, filter gputypes.FilterMode) error {
	if b.err != nil {
		return b.err
	}
	b.blits = append(b.blits, blitCall{
		src: src.View.(*fakeView), srcDim: src.Dimension,
		srcArea: srcArea, dst: dst, dstArea: dstArea, filter: filter,
	})
	return nil
}

func (b *fakeBlitter) CopyDepthStencil(src Subresource, srcArea Box, _ Extents, dst Subresource, _ Box, _ Extents, _ *Box) error {
	if b.err != nil {
		return b.err
	}
	b.depths = append(b.depths, depthCall{src: src, dst: dst, area: srcArea})
	return nil
}

// fakeImage follows the staging image side of the association protocol.
type fakeImage struct {
	width, height, depth int

	storage    *Storage
	index      Index
	recovered  int
	recoverErr error
}

func (img *fakeImage) InternalFormat() format.Internal { return format.RGBA8 }
func (img *fakeImage) Width() int                      { return img.width }
func (img *fakeImage) Height() int                     { return img.height }
func (img *fakeImage) Depth() int                      { return max(img.depth, 1) }

func (img *fakeImage) IsAssociatedStorageValid(s *Storage) bool {
	return img.storage == s
}

func (img *fakeImage) RecoverFromAssociatedStorage() error {
	img.recovered++
	s := img.storage
	img.storage = nil
	s.DisassociateImage(img.index, img)
	return img.recoverErr
}

func (img *fakeImage) attach(s *Storage, idx Index) {
	img.storage, img.index = s, idx
	s.AssociateImage(img, idx)
}

// captureViolations collects protocol violations for the rest of the test.
func captureViolations(t *testing.T) *[]error {
	t.Helper()
	var got []error
	prev := violationHandler
	violationHandler = func(err error) { got = append(got, err) }
	t.Cleanup(func() { violationHandler = prev })
	return &got
}

func fillPixels(n int, seed byte) []byte {
	p := make([]byte, n)
	for i := range p {
		p[i] = seed + byte(i)
	}
	return p
}
