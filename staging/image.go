// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package staging

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/texstore"
	"github.com/gogpu/texstore/format"
)

var (
	// ErrEmpty is returned when an image with no contents is uploaded.
	ErrEmpty = errors.New("staging: image has no contents")

	// ErrReleased is returned by operations on a released image.
	ErrReleased = errors.New("staging: image released")
)

// Image is the client-side copy of one storage slot.
//
// Its contents live in one of three places: client pixels set through
// SetPixels, the associated storage slot after an upload, or a recovery
// texture after the storage gave the slot up.
//
// Like the storages it associates with, an Image must not be used from
// more than one goroutine at a time.
type Image struct {
	r    texstore.Renderer
	info format.Info

	width, height, depth int

	typ    format.PixelType
	unpack format.Unpack
	pixels []byte
	dirty  bool

	storage *texstore.Storage
	index   texstore.Index

	recovered hal.Texture
	released  bool
}

// New creates an empty image of the given internal format and size.
func New(r texstore.Renderer, internal format.Internal, width, height, depth int) (*Image, error) {
	if !internal.Valid() {
		return nil, errors.Newf("staging: invalid format %s", internal)
	}
	if width <= 0 || height <= 0 || depth <= 0 {
		return nil, errors.Newf("staging: invalid size %dx%dx%d", width, height, depth)
	}
	return &Image{
		r:      r,
		info:   format.Lookup(internal, r.Caps().Tier),
		width:  width,
		height: height,
		depth:  depth,
	}, nil
}

func (img *Image) InternalFormat() format.Internal { return img.info.Internal }
func (img *Image) Width() int                      { return img.width }
func (img *Image) Height() int                     { return img.height }
func (img *Image) Depth() int                      { return img.depth }

func (img *Image) String() string {
	return fmt.Sprintf("%s %dx%dx%d", img.info.Internal, img.width, img.height, img.depth)
}

func (img *Image) extents() texstore.Extents {
	return texstore.Extents{Width: img.width, Height: img.height, Depth: img.depth}
}

// SetPixels replaces the contents with client pixels of type typ. An
// associated storage slot no longer matches the image afterwards, so the
// association is dropped.
func (img *Image) SetPixels(typ format.PixelType, unpack format.Unpack, pixels []byte) error {
	load, ok := img.info.Load(typ)
	if !ok {
		return errors.Wrapf(format.ErrUnsupportedType, "staging: %s from %s", img.info.Internal, typ)
	}
	row, slice, err := img.info.SourcePitches(typ, img.width, img.height, unpack)
	if err != nil {
		return err
	}
	if need := slice*(img.depth-1) + row*(img.height-1) + img.width*load.ClientBytes; len(pixels) < need {
		return errors.Newf("staging: %d bytes of pixels for %s, need %d", len(pixels), img, need)
	}

	if img.released {
		return ErrReleased
	}
	img.disassociate()
	img.destroyRecovered()
	img.typ, img.unpack = typ, unpack
	img.pixels = append(img.pixels[:0], pixels...)
	img.dirty = true
	return nil
}

// CopyToStorage uploads the image into the slot of s at idx and
// associates the two. The slot's previous owner recovers its contents
// first.
func (img *Image) CopyToStorage(s *texstore.Storage, idx texstore.Index) error {
	if img.released {
		return ErrReleased
	}
	if img.storage == s && img.index == idx && !img.dirty {
		return nil
	}

	if err := s.ReleaseAssociatedImage(idx, img); err != nil {
		return errors.Wrapf(err, "staging: release %s", idx)
	}

	switch {
	case img.dirty:
		if err := s.SetData(idx, img, nil, img.typ, img.unpack, img.pixels); err != nil {
			return err
		}
	case img.recovered != nil:
		src := texstore.Subresource{Texture: img.recovered}
		if err := s.UpdateLevel(src, idx, texstore.FullBox(img.extents())); err != nil {
			return err
		}
	case img.storage != nil:
		dst, ok := slot(s, idx)
		if !ok {
			return texstore.ErrNoResource
		}
		if err := img.storage.CopyLevelOut(dst, img.index, texstore.Box{}); err != nil {
			return err
		}
		s.InvalidateSwizzleLevel(idx.Level)
	default:
		return ErrEmpty
	}

	img.disassociate()
	img.destroyRecovered()
	s.AssociateImage(img, idx)
	img.storage, img.index = s, idx
	img.dirty = false
	texstore.Logger().Debug("staging: image associated",
		"image", img.String(),
		"storage", s.Kind(),
		"index", idx)
	return nil
}

// slot locates idx in the native resource of s. 3D slices are reached
// through the copy origin, so the layer stays zero.
func slot(s *texstore.Storage, idx texstore.Index) (texstore.Subresource, bool) {
	tex := s.Resource()
	if tex == nil {
		return texstore.Subresource{}, false
	}
	dst := texstore.Subresource{Texture: tex, MipLevel: s.TopLevel() + idx.Level}
	if idx.HasLayer() && s.Kind() != texstore.Kind3D {
		dst.Layer = idx.Layer
	}
	return dst, true
}

// IsAssociatedStorageValid reports whether s is the storage the image
// last uploaded into.
func (img *Image) IsAssociatedStorageValid(s *texstore.Storage) bool {
	return img.storage != nil && img.storage == s
}

// Associated returns the storage and slot holding the image contents.
func (img *Image) Associated() (*texstore.Storage, texstore.Index, bool) {
	return img.storage, img.index, img.storage != nil
}

// Dirty reports whether client pixels are waiting to be uploaded.
func (img *Image) Dirty() bool {
	return img.dirty
}

// Recovered returns the texture holding contents recovered from a
// storage, if any.
func (img *Image) Recovered() (hal.Texture, bool) {
	return img.recovered, img.recovered != nil
}

// RecoverFromAssociatedStorage copies the associated slot into a recovery
// texture and disassociates the image. The association is dropped even
// when the copy fails.
func (img *Image) RecoverFromAssociatedStorage() error {
	s, idx := img.storage, img.index
	if s == nil {
		return nil
	}
	defer img.disassociate()

	tex, err := img.recoveryTexture(s.Kind())
	if err != nil {
		return errors.Wrapf(err, "staging: recover %s", idx)
	}
	if err := s.CopyLevelOut(texstore.Subresource{Texture: tex}, idx, texstore.Box{}); err != nil {
		img.destroyRecovered()
		return err
	}
	img.pixels = nil
	texstore.Logger().Debug("staging: image recovered", "image", img.String(), "index", idx)
	return nil
}

// recoveryTexture creates the texture contents are recovered into. 3D
// levels keep their slices in a volume; everything else is one layer.
func (img *Image) recoveryTexture(kind texstore.Kind) (hal.Texture, error) {
	if img.recovered != nil {
		return img.recovered, nil
	}
	desc := &hal.TextureDescriptor{
		Label:         "staging " + img.String(),
		Size:          hal.Extent3D{Width: uint32(img.width), Height: uint32(img.height), DepthOrArrayLayers: uint32(img.depth)},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        img.info.Texture,
		Usage:         gputypes.TextureUsageCopySrc | gputypes.TextureUsageCopyDst,
	}
	if kind == texstore.Kind3D {
		desc.Dimension = gputypes.TextureDimension3D
	}
	tex, err := img.r.CreateTexture(desc)
	if err != nil {
		return nil, err
	}
	img.recovered = tex
	return tex, nil
}

func (img *Image) destroyRecovered() {
	if img.recovered != nil {
		img.r.DestroyTexture(img.recovered)
		img.recovered = nil
	}
}

// disassociate clears both sides of the association.
func (img *Image) disassociate() {
	if img.storage == nil {
		return
	}
	if !img.storage.Released() {
		img.storage.DisassociateImage(img.index, img)
	}
	img.storage = nil
	img.index = texstore.Index{}
}

// Release drops the association and the recovery texture. The image
// cannot be used afterwards.
func (img *Image) Release() {
	if img.released {
		return
	}
	img.disassociate()
	img.destroyRecovered()
	img.pixels = nil
	img.released = true
}

var _ texstore.Image = (*Image)(nil)
