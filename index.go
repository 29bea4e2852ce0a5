// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package texstore

import (
	"fmt"

	"github.com/gogpu/wgpu/hal"
)

// MaxTextureLevels bounds the mip chain of every storage and sizes the
// per-level caches.
const MaxTextureLevels = 15

// CubeFaces is the number of faces of a cube storage.
const CubeFaces = 6

// EntireLevel marks an Index without a layer.
const EntireLevel = -1

// Index addresses one mip level of a storage and optionally one layer:
// a cube face, a 3D depth slice or a 2D-array layer.
type Index struct {
	Level int
	Layer int
}

// Index2D addresses a level of a 2D storage.
func Index2D(level int) Index {
	return Index{Level: level, Layer: EntireLevel}
}

// IndexCube addresses one face of a cube storage level.
func IndexCube(face, level int) Index {
	return Index{Level: level, Layer: face}
}

// Index3D addresses a 3D storage level; layer is a depth slice or
// EntireLevel for the whole volume.
func Index3D(level, layer int) Index {
	return Index{Level: level, Layer: layer}
}

// IndexLayer addresses one layer of a 2D-array storage level.
func IndexLayer(level, layer int) Index {
	return Index{Level: level, Layer: layer}
}

// HasLayer reports whether the index names a layer.
func (i Index) HasLayer() bool {
	return i.Layer != EntireLevel
}

func (i Index) String() string {
	if !i.HasLayer() {
		return fmt.Sprintf("level %d", i.Level)
	}
	return fmt.Sprintf("level %d layer %d", i.Level, i.Layer)
}

// Extents is the size of a level.
type Extents struct {
	Width, Height, Depth int
}

// Box is a region of a level. Depth counts slices for 3D storages and
// layers otherwise.
type Box struct {
	X, Y, Z              int
	Width, Height, Depth int
}

// FullBox returns the box covering e.
func FullBox(e Extents) Box {
	return Box{Width: e.Width, Height: e.Height, Depth: e.Depth}
}

// Extents returns the size of the box.
func (b Box) Extents() Extents {
	return Extents{Width: b.Width, Height: b.Height, Depth: b.Depth}
}

// Covers reports whether b is exactly the whole of e.
func (b Box) Covers(e Extents) bool {
	return b.X == 0 && b.Y == 0 && b.Z == 0 &&
		b.Width == e.Width && b.Height == e.Height && b.Depth == e.Depth
}

// Subresource locates one mip level and array layer of a native texture.
type Subresource struct {
	Texture  hal.Texture
	MipLevel int
	Layer    int
}

// SubresourceAt decodes a linear subresource index of a texture with
// mipLevels levels per layer.
func SubresourceAt(tex hal.Texture, index, mipLevels int) Subresource {
	return Subresource{
		Texture:  tex,
		MipLevel: index % mipLevels,
		Layer:    index / mipLevels,
	}
}

func (s Subresource) imageCopy(origin Box) hal.ImageCopyTexture {
	return hal.ImageCopyTexture{
		Texture:  s.Texture,
		MipLevel: uint32(s.MipLevel),
		Origin: hal.Origin3D{
			X: uint32(origin.X),
			Y: uint32(origin.Y),
			Z: uint32(s.Layer + origin.Z),
		},
	}
}
