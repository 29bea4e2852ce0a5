// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package texstore

import (
	"fmt"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/texstore/format"
	"github.com/gogpu/texstore/internal/viewcache"
)

// Kind is the shape of a storage.
type Kind uint8

const (
	Kind2D Kind = iota
	KindCube
	Kind3D
	Kind2DArray
)

func (k Kind) String() string {
	switch k {
	case Kind2D:
		return "2D"
	case KindCube:
		return "cube"
	case Kind3D:
		return "3D"
	case Kind2DArray:
		return "2D-array"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// shape holds what differs between storage kinds. The shared algorithms
// live on Storage and reach the shape through this interface.
type shape interface {
	// resource returns the texture sampled by default, nil for a
	// zero-sized storage.
	resource() hal.Texture

	// resourceForLevel returns the texture holding level, creating it if
	// the storage keeps more than one.
	resourceForLevel(level int) (hal.Texture, error)

	shaderViewDesc(baseLevel, mipLevels int, f gputypes.TextureFormat, aspect gputypes.TextureAspect) *hal.TextureViewDescriptor

	renderTarget(idx Index) (*RenderTarget, error)

	// reset drops references to cached render targets. The arena destroys
	// the handles.
	reset()
}

// levelZeroPicker is implemented by shapes that keep a separate
// level-zero-only texture.
type levelZeroPicker interface {
	pickLevelZero(useLevelZero bool) error
}

// wholeCopier is implemented by shapes that copy more than their active
// texture into another storage.
type wholeCopier interface {
	copyTo(dst *Storage) error
}

type viewKey struct {
	baseLevel int
	mipLevels int
	swizzle   bool
}

var serials atomic.Uint64

// Storage is a GPU-resident texture with its lazily created views.
//
// A Storage is created by New2D, NewFromSwapChain, NewCube, New3D or
// New2DArray and must be released with Release. It is not safe for
// concurrent use.
type Storage struct {
	r       Renderer
	blitter Blitter
	caps    Caps
	kind    Kind
	shape   shape
	assoc   associations
	serial  uint64

	bindFlags BindFlags
	info      format.Info

	topLevel  int
	mipLevels int

	// width, height and depth describe logical level zero. depth counts
	// slices for 3D storages and layers otherwise.
	width, height, depth int

	// Padded size of native level zero.
	texWidth, texHeight int
	layers              int
	dimension           gputypes.TextureDimension

	handles     arena
	shaderViews *viewcache.Cache[viewKey, hal.TextureView]
	levelViews  [MaxTextureLevels]hal.TextureView
	blitViews   [MaxTextureLevels]hal.TextureView

	swizzleCache   [MaxTextureLevels]Swizzle
	swizzleTex     hal.Texture
	swizzleTargets [MaxTextureLevels]hal.TextureView

	released bool
}

func newStorage(r Renderer, kind Kind, info format.Info, flags BindFlags) *Storage {
	return &Storage{
		r:           r,
		blitter:     r.Blitter(),
		caps:        r.Caps(),
		kind:        kind,
		bindFlags:   flags,
		info:        info,
		layers:      1,
		dimension:   gputypes.TextureDimension2D,
		handles:     arena{r: r},
		shaderViews: viewcache.New[viewKey, hal.TextureView](),
	}
}

// setSize records the requested size and derives the top level and the
// native mip count. levels <= 0 requests a full chain. A non-positive
// size leaves the storage without levels.
func (s *Storage) setSize(width, height, depth, levels int) {
	s.width, s.height, s.depth = width, height, depth
	if width <= 0 || height <= 0 || depth <= 0 {
		return
	}

	s.texWidth, s.texHeight, s.topLevel = format.MakeValidSize(false, s.info, width, height)

	volume := 1
	if s.kind == Kind3D {
		volume = depth
	}
	if levels <= 0 {
		s.mipLevels = format.ComputeLevels(s.texWidth, s.texHeight, volume)
	} else {
		s.mipLevels = s.topLevel + levels
	}
	s.mipLevels = min(s.mipLevels, MaxTextureLevels)
}

// initSerials reserves one serial per render target the storage can hand out.
func (s *Storage) initSerials() {
	n := uint64(max(s.LevelCount()*s.serialStride(), 1))
	s.serial = serials.Add(n) - n + 1
}

// serialStride is the number of serials reserved per level: one per layer,
// or for 3D storages one for the whole volume plus one per depth slice of
// level zero.
func (s *Storage) serialStride() int {
	if s.kind == Kind3D {
		return max(s.depth, 0) + 1
	}
	return max(s.layers, 1)
}

// createTexture allocates a native texture of the storage's padded size
// with mips levels. A zero-sized storage yields no texture and no error.
func (s *Storage) createTexture(f gputypes.TextureFormat, mips int, usage gputypes.TextureUsage, label string) (hal.Texture, error) {
	if s.texWidth <= 0 || s.texHeight <= 0 {
		return nil, nil
	}
	layers := s.layers
	if s.kind == Kind3D {
		layers = s.depth
	}
	return s.handles.createTexture(&hal.TextureDescriptor{
		Label: label,
		Size: hal.Extent3D{
			Width:              uint32(s.texWidth),
			Height:             uint32(s.texHeight),
			DepthOrArrayLayers: uint32(layers),
		},
		MipLevelCount: uint32(mips),
		SampleCount:   1,
		Dimension:     s.dimension,
		Format:        f,
		Usage:         usage,
	})
}

func (s *Storage) createPrimary(mips int, label string) (hal.Texture, error) {
	return s.createTexture(s.info.Texture, mips, s.bindFlags.Usage(), label)
}

// violation reports a protocol violation and returns it as an error for
// callers that cannot continue.
func (s *Storage) violation(msg string, args ...any) error {
	err := errors.AssertionFailedf(msg, args...)
	violationHandler(err)
	return err
}

// Kind returns the shape of the storage.
func (s *Storage) Kind() Kind { return s.kind }

// BindFlags returns how the native texture may be bound.
func (s *Storage) BindFlags() BindFlags { return s.bindFlags }

// TopLevel returns the native level holding logical level zero.
func (s *Storage) TopLevel() int { return s.topLevel }

// LevelCount returns the number of logical levels.
func (s *Storage) LevelCount() int { return s.mipLevels - s.topLevel }

// MipLevels returns the number of native levels, including padding levels.
func (s *Storage) MipLevels() int { return s.mipLevels }

// InternalFormat returns the abstract format of the storage.
func (s *Storage) InternalFormat() format.Internal { return s.info.Internal }

// Formats returns the native formats of the storage.
func (s *Storage) Formats() format.Info { return s.info }

// Caps returns the capability snapshot the storage was created with.
func (s *Storage) Caps() Caps { return s.caps }

// Serial returns the first render-target serial of the storage. Serials
// are unique across storages.
func (s *Storage) Serial() uint64 { return s.serial }

// RenderTargetSerial returns the serial of the render target at idx.
func (s *Storage) RenderTargetSerial(idx Index) uint64 {
	offset := 0
	switch {
	case s.kind == Kind3D && idx.HasLayer():
		offset = idx.Layer + 1
	case idx.HasLayer():
		offset = idx.Layer
	}
	return s.serial + uint64(idx.Level*s.serialStride()+offset)
}

// IsRenderTarget reports whether the storage can be drawn into.
func (s *Storage) IsRenderTarget() bool {
	return s.bindFlags&(BindRenderTarget|BindDepthStencil) != 0
}

// IsManaged reports whether the storage survives device loss. It never does.
func (s *Storage) IsManaged() bool { return false }

// LevelWidth returns the width of a logical level.
func (s *Storage) LevelWidth(level int) int { return format.LevelSize(s.width, level) }

// LevelHeight returns the height of a logical level.
func (s *Storage) LevelHeight(level int) int { return format.LevelSize(s.height, level) }

// LevelDepth returns the depth of a logical level: the slice count of a
// 3D storage, the layer count of a 2D array and 1 otherwise.
func (s *Storage) LevelDepth(level int) int {
	switch s.kind {
	case Kind3D:
		return format.LevelSize(s.depth, level)
	case Kind2DArray:
		return s.layers
	default:
		return 1
	}
}

// levelLayers returns the layers or slices drawn when a whole level is
// rendered.
func (s *Storage) levelLayers(level int) int {
	if s.kind == Kind3D {
		return format.LevelSize(s.depth, level)
	}
	return s.layers
}

// subresourceExtents returns the size addressed by idx: one layer for
// layered kinds, the whole volume for 3D.
func (s *Storage) subresourceExtents(idx Index) Extents {
	depth := 1
	if s.kind == Kind3D {
		depth = s.LevelDepth(idx.Level)
	}
	return Extents{Width: s.LevelWidth(idx.Level), Height: s.LevelHeight(idx.Level), Depth: depth}
}

// nativeExtents returns the padded size of native mip level mip, rounded
// to whole compression blocks.
func (s *Storage) nativeExtents(mip int) hal.Extent3D {
	depth := s.layers
	if s.kind == Kind3D {
		depth = format.LevelSize(s.depth, mip)
	}
	return hal.Extent3D{
		Width:              uint32(format.RoundUp(format.LevelSize(s.texWidth, mip), s.info.BlockWidth)),
		Height:             uint32(format.RoundUp(format.LevelSize(s.texHeight, mip), s.info.BlockHeight)),
		DepthOrArrayLayers: uint32(depth),
	}
}

// Resource returns the texture sampled by default, nil for a zero-sized
// storage.
func (s *Storage) Resource() hal.Texture {
	if s.released {
		return nil
	}
	return s.shape.resource()
}

// SubresourceIndex returns the linear native subresource of idx:
// (level+topLevel) + layer*mipLevels. ok is false when the storage has
// no native texture.
func (s *Storage) SubresourceIndex(idx Index) (index int, ok bool) {
	if s.Resource() == nil {
		return 0, false
	}
	layer := 0
	if idx.HasLayer() {
		layer = idx.Layer
	}
	return (idx.Level + s.topLevel) + layer*s.mipLevels, true
}

// RenderTarget returns the drawable view of idx, creating it on first use.
func (s *Storage) RenderTarget(idx Index) (*RenderTarget, error) {
	if s.released {
		return nil, ErrReleased
	}
	return s.shape.renderTarget(idx)
}

// createDrawView creates the depth-stencil view of one level of tex when
// the storage has a depth-stencil format, otherwise its render-target view.
func (s *Storage) createDrawView(tex hal.Texture, dim gputypes.TextureViewDimension, level, baseLayer, layerCount int) (hal.TextureView, bool, error) {
	if tex == nil {
		return nil, false, ErrNoResource
	}
	desc := &hal.TextureViewDescriptor{
		Dimension:       dim,
		Aspect:          gputypes.TextureAspectAll,
		BaseMipLevel:    uint32(s.topLevel + level),
		MipLevelCount:   1,
		BaseArrayLayer:  uint32(baseLayer),
		ArrayLayerCount: uint32(layerCount),
	}

	switch {
	case s.info.DepthStencil != gputypes.TextureFormatUndefined:
		desc.Format = s.info.DepthStencil
		desc.Label = fmt.Sprintf("texstore %s depth-stencil level %d layer %d", s.kind, level, baseLayer)
		view, err := s.handles.createView(tex, desc)
		return view, true, err
	case s.info.RenderTarget != gputypes.TextureFormatUndefined:
		desc.Format = s.info.RenderTarget
		desc.Label = fmt.Sprintf("texstore %s render-target level %d layer %d", s.kind, level, baseLayer)
		view, err := s.handles.createView(tex, desc)
		return view, false, err
	default:
		return nil, false, s.violation("texstore: %s storage of %s has neither render-target nor depth-stencil format",
			s.kind, s.info.Internal)
	}
}

func (s *Storage) newRenderTarget(view hal.TextureView, depthStencil bool, tex hal.Texture, srv hal.TextureView, level, layer, depth int) *RenderTarget {
	f := s.info.RenderTarget
	if depthStencil {
		f = s.info.DepthStencil
	}
	dim := gputypes.TextureViewDimension2D
	if s.kind == Kind3D {
		dim = gputypes.TextureViewDimension3D
	}
	return &RenderTarget{
		view:         view,
		shaderView:   srv,
		texture:      tex,
		depthStencil: depthStencil,
		dimension:    dim,
		width:        s.LevelWidth(level),
		height:       s.LevelHeight(level),
		depth:        depth,
		mipLevel:     s.topLevel + level,
		layer:        layer,
		format:       f,
		internal:     s.info.Internal,
	}
}

// companionView creates the single-layer shader view attached to a
// layered render target. Devices below the full tier get none.
func (s *Storage) companionView(tex hal.Texture, level, layer int) (hal.TextureView, error) {
	if s.caps.Limited() || s.info.Shader == gputypes.TextureFormatUndefined {
		return nil, nil
	}
	return s.handles.createView(tex, &hal.TextureViewDescriptor{
		Label:           fmt.Sprintf("texstore %s level %d layer %d", s.kind, level, layer),
		Format:          s.info.Shader,
		Dimension:       gputypes.TextureViewDimension2D,
		Aspect:          s.info.ShaderAspect,
		BaseMipLevel:    uint32(s.topLevel + level),
		MipLevelCount:   1,
		BaseArrayLayer:  uint32(layer),
		ArrayLayerCount: 1,
	})
}

// Release lets every associated image recover its pixels, then destroys
// every texture and view the storage created. Render targets and views
// returned earlier become invalid.
func (s *Storage) Release() {
	if s.released {
		return
	}
	s.recoverAssociatedImages()

	s.shape.reset()
	s.shaderViews.Clear()
	s.levelViews = [MaxTextureLevels]hal.TextureView{}
	s.blitViews = [MaxTextureLevels]hal.TextureView{}
	s.swizzleTargets = [MaxTextureLevels]hal.TextureView{}
	s.swizzleTex = nil
	s.handles.release()
	s.released = true
}

// Released reports whether Release was called.
func (s *Storage) Released() bool { return s.released }

// baseMip returns the first native level of a shader view. Limited devices
// require cube and volume views to reach the smallest level, so the base
// is shifted down the chain.
func (s *Storage) baseMip(baseLevel, mipLevels int) uint32 {
	if s.caps.Limited() {
		return uint32(max(s.mipLevels-mipLevels, 0))
	}
	return uint32(s.topLevel + baseLevel)
}
