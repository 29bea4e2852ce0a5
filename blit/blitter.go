// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package blit

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/texstore"
	"github.com/gogpu/texstore/halrenderer"
)

// Errors returned by blits.
var (
	// ErrUnsupportedSource is returned for source views a draw cannot
	// read, such as cube views.
	ErrUnsupportedSource = errors.New("blit: unsupported source view")

	// ErrIncompatibleFormats is returned when the source and destination
	// formats have different component types.
	ErrIncompatibleFormats = errors.New("blit: incompatible formats")

	// ErrForeignTexture is returned by CopyDepthStencil for textures not
	// created by the renderer.
	ErrForeignTexture = errors.New("blit: texture not created by the renderer")
)

// paramsSize is the size of the WGSL Params struct.
const paramsSize = 64

// params mirrors the WGSL Params struct.
type params struct {
	srcRect   [4]float32
	dstRect   [4]float32
	srcExtent [4]float32
	swizzle   [4]uint32
}

func (p *params) appendTo(buf []byte) []byte {
	for _, v := range p.srcRect {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
	}
	for _, v := range p.dstRect {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
	}
	for _, v := range p.srcExtent {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
	}
	for _, v := range p.swizzle {
		buf = binary.LittleEndian.AppendUint32(buf, v)
	}
	return buf
}

// selectors returns the indices into (r, g, b, a, 0, 1) the shader reads
// for each output channel.
func selectors(sw texstore.Swizzle) [4]uint32 {
	identity := [4]uint32{0, 1, 2, 3}
	out := identity
	for i, c := range [4]texstore.Channel{sw.R, sw.G, sw.B, sw.A} {
		if c >= texstore.ChannelRed && c <= texstore.ChannelOne {
			out[i] = uint32(c - texstore.ChannelRed)
		}
	}
	return out
}

// colorDraw is one resampling or swizzling draw.
type colorDraw struct {
	label   string
	src     texstore.BlitSource
	srcArea texstore.Box
	srcSize texstore.Extents
	dst     texstore.BlitTarget
	dstArea texstore.Box
	dstSize texstore.Extents
	scissor *texstore.Box
	filter  gputypes.FilterMode
	swizzle texstore.Swizzle
}

// Blitter implements texstore.Blitter with render pipelines on the
// renderer's device. Pipelines are created on first use and cached.
//
// Blitter is safe for concurrent use.
type Blitter struct {
	r     *halrenderer.Renderer
	opts  options
	cache *pipelineCache

	mu      sync.Mutex
	sampler hal.Sampler
}

var _ texstore.Blitter = (*Blitter)(nil)

// New returns a blitter drawing through r. Install it with r.SetBlitter.
func New(r *halrenderer.Renderer, opts ...Option) *Blitter {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	o.uniformAlignment = max(o.uniformAlignment, paramsSize)
	return &Blitter{
		r:     r,
		opts:  o,
		cache: newPipelineCache(r.Device(), r.Label(), o.spirv),
	}
}

// Stats returns the number of pipeline cache hits and misses.
func (b *Blitter) Stats() (hits, misses uint64) {
	return b.cache.stats()
}

// Close destroys the cached pipelines. The renderer must have no draws in
// flight, which holds after its Close.
func (b *Blitter) Close() {
	b.cache.close()
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sampler != nil {
		b.r.Device().DestroySampler(b.sampler)
		b.sampler = nil
	}
}

// SwizzleTexture renders every layer or slice of src into dst with its
// channels remapped. Source and destination have the same size.
func (b *Blitter) SwizzleTexture(src texstore.BlitSource, dst texstore.BlitTarget, size texstore.Extents, swizzle texstore.Swizzle) error {
	area := texstore.FullBox(size)
	return b.drawColor(colorDraw{
		label:   "swizzle",
		src:     src,
		srcArea: area,
		srcSize: size,
		dst:     dst,
		dstArea: area,
		dstSize: size,
		filter:  gputypes.FilterModeNearest,
		swizzle: swizzle,
	})
}

// CopyTexture resamples srcArea of src into dstArea of dst. Linear
// filtering applies to filterable float sources; other sources are read
// texel by texel.
func (b *Blitter) CopyTexture(src texstore.BlitSource, srcArea texstore.Box, srcSize texstore.Extents,
	dst texstore.BlitTarget, dstArea texstore.Box, dstSize texstore.Extents,
	scissor *texstore.Box, filter gputypes.FilterMode) error {
	return b.drawColor(colorDraw{
		label:   "copy",
		src:     src,
		srcArea: srcArea,
		srcSize: srcSize,
		dst:     dst,
		dstArea: dstArea,
		dstSize: dstSize,
		scissor: scissor,
		filter:  filter,
		swizzle: texstore.IdentitySwizzle,
	})
}

// colorVariant selects the shader for d.
func colorVariant(d *colorDraw) (variant, error) {
	dim := d.src.Dimension
	switch dim {
	case gputypes.TextureViewDimensionUndefined:
		dim = gputypes.TextureViewDimension2D
	case gputypes.TextureViewDimension2D, gputypes.TextureViewDimension2DArray, gputypes.TextureViewDimension3D:
	default:
		return variant{}, errors.Wrapf(ErrUnsupportedSource, "dimension %s", dimName(dim))
	}

	src, out := kindOf(d.src.Format), kindOf(d.dst.Format)
	if out == kindDepth || src.scalar() != out.scalar() {
		return variant{}, errors.Wrapf(ErrIncompatibleFormats, "%s into %s", d.src.Format, d.dst.Format)
	}

	v := variant{program: programColor, fetch: fetchLoad, kind: src, dim: dim, out: out}
	if d.filter == gputypes.FilterModeLinear && src == kindFloat {
		v.fetch = fetchSample
	}
	return v, nil
}

// clip returns the part of area inside scissor. ok is false when nothing
// is left.
func clip(area texstore.Box, scissor *texstore.Box) (texstore.Box, bool) {
	r := area
	if scissor != nil {
		x0, y0 := max(area.X, scissor.X), max(area.Y, scissor.Y)
		x1 := min(area.X+area.Width, scissor.X+scissor.Width)
		y1 := min(area.Y+area.Height, scissor.Y+scissor.Height)
		r.X, r.Y, r.Width, r.Height = x0, y0, x1-x0, y1-y0
	}
	return r, r.Width > 0 && r.Height > 0
}

// layerParams returns the parameters of draw i of n. The source layer or
// slice is spread evenly over the destination layers.
func (d *colorDraw) layerParams(i, n int) params {
	srcDepth := float32(max(d.srcArea.Depth, 1))
	z := float32(d.srcArea.Z) + (float32(i)+0.5)*srcDepth/float32(n)
	return params{
		srcRect:   [4]float32{float32(d.srcArea.X), float32(d.srcArea.Y), float32(d.srcArea.Width), float32(d.srcArea.Height)},
		dstRect:   [4]float32{float32(d.dstArea.X), float32(d.dstArea.Y), float32(d.dstArea.Width), float32(d.dstArea.Height)},
		srcExtent: [4]float32{float32(d.srcSize.Width), float32(d.srcSize.Height), float32(max(d.srcSize.Depth, 1)), z},
		swizzle:   selectors(d.swizzle),
	}
}

func (b *Blitter) drawColor(d colorDraw) error {
	if d.src.View == nil || d.dst.Texture == nil {
		return errors.Wrapf(ErrUnsupportedSource, "%s without source view or target texture", d.label)
	}
	v, err := colorVariant(&d)
	if err != nil {
		return err
	}
	rect, ok := clip(d.dstArea, d.scissor)
	if !ok {
		return nil
	}
	p, err := b.cache.get(pipelineKey{variant: v, target: d.dst.Format})
	if err != nil {
		return err
	}
	var sampler hal.Sampler
	if p.sampled {
		if sampler, err = b.linearSampler(); err != nil {
			return err
		}
	}

	layers := max(d.dstArea.Depth, 1)
	volume := d.dst.Dimension == gputypes.TextureViewDimension3D
	usage := gputypes.TextureUsageRenderAttachment
	rng := hal.TextureRange{
		Aspect:          gputypes.TextureAspectAll,
		BaseMipLevel:    uint32(d.dst.MipLevel),
		MipLevelCount:   1,
		BaseArrayLayer:  uint32(d.dst.Layer + d.dstArea.Z),
		ArrayLayerCount: uint32(layers),
	}
	if volume {
		usage = gputypes.TextureUsageCopyDst
		rng.BaseArrayLayer, rng.ArrayLayerCount = 0, 1
	}

	return b.r.Encode(d.label, func(rec *halrenderer.Recording) error {
		uniforms, err := b.uniforms(rec, d.label, layers, func(i int) params { return d.layerParams(i, layers) })
		if err != nil {
			return err
		}

		var slice *sliceTarget
		if volume {
			if slice, err = b.newSliceTarget(rec, d.dst.Format, d.dstSize); err != nil {
				return err
			}
		}

		rec.TransitionTextures([]hal.TextureBarrier{halrenderer.TransitionRange(d.dst.Texture, rng, usage)})
		for i := range layers {
			group, err := b.bindGroup(rec, p, uniforms, i, d.src.View, sampler)
			if err != nil {
				return err
			}

			target := d.dst.View
			switch {
			case volume:
				target = slice.view
			case d.dst.Dimension != gputypes.TextureViewDimension2D || target == nil:
				if target, err = b.layerView(rec, d.dst, d.dstArea.Z+i); err != nil {
					return err
				}
			}

			load := gputypes.LoadOpLoad
			if volume {
				load = gputypes.LoadOpClear
				slice.use(rec, gputypes.TextureUsageRenderAttachment)
			}
			pass := rec.BeginRenderPass(&hal.RenderPassDescriptor{
				Label: d.label,
				ColorAttachments: []hal.RenderPassColorAttachment{{
					View:    target,
					LoadOp:  load,
					StoreOp: gputypes.StoreOpStore,
				}},
			})
			b.draw(pass, p, group, d.dstArea, rect)

			if volume {
				slice.use(rec, gputypes.TextureUsageCopySrc)
				slice.copyTo(rec, d.dst, rect, d.dst.Layer+d.dstArea.Z+i)
			}
		}
		rec.TransitionTextures([]hal.TextureBarrier{halrenderer.RestoreRange(d.dst.Texture, rng, usage)})
		return nil
	})
}

// CopyDepthStencil copies the depth of srcArea into dstArea of another
// depth texture. Stencil is left as it was.
func (b *Blitter) CopyDepthStencil(src texstore.Subresource, srcArea texstore.Box, srcSize texstore.Extents,
	dst texstore.Subresource, dstArea texstore.Box, _ texstore.Extents, scissor *texstore.Box) error {
	srcFormat, srcOK := halrenderer.Format(src.Texture)
	dstFormat, dstOK := halrenderer.Format(dst.Texture)
	if !srcOK || !dstOK {
		return ErrForeignTexture
	}
	if !srcFormat.HasDepth() || !dstFormat.HasDepth() {
		return errors.Wrapf(ErrIncompatibleFormats, "depth copy from %s into %s", srcFormat, dstFormat)
	}
	rect, ok := clip(dstArea, scissor)
	if !ok {
		return nil
	}

	v := variant{program: programDepth, fetch: fetchLoad, kind: kindDepth, dim: gputypes.TextureViewDimension2D, out: kindFloat}
	p, err := b.cache.get(pipelineKey{variant: v, target: dstFormat})
	if err != nil {
		return err
	}

	d := colorDraw{srcArea: srcArea, srcSize: srcSize, dstArea: dstArea}
	rng := hal.TextureRange{
		Aspect:          gputypes.TextureAspectAll,
		BaseMipLevel:    uint32(dst.MipLevel),
		MipLevelCount:   1,
		BaseArrayLayer:  uint32(dst.Layer),
		ArrayLayerCount: 1,
	}
	return b.r.Encode("depth copy", func(rec *halrenderer.Recording) error {
		srcView, err := b.view(rec, src.Texture, &hal.TextureViewDescriptor{
			Label:           "blit depth source",
			Format:          srcFormat,
			Dimension:       gputypes.TextureViewDimension2D,
			Aspect:          gputypes.TextureAspectDepthOnly,
			BaseMipLevel:    uint32(src.MipLevel),
			MipLevelCount:   1,
			BaseArrayLayer:  uint32(src.Layer),
			ArrayLayerCount: 1,
		})
		if err != nil {
			return err
		}
		dstView, err := b.view(rec, dst.Texture, &hal.TextureViewDescriptor{
			Label:           "blit depth target",
			Format:          dstFormat,
			Dimension:       gputypes.TextureViewDimension2D,
			Aspect:          gputypes.TextureAspectAll,
			BaseMipLevel:    uint32(dst.MipLevel),
			MipLevelCount:   1,
			BaseArrayLayer:  uint32(dst.Layer),
			ArrayLayerCount: 1,
		})
		if err != nil {
			return err
		}
		uniforms, err := b.uniforms(rec, "depth copy", 1, func(i int) params { return d.layerParams(i, 1) })
		if err != nil {
			return err
		}
		group, err := b.bindGroup(rec, p, uniforms, 0, srcView, nil)
		if err != nil {
			return err
		}

		attachment := &hal.RenderPassDepthStencilAttachment{
			View:         dstView,
			DepthLoadOp:  gputypes.LoadOpLoad,
			DepthStoreOp: gputypes.StoreOpStore,
		}
		if dstFormat.HasStencil() {
			attachment.StencilLoadOp = gputypes.LoadOpLoad
			attachment.StencilStoreOp = gputypes.StoreOpStore
		}

		rec.TransitionTextures([]hal.TextureBarrier{
			halrenderer.TransitionRange(dst.Texture, rng, gputypes.TextureUsageRenderAttachment),
		})
		pass := rec.BeginRenderPass(&hal.RenderPassDescriptor{
			Label:                  "depth copy",
			DepthStencilAttachment: attachment,
		})
		b.draw(pass, p, group, dstArea, rect)
		rec.TransitionTextures([]hal.TextureBarrier{
			halrenderer.RestoreRange(dst.Texture, rng, gputypes.TextureUsageRenderAttachment),
		})
		return nil
	})
}

// draw records the covering triangle over area, clipped to rect, and ends
// the pass.
func (b *Blitter) draw(pass hal.RenderPassEncoder, p *pipeline, group hal.BindGroup, area, rect texstore.Box) {
	pass.SetPipeline(p.pipeline)
	pass.SetBindGroup(0, group, nil)
	pass.SetViewport(float32(area.X), float32(area.Y), float32(area.Width), float32(area.Height), 0, 1)
	pass.SetScissorRect(uint32(rect.X), uint32(rect.Y), uint32(rect.Width), uint32(rect.Height))
	pass.Draw(3, 1, 0, 0)
	pass.End()
}

// uniforms uploads the parameters of n draws into one buffer, each at an
// aligned offset.
func (b *Blitter) uniforms(rec *halrenderer.Recording, label string, n int, at func(i int) params) (hal.Buffer, error) {
	stride := b.opts.uniformAlignment
	data := make([]byte, 0, uint64(n)*stride)
	for i := range n {
		p := at(i)
		data = p.appendTo(data)
		data = append(data, make([]byte, stride-paramsSize)...)
	}

	device := b.r.Device()
	buf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: fmt.Sprintf("%s:blit %s params", b.r.Label(), label),
		Size:  uint64(len(data)),
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, errors.Wrap(err, "blit: create uniform buffer")
	}
	rec.AfterCompletion(func() { device.DestroyBuffer(buf) })
	if err := b.r.Queue().WriteBuffer(buf, 0, data); err != nil {
		return nil, errors.Wrap(err, "blit: write uniforms")
	}
	return buf, nil
}

func (b *Blitter) bindGroup(rec *halrenderer.Recording, p *pipeline, uniforms hal.Buffer, i int, src hal.TextureView, sampler hal.Sampler) (hal.BindGroup, error) {
	entries := []gputypes.BindGroupEntry{
		{Binding: 0, Resource: gputypes.BufferBinding{
			Buffer: uniforms.NativeHandle(),
			Offset: uint64(i) * b.opts.uniformAlignment,
			Size:   paramsSize,
		}},
		{Binding: 1, Resource: gputypes.TextureViewBinding{TextureView: src.NativeHandle()}},
	}
	if p.sampled {
		entries = append(entries, gputypes.BindGroupEntry{
			Binding:  2,
			Resource: gputypes.SamplerBinding{Sampler: sampler.NativeHandle()},
		})
	}

	device := b.r.Device()
	group, err := device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   "blit bind group",
		Layout:  p.bindLayout,
		Entries: entries,
	})
	if err != nil {
		return nil, errors.Wrap(err, "blit: create bind group")
	}
	rec.AfterCompletion(func() { device.DestroyBindGroup(group) })
	return group, nil
}

// view creates a view destroyed once the recording completes.
func (b *Blitter) view(rec *halrenderer.Recording, tex hal.Texture, desc *hal.TextureViewDescriptor) (hal.TextureView, error) {
	view, err := b.r.CreateTextureView(tex, desc)
	if err != nil {
		return nil, err
	}
	rec.AfterCompletion(func() { b.r.DestroyTextureView(view) })
	return view, nil
}

// layerView returns a 2D view of one layer of dst, offset from its first.
func (b *Blitter) layerView(rec *halrenderer.Recording, dst texstore.BlitTarget, layer int) (hal.TextureView, error) {
	return b.view(rec, dst.Texture, &hal.TextureViewDescriptor{
		Label:           fmt.Sprintf("blit target level %d layer %d", dst.MipLevel, dst.Layer+layer),
		Format:          dst.Format,
		Dimension:       gputypes.TextureViewDimension2D,
		Aspect:          gputypes.TextureAspectAll,
		BaseMipLevel:    uint32(dst.MipLevel),
		MipLevelCount:   1,
		BaseArrayLayer:  uint32(dst.Layer + layer),
		ArrayLayerCount: 1,
	})
}

func (b *Blitter) linearSampler() (hal.Sampler, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sampler != nil {
		return b.sampler, nil
	}
	s, err := b.r.Device().CreateSampler(&hal.SamplerDescriptor{
		Label:        b.r.Label() + ":blit linear",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeNearest,
		LodMaxClamp:  32,
	})
	if err != nil {
		return nil, errors.Wrap(err, "blit: create sampler")
	}
	b.sampler = s
	return s, nil
}
