// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"image"
	"image/color"
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/texstore"
	"github.com/gogpu/texstore/blit"
	"github.com/gogpu/texstore/format"
	"github.com/gogpu/texstore/halrenderer"
	"github.com/gogpu/texstore/staging"
)

// config holds the parsed command line.
type config struct {
	size    int
	format  format.Internal
	swizzle texstore.Swizzle
	budget  int
	limited bool
	spirv   bool
}

// report summarizes a run.
type report struct {
	levels    int
	storages  int
	recovered int
	hits      uint64
	misses    uint64
	memory    halrenderer.MemoryStats
}

// openDevice opens the first adapter of the headless backend.
func openDevice() (hal.Device, hal.Queue, func(), error) {
	instance, err := noop.API{}.CreateInstance(nil)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "create instance")
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, nil, nil, errors.New("no adapters")
	}
	open, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, nil, nil, errors.Wrap(err, "open adapter")
	}
	return open.Device, open.Queue, func() {
		open.Device.Destroy()
		instance.Destroy()
	}, nil
}

// demo carries the renderer and the objects created during a run.
type demo struct {
	cfg    config
	log    *slog.Logger
	r      *halrenderer.Renderer
	b      *blit.Blitter
	images []*staging.Image
	stores []*texstore.Storage
}

func run(cfg config, logger *slog.Logger) error {
	_, err := runDemo(cfg, logger)
	return err
}

func runDemo(cfg config, logger *slog.Logger) (rep report, err error) {
	device, queue, closeDevice, err := openDevice()
	if err != nil {
		return rep, err
	}
	defer closeDevice()

	opts := []halrenderer.Option{halrenderer.WithLabel("texdemo")}
	if cfg.budget > 0 {
		opts = append(opts, halrenderer.WithMemoryBudget(cfg.budget))
	}
	if cfg.limited {
		opts = append(opts, halrenderer.WithCaps(texstore.Caps{Tier: format.TierLimited}))
	}
	var blitOpts []blit.Option
	if cfg.spirv {
		blitOpts = append(blitOpts, blit.WithSPIRV())
	}

	d := &demo{cfg: cfg, log: logger}
	d.r = halrenderer.New(device, queue, opts...)
	d.b = blit.New(d.r, blitOpts...)
	d.r.SetBlitter(d.b)
	defer func() {
		if cerr := d.r.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "close renderer")
		}
		d.b.Close()
	}()

	steps := []struct {
		name string
		fn   func() error
	}{
		{"mipmapped 2D", d.mipmapped},
		{"cube", d.cube},
		{"volume", d.volume},
		{"array", d.array},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			d.releaseAll()
			return rep, errors.Wrapf(err, "%s", step.name)
		}
		logger.Info("step done", "step", step.name, "memory", d.r.Stats().String())
	}

	rep.storages = len(d.stores)
	if len(d.stores) > 0 {
		rep.levels = d.stores[0].LevelCount()
	}
	rep.hits, rep.misses = d.b.Stats()
	rep.memory = d.r.Stats()
	rep.recovered = d.releaseAll()

	logger.Info("done",
		"storages", rep.storages,
		"recovered images", rep.recovered,
		"pipeline hits", rep.hits,
		"pipeline misses", rep.misses,
		"peak memory", rep.memory.PeakBytes)
	return rep, nil
}

// releaseAll releases every storage, then every staging image, and
// returns the number of images holding recovered contents.
func (d *demo) releaseAll() int {
	for _, s := range d.stores {
		s.Release()
	}
	d.stores = nil

	recovered := 0
	for _, img := range d.images {
		if _, ok := img.Recovered(); ok {
			recovered++
		}
		img.Release()
	}
	d.images = nil
	return recovered
}

func (d *demo) keep(s *texstore.Storage) *texstore.Storage {
	d.stores = append(d.stores, s)
	return s
}

// gradient returns a square test image.
func gradient(size int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / max(size-1, 1)),
				G: uint8(y * 255 / max(size-1, 1)),
				B: 128,
				A: 255,
			})
		}
	}
	return img
}

// solid returns a square image of one color.
func solid(size int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

// upload fills slot idx of s with a staging image. RGBA formats take the
// test pattern; a nil pattern or other formats get zeroed pixels of their first accepted
// client type.
func (d *demo) upload(s *texstore.Storage, idx texstore.Index, pattern image.Image) error {
	internal := s.InternalFormat()
	width, height, depth := s.LevelWidth(idx.Level), s.LevelHeight(idx.Level), 1
	if s.Kind() == texstore.Kind3D {
		depth = s.LevelDepth(idx.Level)
	}

	if pattern != nil && depth == 1 && (internal == format.RGBA8 || internal == format.SRGB8Alpha8) {
		images, err := staging.NewLevels(d.r, internal, pattern, 1, nil)
		if err != nil {
			return err
		}
		d.images = append(d.images, images...)
		return staging.UploadLevels(s, idx, images)
	}

	types := s.Formats().PixelTypes()
	if len(types) == 0 {
		return errors.Newf("%s takes no client pixels", internal)
	}
	row, slice, err := s.Formats().SourcePitches(types[0], width, height, format.Unpack{})
	if err != nil {
		return err
	}
	img, err := staging.New(d.r, internal, width, height, depth)
	if err != nil {
		return err
	}
	d.images = append(d.images, img)
	if err := img.SetPixels(types[0], format.Unpack{}, make([]byte, max(row, slice)*depth)); err != nil {
		return err
	}
	return img.CopyToStorage(s, idx)
}

// generateMips fills every level below the first from the one above it.
func generateMips(s *texstore.Storage, layer int) {
	for level := 1; level < s.LevelCount(); level++ {
		src, dst := texstore.Index{Level: level - 1, Layer: layer}, texstore.Index{Level: level, Layer: layer}
		s.GenerateMipLevel(src, dst)
	}
}

// mipmapped uploads level zero of a 2D storage, generates the chain, samples
// it through a swizzled view and copies it into a second storage.
func (d *demo) mipmapped() error {
	size := d.cfg.size
	s, err := texstore.New2D(d.r, d.cfg.format, true, size, size, 0, false)
	if err != nil {
		return err
	}
	d.keep(s)
	if err := d.upload(s, texstore.Index2D(0), gradient(size)); err != nil {
		return err
	}
	generateMips(s, texstore.EntireLevel)

	ss := texstore.SamplerState{
		MaxLevel:     s.LevelCount(),
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.MipmapFilterModeLinear,
	}
	if !d.cfg.limited {
		ss.Swizzle = d.cfg.swizzle
	}
	if _, err := s.ShaderView(ss); err != nil {
		if !errors.Is(err, texstore.ErrSwizzleUnsupported) {
			return err
		}
		d.log.Warn("swizzle unsupported, sampling unswizzled", "format", d.cfg.format)
		ss.Swizzle = texstore.Swizzle{}
		if _, err := s.ShaderView(ss); err != nil {
			return err
		}
	}

	dst, err := texstore.New2D(d.r, d.cfg.format, false, size, size, 0, false)
	if err != nil {
		return err
	}
	d.keep(dst)
	return s.CopyToStorage(dst)
}

// cube fills each face with a solid color and mipmaps it.
func (d *demo) cube() error {
	size := max(d.cfg.size/4, 1)
	s, err := texstore.NewCube(d.r, format.RGBA8, true, size, 0)
	if err != nil {
		return err
	}
	d.keep(s)
	for face := 0; face < texstore.CubeFaces; face++ {
		c := color.NRGBA{R: uint8(face * 40), G: 255 - uint8(face*40), B: 64, A: 255}
		if err := d.upload(s, texstore.IndexCube(face, 0), solid(size, c)); err != nil {
			return err
		}
		generateMips(s, face)
	}
	_, err = s.ShaderView(texstore.SamplerState{MaxLevel: s.LevelCount(), MipmapFilter: gputypes.MipmapFilterModeLinear})
	return err
}

// volume uploads a whole 3D level and reduces it.
func (d *demo) volume() error {
	size := max(d.cfg.size/8, 1)
	s, err := texstore.New3D(d.r, format.RGBA8, true, size, size, size, 0)
	if err != nil {
		return err
	}
	d.keep(s)
	if err := d.upload(s, texstore.Index3D(0, texstore.EntireLevel), nil); err != nil {
		return err
	}
	generateMips(s, texstore.EntireLevel)
	return nil
}

// array fills each layer of a 2D array from the test pattern.
func (d *demo) array() error {
	const layers = 4
	size := max(d.cfg.size/4, 1)
	s, err := texstore.New2DArray(d.r, format.RGBA8, true, size, size, layers, 1)
	if err != nil {
		return err
	}
	d.keep(s)
	pattern := gradient(size)
	for layer := 0; layer < layers; layer++ {
		if err := d.upload(s, texstore.IndexLayer(0, layer), pattern); err != nil {
			return err
		}
	}
	_, err = s.ShaderView(texstore.SamplerState{})
	return err
}
