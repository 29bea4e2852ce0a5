// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package halrenderer

import (
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/texstore"
	"github.com/gogpu/texstore/format"
)

// Errors returned by the renderer.
var (
	// ErrClosed is returned by operations on a closed renderer.
	ErrClosed = errors.New("halrenderer: renderer closed")

	// ErrNoBlitter is returned by draws when no blitter was installed
	// with SetBlitter.
	ErrNoBlitter = errors.New("halrenderer: no blitter installed")

	// ErrNoHAL is returned by FromProvider when the provider does not
	// expose HAL types.
	ErrNoHAL = errors.New("halrenderer: provider does not expose HAL types")
)

// submission is a command buffer waiting for the queue to finish it.
type submission struct {
	index   uint64
	encoder hal.CommandEncoder
	cmd     hal.CommandBuffer
	release []func()
}

// Recording is the command encoder handed to an Encode callback.
type Recording struct {
	hal.CommandEncoder

	release []func()
}

// AfterCompletion registers fn to run once the queue has finished the
// recorded commands. Resources the commands reference, such as bind
// groups and temporary textures, are destroyed this way. When recording
// or submission fails, fn runs before Encode returns.
func (rec *Recording) AfterCompletion(fn func()) {
	rec.release = append(rec.release, fn)
}

func runAll(fns []func()) {
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}

// Renderer implements texstore.Renderer over a HAL device and queue.
// The device and queue are borrowed: Close releases what the renderer
// recorded but never destroys the device.
//
// Renderer is safe for concurrent use.
type Renderer struct {
	device hal.Device
	queue  hal.Queue
	caps   texstore.Caps
	label  string
	budget *budget

	mu       sync.Mutex
	blitter  texstore.Blitter
	inflight []submission
	closed   bool

	lost         atomic.Bool
	lostOnce     sync.Once
	onDeviceLost func()
}

var _ texstore.Renderer = (*Renderer)(nil)

// New returns a renderer over device and queue.
func New(device hal.Device, queue hal.Queue, opts ...Option) *Renderer {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return newRenderer(device, queue, o)
}

func newRenderer(device hal.Device, queue hal.Queue, o options) *Renderer {
	return &Renderer{
		device:       device,
		queue:        queue,
		caps:         o.caps,
		label:        o.label,
		budget:       newBudget(o.budgetMB),
		onDeviceLost: o.onDeviceLost,
	}
}

// FromProvider returns a renderer sharing the device and queue of an
// external provider such as a gogpu application. The provider's device
// must be a hal.Device or expose one through HalDevice() any, and the
// same for its queue. Caps are derived from the provider's adapter
// unless WithCaps is given.
func FromProvider(provider gpucontext.DeviceProvider, opts ...Option) (*Renderer, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}

	var device, queue any = provider.Device(), provider.Queue()
	if hp, ok := provider.(halProvider); ok {
		device, queue = hp.HalDevice(), hp.HalQueue()
	}
	halDevice, ok := device.(hal.Device)
	if !ok || halDevice == nil {
		return nil, errors.Wrapf(ErrNoHAL, "device is %T", device)
	}
	halQueue, ok := queue.(hal.Queue)
	if !ok || halQueue == nil {
		return nil, errors.Wrapf(ErrNoHAL, "queue is %T", queue)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if !o.capsSet {
		o.caps = DetectCaps(provider.AdapterInfo())
	}

	texstore.Logger().Debug("halrenderer: using shared device",
		"adapter", provider.AdapterInfo().Name,
		"tier", o.caps.Tier)
	return newRenderer(halDevice, halQueue, o), nil
}

// Device returns the HAL device.
func (r *Renderer) Device() hal.Device { return r.device }

// Queue returns the HAL queue.
func (r *Renderer) Queue() hal.Queue { return r.queue }

// Caps returns the capability snapshot given at creation.
func (r *Renderer) Caps() texstore.Caps { return r.caps }

// Label returns the prefix of native labels.
func (r *Renderer) Label() string { return r.label }

// Stats returns texture memory statistics.
func (r *Renderer) Stats() MemoryStats {
	return r.budget.stats()
}

// SetBlitter installs the helper used for draws into textures.
func (r *Renderer) SetBlitter(b texstore.Blitter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blitter = b
}

// Blitter returns the installed blitter. Without one, every draw fails
// with ErrNoBlitter.
func (r *Renderer) Blitter() texstore.Blitter {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.blitter == nil {
		return missingBlitter{}
	}
	return r.blitter
}

// NotifyDeviceLost records device loss. The handler registered with
// WithDeviceLostHandler runs on the first call; later creation calls fail
// with hal.ErrDeviceLost.
func (r *Renderer) NotifyDeviceLost() {
	r.lost.Store(true)
	r.lostOnce.Do(func() {
		texstore.Logger().Warn("halrenderer: device lost")
		if r.onDeviceLost != nil {
			r.onDeviceLost()
		}
	})
}

// DeviceLost reports whether device loss has been recorded.
func (r *Renderer) DeviceLost() bool {
	return r.lost.Load()
}

func (r *Renderer) usable() error {
	if r.lost.Load() {
		return hal.ErrDeviceLost
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	return nil
}

// CreateTexture creates a native texture charged against the memory
// budget. The returned texture is a *Texture.
func (r *Renderer) CreateTexture(desc *hal.TextureDescriptor) (hal.Texture, error) {
	if err := r.usable(); err != nil {
		return nil, err
	}

	labelled := *desc
	if r.label != "" {
		labelled.Label = r.label + ":" + desc.Label
	}
	size := textureBytes(&labelled)
	if err := r.budget.reserve(size, labelled.Label); err != nil {
		return nil, err
	}

	native, err := r.device.CreateTexture(&labelled)
	if err != nil {
		r.budget.release(size)
		return nil, errors.Wrapf(err, "halrenderer: create texture %q", labelled.Label)
	}
	return &Texture{Texture: native, desc: labelled, size: size}, nil
}

// DestroyTexture destroys a texture and returns its memory to the budget.
func (r *Renderer) DestroyTexture(tex hal.Texture) {
	if t, ok := tex.(*Texture); ok {
		r.budget.release(t.size)
	}
	r.device.DestroyTexture(Native(tex))
}

// CreateTextureView creates a view of a texture.
func (r *Renderer) CreateTextureView(tex hal.Texture, desc *hal.TextureViewDescriptor) (hal.TextureView, error) {
	if err := r.usable(); err != nil {
		return nil, err
	}
	view, err := r.device.CreateTextureView(Native(tex), desc)
	if err != nil {
		return nil, errors.Wrapf(err, "halrenderer: create view %q", desc.Label)
	}
	return view, nil
}

// DestroyTextureView destroys a view.
func (r *Renderer) DestroyTextureView(view hal.TextureView) {
	r.device.DestroyTextureView(view)
}

// CopyTextureToTexture records the copies into one command buffer and
// submits it.
func (r *Renderer) CopyTextureToTexture(src, dst hal.Texture, regions []hal.TextureCopy) error {
	native := make([]hal.TextureCopy, len(regions))
	for i, region := range regions {
		region.SrcBase.Texture = Native(region.SrcBase.Texture)
		region.DstBase.Texture = Native(region.DstBase.Texture)
		native[i] = region
	}

	return r.Encode("copy", func(enc *Recording) error {
		enc.TransitionTextures([]hal.TextureBarrier{
			Transition(src, gputypes.TextureUsageCopySrc),
			Transition(dst, gputypes.TextureUsageCopyDst),
		})
		enc.CopyTextureToTexture(Native(src), Native(dst), native)
		enc.TransitionTextures([]hal.TextureBarrier{
			Restore(src, gputypes.TextureUsageCopySrc),
			Restore(dst, gputypes.TextureUsageCopyDst),
		})
		return nil
	})
}

// WriteTexture uploads data through the queue.
func (r *Renderer) WriteTexture(dst *hal.ImageCopyTexture, data []byte, layout *hal.ImageDataLayout, size *hal.Extent3D) error {
	if err := r.usable(); err != nil {
		return err
	}
	native := *dst
	native.Texture = Native(dst.Texture)
	if err := r.queue.WriteTexture(&native, data, layout, size); err != nil {
		return errors.Wrapf(err, "halrenderer: write %d bytes to mip %d", len(data), dst.MipLevel)
	}
	return nil
}

// Encode records commands with record and submits them. The command
// buffer is reclaimed once the queue reports the submission complete.
// When record fails, nothing is submitted.
func (r *Renderer) Encode(label string, record func(rec *Recording) error) error {
	if err := r.usable(); err != nil {
		return err
	}
	r.reclaim(false)

	if r.label != "" {
		label = r.label + ":" + label
	}
	enc, err := r.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return errors.Wrap(err, "halrenderer: create command encoder")
	}
	if err := enc.BeginEncoding(label); err != nil {
		enc.Destroy()
		return errors.Wrap(err, "halrenderer: begin encoding")
	}
	rec := &Recording{CommandEncoder: enc}
	if err := record(rec); err != nil {
		enc.DiscardEncoding()
		enc.Destroy()
		runAll(rec.release)
		return err
	}
	cmd, err := enc.EndEncoding()
	if err != nil {
		enc.Destroy()
		runAll(rec.release)
		return errors.Wrap(err, "halrenderer: end encoding")
	}

	index, err := r.queue.Submit([]hal.CommandBuffer{cmd})
	if err != nil {
		r.device.FreeCommandBuffer(cmd)
		enc.Destroy()
		runAll(rec.release)
		if errors.Is(err, hal.ErrDeviceLost) {
			r.NotifyDeviceLost()
		}
		return errors.Wrapf(err, "halrenderer: submit %q", label)
	}

	r.mu.Lock()
	r.inflight = append(r.inflight, submission{index: index, encoder: enc, cmd: cmd, release: rec.release})
	r.mu.Unlock()
	return nil
}

// Pending returns the number of submissions not yet reclaimed.
func (r *Renderer) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.inflight)
}

// reclaim frees the command buffers of completed submissions, or of all
// submissions when all is set.
func (r *Renderer) reclaim(all bool) {
	completed := r.queue.PollCompleted()

	r.mu.Lock()
	var done []submission
	kept := r.inflight[:0]
	for _, s := range r.inflight {
		if all || s.index <= completed {
			done = append(done, s)
		} else {
			kept = append(kept, s)
		}
	}
	r.inflight = kept
	r.mu.Unlock()

	for _, s := range done {
		s.encoder.ResetAll([]hal.CommandBuffer{s.cmd})
		r.device.FreeCommandBuffer(s.cmd)
		s.encoder.Destroy()
		runAll(s.release)
	}
}

// Close waits for the device to go idle and frees every recorded
// command buffer. Textures still held by storages are not destroyed.
func (r *Renderer) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	var err error
	if !r.lost.Load() {
		err = r.device.WaitIdle()
	}
	r.reclaim(true)
	if err != nil {
		return errors.Wrap(err, "halrenderer: wait idle")
	}
	texstore.Logger().Debug("halrenderer: closed", "memory", r.budget.stats())
	return nil
}

func textureBytes(desc *hal.TextureDescriptor) uint64 {
	return format.TextureBytes(desc.Format,
		int(desc.Size.Width), int(desc.Size.Height), int(desc.Size.DepthOrArrayLayers),
		int(desc.MipLevelCount), desc.Dimension == gputypes.TextureDimension3D)
}

// missingBlitter fails every draw.
type missingBlitter struct{}

func (missingBlitter) SwizzleTexture(texstore.BlitSource, texstore.BlitTarget, texstore.Extents, texstore.Swizzle) error {
	return ErrNoBlitter
}

func (missingBlitter) CopyTexture(texstore.BlitSource, texstore.Box, texstore.Extents,
	texstore.BlitTarget, texstore.Box, texstore.Extents, *texstore.Box, gputypes.FilterMode) error {
	return ErrNoBlitter
}

func (missingBlitter) CopyDepthStencil(texstore.Subresource, texstore.Box, texstore.Extents,
	texstore.Subresource, texstore.Box, texstore.Extents, *texstore.Box) error {
	return ErrNoBlitter
}
