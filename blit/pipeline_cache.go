// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package blit

import (
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/texstore"
)

// pipelineKey identifies a render pipeline: a shader variant drawing into
// a target format.
type pipelineKey struct {
	variant variant
	target  gputypes.TextureFormat
}

// pipeline is a render pipeline with the layouts its draws bind through.
type pipeline struct {
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline
	sampled    bool
}

// pipelineCache creates shader modules and render pipelines on first use
// and keeps them until close.
//
// pipelineCache is safe for concurrent use. It uses RWMutex with
// double-check locking for efficient reads and safe writes.
type pipelineCache struct {
	device hal.Device
	label  string
	spirv  bool

	mu        sync.RWMutex
	shaders   map[variant]hal.ShaderModule
	pipelines map[pipelineKey]*pipeline

	hits   atomic.Uint64
	misses atomic.Uint64
}

func newPipelineCache(device hal.Device, label string, spirv bool) *pipelineCache {
	return &pipelineCache{
		device:    device,
		label:     label,
		spirv:     spirv,
		shaders:   make(map[variant]hal.ShaderModule),
		pipelines: make(map[pipelineKey]*pipeline),
	}
}

// get returns the pipeline for key, creating it on a miss.
func (c *pipelineCache) get(key pipelineKey) (*pipeline, error) {
	// Fast path: read lock
	c.mu.RLock()
	if p, ok := c.pipelines[key]; ok {
		c.mu.RUnlock()
		c.hits.Add(1)
		return p, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.pipelines[key]; ok {
		c.hits.Add(1)
		return p, nil
	}

	p, err := c.create(key)
	if err != nil {
		return nil, err
	}
	c.pipelines[key] = p
	c.misses.Add(1)
	texstore.Logger().Debug("blit: pipeline created",
		"variant", key.variant.String(),
		"target", key.target)
	return p, nil
}

// shader returns the module of v. c.mu must be held for writing.
func (c *pipelineCache) shader(v variant) (hal.ShaderModule, error) {
	if m, ok := c.shaders[v]; ok {
		return m, nil
	}

	desc := &hal.ShaderModuleDescriptor{Label: c.label + ":blit " + v.String()}
	if c.spirv {
		words, err := compileSPIRV(v.source())
		if err != nil {
			return nil, errors.Wrapf(err, "blit: compile %s", v)
		}
		desc.Source.SPIRV = words
	} else {
		desc.Source.WGSL = v.source()
	}

	m, err := c.device.CreateShaderModule(desc)
	if err != nil {
		return nil, errors.Wrapf(err, "blit: create shader %s", v)
	}
	c.shaders[v] = m
	return m, nil
}

func (c *pipelineCache) create(key pipelineKey) (*pipeline, error) {
	v := key.variant
	shader, err := c.shader(v)
	if err != nil {
		return nil, err
	}

	entries := []gputypes.BindGroupLayoutEntry{
		{
			Binding:    0,
			Visibility: gputypes.ShaderStageFragment,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
		},
		{
			Binding:    1,
			Visibility: gputypes.ShaderStageFragment,
			Texture: &gputypes.TextureBindingLayout{
				SampleType:    v.kind.sampleType(),
				ViewDimension: v.dim,
			},
		},
	}
	sampled := v.fetch == fetchSample
	if sampled {
		entries = append(entries, gputypes.BindGroupLayoutEntry{
			Binding:    2,
			Visibility: gputypes.ShaderStageFragment,
			Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
		})
	}

	p := &pipeline{sampled: sampled}
	p.bindLayout, err = c.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   c.label + ":blit layout " + v.String(),
		Entries: entries,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "blit: create bind group layout %s", v)
	}
	p.pipeLayout, err = c.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            c.label + ":blit pipeline layout " + v.String(),
		BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		c.device.DestroyBindGroupLayout(p.bindLayout)
		return nil, errors.Wrapf(err, "blit: create pipeline layout %s", v)
	}

	desc := &hal.RenderPipelineDescriptor{
		Label:  c.label + ":blit " + v.String(),
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
		},
		Fragment: &hal.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	}
	if v.program == programDepth {
		keep := hal.StencilFaceState{
			Compare:     gputypes.CompareFunctionAlways,
			FailOp:      hal.StencilOperationKeep,
			DepthFailOp: hal.StencilOperationKeep,
			PassOp:      hal.StencilOperationKeep,
		}
		desc.DepthStencil = &hal.DepthStencilState{
			Format:            key.target,
			DepthWriteEnabled: true,
			DepthCompare:      gputypes.CompareFunctionAlways,
			StencilFront:      keep,
			StencilBack:       keep,
		}
	} else {
		desc.Fragment.Targets = []gputypes.ColorTargetState{{
			Format:    key.target,
			WriteMask: gputypes.ColorWriteMaskAll,
		}}
	}

	p.pipeline, err = c.device.CreateRenderPipeline(desc)
	if err != nil {
		c.device.DestroyPipelineLayout(p.pipeLayout)
		c.device.DestroyBindGroupLayout(p.bindLayout)
		return nil, errors.Wrapf(err, "blit: create pipeline %s into %s", v, key.target)
	}
	return p, nil
}

// stats returns the number of cache hits and misses.
func (c *pipelineCache) stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}

// close destroys every pipeline and shader module.
func (c *pipelineCache) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, p := range c.pipelines {
		c.device.DestroyRenderPipeline(p.pipeline)
		c.device.DestroyPipelineLayout(p.pipeLayout)
		c.device.DestroyBindGroupLayout(p.bindLayout)
		delete(c.pipelines, key)
	}
	for v, m := range c.shaders {
		c.device.DestroyShaderModule(m)
		delete(c.shaders, v)
	}
}
