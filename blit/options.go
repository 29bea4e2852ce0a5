// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package blit

// Option configures a Blitter during creation.
type Option func(*options)

type options struct {
	spirv            bool
	uniformAlignment uint64
}

func defaultOptions() options {
	return options{
		uniformAlignment: 256,
	}
}

// WithSPIRV makes the blitter compile its shaders to SPIR-V with naga
// instead of handing WGSL to the device. Use it with backends that do not
// translate WGSL themselves.
func WithSPIRV() Option {
	return func(o *options) {
		o.spirv = true
	}
}

// WithUniformAlignment sets the device's minimum uniform buffer offset
// alignment. The default, 256, satisfies every WebGPU device.
func WithUniformAlignment(alignment uint64) Option {
	return func(o *options) {
		if alignment > 0 {
			o.uniformAlignment = alignment
		}
	}
}
