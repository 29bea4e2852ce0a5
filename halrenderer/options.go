// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package halrenderer

import "github.com/gogpu/texstore"

// Option configures a Renderer during creation.
//
// Example:
//
//	r := halrenderer.New(device, queue,
//	    halrenderer.WithLabel("editor"),
//	    halrenderer.WithMemoryBudget(256),
//	)
type Option func(*options)

// options holds optional configuration for Renderer creation.
type options struct {
	caps         texstore.Caps
	capsSet      bool
	budgetMB     int
	onDeviceLost func()
	label        string
}

// defaultOptions returns the default renderer options.
func defaultOptions() options {
	return options{
		label: "texstore",
	}
}

// WithCaps sets the capability snapshot handed to storages. Without it a
// renderer created by New reports the full tier with no workarounds, and
// one created by FromProvider derives caps from the adapter.
func WithCaps(caps texstore.Caps) Option {
	return func(o *options) {
		o.caps = caps
		o.capsSet = true
	}
}

// WithMemoryBudget limits the texture memory held by the renderer to
// megabytes. Allocations beyond the budget fail with
// ErrMemoryBudgetExceeded. Zero, the default, disables the limit.
//
// Example:
//
//	r := halrenderer.New(device, queue, halrenderer.WithMemoryBudget(128))
func WithMemoryBudget(megabytes int) Option {
	return func(o *options) {
		o.budgetMB = megabytes
	}
}

// WithDeviceLostHandler registers fn to run once, the first time a
// storage reports device loss.
func WithDeviceLostHandler(fn func()) Option {
	return func(o *options) {
		o.onDeviceLost = fn
	}
}

// WithLabel sets the prefix of native texture and command encoder labels.
func WithLabel(label string) Option {
	return func(o *options) {
		o.label = label
	}
}
