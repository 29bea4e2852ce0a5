// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package texstore

import (
	"github.com/gogpu/wgpu/hal"
)

// arena owns every native handle a storage creates. Caches keep plain
// references; release destroys everything at once, views before the
// textures they were created from.
type arena struct {
	r        Renderer
	textures []hal.Texture
	views    []hal.TextureView
}

func (a *arena) createTexture(desc *hal.TextureDescriptor) (hal.Texture, error) {
	tex, err := a.r.CreateTexture(desc)
	if err != nil {
		return nil, allocError(a.r, err, "create texture %q", desc.Label)
	}
	a.textures = append(a.textures, tex)
	Logger().Debug("texstore: texture created",
		"label", desc.Label,
		"size", desc.Size,
		"mips", desc.MipLevelCount,
		"format", desc.Format)
	return tex, nil
}

func (a *arena) createView(tex hal.Texture, desc *hal.TextureViewDescriptor) (hal.TextureView, error) {
	view, err := a.r.CreateTextureView(tex, desc)
	if err != nil {
		return nil, allocError(a.r, err, "create view %q", desc.Label)
	}
	a.views = append(a.views, view)
	return view, nil
}

// live reports the number of handles still owned.
func (a *arena) live() int {
	return len(a.textures) + len(a.views)
}

func (a *arena) release() {
	for i := len(a.views) - 1; i >= 0; i-- {
		a.r.DestroyTextureView(a.views[i])
	}
	for i := len(a.textures) - 1; i >= 0; i-- {
		a.r.DestroyTexture(a.textures[i])
	}
	a.views = nil
	a.textures = nil
}
