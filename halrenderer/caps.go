// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package halrenderer

import (
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/texstore"
	"github.com/gogpu/texstore/format"
)

// DetectCaps derives a capability snapshot from adapter metadata.
// Software adapters get the limited tier and the zero max LOD workaround;
// every other adapter gets the full tier.
func DetectCaps(info gpucontext.AdapterInfo) texstore.Caps {
	if info.Type == gpucontext.AdapterTypeSoftware {
		return texstore.Caps{
			Tier:        format.TierLimited,
			Workarounds: texstore.Workarounds{ZeroMaxLOD: true},
		}
	}
	return texstore.Caps{Tier: format.TierFull}
}
