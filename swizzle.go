// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package texstore

import (
	"github.com/gogpu/gputypes"
)

// Channel is the source of one swizzled output channel.
type Channel uint8

// Swizzle channel sources. ChannelNone never appears in a valid swizzle.
const (
	ChannelNone Channel = iota
	ChannelRed
	ChannelGreen
	ChannelBlue
	ChannelAlpha
	ChannelZero
	ChannelOne
)

var channelNames = [...]string{"none", "r", "g", "b", "a", "0", "1"}

func (c Channel) String() string {
	if int(c) < len(channelNames) {
		return channelNames[c]
	}
	return "?"
}

// Swizzle remaps the four sampled channels. The zero value means identity.
type Swizzle struct {
	R, G, B, A Channel
}

// IdentitySwizzle leaves every channel in place.
var IdentitySwizzle = Swizzle{ChannelRed, ChannelGreen, ChannelBlue, ChannelAlpha}

// noSwizzle is the per-level cache state before any swizzle was rendered.
var noSwizzle = Swizzle{}

func (s Swizzle) normalized() Swizzle {
	if s == noSwizzle {
		return IdentitySwizzle
	}
	return s
}

// Required reports whether sampling needs the swizzle texture.
func (s Swizzle) Required() bool {
	return s.normalized() != IdentitySwizzle
}

func (s Swizzle) String() string {
	return s.R.String() + s.G.String() + s.B.String() + s.A.String()
}

// SamplerState is the part of sampler configuration that selects a
// shader view.
type SamplerState struct {
	BaseLevel int
	MaxLevel  int

	MinFilter    gputypes.FilterMode
	MipmapFilter gputypes.MipmapFilterMode

	Swizzle Swizzle
}

// MipmapFiltered reports whether the sampler reads more than the base level.
func (s SamplerState) MipmapFiltered() bool {
	return s.MipmapFilter != gputypes.MipmapFilterModeUndefined
}

// SwizzleRequired reports whether the sampler needs a swizzled view.
func (s SamplerState) SwizzleRequired() bool {
	return s.Swizzle.Required()
}
