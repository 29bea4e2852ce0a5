// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package format

import (
	"github.com/cockroachdb/errors"
)

// PixelType is the client-side component type of uploaded pixel data.
type PixelType uint8

// Client pixel types.
const (
	UnsignedByte PixelType = iota + 1
	UnsignedShort
	UnsignedInt
	HalfFloat
	Float
	UnsignedShort4444
	UnsignedShort5551
	UnsignedShort565
	UnsignedInt248
)

// String returns the type name.
func (t PixelType) String() string {
	switch t {
	case UnsignedByte:
		return "UnsignedByte"
	case UnsignedShort:
		return "UnsignedShort"
	case UnsignedInt:
		return "UnsignedInt"
	case HalfFloat:
		return "HalfFloat"
	case Float:
		return "Float"
	case UnsignedShort4444:
		return "UnsignedShort4444"
	case UnsignedShort5551:
		return "UnsignedShort5551"
	case UnsignedShort565:
		return "UnsignedShort565"
	case UnsignedInt248:
		return "UnsignedInt248"
	default:
		return "PixelType(?)"
	}
}

// DefaultAlignment is the row alignment used when Unpack.Alignment is unset.
const DefaultAlignment = 4

// Unpack describes the layout of client pixel memory.
type Unpack struct {
	// Alignment of each source row start, in bytes: 1, 2, 4 or 8.
	Alignment int
}

func (u Unpack) alignment() int {
	if u.Alignment <= 0 {
		return DefaultAlignment
	}
	return u.Alignment
}

// ErrUnsupportedType is returned when a format has no load function for
// the requested pixel type.
var ErrUnsupportedType = errors.New("format: unsupported pixel type")

// SourcePitches returns the row and depth pitch of client memory holding
// a width x height image of type t in format i.
func (i Info) SourcePitches(t PixelType, width, height int, unpack Unpack) (rowPitch, depthPitch int, err error) {
	load, ok := i.Load(t)
	if !ok {
		return 0, 0, errors.Wrapf(ErrUnsupportedType, "%s from %s", i.Internal, t)
	}
	rowPitch = RoundUp(width*load.ClientBytes, unpack.alignment())
	return rowPitch, rowPitch * height, nil
}

// RoundUp rounds v up to the next multiple of m. m must be positive.
func RoundUp(v, m int) int {
	return (v + m - 1) / m * m
}
