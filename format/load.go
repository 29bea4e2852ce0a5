// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package format

import (
	"encoding/binary"
	"math"
)

// LoadFunc converts a width x height x depth block of client pixels into
// the native byte layout. Pitches are in bytes.
type LoadFunc func(width, height, depth int,
	src []byte, srcRowPitch, srcDepthPitch int,
	dst []byte, dstRowPitch, dstDepthPitch int)

// Load binds a client pixel type to its conversion.
type Load struct {
	Type PixelType

	// ClientBytes is the size of one client pixel.
	ClientBytes int

	Func LoadFunc
}

type rowFunc func(width int, src, dst []byte)

// perRow lifts a single-row conversion into a LoadFunc.
func perRow(srcPixel, dstPixel int, fn rowFunc) LoadFunc {
	return func(width, height, depth int,
		src []byte, srcRowPitch, srcDepthPitch int,
		dst []byte, dstRowPitch, dstDepthPitch int,
	) {
		for z := 0; z < depth; z++ {
			for y := 0; y < height; y++ {
				s := z*srcDepthPitch + y*srcRowPitch
				d := z*dstDepthPitch + y*dstRowPitch
				fn(width, src[s:s+width*srcPixel], dst[d:d+width*dstPixel])
			}
		}
	}
}

func copyPixels(pixelBytes int) LoadFunc {
	return perRow(pixelBytes, pixelBytes, func(_ int, src, dst []byte) {
		copy(dst, src)
	})
}

var loadRGB8ToRGBA8 = perRow(3, 4, func(width int, src, dst []byte) {
	for x := 0; x < width; x++ {
		dst[4*x] = src[3*x]
		dst[4*x+1] = src[3*x+1]
		dst[4*x+2] = src[3*x+2]
		dst[4*x+3] = 0xFF
	}
})

var loadA8ToRGBA8 = perRow(1, 4, func(width int, src, dst []byte) {
	for x := 0; x < width; x++ {
		dst[4*x] = 0
		dst[4*x+1] = 0
		dst[4*x+2] = 0
		dst[4*x+3] = src[x]
	}
})

var loadL8ToRGBA8 = perRow(1, 4, func(width int, src, dst []byte) {
	for x := 0; x < width; x++ {
		l := src[x]
		dst[4*x] = l
		dst[4*x+1] = l
		dst[4*x+2] = l
		dst[4*x+3] = 0xFF
	}
})

var loadLA8ToRGBA8 = perRow(2, 4, func(width int, src, dst []byte) {
	for x := 0; x < width; x++ {
		l := src[2*x]
		dst[4*x] = l
		dst[4*x+1] = l
		dst[4*x+2] = l
		dst[4*x+3] = src[2*x+1]
	}
})

var loadRGBA4ToRGBA8 = perRow(2, 4, func(width int, src, dst []byte) {
	for x := 0; x < width; x++ {
		v := binary.LittleEndian.Uint16(src[2*x:])
		dst[4*x] = expand4(v >> 12)
		dst[4*x+1] = expand4(v >> 8)
		dst[4*x+2] = expand4(v >> 4)
		dst[4*x+3] = expand4(v)
	}
})

var loadRGB5A1ToRGBA8 = perRow(2, 4, func(width int, src, dst []byte) {
	for x := 0; x < width; x++ {
		v := binary.LittleEndian.Uint16(src[2*x:])
		dst[4*x] = expand5(v >> 11)
		dst[4*x+1] = expand5(v >> 6)
		dst[4*x+2] = expand5(v >> 1)
		if v&1 != 0 {
			dst[4*x+3] = 0xFF
		} else {
			dst[4*x+3] = 0
		}
	}
})

var loadRGB565ToRGBA8 = perRow(2, 4, func(width int, src, dst []byte) {
	for x := 0; x < width; x++ {
		v := binary.LittleEndian.Uint16(src[2*x:])
		dst[4*x] = expand5(v >> 11)
		dst[4*x+1] = expand6(v >> 5)
		dst[4*x+2] = expand5(v)
		dst[4*x+3] = 0xFF
	}
})

// loadR32ToR24G8 moves packed depth (high 24 bits) and stencil (low 8
// bits) into the native order: depth low, stencil high.
var loadR32ToR24G8 = perRow(4, 4, func(width int, src, dst []byte) {
	for x := 0; x < width; x++ {
		v := binary.LittleEndian.Uint32(src[4*x:])
		binary.LittleEndian.PutUint32(dst[4*x:], v>>8|(v&0xFF)<<24)
	}
})

var loadR32ToR16 = perRow(4, 2, func(width int, src, dst []byte) {
	for x := 0; x < width; x++ {
		v := binary.LittleEndian.Uint32(src[4*x:])
		binary.LittleEndian.PutUint16(dst[2*x:], uint16(v>>16))
	}
})

func loadFloatToHalf(components int) LoadFunc {
	return perRow(4*components, 2*components, func(width int, src, dst []byte) {
		for i := 0; i < width*components; i++ {
			f := math.Float32frombits(binary.LittleEndian.Uint32(src[4*i:]))
			binary.LittleEndian.PutUint16(dst[2*i:], Float32ToHalf(f))
		}
	})
}

func expand4(v uint16) byte {
	v &= 0xF
	return byte(v<<4 | v)
}

func expand5(v uint16) byte {
	v &= 0x1F
	return byte(v<<3 | v>>2)
}

func expand6(v uint16) byte {
	v &= 0x3F
	return byte(v<<2 | v>>4)
}

// Float32ToHalf converts f to IEEE 754 binary16, rounding to nearest.
func Float32ToHalf(f float32) uint16 {
	bits := math.Float32bits(f)
	sign := uint16(bits>>16) & 0x8000
	biased := (bits >> 23) & 0xFF
	mant := bits & 0x7FFFFF
	exp := int(biased) - 127 + 15

	switch {
	case biased == 0xFF:
		if mant != 0 {
			return sign | 0x7E00
		}
		return sign | 0x7C00
	case exp >= 0x1F:
		return sign | 0x7C00
	case exp <= 0:
		if exp < -10 {
			return sign
		}
		mant |= 0x800000
		shift := uint(14 - exp)
		half := uint16(mant >> shift)
		if mant>>(shift-1)&1 != 0 {
			half++
		}
		return sign | half
	}

	half := sign | uint16(exp)<<10 | uint16(mant>>13)
	if mant&0x1000 != 0 {
		half++
	}
	return half
}
