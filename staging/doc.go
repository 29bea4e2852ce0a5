// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package staging provides a client-side texture image that takes part in
// the storage association protocol.
//
// An Image holds the pixels of one storage slot (a 2D level, a cube face
// level, a 3D level or one layer of a 2D-array level). Uploading an image
// into a storage associates the two: from then on the storage owns the
// authoritative copy, and before the slot is overwritten by another image
// or the storage is released, the image recovers the contents into a
// texture of its own.
//
// # Quick Start
//
//	img, err := staging.New(r, format.RGBA8, 256, 256, 1)
//	if err != nil {
//	    return err
//	}
//	defer img.Release()
//
//	if err := img.SetPixels(format.UnsignedByte, format.Unpack{}, pix); err != nil {
//	    return err
//	}
//	if err := img.CopyToStorage(storage, texstore.Index2D(0)); err != nil {
//	    return err
//	}
//
// MipChain and NewLevels build a full mip chain on the CPU using the
// scalers of golang.org/x/image/draw, for devices or formats where the GPU
// path of Storage.GenerateMipLevel is not available.
package staging
