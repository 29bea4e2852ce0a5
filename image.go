// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package texstore

import (
	"github.com/gogpu/texstore/format"
)

// Image is the per-level staging image that may own the authoritative
// copy of a storage slot's pixels.
//
// A storage holds images weakly: it never keeps them alive and only asks
// them to recover before their slot is overwritten or released.
type Image interface {
	InternalFormat() format.Internal
	Width() int
	Height() int
	Depth() int

	// IsAssociatedStorageValid reports whether the image still considers s
	// the storage it is associated with.
	IsAssociatedStorageValid(s *Storage) bool

	// RecoverFromAssociatedStorage pulls the slot's pixels back into the
	// image. It must disassociate the image from the storage.
	RecoverFromAssociatedStorage() error
}

// associations holds one optional image per addressable slot.
type associations interface {
	// get returns the image in the slot of idx; ok is false when idx does
	// not name a slot.
	get(idx Index) (img Image, ok bool)
	set(idx Index, img Image) bool
	each(fn func(Index, Image))
}

// levelSlots holds one association per level (2D and 3D storages).
type levelSlots struct {
	levels int
	slots  [MaxTextureLevels]Image
}

func (l *levelSlots) get(idx Index) (Image, bool) {
	if idx.Level < 0 || idx.Level >= l.levels {
		return nil, false
	}
	return l.slots[idx.Level], true
}

func (l *levelSlots) set(idx Index, img Image) bool {
	if idx.Level < 0 || idx.Level >= l.levels {
		return false
	}
	l.slots[idx.Level] = img
	return true
}

func (l *levelSlots) each(fn func(Index, Image)) {
	for level := 0; level < l.levels; level++ {
		if l.slots[level] != nil {
			fn(Index2D(level), l.slots[level])
		}
	}
}

// faceSlots holds one association per cube face and level.
type faceSlots struct {
	levels int
	slots  [CubeFaces][MaxTextureLevels]Image
}

func (f *faceSlots) valid(idx Index) bool {
	return idx.Level >= 0 && idx.Level < f.levels && idx.Layer >= 0 && idx.Layer < CubeFaces
}

func (f *faceSlots) get(idx Index) (Image, bool) {
	if !f.valid(idx) {
		return nil, false
	}
	return f.slots[idx.Layer][idx.Level], true
}

func (f *faceSlots) set(idx Index, img Image) bool {
	if !f.valid(idx) {
		return false
	}
	f.slots[idx.Layer][idx.Level] = img
	return true
}

func (f *faceSlots) each(fn func(Index, Image)) {
	for face := 0; face < CubeFaces; face++ {
		for level := 0; level < f.levels; level++ {
			if img := f.slots[face][level]; img != nil {
				fn(IndexCube(face, level), img)
			}
		}
	}
}

// layerSlots holds associations of a 2D-array storage, keyed by level
// and layer.
type layerSlots struct {
	levels int
	layers int
	slots  map[Index]Image
}

func (l *layerSlots) valid(idx Index) bool {
	return idx.Level >= 0 && idx.Level < l.levels && idx.Layer >= 0 && idx.Layer < l.layers
}

func (l *layerSlots) get(idx Index) (Image, bool) {
	if !l.valid(idx) {
		return nil, false
	}
	return l.slots[idx], true
}

func (l *layerSlots) set(idx Index, img Image) bool {
	if !l.valid(idx) {
		return false
	}
	if img == nil {
		delete(l.slots, idx)
	} else {
		l.slots[idx] = img
	}
	return true
}

func (l *layerSlots) each(fn func(Index, Image)) {
	for idx, img := range l.slots {
		fn(idx, img)
	}
}

// AssociateImage records img as the owner of the slot at idx, replacing
// any previous association. Callers release the previous owner first
// with ReleaseAssociatedImage.
func (s *Storage) AssociateImage(img Image, idx Index) {
	ok := s.assoc.set(idx, img)
	assertf(ok, "texstore: associate with invalid %s of %s storage", idx, s.kind)
}

// IsAssociatedImageValid reports whether img is the image associated with
// idx. A mismatch means image and storage disagree on who owns the slot
// and is reported as a protocol violation.
func (s *Storage) IsAssociatedImageValid(idx Index, img Image) bool {
	current, ok := s.assoc.get(idx)
	if !assertf(ok, "texstore: association query for invalid %s of %s storage", idx, s.kind) {
		return false
	}
	valid := current == img
	assertf(valid, "texstore: %s of %s storage is not associated with the queried image", idx, s.kind)
	return valid
}

// DisassociateImage clears the slot at idx if img owns it.
func (s *Storage) DisassociateImage(idx Index, img Image) {
	current, ok := s.assoc.get(idx)
	if !assertf(ok, "texstore: disassociate invalid %s of %s storage", idx, s.kind) {
		return
	}
	if !assertf(current == img, "texstore: disassociating an image that does not own %s", idx) {
		return
	}
	s.assoc.set(idx, nil)
}

// ReleaseAssociatedImage prepares the slot at idx for incoming. If another
// image still owns the slot and still agrees it does, that image recovers
// its pixels first; recovery clears the association.
func (s *Storage) ReleaseAssociatedImage(idx Index, incoming Image) error {
	current, ok := s.assoc.get(idx)
	if !assertf(ok, "texstore: release invalid %s of %s storage", idx, s.kind) {
		return nil
	}
	if current == nil || current == incoming {
		return nil
	}
	if !assertf(current.IsAssociatedStorageValid(s),
		"texstore: image owning %s of %s storage refers to another storage", idx, s.kind) {
		return nil
	}
	return current.RecoverFromAssociatedStorage()
}

// recoverAssociatedImages makes every image still associated with s pull
// its data back before the native resources go away.
func (s *Storage) recoverAssociatedImages() {
	type owned struct {
		idx Index
		img Image
	}
	var pending []owned
	s.assoc.each(func(idx Index, img Image) {
		pending = append(pending, owned{idx, img})
	})

	for _, p := range pending {
		if !assertf(p.img.IsAssociatedStorageValid(s), "texstore: image at %s no longer refers to its storage", p.idx) {
			continue
		}
		if err := p.img.RecoverFromAssociatedStorage(); err != nil {
			Logger().Warn("texstore: image recovery on release failed", "index", p.idx, "err", err)
		}
	}
}
