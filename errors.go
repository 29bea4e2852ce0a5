// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package texstore

import (
	"github.com/cockroachdb/errors"
	"github.com/gogpu/wgpu/hal"
)

// Errors returned by storage operations.
var (
	// ErrOutOfMemory is returned when a native texture or view cannot be
	// created. It is never retried.
	ErrOutOfMemory = errors.New("texstore: out of memory")

	// ErrDeviceLost is returned when resource creation reports device loss.
	// Errors matching ErrDeviceLost also match ErrOutOfMemory.
	ErrDeviceLost = errors.New("texstore: device lost")

	// ErrCompressedUpload is returned when client pixels are uploaded into
	// a block-compressed storage. Compressed data goes through the staging
	// image instead.
	ErrCompressedUpload = errors.New("texstore: pixel upload into compressed storage")

	// ErrNoResource is returned by transfers against a zero-sized storage
	// that never allocated a native texture.
	ErrNoResource = errors.New("texstore: storage has no native resource")

	// ErrReleased is returned by operations on a released storage.
	ErrReleased = errors.New("texstore: storage released")

	// ErrSwizzleUnsupported is returned when a swizzle is requested for a
	// format or device tier without a swizzle texture format.
	ErrSwizzleUnsupported = errors.New("texstore: swizzle unsupported")
)

// allocError classifies a failed native creation call. Device loss is
// reported to the renderer before the error is returned.
func allocError(r Renderer, err error, format string, args ...any) error {
	if errors.Is(err, hal.ErrDeviceLost) {
		r.NotifyDeviceLost()
		wrapped := errors.Wrapf(errors.CombineErrors(ErrDeviceLost, err), format, args...)
		return errors.Mark(wrapped, ErrOutOfMemory)
	}
	return errors.Wrapf(errors.CombineErrors(ErrOutOfMemory, err), format, args...)
}

// violationHandler receives protocol violations. Tests replace it.
var violationHandler = reportViolation

// assertf reports a protocol violation when cond is false and returns cond.
// Violations are programming errors: texstoredebug builds panic, other
// builds log and continue.
func assertf(cond bool, format string, args ...any) bool {
	if !cond {
		violationHandler(errors.AssertionFailedf(format, args...))
	}
	return cond
}
