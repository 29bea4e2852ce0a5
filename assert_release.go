// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !texstoredebug

package texstore

func reportViolation(err error) {
	Logger().Error("texstore: protocol violation", "err", err)
}
