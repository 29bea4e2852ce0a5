// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package texstore

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler drops every record. Enabled reports false, so log calls
// return before their attributes are built.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr is swapped by SetLogger while storages log from other goroutines.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger routes the diagnostics of storages, the blitter, the HAL
// renderer and staging images to l. Storages are silent until it is
// called; nil silences them again.
//
// What each level carries:
//   - [slog.LevelDebug]: a native texture or blit pipeline was
//     created, or a staging image moved between host memory and a storage
//   - [slog.LevelWarn]: work that failed without an error return, such as
//     a skipped mip level or an image that could not read its pixels back
//     before its storage was released; a lost device
//   - [slog.LevelError]: a broken call protocol (an invalid index, a missing
//     workaround) when texstoredebug is not set and the violation does not
//     panic
//
// To trace texture allocation while debugging a demo:
//
//	texstore.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the logger installed by SetLogger. The blit, halrenderer
// and staging packages log through it as well.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
