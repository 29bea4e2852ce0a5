// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Command texdemo exercises texture storages on the headless backend.
//
// It uploads a CPU-built image into a 2D storage, fills the rest of the
// mip chain on the GPU, samples it through a swizzled view, copies it into
// a second storage and builds cube, 3D and array storages from staging
// images. Releasing the storages makes every staging image recover its
// contents.
//
// Usage:
//
//	texdemo [-size 256] [-format RGBA8] [-swizzle bgra] [-budget 64] [-limited] [-spirv] [-v]
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/gogpu/texstore"
	"github.com/gogpu/texstore/format"
)

func main() {
	var (
		size    = flag.Int("size", 256, "level zero width and height")
		name    = flag.String("format", "RGBA8", "internal format of the 2D storage")
		swizzle = flag.String("swizzle", "bgra", "sampler swizzle, four of r g b a 0 1")
		budget  = flag.Int("budget", 0, "texture memory budget in megabytes, 0 for unlimited")
		limited = flag.Bool("limited", false, "run with the limited feature tier")
		spirv   = flag.Bool("spirv", false, "compile blit shaders to SPIR-V")
		verbose = flag.Bool("v", false, "log texture and view creation")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	texstore.SetLogger(logger)

	cfg := config{
		size:    *size,
		budget:  *budget,
		limited: *limited,
		spirv:   *spirv,
	}
	var err error
	if cfg.format, err = parseFormat(*name); err == nil {
		cfg.swizzle, err = parseSwizzle(*swizzle)
	}
	if err == nil {
		err = run(cfg, logger)
	}
	if err != nil {
		logger.Error("texdemo failed", "err", err)
		os.Exit(1)
	}
}

// parseFormat resolves an internal format by name.
func parseFormat(name string) (format.Internal, error) {
	for f := format.Internal(1); f.Valid(); f++ {
		if f.String() == name {
			return f, nil
		}
	}
	return format.Undefined, errors.Newf("unknown format %q", name)
}

// parseSwizzle reads a swizzle such as "bgra" or "rrr1".
func parseSwizzle(s string) (texstore.Swizzle, error) {
	if len(s) != 4 {
		return texstore.Swizzle{}, errors.Newf("swizzle %q must have four channels", s)
	}
	var channels [4]texstore.Channel
	for i, c := range []byte(s) {
		switch c {
		case 'r':
			channels[i] = texstore.ChannelRed
		case 'g':
			channels[i] = texstore.ChannelGreen
		case 'b':
			channels[i] = texstore.ChannelBlue
		case 'a':
			channels[i] = texstore.ChannelAlpha
		case '0':
			channels[i] = texstore.ChannelZero
		case '1':
			channels[i] = texstore.ChannelOne
		default:
			return texstore.Swizzle{}, errors.Newf("swizzle %q: unknown channel %q", s, c)
		}
	}
	return texstore.Swizzle{R: channels[0], G: channels[1], B: channels[2], A: channels[3]}, nil
}
