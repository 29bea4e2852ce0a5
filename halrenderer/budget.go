// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package halrenderer

import (
	"fmt"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/gogpu/wgpu/hal"
)

// ErrMemoryBudgetExceeded is returned when a texture allocation would
// exceed the configured budget. It also matches hal.ErrDeviceOutOfMemory.
var ErrMemoryBudgetExceeded = errors.Mark(
	errors.New("halrenderer: memory budget exceeded"), hal.ErrDeviceOutOfMemory)

// Budget limits.
const (
	// MinMemoryMB is the smallest budget accepted by WithMemoryBudget.
	MinMemoryMB = 16
)

// MemoryStats contains texture memory usage statistics.
type MemoryStats struct {
	// TotalBytes is the memory budget in bytes. Zero means unlimited.
	TotalBytes uint64

	// UsedBytes is the memory held by live textures.
	UsedBytes uint64

	// PeakBytes is the highest UsedBytes seen.
	PeakBytes uint64

	// TextureCount is the number of live textures.
	TextureCount int

	// RejectedCount is the number of allocations refused by the budget.
	RejectedCount uint64
}

// Utilization returns the fraction of the budget in use, or zero when
// the budget is unlimited.
func (s MemoryStats) Utilization() float64 {
	if s.TotalBytes == 0 {
		return 0
	}
	return float64(s.UsedBytes) / float64(s.TotalBytes)
}

// String returns a human-readable string of memory stats.
func (s MemoryStats) String() string {
	if s.TotalBytes == 0 {
		return fmt.Sprintf("Memory[%d KB used, unlimited, %d textures]",
			s.UsedBytes/1024, s.TextureCount)
	}
	return fmt.Sprintf("Memory[%.1f%% used, %d/%d KB, %d textures, %d rejected]",
		s.Utilization()*100,
		s.UsedBytes/1024,
		s.TotalBytes/1024,
		s.TextureCount,
		s.RejectedCount)
}

// budget tracks texture memory. Storage textures cannot be evicted, so
// an allocation that does not fit is refused.
//
// budget is safe for concurrent use.
type budget struct {
	mu sync.Mutex

	limitBytes uint64
	usedBytes  uint64
	peakBytes  uint64
	textures   int
	rejected   uint64
}

// newBudget returns a budget of megabytes. Non-positive values disable
// the limit; small positive values are raised to MinMemoryMB.
func newBudget(megabytes int) *budget {
	b := &budget{}
	if megabytes > 0 {
		//nolint:gosec // G115: megabytes is positive
		b.limitBytes = uint64(max(megabytes, MinMemoryMB)) * 1024 * 1024
	}
	return b
}

// reserve accounts for size bytes or refuses them.
func (b *budget) reserve(size uint64, label string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.limitBytes > 0 && b.usedBytes+size > b.limitBytes {
		b.rejected++
		return errors.Wrapf(ErrMemoryBudgetExceeded,
			"texture %q needs %d bytes, have %d bytes available",
			label, size, b.limitBytes-b.usedBytes)
	}
	b.usedBytes += size
	b.peakBytes = max(b.peakBytes, b.usedBytes)
	b.textures++
	return nil
}

// release returns size bytes to the budget.
func (b *budget) release(size uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.usedBytes -= min(size, b.usedBytes)
	b.textures--
}

func (b *budget) stats() MemoryStats {
	b.mu.Lock()
	defer b.mu.Unlock()

	return MemoryStats{
		TotalBytes:    b.limitBytes,
		UsedBytes:     b.usedBytes,
		PeakBytes:     b.peakBytes,
		TextureCount:  b.textures,
		RejectedCount: b.rejected,
	}
}
