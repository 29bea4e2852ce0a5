// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package viewcache

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type key struct {
	level, count int
	swizzle      bool
}

func TestCacheGetSet(t *testing.T) {
	c := New[key, string]()

	_, ok := c.Get(key{0, 1, false})
	assert.False(t, ok)

	c.Set(key{0, 1, false}, "a")
	v, ok := c.Get(key{0, 1, false})
	require.True(t, ok)
	assert.Equal(t, "a", v)

	_, ok = c.Get(key{0, 1, true})
	assert.False(t, ok, "swizzle flag is part of the key")

	assert.Equal(t, Stats{Len: 1, Hits: 1, Misses: 2}, c.Stats())
}

func TestCacheGetOrCreate(t *testing.T) {
	c := New[key, int]()
	calls := 0
	create := func() (int, error) {
		calls++
		return calls * 10, nil
	}

	v1, err := c.GetOrCreate(key{1, 2, false}, create)
	require.NoError(t, err)
	v2, err := c.GetOrCreate(key{1, 2, false}, create)
	require.NoError(t, err)

	assert.Equal(t, 10, v1)
	assert.Equal(t, v1, v2)
	assert.Equal(t, 1, calls)

	v3, err := c.GetOrCreate(key{1, 3, false}, create)
	require.NoError(t, err)
	assert.Equal(t, 20, v3)
	assert.Equal(t, 2, c.Len())
}

func TestCacheGetOrCreateError(t *testing.T) {
	c := New[key, int]()
	boom := errors.New("boom")

	_, err := c.GetOrCreate(key{}, func() (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())
}

func TestCacheDeleteRangeClear(t *testing.T) {
	c := New[int, string]()
	for i := 0; i < 5; i++ {
		c.Set(i, "v")
	}

	assert.True(t, c.Delete(3))
	assert.False(t, c.Delete(3))
	assert.Equal(t, []int{0, 1, 2, 4}, c.Keys(func(a, b int) bool { return a < b }))

	seen := 0
	c.Range(func(int, string) bool {
		seen++
		return seen < 2
	})
	assert.Equal(t, 2, seen)

	c.Clear()
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, Stats{}, c.Stats())
}
