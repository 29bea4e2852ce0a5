// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package viewcache provides the keyed caches a texture storage uses for
// its derived views.
//
// Entries are never evicted: a cached view lives exactly as long as the
// storage that created it, and the storage releases the underlying
// handles itself. The cache only tracks lookups.
//
//	c := viewcache.New[key, hal.TextureView]()
//	view, err := c.GetOrCreate(k, func() (hal.TextureView, error) {
//	    return device.CreateTextureView(tex, desc)
//	})
package viewcache

import "sort"

// Cache is a generic keyed cache without eviction.
//
// Cache is not safe for concurrent use; the owning storage serializes
// access.
type Cache[K comparable, V any] struct {
	entries map[K]V
	hits    uint64
	misses  uint64
}

// New creates an empty cache.
func New[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{
		entries: make(map[K]V),
	}
}

// Get retrieves a value from the cache.
// Returns (value, true) if found, (zero, false) otherwise.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	v, ok := c.entries[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return v, ok
}

// Set stores a value, replacing any previous entry for key.
func (c *Cache[K, V]) Set(key K, value V) {
	c.entries[key] = value
}

// GetOrCreate returns the cached value or creates and stores it.
// A failed create leaves the cache unchanged.
func (c *Cache[K, V]) GetOrCreate(key K, create func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	v, err := create()
	if err != nil {
		var zero V
		return zero, err
	}
	c.entries[key] = v
	return v, nil
}

// Delete removes an entry from the cache.
// Returns true if the entry was found and removed.
func (c *Cache[K, V]) Delete(key K) bool {
	if _, ok := c.entries[key]; ok {
		delete(c.entries, key)
		return true
	}
	return false
}

// Len returns the number of entries in the cache.
func (c *Cache[K, V]) Len() int {
	return len(c.entries)
}

// Range calls fn for every entry until fn returns false. Iteration order
// is unspecified.
func (c *Cache[K, V]) Range(fn func(K, V) bool) {
	for k, v := range c.entries {
		if !fn(k, v) {
			return
		}
	}
}

// Keys returns the cached keys ordered by less.
func (c *Cache[K, V]) Keys(less func(a, b K) bool) []K {
	keys := make([]K, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return less(keys[i], keys[j]) })
	return keys
}

// Clear removes all entries and resets the statistics.
func (c *Cache[K, V]) Clear() {
	c.entries = make(map[K]V)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache[K, V]) Stats() Stats {
	return Stats{
		Len:    len(c.entries),
		Hits:   c.hits,
		Misses: c.misses,
	}
}

// Stats contains cache statistics.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Hits is the number of lookups that found an entry.
	Hits uint64
	// Misses is the number of lookups that did not.
	Misses uint64
}
