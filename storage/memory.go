// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"context"
	"slices"
	"sync"
	"time"
)

type cachedResult struct {
	payload   []byte
	expiresAt time.Time
}

func (r cachedResult) expired(now time.Time) bool {
	return !r.expiresAt.IsZero() && now.After(r.expiresAt)
}

// MemoryResultCache is an in-process ResultCache.
type MemoryResultCache struct {
	mu      sync.RWMutex
	entries map[string]cachedResult
	closed  bool
	now     func() time.Time
}

var _ ResultCache = (*MemoryResultCache)(nil)

// NewMemoryResultCache constructs a result cache backed by process memory.
func NewMemoryResultCache() *MemoryResultCache {
	return &MemoryResultCache{
		entries: make(map[string]cachedResult),
		now:     time.Now,
	}
}

// Get implements ResultCache.
func (c *MemoryResultCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return nil, false, ErrStorageClosed
	}
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	now := c.now()
	if entry.expired(now) {
		c.mu.Lock()
		if current, ok := c.entries[key]; ok && current.expired(now) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false, nil
	}
	return slices.Clone(entry.payload), true, nil
}

// Set implements ResultCache.
func (c *MemoryResultCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrStorageClosed
	}
	var exp time.Time
	if ttl > 0 {
		exp = c.now().Add(ttl)
	}
	c.entries[key] = cachedResult{payload: slices.Clone(value), expiresAt: exp}
	return nil
}

// Close drops all entries. Further calls return ErrStorageClosed.
func (c *MemoryResultCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.entries = nil
	return nil
}
