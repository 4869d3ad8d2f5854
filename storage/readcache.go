/*
Copyright (C) 2024-2026  Carl-Philip Hänsch

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package storage

import (
	"sync"
	"time"
)

// readCacheEntry is the pointer CacheManager tracks for one cached read.
type readCacheEntry struct {
	rc       *readCache
	key      Key
	value    []byte
	lastUsed time.Time
	mu       sync.Mutex
}

// readCache is a read-through cache in front of a Backend, evicted by
// CacheManager's memory-budget LRU policy rather than a fixed entry count —
// the same budgeted-by-bytes approach the teacher uses for its own soft
// references (see cache.go), generalized from schema/column objects to
// register state blobs.
type readCache struct {
	backend Backend
	manager *CacheManager

	mu      sync.RWMutex
	entries map[Key]*readCacheEntry
}

// newReadCache wraps backend with a cache budgeted at budgetBytes. A
// budget of 0 disables caching (every Read/Exists hits backend directly).
func newReadCache(backend Backend, budgetBytes uint) *readCache {
	rc := &readCache{
		backend: backend,
		entries: make(map[Key]*readCacheEntry),
	}
	if budgetBytes > 0 {
		rc.manager = NewCacheManager(int64(budgetBytes))
	}
	return rc
}

func (rc *readCache) Read(key Key) ([]byte, error) {
	if rc.manager == nil {
		return rc.backend.Read(key)
	}

	rc.mu.RLock()
	entry, ok := rc.entries[key]
	rc.mu.RUnlock()
	if ok {
		entry.mu.Lock()
		entry.lastUsed = time.Now()
		v := entry.value
		entry.mu.Unlock()
		return v, nil
	}

	data, err := rc.backend.Read(key)
	if err != nil {
		return nil, err
	}
	rc.insert(key, data)
	return data, nil
}

func (rc *readCache) insert(key Key, data []byte) {
	entry := &readCacheEntry{rc: rc, key: key, value: data, lastUsed: time.Now()}
	rc.mu.Lock()
	rc.entries[key] = entry
	rc.mu.Unlock()

	rc.manager.AddItem(
		entry,
		int64(len(data))+64,
		0,
		func(pointer any) {
			e := pointer.(*readCacheEntry)
			rc.mu.Lock()
			delete(rc.entries, e.key)
			rc.mu.Unlock()
		},
		func(pointer any) time.Time {
			e := pointer.(*readCacheEntry)
			e.mu.Lock()
			defer e.mu.Unlock()
			return e.lastUsed
		},
	)
}

// invalidate drops a cached entry, called once a BLOCK write or a BLOCK
// erase for key has landed in the backend, so the cache does not serve
// the register's previous state.
func (rc *readCache) invalidate(key Key) {
	if rc.manager == nil {
		return
	}
	rc.mu.Lock()
	entry, ok := rc.entries[key]
	rc.mu.Unlock()
	if ok {
		rc.manager.Delete(entry)
	}
}
