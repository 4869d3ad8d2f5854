/*
Copyright (C) 2023-2026  Carl-Philip Hänsch

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

	"github.com/jtolds/gls"
)

// scopeKind distinguishes the two scope flavors a goroutine may hold.
type scopeKind uint8

const (
	scopeMemory scopeKind = iota
	scopeMiner
)

// scopeRegistry tracks the zero-or-one memory overlay and zero-or-one
// miner overlay owned by each goroutine. Existence is the signal — a
// missing entry means "no scope open on this thread" (spec I1).
//
// The source database models this as native thread-local storage; Go has
// no such primitive; the teacher's own parallel shard scans already pull in
// github.com/jtolds/gls for goroutine-scoped state, so scopes are keyed the
// same way here rather than threading a scope handle through every call,
// which would change the Register Store's call signature away from the
// spec's (id, state, flag).
type scopeRegistry struct {
	mu      sync.Mutex
	byGID   map[uint]*overlayMap // memory scopes
	minerGID map[uint]*overlayMap // miner scopes
}

func newScopeRegistry() *scopeRegistry {
	return &scopeRegistry{
		byGID:    make(map[uint]*overlayMap),
		minerGID: make(map[uint]*overlayMap),
	}
}

// currentGoroutineID synchronously resolves the calling goroutine's id via
// gls's goroutine-id mechanism. The callback runs on the same goroutine
// before EnsureGoroutineId returns, so this is not asynchronous dispatch —
// it is the one public gls entry point that answers "which goroutine is
// this" without requiring the caller to already be inside a gls.Go closure.
func currentGoroutineID() uint {
	var gid uint
	gls.EnsureGoroutineId(func(id uint) {
		gid = id
	})
	return gid
}

func (r *scopeRegistry) table(kind scopeKind) map[uint]*overlayMap {
	if kind == scopeMiner {
		return r.minerGID
	}
	return r.byGID
}

// begin installs a fresh, empty overlay for the calling goroutine, dropping
// any previous overlay of the same kind (spec §9: MemoryBegin(MINER)
// silently discards a prior miner overlay — no nested-scope semantics).
func (r *scopeRegistry) begin(kind scopeKind) {
	gid := currentGoroutineID()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.table(kind)[gid] = newOverlayMap()
}

// get returns the calling goroutine's overlay of the given kind, or nil if
// none is open.
func (r *scopeRegistry) get(kind scopeKind) *overlayMap {
	gid := currentGoroutineID()
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.table(kind)[gid]
}

// release drops the calling goroutine's overlay of the given kind. All
// staged writes and erasures are discarded; no lock is held across the
// drop beyond the registry's own short critical section.
func (r *scopeRegistry) release(kind scopeKind) {
	gid := currentGoroutineID()
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.table(kind), gid)
}
