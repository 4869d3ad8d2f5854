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

import "sync"

// commitOverlay is the single process-wide mempool-level overlay. Every
// public Register Store instance owns exactly one; the source database
// keeps this as a bare global behind one mutex, but a package-level global
// would make two independently constructed stores in the same process (as
// happens constantly in tests) silently share state, so it lives on
// *RegisterStore instead (see SPEC_FULL.md §C.2).
type commitOverlay struct {
	mu      sync.Mutex
	overlay *overlayMap
}

func newCommitOverlay() *commitOverlay {
	return &commitOverlay{overlay: newOverlayMap()}
}

func (c *commitOverlay) has(id RegisterID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.overlay.has(id)
}

func (c *commitOverlay) get(id RegisterID) (State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.overlay.get(id)
}

func (c *commitOverlay) set(id RegisterID, s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.overlay.set(id, s)
}

func (c *commitOverlay) delete(id RegisterID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.overlay.delete(id)
}

// removeIfEqual deletes id from the commit overlay iff its current value
// equals want, returning whether it did. BLOCK writes (I5) and
// MemoryCommit's per-erasure conflict check (I4) apply the same equality
// rule inline under withLock rather than through this helper.
func (c *commitOverlay) removeIfEqual(id RegisterID, want State) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	cur, ok := c.overlay.get(id)
	if ok && cur.Equal(want) {
		c.overlay.delete(id)
		return true
	}
	return false
}

// withLock runs fn while holding the commit mutex, for the operations
// (BLOCK and ERASE overlay cleanup, scoped MEMPOOL erases, MemoryCommit)
// that need several reads/writes to stay atomic with
// respect to other threads touching the same register.
func (c *commitOverlay) withLock(fn func(o *overlayMap)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.overlay)
}
