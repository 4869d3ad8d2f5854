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

// overlayMap is the in-memory staging layer shared by the commit tier and
// every per-thread scope: a set of pending writes plus, alongside it, the
// prior committed value recorded at erase time (the "erasure witness" used
// to detect races when a memory scope is merged back into commit).
//
// It carries no lock of its own — callers that need concurrent access (the
// commit overlay) wrap it with their own mutex, matching the source
// database's single MEMORY_MUTEX guarding one shared map rather than a
// lock per map.
type overlayMap struct {
	states   map[RegisterID]State
	erasures map[RegisterID]State
}

func newOverlayMap() *overlayMap {
	return &overlayMap{
		states:   make(map[RegisterID]State),
		erasures: make(map[RegisterID]State),
	}
}

func (o *overlayMap) has(id RegisterID) bool {
	_, ok := o.states[id]
	return ok
}

func (o *overlayMap) get(id RegisterID) (State, bool) {
	s, ok := o.states[id]
	return s, ok
}

// set stages a write and drops any pending erasure witness for id — a
// fresh write supersedes whatever an earlier erase in this scope recorded.
func (o *overlayMap) set(id RegisterID, s State) {
	delete(o.erasures, id)
	o.states[id] = s
}

func (o *overlayMap) delete(id RegisterID) {
	delete(o.states, id)
}

// eraseWithWitness removes id from the staged states and records witness
// (the value the commit layer held at the moment of the erase) so a later
// MemoryCommit can detect a conflicting concurrent write.
func (o *overlayMap) eraseWithWitness(id RegisterID, witness State) {
	delete(o.states, id)
	o.erasures[id] = witness
}
