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

// Mode gates every Register Store operation: it selects which tiers
// (scope overlay, commit overlay, backend) participate in a given call.
type Mode uint8

const (
	// MEMPOOL targets the thread-local memory scope if one is open,
	// otherwise the shared commit overlay. Writes and erases never touch
	// the backend; reads and existence checks fall through to it.
	MEMPOOL Mode = iota
	// MINER targets the thread-local miner scope only. No scope open
	// means the write is silently dropped (advisory, see NoScope).
	MINER
	// BLOCK persists to the backend and, on a matching value, retires
	// the corresponding commit/memory overlay entry.
	BLOCK
	// ERASE mirrors BLOCK's overlay cleanup unconditionally but never
	// writes to or erases from the backend.
	ERASE
)

func (m Mode) String() string {
	switch m {
	case MEMPOOL:
		return "MEMPOOL"
	case MINER:
		return "MINER"
	case BLOCK:
		return "BLOCK"
	case ERASE:
		return "ERASE"
	default:
		return "UNKNOWN"
	}
}
