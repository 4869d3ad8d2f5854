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
	"log"

	"github.com/google/uuid"
)

// OnConflict is invoked by MemoryCommit whenever an erasure witness
// disagrees with the current commit-layer value. The store parses nothing
// about the payload itself — callers that want a balance field or similar
// in the log line supply their own formatter, keeping the store agnostic
// of state schema.
type OnConflict func(id RegisterID, commitState, witness State)

// defaultOnConflict writes the "CONFLICTED STATE <id-prefix>" line the
// source database emits, tagged with a session id so concurrent conflicts
// across stores can be told apart in aggregated logs.
func defaultOnConflict(sessionID uuid.UUID) OnConflict {
	return func(id RegisterID, commitState, witness State) {
		log.Printf("registerstore[%s]: CONFLICTED STATE %s commit=%x witness=%x",
			sessionID, id.Prefix(), []byte(commitState), []byte(witness))
	}
}
