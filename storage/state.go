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

import "bytes"

// State is an opaque register payload. The store never interprets its
// contents — equality is byte-wise, and that is the only operation the
// store itself performs on it. Parsing (e.g. for conflict diagnostics) is
// delegated to an injected OnConflict callback, never done here.
type State []byte

// Equal reports byte-wise equality. A nil State and an empty State compare
// equal, matching Go's usual slice-equality convention for "no value".
func (s State) Equal(other State) bool {
	return bytes.Equal(s, other)
}

// Clone returns an independent copy so overlays never alias caller buffers.
func (s State) Clone() State {
	if s == nil {
		return nil
	}
	out := make(State, len(s))
	copy(out, s)
	return out
}
