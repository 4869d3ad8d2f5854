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

import "errors"

/*

backend interface

The Register Store is backend-agnostic: any durable key/value engine that
can read, write, erase and test existence for a (tag, id) key can stand in
for it. The teacher's PersistenceEngine played the same role for column
shards and logs; this interface covers the far smaller surface a register
store actually needs — single-key blobs, no column/log split.

Keys always carry one of two tags:
 - "state":   (tag="state", id=register id)   → that register's State
 - "genesis": (tag="genesis", id=genesis id)  → the trust index entry

*/

// ErrNotFound is returned by Read when the key does not exist.
var ErrNotFound = errors.New("registerstore: not found")

// ErrUnsupported is returned by Iterate on backends that cannot provide
// type-bounded iteration (e.g. S3 without a secondary listing index).
var ErrUnsupported = errors.New("registerstore: operation not supported by this backend")

// Tag selects which namespace a backend key belongs to.
type Tag string

const (
	TagState   Tag = "state"
	TagGenesis Tag = "genesis"
)

// Key addresses a single backend entry.
type Key struct {
	Tag Tag
	ID  RegisterID
}

// Backend is the durable key-value engine the Register Store sits on top
// of. Every method that can fail due to I/O returns an error the Go way;
// none of them panic for an ordinary missing key — that is ErrNotFound,
// not a failure.
type Backend interface {
	// Read returns the bytes stored at key, or ErrNotFound.
	Read(key Key) ([]byte, error)
	// Write stores value at key. namespace is the address-type hint
	// (AddressType.Namespace()) so backends that support type-bounded
	// iteration can lay data out accordingly; backends that don't can
	// ignore it.
	Write(key Key, value []byte, namespace string) error
	// Erase removes key. Erasing a missing key is not an error.
	Erase(key Key) error
	// Exists is a cheap existence probe, never equivalent to Read-and-
	// discard for a backend that can do better (e.g. a HEAD request).
	Exists(key Key) bool
	// Index records a secondary mapping tying a genesis id to the
	// derived trust register id, for backends that maintain one
	// in addition to the raw state entry.
	Index(genesis RegisterID, register RegisterID) error
	// Iterate walks all state entries tagged with namespace, calling fn
	// for each until fn returns false or entries are exhausted. Returns
	// ErrUnsupported if the backend cannot do type-bounded iteration.
	Iterate(namespace string, fn func(RegisterID, []byte) bool) error
	// Close releases any resources (file handles, connections) held by
	// the backend. Safe to call multiple times.
	Close() error
}
