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
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

var errInvalidRegisterID = errors.New("registerstore: invalid register id encoding")

// AddressType tags the kind of register a RegisterID points to. It is the
// only part of the id the store itself interprets: it selects the backend's
// secondary-key namespace used for type-bounded iteration (see Backend.Iterate).
type AddressType byte

const (
	ACCOUNT AddressType = iota
	APPEND
	CRYPTO
	NAME
	NAMESPACE
	OBJECT
	RAW
	READONLY
	TOKEN
	TRUST
)

// Namespace returns the backend secondary-key hint for this address type.
// Any value outside the known set maps to "NONE", matching the source
// register database's catch-all behavior.
func (a AddressType) Namespace() string {
	switch a {
	case ACCOUNT:
		return "account"
	case APPEND:
		return "append"
	case CRYPTO:
		return "crypto"
	case NAME:
		return "name"
	case NAMESPACE:
		return "namespace"
	case OBJECT:
		return "object"
	case RAW:
		return "raw"
	case READONLY:
		return "readonly"
	case TOKEN:
		return "token"
	case TRUST:
		return "trust"
	default:
		return "NONE"
	}
}

func (a AddressType) String() string {
	return a.Namespace()
}

// RegisterID is a 256-bit register identifier with the address type
// embedded in its last byte. Equality and map-keying use plain value
// semantics — a RegisterID is a comparable array, not a pointer.
type RegisterID [32]byte

// Type extracts the embedded address type.
func (id RegisterID) Type() AddressType {
	return AddressType(id[31])
}

// WithType returns a copy of id with the address type byte overwritten.
func (id RegisterID) WithType(t AddressType) RegisterID {
	out := id
	out[31] = byte(t)
	return out
}

func (id RegisterID) String() string {
	return hex.EncodeToString(id[:])
}

// Prefix returns a short human-readable fragment for log lines, matching
// the source database's "CONFLICTED STATE <id-prefix>" convention.
func (id RegisterID) Prefix() string {
	return hex.EncodeToString(id[:6])
}

// decodeHexID parses a hex-encoded RegisterID, as written by RegisterID.String.
func decodeHexID(s string, out *RegisterID) (RegisterID, error) {
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != len(out) {
		if err == nil {
			err = errInvalidRegisterID
		}
		return RegisterID{}, err
	}
	copy(out[:], b)
	return *out, nil
}

// deriveRegisterID computes a deterministic RegisterID from a domain
// separation tag and arbitrary key material, with t embedded as the
// address type byte. Used for trust register derivation:
// deriveRegisterID("trust", genesis[:], TRUST).
func deriveRegisterID(domain string, key []byte, t AddressType) RegisterID {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write(key)
	h.Write([]byte{byte(t)})
	var id RegisterID
	copy(id[:], h.Sum(nil))
	id[31] = byte(t)
	return id
}
