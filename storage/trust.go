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
	"github.com/google/btree"
)

// trustDomain is the domain-separation tag deriveRegisterID uses for trust
// registers: register = sha256("trust" || genesis || TRUST-type-byte).
const trustDomain = "trust"

// DeriveTrustRegister returns the register id holding genesis's trust
// account, matching the source database's derivation formula exactly
// (SPEC_FULL.md §C.4).
func DeriveTrustRegister(genesis RegisterID) RegisterID {
	return deriveRegisterID(trustDomain, genesis[:], TRUST)
}

// trustIndexItem is a google/btree item caching genesis -> derived trust
// register id lookups in front of the backend's genesis index, avoiding a
// backend round trip for registers that have already been resolved once —
// the same role an in-process secondary index plays for the teacher's own
// catalog lookups, generalized from table names to genesis ids.
type trustIndexItem struct {
	genesis  RegisterID
	register RegisterID
}

func (a trustIndexItem) Less(than btree.Item) bool {
	b := than.(trustIndexItem)
	for i := range a.genesis {
		if a.genesis[i] != b.genesis[i] {
			return a.genesis[i] < b.genesis[i]
		}
	}
	return false
}

// IndexTrust implements spec §4.6: records the genesis -> register mapping
// in both the backend's secondary index and the in-process cache.
func (s *RegisterStore) IndexTrust(genesis, register RegisterID) error {
	if err := s.backend.Index(genesis, register); err != nil {
		return err
	}
	s.trustMu.Lock()
	s.trustIndex.ReplaceOrInsert(trustIndexItem{genesis: genesis, register: register})
	s.trustMu.Unlock()
	return nil
}

// HasTrust implements spec §4.6, consulting the in-process trust index
// before a backend round trip.
func (s *RegisterStore) HasTrust(genesis RegisterID) bool {
	if s.lookupTrustIndex(genesis) {
		return true
	}
	return s.backend.Exists(Key{Tag: TagGenesis, ID: genesis})
}

// lookupTrustIndex reports whether genesis has a cached index entry.
func (s *RegisterStore) lookupTrustIndex(genesis RegisterID) bool {
	s.trustMu.Lock()
	defer s.trustMu.Unlock()
	return s.trustIndex.Has(trustIndexItem{genesis: genesis})
}

// WriteTrust implements spec §4.6: persists the authoritative trust
// account and drops any earlier speculative commit-layer overlay for it.
// "default-flag" in the source is BLOCK here — WriteTrust's whole point is
// durable persistence of the on-chain trust account, not mempool staging.
func (s *RegisterStore) WriteTrust(genesis RegisterID, state State) error {
	register := DeriveTrustRegister(genesis)
	s.commit.delete(register)
	return s.WriteState(register, state, BLOCK)
}

// ReadTrust implements spec §4.6. The source consults overlays using an
// instance-level flag whose mutation lifecycle is unclear (spec §9 open
// question); this store resolves it as the store's currently configured
// default mode flag (live-reconfigurable via ApplyConfig) rather than a
// call-time parameter (DESIGN.md records this decision).
func (s *RegisterStore) ReadTrust(genesis RegisterID) (State, error) {
	register := DeriveTrustRegister(genesis)
	if st, err := s.ReadState(register, s.flags()); err == nil {
		return st, nil
	}
	// A cached index entry means IndexTrust already confirmed this genesis
	// maps to register; skip the extra genesis-key backend round trip and
	// read the register's state directly.
	if s.lookupTrustIndex(genesis) {
		return s.readBacking(register)
	}
	data, err := s.backend.Read(Key{Tag: TagGenesis, ID: genesis})
	if err != nil {
		return nil, err
	}
	return State(data), nil
}

// EraseTrust implements spec §4.6: erases only the genesis index entry,
// both in the backend and in the in-process trust index cache.
// The derived register's state entry is intentionally untouched — the
// source treats the genesis index as the primary record (spec §9 open
// question, preserved as-is rather than guessed at).
func (s *RegisterStore) EraseTrust(genesis RegisterID) error {
	if err := s.backend.Erase(Key{Tag: TagGenesis, ID: genesis}); err != nil {
		return err
	}
	s.trustMu.Lock()
	s.trustIndex.Delete(trustIndexItem{genesis: genesis})
	s.trustMu.Unlock()
	return nil
}
