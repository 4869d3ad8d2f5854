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

/*

register store

RegisterStore composes the three visibility tiers spec'd across commit.go
(the shared commit overlay), scope.go (per-goroutine memory/miner overlays)
and the Backend interface (the durable tier). Every public operation takes
a Mode, which selects which tiers participate — see mode.go for a short
note on each mode; the methods below define the per-operation behavior.

*/

import (
	"sync"
	"sync/atomic"

	"github.com/dc0d/onexit"
	"github.com/google/btree"
	"github.com/google/uuid"
)

// RegisterStore is the public facade. Construction wires a Backend and a
// Config; the returned value is safe for concurrent use by many goroutines,
// each of which may hold its own memory/miner scope.
type RegisterStore struct {
	backend Backend
	commit  *commitOverlay
	scopes  *scopeRegistry
	cache   atomic.Pointer[readCache]

	trustMu    sync.Mutex
	trustIndex *btree.BTree

	cfgMu      sync.RWMutex
	cfg        Config
	onConflict OnConflict
	sessionID  uuid.UUID
}

// NewRegisterStore wires backend behind the three-tier overlay described in
// the package. onConflict may be nil, in which case conflicts are logged
// via the default log.Printf formatter.
func NewRegisterStore(backend Backend, cfg Config, onConflict OnConflict) *RegisterStore {
	sessionID := newUUID()
	if onConflict == nil {
		onConflict = defaultOnConflict(sessionID)
	}
	store := &RegisterStore{
		backend:    backend,
		commit:     newCommitOverlay(),
		scopes:     newScopeRegistry(),
		trustIndex: btree.New(32),
		cfg:        cfg,
		onConflict: onConflict,
		sessionID:  sessionID,
	}
	store.cache.Store(newReadCache(backend, cfg.CacheSize))
	onexit.Register(func() { store.backend.Close() })
	return store
}

// ApplyConfig live-reconfigures the store from a ConfigWatcher update:
// the default mode flag takes effect immediately, and a changed cache
// budget swaps in a fresh read-through cache without dropping the old
// one mid-read (readers hold whichever *readCache they already loaded).
func (s *RegisterStore) ApplyConfig(cfg Config) {
	s.cfgMu.Lock()
	changed := cfg.CacheSize != s.cfg.CacheSize
	s.cfg = cfg
	s.cfgMu.Unlock()

	if changed {
		s.cache.Store(newReadCache(s.backend, cfg.CacheSize))
	}
}

// flags returns the store's currently configured default mode flag.
func (s *RegisterStore) flags() Mode {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return Mode(s.cfg.Flags)
}

// Close releases the backend's resources directly, for callers that
// shut a store down before process exit rather than relying on the
// onexit hook registered at construction.
func (s *RegisterStore) Close() error {
	return s.backend.Close()
}

func stateKey(id RegisterID) Key { return Key{Tag: TagState, ID: id} }

// WriteState implements spec §4.2.
func (s *RegisterStore) WriteState(id RegisterID, state State, mode Mode) error {
	switch mode {
	case MEMPOOL:
		if mem := s.scopes.get(scopeMemory); mem != nil {
			mem.set(id, state.Clone())
			return nil
		}
		s.commit.set(id, state.Clone())
		return nil

	case MINER:
		if miner := s.scopes.get(scopeMiner); miner != nil {
			miner.set(id, state.Clone())
		}
		// No scope: silently succeeds, matching the source's advisory
		// miner-write behavior (spec §9 open question, kept as-is).
		return nil

	case BLOCK:
		s.flushBlockOverlay(id, state)
		key := stateKey(id)
		if err := s.backend.Write(key, state, id.Type().Namespace()); err != nil {
			return err
		}
		s.cache.Load().invalidate(key)
		return nil

	case ERASE:
		s.commit.withLock(func(c *overlayMap) {
			if _, ok := c.get(id); !ok {
				return
			}
			if mem := s.scopes.get(scopeMemory); mem != nil {
				mem.eraseWithWitness(id, state)
			} else {
				c.delete(id)
			}
		})
		return nil

	default:
		return nil
	}
}

// flushBlockOverlay performs the commit-layer cleanup shared by BLOCK
// writes (I5, guarded by value equality) — the equality check is the only
// difference from ERASE's unconditional cleanup.
func (s *RegisterStore) flushBlockOverlay(id RegisterID, state State) {
	s.commit.withLock(func(c *overlayMap) {
		cur, ok := c.get(id)
		if !ok || !cur.Equal(state) {
			return
		}
		if mem := s.scopes.get(scopeMemory); mem != nil {
			mem.delete(id)
			mem.eraseWithWitness(id, state)
		} else {
			c.delete(id)
		}
	})
}

// ReadState implements spec §4.3.
func (s *RegisterStore) ReadState(id RegisterID, mode Mode) (State, error) {
	switch mode {
	case MEMPOOL:
		if mem := s.scopes.get(scopeMemory); mem != nil {
			if st, found := mem.get(id); found {
				return st, nil
			}
		}
		if st, found := s.commit.get(id); found {
			return st, nil
		}
		return s.readBacking(id)

	case MINER:
		if miner := s.scopes.get(scopeMiner); miner != nil {
			if st, found := miner.get(id); found {
				return st, nil
			}
		}
		return s.readBacking(id)

	default: // BLOCK, ERASE: fall through directly to backing
		return s.readBacking(id)
	}
}

func (s *RegisterStore) readBacking(id RegisterID) (State, error) {
	data, err := s.cache.Load().Read(stateKey(id))
	if err != nil {
		return nil, err
	}
	return State(data), nil
}

// EraseState implements spec §4.4.
func (s *RegisterStore) EraseState(id RegisterID, mode Mode) error {
	switch mode {
	case MEMPOOL:
		if mem := s.scopes.get(scopeMemory); mem != nil {
			mem.delete(id)
			s.commit.withLock(func(c *overlayMap) {
				if cur, found := c.get(id); found {
					mem.eraseWithWitness(id, cur)
				}
			})
			return nil
		}
		s.commit.delete(id)
		return nil

	case BLOCK:
		s.commit.withLock(func(c *overlayMap) {
			cur, ok := c.get(id)
			if !ok {
				return
			}
			if mem := s.scopes.get(scopeMemory); mem != nil {
				mem.delete(id)
				mem.eraseWithWitness(id, cur)
			} else {
				c.delete(id)
			}
		})
		key := stateKey(id)
		if err := s.backend.Erase(key); err != nil {
			return err
		}
		s.cache.Load().invalidate(key)
		return nil

	case ERASE:
		s.commit.withLock(func(c *overlayMap) {
			cur, ok := c.get(id)
			if !ok {
				return
			}
			if mem := s.scopes.get(scopeMemory); mem != nil {
				mem.delete(id)
				mem.eraseWithWitness(id, cur)
			} else {
				c.delete(id)
			}
		})
		return nil

	default:
		return nil
	}
}

// HasState implements spec §4.5.
func (s *RegisterStore) HasState(id RegisterID, mode Mode) bool {
	switch mode {
	case MEMPOOL:
		if mem := s.scopes.get(scopeMemory); mem != nil {
			if mem.has(id) {
				return true
			}
		}
		if s.commit.has(id) {
			return true
		}
		return s.backend.Exists(stateKey(id))

	case MINER:
		if miner := s.scopes.get(scopeMiner); miner != nil {
			if miner.has(id) {
				return true
			}
		}
		return s.backend.Exists(stateKey(id))

	default:
		return s.backend.Exists(stateKey(id))
	}
}

// MemoryBegin implements spec §4.7.
func (s *RegisterStore) MemoryBegin(mode Mode) {
	if mode == MINER {
		s.scopes.begin(scopeMiner)
		return
	}
	s.scopes.begin(scopeMemory)
}

// MemoryRelease implements spec §4.7.
func (s *RegisterStore) MemoryRelease(mode Mode) {
	if mode == MINER {
		s.scopes.release(scopeMiner)
		return
	}
	s.scopes.release(scopeMemory)
}

// MemoryCommit implements spec §4.7 — merges the calling goroutine's
// memory overlay into commit, detecting conflicts via the erasure witness
// and reporting them through onConflict rather than an error return.
func (s *RegisterStore) MemoryCommit() {
	mem := s.scopes.get(scopeMemory)
	if mem == nil {
		return
	}

	s.commit.withLock(func(c *overlayMap) {
		for id, state := range mem.states {
			c.set(id, state)
		}
		for id, witness := range mem.erasures {
			cur, found := c.get(id)
			if !found {
				continue
			}
			if cur.Equal(witness) {
				c.delete(id)
				continue
			}
			s.onConflict(id, cur, witness)
		}
	})

	s.scopes.release(scopeMemory)
}
