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
	"encoding/json"
	"log"
	"os"
	"sync"

	"github.com/dc0d/onexit"
	"github.com/docker/go-units"
	"github.com/fsnotify/fsnotify"
)

// Config is the construction-time configuration for a RegisterStore. Unlike
// the teacher's package-global Settings, this is a plain value the caller
// owns — a store is no longer a singleton.
type Config struct {
	// Flags is the default mode flag new callers observe when they don't
	// specify one explicitly (see the open question on ReadTrust in §9).
	Flags byte
	// Buckets is the backing hash bucket count. It is kept with the rest
	// of the Config; none of the Backend implementations in this package
	// takes a bucket count, so it does not reach them.
	Buckets uint
	// CacheSize budgets the read-through cache in bytes.
	CacheSize uint
}

// ParseCacheSize accepts the teacher's human-readable size convention
// ("256MB", "2GiB", plain bytes) via docker/go-units, the same parser the
// teacher would use for its ShardSize setting.
func ParseCacheSize(s string) (uint, error) {
	n, err := units.RAMInBytes(s)
	if err != nil {
		return 0, err
	}
	return uint(n), nil
}

// ConfigWatcher re-reads a JSON config file on write and applies the safe,
// live-reconfigurable fields (cache budget, default flag) to a running
// store without a restart — the file-backed analogue of the teacher's
// ChangeSettings, which mutated a package-global from inside the SCM
// console instead of from a watched file.
type ConfigWatcher struct {
	path    string
	watcher *fsnotify.Watcher
	apply   func(Config)

	mu  sync.Mutex
	cur Config
}

// NewConfigWatcher loads path once synchronously, then watches it for
// writes, calling apply with every successfully parsed update. It
// registers an onexit hook to close the underlying fsnotify watcher, the
// same shutdown-hook pattern the teacher uses in InitSettings for its
// trace file.
func NewConfigWatcher(path string, apply func(Config)) (*ConfigWatcher, error) {
	cw := &ConfigWatcher{path: path, apply: apply}
	if err := cw.reload(); err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(path); err != nil {
		w.Close()
		return nil, err
	}
	cw.watcher = w

	go cw.run()
	onexit.Register(func() { cw.watcher.Close() })

	return cw, nil
}

func (cw *ConfigWatcher) reload() error {
	data, err := os.ReadFile(cw.path)
	if err != nil {
		return err
	}
	var raw struct {
		Flags     byte   `json:"flags"`
		Buckets   uint   `json:"buckets"`
		CacheSize string `json:"cacheSize"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	size, err := ParseCacheSize(raw.CacheSize)
	if err != nil {
		return err
	}

	cw.mu.Lock()
	cw.cur = Config{Flags: raw.Flags, Buckets: raw.Buckets, CacheSize: size}
	cfg := cw.cur
	cw.mu.Unlock()

	if cw.apply != nil {
		cw.apply(cfg)
	}
	return nil
}

func (cw *ConfigWatcher) run() {
	for {
		select {
		case ev, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := cw.reload(); err != nil {
				log.Printf("registerstore: config reload %s failed: %v", cw.path, err)
			}
		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("registerstore: config watch error: %v", err)
		}
	}
}

// Current returns the most recently applied configuration.
func (cw *ConfigWatcher) Current() Config {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	return cw.cur
}

// Close stops watching. Safe to call even if NewConfigWatcher's onexit
// hook also fires later.
func (cw *ConfigWatcher) Close() error {
	if cw.watcher == nil {
		return nil
	}
	return cw.watcher.Close()
}
