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
	"os"
	"path/filepath"
)

// FileBackend lays every register out as one file under Basepath, sharded
// by address-type namespace so a later type-bounded Iterate only has to
// walk one subdirectory. This is the default local Backend — the register
// store equivalent of the teacher's FileStorage, minus the column/shard/log
// split a columnar engine needs and a register store does not.
//
// Layout:
//
//	<Basepath>/state/<namespace>/<hex id>
//	<Basepath>/genesis/<hex genesis id>
type FileBackend struct {
	Basepath string
}

func NewFileBackend(basepath string) *FileBackend {
	return &FileBackend{Basepath: basepath}
}

func (f *FileBackend) pathFor(key Key, namespace string) string {
	switch key.Tag {
	case TagState:
		if namespace == "" {
			namespace = key.ID.Type().Namespace()
		}
		return filepath.Join(f.Basepath, string(TagState), namespace, key.ID.String())
	case TagGenesis:
		return filepath.Join(f.Basepath, string(TagGenesis), key.ID.String())
	default:
		panic("registerstore: unknown key tag " + string(key.Tag))
	}
}

func (f *FileBackend) Read(key Key) ([]byte, error) {
	data, err := os.ReadFile(f.pathFor(key, ""))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (f *FileBackend) Write(key Key, value []byte, namespace string) error {
	path := f.pathFor(key, namespace)
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, value, 0640); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (f *FileBackend) Erase(key Key) error {
	err := os.Remove(f.pathFor(key, ""))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (f *FileBackend) Exists(key Key) bool {
	_, err := os.Stat(f.pathFor(key, ""))
	return err == nil
}

func (f *FileBackend) Index(genesis RegisterID, register RegisterID) error {
	return f.Write(Key{Tag: TagGenesis, ID: genesis}, register[:], "")
}

func (f *FileBackend) Iterate(namespace string, fn func(RegisterID, []byte) bool) error {
	dir := filepath.Join(f.Basepath, string(TagState), namespace)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		var id RegisterID
		if _, err := decodeHexID(entry.Name(), &id); err != nil {
			continue // skip stray files (e.g. leftover .tmp)
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		if !fn(id, data) {
			return nil
		}
	}
	return nil
}

func (f *FileBackend) Close() error {
	return nil
}
