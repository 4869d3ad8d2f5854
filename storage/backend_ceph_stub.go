//go:build !ceph

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

// CephConfig is a stub when Ceph support is not compiled in.
// Build with -tags=ceph to enable Ceph support.
type CephConfig struct {
	UserName    string
	ClusterName string
	ConfFile    string
	Pool        string
	Prefix      string
}

// CephBackend is a stub when Ceph support is not compiled in.
type CephBackend struct{}

func NewCephBackend(cfg CephConfig) *CephBackend {
	panic("Ceph support not compiled in. Build with: go build -tags=ceph")
}

func (c *CephBackend) Read(key Key) ([]byte, error) { panic("Ceph support not compiled in") }
func (c *CephBackend) Write(key Key, value []byte, namespace string) error {
	panic("Ceph support not compiled in")
}
func (c *CephBackend) Erase(key Key) error  { panic("Ceph support not compiled in") }
func (c *CephBackend) Exists(key Key) bool  { panic("Ceph support not compiled in") }
func (c *CephBackend) Index(genesis, register RegisterID) error {
	panic("Ceph support not compiled in")
}
func (c *CephBackend) Iterate(namespace string, fn func(RegisterID, []byte) bool) error {
	panic("Ceph support not compiled in")
}
func (c *CephBackend) Close() error { panic("Ceph support not compiled in") }

func (c *CephBackend) GetState() SharedState { panic("Ceph support not compiled in") }
func (c *CephBackend) GetRead() func()       { panic("Ceph support not compiled in") }
func (c *CephBackend) GetExclusive() func()  { panic("Ceph support not compiled in") }

var _ SharedResource = (*CephBackend)(nil)
