//go:build ceph

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
	"path"
	"strings"
	"sync"

	"github.com/ceph/go-ceph/rados"
)

// CephConfig configures a RADOS-pool Backend. Build with -tags=ceph.
type CephConfig struct {
	UserName    string // e.g. "client.admin"
	ClusterName string // often "ceph"
	ConfFile    string // optional
	Pool        string
	Prefix      string
}

// CephBackend stores each register as one RADOS object, keyed the same way
// as FileBackend (<prefix>/state/<namespace>/<hex id>,
// <prefix>/genesis/<hex id>) — RADOS has no directory structure, so the
// path is just the object name.
type CephBackend struct {
	cfg CephConfig

	mu    sync.Mutex
	conn  *rados.Conn
	ioctx *rados.IOContext
	state SharedState
}

func NewCephBackend(cfg CephConfig) *CephBackend {
	return &CephBackend{cfg: cfg}
}

// GetState satisfies SharedResource: a CephBackend holds no open RADOS
// connection until the first operation touches it.
func (c *CephBackend) GetState() SharedState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *CephBackend) GetRead() func() {
	_ = c.ensureOpen()
	return func() {}
}

func (c *CephBackend) GetExclusive() func() {
	_ = c.ensureOpen()
	return func() {}
}

func (c *CephBackend) ensureOpen() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == SHARED {
		return nil
	}

	conn, err := rados.NewConnWithClusterAndUser(c.cfg.ClusterName, c.cfg.UserName)
	if err != nil {
		return err
	}
	if c.cfg.ConfFile != "" {
		if err := conn.ReadConfigFile(c.cfg.ConfFile); err != nil {
			return err
		}
	} else {
		_ = conn.ReadDefaultConfigFile()
	}
	if err := conn.Connect(); err != nil {
		return err
	}
	ioctx, err := conn.OpenIOContext(c.cfg.Pool)
	if err != nil {
		conn.Shutdown()
		return err
	}
	c.conn = conn
	c.ioctx = ioctx
	c.state = SHARED
	return nil
}

var _ SharedResource = (*CephBackend)(nil)

func (c *CephBackend) object(key Key, namespace string) string {
	prefix := strings.TrimSuffix(c.cfg.Prefix, "/")
	switch key.Tag {
	case TagState:
		if namespace == "" {
			namespace = key.ID.Type().Namespace()
		}
		return path.Join(prefix, "state", namespace, key.ID.String())
	case TagGenesis:
		return path.Join(prefix, "genesis", key.ID.String())
	default:
		panic("registerstore: unknown key tag " + string(key.Tag))
	}
}

func (c *CephBackend) Read(key Key) ([]byte, error) {
	if err := c.ensureOpen(); err != nil {
		return nil, err
	}
	obj := c.object(key, "")
	stat, err := c.ioctx.Stat(obj)
	if err != nil {
		return nil, ErrNotFound
	}
	data := make([]byte, stat.Size)
	n, err := c.ioctx.Read(obj, data, 0)
	if err != nil {
		return nil, err
	}
	return data[:n], nil
}

func (c *CephBackend) Write(key Key, value []byte, namespace string) error {
	if err := c.ensureOpen(); err != nil {
		return err
	}
	return c.ioctx.WriteFull(c.object(key, namespace), value)
}

func (c *CephBackend) Erase(key Key) error {
	if err := c.ensureOpen(); err != nil {
		return err
	}
	err := c.ioctx.Delete(c.object(key, ""))
	if err != nil && !strings.Contains(err.Error(), "not exist") {
		return err
	}
	return nil
}

func (c *CephBackend) Exists(key Key) bool {
	if err := c.ensureOpen(); err != nil {
		return false
	}
	_, err := c.ioctx.Stat(c.object(key, ""))
	return err == nil
}

func (c *CephBackend) Index(genesis RegisterID, register RegisterID) error {
	return c.Write(Key{Tag: TagGenesis, ID: genesis}, register[:], "")
}

// Iterate is unsupported: listing RADOS objects by prefix efficiently
// requires pool-wide iteration, which would make a single Read's cost
// model unpredictable; see SPEC_FULL.md §C.5.
func (c *CephBackend) Iterate(namespace string, fn func(RegisterID, []byte) bool) error {
	return ErrUnsupported
}

func (c *CephBackend) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != SHARED {
		return nil
	}
	c.ioctx.Destroy()
	c.conn.Shutdown()
	c.state = COLD
	return nil
}
