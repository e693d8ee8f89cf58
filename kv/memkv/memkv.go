// Copyright 2024 The Erigon Authors
// This file is part of Erigon.
//
// Erigon is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Erigon is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Erigon. If not, see <http://www.gnu.org/licenses/>.

// Package memkv is an in-memory kv.Store used by unit tests and the
// "in-memory" half of the benchmark harness - a stand-in for MDBX that
// avoids touching disk while preserving the same single-writer/
// multi-reader discipline.
package memkv

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mentalblood0/dream/kv"
)

type table map[string][]byte

func cloneTables(src map[string]table) map[string]table {
	out := make(map[string]table, len(src))
	for name, t := range src {
		nt := make(table, len(t))
		for k, v := range t {
			nt[k] = v
		}
		out[name] = nt
	}
	return out
}

// Store is a map-backed kv.Store. A write transaction mutates a private
// copy of the tables and is only published to readers on Commit, giving
// the same all-or-nothing visibility MDBX provides.
type Store struct {
	mu     sync.RWMutex
	tables map[string]table
}

// New allocates an empty table per name in cfg.
func New(cfg kv.TableCfg) *Store {
	t := make(map[string]table, len(cfg))
	for name := range cfg {
		t[name] = make(table)
	}
	return &Store{tables: t}
}

func (s *Store) BeginRo(_ context.Context) (kv.Tx, error) {
	s.mu.RLock()
	return &tx{store: s, tables: s.tables, release: s.mu.RUnlock}, nil
}

func (s *Store) BeginRw(_ context.Context) (kv.RwTx, error) {
	s.mu.Lock()
	return &rwTx{tx: tx{store: s, tables: cloneTables(s.tables), release: s.mu.Unlock}}, nil
}

func (s *Store) Checkpoint() error { return nil }

func (s *Store) Close() error { return nil }

type tx struct {
	store   *Store
	tables  map[string]table
	release func()
	done    bool
}

func (t *tx) table(name string) (table, error) {
	tb, ok := t.tables[name]
	if !ok {
		return nil, fmt.Errorf("memkv: unknown table %q", name)
	}
	return tb, nil
}

func (t *tx) GetOne(tableName string, key []byte) ([]byte, error) {
	tb, err := t.table(tableName)
	if err != nil {
		return nil, err
	}
	v, ok := tb[string(key)]
	if !ok {
		return nil, nil
	}
	return v, nil
}

func (t *tx) Cursor(tableName string) (kv.Cursor, error) {
	tb, err := t.table(tableName)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(tb))
	for k := range tb {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return &cursor{data: tb, keys: keys, idx: -1}, nil
}

func (t *tx) Rollback() {
	if t.done {
		return
	}
	t.done = true
	t.release()
}

type rwTx struct {
	tx
}

func (t *rwTx) Put(tableName string, key, value []byte) error {
	tb, err := t.table(tableName)
	if err != nil {
		return err
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	tb[string(key)] = cp
	return nil
}

func (t *rwTx) Delete(tableName string, key []byte) error {
	tb, err := t.table(tableName)
	if err != nil {
		return err
	}
	delete(tb, string(key))
	return nil
}

func (t *rwTx) Commit() error {
	if t.done {
		return nil
	}
	t.done = true
	t.store.tables = t.tables
	t.release()
	return nil
}

type cursor struct {
	data table
	keys []string
	idx  int
}

func (c *cursor) Seek(lowerBound []byte) ([]byte, []byte, error) {
	if lowerBound == nil {
		c.idx = 0
	} else {
		lb := string(lowerBound)
		c.idx = sort.Search(len(c.keys), func(i int) bool { return c.keys[i] >= lb })
	}
	return c.current()
}

func (c *cursor) Next() ([]byte, []byte, error) {
	if c.idx < 0 {
		c.idx = 0
	} else {
		c.idx++
	}
	return c.current()
}

func (c *cursor) current() ([]byte, []byte, error) {
	if c.idx < 0 || c.idx >= len(c.keys) {
		return nil, nil, nil
	}
	k := c.keys[c.idx]
	return []byte(k), c.data[k], nil
}

func (c *cursor) Close() {}
