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

// Package mdbx backs kv.Store with github.com/erigontech/mdbx-go, the same
// engine erigon-lib/kv/mdbx builds on. This is the only package in the
// module that imports mdbx-go directly; everything else programs against
// the kv interfaces.
package mdbx

import (
	"context"
	"fmt"
	"os"

	"github.com/erigontech/mdbx-go/mdbx"

	"github.com/mentalblood0/dream/internal/mathutil"
	"github.com/mentalblood0/dream/kv"
)

// Geometry controls MDBX's map-size growth, mirroring the parameters
// erigon exposes per datadir.
type Geometry struct {
	SizeLower      int
	SizeNow        int
	SizeUpper      int
	GrowthStep     int
	ShrinkThreshold int
	PageSize       int
}

// DefaultGeometry is a conservative starting point suitable for the index's
// small, fixed-width keys.
var DefaultGeometry = Geometry{
	SizeLower:       4 * 1024 * 1024,
	SizeNow:         4 * 1024 * 1024,
	SizeUpper:       2 * 1024 * 1024 * 1024,
	GrowthStep:      16 * 1024 * 1024,
	ShrinkThreshold: 0,
	PageSize:        -1,
}

// Store is the MDBX-backed kv.Store.
type Store struct {
	env  *mdbx.Env
	dbis map[string]mdbx.DBI
}

// Open creates (if necessary) the directory at path and opens one MDBX
// environment with a named sub-database per table in cfg.
func Open(path string, cfg kv.TableCfg, geom Geometry) (*Store, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("mdbx: mkdir %s: %w", path, err)
	}
	env, err := mdbx.NewEnv()
	if err != nil {
		return nil, fmt.Errorf("mdbx: new env: %w", err)
	}
	if err := env.SetMaxDBs(len(cfg) + 1); err != nil {
		return nil, fmt.Errorf("mdbx: set max dbs: %w", err)
	}
	sizeNow := geom.SizeNow
	if geom.PageSize > 0 {
		// Round up to a whole number of pages; MDBX otherwise silently
		// rounds down, which can leave SizeNow smaller than SizeLower.
		sizeNow = mathutil.CeilDiv(sizeNow, geom.PageSize) * geom.PageSize
	}
	if err := env.SetGeometry(geom.SizeLower, sizeNow, geom.SizeUpper, geom.GrowthStep, geom.ShrinkThreshold, geom.PageSize); err != nil {
		return nil, fmt.Errorf("mdbx: set geometry: %w", err)
	}
	if err := env.Open(path, 0, 0o644); err != nil {
		return nil, fmt.Errorf("mdbx: open %s: %w", path, err)
	}

	s := &Store{env: env, dbis: make(map[string]mdbx.DBI, len(cfg))}
	if err := env.Update(func(txn *mdbx.Txn) error {
		for name := range cfg {
			dbi, err := txn.OpenDBISimple(name, mdbx.Create)
			if err != nil {
				return fmt.Errorf("mdbx: open table %s: %w", name, err)
			}
			s.dbis[name] = dbi
		}
		return nil
	}); err != nil {
		env.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) dbi(table string) (mdbx.DBI, error) {
	dbi, ok := s.dbis[table]
	if !ok {
		return 0, fmt.Errorf("mdbx: unknown table %q", table)
	}
	return dbi, nil
}

func (s *Store) BeginRo(_ context.Context) (kv.Tx, error) {
	txn, err := s.env.BeginTxn(nil, mdbx.Readonly)
	if err != nil {
		return nil, fmt.Errorf("mdbx: begin ro: %w", err)
	}
	return &tx{store: s, txn: txn}, nil
}

func (s *Store) BeginRw(_ context.Context) (kv.RwTx, error) {
	txn, err := s.env.BeginTxn(nil, 0)
	if err != nil {
		return nil, fmt.Errorf("mdbx: begin rw: %w", err)
	}
	return &rwTx{tx: tx{store: s, txn: txn}}, nil
}

// Checkpoint forces a durable flush, as used by the benchmark harness
// before its "on-disk" phase and by the CLI's `checkpoint` command.
func (s *Store) Checkpoint() error {
	if err := s.env.Sync(true, false); err != nil {
		return fmt.Errorf("mdbx: sync: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	s.env.Close()
	return nil
}

type tx struct {
	store *Store
	txn   *mdbx.Txn
}

func (t *tx) GetOne(table string, key []byte) ([]byte, error) {
	dbi, err := t.store.dbi(table)
	if err != nil {
		return nil, err
	}
	v, err := t.txn.Get(dbi, key)
	if err != nil {
		if mdbx.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("mdbx: get %s/%x: %w", table, key, err)
	}
	return v, nil
}

func (t *tx) Cursor(table string) (kv.Cursor, error) {
	dbi, err := t.store.dbi(table)
	if err != nil {
		return nil, err
	}
	c, err := t.txn.OpenCursor(dbi)
	if err != nil {
		return nil, fmt.Errorf("mdbx: open cursor %s: %w", table, err)
	}
	return &cursor{table: table, c: c}, nil
}

func (t *tx) Rollback() {
	t.txn.Abort()
}

type rwTx struct {
	tx
}

func (t *rwTx) Put(table string, key, value []byte) error {
	dbi, err := t.store.dbi(table)
	if err != nil {
		return err
	}
	if err := t.txn.Put(dbi, key, value, 0); err != nil {
		return fmt.Errorf("mdbx: put %s/%x: %w", table, key, err)
	}
	return nil
}

func (t *rwTx) Delete(table string, key []byte) error {
	dbi, err := t.store.dbi(table)
	if err != nil {
		return err
	}
	if err := t.txn.Del(dbi, key, nil); err != nil {
		if mdbx.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("mdbx: delete %s/%x: %w", table, key, err)
	}
	return nil
}

func (t *rwTx) Commit() error {
	if err := t.txn.Commit(); err != nil {
		return fmt.Errorf("mdbx: commit: %w", err)
	}
	return nil
}

type cursor struct {
	table string
	c     *mdbx.Cursor
}

func (c *cursor) Seek(lowerBound []byte) ([]byte, []byte, error) {
	var k, v []byte
	var err error
	if lowerBound == nil {
		k, v, err = c.c.Get(nil, nil, mdbx.First)
	} else {
		k, v, err = c.c.Get(lowerBound, nil, mdbx.SetRange)
	}
	if err != nil {
		if mdbx.IsNotFound(err) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("mdbx: seek %s: %w", c.table, err)
	}
	return k, v, nil
}

func (c *cursor) Next() ([]byte, []byte, error) {
	k, v, err := c.c.Get(nil, nil, mdbx.Next)
	if err != nil {
		if mdbx.IsNotFound(err) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("mdbx: next %s: %w", c.table, err)
	}
	return k, v, nil
}

func (c *cursor) Close() {
	c.c.Close()
}
