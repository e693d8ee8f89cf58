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

package kv

import "context"

// Store opens the five tables under one configuration and hands out
// transactions. Locking (single writer, multiple readers) and durability
// are entirely the store's responsibility; nothing above this interface
// adds further synchronisation.
type Store interface {
	// BeginRo starts a read transaction. Multiple read transactions may
	// be open concurrently.
	BeginRo(ctx context.Context) (Tx, error)
	// BeginRw starts a write transaction. The store blocks the caller
	// until any other write transaction has committed or rolled back.
	BeginRw(ctx context.Context) (RwTx, error)
	// Checkpoint durably flushes state to disk.
	Checkpoint() error
	// Close releases the store's resources. No transaction may be open.
	Close() error
}

// Tx is a read-only view, consistent for its entire lifetime.
type Tx interface {
	// GetOne returns the value for key in table, or nil if absent.
	GetOne(table string, key []byte) ([]byte, error)
	// Cursor opens an iterator over table, positioned before the first
	// entry. Cursors are borrows: they must not be used after the
	// transaction they came from ends.
	Cursor(table string) (Cursor, error)
	// Rollback ends the transaction, discarding nothing (read
	// transactions never mutate state) but releasing its lock/snapshot.
	Rollback()
}

// RwTx is a write transaction: everything a Tx can do, plus mutation.
// Edits are not visible to other transactions until Commit.
type RwTx interface {
	Tx

	// Put upserts key->value in table.
	Put(table string, key, value []byte) error
	// Delete removes key from table; a no-op if absent.
	Delete(table string, key []byte) error

	// Commit durably applies all edits made through this transaction.
	// On success the transaction is closed; on error it has already
	// been rolled back.
	Commit() error
}

// Cursor walks one table's keys in ascending lexicographic order.
type Cursor interface {
	// Seek positions the cursor at the first key >= lowerBound (pass
	// nil for the very first entry) and returns it, or (nil, nil, nil)
	// if the table has no such entry.
	Seek(lowerBound []byte) (k, v []byte, err error)
	// Next advances one entry and returns it, or (nil, nil, nil) when
	// the table is exhausted.
	Next() (k, v []byte, err error)
	// Close releases the cursor. Safe to call multiple times.
	Close()
}
