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

// Package index implements the tag-based object index: a write path
// (Insert/RemoveObject/RemoveTagsFromObject), a read path (GetSource/
// HasTag/GetTags/...), and a search executor, all sitting on top of the
// abstract kv.Store.
package index

import (
	"context"
	"errors"
	"fmt"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/mentalblood0/dream/kv"
)

// Index is the entry point: a handle on a kv.Store plus the logging and
// retry policy every transaction is run through.
type Index struct {
	store    kv.Store
	log      *zap.Logger
	maxTries uint64
}

// Option configures an Index at construction.
type Option func(*Index)

// WithLogger overrides the default no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(idx *Index) { idx.log = l }
}

// WithMaxTries overrides the number of attempts Write makes when it hits
// MDBX_BUSY-class contention before giving up.
func WithMaxTries(n uint64) Option {
	return func(idx *Index) { idx.maxTries = n }
}

// New wraps an already-open store. Callers that want MDBX specifically
// should open it via kv/mdbx.Open and pass the result here.
func New(store kv.Store, opts ...Option) *Index {
	idx := &Index{store: store, log: zap.NewNop(), maxTries: 5}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// Close releases the underlying store.
func (idx *Index) Close() error {
	return idx.store.Close()
}

// Checkpoint forces a durable flush of the underlying store.
func (idx *Index) Checkpoint() error {
	return idx.store.Checkpoint()
}

// Read runs fn against a read-only transaction, rolling it back when fn
// returns (readers never commit). Readers are never retried: they only
// ever contend briefly with a writer, and the store's own lock
// acquisition already blocks for that.
func (idx *Index) Read(ctx context.Context, fn func(*Tx) error) error {
	kvTx, err := idx.store.BeginRo(ctx)
	if err != nil {
		return fmt.Errorf("index: begin read: %w", err)
	}
	defer kvTx.Rollback()

	return fn(&Tx{kv: kvTx})
}

// Write runs fn against a read-write transaction, committing on success
// and rolling back otherwise. A failure to begin or to commit the write
// transaction is retried under bounded exponential backoff, re-running fn
// in a fresh transaction, to ride out transient single-writer lock
// contention; an error returned by fn itself is not retried.
func (idx *Index) Write(ctx context.Context, fn func(*WriteTx) error) error {
	var fnErr error

	op := func() error {
		kvTx, err := idx.store.BeginRw(ctx)
		if err != nil {
			return err
		}

		fnErr = fn(newWriteTx(kvTx))
		if fnErr != nil {
			kvTx.Rollback()
			if errors.Is(fnErr, ErrIntegrity) {
				idx.log.Error("index: integrity fault", zap.Error(fnErr))
			}
			return nil // fn errors are not retried, only BeginRw/Commit failures are
		}

		if err := kvTx.Commit(); err != nil {
			return err
		}
		return nil
	}

	retries := idx.maxTries
	if retries > 0 {
		retries-- // WithMaxRetries counts retries after the first attempt
	}
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), retries), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return fmt.Errorf("index: write: %w", err)
	}
	if fnErr != nil {
		return fnErr
	}
	return nil
}
