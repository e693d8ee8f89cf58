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

package index

import (
	"fmt"

	"github.com/mentalblood0/dream/id"
	"github.com/mentalblood0/dream/kv"
)

// WriteTx is a read-write view over the five tables. It embeds Tx so every
// read operation is available during a write.
type WriteTx struct {
	Tx
	rw kv.RwTx
}

func newWriteTx(rw kv.RwTx) *WriteTx {
	return &WriteTx{Tx: Tx{kv: rw}, rw: rw}
}

// putSourceIfRaw records x's preimage in id→source when x carries one.
// Raw objects and tags are the only ones that do; re-putting an existing
// entry with the same bytes is harmless.
func (tx *WriteTx) putSourceIfRaw(x id.Object) error {
	src, ok := x.Source()
	if !ok {
		return nil
	}
	if err := tx.rw.Put(kv.IDToSource, x.ID().Bytes(), src); err != nil {
		return err
	}
	return nil
}

// incrementCount bumps table[key] by one, creating it at 1 if absent.
func (tx *WriteTx) incrementCount(table string, key id.ID) error {
	n, err := tx.getCount(table, key)
	if err != nil {
		return err
	}
	return tx.rw.Put(table, key.Bytes(), encodeCount(n+1))
}

// decrementCount implements the uniform zero-erase policy: table[key] is
// decremented by one, and the record is deleted entirely once it would
// reach zero rather than being left behind holding 0. A missing record at
// this point means the five-table invariants were already broken, which
// we surface as ErrIntegrity instead of silently going negative.
func (tx *WriteTx) decrementCount(table string, key id.ID) error {
	n, err := tx.getCount(table, key)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: table=%s key=%s", ErrIntegrity, table, key)
	}
	if n == 1 {
		return tx.rw.Delete(table, key.Bytes())
	}
	return tx.rw.Put(table, key.Bytes(), encodeCount(n-1))
}

// Insert attaches tags to object, creating both if new. Tags already
// present on object (tested against the pre-existing set E, which is
// updated in place as duplicates within tags are skipped too) are
// idempotent no-ops; object→count is set to the final |E| once. Insert
// returns its receiver so calls can be chained.
func (tx *WriteTx) Insert(object id.Object, tags []id.Object) (*WriteTx, error) {
	oid := object.ID()

	existing, err := tx.currentTagSet(oid)
	if err != nil {
		return nil, fmt.Errorf("index: insert: read existing tags: %w", err)
	}

	if err := tx.putSourceIfRaw(object); err != nil {
		return nil, fmt.Errorf("index: insert: put object source: %w", err)
	}

	for _, tag := range tags {
		tid := tag.ID()
		if _, ok := existing[tid]; ok {
			continue
		}
		existing[tid] = struct{}{}

		if err := tx.putSourceIfRaw(tag); err != nil {
			return nil, fmt.Errorf("index: insert: put tag source: %w", err)
		}
		if err := tx.rw.Put(kv.TagToObject, compositeKey(tid, oid), empty); err != nil {
			return nil, fmt.Errorf("index: insert: tag→object: %w", err)
		}
		if err := tx.rw.Put(kv.ObjectToTag, compositeKey(oid, tid), empty); err != nil {
			return nil, fmt.Errorf("index: insert: object→tag: %w", err)
		}
		if err := tx.incrementCount(kv.TagToCount, tid); err != nil {
			return nil, fmt.Errorf("index: insert: tag→count: %w", err)
		}
	}

	// object→count is written unconditionally: insertion always creates
	// or extends an object, even with zero or all-duplicate tags, so
	// HasObject/RemoveObject/RemoveTagsFromObject see it afterward.
	if err := tx.rw.Put(kv.ObjectToCount, oid.Bytes(), encodeCount(uint32(len(existing)))); err != nil {
		return nil, fmt.Errorf("index: insert: object→count: %w", err)
	}

	return tx, nil
}

// RemoveObject deletes object and every (object,tag)/(tag,object) posting
// involving it, decrementing tag→count accordingly. A no-op if object is
// unknown.
func (tx *WriteTx) RemoveObject(object id.Object) error {
	oid := object.ID()

	known, err := tx.HasObject(object)
	if err != nil {
		return fmt.Errorf("index: remove object: %w", err)
	}
	if !known {
		return nil
	}

	tags, err := tx.scanPrefixIDs(kv.ObjectToTag, oid)
	if err != nil {
		return fmt.Errorf("index: remove object: scan tags: %w", err)
	}

	if _, ok := object.Source(); ok {
		if err := tx.rw.Delete(kv.IDToSource, oid.Bytes()); err != nil {
			return fmt.Errorf("index: remove object: delete source: %w", err)
		}
	}

	for _, tid := range tags {
		if err := tx.rw.Delete(kv.TagToObject, compositeKey(tid, oid)); err != nil {
			return fmt.Errorf("index: remove object: delete tag→object: %w", err)
		}
		if err := tx.rw.Delete(kv.ObjectToTag, compositeKey(oid, tid)); err != nil {
			return fmt.Errorf("index: remove object: delete object→tag: %w", err)
		}
		if err := tx.decrementCount(kv.TagToCount, tid); err != nil {
			return fmt.Errorf("index: remove object: %w", err)
		}
	}

	if err := tx.rw.Delete(kv.ObjectToCount, oid.Bytes()); err != nil {
		return fmt.Errorf("index: remove object: delete object→count: %w", err)
	}
	return nil
}

// RemoveTagsFromObject detaches tags from object. Tags object does not
// currently carry are ignored. If this empties object's tag set, object
// is removed entirely (object→count and, if raw, its source).
func (tx *WriteTx) RemoveTagsFromObject(object id.Object, tags []id.Object) error {
	oid := object.ID()

	existing, err := tx.currentTagSet(oid)
	if err != nil {
		return fmt.Errorf("index: remove tags: read existing tags: %w", err)
	}
	if len(existing) == 0 {
		return nil
	}

	removed := 0
	for _, tag := range tags {
		tid := tag.ID()
		if _, ok := existing[tid]; !ok {
			continue
		}
		delete(existing, tid)
		removed++

		if err := tx.rw.Delete(kv.TagToObject, compositeKey(tid, oid)); err != nil {
			return fmt.Errorf("index: remove tags: delete tag→object: %w", err)
		}
		if err := tx.rw.Delete(kv.ObjectToTag, compositeKey(oid, tid)); err != nil {
			return fmt.Errorf("index: remove tags: delete object→tag: %w", err)
		}
		if err := tx.decrementCount(kv.TagToCount, tid); err != nil {
			return fmt.Errorf("index: remove tags: %w", err)
		}
	}
	if removed == 0 {
		return nil
	}

	if len(existing) == 0 {
		if _, ok := object.Source(); ok {
			if err := tx.rw.Delete(kv.IDToSource, oid.Bytes()); err != nil {
				return fmt.Errorf("index: remove tags: delete source: %w", err)
			}
		}
		if err := tx.rw.Delete(kv.ObjectToCount, oid.Bytes()); err != nil {
			return fmt.Errorf("index: remove tags: delete object→count: %w", err)
		}
		return nil
	}

	if err := tx.rw.Put(kv.ObjectToCount, oid.Bytes(), encodeCount(uint32(len(existing)))); err != nil {
		return fmt.Errorf("index: remove tags: object→count: %w", err)
	}
	return nil
}
