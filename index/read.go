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
	"bytes"
	"fmt"

	"github.com/mentalblood0/dream/id"
	"github.com/mentalblood0/dream/kv"
)

// Tx is a read-only view over the five tables. A WriteTx embeds a Tx so
// every read operation is also available inside a write transaction.
type Tx struct {
	kv kv.Tx
}

// GetSource returns the preimage for x, or nil if x was never a raw-origin
// object or tag (or has since been fully removed).
func (tx *Tx) GetSource(x id.ID) ([]byte, error) {
	v, err := tx.kv.GetOne(kv.IDToSource, x.Bytes())
	if err != nil {
		return nil, fmt.Errorf("index: get source %s: %w", x, err)
	}
	return v, nil
}

// HasTag reports whether object currently carries tag.
func (tx *Tx) HasTag(object, tag id.Object) (bool, error) {
	v, err := tx.kv.GetOne(kv.ObjectToTag, compositeKey(object.ID(), tag.ID()))
	if err != nil {
		return false, fmt.Errorf("index: has tag: %w", err)
	}
	return v != nil, nil
}

// HasObjectWithTag reports whether at least one object carries tag.
func (tx *Tx) HasObjectWithTag(tag id.Object) (bool, error) {
	tid := tag.ID()
	c, err := tx.kv.Cursor(kv.TagToObject)
	if err != nil {
		return false, fmt.Errorf("index: has object with tag: %w", err)
	}
	defer c.Close()
	k, _, err := c.Seek(compositeKey(tid, id.Min))
	if err != nil {
		return false, fmt.Errorf("index: has object with tag: %w", err)
	}
	return k != nil && bytes.Equal(k[:id.Length], tid.Bytes()), nil
}

// HasObject reports whether object is known (object→count is present).
func (tx *Tx) HasObject(object id.Object) (bool, error) {
	v, err := tx.kv.GetOne(kv.ObjectToCount, object.ID().Bytes())
	if err != nil {
		return false, fmt.Errorf("index: has object: %w", err)
	}
	return v != nil, nil
}

// GetTags returns the tag IDs currently attached to object, in ascending
// order.
func (tx *Tx) GetTags(object id.Object) ([]id.ID, error) {
	tags, err := tx.scanPrefixIDs(kv.ObjectToTag, object.ID())
	if err != nil {
		return nil, fmt.Errorf("index: get tags: %w", err)
	}
	return tags, nil
}

// scanPrefixIDs collects the second ID component of every entry in table
// whose leading component equals prefix, in ascending order.
func (tx *Tx) scanPrefixIDs(table string, prefix id.ID) ([]id.ID, error) {
	c, err := tx.kv.Cursor(table)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	var out []id.ID
	k, _, err := c.Seek(compositeKey(prefix, id.Min))
	if err != nil {
		return nil, err
	}
	for k != nil && bytes.Equal(k[:id.Length], prefix.Bytes()) {
		_, second := splitCompositeKey(k)
		out = append(out, second)
		k, _, err = c.Next()
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// currentTagSet is scanPrefixIDs(ObjectToTag, oid) as a set, used by the
// write path to test tag membership in O(1).
func (tx *Tx) currentTagSet(oid id.ID) (map[id.ID]struct{}, error) {
	ids, err := tx.scanPrefixIDs(kv.ObjectToTag, oid)
	if err != nil {
		return nil, err
	}
	set := make(map[id.ID]struct{}, len(ids))
	for _, t := range ids {
		set[t] = struct{}{}
	}
	return set, nil
}

// getCount reads table[key], treating a missing entry as 0 - the
// representation the tag→count/object→count invariants guarantee is
// equivalent to "absent".
func (tx *Tx) getCount(table string, key id.ID) (uint32, error) {
	v, err := tx.kv.GetOne(table, key.Bytes())
	if err != nil {
		return 0, err
	}
	if v == nil {
		return 0, nil
	}
	return decodeCount(v), nil
}

// passesAbsent reports whether candidate carries none of the (already
// count-filtered) absent tag IDs.
func (tx *Tx) passesAbsent(candidate id.ID, absent []id.ID) (bool, error) {
	for _, a := range absent {
		v, err := tx.kv.GetOne(kv.TagToObject, compositeKey(a, candidate))
		if err != nil {
			return false, err
		}
		if v != nil {
			return false, nil
		}
	}
	return true, nil
}
