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

// Package kv is the abstract ordered key/value store contract the index
// core is built against: named tables, read/write transactions, per-table
// cursors, and a checkpoint operation. Nothing in this package knows about
// tags or objects; package index is the only consumer.
package kv

// Table names - the five tables of the logical schema. Keys and values are
// binary, not further interpreted by this package.
const (
	// TagToObject: key = tag_id||object_id, value = empty. Posting list
	// per tag.
	TagToObject = "TagToObject"
	// ObjectToTag: key = object_id||tag_id, value = empty. Reverse
	// postings per object.
	ObjectToTag = "ObjectToTag"
	// IDToSource: key = id, value = raw bytes. Preimage for raw-origin IDs.
	IDToSource = "IDToSource"
	// TagToCount: key = tag_id, value = big-endian uint32.
	TagToCount = "TagToCount"
	// ObjectToCount: key = object_id, value = big-endian uint32.
	ObjectToCount = "ObjectToCount"
)

// Tables lists every table the index needs opened. App code should refuse
// to proceed if any name here is missing from the opened store - same
// discipline as erigon's ChaindataTables list.
var Tables = []string{
	TagToObject,
	ObjectToTag,
	IDToSource,
	TagToCount,
	ObjectToCount,
}

// TableFlags mirrors the handful of native-store table options the index
// cares about. None of the five tables need anything beyond Default: the
// composite keys are already flattened, so there is no use for a
// DupSort-style multi-value-per-key table here.
type TableFlags uint

const (
	Default TableFlags = 0x00
)

// TableCfgItem is the per-table configuration the store opens each table
// with.
type TableCfgItem struct {
	Flags TableFlags
}

// TableCfg is keyed by table name.
type TableCfg map[string]TableCfgItem

// DefaultTablesCfg is the configuration used unless the caller overrides
// it: every table gets Default flags.
var DefaultTablesCfg = TableCfg{
	TagToObject:   {Flags: Default},
	ObjectToTag:   {Flags: Default},
	IDToSource:    {Flags: Default},
	TagToCount:    {Flags: Default},
	ObjectToCount: {Flags: Default},
}
