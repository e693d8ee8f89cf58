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

// Package id defines the 128-bit identifier shared by objects and tags,
// and the two object shapes (raw content vs. a pre-computed identifier)
// that the write path accepts.
package id

import (
	"bytes"
	"encoding/hex"

	"github.com/zeebo/xxh3"
)

// Length is the byte width of an ID.
const Length = 16

// ID is a 128-bit identifier, compared lexicographically as an unsigned
// byte array. The zero value is the minimum possible ID.
type ID [Length]byte

// Min is the smallest possible ID, used as the implicit lower bound when
// no pagination cursor is supplied.
var Min ID

// Compare returns -1, 0 or 1 as a is less than, equal to, or greater than b.
func Compare(a, b ID) int {
	return bytes.Compare(a[:], b[:])
}

// Less reports whether a sorts strictly before b.
func Less(a, b ID) bool {
	return Compare(a, b) < 0
}

func (i ID) String() string {
	return hex.EncodeToString(i[:])
}

// Bytes returns the ID's underlying bytes as a slice. Callers must not
// mutate the result's backing array through it.
func (i ID) Bytes() []byte {
	return i[:]
}

// FromBytes copies b (which must be exactly Length bytes) into an ID.
func FromBytes(b []byte) (ID, bool) {
	var out ID
	if len(b) != Length {
		return out, false
	}
	copy(out[:], b)
	return out, true
}

// FromHex parses the hex encoding produced by ID.String.
func FromHex(s string) (ID, bool) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return ID{}, false
	}
	return FromBytes(b)
}

// Object is anything that can be inserted as an object or attached as a
// tag; there is no structural distinction between the two roles.
type Object interface {
	// ID computes this object's identifier. For Raw it is the 128-bit
	// content hash of the bytes; for Identified it is the stored ID.
	ID() ID
	// Source returns the raw bytes to persist in id→source, and whether
	// this object is raw-origin at all.
	Source() ([]byte, bool)
}

// Raw is an object that owns its source bytes; its ID is derived from
// them by content hash.
type Raw []byte

func (r Raw) ID() ID {
	h := xxh3.Hash128(r)
	var out ID
	// xxh3_128(...).to_le_bytes() on the Rust side serialises the u128
	// as low 64 bits then high 64 bits, each little-endian.
	putUint64LE(out[0:8], h.Lo)
	putUint64LE(out[8:16], h.Hi)
	return out
}

func (r Raw) Source() ([]byte, bool) {
	return []byte(r), true
}

// Identified is an object carrying only an ID, no source bytes.
type Identified struct {
	Value ID
}

func (i Identified) ID() ID {
	return i.Value
}

func (i Identified) Source() ([]byte, bool) {
	return nil, false
}

func putUint64LE(b []byte, v uint64) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
	b[4] = byte(v >> 32)
	b[5] = byte(v >> 40)
	b[6] = byte(v >> 48)
	b[7] = byte(v >> 56)
}
