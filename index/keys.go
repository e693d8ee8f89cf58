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
	"encoding/binary"

	"github.com/mentalblood0/dream/id"
)

// empty is the value stored for every (tag,object)/(object,tag) posting -
// presence of the key is the only information carried.
var empty = []byte{}

// compositeKey concatenates a then b, matching tuple-lexicographic order
// since both components are fixed-width.
func compositeKey(a, b id.ID) []byte {
	out := make([]byte, 2*id.Length)
	copy(out[:id.Length], a[:])
	copy(out[id.Length:], b[:])
	return out
}

// splitCompositeKey recovers the two ID halves of a composite key.
func splitCompositeKey(k []byte) (a, b id.ID) {
	copy(a[:], k[:id.Length])
	copy(b[:], k[id.Length:2*id.Length])
	return a, b
}

func encodeCount(n uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, n)
	return b
}

func decodeCount(b []byte) uint32 {
	return binary.BigEndian.Uint32(b)
}
