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

package index_test

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/require"

	"github.com/mentalblood0/dream/id"
	"github.com/mentalblood0/dream/index"
	"github.com/mentalblood0/dream/kv"
	"github.com/mentalblood0/dream/kv/memkv"
)

// TestSearchAgainstRoaringOracle covers scenario 6 from the index's
// invariant suite: a random population of objects each carrying a small
// random tag set, checked against random 2-tag present/absent queries.
// The ground truth is computed per-tag with roaring.Bitmap (indexed by a
// dense ordinal, not the 128-bit ID) and combined with And/AndNot,
// giving an oracle independent of the leapfrog/scan implementation under
// test - the rotation-based leapfrog scheme is exactly what §9 flags as
// needing this kind of exhaustive cross-check once three or more tags
// share a small intersection.
func TestSearchAgainstRoaringOracle(t *testing.T) {
	const (
		numTags    = 8
		numObjects = 100
		numQueries = 100
	)

	rng := rand.New(rand.NewSource(1))

	tags := make([]id.Object, numTags)
	for i := range tags {
		tags[i] = id.Raw(fmt.Sprintf("tag-%d", i))
	}

	objects := make([]id.Object, numObjects)
	objectTags := make([][]int, numObjects)
	bitmaps := make([]*roaring.Bitmap, numTags)
	for i := range bitmaps {
		bitmaps[i] = roaring.New()
	}
	idByOrdinal := make([]id.ID, numObjects)

	ctx := context.Background()
	store := memkv.New(kv.DefaultTablesCfg)
	idx := index.New(store)

	require.NoError(t, idx.Write(ctx, func(tx *index.WriteTx) error {
		for o := 0; o < numObjects; o++ {
			objects[o] = id.Raw(fmt.Sprintf("object-%d", o))
			idByOrdinal[o] = objects[o].ID()

			picked := rng.Perm(numTags)[:3]
			objectTags[o] = picked

			chosen := make([]id.Object, len(picked))
			for j, tIdx := range picked {
				chosen[j] = tags[tIdx]
				bitmaps[tIdx].Add(uint32(o))
			}
			if _, err := tx.Insert(objects[o], chosen); err != nil {
				return err
			}
		}
		return nil
	}))

	require.NoError(t, idx.Read(ctx, func(tx *index.Tx) error {
		for q := 0; q < numQueries; q++ {
			perm := rng.Perm(numTags)
			presentIdx := perm[:2]
			absentIdx := perm[2:4]

			expected := roaring.New()
			expected.AddRange(0, uint64(numObjects))
			for _, p := range presentIdx {
				expected.And(bitmaps[p])
			}
			for _, a := range absentIdx {
				expected.AndNot(bitmaps[a])
			}

			present := []id.Object{tags[presentIdx[0]], tags[presentIdx[1]]}
			absent := []id.Object{tags[absentIdx[0]], tags[absentIdx[1]]}

			it, err := tx.Search(present, absent, nil)
			require.NoError(t, err)
			got := drain(t, it)

			gotSet := make(map[id.ID]struct{}, len(got))
			for _, g := range got {
				gotSet[g] = struct{}{}
			}

			expectedIDs := make(map[id.ID]struct{})
			iter := expected.Iterator()
			for iter.HasNext() {
				expectedIDs[idByOrdinal[iter.Next()]] = struct{}{}
			}

			require.Equal(t, expectedIDs, gotSet, "query %d present=%v absent=%v", q, presentIdx, absentIdx)
		}
		return nil
	}))
}
