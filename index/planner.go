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
	"sort"

	"github.com/mentalblood0/dream/id"
	"github.com/mentalblood0/dream/kv"
)

type countedTag struct {
	tid   id.ID
	count uint32
}

// planPresent orders present tags ascending by posting-list size so the
// leapfrog/single-tag scan starts from the rarest tag.
func (tx *Tx) planPresent(tags []id.Object) ([]id.ID, error) {
	counted, err := tx.countTags(tags)
	if err != nil {
		return nil, fmt.Errorf("index: plan present: %w", err)
	}
	sort.SliceStable(counted, func(i, j int) bool { return counted[i].count < counted[j].count })
	out := make([]id.ID, len(counted))
	for i, c := range counted {
		out[i] = c.tid
	}
	return out, nil
}

// planAbsent orders absent tags descending by posting-list size, so the
// candidate most likely to be excluded is checked first, and drops any
// tag with a zero count - per invariant 2 a zero count means the tag
// record does not exist, so it can never match a candidate anyway.
func (tx *Tx) planAbsent(tags []id.Object) ([]id.ID, error) {
	counted, err := tx.countTags(tags)
	if err != nil {
		return nil, fmt.Errorf("index: plan absent: %w", err)
	}
	filtered := counted[:0]
	for _, c := range counted {
		if c.count > 0 {
			filtered = append(filtered, c)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].count > filtered[j].count })
	out := make([]id.ID, len(filtered))
	for i, c := range filtered {
		out[i] = c.tid
	}
	return out, nil
}

func (tx *Tx) countTags(tags []id.Object) ([]countedTag, error) {
	out := make([]countedTag, len(tags))
	for i, tag := range tags {
		tid := tag.ID()
		n, err := tx.getCount(kv.TagToCount, tid)
		if err != nil {
			return nil, err
		}
		out[i] = countedTag{tid: tid, count: n}
	}
	return out, nil
}
