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

// SearchIter yields matching object IDs in ascending order. Next returns
// (id, true, nil) for a match, (zero, false, nil) once exhausted, and a
// non-nil error on failure; the iterator must not be used again after
// either of the latter two.
type SearchIter interface {
	Next() (id.ID, bool, error)
}

// Search plans present/absent tags and dispatches to the strategy
// matching len(present): a full object→count scan with zero present
// tags, a single posting-list scan with one, and a leapfrog intersection
// of posting lists with two or more. startAfter, if non-nil, resumes a
// previous page by skipping the one entry at or after that key the
// underlying scan would otherwise re-yield.
func (tx *Tx) Search(present, absent []id.Object, startAfter *id.ID) (SearchIter, error) {
	absentIDs, err := tx.planAbsent(absent)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}

	switch len(present) {
	case 0:
		return tx.newScanAllIter(absentIDs, startAfter)
	case 1:
		presentIDs, err := tx.planPresent(present)
		if err != nil {
			return nil, fmt.Errorf("index: search: %w", err)
		}
		return tx.newSingleTagIter(presentIDs[0], absentIDs, startAfter)
	default:
		presentIDs, err := tx.planPresent(present)
		if err != nil {
			return nil, fmt.Errorf("index: search: %w", err)
		}
		return tx.newLeapfrogIter(presentIDs, absentIDs, startAfter)
	}
}

// scanAllIter walks object→count directly; its keys are bare object IDs.
type scanAllIter struct {
	tx     *Tx
	c      kv.Cursor
	absent []id.ID
	k      []byte
}

func (tx *Tx) newScanAllIter(absentIDs []id.ID, startAfter *id.ID) (*scanAllIter, error) {
	c, err := tx.kv.Cursor(kv.ObjectToCount)
	if err != nil {
		return nil, fmt.Errorf("index: scan all: %w", err)
	}
	var k []byte
	if startAfter == nil {
		k, _, err = c.Seek(nil)
	} else {
		k, _, err = c.Seek(startAfter.Bytes())
		if err == nil && k != nil {
			// The scan is Seek-inclusive; skip the page boundary itself.
			k, _, err = c.Next()
		}
	}
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("index: scan all: %w", err)
	}
	return &scanAllIter{tx: tx, c: c, absent: absentIDs, k: k}, nil
}

func (s *scanAllIter) Next() (id.ID, bool, error) {
	for {
		if s.k == nil {
			return id.ID{}, false, nil
		}
		oid, ok := id.FromBytes(s.k)
		if !ok {
			return id.ID{}, false, fmt.Errorf("index: scan all: malformed key %x", s.k)
		}

		var err error
		s.k, _, err = s.c.Next()
		if err != nil {
			return id.ID{}, false, fmt.Errorf("index: scan all: %w", err)
		}

		pass, err := s.tx.passesAbsent(oid, s.absent)
		if err != nil {
			return id.ID{}, false, fmt.Errorf("index: scan all: %w", err)
		}
		if pass {
			return oid, true, nil
		}
	}
}

// singleTagIter walks tag→object restricted to one tag's prefix.
type singleTagIter struct {
	tx     *Tx
	c      kv.Cursor
	tag    id.ID
	absent []id.ID
	k      []byte
}

func (tx *Tx) newSingleTagIter(tag id.ID, absentIDs []id.ID, startAfter *id.ID) (*singleTagIter, error) {
	c, err := tx.kv.Cursor(kv.TagToObject)
	if err != nil {
		return nil, fmt.Errorf("index: single tag: %w", err)
	}
	from := id.Min
	if startAfter != nil {
		from = *startAfter
	}
	k, _, err := c.Seek(compositeKey(tag, from))
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("index: single tag: %w", err)
	}
	if startAfter != nil && k != nil {
		// Per the documented pagination quirk, the boundary entry is
		// skipped unconditionally, before absent-filtering - even if it
		// would itself have failed the absent filter.
		k, _, err = c.Next()
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("index: single tag: %w", err)
		}
	}
	return &singleTagIter{tx: tx, c: c, tag: tag, absent: absentIDs, k: k}, nil
}

func (s *singleTagIter) Next() (id.ID, bool, error) {
	for {
		if s.k == nil || !bytes.Equal(s.k[:id.Length], s.tag.Bytes()) {
			return id.ID{}, false, nil
		}
		_, oid := splitCompositeKey(s.k)

		var err error
		s.k, _, err = s.c.Next()
		if err != nil {
			return id.ID{}, false, fmt.Errorf("index: single tag: %w", err)
		}

		pass, err := s.tx.passesAbsent(oid, s.absent)
		if err != nil {
			return id.ID{}, false, fmt.Errorf("index: single tag: %w", err)
		}
		if pass {
			return oid, true, nil
		}
	}
}

// cursorState tracks one present tag's posting-list cursor during
// leapfrog intersection.
type cursorState struct {
	c         kv.Cursor
	tag       id.ID
	obj       id.ID
	exhausted bool
}

// leapfrogIter intersects two or more posting lists by the rotating
// multi-cursor scheme: at each step two cursors i1,i2 are aligned against
// each other, then rotated, until all n cursors agree on the same object.
type leapfrogIter struct {
	tx         *Tx
	present    []id.ID
	absent     []id.ID
	startAfter *id.ID
	cursors    []*cursorState
	i1, i2     int
	end        bool
}

func (tx *Tx) newLeapfrogIter(present, absentIDs []id.ID, startAfter *id.ID) (*leapfrogIter, error) {
	return &leapfrogIter{
		tx:         tx,
		present:    present,
		absent:     absentIDs,
		startAfter: startAfter,
		cursors:    make([]*cursorState, len(present)),
		i1:         0,
		i2:         1 % len(present),
	}, nil
}

// createCursor lazily opens the cursor for present[idx]. Cursor 0 seeks
// from startAfter (skipping the boundary entry, as in singleTagIter);
// every later cursor seeks from the previous cursor's current object,
// relying on cursors being created in index order 0,1,2,....
func (l *leapfrogIter) createCursor(idx int) (bool, error) {
	if l.cursors[idx] != nil {
		return !l.cursors[idx].exhausted, nil
	}
	c, err := l.tx.kv.Cursor(kv.TagToObject)
	if err != nil {
		return false, fmt.Errorf("index: leapfrog: %w", err)
	}
	tag := l.present[idx]

	var from id.ID
	skipBoundary := false
	if idx == 0 {
		if l.startAfter != nil {
			from = *l.startAfter
			skipBoundary = true
		} else {
			from = id.Min
		}
	} else {
		from = l.cursors[idx-1].obj
	}

	k, _, err := c.Seek(compositeKey(tag, from))
	if err != nil {
		c.Close()
		return false, fmt.Errorf("index: leapfrog: %w", err)
	}
	if skipBoundary && k != nil {
		k, _, err = c.Next()
		if err != nil {
			c.Close()
			return false, fmt.Errorf("index: leapfrog: %w", err)
		}
	}

	cs := &cursorState{c: c, tag: tag}
	l.cursors[idx] = cs
	if k == nil || !bytes.Equal(k[:id.Length], tag.Bytes()) {
		cs.exhausted = true
		return false, nil
	}
	_, cs.obj = splitCompositeKey(k)
	return true, nil
}

// advance moves cursor idx to its next posting, returning false once it
// leaves the tag's prefix.
func (l *leapfrogIter) advance(idx int) (bool, error) {
	cs := l.cursors[idx]
	if cs.exhausted {
		return false, nil
	}
	k, _, err := cs.c.Next()
	if err != nil {
		return false, fmt.Errorf("index: leapfrog: %w", err)
	}
	if k == nil || !bytes.Equal(k[:id.Length], cs.tag.Bytes()) {
		cs.exhausted = true
		return false, nil
	}
	_, cs.obj = splitCompositeKey(k)
	return true, nil
}

func (l *leapfrogIter) Next() (id.ID, bool, error) {
	n := len(l.present)
	for {
		if l.end {
			return id.ID{}, false, nil
		}

		if l.allAgree() {
			x := l.cursors[0].obj
			ok, err := l.advance(0)
			if err != nil {
				return id.ID{}, false, err
			}
			if !ok {
				l.end = true
			}
			pass, err := l.tx.passesAbsent(x, l.absent)
			if err != nil {
				return id.ID{}, false, fmt.Errorf("index: leapfrog: %w", err)
			}
			if pass {
				return x, true, nil
			}
			continue
		}

		if ok, err := l.createCursor(l.i1); err != nil {
			return id.ID{}, false, err
		} else if !ok {
			l.end = true
			continue
		}
		if ok, err := l.createCursor(l.i2); err != nil {
			return id.ID{}, false, err
		} else if !ok {
			l.end = true
			continue
		}

		for id.Less(l.cursors[l.i2].obj, l.cursors[l.i1].obj) {
			ok, err := l.advance(l.i2)
			if err != nil {
				return id.ID{}, false, err
			}
			if !ok {
				l.end = true
				break
			}
		}
		if l.end {
			continue
		}

		if l.cursors[l.i2].obj == l.cursors[l.i1].obj {
			l.i1 = (l.i1 + 1) % n
			l.i2 = (l.i2 + 1) % n
			continue
		}

		for id.Less(l.cursors[0].obj, l.cursors[l.i2].obj) {
			ok, err := l.advance(0)
			if err != nil {
				return id.ID{}, false, err
			}
			if !ok {
				l.end = true
				break
			}
		}
		if l.end {
			continue
		}
		l.i1, l.i2 = 0, 1%n
	}
}

// allAgree reports whether every cursor exists and points at the same
// object.
func (l *leapfrogIter) allAgree() bool {
	for _, cs := range l.cursors {
		if cs == nil || cs.exhausted {
			return false
		}
	}
	first := l.cursors[0].obj
	for _, cs := range l.cursors[1:] {
		if cs.obj != first {
			return false
		}
	}
	return true
}
