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

package id_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mentalblood0/dream/id"
)

func TestRawIDIsDeterministic(t *testing.T) {
	a := id.Raw("hello world")
	b := id.Raw("hello world")
	require.Equal(t, a.ID(), b.ID())
}

func TestRawIDDiffersOnDifferentContent(t *testing.T) {
	a := id.Raw("hello")
	b := id.Raw("world")
	require.NotEqual(t, a.ID(), b.ID())
}

func TestRawSourceRoundTrips(t *testing.T) {
	r := id.Raw("payload")
	src, ok := r.Source()
	require.True(t, ok)
	require.Equal(t, []byte("payload"), src)
}

func TestIdentifiedHasNoSource(t *testing.T) {
	var v id.ID
	v[0] = 0x42
	ident := id.Identified{Value: v}
	require.Equal(t, v, ident.ID())
	_, ok := ident.Source()
	require.False(t, ok)
}

func TestFromBytesRejectsWrongLength(t *testing.T) {
	_, ok := id.FromBytes([]byte{1, 2, 3})
	require.False(t, ok)
}

func TestFromBytesRoundTrips(t *testing.T) {
	orig := id.Raw("round trip").ID()
	got, ok := id.FromBytes(orig.Bytes())
	require.True(t, ok)
	require.Equal(t, orig, got)
}

func TestCompareOrdersLexicographically(t *testing.T) {
	var a, b id.ID
	a[0], b[0] = 1, 2
	require.True(t, id.Less(a, b))
	require.False(t, id.Less(b, a))
	require.Equal(t, 0, id.Compare(a, a))
}
