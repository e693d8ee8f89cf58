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

package mathutil_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mentalblood0/dream/internal/mathutil"
)

func TestCeilDiv(t *testing.T) {
	require.Equal(t, 3, mathutil.CeilDiv(9, 3))
	require.Equal(t, 4, mathutil.CeilDiv(10, 3))
	require.Equal(t, 0, mathutil.CeilDiv(10, 0))
}

func TestSafeAdd(t *testing.T) {
	sum, overflow := mathutil.SafeAdd(1, 2)
	require.Equal(t, uint64(3), sum)
	require.False(t, overflow)

	_, overflow = mathutil.SafeAdd(math.MaxUint64, 1)
	require.True(t, overflow)
}
