// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package dd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityMorphism(t *testing.T) {
	f := NewSfddFactory[int]()
	a := f.Encode([]int{1, 2}, []int{3})
	assert.True(t, f.Identity().Apply(a).Equal(a))
}

func TestInsertMorphism(t *testing.T) {
	f := NewSfddFactory[int]()
	a := f.Encode([]int{1}, []int{2, 5})

	ins := f.Insert(3, 4)
	got := ins.Apply(a)

	want := f.Encode([]int{1, 3, 4}, []int{2, 3, 4, 5})
	assert.True(t, got.Equal(want))
}

func TestInsertMorphismOverlapsExistingKey(t *testing.T) {
	f := NewSfddFactory[int]()
	a := f.Encode([]int{1, 2}, []int{1, 3})

	ins := f.Insert(2, 5)
	got := ins.Apply(a)

	want := f.Encode([]int{1, 2, 5}, []int{1, 2, 3, 5})
	assert.True(t, got.Equal(want))
}

func TestInsertRequiresIncreasingKeys(t *testing.T) {
	f := NewSfddFactory[int]()
	require.Panics(t, func() { f.Insert() })
	require.Panics(t, func() { f.Insert(2, 2) })
	require.Panics(t, func() { f.Insert(2, 1) })
}

func TestRemoveMorphism(t *testing.T) {
	f := NewSfddFactory[int]()
	a := f.Encode([]int{1, 3}, []int{2, 3})

	rem := f.Remove(3)
	got := rem.Apply(a)

	want := f.Encode([]int{1}, []int{2})
	assert.True(t, got.Equal(want))
}

func TestInsertThenRemoveIsIdentityOnUntouchedMembers(t *testing.T) {
	f := NewSfddFactory[int]()
	a := f.Encode([]int{1}, []int{2})

	roundTrip := f.Remove(5).Apply(f.Insert(5).Apply(a))
	assert.True(t, roundTrip.Equal(a))
}

func TestInclusiveAndExclusiveFilter(t *testing.T) {
	f := NewSfddFactory[int]()
	a := f.Encode([]int{1}, []int{1, 2}, []int{2}, []int{1, 2, 3})

	incl := f.InclusiveFilter(1, 2).Apply(a)
	assert.Equal(t, [][]int{{1, 2}, {1, 2, 3}}, members(incl))

	excl := f.ExclusiveFilter(1).Apply(a)
	assert.Equal(t, [][]int{{2}}, members(excl))
}

func TestMapMorphism(t *testing.T) {
	f := NewSfddFactory[int]()
	a := f.Encode([]int{1, 2}, []int{3})

	double := f.Map(func(k int) int { return k * 2 })
	got := double.Apply(a)

	want := f.Encode([]int{2, 4}, []int{6})
	assert.True(t, got.Equal(want))
}

func TestMapRejectsNonMonotonic(t *testing.T) {
	f := NewSfddFactory[int]()
	a := f.Encode([]int{1, 2})

	collapse := f.Map(func(k int) int { return 0 })
	require.Panics(t, func() { collapse.Apply(a) })
}

func TestUnionMorphismCombinator(t *testing.T) {
	f := NewSfddFactory[int]()
	a := f.Encode([]int{1}, []int{2})

	m := f.UnionMorphism(f.Insert(9), f.Identity())
	got := m.Apply(a)

	want := f.Encode([]int{1}, []int{2}, []int{1, 9}, []int{2, 9})
	assert.True(t, got.Equal(want))
}

func TestCompositionMorphismRightToLeft(t *testing.T) {
	f := NewSfddFactory[int]()
	a := f.Encode([]int{5})

	// ExclusiveFilter(7) runs first and keeps {5}; Insert(7) then yields
	// {5, 7}. Applied left to right the result would be empty.
	comp := f.CompositionMorphism(f.Insert(7), f.ExclusiveFilter(7))
	got := comp.Apply(a)

	want := f.Encode([]int{5, 7})
	assert.True(t, got.Equal(want))
}

func TestFixedPointMorphism(t *testing.T) {
	f := NewSfddFactory[int]()
	a := f.Zero()

	grow := f.Inductive(
		func(s SFdd[int]) SFdd[int] { return s },
		func(key int, take, skip SFdd[int]) SFdd[int] { return take.Union(skip) },
	)
	fp := f.FixedPointMorphism(f.UnionMorphism(f.ConstantMorphism(f.Encode([]int{1})), grow))
	got := fp.Apply(a)
	assert.True(t, got.Contains(1))
}

func TestEncodeNQueensFourByFour(t *testing.T) {
	const n = 4
	f := NewSfddFactory[int]()

	var members [][]int
	placeQueens(n, nil, &members)

	solutions := f.Encode(members...)
	assert.Equal(t, 2, solutions.Count())
}

// placeQueens backtracks over one queen per row, encoding a placement as
// the set of keys row*n+col, and appends every non-attacking complete
// placement found to *out.
func placeQueens(n int, placed []int, out *[][]int) {
	row := len(placed)
	if row == n {
		member := make([]int, n)
		for r, c := range placed {
			member[r] = r*n + c
		}
		*out = append(*out, member)
		return
	}
	for col := 0; col < n; col++ {
		if queenSafe(placed, col) {
			placeQueens(n, append(placed, col), out)
		}
	}
}

func queenSafe(placed []int, col int) bool {
	row := len(placed)
	for r, c := range placed {
		if c == col || row-r == col-c || row-r == c-col {
			return false
		}
	}
	return true
}

func TestSaturateNoLowestKeyReturnsSame(t *testing.T) {
	f := NewSfddFactory[int]()
	a := f.Encode([]int{1}, []int{2})

	noLowest := f.Map(func(k int) int { return k })
	sat := f.Saturate(noLowest)
	assert.True(t, sat.Apply(a).Equal(noLowest.Apply(a)))
}

func TestSaturateMatchesDirectInsertAboveLowest(t *testing.T) {
	f := NewSfddFactory[int]()
	a := f.Encode([]int{1, 5}, []int{9})

	ins := f.Insert(5, 6)
	sat := f.Saturate(ins)
	assert.True(t, sat.Apply(a).Equal(ins.Apply(a)))
}
