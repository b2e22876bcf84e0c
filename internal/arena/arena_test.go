// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type intPair struct {
	a, b int
}

func (p intPair) Equal(other intPair) bool { return p == other }

func (p intPair) Hash() uint64 {
	return CombineHashes(HashOrdered(p.a), HashOrdered(p.b))
}

func TestInternCanonicity(t *testing.T) {
	t.Parallel()

	a := New[intPair](8, nil, "test")

	h1 := a.Intern(intPair{1, 2}.Hash(), intPair{1, 2})
	h2 := a.Intern(intPair{1, 2}.Hash(), intPair{1, 2})
	h3 := a.Intern(intPair{2, 1}.Hash(), intPair{2, 1})

	assert.Equal(t, h1, h2, "interning equal content twice must return the same handle")
	assert.NotEqual(t, h1, h3)
	assert.Equal(t, 2, a.CreatedCount())
}

func TestInternHandlesStableAcrossGrowth(t *testing.T) {
	t.Parallel()

	a := New[intPair](4, nil, "test")

	var handles []Handle
	var contents []intPair
	for i := 0; i < 200; i++ {
		c := intPair{i, i * 2}
		h := a.Intern(c.Hash(), c)
		handles = append(handles, h)
		contents = append(contents, c)
	}

	// re-lookup: every original handle must still resolve to its content,
	// and re-interning must return the very same handle even though many
	// buckets have been appended since.
	for i, h := range handles {
		require.Equal(t, contents[i], a.Content(h))
		again := a.Intern(contents[i].Hash(), contents[i])
		assert.Equal(t, h, again)
	}
}

func TestContentPanicsOnTerminal(t *testing.T) {
	t.Parallel()

	a := New[intPair](8, nil, "test")
	assert.Panics(t, func() { a.Content(Zero) })
	assert.Panics(t, func() { a.Content(One) })
}

func TestNewPanicsOnBadCapacity(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { New[intPair](0, nil, "test") })
	assert.Panics(t, func() { New[intPair](-1, nil, "test") })
}

func TestIsTerminal(t *testing.T) {
	t.Parallel()

	a := New[intPair](8, nil, "test")
	assert.True(t, a.IsTerminal(Zero))
	assert.True(t, a.IsTerminal(One))

	h := a.Intern(intPair{1, 1}.Hash(), intPair{1, 1})
	assert.False(t, a.IsTerminal(h))
}

func TestHashOrderedDistinguishesValues(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		a, b any
	}{
		{"int", 1, 2},
		{"string", "foo", "bar"},
		{"float64", 1.5, 2.5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var ha, hb uint64
			switch a := tc.a.(type) {
			case int:
				ha, hb = HashOrdered(a), HashOrdered(tc.b.(int))
			case string:
				ha, hb = HashOrdered(a), HashOrdered(tc.b.(string))
			case float64:
				ha, hb = HashOrdered(a), HashOrdered(tc.b.(float64))
			}
			assert.NotEqual(t, ha, hb)
		})
	}
}
