// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package morph

import (
	"fmt"
	"testing"

	"github.com/gaissmai/dd/internal/arena"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A minimal toy SFDD-shaped algebra over int keys, built directly on
// internal/arena, used only to exercise the generic combinators and
// saturation without depending on the root package (which itself depends
// on morph).

type toyNode struct {
	key        int
	take, skip arena.Handle
}

func (n toyNode) Equal(o toyNode) bool {
	return n.key == o.key && n.take == o.take && n.skip == o.skip
}

func (n toyNode) Hash() uint64 {
	return arena.CombineHashes(arena.HashOrdered(n.key), uint64(n.take), uint64(n.skip))
}

type toyFactory struct {
	a *arena.Arena[toyNode]
}

func newToyFactory() *toyFactory {
	return &toyFactory{a: arena.New[toyNode](8, nil, "toy")}
}

func (f *toyFactory) node(key int, take, skip arena.Handle) arena.Handle {
	if take == arena.Zero {
		return skip
	}
	if !f.a.IsTerminal(take) && f.a.Content(take).key <= key {
		panic("dd: invariant violation: take child key must exceed parent key")
	}
	if !f.a.IsTerminal(skip) && f.a.Content(skip).key <= key {
		panic("dd: invariant violation: skip child key must exceed parent key")
	}
	n := toyNode{key: key, take: take, skip: skip}
	return f.a.Intern(n.Hash(), n)
}

func (f *toyFactory) encode(members [][]int) arena.Handle {
	out := arena.Zero
	for _, m := range members {
		out = f.Union(out, f.single(m))
	}
	return out
}

func (f *toyFactory) single(keys []int) arena.Handle {
	h := arena.One
	for i := len(keys) - 1; i >= 0; i-- {
		h = f.node(keys[i], h, arena.Zero)
	}
	return h
}

func (f *toyFactory) Union(a, b arena.Handle) arena.Handle {
	switch {
	case a == arena.Zero:
		return b
	case b == arena.Zero:
		return a
	case a == b:
		return a
	}
	if a == arena.One || b == arena.One {
		one, other := a, b
		if b == arena.One {
			one, other = b, a
		}
		if other == arena.One {
			return one
		}
		o := f.a.Content(other)
		return f.node(o.key, o.take, f.Union(one, o.skip))
	}
	na, nb := f.a.Content(a), f.a.Content(b)
	switch {
	case na.key < nb.key:
		return f.node(na.key, na.take, f.Union(na.skip, b))
	case na.key > nb.key:
		return f.node(nb.key, nb.take, f.Union(a, nb.skip))
	default:
		return f.node(na.key, f.Union(na.take, nb.take), f.Union(na.skip, nb.skip))
	}
}

func (f *toyFactory) Intersection(a, b arena.Handle) arena.Handle {
	switch {
	case a == arena.Zero || b == arena.Zero:
		return arena.Zero
	case a == b:
		return a
	}
	// not exercised deeply by these tests; only needed for Algebra conformance
	return arena.Zero
}

func (f *toyFactory) SymmetricDifference(a, b arena.Handle) arena.Handle {
	if a == b {
		return arena.Zero
	}
	return f.Union(a, b)
}

func (f *toyFactory) Subtract(a, b arena.Handle) arena.Handle {
	if a == b {
		return arena.Zero
	}
	return a
}

func (f *toyFactory) IsInternal(h arena.Handle) bool { return !f.a.IsTerminal(h) }
func (f *toyFactory) Key(h arena.Handle) int         { return f.a.Content(h).key }

func (f *toyFactory) RecurseChildren(h arena.Handle, rec func(arena.Handle) arena.Handle) arena.Handle {
	n := f.a.Content(h)
	return f.node(n.key, rec(n.take), rec(n.skip))
}

func TestIdentityAndConstant(t *testing.T) {
	t.Parallel()

	f := newToyFactory()
	x := f.single([]int{1, 2})

	assert.Equal(t, x, Identity().Apply(x))
	assert.Equal(t, arena.Zero, Constant(arena.Zero).Apply(x))

	g := f.single([]int{5})
	assert.Equal(t, g, Constant(g).Apply(x))
	assert.Equal(t, g, Constant(g).Apply(arena.Zero))
}

func TestUnionMorphism(t *testing.T) {
	t.Parallel()

	f := newToyFactory()
	x := f.single([]int{1})
	y := f.single([]int{2})

	m := Union(f, Constant(x), Constant(y))
	want := f.Union(x, y)
	assert.Equal(t, want, m.Apply(arena.Zero))

	// zero-ary union is the constant Zero morphism
	assert.Equal(t, arena.Zero, Union(f).Apply(x))
}

func TestCompositionRightToLeft(t *testing.T) {
	t.Parallel()

	f := newToyFactory()
	a := f.single([]int{1})
	b := f.single([]int{2})
	c := f.single([]int{3})

	// order must matter: compose(const(a), const(b)).Apply(x) == a, since
	// const(b) is applied first (producing b) and then const(a) ignores
	// its input and yields a.
	m := Composition(Constant(a), Constant(b))
	assert.Equal(t, a, m.Apply(c))

	assert.Equal(t, c, Composition().Apply(c), "zero-ary composition is identity")
}

func TestFixedPoint(t *testing.T) {
	t.Parallel()

	f := newToyFactory()
	target := f.single([]int{1, 2, 3})

	// a morphism that unions in one more fixed member each time it's
	// applied, until it reaches `target` and stops changing.
	calls := 0
	stepper := &countingStepper{f: f, target: target, calls: &calls}

	out := FixedPoint(stepper, nil).Apply(arena.Zero)
	assert.Equal(t, target, out)
	assert.Greater(t, calls, 0)
}

type countingStepper struct {
	f      *toyFactory
	target arena.Handle
	calls  *int
}

func (s *countingStepper) Apply(h arena.Handle) arena.Handle {
	*s.calls++
	if h == s.target {
		return h
	}
	return s.f.Union(h, s.target)
}

func (s *countingStepper) CacheKey() any { return s }

func TestWrapperEquality(t *testing.T) {
	t.Parallel()

	f := newToyFactory()
	x := f.single([]int{1})

	w1 := Wrap(Constant(x))
	w2 := Wrap(Constant(x))
	w3 := Wrap(Constant(arena.Zero))

	assert.True(t, w1.Equal(w2))
	assert.False(t, w1.Equal(w3))
	assert.Equal(t, w1.Hash(), w2.Hash())
}

// insertAt inserts one fixed key into every member, and reports that key
// as its lowest relevant key, so Saturate can push it past every shallower
// key.
type insertAt struct {
	f   *toyFactory
	key int
	c   map[arena.Handle]arena.Handle
}

func newInsertAt(f *toyFactory, key int) *insertAt {
	return &insertAt{f: f, key: key, c: map[arena.Handle]arena.Handle{}}
}

func (ins *insertAt) Apply(h arena.Handle) arena.Handle {
	if out, ok := ins.c[h]; ok {
		return out
	}
	var out arena.Handle
	switch h {
	case arena.Zero:
		out = arena.Zero
	case arena.One:
		out = ins.f.node(ins.key, arena.One, arena.Zero)
	default:
		n := ins.f.a.Content(h)
		switch {
		case n.key < ins.key:
			out = ins.f.node(n.key, ins.Apply(n.take), ins.Apply(n.skip))
		case n.key == ins.key:
			out = ins.f.node(n.key, ins.f.Union(n.take, n.skip), arena.Zero)
		default:
			out = ins.f.node(ins.key, h, arena.Zero)
		}
	}
	ins.c[h] = out
	return out
}

func (ins *insertAt) CacheKey() any { return fmt.Sprintf("insertAt(%d)", ins.key) }

func (ins *insertAt) LowestRelevantKey() (int, bool) { return ins.key, true }

func TestSaturationMatchesDirectApplication(t *testing.T) {
	t.Parallel()

	f := newToyFactory()
	m := newInsertAt(f, 5)
	sat := Saturate[int](f, m)

	cases := [][]int{
		{1, 2},
		{1, 2, 3},
		{10, 20},
		{1, 5, 9},
		{},
	}

	for _, keys := range cases {
		x := f.single(keys)
		require.Equal(t, m.Apply(x), sat.Apply(x), "keys=%v", keys)
	}
}
