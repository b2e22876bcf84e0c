// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package dd

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/gaissmai/dd/internal/arena"
	"github.com/gaissmai/dd/morph"
)

type mfddAlgebra[K cmp.Ordered, V comparable] struct {
	f *MfddFactory[K, V]
}

func (a mfddAlgebra[K, V]) Union(x, y arena.Handle) arena.Handle { return a.f.union(x, y) }
func (a mfddAlgebra[K, V]) Intersection(x, y arena.Handle) arena.Handle {
	return a.f.intersection(x, y)
}

func (a mfddAlgebra[K, V]) SymmetricDifference(x, y arena.Handle) arena.Handle {
	return a.f.symmetricDifference(x, y)
}
func (a mfddAlgebra[K, V]) Subtract(x, y arena.Handle) arena.Handle { return a.f.subtract(x, y) }

func (a mfddAlgebra[K, V]) IsInternal(h arena.Handle) bool { return !a.f.isTerminal(h) }
func (a mfddAlgebra[K, V]) Key(h arena.Handle) K           { return a.f.content(h).key }

func (a mfddAlgebra[K, V]) RecurseChildren(h arena.Handle, rec func(arena.Handle) arena.Handle) arena.Handle {
	n := a.f.content(h)
	merged := make(map[V]arena.Handle, len(n.takeMap))
	for v, child := range n.takeMap {
		merged[v] = rec(child)
	}
	return a.f.node(n.key, buildTakeMap(merged), rec(n.skip))
}

func (f *MfddFactory[K, V]) alg() mfddAlgebra[K, V] { return mfddAlgebra[K, V]{f: f} }

func (f *MfddFactory[K, V]) intern(m morph.Morphism) morph.Wrapper {
	w := morph.Wrap(m)
	key := w.CacheKey()
	if cached, ok := f.morphisms[key]; ok {
		return cached
	}
	f.morphisms[key] = w
	return w
}

// MfddMorphism is a structure-preserving transformation on MFdd[K,V]
// values, produced by an MfddFactory's morphism constructors.
type MfddMorphism[K cmp.Ordered, V comparable] struct {
	f *MfddFactory[K, V]
	w morph.Wrapper
}

// Apply computes the morphism's effect on m.
func (w MfddMorphism[K, V]) Apply(m MFdd[K, V]) MFdd[K, V] {
	if w.f != m.f {
		panic("dd: morphism applied to a family from a different factory")
	}
	return MFdd[K, V]{f: w.f, h: w.w.Apply(m.h)}
}

// Identity returns the morphism apply(x) = x.
func (f *MfddFactory[K, V]) Identity() MfddMorphism[K, V] {
	return MfddMorphism[K, V]{f: f, w: f.intern(morph.Identity())}
}

// ConstantMorphism returns the morphism apply(x) = v for every x.
func (f *MfddFactory[K, V]) ConstantMorphism(v MFdd[K, V]) MfddMorphism[K, V] {
	return MfddMorphism[K, V]{f: f, w: f.intern(morph.Constant(v.h))}
}

func (f *MfddFactory[K, V]) unwrapAll(ms []MfddMorphism[K, V]) []morph.Morphism {
	raw := make([]morph.Morphism, len(ms))
	for i, m := range ms {
		raw[i] = m.w.Unwrap()
	}
	return raw
}

// UnionMorphism returns the n-ary union of the given morphisms.
func (f *MfddFactory[K, V]) UnionMorphism(ms ...MfddMorphism[K, V]) MfddMorphism[K, V] {
	return MfddMorphism[K, V]{f: f, w: f.intern(morph.Union(f.alg(), f.unwrapAll(ms)...))}
}

// IntersectionMorphism returns the n-ary intersection of the given
// morphisms. Requires at least one operand.
func (f *MfddFactory[K, V]) IntersectionMorphism(ms ...MfddMorphism[K, V]) MfddMorphism[K, V] {
	return MfddMorphism[K, V]{f: f, w: f.intern(morph.Intersection(f.alg(), f.unwrapAll(ms)...))}
}

// SymmetricDifferenceMorphism returns the n-ary symmetric difference of the
// given morphisms.
func (f *MfddFactory[K, V]) SymmetricDifferenceMorphism(ms ...MfddMorphism[K, V]) MfddMorphism[K, V] {
	return MfddMorphism[K, V]{f: f, w: f.intern(morph.SymmetricDifference(f.alg(), f.unwrapAll(ms)...))}
}

// SubtractionMorphism returns the morphism apply(x) = a(x) ∖ b(x).
func (f *MfddFactory[K, V]) SubtractionMorphism(a, b MfddMorphism[K, V]) MfddMorphism[K, V] {
	return MfddMorphism[K, V]{f: f, w: f.intern(morph.Subtraction(f.alg(), a.w.Unwrap(), b.w.Unwrap()))}
}

// CompositionMorphism returns the n-ary composition of the given morphisms,
// applied right to left.
func (f *MfddFactory[K, V]) CompositionMorphism(ms ...MfddMorphism[K, V]) MfddMorphism[K, V] {
	return MfddMorphism[K, V]{f: f, w: f.intern(morph.Composition(f.unwrapAll(ms)...))}
}

// FixedPointMorphism returns the morphism that iterates m until the handle
// stops changing.
func (f *MfddFactory[K, V]) FixedPointMorphism(m MfddMorphism[K, V]) MfddMorphism[K, V] {
	return MfddMorphism[K, V]{f: f, w: f.intern(morph.FixedPoint(m.w.Unwrap(), f.logger))}
}

// Saturate lifts m past every key strictly below m's lowest relevant key
// (§4.6), if m reports one.
func (f *MfddFactory[K, V]) Saturate(m MfddMorphism[K, V]) MfddMorphism[K, V] {
	sat, ok := m.w.Unwrap().(morph.Saturable[K])
	if !ok {
		panic("dd: Saturate requires a morphism that reports LowestRelevantKey")
	}
	return MfddMorphism[K, V]{f: f, w: f.intern(morph.Saturate[K](f.alg(), sat))}
}

func checkIncreasingAssignments[K cmp.Ordered, V any](assigns []Assignment[K, V], who string) {
	if len(assigns) == 0 {
		panic("dd: " + who + " requires at least one assignment")
	}
	for i := 1; i < len(assigns); i++ {
		if !(assigns[i-1].Key < assigns[i].Key) {
			panic("dd: " + who + " requires strictly increasing keys")
		}
	}
}

func checkIncreasingKeysM[K cmp.Ordered](keys []K, who string) {
	if len(keys) == 0 {
		panic("dd: " + who + " requires at least one key")
	}
	for i := 1; i < len(keys); i++ {
		if !(keys[i-1] < keys[i]) {
			panic("dd: " + who + " requires strictly increasing keys")
		}
	}
}

// insertAssignmentsMorphism overwrites (or adds) the given key/value
// bindings on every member (§4.5's MFDD analogue of SFDD's Insert).
type insertAssignmentsMorphism[K cmp.Ordered, V comparable] struct {
	f       *MfddFactory[K, V]
	assigns []Assignment[K, V]
}

// Insert returns the morphism that forces the given key/value bindings onto
// every member of the family it is applied to, overwriting any existing
// value at those keys. assigns must be non-empty with strictly increasing
// keys.
func (f *MfddFactory[K, V]) Insert(assigns ...Assignment[K, V]) MfddMorphism[K, V] {
	checkIncreasingAssignments(assigns, "Insert")
	return MfddMorphism[K, V]{f: f, w: f.intern(insertAssignmentsMorphism[K, V]{f: f, assigns: slices.Clone(assigns)})}
}

func (m insertAssignmentsMorphism[K, V]) Apply(h arena.Handle) arena.Handle {
	return m.apply(h, m.assigns)
}

func (m insertAssignmentsMorphism[K, V]) apply(h arena.Handle, assigns []Assignment[K, V]) arena.Handle {
	if len(assigns) == 0 {
		return h
	}
	if h == arena.Zero {
		return arena.Zero
	}
	if h == arena.One {
		cur := arena.One
		for i := len(assigns) - 1; i >= 0; i-- {
			cur = m.f.node(assigns[i].Key, map[V]arena.Handle{assigns[i].Value: cur}, arena.Zero)
		}
		return cur
	}

	n := m.f.content(h)
	a0 := assigns[0]
	switch {
	case n.key < a0.Key:
		merged := make(map[V]arena.Handle, len(n.takeMap))
		for v, child := range n.takeMap {
			merged[v] = m.apply(child, assigns)
		}
		return m.f.node(n.key, buildTakeMap(merged), m.apply(n.skip, assigns))
	case n.key == a0.Key:
		rest := assigns[1:]
		acc := m.apply(n.skip, rest)
		for _, child := range n.takeMap {
			acc = m.f.union(acc, m.apply(child, rest))
		}
		return m.f.node(n.key, map[V]arena.Handle{a0.Value: acc}, arena.Zero)
	default:
		return m.f.node(a0.Key, map[V]arena.Handle{a0.Value: m.apply(h, assigns[1:])}, arena.Zero)
	}
}

func (m insertAssignmentsMorphism[K, V]) CacheKey() any {
	return fmt.Sprintf("insert(%v)", m.assigns)
}

func (m insertAssignmentsMorphism[K, V]) LowestRelevantKey() (K, bool) {
	return m.assigns[0].Key, true
}

// removeKeysMorphism unbinds the given keys from every member, merging
// whatever continuations existed at each removed key.
type removeKeysMorphism[K cmp.Ordered, V comparable] struct {
	f    *MfddFactory[K, V]
	keys []K
}

// RemoveKeys returns the morphism that removes the given keys (and
// whichever values they held) from every member. keys must be non-empty
// and strictly increasing.
func (f *MfddFactory[K, V]) RemoveKeys(keys ...K) MfddMorphism[K, V] {
	checkIncreasingKeysM(keys, "RemoveKeys")
	return MfddMorphism[K, V]{f: f, w: f.intern(removeKeysMorphism[K, V]{f: f, keys: slices.Clone(keys)})}
}

func (m removeKeysMorphism[K, V]) Apply(h arena.Handle) arena.Handle { return m.apply(h, m.keys) }

func (m removeKeysMorphism[K, V]) apply(h arena.Handle, keys []K) arena.Handle {
	if len(keys) == 0 || h == arena.Zero || h == arena.One {
		return h
	}
	n := m.f.content(h)
	k0 := keys[0]
	switch {
	case n.key < k0:
		merged := make(map[V]arena.Handle, len(n.takeMap))
		for v, child := range n.takeMap {
			merged[v] = m.apply(child, keys)
		}
		return m.f.node(n.key, buildTakeMap(merged), m.apply(n.skip, keys))
	case n.key == k0:
		rest := keys[1:]
		acc := m.apply(n.skip, rest)
		for _, child := range n.takeMap {
			acc = m.f.union(acc, m.apply(child, rest))
		}
		return acc
	default:
		return m.apply(h, keys[1:])
	}
}

func (m removeKeysMorphism[K, V]) CacheKey() any { return fmt.Sprintf("removeKeys(%v)", m.keys) }

func (m removeKeysMorphism[K, V]) LowestRelevantKey() (K, bool) { return m.keys[0], true }

// inclusiveFilterMMorphism keeps members that carry every given key/value
// binding exactly.
type inclusiveFilterMMorphism[K cmp.Ordered, V comparable] struct {
	f       *MfddFactory[K, V]
	assigns []Assignment[K, V]
}

// InclusiveFilter returns the morphism that keeps only members carrying
// every one of assigns as an exact key/value binding. assigns must be
// non-empty with strictly increasing keys.
func (f *MfddFactory[K, V]) InclusiveFilter(assigns ...Assignment[K, V]) MfddMorphism[K, V] {
	checkIncreasingAssignments(assigns, "InclusiveFilter")
	return MfddMorphism[K, V]{f: f, w: f.intern(inclusiveFilterMMorphism[K, V]{f: f, assigns: slices.Clone(assigns)})}
}

func (m inclusiveFilterMMorphism[K, V]) Apply(h arena.Handle) arena.Handle {
	return m.apply(h, m.assigns)
}

func (m inclusiveFilterMMorphism[K, V]) apply(h arena.Handle, assigns []Assignment[K, V]) arena.Handle {
	if len(assigns) == 0 {
		return h
	}
	if h == arena.Zero || h == arena.One {
		return arena.Zero
	}
	n := m.f.content(h)
	a0 := assigns[0]
	switch {
	case n.key < a0.Key:
		merged := make(map[V]arena.Handle, len(n.takeMap))
		for v, child := range n.takeMap {
			merged[v] = m.apply(child, assigns)
		}
		return m.f.node(n.key, buildTakeMap(merged), m.apply(n.skip, assigns))
	case n.key == a0.Key:
		child, ok := n.takeMap[a0.Value]
		if !ok {
			return arena.Zero
		}
		return m.f.node(n.key, map[V]arena.Handle{a0.Value: m.apply(child, assigns[1:])}, arena.Zero)
	default:
		return arena.Zero
	}
}

func (m inclusiveFilterMMorphism[K, V]) CacheKey() any {
	return fmt.Sprintf("inclusiveFilter(%v)", m.assigns)
}

func (m inclusiveFilterMMorphism[K, V]) LowestRelevantKey() (K, bool) {
	return m.assigns[0].Key, true
}

// exclusiveFilterMMorphism keeps members that carry none of the given
// key/value bindings (the key may still appear with a different value, or
// be absent entirely).
type exclusiveFilterMMorphism[K cmp.Ordered, V comparable] struct {
	f       *MfddFactory[K, V]
	assigns []Assignment[K, V]
}

// ExclusiveFilter returns the morphism that keeps only members carrying
// none of assigns as an exact key/value binding. assigns must be non-empty
// with strictly increasing keys.
func (f *MfddFactory[K, V]) ExclusiveFilter(assigns ...Assignment[K, V]) MfddMorphism[K, V] {
	checkIncreasingAssignments(assigns, "ExclusiveFilter")
	return MfddMorphism[K, V]{f: f, w: f.intern(exclusiveFilterMMorphism[K, V]{f: f, assigns: slices.Clone(assigns)})}
}

func (m exclusiveFilterMMorphism[K, V]) Apply(h arena.Handle) arena.Handle {
	return m.apply(h, m.assigns)
}

func (m exclusiveFilterMMorphism[K, V]) apply(h arena.Handle, assigns []Assignment[K, V]) arena.Handle {
	if len(assigns) == 0 || h == arena.Zero {
		return h
	}
	if h == arena.One {
		return arena.One
	}
	n := m.f.content(h)
	a0 := assigns[0]
	switch {
	case n.key < a0.Key:
		merged := make(map[V]arena.Handle, len(n.takeMap))
		for v, child := range n.takeMap {
			merged[v] = m.apply(child, assigns)
		}
		return m.f.node(n.key, buildTakeMap(merged), m.apply(n.skip, assigns))
	case n.key == a0.Key:
		rest := assigns[1:]
		merged := make(map[V]arena.Handle, len(n.takeMap))
		for v, child := range n.takeMap {
			if v == a0.Value {
				continue
			}
			merged[v] = m.apply(child, rest)
		}
		return m.f.node(n.key, buildTakeMap(merged), m.apply(n.skip, rest))
	default:
		return m.apply(h, assigns[1:])
	}
}

func (m exclusiveFilterMMorphism[K, V]) CacheKey() any {
	return fmt.Sprintf("exclusiveFilter(%v)", m.assigns)
}

func (m exclusiveFilterMMorphism[K, V]) LowestRelevantKey() (K, bool) {
	return m.assigns[0].Key, true
}

// mapValuesMorphism remaps every bound value via g, merging any values that
// collapse onto the same result (§4.5, the MFDD analogue of SFDD's Map).
// Closure-carrying: reports its own pointer identity as CacheKey.
type mapValuesMorphism[K cmp.Ordered, V comparable] struct {
	f *MfddFactory[K, V]
	g func(K, V) V
}

// MapValues returns the morphism that replaces every bound value v at key k
// with g(k, v), merging members whose values g maps onto the same result.
func (f *MfddFactory[K, V]) MapValues(g func(K, V) V) MfddMorphism[K, V] {
	return MfddMorphism[K, V]{f: f, w: morph.Wrap(&mapValuesMorphism[K, V]{f: f, g: g})}
}

func (m *mapValuesMorphism[K, V]) Apply(h arena.Handle) arena.Handle {
	if m.f.isTerminal(h) {
		return h
	}
	n := m.f.content(h)
	merged := make(map[V]arena.Handle, len(n.takeMap))
	for v, child := range n.takeMap {
		nv := m.g(n.key, v)
		newChild := m.Apply(child)
		if existing, ok := merged[nv]; ok {
			merged[nv] = m.f.union(existing, newChild)
		} else {
			merged[nv] = newChild
		}
	}
	return m.f.node(n.key, buildTakeMap(merged), m.Apply(n.skip))
}

func (m *mapValuesMorphism[K, V]) CacheKey() any { return m }

func (m *mapValuesMorphism[K, V]) LowestRelevantKey() (k K, ok bool) { return k, false }

// MfddInductiveStep computes the family produced at an internal node given
// the already-transformed take_map results (keyed by the original value)
// and skip result (§4.5).
type MfddInductiveStep[K cmp.Ordered, V comparable] func(key K, takeResults map[V]MFdd[K, V], skipResult MFdd[K, V]) MFdd[K, V]

type mfddInductiveMorphism[K cmp.Ordered, V comparable] struct {
	f          *MfddFactory[K, V]
	atTerminal func(MFdd[K, V]) MFdd[K, V]
	step       MfddInductiveStep[K, V]
	lowest     K
	hasLowest  bool
	cache      map[arena.Handle]arena.Handle
}

// Inductive returns a user-defined morphism with no declared lowest
// relevant key.
func (f *MfddFactory[K, V]) Inductive(atTerminal func(MFdd[K, V]) MFdd[K, V], step MfddInductiveStep[K, V]) MfddMorphism[K, V] {
	m := &mfddInductiveMorphism[K, V]{f: f, atTerminal: atTerminal, step: step, cache: make(map[arena.Handle]arena.Handle)}
	return MfddMorphism[K, V]{f: f, w: morph.Wrap(m)}
}

// InductiveFrom is Inductive plus a declared lowest relevant key, letting
// Saturate lift it past keys known not to affect the result — the shape
// used for MFDD transition-relation morphisms in symbolic reachability
// search (§4.6).
func (f *MfddFactory[K, V]) InductiveFrom(lowest K, atTerminal func(MFdd[K, V]) MFdd[K, V], step MfddInductiveStep[K, V]) MfddMorphism[K, V] {
	m := &mfddInductiveMorphism[K, V]{
		f: f, atTerminal: atTerminal, step: step,
		lowest: lowest, hasLowest: true,
		cache: make(map[arena.Handle]arena.Handle),
	}
	return MfddMorphism[K, V]{f: f, w: morph.Wrap(m)}
}

func (m *mfddInductiveMorphism[K, V]) Apply(h arena.Handle) arena.Handle {
	if out, ok := m.cache[h]; ok {
		return out
	}

	var out arena.Handle
	if m.f.isTerminal(h) {
		out = m.atTerminal(MFdd[K, V]{f: m.f, h: h}).h
	} else {
		n := m.f.content(h)
		takeResults := make(map[V]MFdd[K, V], len(n.takeMap))
		for v, child := range n.takeMap {
			takeResults[v] = MFdd[K, V]{f: m.f, h: m.Apply(child)}
		}
		skipResult := MFdd[K, V]{f: m.f, h: m.Apply(n.skip)}
		out = m.step(n.key, takeResults, skipResult).h
	}

	m.cache[h] = out
	return out
}

func (m *mfddInductiveMorphism[K, V]) CacheKey() any { return m }

func (m *mfddInductiveMorphism[K, V]) LowestRelevantKey() (K, bool) { return m.lowest, m.hasLowest }
