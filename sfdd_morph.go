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

// sfddAlgebra adapts *SfddFactory[K] to morph.Algebra and morph.Structural[K]
// without exposing arena.Handle on the factory's public method set.
type sfddAlgebra[K cmp.Ordered] struct {
	f *SfddFactory[K]
}

func (a sfddAlgebra[K]) Union(x, y arena.Handle) arena.Handle { return a.f.union(x, y) }
func (a sfddAlgebra[K]) Intersection(x, y arena.Handle) arena.Handle {
	return a.f.intersection(x, y)
}

func (a sfddAlgebra[K]) SymmetricDifference(x, y arena.Handle) arena.Handle {
	return a.f.symmetricDifference(x, y)
}
func (a sfddAlgebra[K]) Subtract(x, y arena.Handle) arena.Handle { return a.f.subtract(x, y) }

func (a sfddAlgebra[K]) IsInternal(h arena.Handle) bool { return !a.f.isTerminal(h) }
func (a sfddAlgebra[K]) Key(h arena.Handle) K           { return a.f.content(h).key }

func (a sfddAlgebra[K]) RecurseChildren(h arena.Handle, rec func(arena.Handle) arena.Handle) arena.Handle {
	n := a.f.content(h)
	return a.f.node(n.key, rec(n.take), rec(n.skip))
}

func (f *SfddFactory[K]) alg() sfddAlgebra[K] { return sfddAlgebra[K]{f: f} }

// intern returns the canonical Wrapper for m, reusing a previously interned
// instance with an equal CacheKey so that repeated construction (e.g. two
// calls to Insert with the same keys) shares one instance (§4.4). Only the
// combinators keep an application cache to share; Insert, Remove and the
// filters recompute on every application.
func (f *SfddFactory[K]) intern(m morph.Morphism) morph.Wrapper {
	w := morph.Wrap(m)
	key := w.CacheKey()
	if cached, ok := f.morphisms[key]; ok {
		return cached
	}
	f.morphisms[key] = w
	return w
}

// SfddMorphism is a structure-preserving transformation on SFdd[K] values,
// produced by an SfddFactory's morphism constructors.
type SfddMorphism[K cmp.Ordered] struct {
	f *SfddFactory[K]
	w morph.Wrapper
}

// Apply computes the morphism's effect on s.
func (m SfddMorphism[K]) Apply(s SFdd[K]) SFdd[K] {
	if m.f != s.f {
		panic("dd: morphism applied to a family from a different factory")
	}
	return SFdd[K]{f: m.f, h: m.w.Apply(s.h)}
}

// Identity returns the morphism apply(x) = x.
func (f *SfddFactory[K]) Identity() SfddMorphism[K] {
	return SfddMorphism[K]{f: f, w: f.intern(morph.Identity())}
}

// ConstantMorphism returns the morphism apply(x) = v for every x.
func (f *SfddFactory[K]) ConstantMorphism(v SFdd[K]) SfddMorphism[K] {
	return SfddMorphism[K]{f: f, w: f.intern(morph.Constant(v.h))}
}

func (f *SfddFactory[K]) unwrapAll(ms []SfddMorphism[K]) []morph.Morphism {
	raw := make([]morph.Morphism, len(ms))
	for i, m := range ms {
		raw[i] = m.w.Unwrap()
	}
	return raw
}

// UnionMorphism returns the n-ary union of the given morphisms.
func (f *SfddFactory[K]) UnionMorphism(ms ...SfddMorphism[K]) SfddMorphism[K] {
	return SfddMorphism[K]{f: f, w: f.intern(morph.Union(f.alg(), f.unwrapAll(ms)...))}
}

// IntersectionMorphism returns the n-ary intersection of the given
// morphisms. Requires at least one operand.
func (f *SfddFactory[K]) IntersectionMorphism(ms ...SfddMorphism[K]) SfddMorphism[K] {
	return SfddMorphism[K]{f: f, w: f.intern(morph.Intersection(f.alg(), f.unwrapAll(ms)...))}
}

// SymmetricDifferenceMorphism returns the n-ary symmetric difference of the
// given morphisms.
func (f *SfddFactory[K]) SymmetricDifferenceMorphism(ms ...SfddMorphism[K]) SfddMorphism[K] {
	return SfddMorphism[K]{f: f, w: f.intern(morph.SymmetricDifference(f.alg(), f.unwrapAll(ms)...))}
}

// SubtractionMorphism returns the morphism apply(x) = a(x) ∖ b(x).
func (f *SfddFactory[K]) SubtractionMorphism(a, b SfddMorphism[K]) SfddMorphism[K] {
	return SfddMorphism[K]{f: f, w: f.intern(morph.Subtraction(f.alg(), a.w.Unwrap(), b.w.Unwrap()))}
}

// CompositionMorphism returns the n-ary composition of the given morphisms,
// applied right to left.
func (f *SfddFactory[K]) CompositionMorphism(ms ...SfddMorphism[K]) SfddMorphism[K] {
	return SfddMorphism[K]{f: f, w: f.intern(morph.Composition(f.unwrapAll(ms)...))}
}

// FixedPointMorphism returns the morphism that iterates m until the handle
// stops changing.
func (f *SfddFactory[K]) FixedPointMorphism(m SfddMorphism[K]) SfddMorphism[K] {
	return SfddMorphism[K]{f: f, w: f.intern(morph.FixedPoint(m.w.Unwrap(), f.logger))}
}

// Saturate lifts m past every key strictly below m's lowest relevant key
// (§4.6), if m reports one.
func (f *SfddFactory[K]) Saturate(m SfddMorphism[K]) SfddMorphism[K] {
	sat, ok := m.w.Unwrap().(morph.Saturable[K])
	if !ok {
		panic("dd: Saturate requires a morphism that reports LowestRelevantKey")
	}
	return SfddMorphism[K]{f: f, w: f.intern(morph.Saturate[K](f.alg(), sat))}
}

func checkIncreasing[K cmp.Ordered](keys []K, who string) {
	if len(keys) == 0 {
		panic("dd: " + who + " requires at least one key")
	}
	for i := 1; i < len(keys); i++ {
		if !(keys[i-1] < keys[i]) {
			panic("dd: " + who + " requires strictly increasing keys")
		}
	}
}

// insertMorphism adds a fixed, sorted set of keys to every member (§4.5).
type insertMorphism[K cmp.Ordered] struct {
	f    *SfddFactory[K]
	keys []K
}

// Insert returns the morphism that adds keys to every member of the family
// it is applied to. keys must be non-empty and strictly increasing.
func (f *SfddFactory[K]) Insert(keys ...K) SfddMorphism[K] {
	checkIncreasing(keys, "Insert")
	return SfddMorphism[K]{f: f, w: f.intern(insertMorphism[K]{f: f, keys: slices.Clone(keys)})}
}

func (m insertMorphism[K]) Apply(h arena.Handle) arena.Handle { return m.apply(h, m.keys) }

func (m insertMorphism[K]) apply(h arena.Handle, keys []K) arena.Handle {
	if len(keys) == 0 {
		return h
	}
	if h == arena.Zero {
		return arena.Zero
	}
	if h == arena.One {
		cur := arena.One
		for i := len(keys) - 1; i >= 0; i-- {
			cur = m.f.node(keys[i], cur, arena.Zero)
		}
		return cur
	}

	n := m.f.content(h)
	key0 := keys[0]
	switch {
	case n.key < key0:
		return m.f.node(n.key, m.apply(n.take, keys), m.apply(n.skip, keys))
	case n.key == key0:
		return m.f.node(n.key, m.apply(m.f.union(n.take, n.skip), keys[1:]), arena.Zero)
	default:
		return m.f.node(key0, m.apply(h, keys[1:]), arena.Zero)
	}
}

func (m insertMorphism[K]) CacheKey() any { return fmt.Sprintf("insert(%v)", m.keys) }

func (m insertMorphism[K]) LowestRelevantKey() (K, bool) { return m.keys[0], true }

// removeMorphism removes a fixed, sorted set of keys from every member.
type removeMorphism[K cmp.Ordered] struct {
	f    *SfddFactory[K]
	keys []K
}

// Remove returns the morphism that removes keys from every member of the
// family it is applied to. keys must be non-empty and strictly increasing.
func (f *SfddFactory[K]) Remove(keys ...K) SfddMorphism[K] {
	checkIncreasing(keys, "Remove")
	return SfddMorphism[K]{f: f, w: f.intern(removeMorphism[K]{f: f, keys: slices.Clone(keys)})}
}

func (m removeMorphism[K]) Apply(h arena.Handle) arena.Handle { return m.apply(h, m.keys) }

func (m removeMorphism[K]) apply(h arena.Handle, keys []K) arena.Handle {
	if len(keys) == 0 || h == arena.Zero || h == arena.One {
		return h
	}
	n := m.f.content(h)
	key0 := keys[0]
	switch {
	case n.key < key0:
		return m.f.node(n.key, m.apply(n.take, keys), m.apply(n.skip, keys))
	case n.key == key0:
		return m.f.union(m.apply(n.take, keys[1:]), m.apply(n.skip, keys))
	default:
		return m.apply(h, keys[1:])
	}
}

func (m removeMorphism[K]) CacheKey() any { return fmt.Sprintf("remove(%v)", m.keys) }

func (m removeMorphism[K]) LowestRelevantKey() (K, bool) { return m.keys[0], true }

// inclusiveFilterMorphism keeps members that contain every key in keys.
type inclusiveFilterMorphism[K cmp.Ordered] struct {
	f    *SfddFactory[K]
	keys []K
}

// InclusiveFilter returns the morphism that keeps only the members
// containing every one of keys. keys must be non-empty and strictly
// increasing.
func (f *SfddFactory[K]) InclusiveFilter(keys ...K) SfddMorphism[K] {
	checkIncreasing(keys, "InclusiveFilter")
	return SfddMorphism[K]{f: f, w: f.intern(inclusiveFilterMorphism[K]{f: f, keys: slices.Clone(keys)})}
}

func (m inclusiveFilterMorphism[K]) Apply(h arena.Handle) arena.Handle { return m.apply(h, m.keys) }

func (m inclusiveFilterMorphism[K]) apply(h arena.Handle, keys []K) arena.Handle {
	if len(keys) == 0 {
		return h
	}
	if h == arena.Zero {
		return arena.Zero
	}
	if h == arena.One {
		return arena.Zero
	}
	n := m.f.content(h)
	key0 := keys[0]
	switch {
	case n.key < key0:
		return m.f.node(n.key, m.apply(n.take, keys), m.apply(n.skip, keys))
	case n.key == key0:
		return m.f.node(n.key, m.apply(n.take, keys[1:]), arena.Zero)
	default:
		return arena.Zero
	}
}

func (m inclusiveFilterMorphism[K]) CacheKey() any { return fmt.Sprintf("inclusiveFilter(%v)", m.keys) }

func (m inclusiveFilterMorphism[K]) LowestRelevantKey() (K, bool) { return m.keys[0], true }

// exclusiveFilterMorphism keeps members that contain none of keys.
type exclusiveFilterMorphism[K cmp.Ordered] struct {
	f    *SfddFactory[K]
	keys []K
}

// ExclusiveFilter returns the morphism that keeps only the members
// containing none of keys. keys must be non-empty and strictly increasing.
func (f *SfddFactory[K]) ExclusiveFilter(keys ...K) SfddMorphism[K] {
	checkIncreasing(keys, "ExclusiveFilter")
	return SfddMorphism[K]{f: f, w: f.intern(exclusiveFilterMorphism[K]{f: f, keys: slices.Clone(keys)})}
}

func (m exclusiveFilterMorphism[K]) Apply(h arena.Handle) arena.Handle { return m.apply(h, m.keys) }

func (m exclusiveFilterMorphism[K]) apply(h arena.Handle, keys []K) arena.Handle {
	if len(keys) == 0 || h == arena.Zero {
		return h
	}
	if h == arena.One {
		return arena.One
	}
	n := m.f.content(h)
	key0 := keys[0]
	switch {
	case n.key < key0:
		return m.f.node(n.key, m.apply(n.take, keys), m.apply(n.skip, keys))
	case n.key == key0:
		return m.apply(n.skip, keys[1:])
	default:
		return m.apply(h, keys[1:])
	}
}

func (m exclusiveFilterMorphism[K]) CacheKey() any { return fmt.Sprintf("exclusiveFilter(%v)", m.keys) }

func (m exclusiveFilterMorphism[K]) LowestRelevantKey() (K, bool) { return m.keys[0], true }

// mapMorphism renames every key via a strictly order-preserving function.
// Closure-carrying: reports its own pointer identity as CacheKey, per
// morph.Morphism's documented convention.
type mapMorphism[K cmp.Ordered] struct {
	f *SfddFactory[K]
	g func(K) K
}

// Map returns the morphism that renames every key via g. g must be strictly
// increasing (g(a) < g(b) whenever a < b); violations surface as an
// invariant-violation panic from the node constructor the first time they
// would reorder two keys.
func (f *SfddFactory[K]) Map(g func(K) K) SfddMorphism[K] {
	return SfddMorphism[K]{f: f, w: morph.Wrap(&mapMorphism[K]{f: f, g: g})}
}

func (m *mapMorphism[K]) Apply(h arena.Handle) arena.Handle {
	if m.f.isTerminal(h) {
		return h
	}
	n := m.f.content(h)
	return m.f.node(m.g(n.key), m.Apply(n.take), m.Apply(n.skip))
}

func (m *mapMorphism[K]) CacheKey() any { return m }

func (m *mapMorphism[K]) LowestRelevantKey() (k K, ok bool) { return k, false }

// InductiveStep computes the family produced at an internal node given the
// already-transformed take and skip sub-results (§4.5's inductive scheme,
// grounded in the DDD/SDD inductive-homomorphism pattern used for
// transition relations and board-construction recursions).
type InductiveStep[K cmp.Ordered] func(key K, takeResult, skipResult SFdd[K]) SFdd[K]

// inductiveMorphism is the general user-defined recursive morphism: terminal
// handles go through atTerminal, internal nodes go through step with their
// children already transformed. Closure-carrying: reports pointer identity.
type inductiveMorphism[K cmp.Ordered] struct {
	f          *SfddFactory[K]
	atTerminal func(SFdd[K]) SFdd[K]
	step       InductiveStep[K]
	lowest     K
	hasLowest  bool
	cache      map[arena.Handle]arena.Handle
}

// Inductive returns a user-defined morphism with no declared lowest
// relevant key: Saturate leaves it unchanged.
func (f *SfddFactory[K]) Inductive(atTerminal func(SFdd[K]) SFdd[K], step InductiveStep[K]) SfddMorphism[K] {
	m := &inductiveMorphism[K]{f: f, atTerminal: atTerminal, step: step, cache: make(map[arena.Handle]arena.Handle)}
	return SfddMorphism[K]{f: f, w: morph.Wrap(m)}
}

// InductiveFrom is Inductive plus a declared lowest relevant key, so
// Saturate can lift it past keys known not to affect the result (used for
// transition-relation morphisms in symbolic reachability search, §4.6).
func (f *SfddFactory[K]) InductiveFrom(lowest K, atTerminal func(SFdd[K]) SFdd[K], step InductiveStep[K]) SfddMorphism[K] {
	m := &inductiveMorphism[K]{
		f: f, atTerminal: atTerminal, step: step,
		lowest: lowest, hasLowest: true,
		cache: make(map[arena.Handle]arena.Handle),
	}
	return SfddMorphism[K]{f: f, w: morph.Wrap(m)}
}

func (m *inductiveMorphism[K]) Apply(h arena.Handle) arena.Handle {
	if out, ok := m.cache[h]; ok {
		return out
	}

	var out arena.Handle
	if m.f.isTerminal(h) {
		out = m.atTerminal(SFdd[K]{f: m.f, h: h}).h
	} else {
		n := m.f.content(h)
		takeApplied := m.Apply(n.take)
		skipApplied := m.Apply(n.skip)
		out = m.step(n.key, SFdd[K]{f: m.f, h: takeApplied}, SFdd[K]{f: m.f, h: skipApplied}).h
	}

	m.cache[h] = out
	return out
}

func (m *inductiveMorphism[K]) CacheKey() any { return m }

func (m *inductiveMorphism[K]) LowestRelevantKey() (K, bool) { return m.lowest, m.hasLowest }
