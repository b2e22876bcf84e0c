// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package dd

import (
	"cmp"
	"log/slog"
	"maps"
	"slices"

	"github.com/gaissmai/dd/internal/arena"
	"github.com/gaissmai/dd/morph"
)

// mfddNode is the content of one interned MFDD internal node:
// ⟨k, take_map, skip⟩, where take_map binds each distinct value assigned to
// key k to the subtree for the assignments that follow.
type mfddNode[K cmp.Ordered, V comparable] struct {
	key      K
	takeMap  map[V]arena.Handle
	skip     arena.Handle
}

func (n mfddNode[K, V]) Equal(o mfddNode[K, V]) bool {
	if n.key != o.key || n.skip != o.skip || len(n.takeMap) != len(o.takeMap) {
		return false
	}
	for v, h := range n.takeMap {
		oh, ok := o.takeMap[v]
		if !ok || oh != h {
			return false
		}
	}
	return true
}

func (n mfddNode[K, V]) Hash() uint64 {
	parts := make([]uint64, 0, len(n.takeMap))
	for v, h := range n.takeMap {
		parts = append(parts, arena.CombineHashes(arena.HashOrdered(v), uint64(h)))
	}
	return arena.CombineHashes(
		arena.HashOrdered(n.key),
		arena.CombineHashesUnordered(parts...),
		uint64(n.skip),
	)
}

// MfddFactory owns the node arena for one family of MFDDs over key type K
// and value type V. As with SfddFactory, every node is canonical: equal
// map-families always share one handle (§3). The zero value is not usable;
// construct one with NewMfddFactory.
type MfddFactory[K cmp.Ordered, V comparable] struct {
	a *arena.Arena[mfddNode[K, V]]

	unionCache        map[pairKey]arena.Handle
	intersectionCache map[pairKey]arena.Handle
	symdiffCache      map[pairKey]arena.Handle
	subCache          map[pairKey]arena.Handle
	countCache        map[arena.Handle]int

	naryUnionCache        map[string]arena.Handle
	naryIntersectionCache map[string]arena.Handle

	morphisms map[any]morph.Wrapper

	logger *slog.Logger
}

// NewMfddFactory constructs an empty MFDD factory.
func NewMfddFactory[K cmp.Ordered, V comparable](opts ...Option) *MfddFactory[K, V] {
	cfg := newConfig(opts)
	return &MfddFactory[K, V]{
		a:                 arena.New[mfddNode[K, V]](cfg.bucketCapacity, cfg.logger, "mfdd"),
		unionCache:        make(map[pairKey]arena.Handle),
		intersectionCache: make(map[pairKey]arena.Handle),
		symdiffCache:      make(map[pairKey]arena.Handle),
		subCache:          make(map[pairKey]arena.Handle),
		countCache:        make(map[arena.Handle]int),

		naryUnionCache:        make(map[string]arena.Handle),
		naryIntersectionCache: make(map[string]arena.Handle),

		morphisms: make(map[any]morph.Wrapper),
		logger:    cfg.logger,
	}
}

// Zero returns the handle for the empty map-family ∅.
func (f *MfddFactory[K, V]) Zero() MFdd[K, V] { return MFdd[K, V]{f: f, h: arena.Zero} }

// One returns the handle for the family containing just the empty
// assignment.
func (f *MfddFactory[K, V]) One() MFdd[K, V] { return MFdd[K, V]{f: f, h: arena.One} }

// CreatedCount reports the number of interned (non-terminal) nodes.
func (f *MfddFactory[K, V]) CreatedCount() int { return f.a.CreatedCount() }

// Stats reports arena-level instrumentation: the number of interned nodes
// and the number of buckets the arena has grown to (see SfddFactory.Stats
// for why this replaces the teacher's pointer-pool live/total counters).
func (f *MfddFactory[K, V]) Stats() (createdCount, bucketCount int) {
	return f.a.CreatedCount(), f.a.BucketCount()
}

func (f *MfddFactory[K, V]) isTerminal(h arena.Handle) bool { return f.a.IsTerminal(h) }

func (f *MfddFactory[K, V]) content(h arena.Handle) mfddNode[K, V] { return f.a.Content(h) }

// node is the sole constructor of internal nodes. It enforces the "no
// vanishing take" rule (entries pointing to Zero are dropped, and an empty
// take_map collapses to skip) and the ordering invariant across every
// take_map child and the skip child. takeMap is taken by reference;
// callers must not mutate it afterwards.
func (f *MfddFactory[K, V]) node(key K, takeMap map[V]arena.Handle, skip arena.Handle) arena.Handle {
	for _, child := range takeMap {
		if child == arena.Zero {
			takeMap = buildTakeMap(takeMap)
			break
		}
	}
	if len(takeMap) == 0 {
		return skip
	}

	for _, child := range takeMap {
		if !f.isTerminal(child) && !(key < f.content(child).key) {
			panic("dd: invariant violation: take child key must exceed parent key")
		}
	}
	if !f.isTerminal(skip) && !(key < f.content(skip).key) {
		panic("dd: invariant violation: skip child key must exceed parent key")
	}

	n := mfddNode[K, V]{key: key, takeMap: takeMap, skip: skip}
	return f.a.Intern(n.Hash(), n)
}

// Assignment is one key/value binding within a member of a map-family.
type Assignment[K cmp.Ordered, V any] struct {
	Key   K
	Value V
}

// Encode builds the map-family containing exactly the given members. The
// assignments of a member may come in any order; a key that appears more
// than once within one member panics, since a member is a partial function
// from K to V, not a multiset of bindings.
func (f *MfddFactory[K, V]) Encode(members ...[]Assignment[K, V]) MFdd[K, V] {
	h := arena.Zero
	for _, m := range members {
		h = f.union(h, f.encodeOne(m))
	}
	return MFdd[K, V]{f: f, h: h}
}

func (f *MfddFactory[K, V]) encodeOne(member []Assignment[K, V]) arena.Handle {
	sorted := slices.Clone(member)
	slices.SortFunc(sorted, func(a, b Assignment[K, V]) int { return cmp.Compare(a.Key, b.Key) })
	for i := 1; i < len(sorted); i++ {
		if !(sorted[i-1].Key < sorted[i].Key) {
			panic("dd: MFDD member must have strictly increasing, non-repeating keys")
		}
	}

	h := arena.One
	for i := len(sorted) - 1; i >= 0; i-- {
		v := sorted[i].Value
		if cl, ok := any(v).(Cloner[V]); ok {
			v = cl.Clone()
		}
		h = f.node(sorted[i].Key, map[V]arena.Handle{v: h}, arena.Zero)
	}
	return h
}

// MFdd is a handle to one MFDD map-family value produced by an
// MfddFactory. The zero value is not meaningful; obtain values from a
// factory's Zero, One, Encode, or from algebra/morphism operations.
type MFdd[K cmp.Ordered, V comparable] struct {
	f *MfddFactory[K, V]
	h arena.Handle
}

// Factory returns the owning factory.
func (m MFdd[K, V]) Factory() *MfddFactory[K, V] { return m.f }

func (m MFdd[K, V]) checkSameFactory(o MFdd[K, V]) {
	if m.f != o.f {
		panic("dd: operands belong to different factories")
	}
}

// cloneTakeMap returns a shallow copy of a take_map, used whenever a new
// node is built from an existing one's map with one or more entries changed.
func cloneTakeMap[V comparable](m map[V]arena.Handle) map[V]arena.Handle {
	return maps.Clone(m)
}
