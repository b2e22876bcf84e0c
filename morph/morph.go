// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package morph implements the generic morphism framework of §4.4: a
// Morphism is a structure-preserving transformation on family handles, and
// the combinators here (Union, Intersection, SymmetricDifference,
// Subtraction, Composition, FixedPoint), each with its own per-instance
// cache, build new morphisms out of existing ones without ever enumerating
// members.
//
// This package knows nothing about SFDD or MFDD node shapes. It is handed
// an Algebra (the four set operations over opaque handles) by the owning
// factory, and, for saturation, a Structural view that knows how to look at
// one node's key and rebuild it with substituted children. SFDD- and
// MFDD-specific morphisms (insert, remove, filter, map, inductive) are
// built on top of this package but live next to their factories, since they
// also need to construct new nodes directly.
package morph

import "github.com/gaissmai/dd/internal/arena"

// Algebra supplies the family-level set operations a generic combinator
// needs to combine sub-results. Implemented by small unexported adapters
// over SfddFactory and MfddFactory.
type Algebra interface {
	Union(a, b arena.Handle) arena.Handle
	Intersection(a, b arena.Handle) arena.Handle
	SymmetricDifference(a, b arena.Handle) arena.Handle
	Subtract(a, b arena.Handle) arena.Handle
}

// Morphism is a structure-preserving transformation on family handles.
type Morphism interface {
	// Apply computes the morphism's effect on h. Results are not cached by
	// the caller; the combinators in this package, saturation and the
	// inductive morphisms cache their own applications, while the
	// DD-specific Insert, Remove, filter and map morphisms keep no
	// application cache and recompute on every call.
	Apply(h arena.Handle) arena.Handle

	// CacheKey identifies this morphism instance for the purpose of
	// morphism interning and wrapper equality (§4.4): two morphisms built
	// from equal construction parameters must report equal CacheKeys, and
	// the returned value must be a comparable Go value (usable with ==).
	// Closure-carrying morphisms (inductive, map) that cannot decide
	// semantic equality report their own pointer identity instead.
	CacheKey() any
}

// Structural abstracts over one DD family's node shape just enough for
// saturation to recurse past keys a morphism does not touch, without
// knowing whether "take" is a single child (SFDD) or a value-indexed set of
// children (MFDD).
type Structural[K any] interface {
	// IsInternal reports whether h denotes an internal (non-terminal) node.
	IsInternal(h arena.Handle) bool

	// Key returns the ordering key of an internal node. Must not be called
	// on a terminal.
	Key(h arena.Handle) K

	// RecurseChildren applies rec to every child of an internal node (for
	// SFDD: take and skip; for MFDD: every take_map value and skip) and
	// returns the node freshly built from the results, preserving the
	// node's own key. Must not be called on a terminal.
	RecurseChildren(h arena.Handle, rec func(arena.Handle) arena.Handle) arena.Handle
}

// Saturable is implemented by DD-specific morphisms that can report the
// smallest key they actually inspect, enabling automatic saturation
// (§4.6). hasLowest is false for morphisms with no meaningful lower bound
// (e.g. Map, MapValues, or Inductive without a declared key), in which
// case Saturate degenerates to the morphism itself.
type Saturable[K any] interface {
	Morphism
	LowestRelevantKey() (key K, hasLowest bool)
}

// cache is the per-instance application cache every combinator owns.
type cache struct {
	m map[arena.Handle]arena.Handle
}

func newCache() *cache {
	return &cache{m: make(map[arena.Handle]arena.Handle)}
}

func (c *cache) get(h arena.Handle) (arena.Handle, bool) {
	out, ok := c.m[h]
	return out, ok
}

func (c *cache) put(h, out arena.Handle) {
	c.m[h] = out
}
