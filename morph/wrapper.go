// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package morph

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/gaissmai/dd/internal/arena"
)

// Wrapper is a type-erased handle to any Morphism, so heterogeneous
// morphisms can live in the same slice, map, or per-factory interning
// table. Equality and hashing are forwarded to the boxed morphism's
// CacheKey, per §4.4.
type Wrapper struct {
	m Morphism
}

// Wrap boxes a concrete Morphism into a Wrapper.
func Wrap(m Morphism) Wrapper { return Wrapper{m: m} }

// Unwrap returns the boxed morphism.
func (w Wrapper) Unwrap() Morphism { return w.m }

// Apply forwards to the boxed morphism.
func (w Wrapper) Apply(h arena.Handle) arena.Handle { return w.m.Apply(h) }

// CacheKey forwards to the boxed morphism.
func (w Wrapper) CacheKey() any { return w.m.CacheKey() }

// Equal reports whether two wrappers box morphisms with equal CacheKeys.
func (w Wrapper) Equal(other Wrapper) bool {
	return w.CacheKey() == other.CacheKey()
}

// Hash returns a hash consistent with Equal, derived from the morphism's
// CacheKey. Used when a caller needs to place Wrappers in a structure that
// wants an explicit uint64 hash rather than Go's native map equality (the
// per-factory interning cache itself just uses CacheKey as a map key,
// since it is already comparable).
func (w Wrapper) Hash() uint64 {
	return xxhash.Sum64String(keyString(w.CacheKey()))
}

func keyString(k any) string {
	if s, ok := k.(string); ok {
		return s
	}
	// closure-carrying morphisms (inductive, map) report their own pointer
	// as CacheKey; %p yields a stable, distinct string per pointer for the
	// lifetime of the process.
	return fmt.Sprintf("%T:%p", k, k)
}
