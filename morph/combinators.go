// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package morph

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/gaissmai/dd/internal/arena"
)

// The CacheKey values of the generic combinators are simple strings so that
// two separately constructed but equal combinators compare equal without
// needing a hand-rolled comparable struct per combinator.

type identityMorphism struct{}

// Identity returns the morphism apply(x) = x.
func Identity() Morphism { return identityMorphism{} }

func (identityMorphism) Apply(h arena.Handle) arena.Handle { return h }
func (identityMorphism) CacheKey() any                     { return "identity" }

type constantMorphism struct {
	f arena.Handle
}

// Constant returns the morphism apply(x) = f for every x.
func Constant(f arena.Handle) Morphism {
	return constantMorphism{f: f}
}

func (c constantMorphism) Apply(arena.Handle) arena.Handle { return c.f }
func (c constantMorphism) CacheKey() any                   { return fmt.Sprintf("constant(%d)", c.f) }

// foldKind names the commutative fold combinators so their CacheKey
// distinguishes union from intersection from symmetric difference even
// when built from the same operand morphisms.
type foldKind int

const (
	foldUnion foldKind = iota
	foldIntersection
	foldSymmetricDifference
)

func (k foldKind) String() string {
	switch k {
	case foldUnion:
		return "union"
	case foldIntersection:
		return "intersection"
	case foldSymmetricDifference:
		return "symdiff"
	default:
		return "?"
	}
}

type foldMorphism struct {
	alg  Algebra
	kind foldKind
	ms   []Morphism
	c    *cache
}

func newFold(alg Algebra, kind foldKind, ms []Morphism) Morphism {
	return &foldMorphism{alg: alg, kind: kind, ms: ms, c: newCache()}
}

// Union returns the n-ary union of the given morphisms: apply(x) = ⋃ m_i(x).
// A zero-ary union is the constant Zero morphism.
func Union(alg Algebra, ms ...Morphism) Morphism {
	return newFold(alg, foldUnion, ms)
}

// Intersection returns the n-ary intersection of the given morphisms:
// apply(x) = ⋂ m_i(x). Requires at least one operand: intersection has no
// family-independent neutral element to fold from.
func Intersection(alg Algebra, ms ...Morphism) Morphism {
	if len(ms) == 0 {
		panic("dd: intersection morphism requires at least one operand")
	}
	return newFold(alg, foldIntersection, ms)
}

// SymmetricDifference returns the n-ary symmetric difference of the given
// morphisms, folded left to right. A zero-ary symmetric difference is the
// constant Zero morphism.
func SymmetricDifference(alg Algebra, ms ...Morphism) Morphism {
	return newFold(alg, foldSymmetricDifference, ms)
}

func (f *foldMorphism) Apply(h arena.Handle) arena.Handle {
	if out, ok := f.c.get(h); ok {
		return out
	}

	var acc arena.Handle
	switch f.kind {
	case foldIntersection:
		acc = f.ms[0].Apply(h)
		for _, m := range f.ms[1:] {
			acc = f.alg.Intersection(acc, m.Apply(h))
		}
	default:
		acc = arena.Zero
		combine := f.alg.Union
		if f.kind == foldSymmetricDifference {
			combine = f.alg.SymmetricDifference
		}
		for _, m := range f.ms {
			acc = combine(acc, m.Apply(h))
		}
	}

	f.c.put(h, acc)
	return acc
}

func (f *foldMorphism) CacheKey() any {
	keys := make([]string, len(f.ms))
	for i, m := range f.ms {
		keys[i] = fmt.Sprint(m.CacheKey())
	}
	return fmt.Sprintf("%s(%s)", f.kind, strings.Join(keys, ","))
}

type subtractionMorphism struct {
	alg  Algebra
	a, b Morphism
	c    *cache
}

// Subtraction returns the morphism apply(x) = a(x) ∖ b(x).
func Subtraction(alg Algebra, a, b Morphism) Morphism {
	return &subtractionMorphism{alg: alg, a: a, b: b, c: newCache()}
}

func (s *subtractionMorphism) Apply(h arena.Handle) arena.Handle {
	if out, ok := s.c.get(h); ok {
		return out
	}
	out := s.alg.Subtract(s.a.Apply(h), s.b.Apply(h))
	s.c.put(h, out)
	return out
}

func (s *subtractionMorphism) CacheKey() any {
	return fmt.Sprintf("subtract(%v,%v)", s.a.CacheKey(), s.b.CacheKey())
}

type compositionMorphism struct {
	// ms is applied right-to-left: ms[len-1] first, ms[0] last.
	ms []Morphism
	c  *cache
}

// Composition returns the n-ary composition of the given morphisms, applied
// right to left: Composition(m1, m2, m3).Apply(x) = m1(m2(m3(x))). A
// zero-ary composition is the identity morphism.
func Composition(ms ...Morphism) Morphism {
	if len(ms) == 0 {
		return Identity()
	}
	return &compositionMorphism{ms: ms, c: newCache()}
}

func (c *compositionMorphism) Apply(h arena.Handle) arena.Handle {
	if out, ok := c.c.get(h); ok {
		return out
	}
	out := h
	for i := len(c.ms) - 1; i >= 0; i-- {
		out = c.ms[i].Apply(out)
	}
	c.c.put(h, out)
	return out
}

func (c *compositionMorphism) CacheKey() any {
	keys := make([]string, len(c.ms))
	for i, m := range c.ms {
		keys[i] = fmt.Sprint(m.CacheKey())
	}
	return fmt.Sprintf("compose(%s)", strings.Join(keys, ","))
}

type fixedPointMorphism struct {
	m      Morphism
	c      *cache
	logger *slog.Logger
}

// FixedPoint returns the morphism that iterates x, m(x), m(m(x)), ... until
// the handle stops changing, and returns that handle. If logger is non-nil,
// each application logs the number of iterations taken at Debug level
// (§A.2's fixed-point instrumentation).
func FixedPoint(m Morphism, logger *slog.Logger) Morphism {
	return &fixedPointMorphism{m: m, c: newCache(), logger: logger}
}

func (f *fixedPointMorphism) Apply(h arena.Handle) arena.Handle {
	if out, ok := f.c.get(h); ok {
		return out
	}

	cur := h
	iterations := 0
	for {
		next := f.m.Apply(cur)
		iterations++
		if next == cur {
			break
		}
		cur = next
	}

	if f.logger != nil {
		f.logger.Debug("morph: fixed point reached", "iterations", iterations)
	}

	f.c.put(h, cur)
	return cur
}

func (f *fixedPointMorphism) CacheKey() any {
	return fmt.Sprintf("fixedpoint(%v)", f.m.CacheKey())
}
