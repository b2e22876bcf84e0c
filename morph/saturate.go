// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package morph

import (
	"cmp"
	"fmt"

	"github.com/gaissmai/dd/internal/arena"
)

type saturatedMorphism[K cmp.Ordered] struct {
	g         Structural[K]
	m         Morphism
	lowest    K
	hasLowest bool
	c         *cache
}

// Saturate lifts m to skip over every key below its lowest relevant key
// (§4.6), recursing structurally instead. If m reports no lowest relevant
// key, Saturate returns m itself: there is nothing to push past.
func Saturate[K cmp.Ordered](g Structural[K], m Saturable[K]) Morphism {
	lowest, hasLowest := m.LowestRelevantKey()
	if !hasLowest {
		return m
	}
	return &saturatedMorphism[K]{g: g, m: m, lowest: lowest, hasLowest: hasLowest, c: newCache()}
}

func (s *saturatedMorphism[K]) Apply(h arena.Handle) arena.Handle {
	if out, ok := s.c.get(h); ok {
		return out
	}

	var out arena.Handle
	if s.g.IsInternal(h) && s.g.Key(h) < s.lowest {
		out = s.g.RecurseChildren(h, s.Apply)
	} else {
		out = s.m.Apply(h)
	}

	s.c.put(h, out)
	return out
}

func (s *saturatedMorphism[K]) CacheKey() any {
	return fmt.Sprintf("saturate(%v,below=%v)", s.m.CacheKey(), s.lowest)
}
