// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package dd

import (
	"iter"
	"math/rand/v2"

	"github.com/gaissmai/dd/internal/arena"
)

// All returns an iterator over every member of the family, in the
// depth-first, take-before-skip order implied by the node structure (§4.3).
// Each yielded slice is freshly allocated and safe to retain.
func (s SFdd[K]) All() iter.Seq[[]K] {
	return func(yield func([]K) bool) {
		var path []K
		var walk func(h arena.Handle) bool
		walk = func(h arena.Handle) bool {
			if h == arena.Zero {
				return true
			}
			if h == arena.One {
				return yield(append([]K(nil), path...))
			}
			n := s.f.content(h)
			path = append(path, n.key)
			if !walk(n.take) {
				path = path[:len(path)-1]
				return false
			}
			path = path[:len(path)-1]
			return walk(n.skip)
		}
		walk(s.h)
	}
}

// RandomElement draws one member of the family uniformly at random, using
// the subtree member counts to weight the take/skip branch choice at every
// node. It is total (§7): the empty family has no member to draw, so it
// returns (nil, false) rather than failing.
func (s SFdd[K]) RandomElement(r *rand.Rand) ([]K, bool) {
	if s.h == arena.Zero {
		return nil, false
	}

	var out []K
	h := s.h
	for h != arena.One {
		n := s.f.content(h)
		takeCount := s.f.count(n.take)
		skipCount := s.f.count(n.skip)
		if int(r.Int64N(int64(takeCount+skipCount))) < takeCount {
			out = append(out, n.key)
			h = n.take
		} else {
			h = n.skip
		}
	}
	return out, true
}
