// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package dd

import (
	"iter"
	"math/rand/v2"

	"github.com/gaissmai/dd/internal/arena"
)

// All returns an iterator over every member of the map-family, visiting
// every take_map value (in map iteration order, which is unspecified) for
// a node before visiting its skip child, per §4.3.
func (m MFdd[K, V]) All() iter.Seq[[]Assignment[K, V]] {
	return func(yield func([]Assignment[K, V]) bool) {
		var path []Assignment[K, V]
		var walk func(h arena.Handle) bool
		walk = func(h arena.Handle) bool {
			if h == arena.Zero {
				return true
			}
			if h == arena.One {
				return yield(append([]Assignment[K, V](nil), path...))
			}
			n := m.f.content(h)
			for v, child := range n.takeMap {
				path = append(path, Assignment[K, V]{Key: n.key, Value: v})
				if !walk(child) {
					path = path[:len(path)-1]
					return false
				}
				path = path[:len(path)-1]
			}
			return walk(n.skip)
		}
		walk(m.h)
	}
}

// RandomElement draws one member uniformly at random, weighting each
// take_map value and the skip branch by its subtree member count. It is
// total (§7): the empty family has no member to draw, so it returns
// (nil, false) rather than failing.
func (m MFdd[K, V]) RandomElement(r *rand.Rand) ([]Assignment[K, V], bool) {
	if m.h == arena.Zero {
		return nil, false
	}

	var out []Assignment[K, V]
	h := m.h
	for h != arena.One {
		n := m.f.content(h)

		type branch struct {
			value V
			child arena.Handle
			count int
		}
		branches := make([]branch, 0, len(n.takeMap)+1)
		total := 0
		for v, child := range n.takeMap {
			c := m.f.count(child)
			branches = append(branches, branch{value: v, child: child, count: c})
			total += c
		}
		skipCount := m.f.count(n.skip)
		total += skipCount

		pick := int(r.Int64N(int64(total)))
		chosen := false
		for _, b := range branches {
			if pick < b.count {
				out = append(out, Assignment[K, V]{Key: n.key, Value: b.value})
				h = b.child
				chosen = true
				break
			}
			pick -= b.count
		}
		if !chosen {
			h = n.skip
		}
	}
	return out, true
}
