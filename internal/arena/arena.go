// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package arena implements the bucketed, open-addressed hash-consing store
// shared by the SFDD and MFDD node factories.
//
// An Arena owns raw node storage and hands out stable Handle values: once a
// piece of Content is interned its Handle never changes, even across later
// growth of the arena, because buckets are appended, never resized or
// relocated in place. This is what lets Handle values double as cache keys
// in the family algebra and the morphism framework.
package arena

import "log/slog"

// Content is the payload of an interned node. Implementations must compare
// deeply via Equal and must hash consistently with Equal: if a.Equal(b)
// then a.Hash() must equal b.Hash().
type Content[C any] interface {
	Equal(other C) bool
	Hash() uint64
}

// Handle is a stable reference to an interned node, or to one of the two
// terminals. Handles from different Arenas must never be mixed.
type Handle int32

// Zero and One are the two terminals, allocated once per Arena and never
// stored in the probing table.
const (
	Zero Handle = 0
	One  Handle = 1
)

const firstRealHandle = 2

// DefaultBucketCapacity is the slot count per bucket used when a Factory is
// constructed without an explicit capacity.
const DefaultBucketCapacity = 1024

// maxProbes bounds the quadratic probe sequence tried within one bucket
// before giving up on it and moving to the next.
const maxProbes = 8

type slot[C any] struct {
	inUse   bool
	hash    uint64
	content C
}

// Arena is a generic hash-consing node store. The zero value is not usable;
// construct one with New.
type Arena[C Content[C]] struct {
	bucketCap int
	buckets   [][]slot[C]
	created   int
	logger    *slog.Logger
	name      string // used only in log messages, e.g. "sfdd" or "mfdd"
}

// New creates an Arena with the given bucket capacity (must be positive).
// logger may be nil, in which case bucket growth is not logged.
func New[C Content[C]](bucketCap int, logger *slog.Logger, name string) *Arena[C] {
	if bucketCap <= 0 {
		panic("dd: bucket capacity must be positive")
	}
	return &Arena[C]{
		bucketCap: bucketCap,
		logger:    logger,
		name:      name,
	}
}

// IsTerminal reports whether h is the Zero or One terminal.
func (a *Arena[C]) IsTerminal(h Handle) bool {
	return h == Zero || h == One
}

// CreatedCount returns the number of interned (non-terminal) nodes.
func (a *Arena[C]) CreatedCount() int {
	return a.created
}

// BucketCount returns the number of buckets currently allocated.
func (a *Arena[C]) BucketCount() int {
	return len(a.buckets)
}

// Content returns the payload of a previously interned handle. It panics if
// h is a terminal or otherwise not a handle produced by this Arena.
func (a *Arena[C]) Content(h Handle) C {
	if a.IsTerminal(h) {
		panic("dd: invariant violation: Content called on a terminal handle")
	}
	idx := int(h) - firstRealHandle
	bucketIdx, slotIdx := idx/a.bucketCap, idx%a.bucketCap
	s := &a.buckets[bucketIdx][slotIdx]
	if !s.inUse {
		panic("dd: invariant violation: handle does not reference a live node")
	}
	return s.content
}

// Intern returns the unique Handle for content, creating a new node if an
// equal one has not been seen before. hash must be content.Hash().
//
// Probing follows §4.1: within each existing bucket, up to maxProbes slots
// are tried starting at hash mod bucketCap with quadratic offsets; a free
// slot is claimed immediately, a matching occupied slot is returned. Only
// once every existing bucket has been exhausted is a fresh bucket appended.
func (a *Arena[C]) Intern(hash uint64, content C) Handle {
	base := int(hash % uint64(a.bucketCap))

	for bucketIdx := range a.buckets {
		bucket := a.buckets[bucketIdx]
		for i := 0; i < maxProbes; i++ {
			pos := (base + probeOffset(i)) % a.bucketCap
			s := &bucket[pos]

			if !s.inUse {
				s.inUse = true
				s.hash = hash
				s.content = content
				a.created++
				return a.handleOf(bucketIdx, pos)
			}

			if s.hash == hash && s.content.Equal(content) {
				return a.handleOf(bucketIdx, pos)
			}
		}
	}

	bucketIdx := len(a.buckets)
	a.growBucket()
	bucket := a.buckets[bucketIdx]
	bucket[base] = slot[C]{inUse: true, hash: hash, content: content}
	a.created++

	return a.handleOf(bucketIdx, base)
}

func (a *Arena[C]) growBucket() {
	a.buckets = append(a.buckets, make([]slot[C], a.bucketCap))
	if a.logger != nil {
		a.logger.Debug("dd: arena grew a bucket",
			slog.String("factory", a.name),
			slog.Int("bucket_count", len(a.buckets)),
			slog.Int("bucket_capacity", a.bucketCap),
		)
	}
}

func (a *Arena[C]) handleOf(bucketIdx, slotIdx int) Handle {
	return Handle(firstRealHandle + bucketIdx*a.bucketCap + slotIdx)
}

// probeOffset computes floor(0.5*i + 0.5*i*i) for i in [0, maxProbes).
func probeOffset(i int) int {
	return (i + i*i) / 2
}
