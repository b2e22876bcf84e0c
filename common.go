// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package dd

import (
	"log/slog"

	"github.com/gaissmai/dd/internal/arena"
)

// config holds the construction-time options shared by SfddFactory and
// MfddFactory, following the teacher's functional-options convention
// (compare bart's bucket-capacity tunables and rudd's
// New(varnum, options ...func(*configs))).
type config struct {
	bucketCapacity int
	logger         *slog.Logger
}

// Option configures a SfddFactory or MfddFactory at construction time.
type Option func(*config)

// WithBucketCapacity overrides the default arena bucket capacity (§4.1).
// n must be positive.
func WithBucketCapacity(n int) Option {
	return func(c *config) { c.bucketCapacity = n }
}

// WithLogger attaches a structured logger used for debug-level
// instrumentation (arena bucket growth, fixed-point iteration counts). The
// default is nil, meaning no logging.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

func newConfig(opts []Option) config {
	c := config{bucketCapacity: arena.DefaultBucketCapacity}
	for _, o := range opts {
		o(&c)
	}
	return c
}

// pairKey is the cache key for binary algebra operations (§4.2): the
// unordered (handle-sorted) pair for commutative operations, the ordered
// pair as-is for subtraction.
type pairKey struct {
	a, b arena.Handle
}

func commutativeKey(a, b arena.Handle) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}
