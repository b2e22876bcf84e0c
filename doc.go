// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package dd provides Set-Family and Map-Family Decision Diagrams (SFDD and
// MFDD): canonical, hash-consed, directed acyclic graphs that compactly
// represent large collections of sets (SFDD) or of key-to-value maps (MFDD)
// over a totally ordered key domain.
//
// A SfddFactory[K] or MfddFactory[K, V] owns a node arena and hands out
// family handles (SFdd[K] / MFdd[K, V]). Two encodings of the same
// collection of members always produce the same handle within one factory:
// canonicity is what makes union, intersection, containment and counting
// cheap and correct without ever enumerating members.
//
// On top of the family algebra, the morph subpackage provides first-class,
// cached, composable morphisms (identity, constant, union, intersection,
// symmetric difference, subtraction, composition, fixed point), and this
// package adds the DD-specific morphisms (insert, remove, filter, map,
// inductive) plus saturation, the optimization that lifts a morphism past
// the keys it does not touch.
//
// A factory and the handles, and morphisms it produces are not safe for
// concurrent use: all operations on one factory must happen on one
// goroutine at a time. Two factories are fully independent.
package dd
