// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package dd

// Cloner is an interface that enables deep cloning of MFDD values of type V.
// If a value implements Cloner[V], MfddFactory.Encode uses its Clone method
// instead of assigning the value by reference, so that distinct encoded
// members never end up sharing mutable state through one interned node.
// The MFDD morphisms (Insert, Inductive and the others) store values as
// given, without cloning them.
type Cloner[V any] interface {
	Clone() V
}
