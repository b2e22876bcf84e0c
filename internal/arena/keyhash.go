// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package arena

import (
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// HashOrdered hashes a key of any totally ordered, hashable type into a
// uint64 suitable for combining into a node's probe hash. Common scalar
// kinds (the ones actually used as SFDD/MFDD keys in practice: integers,
// floats and strings) are hashed directly: integers off their byte
// representation, strings off their bytes, floats off their exact binary
// string formatting; anything else falls back to hashing its default string formatting, which
// is correct for any comparable, printable type but not allocation-free.
func HashOrdered[K comparable](k K) uint64 {
	switch v := any(k).(type) {
	case string:
		return xxhash.Sum64String(v)
	case int:
		return hashUint64(uint64(v))
	case int8:
		return hashUint64(uint64(v))
	case int16:
		return hashUint64(uint64(v))
	case int32:
		return hashUint64(uint64(v))
	case int64:
		return hashUint64(uint64(v))
	case uint:
		return hashUint64(uint64(v))
	case uint8:
		return hashUint64(uint64(v))
	case uint16:
		return hashUint64(uint64(v))
	case uint32:
		return hashUint64(uint64(v))
	case uint64:
		return hashUint64(v)
	case float32:
		return xxhash.Sum64String(strconv.FormatFloat(float64(v), 'b', -1, 32))
	case float64:
		return xxhash.Sum64String(strconv.FormatFloat(v, 'b', -1, 64))
	default:
		return xxhash.Sum64String(fmt.Sprint(v))
	}
}

func hashUint64(v uint64) uint64 {
	var b [8]byte
	for i := range b {
		b[i] = byte(v >> (8 * i))
	}
	return xxhash.Sum64(b[:])
}

// CombineHashes folds a sequence of component hashes (already-computed
// uint64s, e.g. per-key or per-child-handle hashes) into one, in an
// order-sensitive way. Used for the (key, take, skip) triple, where
// position matters.
func CombineHashes(parts ...uint64) uint64 {
	h := xxhash.New()
	var b [8]byte
	for _, p := range parts {
		for i := range b {
			b[i] = byte(p >> (8 * i))
		}
		_, _ = h.Write(b[:])
	}
	return h.Sum64()
}

// CombineHashesUnordered folds a set of component hashes into one value
// that does not depend on the order the parts were supplied in. Used for
// MFDD take_map entries, whose iteration order is not semantically
// meaningful.
func CombineHashesUnordered(parts ...uint64) uint64 {
	var acc uint64
	for _, p := range parts {
		// A simple order-independent mix: multiply by an odd constant and
		// XOR. The result depends on part content, not position index; two
		// equal parts cancel each other out.
		acc ^= p*0x9E3779B97F4A7C15 + 1
	}
	return acc
}
