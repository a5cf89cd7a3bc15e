
// Package anyhash provides the injected hashing/equivalence capability
// used to construct maps over keys that aren't necessarily comparable.
package anyhash

import (
	"hash/maphash"
)

// See https://go-review.googlesource.com/c/go/+/657296/11/src/hash/maphash/hasher.go#7

// A Hasher defines a hash function and an equivalence relation over
// values of type T.
//
// See https://go-review.googlesource.com/c/go/+/657296/11/src/hash/maphash/hasher.go
type Hasher[T any] interface {
	Hash(*maphash.Hash, T)
	Equal(x, y T) bool
}

// ComparableHasher is an implementation of [Hasher] for comparable types.
// Its Equal(x, y) method is consistent with x == y.
type ComparableHasher[T comparable] struct {
	_ [0]func(T) // disallow comparison, and conversion between ComparableHasher[X] and ComparableHasher[Y]
}

func (ComparableHasher[T]) Hash(h *maphash.Hash, v T) { maphash.WriteComparable(h, v) }
func (ComparableHasher[T]) Equal(x, y T) bool         { return x == y }

// StringHasher is a [Hasher] for string keys. It hashes with
// WriteString, and unlike ComparableHasher its values can be compared.
type StringHasher struct{}

func (StringHasher) Hash(h *maphash.Hash, s string) { h.WriteString(s) }
func (StringHasher) Equal(x, y string) bool         { return x == y }

// BytesHasher is a [Hasher] for []byte keys.
type BytesHasher struct{}

func (BytesHasher) Hash(h *maphash.Hash, b []byte) { h.Write(b) }
func (BytesHasher) Equal(x, y []byte) bool {
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}
