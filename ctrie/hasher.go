package ctrie

import (
	"hash/maphash"

	"github.com/ctrie-go/ctrie/anyhash"
)

// Hasher is the injected hashing/equivalence capability a Map is
// constructed with. It mirrors anyhash.Hasher so that a Map can be built
// over key types that aren't necessarily comparable.
type Hasher[K any] = anyhash.Hasher[K]

// ComparableHasher is a Hasher for ordinary comparable key types.
type ComparableHasher[K comparable] = anyhash.ComparableHasher[K]

// StringHasher is a Hasher for string keys.
type StringHasher = anyhash.StringHasher

// BytesHasher is a Hasher for []byte keys.
type BytesHasher = anyhash.BytesHasher

var seed = maphash.MakeSeed()

// hashOf truncates the 64-bit maphash sum to the 32-bit hash code the trie
// indexes branches by.
func hashOf[K any](h Hasher[K], key K) uint32 {
	var mh maphash.Hash
	mh.SetSeed(seed)
	h.Hash(&mh, key)
	return uint32(mh.Sum64())
}
