package anyhash_test

import (
	"hash/maphash"
	"slices"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/ctrie-go/ctrie/anyhash"
)

// sliceHasher is a test Hasher implementation for slices of comparable
// values, demonstrating a non-comparable key type that needs custom
// hashing.
type sliceHasher[T comparable] struct{}

func (sliceHasher[T]) Equal(a, b []T) bool {
	return slices.Equal(a, b)
}

func (sliceHasher[T]) Hash(h *maphash.Hash, s []T) {
	for _, v := range s {
		maphash.WriteComparable(h, v)
	}
}

func sum[T any](h anyhash.Hasher[T], v T) uint64 {
	var mh maphash.Hash
	h.Hash(&mh, v)
	return mh.Sum64()
}

func TestComparableHasherEqual(t *testing.T) {
	c := qt.New(t)
	var h anyhash.ComparableHasher[int]
	c.Assert(h.Equal(1, 1), qt.IsTrue)
	c.Assert(h.Equal(1, 2), qt.IsFalse)
}

func TestComparableHasherHashIsConsistent(t *testing.T) {
	c := qt.New(t)
	var h anyhash.ComparableHasher[int]
	c.Assert(sum[int](h, 42), qt.Equals, sum[int](h, 42))
}

func TestStringHasher(t *testing.T) {
	c := qt.New(t)
	h := anyhash.StringHasher{}
	c.Assert(h.Equal("a", "a"), qt.IsTrue)
	c.Assert(h.Equal("a", "b"), qt.IsFalse)
	c.Assert(sum[string](h, "hello"), qt.Equals, sum[string](h, "hello"))
}

func TestBytesHasher(t *testing.T) {
	c := qt.New(t)
	h := anyhash.BytesHasher{}
	c.Assert(h.Equal([]byte("a"), []byte("a")), qt.IsTrue)
	c.Assert(h.Equal([]byte("a"), []byte("ab")), qt.IsFalse)
	c.Assert(h.Equal([]byte("a"), []byte("b")), qt.IsFalse)
	c.Assert(sum[[]byte](h, []byte("hello")), qt.Equals, sum[[]byte](h, []byte("hello")))
}

func TestSliceHasherAsNonComparableHasher(t *testing.T) {
	c := qt.New(t)
	var h anyhash.Hasher[[]int] = sliceHasher[int]{}
	c.Assert(h.Equal([]int{1, 2, 3}, []int{1, 2, 3}), qt.IsTrue)
	c.Assert(h.Equal([]int{1, 2, 3}, []int{1, 2, 4}), qt.IsFalse)
}
