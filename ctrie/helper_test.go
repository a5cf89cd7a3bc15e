package ctrie_test

import "hash/maphash"

// collidingHasher hashes every int key to the same 32-bit code while still
// comparing keys for real equality, forcing the trie to build a full
// chain of cNodes down to the bottom of the hash space and fall back to
// an lNode collision list beneath it.
type collidingHasher struct{}

func (collidingHasher) Hash(h *maphash.Hash, _ int) { h.WriteString("collide") }
func (collidingHasher) Equal(x, y int) bool         { return x == y }
