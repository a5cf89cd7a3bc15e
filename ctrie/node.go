/*
Copyright 2015 Workiva, LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

 http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package ctrie

import (
	"math/bits"

	"github.com/ctrie-go/ctrie/gatomic"
)

const (
	// w controls the number of branches at a node (2^w branches).
	w = 5

	// exp2 is 2^w, the hashcode space the branch indexing walks.
	exp2 = 32
)

// generation demarcates Map clones. A heap-allocated reference is used
// instead of an integer to avoid overflow. The struct has a field so two
// distinct zero-size generations can't collide at the same address.
type generation struct{ _ bool }

// entry holds a Map key-value pair together with its truncated hash code.
type entry[K, V any] struct {
	key   K
	value V
	hash  uint32
}

// branch is either *iNode or *sNode.
type branch interface{}

// sNode is a singleton node containing a single key and value.
type sNode[K, V any] struct {
	entry *entry[K, V]
}

// iNode is an indirection node. I-nodes remain present in the Map even as
// nodes above and below change; thread-safety comes from performing CAS
// operations on the I-node rather than on the internal node slice.
type iNode[K, V any] struct {
	main *mainNode[K, V]
	gen  *generation

	// rdcss is set during an RDCSS operation: the I-node becomes a wrapper
	// around the descriptor so a single type is used during CAS on the root.
	rdcss *rdcssDescriptor[K, V]
}

// copyToGen returns a copy of this I-node under the given generation.
func (i *iNode[K, V]) copyToGen(gen *generation, ctrie *Map[K, V]) *iNode[K, V] {
	nin := &iNode[K, V]{gen: gen}
	main := gcasRead(i, ctrie)
	gatomic.StorePointer(&nin.main, main)
	return nin
}

// mainNode is either a cNode, tNode, lNode, or a failed node; exactly one of
// these makes up an I-node's payload at any moment.
type mainNode[K, V any] struct {
	cNode  *cNode[K, V]
	tNode  *tNode[K, V]
	lNode  *lNode[K, V]
	failed *mainNode[K, V]

	// prev holds the pre-GCAS value while a GCAS is in flight; it signals
	// failure when set to a failed node, and commit when set back to nil.
	prev *mainNode[K, V]
}

// cNode is a bitmap-indexed internal node: bmp marks which of the 32
// possible branches at this level are populated, and slice holds them
// in bit order, compacted via popcount.
type cNode[K, V any] struct {
	bmp   uint32
	slice []branch
	gen   *generation
}

// newMainNode recursively builds the mainNode needed to hold two
// colliding single-key entries. It nests cNodes as long as the hash
// chunks of the two keys agree at the current level, and falls back
// to an lNode once the hash space (exp2) is exhausted.
func newMainNode[K, V any](x *sNode[K, V], xhc uint32, y *sNode[K, V], yhc uint32, lev uint, gen *generation) *mainNode[K, V] {
	if lev >= exp2 {
		return &mainNode[K, V]{
			lNode: &lNode[K, V]{
				head: y,
				tail: &lNode[K, V]{head: x},
			},
		}
	}
	xidx := (xhc >> lev) & 0x1f
	yidx := (yhc >> lev) & 0x1f
	bmp := uint32((1 << xidx) | (1 << yidx))

	switch {
	case xidx == yidx:
		main := newMainNode(x, xhc, y, yhc, lev+w, gen)
		in := &iNode[K, V]{main: main, gen: gen}
		return &mainNode[K, V]{cNode: &cNode[K, V]{bmp, []branch{in}, gen}}
	case xidx < yidx:
		return &mainNode[K, V]{cNode: &cNode[K, V]{bmp, []branch{x, y}, gen}}
	default:
		return &mainNode[K, V]{cNode: &cNode[K, V]{bmp, []branch{y, x}, gen}}
	}
}

// inserted returns a copy of this cNode with br inserted at pos.
func (c *cNode[K, V]) inserted(pos int, flag uint32, br branch, gen *generation) *cNode[K, V] {
	slice := make([]branch, len(c.slice)+1)
	copy(slice, c.slice[:pos])
	slice[pos] = br
	copy(slice[pos+1:], c.slice[pos:])
	return &cNode[K, V]{bmp: c.bmp | flag, slice: slice, gen: gen}
}

// updated returns a copy of this cNode with the branch at pos replaced.
func (c *cNode[K, V]) updated(pos int, br branch, gen *generation) *cNode[K, V] {
	slice := make([]branch, len(c.slice))
	copy(slice, c.slice)
	slice[pos] = br
	return &cNode[K, V]{bmp: c.bmp, slice: slice, gen: gen}
}

// removed returns a copy of this cNode with the branch at pos removed.
func (c *cNode[K, V]) removed(pos int, flag uint32, gen *generation) *cNode[K, V] {
	slice := make([]branch, len(c.slice)-1)
	copy(slice, c.slice[0:pos])
	copy(slice[pos:], c.slice[pos+1:])
	return &cNode[K, V]{bmp: c.bmp ^ flag, slice: slice, gen: gen}
}

// renewed returns a copy of this cNode with every I-node beneath it copied
// to the given generation.
func (c *cNode[K, V]) renewed(gen *generation, ctrie *Map[K, V]) *cNode[K, V] {
	slice := make([]branch, len(c.slice))
	for i, br := range c.slice {
		if in, ok := br.(*iNode[K, V]); ok {
			slice[i] = in.copyToGen(gen, ctrie)
		} else {
			slice[i] = br
		}
	}
	return &cNode[K, V]{bmp: c.bmp, slice: slice, gen: gen}
}

// tNode is a tomb node: a marker left behind by a removal so that
// concurrent operations above it know to trigger contraction.
type tNode[K, V any] struct {
	sNode *sNode[K, V]
}

// untombed returns the S-node wrapped by this T-node.
func (t *tNode[K, V]) untombed() *sNode[K, V] {
	return &sNode[K, V]{&entry[K, V]{
		key:   t.sNode.entry.key,
		value: t.sNode.entry.value,
		hash:  t.sNode.entry.hash,
	}}
}

// lNode is a persistent linked list used to hold entries whose hash codes
// collide all the way down to the bottom of the hash space.
type lNode[K, V any] struct {
	head *sNode[K, V]
	tail *lNode[K, V]
}

// lookup returns the value stored for e's key in the list, if present.
func (l *lNode[K, V]) lookup(e *entry[K, V], eq func(K, K) bool) (V, bool) {
	for ; l != nil; l = l.tail {
		if eq(e.key, l.head.entry.key) {
			return l.head.entry.value, true
		}
	}
	return zero[V](), false
}

// inserted returns a new list with entry added (replacing any existing
// entry for the same key).
func (l *lNode[K, V]) inserted(e *entry[K, V], eq func(K, K) bool) *lNode[K, V] {
	return &lNode[K, V]{head: &sNode[K, V]{e}, tail: l.removed(e, eq)}
}

// removed returns a new list with the entry for e's key removed.
func (l *lNode[K, V]) removed(e *entry[K, V], eq func(K, K) bool) *lNode[K, V] {
	for l1 := l; l1 != nil; l1 = l1.tail {
		if eq(e.key, l1.head.entry.key) {
			return l.remove(l1)
		}
	}
	return l
}

func (l *lNode[K, V]) remove(l1 *lNode[K, V]) *lNode[K, V] {
	if l == l1 {
		return l.tail
	}
	return &lNode[K, V]{head: l.head, tail: l.tail.remove(l1)}
}

// toContracted ensures that every I-node except the root points to a
// cNode with at least one branch. A cNode with a single S-node left below
// it, below the root level, is replaced by a tomb wrapping that S-node.
func toContracted[K, V any](cn *cNode[K, V], lev uint) *mainNode[K, V] {
	if lev > 0 && len(cn.slice) == 1 {
		if sn, ok := cn.slice[0].(*sNode[K, V]); ok {
			return entomb(sn)
		}
	}
	return &mainNode[K, V]{cNode: cn}
}

// toCompressed resurrects any tombed I-nodes directly beneath cn and then
// contracts the result; this is the cleanup performed when an I-node above
// a tomb is revisited.
func toCompressed[K, V any](cn *cNode[K, V], lev uint) *mainNode[K, V] {
	tmp := make([]branch, len(cn.slice))
	for i, sub := range cn.slice {
		switch sub := sub.(type) {
		case *iNode[K, V]:
			main := gatomic.LoadPointer(&sub.main)
			tmp[i] = resurrect(sub, main)
		case *sNode[K, V]:
			tmp[i] = sub
		default:
			panic("ctrie: invalid node state")
		}
	}
	return toContracted(&cNode[K, V]{bmp: cn.bmp, slice: tmp}, lev)
}

func entomb[K, V any](m *sNode[K, V]) *mainNode[K, V] {
	return &mainNode[K, V]{tNode: &tNode[K, V]{m}}
}

func resurrect[K, V any](in *iNode[K, V], main *mainNode[K, V]) branch {
	if main.tNode != nil {
		return main.tNode.untombed()
	}
	return in
}

// flagPos returns the single-bit flag for hashcode at the given level, and
// the compacted slice position that bit maps to within bmp.
func flagPos(hashcode uint32, lev uint, bmp uint32) (uint32, int) {
	idx := (hashcode >> lev) & 0x1f
	flag := uint32(1) << idx
	pos := bits.OnesCount32(bmp & (flag - 1))
	return flag, pos
}

func zero[V any]() V {
	var v V
	return v
}
