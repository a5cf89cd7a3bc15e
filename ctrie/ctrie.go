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

/*
Package ctrie provides Map, a concurrent, lock-free hash trie supporting
atomic O(1) snapshots. The data structure was originally presented in the
paper "Concurrent Tries with Efficient Non-Blocking Clones":

https://axel22.github.io/resources/docs/ctries-clone.pdf
*/
package ctrie

import (
	"reflect"

	"github.com/ctrie-go/ctrie/gatomic"
)

// Map implements an associative map that can be updated concurrently by
// multiple goroutines and supports a low-cost snapshot operation.
type Map[K, V any] struct {
	root     *iNode[K, V]
	readOnly bool
	hasher   Hasher[K]
}

// New returns a new empty Map using h as the key hashing/equivalence
// strategy.
func New[K, V any](h Hasher[K]) *Map[K, V] {
	root := &iNode[K, V]{main: &mainNode[K, V]{cNode: &cNode[K, V]{}}}
	return newMap[K, V](root, h, false)
}

func newMap[K, V any](root *iNode[K, V], h Hasher[K], readOnly bool) *Map[K, V] {
	return &Map[K, V]{root: root, hasher: h, readOnly: readOnly}
}

func (c *Map[K, V]) assertReadWrite() {
	if c.readOnly {
		panic("ctrie: write attempted on read-only map")
	}
}

// insertCond selects which of the four insert conditions an upsert
// operation is performed under.
type insertCond int

const (
	// condAny always installs the new value (Put).
	condAny insertCond = iota
	// condAbsent installs the new value only if the key is not present (PutIfAbsent).
	condAbsent
	// condPresent installs the new value only if the key is already present (Replace).
	condPresent
	// condEquals installs the new value only if the key is present and its
	// current value matches the condition's want value (ReplaceMatch).
	condEquals
)

// Put sets the value for key unconditionally, returning the previous
// value and whether one existed.
func (c *Map[K, V]) Put(key K, value V) (V, bool, error) {
	if isNullArg(key) || isNullArg(value) {
		return zero[V](), false, ErrNullArgument
	}
	if c.readOnly {
		return zero[V](), false, ErrUnsupportedOperation
	}
	old, existed, _ := c.upsert(key, value, condAny, zero[V]())
	return old, existed, nil
}

// PutIfAbsent sets the value for key only if it is not already present,
// returning the value that was already there (if any) and whether it was
// present.
func (c *Map[K, V]) PutIfAbsent(key K, value V) (V, bool, error) {
	if isNullArg(key) || isNullArg(value) {
		return zero[V](), false, ErrNullArgument
	}
	if c.readOnly {
		return zero[V](), false, ErrUnsupportedOperation
	}
	old, existed, _ := c.upsert(key, value, condAbsent, zero[V]())
	return old, existed, nil
}

// Replace sets the value for key only if it is already present, returning
// the previous value and whether one existed.
func (c *Map[K, V]) Replace(key K, value V) (V, bool, error) {
	if isNullArg(key) || isNullArg(value) {
		return zero[V](), false, ErrNullArgument
	}
	if c.readOnly {
		return zero[V](), false, ErrUnsupportedOperation
	}
	old, existed, _ := c.upsert(key, value, condPresent, zero[V]())
	return old, existed, nil
}

// ReplaceMatch sets the value for key to newValue only if it is currently
// present and equal to oldValue, reporting whether the replacement
// happened.
func (c *Map[K, V]) ReplaceMatch(key K, oldValue, newValue V) (bool, error) {
	if isNullArg(key) || isNullArg(oldValue) || isNullArg(newValue) {
		return false, ErrNullArgument
	}
	if c.readOnly {
		return false, ErrUnsupportedOperation
	}
	_, _, wrote := c.upsert(key, newValue, condEquals, oldValue)
	return wrote, nil
}

// Get returns the value for key and whether it was found.
func (c *Map[K, V]) Get(key K) (V, bool, error) {
	if isNullArg(key) {
		return zero[V](), false, ErrNullArgument
	}
	val, ok := c.lookup(&entry[K, V]{key: key, hash: hashOf(c.hasher, key)})
	return val, ok, nil
}

// ContainsKey reports whether key is present in the map.
func (c *Map[K, V]) ContainsKey(key K) (bool, error) {
	_, ok, err := c.Get(key)
	return ok, err
}

// ContainsValue reports whether value is present in the map, comparing
// with reflect.DeepEqual. This scans an implicit read-only snapshot and
// is O(n).
func (c *Map[K, V]) ContainsValue(value V) (bool, error) {
	if isNullArg(value) {
		return false, ErrNullArgument
	}
	for iter := c.Iterator(); iter.Next(); {
		val, err := iter.Value()
		if err != nil {
			return false, err
		}
		if reflect.DeepEqual(val, value) {
			return true, nil
		}
	}
	return false, nil
}

// Remove deletes key unconditionally, returning the removed value and
// whether it was present.
func (c *Map[K, V]) Remove(key K) (V, bool, error) {
	if isNullArg(key) {
		return zero[V](), false, ErrNullArgument
	}
	if c.readOnly {
		return zero[V](), false, ErrUnsupportedOperation
	}
	return c.delete(&entry[K, V]{key: key, hash: hashOf(c.hasher, key)}, false, zero[V]())
}

// RemoveMatch deletes key only if its current value equals value,
// reporting whether the removal happened.
func (c *Map[K, V]) RemoveMatch(key K, value V) (bool, error) {
	if isNullArg(key) || isNullArg(value) {
		return false, ErrNullArgument
	}
	if c.readOnly {
		return false, ErrUnsupportedOperation
	}
	_, removed, err := c.delete(&entry[K, V]{key: key, hash: hashOf(c.hasher, key)}, true, value)
	return removed, err
}

// Clear removes all keys from the Map.
func (c *Map[K, V]) Clear() error {
	if c.readOnly {
		return ErrUnsupportedOperation
	}
	for {
		root := c.readRoot()
		gen := &generation{}
		newRoot := &iNode[K, V]{
			main: &mainNode[K, V]{cNode: &cNode[K, V]{gen: gen}},
			gen:  gen,
		}
		if c.rdcssRoot(root, gcasRead(root, c), newRoot) {
			return nil
		}
	}
}

// Len returns the number of keys in the Map. This is an O(n) operation.
func (c *Map[K, V]) Len() int {
	size := 0
	for iter := c.Iterator(); iter.Next(); {
		size++
	}
	return size
}

// upsert returns the previous value, whether the key was already present
// beforehand, and whether cond's write actually took effect. PutIfAbsent
// and Replace report "previously present"; ReplaceMatch reports "write
// took effect" — the two differ whenever cond blocked the write on an
// already-present key (existed=true, wrote=false).
func (c *Map[K, V]) upsert(key K, value V, cond insertCond, want V) (old V, existed, wrote bool) {
	e := &entry[K, V]{key: key, value: value, hash: hashOf(c.hasher, key)}
	root := c.readRoot()
	old, existed, wrote, ok := c.recInsert(root, e, cond, want, 0, nil, root.gen)
	if !ok {
		return c.upsert(key, value, cond, want)
	}
	return old, existed, wrote
}

func (c *Map[K, V]) lookup(e *entry[K, V]) (V, bool) {
	root := c.readRoot()
	result, exists, ok := c.recLookup(root, e, 0, nil, root.gen)
	if !ok {
		return c.lookup(e)
	}
	return result, exists
}

func (c *Map[K, V]) delete(e *entry[K, V], matchValue bool, want V) (V, bool, error) {
	root := c.readRoot()
	result, exists, ok := c.recRemove(root, e, matchValue, want, 0, nil, root.gen)
	if !ok {
		return c.delete(e, matchValue, want)
	}
	return result, exists, nil
}

// recInsert attempts to install e into the Map under cond. The existed and
// match return values report whether the key already existed and, when cond
// gates the write, whether the condition was satisfied; if ok is false
// the whole operation must be retried from the root.
func (c *Map[K, V]) recInsert(i *iNode[K, V], e *entry[K, V], cond insertCond, want V, lev uint, parent *iNode[K, V], startGen *generation) (oldVal V, existed bool, match bool, ok bool) {
	main := gcasRead(i, c) // linearization point
	switch {
	case main.cNode != nil:
		cn := main.cNode
		flag, pos := flagPos(e.hash, lev, cn.bmp)
		if cn.bmp&flag == 0 {
			// Key not present at this level.
			if cond == condPresent || cond == condEquals {
				return zero[V](), false, false, true
			}
			rn := cn
			if cn.gen != i.gen {
				rn = cn.renewed(i.gen, c)
			}
			ncn := &mainNode[K, V]{cNode: rn.inserted(pos, flag, &sNode[K, V]{e}, i.gen)}
			return zero[V](), false, true, gcas(i, main, ncn, c)
		}
		branch := cn.slice[pos]
		switch br := branch.(type) {
		case *iNode[K, V]:
			if startGen == br.gen {
				return c.recInsert(br, e, cond, want, lev+w, i, startGen)
			}
			if gcas(i, main, &mainNode[K, V]{cNode: cn.renewed(startGen, c)}, c) {
				return c.recInsert(i, e, cond, want, lev, parent, startGen)
			}
			return zero[V](), false, false, false
		case *sNode[K, V]:
			sn := br
			if !c.hasher.Equal(sn.entry.key, e.key) {
				// Different key, same hash prefix at this level: the
				// target key is effectively absent here.
				if cond == condPresent || cond == condEquals {
					return zero[V](), false, false, true
				}
				rn := cn
				if cn.gen != i.gen {
					rn = cn.renewed(i.gen, c)
				}
				nsn := &sNode[K, V]{e}
				nin := &iNode[K, V]{main: newMainNode(sn, sn.entry.hash, nsn, nsn.entry.hash, lev+w, i.gen), gen: i.gen}
				ncn := &mainNode[K, V]{cNode: rn.updated(pos, nin, i.gen)}
				return zero[V](), false, true, gcas(i, main, ncn, c)
			}
			// Key already present.
			if cond == condAbsent {
				return sn.entry.value, true, false, true
			}
			if cond == condEquals && !reflect.DeepEqual(sn.entry.value, want) {
				return sn.entry.value, true, false, true
			}
			ncn := &mainNode[K, V]{cNode: cn.updated(pos, &sNode[K, V]{e}, i.gen)}
			return sn.entry.value, true, true, gcas(i, main, ncn, c)
		default:
			panic("ctrie: invalid node state")
		}
	case main.tNode != nil:
		clean(parent, lev-w, c)
		return zero[V](), false, false, false
	case main.lNode != nil:
		ln := main.lNode
		old, existed := ln.lookup(e, c.hasher.Equal)
		if cond == condAbsent && existed {
			return old, true, false, true
		}
		if cond == condPresent && !existed {
			return zero[V](), false, false, true
		}
		if cond == condEquals {
			if !existed || !reflect.DeepEqual(old, want) {
				return old, existed, false, true
			}
		}
		nln := &mainNode[K, V]{lNode: ln.inserted(e, c.hasher.Equal)}
		return old, existed, true, gcas(i, main, nln, c)
	default:
		panic("ctrie: invalid node state")
	}
}

// recLookup attempts to fetch e.key from the Map. The last return value
// reports whether the operation succeeded; false means retry.
func (c *Map[K, V]) recLookup(i *iNode[K, V], e *entry[K, V], lev uint, parent *iNode[K, V], startGen *generation) (V, bool, bool) {
	main := gcasRead(i, c) // linearization point
	switch {
	case main.cNode != nil:
		cn := main.cNode
		flag, pos := flagPos(e.hash, lev, cn.bmp)
		if cn.bmp&flag == 0 {
			return zero[V](), false, true
		}
		switch br := cn.slice[pos].(type) {
		case *iNode[K, V]:
			in := br
			if c.readOnly || startGen == in.gen {
				return c.recLookup(in, e, lev+w, i, startGen)
			}
			if gcas(i, main, &mainNode[K, V]{cNode: cn.renewed(startGen, c)}, c) {
				return c.recLookup(i, e, lev, parent, startGen)
			}
			return zero[V](), false, false
		case *sNode[K, V]:
			if c.hasher.Equal(br.entry.key, e.key) {
				return br.entry.value, true, true
			}
			return zero[V](), false, true
		default:
			panic("ctrie: invalid node state")
		}
	case main.tNode != nil:
		return cleanReadOnly(main.tNode, lev, parent, c, e)
	case main.lNode != nil:
		val, ok := main.lNode.lookup(e, c.hasher.Equal)
		return val, ok, true
	default:
		panic("ctrie: invalid node state")
	}
}

// recRemove attempts to remove e.key from the Map. When matchValue is
// true, the removal only takes effect if the current value equals want.
// The last return value reports whether the operation succeeded; false
// means retry.
func (c *Map[K, V]) recRemove(i *iNode[K, V], e *entry[K, V], matchValue bool, want V, lev uint, parent *iNode[K, V], startGen *generation) (V, bool, bool) {
	main := gcasRead(i, c) // linearization point
	switch {
	case main.cNode != nil:
		cn := main.cNode
		flag, pos := flagPos(e.hash, lev, cn.bmp)
		if cn.bmp&flag == 0 {
			return zero[V](), false, true
		}
		switch br := cn.slice[pos].(type) {
		case *iNode[K, V]:
			in := br
			if startGen == in.gen {
				return c.recRemove(in, e, matchValue, want, lev+w, i, startGen)
			}
			if gcas(i, main, &mainNode[K, V]{cNode: cn.renewed(startGen, c)}, c) {
				return c.recRemove(i, e, matchValue, want, lev, parent, startGen)
			}
			return zero[V](), false, false
		case *sNode[K, V]:
			sn := br
			if !c.hasher.Equal(sn.entry.key, e.key) {
				return zero[V](), false, true
			}
			if matchValue && !reflect.DeepEqual(sn.entry.value, want) {
				return zero[V](), false, true
			}
			ncn := cn.removed(pos, flag, i.gen)
			cntr := toContracted(ncn, lev)
			if gcas(i, main, cntr, c) {
				if parent != nil {
					main = gcasRead(i, c)
					if main.tNode != nil {
						cleanParent(parent, i, e.hash, lev-w, c, startGen)
					}
				}
				return sn.entry.value, true, true
			}
			return zero[V](), false, false
		default:
			panic("ctrie: invalid node state")
		}
	case main.tNode != nil:
		clean(parent, lev-w, c)
		return zero[V](), false, false
	case main.lNode != nil:
		if matchValue {
			old, existed := main.lNode.lookup(e, c.hasher.Equal)
			if !existed || !reflect.DeepEqual(old, want) {
				return zero[V](), false, true
			}
		}
		nln := &mainNode[K, V]{lNode: main.lNode.removed(e, c.hasher.Equal)}
		if nln.lNode != nil && nln.lNode.tail == nil {
			nln = entomb(nln.lNode.head)
		}
		if gcas(i, main, nln, c) {
			val, ok := main.lNode.lookup(e, c.hasher.Equal)
			return val, ok, true
		}
		return zero[V](), false, false
	default:
		panic("ctrie: invalid node state")
	}
}

func clean[K, V any](i *iNode[K, V], lev uint, ctrie *Map[K, V]) bool {
	main := gcasRead(i, ctrie)
	if main.cNode != nil {
		return gcas(i, main, toCompressed(main.cNode, lev), ctrie)
	}
	return true
}

func cleanReadOnly[K, V any](tn *tNode[K, V], lev uint, p *iNode[K, V], ctrie *Map[K, V], e *entry[K, V]) (val V, exists bool, ok bool) {
	if !ctrie.readOnly {
		clean(p, lev-w, ctrie)
		return zero[V](), false, false
	}
	if tn.sNode.entry.hash == e.hash && ctrie.hasher.Equal(tn.sNode.entry.key, e.key) {
		return tn.sNode.entry.value, true, true
	}
	return zero[V](), false, true
}

func cleanParent[K, V any](p, i *iNode[K, V], hc uint32, lev uint, ctrie *Map[K, V], startGen *generation) {
	main := gatomic.LoadPointer(&i.main)
	pMain := gatomic.LoadPointer(&p.main)
	if pMain.cNode == nil {
		return
	}
	flag, pos := flagPos(hc, lev, pMain.cNode.bmp)
	if pMain.cNode.bmp&flag == 0 {
		return
	}
	sub := pMain.cNode.slice[pos]
	if sub != i || main.tNode == nil {
		return
	}
	ncn := pMain.cNode.updated(pos, resurrect(i, main), i.gen)
	if gcas(p, pMain, toContracted(ncn, lev), ctrie) || ctrie.readRoot().gen != startGen {
		return
	}
	cleanParent(p, i, hc, lev, ctrie, startGen)
}
