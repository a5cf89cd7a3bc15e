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

// Iter is a depth-bounded (<=7 levels: 32 = 5*6 + 2 remaining bits) stack
// based iterator over a Map's entries. Iteration order is unspecified.
//
// Iterator returned by a read-only Map yields a read-only iterator whose
// Remove, after a successful Next, fails with ErrUnsupportedOperation.
type Iter[K, V any] struct {
	c *Map[K, V]
	// stack simulates the recursion stack of a conventional recursive
	// traversal of the trie.
	stack []iterFrame[K, V]
	curr  *entry[K, V]
}

type iterFrame[K, V any] struct {
	iter  func(*Iter[K, V], *iterFrame[K, V]) bool
	iNode *iNode[K, V]
	slice []branch
	lNode *lNode[K, V]
}

// Iterator returns an iterator over the Map's entries, as of the time it
// is called: it traverses an internal read-only snapshot, so subsequent
// mutations to the Map are not reflected.
func (c *Map[K, V]) Iterator() *Iter[K, V] {
	iter := &Iter[K, V]{c: c}
	iter.push((*Iter[K, V]).mainIter).iNode = c.ReadOnlySnapshot().readRoot()
	return iter
}

// Next advances the iterator and reports whether a further entry is
// available.
func (i *Iter[K, V]) Next() bool {
	i.curr = nil
	for i.curr == nil && len(i.stack) > 0 {
		if f := &i.stack[len(i.stack)-1]; !f.iter(i, f) {
			i.pop()
		}
	}
	return i.curr != nil
}

// Key returns the current entry's key, or ErrNoSuchElement if the
// iterator is exhausted.
func (i *Iter[K, V]) Key() (K, error) {
	if i.curr == nil {
		return zero[K](), ErrNoSuchElement
	}
	return i.curr.key, nil
}

// Value returns the current entry's value, or ErrNoSuchElement if the
// iterator is exhausted.
func (i *Iter[K, V]) Value() (V, error) {
	if i.curr == nil {
		return zero[V](), ErrNoSuchElement
	}
	return i.curr.value, nil
}

// Remove deletes, from the Map this iterator was obtained from, the entry
// most recently returned by Next. It returns ErrIllegalState if Next has
// not been called successfully since the last Remove, and
// ErrUnsupportedOperation if the underlying Map is read-only.
func (i *Iter[K, V]) Remove() error {
	if i.curr == nil {
		return ErrIllegalState
	}
	if i.c.readOnly {
		return ErrUnsupportedOperation
	}
	key := i.curr.key
	i.curr = nil
	_, _, err := i.c.Remove(key)
	return err
}

// mainIter iterates past a single I-node in the map.
func (i *Iter[K, V]) mainIter(f *iterFrame[K, V]) bool {
	if f.iNode == nil {
		return false
	}
	main := gcasRead(f.iNode, i.c)
	f.iNode = nil
	switch {
	case main.cNode != nil:
		i.push((*Iter[K, V]).sliceIter).slice = main.cNode.slice
		return true
	case main.lNode != nil:
		i.push((*Iter[K, V]).listIter).lNode = main.lNode
		return true
	case main.tNode != nil:
		i.curr = main.tNode.sNode.entry
		return true
	}
	panic("ctrie: invalid node state")
}

// sliceIter iterates through the branches in a cNode.
func (i *Iter[K, V]) sliceIter(f *iterFrame[K, V]) bool {
	a := f.slice
	if len(a) == 0 {
		return false
	}
	f.slice = a[1:]
	switch b := a[0].(type) {
	case *iNode[K, V]:
		i.push((*Iter[K, V]).mainIter).iNode = b
		return true
	case *sNode[K, V]:
		i.curr = b.entry
		return true
	}
	panic("ctrie: invalid node state")
}

// listIter iterates through the entries in an lNode's list.
func (i *Iter[K, V]) listIter(f *iterFrame[K, V]) bool {
	l := f.lNode
	if l == nil {
		return false
	}
	f.lNode = f.lNode.tail
	i.curr = l.head.entry
	return true
}

func (i *Iter[K, V]) pop() {
	i.stack = i.stack[0 : len(i.stack)-1]
}

// push pushes f onto the iterator stack and returns the new frame for the
// caller to populate.
func (i *Iter[K, V]) push(f func(*Iter[K, V], *iterFrame[K, V]) bool) *iterFrame[K, V] {
	i.stack = append(i.stack, iterFrame[K, V]{})
	elem := &i.stack[len(i.stack)-1]
	elem.iter = f
	return elem
}
