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

import "github.com/ctrie-go/ctrie/gatomic"

// rdcssDescriptor communicates the intent to replace the Map's root I-node,
// conditional on the generation at the old root's indirection not having
// changed, so snapshot installation is itself an atomic operation.
type rdcssDescriptor[K, V any] struct {
	old       *iNode[K, V]
	expected  *mainNode[K, V]
	nv        *iNode[K, V]
	committed int32
}

// readRoot performs a linearizable read of the Map root, prioritized so a
// concurrent GCAS on the root does not cause a deadlock.
func (c *Map[K, V]) readRoot() *iNode[K, V] {
	return c.rdcssReadRoot(false)
}

// rdcssReadRoot performs an RDCSS-linearizable read of the Map root with
// the given priority.
func (c *Map[K, V]) rdcssReadRoot(abort bool) *iNode[K, V] {
	r := gatomic.LoadPointer(&c.root)
	if r.rdcss != nil {
		return c.rdcssComplete(abort)
	}
	return r
}

// rdcssRoot performs an RDCSS on the Map root, used to atomically install
// a freshly generationed root when taking a snapshot.
func (c *Map[K, V]) rdcssRoot(old *iNode[K, V], expected *mainNode[K, V], nv *iNode[K, V]) bool {
	desc := &iNode[K, V]{
		rdcss: &rdcssDescriptor[K, V]{old: old, expected: expected, nv: nv},
	}
	if c.casRoot(old, desc) {
		c.rdcssComplete(false)
		return gatomic.LoadInt32(&desc.rdcss.committed) == 1
	}
	return false
}

// rdcssComplete commits or aborts the in-flight RDCSS operation.
func (c *Map[K, V]) rdcssComplete(abort bool) *iNode[K, V] {
	for {
		r := gatomic.LoadPointer(&c.root)
		if r.rdcss == nil {
			return r
		}
		desc := r.rdcss
		ov, exp, nv := desc.old, desc.expected, desc.nv
		if abort {
			if c.casRoot(r, ov) {
				return ov
			}
			continue
		}
		oldMain := gcasRead(ov, c)
		if oldMain == exp {
			if c.casRoot(r, nv) {
				gatomic.StoreInt32(&desc.committed, 1)
				return nv
			}
			continue
		}
		if c.casRoot(r, ov) {
			return ov
		}
	}
}

// casRoot performs a bare CAS on the Map root.
func (c *Map[K, V]) casRoot(ov, nv *iNode[K, V]) bool {
	c.assertReadWrite()
	return gatomic.CompareAndSwapPointer(&c.root, ov, nv)
}
