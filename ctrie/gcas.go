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

// gcas is the generation-compare-and-swap: it has semantics similar to
// RDCSS but avoids allocating the intermediate descriptor except on the
// failure path triggered by a concurrent snapshot. It ensures a write
// commits only if the Map's root generation is unchanged, in addition to
// the I-node holding the expected value.
func gcas[K, V any](in *iNode[K, V], old, n *mainNode[K, V], ct *Map[K, V]) bool {
	gatomic.StorePointer(&n.prev, old)
	if gatomic.CompareAndSwapPointer(&in.main, old, n) {
		gcasComplete(in, n, ct)
		return gatomic.LoadPointer(&n.prev) == nil
	}
	return false
}

// gcasRead performs a GCAS-linearizable read of an I-node's main node.
func gcasRead[K, V any](in *iNode[K, V], ctrie *Map[K, V]) *mainNode[K, V] {
	m := gatomic.LoadPointer(&in.main)
	if gatomic.LoadPointer(&m.prev) == nil {
		return m
	}
	return gcasComplete(in, m, ctrie)
}

// gcasComplete commits (or aborts) an in-flight GCAS operation.
func gcasComplete[K, V any](i *iNode[K, V], m *mainNode[K, V], ctrie *Map[K, V]) *mainNode[K, V] {
	for {
		if m == nil {
			return nil
		}
		prev := gatomic.LoadPointer(&m.prev)
		root := ctrie.rdcssReadRoot(true)
		if prev == nil {
			return m
		}

		if prev.failed != nil {
			// A concurrent snapshot invalidated this GCAS; restore the
			// pre-GCAS value onto the I-node.
			fn := prev.failed
			if gatomic.CompareAndSwapPointer(&i.main, m, fn) {
				return fn
			}
			m = gatomic.LoadPointer(&i.main)
			continue
		}

		if root.gen == i.gen && !ctrie.readOnly {
			if gatomic.CompareAndSwapPointer(&m.prev, prev, nil) {
				return m
			}
			continue
		}

		// The root generation moved on; mark this GCAS as failed so the
		// I-node's main node gets set back to its previous value.
		gatomic.CompareAndSwapPointer(&m.prev, prev, &mainNode[K, V]{failed: prev})
		m = gatomic.LoadPointer(&i.main)
		return gcasComplete(i, m, ctrie)
	}
}
