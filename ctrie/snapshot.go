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

// Snapshot returns a stable, point-in-time clone of the Map. The clone
// shares all branches with the original in O(1) time; subsequent writes to
// either Map lazily copy-on-write only the branches they touch. If the
// receiver is itself read-only, the returned clone is too.
func (c *Map[K, V]) Snapshot() *Map[K, V] {
	return c.snapshot(c.readOnly)
}

// ReadOnlySnapshot returns a stable, point-in-time, read-only clone of the
// Map. Mutating methods on the result return ErrUnsupportedOperation.
func (c *Map[K, V]) ReadOnlySnapshot() *Map[K, V] {
	return c.snapshot(true)
}

func (c *Map[K, V]) snapshot(readOnly bool) *Map[K, V] {
	if readOnly && c.readOnly {
		return c
	}
	for {
		root := c.readRoot()
		main := gcasRead(root, c)
		if c.rdcssRoot(root, main, root.copyToGen(&generation{}, c)) {
			if readOnly {
				// A read-only snapshot can share the old generation's root.
				return newMap(root, c.hasher, readOnly)
			}
			// A read-write snapshot needs its own copy of the root under
			// the new generation.
			return newMap(c.readRoot().copyToGen(&generation{}, c), c.hasher, readOnly)
		}
	}
}
