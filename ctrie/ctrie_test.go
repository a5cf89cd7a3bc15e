package ctrie_test

import (
	"strconv"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/ctrie-go/ctrie"
)

func newStringMap() *ctrie.Map[string, int] {
	return ctrie.New[string, int](ctrie.StringHasher{})
}

func TestPutGet(t *testing.T) {
	c := qt.New(t)
	m := newStringMap()

	_, existed, err := m.Put("a", 1)
	c.Assert(err, qt.IsNil)
	c.Assert(existed, qt.IsFalse)

	old, existed, err := m.Put("a", 2)
	c.Assert(err, qt.IsNil)
	c.Assert(existed, qt.IsTrue)
	c.Assert(old, qt.Equals, 1)

	val, ok, err := m.Get("a")
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)
	c.Assert(val, qt.Equals, 2)

	_, ok, err = m.Get("missing")
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsFalse)
}

func TestPutIfAbsent(t *testing.T) {
	c := qt.New(t)
	m := newStringMap()

	old, existed, err := m.PutIfAbsent("a", 1)
	c.Assert(err, qt.IsNil)
	c.Assert(existed, qt.IsFalse)
	c.Assert(old, qt.Equals, 0)

	old, existed, err = m.PutIfAbsent("a", 2)
	c.Assert(err, qt.IsNil)
	c.Assert(existed, qt.IsTrue)
	c.Assert(old, qt.Equals, 1)

	val, _, _ := m.Get("a")
	c.Assert(val, qt.Equals, 1)
}

func TestReplace(t *testing.T) {
	c := qt.New(t)
	m := newStringMap()

	_, existed, err := m.Replace("a", 1)
	c.Assert(err, qt.IsNil)
	c.Assert(existed, qt.IsFalse)
	_, ok, _ := m.Get("a")
	c.Assert(ok, qt.IsFalse)

	m.Put("a", 1)
	old, existed, err := m.Replace("a", 2)
	c.Assert(err, qt.IsNil)
	c.Assert(existed, qt.IsTrue)
	c.Assert(old, qt.Equals, 1)
	val, _, _ := m.Get("a")
	c.Assert(val, qt.Equals, 2)
}

func TestReplaceMatch(t *testing.T) {
	c := qt.New(t)
	m := newStringMap()
	m.Put("a", 1)

	replaced, err := m.ReplaceMatch("a", 99, 2)
	c.Assert(err, qt.IsNil)
	c.Assert(replaced, qt.IsFalse)
	val, _, _ := m.Get("a")
	c.Assert(val, qt.Equals, 1)

	replaced, err = m.ReplaceMatch("a", 1, 2)
	c.Assert(err, qt.IsNil)
	c.Assert(replaced, qt.IsTrue)
	val, _, _ = m.Get("a")
	c.Assert(val, qt.Equals, 2)
}

func TestRemoveAndRemoveMatch(t *testing.T) {
	c := qt.New(t)
	m := newStringMap()
	m.Put("a", 1)

	removed, err := m.RemoveMatch("a", 99)
	c.Assert(err, qt.IsNil)
	c.Assert(removed, qt.IsFalse)
	_, ok, _ := m.Get("a")
	c.Assert(ok, qt.IsTrue)

	removed, err = m.RemoveMatch("a", 1)
	c.Assert(err, qt.IsNil)
	c.Assert(removed, qt.IsTrue)
	_, ok, _ = m.Get("a")
	c.Assert(ok, qt.IsFalse)

	m.Put("b", 2)
	val, existed, err := m.Remove("b")
	c.Assert(err, qt.IsNil)
	c.Assert(existed, qt.IsTrue)
	c.Assert(val, qt.Equals, 2)

	_, existed, err = m.Remove("b")
	c.Assert(err, qt.IsNil)
	c.Assert(existed, qt.IsFalse)
}

func TestClearAndLen(t *testing.T) {
	c := qt.New(t)
	m := newStringMap()
	for i := 0; i < 50; i++ {
		m.Put(strconv.Itoa(i), i)
	}
	c.Assert(m.Len(), qt.Equals, 50)
	c.Assert(m.Clear(), qt.IsNil)
	c.Assert(m.Len(), qt.Equals, 0)
}

func TestContainsKeyAndValue(t *testing.T) {
	c := qt.New(t)
	m := newStringMap()
	m.Put("a", 1)

	ok, err := m.ContainsKey("a")
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)

	ok, err = m.ContainsValue(1)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)

	ok, err = m.ContainsValue(2)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsFalse)
}

func TestNullArguments(t *testing.T) {
	c := qt.New(t)
	m := ctrie.New[*int, *int](ctrie.ComparableHasher[*int]{})

	_, _, err := m.Put(nil, new(int))
	c.Assert(err, qt.Equals, ctrie.ErrNullArgument)

	v := new(int)
	_, _, err = m.Put(v, nil)
	c.Assert(err, qt.Equals, ctrie.ErrNullArgument)

	_, _, err = m.Get(nil)
	c.Assert(err, qt.Equals, ctrie.ErrNullArgument)
}

func TestReadOnlySnapshotRejectsMutation(t *testing.T) {
	c := qt.New(t)
	m := newStringMap()
	m.Put("a", 1)

	ro := m.ReadOnlySnapshot()
	_, _, err := ro.Put("b", 2)
	c.Assert(err, qt.Equals, ctrie.ErrUnsupportedOperation)
	c.Assert(ro.Clear(), qt.Equals, ctrie.ErrUnsupportedOperation)

	_, _, err = ro.Remove("a")
	c.Assert(err, qt.Equals, ctrie.ErrUnsupportedOperation)
}

// TestCollisionBucketTombingAndContraction exercises a key space that all
// hashes to the same 32-bit code, forcing the trie to build a chain of
// cNodes down to the bottom of the hash space and an lNode beneath it
// (the collision-list fallback), then exercises insert/remove/contraction
// within that list.
func TestCollisionBucketTombingAndContraction(t *testing.T) {
	c := qt.New(t)
	m := ctrie.New[int, string](collidingHasher{})

	for i := 0; i < 8; i++ {
		_, _, err := m.Put(i, strconv.Itoa(i))
		c.Assert(err, qt.IsNil)
	}
	c.Assert(m.Len(), qt.Equals, 8)

	for i := 0; i < 7; i++ {
		_, existed, err := m.Remove(i)
		c.Assert(err, qt.IsNil)
		c.Assert(existed, qt.IsTrue)
	}
	// Down to a single entry: the list should have tombed and contracted
	// to a singleton S-node, but the surviving key must still resolve.
	val, ok, err := m.Get(7)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)
	c.Assert(val, qt.Equals, "7")
	c.Assert(m.Len(), qt.Equals, 1)

	_, existed, err := m.Remove(7)
	c.Assert(err, qt.IsNil)
	c.Assert(existed, qt.IsTrue)
	c.Assert(m.Len(), qt.Equals, 0)
}
