package ctrie_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/ctrie-go/ctrie"
	"github.com/ctrie-go/ctrie/genericio"
)

// sliceStream is an in-memory genericio.Reader/Writer backed by a slice,
// used to round-trip Frame values without committing to a byte format.
type sliceStream[T any] struct {
	items []T
}

func (s *sliceStream[T]) Write(p []T) (int, error) {
	s.items = append(s.items, p...)
	return len(p), nil
}

func (s *sliceStream[T]) Read(p []T) (int, error) {
	if len(s.items) == 0 {
		return 0, genericio.EOF
	}
	n := copy(p, s.items)
	s.items = s.items[n:]
	return n, nil
}

func TestSerializeRoundTrip(t *testing.T) {
	c := qt.New(t)
	m := newStringMap()
	m.Put("a", 1)
	m.Put("b", 2)
	m.Put("c", 3)

	stream := &sliceStream[ctrie.Frame[string, int]]{}
	c.Assert(ctrie.Serialize[string, int](m, stream), qt.IsNil)

	got, err := ctrie.Deserialize[string, int](stream, ctrie.StringHasher{})
	c.Assert(err, qt.IsNil)
	c.Assert(got.Len(), qt.Equals, 3)

	for _, k := range []string{"a", "b", "c"} {
		want, _, _ := m.Get(k)
		val, ok, err := got.Get(k)
		c.Assert(err, qt.IsNil)
		c.Assert(ok, qt.IsTrue)
		c.Assert(val, qt.Equals, want)
	}
}

func TestSerializeRoundTripReadOnly(t *testing.T) {
	c := qt.New(t)
	m := newStringMap()
	m.Put("a", 1)
	ro := m.ReadOnlySnapshot()

	stream := &sliceStream[ctrie.Frame[string, int]]{}
	c.Assert(ctrie.Serialize[string, int](ro, stream), qt.IsNil)

	got, err := ctrie.Deserialize[string, int](stream, ctrie.StringHasher{})
	c.Assert(err, qt.IsNil)

	_, _, err = got.Put("b", 2)
	c.Assert(err, qt.Equals, ctrie.ErrUnsupportedOperation)
}

func TestSerializeEmptyMap(t *testing.T) {
	c := qt.New(t)
	m := newStringMap()

	stream := &sliceStream[ctrie.Frame[string, int]]{}
	c.Assert(ctrie.Serialize[string, int](m, stream), qt.IsNil)

	got, err := ctrie.Deserialize[string, int](stream, ctrie.StringHasher{})
	c.Assert(err, qt.IsNil)
	c.Assert(got.Len(), qt.Equals, 0)
}
