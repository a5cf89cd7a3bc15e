package ctrie

import "github.com/ctrie-go/ctrie/genericio"

// Frame is the discriminated record the serialization proxy reads and
// writes one at a time over a genericio stream: exactly one header Frame
// followed by one entry Frame per key/value pair.
type Frame[K, V any] struct {
	Header   bool
	ReadOnly bool
	Key      K
	Value    V
}

// Serialize walks a read-only snapshot of m and writes its entries to w:
// one header Frame recording whether m is read-only, followed by one
// Frame per entry. It does not commit to a fixed byte wire format; w may
// be backed by any genericio.Writer[Frame[K,V]].
func Serialize[K, V any](m *Map[K, V], w genericio.Writer[Frame[K, V]]) error {
	snap := m.ReadOnlySnapshot()
	if _, err := w.Write([]Frame[K, V]{{Header: true, ReadOnly: m.readOnly}}); err != nil {
		return err
	}
	for iter := snap.Iterator(); iter.Next(); {
		key, err := iter.Key()
		if err != nil {
			return err
		}
		value, err := iter.Value()
		if err != nil {
			return err
		}
		if _, err := w.Write([]Frame[K, V]{{Key: key, Value: value}}); err != nil {
			return err
		}
	}
	return nil
}

// Deserialize reads frames from r, written by Serialize, into a freshly
// constructed Map using h as the hashing/equivalence strategy, wrapping
// the result read-only if the header frame said so.
func Deserialize[K, V any](r genericio.Reader[Frame[K, V]], h Hasher[K]) (*Map[K, V], error) {
	m := New[K, V](h)
	var header [1]Frame[K, V]
	if _, err := genericio.ReadFull[Frame[K, V]](r, header[:]); err != nil {
		return nil, err
	}
	if !header[0].Header {
		return nil, ErrIllegalState
	}
	readOnly := header[0].ReadOnly
	var buf [1]Frame[K, V]
	for {
		n, err := r.Read(buf[:])
		if n > 0 {
			if _, _, putErr := m.Put(buf[0].Key, buf[0].Value); putErr != nil {
				return nil, putErr
			}
		}
		if err == genericio.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if n == 0 {
			break
		}
	}
	if readOnly {
		return m.ReadOnlySnapshot(), nil
	}
	return m, nil
}
