package ctrie

import (
	"errors"
	"reflect"
)

// Argument errors
var (
	// ErrNullArgument indicates that a nil key or nil value was passed to an
	// operation that does not accept one.
	ErrNullArgument = errors.New("null key or value")
)

// State errors
var (
	// ErrUnsupportedOperation indicates that a mutation was attempted on a
	// read-only snapshot.
	ErrUnsupportedOperation = errors.New("unsupported operation on read-only map")

	// ErrIllegalState indicates that Iter.Remove was called without a
	// preceding successful call to Iter.Next.
	ErrIllegalState = errors.New("illegal state")
)

// Iteration errors
var (
	// ErrNoSuchElement indicates that Iter.Key or Iter.Value was called after
	// the iterator was exhausted.
	ErrNoSuchElement = errors.New("no such element")
)

// isNullArg reports whether v is a nil pointer, interface, map, slice, chan
// or func. Go generics admit key/value types that can't be compared against
// untyped nil directly (a typed nil pointer boxed in 'any' is not ==nil), so
// the check goes through reflection instead.
func isNullArg(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface, reflect.UnsafePointer:
		return rv.IsNil()
	default:
		return false
	}
}
