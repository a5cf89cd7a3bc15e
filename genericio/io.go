// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package genericio provides a generic implementation of the
// io package that works on streams of any type. The ctrie
// serialization proxy uses it to stream Frame values without
// committing to a fixed byte wire format.
package genericio

import (
	"errors"
	"io"
)

// ErrShortWrite means that a write accepted fewer items than requested
// but failed to return an explicit error.
var ErrShortWrite = errors.New("short write")

// ErrShortBuffer means that a read required a longer buffer than was provided.
var ErrShortBuffer = errors.New("short buffer")

// EOF is the error returned by Read when no more input is available.
// Functions should return EOF only to signal a graceful end of input.
var EOF = io.EOF

// ErrUnexpectedEOF means that EOF was encountered in the
// middle of reading a fixed-size block or data structure.
var ErrUnexpectedEOF = io.ErrUnexpectedEOF

// Reader is the interface that wraps the basic Read method.
//
// Read reads up to len(p) items into p. It returns the number of items
// read (0 <= n <= len(p)) and any error encountered. The semantics match
// io.Reader's, generalized from bytes to an arbitrary element type.
type Reader[T any] interface {
	Read(p []T) (n int, err error)
}

// Writer is the interface that wraps the basic Write method.
type Writer[T any] interface {
	Write(p []T) (n int, err error)
}

// Closer is the interface that wraps the basic Close method.
type Closer interface {
	Close() error
}

// ReadCloser is the interface that groups the basic Read and Close methods.
type ReadCloser[T any] interface {
	Reader[T]
	Closer
}

// WriteCloser is the interface that groups the basic Write and Close methods.
type WriteCloser[T any] interface {
	Writer[T]
	Closer
}

// ReadAtLeast reads from r into buf until it has read at least min items.
// It returns the number of items copied and an error if fewer were read.
// The error is EOF only if no items were read. If an EOF happens after
// reading fewer than min items, ReadAtLeast returns ErrUnexpectedEOF.
func ReadAtLeast[T any](r Reader[T], buf []T, min int) (n int, err error) {
	if len(buf) < min {
		return 0, ErrShortBuffer
	}
	for n < min && err == nil {
		var nn int
		nn, err = r.Read(buf[n:])
		n += nn
	}
	if n >= min {
		err = nil
	} else if n > 0 && err == EOF {
		err = ErrUnexpectedEOF
	}
	return
}

// ReadFull reads exactly len(buf) items from r into buf.
func ReadFull[T any](r Reader[T], buf []T) (n int, err error) {
	return ReadAtLeast(r, buf, len(buf))
}
