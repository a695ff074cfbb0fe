// Package element implements the pivot representation threaded from
// the structure builder through the resolver to the classifier and
// emitter: a flat sequence of bracketed records, plus the two-pass
// anchor/alias/merge resolver that rewrites it in place. Keeping the
// representation flat (rather than a tree with parent pointers) is what
// makes subtree copy a pure slice-copy and merge a slice splice.
package element

import (
	"github.com/biot2/ytoj/token"
)

// MapOpen, MapClose, SeqOpen and SeqClose are the values a container
// open/close element carries in its Value field; non-container elements
// never use them. NullValue is the Value the builder gives a scalar
// element that has no value of its own.
const (
	MapOpen   = "{"
	MapClose  = "}"
	SeqOpen   = "["
	SeqClose  = "]"
	NullValue = "null"
)

// Element is one record in the pivot list: a scalar, or a container
// open/close marker.
type Element struct {
	// Key is the scalar key, or empty for an array item or a container
	// marker.
	Key string
	// Value is the scalar value text, or one of the marker constants.
	Value string
	// Indent is the logical nesting depth computed by the builder; it is
	// not a source column.
	Indent int
	// Literal is true when Value came from a quoted form; classification
	// is bypassed for it.
	Literal bool
	// Alias is the raw "*name" designator, empty if this element is not
	// an unresolved alias reference.
	Alias string
	// Anchor is the name this element defines ("name", no sigil), empty
	// if none.
	Anchor string
	// LineNumber is the 1-based source line, for error reporting.
	LineNumber int
	// Tag is the element's explicit tag, or token.NoTag.
	Tag token.Tag
}

// IsOpen reports whether e opens a container.
func (e *Element) IsOpen() bool { return e.Value == MapOpen || e.Value == SeqOpen }

// IsClose reports whether e closes a container.
func (e *Element) IsClose() bool { return e.Value == MapClose || e.Value == SeqClose }

// IsContainer reports whether e is any open/close marker.
func (e *Element) IsContainer() bool { return e.IsOpen() || e.IsClose() }

// List is the flat element sequence threaded through the builder,
// resolver, classifier, and emitter.
type List []*Element

// MatchingClose returns the index of the close marker matching the open
// marker at openIdx (same Indent, balanced nesting), or -1.
func (l List) MatchingClose(openIdx int) int {
	if openIdx < 0 || openIdx >= len(l) || !l[openIdx].IsOpen() {
		return -1
	}
	depth := 0
	indent := l[openIdx].Indent
	for i := openIdx + 1; i < len(l); i++ {
		e := l[i]
		if e.Indent != indent {
			continue
		}
		switch {
		case e.IsOpen():
			depth++
		case e.IsClose():
			if depth == 0 {
				return i
			}
			depth--
		}
	}
	return -1
}

// Subtree returns the half-open index range [start, end) of the
// anchor-bearing element at idx: the element itself alone if it is a
// scalar, or through its container's matching close if idx is itself a
// container open (a key whose value is a nested mapping/sequence/array
// carries its key directly on that open marker).
func (l List) Subtree(idx int) (start, end int) {
	start = idx
	if l[idx].IsOpen() {
		if close := l.MatchingClose(idx); close >= 0 {
			return start, close + 1
		}
	}
	return start, idx + 1
}
