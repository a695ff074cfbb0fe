// Package jsontree implements a JSON value tree: parse/emit, child
// lookup by index or name, '/'-separated path lookup, add/remove
// children, typed accessors, and iteration. It is the round-trip target
// for the YAML-to-JSON pipeline's text output and the input side of the
// JSON-to-YAML emitter in package yfromj.
package jsontree

import "fmt"

// Kind is the J value variant.
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	}
	return "unknown"
}

// member is one key/value pair of an Object node, kept in insertion
// order so that emission preserves source key order.
type member struct {
	key   string
	value *Node
}

// Node is one J value: a scalar, an array, or an ordered object.
type Node struct {
	kind    Kind
	boolean bool
	number  float64
	str     string
	items   []*Node
	fields  []member
}

func NewNull() *Node                { return &Node{kind: Null} }
func NewBool(v bool) *Node          { return &Node{kind: Bool, boolean: v} }
func NewNumber(v float64) *Node     { return &Node{kind: Number, number: v} }
func NewString(v string) *Node      { return &Node{kind: String, str: v} }
func NewArray(items ...*Node) *Node { return &Node{kind: Array, items: items} }
func NewObject() *Node              { return &Node{kind: Object} }

func (n *Node) Kind() Kind { return n.kind }
func (n *Node) IsNull() bool { return n.kind == Null }

func (n *Node) Bool() (bool, bool) {
	if n.kind != Bool {
		return false, false
	}
	return n.boolean, true
}

func (n *Node) Float64() (float64, bool) {
	if n.kind != Number {
		return 0, false
	}
	return n.number, true
}

// String returns the raw (unescaped) string content, or "" with ok=false
// if n is not a string node.
func (n *Node) String() (string, bool) {
	if n.kind != String {
		return "", false
	}
	return n.str, true
}

// Len reports the child count of an array or object, 0 otherwise.
func (n *Node) Len() int {
	switch n.kind {
	case Array:
		return len(n.items)
	case Object:
		return len(n.fields)
	}
	return 0
}

// ChildAt returns the array element (or the i-th object field's value)
// at index i.
func (n *Node) ChildAt(i int) (*Node, bool) {
	switch n.kind {
	case Array:
		if i < 0 || i >= len(n.items) {
			return nil, false
		}
		return n.items[i], true
	case Object:
		if i < 0 || i >= len(n.fields) {
			return nil, false
		}
		return n.fields[i].value, true
	}
	return nil, false
}

// ChildByName looks up an object field by key.
func (n *Node) ChildByName(name string) (*Node, bool) {
	if n.kind != Object {
		return nil, false
	}
	for _, f := range n.fields {
		if f.key == name {
			return f.value, true
		}
	}
	return nil, false
}

// Keys returns an object's field names in insertion order.
func (n *Node) Keys() []string {
	if n.kind != Object {
		return nil
	}
	out := make([]string, len(n.fields))
	for i, f := range n.fields {
		out[i] = f.key
	}
	return out
}

// Append adds an element to an array node.
func (n *Node) Append(child *Node) error {
	if n.kind != Array {
		return fmt.Errorf("jsontree: Append on a %s node", n.kind)
	}
	n.items = append(n.items, child)
	return nil
}

// Set adds or replaces a field on an object node, preserving the
// position of an existing key.
func (n *Node) Set(key string, child *Node) error {
	if n.kind != Object {
		return fmt.Errorf("jsontree: Set on a %s node", n.kind)
	}
	for i, f := range n.fields {
		if f.key == key {
			n.fields[i].value = child
			return nil
		}
	}
	n.fields = append(n.fields, member{key: key, value: child})
	return nil
}

// Remove deletes a field from an object node or an item from an array
// node (by key or by index respectively).
func (n *Node) Remove(keyOrIndex interface{}) error {
	switch n.kind {
	case Object:
		key, ok := keyOrIndex.(string)
		if !ok {
			return fmt.Errorf("jsontree: Remove on an object requires a string key")
		}
		for i, f := range n.fields {
			if f.key == key {
				n.fields = append(n.fields[:i], n.fields[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("jsontree: key %q not found", key)
	case Array:
		idx, ok := keyOrIndex.(int)
		if !ok {
			return fmt.Errorf("jsontree: Remove on an array requires an int index")
		}
		if idx < 0 || idx >= len(n.items) {
			return fmt.Errorf("jsontree: index %d out of range", idx)
		}
		n.items = append(n.items[:idx], n.items[idx+1:]...)
		return nil
	}
	return fmt.Errorf("jsontree: Remove on a %s node", n.kind)
}

// Path resolves a '/'-separated path of object keys and array indices
// against n.
func (n *Node) Path(path string) (*Node, bool) {
	cur := n
	if path == "" {
		return cur, true
	}
	segments := splitPath(path)
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		switch cur.kind {
		case Object:
			next, ok := cur.ChildByName(seg)
			if !ok {
				return nil, false
			}
			cur = next
		case Array:
			idx, ok := parseIndex(seg)
			if !ok {
				return nil, false
			}
			next, ok := cur.ChildAt(idx)
			if !ok {
				return nil, false
			}
			cur = next
		default:
			return nil, false
		}
	}
	return cur, true
}

func splitPath(path string) []string {
	var out []string
	start := 0
	for i := 0; i < len(path); i++ {
		if path[i] == '/' {
			out = append(out, path[start:i])
			start = i + 1
		}
	}
	out = append(out, path[start:])
	return out
}

func parseIndex(seg string) (int, bool) {
	n := 0
	if seg == "" {
		return 0, false
	}
	for _, c := range seg {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

// Each iterates an array's elements in order.
func (n *Node) Each(fn func(index int, child *Node) bool) {
	if n.kind != Array {
		return
	}
	for i, c := range n.items {
		if !fn(i, c) {
			return
		}
	}
}

// EachField iterates an object's fields in insertion order.
func (n *Node) EachField(fn func(key string, child *Node) bool) {
	if n.kind != Object {
		return
	}
	for _, f := range n.fields {
		if !fn(f.key, f.value) {
			return
		}
	}
}
