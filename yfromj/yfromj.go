// Package yfromj implements the reverse JSON-to-YAML direction:
// straightforward recursive emission from a jsontree.Node, with trivial
// multi-line handling. It lets a caller round-trip a converted document
// back to YAML for inspection or re-editing.
package yfromj

import (
	"strconv"
	"strings"

	"github.com/biot2/ytoj/jsontree"
)

// Options configures indent width (2-8) and the yesNoBool rendering
// choice.
type Options struct {
	Indent    int
	YesNoBool bool
}

// Text renders n as Y text.
func Text(n *jsontree.Node, opts Options) string {
	if opts.Indent < 2 {
		opts.Indent = 2
	}
	var b strings.Builder
	w := &writer{out: &b, indent: opts.Indent, opts: opts}
	w.writeRoot(n)
	return b.String()
}

type writer struct {
	out    *strings.Builder
	indent int
	opts   Options
}

func (w *writer) pad(depth int) string { return strings.Repeat(" ", depth*w.indent) }

func (w *writer) writeRoot(n *jsontree.Node) {
	switch n.Kind() {
	case jsontree.Object:
		if n.Len() == 0 {
			w.out.WriteString("{}\n")
			return
		}
		w.writeObjectFields(n, 0)
	case jsontree.Array:
		if n.Len() == 0 {
			w.out.WriteString("[]\n")
			return
		}
		w.writeArrayItems(n, 0)
	default:
		w.out.WriteString(w.scalar(n))
		w.out.WriteString("\n")
	}
}

func (w *writer) writeObjectFields(n *jsontree.Node, depth int) {
	n.EachField(func(key string, child *jsontree.Node) bool {
		w.out.WriteString(w.pad(depth))
		if needsQuoting(key) {
			w.out.WriteString(jsontree.Quote(key))
		} else {
			w.out.WriteString(key)
		}
		w.out.WriteString(":")
		w.writeValue(child, depth)
		return true
	})
}

func (w *writer) writeArrayItems(n *jsontree.Node, depth int) {
	n.Each(func(_ int, child *jsontree.Node) bool {
		w.out.WriteString(w.pad(depth))
		w.out.WriteString("-")
		w.writeItemValue(child, depth)
		return true
	})
}

// writeValue renders the value half of a "key:" mapping entry.
func (w *writer) writeValue(n *jsontree.Node, depth int) {
	switch n.Kind() {
	case jsontree.Object:
		if n.Len() == 0 {
			w.out.WriteString(" {}\n")
			return
		}
		w.out.WriteString("\n")
		w.writeObjectFields(n, depth+1)
	case jsontree.Array:
		if n.Len() == 0 {
			w.out.WriteString(" []\n")
			return
		}
		w.out.WriteString("\n")
		w.writeArrayItems(n, depth)
	case jsontree.String:
		s, _ := n.String()
		if strings.Contains(s, "\n") {
			w.writeMultilineScalar(s, depth+1)
			return
		}
		w.out.WriteString(" ")
		w.out.WriteString(w.scalar(n))
		w.out.WriteString("\n")
	default:
		w.out.WriteString(" ")
		w.out.WriteString(w.scalar(n))
		w.out.WriteString("\n")
	}
}

// writeItemValue renders the value half of a "- " sequence item.
func (w *writer) writeItemValue(n *jsontree.Node, depth int) {
	switch n.Kind() {
	case jsontree.Object:
		if n.Len() == 0 {
			w.out.WriteString(" {}\n")
			return
		}
		w.out.WriteString("\n")
		w.writeObjectFields(n, depth+1)
	case jsontree.Array:
		if n.Len() == 0 {
			w.out.WriteString(" []\n")
			return
		}
		w.out.WriteString("\n")
		w.writeArrayItems(n, depth+1)
	default:
		w.out.WriteString(" ")
		w.out.WriteString(w.scalar(n))
		w.out.WriteString("\n")
	}
}

// writeMultilineScalar switches an embedded-newline string to a literal
// block with an explicit chomp modifier.
func (w *writer) writeMultilineScalar(s string, depth int) {
	chomp := "-"
	body := s
	switch {
	case strings.HasSuffix(s, "\n\n"):
		// Keep: the final "\n" is the last content line's own terminator;
		// every earlier trailing "\n" becomes a blank line in the block.
		chomp = "+"
		body = strings.TrimSuffix(s, "\n")
	case strings.HasSuffix(s, "\n"):
		chomp = ""
		body = strings.TrimSuffix(s, "\n")
	}
	w.out.WriteString(" |")
	w.out.WriteString(chomp)
	w.out.WriteString("\n")
	for _, ln := range strings.Split(body, "\n") {
		if ln == "" {
			w.out.WriteString("\n")
			continue
		}
		w.out.WriteString(w.pad(depth))
		w.out.WriteString(ln)
		w.out.WriteString("\n")
	}
}

func (w *writer) scalar(n *jsontree.Node) string {
	switch n.Kind() {
	case jsontree.Null:
		return "null"
	case jsontree.Bool:
		v, _ := n.Bool()
		if w.opts.YesNoBool {
			if v {
				return "yes"
			}
			return "no"
		}
		if v {
			return "true"
		}
		return "false"
	case jsontree.Number:
		f, _ := n.Float64()
		return strconv.FormatFloat(f, 'g', -1, 64)
	case jsontree.String:
		s, _ := n.String()
		if s == "" {
			return "''"
		}
		if needsQuoting(s) {
			return jsontree.Quote(s)
		}
		return s
	}
	return "null"
}

// needsQuoting reports whether a plain Y scalar rendering of s would be
// ambiguous with another scalar type or Y punctuation.
func needsQuoting(s string) bool {
	switch strings.ToLower(s) {
	case "null", "true", "false", "yes", "no", "~":
		return true
	}
	if s == "" {
		return true
	}
	switch s[0] {
	case '!', '&', '*', '-', '[', ']', '{', '}', '"', '\'', '#', '|', '>', '%', '@', '`':
		return true
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return true
	}
	return strings.Contains(s, ": ") || strings.HasSuffix(s, ":") ||
		strings.Contains(s, " #") || strings.Contains(s, "\n")
}
