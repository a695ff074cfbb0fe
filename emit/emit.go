// Package emit implements the JSON emitter: it walks the resolved
// element list and writes indented JSON text.
package emit

import (
	"strconv"
	"strings"

	"github.com/biot2/ytoj/classify"
	"github.com/biot2/ytoj/element"
)

// Options configures indent width and the yesNoBool relaxation.
type Options struct {
	// Indent is spaces per nesting level, 0-8. 0 produces unformatted
	// (but valid) output.
	Indent    int
	YesNoBool bool
}

// Text renders the resolved element list as J text.
func Text(l element.List, opts Options) (string, error) {
	var b strings.Builder
	w := &writer{out: &b, indent: opts.Indent}
	copts := classify.Options{YesNoBool: opts.YesNoBool}

	for i, e := range l {
		switch {
		case e.IsOpen():
			w.writeOpener(l, i)
		case e.IsClose():
			w.writeCloser(l, i)
		default:
			r, err := classify.Classify(e, copts)
			if err != nil {
				return "", err
			}
			w.writeLeaf(l, i, r)
		}
	}
	return b.String(), nil
}

type writer struct {
	out    *strings.Builder
	indent int
}

func (w *writer) pad(depth int) string {
	if w.indent <= 0 {
		return ""
	}
	return strings.Repeat(" ", depth*w.indent)
}

func (w *writer) nl() {
	if w.indent > 0 {
		w.out.WriteByte('\n')
	}
}

// writeOpener places the opener on its own new line. Every element but
// the very first document element starts one, whether the predecessor
// was a leaf ("a": 1,), a closer (},), or another opener (the first
// child of a container); the key, if any, is appended right before the
// marker on that same fresh line.
func (w *writer) writeOpener(l element.List, i int) {
	e := l[i]
	marker := element.MapOpen
	if e.Value == element.SeqOpen {
		marker = element.SeqOpen
	}
	if i > 0 {
		w.nl()
	}
	w.out.WriteString(w.pad(e.Indent))
	if e.Key != "" {
		w.out.WriteString(strconv.Quote(e.Key))
		w.out.WriteString(": ")
	}
	w.out.WriteString(marker)
}

func (w *writer) writeCloser(l element.List, i int) {
	e := l[i]
	marker := element.MapClose
	if e.Value == element.SeqClose {
		marker = element.SeqClose
	}
	w.nl()
	w.out.WriteString(w.pad(e.Indent))
	w.out.WriteString(marker)
	if i+1 < len(l) && !l[i+1].IsClose() {
		w.out.WriteString(",")
	}
}

func (w *writer) writeLeaf(l element.List, i int, r classify.Result) {
	e := l[i]
	w.nl()
	w.out.WriteString(w.pad(e.Indent))
	if e.Key != "" {
		w.out.WriteString(strconv.Quote(e.Key))
		w.out.WriteString(": ")
	}
	if r.Kind == classify.KindBinaryArray {
		w.writeBinary(e, r)
	} else {
		w.out.WriteString(r.Text)
	}
	if i+1 < len(l) && !l[i+1].IsClose() {
		w.out.WriteString(",")
	}
}

// writeBinary renders a !!binary element as an inline array of unsigned
// byte literals, one per line, indented one step deeper.
func (w *writer) writeBinary(e *element.Element, r classify.Result) {
	w.out.WriteString(element.SeqOpen)
	depth := e.Indent + 1
	for i, b := range r.Bytes {
		w.nl()
		w.out.WriteString(w.pad(depth))
		w.out.WriteString(strconv.Itoa(int(b)))
		if i != len(r.Bytes)-1 {
			w.out.WriteString(",")
		}
	}
	if len(r.Bytes) > 0 {
		w.nl()
		w.out.WriteString(w.pad(e.Indent))
	}
	w.out.WriteString(element.SeqClose)
}
