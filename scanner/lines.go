package scanner

import "strings"

// Lines is the line provider: an indexable sequence of source lines
// together with their indentation and 1-based line number.
type Lines struct {
	raw []string
}

// NewLines splits src on line feeds, normalizing CRLF and lone CR first.
// A single trailing "\n" is the terminator of the last real line, not a
// blank line of its own, so it is trimmed before splitting; otherwise
// every document ending in a newline would carry one phantom blank row
// that throws off block-scalar trailing-blank-line counts.
func NewLines(src string) *Lines {
	src = strings.ReplaceAll(src, "\r\n", "\n")
	src = strings.ReplaceAll(src, "\r", "\n")
	src = strings.TrimSuffix(src, "\n")
	return &Lines{raw: strings.Split(src, "\n")}
}

// Len reports the number of lines.
func (l *Lines) Len() int { return len(l.raw) }

// Text returns the raw text of the 0-based row, or "" past EOF.
func (l *Lines) Text(row int) string {
	if row < 0 || row >= len(l.raw) {
		return ""
	}
	return l.raw[row]
}

// Indent returns the count of leading spaces on the 0-based row.
func (l *Lines) Indent(row int) int {
	text := l.Text(row)
	n := 0
	for n < len(text) && text[n] == ' ' {
		n++
	}
	return n
}

// LineNumber converts a 0-based row to the 1-based source line number.
func (l *Lines) LineNumber(row int) int { return row + 1 }

// IsBlankOrComment reports whether the 0-based row, once trimmed of
// leading indent, is empty or begins with '#'.
func (l *Lines) IsBlankOrComment(row int) bool {
	text := l.Text(row)
	trimmed := strings.TrimLeft(text, " ")
	return trimmed == "" || strings.HasPrefix(trimmed, "#")
}

// NextMeaningful returns the first row >= from that is not past EOF,
// blank, or a comment line, and ok=false if none remains.
func (l *Lines) NextMeaningful(from int) (row int, ok bool) {
	for row = from; row < l.Len(); row++ {
		if !l.IsBlankOrComment(row) {
			return row, true
		}
	}
	return l.Len(), false
}
