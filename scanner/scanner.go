// Package scanner implements the token scanner: it turns an
// indentation-structured line stream into the next key or value token,
// tracking quoting, multi-line continuation, inline-array punctuation,
// tag prefixes, anchor/alias markers, and block/chomp modifiers.
package scanner

import (
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/biot2/ytoj/token"
	"github.com/biot2/ytoj/yerrors"
)

// lfSentinel stands in for a hard line break collected from a block or
// quoted scalar. Folded joins decide at join time where to put a space
// instead; the final string-escape pass (escapeForJSON) renders every
// remaining sentinel as \n. It must not appear in real input, so any
// byte sequence that cannot occur in valid source text works.
const lfSentinel = "\x00YLF\x00"

// Scanner is the cursor-driven tokenizer.
type Scanner struct {
	lines         *Lines
	row           int
	col           int
	indent        int
	inInlineArray bool
}

// New constructs a Scanner over src.
func New(src string) *Scanner {
	return &Scanner{lines: NewLines(src)}
}

// SetInlineArray toggles recognition of inline structural punctuation
// ('[', ']', ',') as one-character value tokens.
func (s *Scanner) SetInlineArray(v bool) { s.inInlineArray = v }

// InInlineArray reports the current inline-array mode.
func (s *Scanner) InInlineArray() bool { return s.inInlineArray }

// Row returns the current 0-based line cursor, for look-ahead by the
// structure builder.
func (s *Scanner) Row() int { return s.row }

// lineExhausted reports whether nothing scannable remains on the
// current row at the cursor: end of text, trailing whitespace only, or
// a trailing comment.
func (s *Scanner) lineExhausted() bool {
	text := s.lines.Text(s.row)
	if s.col >= len(text) {
		return true
	}
	rest := strings.TrimLeft(text[s.col:], " \t")
	return rest == "" || strings.HasPrefix(rest, "#")
}

// peekFromRow is the row lookahead should start scanning from: the
// current row if it still has unconsumed text, otherwise the row after
// it. Without this, a lookahead taken right after a key that ran to the
// end of its line (e.g. a bare "a:", possibly with trailing spaces or a
// comment) would re-inspect that same already-consumed line instead of
// the line that actually follows it.
func (s *Scanner) peekFromRow() int {
	if s.lineExhausted() {
		return s.row + 1
	}
	return s.row
}

// AtLineEnd reports whether the cursor has consumed all of the current
// row's scannable text, meaning a PeekIndent/PeekTrimmed call would be
// reporting on the following row rather than trailing content on this
// one.
func (s *Scanner) AtLineEnd() bool {
	return s.lineExhausted()
}

// AtEOF reports whether scanning is exhausted.
func (s *Scanner) AtEOF() bool {
	row, ok := s.lines.NextMeaningful(s.peekFromRow())
	return !ok || row >= s.lines.Len()
}

// PeekIndent returns the indentation of the next meaningful line without
// consuming it, used by the builder to decide whether to recurse into a
// nested mapping/sequence.
func (s *Scanner) PeekIndent() (indent int, ok bool) {
	row, ok := s.lines.NextMeaningful(s.peekFromRow())
	if !ok {
		return 0, false
	}
	return s.lines.Indent(row), true
}

// PeekTrimmed returns the trimmed text of the next meaningful line
// without consuming it.
func (s *Scanner) PeekTrimmed() (text string, ok bool) {
	row, ok := s.lines.NextMeaningful(s.peekFromRow())
	if !ok {
		return "", false
	}
	return strings.TrimLeft(s.lines.Text(row), " "), true
}

// PeekLineNumber returns the 1-based source line of the next meaningful
// line without consuming it, for error reporting ahead of a Next() call.
func (s *Scanner) PeekLineNumber() (line int, ok bool) {
	row, ok := s.lines.NextMeaningful(s.peekFromRow())
	if !ok {
		return 0, false
	}
	return s.lines.LineNumber(row), true
}

func (s *Scanner) advanceLine() {
	s.row++
	s.col = 0
}

// Next returns the next token, or io.EOF when input is exhausted.
func (s *Scanner) Next() (*token.Token, error) {
	for {
		row, ok := s.lines.NextMeaningful(s.row)
		if !ok {
			return nil, io.EOF
		}
		if row != s.row {
			s.row = row
			s.col = 0
		}
		line := s.lines.Text(s.row)
		if s.col == 0 {
			s.indent = s.lines.Indent(s.row)
		}
		if s.col >= len(line) {
			s.advanceLine()
			continue
		}
		rest := line[s.col:]
		trimmed := strings.TrimLeft(rest, " ")
		s.col += len(rest) - len(trimmed)
		if trimmed == "" {
			s.advanceLine()
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			s.advanceLine()
			continue
		}
		return s.scanOne(trimmed)
	}
}

func (s *Scanner) lineNo() int { return s.lines.LineNumber(s.row) }

// scanOne scans one token starting at the trimmed, non-empty, non-
// comment remainder of the current line.
func (s *Scanner) scanOne(rest string) (*token.Token, error) {
	lineNo := s.lineNo()
	indent := s.indent

	// 3. inline structural punctuation
	if s.inInlineArray {
		switch rest[0] {
		case '[', ']', ',':
			s.col++
			return &token.Token{
				Kind: token.Value, Text: string(rest[0]),
				ItemOffset: -1, Pos: token.Position{Line: lineNo, Indent: indent},
			}, nil
		}
	}

	// Collection-item detection runs in inline mode too: the builder
	// rejects a dash lead inside an inline array as CollectionInArray.
	itemOffset := -1
	if rest == "-" {
		itemOffset = 1
		s.col++
		rest = ""
	} else if strings.HasPrefix(rest, "- ") {
		n := 1
		for n < len(rest) && rest[n] == ' ' {
			n++
		}
		itemOffset = n
		s.col += n
		rest = rest[n:]
	}
	if rest == "" {
		if itemOffset < 0 {
			s.advanceLine()
			return nil, yerrors.New(yerrors.CollectionItem, lineNo, "empty collection item")
		}
		// "- " with nested content on following lines: emit a bare
		// collection-item marker; the builder recurses for the value.
		return &token.Token{
			Kind: token.Value, Text: "", ItemOffset: itemOffset,
			Pos: token.Position{Line: lineNo, Indent: indent},
		}, nil
	}

	var anchor, alias string
	var tag token.Tag

	// 2. tag prefix
	if strings.HasPrefix(rest, "!!") {
		consumed, raw, remainder := takeWord(rest)
		switch token.Tag(strings.ToLower(raw)) {
		case token.StrTag, token.IntTag, token.FloatTag, token.BoolTag,
			token.NullTag, token.MapTag, token.SeqTag, token.BinaryTag, token.TimeTag:
			tag = token.Tag(strings.ToLower(raw))
		default:
			return nil, yerrors.New(yerrors.InvalidTag, lineNo, "unknown tag %q", raw)
		}
		s.col += consumed
		rest = remainder
	} else if strings.HasPrefix(rest, "!") {
		consumed, raw, remainder := takeWord(rest)
		tag = token.Tag(raw)
		s.col += consumed
		rest = remainder
	}

	// 5. anchor/alias
	if strings.HasPrefix(rest, "&") {
		name, remainder, err := readIdentifier(rest[1:])
		if err != nil {
			return nil, yerrors.New(yerrors.AnchorAliasName, lineNo, "invalid anchor name")
		}
		anchor = name
		s.col += len(rest) - len(remainder)
		rest = strings.TrimLeft(remainder, " ")
		s.col += len(remainder) - len(rest)
	} else if strings.HasPrefix(rest, "*") {
		name, remainder, err := readIdentifier(rest[1:])
		if err != nil {
			return nil, yerrors.New(yerrors.AnchorAliasName, lineNo, "invalid alias name")
		}
		alias = "*" + name
		s.col += len(rest) - len(remainder)
		rest = strings.TrimLeft(remainder, " ")
		s.col += len(remainder) - len(rest)
		if rest != "" && !strings.HasPrefix(rest, ",") && !strings.HasPrefix(rest, "]") && !isKeyMarker(rest) {
			return nil, yerrors.New(yerrors.AliasValue, lineNo, "alias %q followed by a value", name)
		}
	}

	// A tag or anchor may be the last thing on its line; the value it
	// annotates then lives on the following lines (or is null).
	if rest == "" {
		s.col = len(s.lines.Text(s.row))
		return &token.Token{
			Kind: token.Value, Text: "", Tag: tag, Anchor: anchor, Alias: alias,
			ItemOffset: itemOffset, Pos: token.Position{Line: lineNo, Indent: indent},
		}, nil
	}

	// key-name validation happens once we know this resolves to a Key.
	if keyCandidate, isKeyLine := splitKeyMarker(rest); isKeyLine {
		key := strings.TrimSpace(keyCandidate)
		if anchor != "" || alias != "" {
			return nil, yerrors.New(yerrors.KeyNameAnchorAlias, lineNo, "keys may not carry anchors or aliases")
		}
		if key == "" {
			return nil, yerrors.New(yerrors.KeyNameEmpty, lineNo, "empty key name")
		}
		unquoted, err := s.unquoteIfQuoted(key, lineNo)
		if err != nil {
			return nil, err
		}
		if strings.ContainsRune(unquoted, '\t') {
			return nil, yerrors.New(yerrors.KeyNameInvalidChar, lineNo, "key name %q contains a tab", unquoted)
		}
		s.col += len(keyCandidate) + 1
		return &token.Token{
			Kind: token.Key, Text: unquoted, ItemOffset: itemOffset,
			Pos: token.Position{Line: lineNo, Indent: indent},
		}, nil
	}

	// 6. block scalar modifier
	if rest != "" && (rest[0] == '|' || rest[0] == '>') {
		if itemOffset >= 0 {
			return nil, yerrors.New(yerrors.CollectionBlock, lineNo, "block modifier not allowed after collection item lead")
		}
		style := token.Literal
		if rest[0] == '>' {
			style = token.Folded
		}
		chomp := token.Clip
		mod := rest[1:]
		switch {
		case strings.HasPrefix(mod, "+"):
			chomp = token.Keep
		case strings.HasPrefix(mod, "-"):
			chomp = token.Strip
		case mod != "" && !strings.HasPrefix(mod, " "):
			return nil, yerrors.New(yerrors.InvalidBlock, lineNo, "invalid block modifier %q", rest)
		}
		text, err := s.scanBlock(indent, style, chomp, tag)
		if err != nil {
			return nil, err
		}
		return &token.Token{
			Kind: token.Value, Text: text, Literal: true, Tag: tag,
			Anchor: anchor, ItemOffset: itemOffset,
			Pos: token.Position{Line: lineNo, Indent: indent},
		}, nil
	}

	// 7. quoted scalar
	if rest != "" && (rest[0] == '"' || rest[0] == '\'') {
		text, err := s.scanQuoted(rest[0], rest[1:], lineNo)
		if err != nil {
			return nil, err
		}
		return &token.Token{
			Kind: token.Value, Text: text, Literal: true, Tag: tag,
			Anchor: anchor, Alias: alias, ItemOffset: itemOffset,
			Pos: token.Position{Line: lineNo, Indent: indent},
		}, nil
	}

	// 7.5 inline array open, met outside of an already-open inline array
	// (rule 3 above only fires once inInlineArray is set, which happens
	// after the opener itself has been consumed).
	if !s.inInlineArray && rest[0] == '[' {
		s.col++
		return &token.Token{
			Kind: token.Value, Text: "[", Tag: tag, Anchor: anchor,
			ItemOffset: itemOffset, Pos: token.Position{Line: lineNo, Indent: indent},
		}, nil
	}

	// 8. plain scalar. An alias reaching this point sits right before
	// inline punctuation (',' or ']'), which stays unconsumed for the
	// next call.
	if alias != "" {
		return &token.Token{
			Kind: token.Value, Text: "", Alias: alias, Tag: tag,
			ItemOffset: itemOffset, Pos: token.Position{Line: lineNo, Indent: indent},
		}, nil
	}
	if s.inInlineArray {
		text := s.scanInlineScalar(rest)
		return &token.Token{
			Kind: token.Value, Text: text, Tag: tag, Anchor: anchor,
			ItemOffset: itemOffset, Pos: token.Position{Line: lineNo, Indent: indent},
		}, nil
	}
	text := s.scanPlain(rest, indent)
	return &token.Token{
		Kind: token.Value, Text: text, Tag: tag, Anchor: anchor,
		ItemOffset: itemOffset, Pos: token.Position{Line: lineNo, Indent: indent},
	}, nil
}

// scanInlineScalar reads a bare value inside an inline array, stopping
// at the next ',' or ']' rather than folding in continuation lines the
// way a block-context plain scalar does.
func (s *Scanner) scanInlineScalar(rest string) string {
	end := strings.IndexAny(rest, ",]")
	if end < 0 {
		end = len(rest)
	}
	text := strings.TrimRight(rest[:end], " \t")
	s.col += end
	return text
}

// takeWord consumes a run of non-whitespace from the start of rest,
// returning how many source bytes that took, the word itself, and the
// (left-trimmed) remainder.
func takeWord(rest string) (consumed int, word string, remainder string) {
	end := strings.IndexAny(rest, " \t")
	if end < 0 {
		return len(rest), rest, ""
	}
	word = rest[:end]
	remainder = strings.TrimLeft(rest[end:], " \t")
	return len(rest) - len(remainder), word, remainder
}

func isKeyMarker(s string) bool {
	return s == ":" || strings.HasPrefix(s, ": ") || strings.HasPrefix(s, ":\t")
}

// splitKeyMarker reports whether rest names a key token: the earliest
// unquoted ": " (or trailing ':' at EOL) outside any quoting.
func splitKeyMarker(rest string) (key string, ok bool) {
	inSingle, inDouble := false, false
	for i := 0; i < len(rest); i++ {
		c := rest[i]
		switch {
		case c == '\'' && !inDouble:
			inSingle = !inSingle
		case c == '"' && !inSingle:
			inDouble = !inDouble
		case c == ':' && !inSingle && !inDouble:
			if i+1 == len(rest) {
				return rest[:i], true
			}
			if rest[i+1] == ' ' || rest[i+1] == '\t' {
				return rest[:i], true
			}
		}
	}
	return "", false
}

func readIdentifier(s string) (name string, remainder string, err error) {
	i := 0
	for i < len(s) {
		c := s[i]
		if c == ' ' || c == '\t' || c == ':' || c == ',' || c == ']' || c == '[' || c == '{' || c == '}' {
			break
		}
		i++
	}
	if i == 0 {
		return "", s, yerrors.New(yerrors.AnchorAliasName, 0, "empty anchor/alias name")
	}
	return s[:i], s[i:], nil
}

// scanPlain joins continuation lines with a single space, trimming a
// trailing "# comment" and stopping at the earliest structural
// terminator.
func (s *Scanner) scanPlain(first string, baseIndent int) string {
	first = trimTrailingComment(first)
	first = strings.TrimRight(first, " \t")
	parts := []string{first}
	s.col = len(s.lines.Text(s.row))

	for {
		row, ok := s.lines.NextMeaningful(s.row + 1)
		if !ok {
			break
		}
		nextIndent := s.lines.Indent(row)
		nextTrimmed := strings.TrimLeft(s.lines.Text(row), " ")
		if nextIndent <= baseIndent {
			break
		}
		if strings.HasPrefix(nextTrimmed, "- ") || nextTrimmed == "-" {
			break
		}
		if _, isKey := splitKeyMarker(nextTrimmed); isKey {
			break
		}
		nextTrimmed = trimTrailingComment(nextTrimmed)
		nextTrimmed = strings.TrimRight(nextTrimmed, " \t")
		parts = append(parts, nextTrimmed)
		s.row = row
		s.col = len(s.lines.Text(s.row))
	}
	return strings.Join(parts, " ")
}

// trimTrailingComment strips a " # ..." (or trailing "#") suffix from an
// unquoted scalar.
func trimTrailingComment(s string) string {
	for i := 0; i+1 < len(s); i++ {
		if s[i] == ' ' && s[i+1] == '#' {
			return s[:i]
		}
	}
	if strings.HasSuffix(s, "#") && len(s) >= 2 && s[len(s)-2] == ' ' {
		return strings.TrimRight(s[:len(s)-1], " ")
	}
	return s
}

// scanQuoted scans a single- or double-quoted scalar, which may span
// multiple source lines.
func (s *Scanner) scanQuoted(quote byte, firstRemainder string, startLine int) (string, error) {
	sentinel := `\"`
	if quote == '\'' {
		sentinel = "''"
	}
	const placeholder = "\x00QUOTE\x00"

	var buf strings.Builder
	remainder := firstRemainder
	first := true
	for {
		work := strings.ReplaceAll(remainder, sentinel, placeholder)
		closeIdx := strings.IndexByte(work, quote)
		if closeIdx >= 0 {
			content := strings.ReplaceAll(work[:closeIdx], placeholder, sentinel)
			if !first {
				buf.WriteString(lfSentinel)
			}
			buf.WriteString(content)
			after := strings.ReplaceAll(work[closeIdx+1:], placeholder, sentinel)
			s.col = len(s.lines.Text(s.row)) - len(after)
			text := buf.String()
			if quote == '"' {
				return escapeForJSON(decodeDoubleQuoteEscapes(text)), nil
			}
			return escapeForJSON(strings.ReplaceAll(text, "''", "'")), nil
		}
		content := strings.ReplaceAll(work, placeholder, sentinel)
		if !first {
			buf.WriteString(lfSentinel)
		}
		buf.WriteString(content)
		first = false
		s.row++
		s.col = 0
		if s.row >= s.lines.Len() {
			return "", yerrors.New(yerrors.UnclosedLiteral, startLine, "unclosed quoted scalar")
		}
		remainder = s.lines.Text(s.row)
	}
}

// scanBlock collects lines more indented than the entry, strips the
// common margin, joins per style, and applies the chomp policy.
func (s *Scanner) scanBlock(entryIndent int, style token.BlockStyle, chomp token.Chomp, tag token.Tag) (string, error) {
	s.advanceLine()
	var rawLines []string
	blockIndent := -1
	for s.row < s.lines.Len() {
		text := s.lines.Text(s.row)
		trimmed := strings.TrimRight(text, " \t")
		if trimmed == "" {
			rawLines = append(rawLines, "")
			s.row++
			continue
		}
		indent := s.lines.Indent(s.row)
		if indent <= entryIndent {
			break
		}
		if blockIndent == -1 {
			blockIndent = indent
		}
		margin := blockIndent
		if indent < margin {
			margin = indent
		}
		rawLines = append(rawLines, text[margin:])
		s.row++
	}
	s.col = 0

	trailingBlanks := 0
	for i := len(rawLines) - 1; i >= 0 && rawLines[i] == ""; i-- {
		trailingBlanks++
	}
	body := rawLines
	if trailingBlanks > 0 {
		body = rawLines[:len(rawLines)-trailingBlanks]
	}

	var buf strings.Builder
	isBinary := tag == token.BinaryTag
	if style == token.Literal || isBinary {
		for i, ln := range body {
			if i > 0 && !isBinary {
				buf.WriteString(lfSentinel)
			}
			buf.WriteString(ln)
		}
	} else {
		prevBlank := true
		for i, ln := range body {
			if ln == "" {
				buf.WriteString(lfSentinel)
				prevBlank = true
				continue
			}
			hardIndent := blockIndent >= 0 && len(ln) > 0 && ln[0] == ' '
			if i > 0 && !prevBlank {
				if hardIndent {
					buf.WriteString(lfSentinel)
				} else {
					buf.WriteString(" ")
				}
			}
			buf.WriteString(ln)
			prevBlank = false
		}
	}
	out := buf.String()
	switch chomp {
	case token.Strip:
		// no trailing line feed at all
	case token.Keep:
		for i := 0; i < trailingBlanks+1; i++ {
			out += lfSentinel
		}
	default: // clip: exactly one trailing line feed
		out += lfSentinel
	}
	if isBinary {
		out = strings.ReplaceAll(out, lfSentinel, "")
		return out, nil
	}
	return escapeForJSON(out), nil
}

// unquoteIfQuoted handles a quoted key name. Keys are a single physical
// line and never span multiple lines: a quote opened but not closed
// before the line's ": " marker would have to continue onto the next
// line to find its match, which this scanner does not support for keys.
func (s *Scanner) unquoteIfQuoted(key string, lineNo int) (string, error) {
	if len(key) >= 2 && ((key[0] == '"' && key[len(key)-1] == '"') || (key[0] == '\'' && key[len(key)-1] == '\'')) {
		inner := key[1 : len(key)-1]
		if key[0] == '"' {
			return decodeDoubleQuoteEscapes(inner), nil
		}
		return strings.ReplaceAll(inner, "''", "'"), nil
	}
	if len(key) >= 1 && (key[0] == '"' || key[0] == '\'') {
		return "", yerrors.New(yerrors.KeyNameMultiline, lineNo, "quoted key %q is not closed on its own line", key)
	}
	if strings.ContainsAny(key, "&*") {
		return "", yerrors.New(yerrors.KeyNameAnchorAlias, lineNo, "key name may not carry anchor/alias sigils")
	}
	return key, nil
}

// decodeDoubleQuoteEscapes resolves YAML double-quote escape sequences
// to their raw characters. Values get re-escaped to J-string
// conventions by escapeForJSON afterwards; key names stay raw.
func decodeDoubleQuoteEscapes(s string) string {
	var buf strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			buf.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			buf.WriteByte('\n')
		case 't':
			buf.WriteByte('\t')
		case 'r':
			buf.WriteByte('\r')
		case 'b':
			buf.WriteByte('\b')
		case 'f':
			buf.WriteByte('\f')
		case '"':
			buf.WriteByte('"')
		case '\\':
			buf.WriteByte('\\')
		case '0':
			buf.WriteByte(0)
		case 'u':
			if i+4 < len(s) {
				if n, err := strconv.ParseUint(s[i+1:i+5], 16, 32); err == nil {
					buf.WriteRune(rune(n))
					i += 4
					continue
				}
			}
			buf.WriteByte(s[i])
		default:
			buf.WriteByte(s[i])
		}
	}
	return buf.String()
}

// escapeForJSON applies JSON-string escaping, replacing the lfSentinel
// with a literal \n and the three Unicode line terminators (U+0085,
// U+2028, U+2029) with \u escapes.
func escapeForJSON(s string) string {
	var buf strings.Builder
	for len(s) > 0 {
		if strings.HasPrefix(s, lfSentinel) {
			buf.WriteString(`\n`)
			s = s[len(lfSentinel):]
			continue
		}
		r, size := utf8.DecodeRuneInString(s)
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\b':
			buf.WriteString(`\b`)
		case '\t':
			buf.WriteString(`\t`)
		case '\n':
			buf.WriteString(`\n`)
		case '\f':
			buf.WriteString(`\f`)
		case '\r':
			buf.WriteString(`\r`)
		case '\u0085':
			buf.WriteString(`\u0085`)
		case '\u2028':
			buf.WriteString(`\u2028`)
		case '\u2029':
			buf.WriteString(`\u2029`)
		default:
			buf.WriteRune(r)
		}
		s = s[size:]
	}
	return buf.String()
}
