// Package builder implements the structure builder: three mutually
// recursive procedures that consume scanner tokens and emit the flat
// element list, the pivot representation package element works with.
package builder

import (
	"io"
	"strings"

	"github.com/biot2/ytoj/element"
	"github.com/biot2/ytoj/scanner"
	"github.com/biot2/ytoj/token"
	"github.com/biot2/ytoj/yerrors"
)

// Options configures duplicate-key enforcement.
type Options struct {
	AllowDuplicateKeys bool
}

// Builder drives the scanner and accumulates the element list.
type Builder struct {
	sc   *scanner.Scanner
	opts Options
	out  element.List
}

// New constructs a Builder over src.
func New(src string, opts Options) *Builder {
	return &Builder{sc: scanner.New(src), opts: opts}
}

// Build runs the top-level procedure and returns the resolved-free
// element list (anchors/aliases still unresolved; see the element
// package's Resolve).
func (b *Builder) Build() (element.List, error) {
	if b.sc.AtEOF() {
		b.emit(&element.Element{Value: element.MapOpen})
		b.emit(&element.Element{Value: element.MapClose})
		return b.out, nil
	}
	text, _ := b.sc.PeekTrimmed()
	if strings.HasPrefix(text, "- ") || text == "-" {
		if err := b.buildSequence(0, "", ""); err != nil {
			return nil, err
		}
		return b.out, nil
	}
	if strings.HasPrefix(text, "[") {
		if err := b.buildInlineArray(0, "", ""); err != nil {
			return nil, err
		}
		return b.out, nil
	}
	if err := b.buildMapping(0, "", ""); err != nil {
		return nil, err
	}
	return b.out, nil
}

func (b *Builder) emit(e *element.Element) { b.out = append(b.out, e) }

// buildMapping reads and emits a block mapping. key and anchor are
// attached directly to this mapping's own opening marker when it is
// itself the value of some enclosing key (or the target of an anchor)
// rather than a bare top-level mapping or sequence item; a keyed
// container's key lives on its open marker, never on a separate
// element, so the emitter can place "key": right before the brace.
func (b *Builder) buildMapping(indent int, key, anchor string) error {
	b.emit(&element.Element{Key: key, Anchor: anchor, Value: element.MapOpen, Indent: indent})
	seenKeys := map[string]int{}
	column := -1

	for {
		if b.sc.AtEOF() {
			break
		}
		nextIndent, _ := b.sc.PeekIndent()
		if column == -1 {
			column = nextIndent
		}
		if nextIndent < column {
			break
		}
		if nextIndent > column {
			line, _ := b.sc.PeekLineNumber()
			return yerrors.New(yerrors.InvalidIndent, line, "key indented %d, expected %d", nextIndent, column)
		}

		keyTok, err := b.sc.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if keyTok.Kind != token.Key {
			return yerrors.New(yerrors.ExpectedKey, keyTok.Pos.Line, "expected a key")
		}
		if !b.opts.AllowDuplicateKeys {
			if _, dup := seenKeys[keyTok.Text]; dup {
				return yerrors.New(yerrors.DuplicatedKey, keyTok.Pos.Line, "duplicate key %q", keyTok.Text)
			}
			seenKeys[keyTok.Text] = keyTok.Pos.Line
		}

		if err := b.buildMappingValue(indent, column, keyTok); err != nil {
			return err
		}
	}

	b.emit(&element.Element{Value: element.MapClose, Indent: indent})
	return nil
}

// buildMappingValue reads and emits the value half of the key/value
// pair named by keyTok: a plain scalar on the same line, or a block
// sequence, inline array, or nested mapping reached by indentation that
// the key's own line never finishes describing.
func (b *Builder) buildMappingValue(indent, column int, keyTok *token.Token) error {
	keyText := keyTok.Text
	keyLine := keyTok.Pos.Line

	if b.sc.AtEOF() {
		b.emit(&element.Element{Key: keyText, Value: element.NullValue, Indent: indent + 1, LineNumber: keyLine})
		return nil
	}
	valueIndent, _ := b.sc.PeekIndent()
	valueText, _ := b.sc.PeekTrimmed()
	switch {
	case valueIndent >= column && (strings.HasPrefix(valueText, "- ") || valueText == "-"):
		return b.buildSequence(indent+1, keyText, "")
	case valueIndent >= column && strings.HasPrefix(valueText, "["):
		return b.buildInlineArray(indent+1, keyText, "")
	case b.sc.AtLineEnd() && valueIndent > column:
		return b.buildMapping(indent+1, keyText, "")
	case b.sc.AtLineEnd() && valueIndent <= column:
		// Nothing follows on this key's own line, and whatever comes next
		// is a sibling key or a dedent belonging to an enclosing
		// container: this key's value is null.
		b.emit(&element.Element{Key: keyText, Value: element.NullValue, Indent: indent + 1, LineNumber: keyLine})
		return nil
	}

	valTok, err := b.sc.Next()
	if err != nil {
		return err
	}
	if valTok.Text == "[" {
		if valTok.Tag == token.MapTag {
			return yerrors.New(yerrors.InvalidValueForTag, valTok.Pos.Line, "inline array cannot satisfy tag %s", valTok.Tag)
		}
		return b.continueInlineArray(indent+1, keyText, valTok.Anchor, valTok)
	}
	if valTok.Text == "" && valTok.Alias == "" && !valTok.Literal && b.sc.AtLineEnd() {
		// A bare anchor (or a key with nothing else on its line) may still
		// turn out to head a nested container on the following lines.
		nestedIndent, ok := b.sc.PeekIndent()
		nestedText, _ := b.sc.PeekTrimmed()
		if ok && nestedIndent > column {
			switch {
			case strings.HasPrefix(nestedText, "- ") || nestedText == "-":
				if valTok.Tag == token.MapTag {
					return yerrors.New(yerrors.InvalidValueForTag, valTok.Pos.Line, "sequence cannot satisfy tag %s", valTok.Tag)
				}
				return b.buildSequence(indent+1, keyText, valTok.Anchor)
			case strings.HasPrefix(nestedText, "["):
				if valTok.Tag == token.MapTag {
					return yerrors.New(yerrors.InvalidValueForTag, valTok.Pos.Line, "inline array cannot satisfy tag %s", valTok.Tag)
				}
				return b.buildInlineArray(indent+1, keyText, valTok.Anchor)
			default:
				if valTok.Tag == token.SeqTag {
					return yerrors.New(yerrors.InvalidValueForTag, valTok.Pos.Line, "mapping cannot satisfy tag %s", valTok.Tag)
				}
				return b.buildMapping(indent+1, keyText, valTok.Anchor)
			}
		}
	}

	keyElem := &element.Element{
		Key: keyText, Indent: indent + 1, LineNumber: keyLine,
		Value: valTok.Text, Literal: valTok.Literal, Tag: valTok.Tag,
		Anchor: valTok.Anchor, Alias: valTok.Alias,
	}
	if valTok.Text == "" && valTok.Alias == "" && !valTok.Literal {
		keyElem.Value = element.NullValue
	}
	b.emit(keyElem)
	return nil
}

// emitKeyedScalar reads one key and its scalar value as a single unit,
// used for inline-array map entries, which hold only plain key/value
// pairs. Sequence-item tuples go through buildItemMapping instead.
func (b *Builder) emitKeyedScalar(tok *token.Token, indent int) error {
	if tok.Kind != token.Key {
		return yerrors.New(yerrors.ExpectedKey, tok.Pos.Line, "expected a key")
	}
	keyElem := &element.Element{Key: tok.Text, Indent: indent, LineNumber: tok.Pos.Line}
	valTok, err := b.sc.Next()
	if err != nil {
		return err
	}
	keyElem.Value = valTok.Text
	keyElem.Literal = valTok.Literal
	keyElem.Tag = valTok.Tag
	keyElem.Anchor = valTok.Anchor
	keyElem.Alias = valTok.Alias
	if valTok.Text == "" && valTok.Alias == "" && !valTok.Literal {
		keyElem.Value = element.NullValue
	}
	b.emit(keyElem)
	return nil
}

// buildSequence reads and emits a block sequence. key and anchor follow
// the same opener-attachment convention as buildMapping.
func (b *Builder) buildSequence(indent int, key, anchor string) error {
	b.emit(&element.Element{Key: key, Anchor: anchor, Value: element.SeqOpen, Indent: indent})
	column := -1

	for {
		if b.sc.AtEOF() {
			break
		}
		itemIndent, _ := b.sc.PeekIndent()
		if column == -1 {
			column = itemIndent
		}
		if itemIndent != column {
			break
		}
		text, _ := b.sc.PeekTrimmed()
		if !strings.HasPrefix(text, "- ") && text != "-" {
			break
		}

		tok, err := b.sc.Next()
		if err != nil {
			return err
		}
		child := indent + 1
		if tok.Text == "" && tok.Alias == "" && !tok.Literal {
			// A bare "- " (possibly carrying an anchor or tag) heads its
			// item's content on the following, deeper lines.
			nestedIndent, ok := b.sc.PeekIndent()
			nestedText, _ := b.sc.PeekTrimmed()
			if ok && nestedIndent > itemIndent {
				if strings.HasPrefix(nestedText, "- ") || nestedText == "-" {
					if err := b.buildSequence(child, "", tok.Anchor); err != nil {
						return err
					}
					continue
				}
				if strings.HasPrefix(nestedText, "[") {
					if err := b.buildInlineArray(child, "", tok.Anchor); err != nil {
						return err
					}
					continue
				}
				if err := b.buildMapping(child, "", tok.Anchor); err != nil {
					return err
				}
				continue
			}
			b.emit(&element.Element{
				Value: element.NullValue, Tag: tok.Tag, Anchor: tok.Anchor,
				Indent: child, LineNumber: tok.Pos.Line,
			})
			continue
		}
		if tok.Text == "[" {
			if err := b.continueInlineArray(child, "", tok.Anchor, tok); err != nil {
				return err
			}
			continue
		}
		// tuple-in-item: "- key: value" spliced as a nested mapping whose
		// first key came pre-scanned on the dash line; the mapping's column
		// is the item indent shifted by the "- " offset.
		if tok.Kind == token.Key {
			if err := b.buildItemMapping(child, itemIndent+tok.ItemOffset, tok); err != nil {
				return err
			}
			continue
		}
		b.emit(&element.Element{
			Value: tok.Text, Literal: tok.Literal, Tag: tok.Tag, Anchor: tok.Anchor,
			Alias: tok.Alias, Indent: child, LineNumber: tok.Pos.Line,
		})
	}

	b.emit(&element.Element{Value: element.SeqClose, Indent: indent})
	return nil
}

// buildItemMapping reads a "- key: ..." mapping item whose first key was
// pre-scanned from the dash line, then any further sibling keys at the
// same shifted column. Values get the full treatment buildMappingValue
// gives a block mapping's values, so an item key may head a nested
// mapping, sequence, or inline array of its own.
func (b *Builder) buildItemMapping(indent, itemColumn int, first *token.Token) error {
	b.emit(&element.Element{Value: element.MapOpen, Indent: indent})
	seenKeys := map[string]int{first.Text: first.Pos.Line}
	if err := b.buildMappingValue(indent, itemColumn, first); err != nil {
		return err
	}
	for {
		if b.sc.AtEOF() {
			break
		}
		nextIndent, _ := b.sc.PeekIndent()
		if nextIndent != itemColumn {
			break
		}
		text, _ := b.sc.PeekTrimmed()
		if strings.HasPrefix(text, "- ") || text == "-" {
			break
		}
		tok, err := b.sc.Next()
		if err != nil {
			return err
		}
		if tok.Kind != token.Key {
			return yerrors.New(yerrors.ExpectedKey, tok.Pos.Line, "expected a key")
		}
		if !b.opts.AllowDuplicateKeys {
			if _, dup := seenKeys[tok.Text]; dup {
				return yerrors.New(yerrors.DuplicatedKey, tok.Pos.Line, "duplicate key %q", tok.Text)
			}
			seenKeys[tok.Text] = tok.Pos.Line
		}
		if err := b.buildMappingValue(indent, itemColumn, tok); err != nil {
			return err
		}
	}
	b.emit(&element.Element{Value: element.MapClose, Indent: indent})
	return nil
}

// buildInlineArray reads and emits a "[...]" flow sequence.
func (b *Builder) buildInlineArray(indent int, key, anchor string) error {
	tok, err := b.sc.Next()
	if err != nil {
		return err
	}
	return b.continueInlineArray(indent, key, anchor, tok)
}

func (b *Builder) continueInlineArray(indent int, key, anchor string, openTok *token.Token) error {
	if openTok.Text != "[" {
		return yerrors.New(yerrors.InvalidArray, openTok.Pos.Line, "expected '['")
	}
	b.emit(&element.Element{Key: key, Anchor: anchor, Value: element.SeqOpen, Indent: indent})
	wasInline := b.sc.InInlineArray()
	b.sc.SetInlineArray(true)
	defer b.sc.SetInlineArray(wasInline)

	lastWasSeparator := true
	for {
		tok, err := b.sc.Next()
		if err == io.EOF {
			return yerrors.New(yerrors.UnclosedArray, openTok.Pos.Line, "unclosed inline array")
		}
		if err != nil {
			return err
		}
		switch tok.Text {
		case "]":
			b.emit(&element.Element{Value: element.SeqClose, Indent: indent})
			return nil
		case ",":
			if lastWasSeparator {
				b.emit(&element.Element{Value: element.NullValue, Indent: indent + 1, LineNumber: tok.Pos.Line})
			}
			lastWasSeparator = true
			continue
		}
		lastWasSeparator = false
		if tok.ItemOffset >= 0 {
			return yerrors.New(yerrors.CollectionInArray, tok.Pos.Line, "collection item not allowed inside inline array")
		}
		if tok.Kind == token.Key {
			if tok.Text == "<<" {
				return yerrors.New(yerrors.MergeInArray, tok.Pos.Line, "merge key not allowed inside inline array")
			}
			b.emit(&element.Element{Value: element.MapOpen, Indent: indent + 1})
			if err := b.emitKeyedScalar(tok, indent+2); err != nil {
				return err
			}
			b.emit(&element.Element{Value: element.MapClose, Indent: indent + 1})
			continue
		}
		if tok.Text == "[" {
			if err := b.continueInlineArray(indent+1, "", tok.Anchor, tok); err != nil {
				return err
			}
			continue
		}
		b.emit(&element.Element{
			Value: tok.Text, Literal: tok.Literal, Tag: tok.Tag, Anchor: tok.Anchor,
			Alias: tok.Alias, Indent: indent + 1, LineNumber: tok.Pos.Line,
		})
	}
}
