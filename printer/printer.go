// Package printer renders a YAML token stream with ANSI colors: instead
// of coloring an AST walk, it colors the flat token stream this
// module's scanner produces, and is also used to annotate a
// *yerrors.SyntaxError with its offending source line.
package printer

import (
	"fmt"
	"strings"

	"github.com/biot2/ytoj/scanner"
	"github.com/biot2/ytoj/token"
	"github.com/biot2/ytoj/yerrors"

	"github.com/fatih/color"
)

// Property is a prefix/suffix ANSI escape pair applied around one
// token's text.
type Property struct {
	Prefix string
	Suffix string
}

// PrintFunc returns the Property to use for a token category.
type PrintFunc func() *Property

// Printer configures per-category coloring.
type Printer struct {
	LineNumber       bool
	LineNumberFormat func(num int) string
	MapKey           PrintFunc
	Anchor           PrintFunc
	Alias            PrintFunc
	Bool             PrintFunc
	String           PrintFunc
	Number           PrintFunc
}

const escape = "\x1b"

func sgr(attr color.Attribute) string {
	return fmt.Sprintf("%s[%dm", escape, attr)
}

// Default returns a Printer using the palette the cmd/yview tool uses.
func Default() *Printer {
	prop := func(attr color.Attribute) PrintFunc {
		return func() *Property {
			return &Property{Prefix: sgr(attr), Suffix: sgr(color.Reset)}
		}
	}
	return &Printer{
		LineNumber:       true,
		LineNumberFormat: func(num int) string { return fmt.Sprintf("%2d | ", num) },
		Bool:             prop(color.FgHiMagenta),
		Number:           prop(color.FgHiMagenta),
		MapKey:           prop(color.FgHiCyan),
		Anchor:           prop(color.FgHiYellow),
		Alias:            prop(color.FgHiYellow),
		String:           prop(color.FgHiGreen),
	}
}

func (p *Printer) propertyFor(tok *token.Token) *Property {
	switch {
	case tok.Anchor != "":
		if p.Anchor != nil {
			return p.Anchor()
		}
	case tok.Alias != "":
		if p.Alias != nil {
			return p.Alias()
		}
	case tok.Kind == token.Key:
		if p.MapKey != nil {
			return p.MapKey()
		}
	}
	switch strings.ToLower(tok.Text) {
	case "true", "false":
		if p.Bool != nil {
			return p.Bool()
		}
	}
	if isNumeric(tok.Text) {
		if p.Number != nil {
			return p.Number()
		}
	}
	if p.String != nil {
		return p.String()
	}
	return &Property{}
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		if c >= '0' && c <= '9' {
			continue
		}
		if (c == '-' && i == 0) || c == '.' {
			continue
		}
		return false
	}
	return true
}

// PrintTokens renders every token the scanner produces for src, one per
// line, in source order.
func (p *Printer) PrintTokens(src string) string {
	sc := scanner.New(src)
	var b strings.Builder
	for {
		tok, err := sc.Next()
		if err != nil {
			break
		}
		prop := p.propertyFor(tok)
		header := ""
		if p.LineNumber {
			header = p.LineNumberFormat(tok.Pos.Line)
		}
		fmt.Fprintf(&b, "%s%s%s%s\n", header, prop.Prefix, tok.Text, prop.Suffix)
	}
	return b.String()
}

// PrintError renders a syntax error's message, plus (optionally) the
// offending source line.
func PrintError(err *yerrors.SyntaxError, src string, colored, withSource bool) string {
	msg := fmt.Sprintf("syntax error: %s", err.Error())
	if colored {
		msg = color.New(color.FgRed, color.Bold).Sprint(msg)
	}
	if !withSource {
		return msg
	}
	lines := strings.Split(src, "\n")
	idx := err.Line() - 1
	if idx < 0 || idx >= len(lines) {
		return msg
	}
	return fmt.Sprintf("%s\n%4d | %s", msg, err.Line(), lines[idx])
}
