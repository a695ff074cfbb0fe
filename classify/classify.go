// Package classify implements the scalar taxonomy: for each
// non-container element, decide the JSON text to emit.
package classify

import (
	"encoding/base64"
	"strconv"
	"strings"
	"time"

	"github.com/biot2/ytoj/element"
	"github.com/biot2/ytoj/token"
	"github.com/biot2/ytoj/yerrors"
)

// Options configures the yes/no boolean-alias relaxation.
type Options struct {
	YesNoBool bool
}

// Kind is the emitted J scalar shape, used by the emitter to pick
// byte-array rendering for KindBinaryArray and by tag-consistency
// checks. Result.Text already carries any quoting.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindBinaryArray
)

// Result is the classifier's verdict for one element.
type Result struct {
	Kind Kind
	// Text is the ready-to-emit J literal for everything except
	// KindBinaryArray, which instead emits Bytes as a bracketed list.
	Text  string
	Bytes []byte
}

// Classify applies the scalar-shape priority order: explicit tag,
// then null, then bool, then int, then float, then date/time, then
// local tag, and finally string.
func Classify(e *element.Element, opts Options) (Result, error) {
	if e.Tag == token.BinaryTag {
		clean := strings.NewReplacer("\\n", "", " ", "", "\t", "").Replace(e.Value)
		data, err := base64.StdEncoding.DecodeString(clean)
		if err != nil {
			return Result{}, yerrors.New(yerrors.InvalidValueForTag, e.LineNumber, "invalid base64 for !!binary: %v", err)
		}
		return Result{Kind: KindBinaryArray, Bytes: data}, nil
	}
	if e.Tag == token.StrTag {
		return Result{Kind: KindString, Text: quote(e)}, nil
	}
	if e.Literal {
		if e.Value == "" {
			return Result{Kind: KindString, Text: `""`}, nil
		}
		return checkTag(e, Result{Kind: KindString, Text: quote(e)})
	}
	if e.Value == "" {
		switch e.Tag {
		case token.MapTag:
			return Result{Kind: KindString, Text: "{}"}, nil
		case token.SeqTag:
			return Result{Kind: KindString, Text: "[]"}, nil
		}
		return Result{Kind: KindString, Text: `""`}, nil
	}

	lower := strings.ToLower(e.Value)
	switch lower {
	case "null":
		switch e.Tag {
		case token.MapTag:
			return Result{Kind: KindString, Text: "{}"}, nil
		case token.SeqTag:
			return Result{Kind: KindString, Text: "[]"}, nil
		}
		return checkTag(e, Result{Kind: KindNull, Text: "null"})
	case "true":
		return checkTag(e, Result{Kind: KindBool, Text: "true"})
	case "false":
		return checkTag(e, Result{Kind: KindBool, Text: "false"})
	}
	if opts.YesNoBool {
		switch lower {
		case "yes":
			return checkTag(e, Result{Kind: KindBool, Text: "true"})
		case "no":
			return checkTag(e, Result{Kind: KindBool, Text: "false"})
		}
	}

	if n, err := strconv.ParseInt(e.Value, 10, 64); err == nil {
		return checkTag(e, Result{Kind: KindInt, Text: strconv.FormatInt(n, 10)})
	}

	if f, ok := parseLooseFloat(e.Value); ok {
		return checkTag(e, Result{Kind: KindFloat, Text: formatFloat(f)})
	}

	if ts, ok := parseTimestamp(e.Value); ok {
		return checkTag(e, Result{Kind: KindString, Text: strconv.Quote(ts)})
	}

	if e.Tag.IsLocal() {
		return Result{Kind: KindString, Text: quote(e)}, nil
	}
	return checkTag(e, Result{Kind: KindString, Text: quote(e)})
}

// checkTag enforces tag consistency: a set tag whose computed kind
// differs from what it claims is an error, with the relaxation that
// !!float accepts integer-shaped text.
func checkTag(e *element.Element, r Result) (Result, error) {
	switch e.Tag {
	case "", token.StrTag, token.BinaryTag:
		return r, nil
	case token.MapTag, token.SeqTag:
		// Container-shaped values never reach the classifier; a Map/Seq
		// tag on a scalar is a mismatch by definition.
		return Result{}, tagMismatch(e)
	case token.NullTag:
		if r.Kind != KindNull {
			return Result{}, tagMismatch(e)
		}
	case token.BoolTag:
		if r.Kind != KindBool {
			return Result{}, tagMismatch(e)
		}
	case token.IntTag:
		if r.Kind != KindInt {
			return Result{}, tagMismatch(e)
		}
	case token.FloatTag:
		if r.Kind != KindFloat && r.Kind != KindInt {
			return Result{}, tagMismatch(e)
		}
	}
	return r, nil
}

func tagMismatch(e *element.Element) error {
	return yerrors.New(yerrors.InvalidValueForTag, e.LineNumber, "value %q does not satisfy tag %s", e.Value, e.Tag)
}

// parseLooseFloat accepts '.' decimal separators and ',' thousands
// separators.
func parseLooseFloat(s string) (float64, bool) {
	cleaned := strings.ReplaceAll(s, ",", "")
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	if !strings.ContainsAny(s, ".eE") {
		return 0, false
	}
	return f, true
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// parseTimestamp accepts ISO-8601/RFC-3339, normalizing to UTC.
func parseTimestamp(s string) (string, bool) {
	layouts := []string{
		time.RFC3339Nano, time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format(time.RFC3339), true
		}
	}
	return "", false
}

// quote wraps an element's value in double quotes. Quoted and block
// scalars arrive already escaped to J-string conventions by the
// scanner, so they are wrapped as-is; plain scalars arrive raw and get
// escaped here.
func quote(e *element.Element) string {
	if e.Literal {
		return `"` + e.Value + `"`
	}
	return strconv.Quote(e.Value)
}
