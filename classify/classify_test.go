package classify_test

import (
	"testing"

	"github.com/biot2/ytoj/classify"
	"github.com/biot2/ytoj/element"
	"github.com/biot2/ytoj/token"
)

func elem(value string, tag token.Tag) *element.Element {
	return &element.Element{Value: value, Tag: tag, LineNumber: 1}
}

func TestClassifyScalars(t *testing.T) {
	cases := []struct {
		name     string
		e        *element.Element
		wantKind classify.Kind
		wantText string
	}{
		{"plain string", elem("hello", ""), classify.KindString, `"hello"`},
		{"int", elem("42", ""), classify.KindInt, "42"},
		{"negative int", elem("-7", ""), classify.KindInt, "-7"},
		{"float dot", elem("1.5", ""), classify.KindFloat, "1.5"},
		{"float exponent", elem("1.5e2", ""), classify.KindFloat, "150"},
		{"float thousands", elem("1,234.5", ""), classify.KindFloat, "1234.5"},
		{"bool true", elem("true", ""), classify.KindBool, "true"},
		{"bool false", elem("False", ""), classify.KindBool, "false"},
		{"null", elem("null", ""), classify.KindNull, "null"},
		{"empty", elem("", ""), classify.KindString, `""`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := classify.Classify(tc.e, classify.Options{})
			if err != nil {
				t.Fatalf("%+v", err)
			}
			if got.Kind != tc.wantKind {
				t.Fatalf("Kind = %v, want %v", got.Kind, tc.wantKind)
			}
			if got.Text != tc.wantText {
				t.Fatalf("Text = %q, want %q", got.Text, tc.wantText)
			}
		})
	}
}

func TestClassifyYesNoBool(t *testing.T) {
	e := elem("yes", "")
	got, err := classify.Classify(e, classify.Options{YesNoBool: true})
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if got.Kind != classify.KindBool || got.Text != "true" {
		t.Fatalf("got %+v, want bool true", got)
	}

	got, err = classify.Classify(e, classify.Options{YesNoBool: false})
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if got.Kind != classify.KindString {
		t.Fatalf("yes without YesNoBool should classify as string, got %+v", got)
	}
}

func TestClassifyQuotedScalarBypassesTaxonomy(t *testing.T) {
	e := elem("42", "")
	e.Literal = true
	got, err := classify.Classify(e, classify.Options{})
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if got.Kind != classify.KindString || got.Text != `"42"` {
		t.Fatalf("quoted scalar %q should stay a string, got %+v", e.Value, got)
	}
}

func TestClassifyTagMismatch(t *testing.T) {
	e := elem("not-a-number", token.IntTag)
	if _, err := classify.Classify(e, classify.Options{}); err == nil {
		t.Fatal("expected InvalidValueForTag error")
	}
}

func TestClassifyFloatTagAcceptsIntShapedText(t *testing.T) {
	e := elem("3", token.FloatTag)
	got, err := classify.Classify(e, classify.Options{})
	if err != nil {
		t.Fatalf("!!float should accept integer-shaped text: %+v", err)
	}
	if got.Kind != classify.KindInt {
		t.Fatalf("got %+v", got)
	}
}

func TestClassifyBinaryTag(t *testing.T) {
	e := elem("aGVsbG8=", token.BinaryTag)
	got, err := classify.Classify(e, classify.Options{})
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if got.Kind != classify.KindBinaryArray {
		t.Fatalf("got %+v", got)
	}
	if string(got.Bytes) != "hello" {
		t.Fatalf("decoded bytes = %q, want hello", got.Bytes)
	}
}

func TestClassifyTimestamp(t *testing.T) {
	e := elem("2024-01-02T03:04:05Z", "")
	got, err := classify.Classify(e, classify.Options{})
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if got.Kind != classify.KindString || got.Text != `"2024-01-02T03:04:05Z"` {
		t.Fatalf("got %+v", got)
	}
}
