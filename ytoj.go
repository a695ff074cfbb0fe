// Package ytoj is the public library surface: it wires the scanner,
// builder, resolver, classifier, and emitter into the conversion
// operations, plus the reverse JSON-to-YAML direction from package
// yfromj.
package ytoj

import (
	"github.com/go-playground/validator/v10"

	"github.com/biot2/ytoj/builder"
	"github.com/biot2/ytoj/element"
	"github.com/biot2/ytoj/emit"
	"github.com/biot2/ytoj/jsontree"
	"github.com/biot2/ytoj/printer"
	"github.com/biot2/ytoj/yerrors"
	"github.com/biot2/ytoj/yfromj"
)

// Config holds every recognized conversion option. It is validated with
// struct tags, the same way a DecodeOption's fields get checked by a
// hung *validator.Validate; here the validation runs on the library's
// own config rather than on a decoded user struct. Indent's valid
// range differs by direction (0-8 for Y→J, 2-8 for J→Y), so the two
// directions validate against the direction-specific shadow structs
// below rather than a single shared tag.
type Config struct {
	// Indent is spaces per nesting level in the output: 0-8 for Y→J, 2-8
	// for J→Y.
	Indent int
	// YesNoBool treats yes/no as booleans (Y→J) and emits yes/no for
	// booleans (J→Y).
	YesNoBool bool
	// AllowDuplicateKeys, when false, makes a repeated mapping key a
	// DuplicatedKey error.
	AllowDuplicateKeys bool
}

// yamlToJSONIndent and jsonToYAMLIndent are validated in place of Config
// itself, since the two conversion directions accept different Indent
// ranges: a request of, say, Indent=0 for J→Y must fail validation
// rather than be silently renormalized up to the minimum.
type yamlToJSONIndent struct {
	Indent int `validate:"gte=0,lte=8"`
}

type jsonToYAMLIndent struct {
	Indent int `validate:"gte=2,lte=8"`
}

// Option configures a Config, in the function-option style of a
// DecodeOption/EncodeOption pair.
type Option func(*Config)

func WithIndent(n int) Option { return func(c *Config) { c.Indent = n } }

func WithYesNoBool(v bool) Option { return func(c *Config) { c.YesNoBool = v } }

func WithAllowDuplicateKeys(v bool) Option { return func(c *Config) { c.AllowDuplicateKeys = v } }

func newConfig(opts ...Option) *Config {
	c := &Config{Indent: 2}
	for _, o := range opts {
		o(c)
	}
	return c
}

var structValidator = validator.New()

// validateY2J checks Indent against the Y→J range (0-8).
func (c *Config) validateY2J() error {
	return structValidator.Struct(yamlToJSONIndent{Indent: c.Indent})
}

// validateJ2Y checks Indent against the J→Y range (2-8).
func (c *Config) validateJ2Y() error {
	return structValidator.Struct(jsonToYAMLIndent{Indent: c.Indent})
}

// YAMLToJSONText runs the full YAML-to-JSON pipeline and returns JSON
// text.
func YAMLToJSONText(src string, opts ...Option) (string, error) {
	cfg := newConfig(opts...)
	if err := cfg.validateY2J(); err != nil {
		return "", err
	}
	list, err := parseAndResolve(src, cfg)
	if err != nil {
		return "", err
	}
	return emit.Text(list, emit.Options{Indent: cfg.Indent, YesNoBool: cfg.YesNoBool})
}

// YAMLToJSONTree runs the YAML-to-JSON pipeline and re-parses its text
// output into a jsontree.Node, a convenience for callers that want a
// value rather than text.
func YAMLToJSONTree(src string, opts ...Option) (*jsontree.Node, error) {
	text, err := YAMLToJSONText(src, opts...)
	if err != nil {
		return nil, err
	}
	return jsontree.Parse(text)
}

// JSONToYAMLText runs the reverse direction: JSON text to YAML text. An
// explicit Indent outside 2-8 is a validation error, not silently
// renormalized.
func JSONToYAMLText(jsonSrc string, opts ...Option) (string, error) {
	cfg := newConfig(opts...)
	if err := cfg.validateJ2Y(); err != nil {
		return "", err
	}
	tree, err := jsontree.Parse(jsonSrc)
	if err != nil {
		return "", err
	}
	return yfromj.Text(tree, yfromj.Options{Indent: cfg.Indent, YesNoBool: cfg.YesNoBool}), nil
}

// JSONMinify collapses JSON text to one line by joining each line's
// trimmed contents with single spaces. It is a purely textual transform
// and never reparses the input into a tree.
func JSONMinify(jsonSrc string) string {
	return jsontree.Minify(jsonSrc)
}

// TryParse reports success as a boolean, converting either error kind
// to false.
func TryParse(jsonSrc string) bool {
	_, ok := jsontree.TryParse(jsonSrc)
	return ok
}

func parseAndResolve(src string, cfg *Config) (element.List, error) {
	b := builder.New(src, builder.Options{AllowDuplicateKeys: cfg.AllowDuplicateKeys})
	list, err := b.Build()
	if err != nil {
		return nil, err
	}
	return element.Resolve(list)
}

// FormatError renders a conversion error with optional color and
// source-line annotation. src should be the original YAML source that
// produced err.
func FormatError(err error, src string, colored, withSource bool) string {
	if se, ok := err.(*yerrors.SyntaxError); ok {
		return printer.PrintError(se, src, colored, withSource)
	}
	return err.Error()
}
