// Package yerrors implements a single-error-kind contract: every
// scanner, builder, and resolver failure surfaces as a *SyntaxError
// carrying a message and a 1-based source line, and every JSON
// sub-parser failure surfaces as a *JSONError. Both wrap with
// golang.org/x/xerrors so a caller can still %+v a stack frame out of
// it.
package yerrors

import (
	"fmt"

	"golang.org/x/xerrors"
)

// Code names one of the catalogued scanner/resolver error conditions.
type Code string

const (
	CollectionItem     Code = "CollectionItem"
	InvalidArray       Code = "InvalidArray"
	InvalidIndent      Code = "InvalidIndent"
	AnchorAliasName    Code = "AnchorAliasName"
	CollectionBlock    Code = "CollectionBlock"
	InvalidBlock       Code = "InvalidBlock"
	UnclosedLiteral    Code = "UnclosedLiteral"
	KeyNameEmpty       Code = "KeyNameEmpty"
	KeyNameMultiline   Code = "KeyNameMultiline"
	KeyNameAnchorAlias Code = "KeyNameAnchorAlias"
	KeyNameInvalidChar Code = "KeyNameInvalidChar"
	AliasValue         Code = "AliasValue"
	InvalidTag         Code = "InvalidTag"

	ExpectedKey        Code = "ExpectedKey"
	DuplicatedKey      Code = "DuplicatedKey"
	MergeInArray       Code = "MergeInArray"
	CollectionInArray  Code = "CollectionInArray"
	UnclosedArray      Code = "UnclosedArray"

	AnchorNotFound     Code = "AnchorNotFound"
	AliasRecursive     Code = "AliasRecursive"
	MergeSingleValue   Code = "MergeSingleValue"
	MergeInvalid       Code = "MergeInvalid"

	InvalidValueForTag Code = "InvalidValueForTag"
)

// SyntaxError is the YAML-parsing error kind.
type SyntaxError struct {
	code  Code
	msg   string
	line  int
	frame xerrors.Frame
}

func New(code Code, line int, format string, args ...interface{}) *SyntaxError {
	return &SyntaxError{
		code:  code,
		msg:   fmt.Sprintf(format, args...),
		line:  line,
		frame: xerrors.Caller(1),
	}
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("[line %d] %s: %s", e.line, e.code, e.msg)
}

func (e *SyntaxError) FormatError(p xerrors.Printer) error {
	p.Print(e.Error())
	if p.Detail() {
		e.frame.Format(p)
	}
	return nil
}

func (e *SyntaxError) Format(f fmt.State, verb rune) {
	xerrors.FormatError(e, f, verb)
}

// Code reports the catalogued error condition.
func (e *SyntaxError) Code() Code { return e.code }

// Line reports the 1-based offending source line.
func (e *SyntaxError) Line() int { return e.line }

// JSONError is the JSON-parsing error kind. The core sub-parser only
// ever raises one of two messages: a generic parse failure, or a
// root-kind check failure.
type JSONError struct {
	msg   string
	frame xerrors.Frame
}

func NewJSON(format string, args ...interface{}) *JSONError {
	return &JSONError{msg: fmt.Sprintf(format, args...), frame: xerrors.Caller(1)}
}

func (e *JSONError) Error() string { return e.msg }

func (e *JSONError) FormatError(p xerrors.Printer) error {
	p.Print(e.msg)
	if p.Detail() {
		e.frame.Format(p)
	}
	return nil
}

func (e *JSONError) Format(f fmt.State, verb rune) {
	xerrors.FormatError(e, f, verb)
}

// ErrParse is the generic J parse failure message.
func ErrParse() *JSONError { return NewJSON("parse error") }

// ErrRootKind is raised when a J document's root is neither an array
// nor an object.
func ErrRootKind() *JSONError { return NewJSON("root must be array or object") }
