// Package errors defines the failures a parse can end with. Every failure is a
// *ParseError carrying a Kind, and every Kind is itself an error, so callers
// test with errors.Is(err, errors.CorruptPointer).
package errors

import "fmt"

// NoPage marks failures detected outside any page.
const NoPage = -1

// Kind classifies a parse failure.
type Kind uint8

const (
	IO Kind = iota + 1
	BadMagic
	BadHeader
	UnsupportedVariant
	OutOfRange
	CorruptPointer
	CorruptSubheader
	UnknownCompression
	UnknownSubheader
	IncompleteSchema
)

var kindNames = map[Kind]string{
	IO:                 "i/o error",
	BadMagic:           "bad magic number",
	BadHeader:          "bad header",
	UnsupportedVariant: "unsupported variant",
	OutOfRange:         "value out of range",
	CorruptPointer:     "corrupt subheader pointer",
	CorruptSubheader:   "corrupt subheader",
	UnknownCompression: "unknown compression",
	UnknownSubheader:   "unknown subheader",
	IncompleteSchema:   "incomplete schema",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

func (k Kind) Error() string { return k.String() }

// ParseError reports where and why a parse was aborted. Offset is an absolute
// byte offset into the file; a negative Offset with NoPage means the failure
// has no single location, as when the finished schema is found incomplete.
type ParseError struct {
	Kind   Kind
	Page   int
	Offset int64
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	msg := "sas7bdat: " + e.Kind.String()
	switch {
	case e.Page != NoPage:
		msg += fmt.Sprintf(" at page %d, offset %d", e.Page, e.Offset)
	case e.Offset >= 0:
		msg += fmt.Sprintf(" at file header, offset %d", e.Offset)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is matches the error's Kind.
func (e *ParseError) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// Newf builds a ParseError with a formatted reason.
func Newf(kind Kind, page int, offset int64, format string, args ...any) *ParseError {
	return &ParseError{Kind: kind, Page: page, Offset: offset, Reason: fmt.Sprintf(format, args...)}
}

// Wrap builds a ParseError around an underlying cause.
func Wrap(kind Kind, page int, offset int64, err error, reason string) *ParseError {
	return &ParseError{Kind: kind, Page: page, Offset: offset, Reason: reason, Err: err}
}
