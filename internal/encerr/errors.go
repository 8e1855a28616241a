// Package encerr holds the error taxonomy of the row encoder.
//
// Every failure is an *Error carrying a Kind and, for nested values, the
// path of the failing element (field name, index, map key or value). Each
// Kind has a sentinel so callers can test with errors.Is:
//
//	if errors.Is(err, encerr.ErrOverflow) { ... }
//
// The row orchestrator wraps errors in *ColumnError so messages always name
// the failing column and its 0-based index.
package encerr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind categorizes an encoding failure.
type Kind string

const (
	KindSchemaType       Kind = "schema_type"
	KindArityMismatch    Kind = "arity_mismatch"
	KindMissingColumn    Kind = "missing_column"
	KindMissingField     Kind = "missing_field"
	KindUnsupportedShape Kind = "unsupported_value_shape"
	KindTypeCheck        Kind = "type_check"
	KindTooManyElements  Kind = "too_many_elements"
	KindTooManyColumns   Kind = "too_many_columns"
	KindOverflow         Kind = "overflow"
	KindValueTooLarge    Kind = "value_too_large"
)

var (
	ErrSchemaType            = errors.New("encerr: malformed schema type")
	ErrArityMismatch         = errors.New("encerr: value count does not match column count")
	ErrMissingColumn         = errors.New("encerr: missing column value")
	ErrMissingField          = errors.New("encerr: record is missing field")
	ErrUnsupportedValueShape = errors.New("encerr: unsupported value shape")
	ErrTypeCheck             = errors.New("encerr: value does not match column type")
	ErrTooManyElements       = errors.New("encerr: collection has too many elements")
	ErrTooManyColumns        = errors.New("encerr: row has too many columns")
	ErrOverflow              = errors.New("encerr: integer out of range")
	ErrValueTooLarge         = errors.New("encerr: serialized value too large")
)

var sentinels = map[Kind]error{
	KindSchemaType:       ErrSchemaType,
	KindArityMismatch:    ErrArityMismatch,
	KindMissingColumn:    ErrMissingColumn,
	KindMissingField:     ErrMissingField,
	KindUnsupportedShape: ErrUnsupportedValueShape,
	KindTypeCheck:        ErrTypeCheck,
	KindTooManyElements:  ErrTooManyElements,
	KindTooManyColumns:   ErrTooManyColumns,
	KindOverflow:         ErrOverflow,
	KindValueTooLarge:    ErrValueTooLarge,
}

// Error is the structured error returned by every encoder stage.
type Error struct {
	Kind     Kind
	Path     []string // outermost first, e.g. ["addr", "zip_code"]
	Expected string   // declared type, or expected count
	Actual   string   // Go type or observed count
	Detail   string
	Value    any
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Expected != "" || e.Actual != "" {
		b.WriteString(": expected ")
		b.WriteString(e.Expected)
		if e.Actual != "" {
			b.WriteString(", got ")
			b.WriteString(e.Actual)
		}
	}

	if e.Detail != "" {
		if e.Expected != "" || e.Actual != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}
	return b.String()
}

// Is reports whether target is the sentinel for e.Kind.
func (e *Error) Is(target error) bool {
	s, ok := sentinels[e.Kind]
	return ok && s == target
}

// Location returns the dotted path of the failing element.
func (e *Error) Location() string { return strings.Join(e.Path, ".") }

// Prefix prepends a path segment to err when it is an *Error. Nested
// serializers call it while unwinding, so paths are only built on failure.
func Prefix(err error, segment string) error {
	var e *Error
	if errors.As(err, &e) {
		e.Path = append([]string{segment}, e.Path...)
	}
	return err
}

// Index formats a positional path segment.
func Index(i int) string { return fmt.Sprintf("[%d]", i) }

// ColumnError identifies the column that failed during row encoding.
type ColumnError struct {
	Index int
	Name  string
	Table string // "keyspace.table", diagnostic only
	Err   error
}

func (e *ColumnError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("column %d %q (%s): %v", e.Index, e.Name, e.Table, e.Err)
	}
	return fmt.Sprintf("column %d %q: %v", e.Index, e.Name, e.Err)
}

func (e *ColumnError) Unwrap() error { return e.Err }

// KindOf returns the Kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Convenience constructors

func SchemaType(detail string, args ...any) *Error {
	return &Error{Kind: KindSchemaType, Detail: fmt.Sprintf(detail, args...)}
}

func ArityMismatch(expected, actual int) *Error {
	return &Error{
		Kind:     KindArityMismatch,
		Expected: fmt.Sprintf("%d values", expected),
		Actual:   fmt.Sprintf("%d", actual),
		Value:    actual,
	}
}

func MissingColumn(name string) *Error {
	return &Error{
		Kind:   KindMissingColumn,
		Path:   []string{name},
		Detail: fmt.Sprintf("no value for column %q", name),
	}
}

func MissingField(name string) *Error {
	return &Error{
		Kind:   KindMissingField,
		Path:   []string{name},
		Detail: fmt.Sprintf("record has no field %q", name),
	}
}

func UnsupportedShape(v any, columns int) *Error {
	return &Error{
		Kind:   KindUnsupportedShape,
		Actual: fmt.Sprintf("%T", v),
		Detail: fmt.Sprintf("cannot bind to %d columns", columns),
	}
}

// TypeCheck reports that v is not of the exact type expected.
func TypeCheck(expected string, v any) *Error {
	return &Error{
		Kind:     KindTypeCheck,
		Expected: expected,
		Actual:   fmt.Sprintf("%T", v),
		Value:    v,
	}
}

// TypeCheckDetail is TypeCheck with an explanation, for values of the
// right Go type but invalid content (bad UTF-8, wrong UUID version).
func TypeCheckDetail(expected string, v any, detail string, args ...any) *Error {
	e := TypeCheck(expected, v)
	e.Detail = fmt.Sprintf(detail, args...)
	return e
}

func TooManyElements(n int, limit int64) *Error {
	return &Error{
		Kind:   KindTooManyElements,
		Detail: fmt.Sprintf("%d elements exceeds limit %d", n, limit),
		Value:  n,
	}
}

func TooManyColumns(n int, limit int) *Error {
	return &Error{
		Kind:   KindTooManyColumns,
		Detail: fmt.Sprintf("%d values exceeds limit %d", n, limit),
		Value:  n,
	}
}

func Overflow(value any, target string) *Error {
	return &Error{
		Kind:     KindOverflow,
		Expected: target,
		Detail:   fmt.Sprintf("value %v overflows %s", value, target),
		Value:    value,
	}
}

func ValueTooLarge(n int) *Error {
	return &Error{
		Kind:   KindValueTooLarge,
		Detail: fmt.Sprintf("%d bytes does not fit a 32-bit cell length", n),
		Value:  n,
	}
}
