package lang

import (
	"log/slog"
	"strconv"
	"strings"
)

// Category is the machine-checkable classification of an Error.
// Compile-time categories are deterministic from source text alone and
// carry a position; run-time categories depend on one invocation's
// context values.
type Category int

const (
	// CategoryLex is a character or literal outside the grammar.
	CategoryLex Category = iota

	// CategoryParse is a token sequence outside the grammar.
	CategoryParse

	// CategoryUnknownIdent is a name absent from the context schema.
	CategoryUnknownIdent

	// CategoryBlockedMember is a member name on the deny-list.
	CategoryBlockedMember

	// CategoryUnsafePattern is a match pattern that is not a literal or
	// that has a catastrophic-backtracking structure.
	CategoryUnsafePattern

	// CategoryTypeMismatch is a run-time operand type error.
	CategoryTypeMismatch

	// CategoryResourceLimit is a run-time result-size violation.
	CategoryResourceLimit
)

// String returns the category's wire name.
func (c Category) String() string {
	switch c {
	case CategoryLex:
		return "lex"
	case CategoryParse:
		return "parse"
	case CategoryUnknownIdent:
		return "unknown-identifier"
	case CategoryBlockedMember:
		return "blocked-member"
	case CategoryUnsafePattern:
		return "unsafe-pattern"
	case CategoryTypeMismatch:
		return "type-mismatch"
	case CategoryResourceLimit:
		return "resource-limit"
	default:
		return "unknown"
	}
}

// CompileTime reports whether errors of this category are determined by
// source text alone.
func (c Category) CompileTime() bool {
	switch c {
	case CategoryLex, CategoryParse, CategoryUnknownIdent,
		CategoryBlockedMember, CategoryUnsafePattern:
		return true
	default:
		return false
	}
}

// Predefined errors, one per category. Derived errors created with
// Wrap, With, and WithPosition match their sentinel under errors.Is.
var (
	ErrLex           = newError(CategoryLex, "source contains characters outside the grammar")
	ErrParse         = newError(CategoryParse, "source is not a valid expression")
	ErrUnknownIdent  = newError(CategoryUnknownIdent, "unknown identifier")
	ErrBlockedMember = newError(CategoryBlockedMember, "member name is not allowed")
	ErrUnsafePattern = newError(CategoryUnsafePattern, "match pattern is not allowed")
	ErrTypeMismatch  = newError(CategoryTypeMismatch, "operand has wrong type")
	ErrResourceLimit = newError(CategoryResourceLimit, "result exceeds size limit")
)

// Error is the only error type that escapes the evaluator. It carries a
// category, a human-readable message for the expression's author,
// structured logging attributes, and — for compile-time categories — a
// source position. It implements error and slog.LogValuer.
type Error struct {
	category Category
	msg      string
	err      error       // wrapped cause, for errors.Unwrap
	pos      *Position   // set for compile-time categories
	attrs    []slog.Attr // structured logging context
}

func newError(category Category, msg string) *Error {
	return &Error{category: category, msg: msg}
}

// Category returns the error's classification.
func (e *Error) Category() Category { return e.category }

// Pos returns the source position and whether one is attached.
func (e *Error) Pos() (Position, bool) {
	if e.pos == nil {
		return Position{}, false
	}

	return *e.pos, true
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder

	sb.WriteString(e.category.String())
	sb.WriteString(" error")

	if e.pos != nil {
		sb.WriteString(" at line ")
		sb.WriteString(strconv.Itoa(e.pos.Line))
		sb.WriteString(", column ")
		sb.WriteString(strconv.Itoa(e.pos.Column))
	}

	sb.WriteString(": ")
	sb.WriteString(e.msg)

	if e.err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.err.Error())
	}

	for _, attr := range e.attrs {
		sb.WriteString(" [")
		sb.WriteString(attr.Key)
		sb.WriteString("=")
		sb.WriteString(attr.Value.String())
		sb.WriteString("]")
	}

	return sb.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As.
func (e *Error) Unwrap() error { return e.err }

// Is matches any Error of the same category, so derived errors satisfy
// errors.Is against their sentinel.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)

	return ok && other.category == e.category
}

// LogValue implements slog.LogValuer for structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+4)

	attrs = append(attrs,
		slog.String("category", e.category.String()),
		slog.String("error", e.msg),
	)

	if e.pos != nil {
		attrs = append(attrs,
			slog.Int("line", e.pos.Line),
			slog.Int("column", e.pos.Column),
		)
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap returns a copy of the error wrapping a cause.
func (e *Error) Wrap(err error) *Error {
	clone := *e
	clone.err = err

	return &clone
}

// With returns a copy of the error carrying additional attributes. The
// receiver is never mutated.
func (e *Error) With(attrs ...slog.Attr) *Error {
	clone := *e
	clone.attrs = make([]slog.Attr, 0, len(e.attrs)+len(attrs))
	clone.attrs = append(clone.attrs, e.attrs...)
	clone.attrs = append(clone.attrs, attrs...)

	return &clone
}

// WithPosition returns a copy of the error located at pos.
func (e *Error) WithPosition(pos Position) *Error {
	clone := *e
	clone.pos = &pos

	return &clone
}
