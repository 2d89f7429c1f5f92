package lang

import (
	"strconv"
	"strings"
)

// Value is the dynamic result of evaluating an expression. The concrete
// type is one of: bool, float64, string, []string, Record, or Callable.
// Values are opaque tagged variants the evaluator itself defines; there
// is no operation that reveals a value's runtime constructor.
type Value = any

// Record is a read-only namespace value with a fixed field list. The
// evaluator never mutates a record; fields the schema knows but the
// instance omits are simply absent.
type Record map[string]Value

// Callable is a host-supplied function exposed through the schema, such
// as randomness or fact lookup. Implementations receive already
// evaluated argument values.
type Callable func(args []Value) (Value, error)

// Context is the read-only value bag one expression evaluates against
// for one event. The caller builds a fresh instance per evaluation;
// expressions are contractually unable to mutate it.
type Context map[string]Value

// DisplayString coerces a value to its display form: booleans as
// true/false, numbers without a trailing fraction, lists joined with
// commas, and anything non-displayable as the empty string.
func DisplayString(v Value) string {
	switch val := v.(type) {
	case nil:
		return ""
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case string:
		return val
	case []string:
		return strings.Join(val, ", ")
	default:
		return ""
	}
}

// typeName names a value's kind for error messages.
func typeName(v Value) string {
	switch v.(type) {
	case nil:
		return "nothing"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case []string:
		return "list"
	case Record:
		return "record"
	case Callable:
		return "function"
	default:
		return "unknown"
	}
}
