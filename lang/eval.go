package lang

import (
	"log/slog"
	"math"
	"regexp"
	"strings"
)

// evaluator walks a validated tree against one context instance. It is
// a direct tree-walking interpreter: it never generates or executes
// host source text, performs no I/O, and reads no ambient state, so
// equal source and equal context values yield identical results except
// where the schema exposes randomness or time as a named callable.
type evaluator struct {
	ctx          Context
	guard        guard
	patterns     map[string]*regexp.Regexp
	missingEmpty bool // absent record fields read as "" (display mode)
}

func (ev *evaluator) eval(node Node) (Value, error) {
	switch n := node.(type) {
	case *Literal:
		switch n.Kind {
		case KindBool:
			return n.Bool, nil
		case KindNumber:
			return n.Num, nil
		default:
			return n.Str, nil
		}

	case *Ident:
		return ev.evalIdent(n)

	case *Member:
		return ev.evalMember(n)

	case *Call:
		return ev.evalCall(n)

	case *Unary:
		return ev.evalUnary(n)

	case *Binary:
		return ev.evalBinary(n)

	case *Ternary:
		return ev.evalTernary(n)

	default:
		return nil, ErrTypeMismatch.WithPosition(node.Position()).
			With(slog.String("issue", "unexpected node"))
	}
}

// evalIdent reads a top-level name from the context. Validation already
// proved the name is in the schema; an instance that omits it is a
// run-time mismatch, or an empty string in display mode.
func (ev *evaluator) evalIdent(n *Ident) (Value, error) {
	if v, ok := ev.ctx[n.Name]; ok {
		return v, nil
	}

	if ev.missingEmpty {
		return "", nil
	}

	return nil, ErrTypeMismatch.WithPosition(n.Pos).
		With(
			slog.String("name", n.Name),
			slog.String("issue", "not set on this context"),
		)
}

// evalMember resolves record fields and value properties.
func (ev *evaluator) evalMember(n *Member) (Value, error) {
	obj, err := ev.eval(n.Object)
	if err != nil {
		return nil, err
	}

	switch recv := obj.(type) {
	case Record:
		if v, ok := recv[n.Name]; ok {
			return v, nil
		}

		if ev.missingEmpty {
			// Schema-known field absent on this instance: an optional
			// template slot renders empty instead of erroring.
			return "", nil
		}

		return nil, ErrTypeMismatch.WithPosition(n.Pos).
			With(
				slog.String("field", n.Name),
				slog.String("issue", "not set on this context"),
			)

	case string:
		if n.Name == "length" {
			return float64(len(recv)), nil
		}

	case []string:
		if n.Name == "length" || n.Name == "count" {
			return float64(len(recv)), nil
		}
	}

	return nil, ErrTypeMismatch.WithPosition(n.Pos).
		With(
			slog.String("member", n.Name),
			slog.String("operand", typeName(obj)),
		)
}

// evalCall dispatches schema callables and value methods.
func (ev *evaluator) evalCall(n *Call) (Value, error) {
	args := make([]Value, len(n.Args))

	for i, argNode := range n.Args {
		arg, err := ev.eval(argNode)
		if err != nil {
			return nil, err
		}

		args[i] = arg
	}

	switch callee := n.Callee.(type) {
	case *Ident:
		fn, err := ev.evalIdent(callee)
		if err != nil {
			return nil, err
		}

		callable, ok := fn.(Callable)
		if !ok {
			return nil, ErrTypeMismatch.WithPosition(callee.Pos).
				With(
					slog.String("name", callee.Name),
					slog.String("operand", typeName(fn)),
				)
		}

		result, err := callable(args)
		if err != nil {
			return nil, ErrTypeMismatch.WithPosition(n.Pos).Wrap(err).
				With(slog.String("name", callee.Name))
		}

		return result, nil

	case *Member:
		recv, err := ev.eval(callee.Object)
		if err != nil {
			return nil, err
		}

		return ev.evalMethod(recv, callee.Name, args, n.Pos)

	default:
		return nil, ErrTypeMismatch.WithPosition(n.Pos).
			With(slog.String("issue", "expression is not callable"))
	}
}

// evalMethod dispatches a method by receiver kind and name.
func (ev *evaluator) evalMethod(recv Value, name string, args []Value, pos Position) (Value, error) {
	switch r := recv.(type) {
	case string:
		return ev.evalStringMethod(r, name, args, pos)

	case []string:
		return ev.evalListMethod(r, name, args, pos)
	}

	return nil, ErrTypeMismatch.WithPosition(pos).
		With(
			slog.String("method", name),
			slog.String("operand", typeName(recv)),
		)
}

// evalStringMethod implements the string method surface. The growth
// capable methods (repeat, padStart, padEnd, replaceAll) run through
// the guard; match runs the pattern the validator already vetted.
func (ev *evaluator) evalStringMethod(recv, name string, args []Value, pos Position) (Value, error) {
	switch name {
	case "includes":
		arg, err := ev.stringArg(name, args, 0, pos)
		if err != nil {
			return nil, err
		}

		return strings.Contains(recv, arg), nil

	case "startsWith":
		arg, err := ev.stringArg(name, args, 0, pos)
		if err != nil {
			return nil, err
		}

		return strings.HasPrefix(recv, arg), nil

	case "endsWith":
		arg, err := ev.stringArg(name, args, 0, pos)
		if err != nil {
			return nil, err
		}

		return strings.HasSuffix(recv, arg), nil

	case "toLowerCase":
		if err := ev.arity(name, args, 0, pos); err != nil {
			return nil, err
		}

		return strings.ToLower(recv), nil

	case "toUpperCase":
		if err := ev.arity(name, args, 0, pos); err != nil {
			return nil, err
		}

		return strings.ToUpper(recv), nil

	case "trim":
		if err := ev.arity(name, args, 0, pos); err != nil {
			return nil, err
		}

		return strings.TrimSpace(recv), nil

	case "slice":
		return ev.sliceString(recv, args, pos)

	case "repeat":
		count, err := ev.numberArg(name, args, 0, pos)
		if err != nil {
			return nil, err
		}

		return ev.guard.repeat(recv, count, pos)

	case "padStart", "padEnd":
		if len(args) != 2 {
			return nil, ev.arityError(name, 2, len(args), pos)
		}

		width, err := ev.numberArg(name, args, 0, pos)
		if err != nil {
			return nil, err
		}

		padStr, err := ev.stringArg(name, args, 1, pos)
		if err != nil {
			return nil, err
		}

		return ev.guard.pad(recv, padStr, width, name == "padStart", pos)

	case "replaceAll":
		if len(args) != 2 {
			return nil, ev.arityError(name, 2, len(args), pos)
		}

		old, err := ev.stringArg(name, args, 0, pos)
		if err != nil {
			return nil, err
		}

		repl, err := ev.stringArg(name, args, 1, pos)
		if err != nil {
			return nil, err
		}

		return ev.guard.replaceAll(recv, old, repl, pos)

	case "match":
		pattern, err := ev.stringArg(name, args, 0, pos)
		if err != nil {
			return nil, err
		}

		re, ok := ev.patterns[pattern]
		if !ok {
			// Validation admits only vetted literals, so this is an
			// internal inconsistency rather than an author mistake.
			return nil, ErrUnsafePattern.WithPosition(pos).
				With(slog.String("pattern", pattern))
		}

		return re.FindString(recv), nil

	case "split":
		sep, err := ev.stringArg(name, args, 0, pos)
		if err != nil {
			return nil, err
		}

		return ev.guard.split(recv, sep, pos)
	}

	return nil, ErrTypeMismatch.WithPosition(pos).
		With(
			slog.String("method", name),
			slog.String("operand", "string"),
		)
}

// evalListMethod implements the list method surface. Join is guarded.
func (ev *evaluator) evalListMethod(recv []string, name string, args []Value, pos Position) (Value, error) {
	switch name {
	case "join":
		sep, err := ev.stringArg(name, args, 0, pos)
		if err != nil {
			return nil, err
		}

		return ev.guard.join(recv, sep, pos)

	case "includes":
		arg, err := ev.stringArg(name, args, 0, pos)
		if err != nil {
			return nil, err
		}

		for _, item := range recv {
			if item == arg {
				return true, nil
			}
		}

		return false, nil

	case "first":
		if err := ev.arity(name, args, 0, pos); err != nil {
			return nil, err
		}

		if len(recv) == 0 {
			return "", nil
		}

		return recv[0], nil

	case "last":
		if err := ev.arity(name, args, 0, pos); err != nil {
			return nil, err
		}

		if len(recv) == 0 {
			return "", nil
		}

		return recv[len(recv)-1], nil
	}

	return nil, ErrTypeMismatch.WithPosition(pos).
		With(
			slog.String("method", name),
			slog.String("operand", "list"),
		)
}

// sliceString implements s.slice(start) and s.slice(start, end) with
// clamped byte offsets and JS-style negative indexes from the end.
func (ev *evaluator) sliceString(recv string, args []Value, pos Position) (Value, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, ev.arityError("slice", 2, len(args), pos)
	}

	start, err := ev.numberArg("slice", args, 0, pos)
	if err != nil {
		return nil, err
	}

	end := float64(len(recv))
	if len(args) == 2 {
		end, err = ev.numberArg("slice", args, 1, pos)
		if err != nil {
			return nil, err
		}
	}

	clamp := func(idx float64) int {
		i := int(idx)
		if i < 0 {
			i += len(recv)
		}

		if i < 0 {
			return 0
		}

		if i > len(recv) {
			return len(recv)
		}

		return i
	}

	lo, hi := clamp(start), clamp(end)
	if lo >= hi {
		return "", nil
	}

	return recv[lo:hi], nil
}

func (ev *evaluator) evalUnary(n *Unary) (Value, error) {
	operand, err := ev.eval(n.Operand)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case "!":
		b, ok := operand.(bool)
		if !ok {
			return nil, ev.operandError("!", "boolean", operand, n.Pos)
		}

		return !b, nil

	case "-":
		num, ok := operand.(float64)
		if !ok {
			return nil, ev.operandError("-", "number", operand, n.Pos)
		}

		return -num, nil
	}

	return nil, ErrTypeMismatch.WithPosition(n.Pos).
		With(slog.String("operator", n.Op))
}

// evalBinary implements arithmetic, comparison, and short-circuit
// logical operators. + concatenates when either side is a string,
// coercing the other side through display rules.
func (ev *evaluator) evalBinary(n *Binary) (Value, error) {
	// Logical operators evaluate the right side only when needed.
	if n.Op == "&&" || n.Op == "||" {
		return ev.evalLogical(n)
	}

	left, err := ev.eval(n.Left)
	if err != nil {
		return nil, err
	}

	right, err := ev.eval(n.Right)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case "+":
		return ev.evalAdd(left, right, n.Pos)

	case "-", "*", "/", "%":
		return ev.evalArithmetic(n.Op, left, right, n.Pos)

	case "==":
		return valuesEqual(left, right), nil

	case "!=":
		return !valuesEqual(left, right), nil

	case "<", "<=", ">", ">=":
		return ev.evalRelational(n.Op, left, right, n.Pos)
	}

	return nil, ErrTypeMismatch.WithPosition(n.Pos).
		With(slog.String("operator", n.Op))
}

func (ev *evaluator) evalLogical(n *Binary) (Value, error) {
	left, err := ev.eval(n.Left)
	if err != nil {
		return nil, err
	}

	lb, ok := left.(bool)
	if !ok {
		return nil, ev.operandError(n.Op, "boolean", left, n.Pos)
	}

	if n.Op == "&&" && !lb {
		return false, nil
	}

	if n.Op == "||" && lb {
		return true, nil
	}

	right, err := ev.eval(n.Right)
	if err != nil {
		return nil, err
	}

	rb, ok := right.(bool)
	if !ok {
		return nil, ev.operandError(n.Op, "boolean", right, n.Pos)
	}

	return rb, nil
}

// evalAdd adds numbers or concatenates strings. The concatenated result
// is bounded like every other growth-capable operation.
func (ev *evaluator) evalAdd(left, right Value, pos Position) (Value, error) {
	if ln, ok := left.(float64); ok {
		if rn, ok := right.(float64); ok {
			return ln + rn, nil
		}
	}

	ls, lok := left.(string)
	rs, rok := right.(string)

	if lok || rok {
		if !lok {
			ls = DisplayString(left)
		}

		if !rok {
			rs = DisplayString(right)
		}

		if len(ls)+len(rs) > ev.guard.maxResultLen {
			return nil, ev.guard.exceeded("concat", len(ls)+len(rs), pos)
		}

		return ls + rs, nil
	}

	return nil, ErrTypeMismatch.WithPosition(pos).
		With(
			slog.String("operator", "+"),
			slog.String("left", typeName(left)),
			slog.String("right", typeName(right)),
		)
}

func (ev *evaluator) evalArithmetic(op string, left, right Value, pos Position) (Value, error) {
	ln, lok := left.(float64)
	rn, rok := right.(float64)

	if !lok {
		return nil, ev.operandError(op, "number", left, pos)
	}

	if !rok {
		return nil, ev.operandError(op, "number", right, pos)
	}

	switch op {
	case "-":
		return ln - rn, nil
	case "*":
		return ln * rn, nil
	case "/":
		if rn == 0 {
			return nil, ErrTypeMismatch.WithPosition(pos).
				With(slog.String("issue", "division by zero"))
		}

		return ln / rn, nil
	default: // %
		if rn == 0 {
			return nil, ErrTypeMismatch.WithPosition(pos).
				With(slog.String("issue", "division by zero"))
		}

		return math.Mod(ln, rn), nil
	}
}

func (ev *evaluator) evalRelational(op string, left, right Value, pos Position) (Value, error) {
	if ln, ok := left.(float64); ok {
		if rn, ok := right.(float64); ok {
			return compareOrdered(op, ln, rn), nil
		}
	}

	if ls, ok := left.(string); ok {
		if rs, ok := right.(string); ok {
			return compareOrdered(op, ls, rs), nil
		}
	}

	return nil, ErrTypeMismatch.WithPosition(pos).
		With(
			slog.String("operator", op),
			slog.String("left", typeName(left)),
			slog.String("right", typeName(right)),
		)
}

func (ev *evaluator) evalTernary(n *Ternary) (Value, error) {
	cond, err := ev.eval(n.Cond)
	if err != nil {
		return nil, err
	}

	cb, ok := cond.(bool)
	if !ok {
		return nil, ev.operandError("?:", "boolean", cond, n.Pos)
	}

	if cb {
		return ev.eval(n.Then)
	}

	return ev.eval(n.Else)
}

// compareOrdered applies a relational operator to two ordered values.
func compareOrdered[T float64 | string](op string, left, right T) bool {
	switch op {
	case "<":
		return left < right
	case "<=":
		return left <= right
	case ">":
		return left > right
	default: // >=
		return left >= right
	}
}

// valuesEqual compares two values of the same kind. Values of different
// kinds are never equal.
func valuesEqual(left, right Value) bool {
	switch lv := left.(type) {
	case bool:
		rv, ok := right.(bool)

		return ok && lv == rv

	case float64:
		rv, ok := right.(float64)

		return ok && lv == rv

	case string:
		rv, ok := right.(string)

		return ok && lv == rv

	case []string:
		rv, ok := right.([]string)
		if !ok || len(lv) != len(rv) {
			return false
		}

		for i := range lv {
			if lv[i] != rv[i] {
				return false
			}
		}

		return true

	default:
		return false
	}
}

// Argument helpers.

func (ev *evaluator) arity(name string, args []Value, want int, pos Position) error {
	if len(args) != want {
		return ev.arityError(name, want, len(args), pos)
	}

	return nil
}

func (ev *evaluator) arityError(name string, want, got int, pos Position) error {
	return ErrTypeMismatch.WithPosition(pos).
		With(
			slog.String("method", name),
			slog.Int("want_args", want),
			slog.Int("got_args", got),
		)
}

func (ev *evaluator) stringArg(name string, args []Value, idx int, pos Position) (string, error) {
	if idx >= len(args) {
		return "", ev.arityError(name, idx+1, len(args), pos)
	}

	s, ok := args[idx].(string)
	if !ok {
		return "", ErrTypeMismatch.WithPosition(pos).
			With(
				slog.String("method", name),
				slog.Int("argument", idx+1),
				slog.String("want", "string"),
				slog.String("got", typeName(args[idx])),
			)
	}

	return s, nil
}

func (ev *evaluator) numberArg(name string, args []Value, idx int, pos Position) (float64, error) {
	if idx >= len(args) {
		return 0, ev.arityError(name, idx+1, len(args), pos)
	}

	num, ok := args[idx].(float64)
	if !ok {
		return 0, ErrTypeMismatch.WithPosition(pos).
			With(
				slog.String("method", name),
				slog.Int("argument", idx+1),
				slog.String("want", "number"),
				slog.String("got", typeName(args[idx])),
			)
	}

	return num, nil
}

func (ev *evaluator) operandError(op, want string, got Value, pos Position) error {
	return ErrTypeMismatch.WithPosition(pos).
		With(
			slog.String("operator", op),
			slog.String("want", want),
			slog.String("got", typeName(got)),
		)
}
