package lang

import (
	"log/slog"
	"regexp"

	"github.com/sahilm/fuzzy"
)

// deniedMembers is the fixed deny-list of member names that would
// expose an object's runtime type metadata or intercept field access on
// platforms that evaluate expressions through a host interpreter. The
// tree-walking evaluator in this package has no such surface, but
// persisted expressions must be rejected identically everywhere, so the
// list is enforced at every link of a member chain regardless.
var deniedMembers = map[string]bool{
	"constructor":      true,
	"prototype":        true,
	"__proto__":        true,
	"__defineGetter__": true,
	"__defineSetter__": true,
	"__lookupGetter__": true,
	"__lookupSetter__": true,
}

// patternMethods names the methods that interpret a string argument as
// a match pattern. Their first argument must be a string literal so the
// pattern is knowable at validation time.
var patternMethods = map[string]bool{
	"match": true,
}

// validator walks a parsed tree and applies the three static checks:
// identifier resolution, member-access safety, and pattern-literal
// safety. Decisions depend only on tree shape and the schema, never on
// run-time context values.
type validator struct {
	schema   *Schema
	patterns map[string]*regexp.Regexp
}

// runValidator checks the tree and returns the vetted pattern literals
// it collected, keyed by pattern source, for the evaluator to reuse.
func runValidator(root Node, schema *Schema) (map[string]*regexp.Regexp, error) {
	v := &validator{schema: schema, patterns: map[string]*regexp.Regexp{}}

	if err := v.check(root); err != nil {
		return nil, err
	}

	return v.patterns, nil
}

func (v *validator) check(node Node) error {
	switch n := node.(type) {
	case *Literal:
		return nil

	case *Ident:
		return v.checkIdent(n)

	case *Member:
		return v.checkMember(n)

	case *Call:
		return v.checkCall(n)

	case *Unary:
		return v.check(n.Operand)

	case *Binary:
		if err := v.check(n.Left); err != nil {
			return err
		}

		return v.check(n.Right)

	case *Ternary:
		if err := v.check(n.Cond); err != nil {
			return err
		}

		if err := v.check(n.Then); err != nil {
			return err
		}

		return v.check(n.Else)

	default:
		return ErrParse.WithPosition(node.Position()).
			With(slog.String("issue", "unexpected node"))
	}
}

// checkIdent resolves a leaf identifier against the schema. Anything
// absent — including the host platform's ambient globals — is unknown.
func (v *validator) checkIdent(n *Ident) error {
	if _, ok := v.schema.Lookup(n.Name); ok {
		return nil
	}

	err := ErrUnknownIdent.WithPosition(n.Pos).
		With(slog.String("name", n.Name))

	if hint := suggestName(n.Name, v.schema.Names()); hint != "" {
		err = err.With(slog.String("did_you_mean", hint))
	}

	return err
}

// checkMember applies the deny-list to the accessed name and, when the
// object is a schema record, restricts the name to the record's fixed
// field list. The deny-list check re-applies to every link of a chain,
// so no sequence of otherwise-legal calls and accesses reaches a denied
// name indirectly.
func (v *validator) checkMember(n *Member) error {
	if deniedMembers[n.Name] {
		return ErrBlockedMember.WithPosition(n.Pos).
			With(slog.String("name", n.Name))
	}

	if obj, ok := n.Object.(*Ident); ok {
		if entry, found := v.schema.Lookup(obj.Name); found && entry.Type == TypeRecord {
			if !entry.HasField(n.Name) {
				err := ErrUnknownIdent.WithPosition(n.Pos).
					With(
						slog.String("record", obj.Name),
						slog.String("field", n.Name),
					)

				if hint := suggestName(n.Name, entry.Fields); hint != "" {
					err = err.With(slog.String("did_you_mean", hint))
				}

				return err
			}
		}
	}

	return v.check(n.Object)
}

// checkCall validates the callee and arguments, the arity of schema
// callables, and the pattern-literal requirement of pattern methods.
func (v *validator) checkCall(n *Call) error {
	switch callee := n.Callee.(type) {
	case *Ident:
		entry, ok := v.schema.Lookup(callee.Name)
		if !ok {
			return v.checkIdent(callee)
		}

		// Both rejections below are deterministic from source text, so
		// they carry a compile-time category.
		if entry.Type != TypeFunc {
			return ErrParse.WithPosition(callee.Pos).
				With(
					slog.String("name", callee.Name),
					slog.String("issue", entry.Type.String()+" is not callable"),
				)
		}

		if len(n.Args) < entry.MinArgs || len(n.Args) > entry.MaxArgs {
			return ErrParse.WithPosition(n.Pos).
				With(
					slog.String("name", callee.Name),
					slog.String("issue", "wrong number of arguments"),
					slog.Int("want_min", entry.MinArgs),
					slog.Int("want_max", entry.MaxArgs),
					slog.Int("got", len(n.Args)),
				)
		}

	case *Member:
		if patternMethods[callee.Name] {
			if err := v.checkPatternArg(n); err != nil {
				return err
			}
		}

		if err := v.check(callee); err != nil {
			return err
		}

	default:
		return ErrParse.WithPosition(n.Pos).
			With(slog.String("issue", "expression is not callable"))
	}

	for _, arg := range n.Args {
		if err := v.check(arg); err != nil {
			return err
		}
	}

	return nil
}

// checkPatternArg requires a pattern method's argument to be a single
// string literal and vets the literal. A variable or computed pattern
// is unknowable at validation time and therefore rejected outright.
func (v *validator) checkPatternArg(n *Call) error {
	if len(n.Args) != 1 {
		return ErrUnsafePattern.WithPosition(n.Pos).
			With(slog.String("issue", "pattern method takes exactly one argument"))
	}

	lit, ok := n.Args[0].(*Literal)
	if !ok || lit.Kind != KindString {
		return ErrUnsafePattern.WithPosition(n.Args[0].Position()).
			With(slog.String("issue", "pattern must be a string literal"))
	}

	re, err := vetPattern(lit.Str, lit.Pos)
	if err != nil {
		return err
	}

	v.patterns[lit.Str] = re

	return nil
}

// suggestName returns the closest schema name to an unknown one, or ""
// when nothing is close enough to be a plausible typo.
func suggestName(name string, candidates []string) string {
	matches := fuzzy.Find(name, candidates)
	if len(matches) == 0 {
		return ""
	}

	return matches[0].Str
}
