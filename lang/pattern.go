package lang

import (
	"log/slog"
	"regexp"
)

// vetPattern checks a match-pattern literal before it is ever handed to
// the regexp engine. It rejects:
//
//   - capturing groups, named groups, and inline flags (only (?: is
//     allowed after an open parenthesis)
//   - backreferences \1 through \9
//   - lookahead and lookbehind assertions
//   - a quantified sub-pattern nested inside another quantifier, the
//     structural signature of catastrophic backtracking, whether the
//     nesting is direct or hidden behind non-capturing groups
//
// Matching itself runs on Go's RE2 engine, which is linear-time, so the
// static vet is the portability guarantee for persisted expressions
// rather than the only line of defense.
func vetPattern(pattern string, pos Position) (*regexp.Regexp, error) {
	v := &patternVet{pattern: pattern, pos: pos}

	if _, err := v.scanGroup(0); err != nil {
		return nil, err
	}

	if v.i < len(pattern) {
		// An unbalanced ) stopped the scan early.
		return nil, v.errf("unbalanced parenthesis")
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, ErrUnsafePattern.WithPosition(pos).Wrap(err).
			With(slog.String("pattern", pattern))
	}

	return re, nil
}

// patternVet scans one pattern. It understands just enough regex syntax
// to locate groups, character classes, escapes, and quantifiers.
type patternVet struct {
	pattern string
	pos     Position
	i       int
}

func (v *patternVet) errf(issue string) *Error {
	return ErrUnsafePattern.WithPosition(v.pos).
		With(
			slog.String("pattern", v.pattern),
			slog.String("issue", issue),
		)
}

// scanGroup scans until the end of the pattern (depth 0) or an
// unescaped ) (depth > 0). It reports whether the scanned region
// contains a quantifier at any depth, so an enclosing group that is
// itself quantified can detect the nesting.
func (v *patternVet) scanGroup(depth int) (bool, error) {
	// sawQuantifier covers the whole region scanned so far.
	// prevQuantifiable is true when the previous atom may legally take
	// a quantifier; prevQuantified is true when the previous atom was a
	// group whose body already contains a quantifier.
	sawQuantifier := false
	prevQuantifiable := false
	prevQuantified := false

	applyQuantifier := func() error {
		if !prevQuantifiable {
			return v.errf("quantifier without operand")
		}

		if prevQuantified {
			return v.errf("quantifier nested inside another quantifier")
		}

		sawQuantifier = true
		prevQuantifiable = false
		prevQuantified = false

		return nil
	}

	for v.i < len(v.pattern) {
		ch := v.pattern[v.i]

		switch ch {
		case ')':
			if depth == 0 {
				// Caller reports the unbalanced parenthesis.
				return sawQuantifier, nil
			}

			v.i++

			return sawQuantifier, nil

		case '(':
			v.i++

			if err := v.scanGroupIntro(); err != nil {
				return false, err
			}

			innerSaw, err := v.scanGroup(depth + 1)
			if err != nil {
				return false, err
			}

			sawQuantifier = sawQuantifier || innerSaw
			prevQuantifiable = true
			prevQuantified = innerSaw

		case '*', '+', '?':
			if err := applyQuantifier(); err != nil {
				return false, err
			}

			v.i++
			v.eatLazyFlag()

		case '{':
			if v.tryRepetition() {
				if err := applyQuantifier(); err != nil {
					return false, err
				}
			} else {
				// Literal brace.
				v.i++
				prevQuantifiable = true
				prevQuantified = false
			}

		case '[':
			if err := v.scanClass(); err != nil {
				return false, err
			}

			prevQuantifiable = true
			prevQuantified = false

		case '\\':
			if v.i+1 >= len(v.pattern) {
				return false, v.errf("trailing backslash")
			}

			esc := v.pattern[v.i+1]
			if esc >= '1' && esc <= '9' {
				return false, v.errf("backreference")
			}

			v.i += 2
			prevQuantifiable = true
			prevQuantified = false

		default:
			v.i++
			prevQuantifiable = ch != '|' && ch != '^' && ch != '$'
			prevQuantified = false
		}
	}

	if depth > 0 {
		return false, v.errf("unbalanced parenthesis")
	}

	return sawQuantifier, nil
}

// scanGroupIntro validates the characters immediately after an open
// parenthesis. Only the non-capturing form (?: is allowed; a bare group
// captures, and everything else after (? is a flag, a named group, or a
// lookaround assertion.
func (v *patternVet) scanGroupIntro() error {
	if v.i >= len(v.pattern) || v.pattern[v.i] != '?' {
		return v.errf("capturing group")
	}

	if v.i+1 < len(v.pattern) {
		switch v.pattern[v.i+1] {
		case ':':
			v.i += 2

			return nil

		case '=', '!':
			return v.errf("lookahead assertion")

		case '<':
			return v.errf("lookbehind or named group")
		}
	}

	return v.errf("group flags")
}

// tryRepetition scans a {m}, {m,}, or {m,n} repetition and reports
// whether one was consumed. When the braces do not form a repetition no
// input is consumed and the { is a literal.
func (v *patternVet) tryRepetition() bool {
	j := v.i + 1
	digits := 0

	for j < len(v.pattern) && v.pattern[j] >= '0' && v.pattern[j] <= '9' {
		j++
		digits++
	}

	if digits == 0 {
		return false
	}

	if j < len(v.pattern) && v.pattern[j] == ',' {
		j++

		for j < len(v.pattern) && v.pattern[j] >= '0' && v.pattern[j] <= '9' {
			j++
		}
	}

	if j < len(v.pattern) && v.pattern[j] == '}' {
		v.i = j + 1
		v.eatLazyFlag()

		return true
	}

	return false
}

// eatLazyFlag consumes a lazy-match ? suffix after a quantifier.
func (v *patternVet) eatLazyFlag() {
	if v.i < len(v.pattern) && v.pattern[v.i] == '?' {
		v.i++
	}
}

// scanClass scans a [...] character class. Quantifier characters inside
// a class are literals, and a ] immediately after [ or [^ is literal.
func (v *patternVet) scanClass() error {
	v.i++ // consume [

	if v.i < len(v.pattern) && v.pattern[v.i] == '^' {
		v.i++
	}

	if v.i < len(v.pattern) && v.pattern[v.i] == ']' {
		v.i++
	}

	for v.i < len(v.pattern) {
		switch v.pattern[v.i] {
		case ']':
			v.i++

			return nil

		case '\\':
			v.i += 2

		default:
			v.i++
		}
	}

	return v.errf("unterminated character class")
}
