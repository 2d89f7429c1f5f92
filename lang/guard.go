package lang

import (
	"log/slog"
	"math"
	"strings"
	"unicode/utf8"
)

// DefaultMaxResultLen is the default bound, in bytes, on the result of
// any growth-capable string or list operation.
const DefaultMaxResultLen = 100_000

// guard bounds the cost of the operations that can amplify their input:
// repetition, padding, global replace, split, and join. Every bound is checked
// before the oversized value is materialized, and because every
// producer re-checks, the bound holds transitively across chains of
// amplifying calls.
type guard struct {
	maxResultLen int
}

func (g guard) exceeded(op string, size int, pos Position) error {
	return ErrResourceLimit.WithPosition(pos).
		With(
			slog.String("operation", op),
			slog.Int("size", size),
			slog.Int("limit", g.maxResultLen),
		)
}

// repeat returns s repeated count times, bounded by the result limit.
// The bound compares count against maxResultLen/len(s) rather than
// multiplying, so a count near the integer ceiling cannot wrap the size
// computation past the check.
func (g guard) repeat(s string, count float64, pos Position) (string, error) {
	if count < 0 || count != math.Trunc(count) {
		return "", ErrTypeMismatch.WithPosition(pos).
			With(slog.String("issue", "repeat count must be a non-negative integer"))
	}

	if s == "" || count == 0 {
		return "", nil
	}

	if count > float64(g.maxResultLen/len(s)) {
		return "", ErrResourceLimit.WithPosition(pos).
			With(
				slog.String("operation", "repeat"),
				slog.Float64("count", count),
				slog.Int("limit", g.maxResultLen),
			)
	}

	return strings.Repeat(s, int(count)), nil
}

// pad pads s to width with the pad string, on the left when left is
// true. Width is bounded before any padding is built.
func (g guard) pad(s, padStr string, width float64, left bool, pos Position) (string, error) {
	if width < 0 || width != math.Trunc(width) {
		return "", ErrTypeMismatch.WithPosition(pos).
			With(slog.String("issue", "pad width must be a non-negative integer"))
	}

	// Compared as float64 before conversion: a width beyond the integer
	// range would convert to an implementation-defined value.
	if width > float64(g.maxResultLen) {
		return "", ErrResourceLimit.WithPosition(pos).
			With(
				slog.String("operation", "pad"),
				slog.Float64("width", width),
				slog.Int("limit", g.maxResultLen),
			)
	}

	w := int(width)

	if len(s) >= w || padStr == "" {
		return s, nil
	}

	fill := w - len(s)
	padding := strings.Repeat(padStr, (fill+len(padStr)-1)/len(padStr))[:fill]

	if left {
		return padding + s, nil
	}

	return s + padding, nil
}

// replaceAll replaces every occurrence of old in s with new. The result
// size is computed from occurrence counts before the replacement is
// materialized, so cascading replace calls cannot compound past the
// limit.
func (g guard) replaceAll(s, old, repl string, pos Position) (string, error) {
	if old == "" {
		return s, nil
	}

	count := strings.Count(s, old)

	size := len(s) + count*(len(repl)-len(old))
	if size > g.maxResultLen {
		return "", g.exceeded("replaceAll", size, pos)
	}

	return strings.ReplaceAll(s, old, repl), nil
}

// splitHeaderLen is the per-element overhead a split result carries on
// top of its bytes, so splitting amplifies memory even though the total
// byte count never grows.
const splitHeaderLen = 16

// split splits s around sep, bounding the element count before the
// slice is materialized. An empty separator splits between every rune.
func (g guard) split(s, sep string, pos Position) ([]string, error) {
	count := utf8.RuneCountInString(s)
	if sep != "" {
		count = strings.Count(s, sep) + 1
	}

	if count > g.maxResultLen/splitHeaderLen {
		return nil, g.exceeded("split", count*splitHeaderLen, pos)
	}

	return strings.Split(s, sep), nil
}

// join concatenates list elements with sep, bounding the summed size
// before building the result.
func (g guard) join(list []string, sep string, pos Position) (string, error) {
	size := 0

	for _, item := range list {
		size += len(item)
	}

	if len(list) > 1 {
		size += len(sep) * (len(list) - 1)
	}

	if size > g.maxResultLen {
		return "", g.exceeded("join", size, pos)
	}

	return strings.Join(list, sep), nil
}
