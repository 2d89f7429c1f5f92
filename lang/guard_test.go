package lang

import (
	"errors"
	"strings"
	"testing"
)

func TestGuardRepeatBoundary(t *testing.T) {
	engine := New(WithMaxResultLen(1000))
	ctx := Context{"content": strings.Repeat("a", 100)}

	// len(content) * 10 lands exactly on the limit.
	got, err := engine.Eval("content.repeat(10)", ctx)
	if err != nil {
		t.Fatalf("repeat at the limit: %v", err)
	}

	if s, ok := got.(string); !ok || len(s) != 1000 {
		t.Errorf("expected 1000 bytes, got %v", got)
	}

	_, err = engine.Eval("content.repeat(11)", ctx)
	if !errors.Is(err, ErrResourceLimit) {
		t.Errorf("repeat over the limit: expected resource-limit, got %v", err)
	}
}

func TestGuardRepeatChained(t *testing.T) {
	// Each repeat individually respects the limit check, so the chain
	// fails at whichever link would first exceed it, never after
	// materializing an intermediate giant.
	engine := New(WithMaxResultLen(DefaultMaxResultLen))
	ctx := Context{"content": "abcd"}

	_, err := engine.Eval("content.repeat(400).repeat(400)", ctx)
	if !errors.Is(err, ErrResourceLimit) {
		t.Errorf("expected resource-limit, got %v", err)
	}
}

func TestGuardRepeatZeroAndNegative(t *testing.T) {
	engine := New()
	ctx := Context{"content": "abc"}

	got, err := engine.Eval("content.repeat(0)", ctx)
	if err != nil || got != "" {
		t.Errorf("repeat(0): got %v, %v", got, err)
	}

	_, err = engine.Eval("content.repeat(0 - 1)", ctx)
	if !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("negative count: expected type-mismatch, got %v", err)
	}

	_, err = engine.Eval("content.repeat(1.5)", ctx)
	if !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("fractional count: expected type-mismatch, got %v", err)
	}
}

func TestGuardPad(t *testing.T) {
	engine := New(WithMaxResultLen(100))
	ctx := Context{"author": "Mira"}

	got, err := engine.Eval(`author.padStart(8, "*")`, ctx)
	if err != nil || got != "****Mira" {
		t.Errorf("padStart: got %v, %v", got, err)
	}

	got, err = engine.Eval(`author.padEnd(7, "ab")`, ctx)
	if err != nil || got != "Miraaba" {
		t.Errorf("padEnd: got %v, %v", got, err)
	}

	// Width at most the limit is fine even when no padding happens.
	if _, err := engine.Eval(`author.padStart(100, " ")`, ctx); err != nil {
		t.Errorf("padStart at the limit: %v", err)
	}

	_, err = engine.Eval(`author.padStart(101, " ")`, ctx)
	if !errors.Is(err, ErrResourceLimit) {
		t.Errorf("padStart over the limit: expected resource-limit, got %v", err)
	}
}

func TestGuardReplaceAllAmplification(t *testing.T) {
	engine := New(WithMaxResultLen(1000))
	ctx := Context{"content": strings.Repeat("x", 500)}

	// Each x becomes three bytes for a 1500-byte result.
	_, err := engine.Eval(`content.replaceAll("x", "xxx")`, ctx)
	if !errors.Is(err, ErrResourceLimit) {
		t.Errorf("expected resource-limit, got %v", err)
	}

	// Shrinking replacements are always fine.
	got, err := engine.Eval(`content.replaceAll("xx", "x")`, ctx)
	if err != nil {
		t.Fatalf("shrinking replaceAll: %v", err)
	}

	if s := got.(string); len(s) != 250 {
		t.Errorf("expected 250 bytes, got %d", len(s))
	}
}

func TestGuardReplaceAllEmptyNeedle(t *testing.T) {
	got, err := New().Eval(`content.replaceAll("", "zz")`, Context{"content": "abc"})
	if err != nil || got != "abc" {
		t.Errorf("empty needle must leave the string unchanged: got %v, %v", got, err)
	}
}

func TestGuardJoin(t *testing.T) {
	engine := New(WithMaxResultLen(10))

	got, err := engine.Eval(`chars.join("-")`, Context{"chars": []string{"ab", "cd", "ef"}})
	if err != nil || got != "ab-cd-ef" {
		t.Errorf("join: got %v, %v", got, err)
	}

	_, err = engine.Eval(`chars.join("--")`, Context{"chars": []string{"abc", "def", "ghi"}})
	if !errors.Is(err, ErrResourceLimit) {
		t.Errorf("join over the limit: expected resource-limit, got %v", err)
	}
}

func TestGuardConcatBound(t *testing.T) {
	engine := New(WithMaxResultLen(100))
	half := strings.Repeat("a", 60)

	_, err := engine.Eval("content + author", Context{"content": half, "author": half})
	if !errors.Is(err, ErrResourceLimit) {
		t.Errorf("concat over the limit: expected resource-limit, got %v", err)
	}
}

func TestGuardRepeatHugeCount(t *testing.T) {
	// A count near the integer ceiling must trip the resource limit,
	// not wrap the size computation past it and panic downstream.
	engine := New()
	ctx := Context{"content": "abcd"}

	_, err := engine.Eval("content.repeat(4611686018427387904)", ctx)
	if !errors.Is(err, ErrResourceLimit) {
		t.Errorf("expected resource-limit, got %v", err)
	}

	// Counts beyond integer precision reject the same way.
	_, err = engine.Eval("content.repeat(100000000000000000000000000000000)", ctx)
	if !errors.Is(err, ErrResourceLimit) {
		t.Errorf("expected resource-limit, got %v", err)
	}
}

func TestGuardPadHugeWidth(t *testing.T) {
	engine := New()
	ctx := Context{"author": "Mira"}

	_, err := engine.Eval(`author.padStart(4611686018427387904, "*")`, ctx)
	if !errors.Is(err, ErrResourceLimit) {
		t.Errorf("expected resource-limit, got %v", err)
	}
}

func TestGuardSplit(t *testing.T) {
	engine := New(WithMaxResultLen(160))

	got, err := engine.Eval(`content.split(" ")`, Context{"content": "a b c"})
	if err != nil {
		t.Fatalf("split: %v", err)
	}

	if list := got.([]string); len(list) != 3 {
		t.Errorf("split produced %v", list)
	}

	// An empty separator splits between every rune, one header per
	// element, so the bound trips long before the byte limit would.
	_, err = engine.Eval(`content.split("")`, Context{"content": strings.Repeat("x", 11)})
	if !errors.Is(err, ErrResourceLimit) {
		t.Errorf("per-rune split over the limit: expected resource-limit, got %v", err)
	}

	got, err = engine.Eval(`content.split("")`, Context{"content": "abc"})
	if err != nil {
		t.Fatalf("small per-rune split: %v", err)
	}

	if list := got.([]string); len(list) != 3 || list[0] != "a" {
		t.Errorf("per-rune split produced %v", list)
	}
}
