package lang

import (
	"errors"
	"testing"
)

func TestTokenizeKinds(t *testing.T) {
	tokens, err := tokenize(`content.includes("help") && mentioned`)
	if err != nil {
		t.Fatalf("tokenize error: %v", err)
	}

	kinds := []Kind{
		KindIdent, KindPunct, KindIdent, KindPunct, KindString,
		KindPunct, KindOp, KindIdent, KindEOF,
	}

	if len(tokens) != len(kinds) {
		t.Fatalf("expected %d tokens, got %d", len(kinds), len(tokens))
	}

	for i, want := range kinds {
		if tokens[i].Kind != want {
			t.Errorf("token %d: expected %v, got %v", i, want, tokens[i].Kind)
		}
	}
}

func TestTokenizePositions(t *testing.T) {
	tokens, err := tokenize("a +\nbb")
	if err != nil {
		t.Fatalf("tokenize error: %v", err)
	}

	if tokens[0].Pos.Line != 1 || tokens[0].Pos.Column != 1 {
		t.Errorf("token a: expected 1:1, got %d:%d",
			tokens[0].Pos.Line, tokens[0].Pos.Column)
	}

	if tokens[2].Pos.Line != 2 || tokens[2].Pos.Column != 1 {
		t.Errorf("token bb: expected 2:1, got %d:%d",
			tokens[2].Pos.Line, tokens[2].Pos.Column)
	}
}

func TestTokenizeNumbers(t *testing.T) {
	tokens, err := tokenize("3.14 42 0.5")
	if err != nil {
		t.Fatalf("tokenize error: %v", err)
	}

	for i, want := range []string{"3.14", "42", "0.5"} {
		if tokens[i].Kind != KindNumber || tokens[i].Text != want {
			t.Errorf("token %d: expected number %q, got %v %q",
				i, want, tokens[i].Kind, tokens[i].Text)
		}
	}
}

func TestTokenizeHexHasNoProduction(t *testing.T) {
	// 0x41 must lex as the number 0 followed by the identifier x41; the
	// validator then rejects x41 as unknown.
	tokens, err := tokenize("0x41")
	if err != nil {
		t.Fatalf("tokenize error: %v", err)
	}

	if tokens[0].Kind != KindNumber || tokens[0].Text != "0" {
		t.Errorf("expected number 0, got %v %q", tokens[0].Kind, tokens[0].Text)
	}

	if tokens[1].Kind != KindIdent || tokens[1].Text != "x41" {
		t.Errorf("expected identifier x41, got %v %q", tokens[1].Kind, tokens[1].Text)
	}
}

func TestTokenizeStringEscapes(t *testing.T) {
	tokens, err := tokenize(`"a\"b\\c\nd"`)
	if err != nil {
		t.Fatalf("tokenize error: %v", err)
	}

	if tokens[0].Text != "a\"b\\c\nd" {
		t.Errorf("unexpected decoded string: %q", tokens[0].Text)
	}
}

func TestTokenizeInterpolationIsLiteral(t *testing.T) {
	tokens, err := tokenize(`"${content}"`)
	if err != nil {
		t.Fatalf("tokenize error: %v", err)
	}

	if tokens[0].Kind != KindString || tokens[0].Text != "${content}" {
		t.Errorf("interpolation-looking text must stay literal, got %q", tokens[0].Text)
	}
}

func TestTokenizeBooleans(t *testing.T) {
	tokens, err := tokenize("true falsey false")
	if err != nil {
		t.Fatalf("tokenize error: %v", err)
	}

	if tokens[0].Kind != KindBool {
		t.Errorf("true: expected boolean, got %v", tokens[0].Kind)
	}

	if tokens[1].Kind != KindIdent {
		t.Errorf("falsey: expected identifier, got %v", tokens[1].Kind)
	}

	if tokens[2].Kind != KindBool {
		t.Errorf("false: expected boolean, got %v", tokens[2].Kind)
	}
}

func TestTokenizeRejects(t *testing.T) {
	sources := []string{
		"a; b",          // statement separator
		"a[0]",          // bracket access
		"a = 1",         // assignment
		"a & b",         // bitwise
		"a | b",         // bitwise
		"{x: 1}",        // object literal
		"café",     // non-ASCII identifier
		"​x",       // zero-width character
		`"unterminated`, // unterminated string
		`"bad \q esc"`,  // unknown escape
		"\"two\nlines\"", // newline inside string
		"`raw`",         // raw string syntax
	}

	for _, src := range sources {
		if _, err := tokenize(src); err == nil {
			t.Errorf("tokenize(%q): expected error", src)
		} else if !errors.Is(err, ErrLex) {
			t.Errorf("tokenize(%q): expected lex category, got %v", src, err)
		}
	}
}

func TestTokenizeErrorHasPosition(t *testing.T) {
	_, err := tokenize("mentioned && @")

	var langErr *Error
	if !errors.As(err, &langErr) {
		t.Fatalf("expected *Error, got %T", err)
	}

	pos, ok := langErr.Pos()
	if !ok {
		t.Fatal("expected a position")
	}

	if pos.Line != 1 || pos.Column != 14 {
		t.Errorf("expected 1:14, got %d:%d", pos.Line, pos.Column)
	}
}
