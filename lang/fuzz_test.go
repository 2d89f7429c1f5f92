package lang

import (
	"errors"
	"testing"
)

// FuzzTokenize tests the lexer with random inputs to find edge cases.
func FuzzTokenize(f *testing.F) {
	// Seed corpus with known valid inputs
	f.Add("mentioned")
	f.Add("123.456")
	f.Add(`"string"`)
	f.Add(`"esc\n\t\"q\""`)
	f.Add("a == b && !c")
	f.Add("x ? y : z")
	f.Add("content.trim().slice(0, 5)")
	f.Add("1 + 2 * 3 - 4 / 5 % 6")
	// And with inputs the lexer must reject without panicking
	f.Add("0x41")
	f.Add("a; b")
	f.Add("list[0]")
	f.Add(`"unterminated`)
	f.Add(`"\d"`)
	f.Add("café")

	f.Fuzz(func(t *testing.T, input string) {
		// The lexer must never panic; rejection is always an *Error.
		defer func() {
			if r := recover(); r != nil {
				t.Errorf("lexer panicked on input %q: %v", input, r)
			}
		}()

		tokens, err := tokenize(input)
		if err != nil {
			var langErr *Error
			if !errors.As(err, &langErr) {
				t.Errorf("lexer error is not a *Error: %v", err)
			}

			return
		}

		// A successful result always ends at EOF with valid positions.
		if len(tokens) == 0 || tokens[len(tokens)-1].Kind != KindEOF {
			t.Errorf("token stream for %q does not end at EOF", input)
		}

		for i, tok := range tokens {
			if tok.Pos.Line < 1 || tok.Pos.Column < 1 {
				t.Errorf("token %d of %q has invalid position %+v", i, input, tok.Pos)
			}
		}
	})
}

// FuzzCompile tests the whole compile pipeline with random inputs.
func FuzzCompile(f *testing.F) {
	f.Add(`content.includes("help") && mentioned`)
	f.Add(`chars.join(", ")`)
	f.Add(`mentioned ? self.nickname : author`)
	f.Add(`content.match("\\d+")`)
	f.Add(`idleMinutes > 30 || messageCount == 0`)
	f.Add(`fact("color") + roll("2d6")`)
	f.Add("((((1))))")
	f.Add("!!true == !false")
	f.Add("nobody.constructor")
	f.Add("a ? b : c ? d : e")
	f.Add("1 + + 2")
	f.Add(")(")

	engine := New()

	f.Fuzz(func(t *testing.T, input string) {
		defer func() {
			if r := recover(); r != nil {
				t.Errorf("compile panicked on input %q: %v", input, r)
			}
		}()

		compiled, err := engine.Compile(input)
		if err != nil {
			var langErr *Error
			if !errors.As(err, &langErr) {
				t.Errorf("compile error for %q is not a *Error: %v", input, err)

				return
			}

			if !langErr.Category().CompileTime() {
				t.Errorf("compile rejected %q with run-time category %v", input, langErr.Category())
			}

			return
		}

		if compiled.Source() != input {
			t.Errorf("cached source %q does not match input %q", compiled.Source(), input)
		}
	})
}

// FuzzEval tests evaluation with random sources against a fixed context.
// Run never panics and never returns anything but a *Error.
func FuzzEval(f *testing.F) {
	f.Add(`content.includes("help") && mentioned`)
	f.Add(`author + ": " + content`)
	f.Add(`chars.first().toUpperCase()`)
	f.Add(`content.repeat(3).length`)
	f.Add(`self.name == author`)
	f.Add(`time.hour * 60 + time.minute`)
	f.Add(`content.slice(0 - 99, 99)`)
	f.Add(`idleMinutes % 0`)
	f.Add(`random()`)

	engine := New()
	ctx := Context{
		"mentioned":    true,
		"replied":      false,
		"idleMinutes":  3.0,
		"messageCount": 9.0,
		"content":      "please help",
		"author":       "Mira",
		"chars":        []string{"Alice", "Bob"},
		"self":         Record{"name": "Ember"},
		"time":         Record{"hour": 21.0, "minute": 5.0},
	}

	f.Fuzz(func(t *testing.T, input string) {
		defer func() {
			if r := recover(); r != nil {
				t.Errorf("eval panicked on input %q: %v", input, r)
			}
		}()

		result, err := engine.Eval(input, ctx)
		if err != nil {
			var langErr *Error
			if !errors.As(err, &langErr) {
				t.Errorf("eval error for %q is not a *Error: %v", input, err)
			}

			return
		}

		switch result.(type) {
		case bool, float64, string, []string, Record, Callable, nil:
		default:
			t.Errorf("eval of %q produced a value outside the model: %T", input, result)
		}
	})
}
