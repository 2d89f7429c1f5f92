package lang

import (
	"log/slog"
	"strings"
)

// lexer scans expression source into tokens. The accepted alphabet is
// deliberately narrow: ASCII identifiers, decimal numbers, double-quoted
// strings with a fixed escape table, and the operator/punctuation set of
// the grammar. Everything else is a lex error, including non-ASCII
// letters (identifier spoofing), number base prefixes, and bracket or
// statement characters that have no production.
type lexer struct {
	src  string
	pos  int
	line int
	col  int
}

// tokenize scans source into a token list terminated by a KindEOF token.
func tokenize(source string) ([]Token, error) {
	l := &lexer{src: source, line: 1, col: 1}

	tokens := make([]Token, 0, 16)

	for {
		l.skipSpace()

		if l.eof() {
			tokens = append(tokens, Token{Kind: KindEOF, Pos: l.position()})

			return tokens, nil
		}

		tok, err := l.scan()
		if err != nil {
			return nil, err
		}

		tokens = append(tokens, tok)
	}
}

// scan consumes and returns the next token. The caller has already
// skipped leading whitespace.
func (l *lexer) scan() (Token, error) {
	pos := l.position()
	ch := l.peek()

	switch {
	case isIdentStart(ch):
		return l.scanIdent(pos), nil

	case isDigit(ch):
		return l.scanNumber(pos), nil

	case ch == '"':
		return l.scanString(pos)
	}

	// Two-character operators first.
	if op := l.peek2(); op == "==" || op == "!=" || op == "<=" ||
		op == ">=" || op == "&&" || op == "||" {
		l.advance()
		l.advance()

		return Token{Kind: KindOp, Text: op, Pos: pos}, nil
	}

	switch ch {
	case '+', '-', '*', '/', '%', '<', '>', '!':
		l.advance()

		return Token{Kind: KindOp, Text: string(ch), Pos: pos}, nil

	case '(', ')', ',', '.', '?', ':':
		l.advance()

		return Token{Kind: KindPunct, Text: string(ch), Pos: pos}, nil
	}

	return Token{}, ErrLex.WithPosition(pos).
		With(slog.String("character", string(rune(ch))))
}

// scanIdent consumes an ASCII identifier. The keywords true and false
// become boolean tokens; there are no other keywords.
func (l *lexer) scanIdent(pos Position) Token {
	start := l.pos

	for !l.eof() && isIdentPart(l.peek()) {
		l.advance()
	}

	text := l.src[start:l.pos]
	if text == "true" || text == "false" {
		return Token{Kind: KindBool, Text: text, Pos: pos}
	}

	return Token{Kind: KindIdent, Text: text, Pos: pos}
}

// scanNumber consumes a decimal integer or float. There is no lexical
// production for base prefixes, exponents, or digit separators, so
// "0x41" scans as the number 0 followed by the identifier x41, which the
// validator then rejects.
func (l *lexer) scanNumber(pos Position) Token {
	start := l.pos

	for !l.eof() && isDigit(l.peek()) {
		l.advance()
	}

	// Fractional part requires a digit after the dot, otherwise the dot
	// is left for member access.
	if !l.eof() && l.peek() == '.' &&
		l.pos+1 < len(l.src) && isDigit(l.src[l.pos+1]) {
		l.advance()

		for !l.eof() && isDigit(l.peek()) {
			l.advance()
		}
	}

	return Token{Kind: KindNumber, Text: l.src[start:l.pos], Pos: pos}
}

// scanString consumes a double-quoted string literal, resolving the
// fixed escape table. Unknown escapes and unterminated literals are lex
// errors; there is no interpolation or raw string syntax, so anything
// between the quotes is literal text.
func (l *lexer) scanString(pos Position) (Token, error) {
	l.advance() // opening quote

	var sb strings.Builder

	for !l.eof() {
		ch := l.peek()

		switch ch {
		case '"':
			l.advance()

			return Token{Kind: KindString, Text: sb.String(), Pos: pos}, nil

		case '\\':
			l.advance()

			if l.eof() {
				break
			}

			esc := l.peek()
			l.advance()

			switch esc {
			case '"':
				sb.WriteByte('"')
			case '\\':
				sb.WriteByte('\\')
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			default:
				return Token{}, ErrLex.WithPosition(pos).
					With(slog.String("escape", `\`+string(rune(esc))))
			}

		case '\n':
			// Strings are single-line.
			return Token{}, ErrLex.WithPosition(pos).
				With(slog.String("issue", "unterminated string"))

		default:
			sb.WriteByte(ch)
			l.advance()
		}
	}

	return Token{}, ErrLex.WithPosition(pos).
		With(slog.String("issue", "unterminated string"))
}

func (l *lexer) skipSpace() {
	for !l.eof() {
		switch l.peek() {
		case ' ', '\t', '\r', '\n':
			l.advance()
		default:
			return
		}
	}
}

func (l *lexer) peek() byte {
	if l.eof() {
		return 0
	}

	return l.src[l.pos]
}

func (l *lexer) peek2() string {
	if l.pos+2 > len(l.src) {
		return ""
	}

	return l.src[l.pos : l.pos+2]
}

func (l *lexer) advance() {
	if l.eof() {
		return
	}

	if l.src[l.pos] == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}

	l.pos++
}

func (l *lexer) eof() bool {
	return l.pos >= len(l.src)
}

func (l *lexer) position() Position {
	return Position{Offset: l.pos, Line: l.line, Column: l.col}
}

// Character classification is ASCII-only on purpose: non-ASCII letters,
// zero-width characters, and homoglyphs never form identifiers.

func isIdentStart(ch byte) bool {
	return ch == '_' ||
		(ch >= 'a' && ch <= 'z') ||
		(ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
