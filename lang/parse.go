package lang

import (
	"log/slog"
	"strconv"
)

// parser is a hand-written recursive-descent parser with explicit
// precedence tiers:
//
//	ternary < || < && < equality < relational < additive <
//	multiplicative < unary < call/member
//
// The grammar has no assignment, statement separator, bracket access,
// bitwise operator, or closure syntax. A separator after a complete
// expression is a parse error, which is what blocks appending a second
// expression behind a legitimate one.
type parser struct {
	tokens []Token
	pos    int
	depth  int
}

// maxNestingDepth bounds expression nesting. The parser recurses per
// nesting level, as do the validator and evaluator on the resulting
// tree, and goroutine stack exhaustion is not a recoverable failure, so
// the pipeline refuses pathological nesting up front instead of letting
// an attacker-sized source take the process down.
const maxNestingDepth = 128

func (p *parser) enter() error {
	p.depth++
	if p.depth > maxNestingDepth {
		return ErrParse.WithPosition(p.peek().Pos).
			With(slog.String("issue", "expression nests too deeply"))
	}

	return nil
}

func (p *parser) leave() { p.depth-- }

// parse builds an AST from a token stream and requires the entire
// stream to be consumed.
func parse(tokens []Token) (Node, error) {
	p := &parser{tokens: tokens}

	node, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if tok := p.peek(); tok.Kind != KindEOF {
		return nil, ErrParse.WithPosition(tok.Pos).
			With(
				slog.String("expected", "end of input"),
				slog.String("found", describeToken(tok)),
			)
	}

	return node, nil
}

// parseExpr parses the lowest tier: ternary.
func (p *parser) parseExpr() (Node, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	cond, err := p.parseBinary(0)
	if err != nil {
		return nil, err
	}

	if !p.acceptPunct("?") {
		return cond, nil
	}

	pos := cond.Position()

	then, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if !p.acceptPunct(":") {
		tok := p.peek()

		return nil, ErrParse.WithPosition(tok.Pos).
			With(
				slog.String("expected", ":"),
				slog.String("found", describeToken(tok)),
			)
	}

	els, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	return &Ternary{Pos: pos, Cond: cond, Then: then, Else: els}, nil
}

// binaryTiers lists the left-associative operator tiers from loosest to
// tightest binding.
var binaryTiers = [][]string{
	{"||"},
	{"&&"},
	{"==", "!="},
	{"<", "<=", ">", ">="},
	{"+", "-"},
	{"*", "/", "%"},
}

// parseBinary parses the left-associative tier at the given index,
// recursing into tighter tiers and finally into unary.
func (p *parser) parseBinary(tier int) (Node, error) {
	if tier >= len(binaryTiers) {
		return p.parseUnary()
	}

	left, err := p.parseBinary(tier + 1)
	if err != nil {
		return nil, err
	}

	for {
		op, ok := p.acceptOp(binaryTiers[tier]...)
		if !ok {
			return left, nil
		}

		right, err := p.parseBinary(tier + 1)
		if err != nil {
			return nil, err
		}

		left = &Binary{Pos: left.Position(), Op: op, Left: left, Right: right}
	}
}

// parseUnary parses chained prefix ! and - before a postfix expression.
func (p *parser) parseUnary() (Node, error) {
	tok := p.peek()

	if op, ok := p.acceptOp("!", "-"); ok {
		if err := p.enter(); err != nil {
			return nil, err
		}

		operand, err := p.parseUnary()

		p.leave()

		if err != nil {
			return nil, err
		}

		return &Unary{Pos: tok.Pos, Op: op, Operand: operand}, nil
	}

	return p.parsePostfix()
}

// parsePostfix parses a primary followed by any number of member
// accesses and calls. Each link produces a fresh node; a chain is a
// tree, never a cycle.
func (p *parser) parsePostfix() (Node, error) {
	node, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		switch {
		case p.acceptPunct("."):
			tok := p.peek()
			if tok.Kind != KindIdent {
				return nil, ErrParse.WithPosition(tok.Pos).
					With(
						slog.String("expected", "member name"),
						slog.String("found", describeToken(tok)),
					)
			}

			p.pos++
			node = &Member{Pos: node.Position(), Object: node, Name: tok.Text}

		case p.acceptPunct("("):
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}

			node = &Call{Pos: node.Position(), Callee: node, Args: args}

		default:
			return node, nil
		}
	}
}

// parseArgs parses a comma-separated argument list after the opening
// parenthesis has been consumed. The comma is valid only here; it is
// never a sequencing operator.
func (p *parser) parseArgs() ([]Node, error) {
	if p.acceptPunct(")") {
		return nil, nil
	}

	var args []Node

	for {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		args = append(args, arg)

		if p.acceptPunct(",") {
			continue
		}

		if p.acceptPunct(")") {
			return args, nil
		}

		tok := p.peek()

		return nil, ErrParse.WithPosition(tok.Pos).
			With(
				slog.String("expected", ", or )"),
				slog.String("found", describeToken(tok)),
			)
	}
}

// parsePrimary parses literals, identifiers, and parenthesized
// expressions — the only primary productions in the grammar.
func (p *parser) parsePrimary() (Node, error) {
	tok := p.peek()

	switch tok.Kind {
	case KindNumber:
		p.pos++

		num, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return nil, ErrParse.WithPosition(tok.Pos).
				With(slog.String("number", tok.Text))
		}

		return &Literal{Pos: tok.Pos, Kind: KindNumber, Num: num}, nil

	case KindString:
		p.pos++

		return &Literal{Pos: tok.Pos, Kind: KindString, Str: tok.Text}, nil

	case KindBool:
		p.pos++

		return &Literal{Pos: tok.Pos, Kind: KindBool, Bool: tok.Text == "true"}, nil

	case KindIdent:
		p.pos++

		return &Ident{Pos: tok.Pos, Name: tok.Text}, nil

	case KindPunct:
		if tok.Text == "(" {
			p.pos++

			node, err := p.parseExpr()
			if err != nil {
				return nil, err
			}

			if !p.acceptPunct(")") {
				missing := p.peek()

				return nil, ErrParse.WithPosition(missing.Pos).
					With(
						slog.String("expected", ")"),
						slog.String("found", describeToken(missing)),
					)
			}

			return node, nil
		}
	}

	return nil, ErrParse.WithPosition(tok.Pos).
		With(
			slog.String("expected", "expression"),
			slog.String("found", describeToken(tok)),
		)
}

func (p *parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Kind: KindEOF}
	}

	return p.tokens[p.pos]
}

// acceptOp consumes and returns the next token's text when it is an
// operator matching one of the candidates.
func (p *parser) acceptOp(ops ...string) (string, bool) {
	tok := p.peek()
	if tok.Kind != KindOp {
		return "", false
	}

	for _, op := range ops {
		if tok.Text == op {
			p.pos++

			return op, true
		}
	}

	return "", false
}

// acceptPunct consumes the next token when it is the given punctuation.
func (p *parser) acceptPunct(text string) bool {
	tok := p.peek()
	if tok.Kind == KindPunct && tok.Text == text {
		p.pos++

		return true
	}

	return false
}

// describeToken renders a token for error messages.
func describeToken(tok Token) string {
	switch tok.Kind {
	case KindEOF:
		return "end of input"
	case KindString:
		return "string " + strconv.Quote(tok.Text)
	default:
		return tok.Kind.String() + " " + strconv.Quote(tok.Text)
	}
}
