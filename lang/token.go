package lang

// Kind classifies a lexical token.
type Kind int

const (
	// KindEOF marks the end of the token stream.
	KindEOF Kind = iota

	// KindIdent is an identifier: [A-Za-z_][A-Za-z0-9_]*.
	KindIdent

	// KindNumber is a decimal integer or float literal.
	KindNumber

	// KindString is a quoted string literal.
	KindString

	// KindBool is the keyword true or false.
	KindBool

	// KindOp is an operator: + - * / % == != < <= > >= && || !
	KindOp

	// KindPunct is punctuation: ( ) , . ? :
	KindPunct
)

// String returns a human-readable name for the token kind.
func (k Kind) String() string {
	switch k {
	case KindEOF:
		return "end of input"
	case KindIdent:
		return "identifier"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindBool:
		return "boolean"
	case KindOp:
		return "operator"
	case KindPunct:
		return "punctuation"
	default:
		return "unknown"
	}
}

// Position locates a token or error within source text.
// Offset is a byte offset; Line and Column are 1-based.
type Position struct {
	Offset int
	Line   int
	Column int
}

// Token is one lexical token. Text holds the raw source slice for
// identifiers, operators, and punctuation; for string literals it holds
// the decoded value with quotes and escapes resolved.
type Token struct {
	Kind Kind
	Text string
	Pos  Position
}
