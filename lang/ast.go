package lang

// Node is one node of a parsed expression tree. Nodes are immutable
// after parsing; a compiled expression shares its tree across all
// evaluations.
type Node interface {
	// Position reports where in the source the node begins.
	Position() Position
}

// Literal is a boolean, number, or string literal.
type Literal struct {
	Pos  Position
	Kind Kind // KindBool, KindNumber, or KindString
	Bool bool
	Num  float64
	Str  string
}

// Ident is a top-level name resolved against the context schema.
type Ident struct {
	Pos  Position
	Name string
}

// Member is a dotted access: Object.Name. Dotted access is the only
// member production; there is no computed or indexed form.
type Member struct {
	Pos    Position
	Object Node
	Name   string
}

// Call applies arguments to a callee, which is either an Ident naming a
// schema callable or a Member naming a method.
type Call struct {
	Pos    Position
	Callee Node
	Args   []Node
}

// Unary is logical not or numeric negation.
type Unary struct {
	Pos     Position
	Op      string
	Operand Node
}

// Binary is an arithmetic, comparison, or logical operation.
type Binary struct {
	Pos   Position
	Op    string
	Left  Node
	Right Node
}

// Ternary is the conditional operator: Cond ? Then : Else.
type Ternary struct {
	Pos  Position
	Cond Node
	Then Node
	Else Node
}

func (n *Literal) Position() Position { return n.Pos }
func (n *Ident) Position() Position { return n.Pos }
func (n *Member) Position() Position { return n.Pos }
func (n *Call) Position() Position { return n.Pos }
func (n *Unary) Position() Position { return n.Pos }
func (n *Binary) Position() Position { return n.Pos }
func (n *Ternary) Position() Position { return n.Pos }
