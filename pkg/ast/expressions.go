package ast

// Literal is an integer, string, boolean or character constant. Kind
// distinguishes which one so the printer and the expression simplifier don't
// have to re-derive it from the zero-valued fields.
type LiteralKind int

const (
	IntLiteral LiteralKind = iota
	StringLiteral
	BoolLiteral
	CharLiteral
)

// Literal carries exactly one of Int, Str, Bool or Char, selected by Kind. Char
// is stored as its rune value rather than a one-character string so the
// simplifier and printer don't have to re-validate its length.
type Literal struct {
	Kind LiteralKind
	Int  int
	Str  string
	Bool bool
	Char rune
}

// Variable is a reference to a previously declared name (a local, a parameter,
// or — before the deobfuscator's orphan pass runs — a name with no matching
// declaration in scope at all). Used by value in Assignment.Target and Scan.Args
// (those positions are always a bare name, never an arbitrary expression); used
// by pointer wherever an Expression is expected.
type Variable struct {
	Name string
}

// BinaryOp applies Op to Left and Right. Op is one of the operators in the
// Mini-C precedence table ("+", "-", "*", "/", "%", "==", "!=", "<", "<=", ">",
// ">=", "&&", "||").
type BinaryOp struct {
	Op    string
	Left  Expression
	Right Expression
}

// UnaryOp applies Op ("-", "!", "+") to Operand.
type UnaryOp struct {
	Op      string
	Operand Expression
}

// FuncCall invokes Callee with the ordered argument list Args.
type FuncCall struct {
	Callee string
	Args   []Expression
}

func (*Literal) isNode()  {}
func (*Variable) isNode() {}
func (*BinaryOp) isNode() {}
func (*UnaryOp) isNode()  {}
func (*FuncCall) isNode() {}

func (*Literal) isExpression()  {}
func (*Variable) isExpression() {}
func (*BinaryOp) isExpression() {}
func (*UnaryOp) isExpression()  {}
func (*FuncCall) isExpression() {}

// Assignment doubles as an expression (e.g. the right-hand side of another
// assignment, or a bare assignment used as a call argument), in addition to
// being a Statement when it appears on its own.
func (*Assignment) isExpression() {}
