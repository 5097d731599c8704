package ast

// NewIntLiteral builds an integer Literal.
func NewIntLiteral(v int) *Literal { return &Literal{Kind: IntLiteral, Int: v} }

// NewStringLiteral builds a string Literal.
func NewStringLiteral(v string) *Literal { return &Literal{Kind: StringLiteral, Str: v} }

// NewBoolLiteral builds a boolean Literal.
func NewBoolLiteral(v bool) *Literal { return &Literal{Kind: BoolLiteral, Bool: v} }

// NewCharLiteral builds a character Literal.
func NewCharLiteral(v rune) *Literal { return &Literal{Kind: CharLiteral, Char: v} }

// NewVariable builds a Variable reference expression.
func NewVariable(name string) *Variable { return &Variable{Name: name} }

// NewBinaryOp builds a BinaryOp expression.
func NewBinaryOp(op string, left, right Expression) *BinaryOp {
	return &BinaryOp{Op: op, Left: left, Right: right}
}

// NewVariableDecl builds a VariableDecl. init may be nil.
func NewVariableDecl(typ, name string, init Expression) *VariableDecl {
	return &VariableDecl{Type: typ, Name: name, Init: init}
}

// NewLabel builds a Label statement.
func NewLabel(name string) *Label { return &Label{Name: name} }

// NewGoto builds a Goto statement.
func NewGoto(target string) *Goto { return &Goto{Target: target} }
