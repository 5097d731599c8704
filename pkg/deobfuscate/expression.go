package deobfuscate

import "its-hmny.dev/minic-obfuscator/pkg/ast"

// SimplifyExpressions rewrites every expression bottom-up to a fixed point
// within this call: additive/multiplicative identities are dropped, double
// negation collapses, self-cancelling subtraction collapses to the operand,
// and literal/literal arithmetic is constant-folded. It is idempotent:
// running it again on its own output makes no further change.
func SimplifyExpressions(program *ast.Program) error {
	for _, fn := range program.Functions {
		fn.Body = simplifyStatements(fn.Body)
	}
	return nil
}

func simplifyStatements(stmts []ast.Statement) []ast.Statement {
	out := make([]ast.Statement, len(stmts))
	for i, s := range stmts {
		out[i] = ast.WithChildren(s, simplifyChildren(ast.Children(s))).(ast.Statement)
	}
	return out
}

func simplifyChildren(children []ast.Node) []ast.Node {
	out := make([]ast.Node, len(children))
	for i, c := range children {
		out[i] = simplifyNode(c)
	}
	return out
}

func simplifyNode(n ast.Node) ast.Node {
	rebuilt := ast.WithChildren(n, simplifyChildren(ast.Children(n)))
	if expr, ok := rebuilt.(ast.Expression); ok {
		return simplifyToFixedPoint(expr)
	}
	return rebuilt
}

func simplifyToFixedPoint(expr ast.Expression) ast.Expression {
	for {
		simplified := simplifyOnce(expr)
		if exprEqual(simplified, expr) {
			return simplified
		}
		expr = simplified
	}
}

func simplifyOnce(expr ast.Expression) ast.Expression {
	switch v := expr.(type) {
	case *ast.UnaryOp:
		if v.Op == "!" {
			if inner, ok := v.Operand.(*ast.UnaryOp); ok && inner.Op == "!" {
				if innerInner, ok := inner.Operand.(*ast.UnaryOp); ok && innerInner.Op == "!" {
					return innerInner
				}
				return inner.Operand
			}
		}
		if v.Op == "-" {
			if inner, ok := v.Operand.(*ast.UnaryOp); ok && inner.Op == "-" {
				return inner.Operand
			}
		}
		return v
	case *ast.BinaryOp:
		if lit, ok := foldLiterals(v); ok {
			return lit
		}
		switch v.Op {
		case "+":
			if isZero(v.Right) {
				return v.Left
			}
			if isZero(v.Left) {
				return v.Right
			}
		case "*":
			if isZero(v.Right) || isZero(v.Left) {
				return ast.NewIntLiteral(0)
			}
			if isOne(v.Right) {
				return v.Left
			}
			if isOne(v.Left) {
				return v.Right
			}
		case "-":
			// x - (-x) - x  ->  x
			if inner, ok := v.Left.(*ast.BinaryOp); ok && inner.Op == "-" {
				if neg, ok := inner.Right.(*ast.UnaryOp); ok && neg.Op == "-" {
					if sameVariable(inner.Left, neg.Operand) && sameVariable(inner.Left, v.Right) {
						return inner.Left
					}
				}
			}
			// (x + x) - x  ->  x: the same identity once the inner "x - (-x)"
			// has already been rewritten to "x + x" bottom-up.
			if inner, ok := v.Left.(*ast.BinaryOp); ok && inner.Op == "+" {
				if sameVariable(inner.Left, inner.Right) && sameVariable(inner.Left, v.Right) {
					return inner.Left
				}
			}
			if isZero(v.Right) {
				return v.Left
			}
			if neg, ok := v.Right.(*ast.UnaryOp); ok && neg.Op == "-" {
				return &ast.BinaryOp{Op: "+", Left: v.Left, Right: neg.Operand}
			}
		}
		return v
	default:
		return v
	}
}

func foldLiterals(b *ast.BinaryOp) (*ast.Literal, bool) {
	l, lok := b.Left.(*ast.Literal)
	r, rok := b.Right.(*ast.Literal)
	if !lok || !rok || l.Kind != ast.IntLiteral || r.Kind != ast.IntLiteral {
		return nil, false
	}
	switch b.Op {
	case "+":
		return ast.NewIntLiteral(l.Int + r.Int), true
	case "-":
		return ast.NewIntLiteral(l.Int - r.Int), true
	case "*":
		return ast.NewIntLiteral(l.Int * r.Int), true
	case "/":
		if r.Int == 0 {
			return nil, false
		}
		return ast.NewIntLiteral(l.Int / r.Int), true
	}
	return nil, false
}

func isZero(e ast.Expression) bool {
	lit, ok := e.(*ast.Literal)
	return ok && lit.Kind == ast.IntLiteral && lit.Int == 0
}

func isOne(e ast.Expression) bool {
	lit, ok := e.(*ast.Literal)
	return ok && lit.Kind == ast.IntLiteral && lit.Int == 1
}

func sameVariable(a, b ast.Expression) bool {
	va, ok1 := a.(*ast.Variable)
	vb, ok2 := b.(*ast.Variable)
	return ok1 && ok2 && va.Name == vb.Name
}

// exprEqual is a shallow structural comparison sufficient to detect a fixed
// point: simplifyOnce only ever shrinks or relabels a node, so pointer-shape
// equality after one pass is enough to know no further rewrite applies.
func exprEqual(a, b ast.Expression) bool {
	switch av := a.(type) {
	case *ast.Literal:
		bv, ok := b.(*ast.Literal)
		return ok && av.Kind == bv.Kind && av.Int == bv.Int && av.Str == bv.Str
	case *ast.Variable:
		bv, ok := b.(*ast.Variable)
		return ok && av.Name == bv.Name
	case *ast.UnaryOp:
		bv, ok := b.(*ast.UnaryOp)
		return ok && av.Op == bv.Op && av.Operand == bv.Operand
	case *ast.BinaryOp:
		bv, ok := b.(*ast.BinaryOp)
		return ok && av.Op == bv.Op && av.Left == bv.Left && av.Right == bv.Right
	default:
		return a == b
	}
}
