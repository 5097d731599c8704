package obfuscate

import "its-hmny.dev/minic-obfuscator/pkg/ast"

// TransformExpressions rewrites every expression bottom-up into an equivalent
// but more convoluted form: a variable read "x" becomes "x-(-x)-x", an integer
// literal "n" becomes "n+0", "!c" becomes "!!!c" and "a*b" becomes "(a*b)*1".
// Each rewrite is applied once per visited expression so the growth stays
// linear in AST size, matching the identity-insertion catalog in spec.md §4.2.3.
func TransformExpressions(program *ast.Program) error {
	for _, fn := range program.Functions {
		fn.Body = rewriteStatements(fn.Body)
	}
	return nil
}

func rewriteStatements(stmts []ast.Statement) []ast.Statement {
	out := make([]ast.Statement, len(stmts))
	for i, s := range stmts {
		out[i] = ast.WithChildren(s, rewriteChildren(ast.Children(s))).(ast.Statement)
	}
	return out
}

func rewriteChildren(children []ast.Node) []ast.Node {
	out := make([]ast.Node, len(children))
	for i, c := range children {
		out[i] = rewriteNode(c)
	}
	return out
}

func rewriteNode(n ast.Node) ast.Node {
	rebuilt := ast.WithChildren(n, rewriteChildren(ast.Children(n)))
	if expr, ok := rebuilt.(ast.Expression); ok {
		return obfuscateExpression(expr)
	}
	return rebuilt
}

// obfuscateExpression applies one identity transform to expr, chosen by its
// shape: additive identity for integer literals, an extra double negation on
// a logical not, a multiplicative identity on products, and a self-cancelling
// subtraction for plain variable reads. Other shapes are returned unchanged.
func obfuscateExpression(expr ast.Expression) ast.Expression {
	switch v := expr.(type) {
	case *ast.Variable:
		// x  ->  x - (-x) - x   (arithmetically equal to x)
		negated := &ast.UnaryOp{Op: "-", Operand: &ast.Variable{Name: v.Name}}
		inner := &ast.BinaryOp{Op: "-", Left: &ast.Variable{Name: v.Name}, Right: negated}
		return &ast.BinaryOp{Op: "-", Left: inner, Right: &ast.Variable{Name: v.Name}}
	case *ast.Literal:
		if v.Kind != ast.IntLiteral {
			return v
		}
		// n  ->  n + 0
		return &ast.BinaryOp{Op: "+", Left: v, Right: ast.NewIntLiteral(0)}
	case *ast.UnaryOp:
		if v.Op == "!" {
			// !c  ->  !!!c
			return &ast.UnaryOp{Op: "!", Operand: &ast.UnaryOp{Op: "!", Operand: v}}
		}
		return v
	case *ast.BinaryOp:
		if v.Op == "*" {
			// a*b  ->  (a*b)*1
			return &ast.BinaryOp{Op: "*", Left: v, Right: ast.NewIntLiteral(1)}
		}
		return v
	default:
		return v
	}
}
