package deobfuscate

import (
	"strings"

	"its-hmny.dev/minic-obfuscator/pkg/ast"
)

// RemoveDeadCode strips statements the obfuscator's dead-code inserter adds:
// "unused_"-prefixed declarations, "if (0) { ... }" branches (the
// Unreachable-print marker or any other always-false guard), prints whose
// format string contains the "Unreachable" marker, and expression
// statements built entirely from literals. It recurses into every
// statement-containing node and elides a Block left empty by the removal, and
// is idempotent: running it twice produces the same result as running it once.
func RemoveDeadCode(program *ast.Program) error {
	for _, fn := range program.Functions {
		fn.Body = stripDeadStatements(fn.Body)
	}
	return nil
}

func stripDeadStatements(stmts []ast.Statement) []ast.Statement {
	var out []ast.Statement
	for _, s := range stmts {
		if isDeadStatement(s) {
			continue
		}
		s = descendIntoStatement(s)
		if b, ok := s.(*ast.Block); ok && len(b.Body) == 0 {
			continue
		}
		out = append(out, s)
	}
	return out
}

func isDeadStatement(s ast.Statement) bool {
	switch v := s.(type) {
	case *ast.VariableDecl:
		return hasUnusedPrefix(v.Name)
	case *ast.Assignment:
		return hasUnusedPrefix(v.Target.Name)
	case *ast.IfStmt:
		return isAlwaysFalse(v.Cond) && len(v.Else) == 0
	case *ast.ExpressionStmt:
		return isLiteralOnly(v.Expr)
	case *ast.Print:
		return strings.Contains(v.Format, "Unreachable")
	case *ast.Block:
		return len(v.Body) == 0
	}
	return false
}

func hasUnusedPrefix(name string) bool {
	return len(name) >= len("unused_") && name[:len("unused_")] == "unused_"
}

func isAlwaysFalse(e ast.Expression) bool {
	lit, ok := e.(*ast.Literal)
	return ok && lit.Kind == ast.IntLiteral && lit.Int == 0
}

func isLiteralOnly(e ast.Expression) bool {
	switch v := e.(type) {
	case *ast.Literal:
		return true
	case *ast.BinaryOp:
		return isLiteralOnly(v.Left) && isLiteralOnly(v.Right)
	case *ast.UnaryOp:
		return isLiteralOnly(v.Operand)
	default:
		return false
	}
}

func descendIntoStatement(s ast.Statement) ast.Statement {
	switch v := s.(type) {
	case *ast.IfStmt:
		then := stripDeadStatements(v.Then)
		els := stripDeadStatements(v.Else)
		return &ast.IfStmt{Cond: v.Cond, Then: then, Else: els}
	case *ast.WhileStmt:
		return &ast.WhileStmt{Cond: v.Cond, Body: stripDeadStatements(v.Body)}
	case *ast.ForStmt:
		return &ast.ForStmt{Init: v.Init, Cond: v.Cond, Post: v.Post, Body: stripDeadStatements(v.Body)}
	case *ast.Block:
		return &ast.Block{Body: stripDeadStatements(v.Body)}
	case *ast.Switch:
		cases := make([]ast.SwitchCase, len(v.Cases))
		for i, c := range v.Cases {
			cases[i] = ast.SwitchCase{Value: c.Value, Body: stripDeadStatements(c.Body)}
		}
		return &ast.Switch{Selector: v.Selector, Cases: cases, Default: stripDeadStatements(v.Default)}
	default:
		return s
	}
}
