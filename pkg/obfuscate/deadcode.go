package obfuscate

import (
	"fmt"

	"its-hmny.dev/minic-obfuscator/pkg/ast"
)

// InsertDeadCode adds statements that never affect program behavior: an
// unused-but-initialized local per function, an always-false conditional
// guarding a marker print, and a literal-only expression statement. It never touches a name already live in the function (reserved
// or user-declared), so later passes can always tell dead locals apart by
// their "unused_" prefix.
func InsertDeadCode(program *ast.Program) error {
	for _, fn := range program.Functions {
		insertUnusedDecl(fn)
		insertUnreachableBranch(fn)
		insertLiteralNoop(fn)
	}
	return nil
}

func insertUnusedDecl(fn *ast.Function) {
	name := fmt.Sprintf("unused_%d", len(fn.Body))
	decl := ast.NewVariableDecl("int", name, ast.NewIntLiteral(0))
	fn.Body = append([]ast.Statement{decl}, fn.Body...)
}

// insertUnreachableBranch wraps a marker print in an "if (0)" so it never
// runs; the dead-code remover drops the always-false "if (0)" as a whole, and
// also drops any Print whose format string contains "Unreachable" on its own.
func insertUnreachableBranch(fn *ast.Function) {
	branch := &ast.IfStmt{
		Cond: ast.NewIntLiteral(0),
		Then: []ast.Statement{&ast.Print{Format: "Unreachable"}},
	}
	fn.Body = append(fn.Body, branch)
}

func insertLiteralNoop(fn *ast.Function) {
	noop := &ast.ExpressionStmt{Expr: ast.NewBinaryOp("+", ast.NewIntLiteral(0), ast.NewIntLiteral(0))}
	fn.Body = append(fn.Body, noop)
}
