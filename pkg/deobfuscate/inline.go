package deobfuscate

import (
	"strings"

	"its-hmny.dev/minic-obfuscator/pkg/ast"
)

// ReconstructInlines finds a contiguous run of declarations introduced by the
// obfuscator's inliner — each named "_inl_<callee>_<param-or-result>" — and
// folds them back into a single call to <callee>, with the hoisted argument
// declarations becoming the call's argument list in their original order.
// Matching is by name: arity (how many "_inl_<callee>_" declarations precede
// the result) plus the shared callee name recovers which declarations belong
// to the same original call; the callee's own definition is not consulted.
// Side-effecting arguments are preserved in declaration order rather than
// re-evaluated at the call site, since their temporaries may already have
// been consumed elsewhere.
func ReconstructInlines(program *ast.Program) error {
	for _, fn := range program.Functions {
		fn.Body = reconstructStatements(fn.Body)
	}
	return nil
}

func reconstructStatements(stmts []ast.Statement) []ast.Statement {
	var out []ast.Statement
	i := 0
	for i < len(stmts) {
		run, consumed := matchInlineRun(stmts[i:])
		if consumed > 0 {
			out = append(out, run)
			i += consumed
			continue
		}
		out = append(out, descendReconstruct(stmts[i]))
		i++
	}
	return out
}

// matchInlineRun looks for one or more "_inl_<callee>_" VariableDecls at the
// head of stmts that all share the same callee; the statement after the run is
// not inspected. It returns a VariableDecl that binds the last declaration's
// name to a reconstructed FuncCall, and how many original statements it
// replaces.
func matchInlineRun(stmts []ast.Statement) (ast.Statement, int) {
	if len(stmts) == 0 {
		return nil, 0
	}
	first, ok := stmts[0].(*ast.VariableDecl)
	if !ok {
		return nil, 0
	}
	callee, _, ok := splitInlineName(first.Name)
	if !ok {
		return nil, 0
	}

	n := 0
	var args []ast.Expression
	var resultDecl *ast.VariableDecl
	for n < len(stmts) {
		decl, ok := stmts[n].(*ast.VariableDecl)
		if !ok {
			break
		}
		c, _, ok := splitInlineName(decl.Name)
		if !ok || c != callee {
			break
		}
		resultDecl = decl
		n++
	}
	if resultDecl == nil || n == 0 {
		return nil, 0
	}
	for _, decl := range stmts[:n-1] {
		args = append(args, decl.(*ast.VariableDecl).Init)
	}

	call := &ast.FuncCall{Callee: callee, Args: args}
	return ast.NewVariableDecl(resultDecl.Type, resultDecl.Name, call), n
}

// splitInlineName parses "_inl_<callee>_<rest>" back into callee and rest.
func splitInlineName(name string) (callee, rest string, ok bool) {
	const prefix = "_inl_"
	if !strings.HasPrefix(name, prefix) {
		return "", "", false
	}
	body := name[len(prefix):]
	idx := strings.LastIndex(body, "_")
	if idx < 0 {
		return "", "", false
	}
	return body[:idx], body[idx+1:], true
}

func descendReconstruct(s ast.Statement) ast.Statement {
	switch v := s.(type) {
	case *ast.IfStmt:
		return &ast.IfStmt{Cond: v.Cond, Then: reconstructStatements(v.Then), Else: reconstructStatements(v.Else)}
	case *ast.WhileStmt:
		return &ast.WhileStmt{Cond: v.Cond, Body: reconstructStatements(v.Body)}
	case *ast.ForStmt:
		return &ast.ForStmt{Init: v.Init, Cond: v.Cond, Post: v.Post, Body: reconstructStatements(v.Body)}
	case *ast.Block:
		return &ast.Block{Body: reconstructStatements(v.Body)}
	default:
		return s
	}
}
