package obfuscate

import (
	"fmt"

	"its-hmny.dev/minic-obfuscator/pkg/ast"
)

// maxInlineArity bounds which callees InlineFunctions will fold into their
// call sites: spec.md §4.2.5 caps it at 6 to keep substitution mechanical
// (beyond that, positional argument-to-parameter mapping becomes error-prone
// to verify by eye, and this pass never recurses into an already-inlined
// callee).
const maxInlineArity = 6

// InlineFunctions replaces calls to small, decl-then-return-shaped functions
// with the callee's declaration and return expression spliced directly into
// the caller, after hoisting any side-effecting argument into its own
// temporary so evaluation order is preserved. It never inlines a function
// into itself, and the declarations it splices in are not scanned again for
// further calls, so it never recurses.
func InlineFunctions(program *ast.Program) error {
	candidates := collectInlineCandidates(program)
	for _, fn := range program.Functions {
		inlined, err := inlineCallsIn(fn.Body, fn.Name, candidates)
		if err != nil {
			return fmt.Errorf("inline: function %q: %w", fn.Name, err)
		}
		fn.Body = inlined
	}
	return nil
}

type inlineCandidate struct {
	fn     *ast.Function
	decl   *ast.VariableDecl
	result string
}

// collectInlineCandidates finds functions whose body is exactly
// "<type> <name> = <init>; return <name>;" and whose arity fits the limit.
func collectInlineCandidates(program *ast.Program) map[string]inlineCandidate {
	out := make(map[string]inlineCandidate)
	for _, fn := range program.Functions {
		if len(fn.Params) > maxInlineArity || len(fn.Body) != 2 {
			continue
		}
		decl, ok := fn.Body[0].(*ast.VariableDecl)
		if !ok || decl.Init == nil {
			continue
		}
		ret, ok := fn.Body[1].(*ast.Return)
		if !ok || ret.Value == nil {
			continue
		}
		v, ok := ret.Value.(*ast.Variable)
		if !ok || v.Name != decl.Name {
			continue
		}
		out[fn.Name] = inlineCandidate{fn: fn, decl: decl, result: decl.Name}
	}
	return out
}

func inlineCallsIn(stmts []ast.Statement, callerName string, candidates map[string]inlineCandidate) ([]ast.Statement, error) {
	var out []ast.Statement
	for _, s := range stmts {
		expanded, err := inlineCallsInStatement(s, callerName, candidates)
		if err != nil {
			return nil, err
		}
		out = append(out, expanded...)
	}
	return out, nil
}

func inlineCallsInStatement(s ast.Statement, callerName string, candidates map[string]inlineCandidate) ([]ast.Statement, error) {
	switch v := s.(type) {
	case *ast.ExpressionStmt:
		pre, expr := hoistCall(v.Expr, callerName, candidates)
		return append(pre, &ast.ExpressionStmt{Expr: expr}), nil
	case *ast.Assignment:
		pre, expr := hoistCall(v.Value, callerName, candidates)
		return append(pre, &ast.Assignment{Target: v.Target, Value: expr}), nil
	case *ast.VariableDecl:
		if v.Init == nil {
			return []ast.Statement{v}, nil
		}
		pre, expr := hoistCall(v.Init, callerName, candidates)
		return append(pre, &ast.VariableDecl{Type: v.Type, Name: v.Name, Init: expr}), nil
	case *ast.Return:
		if v.Value == nil {
			return []ast.Statement{v}, nil
		}
		pre, expr := hoistCall(v.Value, callerName, candidates)
		return append(pre, &ast.Return{Value: expr}), nil
	case *ast.IfStmt:
		then, err := inlineCallsIn(v.Then, callerName, candidates)
		if err != nil {
			return nil, err
		}
		els, err := inlineCallsIn(v.Else, callerName, candidates)
		if err != nil {
			return nil, err
		}
		return []ast.Statement{&ast.IfStmt{Cond: v.Cond, Then: then, Else: els}}, nil
	case *ast.WhileStmt:
		body, err := inlineCallsIn(v.Body, callerName, candidates)
		if err != nil {
			return nil, err
		}
		return []ast.Statement{&ast.WhileStmt{Cond: v.Cond, Body: body}}, nil
	case *ast.ForStmt:
		body, err := inlineCallsIn(v.Body, callerName, candidates)
		if err != nil {
			return nil, err
		}
		return []ast.Statement{&ast.ForStmt{Init: v.Init, Cond: v.Cond, Post: v.Post, Body: body}}, nil
	case *ast.Block:
		body, err := inlineCallsIn(v.Body, callerName, candidates)
		if err != nil {
			return nil, err
		}
		return []ast.Statement{&ast.Block{Body: body}}, nil
	default:
		return []ast.Statement{s}, nil
	}
}

// hoistCall rewrites expr, replacing the first inlinable call it finds at the
// top level with a reference to its result temporary, returning the
// statements that must run before expr (the callee's spliced declaration,
// with its parameters bound to hoisted argument temporaries).
func hoistCall(expr ast.Expression, callerName string, candidates map[string]inlineCandidate) ([]ast.Statement, ast.Expression) {
	call, ok := expr.(*ast.FuncCall)
	if !ok {
		return nil, expr
	}
	cand, ok := candidates[call.Callee]
	if !ok || call.Callee == callerName {
		return nil, expr
	}

	var pre []ast.Statement
	binding := make(map[string]ast.Expression, len(cand.fn.Params))
	for i, param := range cand.fn.Params {
		if i >= len(call.Args) {
			break
		}
		tmpName := fmt.Sprintf("_inl_%s_%s", cand.fn.Name, param.Name)
		pre = append(pre, ast.NewVariableDecl(param.Type, tmpName, call.Args[i]))
		binding[param.Name] = ast.NewVariable(tmpName)
	}

	resultName := fmt.Sprintf("_inl_%s_%s", cand.fn.Name, cand.result)
	init := substituteVars(cand.decl.Init, binding)
	pre = append(pre, ast.NewVariableDecl(cand.decl.Type, resultName, init))

	return pre, ast.NewVariable(resultName)
}

func substituteVars(expr ast.Expression, binding map[string]ast.Expression) ast.Expression {
	rebuilt := ast.WithChildren(expr, substituteChildren(ast.Children(expr), binding))
	if v, ok := rebuilt.(*ast.Variable); ok {
		if replacement, ok := binding[v.Name]; ok {
			return replacement
		}
	}
	return rebuilt.(ast.Expression)
}

func substituteChildren(children []ast.Node, binding map[string]ast.Expression) []ast.Node {
	out := make([]ast.Node, len(children))
	for i, c := range children {
		if expr, ok := c.(ast.Expression); ok {
			out[i] = substituteVars(expr, binding)
		} else {
			out[i] = c
		}
	}
	return out
}
