package obfuscate

import (
	"testing"

	"its-hmny.dev/minic-obfuscator/pkg/ast"
)

func sampleProgram() *ast.Program {
	main := &ast.Function{
		ReturnType: "int",
		Name:       "main",
		Body: []ast.Statement{
			ast.NewVariableDecl("int", "x", ast.NewIntLiteral(1)),
			ast.NewAssignment("x", ast.NewBinaryOp("+", ast.NewVariable("x"), ast.NewIntLiteral(1))),
			&ast.Return{Value: ast.NewVariable("x")},
		},
	}
	return &ast.Program{Functions: []*ast.Function{main}}
}

func TestRenameLeavesMainAloneAndRenamesLocals(t *testing.T) {
	prog := sampleProgram()
	if err := Rename(prog); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if prog.Functions[0].Name != "main" {
		t.Fatalf("main was renamed to %q", prog.Functions[0].Name)
	}
	decl, ok := prog.Functions[0].Body[0].(*ast.VariableDecl)
	if !ok || decl.Name != "_v0" {
		t.Fatalf("expected first local renamed to _v0, got %+v", prog.Functions[0].Body[0])
	}
}

func TestInsertDeadCodeKeepsOriginalStatementsReachable(t *testing.T) {
	prog := sampleProgram()
	original := append([]ast.Statement{}, prog.Functions[0].Body...)
	originalLen := len(original)
	if err := InsertDeadCode(prog); err != nil {
		t.Fatalf("InsertDeadCode: %v", err)
	}
	if got := len(prog.Functions[0].Body); got <= originalLen {
		t.Fatalf("expected extra statements, got %d (was %d)", got, originalLen)
	}
	for _, want := range original {
		found := false
		for _, s := range prog.Functions[0].Body {
			if s == want {
				found = true
			}
		}
		if !found {
			t.Fatalf("original statement %+v is no longer at the top level of the body", want)
		}
	}
}

func TestApplyRunsOnlyEnabledPasses(t *testing.T) {
	prog := sampleProgram()
	if err := Apply(prog, Options{Dead: true}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if prog.Functions[0].Name != "main" {
		t.Fatalf("rename should not have run")
	}
	if decl, ok := prog.Functions[0].Body[1].(*ast.VariableDecl); !ok || decl.Name != "x" {
		t.Fatalf("rename should not have run: expected local x untouched, got %+v", prog.Functions[0].Body[1])
	}
}

func TestInlineFunctionsFoldsSimpleCallee(t *testing.T) {
	callee := &ast.Function{
		ReturnType: "int",
		Name:       "square",
		Params:     []ast.Parameter{{Type: "int", Name: "n"}},
		Body: []ast.Statement{
			ast.NewVariableDecl("int", "r", ast.NewBinaryOp("*", ast.NewVariable("n"), ast.NewVariable("n"))),
			&ast.Return{Value: ast.NewVariable("r")},
		},
	}
	caller := &ast.Function{
		ReturnType: "int",
		Name:       "main",
		Body: []ast.Statement{
			ast.NewVariableDecl("int", "x", &ast.FuncCall{Callee: "square", Args: []ast.Expression{ast.NewIntLiteral(3)}}),
			&ast.Return{Value: ast.NewVariable("x")},
		},
	}
	prog := &ast.Program{Functions: []*ast.Function{callee, caller}}

	if err := InlineFunctions(prog); err != nil {
		t.Fatalf("InlineFunctions: %v", err)
	}

	mainFn := prog.FuncByName("main")
	for _, s := range mainFn.Body {
		if decl, ok := s.(*ast.VariableDecl); ok {
			if _, isCall := decl.Init.(*ast.FuncCall); isCall {
				t.Fatalf("call to square was not inlined: %+v", decl)
			}
		}
	}
}
