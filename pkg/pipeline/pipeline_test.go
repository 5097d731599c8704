package pipeline

import (
	"errors"
	"testing"

	"its-hmny.dev/minic-obfuscator/pkg/ast"
)

func program() *ast.Program {
	return &ast.Program{Functions: []*ast.Function{{
		Name: "main",
		Body: []ast.Statement{
			ast.NewVariableDecl("int", "x", ast.NewIntLiteral(1)),
			&ast.Return{Value: ast.NewVariable("x")},
		},
	}}}
}

func TestRunObfuscateRenamesWhenEnabled(t *testing.T) {
	p := program()
	out, err := Run(Obfuscate, p, Options{Rename: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	decl := out.Functions[0].Body[0].(*ast.VariableDecl)
	if decl.Name != "_v0" {
		t.Fatalf("expected renamed local, got %q", decl.Name)
	}
}

func TestRunDeobfuscateNoopOnCleanInput(t *testing.T) {
	p := program()
	out, err := Run(Deobfuscate, p, Options{All: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(out.Functions[0].Body) != 2 {
		t.Fatalf("expected no structural change, got %+v", out.Functions[0].Body)
	}
}

func TestRunWrapsPassFailureAsPassInvariant(t *testing.T) {
	// A dispatcher-shaped while loop with a case whose body is empty can never
	// come from the flattener; the un-flattener must reject it instead of
	// panicking or silently fabricating output.
	p := &ast.Program{Functions: []*ast.Function{{
		Name: "main",
		Body: []ast.Statement{
			&ast.WhileStmt{
				Cond: ast.NewIntLiteral(1),
				Body: []ast.Statement{
					&ast.Switch{
						Selector: ast.NewVariable("state"),
						Cases:    []ast.SwitchCase{{Value: 0, Body: nil}},
					},
				},
			},
		},
	}}}

	_, err := Run(Deobfuscate, p, Options{Flow: true})
	if err == nil {
		t.Fatalf("expected an error for a malformed dispatcher")
	}
	if !errors.Is(err, ErrPassInvariant) {
		t.Fatalf("expected ErrPassInvariant, got %v", err)
	}
}
