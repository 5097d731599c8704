package printer

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"its-hmny.dev/minic-obfuscator/pkg/ast"
)

func sampleProgram() *ast.Program {
	return &ast.Program{Functions: []*ast.Function{
		{
			ReturnType: "int",
			Name:       "square",
			Params:     []ast.Parameter{{Type: "int", Name: "n"}},
			Body: []ast.Statement{
				&ast.Return{Value: &ast.BinaryOp{Op: "*", Left: ast.NewVariable("n"), Right: ast.NewVariable("n")}},
			},
		},
		{
			ReturnType: "int",
			Name:       "main",
			Body: []ast.Statement{
				ast.NewVariableDecl("int", "r", &ast.FuncCall{Callee: "square", Args: []ast.Expression{ast.NewIntLiteral(4)}}),
				&ast.IfStmt{
					Cond: &ast.BinaryOp{Op: ">", Left: ast.NewVariable("r"), Right: ast.NewIntLiteral(10)},
					Then: []ast.Statement{&ast.Print{Format: "big: %d\\n", Args: []ast.Expression{ast.NewVariable("r")}}},
					Else: []ast.Statement{&ast.Print{Format: "small: %d\\n", Args: []ast.Expression{ast.NewVariable("r")}}},
				},
				&ast.Return{Value: ast.NewIntLiteral(0)},
			},
		},
	}}
}

func TestGenerateProducesParenthesizedOutput(t *testing.T) {
	cg := NewCodeGenerator()
	source, err := cg.Generate(sampleProgram())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	snaps.MatchSnapshot(t, source)
}

func TestGenerateSwitchAndGoto(t *testing.T) {
	program := &ast.Program{Functions: []*ast.Function{{
		ReturnType: "int",
		Name:       "main",
		Body: []ast.Statement{
			ast.NewVariableDecl("int", "state", ast.NewIntLiteral(0)),
			&ast.WhileStmt{
				Cond: ast.NewIntLiteral(1),
				Body: []ast.Statement{
					&ast.Switch{
						Selector: ast.NewVariable("state"),
						Cases: []ast.SwitchCase{
							{Value: 0, Body: []ast.Statement{ast.NewGoto("dispatcher_end")}},
							{Value: -1, Body: []ast.Statement{ast.NewGoto("dispatcher_end")}},
						},
					},
				},
			},
			ast.NewLabel("dispatcher_end"),
			&ast.Return{Value: ast.NewIntLiteral(0)},
		},
	}}}

	cg := NewCodeGenerator()
	source, err := cg.Generate(program)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	snaps.MatchSnapshot(t, source)
}

func TestGenerateBoolAndCharLiterals(t *testing.T) {
	program := &ast.Program{Functions: []*ast.Function{{
		ReturnType: "int",
		Name:       "main",
		Body: []ast.Statement{
			ast.NewVariableDecl("bool", "done", ast.NewBoolLiteral(true)),
			ast.NewVariableDecl("char", "c", ast.NewCharLiteral('x')),
			&ast.Return{Value: ast.NewIntLiteral(0)},
		},
	}}}

	cg := NewCodeGenerator()
	source, err := cg.Generate(program)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	snaps.MatchSnapshot(t, source)
}

func TestGenerateVoidReturnAndArglessCalls(t *testing.T) {
	program := &ast.Program{Functions: []*ast.Function{{
		ReturnType: "void",
		Name:       "greet",
		Body: []ast.Statement{
			&ast.Print{Format: "hello\\n"},
			&ast.Return{},
		},
	}}}

	cg := NewCodeGenerator()
	source, err := cg.Generate(program)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	snaps.MatchSnapshot(t, source)
}
