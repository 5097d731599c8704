package deobfuscate

import (
	"testing"

	"its-hmny.dev/minic-obfuscator/pkg/ast"
)

func TestRemoveDeadCodeStripsUnusedDeclAndUnreachableBranch(t *testing.T) {
	fn := &ast.Function{
		Name: "main",
		Body: []ast.Statement{
			ast.NewVariableDecl("int", "unused_0", ast.NewIntLiteral(0)),
			&ast.Return{Value: ast.NewIntLiteral(1)},
			&ast.IfStmt{Cond: ast.NewIntLiteral(0), Then: []ast.Statement{&ast.Print{Format: "Unreachable"}}},
		},
	}
	prog := &ast.Program{Functions: []*ast.Function{fn}}

	if err := RemoveDeadCode(prog); err != nil {
		t.Fatalf("RemoveDeadCode: %v", err)
	}
	if len(fn.Body) != 1 {
		t.Fatalf("expected only the return to survive, got %+v", fn.Body)
	}
}

func TestRemoveDeadCodeIsIdempotent(t *testing.T) {
	fn := &ast.Function{Name: "main", Body: []ast.Statement{&ast.Return{Value: ast.NewIntLiteral(1)}}}
	prog := &ast.Program{Functions: []*ast.Function{fn}}

	if err := RemoveDeadCode(prog); err != nil {
		t.Fatalf("first pass: %v", err)
	}
	first := len(fn.Body)
	if err := RemoveDeadCode(prog); err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if len(fn.Body) != first {
		t.Fatalf("not idempotent: %d then %d", first, len(fn.Body))
	}
}

func TestSimplifyExpressionsFoldsConstants(t *testing.T) {
	fn := &ast.Function{
		Name: "main",
		Body: []ast.Statement{
			&ast.Return{Value: ast.NewBinaryOp("+", ast.NewIntLiteral(2), ast.NewIntLiteral(3))},
		},
	}
	prog := &ast.Program{Functions: []*ast.Function{fn}}

	if err := SimplifyExpressions(prog); err != nil {
		t.Fatalf("SimplifyExpressions: %v", err)
	}
	ret := fn.Body[0].(*ast.Return)
	lit, ok := ret.Value.(*ast.Literal)
	if !ok || lit.Int != 5 {
		t.Fatalf("expected folded literal 5, got %+v", ret.Value)
	}
}

func TestSimplifyExpressionsDropsAdditiveIdentity(t *testing.T) {
	fn := &ast.Function{
		Name: "main",
		Body: []ast.Statement{
			&ast.Return{Value: ast.NewBinaryOp("+", ast.NewVariable("x"), ast.NewIntLiteral(0))},
		},
	}
	prog := &ast.Program{Functions: []*ast.Function{fn}}

	if err := SimplifyExpressions(prog); err != nil {
		t.Fatalf("SimplifyExpressions: %v", err)
	}
	ret := fn.Body[0].(*ast.Return)
	if v, ok := ret.Value.(*ast.Variable); !ok || v.Name != "x" {
		t.Fatalf("expected bare variable x, got %+v", ret.Value)
	}
}

func TestRecoverNamesAssignsFriendlyNames(t *testing.T) {
	fn := &ast.Function{
		Name:   "_f0",
		Params: []ast.Parameter{{Type: "int", Name: "_v0"}},
		Body: []ast.Statement{
			ast.NewVariableDecl("int", "_v1", ast.NewVariable("_v0")),
			&ast.Return{Value: ast.NewVariable("_v1")},
		},
	}
	prog := &ast.Program{Functions: []*ast.Function{fn}}

	if err := RecoverNames(prog); err != nil {
		t.Fatalf("RecoverNames: %v", err)
	}
	if fn.Name != "func1" {
		t.Fatalf("expected function renamed to func1, got %q", fn.Name)
	}
	if fn.Params[0].Name != "a" {
		t.Fatalf("expected first parameter renamed to a, got %q", fn.Params[0].Name)
	}
}

func TestUnflattenControlFlowRebuildsDispatcher(t *testing.T) {
	body := []ast.Statement{
		ast.NewVariableDecl("int", "state", ast.NewIntLiteral(0)),
		&ast.WhileStmt{
			Cond: ast.NewIntLiteral(1),
			Body: []ast.Statement{
				&ast.Switch{
					Selector: ast.NewVariable("state"),
					Cases: []ast.SwitchCase{
						{Value: 0, Body: []ast.Statement{
							ast.NewVariableDecl("int", "x", ast.NewIntLiteral(1)),
							ast.NewAssignment("state", ast.NewIntLiteral(1)),
						}},
						{Value: 1, Body: []ast.Statement{
							&ast.Return{Value: ast.NewVariable("x")},
							ast.NewAssignment("state", ast.NewIntLiteral(-1)),
						}},
						{Value: -1, Body: []ast.Statement{ast.NewGoto("dispatcher_end")}},
					},
				},
			},
		},
		ast.NewLabel("dispatcher_end"),
	}
	fn := &ast.Function{Name: "main", Body: body}
	prog := &ast.Program{Functions: []*ast.Function{fn}}

	if err := UnflattenControlFlow(prog); err != nil {
		t.Fatalf("UnflattenControlFlow: %v", err)
	}
	if len(fn.Body) != 2 {
		t.Fatalf("expected 2 statements after unflattening, got %d: %+v", len(fn.Body), fn.Body)
	}
	if _, ok := fn.Body[0].(*ast.VariableDecl); !ok {
		t.Fatalf("expected first statement to be the declaration of x, got %T", fn.Body[0])
	}
	if _, ok := fn.Body[1].(*ast.Return); !ok {
		t.Fatalf("expected second statement to be the return, got %T", fn.Body[1])
	}
}

// RecoverNames runs ahead of UnflattenControlFlow in the nominal pass order,
// so a dispatcher's "state" declaration must survive Rename untouched for
// UnflattenControlFlow's exact-name strip to still find it afterward.
func TestRecoverNamesThenUnflattenStripsDispatcherState(t *testing.T) {
	body := []ast.Statement{
		ast.NewVariableDecl("int", "state", ast.NewIntLiteral(0)),
		&ast.WhileStmt{
			Cond: ast.NewIntLiteral(1),
			Body: []ast.Statement{
				&ast.Switch{
					Selector: ast.NewVariable("state"),
					Cases: []ast.SwitchCase{
						{Value: 0, Body: []ast.Statement{
							ast.NewVariableDecl("int", "x", ast.NewIntLiteral(1)),
							ast.NewAssignment("state", ast.NewIntLiteral(1)),
						}},
						{Value: 1, Body: []ast.Statement{
							&ast.Return{Value: ast.NewVariable("x")},
							ast.NewAssignment("state", ast.NewIntLiteral(-1)),
						}},
						{Value: -1, Body: []ast.Statement{ast.NewGoto("dispatcher_end")}},
					},
				},
			},
		},
		ast.NewLabel("dispatcher_end"),
	}
	fn := &ast.Function{Name: "main", Body: body}
	prog := &ast.Program{Functions: []*ast.Function{fn}}

	if err := RecoverNames(prog); err != nil {
		t.Fatalf("RecoverNames: %v", err)
	}
	if err := UnflattenControlFlow(prog); err != nil {
		t.Fatalf("UnflattenControlFlow: %v", err)
	}

	for _, s := range fn.Body {
		if decl, ok := s.(*ast.VariableDecl); ok && decl.Name == "state" {
			t.Fatalf("expected 'state' declaration stripped, but it survived Rename+Control: %+v", fn.Body)
		}
		if label, ok := s.(*ast.Label); ok && label.Name == "dispatcher_end" {
			t.Fatalf("expected 'dispatcher_end' label stripped, but it survived Rename+Control: %+v", fn.Body)
		}
	}
	if len(fn.Body) != 2 {
		t.Fatalf("expected 2 surviving statements after Rename+Control, got %d: %+v", len(fn.Body), fn.Body)
	}
}
