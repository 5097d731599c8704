package pipeline

import (
	"strings"
	"testing"

	"its-hmny.dev/minic-obfuscator/pkg/ast"
	"its-hmny.dev/minic-obfuscator/pkg/deobfuscate"
	"its-hmny.dev/minic-obfuscator/pkg/obfuscate"
	"its-hmny.dev/minic-obfuscator/pkg/parser"
	"its-hmny.dev/minic-obfuscator/pkg/printer"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	p := parser.NewParser(strings.NewReader(src))
	program, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return program
}

func render(t *testing.T, program *ast.Program) string {
	t.Helper()
	cg := printer.NewCodeGenerator()
	source, err := cg.Generate(program)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return source
}

// Scenario 1: expr simplification folds "2 + 0" down to "2".
func TestScenarioExpressionSimplificationFoldsAdditiveIdentity(t *testing.T) {
	program := parse(t, `int main(){ int x = 2 + 0; printf("%d", x); return 0; }`)
	out, err := Run(Deobfuscate, program, Options{Expr: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	decl := out.Functions[0].Body[0].(*ast.VariableDecl)
	lit, ok := decl.Init.(*ast.Literal)
	if !ok || lit.Int != 2 {
		t.Fatalf("expected folded literal 2, got %+v", decl.Init)
	}
}

// Scenario 2: dead-code removal strips unused_* assignment, the unreachable
// branch, and leaves only the live print and return.
func TestScenarioDeadCodeRemovalLeavesOnlyLiveStatements(t *testing.T) {
	program := parse(t, `int main(){
		unused_q = 5;
		if (0) { printf("Unreachable"); }
		printf("ok");
		return 0;
	}`)

	out, err := Run(Deobfuscate, program, Options{Dead: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	body := out.Functions[0].Body
	if len(body) != 2 {
		t.Fatalf("expected 2 surviving statements, got %d: %+v", len(body), body)
	}
	if _, ok := body[0].(*ast.Print); !ok {
		t.Fatalf("expected first survivor to be the 'ok' print, got %+v", body[0])
	}
	if _, ok := body[1].(*ast.Return); !ok {
		t.Fatalf("expected second survivor to be the return, got %+v", body[1])
	}
}

// Scenario 3: flatten then unflatten round-trips to a body with no switch,
// no goto, and no variable named "state".
func TestScenarioFlattenUnflattenRoundTrip(t *testing.T) {
	program := parse(t, `int main(){ int a = 1; int b = 2; printf("%d", a + b); return 0; }`)

	flattened, err := Run(Obfuscate, program, Options{Flow: true})
	if err != nil {
		t.Fatalf("Run(Obfuscate): %v", err)
	}

	var switches []*ast.Switch
	ast.Collect[*ast.Switch](&ast.Block{Body: flattened.Functions[0].Body}, &switches, func(n ast.Node, acc *[]*ast.Switch) {
		if sw, ok := n.(*ast.Switch); ok {
			*acc = append(*acc, sw)
		}
	})
	if len(switches) == 0 {
		t.Fatalf("expected flattening to introduce a dispatcher switch")
	}

	restored, err := Run(Deobfuscate, flattened, Options{Flow: true})
	if err != nil {
		t.Fatalf("Run(Deobfuscate): %v", err)
	}

	for _, stmt := range restored.Functions[0].Body {
		switch s := stmt.(type) {
		case *ast.Switch:
			t.Fatalf("unexpected leftover switch: %+v", s)
		case *ast.Goto:
			t.Fatalf("unexpected leftover goto: %+v", s)
		case *ast.VariableDecl:
			if s.Name == "state" {
				t.Fatalf("unexpected leftover 'state' variable")
			}
		}
	}
}

// Scenario 4: inline then reconstruct round-trips the call.
func TestScenarioInlineReconstructRoundTrip(t *testing.T) {
	program := parse(t, `
		int add(int x, int y) { int r = x + y; return r; }
		int main() { int t = add(2, 3); printf("%d", t); return 0; }
	`)

	inlined, err := Run(Obfuscate, program, Options{Inline: true})
	if err != nil {
		t.Fatalf("Run(Obfuscate): %v", err)
	}
	var calls []*ast.FuncCall
	ast.Collect[*ast.FuncCall](&ast.Block{Body: inlined.FuncByName("main").Body}, &calls, func(n ast.Node, acc *[]*ast.FuncCall) {
		if call, ok := n.(*ast.FuncCall); ok {
			*acc = append(*acc, call)
		}
	})
	if len(calls) != 0 {
		t.Fatalf("expected no remaining calls after inlining, got %+v", calls)
	}

	if err := deobfuscate.Apply(inlined, deobfuscate.Options{Inline: true}); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	var restoredCalls []*ast.FuncCall
	ast.Collect[*ast.FuncCall](&ast.Block{Body: inlined.FuncByName("main").Body}, &restoredCalls, func(n ast.Node, acc *[]*ast.FuncCall) {
		if call, ok := n.(*ast.FuncCall); ok {
			*acc = append(*acc, call)
		}
	})
	if len(restoredCalls) != 1 || restoredCalls[0].Callee != "add" {
		t.Fatalf("expected a reconstructed call to 'add', got %+v", restoredCalls)
	}
}

// Scenario 6: double negation collapses under expr simplification.
func TestScenarioDoubleNegationCollapses(t *testing.T) {
	program := &ast.Program{Functions: []*ast.Function{{
		Name: "main", ReturnType: "int",
		Body: []ast.Statement{
			&ast.Return{Value: &ast.UnaryOp{Op: "!", Operand: &ast.UnaryOp{Op: "!",
				Operand: &ast.BinaryOp{Op: "<", Left: ast.NewVariable("a"), Right: ast.NewVariable("b")}}}},
		},
	}}}

	out, err := Run(Deobfuscate, program, Options{Expr: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	ret := out.Functions[0].Body[0].(*ast.Return)
	bin, ok := ret.Value.(*ast.BinaryOp)
	if !ok || bin.Op != "<" {
		t.Fatalf("expected double negation collapsed to bare comparison, got %+v", ret.Value)
	}
}

// Expression simplifier idempotence: applying it twice yields the same AST
// render as applying it once.
func TestExpressionSimplifierIsIdempotent(t *testing.T) {
	program := parse(t, `int main(){ int x = (1 + 2) + 0; return x; }`)
	once, err := Run(Deobfuscate, program, Options{Expr: true})
	if err != nil {
		t.Fatalf("Run once: %v", err)
	}
	onceSrc := render(t, once)

	twice, err := Run(Deobfuscate, once, Options{Expr: true})
	if err != nil {
		t.Fatalf("Run twice: %v", err)
	}
	twiceSrc := render(t, twice)

	if onceSrc != twiceSrc {
		t.Fatalf("expression simplifier is not idempotent:\nonce:  %s\ntwice: %s", onceSrc, twiceSrc)
	}
}

// Identity under the empty pipeline: applying zero passes leaves the
// pretty-printed output unchanged.
func TestIdentityUnderEmptyPipeline(t *testing.T) {
	program := parse(t, `int main(){ int x = 1; return x; }`)
	before := render(t, program)

	out, err := Run(Obfuscate, program, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	after := render(t, out)

	if before != after {
		t.Fatalf("expected identity output for empty pipeline:\nbefore: %s\nafter:  %s", before, after)
	}
}

func TestObfuscateApplyUsedDirectlyStaysIndependentOfPipeline(t *testing.T) {
	program := parse(t, `int main(){ int x = 1; return x; }`)
	if err := obfuscate.Apply(program, obfuscate.Options{Rename: true}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	decl := program.Functions[0].Body[0].(*ast.VariableDecl)
	if decl.Name != "_v0" {
		t.Fatalf("expected direct obfuscate.Apply to behave identically to pipeline.Run, got %q", decl.Name)
	}
}
