package obfuscate

import (
	"fmt"

	"its-hmny.dev/minic-obfuscator/pkg/ast"
)

// FlattenControlFlow rewrites each function body into the "dispatcher loop"
// shape: the body is partitioned into basic blocks, each block becomes one
// case of a switch on a state variable, and a surrounding while(1) loop
// re-enters the switch after every block runs. Block N's final statement sets
// the state variable to whichever block should run next; falling off the end
// of the function sets it to the sentinel "end" state, which breaks the loop.
//
// Grounded on the monotonic-counter idiom in the teacher's
// jack/lowering.go HandleWhileStmt/HandleIfStmt (a per-call counter minted
// once and threaded through every label it generates).
func FlattenControlFlow(program *ast.Program) error {
	for _, fn := range program.Functions {
		flattened, err := flattenFunction(fn)
		if err != nil {
			return fmt.Errorf("flatten: function %q: %w", fn.Name, err)
		}
		fn.Body = flattened
	}
	return nil
}

const stateVar = "state"

func flattenFunction(fn *ast.Function) ([]ast.Statement, error) {
	blocks := partitionBlocks(fn.Body)
	if len(blocks) == 0 {
		return fn.Body, nil
	}

	cases := make([]ast.SwitchCase, 0, len(blocks)+1)
	for i, block := range blocks {
		nextState := i + 1
		if nextState >= len(blocks) {
			nextState = -1 // sentinel: end
		}
		body := append([]ast.Statement{}, block...)
		body = append(body, advanceState(nextState))
		cases = append(cases, ast.SwitchCase{Value: i, Body: body})
	}
	cases = append(cases, ast.SwitchCase{Value: -1, Body: []ast.Statement{ast.NewGoto("dispatcher_end")}})

	dispatcher := &ast.Switch{
		Selector: ast.NewVariable(stateVar),
		Cases:    cases,
	}

	loop := &ast.WhileStmt{
		Cond: ast.NewIntLiteral(1),
		Body: []ast.Statement{dispatcher},
	}

	return []ast.Statement{
		ast.NewVariableDecl("int", stateVar, ast.NewIntLiteral(0)),
		loop,
		ast.NewLabel("dispatcher_end"),
	}, nil
}

func advanceState(next int) ast.Statement {
	return ast.NewAssignment(stateVar, ast.NewIntLiteral(next))
}

// partitionBlocks splits a flat statement list into basic blocks at every
// Label and every statement that can transfer control (If/While/For/Switch/
// Return/Goto end a block). Only top-level statements are split; nested
// control structures stay nested inside their block rather than being
// flattened themselves, a deliberately conservative choice so flattening
// always terminates and never needs to reconstruct nested gotos.
func partitionBlocks(stmts []ast.Statement) [][]ast.Statement {
	var blocks [][]ast.Statement
	var current []ast.Statement

	flush := func() {
		if len(current) > 0 {
			blocks = append(blocks, current)
			current = nil
		}
	}

	for _, s := range stmts {
		current = append(current, s)
		switch s.(type) {
		case *ast.IfStmt, *ast.WhileStmt, *ast.ForStmt, *ast.Switch, *ast.Return, *ast.Goto, *ast.Label:
			flush()
		}
	}
	flush()
	return blocks
}
