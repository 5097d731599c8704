package deobfuscate

import (
	"fmt"

	"its-hmny.dev/minic-obfuscator/pkg/ast"
)

// UnflattenControlFlow detects the dispatcher-loop shape the control-flow
// flattener produces — a while loop whose body is a single switch — and
// rebuilds the original straight-line block by walking the state chain from 0
// and concatenating each case's body in that order. A state-indexed map of
// case bodies (mirroring the teacher's LocationResolver-style map-of-functions
// dispatch) backs the walk. An "int state" declaration and a "dispatcher_end"
// label are then dropped by exact name. A cycle in the state chain makes the
// pass return an error rather than loop forever, since that can only mean the
// input wasn't actually produced by the flattener.
func UnflattenControlFlow(program *ast.Program) error {
	for _, fn := range program.Functions {
		rebuilt, ok, err := unflattenFunction(fn.Body)
		if err != nil {
			return fmt.Errorf("control: function %q: %w", fn.Name, err)
		}
		if ok {
			fn.Body = rebuilt
		}
	}
	return nil
}

// dispatcherShape is everything unflattenFunction needs out of a recognized
// dispatcher: the per-case statement bodies (state advance stripped) and the
// state->next-case map extracted from each case's trailing assignment.
type dispatcherShape struct {
	cases map[int][]ast.Statement
	next  map[int]int // -1 means "end"
}

func unflattenFunction(body []ast.Statement) ([]ast.Statement, bool, error) {
	loop, loopIdx := findDispatcherLoop(body)
	if loop == nil {
		return body, false, nil
	}

	shape, err := extractDispatcherShape(loop)
	if err != nil {
		return nil, false, err
	}

	chain, err := walkStateChain(shape)
	if err != nil {
		return nil, false, err
	}

	var rebuilt []ast.Statement
	rebuilt = append(rebuilt, body[:loopIdx]...)
	rebuilt = append(rebuilt, chain...)
	rebuilt = append(rebuilt, body[loopIdx+1:]...)
	return stripDispatcherState(rebuilt), true, nil
}

func findDispatcherLoop(body []ast.Statement) (*ast.WhileStmt, int) {
	for i, s := range body {
		w, ok := s.(*ast.WhileStmt)
		if !ok || len(w.Body) != 1 {
			continue
		}
		if _, ok := w.Body[0].(*ast.Switch); ok {
			return w, i
		}
	}
	return nil, -1
}

func extractDispatcherShape(loop *ast.WhileStmt) (*dispatcherShape, error) {
	sw := loop.Body[0].(*ast.Switch)
	shape := &dispatcherShape{
		cases: make(map[int][]ast.Statement),
		next:  make(map[int]int),
	}

	for _, c := range sw.Cases {
		if c.Value == -1 {
			continue // the terminal "jump to dispatcher_end" case
		}
		if len(c.Body) == 0 {
			return nil, fmt.Errorf("pipeline: malformed dispatcher case %d: empty body", c.Value)
		}
		advance := c.Body[len(c.Body)-1]
		nextState, err := stateFromAdvance(advance)
		if err != nil {
			return nil, fmt.Errorf("pipeline: case %d: %w", c.Value, err)
		}
		shape.cases[c.Value] = c.Body[:len(c.Body)-1]
		shape.next[c.Value] = nextState
	}
	return shape, nil
}

func stateFromAdvance(s ast.Statement) (int, error) {
	a, ok := s.(*ast.Assignment)
	if !ok {
		return 0, fmt.Errorf("expected trailing state assignment, got %T", s)
	}
	lit, ok := a.Value.(*ast.Literal)
	if !ok || lit.Kind != ast.IntLiteral {
		return 0, fmt.Errorf("expected integer state literal, got %T", a.Value)
	}
	return lit.Int, nil
}

// walkStateChain follows shape.next from state 0 until it reaches the -1 end
// sentinel, concatenating each visited case's body. visited guards against a
// cycle, which can only indicate a hand-crafted or corrupted dispatcher.
func walkStateChain(shape *dispatcherShape) ([]ast.Statement, error) {
	var out []ast.Statement
	visited := make(map[int]bool)
	state := 0
	for state != -1 {
		if visited[state] {
			return nil, fmt.Errorf("pipeline: dispatcher state cycle detected at state %d", state)
		}
		visited[state] = true

		body, ok := shape.cases[state]
		if !ok {
			return nil, fmt.Errorf("pipeline: dispatcher references undefined state %d", state)
		}
		out = append(out, body...)

		next, ok := shape.next[state]
		if !ok {
			return nil, fmt.Errorf("pipeline: dispatcher state %d has no successor", state)
		}
		state = next
	}
	return out, nil
}

// stripDispatcherState removes the "int state = 0;" declaration and the
// trailing "dispatcher_end:" label the flattener wraps the loop in, now that
// the loop itself has been replaced by its unrolled body.
func stripDispatcherState(body []ast.Statement) []ast.Statement {
	var out []ast.Statement
	for _, s := range body {
		if decl, ok := s.(*ast.VariableDecl); ok && decl.Name == "state" {
			continue
		}
		if label, ok := s.(*ast.Label); ok && label.Name == "dispatcher_end" {
			continue
		}
		out = append(out, s)
	}
	return out
}
