package ast

import "testing"

func TestMapRewritesLeaves(t *testing.T) {
	cases := []struct {
		name string
		in   Node
		want int
	}{
		{"literal doubled", NewIntLiteral(2), 4},
		{"binary op sums after doubling", NewBinaryOp("+", NewIntLiteral(1), NewIntLiteral(2)), 6},
	}

	double := func(n Node) Node {
		if lit, ok := n.(*Literal); ok && lit.Kind == IntLiteral {
			return &Literal{Kind: IntLiteral, Int: lit.Int * 2}
		}
		return n
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := Map(tc.in, double)
			got := sumInts(out)
			if got != tc.want {
				t.Fatalf("got %d, want %d", got, tc.want)
			}
		})
	}
}

func sumInts(n Node) int {
	switch v := n.(type) {
	case *Literal:
		if v.Kind == IntLiteral {
			return v.Int
		}
		return 0
	case *BinaryOp:
		return sumInts(v.Left) + sumInts(v.Right)
	default:
		return 0
	}
}

func TestCollectVisitsEveryDescendant(t *testing.T) {
	prog := &IfStmt{
		Cond: NewBinaryOp("==", NewVariable("x"), NewIntLiteral(0)),
		Then: []Statement{&Return{Value: NewIntLiteral(1)}},
		Else: []Statement{&Return{Value: NewIntLiteral(2)}},
	}

	var names []string
	Collect(prog, &names, func(n Node, acc *[]string) {
		switch v := n.(type) {
		case *Variable:
			*acc = append(*acc, v.Name)
		}
	})

	if len(names) != 1 || names[0] != "x" {
		t.Fatalf("got %v, want [x]", names)
	}
}

func TestIndexLabelsFindsTopLevelOnly(t *testing.T) {
	body := []Statement{
		NewLabel("L0"),
		&ExpressionStmt{Expr: NewIntLiteral(0)},
		NewLabel("L1"),
	}

	idx := IndexLabels(body)
	if idx["L0"] != 0 || idx["L1"] != 2 {
		t.Fatalf("unexpected index: %v", idx)
	}
	if FindLabel(body, "missing") != -1 {
		t.Fatalf("expected -1 for missing label")
	}
}

func TestDeclaredNamesIncludesParamsAndLocals(t *testing.T) {
	params := []Parameter{{Type: "int", Name: "a"}}
	body := []Statement{
		NewVariableDecl("int", "t0", NewIntLiteral(0)),
		&IfStmt{
			Cond: NewVariable("a"),
			Then: []Statement{NewVariableDecl("int", "t1", nil)},
		},
	}

	names := DeclaredNames(params, body)
	for _, want := range []string{"a", "t0", "t1"} {
		if !names[want] {
			t.Fatalf("expected %q to be declared, got %v", want, names)
		}
	}
}
