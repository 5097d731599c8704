package deobfuscate

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"its-hmny.dev/minic-obfuscator/pkg/ast"
	"its-hmny.dev/minic-obfuscator/pkg/utils"
)

// friendlyLocals is the short, readable sequence assigned to a function's
// first few locals before falling back to the denser "v0, v1, ..." stream —
// matching the two-tier scheme in _examples/original_source's name recoverer
// (x, y, m, n, z for the common small-function case, v-numbered beyond that).
var friendlyLocals = []string{"x", "y", "m", "n", "z"}

// reserved holds pipeline-internal bookkeeping names RecoverNames must leave
// untouched: the control-flow flattener's dispatcher-state variable, looked
// up by UnflattenControlFlow's stripDispatcherState by exact name after
// Rename has already run. Mirrors obfuscate/rename.go's reserved skip-list.
var reserved = map[string]bool{
	"state": true,
}

// RecoverNames replaces opaque, machine-generated names with readable ones:
// parameters become "a, b, c, p3, p4, ...", locals become "t0, t1, ..." first
// and then the friendly x/y/m/n/z-then-v-numbered stream, functions become
// "func1, func2, ...", and "unused_*" locals keep their dead-code identity as
// "_unused_k". Names with no declaration anywhere in scope (orphans — for
// example left behind by a partial dead-code removal) are folded into the
// same "t*" stream as declared locals rather than silently dropped.
func RecoverNames(program *ast.Program) error {
	renameFunctions(program)
	for _, fn := range program.Functions {
		if err := renameFunctionLocals(fn); err != nil {
			return fmt.Errorf("rename: function %q: %w", fn.Name, err)
		}
	}
	return nil
}

func renameFunctions(program *ast.Program) {
	mapping := make(map[string]string)
	next := 1
	for _, fn := range program.Functions {
		if fn.Name == "main" {
			continue
		}
		mapping[fn.Name] = fmt.Sprintf("func%d", next)
		next++
	}
	for _, fn := range program.Functions {
		if newName, ok := mapping[fn.Name]; ok {
			fn.Name = newName
		}
	}
	var calls []*ast.FuncCall
	for _, fn := range program.Functions {
		ast.Collect(&ast.Block{Body: fn.Body}, &calls, func(n ast.Node, acc *[]*ast.FuncCall) {
			if c, ok := n.(*ast.FuncCall); ok {
				*acc = append(*acc, c)
			}
		})
	}
	for _, c := range calls {
		if newName, ok := mapping[c.Callee]; ok {
			c.Callee = newName
		}
	}
}

func renameFunctionLocals(fn *ast.Function) error {
	scope := utils.NewStack[string]()
	mapping := make(map[string]string)

	paramLetters := []string{"a", "b", "c"}
	for i := range fn.Params {
		name := fn.Params[i].Name
		if _, already := mapping[name]; already {
			continue
		}
		var newName string
		if i < len(paramLetters) {
			newName = paramLetters[i]
		} else {
			newName = fmt.Sprintf("p%d", i)
		}
		mapping[name] = newName
		scope.Push(newName)
	}

	var decls []*ast.VariableDecl
	ast.Collect(&ast.Block{Body: fn.Body}, &decls, func(n ast.Node, acc *[]*ast.VariableDecl) {
		if d, ok := n.(*ast.VariableDecl); ok {
			*acc = append(*acc, d)
		}
	})

	tCounter := 0
	for _, d := range decls {
		if reserved[d.Name] {
			continue
		}
		if _, already := mapping[d.Name]; already {
			continue
		}
		if strings.Contains(d.Name, "unused") {
			mapping[d.Name] = fmt.Sprintf("_unused_%d", tCounter)
			tCounter++
			continue
		}
		mapping[d.Name] = fmt.Sprintf("t%d", tCounter)
		tCounter++
		scope.Push(mapping[d.Name])
	}

	declared := make(map[string]bool, len(mapping))
	for old := range mapping {
		declared[old] = true
	}

	var refs []*ast.Variable
	ast.Collect(&ast.Block{Body: fn.Body}, &refs, func(n ast.Node, acc *[]*ast.Variable) {
		if v, ok := n.(*ast.Variable); ok {
			*acc = append(*acc, v)
		}
	})
	for _, v := range refs {
		if declared[v.Name] || reserved[v.Name] {
			continue
		}
		// Orphan: referenced but never declared in this function — fold into
		// the same t* stream used for declared locals.
		mapping[v.Name] = fmt.Sprintf("t%d", tCounter)
		tCounter++
		declared[v.Name] = true
	}

	applyFriendlyNames(mapping, len(fn.Params))
	renameAll(fn, mapping)
	return nil
}

// applyFriendlyNames upgrades the first few "tN" locals (skipping parameters)
// to the short friendlyLocals stream, leaving the rest on the denser "vN"
// stream — this is the two-tier scheme spec.md §4.3.3 describes as a second
// pass over the "t0, t1, ..." output.
func applyFriendlyNames(mapping map[string]string, numParams int) {
	var tKeys []string
	for old, cur := range mapping {
		if strings.HasPrefix(cur, "t") {
			tKeys = append(tKeys, old)
		}
	}
	// Go map iteration order is randomized per run; sort by the numeric
	// suffix already assigned in renameFunctionLocals (declaration order) so
	// friendly-name assignment is stable across runs on the same input.
	sort.Slice(tKeys, func(i, j int) bool {
		return tSuffix(mapping[tKeys[i]]) < tSuffix(mapping[tKeys[j]])
	})

	friendlyIdx := 0
	vIdx := 0
	for _, old := range tKeys {
		if friendlyIdx < len(friendlyLocals) {
			mapping[old] = friendlyLocals[friendlyIdx]
			friendlyIdx++
		} else {
			mapping[old] = fmt.Sprintf("v%d", vIdx)
			vIdx++
		}
	}
}

func tSuffix(name string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(name, "t"))
	if err != nil {
		return -1
	}
	return n
}

func renameAll(fn *ast.Function, mapping map[string]string) {
	for i := range fn.Params {
		if newName, ok := mapping[fn.Params[i].Name]; ok {
			fn.Params[i].Name = newName
		}
	}

	var decls []*ast.VariableDecl
	ast.Collect(&ast.Block{Body: fn.Body}, &decls, func(n ast.Node, acc *[]*ast.VariableDecl) {
		if d, ok := n.(*ast.VariableDecl); ok {
			*acc = append(*acc, d)
		}
	})
	for _, d := range decls {
		if newName, ok := mapping[d.Name]; ok {
			d.Name = newName
		}
	}

	var vars []*ast.Variable
	ast.Collect(&ast.Block{Body: fn.Body}, &vars, func(n ast.Node, acc *[]*ast.Variable) {
		if v, ok := n.(*ast.Variable); ok {
			*acc = append(*acc, v)
		}
	})
	for _, v := range vars {
		if newName, ok := mapping[v.Name]; ok {
			v.Name = newName
		}
	}

	var assigns []*ast.Assignment
	ast.Collect(&ast.Block{Body: fn.Body}, &assigns, func(n ast.Node, acc *[]*ast.Assignment) {
		if a, ok := n.(*ast.Assignment); ok {
			*acc = append(*acc, a)
		}
	})
	for _, a := range assigns {
		if newName, ok := mapping[a.Target.Name]; ok {
			a.Target.Name = newName
		}
	}

	var scans []*ast.Scan
	ast.Collect(&ast.Block{Body: fn.Body}, &scans, func(n ast.Node, acc *[]*ast.Scan) {
		if s, ok := n.(*ast.Scan); ok {
			*acc = append(*acc, s)
		}
	})
	for _, s := range scans {
		for i := range s.Args {
			if newName, ok := mapping[s.Args[i].Name]; ok {
				s.Args[i].Name = newName
			}
		}
	}
}
