package obfuscate

import (
	"fmt"

	"its-hmny.dev/minic-obfuscator/pkg/ast"
	"its-hmny.dev/minic-obfuscator/pkg/utils"
)

// reserved is the set of identifiers Rename never touches, whether they appear
// as a function name or a call target: the language entry point and the two
// I/O intrinsics the printer/parser treat specially, plus the two literal
// keywords the grammar reserves. Grounded on the phpmixer example's
// ShouldIgnore skip-list, adapted from a regex-based PHP identifier check to a
// flat lookup over the much smaller Mini-C keyword surface.
var reserved = map[string]bool{
	"main":   true,
	"printf": true,
	"scanf":  true,
	"true":   true,
	"false":  true,
}

// Rename replaces every user-chosen function and variable name with an
// opaque, position-derived one: "_f0", "_f1", ... for functions in program
// order, and "_v0", "_v1", ... for parameters and locals, restarting the
// variable counter at the top of every function.
func Rename(program *ast.Program) error {
	funcNames := renameFunctions(program)
	for _, fn := range program.Functions {
		if err := renameLocals(fn); err != nil {
			return fmt.Errorf("rename: function %q: %w", fn.Name, err)
		}
	}
	rewriteCallees(program, funcNames)
	return nil
}

func renameFunctions(program *ast.Program) map[string]string {
	names := make(map[string]string)
	next := 0
	for _, fn := range program.Functions {
		if reserved[fn.Name] {
			continue
		}
		names[fn.Name] = fmt.Sprintf("_f%d", next)
		next++
	}
	for _, fn := range program.Functions {
		if newName, ok := names[fn.Name]; ok {
			fn.Name = newName
		}
	}
	return names
}

func rewriteCallees(program *ast.Program, names map[string]string) {
	var calls []*ast.FuncCall
	for _, fn := range program.Functions {
		ast.Collect(&ast.Block{Body: fn.Body}, &calls, func(n ast.Node, acc *[]*ast.FuncCall) {
			if c, ok := n.(*ast.FuncCall); ok {
				*acc = append(*acc, c)
			}
		})
	}
	for _, c := range calls {
		if newName, ok := names[c.Callee]; ok {
			c.Callee = newName
		}
	}
}

// renameLocals assigns a fresh "_vN" to every parameter and local declaration
// of fn, then rewrites every reference. A utils.Stack tracks names currently
// in scope purely so the mapping can be extended without colliding with a
// name already assigned in an enclosing scope of the same function.
func renameLocals(fn *ast.Function) error {
	scope := utils.NewStack[string]()
	mapping := make(map[string]string)
	assigned := make(map[string]bool)
	next := 0

	assign := func(name string) {
		if reserved[name] {
			return
		}
		if _, ok := mapping[name]; ok {
			return
		}
		generated := fmt.Sprintf("_v%d", next)
		next++
		// scope holds the names generated so far in this function; if the
		// fresh name is already among them, a trailing underscore keeps it
		// distinct rather than silently shadowing.
		for _, inScope := range scope.Snapshot() {
			if inScope == generated {
				generated = fmt.Sprintf("_v%d_", next)
				break
			}
		}
		mapping[name] = generated
		assigned[generated] = true
		scope.Push(generated)
	}

	for i := range fn.Params {
		assign(fn.Params[i].Name)
	}

	var decls []*ast.VariableDecl
	ast.Collect(&ast.Block{Body: fn.Body}, &decls, func(n ast.Node, acc *[]*ast.VariableDecl) {
		if d, ok := n.(*ast.VariableDecl); ok {
			*acc = append(*acc, d)
		}
	})
	for _, d := range decls {
		assign(d.Name)
	}

	for i := range fn.Params {
		if newName, ok := mapping[fn.Params[i].Name]; ok {
			fn.Params[i].Name = newName
		}
	}
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

	return nil
}
