// Package obfuscate implements the obfuscation passes: each one rewrites an
// *ast.Program in place, preserving its observable behavior while making the
// source harder to read. Passes are independent and may be applied in any
// subset, but the nominal order (rename, dead-code insertion, expression
// transform, control-flow flattening, function inlining) is the one that
// composes best, the same way the teacher's jack/lowering.go always visits a
// class's subroutines in declaration order rather than leaving it to the
// caller.
package obfuscate

import (
	"fmt"

	"its-hmny.dev/minic-obfuscator/pkg/ast"
)

// Pass is a single obfuscation transform. It mutates program in place and
// returns an error only when it cannot preserve the program's semantics (an
// obfuscation pass should otherwise degrade gracefully on unfamiliar shapes).
type Pass func(program *ast.Program) error

// Options selects which passes Apply runs, in the nominal order below.
type Options struct {
	Rename  bool
	Dead    bool
	Expr    bool
	Flatten bool
	Inline  bool
}

// Passes is the registry of named passes in nominal application order.
var Passes = []struct {
	Name string
	Run  Pass
}{
	{"rename", Rename},
	{"deadcode", InsertDeadCode},
	{"expression", TransformExpressions},
	{"flatten", FlattenControlFlow},
	{"inline", InlineFunctions},
}

// PassError names the pass that failed and wraps its underlying cause.
type PassError struct {
	Pass string
	Err  error
}

func (e *PassError) Error() string { return fmt.Sprintf("obfuscate: pass %q: %v", e.Pass, e.Err) }
func (e *PassError) Unwrap() error { return e.Err }

// Apply runs every pass enabled in opts against program, in registry order,
// stopping at the first failure.
func Apply(program *ast.Program, opts Options) error {
	enabled := map[string]bool{
		"rename":     opts.Rename,
		"deadcode":   opts.Dead,
		"expression": opts.Expr,
		"flatten":    opts.Flatten,
		"inline":     opts.Inline,
	}
	for _, p := range Passes {
		if !enabled[p.Name] {
			continue
		}
		if err := p.Run(program); err != nil {
			return &PassError{Pass: p.Name, Err: err}
		}
	}
	return nil
}
