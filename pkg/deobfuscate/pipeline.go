// Package deobfuscate implements the inverse passes: each one recognizes a
// pattern an obfuscate pass introduces and removes or simplifies it, without
// requiring that the program actually came from pkg/obfuscate — every pass
// recognizes its pattern structurally and leaves anything else untouched.
package deobfuscate

import (
	"fmt"

	"its-hmny.dev/minic-obfuscator/pkg/ast"
)

// Pass mirrors obfuscate.Pass: an in-place rewrite of *ast.Program.
type Pass func(program *ast.Program) error

// Options selects which passes Apply runs, in the nominal order below.
type Options struct {
	Dead    bool
	Expr    bool
	Rename  bool
	Control bool
	Inline  bool
}

// Passes is the registry of named passes in nominal application order: dead
// code first (it can only shrink the tree other passes have to look at),
// expression simplification next (cleans up what dead-code removal exposed),
// then renaming, then control-flow reconstruction, then inline reconstruction.
var Passes = []struct {
	Name string
	Run  Pass
}{
	{"deadcode", RemoveDeadCode},
	{"expression", SimplifyExpressions},
	{"rename", RecoverNames},
	{"control", UnflattenControlFlow},
	{"inline", ReconstructInlines},
}

// PassError names the pass that failed and wraps its underlying cause.
type PassError struct {
	Pass string
	Err  error
}

func (e *PassError) Error() string { return fmt.Sprintf("deobfuscate: pass %q: %v", e.Pass, e.Err) }
func (e *PassError) Unwrap() error { return e.Err }

// Apply runs every pass enabled in opts against program, in registry order.
func Apply(program *ast.Program, opts Options) error {
	enabled := map[string]bool{
		"deadcode":   opts.Dead,
		"expression": opts.Expr,
		"rename":     opts.Rename,
		"control":    opts.Control,
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
