package pipeline

import (
	"errors"
	"fmt"
)

// Sentinel error kinds, one per failure category a caller needs to branch on.
// Every pass failure Run returns wraps ErrPassInvariant, so errors.Is holds for
// it, the same %w-wrapping convention the teacher uses throughout
// jack/lowering.go. The other kinds are declared here but no package in this
// repository returns them.
var (
	// ErrParse covers a source file the parser could not build an AST from.
	ErrParse = errors.New("parse error")
	// ErrUnsupportedConstruct covers a grammar-valid construct outside the
	// accepted Mini-C subset (e.g. a float, a struct).
	ErrUnsupportedConstruct = errors.New("unsupported construct")
	// ErrPassInvariant covers an obfuscate/deobfuscate pass finding the AST in
	// a shape it cannot safely continue from (e.g. a dispatcher referencing an
	// undefined state).
	ErrPassInvariant = errors.New("pass invariant violation")
	// ErrExternalTool covers a failure spawning or running the host C
	// compiler during equivalence checking; the transformed output is still
	// written, this only affects the --check result.
	ErrExternalTool = errors.New("external tool error")
	// ErrEquivalenceMismatch covers the original and transformed programs
	// producing different stdout for identical stdin.
	ErrEquivalenceMismatch = errors.New("equivalence mismatch")
)

// PassError names the pass that failed and wraps its underlying cause so
// callers can both print a precise message and errors.Is/As against the
// sentinel kind above.
type PassError struct {
	Direction Direction
	Pass      string
	Err       error
}

func (e *PassError) Error() string {
	return fmt.Sprintf("%s pass %q: %v", e.Direction, e.Pass, e.Err)
}

func (e *PassError) Unwrap() error { return e.Err }
