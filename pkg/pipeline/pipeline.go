// Package pipeline is the driver that applies a selected subset of
// obfuscation or deobfuscation passes to a single *ast.Program. It owns no
// state of its own beyond the Program passed to Run — the teacher's
// cmd/*/main.go files each hardcode their own parse-then-transform sequence
// inline, so this is the one genuinely new structural piece in the repo,
// built in the same small-struct-plus-ordered-calls shape the teacher uses
// for jack.Lowerer and jack.TypeChecker.
package pipeline

import (
	"fmt"

	"its-hmny.dev/minic-obfuscator/pkg/ast"
	"its-hmny.dev/minic-obfuscator/pkg/deobfuscate"
	"its-hmny.dev/minic-obfuscator/pkg/obfuscate"
)

// Direction selects which pass catalog Run applies.
type Direction int

const (
	Obfuscate Direction = iota
	Deobfuscate
)

func (d Direction) String() string {
	if d == Deobfuscate {
		return "deobfuscate"
	}
	return "obfuscate"
}

// Options is the CLI-facing configuration surface: one boolean per pass, plus
// All (run every pass for the chosen Direction) and Check (run the external
// equivalence check after transforming, see pkg/equivcheck). There is no
// separate file-based configuration layer — this struct, populated directly
// from flags, is the configuration.
type Options struct {
	Rename  bool
	Dead    bool
	Expr    bool
	Flow    bool
	Inline  bool
	All     bool
	Check   bool
}

// Run applies the passes selected by opts, for the given direction, to
// program in place, and returns it for convenience. A pipeline run owns its
// Program exclusively: callers must not mutate it concurrently with Run.
func Run(direction Direction, program *ast.Program, opts Options) (*ast.Program, error) {
	switch direction {
	case Obfuscate:
		if err := obfuscate.Apply(program, toObfuscateOptions(opts)); err != nil {
			return nil, wrapPassError(direction, err)
		}
	case Deobfuscate:
		if err := deobfuscate.Apply(program, toDeobfuscateOptions(opts)); err != nil {
			return nil, wrapPassError(direction, err)
		}
	default:
		return nil, fmt.Errorf("pipeline: unknown direction %v", direction)
	}
	return program, nil
}

func toObfuscateOptions(opts Options) obfuscate.Options {
	return obfuscate.Options{
		Rename:  opts.All || opts.Rename,
		Dead:    opts.All || opts.Dead,
		Expr:    opts.All || opts.Expr,
		Flatten: opts.All || opts.Flow,
		Inline:  opts.All || opts.Inline,
	}
}

func toDeobfuscateOptions(opts Options) deobfuscate.Options {
	return deobfuscate.Options{
		Dead:    opts.All || opts.Dead,
		Expr:    opts.All || opts.Expr,
		Rename:  opts.All || opts.Rename,
		Control: opts.All || opts.Flow,
		Inline:  opts.All || opts.Inline,
	}
}

// wrapPassError turns the package-local PassError that obfuscate.Apply or
// deobfuscate.Apply returns into this package's PassError, so callers get one
// error type regardless of direction, and folds in ErrPassInvariant so
// errors.Is(err, pipeline.ErrPassInvariant) holds for any pass failure.
func wrapPassError(direction Direction, err error) error {
	pass := "unknown"
	switch e := err.(type) {
	case *obfuscate.PassError:
		pass = e.Pass
	case *deobfuscate.PassError:
		pass = e.Pass
	}
	return &PassError{
		Direction: direction,
		Pass:      pass,
		Err:       fmt.Errorf("%w: %v", ErrPassInvariant, err),
	}
}
