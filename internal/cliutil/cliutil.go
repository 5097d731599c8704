// Package cliutil holds the small amount of glue shared by the two CLI
// binaries: console-output prefixing and output-path defaulting. The teacher
// keeps its three cmd/* binaries independent with no shared internal package
// (each repeats its own fmt.Printf("ERROR: ...") calls); this repo has two
// binaries that are exact mirror images of each other, so this package is
// the minimal surface that avoids literally duplicating those few lines
// rather than a heavyweight shared CLI framework layer.
package cliutil

import (
	"context"
	"errors"
	"fmt"

	"its-hmny.dev/minic-obfuscator/pkg/equivcheck"
)

// DefaultObfuscateOutput is the output path used when the user does not
// supply --output for the obfuscator.
const DefaultObfuscateOutput = "output/output.mc"

// DefaultDeobfuscateOutput is the output path used when the user does not
// supply --output for the deobfuscator.
const DefaultDeobfuscateOutput = "output/output_clean.mc"

// ResolveOutput returns requested unchanged if non-empty, otherwise fallback.
func ResolveOutput(requested, fallback string) string {
	if requested != "" {
		return requested
	}
	return fallback
}

// Success prints a "[✓] ..." line to stdout.
func Success(format string, args ...any) {
	fmt.Printf("[✓] "+format+"\n", args...)
}

// Failure prints a "[✗] ..." line to stdout.
func Failure(format string, args ...any) {
	fmt.Printf("[✗] "+format+"\n", args...)
}

// Info prints a "[*] ..." line to stdout.
func Info(format string, args ...any) {
	fmt.Printf("[*] "+format+"\n", args...)
}

// RunEquivalenceCheck compiles original and rewritten with the host C
// compiler and compares their stdout, printing the outcome. An external-tool
// failure is reported but does not fail the surrounding command: the
// transformed file has already been written by the time --check runs.
func RunEquivalenceCheck(original, rewritten string) bool {
	result, err := equivcheck.Check(context.Background(), original, rewritten, "")
	if err != nil {
		if errors.Is(err, equivcheck.ErrCompilerNotFound) {
			Failure("equivalence check skipped: %s", err)
		} else {
			Failure("equivalence check failed: %s", err)
		}
		return true
	}
	if !result.Equivalent {
		Failure("equivalence check found a mismatch: original=%q rewritten=%q", result.OriginalOut, result.RewrittenOut)
		return false
	}
	Success("equivalence check passed: outputs agree")
	return true
}
