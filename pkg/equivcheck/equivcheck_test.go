package equivcheck

import (
	"context"
	"errors"
	"os/exec"
	"testing"
)

func TestFindCompilerReportsNotFoundWhenNoneInstalled(t *testing.T) {
	if _, err := exec.LookPath("cc"); err == nil {
		t.Skip("a host C compiler is installed, nothing to assert about absence")
	}
	if _, err := exec.LookPath("gcc"); err == nil {
		t.Skip("a host C compiler is installed, nothing to assert about absence")
	}
	if _, err := exec.LookPath("clang"); err == nil {
		t.Skip("a host C compiler is installed, nothing to assert about absence")
	}

	_, err := FindCompiler()
	if !errors.Is(err, ErrCompilerNotFound) {
		t.Fatalf("expected ErrCompilerNotFound, got %v", err)
	}
}

func TestCheckDetectsAgreeingPrograms(t *testing.T) {
	compiler, err := FindCompiler()
	if err != nil {
		t.Skip("no host C compiler available in this environment")
	}
	_ = compiler

	source := `#include <stdio.h>
int main() { printf("%d\n", 42); return 0; }
`
	rewritten := `#include <stdio.h>
int main() { int x = 40; printf("%d\n", x + 2); return 0; }
`

	result, err := Check(context.Background(), source, rewritten, "")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !result.Equivalent {
		t.Fatalf("expected programs to agree, got %q vs %q", result.OriginalOut, result.RewrittenOut)
	}
}
