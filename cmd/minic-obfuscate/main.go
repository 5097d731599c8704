package main

import (
	"os"
	"strings"

	"github.com/teris-io/cli"

	"its-hmny.dev/minic-obfuscator/internal/cliutil"
	"its-hmny.dev/minic-obfuscator/pkg/parser"
	"its-hmny.dev/minic-obfuscator/pkg/pipeline"
	"its-hmny.dev/minic-obfuscator/pkg/printer"
)

var Description = strings.ReplaceAll(`
The Mini-C Obfuscator rewrites a Mini-C source file into a semantically
equivalent but harder to read counterpart. Every transformation is applied
as an independent, opt-in pass; by default none run unless --all is given.
`, "\n", " ")

var Obfuscator = cli.New(Description).
	WithArg(cli.NewArg("input", "The Mini-C (.mc) source file to obfuscate").WithType(cli.TypeString)).
	WithOption(cli.NewOption("output", "Output path for the obfuscated source").WithChar('o').WithType(cli.TypeString)).
	WithOption(cli.NewOption("rename", "Replace user identifiers with opaque generated names").WithType(cli.TypeBool)).
	WithOption(cli.NewOption("dead", "Insert dead, semantically inert code").WithType(cli.TypeBool)).
	WithOption(cli.NewOption("expr", "Rewrite expressions into equivalent but noisier forms").WithType(cli.TypeBool)).
	WithOption(cli.NewOption("flatten", "Flatten structured control flow into a dispatcher loop").WithType(cli.TypeBool)).
	WithOption(cli.NewOption("inline", "Inline small callees at their call sites").WithType(cli.TypeBool)).
	WithOption(cli.NewOption("all", "Enable every obfuscation pass").WithType(cli.TypeBool)).
	WithOption(cli.NewOption("check", "Run an external equivalence check against the host C compiler").WithType(cli.TypeBool)).
	WithAction(Handler)

func Handler(args []string, options map[string]string) int {
	if len(args) < 1 {
		cliutil.Failure("not enough arguments provided, use --help")
		return -1
	}

	input := args[0]
	outputPath := cliutil.ResolveOutput(options["output"], cliutil.DefaultObfuscateOutput)

	source, err := os.ReadFile(input)
	if err != nil {
		cliutil.Failure("unable to open input file: %s", err)
		return -1
	}

	p := parser.NewParser(strings.NewReader(string(source)))
	program, err := p.Parse()
	if err != nil {
		cliutil.Failure("unable to complete 'parsing' pass: %s", err)
		return -1
	}
	cliutil.Info("parsed %d function(s) from %s", len(program.Functions), input)

	opts := pipeline.Options{
		Rename: flagSet(options, "rename"),
		Dead:   flagSet(options, "dead"),
		Expr:   flagSet(options, "expr"),
		Flow:   flagSet(options, "flatten"),
		Inline: flagSet(options, "inline"),
		All:    flagSet(options, "all"),
		Check:  flagSet(options, "check"),
	}

	program, err = pipeline.Run(pipeline.Obfuscate, program, opts)
	if err != nil {
		cliutil.Failure("unable to complete obfuscation: %s", err)
		return -1
	}
	cliutil.Success("obfuscation pipeline completed")

	cg := printer.NewCodeGenerator()
	rewritten, err := cg.Generate(program)
	if err != nil {
		cliutil.Failure("unable to complete 'codegen' pass: %s", err)
		return -1
	}

	if err := os.MkdirAll(dirOf(outputPath), 0o755); err != nil {
		cliutil.Failure("unable to create output directory: %s", err)
		return -1
	}
	if err := os.WriteFile(outputPath, []byte(rewritten), 0o644); err != nil {
		cliutil.Failure("unable to write output file: %s", err)
		return -1
	}
	cliutil.Success("wrote obfuscated source to %s", outputPath)

	if opts.Check {
		if !cliutil.RunEquivalenceCheck(string(source), rewritten) {
			return 1
		}
	}

	return 0
}

func flagSet(options map[string]string, name string) bool {
	_, enabled := options[name]
	return enabled
}

func dirOf(path string) string {
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		return path[:idx]
	}
	return "."
}

func main() { os.Exit(Obfuscator.Run(os.Args, os.Stdout)) }
