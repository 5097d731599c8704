// Package printer renders an *ast.Program back to Mini-C source text. It is
// the final stage of the Source -> AST -> Transform -> Source pipeline, and
// sits outside the transform passes themselves, the same separation the
// teacher keeps between its transformation logic and its CodeGenerator
// switch-dispatch in vm/codegen.go, asm/codegen.go and hack/codegen.go.
package printer

import (
	"fmt"
	"strings"

	"its-hmny.dev/minic-obfuscator/pkg/ast"
)

const indentUnit = "    "

// CodeGenerator renders a Program to fully-parenthesized, four-space
// indented Mini-C source, one statement per line. It carries no state beyond
// the builder it writes into.
type CodeGenerator struct {
	out strings.Builder
}

// NewCodeGenerator returns a ready-to-use CodeGenerator.
func NewCodeGenerator() CodeGenerator { return CodeGenerator{} }

// Generate renders the whole program and returns the resulting source text.
func (cg *CodeGenerator) Generate(program *ast.Program) (string, error) {
	cg.out.Reset()
	for i, fn := range program.Functions {
		if i > 0 {
			cg.out.WriteString("\n")
		}
		if err := cg.GenerateFunction(fn); err != nil {
			return "", err
		}
	}
	return cg.out.String(), nil
}

// GenerateFunction renders a single function definition.
func (cg *CodeGenerator) GenerateFunction(fn *ast.Function) error {
	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = fmt.Sprintf("%s %s", p.Type, p.Name)
	}
	cg.out.WriteString(fmt.Sprintf("%s %s(%s) {\n", fn.ReturnType, fn.Name, strings.Join(params, ", ")))
	for _, stmt := range fn.Body {
		if err := cg.GenerateStatement(stmt, 1); err != nil {
			return err
		}
	}
	cg.out.WriteString("}\n")
	return nil
}

// GenerateStatement dispatches on stmt's concrete type, the printer's analog
// of the teacher's Generate<Kind> switch in vm/codegen.go.
func (cg *CodeGenerator) GenerateStatement(stmt ast.Statement, depth int) error {
	switch s := stmt.(type) {
	case *ast.VariableDecl:
		return cg.generateVariableDecl(s, depth)
	case *ast.Assignment:
		cg.writeIndent(depth)
		cg.out.WriteString(fmt.Sprintf("%s = %s;\n", s.Target.Name, cg.expr(s.Value)))
		return nil
	case *ast.ExpressionStmt:
		cg.writeIndent(depth)
		if s.Expr == nil {
			cg.out.WriteString(";\n")
			return nil
		}
		cg.out.WriteString(fmt.Sprintf("%s;\n", cg.expr(s.Expr)))
		return nil
	case *ast.Return:
		cg.writeIndent(depth)
		if s.Value == nil {
			cg.out.WriteString("return;\n")
			return nil
		}
		cg.out.WriteString(fmt.Sprintf("return %s;\n", cg.expr(s.Value)))
		return nil
	case *ast.IfStmt:
		return cg.generateIf(s, depth)
	case *ast.WhileStmt:
		return cg.generateWhile(s, depth)
	case *ast.ForStmt:
		return cg.generateFor(s, depth)
	case *ast.Block:
		cg.writeIndent(depth)
		cg.out.WriteString("{\n")
		for _, inner := range s.Body {
			if err := cg.GenerateStatement(inner, depth+1); err != nil {
				return err
			}
		}
		cg.writeIndent(depth)
		cg.out.WriteString("}\n")
		return nil
	case *ast.Print:
		return cg.generatePrint(s, depth)
	case *ast.Scan:
		return cg.generateScan(s, depth)
	case *ast.Label:
		cg.writeIndentLevel(depth - 1)
		cg.out.WriteString(fmt.Sprintf("%s:\n", s.Name))
		return nil
	case *ast.Goto:
		cg.writeIndent(depth)
		cg.out.WriteString(fmt.Sprintf("goto %s;\n", s.Target))
		return nil
	case *ast.Switch:
		return cg.generateSwitch(s, depth)
	default:
		return fmt.Errorf("printer: unrecognized statement node %T", stmt)
	}
}

func (cg *CodeGenerator) generateVariableDecl(s *ast.VariableDecl, depth int) error {
	cg.writeIndent(depth)
	if s.Init == nil {
		cg.out.WriteString(fmt.Sprintf("%s %s;\n", s.Type, s.Name))
		return nil
	}
	cg.out.WriteString(fmt.Sprintf("%s %s = %s;\n", s.Type, s.Name, cg.expr(s.Init)))
	return nil
}

func (cg *CodeGenerator) generateIf(s *ast.IfStmt, depth int) error {
	cg.writeIndent(depth)
	cg.out.WriteString(fmt.Sprintf("if (%s) {\n", cg.expr(s.Cond)))
	for _, inner := range s.Then {
		if err := cg.GenerateStatement(inner, depth+1); err != nil {
			return err
		}
	}
	if len(s.Else) == 0 {
		cg.writeIndent(depth)
		cg.out.WriteString("}\n")
		return nil
	}
	cg.writeIndent(depth)
	cg.out.WriteString("} else {\n")
	for _, inner := range s.Else {
		if err := cg.GenerateStatement(inner, depth+1); err != nil {
			return err
		}
	}
	cg.writeIndent(depth)
	cg.out.WriteString("}\n")
	return nil
}

func (cg *CodeGenerator) generateWhile(s *ast.WhileStmt, depth int) error {
	cg.writeIndent(depth)
	cg.out.WriteString(fmt.Sprintf("while (%s) {\n", cg.expr(s.Cond)))
	for _, inner := range s.Body {
		if err := cg.GenerateStatement(inner, depth+1); err != nil {
			return err
		}
	}
	cg.writeIndent(depth)
	cg.out.WriteString("}\n")
	return nil
}

func (cg *CodeGenerator) generateFor(s *ast.ForStmt, depth int) error {
	cg.writeIndent(depth)
	cg.out.WriteString(fmt.Sprintf("for (%s; %s; %s) {\n", cg.clause(s.Init), cg.exprOrEmpty(s.Cond), cg.clause(s.Post)))
	for _, inner := range s.Body {
		if err := cg.GenerateStatement(inner, depth+1); err != nil {
			return err
		}
	}
	cg.writeIndent(depth)
	cg.out.WriteString("}\n")
	return nil
}

func (cg *CodeGenerator) clause(stmt ast.Statement) string {
	switch s := stmt.(type) {
	case nil:
		return ""
	case *ast.VariableDecl:
		if s.Init == nil {
			return fmt.Sprintf("%s %s", s.Type, s.Name)
		}
		return fmt.Sprintf("%s %s = %s", s.Type, s.Name, cg.expr(s.Init))
	case *ast.Assignment:
		return fmt.Sprintf("%s = %s", s.Target.Name, cg.expr(s.Value))
	default:
		return ""
	}
}

func (cg *CodeGenerator) generatePrint(s *ast.Print, depth int) error {
	cg.writeIndent(depth)
	if len(s.Args) == 0 {
		cg.out.WriteString(fmt.Sprintf("printf(%q);\n", s.Format))
		return nil
	}
	args := make([]string, len(s.Args))
	for i, a := range s.Args {
		args[i] = cg.expr(a)
	}
	cg.out.WriteString(fmt.Sprintf("printf(%q, %s);\n", s.Format, strings.Join(args, ", ")))
	return nil
}

func (cg *CodeGenerator) generateScan(s *ast.Scan, depth int) error {
	cg.writeIndent(depth)
	if len(s.Args) == 0 {
		cg.out.WriteString(fmt.Sprintf("scanf(%q);\n", s.Format))
		return nil
	}
	args := make([]string, len(s.Args))
	for i, a := range s.Args {
		args[i] = "&" + a.Name
	}
	cg.out.WriteString(fmt.Sprintf("scanf(%q, %s);\n", s.Format, strings.Join(args, ", ")))
	return nil
}

func (cg *CodeGenerator) generateSwitch(s *ast.Switch, depth int) error {
	cg.writeIndent(depth)
	cg.out.WriteString(fmt.Sprintf("switch (%s) {\n", cg.expr(s.Selector)))
	for _, c := range s.Cases {
		cg.writeIndentLevel(depth)
		cg.out.WriteString(fmt.Sprintf("case %d:\n", c.Value))
		for _, inner := range c.Body {
			if err := cg.GenerateStatement(inner, depth+1); err != nil {
				return err
			}
		}
	}
	if s.Default != nil {
		cg.writeIndentLevel(depth)
		cg.out.WriteString("default:\n")
		for _, inner := range s.Default {
			if err := cg.GenerateStatement(inner, depth+1); err != nil {
				return err
			}
		}
	}
	cg.writeIndent(depth)
	cg.out.WriteString("}\n")
	return nil
}

// expr renders an expression, fully parenthesizing every binary and unary
// operation regardless of precedence, per the output contract's "uglier but
// unambiguous" rule.
func (cg *CodeGenerator) expr(e ast.Expression) string {
	switch v := e.(type) {
	case *ast.Literal:
		switch v.Kind {
		case ast.StringLiteral:
			return fmt.Sprintf("%q", v.Str)
		case ast.BoolLiteral:
			return fmt.Sprintf("%t", v.Bool)
		case ast.CharLiteral:
			return fmt.Sprintf("%q", v.Char)
		default:
			return fmt.Sprintf("%d", v.Int)
		}
	case *ast.Variable:
		return v.Name
	case *ast.BinaryOp:
		return fmt.Sprintf("(%s %s %s)", cg.expr(v.Left), v.Op, cg.expr(v.Right))
	case *ast.UnaryOp:
		return fmt.Sprintf("(%s%s)", v.Op, cg.expr(v.Operand))
	case *ast.FuncCall:
		args := make([]string, len(v.Args))
		for i, a := range v.Args {
			args[i] = cg.expr(a)
		}
		return fmt.Sprintf("%s(%s)", v.Callee, strings.Join(args, ", "))
	case *ast.Assignment:
		return fmt.Sprintf("(%s = %s)", v.Target.Name, cg.expr(v.Value))
	default:
		return fmt.Sprintf("<unknown:%T>", e)
	}
}

func (cg *CodeGenerator) exprOrEmpty(e ast.Expression) string {
	if e == nil {
		return ""
	}
	return cg.expr(e)
}

func (cg *CodeGenerator) writeIndent(depth int) { cg.writeIndentLevel(depth) }

func (cg *CodeGenerator) writeIndentLevel(depth int) {
	if depth < 0 {
		depth = 0
	}
	cg.out.WriteString(strings.Repeat(indentUnit, depth))
}
