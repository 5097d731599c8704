package parser

import (
	pc "github.com/prataprc/goparsec"
)

// ----------------------------------------------------------------------------
// Parser Combinator(s)
//
// This section defines the Parser Combinator for every token and construct of
// the Mini-C subset: function definitions, the statement forms of spec.md §3,
// and the expression precedence table of spec.md §6. Layered OrdChoice/And
// combinators encode precedence (each level only descends to the next
// tighter-binding level), the same structural idiom the teacher's asm/vm
// parsers use for their instruction/operand hierarchies, generalized here to
// a recursive expression grammar those languages never needed.

// Top level object, generates the traversable AST the PCs below build.
var astRoot = pc.NewAST("minic_program", 0)

var (
	pProgram = astRoot.ManyUntil("program", nil, pFuncDecl, pc.End())

	pFuncDecl = astRoot.And("func_decl", nil,
		pType, pIdent, pLParen,
		astRoot.Kleene("params", nil, astRoot.And("param", nil, pType, pIdent), pComma),
		pRParen, pLBrace,
		astRoot.Kleene("body", nil, pStatementRef),
		pRBrace,
	)
)

var (
	pType  = pc.Token(`(int|char|void|bool|string)\b`, "TYPE")
	pIdent = pc.Token(`[A-Za-z_][0-9A-Za-z_]*`, "IDENT")

	pComma  = pc.Atom(",", "COMMA")
	pSemi   = pc.Atom(";", "SEMI")
	pColon  = pc.Atom(":", "COLON")
	pLParen = pc.Atom("(", "LPAREN")
	pRParen = pc.Atom(")", "RPAREN")
	pLBrace = pc.Atom("{", "LBRACE")
	pRBrace = pc.Atom("}", "RBRACE")
)

// ----------------------------------------------------------------------------
// Statements

var (
	pStatement = astRoot.OrdChoice("statement", nil,
		pBlockStmt, pIfStmt, pWhileStmt, pForStmt, pSwitchStmt,
		pPrintStmt, pScanStmt, pReturnStmt, pGotoStmt, pLabelStmt,
		pVarDeclStmt, pAssignStmt, pExprStmt,
	)
	// pStatementRef breaks the pFuncDecl -> pStatement -> pBlockStmt -> pStatement
	// cycle goparsec's package-level var initialization can't express directly.
	pStatementRef = pc.Parser(func(s pc.Scanner) (pc.ParsecNode, pc.Scanner) { return pStatement(s) })

	pBlockStmt = astRoot.And("block_stmt", nil, pLBrace, astRoot.Kleene("block_body", nil, pStatementRef), pRBrace)

	pVarDeclStmt = astRoot.And("var_decl_stmt", nil,
		pType, pIdent, astRoot.Maybe("maybe_init", nil, astRoot.And("init", nil, pc.Atom("=", "ASSIGN"), pExprRef)), pSemi,
	)

	pAssignStmt = astRoot.And("assign_stmt", nil, pIdent, pc.Atom("=", "ASSIGN"), pExprRef, pSemi)

	pExprStmt = astRoot.And("expr_stmt", nil, pExprRef, pSemi)

	pReturnStmt = astRoot.And("return_stmt", nil, pc.Atom("return", "RETURN"), astRoot.Maybe("maybe_value", nil, pExprRef), pSemi)

	pIfStmt = astRoot.And("if_stmt", nil,
		pc.Atom("if", "IF"), pLParen, pExprRef, pRParen, pStatementRef,
		astRoot.Maybe("maybe_else", nil, astRoot.And("else_clause", nil, pc.Atom("else", "ELSE"), pStatementRef)),
	)

	pWhileStmt = astRoot.And("while_stmt", nil, pc.Atom("while", "WHILE"), pLParen, pExprRef, pRParen, pStatementRef)

	pForStmt = astRoot.And("for_stmt", nil,
		pc.Atom("for", "FOR"), pLParen,
		astRoot.Maybe("maybe_init", nil, pForInit), pSemi,
		astRoot.Maybe("maybe_cond", nil, pExprRef), pSemi,
		astRoot.Maybe("maybe_post", nil, pForPost),
		pRParen, pStatementRef,
	)
	pForInit = astRoot.OrdChoice("for_init", nil, pVarDeclNoSemi, pAssignNoSemi)
	pForPost = astRoot.OrdChoice("for_post", nil, pAssignNoSemi, pExprRef)

	pVarDeclNoSemi = astRoot.And("var_decl_init", nil, pType, pIdent, pc.Atom("=", "ASSIGN"), pExprRef)
	pAssignNoSemi  = astRoot.And("assign_init", nil, pIdent, pc.Atom("=", "ASSIGN"), pExprRef)

	pPrintStmt = astRoot.And("print_stmt", nil,
		pc.Atom("printf", "PRINTF"), pLParen, pStringLit,
		astRoot.Kleene("print_args", nil, astRoot.And("print_arg", nil, pComma, pExprRef)),
		pRParen, pSemi,
	)

	pScanStmt = astRoot.And("scan_stmt", nil,
		pc.Atom("scanf", "SCANF"), pLParen, pStringLit,
		astRoot.Kleene("scan_args", nil, astRoot.And("scan_arg", nil, pComma, pc.Atom("&", "AMP"), pIdent)),
		pRParen, pSemi,
	)

	pGotoStmt  = astRoot.And("goto_stmt", nil, pc.Atom("goto", "GOTO"), pIdent, pSemi)
	pLabelStmt = astRoot.And("label_stmt", nil, pIdent, pColon)

	pSwitchStmt = astRoot.And("switch_stmt", nil,
		pc.Atom("switch", "SWITCH"), pLParen, pExprRef, pRParen, pLBrace,
		astRoot.Kleene("cases", nil, pSwitchCase),
		astRoot.Maybe("maybe_default", nil, pSwitchDefault),
		pRBrace,
	)
	pSwitchCase = astRoot.And("switch_case", nil,
		pc.Atom("case", "CASE"), pc.Int(), pColon, astRoot.Kleene("case_body", nil, pStatementRef),
	)
	pSwitchDefault = astRoot.And("switch_default", nil,
		pc.Atom("default", "DEFAULT"), pColon, astRoot.Kleene("default_body", nil, pStatementRef),
	)
)

// ----------------------------------------------------------------------------
// Expressions (lowest to highest precedence)

var (
	pExpr    = astRoot.OrdChoice("expr", nil, pAssignExpr, pLogicOr)
	pExprRef = pc.Parser(func(s pc.Scanner) (pc.ParsecNode, pc.Scanner) { return pExpr(s) })

	pAssignExpr = astRoot.And("assign_expr", nil, pIdent, pc.Atom("=", "ASSIGN"), pExprRef)

	pLogicOr  = astRoot.And("logic_or", nil, pLogicAnd, astRoot.Kleene("or_rest", nil, astRoot.And("or_op", nil, pc.Atom("||", "OR"), pLogicAnd)))
	pLogicAnd = astRoot.And("logic_and", nil, pEquality, astRoot.Kleene("and_rest", nil, astRoot.And("and_op", nil, pc.Atom("&&", "AND"), pEquality)))

	pEquality = astRoot.And("equality", nil, pRelational,
		astRoot.Kleene("eq_rest", nil, astRoot.And("eq_op", nil, pEqOp, pRelational)))
	pEqOp = astRoot.OrdChoice("eq_operator", nil, pc.Atom("==", "EQ"), pc.Atom("!=", "NEQ"))

	pRelational = astRoot.And("relational", nil, pAdditive,
		astRoot.Kleene("rel_rest", nil, astRoot.And("rel_op", nil, pRelOp, pAdditive)))
	pRelOp = astRoot.OrdChoice("rel_operator", nil,
		pc.Atom("<=", "LE"), pc.Atom(">=", "GE"), pc.Atom("<", "LT"), pc.Atom(">", "GT"),
	)

	pAdditive = astRoot.And("additive", nil, pMultiplicative,
		astRoot.Kleene("add_rest", nil, astRoot.And("add_op", nil, pAddOp, pMultiplicative)))
	pAddOp = astRoot.OrdChoice("add_operator", nil, pc.Atom("+", "PLUS"), pc.Atom("-", "MINUS"))

	pMultiplicative = astRoot.And("multiplicative", nil, pUnary,
		astRoot.Kleene("mul_rest", nil, astRoot.And("mul_op", nil, pMulOp, pUnary)))
	pMulOp = astRoot.OrdChoice("mul_operator", nil, pc.Atom("*", "STAR"), pc.Atom("/", "SLASH"), pc.Atom("%", "PERCENT"))

	pUnary = astRoot.OrdChoice("unary", nil,
		astRoot.And("unary_op", nil, pUnaryOp, pUnaryRef), pPrimary,
	)
	pUnaryOp  = astRoot.OrdChoice("unary_operator", nil, pc.Atom("-", "NEG"), pc.Atom("!", "NOT"), pc.Atom("+", "POS"))
	pUnaryRef = pc.Parser(func(s pc.Scanner) (pc.ParsecNode, pc.Scanner) { return pUnary(s) })

	pPrimary = astRoot.OrdChoice("primary", nil,
		pFuncCall, pc.Int(), pBoolLit, pCharLit, pStringLit, pIdentExpr,
		astRoot.And("paren_expr", nil, pLParen, pExprRef, pRParen),
	)

	pFuncCall = astRoot.And("func_call", nil, pIdent, pLParen, astRoot.Kleene("call_args", nil, pExprRef, pComma), pRParen)
	pIdentExpr = astRoot.And("ident_expr", nil, pIdent)

	pStringLit = pc.Token(`"(?:\\.|[^"\\])*"`, "STRING")
	pBoolLit   = pc.Token(`(true|false)\b`, "BOOL")
	pCharLit   = pc.Token(`'(?:\\.|[^'\\])'`, "CHAR")
)
