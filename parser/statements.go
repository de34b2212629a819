package parser

import (
	"github.com/deepnoodle-ai/condense/ast"
	"github.com/deepnoodle-ai/condense/internal/token"
)

// parseStatement parses one statement with cur on its first token, leaving
// cur on the statement's last token (a consumed trailing semicolon included).
// Returns nil for blank statements (a lone newline) and on error.
func (p *Parser) parseStatement() ast.Stmt {
	switch p.curToken.Type {
	case token.NEWLINE:
		return nil
	case token.SEMICOLON:
		return &ast.Empty{Semi: p.curToken.StartPosition}
	case token.VAR, token.LET, token.CONST:
		return p.parseVarDecl()
	case token.FUNCTION:
		return p.parseFuncDecl()
	case token.CLASS:
		return p.parseClassDecl()
	case token.IF:
		return p.parseIf()
	case token.FOR:
		return p.parseFor()
	case token.WHILE:
		return p.parseWhile()
	case token.DO:
		return p.parseDoWhile()
	case token.SWITCH:
		return p.parseSwitch()
	case token.TRY:
		return p.parseTry()
	case token.RETURN:
		return p.parseReturn()
	case token.THROW:
		return p.parseThrow()
	case token.BREAK:
		return p.parseBreak()
	case token.CONTINUE:
		return p.parseContinue()
	case token.LBRACE:
		return p.parseBlock()
	case token.IMPORT:
		if p.peekTokenIs(token.LPAREN) || p.peekTokenIs(token.PERIOD) {
			return p.parseExpressionStatement()
		}
		return p.parseImport()
	case token.EXPORT:
		return p.parseExport()
	case token.IDENT:
		if p.peekTokenIs(token.COLON) {
			return p.parseLabeled()
		}
		return p.parseExpressionStatement()
	default:
		return p.parseExpressionStatement()
	}
}

// finishStatement consumes an optional trailing semicolon and verifies the
// statement is followed by a terminator, returning the statement end.
func (p *Parser) finishStatement(end token.Position) token.Position {
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
		return p.curToken.EndPosition
	}
	if !statementTerminators[p.peekToken.Type] {
		p.setTokenError(p.peekToken,
			"unexpected token %q following statement", p.peekToken.Literal)
	}
	return end
}

func (p *Parser) parseExpressionStatement() ast.Stmt {
	x := p.parseExpression(LOWEST)
	if x == nil {
		return nil
	}
	end := p.finishStatement(x.End())
	if p.hadNewError() {
		return nil
	}
	// "async function f() {}" arrives here via the async prefix path; it is
	// a declaration, not an expression statement.
	if fn, ok := x.(*ast.FuncLit); ok && !fn.Arrow && fn.Name != nil {
		return &ast.FuncDecl{Fn: fn}
	}
	return &ast.ExprStmt{X: x, EndPos: end}
}

func (p *Parser) parseFuncDecl() ast.Stmt {
	fn := p.parseFuncExpr()
	if fn == nil {
		return nil
	}
	return &ast.FuncDecl{Fn: fn.(*ast.FuncLit)}
}

func (p *Parser) parseClassDecl() ast.Stmt {
	cls := p.parseClassExpr()
	if cls == nil {
		return nil
	}
	return &ast.ClassDecl{Class: cls.(*ast.ClassLit)}
}

// parseBlock parses a braced statement list with cur on "{", leaving cur on
// the closing "}".
func (p *Parser) parseBlock() *ast.Block {
	lbrace := p.curToken.StartPosition
	var stmts []ast.Stmt
	for {
		if p.peekTokenIs(token.RBRACE) {
			p.nextToken()
			return &ast.Block{Lbrace: lbrace, Stmts: stmts, Rbrace: p.curToken.StartPosition}
		}
		if p.peekTokenIs(token.EOF) {
			p.peekError("block", token.RBRACE, p.peekToken)
			return nil
		}
		if err := p.nextToken(); err != nil {
			return nil
		}
		if p.curTokenIs(token.NEWLINE) {
			continue
		}
		stmt := p.parseStatement()
		if stmt != nil {
			stmts = append(stmts, stmt)
		} else if p.hadNewError() {
			return nil
		}
	}
}

// parseVarDeclCore parses the declarator list of a var/let/const statement
// with cur on the keyword. In for-loop heads, forHead enables early return
// when "in" or "of" follows the first declarator.
func (p *Parser) parseVarDeclCore(forHead bool) *ast.VarDecl {
	decl := &ast.VarDecl{
		KeywordPos: p.curToken.StartPosition,
		Keyword:    p.curToken.Literal,
	}
	for {
		p.skipPeekNewlines()
		if err := p.nextToken(); err != nil {
			return nil
		}
		d := &ast.Declarator{}
		switch p.curToken.Type {
		case token.IDENT:
			d.Name = p.newIdent(p.curToken)
		case token.LBRACE:
			d.Name = p.parseObject()
		case token.LBRACKET:
			d.Name = p.parseArray()
		default:
			p.setTokenError(p.curToken, "invalid declaration name %q", p.curToken.Literal)
			return nil
		}
		if d.Name == nil {
			return nil
		}
		decl.Decls = append(decl.Decls, d)
		if forHead && len(decl.Decls) == 1 && d.Init == nil {
			if p.peekTokenIs(token.IN) || (p.peekTokenIs(token.IDENT) && p.peekToken.Literal == "of") {
				decl.EndPos = d.End()
				return decl
			}
		}
		if p.peekTokenIs(token.ASSIGN) {
			p.nextToken()
			p.skipPeekNewlines()
			if err := p.nextToken(); err != nil {
				return nil
			}
			d.Init = p.parseAssignExpr()
			if d.Init == nil {
				return nil
			}
		}
		decl.EndPos = d.End()
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		return decl
	}
}

func (p *Parser) parseVarDecl() ast.Stmt {
	decl := p.parseVarDeclCore(false)
	if decl == nil {
		return nil
	}
	decl.EndPos = p.finishStatement(decl.EndPos)
	if p.hadNewError() {
		return nil
	}
	return decl
}

func (p *Parser) parseReturn() ast.Stmt {
	ret := &ast.Return{ReturnPos: p.curToken.StartPosition}
	switch p.peekToken.Type {
	case token.SEMICOLON, token.NEWLINE, token.RBRACE, token.EOF:
		ret.EndPos = p.finishStatement(p.curToken.EndPosition)
	default:
		if err := p.nextToken(); err != nil {
			return nil
		}
		ret.Value = p.parseExpression(LOWEST)
		if ret.Value == nil {
			return nil
		}
		ret.EndPos = p.finishStatement(ret.Value.End())
	}
	if p.hadNewError() {
		return nil
	}
	return ret
}

func (p *Parser) parseThrow() ast.Stmt {
	throwPos := p.curToken.StartPosition
	if err := p.nextToken(); err != nil {
		return nil
	}
	value := p.parseExpression(LOWEST)
	if value == nil {
		return nil
	}
	end := p.finishStatement(value.End())
	if p.hadNewError() {
		return nil
	}
	return &ast.Throw{ThrowPos: throwPos, Value: value, EndPos: end}
}

func (p *Parser) parseBreak() ast.Stmt {
	stmt := &ast.Break{BreakPos: p.curToken.StartPosition}
	if p.peekTokenIs(token.IDENT) {
		p.nextToken()
		stmt.Label = p.newIdent(p.curToken)
	}
	stmt.EndPos = p.finishStatement(p.curToken.EndPosition)
	if p.hadNewError() {
		return nil
	}
	return stmt
}

func (p *Parser) parseContinue() ast.Stmt {
	stmt := &ast.Continue{ContinuePos: p.curToken.StartPosition}
	if p.peekTokenIs(token.IDENT) {
		p.nextToken()
		stmt.Label = p.newIdent(p.curToken)
	}
	stmt.EndPos = p.finishStatement(p.curToken.EndPosition)
	if p.hadNewError() {
		return nil
	}
	return stmt
}

func (p *Parser) parseLabeled() ast.Stmt {
	label := p.newIdent(p.curToken)
	p.nextToken() // cur is now ":"
	colon := p.curToken.StartPosition
	p.skipPeekNewlines()
	if err := p.nextToken(); err != nil {
		return nil
	}
	stmt := p.parseStatement()
	if stmt == nil {
		return nil
	}
	return &ast.Labeled{Label: label, Colon: colon, Stmt: stmt}
}

// parseNestedStatement parses the body of a control-flow construct,
// skipping newlines before the statement.
func (p *Parser) parseNestedStatement() ast.Stmt {
	p.skipPeekNewlines()
	if err := p.nextToken(); err != nil {
		return nil
	}
	return p.parseStatement()
}

func (p *Parser) parseIf() ast.Stmt {
	stmt := &ast.If{IfPos: p.curToken.StartPosition}
	if !p.expectPeek("if statement", token.LPAREN) {
		return nil
	}
	p.skipPeekNewlines()
	if err := p.nextToken(); err != nil {
		return nil
	}
	stmt.Cond = p.parseExpression(LOWEST)
	if stmt.Cond == nil {
		return nil
	}
	p.skipPeekNewlines()
	if !p.expectPeek("if statement", token.RPAREN) {
		return nil
	}
	stmt.Then = p.parseNestedStatement()
	if stmt.Then == nil {
		return nil
	}
	if p.skipNewlinesAndPeek(token.ELSE) {
		p.nextToken() // cur is now "else"
		stmt.Else = p.parseNestedStatement()
		if stmt.Else == nil {
			return nil
		}
	}
	return stmt
}

func (p *Parser) parseWhile() ast.Stmt {
	stmt := &ast.While{WhilePos: p.curToken.StartPosition}
	if !p.expectPeek("while statement", token.LPAREN) {
		return nil
	}
	p.skipPeekNewlines()
	if err := p.nextToken(); err != nil {
		return nil
	}
	stmt.Cond = p.parseExpression(LOWEST)
	if stmt.Cond == nil {
		return nil
	}
	p.skipPeekNewlines()
	if !p.expectPeek("while statement", token.RPAREN) {
		return nil
	}
	stmt.Body = p.parseNestedStatement()
	if stmt.Body == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseDoWhile() ast.Stmt {
	stmt := &ast.DoWhile{DoPos: p.curToken.StartPosition}
	stmt.Body = p.parseNestedStatement()
	if stmt.Body == nil {
		return nil
	}
	p.skipPeekNewlines()
	if !p.expectPeek("do/while statement", token.WHILE) {
		return nil
	}
	if !p.expectPeek("do/while statement", token.LPAREN) {
		return nil
	}
	if err := p.nextToken(); err != nil {
		return nil
	}
	stmt.Cond = p.parseExpression(LOWEST)
	if stmt.Cond == nil {
		return nil
	}
	if !p.expectPeek("do/while statement", token.RPAREN) {
		return nil
	}
	stmt.EndPos = p.finishStatement(p.curToken.EndPosition)
	if p.hadNewError() {
		return nil
	}
	return stmt
}

func (p *Parser) parseFor() ast.Stmt {
	forPos := p.curToken.StartPosition
	if !p.expectPeek("for statement", token.LPAREN) {
		return nil
	}

	var init ast.Node
	switch {
	case p.peekTokenIs(token.SEMICOLON):
		p.nextToken() // cur is now the first ";"
	case p.peekTokenIs(token.VAR) || p.peekTokenIs(token.LET) || p.peekTokenIs(token.CONST):
		p.nextToken()
		decl := p.parseVarDeclCore(true)
		if decl == nil {
			return nil
		}
		if p.peekTokenIs(token.IN) || (p.peekTokenIs(token.IDENT) && p.peekToken.Literal == "of") {
			return p.parseForInTail(forPos, decl)
		}
		init = decl
		if !p.expectPeek("for statement", token.SEMICOLON) {
			return nil
		}
	default:
		if err := p.nextToken(); err != nil {
			return nil
		}
		expr := p.parseExpression(LOWEST)
		if expr == nil {
			return nil
		}
		// "for (x in obj)": the relational parse already folded the "in".
		if b, ok := expr.(*ast.Binary); ok && b.Op == "in" && p.peekTokenIs(token.RPAREN) {
			return p.parseForInBody(forPos, b.X, b.Y, false)
		}
		if p.peekTokenIs(token.IDENT) && p.peekToken.Literal == "of" {
			return p.parseForInTail(forPos, expr)
		}
		init = expr
		if !p.expectPeek("for statement", token.SEMICOLON) {
			return nil
		}
	}

	stmt := &ast.For{ForPos: forPos, Init: init}
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	} else {
		if err := p.nextToken(); err != nil {
			return nil
		}
		stmt.Cond = p.parseExpression(LOWEST)
		if stmt.Cond == nil {
			return nil
		}
		if !p.expectPeek("for statement", token.SEMICOLON) {
			return nil
		}
	}
	if !p.peekTokenIs(token.RPAREN) {
		if err := p.nextToken(); err != nil {
			return nil
		}
		stmt.Post = p.parseExpression(LOWEST)
		if stmt.Post == nil {
			return nil
		}
	}
	if !p.expectPeek("for statement", token.RPAREN) {
		return nil
	}
	stmt.Body = p.parseNestedStatement()
	if stmt.Body == nil {
		return nil
	}
	return stmt
}

// parseForInTail handles "for (<decl> in|of …)" with peek on in/of.
func (p *Parser) parseForInTail(forPos token.Position, decl ast.Node) ast.Stmt {
	p.nextToken() // cur is now "in" or "of"
	of := p.curToken.Literal == "of"
	if err := p.nextToken(); err != nil {
		return nil
	}
	x := p.parseExpression(LOWEST)
	if x == nil {
		return nil
	}
	if !p.expectPeek("for statement", token.RPAREN) {
		return nil
	}
	stmt := &ast.ForIn{ForPos: forPos, Decl: decl, X: x, Of: of}
	stmt.Body = p.parseNestedStatement()
	if stmt.Body == nil {
		return nil
	}
	return stmt
}

// parseForInBody finishes a for…in whose target and object were already
// parsed, with peek on ")".
func (p *Parser) parseForInBody(forPos token.Position, target ast.Expr, x ast.Expr, of bool) ast.Stmt {
	p.nextToken() // cur is now ")"
	stmt := &ast.ForIn{ForPos: forPos, Decl: target, X: x, Of: of}
	stmt.Body = p.parseNestedStatement()
	if stmt.Body == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseSwitch() ast.Stmt {
	stmt := &ast.Switch{SwitchPos: p.curToken.StartPosition}
	if !p.expectPeek("switch statement", token.LPAREN) {
		return nil
	}
	if err := p.nextToken(); err != nil {
		return nil
	}
	stmt.Tag = p.parseExpression(LOWEST)
	if stmt.Tag == nil {
		return nil
	}
	if !p.expectPeek("switch statement", token.RPAREN) {
		return nil
	}
	p.skipPeekNewlines()
	if !p.expectPeek("switch statement", token.LBRACE) {
		return nil
	}
	for {
		p.skipPeekNewlines()
		if p.peekTokenIs(token.RBRACE) {
			p.nextToken()
			stmt.Rbrace = p.curToken.StartPosition
			return stmt
		}
		if !p.peekTokenIs(token.CASE) && !p.peekTokenIs(token.DEFAULT) {
			p.peekError("switch statement", token.CASE, p.peekToken)
			return nil
		}
		p.nextToken()
		c := &ast.SwitchCase{CasePos: p.curToken.StartPosition}
		if p.curTokenIs(token.CASE) {
			if err := p.nextToken(); err != nil {
				return nil
			}
			c.Test = p.parseExpression(LOWEST)
			if c.Test == nil {
				return nil
			}
		}
		if !p.expectPeek("switch case", token.COLON) {
			return nil
		}
		for {
			p.skipPeekNewlines()
			if p.peekTokenIs(token.CASE) || p.peekTokenIs(token.DEFAULT) ||
				p.peekTokenIs(token.RBRACE) || p.peekTokenIs(token.EOF) {
				break
			}
			if err := p.nextToken(); err != nil {
				return nil
			}
			inner := p.parseStatement()
			if inner != nil {
				c.Body = append(c.Body, inner)
			} else if p.hadNewError() {
				return nil
			}
		}
		stmt.Cases = append(stmt.Cases, c)
	}
}

func (p *Parser) parseTry() ast.Stmt {
	stmt := &ast.Try{TryPos: p.curToken.StartPosition}
	p.skipPeekNewlines()
	if !p.expectPeek("try statement", token.LBRACE) {
		return nil
	}
	stmt.Body = p.parseBlock()
	if stmt.Body == nil {
		return nil
	}
	if p.skipNewlinesAndPeek(token.CATCH) {
		p.nextToken() // cur is now "catch"
		if p.peekTokenIs(token.LPAREN) {
			p.nextToken()
			if err := p.nextToken(); err != nil {
				return nil
			}
			switch p.curToken.Type {
			case token.IDENT:
				stmt.CatchParam = p.newIdent(p.curToken)
			case token.LBRACE:
				stmt.CatchParam = p.parseObject()
			case token.LBRACKET:
				stmt.CatchParam = p.parseArray()
			default:
				p.setTokenError(p.curToken, "invalid catch parameter %q", p.curToken.Literal)
				return nil
			}
			if stmt.CatchParam == nil {
				return nil
			}
			if !p.expectPeek("catch clause", token.RPAREN) {
				return nil
			}
		}
		p.skipPeekNewlines()
		if !p.expectPeek("catch clause", token.LBRACE) {
			return nil
		}
		stmt.CatchBody = p.parseBlock()
		if stmt.CatchBody == nil {
			return nil
		}
	}
	if p.skipNewlinesAndPeek(token.FINALLY) {
		p.nextToken() // cur is now "finally"
		p.skipPeekNewlines()
		if !p.expectPeek("finally clause", token.LBRACE) {
			return nil
		}
		stmt.FinallyBody = p.parseBlock()
		if stmt.FinallyBody == nil {
			return nil
		}
	}
	if stmt.CatchBody == nil && stmt.FinallyBody == nil {
		p.setTokenError(p.curToken, "missing catch or finally after try")
		return nil
	}
	return stmt
}

func (p *Parser) parseImport() ast.Stmt {
	stmt := &ast.ImportDecl{ImportPos: p.curToken.StartPosition}

	if p.peekTokenIs(token.STRING) {
		p.nextToken()
		stmt.Source = p.parseString().(*ast.String)
		stmt.EndPos = p.finishStatement(stmt.Source.End())
		if p.hadNewError() {
			return nil
		}
		return stmt
	}

	if p.peekTokenIs(token.IDENT) {
		p.nextToken()
		stmt.Default = p.newIdent(p.curToken)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
		}
	}
	switch {
	case p.peekTokenIs(token.ASTERISK):
		p.nextToken()
		if !p.expectPeek("import clause", token.IDENT) || p.curToken.Literal != "as" {
			p.setTokenError(p.curToken, "expected \"as\" in namespace import")
			return nil
		}
		if !p.expectPeek("import clause", token.IDENT) {
			return nil
		}
		stmt.Namespace = p.newIdent(p.curToken)
	case p.peekTokenIs(token.LBRACE):
		p.nextToken()
		specs := p.parseImportSpecs()
		if specs == nil {
			return nil
		}
		stmt.Named = specs
	}

	if !p.expectPeek("import statement", token.IDENT) || p.curToken.Literal != "from" {
		p.setTokenError(p.curToken, "expected \"from\" in import statement")
		return nil
	}
	if !p.expectPeek("import statement", token.STRING) {
		return nil
	}
	stmt.Source = p.parseString().(*ast.String)
	stmt.EndPos = p.finishStatement(stmt.Source.End())
	if p.hadNewError() {
		return nil
	}
	return stmt
}

// parseImportSpecs parses a named import list with cur on "{", leaving cur
// on the closing "}".
func (p *Parser) parseImportSpecs() []*ast.ImportSpec {
	specs := []*ast.ImportSpec{}
	for {
		p.skipPeekNewlines()
		if p.peekTokenIs(token.RBRACE) {
			p.nextToken()
			return specs
		}
		if err := p.nextToken(); err != nil {
			return nil
		}
		if !identLike(p.curToken) {
			p.setTokenError(p.curToken, "invalid import name %q", p.curToken.Literal)
			return nil
		}
		spec := &ast.ImportSpec{Name: p.newIdent(p.curToken)}
		spec.Local = spec.Name
		if p.peekTokenIs(token.IDENT) && p.peekToken.Literal == "as" {
			p.nextToken()
			if !p.expectPeek("import specifier", token.IDENT) {
				return nil
			}
			spec.Local = p.newIdent(p.curToken)
		}
		specs = append(specs, spec)
		p.skipPeekNewlines()
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		if !p.expectPeek("import specifier list", token.RBRACE) {
			return nil
		}
		return specs
	}
}

func (p *Parser) parseExport() ast.Stmt {
	stmt := &ast.ExportDecl{ExportPos: p.curToken.StartPosition}
	switch {
	case p.peekTokenIs(token.DEFAULT):
		p.nextToken()
		if err := p.nextToken(); err != nil {
			return nil
		}
		stmt.Default = true
		stmt.DefaultExpr = p.parseExpression(LOWEST)
		if stmt.DefaultExpr == nil {
			return nil
		}
		stmt.EndPos = p.finishStatement(stmt.DefaultExpr.End())
	case p.peekTokenIs(token.ASTERISK):
		p.nextToken()
		stmt.All = true
		if p.peekTokenIs(token.IDENT) && p.peekToken.Literal == "as" {
			p.nextToken()
			if !p.expectPeek("export clause", token.IDENT) {
				return nil
			}
		}
		if !p.expectPeek("export statement", token.IDENT) || p.curToken.Literal != "from" {
			p.setTokenError(p.curToken, "expected \"from\" in export statement")
			return nil
		}
		if !p.expectPeek("export statement", token.STRING) {
			return nil
		}
		stmt.Source = p.parseString().(*ast.String)
		stmt.EndPos = p.finishStatement(stmt.Source.End())
	case p.peekTokenIs(token.LBRACE):
		p.nextToken()
		specs := p.parseExportSpecs()
		if specs == nil {
			return nil
		}
		stmt.Named = specs
		end := p.curToken.EndPosition
		if p.peekTokenIs(token.IDENT) && p.peekToken.Literal == "from" {
			p.nextToken()
			if !p.expectPeek("export statement", token.STRING) {
				return nil
			}
			stmt.Source = p.parseString().(*ast.String)
			end = stmt.Source.End()
		}
		stmt.EndPos = p.finishStatement(end)
	default:
		if err := p.nextToken(); err != nil {
			return nil
		}
		decl := p.parseStatement()
		if decl == nil {
			return nil
		}
		stmt.Decl = decl
		stmt.EndPos = decl.End()
	}
	if p.hadNewError() {
		return nil
	}
	return stmt
}

// parseExportSpecs parses a named export list with cur on "{", leaving cur
// on the closing "}".
func (p *Parser) parseExportSpecs() []*ast.ExportSpec {
	specs := []*ast.ExportSpec{}
	for {
		p.skipPeekNewlines()
		if p.peekTokenIs(token.RBRACE) {
			p.nextToken()
			return specs
		}
		if err := p.nextToken(); err != nil {
			return nil
		}
		if !identLike(p.curToken) {
			p.setTokenError(p.curToken, "invalid export name %q", p.curToken.Literal)
			return nil
		}
		spec := &ast.ExportSpec{Local: p.newIdent(p.curToken)}
		spec.Exported = spec.Local
		if p.peekTokenIs(token.IDENT) && p.peekToken.Literal == "as" {
			p.nextToken()
			if !p.expectPeek("export specifier", token.IDENT) {
				return nil
			}
			spec.Exported = p.newIdent(p.curToken)
		}
		specs = append(specs, spec)
		p.skipPeekNewlines()
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		if !p.expectPeek("export specifier list", token.RBRACE) {
			return nil
		}
		return specs
	}
}
