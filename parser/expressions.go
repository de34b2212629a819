package parser

import (
	"github.com/deepnoodle-ai/condense/ast"
	"github.com/deepnoodle-ai/condense/internal/token"
)

func isIdentStartRune(r rune) bool {
	return r == '_' || r == '$' || r == '#' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r >= 0x80
}

func isIdentPartRune(r rune) bool {
	return isIdentStartRune(r) || (r >= '0' && r <= '9')
}

// identLike reports whether a token can serve as a property or attribute
// name. Keywords qualify: "a.default" and "a.catch" are valid member
// accesses.
func identLike(t token.Token) bool {
	if t.Literal == "" {
		return false
	}
	for i, r := range t.Literal {
		if i == 0 {
			if !isIdentStartRune(r) {
				return false
			}
		} else if !isIdentPartRune(r) {
			return false
		}
	}
	return true
}

func (p *Parser) parseIdent() ast.Expr {
	tok := p.curToken

	// Contextual "async": async function, async arrow
	if tok.Literal == "async" {
		switch {
		case p.peekTokenIs(token.FUNCTION):
			p.nextToken()
			return p.parseFuncCore(tok.StartPosition, true)
		case p.peekTokenIs(token.IDENT) && p.lookaheadAsyncIdentArrow():
			p.nextToken()
			param := p.newIdent(p.curToken)
			if !p.expectPeek("arrow function", token.ARROW) {
				return nil
			}
			return p.parseArrowBody(tok.StartPosition, []*ast.Param{{Pat: param}}, true)
		case p.peekTokenIs(token.LPAREN) && p.lookaheadParenArrow(false):
			p.nextToken()
			return p.parseArrowFunction(tok.StartPosition, true)
		}
	}

	// Single-parameter arrow: x => ...
	if p.peekTokenIs(token.ARROW) {
		param := p.newIdent(tok)
		p.nextToken() // cur is now "=>"
		return p.parseArrowBody(tok.StartPosition, []*ast.Param{{Pat: param}}, false)
	}

	return p.newIdent(tok)
}

func (p *Parser) parseKeywordIdent() ast.Expr {
	return p.newIdent(p.curToken)
}

// lookaheadAsyncIdentArrow checks for "async x =>" with cur on "async".
func (p *Parser) lookaheadAsyncIdentArrow() bool {
	return p.lookahead(func() bool {
		p.advanceToken() // cur = parameter ident
		return p.peekTokenIs(token.ARROW)
	})
}

// lookaheadParenArrow checks whether a parenthesized group starting at the
// current position is an arrow function parameter list, by scanning to the
// matching ")" and checking for "=>". When fromParen is true, cur is already
// the "("; otherwise peek is.
func (p *Parser) lookaheadParenArrow(fromParen bool) bool {
	return p.lookahead(func() bool {
		if !fromParen {
			p.advanceToken() // cur = "("
		}
		depth := 1
		for depth > 0 {
			if p.peekTokenIs(token.EOF) {
				return false
			}
			p.advanceToken()
			switch p.curToken.Type {
			case token.LPAREN:
				depth++
			case token.RPAREN:
				depth--
			}
		}
		return p.peekTokenIs(token.ARROW)
	})
}

// parseParenOrArrow handles a "(" in expression position: either a
// parenthesized expression or an arrow function parameter list.
func (p *Parser) parseParenOrArrow() ast.Expr {
	if p.lookaheadParenArrow(true) {
		return p.parseArrowFunction(p.curToken.StartPosition, false)
	}
	lparen := p.curToken.StartPosition
	p.skipPeekNewlines()
	if err := p.nextToken(); err != nil {
		return nil
	}
	x := p.parseExpression(LOWEST)
	if x == nil {
		return nil
	}
	p.skipPeekNewlines()
	if !p.expectPeek("parenthesized expression", token.RPAREN) {
		return nil
	}
	return &ast.Paren{Lparen: lparen, X: x, Rparen: p.curToken.StartPosition}
}

// parseArrowFunction parses an arrow function whose parameter list starts at
// the current "(" token.
func (p *Parser) parseArrowFunction(funcPos token.Position, async bool) ast.Expr {
	params := p.parseParams()
	if p.hadNewError() {
		return nil
	}
	if !p.expectPeek("arrow function", token.ARROW) {
		return nil
	}
	return p.parseArrowBody(funcPos, params, async)
}

// parseArrowBody parses an arrow function body with cur on the "=>" token.
func (p *Parser) parseArrowBody(funcPos token.Position, params []*ast.Param, async bool) ast.Expr {
	p.skipPeekNewlines()
	if err := p.nextToken(); err != nil {
		return nil
	}
	fn := &ast.FuncLit{
		FuncPos: funcPos,
		Params:  params,
		Arrow:   true,
		Async:   async,
	}
	if p.curTokenIs(token.LBRACE) {
		fn.Body = p.parseBlock()
		if fn.Body == nil {
			return nil
		}
	} else {
		fn.ExprBody = p.parseAssignExpr()
		if fn.ExprBody == nil {
			return nil
		}
	}
	return fn
}

// parseParams parses a parenthesized parameter list with cur on "(";
// it leaves cur on the closing ")".
func (p *Parser) parseParams() []*ast.Param {
	params := []*ast.Param{}
	for {
		p.skipPeekNewlines()
		if p.peekTokenIs(token.RPAREN) {
			p.nextToken()
			return params
		}
		if err := p.nextToken(); err != nil {
			return nil
		}
		param := &ast.Param{}
		if p.curTokenIs(token.SPREAD) {
			param.Rest = true
			if err := p.nextToken(); err != nil {
				return nil
			}
		}
		switch p.curToken.Type {
		case token.IDENT:
			param.Pat = p.newIdent(p.curToken)
		case token.LBRACE:
			param.Pat = p.parseObject()
		case token.LBRACKET:
			param.Pat = p.parseArray()
		default:
			p.setTokenError(p.curToken, "invalid function parameter %q", p.curToken.Literal)
			return nil
		}
		if param.Pat == nil {
			return nil
		}
		if p.peekTokenIs(token.ASSIGN) {
			p.nextToken()
			p.skipPeekNewlines()
			if err := p.nextToken(); err != nil {
				return nil
			}
			param.Default = p.parseAssignExpr()
			if param.Default == nil {
				return nil
			}
		}
		params = append(params, param)
		p.skipPeekNewlines()
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		if !p.expectPeek("parameter list", token.RPAREN) {
			return nil
		}
		return params
	}
}

func (p *Parser) parseFuncExpr() ast.Expr {
	return p.parseFuncCore(p.curToken.StartPosition, false)
}

// parseFuncCore parses a function expression with cur on "function".
func (p *Parser) parseFuncCore(funcPos token.Position, async bool) ast.Expr {
	fn := &ast.FuncLit{FuncPos: funcPos, Async: async}
	if p.peekTokenIs(token.ASTERISK) {
		fn.Generator = true
		p.nextToken()
	}
	if p.peekTokenIs(token.IDENT) {
		p.nextToken()
		fn.Name = p.newIdent(p.curToken)
	}
	if !p.expectPeek("function", token.LPAREN) {
		return nil
	}
	fn.Params = p.parseParams()
	if p.hadNewError() {
		return nil
	}
	p.skipPeekNewlines()
	if !p.expectPeek("function body", token.LBRACE) {
		return nil
	}
	fn.Body = p.parseBlock()
	if fn.Body == nil {
		return nil
	}
	return fn
}

func (p *Parser) parseClassExpr() ast.Expr {
	cls := &ast.ClassLit{ClassPos: p.curToken.StartPosition}
	if p.peekTokenIs(token.IDENT) {
		p.nextToken()
		cls.Name = p.newIdent(p.curToken)
	}
	if p.peekTokenIs(token.EXTENDS) {
		p.nextToken()
		if err := p.nextToken(); err != nil {
			return nil
		}
		cls.Extends = p.parseNode(UNARY)
		if cls.Extends == nil {
			return nil
		}
	}
	if !p.expectPeek("class body", token.LBRACE) {
		return nil
	}
	cls.Lbrace = p.curToken.StartPosition
	for {
		p.skipPeekNewlines()
		for p.peekTokenIs(token.SEMICOLON) {
			p.nextToken()
			p.skipPeekNewlines()
		}
		if p.peekTokenIs(token.RBRACE) {
			p.nextToken()
			cls.Rbrace = p.curToken.StartPosition
			return cls
		}
		if p.peekTokenIs(token.EOF) {
			p.peekError("class body", token.RBRACE, p.peekToken)
			return nil
		}
		if err := p.nextToken(); err != nil {
			return nil
		}
		member := p.parseClassMember()
		if member == nil {
			return nil
		}
		cls.Members = append(cls.Members, member)
	}
}

// parseClassMember parses one class member with cur on its first token.
func (p *Parser) parseClassMember() *ast.ClassMember {
	member := &ast.ClassMember{Kind: "method"}
	async := false
	if p.curToken.Literal == "static" && !p.peekTokenIs(token.LPAREN) && !p.peekTokenIs(token.ASSIGN) {
		member.Static = true
		if err := p.nextToken(); err != nil {
			return nil
		}
	}
	if p.curToken.Literal == "async" && !p.peekTokenIs(token.LPAREN) && !p.peekTokenIs(token.ASSIGN) {
		async = true
		if err := p.nextToken(); err != nil {
			return nil
		}
	}
	generator := false
	if p.curTokenIs(token.ASTERISK) {
		generator = true
		if err := p.nextToken(); err != nil {
			return nil
		}
	}
	if (p.curToken.Literal == "get" || p.curToken.Literal == "set") &&
		!p.peekTokenIs(token.LPAREN) && !p.peekTokenIs(token.ASSIGN) {
		member.Kind = p.curToken.Literal
		if err := p.nextToken(); err != nil {
			return nil
		}
	}

	switch {
	case p.curTokenIs(token.STRING):
		member.Key = p.parseString()
	case p.curTokenIs(token.NUMBER):
		member.Key = p.parseNumber()
	case p.curTokenIs(token.LBRACKET):
		member.Computed = true
		if err := p.nextToken(); err != nil {
			return nil
		}
		member.Key = p.parseExpression(LOWEST)
		if member.Key == nil {
			return nil
		}
		if !p.expectPeek("computed member name", token.RBRACKET) {
			return nil
		}
	case identLike(p.curToken):
		member.Key = p.newIdent(p.curToken)
	default:
		p.setTokenError(p.curToken, "invalid class member name %q", p.curToken.Literal)
		return nil
	}

	switch {
	case p.peekTokenIs(token.LPAREN):
		p.nextToken()
		fn := &ast.FuncLit{
			FuncPos:   member.Key.Pos(),
			Async:     async,
			Generator: generator,
		}
		fn.Params = p.parseParams()
		if p.hadNewError() {
			return nil
		}
		p.skipPeekNewlines()
		if !p.expectPeek("method body", token.LBRACE) {
			return nil
		}
		fn.Body = p.parseBlock()
		if fn.Body == nil {
			return nil
		}
		member.Value = fn
	case p.peekTokenIs(token.ASSIGN):
		member.Kind = "field"
		p.nextToken()
		p.skipPeekNewlines()
		if err := p.nextToken(); err != nil {
			return nil
		}
		member.Value = p.parseAssignExpr()
		if member.Value == nil {
			return nil
		}
	default:
		member.Kind = "field"
	}
	return member
}

func (p *Parser) parseNew() ast.Expr {
	newTok := p.curToken
	// new.target
	if p.peekTokenIs(token.PERIOD) {
		return p.newIdent(newTok)
	}
	if err := p.nextToken(); err != nil {
		return nil
	}
	callee := p.parseNode(POSTFIX)
	if callee == nil {
		return nil
	}
	if call, ok := callee.(*ast.Call); ok {
		return &ast.New{
			NewPos:  newTok.StartPosition,
			Callee:  call.Fun,
			Lparen:  call.Lparen,
			Args:    call.Args,
			Rparen:  call.Rparen,
			HasArgs: true,
		}
	}
	return &ast.New{NewPos: newTok.StartPosition, Callee: callee}
}

func (p *Parser) parseUnary() ast.Expr {
	opTok := p.curToken
	if err := p.nextToken(); err != nil {
		return nil
	}
	p.eatNewlines()
	x := p.parseNode(UNARY)
	if x == nil {
		return nil
	}
	return &ast.Unary{OpPos: opTok.StartPosition, Op: opTok.Literal, X: x}
}

func (p *Parser) parseYield() ast.Expr {
	opTok := p.curToken
	op := "yield"
	if p.peekTokenIs(token.ASTERISK) {
		op = "yield*"
		p.nextToken()
	}
	switch p.peekToken.Type {
	case token.SEMICOLON, token.NEWLINE, token.RBRACE, token.RPAREN,
		token.RBRACKET, token.COMMA, token.COLON, token.EOF:
		return p.newIdent(opTok)
	}
	if err := p.nextToken(); err != nil {
		return nil
	}
	x := p.parseAssignExpr()
	if x == nil {
		return nil
	}
	return &ast.Unary{OpPos: opTok.StartPosition, Op: op, X: x}
}

func (p *Parser) parsePrefixUpdate() ast.Expr {
	opTok := p.curToken
	if err := p.nextToken(); err != nil {
		return nil
	}
	x := p.parseNode(UNARY)
	if x == nil {
		return nil
	}
	return &ast.Update{OpPos: opTok.StartPosition, Op: opTok.Literal, X: x, Prefix: true}
}

func (p *Parser) parsePostfixUpdate(left ast.Expr) ast.Expr {
	return &ast.Update{
		OpPos:  p.curToken.StartPosition,
		Op:     p.curToken.Literal,
		X:      left,
		Prefix: false,
	}
}

func (p *Parser) parseSpread() ast.Expr {
	ellipsis := p.curToken.StartPosition
	if err := p.nextToken(); err != nil {
		return nil
	}
	x := p.parseAssignExpr()
	if x == nil {
		return nil
	}
	return &ast.Spread{Ellipsis: ellipsis, X: x}
}

func (p *Parser) parseBinary(left ast.Expr) ast.Expr {
	opTok := p.curToken
	prec := precedences[opTok.Type]
	if opTok.Type == token.POW {
		prec-- // right-associative
	}
	p.skipPeekNewlines()
	if err := p.nextToken(); err != nil {
		return nil
	}
	right := p.parseNode(prec)
	if right == nil {
		return nil
	}
	return &ast.Binary{
		X:     left,
		OpPos: opTok.StartPosition,
		Op:    opTok.Literal,
		Y:     right,
	}
}

func (p *Parser) parseAssign(left ast.Expr) ast.Expr {
	opTok := p.curToken
	p.skipPeekNewlines()
	if err := p.nextToken(); err != nil {
		return nil
	}
	value := p.parseNode(ASSIGNMENT - 1) // right-associative
	if value == nil {
		return nil
	}
	return &ast.Assign{
		Target: left,
		OpPos:  opTok.StartPosition,
		Op:     assignOps[opTok.Type],
		Value:  value,
	}
}

func (p *Parser) parseTernary(left ast.Expr) ast.Expr {
	question := p.curToken.StartPosition
	p.skipPeekNewlines()
	if err := p.nextToken(); err != nil {
		return nil
	}
	thenExpr := p.parseAssignExpr()
	if thenExpr == nil {
		return nil
	}
	if !p.skipNewlinesAndPeek(token.COLON) {
		p.peekError("ternary expression", token.COLON, p.peekToken)
		return nil
	}
	p.nextToken() // cur is now ":"
	colon := p.curToken.StartPosition
	p.skipPeekNewlines()
	if err := p.nextToken(); err != nil {
		return nil
	}
	elseExpr := p.parseNode(TERNARY - 1) // right-associative
	if elseExpr == nil {
		return nil
	}
	return &ast.Cond{
		Test:     left,
		Question: question,
		Then:     thenExpr,
		Colon:    colon,
		Else:     elseExpr,
	}
}

func (p *Parser) parseSequence(left ast.Expr) ast.Expr {
	p.skipPeekNewlines()
	if err := p.nextToken(); err != nil {
		return nil
	}
	right := p.parseAssignExpr()
	if right == nil {
		return nil
	}
	if seq, ok := left.(*ast.Seq); ok {
		seq.Exprs = append(seq.Exprs, right)
		return seq
	}
	return &ast.Seq{Exprs: []ast.Expr{left, right}}
}

func (p *Parser) parseCall(left ast.Expr) ast.Expr {
	lparen := p.curToken.StartPosition
	args := p.parseArgs()
	if p.hadNewError() {
		return nil
	}
	return &ast.Call{
		Fun:    left,
		Lparen: lparen,
		Args:   args,
		Rparen: p.curToken.StartPosition,
	}
}

// parseArgs parses a call argument list with cur on "(";
// it leaves cur on the closing ")".
func (p *Parser) parseArgs() []ast.Expr {
	args := []ast.Expr{}
	for {
		p.skipPeekNewlines()
		if p.peekTokenIs(token.RPAREN) {
			p.nextToken()
			return args
		}
		if err := p.nextToken(); err != nil {
			return nil
		}
		arg := p.parseAssignExpr()
		if arg == nil {
			return nil
		}
		args = append(args, arg)
		p.skipPeekNewlines()
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		if !p.expectPeek("argument list", token.RPAREN) {
			return nil
		}
		return args
	}
}

func (p *Parser) parseIndex(left ast.Expr) ast.Expr {
	lbrack := p.curToken.StartPosition
	p.skipPeekNewlines()
	if err := p.nextToken(); err != nil {
		return nil
	}
	idx := p.parseExpression(LOWEST)
	if idx == nil {
		return nil
	}
	p.skipPeekNewlines()
	if !p.expectPeek("index expression", token.RBRACKET) {
		return nil
	}
	return &ast.Index{
		X:      left,
		Lbrack: lbrack,
		Index:  idx,
		Rbrack: p.curToken.StartPosition,
	}
}

func (p *Parser) parseMember(left ast.Expr) ast.Expr {
	period := p.curToken.StartPosition
	if err := p.nextToken(); err != nil {
		return nil
	}
	if !identLike(p.curToken) {
		p.setTokenError(p.curToken, "invalid property name %q", p.curToken.Literal)
		return nil
	}
	return &ast.Member{
		X:      left,
		Period: period,
		Attr:   p.newIdent(p.curToken),
	}
}

func (p *Parser) parseOptionalChain(left ast.Expr) ast.Expr {
	period := p.curToken.StartPosition
	switch {
	case p.peekTokenIs(token.LPAREN):
		p.nextToken()
		lparen := p.curToken.StartPosition
		args := p.parseArgs()
		if p.hadNewError() {
			return nil
		}
		return &ast.Call{
			Fun:      left,
			Lparen:   lparen,
			Args:     args,
			Rparen:   p.curToken.StartPosition,
			Optional: true,
		}
	case p.peekTokenIs(token.LBRACKET):
		p.nextToken()
		lbrack := p.curToken.StartPosition
		p.skipPeekNewlines()
		if err := p.nextToken(); err != nil {
			return nil
		}
		idx := p.parseExpression(LOWEST)
		if idx == nil {
			return nil
		}
		p.skipPeekNewlines()
		if !p.expectPeek("index expression", token.RBRACKET) {
			return nil
		}
		return &ast.Index{
			X:        left,
			Lbrack:   lbrack,
			Index:    idx,
			Rbrack:   p.curToken.StartPosition,
			Optional: true,
		}
	default:
		if err := p.nextToken(); err != nil {
			return nil
		}
		if !identLike(p.curToken) {
			p.setTokenError(p.curToken, "invalid property name %q", p.curToken.Literal)
			return nil
		}
		return &ast.Member{
			X:        left,
			Period:   period,
			Attr:     p.newIdent(p.curToken),
			Optional: true,
		}
	}
}

func (p *Parser) parseTaggedTemplate(left ast.Expr) ast.Expr {
	quasi := p.parseTemplate()
	if quasi == nil {
		return nil
	}
	return &ast.TaggedTemplate{Tag: left, Quasi: quasi.(*ast.TemplateLit)}
}
