package parser

import (
	"strconv"
	"strings"

	"github.com/deepnoodle-ai/condense/ast"
	"github.com/deepnoodle-ai/condense/internal/token"
)

func (p *Parser) parseNumber() ast.Expr {
	tok := p.curToken
	return &ast.Number{
		ValuePos: tok.StartPosition,
		Literal:  tok.Literal,
		Value:    numericValue(tok.Literal),
	}
}

// numericValue converts a numeric literal's raw text to its value. The value
// is informational (module ids, mostly); unparseable forms yield 0.
func numericValue(literal string) float64 {
	s := strings.ReplaceAll(literal, "_", "")
	s = strings.TrimSuffix(s, "n")
	if len(s) > 2 && s[0] == '0' {
		switch s[1] {
		case 'x', 'X':
			if v, err := strconv.ParseUint(s[2:], 16, 64); err == nil {
				return float64(v)
			}
			return 0
		case 'o', 'O':
			if v, err := strconv.ParseUint(s[2:], 8, 64); err == nil {
				return float64(v)
			}
			return 0
		case 'b', 'B':
			if v, err := strconv.ParseUint(s[2:], 2, 64); err == nil {
				return float64(v)
			}
			return 0
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func (p *Parser) parseString() ast.Expr {
	tok := p.curToken
	return &ast.String{
		QuotePos: tok.StartPosition,
		Raw:      tok.Literal,
		Value:    unquoteString(tok.Literal),
	}
}

// unquoteString strips the surrounding quotes from a string literal and
// resolves the common escape sequences.
func unquoteString(raw string) string {
	if len(raw) < 2 {
		return raw
	}
	body := raw[1 : len(raw)-1]
	if !strings.ContainsRune(body, '\\') {
		return body
	}
	var out strings.Builder
	out.Grow(len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i+1 >= len(body) {
			out.WriteByte(c)
			continue
		}
		i++
		switch body[i] {
		case 'n':
			out.WriteByte('\n')
		case 't':
			out.WriteByte('\t')
		case 'r':
			out.WriteByte('\r')
		case 'b':
			out.WriteByte('\b')
		case 'f':
			out.WriteByte('\f')
		case 'v':
			out.WriteByte('\v')
		case '0':
			out.WriteByte(0)
		case 'x':
			if i+2 < len(body) {
				if v, err := strconv.ParseUint(body[i+1:i+3], 16, 8); err == nil {
					out.WriteByte(byte(v))
					i += 2
					continue
				}
			}
			out.WriteByte('x')
		case 'u':
			if i+4 < len(body) {
				if v, err := strconv.ParseUint(body[i+1:i+5], 16, 32); err == nil {
					out.WriteRune(rune(v))
					i += 4
					continue
				}
			}
			out.WriteByte('u')
		case '\n':
			// line continuation
		default:
			out.WriteByte(body[i])
		}
	}
	return out.String()
}

func (p *Parser) parseRegex() ast.Expr {
	tok := p.curToken
	return &ast.Regex{SlashPos: tok.StartPosition, Raw: tok.Literal}
}

func (p *Parser) parseBoolean() ast.Expr {
	return &ast.Bool{
		ValuePos: p.curToken.StartPosition,
		Value:    p.curTokenIs(token.TRUE),
	}
}

func (p *Parser) parseNull() ast.Expr {
	return &ast.Null{ValuePos: p.curToken.StartPosition}
}

// parseTemplate parses a template literal with cur on the TEMPLATE_HEAD or
// TEMPLATE_NO_SUB token.
func (p *Parser) parseTemplate() ast.Expr {
	tpl := &ast.TemplateLit{
		Backtick: p.curToken.StartPosition,
		Quasis:   []string{p.curToken.Literal},
	}
	if p.curTokenIs(token.TEMPLATE_NO_SUB) {
		tpl.EndPos = p.curToken.EndPosition
		return tpl
	}
	for {
		if err := p.nextToken(); err != nil {
			return nil
		}
		expr := p.parseExpression(LOWEST)
		if expr == nil {
			return nil
		}
		tpl.Exprs = append(tpl.Exprs, expr)
		p.skipPeekNewlines()
		switch p.peekToken.Type {
		case token.TEMPLATE_MIDDLE:
			p.nextToken()
			tpl.Quasis = append(tpl.Quasis, p.curToken.Literal)
		case token.TEMPLATE_TAIL:
			p.nextToken()
			tpl.Quasis = append(tpl.Quasis, p.curToken.Literal)
			tpl.EndPos = p.curToken.EndPosition
			return tpl
		default:
			p.peekError("template literal", token.TEMPLATE_TAIL, p.peekToken)
			return nil
		}
	}
}

// parseArray parses an array literal with cur on "[".
func (p *Parser) parseArray() ast.Expr {
	arr := &ast.Array{Lbrack: p.curToken.StartPosition}
	for {
		p.skipPeekNewlines()
		if p.peekTokenIs(token.RBRACKET) {
			p.nextToken()
			arr.Rbrack = p.curToken.StartPosition
			return arr
		}
		if p.peekTokenIs(token.COMMA) {
			// elision
			arr.Elements = append(arr.Elements, nil)
			p.nextToken()
			continue
		}
		if err := p.nextToken(); err != nil {
			return nil
		}
		el := p.parseAssignExpr()
		if el == nil {
			return nil
		}
		arr.Elements = append(arr.Elements, el)
		p.skipPeekNewlines()
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		if !p.expectPeek("array literal", token.RBRACKET) {
			return nil
		}
		arr.Rbrack = p.curToken.StartPosition
		return arr
	}
}

// parseObject parses an object literal (or object pattern) with cur on "{".
func (p *Parser) parseObject() ast.Expr {
	obj := &ast.Object{Lbrace: p.curToken.StartPosition}
	for {
		p.skipPeekNewlines()
		if p.peekTokenIs(token.RBRACE) {
			p.nextToken()
			obj.Rbrace = p.curToken.StartPosition
			return obj
		}
		if err := p.nextToken(); err != nil {
			return nil
		}
		prop := p.parseProperty()
		if prop == nil {
			return nil
		}
		obj.Props = append(obj.Props, prop)
		p.skipPeekNewlines()
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		if !p.expectPeek("object literal", token.RBRACE) {
			return nil
		}
		obj.Rbrace = p.curToken.StartPosition
		return obj
	}
}

// parseProperty parses one object literal entry with cur on its first token.
func (p *Parser) parseProperty() *ast.Property {
	if p.curTokenIs(token.SPREAD) {
		x := p.parseSpread()
		if x == nil {
			return nil
		}
		return &ast.Property{Value: x}
	}

	async := false
	generator := false
	kind := ""
	if (p.curToken.Literal == "get" || p.curToken.Literal == "set") && p.propertyKeyFollows() {
		kind = p.curToken.Literal
		if err := p.nextToken(); err != nil {
			return nil
		}
	}
	if p.curToken.Literal == "async" && p.propertyKeyFollows() {
		async = true
		if err := p.nextToken(); err != nil {
			return nil
		}
	}
	if p.curTokenIs(token.ASTERISK) {
		generator = true
		if err := p.nextToken(); err != nil {
			return nil
		}
	}

	prop := &ast.Property{}
	switch {
	case p.curTokenIs(token.STRING):
		prop.Key = p.parseString()
	case p.curTokenIs(token.NUMBER):
		prop.Key = p.parseNumber()
	case p.curTokenIs(token.LBRACKET):
		prop.Computed = true
		if err := p.nextToken(); err != nil {
			return nil
		}
		prop.Key = p.parseExpression(LOWEST)
		if prop.Key == nil {
			return nil
		}
		if !p.expectPeek("computed property name", token.RBRACKET) {
			return nil
		}
	case identLike(p.curToken):
		prop.Key = p.newIdent(p.curToken)
	default:
		p.setTokenError(p.curToken, "invalid property name %q", p.curToken.Literal)
		return nil
	}

	switch {
	case p.peekTokenIs(token.LPAREN) || kind == "get" || kind == "set":
		// method or accessor
		if !p.expectPeek("method definition", token.LPAREN) {
			return nil
		}
		fn := &ast.FuncLit{FuncPos: prop.Key.Pos(), Async: async, Generator: generator}
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
		prop.Value = fn
		prop.Method = true
	case p.peekTokenIs(token.COLON):
		p.nextToken()
		p.skipPeekNewlines()
		if err := p.nextToken(); err != nil {
			return nil
		}
		prop.Value = p.parseAssignExpr()
		if prop.Value == nil {
			return nil
		}
	case p.peekTokenIs(token.ASSIGN):
		// shorthand with default, in destructuring patterns: { a = 1 }
		ident, ok := prop.Key.(*ast.Ident)
		if !ok {
			p.setTokenError(p.peekToken, "unexpected %q in object literal", p.peekToken.Literal)
			return nil
		}
		p.nextToken()
		opPos := p.curToken.StartPosition
		p.skipPeekNewlines()
		if err := p.nextToken(); err != nil {
			return nil
		}
		def := p.parseAssignExpr()
		if def == nil {
			return nil
		}
		prop.Shorthand = true
		prop.Value = &ast.Assign{Target: ident, OpPos: opPos, Op: "=", Value: def}
	default:
		// shorthand: { a }
		ident, ok := prop.Key.(*ast.Ident)
		if !ok {
			p.setTokenError(p.curToken, "invalid shorthand property")
			return nil
		}
		prop.Shorthand = true
		prop.Value = ident
	}
	return prop
}

// propertyKeyFollows reports whether the peek token can begin a property key,
// which disambiguates the get/set/async modifiers from properties that use
// those words as names.
func (p *Parser) propertyKeyFollows() bool {
	switch p.peekToken.Type {
	case token.STRING, token.NUMBER, token.LBRACKET, token.ASTERISK:
		return true
	default:
		return identLike(p.peekToken)
	}
}
