// Package parser is used to generate the abstract syntax tree (AST) for an
// ECMAScript program.
//
// A parser is created by calling New() with a lexer as input. The parser
// should then be used only once, by calling parser.Parse() to produce the AST.
package parser

import (
	"context"
	"fmt"

	"github.com/deepnoodle-ai/condense/ast"
	"github.com/deepnoodle-ai/condense/internal/lexer"
	"github.com/deepnoodle-ai/condense/internal/token"
)

type (
	prefixParseFn func() ast.Expr
	infixParseFn  func(ast.Expr) ast.Expr
)

// statementTerminators defines tokens that can end a statement.
//
// NEWLINE HANDLING POLICY:
//  1. Trailing operators continue expressions: "x +\ny" parses as one expression
//  2. Newlines at start of line terminate expressions: "x\ny" parses as two statements
//  3. Inside parentheses, brackets, and argument lists, newlines are skipped
//  4. A line starting with "." or "?." continues the previous expression
//
// Minified and bundler-produced sources are semicolon-dense, so this
// approximation of automatic semicolon insertion holds for the input
// contract; the span-splicing emitter never re-serializes unchanged text,
// so a statement split that real ASI would join has no textual effect.
var statementTerminators = map[token.Type]bool{
	token.SEMICOLON: true,
	token.NEWLINE:   true,
	token.RBRACE:    true,
	token.EOF:       true,
}

// Parse the provided input as ECMAScript source code and return the AST.
// This is a shorthand way to create a Lexer and Parser and then call Parse.
func Parse(ctx context.Context, input string, options ...Option) (*ast.Program, error) {
	var filename string
	for _, opt := range options {
		var probe Parser
		opt(&probe)
		if probe.filename != "" {
			filename = probe.filename
			break
		}
	}
	l := lexer.New(input)
	if filename != "" {
		l.SetFilename(filename)
	}
	p := New(l, options...)
	return p.Parse(ctx)
}

// Option is a configuration function for a Parser.
type Option func(*Parser)

// WithFilename sets the file name used in positions and error messages.
func WithFilename(filename string) Option {
	return func(p *Parser) {
		p.filename = filename
	}
}

// WithMaxDepth sets the maximum nesting depth for the parser.
// This prevents stack overflow on deeply nested input.
// The default is 500.
func WithMaxDepth(depth int) Option {
	return func(p *Parser) {
		p.maxDepth = depth
	}
}

// DefaultMaxDepth is the default maximum nesting depth for parsing.
const DefaultMaxDepth = 500

// MaxErrors is the maximum number of errors to collect before stopping.
const MaxErrors = 10

// Parser object
type Parser struct {
	// the Context supplied in the Parse() call
	ctx context.Context

	// l is our lexer
	l *lexer.Lexer

	// prevToken holds the previous token, which we already processed.
	prevToken token.Token

	// curToken holds the current token from the lexer.
	curToken token.Token

	// peekToken holds the next token from the lexer.
	peekToken token.Token

	// parsing errors collected during parsing
	errors []ParserError

	// stmtErrorCount tracks error count at start of current statement.
	stmtErrorCount int

	// prefixParseFns holds a map of parsing methods for prefix-based syntax.
	prefixParseFns map[token.Type]prefixParseFn

	// infixParseFns holds a map of parsing methods for infix-based syntax.
	infixParseFns map[token.Type]infixParseFn

	// The filename of the input
	filename string

	// Current recursion depth
	depth int

	// Maximum allowed recursion depth
	maxDepth int
}

// New returns a Parser for the program provided by the given Lexer.
func New(l *lexer.Lexer, options ...Option) *Parser {
	p := &Parser{
		l:              l,
		prefixParseFns: map[token.Type]prefixParseFn{},
		infixParseFns:  map[token.Type]infixParseFn{},
		maxDepth:       DefaultMaxDepth,
	}
	for _, opt := range options {
		opt(p)
	}

	// Prime the token pump
	p.nextToken() // makes curToken=<empty>, peekToken=token[0]
	p.nextToken() // makes curToken=token[0], peekToken=token[1]

	// Register prefix functions
	p.registerPrefix(token.IDENT, p.parseIdent)
	p.registerPrefix(token.NUMBER, p.parseNumber)
	p.registerPrefix(token.STRING, p.parseString)
	p.registerPrefix(token.REGEX, p.parseRegex)
	p.registerPrefix(token.TEMPLATE_HEAD, p.parseTemplate)
	p.registerPrefix(token.TEMPLATE_NO_SUB, p.parseTemplate)
	p.registerPrefix(token.TRUE, p.parseBoolean)
	p.registerPrefix(token.FALSE, p.parseBoolean)
	p.registerPrefix(token.NULL, p.parseNull)
	p.registerPrefix(token.THIS, p.parseKeywordIdent)
	p.registerPrefix(token.SUPER, p.parseKeywordIdent)
	p.registerPrefix(token.IMPORT, p.parseKeywordIdent)
	p.registerPrefix(token.FUNCTION, p.parseFuncExpr)
	p.registerPrefix(token.CLASS, p.parseClassExpr)
	p.registerPrefix(token.NEW, p.parseNew)
	p.registerPrefix(token.BANG, p.parseUnary)
	p.registerPrefix(token.TILDE, p.parseUnary)
	p.registerPrefix(token.PLUS, p.parseUnary)
	p.registerPrefix(token.MINUS, p.parseUnary)
	p.registerPrefix(token.TYPEOF, p.parseUnary)
	p.registerPrefix(token.VOID, p.parseUnary)
	p.registerPrefix(token.DELETE, p.parseUnary)
	p.registerPrefix(token.AWAIT, p.parseUnary)
	p.registerPrefix(token.YIELD, p.parseYield)
	p.registerPrefix(token.PLUS_PLUS, p.parsePrefixUpdate)
	p.registerPrefix(token.MINUS_MINUS, p.parsePrefixUpdate)
	p.registerPrefix(token.LPAREN, p.parseParenOrArrow)
	p.registerPrefix(token.LBRACKET, p.parseArray)
	p.registerPrefix(token.LBRACE, p.parseObject)
	p.registerPrefix(token.SPREAD, p.parseSpread)
	p.registerPrefix(token.EOF, p.illegalToken)
	p.registerPrefix(token.ILLEGAL, p.illegalToken)

	// Register infix functions
	for _, t := range []token.Type{
		token.PLUS, token.MINUS, token.ASTERISK, token.SLASH, token.MOD,
		token.POW, token.LT_LT, token.GT_GT, token.GT_GT_GT,
		token.AMPERSAND, token.PIPE, token.CARET,
		token.EQ, token.NOT_EQ, token.STRICT_EQ, token.STRICT_NOT_EQ,
		token.LT, token.LT_EQ, token.GT, token.GT_EQ,
		token.IN, token.INSTANCEOF,
		token.AND, token.OR, token.NULLISH,
	} {
		p.registerInfix(t, p.parseBinary)
	}
	for t := range assignOps {
		p.registerInfix(t, p.parseAssign)
	}
	p.registerInfix(token.QUESTION, p.parseTernary)
	p.registerInfix(token.COMMA, p.parseSequence)
	p.registerInfix(token.LPAREN, p.parseCall)
	p.registerInfix(token.LBRACKET, p.parseIndex)
	p.registerInfix(token.PERIOD, p.parseMember)
	p.registerInfix(token.QUESTION_DOT, p.parseOptionalChain)
	p.registerInfix(token.PLUS_PLUS, p.parsePostfixUpdate)
	p.registerInfix(token.MINUS_MINUS, p.parsePostfixUpdate)
	p.registerInfix(token.TEMPLATE_HEAD, p.parseTaggedTemplate)
	p.registerInfix(token.TEMPLATE_NO_SUB, p.parseTaggedTemplate)

	return p
}

// advanceToken moves to the next token from the lexer without error checking.
// Used internally during error recovery and lookahead.
func (p *Parser) advanceToken() {
	p.prevToken = p.curToken
	p.curToken = p.peekToken
	p.peekToken, _ = p.l.Next()
}

// nextToken moves to the next token from the lexer, updating all of
// prevToken, curToken, and peekToken.
func (p *Parser) nextToken() error {
	var err error
	p.prevToken = p.curToken
	p.curToken = p.peekToken
	p.peekToken, err = p.l.Next()
	if err == nil {
		return nil
	}
	// The lexer encountered an error. We consider all lexer errors
	// "syntax errors" and parsing will now be considered broken.
	p.addError(NewSyntaxError(ErrorOpts{
		Cause:         err,
		File:          p.l.Filename(),
		StartPosition: p.peekToken.StartPosition,
		EndPosition:   p.peekToken.EndPosition,
		SourceCode:    p.l.GetLineText(p.peekToken),
	}))
	return err
}

// Parse the program that is provided via the lexer.
// Returns the AST and any errors encountered. If there are errors, the AST
// may be partial (containing only successfully parsed statements).
func (p *Parser) Parse(ctx context.Context) (*ast.Program, error) {
	p.ctx = ctx
	if p.hasErrors() {
		return nil, NewErrors(p.errors)
	}
	var statements []ast.Stmt
	for p.curToken.Type != token.EOF {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		if p.tooManyErrors() {
			break
		}
		p.stmtErrorCount = len(p.errors)
		stmt := p.parseStatement()
		if stmt != nil {
			statements = append(statements, stmt)
		} else if p.hadNewError() {
			p.synchronize()
		}
		p.nextToken()
	}
	program := &ast.Program{
		Stmts:    statements,
		Comments: p.collectComments(),
		EOFPos:   p.curToken.StartPosition,
	}
	if p.hasErrors() {
		return program, NewErrors(p.errors)
	}
	return program, nil
}

func (p *Parser) collectComments() []*ast.Comment {
	lexComments := p.l.Comments()
	comments := make([]*ast.Comment, 0, len(lexComments))
	for _, c := range lexComments {
		comments = append(comments, &ast.Comment{
			Start:  c.StartPosition,
			EndPos: c.EndPosition,
			Text:   c.Text,
			Block:  c.Block,
		})
	}
	return comments
}

// registerPrefix registers a function for handling a prefix-based expression.
func (p *Parser) registerPrefix(tokenType token.Type, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

// registerInfix registers a function for handling an infix-based expression.
func (p *Parser) registerInfix(tokenType token.Type, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

// addError appends an error to the errors slice.
func (p *Parser) addError(err ParserError) {
	p.errors = append(p.errors, err)
}

// hasErrors returns true if any errors have been recorded.
func (p *Parser) hasErrors() bool {
	return len(p.errors) > 0
}

// tooManyErrors returns true if the error limit has been reached.
func (p *Parser) tooManyErrors() bool {
	return len(p.errors) >= MaxErrors
}

// hadNewError returns true if an error was added during the current statement.
func (p *Parser) hadNewError() bool {
	return len(p.errors) > p.stmtErrorCount
}

// synchronize skips tokens until a statement boundary is reached.
// This is used for error recovery to continue parsing after an error.
func (p *Parser) synchronize() {
	for !p.curTokenIs(token.EOF) {
		if statementTerminators[p.curToken.Type] {
			return
		}
		switch p.curToken.Type {
		case token.VAR, token.LET, token.CONST, token.RETURN, token.IF,
			token.FUNCTION, token.CLASS, token.SWITCH, token.TRY,
			token.THROW, token.FOR, token.WHILE:
			return
		}
		prevPos := p.curToken.StartPosition
		p.advanceToken()
		// Safety: if we didn't advance (lexer stuck), bail out
		if p.curToken.StartPosition == prevPos {
			return
		}
	}
}

func (p *Parser) noPrefixParseFnError(t token.Token) {
	p.addError(NewParserError(ErrorOpts{
		ErrType:       "parse error",
		Message:       fmt.Sprintf("invalid syntax (unexpected %q)", t.Literal),
		File:          p.l.Filename(),
		StartPosition: t.StartPosition,
		EndPosition:   t.EndPosition,
		SourceCode:    p.l.GetLineText(t),
	}))
}

// peekError raises an error if the next token is not the expected type.
func (p *Parser) peekError(context string, expected token.Type, got token.Token) {
	p.addError(NewParserError(ErrorOpts{
		ErrType: "parse error",
		Message: fmt.Sprintf("unexpected %s while parsing %s (expected %s)",
			tokenDescription(got), context, tokenTypeDescription(expected)),
		File:          p.l.Filename(),
		StartPosition: got.StartPosition,
		EndPosition:   got.EndPosition,
		SourceCode:    p.l.GetLineText(got),
	}))
}

func (p *Parser) setTokenError(t token.Token, msg string, args ...interface{}) {
	p.addError(NewParserError(ErrorOpts{
		ErrType:       "parse error",
		Message:       fmt.Sprintf(msg, args...),
		File:          p.l.Filename(),
		StartPosition: t.StartPosition,
		EndPosition:   t.EndPosition,
		SourceCode:    p.l.GetLineText(t),
	}))
}

func (p *Parser) illegalToken() ast.Expr {
	p.setTokenError(p.curToken, "illegal token %q", p.curToken.Literal)
	return nil
}

// curTokenIs returns true if the current token has the given type.
func (p *Parser) curTokenIs(t token.Type) bool {
	return p.curToken.Type == t
}

// peekTokenIs returns true if the next token has the given type.
func (p *Parser) peekTokenIs(t token.Type) bool {
	return p.peekToken.Type == t
}

// expectPeek validates if the next token is of the given type, and advances
// if it is. If it's a different type, then an error is stored.
func (p *Parser) expectPeek(context string, t token.Type) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(context, t, p.peekToken)
	return false
}

// peekPrecedence returns the precedence of the next token.
func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

// eatNewlines advances past any NEWLINE tokens at the current position.
func (p *Parser) eatNewlines() {
	for p.curTokenIs(token.NEWLINE) {
		if err := p.nextToken(); err != nil {
			return
		}
	}
}

// skipPeekNewlines advances until the peek token is not a NEWLINE.
func (p *Parser) skipPeekNewlines() {
	for p.peekTokenIs(token.NEWLINE) {
		if err := p.nextToken(); err != nil {
			return
		}
	}
}

// skipNewlinesAndPeek checks if the given token type appears after optional
// newlines. If found, it skips the newlines and returns true (with peekToken
// now being the target). If not found, it returns false without consuming
// any tokens.
func (p *Parser) skipNewlinesAndPeek(targetType token.Type) bool {
	if p.peekTokenIs(targetType) {
		return true
	}
	if !p.peekTokenIs(token.NEWLINE) {
		return false
	}
	savedCur := p.curToken
	savedPeek := p.peekToken
	savedLexer := p.l.SaveState()

	for p.peekTokenIs(token.NEWLINE) {
		if err := p.nextToken(); err != nil {
			p.curToken = savedCur
			p.peekToken = savedPeek
			p.l.RestoreState(savedLexer)
			return false
		}
	}
	if p.peekTokenIs(targetType) {
		return true
	}
	p.curToken = savedCur
	p.peekToken = savedPeek
	p.l.RestoreState(savedLexer)
	return false
}

// lookahead runs fn against the token stream starting at the current
// position and then rewinds the parser. Errors raised inside fn are
// discarded.
func (p *Parser) lookahead(fn func() bool) bool {
	savedPrev := p.prevToken
	savedCur := p.curToken
	savedPeek := p.peekToken
	savedLexer := p.l.SaveState()
	savedErrors := len(p.errors)

	result := fn()

	p.prevToken = savedPrev
	p.curToken = savedCur
	p.peekToken = savedPeek
	p.l.RestoreState(savedLexer)
	p.errors = p.errors[:savedErrors]
	return result
}

// parseNode is the core of the Pratt expression parser.
func (p *Parser) parseNode(precedence int) ast.Expr {
	if p.hadNewError() {
		return nil
	}
	if p.curToken.Type == token.EOF {
		p.setTokenError(p.curToken, "unexpected end of input")
		return nil
	}
	p.depth++
	if p.depth > p.maxDepth {
		p.setTokenError(p.curToken, "maximum nesting depth exceeded")
		p.depth--
		return nil
	}
	defer func() { p.depth-- }()

	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken)
		return nil
	}
	leftExp := prefix()
	if p.hadNewError() || leftExp == nil {
		return nil
	}
	for {
		if p.peekTokenIs(token.SEMICOLON) {
			return leftExp
		}
		// A line beginning with "." or "?." continues the expression.
		if p.peekTokenIs(token.NEWLINE) {
			if !p.skipNewlinesAndPeek(token.PERIOD) &&
				!p.skipNewlinesAndPeek(token.QUESTION_DOT) {
				return leftExp
			}
		}
		if precedence >= p.peekPrecedence() {
			return leftExp
		}
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}
		if err := p.nextToken(); err != nil {
			return nil
		}
		leftExp = infix(leftExp)
		if p.hadNewError() || leftExp == nil {
			return nil
		}
	}
}

// parseExpression parses an expression at the given precedence level.
func (p *Parser) parseExpression(precedence int) ast.Expr {
	return p.parseNode(precedence)
}

// parseAssignExpr parses a single assignment-level expression: one that
// stops before a sequence comma.
func (p *Parser) parseAssignExpr() ast.Expr {
	return p.parseNode(SEQUENCE)
}

// newIdent creates a new Ident node from a token.
func (p *Parser) newIdent(tok token.Token) *ast.Ident {
	return &ast.Ident{NamePos: tok.StartPosition, Name: tok.Literal}
}
