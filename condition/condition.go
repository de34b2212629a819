// Package condition implements the restricted expression grammar used in
// macro condition payloads, and its three-valued evaluation against the
// configuration object.
//
// Grammar:
//
//	cond   := or
//	or     := and ( '||' and )*
//	and    := unary ( '&&' unary )*
//	unary  := '!'? atom
//	atom   := path | path op string | '(' cond ')'
//	op     := '===' | '!=='
//	path   := ident ('.' ident)*
//	string := "'…'" | '"…"'
//
// Identifier segments admit hyphens and leading digits so config keys such
// as "3d-visualization" are expressible. Anything outside the grammar
// evaluates to Unknown, which preserves the region body.
package condition

import (
	"fmt"
	"strings"

	"github.com/deepnoodle-ai/condense/config"
)

// Result is the three-valued outcome of evaluating a condition.
type Result int

const (
	False Result = iota
	True
	Unknown
)

// String returns the string representation of the result.
func (r Result) String() string {
	switch r {
	case False:
		return "false"
	case True:
		return "true"
	default:
		return "unknown"
	}
}

// Expr is a parsed condition expression.
type Expr interface {
	condExpr()
	String() string
}

// Path is a dotted identifier path such as "featureFlags.enableX".
type Path struct {
	Segments []string
}

func (e *Path) condExpr()      {}
func (e *Path) String() string { return strings.Join(e.Segments, ".") }

// Compare is a strict string comparison of a path against a literal.
type Compare struct {
	Lhs *Path
	Op  string // "===" or "!=="
	Rhs string
}

func (e *Compare) condExpr() {}
func (e *Compare) String() string {
	return fmt.Sprintf("%s %s %q", e.Lhs.String(), e.Op, e.Rhs)
}

// Not is a logical negation.
type Not struct {
	X Expr
}

func (e *Not) condExpr()      {}
func (e *Not) String() string { return "!" + e.X.String() }

// And is a conjunction.
type And struct {
	X, Y Expr
}

func (e *And) condExpr()      {}
func (e *And) String() string { return "(" + e.X.String() + " && " + e.Y.String() + ")" }

// Or is a disjunction.
type Or struct {
	X, Y Expr
}

func (e *Or) condExpr()      {}
func (e *Or) String() string { return "(" + e.X.String() + " || " + e.Y.String() + ")" }

// Parse parses a condition payload. A nil error means the input matched the
// restricted grammar exactly; any leftover input is an error, which callers
// translate to Unknown.
func Parse(input string) (Expr, error) {
	p := &parser{input: input}
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.input) {
		return nil, fmt.Errorf("unexpected %q at offset %d", p.input[p.pos], p.pos)
	}
	return expr, nil
}

// Evaluate evaluates a parsed condition against the config.
//
//	Path p        -> truthiness of the value at p; missing => false
//	p === "s"     -> true iff the value at p is exactly the string s
//	!e            -> negation; !Unknown => Unknown
//	a && b        -> short-circuit; false && _ => false, Unknown otherwise
//	a || b        -> short-circuit; true || _ => true, Unknown otherwise
func Evaluate(expr Expr, cfg *config.Config) Result {
	switch e := expr.(type) {
	case *Path:
		if cfg.EvaluatePath(e.String()) {
			return True
		}
		return False
	case *Compare:
		value, ok := cfg.Query(e.Lhs.String())
		matched := false
		if ok {
			if s, isString := value.(string); isString {
				matched = s == e.Rhs
			}
		}
		if e.Op == "!==" {
			matched = !matched
		}
		if matched {
			return True
		}
		return False
	case *Not:
		switch Evaluate(e.X, cfg) {
		case True:
			return False
		case False:
			return True
		default:
			return Unknown
		}
	case *And:
		x := Evaluate(e.X, cfg)
		if x == False {
			return False
		}
		y := Evaluate(e.Y, cfg)
		if y == False {
			return False
		}
		if x == True && y == True {
			return True
		}
		return Unknown
	case *Or:
		x := Evaluate(e.X, cfg)
		if x == True {
			return True
		}
		y := Evaluate(e.Y, cfg)
		if y == True {
			return True
		}
		if x == False && y == False {
			return False
		}
		return Unknown
	default:
		return Unknown
	}
}

// EvaluateString parses and evaluates a condition payload. Conditions that
// fall outside the grammar evaluate to Unknown rather than failing.
func EvaluateString(input string, cfg *config.Config) Result {
	expr, err := Parse(input)
	if err != nil {
		return Unknown
	}
	return Evaluate(expr, cfg)
}

// Paths returns every config path referenced by the expression.
func Paths(expr Expr) []string {
	var out []string
	var visit func(Expr)
	visit = func(e Expr) {
		switch n := e.(type) {
		case *Path:
			out = append(out, n.String())
		case *Compare:
			out = append(out, n.Lhs.String())
		case *Not:
			visit(n.X)
		case *And:
			visit(n.X)
			visit(n.Y)
		case *Or:
			visit(n.X)
			visit(n.Y)
		}
	}
	if expr != nil {
		visit(expr)
	}
	return out
}

// parser is a tiny recursive-descent parser over the payload text.
type parser struct {
	input string
	pos   int
}

func (p *parser) skipSpace() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}

func (p *parser) peek() byte {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *parser) consume(s string) bool {
	p.skipSpace()
	if strings.HasPrefix(p.input[p.pos:], s) {
		p.pos += len(s)
		return true
	}
	return false
}

func isSegmentByte(c byte) bool {
	return c == '_' || c == '$' || c == '-' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func (p *parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.consume("||") {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &Or{X: left, Y: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		p.skipSpace()
		// Do not mistake "||" for a failed "&&" match
		if !strings.HasPrefix(p.input[p.pos:], "&&") {
			return left, nil
		}
		p.pos += 2
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &And{X: left, Y: right}
	}
}

func (p *parser) parseUnary() (Expr, error) {
	p.skipSpace()
	if p.peek() == '!' && !strings.HasPrefix(p.input[p.pos:], "!==") {
		p.pos++
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Not{X: x}, nil
	}
	return p.parseAtom()
}

func (p *parser) parseAtom() (Expr, error) {
	p.skipSpace()
	if p.peek() == '(' {
		p.pos++
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.peek() != ')' {
			return nil, fmt.Errorf("expected ')' at offset %d", p.pos)
		}
		p.pos++
		return inner, nil
	}
	path, err := p.parsePath()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	var op string
	switch {
	case strings.HasPrefix(p.input[p.pos:], "==="):
		op = "==="
	case strings.HasPrefix(p.input[p.pos:], "!=="):
		op = "!=="
	default:
		return path, nil
	}
	p.pos += 3
	rhs, err := p.parseString()
	if err != nil {
		return nil, err
	}
	return &Compare{Lhs: path, Op: op, Rhs: rhs}, nil
}

func (p *parser) parsePath() (*Path, error) {
	var segments []string
	for {
		p.skipSpace()
		start := p.pos
		for p.pos < len(p.input) && isSegmentByte(p.input[p.pos]) {
			p.pos++
		}
		if p.pos == start {
			return nil, fmt.Errorf("expected identifier at offset %d", p.pos)
		}
		segments = append(segments, p.input[start:p.pos])
		if p.peek() != '.' {
			return &Path{Segments: segments}, nil
		}
		p.pos++
	}
}

func (p *parser) parseString() (string, error) {
	p.skipSpace()
	quote := p.peek()
	if quote != '\'' && quote != '"' {
		return "", fmt.Errorf("expected string literal at offset %d", p.pos)
	}
	p.pos++
	start := p.pos
	for p.pos < len(p.input) && p.input[p.pos] != quote {
		p.pos++
	}
	if p.pos >= len(p.input) {
		return "", fmt.Errorf("unterminated string literal at offset %d", start)
	}
	s := p.input[start:p.pos]
	p.pos++
	return s, nil
}
