package ast

import (
	"bytes"
	"strings"

	"github.com/deepnoodle-ai/condense/internal/token"
)

// Number is a numeric literal. The raw source text is retained so that
// hex, binary, exponent, separator, and BigInt forms round-trip exactly.
type Number struct {
	ValuePos token.Position
	Literal  string  // raw source text
	Value    float64 // parsed numeric value (0 for BigInt forms)
}

func (x *Number) exprNode() {}

func (x *Number) Pos() token.Position { return x.ValuePos }
func (x *Number) End() token.Position { return x.ValuePos.Advance(len(x.Literal)) }

func (x *Number) String() string { return x.Literal }

// String is a string literal.
type String struct {
	QuotePos token.Position
	Raw      string // raw source text including quotes
	Value    string // decoded value
}

func (x *String) exprNode() {}

func (x *String) Pos() token.Position { return x.QuotePos }
func (x *String) End() token.Position { return x.QuotePos.Advance(len(x.Raw)) }

func (x *String) String() string { return x.Raw }

// TemplateLit is a template literal. Quasis holds the raw text chunks
// (including their delimiters) and Exprs the substitution expressions
// between them; len(Quasis) == len(Exprs) + 1.
type TemplateLit struct {
	Backtick token.Position // position of the opening backtick
	Quasis   []string
	Exprs    []Expr
	EndPos   token.Position // position immediately after the closing backtick
}

func (x *TemplateLit) exprNode() {}

func (x *TemplateLit) Pos() token.Position { return x.Backtick }
func (x *TemplateLit) End() token.Position { return x.EndPos }

func (x *TemplateLit) String() string {
	var out bytes.Buffer
	for i, q := range x.Quasis {
		out.WriteString(q)
		if i < len(x.Exprs) {
			out.WriteString(x.Exprs[i].String())
		}
	}
	return out.String()
}

// Regex is a regular expression literal.
type Regex struct {
	SlashPos token.Position
	Raw      string // raw source text including slashes and flags
}

func (x *Regex) exprNode() {}

func (x *Regex) Pos() token.Position { return x.SlashPos }
func (x *Regex) End() token.Position { return x.SlashPos.Advance(len(x.Raw)) }

func (x *Regex) String() string { return x.Raw }

// Bool is a boolean literal.
type Bool struct {
	ValuePos token.Position
	Value    bool
}

func (x *Bool) exprNode() {}

func (x *Bool) Pos() token.Position { return x.ValuePos }
func (x *Bool) End() token.Position {
	if x.Value {
		return x.ValuePos.Advance(4)
	}
	return x.ValuePos.Advance(5)
}

func (x *Bool) String() string {
	if x.Value {
		return "true"
	}
	return "false"
}

// Null is the null literal.
type Null struct {
	ValuePos token.Position
}

func (x *Null) exprNode() {}

func (x *Null) Pos() token.Position { return x.ValuePos }
func (x *Null) End() token.Position { return x.ValuePos.Advance(4) }
func (x *Null) String() string      { return "null" }

// Array is an array literal. Elements may contain nil entries for holes.
type Array struct {
	Lbrack   token.Position
	Elements []Expr
	Rbrack   token.Position
}

func (x *Array) exprNode() {}

func (x *Array) Pos() token.Position { return x.Lbrack }
func (x *Array) End() token.Position { return x.Rbrack.Advance(1) }

func (x *Array) String() string {
	parts := make([]string, 0, len(x.Elements))
	for _, e := range x.Elements {
		if e == nil {
			parts = append(parts, "")
		} else {
			parts = append(parts, e.String())
		}
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Object is an object literal.
type Object struct {
	Lbrace token.Position
	Props  []*Property
	Rbrace token.Position
}

func (x *Object) exprNode() {}

func (x *Object) Pos() token.Position { return x.Lbrace }
func (x *Object) End() token.Position { return x.Rbrace.Advance(1) }

func (x *Object) String() string {
	parts := make([]string, 0, len(x.Props))
	for _, p := range x.Props {
		parts = append(parts, p.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Property is one entry in an object literal. For spread entries
// ("{...x}") Key is nil and Value is a *Spread. For shorthand entries
// ("{x}") Key and Value are the same *Ident.
type Property struct {
	Key       Expr // *Ident, *String, *Number, or computed expression
	Computed  bool
	Value     Expr
	Shorthand bool
	Method    bool
}

func (p *Property) Pos() token.Position {
	if p.Key != nil {
		return p.Key.Pos()
	}
	return p.Value.Pos()
}

func (p *Property) End() token.Position { return p.Value.End() }

func (p *Property) String() string {
	if p.Key == nil {
		return p.Value.String()
	}
	if p.Shorthand {
		return p.Key.String()
	}
	if p.Computed {
		return "[" + p.Key.String() + "]: " + p.Value.String()
	}
	return p.Key.String() + ": " + p.Value.String()
}

// Param is one function parameter, possibly with a default or rest marker.
type Param struct {
	Pat     Expr // *Ident or a destructuring pattern (Object/Array literal shape)
	Default Expr // nil if no default
	Rest    bool
}

func (p *Param) Pos() token.Position { return p.Pat.Pos() }

func (p *Param) End() token.Position {
	if p.Default != nil {
		return p.Default.End()
	}
	return p.Pat.End()
}

func (p *Param) String() string {
	var out bytes.Buffer
	if p.Rest {
		out.WriteString("...")
	}
	out.WriteString(p.Pat.String())
	if p.Default != nil {
		out.WriteString(" = ")
		out.WriteString(p.Default.String())
	}
	return out.String()
}

// FuncLit is a function expression, arrow function, or the function part of
// a function declaration. Arrow functions with expression bodies have Body
// nil and ExprBody set.
type FuncLit struct {
	FuncPos   token.Position // position of "function", "async", or the first param
	Name      *Ident         // nil for anonymous functions
	Params    []*Param
	Body      *Block
	ExprBody  Expr // arrow concise body; nil when Body is set
	Arrow     bool
	Async     bool
	Generator bool
}

func (x *FuncLit) exprNode() {}

func (x *FuncLit) Pos() token.Position { return x.FuncPos }

func (x *FuncLit) End() token.Position {
	if x.Body != nil {
		return x.Body.End()
	}
	return x.ExprBody.End()
}

func (x *FuncLit) String() string {
	var out bytes.Buffer
	if x.Async {
		out.WriteString("async ")
	}
	params := make([]string, 0, len(x.Params))
	for _, p := range x.Params {
		params = append(params, p.String())
	}
	if x.Arrow {
		out.WriteString("(" + strings.Join(params, ", ") + ") => ")
		if x.Body != nil {
			out.WriteString(x.Body.String())
		} else {
			out.WriteString(x.ExprBody.String())
		}
		return out.String()
	}
	out.WriteString("function")
	if x.Generator {
		out.WriteString("*")
	}
	if x.Name != nil {
		out.WriteString(" " + x.Name.Name)
	}
	out.WriteString("(" + strings.Join(params, ", ") + ") ")
	out.WriteString(x.Body.String())
	return out.String()
}

// ClassMember is one member of a class body.
type ClassMember struct {
	Static   bool
	Kind     string // "method", "get", "set", or "field"
	Key      Expr
	Computed bool
	Value    Expr // *FuncLit for methods; field initializer or nil for fields
}

func (m *ClassMember) Pos() token.Position { return m.Key.Pos() }

func (m *ClassMember) End() token.Position {
	if m.Value != nil {
		return m.Value.End()
	}
	return m.Key.End()
}

func (m *ClassMember) String() string {
	var out bytes.Buffer
	if m.Static {
		out.WriteString("static ")
	}
	if m.Kind == "get" || m.Kind == "set" {
		out.WriteString(m.Kind + " ")
	}
	out.WriteString(m.Key.String())
	if m.Kind == "field" {
		if m.Value != nil {
			out.WriteString(" = " + m.Value.String())
		}
	} else if fn, ok := m.Value.(*FuncLit); ok {
		params := make([]string, 0, len(fn.Params))
		for _, p := range fn.Params {
			params = append(params, p.String())
		}
		out.WriteString("(" + strings.Join(params, ", ") + ") ")
		out.WriteString(fn.Body.String())
	}
	return out.String()
}

// ClassLit is a class expression or the class part of a class declaration.
type ClassLit struct {
	ClassPos token.Position
	Name     *Ident // nil for anonymous class expressions
	Extends  Expr   // nil if no extends clause
	Lbrace   token.Position
	Members  []*ClassMember
	Rbrace   token.Position
}

func (x *ClassLit) exprNode() {}

func (x *ClassLit) Pos() token.Position { return x.ClassPos }
func (x *ClassLit) End() token.Position { return x.Rbrace.Advance(1) }

func (x *ClassLit) String() string {
	var out bytes.Buffer
	out.WriteString("class")
	if x.Name != nil {
		out.WriteString(" " + x.Name.Name)
	}
	if x.Extends != nil {
		out.WriteString(" extends " + x.Extends.String())
	}
	out.WriteString(" { ")
	for i, m := range x.Members {
		if i > 0 {
			out.WriteString(" ")
		}
		out.WriteString(m.String())
	}
	out.WriteString(" }")
	return out.String()
}
