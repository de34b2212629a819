package ast

import (
	"bytes"
	"strings"

	"github.com/deepnoodle-ai/condense/internal/token"
)

// Ident is an expression node that refers to a variable by name. The
// keywords "this" and "super" are represented as Idents as well.
type Ident struct {
	NamePos token.Position // position of identifier
	Name    string         // identifier name
}

func (x *Ident) exprNode() {}

func (x *Ident) Pos() token.Position { return x.NamePos }
func (x *Ident) End() token.Position { return x.NamePos.Advance(len(x.Name)) }

func (x *Ident) String() string { return x.Name }

// Unary is an operator expression where the operator precedes the operand.
// Examples include "!x", "-x", "typeof x", "void x", "delete x.y", "await x".
type Unary struct {
	OpPos token.Position // position of operator
	Op    string         // operator: "!", "-", "+", "~", "typeof", "void", "delete", "await"
	X     Expr           // operand
}

func (x *Unary) exprNode() {}

func (x *Unary) Pos() token.Position { return x.OpPos }
func (x *Unary) End() token.Position { return x.X.End() }

func (x *Unary) String() string {
	sep := ""
	if len(x.Op) > 1 {
		sep = " " // word operators: typeof, void, delete, await
	}
	return "(" + x.Op + sep + x.X.String() + ")"
}

// Update is an increment or decrement expression, prefix or postfix.
type Update struct {
	OpPos  token.Position // position of operator
	Op     string         // "++" or "--"
	X      Expr           // operand
	Prefix bool           // true for "++x", false for "x++"
}

func (x *Update) exprNode() {}

func (x *Update) Pos() token.Position {
	if x.Prefix {
		return x.OpPos
	}
	return x.X.Pos()
}

func (x *Update) End() token.Position {
	if x.Prefix {
		return x.X.End()
	}
	return x.OpPos.Advance(len(x.Op))
}

func (x *Update) String() string {
	if x.Prefix {
		return "(" + x.Op + x.X.String() + ")"
	}
	return "(" + x.X.String() + x.Op + ")"
}

// Binary is an operator expression where the operator is between the
// operands. Logical operators ("&&", "||", "??") are Binary nodes too.
type Binary struct {
	X     Expr           // left operand
	OpPos token.Position // position of operator
	Op    string         // operator: "+", "===", "&&", "in", "instanceof", etc.
	Y     Expr           // right operand
}

func (x *Binary) exprNode() {}

func (x *Binary) Pos() token.Position { return x.X.Pos() }
func (x *Binary) End() token.Position { return x.Y.End() }

func (x *Binary) String() string {
	return "(" + x.X.String() + " " + x.Op + " " + x.Y.String() + ")"
}

// Assign is an assignment expression, possibly compound ("+=", "&&=", ...).
type Assign struct {
	Target Expr           // assignment target
	OpPos  token.Position // position of operator
	Op     string         // "=", "+=", "||=", etc.
	Value  Expr           // assigned value
}

func (x *Assign) exprNode() {}

func (x *Assign) Pos() token.Position { return x.Target.Pos() }
func (x *Assign) End() token.Position { return x.Value.End() }

func (x *Assign) String() string {
	return x.Target.String() + " " + x.Op + " " + x.Value.String()
}

// Cond is a ternary conditional expression.
type Cond struct {
	Test     Expr
	Question token.Position // position of "?"
	Then     Expr
	Colon    token.Position // position of ":"
	Else     Expr
}

func (x *Cond) exprNode() {}

func (x *Cond) Pos() token.Position { return x.Test.Pos() }
func (x *Cond) End() token.Position { return x.Else.End() }

func (x *Cond) String() string {
	return "(" + x.Test.String() + " ? " + x.Then.String() + " : " + x.Else.String() + ")"
}

// Seq is a comma-separated sequence expression.
type Seq struct {
	Exprs []Expr
}

func (x *Seq) exprNode() {}

func (x *Seq) Pos() token.Position { return x.Exprs[0].Pos() }
func (x *Seq) End() token.Position { return x.Exprs[len(x.Exprs)-1].End() }

func (x *Seq) String() string {
	parts := make([]string, 0, len(x.Exprs))
	for _, e := range x.Exprs {
		parts = append(parts, e.String())
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Call is an expression node that describes the invocation of a function.
type Call struct {
	Fun      Expr           // function expression
	Lparen   token.Position // position of "("
	Args     []Expr         // function arguments (possibly Spread)
	Rparen   token.Position // position of ")"
	Optional bool           // true for "f?.()"
}

func (x *Call) exprNode() {}

func (x *Call) Pos() token.Position { return x.Fun.Pos() }
func (x *Call) End() token.Position { return x.Rparen.Advance(1) }

func (x *Call) String() string {
	var out bytes.Buffer
	args := make([]string, 0, len(x.Args))
	for _, a := range x.Args {
		args = append(args, a.String())
	}
	out.WriteString(x.Fun.String())
	if x.Optional {
		out.WriteString("?.")
	}
	out.WriteString("(")
	out.WriteString(strings.Join(args, ", "))
	out.WriteString(")")
	return out.String()
}

// New is a "new" expression, with or without an argument list.
type New struct {
	NewPos  token.Position // position of "new"
	Callee  Expr
	Lparen  token.Position
	Args    []Expr
	Rparen  token.Position
	HasArgs bool // false for "new Foo" without parentheses
}

func (x *New) exprNode() {}

func (x *New) Pos() token.Position { return x.NewPos }
func (x *New) End() token.Position {
	if x.HasArgs {
		return x.Rparen.Advance(1)
	}
	return x.Callee.End()
}

func (x *New) String() string {
	var out bytes.Buffer
	out.WriteString("new ")
	out.WriteString(x.Callee.String())
	if x.HasArgs {
		args := make([]string, 0, len(x.Args))
		for _, a := range x.Args {
			args = append(args, a.String())
		}
		out.WriteString("(")
		out.WriteString(strings.Join(args, ", "))
		out.WriteString(")")
	}
	return out.String()
}

// Member is an expression node that describes the access of an attribute on
// an object with dot notation.
type Member struct {
	X        Expr           // object expression
	Period   token.Position // position of "." or "?."
	Attr     *Ident         // attribute name
	Optional bool           // true for optional chaining (?.)
}

func (x *Member) exprNode() {}

func (x *Member) Pos() token.Position { return x.X.Pos() }
func (x *Member) End() token.Position { return x.Attr.End() }

func (x *Member) String() string {
	if x.Optional {
		return x.X.String() + "?." + x.Attr.Name
	}
	return x.X.String() + "." + x.Attr.Name
}

// Index is an expression node that describes computed member access.
type Index struct {
	X        Expr           // object expression
	Lbrack   token.Position // position of "["
	Index    Expr           // index expression
	Rbrack   token.Position // position of "]"
	Optional bool           // true for "x?.[i]"
}

func (x *Index) exprNode() {}

func (x *Index) Pos() token.Position { return x.X.Pos() }
func (x *Index) End() token.Position { return x.Rbrack.Advance(1) }

func (x *Index) String() string {
	return "(" + x.X.String() + "[" + x.Index.String() + "])"
}

// Spread represents a spread expression (...expr) used in array literals,
// object literals, and call arguments.
type Spread struct {
	Ellipsis token.Position // position of "..."
	X        Expr
}

func (x *Spread) exprNode() {}

func (x *Spread) Pos() token.Position { return x.Ellipsis }
func (x *Spread) End() token.Position { return x.X.End() }

func (x *Spread) String() string { return "..." + x.X.String() }

// Paren is a parenthesized expression. The node is retained so that spans
// cover the parentheses, which matters for splicing decisions.
type Paren struct {
	Lparen token.Position
	X      Expr
	Rparen token.Position
}

func (x *Paren) exprNode() {}

func (x *Paren) Pos() token.Position { return x.Lparen }
func (x *Paren) End() token.Position { return x.Rparen.Advance(1) }

// String renders the inner expression only: operator nodes already wrap
// themselves in parentheses, so the grouping is not printed twice.
func (x *Paren) String() string { return x.X.String() }

// TaggedTemplate is a template literal preceded by a tag expression.
type TaggedTemplate struct {
	Tag   Expr
	Quasi *TemplateLit
}

func (x *TaggedTemplate) exprNode() {}

func (x *TaggedTemplate) Pos() token.Position { return x.Tag.Pos() }
func (x *TaggedTemplate) End() token.Position { return x.Quasi.End() }

func (x *TaggedTemplate) String() string { return x.Tag.String() + x.Quasi.String() }

// Unwrap removes any enclosing Paren nodes from an expression.
func Unwrap(e Expr) Expr {
	for {
		p, ok := e.(*Paren)
		if !ok {
			return e
		}
		e = p.X
	}
}
