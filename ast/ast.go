// Package ast defines the abstract syntax tree representation of ECMAScript
// source code. Every node carries position information whose Offset fields
// give the byte span [Pos().Offset, End().Offset) of the node in the
// original input; those spans drive all of the textual splicing performed by
// the transform and sweep stages.
package ast

import "github.com/deepnoodle-ai/condense/internal/token"

// Node represents a portion of the syntax tree. All nodes have position
// information indicating where they appear in the source code.
type Node interface {
	// Pos returns the position of the first character belonging to the node.
	Pos() token.Position

	// End returns the position of the first character immediately after the node.
	End() token.Position

	// String returns a human friendly representation of the Node. This should
	// be similar to the original source code, but not necessarily identical.
	String() string
}

// Stmt represents a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Expr represents an expression node. Expressions evaluate to a value
// and may be embedded within other expressions.
type Expr interface {
	Node
	exprNode()
}

// Program is the root node for one parsed source file.
type Program struct {
	Stmts    []Stmt
	Comments []*Comment // all comments, in source order
	EOFPos   token.Position
}

func (p *Program) Pos() token.Position {
	if len(p.Stmts) > 0 {
		return p.Stmts[0].Pos()
	}
	return p.EOFPos
}

func (p *Program) End() token.Position { return p.EOFPos }

func (p *Program) String() string {
	var out []byte
	for i, stmt := range p.Stmts {
		if i > 0 {
			out = append(out, '\n')
		}
		out = append(out, stmt.String()...)
	}
	return string(out)
}

// First returns the first statement of the program, or nil if it is empty.
func (p *Program) First() Stmt {
	if len(p.Stmts) == 0 {
		return nil
	}
	return p.Stmts[0]
}

// Comment is a source comment retained as a first-class annotation.
type Comment struct {
	Start  token.Position
	EndPos token.Position // position immediately after the comment
	Text   string         // raw text including delimiters
	Block  bool           // true for /* */ comments
}

func (c *Comment) Pos() token.Position { return c.Start }
func (c *Comment) End() token.Position { return c.EndPos }
func (c *Comment) String() string      { return c.Text }

// BadExpr represents an expression containing syntax errors.
// It is used by the parser to continue parsing after an error,
// allowing subsequent errors to be detected without giving up.
type BadExpr struct {
	From token.Position // start of bad expression
	To   token.Position // end of bad expression
}

func (x *BadExpr) exprNode() {}

func (x *BadExpr) Pos() token.Position { return x.From }
func (x *BadExpr) End() token.Position { return x.To }
func (x *BadExpr) String() string      { return "<bad expression>" }

// BadStmt represents a statement containing syntax errors.
type BadStmt struct {
	From token.Position // start of bad statement
	To   token.Position // end of bad statement
}

func (x *BadStmt) stmtNode() {}

func (x *BadStmt) Pos() token.Position { return x.From }
func (x *BadStmt) End() token.Position { return x.To }
func (x *BadStmt) String() string      { return "<bad statement>" }
