package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/deepnoodle-ai/condense/internal/token"
)

func pos(offset int) token.Position {
	return token.Position{Offset: offset, Column: offset}
}

func TestIdentSpans(t *testing.T) {
	ident := &Ident{NamePos: pos(4), Name: "count"}
	assert.Equal(t, 4, ident.Pos().Offset)
	assert.Equal(t, 9, ident.End().Offset)
	assert.Equal(t, "count", ident.String())
}

func TestBinaryString(t *testing.T) {
	expr := &Binary{
		X:  &Ident{NamePos: pos(0), Name: "a"},
		Op: "+",
		Y:  &Number{ValuePos: pos(4), Literal: "1", Value: 1},
	}
	assert.Equal(t, "(a + 1)", expr.String())
	assert.Equal(t, 0, expr.Pos().Offset)
	assert.Equal(t, 5, expr.End().Offset)
}

func TestUnwrap(t *testing.T) {
	inner := &Ident{NamePos: pos(2), Name: "x"}
	wrapped := &Paren{Lparen: pos(0), X: &Paren{Lparen: pos(1), X: inner, Rparen: pos(3)}, Rparen: pos(4)}
	assert.Equal(t, Node(inner), Node(Unwrap(wrapped)))
	assert.Equal(t, Node(inner), Node(Unwrap(inner)))
}

func TestProgramFirst(t *testing.T) {
	empty := &Program{}
	assert.Nil(t, empty.First())

	stmt := &ExprStmt{X: &Ident{NamePos: pos(0), Name: "a"}, EndPos: pos(1)}
	program := &Program{Stmts: []Stmt{stmt}}
	assert.Equal(t, Stmt(stmt), program.First())
}

func TestInspect(t *testing.T) {
	call := &Call{
		Fun: &Member{
			X:    &Ident{NamePos: pos(0), Name: "console"},
			Attr: &Ident{NamePos: pos(8), Name: "log"},
		},
		Lparen: pos(11),
		Args:   []Expr{&Ident{NamePos: pos(12), Name: "msg"}},
		Rparen: pos(15),
	}
	program := &Program{Stmts: []Stmt{&ExprStmt{X: call, EndPos: pos(17)}}}

	var names []string
	Inspect(program, func(n Node) bool {
		if ident, ok := n.(*Ident); ok {
			names = append(names, ident.Name)
		}
		return true
	})
	// The member attribute is not an independent reference and is not walked
	assert.Equal(t, []string{"console", "msg"}, names)
}

func TestInspectPrune(t *testing.T) {
	fn := &FuncLit{
		FuncPos: pos(0),
		Params:  []*Param{{Pat: &Ident{NamePos: pos(9), Name: "arg"}}},
		Body: &Block{Lbrace: pos(14), Stmts: []Stmt{
			&ExprStmt{X: &Ident{NamePos: pos(15), Name: "inner"}, EndPos: pos(20)},
		}, Rbrace: pos(21)},
	}
	program := &Program{Stmts: []Stmt{&FuncDecl{Fn: fn}}}

	var visited int
	Inspect(program, func(n Node) bool {
		visited++
		_, isFunc := n.(*FuncLit)
		return !isFunc // stop at the function literal
	})
	assert.Equal(t, 3, visited) // program, FuncDecl, FuncLit
}
