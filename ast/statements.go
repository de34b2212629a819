package ast

import (
	"bytes"
	"strings"

	"github.com/deepnoodle-ai/condense/internal/token"
)

// Declarator is one name/initializer pair within a VarDecl.
type Declarator struct {
	Name Expr // *Ident or a destructuring pattern
	Init Expr // nil if no initializer
}

func (d *Declarator) Pos() token.Position { return d.Name.Pos() }

func (d *Declarator) End() token.Position {
	if d.Init != nil {
		return d.Init.End()
	}
	return d.Name.End()
}

func (d *Declarator) String() string {
	if d.Init != nil {
		return d.Name.String() + " = " + d.Init.String()
	}
	return d.Name.String()
}

// VarDecl is a var, let, or const declaration statement.
type VarDecl struct {
	KeywordPos token.Position
	Keyword    string // "var", "let", or "const"
	Decls      []*Declarator
	EndPos     token.Position // position after the final token, semicolon included
}

func (s *VarDecl) stmtNode() {}

func (s *VarDecl) Pos() token.Position { return s.KeywordPos }
func (s *VarDecl) End() token.Position { return s.EndPos }

func (s *VarDecl) String() string {
	parts := make([]string, 0, len(s.Decls))
	for _, d := range s.Decls {
		parts = append(parts, d.String())
	}
	return s.Keyword + " " + strings.Join(parts, ", ")
}

// FuncDecl is a function declaration statement.
type FuncDecl struct {
	Fn *FuncLit
}

func (s *FuncDecl) stmtNode() {}

func (s *FuncDecl) Pos() token.Position { return s.Fn.Pos() }
func (s *FuncDecl) End() token.Position { return s.Fn.End() }
func (s *FuncDecl) String() string      { return s.Fn.String() }

// ClassDecl is a class declaration statement.
type ClassDecl struct {
	Class *ClassLit
}

func (s *ClassDecl) stmtNode() {}

func (s *ClassDecl) Pos() token.Position { return s.Class.Pos() }
func (s *ClassDecl) End() token.Position { return s.Class.End() }
func (s *ClassDecl) String() string      { return s.Class.String() }

// ExprStmt is an expression used in statement position.
type ExprStmt struct {
	X      Expr
	EndPos token.Position // position after the final token, semicolon included
}

func (s *ExprStmt) stmtNode() {}

func (s *ExprStmt) Pos() token.Position { return s.X.Pos() }
func (s *ExprStmt) End() token.Position { return s.EndPos }
func (s *ExprStmt) String() string      { return s.X.String() }

// Return is a return statement.
type Return struct {
	ReturnPos token.Position
	Value     Expr // nil for a bare return
	EndPos    token.Position
}

func (s *Return) stmtNode() {}

func (s *Return) Pos() token.Position { return s.ReturnPos }
func (s *Return) End() token.Position { return s.EndPos }

func (s *Return) String() string {
	if s.Value != nil {
		return "return " + s.Value.String()
	}
	return "return"
}

// If is an if/else statement.
type If struct {
	IfPos token.Position
	Cond  Expr
	Then  Stmt
	Else  Stmt // nil if no else branch
}

func (s *If) stmtNode() {}

func (s *If) Pos() token.Position { return s.IfPos }

func (s *If) End() token.Position {
	if s.Else != nil {
		return s.Else.End()
	}
	return s.Then.End()
}

func (s *If) String() string {
	var out bytes.Buffer
	out.WriteString("if (" + s.Cond.String() + ") " + s.Then.String())
	if s.Else != nil {
		out.WriteString(" else " + s.Else.String())
	}
	return out.String()
}

// For is a classic three-clause for loop. Any clause may be nil.
type For struct {
	ForPos token.Position
	Init   Node // *VarDecl or Expr; nil if omitted
	Cond   Expr
	Post   Expr
	Body   Stmt
}

func (s *For) stmtNode() {}

func (s *For) Pos() token.Position { return s.ForPos }
func (s *For) End() token.Position { return s.Body.End() }

func (s *For) String() string {
	var out bytes.Buffer
	out.WriteString("for (")
	if s.Init != nil {
		out.WriteString(s.Init.String())
	}
	out.WriteString("; ")
	if s.Cond != nil {
		out.WriteString(s.Cond.String())
	}
	out.WriteString("; ")
	if s.Post != nil {
		out.WriteString(s.Post.String())
	}
	out.WriteString(") " + s.Body.String())
	return out.String()
}

// ForIn is a for…in or for…of loop.
type ForIn struct {
	ForPos token.Position
	Decl   Node // *VarDecl (without initializer) or an Expr target
	X      Expr // object or iterable
	Of     bool // true for for…of
	Body   Stmt
}

func (s *ForIn) stmtNode() {}

func (s *ForIn) Pos() token.Position { return s.ForPos }
func (s *ForIn) End() token.Position { return s.Body.End() }

func (s *ForIn) String() string {
	kw := "in"
	if s.Of {
		kw = "of"
	}
	return "for (" + s.Decl.String() + " " + kw + " " + s.X.String() + ") " + s.Body.String()
}

// While is a while loop.
type While struct {
	WhilePos token.Position
	Cond     Expr
	Body     Stmt
}

func (s *While) stmtNode() {}

func (s *While) Pos() token.Position { return s.WhilePos }
func (s *While) End() token.Position { return s.Body.End() }

func (s *While) String() string {
	return "while (" + s.Cond.String() + ") " + s.Body.String()
}

// DoWhile is a do/while loop.
type DoWhile struct {
	DoPos  token.Position
	Body   Stmt
	Cond   Expr
	EndPos token.Position
}

func (s *DoWhile) stmtNode() {}

func (s *DoWhile) Pos() token.Position { return s.DoPos }
func (s *DoWhile) End() token.Position { return s.EndPos }

func (s *DoWhile) String() string {
	return "do " + s.Body.String() + " while (" + s.Cond.String() + ")"
}

// SwitchCase is one case (or default) clause within a switch statement.
type SwitchCase struct {
	CasePos token.Position
	Test    Expr // nil for the default clause
	Body    []Stmt
}

func (c *SwitchCase) Pos() token.Position { return c.CasePos }

func (c *SwitchCase) End() token.Position {
	if len(c.Body) > 0 {
		return c.Body[len(c.Body)-1].End()
	}
	return c.CasePos
}

func (c *SwitchCase) String() string {
	var out bytes.Buffer
	if c.Test != nil {
		out.WriteString("case " + c.Test.String() + ":")
	} else {
		out.WriteString("default:")
	}
	for _, stmt := range c.Body {
		out.WriteString(" " + stmt.String() + ";")
	}
	return out.String()
}

// Switch is a switch statement.
type Switch struct {
	SwitchPos token.Position
	Tag       Expr
	Cases     []*SwitchCase
	Rbrace    token.Position
}

func (s *Switch) stmtNode() {}

func (s *Switch) Pos() token.Position { return s.SwitchPos }
func (s *Switch) End() token.Position { return s.Rbrace.Advance(1) }

func (s *Switch) String() string {
	var out bytes.Buffer
	out.WriteString("switch (" + s.Tag.String() + ") {")
	for _, c := range s.Cases {
		out.WriteString(" " + c.String())
	}
	out.WriteString(" }")
	return out.String()
}

// Try is a try/catch/finally statement.
type Try struct {
	TryPos      token.Position
	Body        *Block
	CatchParam  Expr   // nil for "catch { }" or when there is no catch
	CatchBody   *Block // nil if no catch clause
	FinallyBody *Block // nil if no finally clause
}

func (s *Try) stmtNode() {}

func (s *Try) Pos() token.Position { return s.TryPos }

func (s *Try) End() token.Position {
	if s.FinallyBody != nil {
		return s.FinallyBody.End()
	}
	if s.CatchBody != nil {
		return s.CatchBody.End()
	}
	return s.Body.End()
}

func (s *Try) String() string {
	var out bytes.Buffer
	out.WriteString("try " + s.Body.String())
	if s.CatchBody != nil {
		out.WriteString(" catch ")
		if s.CatchParam != nil {
			out.WriteString("(" + s.CatchParam.String() + ") ")
		}
		out.WriteString(s.CatchBody.String())
	}
	if s.FinallyBody != nil {
		out.WriteString(" finally " + s.FinallyBody.String())
	}
	return out.String()
}

// Throw is a throw statement.
type Throw struct {
	ThrowPos token.Position
	Value    Expr
	EndPos   token.Position
}

func (s *Throw) stmtNode() {}

func (s *Throw) Pos() token.Position { return s.ThrowPos }
func (s *Throw) End() token.Position { return s.EndPos }
func (s *Throw) String() string      { return "throw " + s.Value.String() }

// Break is a break statement, optionally labeled.
type Break struct {
	BreakPos token.Position
	Label    *Ident // nil if unlabeled
	EndPos   token.Position
}

func (s *Break) stmtNode() {}

func (s *Break) Pos() token.Position { return s.BreakPos }
func (s *Break) End() token.Position { return s.EndPos }

func (s *Break) String() string {
	if s.Label != nil {
		return "break " + s.Label.Name
	}
	return "break"
}

// Continue is a continue statement, optionally labeled.
type Continue struct {
	ContinuePos token.Position
	Label       *Ident
	EndPos      token.Position
}

func (s *Continue) stmtNode() {}

func (s *Continue) Pos() token.Position { return s.ContinuePos }
func (s *Continue) End() token.Position { return s.EndPos }

func (s *Continue) String() string {
	if s.Label != nil {
		return "continue " + s.Label.Name
	}
	return "continue"
}

// Labeled is a labeled statement.
type Labeled struct {
	Label *Ident
	Colon token.Position
	Stmt  Stmt
}

func (s *Labeled) stmtNode() {}

func (s *Labeled) Pos() token.Position { return s.Label.Pos() }
func (s *Labeled) End() token.Position { return s.Stmt.End() }
func (s *Labeled) String() string      { return s.Label.Name + ": " + s.Stmt.String() }

// Block is a braced sequence of statements.
type Block struct {
	Lbrace token.Position
	Stmts  []Stmt
	Rbrace token.Position
}

func (s *Block) stmtNode() {}

func (s *Block) Pos() token.Position { return s.Lbrace }
func (s *Block) End() token.Position { return s.Rbrace.Advance(1) }

func (s *Block) String() string {
	var out bytes.Buffer
	out.WriteString("{ ")
	for i, stmt := range s.Stmts {
		if i > 0 {
			out.WriteString("; ")
		}
		out.WriteString(stmt.String())
	}
	out.WriteString(" }")
	return out.String()
}

// Empty is a lone semicolon.
type Empty struct {
	Semi token.Position
}

func (s *Empty) stmtNode() {}

func (s *Empty) Pos() token.Position { return s.Semi }
func (s *Empty) End() token.Position { return s.Semi.Advance(1) }
func (s *Empty) String() string      { return ";" }

// ImportSpec is one named import binding.
type ImportSpec struct {
	Name  *Ident // imported name
	Local *Ident // local alias; equals Name when there is no "as" clause
}

func (s *ImportSpec) Pos() token.Position { return s.Name.Pos() }
func (s *ImportSpec) End() token.Position { return s.Local.End() }

func (s *ImportSpec) String() string {
	if s.Local != s.Name {
		return s.Name.Name + " as " + s.Local.Name
	}
	return s.Name.Name
}

// ImportDecl is an import declaration.
type ImportDecl struct {
	ImportPos token.Position
	Default   *Ident        // nil if no default import
	Namespace *Ident        // nil if no "* as ns" import
	Named     []*ImportSpec // nil if no named imports
	Source    *String
	EndPos    token.Position
}

func (s *ImportDecl) stmtNode() {}

func (s *ImportDecl) Pos() token.Position { return s.ImportPos }
func (s *ImportDecl) End() token.Position { return s.EndPos }

func (s *ImportDecl) String() string {
	var out bytes.Buffer
	out.WriteString("import ")
	var clauses []string
	if s.Default != nil {
		clauses = append(clauses, s.Default.Name)
	}
	if s.Namespace != nil {
		clauses = append(clauses, "* as "+s.Namespace.Name)
	}
	if len(s.Named) > 0 {
		parts := make([]string, 0, len(s.Named))
		for _, spec := range s.Named {
			parts = append(parts, spec.String())
		}
		clauses = append(clauses, "{ "+strings.Join(parts, ", ")+" }")
	}
	if len(clauses) > 0 {
		out.WriteString(strings.Join(clauses, ", "))
		out.WriteString(" from ")
	}
	out.WriteString(s.Source.Raw)
	return out.String()
}

// ExportSpec is one named export binding.
type ExportSpec struct {
	Local    *Ident // local name
	Exported *Ident // exported alias; equals Local when there is no "as" clause
}

func (s *ExportSpec) Pos() token.Position { return s.Local.Pos() }
func (s *ExportSpec) End() token.Position { return s.Exported.End() }

func (s *ExportSpec) String() string {
	if s.Exported != s.Local {
		return s.Local.Name + " as " + s.Exported.Name
	}
	return s.Local.Name
}

// ExportDecl is an export declaration in any of its forms: a declaration
// export, a default export, a named export list, or a re-export.
type ExportDecl struct {
	ExportPos   token.Position
	Decl        Stmt // "export <decl>"; nil otherwise
	Default     bool
	DefaultExpr Expr          // "export default <expr>"; nil otherwise
	Named       []*ExportSpec // "export { a, b as c }"
	Source      *String       // non-nil for re-exports
	All         bool          // "export * from …"
	EndPos      token.Position
}

func (s *ExportDecl) stmtNode() {}

func (s *ExportDecl) Pos() token.Position { return s.ExportPos }
func (s *ExportDecl) End() token.Position { return s.EndPos }

func (s *ExportDecl) String() string {
	var out bytes.Buffer
	out.WriteString("export ")
	switch {
	case s.Decl != nil:
		out.WriteString(s.Decl.String())
	case s.Default:
		out.WriteString("default " + s.DefaultExpr.String())
	case s.All:
		out.WriteString("* from " + s.Source.Raw)
	default:
		parts := make([]string, 0, len(s.Named))
		for _, spec := range s.Named {
			parts = append(parts, spec.String())
		}
		out.WriteString("{ " + strings.Join(parts, ", ") + " }")
		if s.Source != nil {
			out.WriteString(" from " + s.Source.Raw)
		}
	}
	return out.String()
}
