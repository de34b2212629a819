package ast

// Visitor defines the interface for AST traversal. If Visit returns nil,
// children of the node are not visited. Otherwise, the returned Visitor
// is used to visit children.
type Visitor interface {
	Visit(node Node) (w Visitor)
}

// Walk traverses an AST in depth-first order. It starts by calling
// v.Visit(node); if the returned visitor w is not nil, Walk is invoked
// recursively with visitor w for each of the non-nil children of node.
func Walk(v Visitor, node Node) {
	if node == nil {
		return
	}
	if v = v.Visit(node); v == nil {
		return
	}

	switch n := node.(type) {
	case *Program:
		for _, stmt := range n.Stmts {
			Walk(v, stmt)
		}

	// Statements
	case *VarDecl:
		for _, d := range n.Decls {
			Walk(v, d)
		}
	case *Declarator:
		Walk(v, n.Name)
		if n.Init != nil {
			Walk(v, n.Init)
		}
	case *FuncDecl:
		Walk(v, n.Fn)
	case *ClassDecl:
		Walk(v, n.Class)
	case *ExprStmt:
		Walk(v, n.X)
	case *Return:
		if n.Value != nil {
			Walk(v, n.Value)
		}
	case *If:
		Walk(v, n.Cond)
		Walk(v, n.Then)
		if n.Else != nil {
			Walk(v, n.Else)
		}
	case *For:
		if n.Init != nil {
			Walk(v, n.Init)
		}
		if n.Cond != nil {
			Walk(v, n.Cond)
		}
		if n.Post != nil {
			Walk(v, n.Post)
		}
		Walk(v, n.Body)
	case *ForIn:
		Walk(v, n.Decl)
		Walk(v, n.X)
		Walk(v, n.Body)
	case *While:
		Walk(v, n.Cond)
		Walk(v, n.Body)
	case *DoWhile:
		Walk(v, n.Body)
		Walk(v, n.Cond)
	case *Switch:
		Walk(v, n.Tag)
		for _, c := range n.Cases {
			Walk(v, c)
		}
	case *SwitchCase:
		if n.Test != nil {
			Walk(v, n.Test)
		}
		for _, stmt := range n.Body {
			Walk(v, stmt)
		}
	case *Try:
		Walk(v, n.Body)
		if n.CatchParam != nil {
			Walk(v, n.CatchParam)
		}
		if n.CatchBody != nil {
			Walk(v, n.CatchBody)
		}
		if n.FinallyBody != nil {
			Walk(v, n.FinallyBody)
		}
	case *Throw:
		Walk(v, n.Value)
	case *Break:
		// No children worth visiting; the label is not a reference
	case *Continue:
		// No children worth visiting
	case *Labeled:
		Walk(v, n.Stmt)
	case *Block:
		for _, stmt := range n.Stmts {
			Walk(v, stmt)
		}
	case *Empty:
		// No children
	case *ImportDecl:
		if n.Default != nil {
			Walk(v, n.Default)
		}
		if n.Namespace != nil {
			Walk(v, n.Namespace)
		}
		for _, spec := range n.Named {
			Walk(v, spec)
		}
		Walk(v, n.Source)
	case *ImportSpec:
		Walk(v, n.Name)
		if n.Local != n.Name {
			Walk(v, n.Local)
		}
	case *ExportDecl:
		if n.Decl != nil {
			Walk(v, n.Decl)
		}
		if n.DefaultExpr != nil {
			Walk(v, n.DefaultExpr)
		}
		for _, spec := range n.Named {
			Walk(v, spec)
		}
		if n.Source != nil {
			Walk(v, n.Source)
		}
	case *ExportSpec:
		Walk(v, n.Local)
		if n.Exported != n.Local {
			Walk(v, n.Exported)
		}

	// Error recovery nodes
	case *BadExpr:
		// No children
	case *BadStmt:
		// No children

	// Expressions
	case *Ident:
		// No children
	case *Number, *String, *Regex, *Bool, *Null:
		// No children
	case *TemplateLit:
		for _, expr := range n.Exprs {
			Walk(v, expr)
		}
	case *TaggedTemplate:
		Walk(v, n.Tag)
		Walk(v, n.Quasi)
	case *Unary:
		Walk(v, n.X)
	case *Update:
		Walk(v, n.X)
	case *Binary:
		Walk(v, n.X)
		Walk(v, n.Y)
	case *Assign:
		Walk(v, n.Target)
		Walk(v, n.Value)
	case *Cond:
		Walk(v, n.Test)
		Walk(v, n.Then)
		Walk(v, n.Else)
	case *Seq:
		for _, expr := range n.Exprs {
			Walk(v, expr)
		}
	case *Call:
		Walk(v, n.Fun)
		for _, arg := range n.Args {
			Walk(v, arg)
		}
	case *New:
		Walk(v, n.Callee)
		for _, arg := range n.Args {
			Walk(v, arg)
		}
	case *Member:
		Walk(v, n.X)
		// The attribute name is not an independent reference
	case *Index:
		Walk(v, n.X)
		Walk(v, n.Index)
	case *Spread:
		Walk(v, n.X)
	case *Paren:
		Walk(v, n.X)
	case *Array:
		for _, el := range n.Elements {
			if el != nil {
				Walk(v, el)
			}
		}
	case *Object:
		for _, prop := range n.Props {
			Walk(v, prop)
		}
	case *Property:
		if n.Key != nil && n.Computed {
			Walk(v, n.Key)
		}
		Walk(v, n.Value)
	case *Param:
		Walk(v, n.Pat)
		if n.Default != nil {
			Walk(v, n.Default)
		}
	case *FuncLit:
		if n.Name != nil {
			Walk(v, n.Name)
		}
		for _, p := range n.Params {
			Walk(v, p)
		}
		if n.Body != nil {
			Walk(v, n.Body)
		}
		if n.ExprBody != nil {
			Walk(v, n.ExprBody)
		}
	case *ClassLit:
		if n.Name != nil {
			Walk(v, n.Name)
		}
		if n.Extends != nil {
			Walk(v, n.Extends)
		}
		for _, m := range n.Members {
			Walk(v, m)
		}
	case *ClassMember:
		if n.Computed {
			Walk(v, n.Key)
		}
		if n.Value != nil {
			Walk(v, n.Value)
		}
	case *Comment:
		// No children
	}
}

// Inspect traverses an AST in depth-first order. It calls f(node) for each
// node; if f returns true, Inspect invokes f recursively for each of the
// non-nil children of node.
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(f), node)
}

type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}
