// Package graph builds binding and module reference graphs over a
// transformed program and sweeps declarations and registered modules that
// are unreachable from any root.
package graph

import (
	"fmt"

	"github.com/deepnoodle-ai/condense/ast"
	"github.com/deepnoodle-ai/condense/emit"
)

// Binding is one top-level declaration that binds an identifier.
type Binding struct {
	Name       string
	Stmt       ast.Stmt        // declaring statement
	Declarator *ast.Declarator // set for var/let/const bindings
	VarDecl    *ast.VarDecl    // set for var/let/const bindings
	Init       ast.Node        // initializer or function/class literal
	Pure       bool            // function-valued and passes the purity whitelist; removable
	Root       bool            // exported, impure, or otherwise pinned
	uses       []string        // identifier reads inside the binding
}

// bindingSet holds all top-level bindings plus the names referenced by root
// statements.
type bindingSet struct {
	bindings  map[string]*Binding
	order     []*Binding
	rootUses  map[string]bool
}

// isPureExpr applies the conservative purity whitelist: a function
// declaration, an arrow/function expression, or a literal/object/array
// containing only such forms. Anything else — calls, new, reads of other
// bindings, templates with substitutions — keeps the binding.
func isPureExpr(e ast.Expr) bool {
	if e == nil {
		return true
	}
	switch n := ast.Unwrap(e).(type) {
	case *ast.FuncLit:
		return true
	case *ast.Number, *ast.String, *ast.Bool, *ast.Null, *ast.Regex:
		return true
	case *ast.TemplateLit:
		return len(n.Exprs) == 0
	case *ast.Object:
		for _, prop := range n.Props {
			if prop.Key == nil || prop.Computed {
				return false
			}
			if !isPureExpr(prop.Value) {
				return false
			}
		}
		return true
	case *ast.Array:
		for _, el := range n.Elements {
			if el == nil {
				continue
			}
			if _, isSpread := el.(*ast.Spread); isSpread {
				return false
			}
			if !isPureExpr(el) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// isFunctionValued reports whether an initializer is a function or arrow
// expression. Declaration-level sweeping targets function-valued bindings;
// data bindings stay in place even when unreferenced, since top-level data
// declarations in script-form sources are observable.
func isFunctionValued(e ast.Expr) bool {
	_, ok := ast.Unwrap(e).(*ast.FuncLit)
	return ok
}

// identNames collects every identifier read within a node. Member attribute
// names and non-computed property keys are not independent references and
// are excluded by the walker.
func identNames(node ast.Node) []string {
	var names []string
	ast.Inspect(node, func(n ast.Node) bool {
		if ident, ok := n.(*ast.Ident); ok {
			names = append(names, ident.Name)
		}
		return true
	})
	return names
}

// patternNames collects the identifiers bound by a destructuring pattern.
func patternNames(pat ast.Expr) []string {
	return identNames(pat)
}

func collectBindings(prog *ast.Program) *bindingSet {
	set := &bindingSet{
		bindings: map[string]*Binding{},
		rootUses: map[string]bool{},
	}
	for _, stmt := range prog.Stmts {
		set.collectStmt(stmt, false)
	}
	return set
}

func (s *bindingSet) add(b *Binding) {
	s.bindings[b.Name] = b
	s.order = append(s.order, b)
}

func (s *bindingSet) markRootUses(node ast.Node) {
	for _, name := range identNames(node) {
		s.rootUses[name] = true
	}
}

// collectStmt registers the bindings of one top-level statement. Statements
// that are not recognizable declarations become root statements: every
// identifier they mention is marked used.
func (s *bindingSet) collectStmt(stmt ast.Stmt, exported bool) {
	switch n := stmt.(type) {
	case *ast.VarDecl:
		for _, d := range n.Decls {
			ident, ok := d.Name.(*ast.Ident)
			if !ok {
				// Destructuring declarations are kept: the initializer is
				// evaluated and the bound names are all pinned.
				for _, name := range patternNames(d.Name) {
					s.add(&Binding{
						Name: name, Stmt: n, VarDecl: n, Declarator: d,
						Init: d.Init, Pure: false, Root: true,
					})
				}
				if d.Init != nil {
					s.markRootUses(d.Init)
				}
				continue
			}
			b := &Binding{
				Name: ident.Name, Stmt: n, VarDecl: n, Declarator: d,
				Init: d.Init, Root: exported,
				Pure: isPureExpr(d.Init) && isFunctionValued(d.Init),
			}
			if !b.Pure {
				b.Root = true
			}
			if d.Init != nil {
				b.uses = identNames(d.Init)
			}
			s.add(b)
		}
	case *ast.FuncDecl:
		name := ""
		if n.Fn.Name != nil {
			name = n.Fn.Name.Name
		}
		if name == "" {
			s.markRootUses(n)
			return
		}
		s.add(&Binding{
			Name: name, Stmt: n, Init: n.Fn, Pure: true, Root: exported,
			uses: identNames(n.Fn),
		})
	case *ast.ClassDecl:
		name := ""
		if n.Class.Name != nil {
			name = n.Class.Name.Name
		}
		if name == "" {
			s.markRootUses(n)
			return
		}
		// Class bodies are outside the purity whitelist (extends clauses
		// and field initializers may observe state), so classes are pinned.
		s.add(&Binding{
			Name: name, Stmt: n, Init: n.Class, Pure: false, Root: true,
			uses: identNames(n.Class),
		})
	case *ast.ExportDecl:
		switch {
		case n.Decl != nil:
			s.collectStmt(n.Decl, true)
		case n.DefaultExpr != nil:
			s.markRootUses(n.DefaultExpr)
		default:
			for _, spec := range n.Named {
				s.rootUses[spec.Local.Name] = true
			}
		}
	case *ast.ImportDecl:
		// Imports carry side effects of module evaluation; keep them and
		// pin their bindings.
	case *ast.Empty:
		// Nothing to do
	default:
		s.markRootUses(stmt)
	}
}

// markReachable runs the mark phase: root statements and pinned bindings
// seed the worklist; marked bindings propagate through their reads.
func (s *bindingSet) markReachable() map[string]bool {
	marked := map[string]bool{}
	var work []string
	seed := func(name string) {
		if !marked[name] {
			marked[name] = true
			work = append(work, name)
		}
	}
	for name := range s.rootUses {
		seed(name)
	}
	for _, b := range s.order {
		if b.Root {
			seed(b.Name)
		}
	}
	for len(work) > 0 {
		name := work[len(work)-1]
		work = work[:len(work)-1]
		b, ok := s.bindings[name]
		if !ok {
			continue
		}
		for _, use := range b.uses {
			if use != name {
				seed(use)
			}
		}
	}
	return marked
}

// SweepBindings performs one binding-level mark-and-sweep pass and returns
// the removal edits plus human-readable notes about what was removed.
func SweepBindings(prog *ast.Program, src string) ([]emit.Edit, []string) {
	set := collectBindings(prog)
	marked := set.markReachable()

	var edits []emit.Edit
	var notes []string

	// Group var/let/const removals per statement so a fully-dead statement
	// is removed whole and a partially-dead one drops declarators in place.
	removedByDecl := map[*ast.VarDecl][]*Binding{}
	declTotal := map[*ast.VarDecl]int{}

	for _, b := range set.order {
		if b.VarDecl != nil {
			declTotal[b.VarDecl]++
		}
	}
	for _, b := range set.order {
		if marked[b.Name] || b.Root || !b.Pure {
			continue
		}
		if b.VarDecl != nil {
			removedByDecl[b.VarDecl] = append(removedByDecl[b.VarDecl], b)
			continue
		}
		lo, hi := emit.ExpandWholeLines(src, b.Stmt.Pos().Offset, b.Stmt.End().Offset)
		edits = append(edits, emit.Edit{Lo: lo, Hi: hi})
		notes = append(notes, fmt.Sprintf("removed unreferenced declaration %q", b.Name))
	}
	for decl, removed := range removedByDecl {
		if len(removed) == declTotal[decl] {
			lo, hi := emit.ExpandWholeLines(src, decl.Pos().Offset, decl.End().Offset)
			edits = append(edits, emit.Edit{Lo: lo, Hi: hi})
			for _, b := range removed {
				notes = append(notes, fmt.Sprintf("removed unreferenced binding %q", b.Name))
			}
			continue
		}
		for _, b := range removed {
			lo, hi := emit.ExtendListItem(src, b.Declarator.Pos().Offset, b.Declarator.End().Offset)
			edits = append(edits, emit.Edit{Lo: lo, Hi: hi})
			notes = append(notes, fmt.Sprintf("removed unreferenced binding %q", b.Name))
		}
	}
	return edits, notes
}
