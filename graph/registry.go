package graph

import (
	"fmt"
	"strconv"

	"github.com/deepnoodle-ai/condense/ast"
	"github.com/deepnoodle-ai/condense/emit"
)

// requireName is the bundler runtime import function whose call sites form
// the module graph edges.
const requireName = "__webpack_require__"

// registryName is the identifier whose declaration holds the module registry
// object literal.
const registryName = "__webpack_modules__"

// Module is one registered module in the bundler registry.
type Module struct {
	ID   string
	Prop *ast.Property
	Deps []string // module ids required from inside this module's body
}

// Registry is the recognized bundler module registry: a top-level
// var/let/const declaration of exactly __webpack_modules__ initialized to an
// object literal whose keys are numeric or string literals and whose values
// are function expressions taking three parameters. Any other shape disables
// module-level pruning.
type Registry struct {
	Decl    *ast.VarDecl
	Object  *ast.Object
	Lo, Hi  int // byte span of the registry object literal
	Modules []*Module
	byID    map[string]*Module
}

// Lookup returns the module with the given id, if registered.
func (r *Registry) Lookup(id string) (*Module, bool) {
	m, ok := r.byID[id]
	return m, ok
}

// FindRegistry recognizes the bundler module registry shape in a program's
// top-level statements. Returns nil when no statement matches.
func FindRegistry(prog *ast.Program) *Registry {
	for _, stmt := range prog.Stmts {
		decl, ok := stmt.(*ast.VarDecl)
		if !ok {
			continue
		}
		for _, d := range decl.Decls {
			ident, ok := d.Name.(*ast.Ident)
			if !ok || ident.Name != registryName || d.Init == nil {
				continue
			}
			obj, ok := ast.Unwrap(d.Init).(*ast.Object)
			if !ok {
				return nil
			}
			reg := &Registry{
				Decl:   decl,
				Object: obj,
				Lo:     d.Init.Pos().Offset,
				Hi:     d.Init.End().Offset,
				byID:   map[string]*Module{},
			}
			for _, prop := range obj.Props {
				id, ok := moduleKeyID(prop)
				if !ok {
					return nil
				}
				fn, ok := ast.Unwrap(prop.Value).(*ast.FuncLit)
				if !ok || len(fn.Params) != 3 {
					return nil
				}
				m := &Module{ID: id, Prop: prop, Deps: requireTargets(prop.Value)}
				reg.Modules = append(reg.Modules, m)
				reg.byID[id] = m
			}
			return reg
		}
	}
	return nil
}

// moduleKeyID extracts a module id from a registry property key, which must
// be a numeric or string literal.
func moduleKeyID(prop *ast.Property) (string, bool) {
	if prop == nil || prop.Key == nil || prop.Computed {
		return "", false
	}
	switch key := prop.Key.(type) {
	case *ast.Number:
		return formatModuleID(key.Value), true
	case *ast.String:
		return key.Value, true
	default:
		return "", false
	}
}

func formatModuleID(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// requireTargets collects the module ids passed to __webpack_require__ calls
// within the given node.
func requireTargets(node ast.Node) []string {
	var ids []string
	ast.Inspect(node, func(n ast.Node) bool {
		if id, ok := requireTarget(n); ok {
			ids = append(ids, id)
		}
		return true
	})
	return ids
}

// requireTarget matches one __webpack_require__(<literal>) call.
func requireTarget(n ast.Node) (string, bool) {
	call, ok := n.(*ast.Call)
	if !ok {
		return "", false
	}
	fun, ok := ast.Unwrap(call.Fun).(*ast.Ident)
	if !ok || fun.Name != requireName || len(call.Args) == 0 {
		return "", false
	}
	switch arg := call.Args[0].(type) {
	case *ast.Number:
		return formatModuleID(arg.Value), true
	case *ast.String:
		return arg.Value, true
	default:
		return "", false
	}
}

// EntryIDs returns the module ids required from call sites lying outside the
// registry literal's span. Root detection is span-based.
func EntryIDs(prog *ast.Program, reg *Registry) []string {
	var entries []string
	ast.Inspect(prog, func(n ast.Node) bool {
		id, ok := requireTarget(n)
		if !ok {
			return true
		}
		offset := n.Pos().Offset
		if offset < reg.Lo || offset >= reg.Hi {
			entries = append(entries, id)
		}
		return true
	})
	return entries
}

// SweepRegistry performs one module-level mark-and-sweep pass: entry call
// sites mark their targets, marks propagate through intra-registry require
// edges, and unmarked registry properties are removed with their separating
// commas normalized.
func SweepRegistry(prog *ast.Program, src string) ([]emit.Edit, []string) {
	reg := FindRegistry(prog)
	if reg == nil {
		return nil, nil
	}
	marked := map[string]bool{}
	var work []string
	seed := func(id string) {
		if !marked[id] {
			marked[id] = true
			work = append(work, id)
		}
	}
	for _, id := range EntryIDs(prog, reg) {
		seed(id)
	}
	for len(work) > 0 {
		id := work[len(work)-1]
		work = work[:len(work)-1]
		m, ok := reg.Lookup(id)
		if !ok {
			continue
		}
		for _, dep := range m.Deps {
			seed(dep)
		}
	}

	var edits []emit.Edit
	var notes []string
	for _, m := range reg.Modules {
		if marked[m.ID] {
			continue
		}
		lo, hi := emit.ExtendListItem(src, m.Prop.Pos().Offset, m.Prop.End().Offset)
		lo, hi = emit.ExpandWholeLines(src, lo, hi)
		edits = append(edits, emit.Edit{Lo: lo, Hi: hi})
		notes = append(notes, fmt.Sprintf("removed unreachable module %s", m.ID))
	}
	return edits, notes
}
