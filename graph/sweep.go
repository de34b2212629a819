package graph

import (
	"github.com/deepnoodle-ai/condense/ast"
	"github.com/deepnoodle-ai/condense/emit"
)

// Sweep performs one combined mark-and-sweep pass over the program: binding
// reachability first, then the bundler module registry when present. When a
// binding removal subsumes a registry edit (the whole registry declaration
// became unreferenced), the contained registry edits are dropped so spans
// never overlap. Callers re-parse and repeat until no edits are produced;
// convergence is guaranteed because removals monotonically shrink the
// program.
func Sweep(prog *ast.Program, src string) ([]emit.Edit, []string) {
	bindingEdits, notes := SweepBindings(prog, src)
	registryEdits, registryNotes := SweepRegistry(prog, src)

	edits := bindingEdits
	for i, re := range registryEdits {
		if overlapsAny(re, bindingEdits) {
			continue
		}
		edits = append(edits, re)
		notes = append(notes, registryNotes[i])
	}
	return edits, notes
}

func overlapsAny(e emit.Edit, edits []emit.Edit) bool {
	for _, other := range edits {
		if e.Lo < other.Hi && other.Lo < e.Hi {
			return true
		}
	}
	return false
}
