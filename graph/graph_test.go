package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepnoodle-ai/condense/ast"
	"github.com/deepnoodle-ai/condense/emit"
	"github.com/deepnoodle-ai/condense/parser"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	program, err := parser.Parse(context.Background(), src)
	require.NoError(t, err)
	return program
}

// sweepToFixedPoint mirrors the pipeline's sweep loop.
func sweepToFixedPoint(t *testing.T, src string) string {
	t.Helper()
	for {
		program := parse(t, src)
		edits, _ := Sweep(program, src)
		if len(edits) == 0 {
			return src
		}
		out, err := emit.Splice(src, edits)
		require.NoError(t, err)
		src = out
	}
}

func TestSweepRemovesDeadFunction(t *testing.T) {
	src := "function used() { return 1; }\nfunction dead() { return 2; }\nused();\n"
	out := sweepToFixedPoint(t, src)
	assert.Equal(t, "function used() { return 1; }\nused();\n", out)
}

func TestSweepTransitiveChain(t *testing.T) {
	src := "function a() { return b(); }\n" +
		"function b() { return 1; }\n" +
		"function c() { return b(); }\n" +
		"a();\n"
	out := sweepToFixedPoint(t, src)
	assert.Contains(t, out, "function a")
	assert.Contains(t, out, "function b")
	assert.NotContains(t, out, "function c")
}

func TestSweepRemovesOrphanedChain(t *testing.T) {
	// Neither f nor g is reachable from a root, so both are removed
	src := "function f() { return g(); }\nfunction g() { return 1; }\n"
	out := sweepToFixedPoint(t, src)
	assert.Equal(t, "", out)
}

func TestSweepKeepsMutualRecursionWhenRooted(t *testing.T) {
	src := "function even(n) { return n === 0 || odd(n - 1); }\n" +
		"function odd(n) { return n !== 0 && even(n - 1); }\n" +
		"even(4);\n"
	out := sweepToFixedPoint(t, src)
	assert.Contains(t, out, "function even")
	assert.Contains(t, out, "function odd")
}

func TestSweepRemovesUnrootedCycle(t *testing.T) {
	src := "function ping() { return pong(); }\nfunction pong() { return ping(); }\n"
	out := sweepToFixedPoint(t, src)
	assert.Equal(t, "", out)
}

func TestSweepKeepsDataBindings(t *testing.T) {
	// Unreferenced data declarations stay: only function-valued bindings
	// pass the removal gate.
	src := "const x = \"production\";\nvar n = 42;\n"
	out := sweepToFixedPoint(t, src)
	assert.Equal(t, src, out)
}

func TestSweepKeepsImpureInitializers(t *testing.T) {
	src := "var handle = setInterval(tick, 100);\nfunction tick() {}\n"
	out := sweepToFixedPoint(t, src)
	// The call-bearing initializer pins handle, which keeps tick alive
	assert.Equal(t, src, out)
}

func TestSweepKeepsExports(t *testing.T) {
	src := "export function api() { return helper(); }\nfunction helper() { return 1; }\nfunction dead() {}\n"
	out := sweepToFixedPoint(t, src)
	assert.Contains(t, out, "function api")
	assert.Contains(t, out, "function helper")
	assert.NotContains(t, out, "function dead")
}

func TestSweepFunctionExpressionBindings(t *testing.T) {
	src := "var fn = function() { return 1; };\nvar arrow = () => 2;\nfn();\n"
	out := sweepToFixedPoint(t, src)
	assert.Contains(t, out, "var fn")
	assert.NotContains(t, out, "arrow")
}

func TestSweepPartialVarDecl(t *testing.T) {
	src := "var a = function() {}, b = function() {};\na();\n"
	out := sweepToFixedPoint(t, src)
	assert.Contains(t, out, "a = function")
	assert.NotContains(t, out, "b = function")
}

const registrySource = `var __webpack_modules__ = ({
153: function(module, exports, __webpack_require__) {
var util = __webpack_require__(418);
__webpack_require__(78);
module.exports = { run: function() { return util.x; } };
},
418: function(module, exports, __webpack_require__) {
module.exports = { x: 1 };
},
78: function(module, exports, __webpack_require__) {
exports.loaded = true;
}
});
`

func TestFindRegistry(t *testing.T) {
	program := parse(t, registrySource)
	reg := FindRegistry(program)
	require.NotNil(t, reg)
	require.Len(t, reg.Modules, 3)

	m, ok := reg.Lookup("153")
	require.True(t, ok)
	assert.Equal(t, []string{"418", "78"}, m.Deps)
}

func TestFindRegistryRejectsOtherShapes(t *testing.T) {
	// Wrong identifier
	program := parse(t, "var modules = ({ 1: function(a, b, c) {} });")
	assert.Nil(t, FindRegistry(program))

	// Wrong parameter count
	program = parse(t, "var __webpack_modules__ = ({ 1: function(a) {} });")
	assert.Nil(t, FindRegistry(program))

	// Non-literal key
	program = parse(t, "var __webpack_modules__ = ({ [k]: function(a, b, c) {} });")
	assert.Nil(t, FindRegistry(program))

	// Non-function value
	program = parse(t, "var __webpack_modules__ = ({ 1: {} });")
	assert.Nil(t, FindRegistry(program))
}

func TestEntryDetectionIsSpanBased(t *testing.T) {
	src := registrySource + "__webpack_require__(153);\n"
	program := parse(t, src)
	reg := FindRegistry(program)
	require.NotNil(t, reg)
	// The requires inside module 153 are internal edges, not entries
	assert.Equal(t, []string{"153"}, EntryIDs(program, reg))
}

func TestSweepRegistryKeepsReachableChain(t *testing.T) {
	src := registrySource + "__webpack_require__(153);\n"
	out := sweepToFixedPoint(t, src)
	assert.Contains(t, out, "153:")
	assert.Contains(t, out, "418:")
	assert.Contains(t, out, "78:")
}

func TestSweepRegistryRemovesUnreachableModules(t *testing.T) {
	src := registrySource + "__webpack_require__(418);\n"
	out := sweepToFixedPoint(t, src)
	assert.NotContains(t, out, "153:")
	assert.Contains(t, out, "418:")
	assert.NotContains(t, out, "78:")
}

func TestSweepRegistryNoEntriesRemovesAll(t *testing.T) {
	out := sweepToFixedPoint(t, registrySource)
	assert.NotContains(t, out, "153:")
	assert.NotContains(t, out, "418:")
	assert.NotContains(t, out, "78:")
	assert.Contains(t, out, "__webpack_modules__")
}
