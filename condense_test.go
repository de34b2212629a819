package condense

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepnoodle-ai/condense/errz"
)

func TestScenarioKeepBranch(t *testing.T) {
	src := "/* @common:if [condition=\"f.a\"] */KEEP\n/* @common:endif */"
	out, err := Optimize(src, `{"f":{"a":true}}`)
	require.NoError(t, err)
	assert.Equal(t, "KEEP\n", out)
}

func TestScenarioDropBranch(t *testing.T) {
	src := "/* @common:if [condition=\"f.a\"] */KEEP\n/* @common:endif */"
	out, err := Optimize(src, `{"f":{"a":false}}`)
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestScenarioInlineSubstitution(t *testing.T) {
	src := `const x = /* @common:define-inline [value="b.t" default="development"] */ "development";`
	out, err := Optimize(src, `{"b":{"t":"production"}}`)
	require.NoError(t, err)
	assert.Equal(t, `const x = "production";`, out)
}

const registryScenario = `var __webpack_modules__ = ({
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
/* @common:if [condition="features.A"] */
var featureA = __webpack_require__(153);
featureA.run();
/* @common:endif */
`

func TestScenarioRegistryPruning(t *testing.T) {
	out, err := Optimize(registryScenario, `{"features":{"A":false}}`)
	require.NoError(t, err)
	// The only entry was guarded; 418 and 78 were reachable only from 153.
	assert.NotContains(t, out, "153:")
	assert.NotContains(t, out, "418:")
	assert.NotContains(t, out, "78:")
	assert.NotContains(t, out, "featureA")
	assert.NotContains(t, out, "@common")
}

func TestScenarioRegistryKeptWhenEnabled(t *testing.T) {
	out, err := Optimize(registryScenario, `{"features":{"A":true},"other":false}`)
	require.NoError(t, err)
	assert.Contains(t, out, "153:")
	assert.Contains(t, out, "418:")
	assert.Contains(t, out, "78:")
	assert.Contains(t, out, "featureA.run();")
	assert.NotContains(t, out, "@common")
}

func TestScenarioUnknownConditionPreservesBody(t *testing.T) {
	src := "/* @common:if [condition=\"weird.expr(x)\"] */BODY\n/* @common:endif */"
	for _, cfg := range []string{`{}`, `{"weird":true}`, `{"a":false}`} {
		out, err := Optimize(src, cfg)
		require.NoError(t, err)
		assert.Equal(t, "BODY\n", out)
	}
}

const multiCallScenario = `function f() { return 1; }
/* @common:if [condition="a"] */
f();
/* @common:endif */
/* @common:if [condition="b"] */
f();
/* @common:endif */
/* @common:if [condition="c"] */
f();
/* @common:endif */
`

func TestScenarioMultipleConditionalCalls(t *testing.T) {
	// Enabling any one site keeps f
	out, err := Optimize(multiCallScenario, `{"a":true,"b":false,"c":false}`)
	require.NoError(t, err)
	assert.Contains(t, out, "function f()")
	assert.Equal(t, 1, strings.Count(out, "f();"))

	// Disabling all removes f
	out, err = Optimize(multiCallScenario, `{"a":false,"b":false,"c":false}`)
	require.NoError(t, err)
	assert.NotContains(t, out, "function f")
	assert.Equal(t, "", out)
}

func TestFastPath(t *testing.T) {
	src := "function untouched() { }\n// even dead code survives the fast path\n"
	result, err := Run(src, `{"f":{"a":true},"b":"on"}`)
	require.NoError(t, err)
	assert.True(t, result.Stats.FastPathUsed)
	assert.Equal(t, src, result.Code)
}

func TestFastPathBlockedByMarkers(t *testing.T) {
	src := "/* @common:if [condition=\"f.a\"] */KEEP\n/* @common:endif */"
	result, err := Run(src, `{"f":{"a":true}}`)
	require.NoError(t, err)
	assert.False(t, result.Stats.FastPathUsed)
	assert.Equal(t, "KEEP\n", result.Code)
}

func TestFastPathBlockedByDisabledValue(t *testing.T) {
	result, err := Run("var ok = 1;\n", `{"a":true,"b":false}`)
	require.NoError(t, err)
	assert.False(t, result.Stats.FastPathUsed)
}

func TestIdempotence(t *testing.T) {
	cases := []struct {
		src string
		cfg string
	}{
		{"/* @common:if [condition=\"f.a\"] */KEEP\n/* @common:endif */", `{"f":{"a":true}}`},
		{"/* @common:if [condition=\"f.a\"] */KEEP\n/* @common:endif */", `{"f":{"a":false}}`},
		{`const x = /* @common:define-inline [value="b.t" default="d"] */ "d";`, `{"b":{"t":"production"}}`},
		{registryScenario, `{"features":{"A":false}}`},
		{multiCallScenario, `{"a":false,"b":true,"c":false}`},
	}
	for _, tt := range cases {
		once, err := Optimize(tt.src, tt.cfg)
		require.NoError(t, err)
		twice, err := Optimize(once, tt.cfg)
		require.NoError(t, err)
		assert.Equal(t, once, twice)
	}
}

func TestDeeplyNestedRegions(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 8; i++ {
		b.WriteString("/* @common:if [condition=\"on\"] */\n")
	}
	b.WriteString("core();\n")
	for i := 0; i < 8; i++ {
		b.WriteString("/* @common:endif */\n")
	}
	out, err := Optimize(b.String(), `{"on":true,"off":false}`)
	require.NoError(t, err)
	assert.Equal(t, "core();\n", out)

	out, err = Optimize(b.String(), `{"on":false}`)
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestUnbalancedMarkersFatal(t *testing.T) {
	src := "/* @common:if [condition=\"a\"] */\nbody();\n"
	_, err := Optimize(src, `{"a":false}`)
	require.Error(t, err)
	var structured *errz.StructuredError
	require.ErrorAs(t, err, &structured)
	assert.Equal(t, errz.ErrLex, structured.Kind)

	src = "body();\n/* @common:endif */\n"
	_, err = Optimize(src, `{"a":false}`)
	require.Error(t, err)
	require.ErrorAs(t, err, &structured)
	assert.Equal(t, errz.ErrLex, structured.Kind)
}

func TestInvalidConfigFatal(t *testing.T) {
	_, err := Optimize("x();", `{not json`)
	require.Error(t, err)
	var structured *errz.StructuredError
	require.ErrorAs(t, err, &structured)
	assert.Equal(t, errz.ErrEval, structured.Kind)
}

func TestParseErrorFatal(t *testing.T) {
	_, err := Optimize("var = ;", `{"a":false}`)
	require.Error(t, err)
	var structured *errz.StructuredError
	require.ErrorAs(t, err, &structured)
	assert.Equal(t, errz.ErrParse, structured.Kind)
}

func TestLegacyPrefix(t *testing.T) {
	src := "/* @swc:if [condition=\"f.a\"] */KEEP\n/* @swc:endif */"
	out, err := Optimize(src, `{"f":{"a":true}}`)
	require.NoError(t, err)
	assert.Equal(t, "KEEP\n", out)

	out, err = Optimize(src, `{"f":{"a":false}}`)
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestMutationsAndStats(t *testing.T) {
	result, err := Run(multiCallScenario, `{"a":false,"b":false,"c":false}`)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Stats.RegionsDropped)
	assert.Equal(t, 0, result.Stats.RegionsKept)
	assert.NotZero(t, result.Stats.SweepPasses)
	assert.NotEmpty(t, result.Mutations)
	assert.Greater(t, result.Stats.SizeReductionBytes, 0)
}

func TestOptimizationInfo(t *testing.T) {
	info, err := OptimizationInfo(multiCallScenario, `{"a":true,"b":false,"c":false}`)
	require.NoError(t, err)
	assert.False(t, info.FastPathUsed)
	assert.Equal(t, 1, info.EnabledCount)
	assert.Equal(t, 3, info.TotalConfigValues)
	assert.False(t, info.AllEnabled)
	assert.True(t, info.ShouldOptimize)

	joined := strings.Join(info.Recommendations, "\n")
	assert.Contains(t, joined, "'b' is disabled")
	assert.Contains(t, joined, "'c' is disabled")
	assert.Contains(t, joined, "tree shaking")
}

func TestOptimizationInfoAllEnabled(t *testing.T) {
	info, err := OptimizationInfo("var x = 1;\n", `{"a":true}`)
	require.NoError(t, err)
	assert.True(t, info.FastPathUsed)
	assert.True(t, info.AllEnabled)
	assert.False(t, info.ShouldOptimize)
	assert.Equal(t, 1, info.EnabledCount)
}
