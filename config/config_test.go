package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInvalidJSON(t *testing.T) {
	_, err := Parse(`{"a": `)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestQuery(t *testing.T) {
	cfg, err := Parse(`{
		"featureFlags": {"enableX": true, "3d-visualization": false},
		"user": {"type": "admin"},
		"top": 1
	}`)
	require.NoError(t, err)

	v, ok := cfg.Query("featureFlags.enableX")
	require.True(t, ok)
	assert.Equal(t, true, v)

	v, ok = cfg.Query("user.type")
	require.True(t, ok)
	assert.Equal(t, "admin", v)

	v, ok = cfg.Query("top")
	require.True(t, ok)
	assert.Equal(t, float64(1), v)

	// Hyphenated and digit-leading segments resolve
	v, ok = cfg.Query("featureFlags.3d-visualization")
	require.True(t, ok)
	assert.Equal(t, false, v)

	_, ok = cfg.Query("missing")
	assert.False(t, ok)
	_, ok = cfg.Query("missing.deeper")
	assert.False(t, ok)
	_, ok = cfg.Query("user.type.extra")
	assert.False(t, ok)
	_, ok = cfg.Query("")
	assert.False(t, ok)
}

func TestQueryNullIsAbsent(t *testing.T) {
	cfg, err := Parse(`{"a": null}`)
	require.NoError(t, err)
	_, ok := cfg.Query("a")
	assert.False(t, ok)
	assert.False(t, cfg.EvaluatePath("a"))
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected bool
	}{
		{"true", true, true},
		{"false", false, false},
		{"zero", float64(0), false},
		{"nonzero", float64(3), true},
		{"empty string", "", false},
		{"string", "x", true},
		{"nil", nil, false},
		{"empty array", []any{}, false},
		{"array", []any{1}, true},
		{"object", map[string]any{"a": 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Truthy(tt.value))
		})
	}
}

func TestFlatten(t *testing.T) {
	cfg, err := Parse(`{
		"a": true,
		"b": {"c": 1, "d": {"e": ""}},
		"f": [1, 2]
	}`)
	require.NoError(t, err)
	leaves := cfg.Flatten()
	paths := make([]string, 0, len(leaves))
	for _, leaf := range leaves {
		paths = append(paths, leaf.Path)
	}
	assert.Equal(t, []string{"a", "b.c", "b.d.e", "f"}, paths)
}

func TestAnalyze(t *testing.T) {
	cfg, err := Parse(`{"a": true, "b": {"c": false, "d": 1}}`)
	require.NoError(t, err)
	analysis := cfg.Analyze()
	assert.Equal(t, 3, analysis.TotalCount)
	assert.Equal(t, 2, analysis.EnabledCount)
	assert.False(t, analysis.AllEnabled)
	assert.True(t, analysis.ShouldOptimize)
	assert.Equal(t, []string{"b.c"}, analysis.DisabledFlags())
}

func TestAnalyzeAllEnabled(t *testing.T) {
	cfg, err := Parse(`{"a": true, "b": {"c": "on"}}`)
	require.NoError(t, err)
	analysis := cfg.Analyze()
	assert.True(t, analysis.AllEnabled)
	assert.False(t, analysis.ShouldOptimize)
}

func TestAnalyzeEmptyConfigNeverAllEnabled(t *testing.T) {
	cfg, err := Parse(`{}`)
	require.NoError(t, err)
	analysis := cfg.Analyze()
	assert.Equal(t, 0, analysis.TotalCount)
	assert.False(t, analysis.AllEnabled)
}
