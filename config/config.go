// Package config models the free-form JSON configuration object that macro
// conditions and inline defines resolve against. Paths are dotted key
// sequences; there is no fixed schema.
package config

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/jmespath/go-jmespath"
)

// Config wraps a parsed configuration document.
type Config struct {
	root any
}

// Parse parses a JSON document into a Config. Invalid JSON is a fatal error
// for the pipeline.
func Parse(data string) (*Config, error) {
	var root any
	if err := json.Unmarshal([]byte(data), &root); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Config{root: root}, nil
}

// New wraps an already-decoded document.
func New(root any) *Config {
	return &Config{root: root}
}

// Query resolves a dotted path against the config by successive key lookup.
// Segments may contain hyphens and may start with digits; each segment is
// quoted so the JMESPath grammar accepts it verbatim. Returns the value and
// whether the full path resolved.
func (c *Config) Query(path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	segments := strings.Split(path, ".")
	quoted := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg == "" {
			return nil, false
		}
		quoted = append(quoted, `"`+strings.ReplaceAll(seg, `"`, `\"`)+`"`)
	}
	result, err := jmespath.Search(strings.Join(quoted, "."), c.root)
	if err != nil || result == nil {
		// A literal null value and a missing key are both "absent" here;
		// absence is treated as disabled.
		return nil, false
	}
	return result, true
}

// Truthy applies the configuration truthiness rule to a resolved value:
// false, 0, "", null, and [] are disabled; any other value is enabled.
func Truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		return v != ""
	case []any:
		return len(v) > 0
	default:
		return true
	}
}

// EvaluatePath resolves a path and applies the truthiness rule. Missing
// paths, including missing intermediate keys, yield false.
func (c *Config) EvaluatePath(path string) bool {
	value, ok := c.Query(path)
	if !ok {
		return false
	}
	return Truthy(value)
}

// Leaf is one non-object value reachable by dotted lookup.
type Leaf struct {
	Path  string
	Value any
}

// Flatten returns every leaf value in the config, in deterministic (sorted)
// path order. Arrays count as leaves; objects are recursed into.
func (c *Config) Flatten() []Leaf {
	var leaves []Leaf
	flatten("", c.root, &leaves)
	sort.Slice(leaves, func(i, j int) bool { return leaves[i].Path < leaves[j].Path })
	return leaves
}

func flatten(prefix string, value any, out *[]Leaf) {
	obj, ok := value.(map[string]any)
	if !ok {
		*out = append(*out, Leaf{Path: prefix, Value: value})
		return
	}
	for key, child := range obj {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		flatten(path, child, out)
	}
}

// Analysis summarizes the configuration for the fast-path gate and for
// optimization reporting.
type Analysis struct {
	Flags          map[string]bool // leaf path -> enabled
	EnabledCount   int
	TotalCount     int
	AllEnabled     bool
	ShouldOptimize bool
}

// Analyze flattens the config and classifies every leaf as enabled or
// disabled. AllEnabled requires at least one leaf: an empty config never
// takes the fast path.
func (c *Config) Analyze() *Analysis {
	leaves := c.Flatten()
	a := &Analysis{Flags: make(map[string]bool, len(leaves))}
	for _, leaf := range leaves {
		enabled := Truthy(leaf.Value)
		a.Flags[leaf.Path] = enabled
		if enabled {
			a.EnabledCount++
		}
	}
	a.TotalCount = len(leaves)
	a.AllEnabled = a.TotalCount > 0 && a.EnabledCount == a.TotalCount
	a.ShouldOptimize = !a.AllEnabled
	return a
}

// DisabledFlags returns the disabled leaf paths in sorted order.
func (a *Analysis) DisabledFlags() []string {
	var out []string
	for path, enabled := range a.Flags {
		if !enabled {
			out = append(out, path)
		}
	}
	sort.Strings(out)
	return out
}
