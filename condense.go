// Package condense is a build-time macro preprocessor for JavaScript
// source: given a configuration object and source code annotated with
// comment-embedded macros, it emits semantically equivalent source with
// conditional blocks resolved, inline placeholders substituted, and code
// rendered unreachable by those substitutions eliminated — including
// transitively unreachable function declarations and, when the source is a
// bundler-produced module registry, transitively unreachable registered
// modules.
//
// The pipeline is synchronous and holds no global mutable state; independent
// calls may run concurrently.
package condense

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/deepnoodle-ai/condense/ast"
	"github.com/deepnoodle-ai/condense/condition"
	"github.com/deepnoodle-ai/condense/config"
	"github.com/deepnoodle-ai/condense/emit"
	"github.com/deepnoodle-ai/condense/errz"
	"github.com/deepnoodle-ai/condense/graph"
	"github.com/deepnoodle-ai/condense/internal/lexer"
	"github.com/deepnoodle-ai/condense/macro"
	"github.com/deepnoodle-ai/condense/parser"
	"github.com/deepnoodle-ai/condense/transform"
)

// macroMarkers are the textual forms whose presence disables the fast path.
// Marker stripping and inline substitution are both skipped when the gate
// activates, so it must only activate when the source carries no macro
// markers at all; a marker-free source is in particular define-inline-free.
var macroMarkers = []string{
	"@common:",
	"@swc:",
}

// maxSweepPasses bounds the sweep fixed-point loop. Each pass removes at
// least one node, so the binding count already bounds the loop; this is a
// backstop against splice bugs.
const maxSweepPasses = 10000

// Option configures a preprocessing call.
type Option func(*options)

type options struct {
	filename string
	logger   zerolog.Logger
}

func collectOptions(opts ...Option) *options {
	o := &options{logger: zerolog.Nop()}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// WithFilename sets the file name used in positions and error messages.
func WithFilename(filename string) Option {
	return func(o *options) {
		o.filename = filename
	}
}

// WithLogger sets a logger that receives stage-by-stage debug events.
// The default logger discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Stats summarizes one preprocessing call.
type Stats struct {
	OriginalSize         int     `json:"original_size"`
	OptimizedSize        int     `json:"optimized_size"`
	SizeReductionBytes   int     `json:"size_reduction_bytes"`
	SizeReductionPercent float64 `json:"size_reduction_percent"`
	RegionsKept          int     `json:"regions_kept"`
	RegionsDropped       int     `json:"regions_dropped"`
	InlineSubstitutions  int     `json:"inline_substitutions"`
	SweepPasses          int     `json:"sweep_passes"`
	NodesEliminated      int     `json:"nodes_eliminated"`
	FastPathUsed         bool    `json:"fast_path_used"`
}

// Result is the output of one preprocessing call.
type Result struct {
	Code      string
	Stats     Stats
	Mutations []string
}

// Optimize preprocesses the source against the JSON configuration and
// returns the transformed source text.
func Optimize(source, configJSON string, opts ...Option) (string, error) {
	result, err := Run(source, configJSON, opts...)
	if err != nil {
		return "", err
	}
	return result.Code, nil
}

// Run preprocesses the source and returns the transformed text together
// with statistics and the mutation log.
func Run(source, configJSON string, opts ...Option) (*Result, error) {
	o := collectOptions(opts...)
	logger := o.logger

	cfg, err := config.Parse(configJSON)
	if err != nil {
		return nil, errz.New(errz.ErrEval, err.Error(), errz.SourceLocation{})
	}
	analysis := cfg.Analyze()
	logger.Debug().
		Int("enabled", analysis.EnabledCount).
		Int("total", analysis.TotalCount).
		Bool("all_enabled", analysis.AllEnabled).
		Msg("analyzed config")

	result := &Result{Stats: Stats{OriginalSize: len(source)}}

	if analysis.AllEnabled && !hasMacroMarkers(source) {
		logger.Debug().Msg("fast path: all config values truthy, no inline defines")
		result.Code = source
		result.Stats.OptimizedSize = len(source)
		result.Stats.FastPathUsed = true
		return result, nil
	}

	prog, err := parseSource(source, o.filename)
	if err != nil {
		return nil, err
	}

	plan, err := transform.Apply(source, prog, cfg, logger)
	if err != nil {
		var unbalanced *macro.UnbalancedError
		if errors.As(err, &unbalanced) {
			pos := unbalanced.Directive.Comment.Pos()
			return nil, errz.New(errz.ErrLex, unbalanced.Message, errz.SourceLocation{
				Filename: o.filename,
				Offset:   pos.Offset,
				Line:     pos.LineNumber(),
				Column:   pos.ColumnNumber(),
			})
		}
		return nil, errz.New(errz.ErrLex, err.Error(), errz.SourceLocation{})
	}
	result.Mutations = append(result.Mutations, plan.Mutations...)
	result.Stats.RegionsKept = plan.RegionsKept
	result.Stats.RegionsDropped = plan.RegionsDropped
	result.Stats.InlineSubstitutions = plan.Substitutions

	out, err := emit.Splice(source, plan.Edits)
	if err != nil {
		return nil, errz.New(errz.ErrEmit, err.Error(), errz.SourceLocation{})
	}

	// Reachability sweep to a fixed point: rebuild the graphs after every
	// round of removals until nothing else is unreachable.
	for result.Stats.SweepPasses < maxSweepPasses {
		swept, err := parseSource(out, o.filename)
		if err != nil {
			return nil, err
		}
		edits, notes := graph.Sweep(swept, out)
		if len(edits) == 0 {
			break
		}
		out, err = emit.Splice(out, edits)
		if err != nil {
			return nil, errz.New(errz.ErrEmit, err.Error(), errz.SourceLocation{})
		}
		result.Stats.SweepPasses++
		result.Stats.NodesEliminated += len(edits)
		result.Mutations = append(result.Mutations, notes...)
		logger.Debug().
			Int("pass", result.Stats.SweepPasses).
			Int("removed", len(edits)).
			Msg("sweep pass complete")
	}

	result.Code = out
	result.Stats.OptimizedSize = len(out)
	result.Stats.SizeReductionBytes = result.Stats.OriginalSize - result.Stats.OptimizedSize
	if result.Stats.OriginalSize > 0 {
		result.Stats.SizeReductionPercent =
			float64(result.Stats.SizeReductionBytes) / float64(result.Stats.OriginalSize) * 100
	}
	return result, nil
}

// Info is the analysis report produced without applying changes.
type Info struct {
	FastPathUsed      bool     `json:"fast_path_used"`
	Recommendations   []string `json:"recommendations"`
	EnabledCount      int      `json:"enabled_count"`
	TotalConfigValues int      `json:"total_config_values"`
	AllEnabled        bool     `json:"all_enabled"`
	ShouldOptimize    bool     `json:"should_optimize"`
}

// OptimizationInfo analyzes the source and configuration without applying
// changes, reporting whether the fast path applies and what an optimization
// pass could accomplish.
func OptimizationInfo(source, configJSON string, opts ...Option) (*Info, error) {
	o := collectOptions(opts...)

	cfg, err := config.Parse(configJSON)
	if err != nil {
		return nil, errz.New(errz.ErrEval, err.Error(), errz.SourceLocation{})
	}
	analysis := cfg.Analyze()

	prog, err := parseSource(source, o.filename)
	if err != nil {
		return nil, err
	}

	info := &Info{
		FastPathUsed:      analysis.AllEnabled && !hasMacroMarkers(source),
		Recommendations:   []string{},
		EnabledCount:      analysis.EnabledCount,
		TotalConfigValues: analysis.TotalCount,
		AllEnabled:        analysis.AllEnabled,
		ShouldOptimize:    analysis.ShouldOptimize,
	}

	// Count conditional regions per referenced config path.
	references := map[string]int{}
	for _, d := range macro.Scan(prog.Comments) {
		if d.Name != macro.KindIf {
			continue
		}
		raw, ok := d.Attrs["condition"]
		if !ok {
			continue
		}
		expr, err := condition.Parse(raw)
		if err != nil {
			continue
		}
		for _, path := range condition.Paths(expr) {
			references[path]++
		}
	}
	for _, flag := range analysis.DisabledFlags() {
		if count := references[flag]; count > 0 {
			info.Recommendations = append(info.Recommendations,
				flagRecommendation(flag, count))
		}
	}
	if analysis.TotalCount > 3 {
		info.Recommendations = append(info.Recommendations,
			"Multiple features detected - consider code splitting for better optimization")
	}
	if !analysis.AllEnabled {
		info.Recommendations = append(info.Recommendations,
			"Not all features are enabled - tree shaking will be effective")
	}
	return info, nil
}

func flagRecommendation(flag string, count int) string {
	plural := "regions"
	if count == 1 {
		plural = "region"
	}
	return fmt.Sprintf(
		"Feature '%s' is disabled and guards %d conditional %s - related code can be removed",
		flag, count, plural)
}

// hasMacroMarkers is the textual scan that governs fast-path activation.
func hasMacroMarkers(source string) bool {
	for _, marker := range macroMarkers {
		if strings.Contains(source, marker) {
			return true
		}
	}
	return false
}

// parseSource parses the input and converts parser failures into structured
// errors: lexical causes surface as ErrLex, everything else as ErrParse.
func parseSource(source, filename string) (*ast.Program, error) {
	prog, err := parser.Parse(context.Background(), source, parser.WithFilename(filename))
	if err == nil {
		return prog, nil
	}
	kind := errz.ErrParse
	var lexErr *lexer.Error
	if errors.As(err, &lexErr) {
		kind = errz.ErrLex
	}
	loc := errz.SourceLocation{Filename: filename}
	var parseErrs *parser.Errors
	if errors.As(err, &parseErrs) && parseErrs.First() != nil {
		first := parseErrs.First()
		start := first.StartPosition()
		msg := first.Message()
		loc.Source = first.SourceCode()
		// A lexer failure carries its own message and position.
		var firstLex *lexer.Error
		if errors.As(first.Cause(), &firstLex) {
			start = firstLex.Position
			msg = firstLex.Message
			loc.Source = ""
		}
		loc.Offset = start.Offset
		loc.Line = start.LineNumber()
		loc.Column = start.ColumnNumber()
		return nil, errz.New(kind, msg, loc).WithCause(err)
	}
	return nil, errz.New(kind, err.Error(), loc).WithCause(err)
}
