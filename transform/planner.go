// Package transform plans and encodes the keep/drop/substitute decisions for
// macro regions as textual edits over the original source.
//
// Conditional regions resolve bottom-up by span containment: a dropped outer
// region swallows every edit planned inside it. True and Unknown conditions
// both keep the body and strip only the markers, so a condition outside the
// supported grammar is never silently dropped.
package transform

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/deepnoodle-ai/condense/ast"
	"github.com/deepnoodle-ai/condense/condition"
	"github.com/deepnoodle-ai/condense/config"
	"github.com/deepnoodle-ai/condense/emit"
	"github.com/deepnoodle-ai/condense/graph"
	"github.com/deepnoodle-ai/condense/internal/lexer"
	"github.com/deepnoodle-ai/condense/internal/token"
	"github.com/deepnoodle-ai/condense/macro"
)

// Plan is the set of edits produced for one program, plus bookkeeping for
// reporting.
type Plan struct {
	Edits         []emit.Edit
	Mutations     []string
	RegionsKept   int
	RegionsDropped int
	Substitutions int
}

// Apply plans the macro-phase edits for the program. The returned error is
// fatal (unbalanced markers); soft failures degrade to preserving input.
func Apply(src string, prog *ast.Program, cfg *config.Config, logger zerolog.Logger) (*Plan, error) {
	directives := macro.Scan(prog.Comments)
	regions, err := macro.Pair(directives)
	if err != nil {
		return nil, err
	}
	logger.Debug().
		Int("directives", len(directives)).
		Int("regions", len(regions)).
		Msg("macro scan complete")

	plan := &Plan{}
	registry := graph.FindRegistry(prog)

	// Regions arrive ordered by opening marker, so parents precede their
	// children and a dropped span check suffices for bottom-up semantics.
	var dropped []span
	for _, region := range regions {
		if coveredBy(region.OuterLo, dropped) {
			continue
		}
		switch region.Kind {
		case macro.IfBlock:
			plan.planIfBlock(src, region, cfg, registry, &dropped, logger)
		case macro.InlineDefine:
			plan.planInlineDefine(src, prog, region, cfg, logger)
		}
	}
	return plan, nil
}

type span struct{ lo, hi int }

func coveredBy(offset int, spans []span) bool {
	for _, s := range spans {
		if offset >= s.lo && offset < s.hi {
			return true
		}
	}
	return false
}

func (p *Plan) planIfBlock(src string, region *macro.Region, cfg *config.Config,
	registry *graph.Registry, dropped *[]span, logger zerolog.Logger,
) {
	raw, ok := region.Condition()
	result := condition.Unknown
	if ok {
		result = condition.EvaluateString(raw, cfg)
	}
	logger.Debug().Str("condition", raw).Stringer("result", result).Msg("evaluated condition")

	if result == condition.False {
		lo, hi := region.OuterLo, region.OuterHi
		// A region forming the entire value of a registry property takes
		// the property (and its comma) with it.
		if prop := registryPropertyFor(registry, region); prop != nil {
			lo, hi = emit.ExtendListItem(src, prop.Pos().Offset, prop.End().Offset)
		}
		lo, hi = emit.ExpandWholeLines(src, lo, hi)
		p.Edits = append(p.Edits, emit.Edit{Lo: lo, Hi: hi})
		*dropped = append(*dropped, span{lo: lo, hi: hi})
		p.RegionsDropped++
		p.Mutations = append(p.Mutations,
			fmt.Sprintf("dropped region for condition %q", raw))
		return
	}

	// True and Unknown both keep the body; only the markers are stripped.
	p.Edits = append(p.Edits, markerEdit(src, region.Open.Comment))
	if region.Close != nil {
		p.Edits = append(p.Edits, markerEdit(src, region.Close.Comment))
	}
	p.RegionsKept++
	if result == condition.Unknown {
		p.Mutations = append(p.Mutations,
			fmt.Sprintf("preserved region for unsupported condition %q", raw))
	} else {
		p.Mutations = append(p.Mutations,
			fmt.Sprintf("kept region for condition %q", raw))
	}
}

// markerEdit removes one marker comment, absorbing redundant whitespace.
func markerEdit(src string, c *ast.Comment) emit.Edit {
	lo, hi := c.Pos().Offset, c.End().Offset
	lo, hi = emit.TrimSurroundingSpace(src, lo, hi)
	lo, hi = emit.ExpandWholeLines(src, lo, hi)
	return emit.Edit{Lo: lo, Hi: hi}
}

func registryPropertyFor(registry *graph.Registry, region *macro.Region) *ast.Property {
	if registry == nil {
		return nil
	}
	for _, m := range registry.Modules {
		valueLo := m.Prop.Value.Pos().Offset
		valueHi := m.Prop.Value.End().Offset
		keyInside := m.Prop.Key != nil &&
			m.Prop.Key.Pos().Offset >= region.OuterLo && m.Prop.Key.Pos().Offset < region.OuterHi
		if valueLo >= region.OuterLo && valueHi <= region.OuterHi && !keyInside {
			return m.Prop
		}
	}
	return nil
}

func (p *Plan) planInlineDefine(src string, prog *ast.Program, region *macro.Region,
	cfg *config.Config, logger zerolog.Logger,
) {
	// The marker itself is always stripped.
	p.Edits = append(p.Edits, markerEdit(src, region.Open.Comment))

	replacement, ok := resolveInline(region.Open.Attrs, cfg)
	if !ok {
		logger.Debug().Msg("inline define unresolved; expression left unchanged")
		return
	}
	target := followingExpression(prog, region.OuterHi)
	if target == nil {
		logger.Debug().Msg("inline define has no following expression")
		return
	}
	p.Edits = append(p.Edits, emit.Edit{
		Lo:   target.Pos().Offset,
		Hi:   target.End().Offset,
		Text: replacement,
	})
	p.Substitutions++
	p.Mutations = append(p.Mutations,
		fmt.Sprintf("substituted inline define with %s", replacement))
}

// resolveInline resolves the replacement text for a define-inline payload:
// the value attribute as a config path first, then the default attribute as
// a raw source fragment. Returns false when neither resolves.
func resolveInline(attrs map[string]string, cfg *config.Config) (string, bool) {
	if path, ok := attrs["value"]; ok {
		if value, found := cfg.Query(path); found {
			if s, isString := value.(string); isString {
				if parsesAsLiteral(s) {
					return s, true
				}
				quoted, err := json.Marshal(s)
				if err == nil {
					return string(quoted), true
				}
			} else if encoded, err := json.Marshal(value); err == nil {
				return string(encoded), true
			}
		}
	}
	if def, ok := attrs["default"]; ok {
		return def, true
	}
	return "", false
}

// parsesAsLiteral reports whether a string is already a single source
// literal token, in which case it is emitted unquoted.
func parsesAsLiteral(s string) bool {
	l := lexer.New(s)
	tok, err := l.Next()
	if err != nil {
		return false
	}
	switch tok.Type {
	case token.NUMBER, token.STRING, token.TRUE, token.FALSE, token.NULL,
		token.TEMPLATE_NO_SUB:
	default:
		return false
	}
	next, err := l.Next()
	return err == nil && next.Type == token.EOF
}

// followingExpression locates the expression node the inline marker
// annotates: the outermost expression starting at the first position at or
// after the marker's end.
func followingExpression(prog *ast.Program, offset int) ast.Expr {
	var best ast.Expr
	ast.Inspect(prog, func(n ast.Node) bool {
		expr, ok := n.(ast.Expr)
		if !ok {
			return true
		}
		pos := expr.Pos().Offset
		if pos < offset {
			return true
		}
		if best == nil || pos < best.Pos().Offset ||
			(pos == best.Pos().Offset && expr.End().Offset > best.End().Offset) {
			best = expr
		}
		return true
	})
	return best
}
