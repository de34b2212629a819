// Package macro recognizes macro directives embedded in source comments and
// pairs their opening and closing markers into regions.
//
// Recognized forms, case-sensitive, within block comments only:
//
//	/* @common:if [condition="…"] */           opens a conditional region
//	/* @common:endif */                        closes the nearest open region
//	/* @common:define-inline [value="…" default="…"] */
//
// The legacy prefix @swc: is accepted as a synonym of @common:. Unknown
// directives and unknown attributes are ignored. Raw bracketed payloads are
// preserved verbatim so ill-formed payloads surface as evaluator results
// (Unknown) rather than silent misreads.
package macro

import (
	"fmt"
	"regexp"

	"github.com/deepnoodle-ai/condense/ast"
)

// Directive kinds.
const (
	KindIf           = "if"
	KindEndif        = "endif"
	KindDefineInline = "define-inline"
)

var (
	macroRe = regexp.MustCompile(`@([A-Za-z]+):([A-Za-z-]+)\s*(?:\[([^\]]*)\])?`)
	attrRe  = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_-]*)\s*=\s*"([^"]*)"`)
)

// Directive is one recognized macro marker.
type Directive struct {
	Comment   *ast.Comment
	Namespace string // "common" or "swc"
	Name      string // "if", "endif", or "define-inline"
	Attrs     map[string]string
	RawAttrs  string // bracketed payload text, verbatim
}

// Scan extracts macro directives from the program's comments, in source
// order. Line comments and comments without a recognized marker are skipped.
func Scan(comments []*ast.Comment) []*Directive {
	var out []*Directive
	for _, c := range comments {
		if !c.Block {
			continue
		}
		d := parseDirective(c)
		if d != nil {
			out = append(out, d)
		}
	}
	return out
}

func parseDirective(c *ast.Comment) *Directive {
	m := macroRe.FindStringSubmatch(c.Text)
	if m == nil {
		return nil
	}
	namespace, name := m[1], m[2]
	if namespace != "common" && namespace != "swc" {
		return nil
	}
	switch name {
	case KindIf, KindEndif, KindDefineInline:
	default:
		return nil
	}
	attrs := map[string]string{}
	for _, am := range attrRe.FindAllStringSubmatch(m[3], -1) {
		attrs[am[1]] = am[2]
	}
	return &Directive{
		Comment:   c,
		Namespace: namespace,
		Name:      name,
		Attrs:     attrs,
		RawAttrs:  m[3],
	}
}

// RegionKind distinguishes conditional regions from inline defines.
type RegionKind int

const (
	IfBlock RegionKind = iota
	InlineDefine
)

// Region is a contiguous span delimited by a pair of markers, or a single
// inline-define marker.
type Region struct {
	Kind   RegionKind
	Open   *Directive
	Close  *Directive // nil for InlineDefine
	Parent *Region    // enclosing region, or nil
	Depth  int

	// OuterLo/OuterHi span the region including its delimiters;
	// InnerLo/InnerHi span the content between them. For InlineDefine all
	// four cover the marker comment itself.
	OuterLo, OuterHi int
	InnerLo, InnerHi int
}

// Condition returns the raw condition payload of an IfBlock region.
func (r *Region) Condition() (string, bool) {
	v, ok := r.Open.Attrs["condition"]
	return v, ok
}

// UnbalancedError reports a mismatched or unterminated marker.
type UnbalancedError struct {
	Directive *Directive
	Message   string
}

func (e *UnbalancedError) Error() string {
	pos := e.Directive.Comment.Pos()
	return fmt.Sprintf("%s (%d:%d)", e.Message, pos.LineNumber(), pos.ColumnNumber())
}

// Pair runs the region-pairing pass: a single left-to-right traversal of the
// directives maintaining a stack of open if markers. A mismatched endif or an
// unterminated if is a fatal error identifying the offending comment.
// Regions are returned in source order of their opening markers.
func Pair(directives []*Directive) ([]*Region, error) {
	var regions []*Region
	var stack []*Region
	for _, d := range directives {
		switch d.Name {
		case KindIf:
			region := &Region{
				Kind:    IfBlock,
				Open:    d,
				OuterLo: d.Comment.Pos().Offset,
				InnerLo: d.Comment.End().Offset,
				Depth:   len(stack),
			}
			if len(stack) > 0 {
				region.Parent = stack[len(stack)-1]
			}
			regions = append(regions, region)
			stack = append(stack, region)
		case KindEndif:
			if len(stack) == 0 {
				return nil, &UnbalancedError{
					Directive: d,
					Message:   "unbalanced macro markers: endif without a matching if",
				}
			}
			region := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			region.Close = d
			region.InnerHi = d.Comment.Pos().Offset
			region.OuterHi = d.Comment.End().Offset
		case KindDefineInline:
			region := &Region{
				Kind:    InlineDefine,
				Open:    d,
				OuterLo: d.Comment.Pos().Offset,
				OuterHi: d.Comment.End().Offset,
				InnerLo: d.Comment.Pos().Offset,
				InnerHi: d.Comment.End().Offset,
				Depth:   len(stack),
			}
			if len(stack) > 0 {
				region.Parent = stack[len(stack)-1]
			}
			regions = append(regions, region)
		}
	}
	if len(stack) > 0 {
		open := stack[len(stack)-1]
		return nil, &UnbalancedError{
			Directive: open.Open,
			Message:   "unbalanced macro markers: if without a matching endif",
		}
	}
	return regions, nil
}
