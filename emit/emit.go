// Package emit produces output text by concatenating original source slices
// between edited spans, splicing in replacement strings for edited spans.
// Text outside any edit is emitted verbatim, comments included.
package emit

import (
	"fmt"
	"sort"
	"strings"
)

// Edit replaces the byte span [Lo, Hi) of the source with Text.
// An empty Text deletes the span.
type Edit struct {
	Lo, Hi int
	Text   string
}

// OverlapError indicates two edits cover overlapping spans, which would make
// the output ill-defined.
type OverlapError struct {
	A, B Edit
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("overlapping edits: [%d,%d) and [%d,%d)", e.A.Lo, e.A.Hi, e.B.Lo, e.B.Hi)
}

// InvalidJoinError indicates a splice would merge two tokens into one and no
// separator could be inserted.
type InvalidJoinError struct {
	Offset int
}

func (e *InvalidJoinError) Error() string {
	return fmt.Sprintf("splice produces an invalid token join at offset %d", e.Offset)
}

func isIdentChar(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// Splice applies the edits to the source. Edits must not overlap; adjacent
// edits are allowed. When an edit would butt an identifier character up
// against another identifier character, a single space is inserted so the
// output remains a valid token sequence.
func Splice(src string, edits []Edit) (string, error) {
	if len(edits) == 0 {
		return src, nil
	}
	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Lo != sorted[j].Lo {
			return sorted[i].Lo < sorted[j].Lo
		}
		return sorted[i].Hi < sorted[j].Hi
	})
	// Overlapping deletions merge into their union; an overlap involving a
	// replacement would make the output ill-defined and is fatal.
	merged := sorted[:0]
	for _, e := range sorted {
		if len(merged) > 0 {
			prev := &merged[len(merged)-1]
			if e.Lo < prev.Hi {
				if prev.Text == "" && e.Text == "" {
					if e.Hi > prev.Hi {
						prev.Hi = e.Hi
					}
					continue
				}
				return "", &OverlapError{A: *prev, B: e}
			}
		}
		merged = append(merged, e)
	}
	sorted = merged

	var out strings.Builder
	out.Grow(len(src))
	cursor := 0
	for _, e := range sorted {
		if e.Lo < 0 || e.Hi > len(src) || e.Lo > e.Hi {
			return "", fmt.Errorf("edit span [%d,%d) out of range", e.Lo, e.Hi)
		}
		out.WriteString(src[cursor:e.Lo])
		if e.Text != "" {
			if joinNeedsSpace(tail(out.String()), e.Text[0]) {
				out.WriteByte(' ')
			}
			out.WriteString(e.Text)
		}
		if e.Hi < len(src) {
			if joinNeedsSpace(tail(out.String()), src[e.Hi]) {
				out.WriteByte(' ')
			}
		}
		cursor = e.Hi
	}
	out.WriteString(src[cursor:])
	return out.String(), nil
}

func tail(s string) byte {
	if s == "" {
		return 0
	}
	return s[len(s)-1]
}

func joinNeedsSpace(left, right byte) bool {
	return isIdentChar(left) && isIdentChar(right)
}

// ExpandWholeLines widens a removal span to consume entire lines when the
// removed region occupies them fully: if only whitespace precedes lo on its
// line and only whitespace (then a newline) follows hi, the span grows to
// cover the leading whitespace, the trailing whitespace, and the trailing
// newline, collapsing the removal to a single newline overall.
func ExpandWholeLines(src string, lo, hi int) (int, int) {
	lineStart := lo
	for lineStart > 0 && src[lineStart-1] != '\n' {
		lineStart--
	}
	if strings.TrimSpace(src[lineStart:lo]) != "" {
		return lo, hi
	}
	lineEnd := hi
	for lineEnd < len(src) && src[lineEnd] != '\n' && src[lineEnd] != '\r' {
		lineEnd++
	}
	if strings.TrimSpace(src[hi:lineEnd]) != "" {
		return lo, hi
	}
	// Consume the trailing line terminator so the blank line disappears.
	if lineEnd < len(src) && src[lineEnd] == '\r' {
		lineEnd++
	}
	if lineEnd < len(src) && src[lineEnd] == '\n' {
		lineEnd++
	}
	return lineStart, lineEnd
}

// ExtendListItem widens a removal span over the comma that separates the
// item from its neighbors in a comma-separated list: the following comma
// when one exists, otherwise the preceding one.
func ExtendListItem(src string, lo, hi int) (int, int) {
	i := hi
	for i < len(src) && (src[i] == ' ' || src[i] == '\t' || src[i] == '\n' || src[i] == '\r') {
		i++
	}
	if i < len(src) && src[i] == ',' {
		return lo, i + 1
	}
	j := lo
	for j > 0 && (src[j-1] == ' ' || src[j-1] == '\t' || src[j-1] == '\n' || src[j-1] == '\r') {
		j--
	}
	if j > 0 && src[j-1] == ',' {
		return j - 1, hi
	}
	return lo, hi
}

// TrimSurroundingSpace widens a removal span over horizontal whitespace on
// one side when the other side also has whitespace (or a boundary), so that
// deleting an inline region leaves a single separator instead of two.
func TrimSurroundingSpace(src string, lo, hi int) (int, int) {
	leftSpace := lo == 0 || src[lo-1] == ' ' || src[lo-1] == '\t' || src[lo-1] == '\n'
	for leftSpace && hi < len(src) && (src[hi] == ' ' || src[hi] == '\t') {
		hi++
	}
	return lo, hi
}
