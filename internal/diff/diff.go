// Package diff computes line-level differences between two texts.
//
// The edit script is derived from a longest-common-subsequence table built
// only for the lines between the common prefix and suffix. That region is
// capped at MaxTableCells entries.
package diff

import (
	"fmt"
	"strings"
)

// Op marks a line in an edit script.
type Op string

const (
	// OpEqual is a line present in both texts.
	OpEqual Op = " "

	// OpInsert is a line present only in the incoming text.
	OpInsert Op = "+"

	// OpDelete is a line present only in the existing text.
	OpDelete Op = "-"
)

// Line is one step of an edit script. OldIndex and NewIndex are zero-based
// positions in the existing and incoming line slices; the index of the side
// the line does not belong to holds the insertion point.
type Line struct {
	Op       Op
	Text     string
	OldIndex int
	NewIndex int
}

// String returns the line with its diff prefix.
func (l Line) String() string {
	return string(l.Op) + l.Text
}

// SplitLines splits s into lines without their terminators. A trailing
// newline does not produce an empty final line.
func SplitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// LineEnding returns "\r\n" when s uses CRLF terminators and "\n" otherwise.
// SplitLines drops the terminators, so callers rejoining its output use this
// to write the text back in its original form.
func LineEnding(s string) string {
	if i := strings.IndexByte(s, '\n'); i > 0 && s[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}

// SplitLinesKeepEnds splits s into lines that keep their "\n" terminator,
// so a missing final newline counts as a difference.
func SplitLinesKeepEnds(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// MaxTableCells bounds the LCS table built for the region between the
// common prefix and suffix of two texts. A larger region is reported as a
// deletion of all its old lines followed by an insertion of all its new ones.
const MaxTableCells = 4 << 20

// Script returns the edit script turning a into b. Within a changed region
// deletions precede insertions.
func Script(a, b []string) []Line {
	m, n := len(a), len(b)
	pre := 0
	for pre < m && pre < n && a[pre] == b[pre] {
		pre++
	}
	suf := 0
	for suf < m-pre && suf < n-pre && a[m-1-suf] == b[n-1-suf] {
		suf++
	}

	script := make([]Line, 0, m+n-pre-suf)
	for i := 0; i < pre; i++ {
		script = append(script, Line{Op: OpEqual, Text: a[i], OldIndex: i, NewIndex: i})
	}
	script = appendMiddle(script, a[pre:m-suf], b[pre:n-suf], pre, pre)
	for k := suf; k > 0; k-- {
		script = append(script, Line{Op: OpEqual, Text: a[m-k], OldIndex: m - k, NewIndex: n - k})
	}
	return script
}

// appendMiddle appends the script for a and b, which start at offsets oi
// and ni of the full texts.
func appendMiddle(script []Line, a, b []string, oi, ni int) []Line {
	m, n := len(a), len(b)
	if m > 0 && n > MaxTableCells/m {
		for i := range a {
			script = append(script, Line{Op: OpDelete, Text: a[i], OldIndex: oi + i, NewIndex: ni})
		}
		for j := range b {
			script = append(script, Line{Op: OpInsert, Text: b[j], OldIndex: oi + m, NewIndex: ni + j})
		}
		return script
	}

	// suffix[i][j] is the LCS length of a[i:] and b[j:].
	suffix := make([][]int, m+1)
	for i := range suffix {
		suffix[i] = make([]int, n+1)
	}
	for i := m - 1; i >= 0; i-- {
		for j := n - 1; j >= 0; j-- {
			if a[i] == b[j] {
				suffix[i][j] = suffix[i+1][j+1] + 1
			} else {
				suffix[i][j] = max(suffix[i+1][j], suffix[i][j+1])
			}
		}
	}

	i, j := 0, 0
	for i < m || j < n {
		switch {
		case i < m && j < n && a[i] == b[j]:
			script = append(script, Line{Op: OpEqual, Text: a[i], OldIndex: oi + i, NewIndex: ni + j})
			i++
			j++
		case j >= n || (i < m && suffix[i+1][j] >= suffix[i][j+1]):
			script = append(script, Line{Op: OpDelete, Text: a[i], OldIndex: oi + i, NewIndex: ni + j})
			i++
		default:
			script = append(script, Line{Op: OpInsert, Text: b[j], OldIndex: oi + i, NewIndex: ni + j})
			j++
		}
	}
	return script
}

// Stats counts inserted and deleted lines of an edit script.
type Stats struct {
	Added   int
	Removed int
}

// Modified is the number of lines treated as changed in place: the overlap
// between insertions and deletions.
func (s Stats) Modified() int {
	return min(s.Added, s.Removed)
}

// PureAdded is the number of insertions not paired with a deletion.
func (s Stats) PureAdded() int {
	return s.Added - s.Modified()
}

// PureRemoved is the number of deletions not paired with an insertion.
func (s Stats) PureRemoved() int {
	return s.Removed - s.Modified()
}

// IsZero reports whether the texts had no differences.
func (s Stats) IsZero() bool {
	return s.Added == 0 && s.Removed == 0
}

// String renders "+P -Q ~R", omitting zero terms, or "no changes".
func (s Stats) String() string {
	return FormatCounts(s.PureAdded(), s.PureRemoved(), s.Modified())
}

// FormatCounts renders added, removed and modified counts in summary form.
func FormatCounts(added, removed, modified int) string {
	var parts []string
	if added > 0 {
		parts = append(parts, fmt.Sprintf("+%d", added))
	}
	if removed > 0 {
		parts = append(parts, fmt.Sprintf("-%d", removed))
	}
	if modified > 0 {
		parts = append(parts, fmt.Sprintf("~%d", modified))
	}
	if len(parts) == 0 {
		return "no changes"
	}
	return strings.Join(parts, " ")
}

// Count returns the insertion and deletion totals of the edit script
// turning existing into incoming, comparing lines with their terminators.
func Count(existing, incoming string) Stats {
	var st Stats
	for _, l := range Script(SplitLinesKeepEnds(existing), SplitLinesKeepEnds(incoming)) {
		switch l.Op {
		case OpInsert:
			st.Added++
		case OpDelete:
			st.Removed++
		}
	}
	return st
}

// Summary returns the "+P -Q ~R" summary of changes from existing to incoming.
func Summary(existing, incoming string) string {
	return Count(existing, incoming).String()
}
