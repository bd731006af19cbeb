package diff

import (
	"github.com/sergi/go-diff/diffmatchpatch"
)

// ColumnWidth is the number of characters shown per side-by-side cell
// before truncation.
const ColumnWidth = 47

// Row is one line-aligned row of a side-by-side comparison.
type Row struct {
	Number  int
	Left    string
	Right   string
	Changed bool
}

// SideBySide pairs the lines of existing and incoming by position. The
// shorter text is padded with empty cells.
func SideBySide(existing, incoming string) []Row {
	ex, in := SplitLines(existing), SplitLines(incoming)
	rows := make([]Row, 0, max(len(ex), len(in)))
	for i := range max(len(ex), len(in)) {
		var left, right string
		if i < len(ex) {
			left = ex[i]
		}
		if i < len(in) {
			right = in[i]
		}
		rows = append(rows, Row{Number: i + 1, Left: left, Right: right, Changed: left != right})
	}
	return rows
}

// Truncate shortens s to width runes, marking the cut with "...".
func Truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width]) + "..."
}

// Segment is a run of characters within a changed line.
type Segment struct {
	Op   Op
	Text string
}

// Inline computes character-level segments between two versions of a line.
// Equal runs carry OpEqual, removed runs OpDelete and added runs OpInsert.
func Inline(existing, incoming string) []Segment {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(existing, incoming, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	segments := make([]Segment, 0, len(diffs))
	for _, d := range diffs {
		var op Op
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			op = OpInsert
		case diffmatchpatch.DiffDelete:
			op = OpDelete
		default:
			op = OpEqual
		}
		segments = append(segments, Segment{Op: op, Text: d.Text})
	}
	return segments
}
