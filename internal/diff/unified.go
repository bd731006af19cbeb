package diff

import (
	"fmt"
	"strings"
)

// UnifiedContext is the number of context lines in unified output.
const UnifiedContext = 3

// Hunk is a group of script lines rendered under one @@ header.
type Hunk struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
	Lines    []Line
}

// Header returns the @@ line of the hunk.
func (h Hunk) Header() string {
	return fmt.Sprintf("@@ -%s +%s @@", hunkRange(h.OldStart, h.OldCount), hunkRange(h.NewStart, h.NewCount))
}

func hunkRange(start, count int) string {
	if count == 0 {
		return fmt.Sprintf("%d,0", start)
	}
	if count == 1 {
		return fmt.Sprintf("%d", start)
	}
	return fmt.Sprintf("%d,%d", start, count)
}

// Hunks groups an edit script into hunks with the given context. Changes
// separated by at most 2*context equal lines share a hunk.
func Hunks(script []Line, context int) []Hunk {
	var changes []int
	for i, l := range script {
		if l.Op != OpEqual {
			changes = append(changes, i)
		}
	}
	if len(changes) == 0 {
		return nil
	}

	var hunks []Hunk
	start := max(0, changes[0]-context)
	end := min(len(script), changes[0]+context+1)
	for _, c := range changes[1:] {
		if c-context <= end {
			end = min(len(script), c+context+1)
			continue
		}
		hunks = append(hunks, newHunk(script[start:end]))
		start = max(0, c-context)
		end = min(len(script), c+context+1)
	}
	return append(hunks, newHunk(script[start:end]))
}

func newHunk(lines []Line) Hunk {
	h := Hunk{
		OldStart: lines[0].OldIndex + 1,
		NewStart: lines[0].NewIndex + 1,
		Lines:    lines,
	}
	for _, l := range lines {
		if l.Op != OpInsert {
			h.OldCount++
		}
		if l.Op != OpDelete {
			h.NewCount++
		}
	}
	// Empty ranges point at the line before the hunk.
	if h.OldCount == 0 {
		h.OldStart--
	}
	if h.NewCount == 0 {
		h.NewStart--
	}
	return h
}

// Unified renders a unified diff of existing against incoming. It returns
// the empty string when the texts are identical.
func Unified(existing, incoming, fromName, toName string) string {
	script := Script(SplitLines(existing), SplitLines(incoming))
	hunks := Hunks(script, UnifiedContext)
	if len(hunks) == 0 {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- %s\n+++ %s\n", fromName, toName)
	for _, h := range hunks {
		sb.WriteString(h.Header())
		sb.WriteByte('\n')
		for _, l := range h.Lines {
			sb.WriteString(l.String())
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
