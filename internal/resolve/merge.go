package resolve

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/klauern/agenttransfer/internal/diff"
	"github.com/klauern/agenttransfer/internal/parser"
)

// Choice is a per-block or per-section merge decision.
type Choice string

const (
	ChoiceKeep    Choice = "k"
	ChoiceReplace Choice = "r"
	ChoiceBoth    Choice = "b"
	ChoiceSkip    Choice = "s"
	ChoiceLines   Choice = "l"
)

// Separators inserted when both versions are kept.
const (
	IncomingSeparator = "# --- incoming ---"
	SectionSeparator  = "\n\n# --- Merged from incoming ---\n"
)

// MergePreviewLength is the number of characters of a merged text shown
// before asking for confirmation.
const MergePreviewLength = 500

var blockOptions = []Option{
	{Key: string(ChoiceKeep), Label: "Keep existing"},
	{Key: string(ChoiceReplace), Label: "Replace with incoming"},
	{Key: string(ChoiceBoth), Label: "Keep both"},
	{Key: string(ChoiceSkip), Label: "Skip (keep existing)"},
}

var sectionOptions = []Option{
	{Key: string(ChoiceKeep), Label: "Keep existing"},
	{Key: string(ChoiceReplace), Label: "Replace with incoming"},
	{Key: string(ChoiceBoth), Label: "Keep both"},
	{Key: string(ChoiceLines), Label: "Line-by-line merge"},
}

// ApplyBlocks applies one choice per block to existing. Blocks are applied
// in ascending document order and a running offset shifts later blocks by
// the line count change of earlier ones. A missing choice keeps the block.
// The line terminator and trailing newline of existing are preserved.
func ApplyBlocks(existing string, blocks []diff.Block, choices []Choice) string {
	type step struct {
		block  diff.Block
		choice Choice
	}
	steps := make([]step, len(blocks))
	for i, b := range blocks {
		steps[i] = step{block: b, choice: ChoiceKeep}
		if i < len(choices) {
			steps[i].choice = choices[i]
		}
	}
	sort.SliceStable(steps, func(i, j int) bool {
		return steps[i].block.Start < steps[j].block.Start
	})

	lines := diff.SplitLines(existing)
	offset := 0
	for _, s := range steps {
		var replacement []string
		switch s.choice {
		case ChoiceReplace:
			replacement = s.block.Incoming
		case ChoiceBoth:
			replacement = make([]string, 0, len(s.block.Existing)+1+len(s.block.Incoming))
			replacement = append(replacement, s.block.Existing...)
			replacement = append(replacement, IncomingSeparator)
			replacement = append(replacement, s.block.Incoming...)
		default:
			continue
		}

		start := s.block.Start + offset
		end := s.block.End + offset
		merged := make([]string, 0, len(lines)-(end-start)+len(replacement))
		merged = append(merged, lines[:start]...)
		merged = append(merged, replacement...)
		merged = append(merged, lines[end:]...)
		lines = merged
		offset += len(replacement) - (s.block.End - s.block.Start)
	}

	eol := diff.LineEnding(existing)
	out := strings.Join(lines, eol)
	if len(lines) > 0 && (existing == "" || strings.HasSuffix(existing, "\n")) {
		out += eol
	}
	return out
}

// mergeLines walks the user through every differing block.
func (r *FileResolver) mergeLines(ctx context.Context, existing, incoming string) (string, error) {
	blocks := diff.Blocks(existing, incoming, diff.DefaultContext)
	if len(blocks) == 0 {
		r.reporter().Dimmed("No differences to merge")
		return existing, nil
	}

	choices := make([]Choice, len(blocks))
	for i, b := range blocks {
		r.reporter().Block(len(blocks), b)
		key, err := r.Prompter.Choose(ctx, fmt.Sprintf("Block %d of %d", b.Number, len(blocks)), blockOptions, string(ChoiceKeep))
		if err != nil {
			return "", err
		}
		choices[i] = Choice(key)
	}
	return ApplyBlocks(existing, blocks, choices), nil
}

// mergeSections resolves frontmatter and body independently. ok is false
// when either text lacks a non-empty frontmatter block.
func (r *FileResolver) mergeSections(ctx context.Context, existing, incoming string) (merged string, ok bool, err error) {
	exFM, exBody, exOK := parser.Sections(existing)
	inFM, inBody, inOK := parser.Sections(incoming)
	if !exOK || !inOK || strings.TrimSpace(exFM) == "" || strings.TrimSpace(inFM) == "" {
		return "", false, nil
	}

	fm, err := r.mergeSection(ctx, "frontmatter", exFM, inFM)
	if err != nil {
		return "", true, err
	}
	body, err := r.mergeSection(ctx, "body", exBody, inBody)
	if err != nil {
		return "", true, err
	}
	return parser.JoinSections(fm, body, diff.LineEnding(existing)), true, nil
}

func (r *FileResolver) mergeSection(ctx context.Context, name, existing, incoming string) (string, error) {
	if existing == incoming {
		return existing, nil
	}

	r.reporter().Unified("Section: "+name, diff.Unified(existing, incoming, "existing "+name, "incoming "+name))
	key, err := r.Prompter.Choose(ctx, "Resolve "+name, sectionOptions, string(ChoiceKeep))
	if err != nil {
		return "", err
	}

	switch Choice(key) {
	case ChoiceReplace:
		return incoming, nil
	case ChoiceBoth:
		return existing + SectionSeparator + incoming, nil
	case ChoiceLines:
		return r.mergeLines(ctx, existing, incoming)
	default:
		return existing, nil
	}
}

// merge produces a merged text, using the section-aware merge when both
// texts carry frontmatter and the line-level merge otherwise.
func (r *FileResolver) merge(ctx context.Context, existing, incoming string) (string, error) {
	merged, ok, err := r.mergeSections(ctx, existing, incoming)
	if err != nil || ok {
		return merged, err
	}
	return r.mergeLines(ctx, existing, incoming)
}

func previewText(s string) string {
	r := []rune(s)
	if len(r) <= MergePreviewLength {
		return s
	}
	return string(r[:MergePreviewLength]) + "..."
}
