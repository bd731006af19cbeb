package tui

import (
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

const ellipsis = "..."

// truncateText shortens text to at most width terminal cells, ending with an
// ellipsis when there is room for one.
func truncateText(text string, width int) string {
	switch {
	case width <= 0:
		return ""
	case width <= runewidth.StringWidth(ellipsis):
		return runewidth.Truncate(text, width, "")
	default:
		return runewidth.Truncate(text, width, ellipsis)
	}
}

// wrapLines breaks text into lines of at most width cells at word
// boundaries. Words wider than width are split.
func wrapLines(text string, width int) []string {
	words := strings.Fields(text)
	if width <= 0 {
		return []string{strings.Join(words, " ")}
	}

	var lines []string
	var cur string
	for _, w := range words {
		for runewidth.StringWidth(w) > width {
			if cur != "" {
				lines = append(lines, cur)
				cur = ""
			}
			head := runewidth.Truncate(w, width, "")
			if head == "" {
				_, size := utf8.DecodeRuneInString(w)
				head = w[:size]
			}
			lines = append(lines, head)
			w = w[len(head):]
		}
		switch {
		case w == "":
		case cur == "":
			cur = w
		case runewidth.StringWidth(cur)+1+runewidth.StringWidth(w) > width:
			lines = append(lines, cur)
			cur = w
		default:
			cur += " " + w
		}
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}

func wrapText(text string, width int) string {
	return strings.Join(wrapLines(text, width), "\n")
}

// formatDescription renders a labelled description wrapped to width with
// continuation lines aligned under the first word.
func formatDescription(text string, width int) string {
	const label = "Description: "
	lines := wrapLines(text, width-len(label))
	if width <= len(label) {
		lines = []string{strings.Join(strings.Fields(text), " ")}
	}
	return label + strings.Join(lines, "\n"+strings.Repeat(" ", len(label)))
}
