package ui

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/klauern/agenttransfer/internal/diff"
	"github.com/klauern/agenttransfer/internal/resolve"
)

// Console writes resolver and command output to a terminal stream.
type Console struct {
	out io.Writer
}

var _ resolve.Reporter = (*Console)(nil)

// NewConsole creates a console writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{out: w}
}

// Writer returns the underlying stream.
func (c *Console) Writer() io.Writer {
	return c.out
}

// Println writes a plain line.
func (c *Console) Println(a ...any) {
	_, _ = fmt.Fprintln(c.out, a...)
}

// Printf writes formatted text.
func (c *Console) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(c.out, format, a...)
}

// Info implements resolve.Reporter.
func (c *Console) Info(msg string) {
	c.Println(Info(msg))
}

// Success implements resolve.Reporter.
func (c *Console) Success(msg string) {
	c.Println(StatusSuccess(msg))
}

// Warn implements resolve.Reporter.
func (c *Console) Warn(msg string) {
	c.Println(StatusWarning(msg))
}

// Dimmed implements resolve.Reporter.
func (c *Console) Dimmed(msg string) {
	c.Println(Dim(msg))
}

// Heading writes a bold section title preceded by a blank line.
func (c *Console) Heading(title string) {
	c.Println()
	c.Println(Bold(title))
}

// Unified implements resolve.Reporter.
func (c *Console) Unified(title, text string) {
	c.Heading(title)
	if text == "" {
		c.Dimmed("No differences")
		return
	}
	for _, line := range strings.Split(strings.TrimSuffix(text, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			c.Println(Bold(line))
		case strings.HasPrefix(line, "@@"):
			c.Println(Info(line))
		case strings.HasPrefix(line, "+"):
			c.Println(Success(line))
		case strings.HasPrefix(line, "-"):
			c.Println(Error(line))
		default:
			c.Println(line)
		}
	}
}

// SideBySide implements resolve.Reporter. Changed rows highlight the
// characters that differ.
func (c *Console) SideBySide(title string, rows []diff.Row) {
	c.Heading(title)
	cell := lipgloss.NewStyle().Width(diff.ColumnWidth + 4)
	c.Println(Header(fmt.Sprintf("%4s  %s %s", "", cell.Render("Existing"), "Incoming")))
	for _, r := range rows {
		left := diff.Truncate(r.Left, diff.ColumnWidth)
		right := diff.Truncate(r.Right, diff.ColumnWidth)
		marker := " "
		if r.Changed {
			marker = Warning("│")
			left, right = highlight(left, right)
		}
		c.Printf("%4d %s %s%s\n", r.Number, marker, cell.Render(left), right)
	}
}

// highlight colors removed characters on the left and added characters on
// the right.
func highlight(left, right string) (string, string) {
	var l, r strings.Builder
	for _, seg := range diff.Inline(left, right) {
		switch seg.Op {
		case diff.OpDelete:
			l.WriteString(Error(seg.Text))
		case diff.OpInsert:
			r.WriteString(Success(seg.Text))
		default:
			l.WriteString(seg.Text)
			r.WriteString(seg.Text)
		}
	}
	return l.String(), r.String()
}

// Block implements resolve.Reporter.
func (c *Console) Block(total int, b diff.Block) {
	c.Heading(fmt.Sprintf("Block %d of %d (lines %d-%d)", b.Number, total, b.StartLine(), b.EndLine()))
	for _, l := range b.Before {
		c.Println(Dim("  " + l))
	}
	for _, l := range b.Existing {
		c.Println(Error("- " + l))
	}
	for _, l := range b.Incoming {
		c.Println(Success("+ " + l))
	}
	for _, l := range b.After {
		c.Println(Dim("  " + l))
	}
}

// Preview implements resolve.Reporter.
func (c *Console) Preview(text string) {
	c.Heading("Merged result preview")
	rule := Dim(strings.Repeat("─", 50))
	c.Println(rule)
	c.Println(strings.TrimSuffix(text, "\n"))
	c.Println(rule)
}

// FileTable implements resolve.Reporter.
func (c *Console) FileTable(title string, rows []resolve.FileRow) {
	if len(rows) == 0 {
		c.Println(Success("All files are identical"))
		return
	}
	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		ext := path.Ext(r.Path)
		if ext == "" {
			ext = "no ext"
		}
		data = append(data, []string{string(r.Status), r.Path, ext})
	}
	c.Heading(title)
	c.Println(c.Table([]string{"Status", "File Path", "Type"}, data, func(row []string) lipgloss.Style {
		switch resolve.FileStatus(row[0]) {
		case resolve.FileAdded:
			return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
		case resolve.FileModified:
			return lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
		default:
			return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
		}
	}))
}

// Table renders rows under headers with a rounded border. style, when not
// nil, picks the style of each data row. Colors are dropped when color
// output is disabled.
func (c *Console) Table(headers []string, rows [][]string, style func(row []string) lipgloss.Style) string {
	headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				if IsColorEnabled() {
					return headerStyle.Foreground(lipgloss.Color("5"))
				}
				return headerStyle
			}
			if style == nil || !IsColorEnabled() || row < 0 || row >= len(rows) {
				return cellStyle
			}
			return style(rows[row]).Padding(0, 1)
		})
	return t.String()
}
