package resolve

import (
	"fmt"

	"github.com/klauern/agenttransfer/internal/diff"
)

// FileStatus marks a row of a directory file table.
type FileStatus string

const (
	FileAdded    FileStatus = "+"
	FileModified FileStatus = "~"
	FileRemoved  FileStatus = "-"
)

// FileRow is one entry of a directory file table.
type FileRow struct {
	Path   string
	Status FileStatus
}

// Reporter receives everything the resolver wants shown to the user.
type Reporter interface {
	Info(msg string)
	Success(msg string)
	Warn(msg string)
	Dimmed(msg string)

	// Unified shows a unified diff.
	Unified(title, text string)

	// SideBySide shows line-aligned rows of two texts.
	SideBySide(title string, rows []diff.Row)

	// Block shows one merge block with its context.
	Block(total int, block diff.Block)

	// Preview shows the start of a merged text before it is confirmed.
	Preview(text string)

	// FileTable lists added, modified and removed files of a directory item.
	FileTable(title string, rows []FileRow)
}

// NopReporter discards all output.
type NopReporter struct{}

func (NopReporter) Info(string)                   {}
func (NopReporter) Success(string)                {}
func (NopReporter) Warn(string)                   {}
func (NopReporter) Dimmed(string)                 {}
func (NopReporter) Unified(string, string)        {}
func (NopReporter) SideBySide(string, []diff.Row) {}
func (NopReporter) Block(int, diff.Block)         {}
func (NopReporter) Preview(string)                {}
func (NopReporter) FileTable(string, []FileRow)   {}

// Recorder keeps every message as a "kind: text" line. Used by tests.
type Recorder struct {
	Lines []string
}

func (r *Recorder) add(kind, text string) {
	r.Lines = append(r.Lines, kind+": "+text)
}

func (r *Recorder) Info(msg string)    { r.add("info", msg) }
func (r *Recorder) Success(msg string) { r.add("success", msg) }
func (r *Recorder) Warn(msg string)    { r.add("warn", msg) }
func (r *Recorder) Dimmed(msg string)  { r.add("dim", msg) }

func (r *Recorder) Unified(title, text string) { r.add("unified", title) }

func (r *Recorder) SideBySide(title string, rows []diff.Row) {
	r.add("side-by-side", fmt.Sprintf("%s (%d rows)", title, len(rows)))
}

func (r *Recorder) Block(total int, b diff.Block) {
	r.add("block", fmt.Sprintf("%d/%d", b.Number, total))
}

func (r *Recorder) Preview(text string) { r.add("preview", text) }

func (r *Recorder) FileTable(title string, rows []FileRow) {
	r.add("table", fmt.Sprintf("%s (%d files)", title, len(rows)))
}
