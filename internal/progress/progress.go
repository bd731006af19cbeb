// Package progress shows progress bars for exports and bulk imports.
package progress

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/klauern/agenttransfer/internal/logging"
	"github.com/klauern/agenttransfer/internal/ui"
)

// Bar is a progress bar that degrades to debug log lines when it cannot
// be drawn.
type Bar struct {
	bar  *progressbar.ProgressBar
	desc string
	max  int64
	done int64
}

// Options configures a progress bar.
type Options struct {
	// Max is the number of steps.
	Max int64
	// Description is shown before the bar.
	Description string
	// Writer is the output destination. Defaults to os.Stderr.
	Writer io.Writer
	// Quiet disables drawing regardless of the terminal.
	Quiet bool
}

// New creates a progress bar. It is drawn only when Writer is a terminal,
// colors are enabled, and debug logging is off.
func New(opts Options) *Bar {
	if opts.Writer == nil {
		opts.Writer = os.Stderr
	}
	b := &Bar{desc: opts.Description, max: opts.Max}

	if opts.Quiet || opts.Max <= 0 || !enabled(opts.Writer) {
		logging.Debug(opts.Description+" started", logging.Count(int(opts.Max)))
		return b
	}

	w := opts.Writer
	b.bar = progressbar.NewOptions64(
		opts.Max,
		progressbar.OptionSetDescription(opts.Description),
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(20),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprint(w, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionEnableColorCodes(ui.IsColorEnabled()),
	)
	return b
}

// Drawn reports whether the bar renders to the terminal.
func (b *Bar) Drawn() bool {
	return b.bar != nil
}

// Add advances the bar by n steps.
func (b *Bar) Add(n int) {
	b.done += int64(n)
	if b.bar == nil {
		return
	}
	_ = b.bar.Add(n)
}

// Describe replaces the description, typically with the current item.
func (b *Bar) Describe(desc string) {
	b.desc = desc
	if b.bar != nil {
		b.bar.Describe(desc)
	}
}

// Finish completes the bar.
func (b *Bar) Finish() {
	if b.bar == nil {
		logging.Debug(b.desc+" completed", logging.Count(int(b.done)))
		return
	}
	_ = b.bar.Finish()
}

// Done returns the number of completed steps.
func (b *Bar) Done() int64 {
	return b.done
}

func enabled(w io.Writer) bool {
	if !ui.IsColorEnabled() {
		return false
	}
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) { // #nosec G115 -- file descriptors fit in int
		return false
	}
	return !logging.Default().Enabled(context.Background(), logging.LevelDebug)
}
