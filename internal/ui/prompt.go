package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauern/agenttransfer/internal/resolve"
)

// LinePrompter asks questions on a line-oriented stream. It is used when
// input is not a terminal, for example when answers are piped in.
type LinePrompter struct {
	reader *bufio.Reader
	out    io.Writer
}

var _ resolve.Prompter = (*LinePrompter)(nil)

// NewLinePrompter creates a prompter reading answers from in and writing
// questions to out.
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{reader: bufio.NewReader(in), out: out}
}

// Choose implements resolve.Prompter. Unknown answers are rejected and the
// question is asked again.
func (p *LinePrompter) Choose(ctx context.Context, question string, options []resolve.Option, def string) (string, error) {
	keys := make([]string, 0, len(options))
	for _, o := range options {
		_, _ = fmt.Fprintf(p.out, "  [%s] %s\n", Bold(o.Key), o.Label)
		keys = append(keys, o.Key)
	}
	for {
		_, _ = fmt.Fprintf(p.out, "%s [%s] (%s): ", question, strings.Join(keys, "/"), def)
		answer, err := p.readLine(ctx)
		if err != nil {
			return "", err
		}
		if answer == "" {
			return def, nil
		}
		for _, o := range options {
			if strings.EqualFold(o.Key, answer) {
				return o.Key, nil
			}
		}
		_, _ = fmt.Fprintln(p.out, Warning(fmt.Sprintf("Invalid choice %q", answer)))
	}
}

// Confirm implements resolve.Prompter.
func (p *LinePrompter) Confirm(ctx context.Context, question string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	for {
		_, _ = fmt.Fprintf(p.out, "%s [%s]: ", question, hint)
		answer, err := p.readLine(ctx)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		_, _ = fmt.Fprintln(p.out, Warning("Please answer y or n"))
	}
}

// readLine returns the next trimmed line. A closed stream or a cancelled
// context aborts the prompt.
func (p *LinePrompter) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", resolve.ErrAborted, err)
	}

	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := p.reader.ReadString('\n')
		ch <- result{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		_, _ = fmt.Fprintln(p.out)
		return "", fmt.Errorf("%w: %w", resolve.ErrAborted, ctx.Err())
	case r := <-ch:
		if r.err != nil && !(errors.Is(r.err, io.EOF) && r.line != "") {
			if errors.Is(r.err, io.EOF) {
				_, _ = fmt.Fprintln(p.out)
				return "", resolve.ErrAborted
			}
			return "", fmt.Errorf("failed to read input: %w", r.err)
		}
		return strings.TrimSpace(r.line), nil
	}
}
