package ui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/klauern/agenttransfer/internal/resolve"
)

var testOptions = []resolve.Option{
	{Key: "k", Label: "Keep existing"},
	{Key: "r", Label: "Replace with incoming"},
}

func TestLinePrompterChoose(t *testing.T) {
	DisableColors()
	defer EnableColors()

	tests := map[string]struct {
		input   string
		want    string
		wantErr error
		output  string
	}{
		"explicit key":      {input: "r\n", want: "r"},
		"upper case key":    {input: "R\n", want: "r"},
		"empty is default":  {input: "\n", want: "k"},
		"no trailing line":  {input: "r", want: "r"},
		"invalid then key":  {input: "x\nr\n", want: "r", output: `Invalid choice "x"`},
		"closed input":      {input: "", wantErr: resolve.ErrAborted},
		"closed after junk": {input: "x\n", wantErr: resolve.ErrAborted},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var out bytes.Buffer
			p := NewLinePrompter(strings.NewReader(tt.input), &out)

			got, err := p.Choose(context.Background(), "Choice", testOptions, "k")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("got error %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
			if !strings.Contains(out.String(), "[k] Keep existing") {
				t.Errorf("options not listed in %q", out.String())
			}
			if !strings.Contains(out.String(), "Choice [k/r] (k): ") {
				t.Errorf("question not shown in %q", out.String())
			}
			if tt.output != "" && !strings.Contains(out.String(), tt.output) {
				t.Errorf("output missing %q in %q", tt.output, out.String())
			}
		})
	}
}

func TestLinePrompterConfirm(t *testing.T) {
	DisableColors()
	defer EnableColors()

	tests := map[string]struct {
		input string
		def   bool
		want  bool
		hint  string
	}{
		"yes":             {input: "y\n", want: true, hint: "[y/N]"},
		"no":              {input: "no\n", def: true, want: false, hint: "[Y/n]"},
		"default true":    {input: "\n", def: true, want: true, hint: "[Y/n]"},
		"default false":   {input: "\n", want: false, hint: "[y/N]"},
		"retry on answer": {input: "maybe\nYES\n", want: true, hint: "Please answer y or n"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var out bytes.Buffer
			p := NewLinePrompter(strings.NewReader(tt.input), &out)

			got, err := p.Confirm(context.Background(), "Save merged result?", tt.def)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
			if !strings.Contains(out.String(), tt.hint) {
				t.Errorf("output missing %q in %q", tt.hint, out.String())
			}
		})
	}
}

func TestLinePrompterCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewLinePrompter(strings.NewReader("k\n"), &bytes.Buffer{})
	_, err := p.Choose(ctx, "Choice", testOptions, "k")
	if !errors.Is(err, resolve.ErrAborted) {
		t.Errorf("got %v, want ErrAborted", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled in chain", err)
	}
}

func TestFormOptions(t *testing.T) {
	opts := formOptions(testOptions)
	if len(opts) != 2 {
		t.Fatalf("got %d options, want 2", len(opts))
	}
	if opts[0].Key != "[k] Keep existing" || opts[0].Value != "k" {
		t.Errorf("unexpected option %+v", opts[0])
	}
}
