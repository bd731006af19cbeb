package progress

import (
	"bytes"
	"testing"
)

func TestBarWithoutTerminal(t *testing.T) {
	var buf bytes.Buffer
	b := New(Options{Max: 3, Description: "Exporting", Writer: &buf})
	if b.Drawn() {
		t.Fatal("a bar writing to a buffer should not be drawn")
	}

	b.Add(1)
	b.Add(2)
	b.Describe("Exporting pdf")
	b.Finish()

	if b.Done() != 3 {
		t.Errorf("Done() = %d, want 3", b.Done())
	}
	if buf.Len() != 0 {
		t.Errorf("undrawn bar wrote %q", buf.String())
	}
}

func TestBarQuiet(t *testing.T) {
	b := New(Options{Max: 10, Quiet: true})
	if b.Drawn() {
		t.Error("quiet bar should not be drawn")
	}
}
