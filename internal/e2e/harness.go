// Package e2e provides testing infrastructure for end-to-end CLI tests.
// It runs the agenttransfer CLI in-process against an isolated home
// directory and project root.
package e2e

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauern/agenttransfer/internal/cli"
)

// Result contains the outcome of running a CLI command.
type Result struct {
	// Stdout contains the captured standard output.
	Stdout string
	// Err is the error returned by the CLI command, if any.
	Err error
	// ExitCode is the process exit code main would use for Err.
	ExitCode int
}

// Success returns true if the command completed without error.
func (r *Result) Success() bool {
	return r.Err == nil
}

// Harness runs CLI commands with environment isolation and output capture.
type Harness struct {
	t       *testing.T
	homeDir string
	env     map[string]string
}

// NewHarness creates a new E2E test harness. The user .claude directory
// lives at <home>/.claude, the project root at <home>/repo and the
// configuration directory at <home>/config.
func NewHarness(t *testing.T) *Harness {
	t.Helper()

	homeDir := t.TempDir()
	h := &Harness{
		t:       t,
		homeDir: homeDir,
		env:     make(map[string]string),
	}

	h.SetEnv("HOME", homeDir)
	h.SetEnv("AGENTTRANSFER_HOME", filepath.Join(homeDir, "config"))
	h.SetEnv("AGENTTRANSFER_PATHS_CLAUDE_HOME", filepath.Join(homeDir, ".claude"))
	h.SetEnv("AGENTTRANSFER_PATHS_PROJECT_ROOT", filepath.Join(homeDir, "repo"))
	h.SetEnv("AGENTTRANSFER_IMPORT_CONFLICT_MODE", "")

	return h
}

// SetEnv sets an environment variable for CLI commands run through this
// harness. The variable is restored after the test completes.
func (h *Harness) SetEnv(key, value string) {
	h.t.Helper()
	h.env[key] = value
	h.t.Setenv(key, value)
}

// HomeDir returns the isolated home directory for this test harness.
func (h *Harness) HomeDir() string {
	return h.homeDir
}

// UserDir returns the user-level .claude directory.
func (h *Harness) UserDir() string {
	return h.env["AGENTTRANSFER_PATHS_CLAUDE_HOME"]
}

// ProjectDir returns the project-level .claude directory.
func (h *Harness) ProjectDir() string {
	return filepath.Join(h.env["AGENTTRANSFER_PATHS_PROJECT_ROOT"], ".claude")
}

// Run executes a CLI command with empty stdin and captures the output.
// Colors are disabled so assertions can match plain text.
func (h *Harness) Run(args ...string) *Result {
	h.t.Helper()
	return h.RunWithStdin("", args...)
}

// RunWithStdin executes a CLI command with stdin input and captures
// output. Stdin is a pipe, so the CLI treats the session as
// non-interactive and reads prompt answers line by line.
func (h *Harness) RunWithStdin(stdin string, args ...string) *Result {
	h.t.Helper()

	if len(args) == 0 || args[0] != "agenttransfer" {
		args = append([]string{"agenttransfer", "--no-color"}, args...)
	}

	oldStdin := os.Stdin
	stdinR, stdinW, err := os.Pipe()
	if err != nil {
		h.t.Fatalf("failed to create stdin pipe: %v", err)
	}
	go func() {
		defer func() {
			_ = stdinW.Close()
		}()
		_, _ = stdinW.WriteString(stdin)
	}()
	os.Stdin = stdinR

	oldStdout := os.Stdout
	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		h.t.Fatalf("failed to create stdout pipe: %v", err)
	}
	os.Stdout = stdoutW

	// Read stdout concurrently; output larger than the pipe buffer would
	// otherwise block the command.
	var stdoutBuf bytes.Buffer
	var copyErr error
	copyDone := make(chan struct{})
	go func() {
		defer close(copyDone)
		_, copyErr = io.Copy(&stdoutBuf, stdoutR)
	}()

	cmdErr := cli.Run(context.Background(), args)

	if err := stdoutW.Close(); err != nil {
		h.t.Fatalf("failed to close stdout pipe writer: %v", err)
	}
	os.Stdin = oldStdin
	os.Stdout = oldStdout
	_ = stdinR.Close()

	<-copyDone
	if copyErr != nil {
		h.t.Fatalf("failed to read captured stdout: %v", copyErr)
	}

	return &Result{
		Stdout:   stdoutBuf.String(),
		Err:      cmdErr,
		ExitCode: cli.ExitCode(cmdErr),
	}
}
