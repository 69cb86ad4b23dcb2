package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"slices"
	"sync"
)

// CommandRunner abstracts external process invocation so pipelines can be
// tested without an engine installation. Run blocks until the process
// exits, with its stdout and stderr wired to the given writers.
type CommandRunner interface {
	Run(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error
}

// ExitError reports a process that started and exited non-zero. Runners
// return it instead of runner-specific types so callers can branch on the
// exit code without knowing how the process was spawned.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run executes the command, translating non-zero exits into *ExitError.
// Spawn failures (missing executable, permissions) pass through unchanged.
func (ExecRunner) Run(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Code: exitErr.ExitCode()}
	}
	return err
}

// MockCall records one invocation passed to a MockRunner.
type MockCall struct {
	Name string
	Args []string
}

// MockRunner is a CommandRunner for tests. It records calls, plays back
// canned output, and returns a configured error.
type MockRunner struct {
	mu sync.Mutex

	// Stdout and Stderr are written to the respective streams on each run.
	Stdout string
	Stderr string

	// Err is returned from Run. Use *ExitError to simulate a non-zero exit.
	Err error

	// OnRun, when set, is called with each invocation before output is
	// written; its error replaces Err for that call.
	OnRun func(call MockCall) error

	calls []MockCall
}

// Run records the call and plays back the configured behavior.
func (m *MockRunner) Run(_ context.Context, name string, args []string, stdout, stderr io.Writer) error {
	call := MockCall{Name: name, Args: slices.Clone(args)}
	m.mu.Lock()
	m.calls = append(m.calls, call)
	onRun := m.OnRun
	out, errOut, err := m.Stdout, m.Stderr, m.Err
	m.mu.Unlock()

	if onRun != nil {
		if hookErr := onRun(call); hookErr != nil {
			err = hookErr
		}
	}
	if out != "" {
		if _, werr := io.WriteString(stdout, out); werr != nil {
			return werr
		}
	}
	if errOut != "" {
		if _, werr := io.WriteString(stderr, errOut); werr != nil {
			return werr
		}
	}
	return err
}

// Calls returns the recorded invocations.
func (m *MockRunner) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.calls)
}

// LastCall returns the most recent invocation, or nil if none.
func (m *MockRunner) LastCall() *MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return nil
	}
	call := m.calls[len(m.calls)-1]
	return &call
}

// Reset clears the recorded invocations.
func (m *MockRunner) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}
